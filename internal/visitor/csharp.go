package visitor

import (
	"fmt"
	"log/slog"
	"path"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// CSharpVisitor walks one C# file. Namespaces (block-scoped and file-scoped)
// push context frames, so qualified names follow the declared namespace
// rather than the file path.
type CSharpVisitor struct {
	scope *Scope
	log   *slog.Logger
}

func NewCSharpVisitor(scope *Scope) *CSharpVisitor {
	return &CSharpVisitor{scope: scope, log: slog.Default()}
}

func (v *CSharpVisitor) Language() lang.Language { return lang.CSharp }

func (v *CSharpVisitor) Visit(file FileInput) (*graph.FileResult, error) {
	spec := lang.ForLanguage(lang.CSharp)
	tree, err := parser.Parse(lang.CSharp, file.Source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	defer tree.Close()

	b := newBuilder(v.scope, file)
	fileEnt := b.emit(graph.KindFile, path.Base(file.Path), file.Path, tree.RootNode(), nil, nil)
	ctx := NewContext("", fileEnt)
	types := map[string]*graph.Entity{}

	v.walkScope(b, ctx, spec, tree.RootNode(), file.Source, fileEnt, types)
	return b.result, nil
}

func (v *CSharpVisitor) walkScope(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "using_directive":
			v.visitUsing(b, child, source, fileEnt)
		case "namespace_declaration", "file_scoped_namespace_declaration":
			v.visitNamespace(b, ctx, spec, child, source, fileEnt, types)
		case "class_declaration", "interface_declaration", "struct_declaration",
			"enum_declaration", "record_declaration":
			v.visitType(b, ctx, spec, child, source, fileEnt, types)
		case "declaration_list":
			v.walkScope(b, ctx, spec, child, source, fileEnt, types)
		}
	}
}

func (v *CSharpVisitor) visitUsing(b *builder, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity) {
	var target string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "qualified_name", "alias_qualified_name":
			target = parser.NodeText(c, source)
		}
	}
	if target == "" {
		return
	}
	// directives carry no parent; the IMPORTS edge records the relationship
	imp := b.emit(graph.KindImport, target, b.file.Path+"#"+target, node, nil,
		map[string]any{"path": target})
	b.edge(graph.EdgeImports, fileEnt, imp)
}

func (v *CSharpVisitor) visitNamespace(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", node.Kind(), "line", node.StartPosition().Row+1)
		return
	}
	name := parser.NodeText(nameNode, source)
	parent := ctx.Enclosing()
	ns := b.emit(graph.KindNamespace, name, ctx.QualifiedName(name), node, parent,
		docProperties(node, source, spec))
	b.edge(graph.EdgeContainsModule, parent, ns)
	ctx.Push(name, ns)
	defer ctx.Pop()

	// block-scoped namespaces wrap members in a declaration_list; file-scoped
	// ones hold them directly
	if body := node.ChildByFieldName("body"); body != nil {
		v.walkScope(b, ctx, spec, body, source, fileEnt, types)
	} else {
		v.walkScope(b, ctx, spec, node, source, fileEnt, types)
	}
}

func (v *CSharpVisitor) visitType(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", node.Kind(), "line", node.StartPosition().Row+1)
		return
	}
	name := parser.NodeText(nameNode, source)

	var kind graph.Kind
	switch node.Kind() {
	case "interface_declaration":
		kind = graph.KindInterface
	case "struct_declaration":
		kind = graph.KindStruct
	case "enum_declaration":
		kind = graph.KindEnum
	default:
		kind = graph.KindClass
	}

	props := docProperties(node, source, spec)
	bases := csharpBaseList(node, source)
	if len(bases) > 0 {
		props["baseTypes"] = bases
	}

	parent := ctx.Enclosing()
	ent := b.emit(kind, name, ctx.QualifiedName(name), node, parent, props)
	b.edge(graph.EdgeDefinesType, parent, ent)
	types[name] = ent

	// in-file inheritance resolves now; the rest waits for the reference pass
	for _, base := range bases {
		target := types[base]
		if target == nil {
			continue
		}
		if target.Kind == graph.KindInterface && kind != graph.KindInterface {
			b.edge(graph.EdgeImplements, ent, target)
		} else {
			b.edge(graph.EdgeExtends, ent, target)
		}
	}

	body := node.ChildByFieldName("body")
	if body == nil {
		return
	}
	ctx.Push(name, ent)
	defer ctx.Pop()

	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil {
			continue
		}
		switch member.Kind() {
		case "method_declaration", "constructor_declaration",
			"destructor_declaration", "operator_declaration":
			v.visitMethod(b, ctx, spec, member, source, ent)
		case "property_declaration":
			v.visitProperty(b, ctx, spec, member, source, ent)
		case "field_declaration", "event_field_declaration":
			v.visitField(b, ctx, spec, member, source, ent)
		case "class_declaration", "interface_declaration", "struct_declaration",
			"enum_declaration", "record_declaration":
			v.visitType(b, ctx, spec, member, source, fileEnt, types)
		}
	}
}

func (v *CSharpVisitor) visitMethod(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, parent *graph.Entity) {
	name := parent.Name // constructors and destructors carry the type name
	if n := decl.ChildByFieldName("name"); n != nil {
		name = parser.NodeText(n, source)
	}
	props := declProperties(decl, source, spec)
	if calls := collectCalls(decl, source, spec); len(calls) > 0 {
		props["calls"] = calls
	}
	m := b.emit(graph.KindMethod, name, ctx.QualifiedName(name), decl, parent, props)
	b.edge(graph.EdgeHasMethod, parent, m)
}

func (v *CSharpVisitor) visitProperty(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, parent *graph.Entity) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)
	props := docProperties(decl, source, spec)
	if t := decl.ChildByFieldName("type"); t != nil {
		props["type"] = parser.NodeText(t, source)
	}
	p := b.emit(graph.KindProperty, name, ctx.QualifiedName(name), decl, parent, props)
	b.edge(graph.EdgeHasProperty, parent, p)
}

func (v *CSharpVisitor) visitField(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, parent *graph.Entity) {
	varDecl := parser.FindChildByKind(decl, "variable_declaration")
	if varDecl == nil {
		return
	}
	typeText := ""
	if t := varDecl.ChildByFieldName("type"); t != nil {
		typeText = parser.NodeText(t, source)
	}
	for i := uint(0); i < varDecl.NamedChildCount(); i++ {
		d := varDecl.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil {
			nameNode = parser.FindChildByKind(d, "identifier")
		}
		if nameNode == nil {
			continue
		}
		name := parser.NodeText(nameNode, source)
		f := b.emit(graph.KindField, name, ctx.QualifiedName(name), decl, parent,
			map[string]any{"type": typeText})
		b.edge(graph.EdgeHasField, parent, f)
	}
}

// csharpBaseList extracts the base types of a type declaration's ": A, B".
func csharpBaseList(node *tree_sitter.Node, source []byte) []string {
	list := parser.FindChildByKind(node, "base_list")
	if list == nil {
		return nil
	}
	var bases []string
	for i := uint(0); i < list.NamedChildCount(); i++ {
		c := list.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "identifier", "qualified_name", "generic_name":
			bases = append(bases, parser.NodeText(c, source))
		}
	}
	return bases
}
