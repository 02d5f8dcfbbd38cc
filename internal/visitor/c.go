package visitor

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// CVisitor walks one C or C++ translation unit. The two grammars share most
// node kinds; the C++ extras (namespaces, classes, templates) fall out of the
// same walk. Qualified names are rooted at the file path, since C has no
// package construct.
type CVisitor struct {
	language lang.Language
	scope    *Scope
	log      *slog.Logger
}

func NewCVisitor(l lang.Language, scope *Scope) *CVisitor {
	return &CVisitor{language: l, scope: scope, log: slog.Default()}
}

func (v *CVisitor) Language() lang.Language { return v.language }

func (v *CVisitor) Visit(file FileInput) (*graph.FileResult, error) {
	spec := lang.ForLanguage(v.language)
	tree, err := parser.Parse(v.language, file.Source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	defer tree.Close()

	b := newBuilder(v.scope, file)
	fileEnt := b.emit(graph.KindFile, path.Base(file.Path), file.Path, tree.RootNode(), nil, nil)
	ctx := NewContext(file.Path, fileEnt)
	types := map[string]*graph.Entity{}

	v.walkScope(b, ctx, spec, tree.RootNode(), file.Source, fileEnt, types)
	return b.result, nil
}

// walkScope handles one declaration list: the translation unit, a namespace
// body, a linkage specification, or a preprocessor conditional.
func (v *CVisitor) walkScope(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "namespace_definition":
			v.visitNamespace(b, ctx, spec, child, source, fileEnt, types)
		case "function_definition":
			v.visitFunction(b, ctx, spec, child, source, fileEnt, nil)
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			v.visitType(b, ctx, spec, child, source, fileEnt, types)
		case "type_definition":
			v.visitTypedef(b, ctx, spec, child, source, fileEnt, types)
		case "preproc_include":
			v.visitInclude(b, child, source, fileEnt)
		case "preproc_def", "preproc_function_def":
			v.visitMacro(b, ctx, child, source, fileEnt)
		case "template_declaration":
			v.walkScope(b, ctx, spec, child, source, fileEnt, types)
		case "linkage_specification", "preproc_if", "preproc_ifdef", "preproc_else", "declaration_list":
			v.walkScope(b, ctx, spec, child, source, fileEnt, types)
		}
	}
}

func (v *CVisitor) visitNamespace(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	name := ""
	if n := node.ChildByFieldName("name"); n != nil {
		name = parser.NodeText(n, source)
	}
	parent := ctx.Enclosing()
	ns := b.emit(graph.KindNamespace, name, ctx.QualifiedName(name), node, parent,
		docProperties(node, source, spec))
	b.edge(graph.EdgeContainsModule, parent, ns)
	ctx.Push(name, ns)
	if body := node.ChildByFieldName("body"); body != nil {
		v.walkScope(b, ctx, spec, body, source, fileEnt, types)
	}
	ctx.Pop()
}

func (v *CVisitor) visitFunction(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, enclosingType *graph.Entity) {
	name := cDeclaratorName(decl, source)
	if name == "" {
		v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", decl.Kind(), "line", decl.StartPosition().Row+1)
		return
	}
	props := declProperties(decl, source, spec)
	if calls := collectCalls(decl, source, spec); len(calls) > 0 {
		props["calls"] = calls
	}

	kind := graph.KindFunction
	parent := ctx.Enclosing()
	if enclosingType != nil {
		kind = graph.KindMethod
		parent = enclosingType
	}
	fn := b.emit(kind, name, ctx.QualifiedName(name), decl, parent, props)
	if enclosingType != nil {
		b.edge(graph.EdgeDefinesFunction, fileEnt, fn)
		b.edge(graph.EdgeHasMethod, enclosingType, fn)
	} else {
		b.edge(graph.EdgeDefinesFunction, parent, fn)
	}
}

func (v *CVisitor) visitType(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	nameNode := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	if nameNode == nil || body == nil {
		return // anonymous or forward declaration
	}
	name := parser.NodeText(nameNode, source)

	var kind graph.Kind
	switch node.Kind() {
	case "class_specifier":
		kind = graph.KindClass
	case "enum_specifier":
		kind = graph.KindEnum
	default:
		kind = graph.KindStruct
	}

	props := docProperties(node, source, spec)
	bases := cBaseClasses(node, source)
	if len(bases) > 0 {
		props["baseTypes"] = bases
	}

	parent := ctx.Enclosing()
	ent := b.emit(kind, name, ctx.QualifiedName(name), node, parent, props)
	b.edge(graph.EdgeDefinesType, parent, ent)
	types[name] = ent
	for _, base := range bases {
		if target := types[base]; target != nil {
			b.edge(graph.EdgeExtends, ent, target)
		}
	}

	ctx.Push(name, ent)
	defer ctx.Pop()

	if kind == graph.KindEnum {
		return
	}
	for i := uint(0); i < body.NamedChildCount(); i++ {
		member := body.NamedChild(i)
		if member == nil {
			continue
		}
		switch member.Kind() {
		case "field_declaration":
			if cIsMethodPrototype(member) {
				continue
			}
			fieldName := cFieldName(member, source)
			if fieldName == "" {
				continue
			}
			typeText := ""
			if t := member.ChildByFieldName("type"); t != nil {
				typeText = parser.NodeText(t, source)
			}
			f := b.emit(graph.KindField, fieldName, ctx.QualifiedName(fieldName), member, ent,
				map[string]any{"type": typeText})
			b.edge(graph.EdgeHasField, ent, f)
		case "function_definition":
			v.visitFunction(b, ctx, spec, member, source, fileEnt, ent)
		case "class_specifier", "struct_specifier", "union_specifier", "enum_specifier":
			v.visitType(b, ctx, spec, member, source, fileEnt, types)
		}
	}
}

func (v *CVisitor) visitTypedef(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	// typedef struct {...} name; names the last declarator
	declarator := node.ChildByFieldName("declarator")
	if declarator == nil {
		return
	}
	name := parser.NodeText(declarator, source)
	if name == "" {
		return
	}
	props := docProperties(node, source, spec)
	if t := node.ChildByFieldName("type"); t != nil {
		switch t.Kind() {
		case "struct_specifier", "union_specifier", "enum_specifier":
			// inline body handled below
		default:
			props["underlying"] = parser.NodeText(t, source)
		}
	}
	parent := ctx.Enclosing()
	ent := b.emit(graph.KindStruct, name, ctx.QualifiedName(name), node, parent, props)
	b.edge(graph.EdgeDefinesType, parent, ent)
	types[name] = ent
}

func (v *CVisitor) visitInclude(b *builder, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	includePath := strings.Trim(parser.NodeText(pathNode, source), `"<>`)
	system := pathNode.Kind() == "system_lib_string"
	// directives carry no parent; the INCLUDES edge records the relationship
	imp := b.emit(graph.KindImport, path.Base(includePath),
		b.file.Path+"#"+includePath, node, nil,
		map[string]any{"path": includePath, "system": system})
	b.edge(graph.EdgeIncludes, fileEnt, imp)
}

func (v *CVisitor) visitMacro(b *builder, ctx *Context, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)
	props := map[string]any{}
	functionLike := node.Kind() == "preproc_function_def"
	if functionLike {
		props["functionLike"] = true
	}
	m := b.emit(graph.KindMacro, name, ctx.QualifiedName(name), node, fileEnt, props)
	if functionLike {
		b.edge(graph.EdgeDefinesFunction, fileEnt, m)
	} else {
		b.edge(graph.EdgeDefinesType, fileEnt, m)
	}
}

// cDeclaratorName descends a function definition's declarator chain to the
// declared identifier, unwrapping pointer/reference declarators.
func cDeclaratorName(decl *tree_sitter.Node, source []byte) string {
	node := decl.ChildByFieldName("declarator")
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "qualified_identifier",
			"operator_name", "destructor_name":
			return parser.NodeText(node, source)
		}
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			node = inner
			continue
		}
		return ""
	}
	return ""
}

// cFieldName returns the identifier a field declaration declares.
func cFieldName(decl *tree_sitter.Node, source []byte) string {
	node := decl.ChildByFieldName("declarator")
	for node != nil {
		switch node.Kind() {
		case "field_identifier", "identifier":
			return parser.NodeText(node, source)
		}
		if inner := node.ChildByFieldName("declarator"); inner != nil {
			node = inner
			continue
		}
		if id := parser.FindChildByKind(node, "field_identifier"); id != nil {
			return parser.NodeText(id, source)
		}
		return ""
	}
	return ""
}

// cIsMethodPrototype reports whether a class field declaration is really a
// method prototype (a declarator carrying a parameter list).
func cIsMethodPrototype(decl *tree_sitter.Node) bool {
	d := decl.ChildByFieldName("declarator")
	return d != nil && d.Kind() == "function_declarator"
}

// cBaseClasses extracts a C++ class's base class names.
func cBaseClasses(node *tree_sitter.Node, source []byte) []string {
	clause := parser.FindChildByKind(node, "base_class_clause")
	if clause == nil {
		return nil
	}
	var bases []string
	for i := uint(0); i < clause.NamedChildCount(); i++ {
		c := clause.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "type_identifier", "qualified_identifier", "template_type":
			bases = append(bases, parser.NodeText(c, source))
		}
	}
	return bases
}
