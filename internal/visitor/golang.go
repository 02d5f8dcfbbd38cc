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

// GoVisitor walks one Go file. The package name roots the qualified-name
// scheme, so two files of one package contribute to the same namespace.
type GoVisitor struct {
	scope *Scope
	log   *slog.Logger
}

func NewGoVisitor(scope *Scope) *GoVisitor {
	return &GoVisitor{scope: scope, log: slog.Default()}
}

func (v *GoVisitor) Language() lang.Language { return lang.Go }

func (v *GoVisitor) Visit(file FileInput) (*graph.FileResult, error) {
	spec := lang.ForLanguage(lang.Go)
	tree, err := parser.Parse(lang.Go, file.Source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	defer tree.Close()
	root := tree.RootNode()

	pkg := goPackageName(root, file.Source)
	b := newBuilder(v.scope, file)
	fileEnt := b.emit(graph.KindFile, path.Base(file.Path), file.Path, root, nil,
		map[string]any{"package": pkg})
	ctx := NewContext(pkg, fileEnt)

	// Types first so methods declared earlier in the file still bind.
	types := map[string]*graph.Entity{}
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child != nil && child.Kind() == "type_declaration" {
			v.visitTypeDecl(b, ctx, spec, child, file.Source, fileEnt, types)
		}
	}

	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "function_declaration":
			v.visitFunction(b, ctx, spec, child, file.Source, fileEnt)
		case "method_declaration":
			v.visitMethod(b, ctx, spec, child, file.Source, fileEnt, types)
		case "import_declaration":
			v.visitImports(b, child, file.Source, fileEnt)
		}
	}
	return b.result, nil
}

func (v *GoVisitor) visitTypeDecl(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		ts := decl.NamedChild(i)
		if ts == nil || ts.Kind() != "type_spec" {
			continue
		}
		nameNode := ts.ChildByFieldName("name")
		typeNode := ts.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", ts.Kind(), "line", ts.StartPosition().Row+1)
			continue
		}
		name := parser.NodeText(nameNode, source)
		props := docProperties(decl, source, spec)

		var kind graph.Kind
		switch typeNode.Kind() {
		case "struct_type":
			kind = graph.KindStruct
		case "interface_type":
			kind = graph.KindInterface
		default:
			kind = graph.KindStruct
			props["underlying"] = parser.NodeText(typeNode, source)
		}

		ent := b.emit(kind, name, ctx.QualifiedName(name), ts, fileEnt, props)
		b.edge(graph.EdgeDefinesType, fileEnt, ent)
		types[name] = ent

		ctx.Push(name, ent)
		switch typeNode.Kind() {
		case "struct_type":
			v.visitStructFields(b, ctx, spec, typeNode, source, ent)
		case "interface_type":
			v.visitInterfaceMethods(b, ctx, typeNode, source, ent)
		}
		ctx.Pop()
	}
}

func (v *GoVisitor) visitStructFields(b *builder, ctx *Context, spec *lang.Spec, structType *tree_sitter.Node, source []byte, parent *graph.Entity) {
	list := parser.FindChildByKind(structType, "field_declaration_list")
	if list == nil {
		return
	}
	for i := uint(0); i < list.NamedChildCount(); i++ {
		fd := list.NamedChild(i)
		if fd == nil || fd.Kind() != "field_declaration" {
			continue
		}
		typeText := ""
		if t := fd.ChildByFieldName("type"); t != nil {
			typeText = parser.NodeText(t, source)
		}
		names := namedChildrenOfKind(fd, "field_identifier")
		if len(names) == 0 {
			// embedded field: the type stands in for the name
			name := strings.TrimPrefix(typeText, "*")
			f := b.emit(graph.KindField, name, ctx.QualifiedName(name), fd, parent,
				map[string]any{"type": typeText, "embedded": true})
			b.edge(graph.EdgeHasField, parent, f)
			continue
		}
		for _, n := range names {
			name := parser.NodeText(n, source)
			f := b.emit(graph.KindField, name, ctx.QualifiedName(name), fd, parent,
				map[string]any{"type": typeText})
			b.edge(graph.EdgeHasField, parent, f)
		}
	}
}

func (v *GoVisitor) visitInterfaceMethods(b *builder, ctx *Context, ifaceType *tree_sitter.Node, source []byte, parent *graph.Entity) {
	for i := uint(0); i < ifaceType.NamedChildCount(); i++ {
		elem := ifaceType.NamedChild(i)
		if elem == nil {
			continue
		}
		switch elem.Kind() {
		case "method_elem", "method_spec":
			nameNode := elem.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			name := parser.NodeText(nameNode, source)
			m := b.emit(graph.KindMethod, name, ctx.QualifiedName(name), elem, parent,
				map[string]any{"signature": ExtractSignature(elem, source, lang.Go).ToProperties()})
			b.edge(graph.EdgeHasMethod, parent, m)
		case "type_elem":
			// embedded interface constraint
			name := parser.NodeText(elem, source)
			if parent.Properties == nil {
				parent.Properties = map[string]any{}
			}
			parent.Properties["baseTypes"] = appendString(parent.Properties["baseTypes"], name)
		}
	}
}

func (v *GoVisitor) visitFunction(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", decl.Kind(), "line", decl.StartPosition().Row+1)
		return
	}
	name := parser.NodeText(nameNode, source)
	props := declProperties(decl, source, spec)
	if calls := collectCalls(decl, source, spec); len(calls) > 0 {
		props["calls"] = calls
	}
	fn := b.emit(graph.KindFunction, name, ctx.QualifiedName(name), decl, fileEnt, props)
	b.edge(graph.EdgeDefinesFunction, fileEnt, fn)
}

func (v *GoVisitor) visitMethod(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", decl.Kind(), "line", decl.StartPosition().Row+1)
		return
	}
	name := parser.NodeText(nameNode, source)
	recv := goReceiverType(decl, source)

	props := declProperties(decl, source, spec)
	if calls := collectCalls(decl, source, spec); len(calls) > 0 {
		props["calls"] = calls
	}
	if recv != "" {
		props["receiver"] = recv
	}

	qualified := ctx.QualifiedName(name)
	if recv != "" {
		qualified = ctx.QualifiedName(recv + "." + name)
	}
	parent := fileEnt
	if t := types[recv]; t != nil {
		parent = t
	}
	m := b.emit(graph.KindMethod, name, qualified, decl, parent, props)
	b.edge(graph.EdgeDefinesFunction, fileEnt, m)
	if t := types[recv]; t != nil {
		b.edge(graph.EdgeHasMethod, t, m)
	}
}

func (v *GoVisitor) visitImports(b *builder, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity) {
	var visitSpec func(node *tree_sitter.Node)
	visitSpec = func(node *tree_sitter.Node) {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child == nil {
				continue
			}
			switch child.Kind() {
			case "import_spec_list":
				visitSpec(child)
			case "import_spec":
				pathNode := child.ChildByFieldName("path")
				if pathNode == nil {
					continue
				}
				importPath := strings.Trim(parser.NodeText(pathNode, source), `"`)
				props := map[string]any{"path": importPath}
				if alias := child.ChildByFieldName("name"); alias != nil {
					props["alias"] = parser.NodeText(alias, source)
				}
				// directives carry no parent; the IMPORTS edge records
				// the relationship
				imp := b.emit(graph.KindImport, path.Base(importPath),
					b.file.Path+"#"+importPath, child, nil, props)
				b.edge(graph.EdgeImports, fileEnt, imp)
			}
		}
	}
	visitSpec(decl)
}

// goPackageName returns the file's package clause identifier.
func goPackageName(root *tree_sitter.Node, source []byte) string {
	clause := parser.FindChildByKind(root, "package_clause")
	if clause == nil {
		return ""
	}
	if id := parser.FindChildByKind(clause, "package_identifier"); id != nil {
		return parser.NodeText(id, source)
	}
	return ""
}

// goReceiverType returns the bare receiver type name ("*Server" -> "Server").
func goReceiverType(decl *tree_sitter.Node, source []byte) string {
	recv := decl.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := uint(0); i < recv.NamedChildCount(); i++ {
		p := recv.NamedChild(i)
		if p == nil || p.Kind() != "parameter_declaration" {
			continue
		}
		t := p.ChildByFieldName("type")
		if t == nil {
			continue
		}
		text := strings.TrimPrefix(parser.NodeText(t, source), "*")
		// drop generic type parameters: "List[T]" -> "List"
		if idx := strings.IndexByte(text, '['); idx > 0 {
			text = text[:idx]
		}
		return text
	}
	return ""
}

func appendString(existing any, s string) []string {
	list, _ := existing.([]string)
	return append(list, s)
}
