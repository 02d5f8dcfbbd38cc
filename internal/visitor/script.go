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

// ScriptVisitor walks one JavaScript, TypeScript, or TSX file. The three
// grammars share their statement surface, so one walk covers the family.
// Qualified names root at the file path; module-level bindings are exported
// when an export statement wraps them, which the project pass uses to build
// the cross-file symbol table.
type ScriptVisitor struct {
	language lang.Language
	scope    *Scope
	log      *slog.Logger
}

func NewScriptVisitor(l lang.Language, scope *Scope) *ScriptVisitor {
	return &ScriptVisitor{language: l, scope: scope, log: slog.Default()}
}

func (v *ScriptVisitor) Language() lang.Language { return v.language }

func (v *ScriptVisitor) Visit(file FileInput) (*graph.FileResult, error) {
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

	root := tree.RootNode()
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child != nil {
			v.visitStatement(b, ctx, spec, child, file.Source, fileEnt, types, false)
		}
	}
	return b.result, nil
}

func (v *ScriptVisitor) visitStatement(b *builder, ctx *Context, spec *lang.Spec, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity, exported bool) {
	switch node.Kind() {
	case "export_statement":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c := node.NamedChild(i)
			if c != nil {
				v.visitStatement(b, ctx, spec, c, source, fileEnt, types, true)
			}
		}
	case "import_statement":
		v.visitImport(b, node, source, fileEnt)
	case "function_declaration", "generator_function_declaration":
		v.visitFunction(b, ctx, spec, node, source, fileEnt, exported)
	case "class_declaration", "abstract_class_declaration":
		v.visitClass(b, ctx, spec, node, source, fileEnt, types, exported)
	case "interface_declaration":
		v.visitInterface(b, ctx, spec, node, source, fileEnt, types, exported)
	case "enum_declaration":
		v.visitEnum(b, ctx, spec, node, source, fileEnt, types, exported)
	case "type_alias_declaration":
		v.visitTypeAlias(b, ctx, spec, node, source, fileEnt, types, exported)
	case "lexical_declaration", "variable_declaration":
		v.visitVariable(b, ctx, spec, node, source, fileEnt, exported)
	case "ambient_declaration", "internal_module", "module":
		// declare blocks and TS namespaces: walk the body
		for i := uint(0); i < node.NamedChildCount(); i++ {
			c := node.NamedChild(i)
			if c != nil {
				v.visitStatement(b, ctx, spec, c, source, fileEnt, types, exported)
			}
		}
	}
}

func (v *ScriptVisitor) visitImport(b *builder, node *tree_sitter.Node, source []byte, fileEnt *graph.Entity) {
	srcNode := node.ChildByFieldName("source")
	if srcNode == nil {
		return
	}
	modulePath := strings.Trim(parser.NodeText(srcNode, source), "\"'`")
	props := map[string]any{"path": modulePath}

	var names []string
	if clause := parser.FindChildByKind(node, "import_clause"); clause != nil {
		parser.Walk(clause, func(n *tree_sitter.Node) bool {
			switch n.Kind() {
			case "identifier":
				names = append(names, parser.NodeText(n, source))
			case "namespace_import":
				if id := parser.FindChildByKind(n, "identifier"); id != nil {
					props["namespaceAlias"] = parser.NodeText(id, source)
				}
				return false
			}
			return true
		})
	}
	if len(names) > 0 {
		props["names"] = names
	}
	// directives carry no parent; the IMPORTS edge records the relationship
	imp := b.emit(graph.KindImport, path.Base(modulePath),
		b.file.Path+"#"+modulePath, node, nil, props)
	b.edge(graph.EdgeImports, fileEnt, imp)
}

func (v *ScriptVisitor) visitFunction(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, exported bool) {
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
	if exported {
		props["exported"] = true
	}
	fn := b.emit(graph.KindFunction, name, ctx.QualifiedName(name), decl, fileEnt, props)
	b.edge(graph.EdgeDefinesFunction, fileEnt, fn)
}

// visitVariable emits function entities for module-level const/let bindings
// whose initializer is an arrow function or function expression.
func (v *ScriptVisitor) visitVariable(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, exported bool) {
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		d := decl.NamedChild(i)
		if d == nil || d.Kind() != "variable_declarator" {
			continue
		}
		value := d.ChildByFieldName("value")
		if value == nil {
			continue
		}
		switch value.Kind() {
		case "arrow_function", "function_expression", "function", "generator_function":
		default:
			continue
		}
		nameNode := d.ChildByFieldName("name")
		if nameNode == nil || nameNode.Kind() != "identifier" {
			continue
		}
		name := parser.NodeText(nameNode, source)
		props := declProperties(value, source, spec)
		if calls := collectCalls(value, source, spec); len(calls) > 0 {
			props["calls"] = calls
		}
		if exported {
			props["exported"] = true
		}
		fn := b.emit(graph.KindFunction, name, ctx.QualifiedName(name), d, fileEnt, props)
		b.edge(graph.EdgeDefinesFunction, fileEnt, fn)
	}
}

func (v *ScriptVisitor) visitClass(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity, exported bool) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		v.log.Warn("visit.skip_decl", "path", b.file.Path, "kind", decl.Kind(), "line", decl.StartPosition().Row+1)
		return
	}
	name := parser.NodeText(nameNode, source)

	props := docProperties(decl, source, spec)
	if exported {
		props["exported"] = true
	}
	extends, implements := scriptHeritage(decl, source)
	if len(extends) > 0 {
		props["baseTypes"] = extends
	}
	if len(implements) > 0 {
		props["implements"] = implements
	}

	ent := b.emit(graph.KindClass, name, ctx.QualifiedName(name), decl, fileEnt, props)
	b.edge(graph.EdgeDefinesType, fileEnt, ent)
	types[name] = ent
	for _, base := range extends {
		if target := types[base]; target != nil {
			b.edge(graph.EdgeExtends, ent, target)
		}
	}
	for _, iface := range implements {
		if target := types[iface]; target != nil {
			b.edge(graph.EdgeImplements, ent, target)
		}
	}

	body := decl.ChildByFieldName("body")
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
		case "method_definition":
			v.visitMethod(b, ctx, spec, member, source, ent)
		case "public_field_definition", "field_definition":
			v.visitClassField(b, ctx, spec, member, source, ent)
		}
	}
}

func (v *ScriptVisitor) visitMethod(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, parent *graph.Entity) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)
	props := declProperties(decl, source, spec)
	if calls := collectCalls(decl, source, spec); len(calls) > 0 {
		props["calls"] = calls
	}
	m := b.emit(graph.KindMethod, name, ctx.QualifiedName(name), decl, parent, props)
	b.edge(graph.EdgeHasMethod, parent, m)
}

func (v *ScriptVisitor) visitClassField(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, parent *graph.Entity) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)

	// a field initialized with an arrow function is really a method
	if value := decl.ChildByFieldName("value"); value != nil &&
		(value.Kind() == "arrow_function" || value.Kind() == "function_expression") {
		props := declProperties(value, source, spec)
		if calls := collectCalls(value, source, spec); len(calls) > 0 {
			props["calls"] = calls
		}
		m := b.emit(graph.KindMethod, name, ctx.QualifiedName(name), decl, parent, props)
		b.edge(graph.EdgeHasMethod, parent, m)
		return
	}

	props := docProperties(decl, source, spec)
	if t := decl.ChildByFieldName("type"); t != nil {
		props["type"] = trimTypeAnnotation(parser.NodeText(t, source))
	}
	f := b.emit(graph.KindProperty, name, ctx.QualifiedName(name), decl, parent, props)
	b.edge(graph.EdgeHasProperty, parent, f)
}

func (v *ScriptVisitor) visitInterface(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity, exported bool) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)
	props := docProperties(decl, source, spec)
	if exported {
		props["exported"] = true
	}
	extends, _ := scriptHeritage(decl, source)
	if len(extends) > 0 {
		props["baseTypes"] = extends
	}

	ent := b.emit(graph.KindInterface, name, ctx.QualifiedName(name), decl, fileEnt, props)
	b.edge(graph.EdgeDefinesType, fileEnt, ent)
	types[name] = ent

	body := decl.ChildByFieldName("body")
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
		nameNode := member.ChildByFieldName("name")
		if nameNode == nil {
			continue
		}
		memberName := parser.NodeText(nameNode, source)
		switch member.Kind() {
		case "property_signature":
			p := b.emit(graph.KindProperty, memberName, ctx.QualifiedName(memberName), member, ent,
				docProperties(member, source, spec))
			b.edge(graph.EdgeHasProperty, ent, p)
		case "method_signature":
			m := b.emit(graph.KindMethod, memberName, ctx.QualifiedName(memberName), member, ent,
				map[string]any{"signature": ExtractSignature(member, source, spec.Language).ToProperties()})
			b.edge(graph.EdgeHasMethod, ent, m)
		}
	}
}

func (v *ScriptVisitor) visitEnum(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity, exported bool) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)
	props := docProperties(decl, source, spec)
	if exported {
		props["exported"] = true
	}
	if body := decl.ChildByFieldName("body"); body != nil {
		var members []string
		for i := uint(0); i < body.NamedChildCount(); i++ {
			m := body.NamedChild(i)
			if m == nil {
				continue
			}
			if n := m.ChildByFieldName("name"); n != nil {
				members = append(members, parser.NodeText(n, source))
			} else if m.Kind() == "property_identifier" {
				members = append(members, parser.NodeText(m, source))
			}
		}
		if len(members) > 0 {
			props["members"] = members
		}
	}
	ent := b.emit(graph.KindEnum, name, ctx.QualifiedName(name), decl, fileEnt, props)
	b.edge(graph.EdgeDefinesType, fileEnt, ent)
	types[name] = ent
}

func (v *ScriptVisitor) visitTypeAlias(b *builder, ctx *Context, spec *lang.Spec, decl *tree_sitter.Node, source []byte, fileEnt *graph.Entity, types map[string]*graph.Entity, exported bool) {
	nameNode := decl.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := parser.NodeText(nameNode, source)
	props := docProperties(decl, source, spec)
	if exported {
		props["exported"] = true
	}
	if value := decl.ChildByFieldName("value"); value != nil {
		props["underlying"] = parser.NodeText(value, source)
	}
	ent := b.emit(graph.KindStruct, name, ctx.QualifiedName(name), decl, fileEnt, props)
	b.edge(graph.EdgeDefinesType, fileEnt, ent)
	types[name] = ent
}

// scriptHeritage extracts extends/implements names from a class or interface
// heritage clause.
func scriptHeritage(decl *tree_sitter.Node, source []byte) (extends, implements []string) {
	collect := func(clause *tree_sitter.Node, out *[]string) {
		for i := uint(0); i < clause.NamedChildCount(); i++ {
			c := clause.NamedChild(i)
			if c == nil {
				continue
			}
			switch c.Kind() {
			case "identifier", "type_identifier", "member_expression",
				"nested_type_identifier", "generic_type":
				*out = append(*out, parser.NodeText(c, source))
			}
		}
	}
	for i := uint(0); i < decl.NamedChildCount(); i++ {
		child := decl.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "class_heritage":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				clause := child.NamedChild(j)
				if clause == nil {
					continue
				}
				switch clause.Kind() {
				case "extends_clause":
					collect(clause, &extends)
				case "implements_clause":
					collect(clause, &implements)
				default:
					// JS class_heritage holds the expression directly
					extends = append(extends, parser.NodeText(clause, source))
				}
			}
		case "extends_type_clause", "extends_clause":
			collect(child, &extends)
		case "implements_clause":
			collect(child, &implements)
		}
	}
	return extends, implements
}
