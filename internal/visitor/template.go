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

// TemplateVisitor walks one page template. The file becomes a template
// entity; inline script blocks become template-script children; references
// to other templates (include/src attributes) are recorded for the reference
// pass, which turns them into RENDERS edges once targets are known.
type TemplateVisitor struct {
	scope *Scope
	log   *slog.Logger
}

func NewTemplateVisitor(scope *Scope) *TemplateVisitor {
	return &TemplateVisitor{scope: scope, log: slog.Default()}
}

func (v *TemplateVisitor) Language() lang.Language { return lang.PageTemplate }

func (v *TemplateVisitor) Visit(file FileInput) (*graph.FileResult, error) {
	tree, err := parser.Parse(lang.PageTemplate, file.Source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	defer tree.Close()

	b := newBuilder(v.scope, file)
	props := map[string]any{}
	tpl := b.emit(graph.KindTemplate, path.Base(file.Path), file.Path, tree.RootNode(), nil, props)

	scriptIndex := 0
	var renders []string
	parser.Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "script_element":
			v.visitScript(b, n, file.Source, tpl, &scriptIndex)
			return false
		case "element":
			if ref := templateReference(n, file.Source); ref != "" {
				renders = append(renders, ref)
			}
		}
		return true
	})
	if len(renders) > 0 {
		props["renders"] = renders
	}
	return b.result, nil
}

func (v *TemplateVisitor) visitScript(b *builder, node *tree_sitter.Node, source []byte, tpl *graph.Entity, index *int) {
	attrs := elementAttributes(node, source)
	name := attrs["src"]
	props := map[string]any{}
	if name != "" {
		props["src"] = name
		name = path.Base(name)
	} else {
		name = fmt.Sprintf("script#%d", *index)
	}
	*index++

	script := b.emit(graph.KindTemplateScript, name,
		fmt.Sprintf("%s#%s", b.file.Path, name), node, tpl, props)
	b.edge(graph.EdgeDefinesFunction, tpl, script)
}

// templateReference returns the template path an element pulls in, if any.
func templateReference(element *tree_sitter.Node, source []byte) string {
	tag := elementTag(element, source)
	attrs := elementAttributes(element, source)
	switch tag {
	case "include", "template", "partial":
		if src := attrs["src"]; src != "" {
			return src
		}
		return attrs["name"]
	case "link":
		href := attrs["href"]
		if strings.HasSuffix(href, ".html") || strings.HasSuffix(href, ".htm") {
			return href
		}
	}
	return ""
}

func elementTag(element *tree_sitter.Node, source []byte) string {
	start := parser.FindChildByKind(element, "start_tag")
	if start == nil {
		start = parser.FindChildByKind(element, "self_closing_tag")
	}
	if start == nil {
		return ""
	}
	if name := parser.FindChildByKind(start, "tag_name"); name != nil {
		return strings.ToLower(parser.NodeText(name, source))
	}
	return ""
}

func elementAttributes(element *tree_sitter.Node, source []byte) map[string]string {
	start := parser.FindChildByKind(element, "start_tag")
	if start == nil {
		start = parser.FindChildByKind(element, "self_closing_tag")
	}
	if start == nil {
		return nil
	}
	attrs := map[string]string{}
	for i := uint(0); i < start.NamedChildCount(); i++ {
		attr := start.NamedChild(i)
		if attr == nil || attr.Kind() != "attribute" {
			continue
		}
		nameNode := parser.FindChildByKind(attr, "attribute_name")
		if nameNode == nil {
			continue
		}
		name := strings.ToLower(parser.NodeText(nameNode, source))
		value := ""
		if quoted := parser.FindChildByKind(attr, "quoted_attribute_value"); quoted != nil {
			if inner := parser.FindChildByKind(quoted, "attribute_value"); inner != nil {
				value = parser.NodeText(inner, source)
			}
		} else if bare := parser.FindChildByKind(attr, "attribute_value"); bare != nil {
			value = parser.NodeText(bare, source)
		}
		attrs[name] = value
	}
	return attrs
}
