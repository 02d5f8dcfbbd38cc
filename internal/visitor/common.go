package visitor

import (
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/metrics"
	"github.com/DeusData/codegraph/internal/parser"
)

// New returns the visitor for a language.
func New(l lang.Language, scope *Scope) (Visitor, error) {
	switch l {
	case lang.Go:
		return NewGoVisitor(scope), nil
	case lang.C, lang.CPP:
		return NewCVisitor(l, scope), nil
	case lang.CSharp:
		return NewCSharpVisitor(scope), nil
	case lang.JavaScript, lang.TypeScript, lang.TSX:
		return NewScriptVisitor(l, scope), nil
	case lang.PageTemplate:
		return NewTemplateVisitor(scope), nil
	case lang.FlowDef:
		return NewFlowVisitor(scope), nil
	}
	return nil, fmt.Errorf("no visitor for language %s", l)
}

// declProperties builds the shared property bag for a function-like
// declaration: metrics, documentation, and the normalized signature.
func declProperties(decl *tree_sitter.Node, source []byte, spec *lang.Spec) map[string]any {
	props := map[string]any{
		"metrics":   metrics.Compute(decl, source, spec).ToProperties(),
		"signature": ExtractSignature(decl, source, spec.Language).ToProperties(),
	}
	if doc := ExtractDoc(decl, source, spec.Language); doc != nil {
		props["doc"] = doc.ToProperties()
	}
	return props
}

// docProperties attaches documentation only (type and field declarations).
func docProperties(decl *tree_sitter.Node, source []byte, spec *lang.Spec) map[string]any {
	props := map[string]any{}
	if doc := ExtractDoc(decl, source, spec.Language); doc != nil {
		props["doc"] = doc.ToProperties()
	}
	return props
}

// collectCalls gathers the callee expressions of every call inside a
// declaration body, in source order, deduplicated. The texts are unresolved;
// the reference pass matches them against the symbol registry.
func collectCalls(decl *tree_sitter.Node, source []byte, spec *lang.Spec) []string {
	callKinds := toSet(spec.CallNodeKinds)
	seen := map[string]bool{}
	var calls []string
	parser.Walk(decl, func(n *tree_sitter.Node) bool {
		if !callKinds[n.Kind()] {
			return true
		}
		callee := n.ChildByFieldName("function")
		if callee == nil {
			return true
		}
		text := parser.NodeText(callee, source)
		if text != "" && !seen[text] {
			seen[text] = true
			calls = append(calls, text)
		}
		return true
	})
	return calls
}

func toSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
