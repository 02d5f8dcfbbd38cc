// Package metrics computes complexity and size measures over a single
// declaration's syntax subtree. Every function here is pure and table-driven
// by the per-language node-kind sets in lang.Spec.
package metrics

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// Hotspot thresholds. An entity exceeding any one of these is flagged.
const (
	CyclomaticThreshold = 15
	CognitiveThreshold  = 20
	NestingThreshold    = 4
	LOCThreshold        = 100
	ParamThreshold      = 5
)

// Metrics is the combined record attached to a declaration entity.
type Metrics struct {
	Cyclomatic   int `json:"cyclomatic"`
	Cognitive    int `json:"cognitive"`
	NestingDepth int `json:"nestingDepth"`
	LinesOfCode  int `json:"linesOfCode"`
	ParamCount   int `json:"paramCount"`
}

// Compute evaluates all five measures for one declaration subtree.
func Compute(decl *tree_sitter.Node, source []byte, spec *lang.Spec) Metrics {
	return Metrics{
		Cyclomatic:   Cyclomatic(decl, source, spec),
		Cognitive:    Cognitive(decl, source, spec),
		NestingDepth: NestingDepth(decl, spec),
		LinesOfCode:  LinesOfCode(decl, source, spec),
		ParamCount:   ParamCount(decl, source),
	}
}

// Hotspot reports whether any metric exceeds its threshold, with the
// specific reasons.
func (m Metrics) Hotspot() (bool, []string) {
	var reasons []string
	if m.Cyclomatic > CyclomaticThreshold {
		reasons = append(reasons, fmt.Sprintf("cyclomatic %d > %d", m.Cyclomatic, CyclomaticThreshold))
	}
	if m.Cognitive > CognitiveThreshold {
		reasons = append(reasons, fmt.Sprintf("cognitive %d > %d", m.Cognitive, CognitiveThreshold))
	}
	if m.NestingDepth > NestingThreshold {
		reasons = append(reasons, fmt.Sprintf("nesting %d > %d", m.NestingDepth, NestingThreshold))
	}
	if m.LinesOfCode > LOCThreshold {
		reasons = append(reasons, fmt.Sprintf("loc %d > %d", m.LinesOfCode, LOCThreshold))
	}
	if m.ParamCount > ParamThreshold {
		reasons = append(reasons, fmt.Sprintf("params %d > %d", m.ParamCount, ParamThreshold))
	}
	return len(reasons) > 0, reasons
}

// ToProperties renders the record for an entity property bag.
func (m Metrics) ToProperties() map[string]any {
	props := map[string]any{
		"cyclomatic":   m.Cyclomatic,
		"cognitive":    m.Cognitive,
		"nestingDepth": m.NestingDepth,
		"linesOfCode":  m.LinesOfCode,
		"paramCount":   m.ParamCount,
	}
	if hot, reasons := m.Hotspot(); hot {
		props["hotspot"] = true
		props["hotspotReasons"] = reasons
	}
	return props
}

// Cyclomatic returns 1 plus one per branching construct and one per
// short-circuit logical operator, scanning the whole subtree. Nested
// function boundaries do not stop the count.
func Cyclomatic(decl *tree_sitter.Node, source []byte, spec *lang.Spec) int {
	branch := toSet(spec.BranchNodeKinds)
	binary := toSet(spec.BinaryExprKinds)

	complexity := 1
	parser.Walk(decl, func(n *tree_sitter.Node) bool {
		kind := n.Kind()
		if branch[kind] {
			complexity++
		}
		if binary[kind] && shortCircuitOperator(n, source, spec) != "" {
			complexity++
		}
		return true
	})
	return complexity
}

// NestingDepth returns the maximum depth reached by the nesting construct
// set, not descending into nested named declarations.
func NestingDepth(decl *tree_sitter.Node, spec *lang.Spec) int {
	nesting := toSet(spec.NestingNodeKinds)
	anon := toSet(spec.AnonymousFnKinds)
	funcs := toSet(spec.FunctionNodeKinds)

	var max int
	var walk func(node *tree_sitter.Node, depth int)
	walk = func(node *tree_sitter.Node, depth int) {
		for i := uint(0); i < node.ChildCount(); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			kind := child.Kind()
			if funcs[kind] {
				continue
			}
			d := depth
			if nesting[kind] || anon[kind] {
				d++
				if d > max {
					max = d
				}
			}
			walk(child, d)
		}
	}
	walk(decl, 0)
	return max
}

// LinesOfCode counts non-blank, non-comment source lines within the
// declaration's text span, skipping block comments that span lines.
func LinesOfCode(decl *tree_sitter.Node, source []byte, spec *lang.Spec) int {
	if decl == nil || int(decl.EndByte()) > len(source) {
		return 0
	}
	text := string(source[decl.StartByte():decl.EndByte()])

	count := 0
	inBlock := false
	for _, raw := range strings.Split(text, "\n") {
		line := raw
		hasCode := false
		for {
			if inBlock {
				if spec.BlockCommentEnd == "" {
					line = ""
					break
				}
				idx := strings.Index(line, spec.BlockCommentEnd)
				if idx < 0 {
					line = ""
					break
				}
				line = line[idx+len(spec.BlockCommentEnd):]
				inBlock = false
				continue
			}
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				break
			}
			if isLineComment(trimmed, spec) {
				break
			}
			if spec.BlockCommentStart != "" {
				if idx := strings.Index(line, spec.BlockCommentStart); idx >= 0 {
					if strings.TrimSpace(line[:idx]) != "" {
						hasCode = true
					}
					line = line[idx+len(spec.BlockCommentStart):]
					inBlock = true
					continue
				}
			}
			hasCode = true
			break
		}
		if hasCode {
			count++
		}
	}
	return count
}

func isLineComment(trimmed string, spec *lang.Spec) bool {
	for _, prefix := range spec.LineCommentPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// ParamCount returns the length of the declaration's parameter list.
func ParamCount(decl *tree_sitter.Node, source []byte) int {
	params := parametersNode(decl)
	if params == nil {
		return 0
	}
	count := 0
	for i := uint(0); i < params.NamedChildCount(); i++ {
		p := params.NamedChild(i)
		if p == nil || p.Kind() == "comment" {
			continue
		}
		count += countParamDecl(p, source)
	}
	return count
}

// parametersNode locates the parameter list, descending through C/C++
// declarators where "parameters" is not a direct field of the definition.
func parametersNode(decl *tree_sitter.Node) *tree_sitter.Node {
	if decl == nil {
		return nil
	}
	if params := decl.ChildByFieldName("parameters"); params != nil {
		return params
	}
	node := decl.ChildByFieldName("declarator")
	for node != nil {
		if params := node.ChildByFieldName("parameters"); params != nil {
			return params
		}
		node = node.ChildByFieldName("declarator")
	}
	return nil
}

// countParamDecl counts the parameters declared by one list element.
// Go groups several names under one parameter_declaration ("a, b int");
// C declares "void f(void)" with a nameless void element that counts as zero.
func countParamDecl(p *tree_sitter.Node, source []byte) int {
	switch p.Kind() {
	case "parameter_declaration", "variadic_parameter_declaration":
		names := 0
		for i := uint(0); i < p.NamedChildCount(); i++ {
			c := p.NamedChild(i)
			if c != nil && c.Kind() == "identifier" {
				names++
			}
		}
		if names > 0 {
			return names
		}
		if strings.TrimSpace(parser.NodeText(p, source)) == "void" {
			return 0
		}
		return 1
	default:
		return 1
	}
}

// shortCircuitOperator returns the short-circuit operator spelling of a
// binary expression, or "" if the operator is not short-circuit.
func shortCircuitOperator(n *tree_sitter.Node, source []byte, spec *lang.Spec) string {
	op := n.ChildByFieldName("operator")
	if op == nil {
		return ""
	}
	text := parser.NodeText(op, source)
	for _, candidate := range spec.ShortCircuitOps {
		if text == candidate {
			return text
		}
	}
	return ""
}

func toSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
