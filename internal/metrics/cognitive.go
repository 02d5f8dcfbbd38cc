package metrics

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// Cognitive computes cognitive complexity for one declaration.
//
// Rules: each branching/looping construct adds 1 + current nesting level;
// nesting deepens inside conditionals, loops, switches, catches, ternaries
// and anonymous functions; a chained else/else-if adds a flat 1; a run of
// same-kind short-circuit operators adds 1 (each operator-kind change starts
// a new run); a labeled break/continue or goto adds 1; a self-recursive call
// adds 1. Nested named declarations are not descended into — each gets its
// own independent score.
func Cognitive(decl *tree_sitter.Node, source []byte, spec *lang.Spec) int {
	w := &cogWalker{
		source:   source,
		declID:   decl.Id(),
		declName: declaredName(decl, source),
		nesting:  toSet(spec.NestingNodeKinds),
		anon:     toSet(spec.AnonymousFnKinds),
		funcs:    toSet(spec.FunctionNodeKinds),
		jumps:    toSet(spec.JumpNodeKinds),
		binary:   toSet(spec.BinaryExprKinds),
		calls:    toSet(spec.CallNodeKinds),
		spec:     spec,
	}
	w.walk(decl, 0)
	return w.score
}

type cogWalker struct {
	source   []byte
	declID   uintptr
	declName string
	nesting  map[string]bool
	anon     map[string]bool
	funcs    map[string]bool
	jumps    map[string]bool
	binary   map[string]bool
	calls    map[string]bool
	spec     *lang.Spec
	score    int
}

func (w *cogWalker) walk(node *tree_sitter.Node, level int) {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil {
			w.visit(child, level)
		}
	}
}

func (w *cogWalker) visit(node *tree_sitter.Node, level int) {
	kind := node.Kind()

	// Nested named declarations score independently.
	if w.funcs[kind] && node.Id() != w.declID {
		return
	}

	if w.anon[kind] {
		w.walk(node, level+1)
		return
	}

	if w.nesting[kind] {
		if isIf(kind) && isElseIf(node) {
			w.score++ // chained else-if: no nesting penalty
		} else {
			w.score += 1 + level
		}
		if isIf(kind) && hasPlainElse(node) {
			w.score++ // terminal else branch
		}
		w.walk(node, level+1)
		return
	}

	if w.jumps[kind] {
		if kind == "goto_statement" || node.NamedChildCount() > 0 {
			w.score++ // labeled jump
		}
		return
	}

	if w.binary[kind] {
		op := shortCircuitOperator(node, w.source, w.spec)
		if op != "" && !w.isChainNode(node.Parent()) {
			w.score += w.chainPenalty(node)
			w.walkChainOperands(node, level)
			return
		}
	}

	if w.calls[kind] && w.declName != "" && w.isSelfCall(node) {
		w.score++
	}

	w.walk(node, level)
}

// isChainNode reports whether a node is a short-circuit binary expression
// (part of a logical operator chain).
func (w *cogWalker) isChainNode(node *tree_sitter.Node) bool {
	if node == nil || !w.binary[node.Kind()] {
		return false
	}
	return shortCircuitOperator(node, w.source, w.spec) != ""
}

// chainPenalty counts 1 per run of same-kind operators in a chain:
// a && b || c costs 2 (one for the && run, one for the || run).
func (w *cogWalker) chainPenalty(root *tree_sitter.Node) int {
	var ops []string
	w.collectChainOps(root, &ops)
	if len(ops) == 0 {
		return 0
	}
	penalty := 1
	for i := 1; i < len(ops); i++ {
		if ops[i] != ops[i-1] {
			penalty++
		}
	}
	return penalty
}

// collectChainOps gathers chain operators in source order (in-order walk).
func (w *cogWalker) collectChainOps(node *tree_sitter.Node, ops *[]string) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	if w.isChainNode(left) {
		w.collectChainOps(left, ops)
	}
	if op := node.ChildByFieldName("operator"); op != nil {
		*ops = append(*ops, parser.NodeText(op, w.source))
	}
	if w.isChainNode(right) {
		w.collectChainOps(right, ops)
	}
}

// walkChainOperands visits the non-chain operands of a chain so nested
// constructs (ternaries, calls) still score, without re-counting the chain.
func (w *cogWalker) walkChainOperands(node *tree_sitter.Node, level int) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if w.isChainNode(child) {
			w.walkChainOperands(child, level)
		} else {
			w.visit(child, level)
		}
	}
}

// isSelfCall reports whether a call node invokes the declaration by name.
func (w *cogWalker) isSelfCall(node *tree_sitter.Node) bool {
	callee := node.ChildByFieldName("function")
	if callee == nil {
		return false
	}
	text := parser.NodeText(callee, w.source)
	return text == w.declName ||
		strings.HasSuffix(text, "."+w.declName) ||
		strings.HasSuffix(text, "::"+w.declName)
}

func isIf(kind string) bool {
	return kind == "if_statement"
}

// isElseIf reports whether an if statement hangs off another if's else.
func isElseIf(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	switch parent.Kind() {
	case "else_clause":
		return true
	case "if_statement":
		alt := parent.ChildByFieldName("alternative")
		return alt != nil && alt.Id() == node.Id()
	}
	return false
}

// hasPlainElse reports whether an if statement carries a terminal else
// branch (one that is not a chained if).
func hasPlainElse(node *tree_sitter.Node) bool {
	alt := node.ChildByFieldName("alternative")
	if alt == nil {
		return false
	}
	switch alt.Kind() {
	case "if_statement":
		return false
	case "else_clause":
		for i := uint(0); i < alt.NamedChildCount(); i++ {
			c := alt.NamedChild(i)
			if c != nil && c.Kind() == "if_statement" {
				return false
			}
		}
		return true
	}
	return true
}

// declaredName extracts the declaration's own name for recursion detection,
// descending C/C++ declarators when there is no direct name field.
func declaredName(decl *tree_sitter.Node, source []byte) string {
	if name := decl.ChildByFieldName("name"); name != nil {
		return parser.NodeText(name, source)
	}
	node := decl.ChildByFieldName("declarator")
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier", "qualified_identifier":
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
