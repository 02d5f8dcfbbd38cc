package metrics

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

// firstDecl parses source and returns the first node of the given kind.
// The returned cleanup closes the tree.
func firstDecl(t *testing.T, l lang.Language, source, kind string) (*tree_sitter.Node, []byte, func()) {
	t.Helper()
	src := []byte(source)
	tree, err := parser.Parse(l, src)
	if err != nil {
		t.Fatalf("parse %s: %v", l, err)
	}
	var decl *tree_sitter.Node
	parser.Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if decl == nil && n.Kind() == kind {
			decl = n
			return false
		}
		return decl == nil
	})
	if decl == nil {
		tree.Close()
		t.Fatalf("no %q node in source", kind)
	}
	return decl, src, func() { tree.Close() }
}

func goSpec() *lang.Spec { return lang.ForLanguage(lang.Go) }

func TestCyclomaticFloor(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func Plain(a int) int {
	return a + 1
}
`, "function_declaration")
	defer done()

	if got := Cyclomatic(decl, src, goSpec()); got != 1 {
		t.Errorf("cyclomatic = %d, want 1", got)
	}
}

func TestTwoBranchesOneLoop(t *testing.T) {
	decl, src, done := firstDecl(t, lang.JavaScript,
		`function f(x){ if(x) { return 1 } else { return 2 }; for(;;){} }`,
		"function_declaration")
	defer done()

	spec := lang.ForLanguage(lang.JavaScript)
	if got := Cyclomatic(decl, src, spec); got != 3 {
		t.Errorf("cyclomatic = %d, want 3", got)
	}
	if got := NestingDepth(decl, spec); got != 1 {
		t.Errorf("nesting = %d, want 1", got)
	}
}

func TestCognitiveNestedIfs(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(a, b bool) {
	if a {
		if b {
		}
	}
}
`, "function_declaration")
	defer done()

	// (1+0) outer if + (1+1) inner if
	if got := Cognitive(decl, src, goSpec()); got != 3 {
		t.Errorf("cognitive = %d, want 3", got)
	}
}

func TestCognitiveElseIsFlat(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(a, b bool) int {
	if a {
		return 1
	} else if b {
		return 2
	} else {
		return 3
	}
}
`, "function_declaration")
	defer done()

	// if +1, else-if flat +1, terminal else flat +1
	if got := Cognitive(decl, src, goSpec()); got != 3 {
		t.Errorf("cognitive = %d, want 3", got)
	}
}

func TestLogicalOperatorRuns(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(a, b, c bool) bool {
	if a && b || c {
		return true
	}
	return false
}
`, "function_declaration")
	defer done()

	// 1 + if + && + ||
	if got := Cyclomatic(decl, src, goSpec()); got != 4 {
		t.Errorf("cyclomatic = %d, want 4", got)
	}
	// if +1, chain: && run +1, || run +1
	if got := Cognitive(decl, src, goSpec()); got != 3 {
		t.Errorf("cognitive = %d, want 3", got)
	}
}

func TestCognitiveSelfRecursion(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func fact(n int) int {
	if n <= 1 {
		return 1
	}
	return n * fact(n - 1)
}
`, "function_declaration")
	defer done()

	// if +1, self call +1 (terminal return is not an else branch)
	if got := Cognitive(decl, src, goSpec()); got != 2 {
		t.Errorf("cognitive = %d, want 2", got)
	}
}

func TestCognitiveLabeledBreak(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(rows [][]int) int {
outer:
	for _, row := range rows {
		for _, v := range row {
			if v < 0 {
				break outer
			}
		}
	}
	return 0
}
`, "function_declaration")
	defer done()

	// for +1, inner for +2, if +3, labeled break +1
	if got := Cognitive(decl, src, goSpec()); got != 7 {
		t.Errorf("cognitive = %d, want 7", got)
	}
}

func TestCognitiveSkipsNestedNamedDeclarations(t *testing.T) {
	decl, src, done := firstDecl(t, lang.CSharp, `class C {
    int Outer(int x) {
        if (x > 0) { return x; }
        int Helper(int y) { if (y > 0) { if (y > 1) { return y; } } return 0; }
        return Helper(x);
    }
}
`, "method_declaration")
	defer done()

	spec := lang.ForLanguage(lang.CSharp)
	// Only the outer if counts; the local function scores independently.
	if got := Cognitive(decl, src, spec); got != 1 {
		t.Errorf("cognitive = %d, want 1", got)
	}
	// Cyclomatic scans the whole subtree: 1 + 3 ifs
	if got := Cyclomatic(decl, src, spec); got != 4 {
		t.Errorf("cyclomatic = %d, want 4", got)
	}
}

func TestSwitchCountsPerArmCyclomaticOncePerSwitchCognitive(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(x int) string {
	switch x {
	case 1:
		return "one"
	case 2:
		return "two"
	default:
		return "many"
	}
}
`, "function_declaration")
	defer done()

	if got := Cyclomatic(decl, src, goSpec()); got != 3 {
		t.Errorf("cyclomatic = %d, want 3", got)
	}
	if got := Cognitive(decl, src, goSpec()); got != 1 {
		t.Errorf("cognitive = %d, want 1", got)
	}
}

func TestNestingDepth(t *testing.T) {
	decl, _, done := firstDecl(t, lang.Go, `package p

func f(items []int) {
	for _, v := range items {
		if v > 0 {
			if v > 10 {
				_ = v
			}
		}
	}
}
`, "function_declaration")
	defer done()

	if got := NestingDepth(decl, goSpec()); got != 3 {
		t.Errorf("nesting = %d, want 3", got)
	}
}

func TestLinesOfCodeSkipsComments(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f() int {
	// line comment
	x := 1

	/* block
	   comment
	   spanning lines */
	x++ // trailing comment still code
	return x
}
`, "function_declaration")
	defer done()

	// func f() int {, x := 1, x++, return x, }
	if got := LinesOfCode(decl, src, goSpec()); got != 5 {
		t.Errorf("loc = %d, want 5", got)
	}
}

func TestParamCount(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(a, b int, c string, rest ...byte) {}
`, "function_declaration")
	defer done()
	if got := ParamCount(decl, src); got != 4 {
		t.Errorf("go param count = %d, want 4", got)
	}
}

func TestParamCountCVoid(t *testing.T) {
	decl, src, done := firstDecl(t, lang.C, `void noop(void) {}
`, "function_definition")
	defer done()
	if got := ParamCount(decl, src); got != 0 {
		t.Errorf("c void param count = %d, want 0", got)
	}
}

func TestParamCountC(t *testing.T) {
	decl, src, done := firstDecl(t, lang.C, `int max(int a, int *b) { return 0; }
`, "function_definition")
	defer done()
	if got := ParamCount(decl, src); got != 2 {
		t.Errorf("c param count = %d, want 2", got)
	}
}

func TestHotspot(t *testing.T) {
	m := Metrics{Cyclomatic: 16, Cognitive: 5, NestingDepth: 2, LinesOfCode: 40, ParamCount: 6}
	hot, reasons := m.Hotspot()
	if !hot {
		t.Fatal("expected hotspot")
	}
	if len(reasons) != 2 {
		t.Errorf("reasons = %v, want cyclomatic and params", reasons)
	}

	cold := Metrics{Cyclomatic: 1, Cognitive: 0, NestingDepth: 0, LinesOfCode: 3, ParamCount: 1}
	if hot, _ := cold.Hotspot(); hot {
		t.Error("unexpected hotspot")
	}
}

func TestComputeProducesProperties(t *testing.T) {
	decl, src, done := firstDecl(t, lang.Go, `package p

func f(a int) int {
	if a > 0 {
		return a
	}
	return -a
}
`, "function_declaration")
	defer done()

	m := Compute(decl, src, goSpec())
	if m.Cyclomatic != 2 || m.ParamCount != 1 {
		t.Errorf("unexpected metrics: %+v", m)
	}
	props := m.ToProperties()
	if props["cyclomatic"] != 2 {
		t.Errorf("properties missing cyclomatic: %v", props)
	}
	if _, ok := props["hotspot"]; ok {
		t.Errorf("non-hotspot should omit hotspot flag")
	}
}
