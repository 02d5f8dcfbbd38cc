package visitor

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/parser"
)

func parseFirst(t *testing.T, l lang.Language, source, kind string) (*tree_sitter.Node, []byte, func()) {
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

func TestExtractDocGoComment(t *testing.T) {
	decl, src, done := parseFirst(t, lang.Go, `package p

// Add sums two ints.
// It never overflows in practice.
func Add(a, b int) int { return a + b }
`, "function_declaration")
	defer done()

	doc := ExtractDoc(decl, src, lang.Go)
	if doc == nil {
		t.Fatal("expected documentation")
	}
	want := "Add sums two ints. It never overflows in practice."
	if doc.Summary != want {
		t.Errorf("summary = %q, want %q", doc.Summary, want)
	}
}

func TestExtractDocGoDeprecated(t *testing.T) {
	decl, src, done := parseFirst(t, lang.Go, `package p

// Old does a thing.
// Deprecated: use New instead.
func Old() {}
`, "function_declaration")
	defer done()

	doc := ExtractDoc(decl, src, lang.Go)
	if doc == nil {
		t.Fatal("expected documentation")
	}
	if len(doc.Tags) != 1 || doc.Tags[0].Tag != "deprecated" {
		t.Fatalf("tags = %+v, want one deprecated tag", doc.Tags)
	}
	if doc.Tags[0].Description != "use New instead." {
		t.Errorf("description = %q", doc.Tags[0].Description)
	}
}

func TestExtractDocBlankLineBreaksAttachment(t *testing.T) {
	decl, src, done := parseFirst(t, lang.Go, `package p

// stray comment, not attached

func Bare() {}
`, "function_declaration")
	defer done()

	if doc := ExtractDoc(decl, src, lang.Go); doc != nil {
		t.Errorf("expected nil doc, got %+v", doc)
	}
}

func TestExtractDocJSDoc(t *testing.T) {
	decl, src, done := parseFirst(t, lang.JavaScript, `/**
 * Greets someone.
 * @param {string} name who to greet
 * @returns {string} the greeting
 * @throws RangeError when name is empty
 */
function greet(name) { return 'hi ' + name; }
`, "function_declaration")
	defer done()

	doc := ExtractDoc(decl, src, lang.JavaScript)
	if doc == nil {
		t.Fatal("expected documentation")
	}
	if doc.Summary != "Greets someone." {
		t.Errorf("summary = %q", doc.Summary)
	}
	if len(doc.Tags) != 3 {
		t.Fatalf("tags = %+v, want 3", doc.Tags)
	}
	p := doc.Tags[0]
	if p.Tag != "param" || p.Name != "name" || p.Type != "string" || p.Description != "who to greet" {
		t.Errorf("param tag = %+v", p)
	}
	if doc.Tags[1].Tag != "returns" {
		t.Errorf("second tag = %+v, want returns", doc.Tags[1])
	}
	if th := doc.Tags[2]; th.Tag != "throws" || th.Type != "RangeError" {
		t.Errorf("throws tag = %+v", th)
	}
}

func TestExtractDocDoxygenBackslashTags(t *testing.T) {
	decl, src, done := parseFirst(t, lang.CPP, `/**
 * \brief Clamps a value.
 * \param v the value
 * \return the clamped value
 */
int clamp(int v) { return v; }
`, "function_definition")
	defer done()

	doc := ExtractDoc(decl, src, lang.CPP)
	if doc == nil {
		t.Fatal("expected documentation")
	}
	if doc.Summary != "Clamps a value." {
		t.Errorf("summary = %q", doc.Summary)
	}
	if len(doc.Tags) != 2 || doc.Tags[0].Tag != "param" || doc.Tags[1].Tag != "returns" {
		t.Errorf("tags = %+v", doc.Tags)
	}
}

func TestExtractDocCSharpXML(t *testing.T) {
	decl, src, done := parseFirst(t, lang.CSharp, `class C {
    /// <summary>
    /// Parses the input.
    /// </summary>
    /// <param name="text">raw text</param>
    /// <returns>the parsed value</returns>
    /// <exception cref="FormatException">on bad input</exception>
    int Parse(string text) { return 0; }
}
`, "method_declaration")
	defer done()

	doc := ExtractDoc(decl, src, lang.CSharp)
	if doc == nil {
		t.Fatal("expected documentation")
	}
	if doc.Summary != "Parses the input." {
		t.Errorf("summary = %q", doc.Summary)
	}
	byTag := map[string]DocTag{}
	for _, tag := range doc.Tags {
		byTag[tag.Tag] = tag
	}
	if p := byTag["param"]; p.Name != "text" || p.Description != "raw text" {
		t.Errorf("param = %+v", p)
	}
	if r := byTag["returns"]; r.Description != "the parsed value" {
		t.Errorf("returns = %+v", r)
	}
	if e := byTag["throws"]; e.Type != "FormatException" {
		t.Errorf("throws = %+v", e)
	}
}

func TestExtractDocUnknownTagDropped(t *testing.T) {
	decl, src, done := parseFirst(t, lang.JavaScript, `/**
 * Does work.
 * @internal
 * @param {number} n count
 */
function work(n) {}
`, "function_declaration")
	defer done()

	doc := ExtractDoc(decl, src, lang.JavaScript)
	if doc == nil {
		t.Fatal("expected documentation")
	}
	if len(doc.Tags) != 1 || doc.Tags[0].Tag != "param" {
		t.Errorf("tags = %+v, want only the param tag", doc.Tags)
	}
}
