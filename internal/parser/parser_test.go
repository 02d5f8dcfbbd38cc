package parser

import (
	"testing"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/DeusData/codegraph/internal/lang"
)

func TestParseGo(t *testing.T) {
	source := []byte(`package main

func Hello() string {
	return "hello"
}

func Add(a, b int) int {
	return a + b
}
`)
	tree, err := Parse(lang.Go, source)
	if err != nil {
		t.Fatalf("Parse Go: %v", err)
	}
	defer tree.Close()

	var funcCount int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		if n.Kind() == "function_declaration" {
			funcCount++
		}
		return true
	})
	if funcCount != 2 {
		t.Errorf("expected 2 function_declarations, got %d", funcCount)
	}
}

func TestParseCSharp(t *testing.T) {
	source := []byte(`namespace Demo {
    public class Greeter {
        public string Greet(string name) { return "hi " + name; }
    }
}
`)
	tree, err := Parse(lang.CSharp, source)
	if err != nil {
		t.Fatalf("Parse C#: %v", err)
	}
	defer tree.Close()

	var classCount, methodCount int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "class_declaration":
			classCount++
		case "method_declaration":
			methodCount++
		}
		return true
	})
	if classCount != 1 || methodCount != 1 {
		t.Errorf("expected 1 class and 1 method, got %d and %d", classCount, methodCount)
	}
}

func TestParseCpp(t *testing.T) {
	source := []byte(`namespace geo {
class Circle {
public:
    double Area() const { return 3.14 * r * r; }
private:
    double r;
};
}
`)
	tree, err := Parse(lang.CPP, source)
	if err != nil {
		t.Fatalf("Parse C++: %v", err)
	}
	defer tree.Close()

	var nsCount, classCount int
	Walk(tree.RootNode(), func(n *tree_sitter.Node) bool {
		switch n.Kind() {
		case "namespace_definition":
			nsCount++
		case "class_specifier":
			classCount++
		}
		return true
	})
	if nsCount != 1 || classCount != 1 {
		t.Errorf("expected 1 namespace and 1 class, got %d and %d", nsCount, classCount)
	}
}

func TestParseUnsupportedLanguage(t *testing.T) {
	if _, err := Parse(lang.FlowDef, []byte("flow: x")); err == nil {
		t.Fatal("expected error for grammarless language")
	}
}

func TestNodeText(t *testing.T) {
	source := []byte("package main")
	tree, err := Parse(lang.Go, source)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	defer tree.Close()
	if got := NodeText(tree.RootNode(), source); got != "package main" {
		t.Errorf("NodeText = %q", got)
	}
}
