package visitor

import (
	"testing"

	"github.com/DeusData/codegraph/internal/lang"
)

func TestSignatureGoMultiNameAndVariadic(t *testing.T) {
	decl, src, done := parseFirst(t, lang.Go, `package p

func f(a, b int, c string, rest ...byte) (int, error) { return 0, nil }
`, "function_declaration")
	defer done()

	sig := ExtractSignature(decl, src, lang.Go)
	if len(sig.Params) != 4 {
		t.Fatalf("params = %+v, want 4", sig.Params)
	}
	if sig.Params[0].Name != "a" || sig.Params[0].Type != "int" {
		t.Errorf("param 0 = %+v", sig.Params[0])
	}
	if sig.Params[1].Name != "b" || sig.Params[1].Type != "int" {
		t.Errorf("param 1 = %+v", sig.Params[1])
	}
	if !sig.Params[3].Variadic || sig.Params[3].Name != "rest" {
		t.Errorf("variadic param = %+v", sig.Params[3])
	}
	if len(sig.Returns) != 2 || sig.Returns[0] != "int" || sig.Returns[1] != "error" {
		t.Errorf("returns = %v", sig.Returns)
	}
}

func TestSignatureGoSingleReturn(t *testing.T) {
	decl, src, done := parseFirst(t, lang.Go, `package p

func g() error { return nil }
`, "function_declaration")
	defer done()

	sig := ExtractSignature(decl, src, lang.Go)
	if len(sig.Returns) != 1 || sig.Returns[0] != "error" {
		t.Errorf("returns = %v", sig.Returns)
	}
}

func TestSignatureCVoid(t *testing.T) {
	decl, src, done := parseFirst(t, lang.C, `void noop(void) {}
`, "function_definition")
	defer done()

	sig := ExtractSignature(decl, src, lang.C)
	if len(sig.Params) != 0 {
		t.Errorf("params = %+v, want none", sig.Params)
	}
	if len(sig.Returns) != 1 || sig.Returns[0] != "void" {
		t.Errorf("returns = %v", sig.Returns)
	}
}

func TestSignatureCppReference(t *testing.T) {
	decl, src, done := parseFirst(t, lang.CPP, `int sum(int a, const int& b) { return a + b; }
`, "function_definition")
	defer done()

	sig := ExtractSignature(decl, src, lang.CPP)
	if len(sig.Params) != 2 {
		t.Fatalf("params = %+v, want 2", sig.Params)
	}
	if sig.Params[0].Name != "a" || sig.Params[0].ByRef {
		t.Errorf("param 0 = %+v", sig.Params[0])
	}
	if sig.Params[1].Name != "b" || !sig.Params[1].ByRef {
		t.Errorf("param 1 = %+v, want by-ref b", sig.Params[1])
	}
}

func TestSignatureCSharpModifiers(t *testing.T) {
	decl, src, done := parseFirst(t, lang.CSharp, `class C {
    public static int Take(ref int a, int b = 3, params int[] rest) { return a; }
}
`, "method_declaration")
	defer done()

	sig := ExtractSignature(decl, src, lang.CSharp)
	if sig.Visibility != "public" {
		t.Errorf("visibility = %q, want public", sig.Visibility)
	}
	if len(sig.Modifiers) != 1 || sig.Modifiers[0] != "static" {
		t.Errorf("modifiers = %v", sig.Modifiers)
	}
	if len(sig.Params) != 3 {
		t.Fatalf("params = %+v, want 3", sig.Params)
	}
	if !sig.Params[0].ByRef {
		t.Errorf("param 0 = %+v, want by-ref", sig.Params[0])
	}
	if !sig.Params[1].Optional || sig.Params[1].Default != "3" {
		t.Errorf("param 1 = %+v, want optional default 3", sig.Params[1])
	}
	if !sig.Params[2].Variadic {
		t.Errorf("param 2 = %+v, want variadic", sig.Params[2])
	}
	if len(sig.Returns) != 1 || sig.Returns[0] != "int" {
		t.Errorf("returns = %v", sig.Returns)
	}
}

func TestSignatureTypeScript(t *testing.T) {
	decl, src, done := parseFirst(t, lang.TypeScript,
		`function f(a: number, b?: string, c: boolean = true, ...rest: number[]): string { return ""; }
`, "function_declaration")
	defer done()

	sig := ExtractSignature(decl, src, lang.TypeScript)
	if len(sig.Params) != 4 {
		t.Fatalf("params = %+v, want 4", sig.Params)
	}
	if sig.Params[0].Name != "a" || sig.Params[0].Type != "number" || sig.Params[0].Optional {
		t.Errorf("param 0 = %+v", sig.Params[0])
	}
	if !sig.Params[1].Optional {
		t.Errorf("param 1 = %+v, want optional", sig.Params[1])
	}
	if !sig.Params[2].Optional || sig.Params[2].Default != "true" {
		t.Errorf("param 2 = %+v, want default true", sig.Params[2])
	}
	if !sig.Params[3].Variadic || sig.Params[3].Name != "rest" {
		t.Errorf("param 3 = %+v, want variadic rest", sig.Params[3])
	}
	if len(sig.Returns) != 1 || sig.Returns[0] != "string" {
		t.Errorf("returns = %v", sig.Returns)
	}
}

func TestSignatureJavaScriptDefaults(t *testing.T) {
	decl, src, done := parseFirst(t, lang.JavaScript,
		`function f(a, b = 2, ...rest) {}
`, "function_declaration")
	defer done()

	sig := ExtractSignature(decl, src, lang.JavaScript)
	if len(sig.Params) != 3 {
		t.Fatalf("params = %+v, want 3", sig.Params)
	}
	if sig.Params[0].Name != "a" {
		t.Errorf("param 0 = %+v", sig.Params[0])
	}
	if !sig.Params[1].Optional || sig.Params[1].Default != "2" {
		t.Errorf("param 1 = %+v", sig.Params[1])
	}
	if !sig.Params[2].Variadic {
		t.Errorf("param 2 = %+v, want variadic", sig.Params[2])
	}
}

func TestSignatureToProperties(t *testing.T) {
	sig := &Signature{
		Params:     []Param{{Name: "a", Type: "int"}},
		Returns:    []string{"error"},
		Visibility: "public",
	}
	props := sig.ToProperties()
	if props["visibility"] != "public" {
		t.Errorf("visibility missing: %v", props)
	}
	params, ok := props["params"].([]map[string]any)
	if !ok || len(params) != 1 || params[0]["name"] != "a" {
		t.Errorf("params = %v", props["params"])
	}
}
