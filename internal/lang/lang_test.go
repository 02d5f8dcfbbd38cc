package lang

import "testing"

func TestForExtension(t *testing.T) {
	tests := []struct {
		ext  string
		want Language
	}{
		{".go", Go},
		{".c", C},
		{".h", C},
		{".cpp", CPP},
		{".hpp", CPP},
		{".cs", CSharp},
		{".js", JavaScript},
		{".ts", TypeScript},
		{".tsx", TSX},
		{".html", PageTemplate},
		{".flow", FlowDef},
	}
	for _, tt := range tests {
		spec := ForExtension(tt.ext)
		if spec == nil {
			t.Fatalf("ForExtension(%q) = nil", tt.ext)
		}
		if spec.Language != tt.want {
			t.Errorf("ForExtension(%q).Language = %q, want %q", tt.ext, spec.Language, tt.want)
		}
	}
}

func TestForLanguage(t *testing.T) {
	for _, l := range AllLanguages() {
		if ForLanguage(l) == nil {
			t.Errorf("ForLanguage(%q) = nil", l)
		}
	}
}

func TestSharedProjectFamily(t *testing.T) {
	for _, l := range []Language{JavaScript, TypeScript, TSX} {
		if !ForLanguage(l).SharedProject {
			t.Errorf("%q should be shared-project", l)
		}
	}
	for _, l := range []Language{C, CPP, CSharp, Go, PageTemplate, FlowDef} {
		if ForLanguage(l).SharedProject {
			t.Errorf("%q should not be shared-project", l)
		}
	}
}

func TestDetectSniffsAmbiguousExtensions(t *testing.T) {
	tests := []struct {
		path    string
		content string
		want    Language
		ok      bool
	}{
		{"src/pages/home.xml", "", PageTemplate, true},
		{"src/misc/data.xml", "<records><r/></records>", "", false},
		{"src/misc/widget.xml", "<template name=\"widget\"/>", PageTemplate, true},
		{"orders.flow.yaml", "", FlowDef, true},
		{"deploy.yaml", "image: nginx\n", "", false},
		{"pipeline.yml", "flow: order-intake\nsteps:\n  - id: a\n", FlowDef, true},
		{"main.go", "", Go, true},
	}
	for _, tt := range tests {
		got, ok := Detect(tt.path, []byte(tt.content))
		if ok != tt.ok || got != tt.want {
			t.Errorf("Detect(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}
