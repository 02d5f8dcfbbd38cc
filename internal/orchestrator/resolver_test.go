package orchestrator

import (
	"testing"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/visitor"
)

type entitySpec struct {
	kind   graph.Kind
	name   string
	parent *graph.Entity
	props  map[string]any
}

func addEntities(c *graph.Collector, scope *visitor.Scope, file string, specs []entitySpec) []*graph.Entity {
	result := &graph.FileResult{FilePath: file}
	out := make([]*graph.Entity, 0, len(specs))
	for _, s := range specs {
		qualified := file + "#" + s.name
		e := &graph.Entity{
			EntityID:   scope.EntityID(s.kind, qualified),
			ID:         scope.Counter.Next(),
			Kind:       s.kind,
			Name:       s.name,
			FilePath:   file,
			Language:   lang.Go,
			Properties: s.props,
		}
		if s.parent != nil {
			e.ParentID = s.parent.EntityID
		}
		result.Nodes = append(result.Nodes, e)
		out = append(out, e)
	}
	c.Add(result)
	return out
}

func findEdge(rels []*graph.Relationship, t graph.EdgeType, source, target *graph.Entity) *graph.Relationship {
	for _, r := range rels {
		if r.Type == t && r.SourceID == source.EntityID && r.TargetID == target.EntityID {
			return r
		}
	}
	return nil
}

func TestResolveCallsSameFile(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	ents := addEntities(c, scope, "a.go", []entitySpec{
		{kind: graph.KindFunction, name: "Run", props: map[string]any{"calls": []string{"helper"}}},
		{kind: graph.KindFunction, name: "helper"},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeCalls, ents[0], ents[1]) == nil {
		t.Errorf("missing same-file CALLS edge, got %d edges", len(rels))
	}
}

func TestResolveCallsViaImportMap(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	// two candidates named fetch; the import map disambiguates
	target := addEntities(c, scope, "lib/api.ts", []entitySpec{
		{kind: graph.KindFunction, name: "fetch"},
	})
	addEntities(c, scope, "lib/other.ts", []entitySpec{
		{kind: graph.KindFunction, name: "fetch"},
	})
	caller := addEntities(c, scope, "app.ts", []entitySpec{
		{kind: graph.KindImport, name: "./lib/api", props: map[string]any{
			"path": "./lib/api", "names": []string{"fetch"}, "resolvedPath": "lib/api.ts",
		}},
		{kind: graph.KindFunction, name: "main", props: map[string]any{"calls": []string{"fetch"}}},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeCalls, caller[1], target[0]) == nil {
		t.Errorf("import-mapped CALLS edge missing")
	}
	if len(rels) != 1 {
		t.Errorf("edges = %d, want 1 (ambiguous bare name must not resolve twice)", len(rels))
	}
}

func TestResolveCallsByQualifier(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	store := addEntities(c, scope, "store.go", []entitySpec{
		{kind: graph.KindStruct, name: "Store"},
	})
	method := addEntities(c, scope, "store.go", []entitySpec{
		{kind: graph.KindMethod, name: "save", parent: store[0]},
	})
	addEntities(c, scope, "disk.go", []entitySpec{
		{kind: graph.KindFunction, name: "save"},
	})
	caller := addEntities(c, scope, "main.go", []entitySpec{
		{kind: graph.KindFunction, name: "run", props: map[string]any{"calls": []string{"Store.save"}}},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeCalls, caller[0], method[0]) == nil {
		t.Errorf("qualifier-matched CALLS edge missing, got %v", rels)
	}
}

func TestResolveAmbiguousNameYieldsNoEdge(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	addEntities(c, scope, "a.go", []entitySpec{{kind: graph.KindFunction, name: "dup"}})
	addEntities(c, scope, "b.go", []entitySpec{{kind: graph.KindFunction, name: "dup"}})
	addEntities(c, scope, "main.go", []entitySpec{
		{kind: graph.KindFunction, name: "run", props: map[string]any{"calls": []string{"dup"}}},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if len(rels) != 0 {
		t.Errorf("ambiguous callee resolved: %v", rels)
	}
}

func TestResolveCallsViaSharedProjectExports(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	exported := addEntities(c, scope, "lib/util.ts", []entitySpec{
		{kind: graph.KindFunction, name: "format"},
	})
	addEntities(c, scope, "legacy/util.ts", []entitySpec{
		{kind: graph.KindFunction, name: "format"},
	})
	caller := addEntities(c, scope, "app.ts", []entitySpec{
		{kind: graph.KindFunction, name: "render", props: map[string]any{"calls": []string{"format"}}},
	})

	exports := map[string]string{"format": exported[0].EntityID}
	rels := NewSymbolResolver(scope, exports).Resolve(c)
	if findEdge(rels, graph.EdgeCalls, caller[0], exported[0]) == nil {
		t.Errorf("export-table CALLS edge missing")
	}
}

func TestResolveExtendsAndImplements(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	base := addEntities(c, scope, "animal.ts", []entitySpec{
		{kind: graph.KindClass, name: "Animal"},
		{kind: graph.KindInterface, name: "Walker"},
	})
	derived := addEntities(c, scope, "dog.ts", []entitySpec{
		{kind: graph.KindClass, name: "Dog", props: map[string]any{
			"baseTypes":  []string{"Animal"},
			"implements": []string{"Walker"},
		}},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeExtends, derived[0], base[0]) == nil {
		t.Errorf("EXTENDS edge missing")
	}
	if findEdge(rels, graph.EdgeImplements, derived[0], base[1]) == nil {
		t.Errorf("IMPLEMENTS edge missing")
	}
}

func TestResolveBaseTypeToInterfaceBecomesImplements(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	iface := addEntities(c, scope, "io.cs", []entitySpec{
		{kind: graph.KindInterface, name: "IReader"},
	})
	impl := addEntities(c, scope, "file.cs", []entitySpec{
		{kind: graph.KindClass, name: "FileReader", props: map[string]any{
			"baseTypes": []string{"IReader"},
		}},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeImplements, impl[0], iface[0]) == nil {
		t.Errorf("base type naming an interface should produce IMPLEMENTS")
	}
	if findEdge(rels, graph.EdgeExtends, impl[0], iface[0]) != nil {
		t.Errorf("unexpected EXTENDS to interface")
	}
}

func TestResolveRendersBySuffix(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	tmpl := addEntities(c, scope, "views/header.html", []entitySpec{
		{kind: graph.KindTemplate, name: "header.html"},
	})
	step := addEntities(c, scope, "ship.flow", []entitySpec{
		{kind: graph.KindFlowStep, name: "notify", props: map[string]any{
			"renders": []string{"header.html"},
		}},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeRenders, step[0], tmpl[0]) == nil {
		t.Errorf("RENDERS edge missing")
	}
}

func TestResolveHandlesJSONRoundTrippedProperties(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	ents := addEntities(c, scope, "a.go", []entitySpec{
		{kind: graph.KindFunction, name: "Run", props: map[string]any{
			"calls": []any{"helper", 42}, // spill artifacts decode lists as []any
		}},
		{kind: graph.KindFunction, name: "helper"},
	})

	rels := NewSymbolResolver(scope, nil).Resolve(c)
	if findEdge(rels, graph.EdgeCalls, ents[0], ents[1]) == nil {
		t.Errorf("CALLS edge missing for []any property")
	}
}

func TestResolveDoesNotMutateCollector(t *testing.T) {
	scope := visitor.NewScope("repo")
	c := graph.NewCollector()
	addEntities(c, scope, "a.go", []entitySpec{
		{kind: graph.KindFunction, name: "Run", props: map[string]any{"calls": []string{"helper"}}},
		{kind: graph.KindFunction, name: "helper"},
	})
	_, relsBefore := c.Counts()

	NewSymbolResolver(scope, nil).Resolve(c)
	if _, relsAfter := c.Counts(); relsAfter != relsBefore {
		t.Errorf("resolver mutated collector: %d -> %d edges", relsBefore, relsAfter)
	}
}
