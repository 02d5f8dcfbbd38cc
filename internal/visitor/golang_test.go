package visitor

import (
	"testing"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
)

const goSource = `package server

import (
	"fmt"
	nethttp "net/http"
)

// Handler routes requests.
type Handler struct {
	routes map[string]nethttp.HandlerFunc
	Logger *fmt.Stringer
}

type Router interface {
	Route(path string) error
}

// Serve dispatches one request.
func (h *Handler) Serve(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	return h.dispatch(path)
}

func (h *Handler) dispatch(path string) error { return nil }

func NewHandler() *Handler {
	return &Handler{routes: map[string]nethttp.HandlerFunc{}}
}
`

func TestGoVisitorEntities(t *testing.T) {
	result := visitFile(t, lang.Go, "internal/server/handler.go", goSource)

	handler := findNode(result, graph.KindStruct, "Handler")
	if handler == nil {
		t.Fatal("missing Handler struct")
	}
	file := findNode(result, graph.KindFile, "handler.go")
	if file == nil {
		t.Fatal("missing file entity")
	}
	if findEdge(result, graph.EdgeDefinesType, file.EntityID, handler.EntityID) == nil {
		t.Error("missing DEFINES_TYPE file -> Handler")
	}
	if iface := findNode(result, graph.KindInterface, "Router"); iface == nil {
		t.Error("missing Router interface")
	}
	if fn := findNode(result, graph.KindFunction, "NewHandler"); fn == nil {
		t.Error("missing NewHandler function")
	}
}

func TestGoVisitorQualifiedNames(t *testing.T) {
	result := visitFile(t, lang.Go, "internal/server/handler.go", goSource)

	serve := findNode(result, graph.KindMethod, "Serve")
	if serve == nil {
		t.Fatal("missing Serve method")
	}
	scope := NewScope("repo")
	want := scope.EntityID(graph.KindMethod, "server.Handler.Serve")
	if serve.EntityID != want {
		t.Errorf("Serve entity id not derived from server.Handler.Serve")
	}
}

func TestGoVisitorMethodBinding(t *testing.T) {
	result := visitFile(t, lang.Go, "internal/server/handler.go", goSource)

	handler := findNode(result, graph.KindStruct, "Handler")
	serve := findNode(result, graph.KindMethod, "Serve")
	if handler == nil || serve == nil {
		t.Fatal("missing entities")
	}
	if findEdge(result, graph.EdgeHasMethod, handler.EntityID, serve.EntityID) == nil {
		t.Error("missing HAS_METHOD Handler -> Serve")
	}
	if serve.ParentID != handler.EntityID {
		t.Errorf("Serve parent = %q, want Handler", serve.ParentID)
	}
}

func TestGoVisitorFields(t *testing.T) {
	result := visitFile(t, lang.Go, "internal/server/handler.go", goSource)

	if f := findNode(result, graph.KindField, "routes"); f == nil {
		t.Error("missing routes field")
	}
	if got := countEdges(result, graph.EdgeHasField); got != 2 {
		t.Errorf("HAS_FIELD edges = %d, want 2", got)
	}
}

func TestGoVisitorImports(t *testing.T) {
	result := visitFile(t, lang.Go, "internal/server/handler.go", goSource)

	http := findNode(result, graph.KindImport, "http")
	if http == nil {
		t.Fatal("missing net/http import")
	}
	if http.Properties["alias"] != "nethttp" {
		t.Errorf("alias = %v", http.Properties["alias"])
	}
	if got := countEdges(result, graph.EdgeImports); got != 2 {
		t.Errorf("IMPORTS edges = %d, want 2", got)
	}
}

func TestGoVisitorCallsAndMetrics(t *testing.T) {
	result := visitFile(t, lang.Go, "internal/server/handler.go", goSource)

	serve := findNode(result, graph.KindMethod, "Serve")
	if serve == nil {
		t.Fatal("missing Serve method")
	}
	calls, _ := serve.Properties["calls"].([]string)
	if len(calls) != 2 {
		t.Errorf("calls = %v, want fmt.Errorf and h.dispatch", calls)
	}
	m, ok := serve.Properties["metrics"].(map[string]any)
	if !ok || m["cyclomatic"] != 2 {
		t.Errorf("metrics = %v", serve.Properties["metrics"])
	}
	doc, ok := serve.Properties["doc"].(map[string]any)
	if !ok || doc["summary"] != "Serve dispatches one request." {
		t.Errorf("doc = %v", serve.Properties["doc"])
	}
}

func TestGoVisitorMethodBeforeType(t *testing.T) {
	result := visitFile(t, lang.Go, "a.go", `package p

func (w *Widget) Render() string { return "" }

type Widget struct{}
`)
	widget := findNode(result, graph.KindStruct, "Widget")
	render := findNode(result, graph.KindMethod, "Render")
	if widget == nil || render == nil {
		t.Fatal("missing entities")
	}
	if findEdge(result, graph.EdgeHasMethod, widget.EntityID, render.EntityID) == nil {
		t.Error("method declared before its type should still bind")
	}
}
