package visitor

import (
	"testing"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
)

const tsSource = `import { EventEmitter } from "./events";
import * as util from "./util";

export interface Store {
  get(key: string): string;
}

export class MemoryStore implements Store {
  private items: Map<string, string>;

  constructor() {
    this.items = new Map();
  }

  get(key: string): string {
    if (!this.items.has(key)) {
      return "";
    }
    return this.items.get(key);
  }
}

export function openStore(name: string): Store {
  return new MemoryStore();
}

const sweep = (store: MemoryStore) => {
  store.get("tmp");
};
`

func TestScriptVisitorClassesAndInterfaces(t *testing.T) {
	result := visitFile(t, lang.TypeScript, "src/store.ts", tsSource)

	store := findNode(result, graph.KindInterface, "Store")
	memory := findNode(result, graph.KindClass, "MemoryStore")
	if store == nil || memory == nil {
		t.Fatal("missing types")
	}
	if memory.Properties["exported"] != true {
		t.Error("MemoryStore should be marked exported")
	}
	if findEdge(result, graph.EdgeImplements, memory.EntityID, store.EntityID) == nil {
		t.Error("missing IMPLEMENTS MemoryStore -> Store")
	}

	get := findNode(result, graph.KindMethod, "get")
	if get == nil {
		t.Fatal("missing get method")
	}
	if findEdge(result, graph.EdgeHasMethod, memory.EntityID, get.EntityID) == nil &&
		findEdge(result, graph.EdgeHasMethod, store.EntityID, get.EntityID) == nil {
		t.Error("get not bound to a type")
	}
	if p := findNode(result, graph.KindProperty, "items"); p == nil {
		t.Error("missing items property")
	}
}

func TestScriptVisitorFunctions(t *testing.T) {
	result := visitFile(t, lang.TypeScript, "src/store.ts", tsSource)

	open := findNode(result, graph.KindFunction, "openStore")
	if open == nil {
		t.Fatal("missing openStore")
	}
	if open.Properties["exported"] != true {
		t.Error("openStore should be marked exported")
	}
	sweep := findNode(result, graph.KindFunction, "sweep")
	if sweep == nil {
		t.Fatal("arrow-function const should become a function entity")
	}
	if _, ok := sweep.Properties["exported"]; ok {
		t.Error("sweep is not exported")
	}
	calls, _ := sweep.Properties["calls"].([]string)
	if len(calls) != 1 || calls[0] != "store.get" {
		t.Errorf("calls = %v", calls)
	}
}

func TestScriptVisitorImports(t *testing.T) {
	result := visitFile(t, lang.TypeScript, "src/store.ts", tsSource)

	events := findNode(result, graph.KindImport, "events")
	if events == nil {
		t.Fatal("missing ./events import")
	}
	names, _ := events.Properties["names"].([]string)
	if len(names) != 1 || names[0] != "EventEmitter" {
		t.Errorf("names = %v", names)
	}
	util := findNode(result, graph.KindImport, "util")
	if util == nil || util.Properties["namespaceAlias"] != "util" {
		t.Errorf("namespace import = %+v", util)
	}
	if got := countEdges(result, graph.EdgeImports); got != 2 {
		t.Errorf("IMPORTS edges = %d, want 2", got)
	}
}

func TestScriptVisitorJavaScriptClassHeritage(t *testing.T) {
	result := visitFile(t, lang.JavaScript, "src/a.js", `class Base {}
class Child extends Base {
  run() { return 1; }
}
`)
	base := findNode(result, graph.KindClass, "Base")
	child := findNode(result, graph.KindClass, "Child")
	if base == nil || child == nil {
		t.Fatal("missing classes")
	}
	if findEdge(result, graph.EdgeExtends, child.EntityID, base.EntityID) == nil {
		t.Error("missing EXTENDS Child -> Base")
	}
}

func TestScriptVisitorTSX(t *testing.T) {
	result := visitFile(t, lang.TSX, "src/App.tsx", `export function App(): JSX.Element {
  return <div>hello</div>;
}
`)
	if fn := findNode(result, graph.KindFunction, "App"); fn == nil {
		t.Error("missing App component function")
	}
}
