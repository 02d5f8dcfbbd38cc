package orchestrator

import (
	"log/slog"
	"strings"
	"time"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/visitor"
)

// Resolver is the reference pass: it reads the merged graph and returns the
// cross-entity relationships the per-file visitors could not see. It must
// not mutate its input; a reference that cannot be resolved simply yields
// no edge.
type Resolver interface {
	Resolve(c *graph.Collector) []*graph.Relationship
}

// symbolResolver resolves by symbol table: same file first, then the import
// map, then a qualifier match against the owner's name, then a unique
// simple-name match, and finally the shared-project export table.
type symbolResolver struct {
	scope     *visitor.Scope
	tsExports map[string]string
	log       *slog.Logger
}

// NewSymbolResolver returns the default resolver. tsExports may be nil when
// the run saw no shared-project files.
func NewSymbolResolver(scope *visitor.Scope, tsExports map[string]string) Resolver {
	return &symbolResolver{scope: scope, tsExports: tsExports, log: slog.Default()}
}

// registry indexes the merged graph for one Resolve call.
type registry struct {
	// byFile: file path -> simple name -> callable entity
	byFile map[string]map[string]*graph.Entity
	// byName: simple name -> callable entities
	byName map[string][]*graph.Entity
	// typesByName: simple name -> type entities
	typesByName map[string][]*graph.Entity
	// imports: file path -> imported simple name -> resolved file path
	imports map[string]map[string]string
	// templates: file path -> template entity
	templates map[string]*graph.Entity
	// parentName: entity id -> owner's simple name
	parentName map[string]string
}

func buildRegistry(c *graph.Collector) *registry {
	r := &registry{
		byFile:      map[string]map[string]*graph.Entity{},
		byName:      map[string][]*graph.Entity{},
		typesByName: map[string][]*graph.Entity{},
		imports:     map[string]map[string]string{},
		templates:   map[string]*graph.Entity{},
		parentName:  map[string]string{},
	}
	for _, n := range c.Nodes() {
		if parent, ok := c.Node(n.ParentID); ok {
			r.parentName[n.EntityID] = parent.Name
		}
		switch n.Kind {
		case graph.KindFunction, graph.KindMethod:
			if r.byFile[n.FilePath] == nil {
				r.byFile[n.FilePath] = map[string]*graph.Entity{}
			}
			r.byFile[n.FilePath][n.Name] = n
			r.byName[n.Name] = append(r.byName[n.Name], n)
		case graph.KindClass, graph.KindInterface, graph.KindStruct, graph.KindEnum:
			r.typesByName[n.Name] = append(r.typesByName[n.Name], n)
		case graph.KindTemplate:
			r.templates[n.FilePath] = n
		case graph.KindImport:
			resolved, _ := n.Properties["resolvedPath"].(string)
			if resolved == "" {
				continue
			}
			if r.imports[n.FilePath] == nil {
				r.imports[n.FilePath] = map[string]string{}
			}
			for _, name := range stringList(n.Properties["names"]) {
				r.imports[n.FilePath][name] = resolved
			}
		}
	}
	return r
}

func (sr *symbolResolver) Resolve(c *graph.Collector) []*graph.Relationship {
	reg := buildRegistry(c)
	now := time.Now().UTC()

	edges := map[string]*graph.Relationship{}
	add := func(t graph.EdgeType, source, targetID string) {
		if source == targetID {
			return
		}
		id := sr.scope.RelationshipID(t, source, targetID)
		if _, ok := edges[id]; ok {
			return
		}
		edges[id] = &graph.Relationship{
			EntityID:  id,
			Type:      t,
			SourceID:  source,
			TargetID:  targetID,
			CreatedAt: now,
		}
	}

	for _, n := range c.Nodes() {
		if n.Properties == nil {
			continue
		}
		for _, callee := range stringList(n.Properties["calls"]) {
			if target := reg.resolveCallable(callee, n.FilePath, sr.tsExports); target != nil {
				add(graph.EdgeCalls, n.EntityID, target.EntityID)
			}
		}
		for _, base := range stringList(n.Properties["baseTypes"]) {
			target := reg.resolveType(base)
			if target == nil {
				continue
			}
			if target.Kind == graph.KindInterface && n.Kind != graph.KindInterface {
				add(graph.EdgeImplements, n.EntityID, target.EntityID)
			} else {
				add(graph.EdgeExtends, n.EntityID, target.EntityID)
			}
		}
		for _, iface := range stringList(n.Properties["implements"]) {
			if target := reg.resolveType(iface); target != nil {
				add(graph.EdgeImplements, n.EntityID, target.EntityID)
			}
		}
		for _, ref := range stringList(n.Properties["renders"]) {
			if target := reg.resolveTemplate(ref); target != nil {
				add(graph.EdgeRenders, n.EntityID, target.EntityID)
			}
		}
	}

	out := make([]*graph.Relationship, 0, len(edges))
	for _, r := range c.Relationships() {
		// keep output additive: drop anything collection already holds
		delete(edges, r.EntityID)
	}
	for _, e := range edges {
		out = append(out, e)
	}
	sr.log.Debug("resolve.done", "edges", len(out))
	return out
}

// resolveCallable maps one callee expression to a function or method.
func (r *registry) resolveCallable(callee, fromFile string, tsExports map[string]string) *graph.Entity {
	simple := simpleName(callee)
	if simple == "" {
		return nil
	}

	if e := r.byFile[fromFile][simple]; e != nil {
		return e
	}
	if target := r.imports[fromFile][simple]; target != "" {
		if e := r.byFile[target][simple]; e != nil {
			return e
		}
	}

	candidates := r.byName[simple]
	if qualifier := qualifierOf(callee); qualifier != "" {
		var matched []*graph.Entity
		for _, e := range candidates {
			if r.parentName[e.EntityID] == qualifier {
				matched = append(matched, e)
			}
		}
		if len(matched) == 1 {
			return matched[0]
		}
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	if id := tsExports[simple]; id != "" {
		for _, e := range candidates {
			if e.EntityID == id {
				return e
			}
		}
	}
	return nil
}

// resolveType maps a base-type reference to a unique type entity.
func (r *registry) resolveType(ref string) *graph.Entity {
	candidates := r.typesByName[simpleName(ref)]
	if len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

// resolveTemplate matches a template reference by path, falling back to a
// unique suffix match for references relative to an unknown base.
func (r *registry) resolveTemplate(ref string) *graph.Entity {
	if e := r.templates[ref]; e != nil {
		return e
	}
	var matched *graph.Entity
	for path, e := range r.templates {
		if strings.HasSuffix(path, "/"+ref) || strings.HasSuffix(ref, "/"+path) {
			if matched != nil {
				return nil // ambiguous
			}
			matched = e
		}
	}
	return matched
}

// simpleName returns the last identifier of a reference expression
// ("billing.Validate" -> "Validate", "ns::run" -> "run").
func simpleName(ref string) string {
	ref = strings.TrimSpace(ref)
	if idx := strings.LastIndex(ref, "::"); idx >= 0 {
		ref = ref[idx+2:]
	}
	if idx := strings.LastIndex(ref, "."); idx >= 0 {
		ref = ref[idx+1:]
	}
	return ref
}

// qualifierOf returns the segment immediately before the simple name.
func qualifierOf(ref string) string {
	ref = strings.TrimSpace(ref)
	sep := strings.LastIndex(ref, ".")
	if idx := strings.LastIndex(ref, "::"); idx > sep {
		sep = idx
	}
	if sep < 0 {
		return ""
	}
	return simpleName(ref[:sep])
}

// stringList reads a property value that may be []string in memory or
// []any after a JSON round trip through a spill artifact.
func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
