package orchestrator

import (
	"path"
	"sort"
	"time"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/visitor"
)

// AnalysisContext names the repository a run describes. Module structure is
// derived from the file paths already collected.
type AnalysisContext struct {
	RepositoryID  string // defaults to the identity of the repository name
	Name          string
	URL           string
	RootDirectory string
}

// enrich synthesizes the Repository node, one Module node per source
// directory, and the containment edges tying files into that hierarchy.
// The synthetic entities go through the same identity scheme as visitor
// output, so re-runs merge instead of duplicating.
func enrich(c *graph.Collector, scope *visitor.Scope, actx AnalysisContext) {
	now := time.Now().UTC()
	result := &graph.FileResult{FilePath: ""}

	repoID := actx.RepositoryID
	if repoID == "" {
		repoID = scope.EntityID(graph.KindRepository, actx.Name)
	}
	repoProps := map[string]any{}
	if actx.URL != "" {
		repoProps["url"] = actx.URL
	}
	if actx.RootDirectory != "" {
		repoProps["rootDirectory"] = actx.RootDirectory
	}
	repoEnt := &graph.Entity{
		EntityID:   repoID,
		ID:         scope.Counter.Next(),
		Kind:       graph.KindRepository,
		Name:       actx.Name,
		Properties: repoProps,
		CreatedAt:  now,
	}
	result.Nodes = append(result.Nodes, repoEnt)

	edge := func(t graph.EdgeType, sourceID, targetID string) {
		result.Relationships = append(result.Relationships, &graph.Relationship{
			EntityID:  scope.RelationshipID(t, sourceID, targetID),
			Type:      t,
			SourceID:  sourceID,
			TargetID:  targetID,
			CreatedAt: now,
		})
	}

	// File-level entities are the roots of each per-file tree. Parentless
	// directive entities are not roots, so selection goes by kind.
	var roots []*graph.Entity
	for _, n := range c.Nodes() {
		switch n.Kind {
		case graph.KindFile, graph.KindTemplate, graph.KindFlow:
			if n.ParentID == "" && n.FilePath != "" {
				roots = append(roots, n)
			}
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].FilePath < roots[j].FilePath })

	modules := map[string]*graph.Entity{}
	moduleFor := func(dir string) *graph.Entity {
		if m, ok := modules[dir]; ok {
			return m
		}
		m := &graph.Entity{
			EntityID:  scope.EntityID(graph.KindModule, dir),
			ID:        scope.Counter.Next(),
			Kind:      graph.KindModule,
			Name:      path.Base(dir),
			FilePath:  dir,
			ParentID:  repoID,
			CreatedAt: now,
		}
		modules[dir] = m
		result.Nodes = append(result.Nodes, m)
		edge(graph.EdgeBelongsTo, m.EntityID, repoID)
		return m
	}

	for _, root := range roots {
		dir := path.Dir(root.FilePath)
		if dir == "." || dir == "/" {
			edge(graph.EdgeContainsFile, repoID, root.EntityID)
			continue
		}

		// materialize the directory chain top-down
		segments := splitDir(dir)
		parentID := repoID
		prefix := ""
		for _, seg := range segments {
			if prefix == "" {
				prefix = seg
			} else {
				prefix = prefix + "/" + seg
			}
			m := moduleFor(prefix)
			if m.ParentID == repoID && parentID != repoID {
				m.ParentID = parentID
			}
			edge(graph.EdgeContainsModule, parentID, m.EntityID)
			parentID = m.EntityID
		}
		edge(graph.EdgeContainsFile, parentID, root.EntityID)
	}

	c.Add(result)
}

func splitDir(dir string) []string {
	var segments []string
	for dir != "" && dir != "." && dir != "/" {
		segments = append([]string{path.Base(dir)}, segments...)
		dir = path.Dir(dir)
	}
	return segments
}
