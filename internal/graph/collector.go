package graph

import "log/slog"

// Collector folds single-file results into one deduplicated node/edge set.
// Folding is idempotent: adding the same FileResult twice leaves the merged
// counts unchanged. Collector is not safe for concurrent use — collection is
// a single-threaded barrier between Pass 1 and Pass 2.
type Collector struct {
	nodes map[string]*Entity
	rels  map[string]*Relationship
	// nodeOrder/relOrder preserve first-seen ordering for stable output.
	nodeOrder []string
	relOrder  []string
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{
		nodes: make(map[string]*Entity),
		rels:  make(map[string]*Relationship),
	}
}

// Add folds one file's result into the merged graph. Nodes are deduplicated
// within the result first (a file must not emit the same EntityID twice; if
// it does, the last wins and the duplicate is logged), then merged into the
// global maps with last-write-wins semantics.
func (c *Collector) Add(result *FileResult) {
	if result == nil {
		return
	}

	seen := make(map[string]int, len(result.Nodes))
	deduped := make([]*Entity, 0, len(result.Nodes))
	for _, n := range result.Nodes {
		if n == nil || n.EntityID == "" {
			continue
		}
		if idx, dup := seen[n.EntityID]; dup {
			slog.Warn("collect.dup_in_file",
				"file", result.FilePath, "entity_id", n.EntityID, "name", n.Name)
			deduped[idx] = n
			continue
		}
		seen[n.EntityID] = len(deduped)
		deduped = append(deduped, n)
	}

	for _, n := range deduped {
		prev, ok := c.nodes[n.EntityID]
		if ok {
			// Cross-file collisions are expected (re-analysis, shared headers)
			// and resolved last-write-wins. A kind disagreement at a different
			// path means two distinct declarations hashed to one id — that
			// needs attention, so it is logged as a conflict.
			if prev.Kind != n.Kind && prev.FilePath != n.FilePath {
				slog.Warn("collect.conflict",
					"entity_id", n.EntityID,
					"kind", n.Kind, "prev_kind", prev.Kind,
					"file", n.FilePath, "prev_file", prev.FilePath)
			} else {
				slog.Debug("collect.collision", "entity_id", n.EntityID, "file", n.FilePath)
			}
		} else {
			c.nodeOrder = append(c.nodeOrder, n.EntityID)
		}
		c.nodes[n.EntityID] = n
	}

	for _, r := range result.Relationships {
		if r == nil || r.EntityID == "" {
			continue
		}
		if _, ok := c.rels[r.EntityID]; !ok {
			c.relOrder = append(c.relOrder, r.EntityID)
		}
		c.rels[r.EntityID] = r
	}
}

// Nodes returns the merged nodes in first-seen order.
func (c *Collector) Nodes() []*Entity {
	out := make([]*Entity, 0, len(c.nodeOrder))
	for _, id := range c.nodeOrder {
		out = append(out, c.nodes[id])
	}
	return out
}

// Relationships returns the merged relationships in first-seen order.
func (c *Collector) Relationships() []*Relationship {
	out := make([]*Relationship, 0, len(c.relOrder))
	for _, id := range c.relOrder {
		out = append(out, c.rels[id])
	}
	return out
}

// Node looks up a merged node by EntityID.
func (c *Collector) Node(entityID string) (*Entity, bool) {
	n, ok := c.nodes[entityID]
	return n, ok
}

// Counts returns the merged node and relationship counts.
func (c *Collector) Counts() (nodes, relationships int) {
	return len(c.nodes), len(c.rels)
}
