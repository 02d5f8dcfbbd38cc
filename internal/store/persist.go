package store

import (
	"github.com/DeusData/codegraph/internal/graph"
)

// Persist writes one run's merged graph in a single transaction: nodes
// first so the edge foreign keys hold, then relationships.
func (s *Store) Persist(repository string, nodes []*graph.Entity, rels []*graph.Relationship) error {
	return s.WithTransaction(func(tx *Store) error {
		if err := tx.UpsertNodes(repository, nodes); err != nil {
			return err
		}
		return tx.UpsertRelationships(repository, rels)
	})
}
