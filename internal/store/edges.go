package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/DeusData/codegraph/internal/graph"
)

const edgeColumns = 8
const edgeBatchSize = 999 / edgeColumns

// UpsertRelationships writes edges grouped into per-type batches, in the
// fixed graph.AllEdgeTypes order so persistence is deterministic. Edges
// whose endpoints are missing from the nodes table fail the foreign key
// check and abort the write; collection guarantees endpoints come first.
func (s *Store) UpsertRelationships(repository string, rels []*graph.Relationship) error {
	byType := make(map[graph.EdgeType][]*graph.Relationship)
	for _, r := range rels {
		byType[r.Type] = append(byType[r.Type], r)
	}
	for _, t := range graph.AllEdgeTypes() {
		batch := byType[t]
		for start := 0; start < len(batch); start += edgeBatchSize {
			end := start + edgeBatchSize
			if end > len(batch) {
				end = len(batch)
			}
			if err := s.upsertEdgeChunk(repository, batch[start:end]); err != nil {
				return fmt.Errorf("upsert %s edges: %w", t, err)
			}
		}
	}
	return nil
}

func (s *Store) upsertEdgeChunk(repository string, rels []*graph.Relationship) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO edges
		(entity_id, repository, source_id, target_id, type, weight, properties, created_at)
		VALUES `)
	args := make([]any, 0, len(rels)*edgeColumns)
	for i, r := range rels {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			r.EntityID, repository, r.SourceID, r.TargetID, string(r.Type),
			r.Weight, marshalProps(r.Properties), r.CreatedAt.UTC().Format(time.RFC3339))
	}
	sb.WriteString(` ON CONFLICT(entity_id) DO UPDATE SET
		repository=excluded.repository, source_id=excluded.source_id,
		target_id=excluded.target_id, type=excluded.type, weight=excluded.weight,
		properties=excluded.properties, created_at=excluded.created_at`)

	_, err := s.q.Exec(sb.String(), args...)
	return err
}

// EdgesFrom returns the outgoing edges of one node, optionally filtered by
// type ("" matches all).
func (s *Store) EdgesFrom(sourceID string, t graph.EdgeType) ([]*graph.Relationship, error) {
	return s.queryEdges(`source_id=?`, sourceID, t)
}

// EdgesTo returns the incoming edges of one node.
func (s *Store) EdgesTo(targetID string, t graph.EdgeType) ([]*graph.Relationship, error) {
	return s.queryEdges(`target_id=?`, targetID, t)
}

func (s *Store) queryEdges(where, id string, t graph.EdgeType) ([]*graph.Relationship, error) {
	query := `SELECT entity_id, source_id, target_id, type, weight, properties, created_at
		FROM edges WHERE ` + where
	args := []any{id}
	if t != "" {
		query += ` AND type=?`
		args = append(args, string(t))
	}
	rows, err := s.q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()
	return scanEdges(rows)
}

// CountEdges returns the number of edges of one type ("" counts all).
func (s *Store) CountEdges(repository string, t graph.EdgeType) (int, error) {
	var count int
	var err error
	if t == "" {
		err = s.q.QueryRow(`SELECT COUNT(*) FROM edges WHERE repository=?`, repository).Scan(&count)
	} else {
		err = s.q.QueryRow(`SELECT COUNT(*) FROM edges WHERE repository=? AND type=?`,
			repository, string(t)).Scan(&count)
	}
	return count, err
}

func scanEdges(rows *sql.Rows) ([]*graph.Relationship, error) {
	var rels []*graph.Relationship
	for rows.Next() {
		var r graph.Relationship
		var t, props, createdAt string
		if err := rows.Scan(&r.EntityID, &r.SourceID, &r.TargetID, &t,
			&r.Weight, &props, &createdAt); err != nil {
			return nil, err
		}
		r.Type = graph.EdgeType(t)
		r.Properties = unmarshalProps(props)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		rels = append(rels, &r)
	}
	return rels, rows.Err()
}
