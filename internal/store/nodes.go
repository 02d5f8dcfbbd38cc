package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
)

// nodeColumns is the column count per row in a batch insert; SQLite caps
// bound variables at 999 per statement.
const nodeColumns = 13
const nodeBatchSize = 999 / nodeColumns

// RecordRepository registers or refreshes the repository row.
func (s *Store) RecordRepository(entityID, name, url, rootPath string) error {
	_, err := s.q.Exec(`
		INSERT INTO repositories (entity_id, name, url, root_path, indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(entity_id) DO UPDATE SET
			name=excluded.name, url=excluded.url, root_path=excluded.root_path,
			indexed_at=excluded.indexed_at`,
		entityID, name, url, rootPath, Now())
	if err != nil {
		return fmt.Errorf("record repository: %w", err)
	}
	return nil
}

// UpsertNodes writes a batch of entities, replacing rows with the same
// entity id. Batches are chunked to stay under SQLite's bound-variable cap.
func (s *Store) UpsertNodes(repository string, nodes []*graph.Entity) error {
	for start := 0; start < len(nodes); start += nodeBatchSize {
		end := start + nodeBatchSize
		if end > len(nodes) {
			end = len(nodes)
		}
		if err := s.upsertNodeChunk(repository, nodes[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertNodeChunk(repository string, nodes []*graph.Entity) error {
	var sb strings.Builder
	sb.WriteString(`INSERT INTO nodes
		(entity_id, repository, kind, name, file_path, language,
		 start_line, end_line, start_column, end_column, parent_id, properties, created_at)
		VALUES `)
	args := make([]any, 0, len(nodes)*nodeColumns)
	for i, n := range nodes {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			n.EntityID, repository, string(n.Kind), n.Name, n.FilePath, string(n.Language),
			n.StartLine, n.EndLine, n.StartColumn, n.EndColumn, n.ParentID,
			marshalProps(n.Properties), n.CreatedAt.UTC().Format(time.RFC3339))
	}
	sb.WriteString(` ON CONFLICT(entity_id) DO UPDATE SET
		repository=excluded.repository, kind=excluded.kind, name=excluded.name,
		file_path=excluded.file_path, language=excluded.language,
		start_line=excluded.start_line, end_line=excluded.end_line,
		start_column=excluded.start_column, end_column=excluded.end_column,
		parent_id=excluded.parent_id, properties=excluded.properties,
		created_at=excluded.created_at`)

	if _, err := s.q.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("upsert nodes: %w", err)
	}
	return nil
}

// FindNode returns the entity with the given id, or nil.
func (s *Store) FindNode(entityID string) (*graph.Entity, error) {
	row := s.q.QueryRow(selectNodes+` WHERE entity_id=?`, entityID)
	n, err := scanNode(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// FindNodesByKind returns every node of one kind in a repository.
func (s *Store) FindNodesByKind(repository string, kind graph.Kind) ([]*graph.Entity, error) {
	rows, err := s.q.Query(selectNodes+` WHERE repository=? AND kind=? ORDER BY file_path, start_line`,
		repository, string(kind))
	if err != nil {
		return nil, fmt.Errorf("find by kind: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// FindNodesByFile returns every node declared in one file.
func (s *Store) FindNodesByFile(repository, filePath string) ([]*graph.Entity, error) {
	rows, err := s.q.Query(selectNodes+` WHERE repository=? AND file_path=? ORDER BY start_line`,
		repository, filePath)
	if err != nil {
		return nil, fmt.Errorf("find by file: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// FindNodesByName returns every node with a simple name.
func (s *Store) FindNodesByName(repository, name string) ([]*graph.Entity, error) {
	rows, err := s.q.Query(selectNodes+` WHERE repository=? AND name=?`, repository, name)
	if err != nil {
		return nil, fmt.Errorf("find by name: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// Children returns the nodes whose parent_id is the given entity.
func (s *Store) Children(entityID string) ([]*graph.Entity, error) {
	rows, err := s.q.Query(selectNodes+` WHERE parent_id=? ORDER BY start_line`, entityID)
	if err != nil {
		return nil, fmt.Errorf("children: %w", err)
	}
	defer rows.Close()
	return scanNodes(rows)
}

// CountNodes returns the number of nodes in a repository.
func (s *Store) CountNodes(repository string) (int, error) {
	var count int
	err := s.q.QueryRow(`SELECT COUNT(*) FROM nodes WHERE repository=?`, repository).Scan(&count)
	return count, err
}

// DeleteNodesByRepository removes a repository's nodes (edges cascade).
func (s *Store) DeleteNodesByRepository(repository string) error {
	_, err := s.q.Exec(`DELETE FROM nodes WHERE repository=?`, repository)
	return err
}

const selectNodes = `SELECT entity_id, kind, name, file_path, language,
	start_line, end_line, start_column, end_column, parent_id, properties, created_at
	FROM nodes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNode(row rowScanner) (*graph.Entity, error) {
	var n graph.Entity
	var kind, language, props, createdAt string
	if err := row.Scan(&n.EntityID, &kind, &n.Name, &n.FilePath, &language,
		&n.StartLine, &n.EndLine, &n.StartColumn, &n.EndColumn,
		&n.ParentID, &props, &createdAt); err != nil {
		return nil, err
	}
	n.Kind = graph.Kind(kind)
	n.Language = lang.Language(language)
	n.Properties = unmarshalProps(props)
	n.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &n, nil
}

func scanNodes(rows *sql.Rows) ([]*graph.Entity, error) {
	var nodes []*graph.Entity
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}
