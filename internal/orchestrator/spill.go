package orchestrator

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/DeusData/codegraph/internal/graph"
)

// spill buffers per-file results between the parse pass and collection.
// With a directory it writes one JSON artifact per file, bounding memory on
// large repositories; without one it holds results in memory. Write is safe
// for concurrent use by the parse workers; Drain runs single-threaded.
type spill struct {
	dir string

	mu      sync.Mutex
	results []*graph.FileResult
	seq     int
}

// newSpill prepares the artifact directory, clearing anything a previous
// run left behind so stale artifacts never fold into this run's graph.
// Directory creation failure is fatal: a half-working spill would silently
// drop files.
func newSpill(dir string) (*spill, error) {
	if dir != "" {
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("clear spill dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create spill dir: %w", err)
		}
	}
	return &spill{dir: dir}, nil
}

// Write stores one file's result.
func (s *spill) Write(result *graph.FileResult) error {
	s.mu.Lock()
	seq := s.seq
	s.seq++
	if s.dir == "" {
		s.results = append(s.results, result)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", result.FilePath, err)
	}
	name := fmt.Sprintf("%06d-%s.json", seq, artifactName(result.FilePath))
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", result.FilePath, err)
	}
	return nil
}

// Drain feeds every buffered result to fn in deterministic order, then
// discards the artifacts. A corrupt artifact is logged and dropped; the
// rest of the run proceeds without that file.
func (s *spill) Drain(fn func(*graph.FileResult)) error {
	if s.dir == "" {
		s.mu.Lock()
		results := s.results
		s.results = nil
		s.mu.Unlock()
		for _, r := range results {
			fn(r)
		}
		return nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("read spill dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("collect.artifact_unreadable", "artifact", name, "error", err)
			os.Remove(path)
			continue
		}
		os.Remove(path)
		var result graph.FileResult
		if err := json.Unmarshal(data, &result); err != nil {
			slog.Warn("collect.artifact_corrupt", "artifact", name, "error", err)
			continue
		}
		fn(&result)
	}
	return nil
}

// artifactName flattens a repo-relative path into a file name.
func artifactName(path string) string {
	r := strings.NewReplacer("/", "__", "\\", "__", ":", "_")
	return r.Replace(path)
}
