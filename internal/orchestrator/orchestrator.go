// Package orchestrator drives one analysis run end to end: discover files,
// parse them concurrently, merge the per-file results at the collection
// barrier, enrich with repository structure, resolve cross-file references,
// and persist the merged graph.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DeusData/codegraph/internal/config"
	"github.com/DeusData/codegraph/internal/discover"
	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/lang"
	"github.com/DeusData/codegraph/internal/tsproject"
	"github.com/DeusData/codegraph/internal/visitor"
)

// GraphStore is the persistence surface a run needs.
type GraphStore interface {
	RecordRepository(entityID, name, url, rootPath string) error
	Persist(repository string, nodes []*graph.Entity, rels []*graph.Relationship) error
}

// Summary reports what one run produced.
type Summary struct {
	Files         int
	Parsed        int
	Failed        int
	Nodes         int
	Relationships int
	Resolved      int
	Duration      time.Duration
}

// Orchestrator runs the two-pass pipeline for one repository.
type Orchestrator struct {
	cfg   *config.Config
	store GraphStore
	log   *slog.Logger

	// resolver may be replaced before Run for testing; nil picks the
	// default symbol resolver.
	resolver Resolver
	// traceParse, when set, brackets each parse task; tests use it to
	// observe worker scheduling.
	traceParse func() (done func())
}

func New(cfg *config.Config, store GraphStore) *Orchestrator {
	return &Orchestrator{cfg: cfg, store: store, log: slog.Default()}
}

// Run executes one analysis: scan, parse pass, collection, enrichment,
// reference pass, persistence. Per-file failures are logged and counted but
// do not abort the run; infrastructure failures (spill, store) do.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()

	rootPath, err := filepath.Abs(o.cfg.Repo.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve repo path: %w", err)
	}
	repoName := o.cfg.RepoName()
	scope := visitor.NewScope(repoName)
	repoID := scope.EntityID(graph.KindRepository, repoName)

	files, err := discover.Discover(ctx, rootPath, &discover.Options{
		IgnorePatterns: o.cfg.Scan.IgnorePatterns,
		MaxFileSize:    o.cfg.Scan.MaxFileSize,
		IncludeHidden:  o.cfg.Scan.IncludeHidden,
	})
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	o.log.Info("run.scan", "repository", repoName, "files", len(files))

	sp, err := newSpill(o.cfg.Analysis.SpillDir)
	if err != nil {
		return nil, err
	}
	project := tsproject.New(scope)

	var parsed, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Analysis.Concurrency)
	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if o.traceParse != nil {
				done := o.traceParse()
				defer done()
			}
			source, err := os.ReadFile(f.Path)
			if err != nil {
				o.log.Warn("parse.read_failed", "path", f.RelPath, "error", err)
				failed.Add(1)
				return nil
			}
			input := visitor.FileInput{Path: f.RelPath, Source: source, Language: f.Language}

			// The JS/TS family shares a module system; those files are
			// deferred to the single-threaded project visit.
			if lang.ForLanguage(f.Language).SharedProject {
				project.Add(input)
				parsed.Add(1)
				return nil
			}

			v, err := visitor.New(f.Language, scope)
			if err != nil {
				o.log.Warn("parse.no_visitor", "path", f.RelPath, "language", f.Language)
				failed.Add(1)
				return nil
			}
			result, err := v.Visit(input)
			if err != nil {
				o.log.Warn("parse.visit_failed", "path", f.RelPath, "error", err)
				failed.Add(1)
				return nil
			}
			return sp.Write(result)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parse pass: %w", err)
	}

	tsResults := project.VisitAll()
	tsExports := project.Exports(tsResults)

	// Collection barrier: everything below is single-threaded.
	collector := graph.NewCollector()
	if err := sp.Drain(collector.Add); err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	tsPaths := make([]string, 0, len(tsResults))
	for fp := range tsResults {
		tsPaths = append(tsPaths, fp)
	}
	sort.Strings(tsPaths)
	for _, fp := range tsPaths {
		collector.Add(tsResults[fp])
	}

	enrich(collector, scope, AnalysisContext{
		RepositoryID:  repoID,
		Name:          repoName,
		URL:           o.cfg.Repo.URL,
		RootDirectory: rootPath,
	})

	resolver := o.resolver
	if resolver == nil {
		resolver = NewSymbolResolver(scope, tsExports)
	}
	extra := resolver.Resolve(collector)

	if err := o.store.RecordRepository(repoID, repoName, o.cfg.Repo.URL, rootPath); err != nil {
		return nil, fmt.Errorf("record repository: %w", err)
	}
	nodes := collector.Nodes()
	rels := append(collector.Relationships(), extra...)
	if err := o.store.Persist(repoID, nodes, rels); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	summary := &Summary{
		Files:         len(files),
		Parsed:        int(parsed.Load()),
		Failed:        int(failed.Load()),
		Nodes:         len(nodes),
		Relationships: len(rels),
		Resolved:      len(extra),
		Duration:      time.Since(start),
	}
	o.log.Info("run.done",
		"repository", repoName,
		"files", summary.Files,
		"parsed", summary.Parsed,
		"failed", summary.Failed,
		"nodes", summary.Nodes,
		"relationships", summary.Relationships,
		"resolved", summary.Resolved,
		"duration", summary.Duration)
	return summary, nil
}
