// Package tsproject accumulates the JavaScript/TypeScript family of files
// into one in-memory project. The family shares a module system, so files
// are not independent: imports resolve against sibling files, and exported
// symbols form one cross-file table. The project is filled concurrently
// during the parse pass and traversed single-threaded afterwards.
package tsproject

import (
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/DeusData/codegraph/internal/graph"
	"github.com/DeusData/codegraph/internal/visitor"
)

// moduleSuffixes are tried in order when an import specifier omits the
// extension ("./util" -> util.ts, util.tsx, ..., util/index.ts).
var moduleSuffixes = []string{
	"", ".ts", ".tsx", ".mts", ".cts", ".js", ".jsx", ".mjs", ".cjs",
	"/index.ts", "/index.tsx", "/index.js",
}

// Project is the arena of family files for one run.
type Project struct {
	scope *visitor.Scope
	log   *slog.Logger

	mu    sync.Mutex
	files map[string]visitor.FileInput
}

func New(scope *visitor.Scope) *Project {
	return &Project{
		scope: scope,
		log:   slog.Default(),
		files: map[string]visitor.FileInput{},
	}
}

// Add registers one file. Safe for concurrent use; the parse workers feed
// the project while visiting other languages.
func (p *Project) Add(file visitor.FileInput) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.files[file.Path] = file
}

// Len returns the number of registered files.
func (p *Project) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.files)
}

// VisitAll traverses every registered file in deterministic path order and
// returns one result per file. A file that fails to parse is logged and
// dropped; the rest of the project still resolves.
func (p *Project) VisitAll() map[string]*graph.FileResult {
	p.mu.Lock()
	paths := make([]string, 0, len(p.files))
	for fp := range p.files {
		paths = append(paths, fp)
	}
	p.mu.Unlock()
	sort.Strings(paths)

	results := make(map[string]*graph.FileResult, len(paths))
	for _, fp := range paths {
		file := p.files[fp]
		v, err := visitor.New(file.Language, p.scope)
		if err != nil {
			p.log.Warn("tsproject.no_visitor", "path", fp, "language", file.Language)
			continue
		}
		result, err := v.Visit(file)
		if err != nil {
			p.log.Warn("tsproject.visit_failed", "path", fp, "error", err)
			continue
		}
		results[fp] = result
	}

	p.linkImports(results)
	return results
}

// linkImports resolves relative import specifiers against the project and
// adds DEPENDS_ON edges between the file entities.
func (p *Project) linkImports(results map[string]*graph.FileResult) {
	fileEntity := map[string]*graph.Entity{}
	for fp, result := range results {
		for _, n := range result.Nodes {
			if n.Kind == graph.KindFile {
				fileEntity[fp] = n
				break
			}
		}
	}

	for fp, result := range results {
		source := fileEntity[fp]
		if source == nil {
			continue
		}
		for _, n := range result.Nodes {
			if n.Kind != graph.KindImport {
				continue
			}
			spec, _ := n.Properties["path"].(string)
			targetPath := p.Resolve(fp, spec)
			if targetPath == "" {
				continue
			}
			target := fileEntity[targetPath]
			if target == nil {
				continue
			}
			n.Properties["resolvedPath"] = targetPath
			result.Relationships = append(result.Relationships, &graph.Relationship{
				EntityID:  p.scope.RelationshipID(graph.EdgeDependsOn, source.EntityID, target.EntityID),
				Type:      graph.EdgeDependsOn,
				SourceID:  source.EntityID,
				TargetID:  target.EntityID,
				CreatedAt: source.CreatedAt,
			})
		}
	}
}

// Resolve maps an import specifier from one file to a project file path.
// Bare specifiers (npm packages) resolve to "".
func (p *Project) Resolve(fromFile, spec string) string {
	if spec == "" || (!strings.HasPrefix(spec, "./") && !strings.HasPrefix(spec, "../")) {
		return ""
	}
	base := path.Join(path.Dir(fromFile), spec)
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, suffix := range moduleSuffixes {
		if _, ok := p.files[base+suffix]; ok {
			return base + suffix
		}
	}
	return ""
}

// Exports builds the cross-file symbol table: exported symbol name to
// entity id, both bare and file-qualified. The reference pass consults it
// when a callee does not resolve within its own file. Files are visited in
// sorted path order so a bare name claimed by two files resolves the same
// way on every run.
func (p *Project) Exports(results map[string]*graph.FileResult) map[string]string {
	paths := make([]string, 0, len(results))
	for fp := range results {
		paths = append(paths, fp)
	}
	sort.Strings(paths)

	table := map[string]string{}
	for _, fp := range paths {
		for _, n := range results[fp].Nodes {
			if n.Properties["exported"] != true {
				continue
			}
			table[fp+"#"+n.Name] = n.EntityID
			if _, taken := table[n.Name]; !taken {
				table[n.Name] = n.EntityID
			}
		}
	}
	return table
}
