// Package discover walks a repository root and produces the list of source
// files the pipeline will parse, with languages already detected.
package discover

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/DeusData/codegraph/internal/lang"
)

// skipDirs are directory names never worth descending into.
var skipDirs = map[string]bool{
	".cache": true, ".eggs": true, ".env": true, ".git": true,
	".gradle": true, ".hg": true, ".idea": true, ".mypy_cache": true,
	".npm": true, ".nyc_output": true, ".pnpm-store": true,
	".pytest_cache": true, ".ruff_cache": true, ".svn": true,
	".tox": true, ".venv": true, ".vs": true, ".vscode": true, ".yarn": true,
	"__pycache__": true, "bin": true, "bower_components": true,
	"build": true, "coverage": true, "dist": true, "node_modules": true,
	"obj": true, "out": true, "Pods": true, "target": true,
	"tmp": true, "vendor": true, "venv": true,
}

// skipSuffixes are build artifacts that share an extension with nothing we
// parse but still show up next to sources.
var skipSuffixes = []string{
	".tmp", "~", ".o", ".a", ".so", ".dll", ".class", ".min.js", ".d.ts",
}

// sniffExts are extensions whose language depends on file content; a head
// sample is read before deciding.
var sniffExts = map[string]bool{".xml": true, ".yaml": true, ".yml": true}

// FileInfo is one discovered source file.
type FileInfo struct {
	Path     string // absolute path
	RelPath  string // slash-separated, relative to the repo root
	Size     int64
	Language lang.Language
}

// Options configures discovery.
type Options struct {
	// IgnorePatterns are extra glob patterns matched against directory
	// names and relative paths.
	IgnorePatterns []string
	// MaxFileSize skips larger files (0 = no limit).
	MaxFileSize int64
	// IncludeHidden keeps dotfiles and dot-directories.
	IncludeHidden bool
	// IgnoreFile names a per-repo ignore list (default: .cgignore at root).
	IgnoreFile string
}

// Discover walks repoPath and returns every parseable file in walk order.
func Discover(ctx context.Context, repoPath string, opts *Options) ([]FileInfo, error) {
	if opts == nil {
		opts = &Options{}
	}
	repoPath, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}

	ignorePath := opts.IgnoreFile
	if ignorePath == "" {
		ignorePath = filepath.Join(repoPath, ".cgignore")
	}
	extraIgnore, _ := loadIgnoreFile(ignorePath)
	extraIgnore = append(extraIgnore, opts.IgnorePatterns...)

	var files []FileInfo
	err = filepath.Walk(repoPath, func(path string, info os.FileInfo, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			return filepath.SkipDir
		}

		rel, _ := filepath.Rel(repoPath, path)
		rel = filepath.ToSlash(rel)
		name := info.Name()

		if info.IsDir() {
			if path == repoPath {
				return nil
			}
			if shouldSkipDir(name, rel, extraIgnore, opts.IncludeHidden) {
				return filepath.SkipDir
			}
			return nil
		}

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			return nil
		}
		if matchesIgnore(name, rel, extraIgnore) {
			return nil
		}
		for _, suffix := range skipSuffixes {
			if strings.HasSuffix(name, suffix) {
				return nil
			}
		}
		if opts.MaxFileSize > 0 && info.Size() > opts.MaxFileSize {
			return nil
		}

		var head []byte
		if sniffExts[strings.ToLower(filepath.Ext(name))] {
			head = readHead(path)
		}
		l, ok := lang.Detect(rel, head)
		if !ok {
			return nil
		}
		files = append(files, FileInfo{
			Path:     path,
			RelPath:  rel,
			Size:     info.Size(),
			Language: l,
		})
		return nil
	})
	return files, err
}

func shouldSkipDir(name, rel string, extraIgnore []string, includeHidden bool) bool {
	if skipDirs[name] {
		return true
	}
	if !includeHidden && strings.HasPrefix(name, ".") {
		return true
	}
	return matchesIgnore(name, rel, extraIgnore)
}

func matchesIgnore(name, rel string, patterns []string) bool {
	for _, pattern := range patterns {
		// "dir/**" style prefixes
		if prefix, ok := strings.CutSuffix(pattern, "/**"); ok {
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// readHead returns up to 2 KiB of a file for content sniffing.
func readHead(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	head := make([]byte, 2048)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil
	}
	return head[:n]
}

func loadIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			patterns = append(patterns, line)
		}
	}
	return patterns, scanner.Err()
}
