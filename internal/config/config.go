// Package config provides configuration loading for codegraph runs.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents one complete analysis configuration
type Config struct {
	Repo     RepoConfig     `yaml:"repo"`
	Scan     ScanConfig     `yaml:"scan"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Store    StoreConfig    `yaml:"store"`
}

// RepoConfig identifies the repository under analysis
type RepoConfig struct {
	// Path is the repository root (default: current directory)
	Path string `yaml:"path"`
	// Name overrides the repository name (default: base of Path)
	Name string `yaml:"name"`
	// URL is the remote URL recorded on the repository node
	URL string `yaml:"url"`
}

// ScanConfig controls file discovery
type ScanConfig struct {
	// IgnorePatterns are glob patterns matched against relative paths
	IgnorePatterns []string `yaml:"ignore_patterns"`
	// MaxFileSize skips files larger than this many bytes (0 = no limit)
	MaxFileSize int64 `yaml:"max_file_size"`
	// IncludeHidden scans dotfiles and dot-directories too
	IncludeHidden bool `yaml:"include_hidden"`
}

// AnalysisConfig controls the parse pass
type AnalysisConfig struct {
	// Concurrency bounds the parallel parse workers (default: GOMAXPROCS)
	Concurrency int `yaml:"concurrency"`
	// SpillDir holds per-file result artifacts; empty keeps results in memory
	SpillDir string `yaml:"spill_dir"`
}

// StoreConfig controls graph persistence
type StoreConfig struct {
	// Path is the SQLite database file (":memory:" for an in-memory store)
	Path string `yaml:"path"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	return &Config{
		Repo: RepoConfig{Path: "."},
		Scan: ScanConfig{
			IgnorePatterns: []string{
				"node_modules/**", "vendor/**", "dist/**", "build/**",
				"bin/**", "obj/**", "*.min.js",
			},
			MaxFileSize: 2 << 20, // 2 MiB
		},
		Analysis: AnalysisConfig{
			Concurrency: runtime.GOMAXPROCS(0),
		},
		Store: StoreConfig{Path: "codegraph.db"},
	}
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Repo.Path == "" {
		return fmt.Errorf("repo.path is required")
	}
	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be at least 1")
	}
	if c.Scan.MaxFileSize < 0 {
		return fmt.Errorf("scan.max_file_size must not be negative")
	}
	return nil
}

// RepoName returns the configured name, or the repo directory's base name.
func (c *Config) RepoName() string {
	if c.Repo.Name != "" {
		return c.Repo.Name
	}
	abs, err := filepath.Abs(c.Repo.Path)
	if err != nil {
		return filepath.Base(c.Repo.Path)
	}
	return filepath.Base(abs)
}

// Load reads a YAML config file over the defaults. A missing path returns
// the defaults unchanged.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}
