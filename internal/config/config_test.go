package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Repo.Path != "." {
		t.Errorf("path = %q, want default", cfg.Repo.Path)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "codegraph.yaml")
	data := []byte(`repo:
  path: /src/app
  name: app
analysis:
  concurrency: 2
  spill_dir: /tmp/spill
store:
  path: ":memory:"
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Repo.Path != "/src/app" || cfg.Analysis.Concurrency != 2 {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.Store.Path != ":memory:" {
		t.Errorf("store path = %q", cfg.Store.Path)
	}
	// untouched sections keep their defaults
	if len(cfg.Scan.IgnorePatterns) == 0 {
		t.Error("ignore patterns lost on load")
	}
}

func TestValidateRejectsBadConcurrency(t *testing.T) {
	cfg := Default()
	cfg.Analysis.Concurrency = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero concurrency")
	}
}

func TestRepoName(t *testing.T) {
	cfg := Default()
	cfg.Repo.Path = "/srv/projects/billing"
	if got := cfg.RepoName(); got != "billing" {
		t.Errorf("name = %q", got)
	}
	cfg.Repo.Name = "billing-core"
	if got := cfg.RepoName(); got != "billing-core" {
		t.Errorf("name = %q", got)
	}
}
