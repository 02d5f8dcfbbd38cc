// Command codegraph analyzes a repository and persists its code graph.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DeusData/codegraph/internal/config"
	"github.com/DeusData/codegraph/internal/orchestrator"
	"github.com/DeusData/codegraph/internal/store"
)

var version = "dev"

func main() {
	var (
		configPath  = flag.String("config", "", "YAML config file")
		repoPath    = flag.String("repo", "", "repository root (overrides config)")
		repoName    = flag.String("name", "", "repository name (overrides config)")
		dbPath      = flag.String("db", "", "SQLite database path (overrides config)")
		spillDir    = flag.String("spill", "", "spill directory for parse artifacts (overrides config)")
		concurrency = flag.Int("concurrency", 0, "parse workers (overrides config)")
		verbose     = flag.Bool("v", false, "debug logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("codegraph", version)
		os.Exit(0)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config err=%v", err)
	}
	if *repoPath != "" {
		cfg.Repo.Path = *repoPath
	}
	if *repoName != "" {
		cfg.Repo.Name = *repoName
	}
	if *dbPath != "" {
		cfg.Store.Path = *dbPath
	}
	if *spillDir != "" {
		cfg.Analysis.SpillDir = *spillDir
	}
	if *concurrency > 0 {
		cfg.Analysis.Concurrency = *concurrency
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config err=%v", err)
	}

	s, err := store.Open(cfg.Store.Path)
	if err != nil {
		log.Fatalf("store open err=%v", err)
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := orchestrator.New(cfg, s).Run(ctx)
	if err != nil {
		log.Fatalf("run err=%v", err)
	}
	fmt.Printf("%s: %d files (%d parsed, %d failed), %d nodes, %d relationships (%d resolved) in %s\n",
		cfg.RepoName(), summary.Files, summary.Parsed, summary.Failed,
		summary.Nodes, summary.Relationships, summary.Resolved,
		summary.Duration.Round(time.Millisecond))
}
