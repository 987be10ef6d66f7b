// Package main provides the skp CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/depgraph"
	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/logger"
	"github.com/matsen/skillpath/internal/path"
	"github.com/matsen/skillpath/internal/pipeline"
	"github.com/matsen/skillpath/internal/role"
	"github.com/matsen/skillpath/internal/semantic"
	"github.com/matsen/skillpath/internal/skill"
	"github.com/matsen/skillpath/internal/taxonomy"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	// dataDir overrides .skillpath discovery
	dataDir string
	// allowDegraded lets extraction fall back to alias matching
	allowDegraded bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skp",
	Short: "Skill gap analysis and learning path CLI",
	Long: `skp turns resumes and job descriptions into learning plans.

Core features:
  - Skill extraction from text, HTML and PDF against a skill taxonomy
  - Gap analysis against role requirements using embedding similarity
  - Resource recommendation from a local learning catalog
  - Prerequisite-ordered learning paths packed into weekly budgets

Data lives in .skillpath/ as YAML and JSONL with an ephemeral SQLite cache.
All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dir", "", "Directory containing .skillpath (default: search upward)")
	rootCmd.PersistentFlags().BoolVar(&allowDegraded, "allow-degraded", false, "Fall back to alias matching when the embedding model is unavailable")
	rootCmd.Version = Version
}

// mustFindRepository finds the data root, exits on error.
func mustFindRepository() string {
	root, err := config.ResolveRoot(dataDir)
	if err != nil {
		if errors.Is(err, config.ErrNoRepository) {
			fmt.Fprintln(os.Stderr, config.HelpfulConfigMessage())
			os.Exit(ExitConfigError)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return root
}

// mustLoadConfig loads configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustNewLogger builds the stderr logger for cfg.LogMode, exits on error.
func mustNewLogger(cfg *config.Config) *logger.Logger {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		exitWithError(ExitConfigError, "creating logger: %v", err)
	}
	return log
}

// mustNewProvider builds the configured embedding provider, exits on error.
func mustNewProvider(cfg *config.Config) *embedding.Cached {
	provider, err := pipeline.NewProvider(cfg.Embedding)
	if err != nil {
		exitWithError(ExitConfigError, "creating embedding provider: %v", err)
	}
	return provider
}

// mustOpenService loads the data directory and builds the pipeline.
// The caller is responsible for calling Sync() on the returned logger.
func mustOpenService(ctx context.Context) (*pipeline.Service, *config.Config, *logger.Logger) {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	provider := mustNewProvider(cfg)

	opts := []pipeline.Option{pipeline.WithAllowDegraded(allowDegraded)}
	if humanOutput {
		opts = append(opts, pipeline.WithProgress(semantic.ProgressFunc(printProgress)))
	}

	svc, err := pipeline.Open(ctx, root, cfg, log, provider, opts...)
	if err != nil {
		exitForError(err, "opening %s", config.DataPath(root))
	}
	return svc, cfg, log
}

// exitForError maps domain errors to exit codes and exits.
func exitForError(err error, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	code := exitCode(err)
	if code == ExitModelUnavailable {
		exitWithError(code, "%s: analysis temporarily degraded: %v\n\nStart Ollama with 'ollama serve', retry with --allow-degraded, or set embedding.provider: hash", msg, err)
	}
	exitWithError(code, "%s: %v", msg, err)
}

// exitCode returns the exit code for err.
func exitCode(err error) int {
	switch {
	case errors.Is(err, embedding.ErrModelUnavailable):
		return ExitModelUnavailable
	case errors.Is(err, role.ErrUnknownRole):
		return ExitNotFound
	case errors.Is(err, catalog.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, depgraph.ErrCyclicDependency),
		errors.Is(err, taxonomy.ErrDuplicateName),
		errors.Is(err, taxonomy.ErrEmptyName),
		errors.Is(err, catalog.ErrDuplicateURL),
		errors.Is(err, skill.ErrInvalidProficiency),
		errors.Is(err, path.ErrInvalidBudget):
		return ExitDataError
	default:
		return ExitError
	}
}
