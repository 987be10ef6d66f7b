package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/embedding"
	"github.com/matsen/skillpath/internal/pipeline"
	"github.com/matsen/skillpath/internal/recommend"
	"github.com/matsen/skillpath/internal/semantic"
)

var noProgress bool

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexCheckCmd)

	indexBuildCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Suppress progress output")
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the catalog semantic index",
	Long:  `Commands for building and checking the semantic index of the resource catalog.`,
}

// IndexBuildResult is the response for index build command.
type IndexBuildResult struct {
	Status           string  `json:"status"`
	ResourcesIndexed int     `json:"resources_indexed"`
	ResourcesSkipped int     `json:"resources_skipped"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Model            string  `json:"model"`
	IndexSizeBytes   int64   `json:"index_size_bytes"`
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or rebuild the semantic index",
	Long: `Build or rebuild the semantic index from catalog.jsonl.

With the ollama provider, Ollama must be running with the embedding model
available. Run 'ollama pull all-minilm:l6-v2' to download the default model.`,
	RunE: runIndexBuild,
}

// mustValidateOllama checks that Ollama is running and has the configured model.
// Other providers need no check.
func mustValidateOllama(ctx context.Context, cfg *config.Config) {
	if cfg.Embedding.Provider != config.ProviderOllama {
		return
	}
	provider := embedding.NewOllamaProvider(
		embedding.WithBaseURL(cfg.Embedding.OllamaURL),
		embedding.WithModel(cfg.Embedding.Model),
	)
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitModelUnavailable, "Ollama is not running at %s\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai", cfg.Embedding.OllamaURL)
	}

	hasModel, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitError, "checking model availability: %v", err)
	}
	if !hasModel {
		exitWithError(ExitModelUnavailable, "embedding model %q not found\n\nRun 'ollama pull %s' to download it.", provider.ModelName(), provider.ModelName())
	}
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	log := mustNewLogger(cfg)
	defer log.Sync()

	mustValidateOllama(ctx, cfg)
	provider := mustNewProvider(cfg)

	resources, err := catalog.ReadAll(config.CatalogPath(root))
	if err != nil {
		exitWithError(ExitDataError, "loading catalog: %v", err)
	}

	opts := []recommend.Option{recommend.WithLogger(log)}
	if !noProgress && humanOutput {
		opts = append(opts, recommend.WithProgress(semantic.ProgressFunc(printProgress)))
		fmt.Fprintf(os.Stderr, "Embedding %d resources...\n", len(resources))
	}

	start := time.Now()
	rec, err := recommend.New(ctx, provider, resources, opts...)
	if err != nil {
		exitForError(err, "building index")
	}
	idx := rec.Index()

	indexPath := config.IndexPath(root)
	if err := idx.Save(indexPath); err != nil {
		exitWithError(ExitError, "saving index: %v", err)
	}

	res := IndexBuildResult{
		Status:           "complete",
		ResourcesIndexed: idx.DocumentCount,
		ResourcesSkipped: idx.SkippedCount,
		DurationSeconds:  time.Since(start).Seconds(),
		Model:            idx.ModelName,
	}
	// Size is informational only
	if size, err := semantic.Size(indexPath); err == nil {
		res.IndexSizeBytes = size
	}

	if !humanOutput {
		return outputJSON(res)
	}
	fmt.Printf("Build complete:\n")
	fmt.Printf("  Resources indexed: %d\n", res.ResourcesIndexed)
	fmt.Printf("  Resources skipped: %d (no text)\n", res.ResourcesSkipped)
	fmt.Printf("  Time elapsed: %s\n", formatDuration(time.Since(start)))
	fmt.Printf("  Index size: %s\n", formatBytes(res.IndexSizeBytes))
	fmt.Printf("  Model: %s\n", res.Model)
	return nil
}

var indexCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether the semantic index matches the catalog",
	Long: `Check the semantic index against catalog.jsonl and the configured model.

Exits with status 6 when the index is missing or stale.`,
	RunE: runIndexCheck,
}

func runIndexCheck(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	cfg := mustLoadConfig(root)
	provider := mustNewProvider(cfg)

	st, err := pipeline.CheckIndex(root, provider.ModelName(), provider.Dimensions())
	if err != nil {
		exitWithError(ExitDataError, "checking index: %v", err)
	}

	if humanOutput {
		switch {
		case st.Fresh:
			fmt.Printf("Index is up to date (%d resources, model %s, built %s, %s)\n",
				st.DocumentCount, st.ModelName, st.CreatedAt.Format(time.RFC3339), formatBytes(st.SizeBytes))
		default:
			fmt.Printf("Index needs rebuilding: %s\n\nRun 'skp index build'.\n", st.Reason)
		}
	} else {
		outputJSON(st)
	}

	if !st.Fresh {
		os.Exit(ExitIndexStale)
	}
	return nil
}
