package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/evaluate"
)

var (
	evalQueries string
	evalKs      []int
)

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVar(&evalQueries, "queries", "", "Labeled queries JSONL (default: .skillpath/queries.jsonl)")
	evalCmd.Flags().IntSliceVar(&evalKs, "k", []int{1, 3, 5}, "Cutoffs to score")
}

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Score the recommender against labeled queries",
	Long: `Score the recommender with precision@k, recall@k and nDCG@k.

Each line of the queries file is {"query": "...", "relevant": ["url", ...]}.
Queries with no relevant URLs are skipped.`,
	RunE: runEval,
}

// EvalResult is the response for the eval command.
type EvalResult struct {
	Queries int                `json:"queries"`
	Metrics map[string]float64 `json:"metrics"`
}

func runEval(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	svc, _, log := mustOpenService(ctx)
	defer log.Sync()

	path := evalQueries
	if path == "" {
		path = config.QueriesPath(svc.Root())
	}
	queries, err := evaluate.ReadQueries(path)
	if err != nil {
		exitWithError(ExitDataError, "loading queries: %v", err)
	}

	metrics, err := svc.Evaluate(ctx, queries, evalKs)
	if err != nil {
		exitForError(err, "evaluating recommender")
	}

	if !humanOutput {
		return outputJSON(EvalResult{Queries: len(queries), Metrics: metrics})
	}
	fmt.Printf("Evaluated %d queries\n", len(queries))
	for _, k := range evaluate.SortedKeys(metrics) {
		fmt.Printf("  %-14s %.4f\n", k, metrics[k])
	}
	return nil
}
