package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var recommendTopK int

func init() {
	rootCmd.AddCommand(recommendCmd)
	recommendCmd.Flags().IntVarP(&recommendTopK, "limit", "n", 0, "Maximum results (default: recommend.top_k)")
}

var recommendCmd = &cobra.Command{
	Use:   "recommend <query>",
	Short: "Find learning resources for a skill or topic",
	Long: `Find catalog resources by semantic similarity to a query.

Results below recommend.min_score are dropped.

Examples:
  skp recommend "docker containers"
  skp recommend pandas -n 3 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRecommend,
}

func runRecommend(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	ctx := cmd.Context()
	svc, _, log := mustOpenService(ctx)
	defer log.Sync()

	recs, err := svc.Recommend(ctx, query, recommendTopK)
	if err != nil {
		exitForError(err, "recommending resources")
	}

	if !humanOutput {
		return outputJSON(recs)
	}
	if len(recs) == 0 {
		fmt.Printf("No resources found for %q\n", query)
		return nil
	}
	printScoredHuman(recs, "")
	return nil
}
