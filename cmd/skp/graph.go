package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/depgraph"
)

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.AddCommand(graphOrderCmd)
	graphCmd.AddCommand(graphPrereqsCmd)
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Inspect the prerequisite graph",
}

var graphOrderCmd = &cobra.Command{
	Use:   "order [skill...]",
	Short: "Print skills in learning order",
	Long: `Print skills in prerequisite order.

With no arguments every skill in the graph is listed. With arguments only
those skills are ordered; skills absent from the graph come last.`,
	RunE: runGraphOrder,
}

var graphPrereqsCmd = &cobra.Command{
	Use:   "prereqs <skill>",
	Short: "Print the direct prerequisites of a skill",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runGraphPrereqs,
}

// mustLoadGraph loads the prerequisite graph without touching the embedding model.
func mustLoadGraph() *depgraph.Graph {
	root := mustFindRepository()
	g, err := depgraph.Load(config.EdgesPath(root))
	if err != nil {
		exitForError(err, "loading prerequisites")
	}
	return g
}

// GraphOrderResult is the response for graph order.
type GraphOrderResult struct {
	Order []string `json:"order"`
}

func runGraphOrder(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph()

	order := g.Order()
	if len(args) > 0 {
		order = g.SortSkills(args)
	}
	if order == nil {
		order = []string{}
	}

	if !humanOutput {
		return outputJSON(GraphOrderResult{Order: order})
	}
	for i, s := range order {
		fmt.Printf("%3d. %s\n", i+1, s)
	}
	return nil
}

// GraphPrereqsResult is the response for graph prereqs.
type GraphPrereqsResult struct {
	Skill         string   `json:"skill"`
	Known         bool     `json:"known"`
	Prerequisites []string `json:"prerequisites"`
}

func runGraphPrereqs(cmd *cobra.Command, args []string) error {
	g := mustLoadGraph()
	name := strings.Join(args, " ")

	res := GraphPrereqsResult{
		Skill:         name,
		Known:         g.Has(name),
		Prerequisites: g.Prerequisites(name),
	}
	if res.Prerequisites == nil {
		res.Prerequisites = []string{}
	}

	if !humanOutput {
		return outputJSON(res)
	}
	switch {
	case !res.Known:
		fmt.Printf("%s is not in the prerequisite graph\n", name)
	case len(res.Prerequisites) == 0:
		fmt.Printf("%s has no prerequisites\n", name)
	default:
		fmt.Printf("%s requires: %s\n", name, strings.Join(res.Prerequisites, ", "))
	}
	return nil
}
