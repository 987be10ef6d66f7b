package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/gap"
	"github.com/matsen/skillpath/internal/logger"
	"github.com/matsen/skillpath/internal/pipeline"
)

var (
	pathHours float64
	pathGaps  string
)

func init() {
	rootCmd.AddCommand(pathCmd)
	addLearnerFlags(pathCmd)
	pathCmd.Flags().Float64Var(&pathHours, "hours", 0, "Study hours per week (default: path.hours_per_week)")
	pathCmd.Flags().StringVar(&pathGaps, "gaps", "", "Gaps JSON from 'skp gaps' instead of analyzing (- for stdin)")
}

var pathCmd = &cobra.Command{
	Use:   "path",
	Short: "Generate a learning path for a role",
	Long: `Generate a learning path that closes the gaps for a role.

Modules follow prerequisite order and are packed into weeks of --hours.
Each module carries the closest catalog resources, or search links when
nothing in the catalog fits.

With --gaps the analysis step is skipped and the gaps are read from the
output of 'skp gaps' (or a JSON array of gaps). --role and --user override
the values recorded in that file.

Examples:
  skp path --profile me.yml --hours 8
  skp path --skills "HTML,CSS:beginner" --role "Frontend Developer"
  skp gaps --profile me.yml | skp path --gaps -`,
	RunE: runPath,
}

// loadGapsReport reads saved gaps from name ("-" for stdin) and applies the
// role and user overrides.
func loadGapsReport(name string, stdin io.Reader, roleFlag, userFlag string) (*gap.Report, error) {
	r, closeFn, err := openInput(name, stdin)
	if err != nil {
		return nil, err
	}
	defer closeFn()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	report, err := gap.ReadReport(data)
	if err != nil {
		return nil, err
	}
	if roleFlag != "" {
		report.Role = roleFlag
	}
	if userFlag != "" {
		report.UserID = userFlag
	}
	if strings.TrimSpace(report.Role) == "" {
		return nil, errors.New("a target role is required (--role or role in the gaps file)")
	}
	if report.UserID == "" {
		report.UserID = "anonymous"
	}
	return report, nil
}

// pathReport returns the gaps to plan for, from --gaps or a fresh analysis.
// The caller is responsible for calling Sync() on the returned logger.
func pathReport(cmd *cobra.Command) (*gap.Report, *pipeline.Service, *logger.Logger) {
	if pathGaps == "" {
		res, svc, log := analyzeLearner(cmd)
		return &gap.Report{UserID: res.UserID, Role: res.Role, Gaps: res.Gaps}, svc, log
	}

	report, err := loadGapsReport(pathGaps, os.Stdin, learnerRole, learnerUser)
	if err != nil {
		exitWithError(ExitDataError, "--gaps: %v", err)
	}
	svc, _, log := mustOpenService(cmd.Context())
	return report, svc, log
}

func runPath(cmd *cobra.Command, args []string) error {
	report, svc, log := pathReport(cmd)
	defer log.Sync()

	lp, err := svc.GeneratePath(cmd.Context(), report.UserID, report.Role, report.Gaps, pathHours)
	if err != nil {
		exitForError(err, "generating path")
	}

	if !humanOutput {
		return outputJSON(lp)
	}

	if len(lp.Modules) == 0 {
		fmt.Printf("No gaps for %s: nothing to learn\n", lp.Role)
		return nil
	}
	fmt.Printf("Learning path for %s: %d modules, %.0f hours over %d weeks at %.0f h/week\n",
		lp.Role, len(lp.Modules), lp.TotalHours(), lp.TotalWeeks(), lp.HoursPerWeek)
	if lp.Degraded {
		fmt.Println("warning: embedding model unavailable, some modules use search links")
	}
	for i, m := range lp.Modules {
		fmt.Printf("\n%d. %s  (week %d", i+1, m.Title, m.Week)
		if m.SpanWeeks > 1 {
			fmt.Printf("-%d", m.Week+m.SpanWeeks-1)
		}
		fmt.Printf(", %.0f h, %s)\n", m.EstimatedHours, m.StartDate.Format("2006-01-02"))
		fmt.Printf("   %s\n", m.Description)
		printScoredHuman(m.Resources, "   ")
	}
	return nil
}
