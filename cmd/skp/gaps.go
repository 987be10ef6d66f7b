package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/gap"
	"github.com/matsen/skillpath/internal/logger"
	"github.com/matsen/skillpath/internal/pipeline"
	"github.com/matsen/skillpath/internal/skill"
)

var (
	learnerProfile string
	learnerSkills  string
	learnerRole    string
	learnerUser    string
	learnerMin     string
	learnerLevel   string
)

// addLearnerFlags registers the flags shared by gaps and path.
func addLearnerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&learnerProfile, "profile", "", "Learner profile YAML")
	cmd.Flags().StringVar(&learnerSkills, "skills", "", "Current skills, e.g. \"Python:advanced,SQL\" (overrides the profile)")
	cmd.Flags().StringVar(&learnerRole, "role", "", "Target role (default: goal.target_role from the profile)")
	cmd.Flags().StringVar(&learnerUser, "user", "", "User ID recorded on the result")
	cmd.Flags().StringVar(&learnerMin, "min", "", "Required proficiency (default: gaps.min_proficiency)")
	cmd.Flags().StringVar(&learnerLevel, "level", "intermediate", "Proficiency for --skills entries without one")
}

func init() {
	rootCmd.AddCommand(gapsCmd)
	addLearnerFlags(gapsCmd)
}

var gapsCmd = &cobra.Command{
	Use:   "gaps",
	Short: "Compare current skills against a role",
	Long: `Compare current skills against the skills a role requires.

A required skill with no current skill at or above gaps.threshold similarity
is MISSING. A matched skill below the required proficiency is
PROFICIENCY_LOW. Missing skills are listed first.

Examples:
  skp gaps --profile me.yml
  skp gaps --skills "Python:beginner,SQL" --role "Data Scientist"`,
	RunE: runGaps,
}

// GapsResult is the response for the gaps command.
type GapsResult struct {
	UserID string         `json:"user_id"`
	Role   string         `json:"role"`
	Min    string         `json:"min_proficiency"`
	Gaps   []gap.SkillGap `json:"gaps"`
	Skills []skill.Skill  `json:"current_skills"`
}

// analyzeLearner loads the learner from flags and runs gap analysis.
// The caller is responsible for calling Sync() on the returned logger.
func analyzeLearner(cmd *cobra.Command) (*GapsResult, *pipeline.Service, *logger.Logger) {
	ctx := cmd.Context()
	svc, cfg, log := mustOpenService(ctx)

	def, err := skill.ParseProficiency(learnerLevel)
	if err != nil {
		exitWithError(ExitDataError, "--level: %v", err)
	}
	required := cfg.Gaps.MinProficiency
	if learnerMin != "" {
		if required, err = skill.ParseProficiency(learnerMin); err != nil {
			exitWithError(ExitDataError, "--min: %v", err)
		}
	}

	in, err := loadLearner(learnerProfile, learnerSkills, learnerRole, learnerUser, def)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	gaps, err := svc.AnalyzeGaps(ctx, in.Skills, in.Role, required)
	if err != nil {
		exitForError(err, "analyzing gaps")
	}

	res := &GapsResult{
		UserID: in.UserID,
		Role:   in.Role,
		Min:    required.String(),
		Gaps:   gaps,
		Skills: in.Skills,
	}
	if res.Skills == nil {
		res.Skills = []skill.Skill{}
	}
	return res, svc, log
}

func runGaps(cmd *cobra.Command, args []string) error {
	res, _, log := analyzeLearner(cmd)
	defer log.Sync()

	if !humanOutput {
		return outputJSON(res)
	}

	if len(res.Gaps) == 0 {
		fmt.Printf("No gaps for %s at %s\n", res.Role, res.Min)
		return nil
	}
	fmt.Printf("%d gaps for %s (required: %s)\n\n", len(res.Gaps), res.Role, res.Min)
	for _, g := range res.Gaps {
		fmt.Printf("  %-16s %-20s %s\n", g.Type, g.Skill, g.Reason)
	}
	return nil
}
