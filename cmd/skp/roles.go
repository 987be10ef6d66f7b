package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/role"
)

func init() {
	rootCmd.AddCommand(rolesCmd)
}

var rolesCmd = &cobra.Command{
	Use:   "roles [role]",
	Short: "List roles or show one role's required skills",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRoles,
}

// RoleResult is one role with its requirements.
type RoleResult struct {
	Role     string             `json:"role"`
	Requires []role.Requirement `json:"requires"`
}

func runRoles(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	roles, err := role.Load(config.RolesPath(root))
	if errors.Is(err, fs.ErrNotExist) {
		roles, err = role.New(nil)
	}
	if err != nil {
		exitWithError(ExitDataError, "loading roles: %v", err)
	}

	names := roles.Names()
	if len(args) == 1 {
		names = args
	}

	results := make([]RoleResult, 0, len(names))
	for _, name := range names {
		reqs, err := roles.Required(name)
		if err != nil {
			exitForError(err, "looking up role")
		}
		results = append(results, RoleResult{Role: name, Requires: reqs})
	}

	if !humanOutput {
		return outputJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("No roles defined")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%s\n", r.Role)
		for _, req := range r.Requires {
			fmt.Printf("  %.2f  %s\n", req.Importance, req.Skill)
		}
	}
	return nil
}
