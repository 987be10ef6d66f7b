package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matsen/skillpath/internal/config"
	"github.com/matsen/skillpath/internal/role"
	"github.com/matsen/skillpath/internal/taxonomy"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a .skillpath data directory",
	Long: `Create .skillpath/ with a default config.yml and empty taxonomy and
roles files. Existing files are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		exitWithError(ExitError, "resolving path: %v", err)
	}

	created, err := initDataDir(root)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized %s\n", config.DataPath(root))
		for _, f := range created {
			fmt.Printf("  created %s\n", f)
		}
		return nil
	}
	return outputJSON(StatusResponse{Status: "initialized", Path: config.DataPath(root)})
}

// initDataDir creates the data directory under root and any missing starter
// files. It returns the files it wrote.
func initDataDir(root string) ([]string, error) {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	var created []string
	if _, err := os.Stat(config.ConfigPath(root)); os.IsNotExist(err) {
		if err := config.Default().Save(root); err != nil {
			return nil, err
		}
		created = append(created, config.ConfigPath(root))
	}

	starters := []struct {
		path string
		v    interface{}
	}{
		{config.TaxonomyPath(root), taxonomy.File{Version: taxonomy.CurrentFileVersion, Skills: []taxonomy.Entry{}}},
		{config.RolesPath(root), role.File{Version: role.CurrentFileVersion, Roles: map[string]map[string]float64{}}},
	}
	for _, s := range starters {
		if _, err := os.Stat(s.path); !os.IsNotExist(err) {
			continue
		}
		data, err := yaml.Marshal(s.v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", filepath.Base(s.path), err)
		}
		if err := os.WriteFile(s.path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", filepath.Base(s.path), err)
		}
		created = append(created, s.path)
	}
	return created, nil
}
