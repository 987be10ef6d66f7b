package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/catalog"
	"github.com/matsen/skillpath/internal/config"
)

var (
	catalogNoIndex bool
	catalogFilter  catalog.Filter
	catalogType    string
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogGetCmd)

	catalogImportCmd.Flags().BoolVar(&catalogNoIndex, "no-index", false, "Skip re-embedding the catalog")

	catalogListCmd.Flags().StringVar(&catalogType, "type", "", "Filter by resource type")
	catalogListCmd.Flags().StringVar(&catalogFilter.Source, "source", "", "Filter by source")
	catalogListCmd.Flags().StringVar(&catalogFilter.Topic, "topic", "", "Filter by topic (case-insensitive)")
	catalogListCmd.Flags().IntVarP(&catalogFilter.Limit, "limit", "n", 0, "Maximum results (0 for all)")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the learning resource catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.jsonl>",
	Short: "Merge resources into the catalog",
	Long: `Merge resources from a JSONL file into catalog.jsonl.

Resources are matched by URL: new URLs are added and known URLs are replaced.
The semantic index is rebuilt afterwards unless --no-index is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog resources",
	RunE:  runCatalogList,
}

var catalogGetCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Show one catalog resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogGet,
}

// CatalogImportResult is the response for catalog import.
type CatalogImportResult struct {
	Added   int  `json:"added"`
	Updated int  `json:"updated"`
	Total   int  `json:"total"`
	Indexed bool `json:"indexed"`
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()

	// ReadAll treats a missing file as empty; an import source must exist.
	if _, err := os.Stat(args[0]); err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}
	incoming, err := catalog.ReadAll(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", args[0], err)
	}

	existing, err := catalog.ReadAll(config.CatalogPath(root))
	if err != nil {
		exitWithError(ExitDataError, "loading catalog: %v", err)
	}

	merged, added, updated := catalog.Merge(existing, incoming)
	if err := catalog.WriteAll(config.CatalogPath(root), merged); err != nil {
		exitWithError(ExitError, "writing catalog: %v", err)
	}

	db := mustOpenCatalogDB(root)
	db.Close()

	res := CatalogImportResult{Added: added, Updated: updated, Total: len(merged)}
	if !catalogNoIndex {
		// Open rebuilds and saves the now stale index, or defers it while
		// the model is down.
		svc, _, log := mustOpenService(cmd.Context())
		log.Sync()
		res.Indexed = svc.Recommender().Ready()
	}

	if !humanOutput {
		return outputJSON(res)
	}
	fmt.Printf("Imported %s: %d added, %d updated, %d total\n", args[0], res.Added, res.Updated, res.Total)
	if !res.Indexed {
		fmt.Println("Index not rebuilt; run 'skp index build' before recommending.")
	}
	return nil
}

// mustOpenCatalogDB opens the SQLite catalog, rebuilding it from
// catalog.jsonl when that file is newer. The caller must Close the DB.
func mustOpenCatalogDB(root string) *catalog.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}
	stale := isStale(config.DBPath(root), config.CatalogPath(root))

	db, err := catalog.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening catalog database: %v", err)
	}
	if stale {
		if _, err := db.RebuildFromJSONL(config.CatalogPath(root)); err != nil {
			db.Close()
			exitWithError(ExitDataError, "rebuilding catalog database: %v", err)
		}
	}
	return db
}

// isStale reports whether derived is missing or older than source.
func isStale(derived, source string) bool {
	d, err := os.Stat(derived)
	if err != nil {
		return true
	}
	s, err := os.Stat(source)
	if err != nil {
		return true
	}
	return !d.ModTime().After(s.ModTime())
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	if catalogType != "" {
		t := catalog.ResourceType(catalogType)
		if !t.Valid() {
			exitWithError(ExitDataError, "%v: %q (valid: %v)", catalog.ErrInvalidType, catalogType, catalog.ValidTypes)
		}
		catalogFilter.Type = t
	}

	root := mustFindRepository()
	db := mustOpenCatalogDB(root)
	defer db.Close()

	resources, err := db.List(catalogFilter)
	if err != nil {
		exitWithError(ExitError, "listing resources: %v", err)
	}
	if resources == nil {
		resources = []catalog.Resource{}
	}

	if !humanOutput {
		return outputJSON(resources)
	}
	if len(resources) == 0 {
		fmt.Println("No resources")
		return nil
	}
	for _, r := range resources {
		fmt.Printf("%-13s %-50s %s\n", r.Type, truncateString(r.Title, ListTitleMaxLen), r.URL)
	}
	return nil
}

func runCatalogGet(cmd *cobra.Command, args []string) error {
	root := mustFindRepository()
	db := mustOpenCatalogDB(root)
	defer db.Close()

	r, err := db.GetByURL(args[0])
	if err != nil {
		exitForError(err, "getting resource")
	}

	if !humanOutput {
		return outputJSON(r)
	}
	fmt.Printf("%s\n", r.Title)
	fmt.Printf("  URL:      %s\n", r.URL)
	fmt.Printf("  Type:     %s\n", r.Type)
	if r.Source != "" {
		fmt.Printf("  Source:   %s\n", r.Source)
	}
	if r.Topic != "" {
		fmt.Printf("  Topic:    %s\n", r.Topic)
	}
	if r.DurationMinutes > 0 {
		fmt.Printf("  Duration: %s\n", formatMinutes(r.DurationMinutes))
	}
	if r.Description != "" {
		fmt.Printf("\n  %s\n", r.Description)
	}
	return nil
}
