package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/skillpath/internal/mapper"
	"github.com/matsen/skillpath/internal/pdf"
)

var (
	extractText     string
	extractFile     string
	extractPDF      string
	extractHTML     string
	extractMaxPages int
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractText, "text", "", "Text to extract skills from")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "Plain text file to read ('-' for stdin)")
	extractCmd.Flags().StringVar(&extractPDF, "pdf", "", "PDF resume or job description")
	extractCmd.Flags().StringVar(&extractHTML, "html", "", "HTML job posting")
	extractCmd.Flags().IntVar(&extractMaxPages, "max-pages", 0, "Maximum PDF pages to read (0 for all)")
	extractCmd.MarkFlagsMutuallyExclusive("text", "file", "pdf", "html")
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract canonical skills from text",
	Long: `Extract canonical skills from a resume or job description.

Exact names and aliases from the taxonomy always match. Other noun phrases
are matched by embedding similarity when it exceeds mapper.threshold.

Examples:
  skp extract --text "Built REST APIs in Go and Postgres"
  skp extract --pdf resume.pdf
  curl -s https://jobs.example.com/123 | skp extract --html -`,
	RunE: runExtract,
}

var errNoInput = errors.New("one of --text, --file, --pdf or --html is required")

// readInput returns the text selected by the extract flags.
func readInput(stdin io.Reader) (string, error) {
	switch {
	case extractText != "":
		return extractText, nil
	case extractFile != "":
		r, closeFn, err := openInput(extractFile, stdin)
		if err != nil {
			return "", err
		}
		defer closeFn()
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", extractFile, err)
		}
		return string(data), nil
	case extractHTML != "":
		r, closeFn, err := openInput(extractHTML, stdin)
		if err != nil {
			return "", err
		}
		defer closeFn()
		return mapper.TextFromHTML(r)
	case extractPDF != "":
		return pdf.ExtractText(extractPDF, extractMaxPages)
	default:
		return "", errNoInput
	}
}

// openInput opens name, or returns stdin for "-".
func openInput(name string, stdin io.Reader) (io.Reader, func(), error) {
	if name == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", name, err)
	}
	return f, func() { f.Close() }, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	text, err := readInput(os.Stdin)
	if err != nil {
		if errors.Is(err, errNoInput) {
			return err
		}
		exitWithError(ExitDataError, "reading input: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		exitWithError(ExitDataError, "input contains no text")
	}

	ctx := cmd.Context()
	svc, _, log := mustOpenService(ctx)
	defer log.Sync()

	res, err := svc.ExtractSkills(ctx, text)
	if err != nil {
		exitForError(err, "extracting skills")
	}

	if humanOutput {
		if res.Degraded {
			fmt.Println("warning: embedding model unavailable, showing alias matches only")
		}
		if len(res.Skills) == 0 {
			fmt.Println("No skills found")
			return nil
		}
		fmt.Printf("Found %d skills:\n", len(res.Skills))
		for _, s := range res.Skills {
			fmt.Printf("  %s\n", s)
		}
		return nil
	}
	return outputJSON(res)
}
