// Package cmd — extract command.
// This is the main command that orchestrates the pipeline:
// fetch → extract → query → render → write.
//
// It handles flag validation, renderer selection, and the --only / --all modes.
package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/gaurav-prasanna/ldpipe/core"
	"github.com/gaurav-prasanna/ldpipe/core/extract"
	"github.com/gaurav-prasanna/ldpipe/core/fetch"
	"github.com/gaurav-prasanna/ldpipe/core/output"
	"github.com/gaurav-prasanna/ldpipe/core/query"
	"github.com/gaurav-prasanna/ldpipe/core/render"
	"github.com/gaurav-prasanna/ldpipe/crawl"
)

// formatValue is a pflag.Value restricted to the known output formats.
type formatValue string

var formats = []string{"json", "yaml", "markdown", "pdf"}

func (f *formatValue) String() string { return string(*f) }
func (f *formatValue) Type() string   { return "format" }
func (f *formatValue) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "md" {
		s = "markdown"
	}
	if !slices.Contains(formats, s) {
		return fmt.Errorf("must be one of %s", strings.Join(formats, ", "))
	}
	*f = formatValue(s)
	return nil
}

var _ pflag.Value = (*formatValue)(nil)

// Flag variables.
var (
	flagOnly        bool
	flagAll         bool
	flagTypes       []string
	flagRepair      bool
	flagFormat      = formatValue("json")
	flagQuery       string
	flagOutputDir   string
	flagConcurrency int
	flagMaxPages    int
)

var extractCmd = &cobra.Command{
	Use:   "extract <url|file|->",
	Short: "Extract JSON-LD objects from a page",
	Long: `Extract reads an HTML page (from a URL, a local file or stdin), collects the
objects of its JSON-LD scripts, optionally keeps only some Schema.org types,
and renders them as JSON, YAML, Markdown or PDF.

Malformed JSON-LD scripts are skipped; --repair tries to fix them first.

Examples:
  ldpipe extract https://example.com/product/42
  ldpipe extract https://example.com/product/42 --type Product --type Offer
  ldpipe extract page.html --format markdown
  curl -s https://example.com | ldpipe extract - --query '.name'
  ldpipe extract https://example.com --all --type Product --output_dir ./out`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addExtractFlags(extractCmd.Flags())
}

func addExtractFlags(fs *pflag.FlagSet) {
	// Mode flags.
	fs.BoolVar(&flagOnly, "only", false, "Extract only the given page (default)")
	fs.BoolVar(&flagAll, "all", false, "Extract all discovered pages of the site (URL only)")

	// Extraction flags.
	fs.StringSliceVarP(&flagTypes, "type", "t", nil, "Keep only Schema.org objects of this type (repeatable, case-insensitive)")
	fs.BoolVar(&flagRepair, "repair", false, "Try to repair malformed JSON-LD scripts instead of skipping them")
	fs.StringVarP(&flagQuery, "query", "q", "", "jq expression applied to every object")

	// Output flags.
	fs.VarP(&flagFormat, "format", "f", "Output format: "+strings.Join(formats, ", "))
	fs.StringVar(&flagOutputDir, "output_dir", "", "Output directory (default: standard output)")

	// Crawl flags.
	fs.IntVar(&flagConcurrency, "concurrency", 0, "Pages processed in parallel with --all (default: LDPIPE_CONCURRENCY)")
	fs.IntVar(&flagMaxPages, "max_pages", 0, "Maximum number of pages with --all (default: LDPIPE_MAX_PAGES)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	source := args[0]

	// --- Validate flags ---
	if err := validateFlags(source); err != nil {
		return err
	}

	renderer, err := selectRenderer()
	if err != nil {
		return err
	}

	var querier core.Querier
	if flagQuery != "" {
		if querier, err = query.New(flagQuery); err != nil {
			return err
		}
	}

	var writer *output.Writer
	if flagOutputDir == "" {
		writer = output.NewStream(cmd.OutOrStdout())
	} else if writer, err = output.New(flagOutputDir); err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	p := &pipeline{
		fetcher: fetch.New(cfg.Timeout, cfg.UserAgent),
		extractor: extract.New(
			extract.WithTypes(flagTypes...),
			extract.WithRepair(flagRepair),
			extract.WithLogger(logger),
		),
		querier:  querier,
		renderer: renderer,
		writer:   writer,
		stdin:    cmd.InOrStdin(),
		logger:   logger,
	}

	if !flagAll {
		return p.runOnly(cmd.Context(), source)
	}

	maxPages := cfg.MaxPages
	if cmd.Flags().Changed("max_pages") {
		maxPages = flagMaxPages
	}
	concurrency := cfg.Concurrency
	if cmd.Flags().Changed("concurrency") {
		concurrency = flagConcurrency
	}

	discoverer := crawl.New(p.fetcher, maxPages, logger)
	return p.runAll(cmd.Context(), source, discoverer, concurrency)
}

// validateFlags checks mode flags against the source.
func validateFlags(source string) error {
	if flagOnly && flagAll {
		return fmt.Errorf("--only and --all are mutually exclusive")
	}
	if flagAll && !isURL(source) {
		return fmt.Errorf("--all requires a URL (got %s)", source)
	}
	if flagFormat == "pdf" && flagAll && flagOutputDir == "" {
		return fmt.Errorf("--format pdf with --all requires --output_dir")
	}
	for _, t := range flagTypes {
		if strings.TrimSpace(t) == "" {
			return fmt.Errorf("--type cannot be empty")
		}
	}
	return nil
}

// selectRenderer creates the appropriate Renderer based on flags.
func selectRenderer() (core.Renderer, error) {
	switch flagFormat {
	case "json":
		return render.NewJSONRenderer(), nil
	case "yaml":
		return render.NewYAMLRenderer(), nil
	case "markdown":
		return render.NewMarkdownRenderer(), nil
	case "pdf":
		return render.NewPDFRenderer(), nil
	default:
		return nil, fmt.Errorf("no output format selected")
	}
}
