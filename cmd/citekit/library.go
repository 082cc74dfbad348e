// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citekit/internal/library"
	"github.com/pdiddy/citekit/internal/refs"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Manage the reference library (ingest, search, show)",
	Long: `Library manages a local SQLite reference library with a full-text index
over titles and contributor names. Other commands read it when no
--bibliography file is given.`,
}

// --- ingest subcommand ---

var libraryIngestCmd = &cobra.Command{
	Use:   "ingest <files...>",
	Short: "Add reference files to the library",
	Long: `Ingest reads YAML, CSL-JSON, or CSL-YAML reference files into the
library. Files unchanged since their last ingest are skipped; a changed
file replaces the references it held before.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLibraryIngest,
}

func runLibraryIngest(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(cmd.Context(), os.Stdout, args...)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d file(s) failed ingest", summary.Failed)
	}
	return nil
}

// --- search subcommand ---

var librarySearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library by title and contributor names",
	Long: `Search matches the query against titles and contributor names using
the full-text index. Column filters such as names:kuhn and prefix
queries such as struct* are supported. --kind and --year narrow the
results and may be used without a query.`,
	RunE: runLibrarySearch,
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	year, _ := cmd.Flags().GetString("year")
	limit, _ := cmd.Flags().GetInt("limit")
	opts := library.QueryOptions{
		Query:      strings.Join(args, " "),
		Kind:       kind,
		Year:       year,
		MaxResults: limit,
	}
	if opts.Query == "" && opts.Kind == "" && opts.Year == "" {
		return fmt.Errorf("query or filter required: provide a search query, --kind, or --year")
	}

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), opts)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatSearchOutput(results, jsonOutput)
}

func formatSearchOutput(results []library.Result, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-20s  %-16s  %-4s  %-24s  %s\n", "ID", "Kind", "Year", "Names", "Title")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 110))
	for _, r := range results {
		fmt.Fprintf(os.Stdout, "%-20s  %-16s  %-4s  %-24s  %s\n",
			truncate(r.ID, 20), truncate(r.Kind, 16), r.Year, truncate(r.Names, 24), truncate(r.Title, 40))
	}
	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// --- show subcommand ---

var libraryShowCmd = &cobra.Command{
	Use:   "show [ids...]",
	Short: "Print library references as YAML or CSL-JSON",
	Long: `Show writes the given references, with the parents they name, in a
reference file format. Without ids it exports the whole library.`,
	RunE: runLibraryShow,
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output-format")
	switch refs.Format(format) {
	case refs.FormatNative, refs.FormatCSLJSON, refs.FormatCSLYAML:
	default:
		return fmt.Errorf("unsupported output format %q: use yaml, csl-json, or csl-yaml", format)
	}

	store, err := openLibrary(appConfig())
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Export(cmd.Context(), os.Stdout, refs.Format(format), args...)
}

func init() {
	libraryCmd.PersistentFlags().Int("max-results", 20, "default number of search results")
	_ = viper.BindPFlag("max-results", libraryCmd.PersistentFlags().Lookup("max-results"))

	librarySearchCmd.Flags().String("kind", "", "filter by item kind (book, article-journal, ...)")
	librarySearchCmd.Flags().String("year", "", "filter by issued year")
	librarySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	librarySearchCmd.Flags().Bool("json", false, "output results as JSON")

	libraryShowCmd.Flags().String("output-format", "yaml", "yaml, csl-json, or csl-yaml")

	libraryCmd.AddCommand(libraryIngestCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryShowCmd)

	rootCmd.AddCommand(libraryCmd)
}
