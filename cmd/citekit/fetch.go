// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/citekit/internal/fetch"
	"github.com/pdiddy/citekit/internal/refs"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <dois...>",
	Short: "Fetch references by DOI",
	Long: `Fetch asks the DOI resolver for the CSL metadata of each DOI and writes
the references as YAML. Each reference gets a key such as kuhn1962.
With --ingest the output file is added to the library.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringP("output", "o", "", "write the references to this file instead of stdout")
	fetchCmd.Flags().Bool("ingest", false, "ingest the output file into the library (requires --output)")
	fetchCmd.Flags().String("mailto", "", "contact address sent to the resolver (config key: mailto)")
	_ = viper.BindPFlag("mailto", fetchCmd.Flags().Lookup("mailto"))
	fetchCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("output")
	ingest, _ := cmd.Flags().GetBool("ingest")
	if ingest && out == "" {
		return fmt.Errorf("--ingest requires --output")
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")

	opts := []fetch.Option{fetch.WithLogger(logger), fetch.WithTimeout(timeout)}
	if mailto := viper.GetString("mailto"); mailto != "" {
		opts = append(opts, fetch.WithMailto(mailto))
	}
	client := fetch.New(opts...)
	bib, summary := client.FetchAll(cmd.Context(), os.Stderr, args...)
	if bib.Len() > 0 {
		if out == "" {
			if err := refs.Write(os.Stdout, bib, refs.FormatNative); err != nil {
				return err
			}
		} else {
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := refs.Write(f, bib, refs.FormatNative); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			if ingest {
				if err := runLibraryIngest(cmd, []string{out}); err != nil {
					return err
				}
			}
		}
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d DOI(s) failed", summary.Failed)
	}
	return nil
}
