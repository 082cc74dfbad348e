// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render [ids...]",
	Short: "Format a bibliography",
	Long: `Render formats the bibliography of the given reference ids, or of every
reference when no ids are given, in the configured style, locale, and
output format. Parents named by id are included so that chapters and
articles resolve their containers.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("heading", "", "print a heading above the bibliography")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg := appConfig()
	e, err := loadEnv(cfg)
	if err != nil {
		return err
	}
	bib, err := loadBibliography(cmd.Context(), cfg, args...)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		var missing []string
		bib, missing = bib.Select(args...)
		if len(missing) > 0 {
			return fmt.Errorf("unknown reference ids: %s", strings.Join(missing, ", "))
		}
	}
	if e.style.Bibliography == nil {
		return fmt.Errorf("style %s has no bibliography", e.style.Info.ID)
	}

	p := e.processor(bib)
	if heading, _ := cmd.Flags().GetString("heading"); heading != "" {
		fmt.Fprintln(os.Stdout, e.formatter.Heading(heading))
	}
	fmt.Fprintln(os.Stdout, p.FormatBibliography())
	return nil
}
