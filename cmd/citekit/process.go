// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/manuscript"
)

var processCmd = &cobra.Command{
	Use:   "process <manuscript>",
	Short: "Render the citations of a Markdown manuscript",
	Long: `Process replaces the citations of a Markdown manuscript with rendered
citations and appends the bibliography of the cited references.

The manuscript is a Markdown file, or a directory of numbered section
files (01-introduction.md, 02-methods.md, ...) joined in order. Use
--check to list citation keys the references do not hold without
rendering.`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringP("output", "o", "", "write the result to this file instead of stdout")
	processCmd.Flags().String("heading", manuscript.DefaultHeading, "heading of the appended bibliography")
	processCmd.Flags().Bool("check", false, "only report citation keys missing from the references")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	text, err := manuscript.Load(args[0])
	if err != nil {
		return err
	}
	occs := manuscript.Scan(text)
	keys := manuscript.Keys(occs)
	logger.Debug("manuscript scanned",
		zap.String("path", args[0]),
		zap.Int("citations", len(occs)),
		zap.Int("references", len(keys)))

	cfg := appConfig()
	bib, err := loadBibliography(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	if check, _ := cmd.Flags().GetBool("check"); check {
		missing := manuscript.Missing(text, bib)
		for _, k := range missing {
			fmt.Fprintln(os.Stdout, k)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%d citation key(s) not found", len(missing))
		}
		fmt.Fprintf(os.Stdout, "All %d citation keys found.\n", len(keys))
		return nil
	}

	cited, err := manuscript.Cited(text, bib)
	if err != nil {
		return err
	}
	e, err := loadEnv(cfg)
	if err != nil {
		return err
	}
	heading, _ := cmd.Flags().GetString("heading")
	result, err := manuscript.Process(e.processor(cited), text, heading)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		_, err = os.Stdout.WriteString(result)
		return err
	}
	if err := os.WriteFile(out, []byte(result), 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s (%d citations)\n", out, len(occs))
	return nil
}
