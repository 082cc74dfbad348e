// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citekit/internal/migrate"
	"github.com/pdiddy/citekit/internal/style"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <style.csl>",
	Short: "Convert a legacy CSL style to a YAML style",
	Long: `Migrate compiles a legacy CSL 1.0 style into a declarative YAML style:
the procedural macros and conditionals become flat templates with
per-kind overrides, and the style's name, et-al, sorting, and
disambiguation settings become options. Elements with no declarative
equivalent are reported with --verbose.`,
	Args: cobra.ExactArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().StringP("output", "o", "", "write the style to this file instead of stdout")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	s, err := migrate.New(migrate.WithLogger(logger)).Read(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	data, err := style.Marshal(s)
	if err != nil {
		return err
	}

	out, _ := cmd.Flags().GetString("output")
	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", out)
	return nil
}
