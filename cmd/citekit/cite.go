// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/citekit/internal/manuscript"
	"github.com/pdiddy/citekit/pkg/types"
)

var citeCmd = &cobra.Command{
	Use:   "cite <ids or citations...>",
	Short: "Render citations",
	Long: `Cite renders one citation of the given reference ids:

  citekit cite kuhn1962 smith2001

Arguments in manuscript form render as separate citations, in order, so
numbering and disambiguation follow them:

  citekit cite '[@kuhn1962, p. 12]' '@smith2001'`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCite,
}

func init() {
	citeCmd.Flags().Bool("integral", false, "render the narrative form (Kuhn (1962))")
	citeCmd.Flags().String("locator", "", "locator for the last id, e.g. 12 or 'chap. 3'")
	citeCmd.Flags().Bool("bibliography", false, "print the bibliography after the citations")
	rootCmd.AddCommand(citeCmd)
}

func runCite(cmd *cobra.Command, args []string) error {
	integral, _ := cmd.Flags().GetBool("integral")
	locator, _ := cmd.Flags().GetString("locator")
	withBib, _ := cmd.Flags().GetBool("bibliography")

	citations, err := citationsFromArgs(args, integral, locator)
	if err != nil {
		return err
	}
	var ids []string
	for _, c := range citations {
		for _, it := range c.Items {
			ids = append(ids, it.RefID)
		}
	}

	cfg := appConfig()
	e, err := loadEnv(cfg)
	if err != nil {
		return err
	}
	bib, err := loadBibliography(cmd.Context(), cfg, ids...)
	if err != nil {
		return err
	}
	bib, missing := bib.Select(ids...)
	if len(missing) > 0 {
		return fmt.Errorf("unknown reference ids: %s", strings.Join(missing, ", "))
	}

	p := e.processor(bib)
	out, err := p.RenderCitations(citations)
	if err != nil {
		return err
	}
	for _, s := range out {
		fmt.Fprintln(os.Stdout, s)
	}
	if withBib && e.style.Bibliography != nil {
		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, p.FormatBibliography())
	}
	return nil
}

// citationsFromArgs reads manuscript-form citations when any argument
// carries an @, and otherwise one citation of the plain ids.
func citationsFromArgs(args []string, integral bool, locator string) ([]types.Citation, error) {
	text := strings.Join(args, " ")
	if strings.Contains(text, "@") {
		occs := manuscript.Scan(text)
		if len(occs) == 0 {
			return nil, fmt.Errorf("no citations in %q", text)
		}
		out := make([]types.Citation, len(occs))
		for i, o := range occs {
			out[i] = o.Citation
			if integral {
				out[i].Mode = types.ModeIntegral
			}
		}
		return out, nil
	}

	c := types.Citation{}
	if integral {
		c.Mode = types.ModeIntegral
	}
	for _, id := range args {
		c.Items = append(c.Items, types.CitationItem{RefID: id})
	}
	if locator != "" {
		last := &c.Items[len(c.Items)-1]
		last.Label, last.Locator, last.Suffix = manuscript.ParseLocator(locator)
	}
	return []types.Citation{c}, nil
}
