// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package migrate converts a legacy CSL 1.0 style into a declarative
// style. Layouts go through the compiler; global options, sort keys, and
// name settings map onto the style configuration.
package migrate

import (
	"fmt"
	"io"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/compiler"
	"github.com/pdiddy/citekit/internal/legacy"
	"github.com/pdiddy/citekit/internal/style"
	"github.com/pdiddy/citekit/pkg/types"
)

// Option configures a Migrator.
type Option func(*Migrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Migrator) { m.logger = l }
}

// Migrator converts legacy styles.
type Migrator struct {
	logger   *zap.Logger
	compiler *compiler.Compiler
}

// New returns a Migrator.
func New(opts ...Option) *Migrator {
	m := &Migrator{logger: zap.NewNop()}
	for _, o := range opts {
		o(m)
	}
	m.compiler = compiler.New(compiler.WithLogger(m.logger))
	return m
}

// Read parses a legacy style from r and migrates it.
func (m *Migrator) Read(r io.Reader) (*types.Style, error) {
	s, err := legacy.Parse(r, legacy.WithLogger(m.logger))
	if err != nil {
		return nil, fmt.Errorf("parsing legacy style: %w", err)
	}
	return m.Migrate(s)
}

// Migrate converts s. The result passes style validation.
func (m *Migrator) Migrate(s *legacy.Style) (*types.Style, error) {
	if s.Citation == nil && s.Bibliography == nil {
		return nil, fmt.Errorf("legacy style %q has neither citation nor bibliography", s.ID)
	}
	out := &types.Style{
		Info: types.StyleInfo{
			ID:     shortID(s.ID),
			Title:  s.Title,
			Source: s.ID,
		},
		Options: m.options(s),
	}
	if s.Citation != nil {
		out.Citation = m.citation(s.Citation, out.Options.Processing.ModeOrDefault())
	}
	if s.Bibliography != nil {
		out.Bibliography = m.bibliography(s.Bibliography)
	}
	if err := style.Validate(out); err != nil {
		return nil, fmt.Errorf("migrated style %q: %w", s.ID, err)
	}
	m.logger.Info("legacy style migrated",
		zap.String("id", out.Info.ID),
		zap.String("mode", string(out.Options.Processing.ModeOrDefault())),
		zap.Int("citation_components", citationSize(out)),
		zap.Int("bibliography_components", bibliographySize(out)))
	return out, nil
}

// Read migrates a legacy style with a default Migrator.
func Read(r io.Reader) (*types.Style, error) { return New().Read(r) }

func shortID(id string) string {
	id = strings.TrimSuffix(id, "/")
	if base := path.Base(id); base != "." && base != "/" {
		return base
	}
	return id
}

func (m *Migrator) citation(l *legacy.Layout, mode types.ProcessingMode) *types.CitationSpec {
	spec := &types.CitationSpec{}
	prefix, suffix, wrap := compiler.SplitWrap(l.Prefix, l.Suffix)
	spec.Prefix, spec.Suffix, spec.Wrap = prefix, suffix, wrap
	if l.Delimiter != "" {
		spec.MultiCiteDelimiter = types.Ptr(l.Delimiter)
	}

	nodes := l.Nodes
	if g, ok := soleGroup(nodes); ok {
		nodes = g.Children
		spec.Delimiter = types.Ptr(g.Delimiter)
	} else {
		spec.Delimiter = types.Ptr("")
	}
	spec.Template = m.compiler.CompileCitation(nodes)

	switch l.Options.Collapse {
	case "citation-number":
		spec.Collapse = types.CollapseCitationNumber
	case "year", "year-suffix", "year-suffix-ranged":
		spec.Collapse = types.CollapseYear
	}
	if mode == types.ModeAuthorDate {
		spec.Integral = integral(spec.Template)
	}
	return spec
}

// soleGroup returns the group that makes up a whole layout when it
// carries nothing but a delimiter.
func soleGroup(nodes []legacy.Node) (*legacy.Group, bool) {
	if len(nodes) != 1 {
		return nil, false
	}
	g, ok := nodes[0].(*legacy.Group)
	if !ok || g.Formatting != (legacy.Formatting{}) {
		return nil, false
	}
	return g, true
}

// integral derives the narrative form of an author-date citation: the
// author, then the remaining fields in parentheses after a space.
func integral(t types.Template) types.Template {
	if len(t) < 2 {
		return nil
	}
	author, ok := t[0].(*types.ContributorComponent)
	if !ok || author.Role != types.RoleAuthor {
		return nil
	}
	out := types.Template{author.Clone()}
	for _, c := range t[1:] {
		c = c.Clone()
		if d, ok := c.(*types.DateComponent); ok {
			d.Wrap = types.Ptr(types.WrapParentheses)
			d.Prefix = types.Ptr(" ")
			d.Suffix = nil
		}
		out = append(out, c)
	}
	return out
}

func (m *Migrator) bibliography(l *legacy.Layout) *types.BibliographySpec {
	spec := &types.BibliographySpec{
		Template:    m.compiler.Compile(l.Nodes),
		Separator:   types.Ptr(""),
		EntrySuffix: types.Ptr(l.Suffix),
	}
	if l.Prefix != "" {
		m.logger.Debug("dropping bibliography layout prefix", zap.String("prefix", l.Prefix))
	}
	if sub := l.Options.SubsequentAuthorSubstitute; sub != nil {
		spec.SubsequentAuthorSubstitute = *sub
	}
	return spec
}

func citationSize(s *types.Style) int {
	if s.Citation == nil {
		return 0
	}
	return len(s.Citation.Template)
}

func bibliographySize(s *types.Style) int {
	if s.Bibliography == nil {
		return 0
	}
	return len(s.Bibliography.Template)
}
