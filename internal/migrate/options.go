// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package migrate

import (
	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/legacy"
	"github.com/pdiddy/citekit/pkg/types"
)

var pageRangeFormats = map[string]types.PageRangeFormat{
	"expanded":    types.PageRangeExpanded,
	"minimal":     types.PageRangeMinimal,
	"minimal-two": types.PageRangeMinimalTwo,
	"chicago":     types.PageRangeChicago,
	"chicago-15":  types.PageRangeChicago,
	"chicago-16":  types.PageRangeChicago,
}

func (m *Migrator) options(s *legacy.Style) types.Config {
	cfg := types.Config{
		Processing:      m.processing(s),
		PageRangeFormat: pageRangeFormats[s.Options.PageRangeFormat],
	}
	names, layout := authorNames(s)
	cfg.Contributors = contributors(s, names, layout)
	if names != nil {
		cfg.Substitute = substitute(names)
	}
	return cfg
}

func (m *Migrator) processing(s *legacy.Style) *types.Processing {
	p := &types.Processing{Mode: types.ModeAuthorDate}
	switch {
	case s.Class == "note":
		p.Mode = types.ModeNote
	case usesCitationNumber(s):
		p.Mode = types.ModeNumeric
	}

	if c := s.Citation; c != nil {
		p.Disambiguate = &types.Disambiguation{
			Names:        c.Options.DisambiguateAddNames,
			AddGivenName: c.Options.DisambiguateAddGivenName,
			YearSuffix:   c.Options.DisambiguateAddYearSuffix,
		}
	}

	keys := sortKeys(s)
	var specs []types.SortSpec
	seen := make(map[types.SortKey]bool)
	for _, k := range keys {
		key, ok := sortKey(k)
		if !ok {
			m.logger.Warn("dropping sort key", zap.String("variable", k.Variable), zap.String("macro", k.Macro))
			continue
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		spec := types.SortSpec{Key: key}
		// Legacy keys ascend unless marked otherwise.
		if !k.Descending != spec.IsAscending() {
			spec.Ascending = types.Ptr(!k.Descending)
		}
		specs = append(specs, spec)
	}
	if len(specs) > 0 {
		p.Sort = &types.Sort{Template: specs}
	}
	return p
}

func sortKeys(s *legacy.Style) []legacy.SortKey {
	if s.Bibliography != nil && len(s.Bibliography.Sort) > 0 {
		return s.Bibliography.Sort
	}
	if s.Citation != nil {
		return s.Citation.Sort
	}
	return nil
}

// sortKey maps a legacy key to a sort criterion. A macro key sorts by
// the first field its macro renders.
func sortKey(k legacy.SortKey) (types.SortKey, bool) {
	if k.Variable != "" {
		return variableSortKey(k.Variable)
	}
	var out types.SortKey
	found := false
	walk(k.Nodes, func(n legacy.Node) bool {
		var v string
		switch n := n.(type) {
		case *legacy.Names:
			if len(n.Variables) > 0 {
				v = n.Variables[0]
			}
		case *legacy.Date:
			v = n.Variable
		case *legacy.Variable:
			v = n.Name
		case *legacy.Number:
			v = n.Variable
		default:
			return true
		}
		out, found = variableSortKey(v)
		return false
	})
	return out, found
}

func variableSortKey(v string) (types.SortKey, bool) {
	switch v {
	case "author", "editor", "translator":
		return types.SortAuthor, true
	case "issued":
		return types.SortYear, true
	case "title", "title-short":
		return types.SortTitle, true
	case "citation-number":
		return types.SortCitationNumber, true
	}
	return "", false
}

func usesCitationNumber(s *legacy.Style) bool {
	found := false
	for _, l := range []*legacy.Layout{s.Citation, s.Bibliography} {
		if l == nil {
			continue
		}
		walk(l.Nodes, func(n legacy.Node) bool {
			switch n := n.(type) {
			case *legacy.Variable:
				found = found || n.Name == "citation-number"
			case *legacy.Number:
				found = found || n.Variable == "citation-number"
			}
			return !found
		})
	}
	return found
}

// authorNames finds the first author <names> of the bibliography, or of
// the citation when there is no bibliography, with the layout it sits in.
func authorNames(s *legacy.Style) (*legacy.Names, *legacy.Layout) {
	for _, l := range []*legacy.Layout{s.Bibliography, s.Citation} {
		if names := layoutAuthor(l); names != nil {
			return names, l
		}
	}
	return nil, nil
}

// layoutAuthor returns the first author <names> in l, or nil.
func layoutAuthor(l *legacy.Layout) *legacy.Names {
	if l == nil {
		return nil
	}
	var found *legacy.Names
	walk(l.Nodes, func(n legacy.Node) bool {
		if names, ok := n.(*legacy.Names); ok && contains(names.Variables, "author") {
			found = names
			return false
		}
		return true
	})
	return found
}

// precedesLast resolves delimiter-precedes-last for one layout from its
// own author names over its inherited options. CSL defaults to
// contextual.
func precedesLast(l *legacy.Layout) types.DelimiterPrecedes {
	if l == nil {
		return ""
	}
	opts := l.Options.Names
	if names := layoutAuthor(l); names != nil {
		opts = overlayNames(opts, names.Name)
	}
	if opts.DelimiterPrecedesLast == "" {
		return types.PrecedesContextual
	}
	return types.DelimiterPrecedes(opts.DelimiterPrecedesLast)
}

func contributors(s *legacy.Style, names *legacy.Names, layout *legacy.Layout) *types.ContributorConfig {
	var opts legacy.NameOptions
	if layout != nil {
		opts = layout.Options.Names
	}
	if names != nil {
		opts = overlayNames(opts, names.Name)
	}

	cfg := &types.ContributorConfig{
		DelimiterPrecedesEtAl:     types.DelimiterPrecedes(opts.DelimiterPrecedesEtAl),
		DemoteNonDroppingParticle: types.DemoteParticle(s.Options.DemoteNonDroppingParticle),
	}
	switch opts.NameAsSortOrder {
	case "all":
		cfg.DisplayAsSort = types.DisplayAll
	case "first":
		cfg.DisplayAsSort = types.DisplayFirst
	}
	switch opts.And {
	case "text":
		cfg.And = types.AndText
	case "symbol":
		cfg.And = types.AndSymbol
	}
	if opts.Delimiter != nil {
		cfg.Delimiter = types.Ptr(*opts.Delimiter)
	}
	if opts.InitializeWith != nil {
		cfg.InitializeWith = types.Ptr(*opts.InitializeWith)
	}
	if s.Citation != nil {
		cfg.Shorten = shorten(s.Citation.Options.Names)
	}
	if s.Bibliography != nil {
		cfg.BibliographyShorten = shorten(s.Bibliography.Options.Names)
	}

	cite, bib := precedesLast(s.Citation), precedesLast(s.Bibliography)
	switch {
	case s.Citation == nil:
		cfg.DelimiterPrecedesLast = bib
	case s.Bibliography == nil || bib == cite:
		cfg.DelimiterPrecedesLast = cite
	default:
		cfg.DelimiterPrecedesLast = cite
		cfg.BibliographyDelimiterPrecedesLast = bib
	}
	return cfg
}

func overlayNames(base, top legacy.NameOptions) legacy.NameOptions {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	base.And = pick(base.And, top.And)
	base.DelimiterPrecedesLast = pick(base.DelimiterPrecedesLast, top.DelimiterPrecedesLast)
	base.DelimiterPrecedesEtAl = pick(base.DelimiterPrecedesEtAl, top.DelimiterPrecedesEtAl)
	base.NameAsSortOrder = pick(base.NameAsSortOrder, top.NameAsSortOrder)
	if top.Delimiter != nil {
		base.Delimiter = top.Delimiter
	}
	if top.InitializeWith != nil {
		base.InitializeWith = top.InitializeWith
	}
	return base
}

func shorten(o legacy.NameOptions) *types.ShortenListOptions {
	if o.EtAlMin == 0 || o.EtAlUseFirst == 0 {
		return nil
	}
	out := &types.ShortenListOptions{Min: o.EtAlMin, UseFirst: o.EtAlUseFirst}
	if o.EtAlUseLast {
		out.UseLast = 1
	}
	return out
}

// substitute reads the fallbacks of an author <names>. A label on the
// author names becomes the role label of a substituted contributor.
func substitute(names *legacy.Names) *types.Substitute {
	var keys []types.SubstituteKey
	seen := make(map[types.SubstituteKey]bool)
	add := func(k types.SubstituteKey) {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for _, n := range names.Substitute {
		switch n := n.(type) {
		case *legacy.Names:
			for _, v := range n.Variables {
				switch v {
				case "editor":
					add(types.SubstituteEditor)
				case "translator":
					add(types.SubstituteTranslator)
				}
			}
		case *legacy.Variable:
			if n.Name == "title" || n.Name == "title-short" {
				add(types.SubstituteTitle)
			}
		}
	}
	if len(keys) == 0 {
		return nil
	}
	out := &types.Substitute{Template: keys}
	if names.Label != nil {
		out.ContributorRoleForm = roleForm(names.Label.Form)
	}
	return out
}

func roleForm(form string) types.TermForm {
	switch form {
	case "short":
		return types.TermFormShort
	case "verb":
		return types.TermFormVerb
	case "verb-short":
		return types.TermFormVerbShort
	}
	return types.TermFormLong
}

// walk visits nodes depth first, entering groups and every branch of a
// condition, until visit returns false.
func walk(nodes []legacy.Node, visit func(legacy.Node) bool) bool {
	for _, n := range nodes {
		if !visit(n) {
			return false
		}
		var children [][]legacy.Node
		switch n := n.(type) {
		case *legacy.Group:
			children = append(children, n.Children)
		case *legacy.Condition:
			children = append(children, n.Then.Children)
			for _, b := range n.ElseIfs {
				children = append(children, b.Children)
			}
			children = append(children, n.Else)
		}
		for _, c := range children {
			if !walk(c, visit) {
				return false
			}
		}
	}
	return true
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
