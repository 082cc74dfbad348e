// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/output"
	"github.com/pdiddy/citekit/pkg/types"
)

// ErrNoCitationTemplate is returned when a style cannot render citations.
var ErrNoCitationTemplate = errors.New("style has no citation template")

// Processor renders citations and bibliographies for one style,
// bibliography, and locale. Disambiguation hints are computed once in
// New; the citation-number registry is the only state that changes
// afterwards, so citations must be rendered in document order.
type Processor struct {
	style   *types.Style
	bib     *types.Bibliography
	locale  *types.Locale
	format  output.Formatter
	logger  *zap.Logger
	numbers *Registry
	sorter  *Sorter
	hints   map[string]Hint
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// WithFormatter sets the output formatter. The default is plain text.
func WithFormatter(f output.Formatter) Option {
	return func(p *Processor) { p.format = f }
}

// WithRegistry shares a citation-number registry between processors.
func WithRegistry(r *Registry) Option {
	return func(p *Processor) { p.numbers = r }
}

// New returns a Processor and computes the disambiguation hints for the
// whole bibliography.
func New(style *types.Style, bib *types.Bibliography, loc *types.Locale, opts ...Option) *Processor {
	if bib == nil {
		bib = types.NewBibliography()
	}
	p := &Processor{
		style:   style,
		bib:     bib,
		locale:  loc,
		format:  output.Plain{},
		logger:  zap.NewNop(),
		numbers: NewRegistry(),
	}
	for _, o := range opts {
		o(p)
	}
	p.sorter = NewSorter(loc, style.Options.Contributors)
	order := p.sorter.Sort(bib.References(), style.Options.Processing.SortOrDefault(), nil)
	p.hints = ComputeHints(order, style.Options)

	ambiguous := 0
	for _, h := range p.hints {
		if h.Ambiguous {
			ambiguous++
		}
	}
	p.logger.Debug("hints computed",
		zap.String("mode", string(style.Options.Processing.ModeOrDefault())),
		zap.Int("references", bib.Len()),
		zap.Int("ambiguous", ambiguous))
	return p
}

// Hint returns the disambiguation hint for id.
func (p *Processor) Hint(id string) Hint {
	h := p.hints[id]
	if n, ok := p.numbers.Lookup(id); ok {
		h.CitationNumber = n
	}
	return h
}

func (p *Processor) env() Env {
	return Env{
		Options:      p.style.Options,
		Locale:       p.locale,
		Bibliography: p.bib,
		Formatter:    p.format,
		Logger:       p.logger,
	}
}

// citedItem is one rendered item of a citation.
type citedItem struct {
	item   types.CitationItem
	comps  []types.RenderedComponent
	author string
	number int
}

// RenderCitation renders one citation. Every item must name a reference
// in the bibliography; a missing one aborts the citation with a
// *NotFoundError before any number is assigned.
func (p *Processor) RenderCitation(c types.Citation) (string, error) {
	spec := p.style.Citation
	if spec == nil {
		return "", ErrNoCitationTemplate
	}
	refs := make([]*types.Reference, len(c.Items))
	for i, it := range c.Items {
		r, ok := p.bib.Get(it.RefID)
		if !ok {
			return "", &NotFoundError{ID: it.RefID}
		}
		refs[i] = r
	}

	tmpl := spec.Template
	if c.IsIntegral() && len(spec.Integral) > 0 {
		tmpl = spec.Integral
	}

	items := make([]citedItem, len(c.Items))
	for i, it := range c.Items {
		hint := p.hints[it.RefID]
		hint.CitationNumber = p.numbers.Assign(it.RefID)
		env := p.env()
		env.Item = &c.Items[i]
		env.Integral = c.IsIntegral()

		comps := Render(tmpl, refs[i], hint, env)
		if it.Locator != "" && !hasLocator(tmpl) {
			comps = append(comps, p.locator(it, refs[i].Kind()))
		}
		items[i] = citedItem{
			item:   it,
			comps:  comps,
			author: authorValue(comps),
			number: hint.CitationNumber,
		}
	}

	body := p.joinItems(spec, items)
	if c.IsIntegral() {
		return body, nil
	}
	return p.format.Escape(spec.Prefix) + output.Wrap(body, spec.Wrap) + p.format.Escape(spec.Suffix), nil
}

// RenderCitations renders citations in document order.
func (p *Processor) RenderCitations(cs []types.Citation) ([]string, error) {
	out := make([]string, len(cs))
	for i, c := range cs {
		s, err := p.RenderCitation(c)
		if err != nil {
			return nil, fmt.Errorf("citation %d: %w", i+1, err)
		}
		out[i] = s
	}
	return out, nil
}

func (p *Processor) joinItems(spec *types.CitationSpec, items []citedItem) string {
	if spec.Collapse == types.CollapseCitationNumber {
		if s, ok := p.collapseNumbers(spec, items); ok {
			return s
		}
	}
	var b strings.Builder
	for i, ci := range items {
		comps := applyVisibility(ci.comps, ci.item.Visibility)
		delim := spec.CiteDelimiter()
		if spec.Collapse == types.CollapseYear && i > 0 && ci.author != "" &&
			ci.author == items[i-1].author && ci.item.Prefix == "" && items[i-1].item.Suffix == "" {
			comps = applyVisibility(comps, types.VisibilitySuppressAuthor)
			delim = spec.ItemDelimiter()
		}
		s := output.Join(p.format, comps, spec.ItemDelimiter(), p.locale)
		if s == "" {
			continue
		}
		s = p.format.Escape(ci.item.Prefix) + s + p.format.Escape(ci.item.Suffix)
		if b.Len() > 0 {
			b.WriteString(p.format.Escape(delim))
		}
		b.WriteString(s)
	}
	return b.String()
}

// collapseNumbers renders consecutive citation numbers as ranges. It
// applies only when every item renders as a bare number.
func (p *Processor) collapseNumbers(spec *types.CitationSpec, items []citedItem) (string, bool) {
	nums := make([]int, 0, len(items))
	for _, ci := range items {
		if ci.item.Prefix != "" || ci.item.Suffix != "" || ci.item.Locator != "" {
			return "", false
		}
		s := output.Join(output.Plain{}, ci.comps, "", p.locale)
		if s != strconv.Itoa(ci.number) {
			return "", false
		}
		nums = append(nums, ci.number)
	}
	sort.Ints(nums)
	var parts []string
	for i := 0; i < len(nums); {
		j := i
		for j+1 < len(nums) && nums[j+1] <= nums[j]+1 {
			j++
		}
		switch {
		case nums[j]-nums[i] >= 2:
			parts = append(parts, strconv.Itoa(nums[i])+enDash+strconv.Itoa(nums[j]))
		case nums[j] != nums[i]:
			parts = append(parts, strconv.Itoa(nums[i]), strconv.Itoa(nums[j]))
		default:
			parts = append(parts, strconv.Itoa(nums[i]))
		}
		i = j + 1
	}
	return p.format.Escape(strings.Join(parts, spec.CiteDelimiter())), true
}

// locator renders a cited item's locator for templates without a
// locator component.
func (p *Processor) locator(it types.CitationItem, refKind string) types.RenderedComponent {
	kind := it.Label
	if kind == "" {
		kind = types.LocatorPage
	}
	v := it.Locator
	if kind == types.LocatorPage {
		v = FormatPageRange(v, p.style.Options.PageRangeFormat)
	}
	rc := types.RenderedComponent{
		Value:     v,
		Component: &types.NumberComponent{Number: types.NumberLocator},
		Kind:      refKind,
	}
	if l := p.locale.LocatorLabel(kind, types.LabelShort, isPlural(it.Locator)); l != "" {
		rc.Prefix = l + " "
	}
	return rc
}

func hasLocator(t types.Template) bool {
	for _, c := range t {
		switch c := c.(type) {
		case *types.NumberComponent:
			if c.Number == types.NumberLocator {
				return true
			}
		case *types.ListComponent:
			if hasLocator(c.Items) {
				return true
			}
		}
	}
	return false
}

func isAuthor(rc types.RenderedComponent) bool {
	c, ok := rc.Component.(*types.ContributorComponent)
	return ok && c.Role == types.RoleAuthor
}

func authorValue(comps []types.RenderedComponent) string {
	for _, rc := range comps {
		if isAuthor(rc) {
			return rc.Value
		}
	}
	return ""
}

// applyVisibility drops the author for suppress-author items and keeps
// only the author for author-only items. The author still rendered, so
// its substitution has already blocked the substituted field.
func applyVisibility(comps []types.RenderedComponent, v types.ItemVisibility) []types.RenderedComponent {
	if v == types.VisibilityDefault {
		return comps
	}
	out := make([]types.RenderedComponent, 0, len(comps))
	for _, rc := range comps {
		if isAuthor(rc) == (v == types.VisibilityAuthorOnly) {
			out = append(out, rc)
		}
	}
	return out
}

// Bibliography renders every reference, sorted and grouped. References
// without a citation number are numbered after the cited ones, in
// bibliography order.
func (p *Processor) Bibliography() []types.EntryGroup {
	spec := p.style.Bibliography
	if spec == nil {
		return nil
	}
	for _, id := range p.bib.IDs() {
		p.numbers.Assign(id)
	}
	order := p.order(p.bib.References(), p.style.Options.Processing.SortOrDefault())

	if len(spec.Groups) == 0 {
		return []types.EntryGroup{{Entries: p.entries(order, p.hints, spec)}}
	}

	placed := make(map[string]bool, len(order))
	var groups []types.EntryGroup
	for _, g := range spec.Groups {
		var members []*types.Reference
		for _, r := range order {
			if !placed[r.ID] && g.Selector.Matches(r.Kind()) {
				members = append(members, r)
				placed[r.ID] = true
			}
		}
		if g.Sort != nil {
			members = p.order(members, *g.Sort)
		}
		hints := p.hints
		if g.Disambiguate == types.ScopeLocal {
			hints = ComputeHints(members, p.style.Options)
			p.logger.Debug("group hints computed", zap.String("group", g.ID), zap.Int("references", len(members)))
		}
		groups = append(groups, types.EntryGroup{ID: g.ID, Heading: g.Heading, Entries: p.entries(members, hints, spec)})
	}
	var rest []*types.Reference
	for _, r := range order {
		if !placed[r.ID] {
			rest = append(rest, r)
		}
	}
	if len(rest) > 0 {
		groups = append(groups, types.EntryGroup{Entries: p.entries(rest, p.hints, spec)})
	}
	return groups
}

// order sorts refs by spec, or by citation number for numeric styles
// without an explicit sort.
func (p *Processor) order(refs []*types.Reference, spec types.Sort) []*types.Reference {
	number := func(id string) int {
		n, _ := p.numbers.Lookup(id)
		return n
	}
	if len(spec.Template) == 0 && p.style.Options.Processing.ModeOrDefault() == types.ModeNumeric {
		spec = types.Sort{Template: []types.SortSpec{{Key: types.SortCitationNumber}}}
	}
	return p.sorter.Sort(refs, spec, number)
}

func (p *Processor) entries(refs []*types.Reference, hints map[string]Hint, spec *types.BibliographySpec) []types.Entry {
	env := p.env()
	env.InBibliography = true

	out := make([]types.Entry, 0, len(refs))
	prevAuthor := ""
	for _, r := range refs {
		hint := hints[r.ID]
		hint.CitationNumber, _ = p.numbers.Lookup(r.ID)
		comps := Render(spec.TemplateFor(r.Kind()), r, hint, env)

		if sub := spec.SubsequentAuthorSubstitute; sub != "" {
			for i := range comps {
				if !isAuthor(comps[i]) {
					continue
				}
				author := comps[i].Value
				if author == prevAuthor {
					comps[i].Value = sub
				}
				prevAuthor = author
				break
			}
		}
		out = append(out, types.Entry{ID: r.ID, Components: comps})
	}
	return out
}

// FormatBibliography renders the bibliography and assembles it as text.
func (p *Processor) FormatBibliography() string {
	return output.Bibliography(p.format, p.Bibliography(), p.style.Bibliography, p.locale)
}
