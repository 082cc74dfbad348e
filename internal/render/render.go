// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render evaluates declarative templates against references.
// Render produces the unassembled component values of one reference; the
// Processor computes bibliography-wide disambiguation hints, sorts and
// groups entries, numbers citations, and assembles text through an
// output.Formatter.
package render

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/output"
	"github.com/pdiddy/citekit/pkg/types"
)

const doiResolver = "https://doi.org/"

// Env is the read-only input shared by one evaluation.
type Env struct {
	Options types.Config
	Locale  *types.Locale

	// Bibliography resolves parents referenced by id. May be nil.
	Bibliography *types.Bibliography

	// Formatter assembles nested lists. Defaults to plain text.
	Formatter output.Formatter

	// Item is the cited item when rendering a citation.
	Item *types.CitationItem

	Integral       bool
	InBibliography bool

	Logger *zap.Logger
}

// Render evaluates tmpl against ref. Components that are suppressed for
// the reference's kind, that find no data, or whose variable already
// rendered are omitted; an empty result means nothing renders.
func Render(tmpl types.Template, ref *types.Reference, hint Hint, env Env) []types.RenderedComponent {
	if env.Formatter == nil {
		env.Formatter = output.Plain{}
	}
	if env.Logger == nil {
		env.Logger = zap.NewNop()
	}
	e := &evaluation{
		env:      env,
		ref:      ref,
		kind:     ref.Kind(),
		hint:     hint,
		consumed: make(map[string]bool),
		blocked:  make(map[string]bool),
	}
	return e.template(tmpl)
}

// evaluation is the state of one Render call. consumed holds the
// variable keys, with their affix context, that already produced output;
// blocked holds base keys used up by substitution, in every context.
type evaluation struct {
	env      Env
	ref      *types.Reference
	kind     string
	hint     Hint
	consumed map[string]bool
	blocked  map[string]bool
}

func (e *evaluation) template(t types.Template) []types.RenderedComponent {
	var out []types.RenderedComponent
	for _, c := range t {
		if rc, ok := e.component(c); ok {
			out = append(out, rc)
		}
	}
	return out
}

// contextKey extends a variable key with the component's affixes, so the
// same field at two structurally distinct positions counts twice.
func contextKey(base string, r types.Rendering) string {
	if r.Prefix == nil && r.Suffix == nil {
		return base
	}
	return base + "~" + r.PrefixText() + "~" + r.SuffixText()
}

func (e *evaluation) component(c types.Component) (types.RenderedComponent, bool) {
	r := c.Base().Effective(e.kind)
	if r.IsSuppressed() {
		return types.RenderedComponent{}, false
	}
	base := c.VariableKey()
	key := contextKey(base, r)
	if e.blocked[base] || e.consumed[key] {
		return types.RenderedComponent{}, false
	}

	var rc types.RenderedComponent
	var ok bool
	switch c := c.(type) {
	case *types.ContributorComponent:
		rc, ok = e.contributor(c)
	case *types.DateComponent:
		rc, ok = e.date(c)
	case *types.TitleComponent:
		rc, ok = e.title(c)
	case *types.NumberComponent:
		rc, ok = e.number(c)
	case *types.VariableComponent:
		rc, ok = e.variable(c)
	case *types.TermComponent:
		rc, ok = e.term(c)
	case *types.ListComponent:
		rc, ok = e.list(c)
	}
	if !ok || rc.Value == "" {
		return types.RenderedComponent{}, false
	}
	e.consumed[key] = true
	rc.Component = c
	rc.Rendering = r
	rc.Kind = e.kind
	return rc, true
}

func (e *evaluation) contributor(c *types.ContributorComponent) (types.RenderedComponent, bool) {
	names := e.ref.Contributor(c.Role)
	if len(names) > 0 {
		return e.names(c, c.Role, names, ""), true
	}
	if c.Role != types.RoleAuthor {
		return types.RenderedComponent{}, false
	}
	return e.substitute(c)
}

// substitute renders the first available stand-in for a missing author
// and blocks the substituted field from rendering again.
func (e *evaluation) substitute(c *types.ContributorComponent) (types.RenderedComponent, bool) {
	sub := types.DefaultSubstitute()
	if e.env.Options.Substitute != nil {
		sub = *e.env.Options.Substitute
	}
	for _, key := range sub.Template {
		switch key {
		case types.SubstituteEditor, types.SubstituteTranslator:
			role := types.ContributorRole(key)
			names := e.ref.Contributor(role)
			if len(names) == 0 {
				continue
			}
			e.blocked["contributor:"+string(role)] = true
			e.env.Logger.Debug("author substituted", zap.String("ref", e.ref.ID), zap.String("by", string(role)))
			return e.names(c, role, names, sub.ContributorRoleForm), true
		case types.SubstituteTitle:
			title := e.ref.Title.Long()
			if c.Form == types.ContributorShort {
				title = e.ref.Title.ShortForm()
			}
			if title == "" {
				continue
			}
			e.blocked["title:"+string(types.TitlePrimary)] = true
			e.env.Logger.Debug("author substituted", zap.String("ref", e.ref.ID), zap.String("by", "title"))
			return types.RenderedComponent{Value: title}, true
		}
	}
	return types.RenderedComponent{}, false
}

func (e *evaluation) names(c *types.ContributorComponent, role types.ContributorRole, names types.Contributor, subForm types.TermForm) types.RenderedComponent {
	opts := NameOptions{
		Form:         c.Form,
		Order:        c.NameOrder,
		Delimiter:    c.Delimiter,
		Integral:     e.env.Integral,
		Bibliography: e.env.InBibliography,
	}
	if e.env.Options.Contributors != nil {
		opts.Config = *e.env.Options.Contributors
	}
	if c.Role == types.RoleAuthor {
		opts.MinNames = e.hint.MinNames
		opts.ExpandGiven = e.hint.ExpandGivenNames
	}
	if c.Form == types.ContributorVerb || c.Form == types.ContributorVerbShort {
		opts.Form = types.ContributorLong
	}
	rc := types.RenderedComponent{Value: FormatNames(names, opts, e.env.Locale)}
	plural := len(names) > 1
	loc := e.env.Locale

	switch {
	case c.Form == types.ContributorVerb:
		if l := loc.RoleLabel(role, types.TermFormVerb, plural); l != "" {
			rc.Prefix = l + " "
		}
	case c.Form == types.ContributorVerbShort:
		if l := loc.RoleLabel(role, types.TermFormVerbShort, plural); l != "" {
			rc.Prefix = l + " "
		}
	case c.Label != nil:
		form := c.Label.Form
		if form == "" {
			form = types.TermFormShort
		}
		l := loc.RoleLabel(role, form, plural)
		if l == "" {
			break
		}
		if c.Label.Placement == types.LabelPrefix {
			rc.Prefix = l + " "
			break
		}
		if c.Label.Wrap != types.WrapNone {
			rc.Suffix = " " + output.Wrap(l, c.Label.Wrap)
		} else {
			rc.Suffix = ", " + l
		}
	case subForm != "":
		if l := loc.RoleLabel(role, subForm, plural); l != "" {
			rc.Suffix = ", " + l
		}
	}
	return rc
}

func (e *evaluation) date(c *types.DateComponent) (types.RenderedComponent, bool) {
	var month types.MonthFormat
	if e.env.Options.Dates != nil {
		month = e.env.Options.Dates.Month
	}
	d := e.ref.Date(c.Date).Parse()
	var v string
	noDate := false
	if d.IsZero() {
		if c.Date != types.DateIssued {
			return types.RenderedComponent{}, false
		}
		v = e.env.Locale.Term(types.TermNoDate, types.TermFormShort)
		noDate = true
	} else {
		v = FormatDate(d, c.Form, month, e.env.Locale)
	}
	if v == "" {
		return types.RenderedComponent{}, false
	}
	if c.Date == types.DateIssued && e.hint.YearSuffix > 0 && c.Form != types.DateFormMonthDay {
		if noDate {
			v += "-"
		}
		v += YearSuffix(e.hint.YearSuffix)
	}
	return types.RenderedComponent{Value: v}, true
}

func (e *evaluation) title(c *types.TitleComponent) (types.RenderedComponent, bool) {
	var t *types.Title
	switch c.Title {
	case types.TitlePrimary:
		t = e.ref.Title
	case types.TitleParentSerial:
		if !e.ref.IsSerialComponent() {
			return types.RenderedComponent{}, false
		}
		if p := e.env.Bibliography.Parent(e.ref); p != nil {
			t = p.Title
		}
	case types.TitleParentMonograph:
		if !e.ref.IsCollectionComponent() {
			return types.RenderedComponent{}, false
		}
		if p := e.env.Bibliography.Parent(e.ref); p != nil {
			t = p.Title
		}
	}
	v := t.Long()
	if c.Form == types.TitleShort {
		v = t.ShortForm()
	}
	rc := types.RenderedComponent{Value: v}
	if l := e.env.Options.Links; l != nil && l.Target == types.LinkTitle && c.Title == types.TitlePrimary {
		rc.URL = e.link()
	}
	return rc, v != ""
}

func (e *evaluation) number(c *types.NumberComponent) (types.RenderedComponent, bool) {
	var v string
	kind := locatorKind(c.Number)
	switch c.Number {
	case types.NumberCitationNumber:
		if e.hint.CitationNumber == 0 {
			return types.RenderedComponent{}, false
		}
		v = strconv.Itoa(e.hint.CitationNumber)
	case types.NumberLocator:
		if e.env.Item == nil || e.env.Item.Locator == "" {
			return types.RenderedComponent{}, false
		}
		v = e.env.Item.Locator
		if e.env.Item.Label != "" {
			kind = e.env.Item.Label
		}
	default:
		v = e.ref.NumberValue(c.Number)
	}
	if v == "" {
		return types.RenderedComponent{}, false
	}
	raw := v
	if c.Number == types.NumberPages || (c.Number == types.NumberLocator && kind == types.LocatorPage) {
		v = FormatPageRange(v, e.env.Options.PageRangeFormat)
	}
	if c.Form == types.NumberOrdinal {
		v = Ordinal(v)
	}
	rc := types.RenderedComponent{Value: v}
	if c.Label != nil && kind != "" {
		if l := e.env.Locale.LocatorLabel(kind, *c.Label, isPlural(raw)); l != "" {
			if c.Number == types.NumberEdition {
				rc.Suffix = " " + l
			} else {
				rc.Prefix = l + " "
			}
		}
	}
	return rc, true
}

func locatorKind(v types.NumberVariable) types.LocatorKind {
	switch v {
	case types.NumberPages, types.NumberOfPages, types.NumberLocator:
		return types.LocatorPage
	case types.NumberVolume:
		return types.LocatorVolume
	case types.NumberIssue:
		return types.LocatorIssue
	case types.NumberEdition:
		return types.LocatorEdition
	case types.NumberChapter:
		return types.LocatorChapter
	}
	return ""
}

func (e *evaluation) variable(c *types.VariableComponent) (types.RenderedComponent, bool) {
	v := e.ref.Variable(c.Variable)
	if v == "" {
		return types.RenderedComponent{}, false
	}
	rc := types.RenderedComponent{Value: v}
	if l := e.env.Options.Links; l != nil && l.Target != types.LinkTitle {
		switch {
		case c.Variable == types.VarDOI && l.DOI:
			rc.URL = doiResolver + strings.TrimPrefix(v, doiResolver)
		case c.Variable == types.VarURL && l.URL:
			rc.URL = v
		}
	}
	return rc, true
}

// link returns the hyperlink for the reference, preferring the DOI.
func (e *evaluation) link() string {
	l := e.env.Options.Links
	switch {
	case l == nil:
		return ""
	case l.DOI && e.ref.DOI != "":
		return doiResolver + strings.TrimPrefix(e.ref.DOI, doiResolver)
	case l.URL && e.ref.URL != "":
		return e.ref.URL
	}
	return ""
}

func (e *evaluation) term(c *types.TermComponent) (types.RenderedComponent, bool) {
	form := c.Form
	if form == "" {
		form = types.TermFormLong
	}
	v := e.env.Locale.Term(c.Term, form)
	return types.RenderedComponent{Value: v}, v != ""
}

// list renders the children and joins the non-empty ones. A list whose
// children are all empty renders nothing.
func (e *evaluation) list(c *types.ListComponent) (types.RenderedComponent, bool) {
	children := e.template(c.Items)
	if len(children) == 0 {
		return types.RenderedComponent{}, false
	}
	v := output.Join(e.env.Formatter, children, c.Delimiter, e.env.Locale)
	return types.RenderedComponent{Value: v, Preformatted: true}, v != ""
}
