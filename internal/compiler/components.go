// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compiler

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/legacy"
	"github.com/pdiddy/citekit/pkg/types"
)

var roles = map[string]types.ContributorRole{
	"author":     types.RoleAuthor,
	"editor":     types.RoleEditor,
	"translator": types.RoleTranslator,
}

var dateVariables = map[string]types.DateVariable{
	"issued":        types.DateIssued,
	"accessed":      types.DateAccessed,
	"original-date": types.DateOriginal,
}

var numberVariables = map[string]types.NumberVariable{
	"volume":          types.NumberVolume,
	"issue":           types.NumberIssue,
	"page":            types.NumberPages,
	"edition":         types.NumberEdition,
	"number":          types.NumberNumber,
	"chapter-number":  types.NumberChapter,
	"number-of-pages": types.NumberOfPages,
	"citation-number": types.NumberCitationNumber,
	"locator":         types.NumberLocator,
}

var simpleVariables = map[string]types.SimpleVariable{
	"DOI":              types.VarDOI,
	"URL":              types.VarURL,
	"ISBN":             types.VarISBN,
	"ISSN":             types.VarISSN,
	"publisher":        types.VarPublisher,
	"publisher-place":  types.VarPublisherPlace,
	"genre":            types.VarGenre,
	"medium":           types.VarMedium,
	"note":             types.VarNote,
	"archive":          types.VarArchive,
	"authority":        types.VarAuthority,
	"jurisdiction":     types.VarJurisdiction,
	"version":          types.VarVersion,
	"language":         types.VarLanguage,
	"collection-title": types.VarCollectionTitle,
}

func (w *walker) names(n *legacy.Names) []types.Component {
	if n.Name.Form == "count" {
		w.logger.Debug("dropping name count")
		return nil
	}
	var out []types.Component
	for _, v := range n.Variables {
		role, ok := roles[v]
		if !ok {
			w.logger.Debug("dropping names variable", zap.String("variable", v))
			continue
		}
		c := &types.ContributorComponent{Role: role}
		if n.Name.Form == "short" {
			c.Form = types.ContributorShort
		}
		switch n.Name.NameAsSortOrder {
		case "all":
			c.NameOrder = types.NameOrderFamilyFirst
		case "":
			if c.Form != types.ContributorShort {
				c.NameOrder = types.NameOrderGivenFirst
			}
		}
		if n.Name.Delimiter != nil {
			c.Delimiter = types.Ptr(*n.Name.Delimiter)
		}
		// An author label only ever shows for a substituted editor, which
		// the substitute options cover.
		if n.Label != nil && role != types.RoleAuthor {
			c.Label = roleLabel(n.Label, n.LabelFirst)
		}
		c.Rendering = rendering(n.Formatting)
		out = append(out, c)
	}
	return out
}

func roleLabel(l *legacy.Label, first bool) *types.RoleLabel {
	out := &types.RoleLabel{Form: termForm(l.Form), Placement: types.LabelSuffix}
	if first {
		out.Placement = types.LabelPrefix
	}
	if _, _, wrap := SplitWrap(l.Prefix, l.Suffix); wrap != types.WrapNone {
		out.Wrap = wrap
	}
	return out
}

func (w *walker) date(n *legacy.Date) []types.Component {
	v, ok := dateVariables[n.Variable]
	if !ok {
		w.logger.Debug("dropping date variable", zap.String("variable", n.Variable))
		return nil
	}
	c := &types.DateComponent{Date: v, Form: dateForm(n.Parts)}
	c.Rendering = rendering(n.Formatting)
	return []types.Component{c}
}

func dateForm(parts []string) types.DateForm {
	has := make(map[string]bool, len(parts))
	for _, p := range parts {
		has[p] = true
	}
	switch {
	case has["year"] && has["month"] && has["day"]:
		return types.DateFormFull
	case has["year"] && has["month"]:
		return types.DateFormYearMonth
	case !has["year"] && has["month"] && has["day"]:
		return types.DateFormMonthDay
	}
	return types.DateFormYear
}

// variable compiles <text variable> and <number>. The container title
// becomes the parent title matching the branch kinds, or both parent
// titles in the default context.
func (w *walker) variable(name, form string, f legacy.Formatting, ctx branchContext, label *legacy.Label) []types.Component {
	short := form == "short"
	var out []types.Component
	switch {
	case name == "title" || name == "title-short":
		c := &types.TitleComponent{Title: types.TitlePrimary}
		if short || name == "title-short" {
			c.Form = types.TitleShort
		}
		out = append(out, c)
	case name == "container-title" || name == "container-title-short":
		serial, monograph := parentKinds(ctx)
		for _, t := range []struct {
			want bool
			kind types.TitleType
		}{{serial, types.TitleParentSerial}, {monograph, types.TitleParentMonograph}} {
			if !t.want {
				continue
			}
			c := &types.TitleComponent{Title: t.kind}
			if short || name == "container-title-short" {
				c.Form = types.TitleShort
			}
			out = append(out, c)
		}
	case numberVariables[name] != "":
		c := &types.NumberComponent{Number: numberVariables[name]}
		if form == "ordinal" || form == "long-ordinal" {
			c.Form = types.NumberOrdinal
		}
		if label != nil && (label.Variable == "" || label.Variable == name) {
			c.Label = types.Ptr(labelForm(label.Form))
		}
		out = append(out, c)
	case simpleVariables[name] != "":
		out = append(out, &types.VariableComponent{Variable: simpleVariables[name]})
	default:
		w.logger.Debug("dropping variable", zap.String("variable", name))
		return nil
	}
	for _, c := range out {
		c.Base().Rendering = rendering(f)
	}
	return out
}

func parentKinds(ctx branchContext) (serial, monograph bool) {
	for _, k := range ctx.kinds {
		serial = serial || types.IsSerialKind(k)
		monograph = monograph || types.IsChapterKind(k)
	}
	if !serial && !monograph {
		return true, true
	}
	return serial, monograph
}

func (w *walker) term(n *legacy.Term) types.Component {
	c := &types.TermComponent{Term: n.Name}
	if n.Form != "" && n.Form != "long" {
		c.Form = termForm(n.Form)
	}
	c.Rendering = rendering(n.Formatting)
	return c
}

func termForm(form string) types.TermForm {
	switch form {
	case "short":
		return types.TermFormShort
	case "symbol":
		return types.TermFormSymbol
	case "verb":
		return types.TermFormVerb
	case "verb-short":
		return types.TermFormVerbShort
	}
	return types.TermFormLong
}

func labelForm(form string) types.LabelForm {
	switch form {
	case "short":
		return types.LabelShort
	case "symbol":
		return types.LabelSymbol
	}
	return types.LabelLong
}

// rendering maps legacy formatting to a Rendering. Affixes that open and
// close a parenthesis or bracket become a wrap.
func rendering(f legacy.Formatting) types.Rendering {
	var r types.Rendering
	prefix, suffix, wrap := SplitWrap(f.Prefix, f.Suffix)
	if prefix != "" {
		r.Prefix = types.Ptr(prefix)
	}
	if suffix != "" {
		r.Suffix = types.Ptr(suffix)
	}
	if wrap != types.WrapNone {
		r.Wrap = types.Ptr(wrap)
	}
	if f.Italic {
		r.Emph = types.Ptr(true)
	}
	if f.Bold {
		r.Strong = types.Ptr(true)
	}
	if f.SmallCaps {
		r.SmallCaps = types.Ptr(true)
	}
	if f.Quotes {
		r.Quote = types.Ptr(true)
	}
	if f.StripPeriods {
		r.StripPeriods = types.Ptr(true)
	}
	return r
}

// SplitWrap removes an opening and closing parenthesis or bracket from
// a pair of affixes and reports it as a wrap.
func SplitWrap(prefix, suffix string) (string, string, types.WrapPunctuation) {
	switch {
	case strings.HasSuffix(prefix, "(") && strings.HasPrefix(suffix, ")"):
		return strings.TrimSuffix(prefix, "("), strings.TrimPrefix(suffix, ")"), types.WrapParentheses
	case strings.HasSuffix(prefix, "[") && strings.HasPrefix(suffix, "]"):
		return strings.TrimSuffix(prefix, "["), strings.TrimPrefix(suffix, "]"), types.WrapBrackets
	}
	return prefix, suffix, types.WrapNone
}

func applyFont(b *types.ComponentBase, f legacy.Formatting) {
	set := func(dst **bool, on bool) {
		if on && *dst == nil {
			*dst = types.Ptr(true)
		}
	}
	set(&b.Emph, f.Italic)
	set(&b.Strong, f.Bold)
	set(&b.SmallCaps, f.SmallCaps)
	set(&b.Quote, f.Quotes)
	set(&b.StripPeriods, f.StripPeriods)
}

// moveToInner turns the outer affixes into inner ones, so that a wrap
// added afterwards encloses them.
func moveToInner(b *types.ComponentBase) {
	if b.Prefix != nil {
		b.InnerPrefix = types.Ptr(*b.Prefix + deref(b.InnerPrefix))
		b.Prefix = nil
	}
	if b.Suffix != nil {
		b.InnerSuffix = types.Ptr(deref(b.InnerSuffix) + *b.Suffix)
		b.Suffix = nil
	}
}

func setAffixes(b *types.ComponentBase, prefix, suffix string) {
	if prefix != "" {
		b.Prefix = types.Ptr(prefix)
	}
	if suffix != "" {
		b.Suffix = types.Ptr(suffix)
	}
}

func prependPrefix(c types.Component, s string) {
	b := c.Base()
	b.Prefix = types.Ptr(s + deref(b.Prefix))
}

func appendSuffix(c types.Component, s string) {
	b := c.Base()
	b.Suffix = types.Ptr(deref(b.Suffix) + s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func trimmed(s string) string { return strings.TrimSpace(s) }

func typeName(n legacy.Node) string { return fmt.Sprintf("%T", n) }
