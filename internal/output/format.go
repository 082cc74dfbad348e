// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output assembles rendered component values into final text.
// The renderer produces unassembled RenderedComponents; a Formatter adds
// the markup for one target (plain text, HTML).
package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/pdiddy/citekit/pkg/types"
)

// Formatter applies target-specific markup.
type Formatter interface {
	Escape(s string) string
	Emph(s string) string
	Strong(s string) string
	SmallCaps(s string) string
	Link(text, url string) string
	Entry(id, body string) string
	Heading(s string) string
}

// Typographic quotes used for quote rendering and quote wraps.
const (
	OpenQuote  = "“"
	CloseQuote = "”"
)

// Plain renders unmarked text.
type Plain struct{}

func (Plain) Escape(s string) string      { return s }
func (Plain) Emph(s string) string        { return s }
func (Plain) Strong(s string) string      { return s }
func (Plain) SmallCaps(s string) string   { return s }
func (Plain) Link(text, _ string) string  { return text }
func (Plain) Entry(_, body string) string { return body }
func (Plain) Heading(s string) string     { return s }

// HTML renders inline HTML. Entries become csl-entry divs.
type HTML struct{}

func (HTML) Escape(s string) string    { return html.EscapeString(s) }
func (HTML) Emph(s string) string      { return "<i>" + s + "</i>" }
func (HTML) Strong(s string) string    { return "<b>" + s + "</b>" }
func (HTML) SmallCaps(s string) string { return `<span style="font-variant:small-caps;">` + s + "</span>" }

func (HTML) Link(text, url string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, html.EscapeString(url), text)
}

func (HTML) Entry(id, body string) string {
	return fmt.Sprintf(`<div class="csl-entry" id="%s">%s</div>`, html.EscapeString(id), body)
}

func (HTML) Heading(s string) string { return "<h2>" + html.EscapeString(s) + "</h2>" }

// ForName returns the formatter for a configured output format.
func ForName(name types.OutputFormat) (Formatter, error) {
	switch name {
	case "", types.FormatPlain:
		return Plain{}, nil
	case types.FormatHTML:
		return HTML{}, nil
	}
	return nil, fmt.Errorf("unknown output format %q", name)
}

// Wrap encloses s in the punctuation for w.
func Wrap(s string, w types.WrapPunctuation) string {
	switch w {
	case types.WrapParentheses:
		return "(" + s + ")"
	case types.WrapBrackets:
		return "[" + s + "]"
	case types.WrapQuotes:
		return OpenQuote + s + CloseQuote
	}
	return s
}

// AppendPunct concatenates left and right. When inQuote is set and left
// ends in a closing quote, a leading comma or period of right moves inside
// the quote.
func AppendPunct(left, right string, inQuote bool) string {
	if inQuote && strings.HasSuffix(left, CloseQuote) && (strings.HasPrefix(right, ",") || strings.HasPrefix(right, ".")) {
		return strings.TrimSuffix(left, CloseQuote) + right[:1] + CloseQuote + right[1:]
	}
	return left + right
}

// parts is a formatted component split around its outer affixes.
type parts struct {
	prefix string
	body   string
	suffix string
}

func (p parts) String(inQuote bool) string {
	return AppendPunct(p.prefix+p.body, p.suffix, inQuote)
}

func formatParts(f Formatter, rc types.RenderedComponent) parts {
	r := rc.Rendering
	value := rc.Value
	if types.Flag(r.StripPeriods) {
		value = strings.ReplaceAll(value, ".", "")
	}
	if !rc.Preformatted {
		value = f.Escape(value)
	}
	value = f.Escape(deref(r.InnerPrefix)) + value + f.Escape(deref(r.InnerSuffix))
	if rc.URL != "" {
		value = f.Link(value, rc.URL)
	}
	if types.Flag(r.Emph) {
		value = f.Emph(value)
	}
	if types.Flag(r.Strong) {
		value = f.Strong(value)
	}
	if types.Flag(r.SmallCaps) {
		value = f.SmallCaps(value)
	}
	if types.Flag(r.Quote) {
		value = OpenQuote + value + CloseQuote
	}
	value = f.Escape(rc.Prefix) + value + f.Escape(rc.Suffix)
	value = Wrap(value, r.WrapValue())
	return parts{prefix: f.Escape(r.PrefixText()), body: value, suffix: f.Escape(r.SuffixText())}
}

// Component formats one rendered component: value, inner affixes, link,
// emphasis, quotes, renderer labels, wrap, and finally the prefix and
// suffix.
func Component(f Formatter, rc types.RenderedComponent, loc *types.Locale) string {
	return formatParts(f, rc).String(inQuote(loc))
}

// Join formats comps and joins the non-empty results with delimiter.
// A component that carries its own prefix is appended without the
// delimiter.
func Join(f Formatter, comps []types.RenderedComponent, delimiter string, loc *types.Locale) string {
	q := inQuote(loc)
	var out string
	for _, rc := range comps {
		p := formatParts(f, rc)
		s := p.String(q)
		if s == "" {
			continue
		}
		if out != "" && p.prefix == "" {
			out = AppendPunct(out, f.Escape(delimiter), q)
		}
		out = AppendPunct(out, s, q)
	}
	return out
}

func inQuote(loc *types.Locale) bool { return loc != nil && loc.PunctuationInQuote }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
