// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package output

import (
	"strings"

	"github.com/pdiddy/citekit/pkg/types"
)

// Entry assembles one bibliography entry. Components are joined with the
// separator unless the next component has its own prefix or the previous
// one ended with its own suffix; the entry suffix is added unless the
// entry ends with a DOI or URL.
func Entry(f Formatter, e types.Entry, spec *types.BibliographySpec, loc *types.Locale) string {
	if spec == nil {
		spec = &types.BibliographySpec{}
	}
	q := inQuote(loc)
	sep := f.Escape(spec.ComponentSeparator())

	var out string
	var last types.RenderedComponent
	prevSuffix := false
	for _, rc := range e.Components {
		p := formatParts(f, rc)
		if out == "" {
			p.prefix = strings.TrimLeft(p.prefix, ",;.: ")
		}
		s := p.String(q)
		if s == "" {
			continue
		}
		if out != "" && p.prefix == "" && !prevSuffix {
			out = appendDedup(out, sep, q)
		}
		out = appendDedup(out, s, q)
		prevSuffix = p.suffix != ""
		last = rc
	}
	if out == "" {
		return ""
	}
	if !endsWithLink(last) {
		out = appendDedup(out, f.Escape(spec.Terminator()), q)
	}
	return f.Entry(e.ID, out)
}

// Bibliography assembles entry groups, one entry per line, with group
// headings where present.
func Bibliography(f Formatter, groups []types.EntryGroup, spec *types.BibliographySpec, loc *types.Locale) string {
	var lines []string
	for _, g := range groups {
		if g.Heading != "" && len(g.Entries) > 0 {
			lines = append(lines, f.Heading(g.Heading))
		}
		for _, e := range g.Entries {
			if s := Entry(f, e, spec, loc); s != "" {
				lines = append(lines, s)
			}
		}
	}
	return strings.Join(lines, "\n")
}

// appendDedup appends right to left, dropping a leading period of right
// when left already ends in terminal punctuation.
func appendDedup(left, right string, inQuote bool) string {
	if strings.HasPrefix(right, ".") {
		end := strings.TrimSuffix(left, CloseQuote)
		if strings.HasSuffix(end, ".") || strings.HasSuffix(end, "?") || strings.HasSuffix(end, "!") {
			right = right[1:]
		}
	}
	return AppendPunct(left, right, inQuote)
}

func endsWithLink(rc types.RenderedComponent) bool {
	v, ok := rc.Component.(*types.VariableComponent)
	if !ok {
		return false
	}
	return v.Variable == types.VarDOI || v.Variable == types.VarURL
}
