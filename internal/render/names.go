// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/citekit/pkg/types"
)

// NameOptions controls the formatting of one contributor list.
type NameOptions struct {
	Config types.ContributorConfig
	Form   types.ContributorForm
	Order  types.NameOrder

	// Delimiter overrides Config's delimiter when non-nil.
	Delimiter *string

	// Integral selects IntegralAnd over And when set.
	Integral bool

	// Bibliography selects the bibliography et-al and precedes-last
	// options. With no explicit rule, a bibliography keeps the delimiter
	// before the conjunction even for two names.
	Bibliography bool

	// MinNames and ExpandGiven come from the disambiguation hint.
	MinNames    int
	ExpandGiven bool
}

// FormatNames renders a contributor list: et-al truncation, per-name
// inversion and initialization, then joining.
func FormatNames(names types.Contributor, opts NameOptions, loc *types.Locale) string {
	if len(names) == 0 {
		return ""
	}
	delim := opts.Config.NameDelimiter()
	if opts.Delimiter != nil {
		delim = *opts.Delimiter
	}

	shown, last, etAl := truncate(names, opts)

	rendered := make([]string, len(shown))
	inverted := make([]bool, len(shown))
	for i, n := range shown {
		inverted[i] = isInverted(i, n, opts)
		rendered[i] = formatName(n, inverted[i], opts)
	}

	if last != nil {
		return strings.Join(rendered, delim) + delim + "… " + formatName(*last, isInverted(len(names)-1, *last, opts), opts)
	}
	if etAl {
		term := types.TermEtAl
		if opts.Config.ShortenFor(opts.Bibliography).AndOthers == types.AndOthersText {
			term = types.TermAndOthers
		}
		label := loc.Term(term, types.TermFormLong)
		if label == "" {
			label = "et al."
		}
		sep := " "
		if precedes(opts.Config.DelimiterPrecedesEtAl, len(rendered), inverted[len(inverted)-1], false) {
			sep = delim
		}
		return strings.Join(rendered, delim) + sep + label
	}
	return joinNames(rendered, inverted, delim, conjunction(opts, loc), opts)
}

// truncate applies et-al shortening. It returns the names to show, the
// trailing name of a use-last window, and whether an et-al term follows.
func truncate(names types.Contributor, opts NameOptions) (types.Contributor, *types.Name, bool) {
	s := opts.Config.ShortenFor(opts.Bibliography)
	if s == nil || s.Min <= 0 || len(names) < s.Min {
		return names, nil, false
	}
	first := s.UseFirst
	if opts.MinNames > first {
		first = opts.MinNames
	}
	if first < 1 {
		first = 1
	}
	if first >= len(names) {
		return names, nil, false
	}
	if s.UseLast > 0 && first+s.UseLast < len(names) {
		last := names[len(names)-1]
		return names[:first], &last, false
	}
	return names[:first], nil, true
}

func isInverted(i int, n types.Name, opts NameOptions) bool {
	if n.IsLiteral() || opts.Form == types.ContributorShort {
		return false
	}
	switch opts.Order {
	case types.NameOrderFamilyFirst:
		return true
	case types.NameOrderGivenFirst:
		return false
	}
	switch opts.Config.DisplayAsSort {
	case types.DisplayAll:
		return true
	case types.DisplayFirst:
		return i == 0
	}
	return false
}

func formatName(n types.Name, inverted bool, opts NameOptions) string {
	if n.IsLiteral() {
		return n.Literal
	}
	demote := opts.Config.DemoteNonDroppingParticle == types.DemoteDisplayAndSort

	if opts.Form == types.ContributorShort {
		family := joinFields(n.NonDroppingParticle, n.Family)
		if opts.ExpandGiven && n.Given != "" {
			return joinFields(givenText(n.Given, opts.Config), family)
		}
		return family
	}

	given := givenText(n.Given, opts.Config)
	if !inverted {
		s := joinFields(given, n.DroppingParticle, n.NonDroppingParticle, n.Family)
		if n.Suffix != "" {
			s += " " + n.Suffix
		}
		return s
	}

	family := joinFields(n.NonDroppingParticle, n.Family)
	givenSide := joinFields(given, n.DroppingParticle)
	if demote {
		family = n.Family
		givenSide = joinFields(given, n.DroppingParticle, n.NonDroppingParticle)
	}
	s := family
	if givenSide != "" {
		s += ", " + givenSide
	}
	if n.Suffix != "" {
		s += ", " + n.Suffix
	}
	return s
}

// givenText initializes the given name when the configuration asks for it.
func givenText(given string, cc types.ContributorConfig) string {
	if cc.InitializeWith != nil {
		return Initials(given, *cc.InitializeWith)
	}
	return given
}

// Initials replaces each given-name token with its first letter followed
// by marker. Hyphens between tokens are kept when marker has no
// whitespace ("Jean-Paul" -> "J.-P.").
func Initials(given, marker string) string {
	keepHyphen := !strings.ContainsFunc(marker, unicode.IsSpace)
	var b strings.Builder
	for _, word := range strings.Fields(given) {
		for i, part := range strings.Split(word, "-") {
			if part == "" {
				continue
			}
			if i > 0 && keepHyphen {
				b.WriteString("-")
			}
			r, _ := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
			b.WriteString(marker)
		}
	}
	return strings.TrimSpace(b.String())
}

func conjunction(opts NameOptions, loc *types.Locale) string {
	and := opts.Config.And
	if opts.Integral && opts.Config.IntegralAnd != "" {
		and = opts.Config.IntegralAnd
	}
	switch and {
	case types.AndText:
		if s := loc.Term(types.TermAnd, types.TermFormLong); s != "" {
			return s
		}
		return "and"
	case types.AndSymbol:
		if s := loc.Term(types.TermAndSymbol, types.TermFormSymbol); s != "" {
			return s
		}
		return "&"
	}
	return ""
}

// precedes decides whether the delimiter goes before the conjunction or
// et-al term. count is the number of names before it. An unset rule adds
// the delimiter for three or more names, and for two in a bibliography.
func precedes(rule types.DelimiterPrecedes, count int, prevInverted, bibliography bool) bool {
	switch rule {
	case types.PrecedesAlways:
		return true
	case types.PrecedesNever:
		return false
	case types.PrecedesAfterInvertedName:
		return prevInverted
	case types.PrecedesContextual:
		return count > 1
	}
	return count > 1 || bibliography
}

func joinNames(rendered []string, inverted []bool, delim, conj string, opts NameOptions) string {
	n := len(rendered)
	if n == 1 {
		return rendered[0]
	}
	head := strings.Join(rendered[:n-1], delim)
	last := rendered[n-1]
	if conj == "" {
		return head + delim + last
	}
	if precedes(opts.Config.PrecedesLastFor(opts.Bibliography), n-1, inverted[n-2], opts.Bibliography) {
		return head + delim + conj + " " + last
	}
	return head + " " + conj + " " + last
}

func joinFields(fields ...string) string {
	var parts []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}
