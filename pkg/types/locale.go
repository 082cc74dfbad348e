// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// Locale holds the language-specific lookup tables consumed by the
// renderer. A Locale is read-only once loaded.
type Locale struct {
	ID                 string                       `json:"locale" yaml:"locale"`
	Dates              DateTerms                    `json:"dates" yaml:"dates"`
	Roles              map[ContributorRole]RoleTerm `json:"roles,omitempty" yaml:"roles,omitempty"`
	Locators           map[LocatorKind]LocatorTerm  `json:"locators,omitempty" yaml:"locators,omitempty"`
	Terms              map[string]Term              `json:"terms,omitempty" yaml:"terms,omitempty"`
	PunctuationInQuote bool                         `json:"punctuation-in-quote" yaml:"punctuation-in-quote"`
	SortArticles       []string                     `json:"sort-articles,omitempty" yaml:"sort-articles,omitempty"`
}

// DateTerms holds month and season names.
type DateTerms struct {
	Months  MonthNames `json:"months" yaml:"months"`
	Seasons []string   `json:"seasons" yaml:"seasons"`
}

// MonthNames holds 12 long and 12 short month names.
type MonthNames struct {
	Long  []string `json:"long" yaml:"long"`
	Short []string `json:"short" yaml:"short"`
}

// SimpleTerm is a term with long and short forms.
type SimpleTerm struct {
	Long  string `json:"long,omitempty" yaml:"long,omitempty"`
	Short string `json:"short,omitempty" yaml:"short,omitempty"`
}

// RoleTerm holds the labels for one contributor role.
type RoleTerm struct {
	Singular SimpleTerm `json:"singular" yaml:"singular"`
	Plural   SimpleTerm `json:"plural" yaml:"plural"`
	Verb     SimpleTerm `json:"verb" yaml:"verb"`
}

// PluralTerm is a term with singular and plural forms.
type PluralTerm struct {
	Singular string `json:"singular" yaml:"singular"`
	Plural   string `json:"plural" yaml:"plural"`
}

// LocatorTerm holds the labels for one locator kind.
type LocatorTerm struct {
	Long   *PluralTerm `json:"long,omitempty" yaml:"long,omitempty"`
	Short  *PluralTerm `json:"short,omitempty" yaml:"short,omitempty"`
	Symbol *PluralTerm `json:"symbol,omitempty" yaml:"symbol,omitempty"`
}

// Term is a general term in its available forms.
type Term struct {
	Long   string `json:"long,omitempty" yaml:"long,omitempty"`
	Short  string `json:"short,omitempty" yaml:"short,omitempty"`
	Symbol string `json:"symbol,omitempty" yaml:"symbol,omitempty"`
	Verb   string `json:"verb,omitempty" yaml:"verb,omitempty"`
}

// General term ids.
const (
	TermAnd       = "and"
	TermAndSymbol = "and-symbol"
	TermEtAl      = "et-al"
	TermAndOthers = "and-others"
	TermAccessed  = "accessed"
	TermIbid      = "ibid"
	TermNoDate    = "no-date"
	TermIn        = "in"
	TermCirca     = "circa"
)

// MonthName returns the name of month m (1-12), or "".
func (l *Locale) MonthName(m int, short bool) string {
	if l == nil {
		return ""
	}
	names := l.Dates.Months.Long
	if short && len(l.Dates.Months.Short) == 12 {
		names = l.Dates.Months.Short
	}
	if m < 1 || m > len(names) {
		return ""
	}
	return names[m-1]
}

// SeasonName returns the name of season s (1-4), or "".
func (l *Locale) SeasonName(s int) string {
	if l == nil || s < 1 || s > len(l.Dates.Seasons) {
		return ""
	}
	return l.Dates.Seasons[s-1]
}

// Term returns the form of a general term, falling back to the long form.
func (l *Locale) Term(id string, form TermForm) string {
	if l == nil {
		return ""
	}
	t, ok := l.Terms[id]
	if !ok {
		return ""
	}
	var v string
	switch form {
	case TermFormShort:
		v = t.Short
	case TermFormSymbol:
		v = t.Symbol
	case TermFormVerb:
		v = t.Verb
	}
	if v == "" {
		v = t.Long
	}
	return v
}

// RoleLabel returns the label for role in form. Verb forms ignore plural.
func (l *Locale) RoleLabel(role ContributorRole, form TermForm, plural bool) string {
	if l == nil {
		return ""
	}
	rt, ok := l.Roles[role]
	if !ok {
		return ""
	}
	pick := func(t SimpleTerm, short bool) string {
		if short && t.Short != "" {
			return t.Short
		}
		return t.Long
	}
	short := form == TermFormShort
	switch form {
	case TermFormVerb:
		return pick(rt.Verb, false)
	case TermFormVerbShort:
		return pick(rt.Verb, true)
	}
	if plural {
		return pick(rt.Plural, short)
	}
	return pick(rt.Singular, short)
}

// LocatorLabel returns the label for a locator kind, falling back from
// symbol to short to long.
func (l *Locale) LocatorLabel(kind LocatorKind, form LabelForm, plural bool) string {
	if l == nil {
		return ""
	}
	lt, ok := l.Locators[kind]
	if !ok {
		return ""
	}
	var candidates []*PluralTerm
	switch form {
	case LabelSymbol:
		candidates = []*PluralTerm{lt.Symbol, lt.Short, lt.Long}
	case LabelShort:
		candidates = []*PluralTerm{lt.Short, lt.Long}
	default:
		candidates = []*PluralTerm{lt.Long, lt.Short}
	}
	for _, c := range candidates {
		if c == nil {
			continue
		}
		if plural && c.Plural != "" {
			return c.Plural
		}
		if c.Singular != "" {
			return c.Singular
		}
	}
	return ""
}

// StripArticles removes a leading sort article ("the", "a", ...) from s,
// matching case-insensitively.
func (l *Locale) StripArticles(s string) string {
	if l == nil {
		return s
	}
	lower := strings.ToLower(s)
	for _, a := range l.SortArticles {
		prefix := strings.ToLower(a) + " "
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}
