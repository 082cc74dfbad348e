// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Style is a complete declarative citation style.
type Style struct {
	Info         StyleInfo         `json:"info" yaml:"info"`
	Options      Config            `json:"options" yaml:"options"`
	Citation     *CitationSpec     `json:"citation,omitempty" yaml:"citation,omitempty"`
	Bibliography *BibliographySpec `json:"bibliography,omitempty" yaml:"bibliography,omitempty"`
}

// StyleInfo is descriptive metadata.
type StyleInfo struct {
	ID          string `json:"id,omitempty" yaml:"id,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// CollapseMode selects how adjacent citation items merge.
type CollapseMode string

const (
	CollapseNone           CollapseMode = ""
	CollapseYear           CollapseMode = "year"
	CollapseCitationNumber CollapseMode = "citation-number"
)

// CitationSpec describes in-text citations.
type CitationSpec struct {
	Template Template `json:"template" yaml:"template"`

	// Integral replaces Template for integral (narrative) citations.
	Integral Template `json:"integral,omitempty" yaml:"integral,omitempty"`

	Wrap   WrapPunctuation `json:"wrap,omitempty" yaml:"wrap,omitempty"`
	Prefix string          `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix string          `json:"suffix,omitempty" yaml:"suffix,omitempty"`

	// Delimiter separates the components of one item (default ", ").
	Delimiter *string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	// MultiCiteDelimiter separates items (default "; ").
	MultiCiteDelimiter *string `json:"multi-cite-delimiter,omitempty" yaml:"multi-cite-delimiter,omitempty"`

	Collapse CollapseMode `json:"collapse,omitempty" yaml:"collapse,omitempty"`
}

// ItemDelimiter returns the component delimiter.
func (c *CitationSpec) ItemDelimiter() string {
	if c.Delimiter == nil {
		return ", "
	}
	return *c.Delimiter
}

// CiteDelimiter returns the delimiter between items.
func (c *CitationSpec) CiteDelimiter() string {
	if c.MultiCiteDelimiter == nil {
		return "; "
	}
	return *c.MultiCiteDelimiter
}

// DisambiguationScope selects whether a bibliography group shares
// disambiguation state with the rest of the bibliography.
type DisambiguationScope string

const (
	ScopeGlobal DisambiguationScope = "global"
	ScopeLocal  DisambiguationScope = "local"
)

// GroupSelector matches references by item kind.
type GroupSelector struct {
	Types    []string `json:"types,omitempty" yaml:"types,omitempty"`
	NotTypes []string `json:"not-types,omitempty" yaml:"not-types,omitempty"`
}

// Matches reports whether kind satisfies the selector. An empty selector
// matches every kind.
func (s GroupSelector) Matches(kind string) bool {
	for _, t := range s.NotTypes {
		if t == kind {
			return false
		}
	}
	if len(s.Types) == 0 {
		return true
	}
	for _, t := range s.Types {
		if t == kind {
			return true
		}
	}
	return false
}

// BibliographyGroup is a headed subdivision of the bibliography.
type BibliographyGroup struct {
	ID           string              `json:"id" yaml:"id"`
	Heading      string              `json:"heading,omitempty" yaml:"heading,omitempty"`
	Selector     GroupSelector       `json:"selector,omitempty" yaml:"selector,omitempty"`
	Sort         *Sort               `json:"sort,omitempty" yaml:"sort,omitempty"`
	Disambiguate DisambiguationScope `json:"disambiguate,omitempty" yaml:"disambiguate,omitempty"`
}

// BibliographySpec describes the reference list.
type BibliographySpec struct {
	Template      Template            `json:"template" yaml:"template"`
	TypeTemplates map[string]Template `json:"type-templates,omitempty" yaml:"type-templates,omitempty"`
	Groups        []BibliographyGroup `json:"groups,omitempty" yaml:"groups,omitempty"`

	// Separator joins components that carry no prefix of their own (default ". ").
	Separator *string `json:"separator,omitempty" yaml:"separator,omitempty"`

	// EntrySuffix terminates each entry (default ".").
	EntrySuffix *string `json:"entry-suffix,omitempty" yaml:"entry-suffix,omitempty"`

	// SubsequentAuthorSubstitute replaces a repeated author (e.g. "———").
	SubsequentAuthorSubstitute string `json:"subsequent-author-substitute,omitempty" yaml:"subsequent-author-substitute,omitempty"`
}

// TemplateFor returns the type template for kind, or the default template.
func (b *BibliographySpec) TemplateFor(kind string) Template {
	if t, ok := b.TypeTemplates[kind]; ok {
		return t
	}
	return b.Template
}

// ComponentSeparator returns the separator between entry components.
func (b *BibliographySpec) ComponentSeparator() string {
	if b.Separator == nil {
		return ". "
	}
	return *b.Separator
}

// Terminator returns the entry suffix.
func (b *BibliographySpec) Terminator() string {
	if b.EntrySuffix == nil {
		return "."
	}
	return *b.EntrySuffix
}

// Config holds the style-wide options.
type Config struct {
	Processing      *Processing        `json:"processing,omitempty" yaml:"processing,omitempty"`
	Substitute      *Substitute        `json:"substitute,omitempty" yaml:"substitute,omitempty"`
	Contributors    *ContributorConfig `json:"contributors,omitempty" yaml:"contributors,omitempty"`
	Dates           *DateConfig        `json:"dates,omitempty" yaml:"dates,omitempty"`
	PageRangeFormat PageRangeFormat    `json:"page-range-format,omitempty" yaml:"page-range-format,omitempty"`
	Links           *LinkConfig        `json:"links,omitempty" yaml:"links,omitempty"`
}

// ProcessingMode is a named preset for sorting and disambiguation.
type ProcessingMode string

const (
	ModeAuthorDate ProcessingMode = "author-date"
	ModeNumeric    ProcessingMode = "numeric"
	ModeNote       ProcessingMode = "note"
	ModeCustom     ProcessingMode = "custom"
)

// SortKey names a sort criterion.
type SortKey string

const (
	SortAuthor         SortKey = "author"
	SortYear           SortKey = "year"
	SortTitle          SortKey = "title"
	SortCitationNumber SortKey = "citation-number"
)

// SortSpec is one sort criterion. Ascending defaults per key: year sorts
// descending, everything else ascending.
type SortSpec struct {
	Key       SortKey `json:"key" yaml:"key"`
	Ascending *bool   `json:"ascending,omitempty" yaml:"ascending,omitempty"`
}

// IsAscending resolves the direction of the criterion.
func (s SortSpec) IsAscending() bool {
	if s.Ascending != nil {
		return *s.Ascending
	}
	return s.Key != SortYear
}

// Sort is an ordered list of criteria, most significant first.
type Sort struct {
	Template []SortSpec `json:"template" yaml:"template"`
}

// Disambiguation selects the ambiguity resolution strategies.
type Disambiguation struct {
	Names        bool `json:"names" yaml:"names"`
	AddGivenName bool `json:"add-givenname" yaml:"add-givenname"`
	YearSuffix   bool `json:"year-suffix" yaml:"year-suffix"`
}

// Processing is either a preset mode or a custom combination.
type Processing struct {
	Mode         ProcessingMode  `json:"mode,omitempty" yaml:"mode,omitempty"`
	Sort         *Sort           `json:"sort,omitempty" yaml:"sort,omitempty"`
	Disambiguate *Disambiguation `json:"disambiguate,omitempty" yaml:"disambiguate,omitempty"`
}

// UnmarshalYAML accepts a bare mode name or a mapping.
func (p *Processing) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch ProcessingMode(node.Value) {
		case ModeAuthorDate, ModeNumeric, ModeNote:
			*p = Processing{Mode: ProcessingMode(node.Value)}
			return nil
		}
		return fmt.Errorf("line %d: unknown processing mode %q", node.Line, node.Value)
	}
	type plain Processing
	var aux plain
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*p = Processing(aux)
	if p.Mode == "" {
		p.Mode = ModeCustom
	}
	return nil
}

// ModeOrDefault returns the processing mode, author-date when unset.
func (p *Processing) ModeOrDefault() ProcessingMode {
	if p == nil || p.Mode == "" {
		return ModeAuthorDate
	}
	return p.Mode
}

// SortOrDefault returns the explicit sort or the preset for the mode.
func (p *Processing) SortOrDefault() Sort {
	if p != nil && p.Sort != nil {
		return *p.Sort
	}
	switch p.ModeOrDefault() {
	case ModeAuthorDate:
		return Sort{Template: []SortSpec{{Key: SortAuthor}, {Key: SortYear}}}
	case ModeNote:
		return Sort{Template: []SortSpec{{Key: SortAuthor}, {Key: SortTitle}}}
	}
	return Sort{}
}

// DisambiguationOrDefault returns the explicit strategies or the preset.
func (p *Processing) DisambiguationOrDefault() Disambiguation {
	if p != nil && p.Disambiguate != nil {
		return *p.Disambiguate
	}
	switch p.ModeOrDefault() {
	case ModeAuthorDate:
		return Disambiguation{Names: true, YearSuffix: true}
	case ModeNote:
		return Disambiguation{Names: true, AddGivenName: true}
	}
	return Disambiguation{}
}

// SubstituteKey names a field that may stand in for a missing author.
type SubstituteKey string

const (
	SubstituteEditor     SubstituteKey = "editor"
	SubstituteTitle      SubstituteKey = "title"
	SubstituteTranslator SubstituteKey = "translator"
)

// Substitute configures author substitution.
type Substitute struct {
	// ContributorRoleForm adds a role label to substituted contributors.
	ContributorRoleForm TermForm        `json:"contributor-role-form,omitempty" yaml:"contributor-role-form,omitempty"`
	Template            []SubstituteKey `json:"template" yaml:"template"`
}

// DefaultSubstitute is editor, then title, then translator.
func DefaultSubstitute() Substitute {
	return Substitute{Template: []SubstituteKey{SubstituteEditor, SubstituteTitle, SubstituteTranslator}}
}

// DisplayAsSort selects which names render inverted.
type DisplayAsSort string

const (
	DisplayNone  DisplayAsSort = "none"
	DisplayFirst DisplayAsSort = "first"
	DisplayAll   DisplayAsSort = "all"
)

// AndTerm selects the conjunction before the last name.
type AndTerm string

const (
	AndNone   AndTerm = "none"
	AndText   AndTerm = "text"
	AndSymbol AndTerm = "symbol"
)

// DelimiterPrecedes controls the delimiter before the conjunction or et al.
type DelimiterPrecedes string

const (
	PrecedesContextual        DelimiterPrecedes = "contextual"
	PrecedesAlways            DelimiterPrecedes = "always"
	PrecedesNever             DelimiterPrecedes = "never"
	PrecedesAfterInvertedName DelimiterPrecedes = "after-inverted-name"
)

// DemoteParticle controls where non-dropping particles go.
type DemoteParticle string

const (
	DemoteNever          DemoteParticle = "never"
	DemoteSortOnly       DemoteParticle = "sort-only"
	DemoteDisplayAndSort DemoteParticle = "display-and-sort"
)

// AndOthers selects how the gap of a shortened list renders.
type AndOthers string

const (
	AndOthersEtAl AndOthers = "et-al"
	AndOthersText AndOthers = "text"
)

// ShortenListOptions configures et-al truncation.
type ShortenListOptions struct {
	Min       int       `json:"min" yaml:"min"`
	UseFirst  int       `json:"use-first" yaml:"use-first"`
	UseLast   int       `json:"use-last,omitempty" yaml:"use-last,omitempty"`
	AndOthers AndOthers `json:"and-others,omitempty" yaml:"and-others,omitempty"`
}

// ContributorConfig configures name-list formatting.
type ContributorConfig struct {
	DisplayAsSort                     DisplayAsSort       `json:"display-as-sort,omitempty" yaml:"display-as-sort,omitempty"`
	And                               AndTerm             `json:"and,omitempty" yaml:"and,omitempty"`
	IntegralAnd                       AndTerm             `json:"integral-and,omitempty" yaml:"integral-and,omitempty"`
	Delimiter                         *string             `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	DelimiterPrecedesLast             DelimiterPrecedes   `json:"delimiter-precedes-last,omitempty" yaml:"delimiter-precedes-last,omitempty"`
	DelimiterPrecedesEtAl             DelimiterPrecedes   `json:"delimiter-precedes-et-al,omitempty" yaml:"delimiter-precedes-et-al,omitempty"`
	// BibliographyDelimiterPrecedesLast replaces DelimiterPrecedesLast in
	// bibliography entries when set.
	BibliographyDelimiterPrecedesLast DelimiterPrecedes   `json:"bibliography-delimiter-precedes-last,omitempty" yaml:"bibliography-delimiter-precedes-last,omitempty"`
	Shorten                           *ShortenListOptions `json:"shorten,omitempty" yaml:"shorten,omitempty"`
	BibliographyShorten               *ShortenListOptions `json:"bibliography-shorten,omitempty" yaml:"bibliography-shorten,omitempty"`
	InitializeWith                    *string             `json:"initialize-with,omitempty" yaml:"initialize-with,omitempty"`
	DemoteNonDroppingParticle         DemoteParticle      `json:"demote-non-dropping-particle,omitempty" yaml:"demote-non-dropping-particle,omitempty"`
}

// NameDelimiter returns the delimiter between names (default ", ").
func (c *ContributorConfig) NameDelimiter() string {
	if c == nil || c.Delimiter == nil {
		return ", "
	}
	return *c.Delimiter
}

// ShortenFor returns the et-al options for citations, or for the
// bibliography when BibliographyShorten is set.
func (c *ContributorConfig) ShortenFor(bibliography bool) *ShortenListOptions {
	if c == nil {
		return nil
	}
	if bibliography && c.BibliographyShorten != nil {
		return c.BibliographyShorten
	}
	return c.Shorten
}

// PrecedesLastFor returns the delimiter-precedes-last rule for citations,
// or for the bibliography when BibliographyDelimiterPrecedesLast is set.
func (c *ContributorConfig) PrecedesLastFor(bibliography bool) DelimiterPrecedes {
	if c == nil {
		return ""
	}
	if bibliography && c.BibliographyDelimiterPrecedesLast != "" {
		return c.BibliographyDelimiterPrecedesLast
	}
	return c.DelimiterPrecedesLast
}

// MonthFormat selects month rendering.
type MonthFormat string

const (
	MonthLong    MonthFormat = "long"
	MonthShort   MonthFormat = "short"
	MonthNumeric MonthFormat = "numeric"
)

// DateConfig configures date rendering.
type DateConfig struct {
	Month MonthFormat `json:"month,omitempty" yaml:"month,omitempty"`
}

// PageRangeFormat selects page-range abbreviation.
type PageRangeFormat string

const (
	PageRangeNone       PageRangeFormat = ""
	PageRangeExpanded   PageRangeFormat = "expanded"
	PageRangeMinimal    PageRangeFormat = "minimal"
	PageRangeMinimalTwo PageRangeFormat = "minimal-two"
	PageRangeChicago    PageRangeFormat = "chicago"
)

// LinkTarget selects where a hyperlink attaches.
type LinkTarget string

const (
	LinkVariable LinkTarget = "url-or-doi"
	LinkTitle    LinkTarget = "title"
)

// LinkConfig enables hyperlinks.
type LinkConfig struct {
	DOI    bool       `json:"doi" yaml:"doi"`
	URL    bool       `json:"url" yaml:"url"`
	Target LinkTarget `json:"target,omitempty" yaml:"target,omitempty"`
}
