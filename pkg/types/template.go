// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// ContributorRole names a contributor field.
type ContributorRole string

const (
	RoleAuthor     ContributorRole = "author"
	RoleEditor     ContributorRole = "editor"
	RoleTranslator ContributorRole = "translator"
	RolePublisher  ContributorRole = "publisher"
)

// ContributorForm selects how a contributor list renders.
type ContributorForm string

const (
	ContributorLong      ContributorForm = "long"
	ContributorShort     ContributorForm = "short"
	ContributorVerb      ContributorForm = "verb"
	ContributorVerbShort ContributorForm = "verb-short"
)

// NameOrder overrides the configured inversion for one component.
type NameOrder string

const (
	NameOrderDefault     NameOrder = ""
	NameOrderGivenFirst  NameOrder = "given-first"
	NameOrderFamilyFirst NameOrder = "family-first"
)

// DateVariable names a date field.
type DateVariable string

const (
	DateIssued   DateVariable = "issued"
	DateAccessed DateVariable = "accessed"
	DateOriginal DateVariable = "original-published"
)

// DateForm selects the parts of a date that render.
type DateForm string

const (
	DateFormYear      DateForm = "year"
	DateFormYearMonth DateForm = "year-month"
	DateFormMonthDay  DateForm = "month-day"
	DateFormFull      DateForm = "full"
)

// TitleType names a title field.
type TitleType string

const (
	TitlePrimary         TitleType = "primary"
	TitleParentSerial    TitleType = "parent-serial"
	TitleParentMonograph TitleType = "parent-monograph"
)

// TitleForm selects long or short titles.
type TitleForm string

const (
	TitleLong  TitleForm = "long"
	TitleShort TitleForm = "short"
)

// NumberVariable names a numeric field.
type NumberVariable string

const (
	NumberVolume         NumberVariable = "volume"
	NumberIssue          NumberVariable = "issue"
	NumberPages          NumberVariable = "pages"
	NumberEdition        NumberVariable = "edition"
	NumberNumber         NumberVariable = "number"
	NumberChapter        NumberVariable = "chapter-number"
	NumberOfPages        NumberVariable = "number-of-pages"
	NumberCitationNumber NumberVariable = "citation-number"
	NumberLocator        NumberVariable = "locator"
)

// NumberForm selects numeric or ordinal rendering.
type NumberForm string

const (
	NumberNumeric NumberForm = "numeric"
	NumberOrdinal NumberForm = "ordinal"
)

// LabelForm selects the form of a locator label.
type LabelForm string

const (
	LabelLong   LabelForm = "long"
	LabelShort  LabelForm = "short"
	LabelSymbol LabelForm = "symbol"
)

// SimpleVariable names a plain string field.
type SimpleVariable string

const (
	VarDOI             SimpleVariable = "doi"
	VarURL             SimpleVariable = "url"
	VarISBN            SimpleVariable = "isbn"
	VarISSN            SimpleVariable = "issn"
	VarPublisher       SimpleVariable = "publisher"
	VarPublisherPlace  SimpleVariable = "publisher-place"
	VarGenre           SimpleVariable = "genre"
	VarMedium          SimpleVariable = "medium"
	VarNote            SimpleVariable = "note"
	VarArchive         SimpleVariable = "archive"
	VarAuthority       SimpleVariable = "authority"
	VarJurisdiction    SimpleVariable = "jurisdiction"
	VarVersion         SimpleVariable = "version"
	VarLanguage        SimpleVariable = "language"
	VarCollectionTitle SimpleVariable = "collection-title"
)

// TermForm selects the form of a locale term.
type TermForm string

const (
	TermFormLong      TermForm = "long"
	TermFormShort     TermForm = "short"
	TermFormSymbol    TermForm = "symbol"
	TermFormVerb      TermForm = "verb"
	TermFormVerbShort TermForm = "verb-short"
)

// LocatorKind names the unit of a citation locator.
type LocatorKind string

const (
	LocatorPage      LocatorKind = "page"
	LocatorChapter   LocatorKind = "chapter"
	LocatorSection   LocatorKind = "section"
	LocatorParagraph LocatorKind = "paragraph"
	LocatorVolume    LocatorKind = "volume"
	LocatorFigure    LocatorKind = "figure"
	LocatorLine      LocatorKind = "line"
	LocatorNote      LocatorKind = "note"
	LocatorIssue     LocatorKind = "issue"
	LocatorEdition   LocatorKind = "edition"
)

// AllKinds is the override key applied to every item kind before the
// kind-specific override.
const AllKinds = "all"

// Component is one element of a declarative template: a contributor,
// date, title, number, variable, term, or a nested list.
type Component interface {
	// Base exposes the shared rendering and per-kind overrides.
	Base() *ComponentBase

	// VariableKey identifies the logical field the component renders.
	VariableKey() string

	// Clone returns a deep copy.
	Clone() Component
}

// ComponentBase carries the rendering options shared by all components
// and the optional per-kind override map.
type ComponentBase struct {
	Rendering `yaml:",inline"`

	Overrides map[string]Rendering `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// Effective returns the rendering for an item kind: the base, then the
// "all" override, then the override for kind.
func (b *ComponentBase) Effective(kind string) Rendering {
	r := b.Rendering
	if o, ok := b.Overrides[AllKinds]; ok {
		r = r.Merge(o)
	}
	if o, ok := b.Overrides[kind]; ok {
		r = r.Merge(o)
	}
	return r
}

// SetOverride merges r into the override for kind.
func (b *ComponentBase) SetOverride(kind string, r Rendering) {
	if b.Overrides == nil {
		b.Overrides = make(map[string]Rendering)
	}
	b.Overrides[kind] = b.Overrides[kind].Merge(r)
}

func (b ComponentBase) clone() ComponentBase {
	out := ComponentBase{Rendering: b.Rendering.Clone()}
	if b.Overrides != nil {
		out.Overrides = make(map[string]Rendering, len(b.Overrides))
		for k, v := range b.Overrides {
			out.Overrides[k] = v.Clone()
		}
	}
	return out
}

// RoleLabelPlacement positions a role label around the names.
type RoleLabelPlacement string

const (
	LabelPrefix RoleLabelPlacement = "prefix"
	LabelSuffix RoleLabelPlacement = "suffix"
)

// RoleLabel adds a role term ("ed.", "edited by") to a contributor.
type RoleLabel struct {
	Form      TermForm           `json:"form,omitempty" yaml:"form,omitempty"`
	Placement RoleLabelPlacement `json:"placement,omitempty" yaml:"placement,omitempty"`
	Wrap      WrapPunctuation    `json:"wrap,omitempty" yaml:"wrap,omitempty"`
}

// ContributorComponent renders a contributor list.
type ContributorComponent struct {
	Role      ContributorRole `json:"contributor" yaml:"contributor"`
	Form      ContributorForm `json:"form,omitempty" yaml:"form,omitempty"`
	NameOrder NameOrder       `json:"name-order,omitempty" yaml:"name-order,omitempty"`
	Delimiter *string         `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Label     *RoleLabel      `json:"label,omitempty" yaml:"label,omitempty"`

	ComponentBase `yaml:",inline"`
}

func (c *ContributorComponent) Base() *ComponentBase { return &c.ComponentBase }
func (c *ContributorComponent) VariableKey() string  { return "contributor:" + string(c.Role) }
func (c *ContributorComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	if c.Delimiter != nil {
		out.Delimiter = Ptr(*c.Delimiter)
	}
	if c.Label != nil {
		l := *c.Label
		out.Label = &l
	}
	return &out
}

// DateComponent renders a date.
type DateComponent struct {
	Date DateVariable `json:"date" yaml:"date"`
	Form DateForm     `json:"form,omitempty" yaml:"form,omitempty"`

	ComponentBase `yaml:",inline"`
}

func (c *DateComponent) Base() *ComponentBase { return &c.ComponentBase }
func (c *DateComponent) VariableKey() string  { return "date:" + string(c.Date) }
func (c *DateComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	return &out
}

// TitleComponent renders a title.
type TitleComponent struct {
	Title TitleType `json:"title" yaml:"title"`
	Form  TitleForm `json:"form,omitempty" yaml:"form,omitempty"`

	ComponentBase `yaml:",inline"`
}

func (c *TitleComponent) Base() *ComponentBase { return &c.ComponentBase }
func (c *TitleComponent) VariableKey() string  { return "title:" + string(c.Title) }
func (c *TitleComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	return &out
}

// NumberComponent renders a numeric field, optionally with a label.
type NumberComponent struct {
	Number NumberVariable `json:"number" yaml:"number"`
	Form   NumberForm     `json:"form,omitempty" yaml:"form,omitempty"`
	Label  *LabelForm     `json:"label,omitempty" yaml:"label,omitempty"`

	ComponentBase `yaml:",inline"`
}

func (c *NumberComponent) Base() *ComponentBase { return &c.ComponentBase }
func (c *NumberComponent) VariableKey() string  { return "number:" + string(c.Number) }
func (c *NumberComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	if c.Label != nil {
		out.Label = Ptr(*c.Label)
	}
	return &out
}

// VariableComponent renders a plain string field.
type VariableComponent struct {
	Variable SimpleVariable `json:"variable" yaml:"variable"`

	ComponentBase `yaml:",inline"`
}

func (c *VariableComponent) Base() *ComponentBase { return &c.ComponentBase }
func (c *VariableComponent) VariableKey() string  { return "variable:" + string(c.Variable) }
func (c *VariableComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	return &out
}

// TermComponent renders a locale term.
type TermComponent struct {
	Term string   `json:"term" yaml:"term"`
	Form TermForm `json:"form,omitempty" yaml:"form,omitempty"`

	ComponentBase `yaml:",inline"`
}

func (c *TermComponent) Base() *ComponentBase { return &c.ComponentBase }
func (c *TermComponent) VariableKey() string  { return "term:" + c.Term }
func (c *TermComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	return &out
}

// ListComponent renders its children joined by Delimiter.
type ListComponent struct {
	Items     Template `json:"items" yaml:"items"`
	Delimiter string   `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`

	ComponentBase `yaml:",inline"`
}

func (c *ListComponent) Base() *ComponentBase { return &c.ComponentBase }

// VariableKey is the structural signature of the contained variables.
func (c *ListComponent) VariableKey() string {
	keys := make([]string, len(c.Items))
	for i, item := range c.Items {
		keys[i] = item.VariableKey()
	}
	return "list(" + strings.Join(keys, ",") + ")"
}

func (c *ListComponent) Clone() Component {
	out := *c
	out.ComponentBase = c.ComponentBase.clone()
	out.Items = c.Items.Clone()
	return &out
}

// Template is an ordered list of components.
type Template []Component

// Clone deep-copies every component.
func (t Template) Clone() Template {
	if t == nil {
		return nil
	}
	out := make(Template, len(t))
	for i, c := range t {
		out[i] = c.Clone()
	}
	return out
}

// UnmarshalYAML decodes each mapping by its discriminating key.
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: template must be a sequence", node.Line)
	}
	out := make(Template, 0, len(node.Content))
	for _, item := range node.Content {
		c, err := decodeComponent(item)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*t = out
	return nil
}

func decodeComponent(node *yaml.Node) (Component, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: template component must be a mapping", node.Line)
	}
	var c Component
	for i := 0; i+1 < len(node.Content) && c == nil; i += 2 {
		switch node.Content[i].Value {
		case "contributor":
			c = &ContributorComponent{}
		case "date":
			c = &DateComponent{}
		case "title":
			c = &TitleComponent{}
		case "number":
			c = &NumberComponent{}
		case "variable":
			c = &VariableComponent{}
		case "term":
			c = &TermComponent{}
		case "items":
			c = &ListComponent{}
		}
	}
	if c == nil {
		return nil, fmt.Errorf("line %d: unknown template component", node.Line)
	}
	if err := node.Decode(c); err != nil {
		return nil, fmt.Errorf("line %d: %w", node.Line, err)
	}
	return c, nil
}
