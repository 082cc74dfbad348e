// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package legacy holds the procedural template tree of a CSL 1.0 style
// and the XML parser that builds it. The tree is input to the compiler
// only; nothing renders from it directly.
package legacy

// Node is one element of a legacy layout. The set of node types is
// closed: Names, Date, Variable, Number, Label, Term, Text, Group, and
// Condition.
type Node interface {
	isNode()
}

// Formatting is the affix and font markup shared by all rendering
// elements.
type Formatting struct {
	Prefix       string
	Suffix       string
	Italic       bool
	Bold         bool
	SmallCaps    bool
	Quotes       bool
	StripPeriods bool
}

// NameOptions are the attributes of a <name> element, or the inheritable
// name attributes of <style>, <citation>, and <bibliography>.
type NameOptions struct {
	Form                  string
	And                   string
	Delimiter             *string
	DelimiterPrecedesLast string
	DelimiterPrecedesEtAl string
	InitializeWith        *string
	NameAsSortOrder       string
	EtAlMin               int
	EtAlUseFirst          int
	EtAlUseLast           bool
}

// overlay returns o with every attribute set in top applied.
func (o NameOptions) overlay(top NameOptions) NameOptions {
	if top.Form != "" {
		o.Form = top.Form
	}
	if top.And != "" {
		o.And = top.And
	}
	if top.Delimiter != nil {
		o.Delimiter = top.Delimiter
	}
	if top.DelimiterPrecedesLast != "" {
		o.DelimiterPrecedesLast = top.DelimiterPrecedesLast
	}
	if top.DelimiterPrecedesEtAl != "" {
		o.DelimiterPrecedesEtAl = top.DelimiterPrecedesEtAl
	}
	if top.InitializeWith != nil {
		o.InitializeWith = top.InitializeWith
	}
	if top.NameAsSortOrder != "" {
		o.NameAsSortOrder = top.NameAsSortOrder
	}
	if top.EtAlMin != 0 {
		o.EtAlMin = top.EtAlMin
	}
	if top.EtAlUseFirst != 0 {
		o.EtAlUseFirst = top.EtAlUseFirst
	}
	if top.EtAlUseLast {
		o.EtAlUseLast = true
	}
	return o
}

// Names renders one or more contributor variables.
type Names struct {
	Variables []string
	Name      NameOptions
	Label     *Label

	// LabelFirst is set when the label precedes the names.
	LabelFirst bool

	// Substitute lists the fallbacks rendered when every variable is empty.
	Substitute []Node

	Formatting
}

// Date renders a date variable. Parts lists the date parts that render
// ("year", "month", "day").
type Date struct {
	Variable string
	Form     string
	Parts    []string
	Formatting
}

// Variable renders a plain variable (<text variable="...">).
type Variable struct {
	Name string
	Form string
	Formatting
}

// Number renders a numeric variable.
type Number struct {
	Variable string
	Form     string
	Formatting
}

// Label renders the term for a variable ("p.", "eds.").
type Label struct {
	Variable string
	Form     string
	Plural   string
	Formatting
}

// Term renders a locale term (<text term="...">).
type Term struct {
	Name   string
	Form   string
	Plural bool
	Formatting
}

// Text is literal text (<text value="...">).
type Text struct {
	Value string
	Formatting
}

// Group renders its children joined by Delimiter, and nothing when no
// child variable is set.
type Group struct {
	Children  []Node
	Delimiter string
	Formatting
}

// Branch is one arm of a condition. Types holds the item-type guard;
// other tests are kept for inspection but do not guard by kind.
type Branch struct {
	Types     []string
	Variables []string
	Match     string
	Children  []Node
}

// TypeGuarded reports whether the branch applies to a fixed set of item
// types.
func (b Branch) TypeGuarded() bool {
	return len(b.Types) > 0 && b.Match != "none"
}

// Condition is a <choose> element.
type Condition struct {
	Then    Branch
	ElseIfs []Branch
	Else    []Node
}

func (*Names) isNode()     {}
func (*Date) isNode()      {}
func (*Variable) isNode()  {}
func (*Number) isNode()    {}
func (*Label) isNode()     {}
func (*Term) isNode()      {}
func (*Text) isNode()      {}
func (*Group) isNode()     {}
func (*Condition) isNode() {}

// Options are the inheritable global options of a style.
type Options struct {
	PageRangeFormat            string
	DemoteNonDroppingParticle  string
	Names                      NameOptions
	DisambiguateAddYearSuffix  bool
	DisambiguateAddNames       bool
	DisambiguateAddGivenName   bool
	SubsequentAuthorSubstitute *string
	Collapse                   string
}

func (o Options) overlay(top Options) Options {
	if top.PageRangeFormat != "" {
		o.PageRangeFormat = top.PageRangeFormat
	}
	if top.DemoteNonDroppingParticle != "" {
		o.DemoteNonDroppingParticle = top.DemoteNonDroppingParticle
	}
	o.Names = o.Names.overlay(top.Names)
	o.DisambiguateAddYearSuffix = o.DisambiguateAddYearSuffix || top.DisambiguateAddYearSuffix
	o.DisambiguateAddNames = o.DisambiguateAddNames || top.DisambiguateAddNames
	o.DisambiguateAddGivenName = o.DisambiguateAddGivenName || top.DisambiguateAddGivenName
	if top.SubsequentAuthorSubstitute != nil {
		o.SubsequentAuthorSubstitute = top.SubsequentAuthorSubstitute
	}
	if top.Collapse != "" {
		o.Collapse = top.Collapse
	}
	return o
}

// SortKey is one <key> of a <sort>. Nodes holds the expanded macro when
// the key names one.
type SortKey struct {
	Variable   string
	Macro      string
	Descending bool
	Nodes      []Node
}

// Layout is a parsed <citation> or <bibliography>.
type Layout struct {
	Options   Options
	Nodes     []Node
	Delimiter string
	Sort      []SortKey
	Formatting
}

// Style is a parsed legacy style.
type Style struct {
	ID           string
	Title        string
	Class        string
	Options      Options
	Citation     *Layout
	Bibliography *Layout
}
