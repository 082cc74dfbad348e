// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package legacy

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.uber.org/zap"
)

// Option configures Parse.
type Option func(*parser)

// WithLogger sets the logger used to report skipped elements.
func WithLogger(l *zap.Logger) Option {
	return func(p *parser) { p.logger = l }
}

type parser struct {
	logger    *zap.Logger
	macros    map[string]*xmlquery.Node
	expanding map[string]bool
}

// Parse reads a CSL 1.0 style. Macro calls are expanded inline. Elements
// the parser does not know are skipped with a warning; only malformed XML
// or a missing <style> root is an error.
func Parse(r io.Reader, opts ...Option) (*Style, error) {
	p := &parser{
		logger:    zap.NewNop(),
		macros:    make(map[string]*xmlquery.Node),
		expanding: make(map[string]bool),
	}
	for _, o := range opts {
		o(p)
	}

	doc, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing legacy style: %w", err)
	}
	root := child(doc, "style")
	if root == nil {
		return nil, fmt.Errorf("parsing legacy style: no <style> element")
	}

	macros, err := xmlquery.QueryAll(root, "//*[local-name()='macro']")
	if err != nil {
		return nil, fmt.Errorf("querying macros: %w", err)
	}
	for _, m := range macros {
		p.macros[m.SelectAttr("name")] = m
	}

	s := &Style{
		Class:   root.SelectAttr("class"),
		Options: parseOptions(root),
	}
	if info := child(root, "info"); info != nil {
		if id := child(info, "id"); id != nil {
			s.ID = strings.TrimSpace(id.InnerText())
		}
		if title := child(info, "title"); title != nil {
			s.Title = strings.TrimSpace(title.InnerText())
		}
	}
	if c := child(root, "citation"); c != nil {
		s.Citation = p.layout(c, s.Options)
	}
	if b := child(root, "bibliography"); b != nil {
		s.Bibliography = p.layout(b, s.Options)
	}
	p.logger.Debug("legacy style parsed", zap.String("id", s.ID), zap.Int("macros", len(p.macros)))
	return s, nil
}

func (p *parser) layout(n *xmlquery.Node, inherited Options) *Layout {
	l := &Layout{Options: inherited.overlay(parseOptions(n))}
	if sort := child(n, "sort"); sort != nil {
		for _, k := range elements(sort) {
			if k.Data != "key" {
				continue
			}
			key := SortKey{
				Variable:   k.SelectAttr("variable"),
				Macro:      k.SelectAttr("macro"),
				Descending: k.SelectAttr("sort") == "descending",
			}
			if key.Macro != "" {
				key.Nodes = p.expand(key.Macro)
			}
			l.Sort = append(l.Sort, key)
		}
	}
	if body := child(n, "layout"); body != nil {
		l.Formatting = formatting(body)
		l.Delimiter = body.SelectAttr("delimiter")
		l.Nodes = p.children(body)
	}
	return l
}

func (p *parser) children(n *xmlquery.Node) []Node {
	var out []Node
	for _, c := range elements(n) {
		if node := p.node(c); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func (p *parser) node(n *xmlquery.Node) Node {
	f := formatting(n)
	switch n.Data {
	case "text":
		switch {
		case n.SelectAttr("macro") != "":
			children := p.expand(n.SelectAttr("macro"))
			if children == nil {
				return nil
			}
			return &Group{Children: children, Formatting: f}
		case n.SelectAttr("variable") != "":
			return &Variable{Name: n.SelectAttr("variable"), Form: n.SelectAttr("form"), Formatting: f}
		case n.SelectAttr("term") != "":
			return &Term{Name: n.SelectAttr("term"), Form: n.SelectAttr("form"), Plural: n.SelectAttr("plural") == "true", Formatting: f}
		case hasAttr(n, "value"):
			return &Text{Value: n.SelectAttr("value"), Formatting: f}
		}
	case "names":
		return p.names(n, f)
	case "date":
		d := &Date{Variable: n.SelectAttr("variable"), Form: n.SelectAttr("form"), Formatting: f}
		for _, part := range elements(n) {
			if part.Data == "date-part" {
				d.Parts = append(d.Parts, part.SelectAttr("name"))
			}
		}
		if len(d.Parts) == 0 {
			d.Parts = datePartsAttr(n.SelectAttr("date-parts"))
		}
		return d
	case "number":
		return &Number{Variable: n.SelectAttr("variable"), Form: n.SelectAttr("form"), Formatting: f}
	case "label":
		return label(n)
	case "group":
		return &Group{Children: p.children(n), Delimiter: n.SelectAttr("delimiter"), Formatting: f}
	case "choose":
		return p.condition(n)
	}
	p.logger.Warn("skipping legacy element", zap.String("element", n.Data))
	return nil
}

func (p *parser) expand(name string) []Node {
	m, ok := p.macros[name]
	if !ok {
		p.logger.Warn("unknown macro", zap.String("macro", name))
		return nil
	}
	if p.expanding[name] {
		p.logger.Warn("recursive macro", zap.String("macro", name))
		return nil
	}
	p.expanding[name] = true
	defer delete(p.expanding, name)
	return p.children(m)
}

func (p *parser) names(n *xmlquery.Node, f Formatting) *Names {
	out := &Names{Variables: strings.Fields(n.SelectAttr("variable")), Formatting: f}
	out.Name = nameOptions(n)
	seenName := false
	for _, c := range elements(n) {
		switch c.Data {
		case "name":
			out.Name = out.Name.overlay(nameOptions(c))
			seenName = true
		case "label":
			out.Label = label(c)
			out.LabelFirst = !seenName
		case "substitute":
			out.Substitute = p.children(c)
		case "et-al":
		default:
			p.logger.Warn("skipping names child", zap.String("element", c.Data))
		}
	}
	return out
}

func (p *parser) condition(n *xmlquery.Node) *Condition {
	c := &Condition{}
	for _, arm := range elements(n) {
		switch arm.Data {
		case "if":
			c.Then = p.branch(arm)
		case "else-if":
			c.ElseIfs = append(c.ElseIfs, p.branch(arm))
		case "else":
			c.Else = p.children(arm)
		}
	}
	return c
}

func (p *parser) branch(n *xmlquery.Node) Branch {
	b := Branch{
		Types:     strings.Fields(n.SelectAttr("type")),
		Variables: strings.Fields(n.SelectAttr("variable")),
		Match:     n.SelectAttr("match"),
		Children:  p.children(n),
	}
	if b.Match == "" {
		b.Match = "all"
	}
	return b
}

func label(n *xmlquery.Node) *Label {
	return &Label{
		Variable:   n.SelectAttr("variable"),
		Form:       n.SelectAttr("form"),
		Plural:     n.SelectAttr("plural"),
		Formatting: formatting(n),
	}
}

func formatting(n *xmlquery.Node) Formatting {
	style := n.SelectAttr("font-style")
	return Formatting{
		Prefix:       n.SelectAttr("prefix"),
		Suffix:       n.SelectAttr("suffix"),
		Italic:       style == "italic" || style == "oblique",
		Bold:         n.SelectAttr("font-weight") == "bold",
		SmallCaps:    n.SelectAttr("font-variant") == "small-caps",
		Quotes:       n.SelectAttr("quotes") == "true",
		StripPeriods: n.SelectAttr("strip-periods") == "true",
	}
}

func nameOptions(n *xmlquery.Node) NameOptions {
	o := NameOptions{
		Form:                  n.SelectAttr("form"),
		And:                   n.SelectAttr("and"),
		DelimiterPrecedesLast: n.SelectAttr("delimiter-precedes-last"),
		DelimiterPrecedesEtAl: n.SelectAttr("delimiter-precedes-et-al"),
		NameAsSortOrder:       n.SelectAttr("name-as-sort-order"),
		EtAlMin:               atoi(n.SelectAttr("et-al-min")),
		EtAlUseFirst:          atoi(n.SelectAttr("et-al-use-first")),
		EtAlUseLast:           n.SelectAttr("et-al-use-last") == "true",
	}
	if n.Data == "name" && hasAttr(n, "delimiter") {
		o.Delimiter = ptr(n.SelectAttr("delimiter"))
	}
	if hasAttr(n, "names-delimiter") {
		o.Delimiter = ptr(n.SelectAttr("names-delimiter"))
	}
	if hasAttr(n, "initialize-with") {
		o.InitializeWith = ptr(n.SelectAttr("initialize-with"))
	}
	return o
}

func parseOptions(n *xmlquery.Node) Options {
	o := Options{
		PageRangeFormat:           n.SelectAttr("page-range-format"),
		DemoteNonDroppingParticle: n.SelectAttr("demote-non-dropping-particle"),
		Names:                     nameOptions(n),
		DisambiguateAddYearSuffix: n.SelectAttr("disambiguate-add-year-suffix") == "true",
		DisambiguateAddNames:      n.SelectAttr("disambiguate-add-names") == "true",
		DisambiguateAddGivenName:  n.SelectAttr("disambiguate-add-givenname") == "true",
		Collapse:                  n.SelectAttr("collapse"),
	}
	o.Names.Form = ""
	if hasAttr(n, "subsequent-author-substitute") {
		o.SubsequentAuthorSubstitute = ptr(n.SelectAttr("subsequent-author-substitute"))
	}
	return o
}

func datePartsAttr(v string) []string {
	switch v {
	case "year":
		return []string{"year"}
	case "year-month":
		return []string{"year", "month"}
	case "", "year-month-day":
		return []string{"year", "month", "day"}
	}
	return nil
}

func child(n *xmlquery.Node, name string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == name {
			return c
		}
	}
	return nil
}

func elements(n *xmlquery.Node) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

func hasAttr(n *xmlquery.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Name.Local == name {
			return true
		}
	}
	return false
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func ptr(s string) *string { return &s }
