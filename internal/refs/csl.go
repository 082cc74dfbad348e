// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refs

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citekit/pkg/types"
)

// CSLItem is a bibliographic entry in CSL-JSON / CSL-YAML form. Field
// names follow the CSL schema so that files exported by Zotero, Pandoc,
// and other reference managers load unchanged.
type CSLItem struct {
	ID              string    `json:"id" yaml:"id"`
	Type            string    `json:"type" yaml:"type"`
	Title           string    `json:"title,omitempty" yaml:"title,omitempty"`
	TitleShort      string    `json:"title-short,omitempty" yaml:"title-short,omitempty"`
	ContainerTitle  string    `json:"container-title,omitempty" yaml:"container-title,omitempty"`
	CollectionTitle string    `json:"collection-title,omitempty" yaml:"collection-title,omitempty"`
	Author          []CSLName `json:"author,omitempty" yaml:"author,omitempty"`
	Editor          []CSLName `json:"editor,omitempty" yaml:"editor,omitempty"`
	Translator      []CSLName `json:"translator,omitempty" yaml:"translator,omitempty"`
	Issued          *CSLDate  `json:"issued,omitempty" yaml:"issued,omitempty"`
	Accessed        *CSLDate  `json:"accessed,omitempty" yaml:"accessed,omitempty"`
	OriginalDate    *CSLDate  `json:"original-date,omitempty" yaml:"original-date,omitempty"`
	Publisher       string    `json:"publisher,omitempty" yaml:"publisher,omitempty"`
	PublisherPlace  string    `json:"publisher-place,omitempty" yaml:"publisher-place,omitempty"`
	Volume          Text      `json:"volume,omitempty" yaml:"volume,omitempty"`
	Issue           Text      `json:"issue,omitempty" yaml:"issue,omitempty"`
	Page            Text      `json:"page,omitempty" yaml:"page,omitempty"`
	Edition         Text      `json:"edition,omitempty" yaml:"edition,omitempty"`
	Number          Text      `json:"number,omitempty" yaml:"number,omitempty"`
	ChapterNumber   Text      `json:"chapter-number,omitempty" yaml:"chapter-number,omitempty"`
	NumberOfPages   Text      `json:"number-of-pages,omitempty" yaml:"number-of-pages,omitempty"`
	Abstract        string    `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	DOI             string    `json:"DOI,omitempty" yaml:"DOI,omitempty"`
	URL             string    `json:"URL,omitempty" yaml:"URL,omitempty"`
	ISBN            string    `json:"ISBN,omitempty" yaml:"ISBN,omitempty"`
	ISSN            string    `json:"ISSN,omitempty" yaml:"ISSN,omitempty"`
	Genre           string    `json:"genre,omitempty" yaml:"genre,omitempty"`
	Medium          string    `json:"medium,omitempty" yaml:"medium,omitempty"`
	Note            string    `json:"note,omitempty" yaml:"note,omitempty"`
	Archive         string    `json:"archive,omitempty" yaml:"archive,omitempty"`
	Authority       string    `json:"authority,omitempty" yaml:"authority,omitempty"`
	Jurisdiction    string    `json:"jurisdiction,omitempty" yaml:"jurisdiction,omitempty"`
	Version         string    `json:"version,omitempty" yaml:"version,omitempty"`
	Language        string    `json:"language,omitempty" yaml:"language,omitempty"`
}

// CSLName is a person or organization name in CSL form.
type CSLName struct {
	Family              string `json:"family,omitempty" yaml:"family,omitempty"`
	Given               string `json:"given,omitempty" yaml:"given,omitempty"`
	Suffix              string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	DroppingParticle    string `json:"dropping-particle,omitempty" yaml:"dropping-particle,omitempty"`
	NonDroppingParticle string `json:"non-dropping-particle,omitempty" yaml:"non-dropping-particle,omitempty"`
	Literal             string `json:"literal,omitempty" yaml:"literal,omitempty"`
}

// UnmarshalJSON accepts a plain string as a full name.
func (n *CSLName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = parseAuthorName(s)
		return nil
	}
	type plain CSLName
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*n = CSLName(p)
	return nil
}

// UnmarshalYAML accepts a plain string as a full name.
func (n *CSLName) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*n = parseAuthorName(node.Value)
		return nil
	}
	type plain CSLName
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*n = CSLName(p)
	return nil
}

// CSLDate is a date in CSL form. DateParts holds one entry for a single
// date and two for a range.
type CSLDate struct {
	DateParts [][]Text `json:"date-parts,omitempty" yaml:"date-parts,omitempty"`
	Season    Text     `json:"season,omitempty" yaml:"season,omitempty"`
	Circa     any      `json:"circa,omitempty" yaml:"circa,omitempty"`
	Literal   string   `json:"literal,omitempty" yaml:"literal,omitempty"`
	Raw       string   `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Text is a CSL field that may arrive as a string or a number.
type Text string

// UnmarshalJSON accepts strings and numbers.
func (t *Text) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*t = Text(n.String())
	return nil
}

// Int returns the numeric value, or 0.
func (t Text) Int() int {
	n, _ := strconv.Atoi(strings.TrimSpace(string(t)))
	return n
}

// EDTF converts the CSL date to the EDTF string stored on a Reference.
func (d *CSLDate) EDTF() types.EDTF {
	if d == nil {
		return ""
	}
	if len(d.DateParts) == 0 || len(d.DateParts[0]) == 0 || d.DateParts[0][0].Int() == 0 {
		if d.Literal != "" {
			return types.EDTF(d.Literal)
		}
		return types.EDTF(d.Raw)
	}
	start := datePart(d.DateParts[0], d.Season.Int())
	if isCirca(d.Circa) {
		start += "~"
	}
	if len(d.DateParts) > 1 && len(d.DateParts[1]) > 0 && d.DateParts[1][0].Int() != 0 {
		return types.EDTF(start + "/" + datePart(d.DateParts[1], 0))
	}
	return types.EDTF(start)
}

func datePart(parts []Text, season int) string {
	s := fmt.Sprintf("%04d", parts[0].Int())
	if parts[0].Int() < 0 {
		s = strconv.Itoa(parts[0].Int())
	}
	month := 0
	if len(parts) > 1 {
		month = parts[1].Int()
	}
	if month == 0 && season >= 1 && season <= 4 {
		return fmt.Sprintf("%s-%02d", s, season+20)
	}
	if month < 1 || month > 12 {
		return s
	}
	s += fmt.Sprintf("-%02d", month)
	if len(parts) > 2 {
		if day := parts[2].Int(); day >= 1 && day <= 31 {
			s += fmt.Sprintf("-%02d", day)
		}
	}
	return s
}

func isCirca(v any) bool {
	switch c := v.(type) {
	case bool:
		return c
	case string:
		return c != "" && c != "false" && c != "0"
	case float64:
		return c != 0
	case int:
		return c != 0
	}
	return false
}

// dateFromEDTF converts an EDTF string back to a CSL date.
func dateFromEDTF(e types.EDTF) *CSLDate {
	if e == "" {
		return nil
	}
	d := e.Parse()
	if d.IsLiteral() {
		return &CSLDate{Literal: d.Literal}
	}
	out := &CSLDate{DateParts: [][]Text{parts(d)}}
	if d.End != nil {
		out.DateParts = append(out.DateParts, parts(*d.End))
	}
	if d.Season != 0 {
		out.Season = Text(strconv.Itoa(d.Season))
	}
	if d.Approximate {
		out.Circa = true
	}
	return out
}

func parts(d types.Date) []Text {
	p := []Text{Text(strconv.Itoa(d.Year))}
	if d.Month != 0 {
		p = append(p, Text(strconv.Itoa(d.Month)))
		if d.Day != 0 {
			p = append(p, Text(strconv.Itoa(d.Day)))
		}
	}
	return p
}

// parseAuthorName splits a full name string into CSL family/given parts.
// "Family, Given" splits on the comma; otherwise the last token is the
// family name. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	if family, given, ok := strings.Cut(name, ","); ok {
		return CSLName{Family: strings.TrimSpace(family), Given: strings.TrimSpace(given)}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  name[:idx],
		Family: name[idx+1:],
	}
}

func toName(n CSLName) types.Name {
	return types.Name{
		Literal:             n.Literal,
		Given:               n.Given,
		Family:              n.Family,
		Suffix:              n.Suffix,
		DroppingParticle:    n.DroppingParticle,
		NonDroppingParticle: n.NonDroppingParticle,
	}
}

func toNames(ns []CSLName) types.Contributor {
	if len(ns) == 0 {
		return nil
	}
	out := make(types.Contributor, len(ns))
	for i, n := range ns {
		out[i] = toName(n)
	}
	return out
}

func fromNames(c types.Contributor) []CSLName {
	if len(c) == 0 {
		return nil
	}
	out := make([]CSLName, len(c))
	for i, n := range c {
		out[i] = CSLName{
			Family:              n.Family,
			Given:               n.Given,
			Suffix:              n.Suffix,
			DroppingParticle:    n.DroppingParticle,
			NonDroppingParticle: n.NonDroppingParticle,
			Literal:             n.Literal,
		}
	}
	return out
}
