// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// CitationMode distinguishes narrative from parenthetical citations.
type CitationMode string

const (
	ModeNonIntegral CitationMode = "non-integral"
	ModeIntegral    CitationMode = "integral"
)

// ItemVisibility hides parts of a cited item.
type ItemVisibility string

const (
	VisibilityDefault        ItemVisibility = ""
	VisibilitySuppressAuthor ItemVisibility = "suppress-author"
	VisibilityAuthorOnly     ItemVisibility = "author-only"
)

// CitationItem is one cited reference within a citation.
type CitationItem struct {
	RefID      string         `json:"id" yaml:"id"`
	Locator    string         `json:"locator,omitempty" yaml:"locator,omitempty"`
	Label      LocatorKind    `json:"label,omitempty" yaml:"label,omitempty"`
	Prefix     string         `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix     string         `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	Visibility ItemVisibility `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// Citation is an ordered group of cited items rendered together.
type Citation struct {
	ID         string         `json:"id,omitempty" yaml:"id,omitempty"`
	Items      []CitationItem `json:"items" yaml:"items"`
	Mode       CitationMode   `json:"mode,omitempty" yaml:"mode,omitempty"`
	NoteNumber int            `json:"note-number,omitempty" yaml:"note-number,omitempty"`
}

// IsIntegral reports whether the citation is narrative.
func (c Citation) IsIntegral() bool { return c.Mode == ModeIntegral }
