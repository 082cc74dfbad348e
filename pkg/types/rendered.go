// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RenderedComponent is one rendered value of a bibliography entry or a
// citation item, left unassembled so that an output formatter can apply
// markup. Prefix and Suffix hold renderer-produced affixes (role and
// locator labels); the component's own rendering still applies.
type RenderedComponent struct {
	Value  string `json:"value"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
	URL    string `json:"url,omitempty"`

	// Component is the template component that produced the value, with
	// its overrides already resolved for Kind.
	Component Component `json:"-"`
	Rendering Rendering `json:"-"`
	Kind      string    `json:"kind"`

	// Preformatted values are already marked up and must not be escaped.
	Preformatted bool `json:"-"`
}

// Entry is one rendered bibliography entry.
type Entry struct {
	ID         string              `json:"id"`
	Components []RenderedComponent `json:"components"`
}

// EntryGroup is a headed run of bibliography entries.
type EntryGroup struct {
	ID      string  `json:"id,omitempty"`
	Heading string  `json:"heading,omitempty"`
	Entries []Entry `json:"entries"`
}
