// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// WrapPunctuation encloses a rendered value.
type WrapPunctuation string

const (
	WrapNone        WrapPunctuation = ""
	WrapParentheses WrapPunctuation = "parentheses"
	WrapBrackets    WrapPunctuation = "brackets"
	WrapQuotes      WrapPunctuation = "quotes"
)

// Rendering holds the presentation options of a template component. Every
// field is optional so that an override can change only what it names.
type Rendering struct {
	Emph         *bool            `json:"emph,omitempty" yaml:"emph,omitempty"`
	Quote        *bool            `json:"quote,omitempty" yaml:"quote,omitempty"`
	Strong       *bool            `json:"strong,omitempty" yaml:"strong,omitempty"`
	SmallCaps    *bool            `json:"small-caps,omitempty" yaml:"small-caps,omitempty"`
	Prefix       *string          `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Suffix       *string          `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	InnerPrefix  *string          `json:"inner-prefix,omitempty" yaml:"inner-prefix,omitempty"`
	InnerSuffix  *string          `json:"inner-suffix,omitempty" yaml:"inner-suffix,omitempty"`
	Wrap         *WrapPunctuation `json:"wrap,omitempty" yaml:"wrap,omitempty"`
	Suppress     *bool            `json:"suppress,omitempty" yaml:"suppress,omitempty"`
	StripPeriods *bool            `json:"strip-periods,omitempty" yaml:"strip-periods,omitempty"`
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Merge returns r with every field set in o applied on top.
func (r Rendering) Merge(o Rendering) Rendering {
	if o.Emph != nil {
		r.Emph = o.Emph
	}
	if o.Quote != nil {
		r.Quote = o.Quote
	}
	if o.Strong != nil {
		r.Strong = o.Strong
	}
	if o.SmallCaps != nil {
		r.SmallCaps = o.SmallCaps
	}
	if o.Prefix != nil {
		r.Prefix = o.Prefix
	}
	if o.Suffix != nil {
		r.Suffix = o.Suffix
	}
	if o.InnerPrefix != nil {
		r.InnerPrefix = o.InnerPrefix
	}
	if o.InnerSuffix != nil {
		r.InnerSuffix = o.InnerSuffix
	}
	if o.Wrap != nil {
		r.Wrap = o.Wrap
	}
	if o.Suppress != nil {
		r.Suppress = o.Suppress
	}
	if o.StripPeriods != nil {
		r.StripPeriods = o.StripPeriods
	}
	return r
}

// Clone returns a copy that shares no pointers with r.
func (r Rendering) Clone() Rendering {
	cp := func(b *bool) *bool {
		if b == nil {
			return nil
		}
		return Ptr(*b)
	}
	cs := func(s *string) *string {
		if s == nil {
			return nil
		}
		return Ptr(*s)
	}
	out := Rendering{
		Emph:         cp(r.Emph),
		Quote:        cp(r.Quote),
		Strong:       cp(r.Strong),
		SmallCaps:    cp(r.SmallCaps),
		Prefix:       cs(r.Prefix),
		Suffix:       cs(r.Suffix),
		InnerPrefix:  cs(r.InnerPrefix),
		InnerSuffix:  cs(r.InnerSuffix),
		Suppress:     cp(r.Suppress),
		StripPeriods: cp(r.StripPeriods),
	}
	if r.Wrap != nil {
		out.Wrap = Ptr(*r.Wrap)
	}
	return out
}

// IsSuppressed reports whether the component is hidden.
func (r Rendering) IsSuppressed() bool { return r.Suppress != nil && *r.Suppress }

// PrefixText returns the prefix or "".
func (r Rendering) PrefixText() string { return deref(r.Prefix) }

// SuffixText returns the suffix or "".
func (r Rendering) SuffixText() string { return deref(r.Suffix) }

// WrapValue returns the wrap or WrapNone.
func (r Rendering) WrapValue() WrapPunctuation {
	if r.Wrap == nil {
		return WrapNone
	}
	return *r.Wrap
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Flag reports whether b is set and true.
func Flag(b *bool) bool { return b != nil && *b }
