// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citekit/internal/locale"
	"github.com/pdiddy/citekit/pkg/types"
)

func names(ns ...types.Name) types.Contributor { return types.Contributor(ns) }

var (
	kuhn   = types.Name{Family: "Kuhn", Given: "Thomas S."}
	smith  = types.Name{Family: "Smith", Given: "John"}
	jones  = types.Name{Family: "Jones", Given: "Mary Ann"}
	brown  = types.Name{Family: "Brown", Given: "Lee"}
	white  = types.Name{Family: "White", Given: "Ann"}
	gogh   = types.Name{Family: "Gogh", Given: "Vincent", NonDroppingParticle: "van"}
	humbol = types.Name{Family: "Humboldt", Given: "Alexander", DroppingParticle: "von"}
	who    = types.Name{Literal: "World Health Organization"}
)

func TestFormatNames(t *testing.T) {
	loc, err := locale.Builtin("en-US")
	require.NoError(t, err)

	tests := []struct {
		name string
		list types.Contributor
		opts NameOptions
		want string
	}{
		{
			name: "single given first",
			list: names(kuhn),
			want: "Thomas S. Kuhn",
		},
		{
			name: "short form",
			list: names(kuhn),
			opts: NameOptions{Form: types.ContributorShort},
			want: "Kuhn",
		},
		{
			name: "inverted first with initials",
			list: names(kuhn, smith),
			opts: NameOptions{Config: types.ContributorConfig{
				DisplayAsSort:  types.DisplayFirst,
				InitializeWith: types.Ptr(". "),
				And:            types.AndText,
			}},
			want: "Kuhn, T. S. and J. Smith",
		},
		{
			name: "two names in bibliography get the delimiter",
			list: names(kuhn, smith),
			opts: NameOptions{
				Config: types.ContributorConfig{
					DisplayAsSort:  types.DisplayAll,
					InitializeWith: types.Ptr(". "),
					And:            types.AndSymbol,
				},
				Bibliography: true,
			},
			want: "Kuhn, T. S., & Smith, J.",
		},
		{
			name: "three names",
			list: names(smith, jones, brown),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{And: types.AndText}},
			want: "Smith, Jones, and Brown",
		},
		{
			name: "bibliography et-al options",
			list: names(smith, jones, brown),
			opts: NameOptions{
				Form:         types.ContributorShort,
				Bibliography: true,
				Config: types.ContributorConfig{
					And:                 types.AndText,
					Shorten:             &types.ShortenListOptions{Min: 3, UseFirst: 1},
					BibliographyShorten: &types.ShortenListOptions{Min: 4, UseFirst: 3},
				},
			},
			want: "Smith, Jones, and Brown",
		},
		{
			name: "two given-first names in bibliography get the delimiter",
			list: names(smith, jones),
			opts: NameOptions{Config: types.ContributorConfig{And: types.AndText}, Bibliography: true},
			want: "John Smith, and Mary Ann Jones",
		},
		{
			name: "contextual keeps two bibliography names bare",
			list: names(smith, jones),
			opts: NameOptions{
				Config: types.ContributorConfig{
					And:                   types.AndText,
					DelimiterPrecedesLast: types.PrecedesContextual,
				},
				Bibliography: true,
			},
			want: "John Smith and Mary Ann Jones",
		},
		{
			name: "bibliography precedes-last stays out of citations",
			list: names(smith, jones),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				And:                               types.AndSymbol,
				DelimiterPrecedesLast:             types.PrecedesContextual,
				BibliographyDelimiterPrecedesLast: types.PrecedesAlways,
			}},
			want: "Smith & Jones",
		},
		{
			name: "bibliography precedes-last applies in entries",
			list: names(smith, jones),
			opts: NameOptions{
				Form: types.ContributorShort,
				Config: types.ContributorConfig{
					And:                               types.AndSymbol,
					DelimiterPrecedesLast:             types.PrecedesNever,
					BibliographyDelimiterPrecedesLast: types.PrecedesAlways,
				},
				Bibliography: true,
			},
			want: "Smith, & Jones",
		},
		{
			name: "three names never precedes",
			list: names(smith, jones, brown),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				And:                   types.AndText,
				DelimiterPrecedesLast: types.PrecedesNever,
			}},
			want: "Smith, Jones and Brown",
		},
		{
			name: "no conjunction",
			list: names(smith, jones),
			opts: NameOptions{Form: types.ContributorShort},
			want: "Smith, Jones",
		},
		{
			name: "integral and",
			list: names(smith, jones),
			opts: NameOptions{Form: types.ContributorShort, Integral: true, Config: types.ContributorConfig{
				And:         types.AndSymbol,
				IntegralAnd: types.AndText,
			}},
			want: "Smith and Jones",
		},
		{
			name: "et al",
			list: names(smith, jones, brown),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				Shorten: &types.ShortenListOptions{Min: 3, UseFirst: 1},
			}},
			want: "Smith et al.",
		},
		{
			name: "et al after two names takes the delimiter",
			list: names(smith, jones, brown, white),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				Shorten: &types.ShortenListOptions{Min: 3, UseFirst: 2},
			}},
			want: "Smith, Jones, et al.",
		},
		{
			name: "hint raises names shown",
			list: names(smith, jones, brown, white),
			opts: NameOptions{Form: types.ContributorShort, MinNames: 3, Config: types.ContributorConfig{
				Shorten: &types.ShortenListOptions{Min: 3, UseFirst: 1},
			}},
			want: "Smith, Jones, Brown, et al.",
		},
		{
			name: "use last",
			list: names(smith, jones, brown, white),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				Shorten: &types.ShortenListOptions{Min: 3, UseFirst: 1, UseLast: 1},
			}},
			want: "Smith, … White",
		},
		{
			name: "and others",
			list: names(smith, jones, brown),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				Shorten: &types.ShortenListOptions{Min: 3, UseFirst: 1, AndOthers: types.AndOthersText},
			}},
			want: "Smith and others",
		},
		{
			name: "below minimum is not shortened",
			list: names(smith, jones),
			opts: NameOptions{Form: types.ContributorShort, Config: types.ContributorConfig{
				Shorten: &types.ShortenListOptions{Min: 3, UseFirst: 1},
			}},
			want: "Smith, Jones",
		},
		{
			name: "non-dropping particle stays with family",
			list: names(gogh),
			opts: NameOptions{Order: types.NameOrderFamilyFirst},
			want: "van Gogh, Vincent",
		},
		{
			name: "demoted particle",
			list: names(gogh),
			opts: NameOptions{Order: types.NameOrderFamilyFirst, Config: types.ContributorConfig{
				DemoteNonDroppingParticle: types.DemoteDisplayAndSort,
			}},
			want: "Gogh, Vincent van",
		},
		{
			name: "short form keeps particle",
			list: names(gogh),
			opts: NameOptions{Form: types.ContributorShort},
			want: "van Gogh",
		},
		{
			name: "dropping particle",
			list: names(humbol),
			opts: NameOptions{Order: types.NameOrderFamilyFirst},
			want: "Humboldt, Alexander von",
		},
		{
			name: "dropping particle given first",
			list: names(humbol),
			want: "Alexander von Humboldt",
		},
		{
			name: "literal",
			list: names(who),
			opts: NameOptions{Order: types.NameOrderFamilyFirst},
			want: "World Health Organization",
		},
		{
			name: "expand given names",
			list: names(kuhn),
			opts: NameOptions{Form: types.ContributorShort, ExpandGiven: true},
			want: "Thomas S. Kuhn",
		},
		{
			name: "expand given names as initials",
			list: names(kuhn),
			opts: NameOptions{Form: types.ContributorShort, ExpandGiven: true, Config: types.ContributorConfig{
				InitializeWith: types.Ptr(". "),
			}},
			want: "T. S. Kuhn",
		},
		{
			name: "suffix",
			list: names(types.Name{Family: "King", Given: "Martin Luther", Suffix: "Jr."}),
			opts: NameOptions{Order: types.NameOrderFamilyFirst},
			want: "King, Martin Luther, Jr.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNames(tt.list, tt.opts, loc))
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		given, marker, want string
	}{
		{"Thomas S.", ".", "T.S."},
		{"Thomas S.", ". ", "T. S."},
		{"Jean-Paul", ".", "J.-P."},
		{"Jean-Paul", ". ", "J. P."},
		{"Mary Ann", "", "MA"},
		{"émile", ".", "É."},
		{"", ".", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Initials(tt.given, tt.marker), "%q with %q", tt.given, tt.marker)
	}
}
