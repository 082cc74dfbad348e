// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citekit/internal/locale"
	"github.com/pdiddy/citekit/internal/output"
	"github.com/pdiddy/citekit/pkg/types"
)

func authorDateCitation() *types.CitationSpec {
	year := &types.DateComponent{Date: types.DateIssued, Form: types.DateFormYear}
	integralYear := &types.DateComponent{Date: types.DateIssued, Form: types.DateFormYear}
	integralYear.Prefix = types.Ptr(" ")
	integralYear.Wrap = types.Ptr(types.WrapParentheses)
	return &types.CitationSpec{
		Template: types.Template{
			&types.ContributorComponent{Role: types.RoleAuthor, Form: types.ContributorShort},
			year,
		},
		Integral: types.Template{
			&types.ContributorComponent{Role: types.RoleAuthor, Form: types.ContributorShort},
			integralYear,
		},
		Wrap: types.WrapParentheses,
	}
}

func newProcessor(t *testing.T, style *types.Style, refs ...*types.Reference) *Processor {
	t.Helper()
	loc, err := locale.Builtin("en-US")
	require.NoError(t, err)
	return New(style, types.NewBibliography(refs...), loc, WithLogger(zaptest.NewLogger(t)))
}

func cite(ids ...string) types.Citation {
	c := types.Citation{}
	for _, id := range ids {
		c.Items = append(c.Items, types.CitationItem{RefID: id})
	}
	return c
}

func TestWorkedExample(t *testing.T) {
	p := newProcessor(t, &types.Style{Citation: authorDateCitation()}, book())
	got, err := p.RenderCitation(cite("kuhn1962"))
	require.NoError(t, err)
	assert.Equal(t, "(Kuhn, 1962)", got)
}

func TestYearSuffixFollowsCitationOrder(t *testing.T) {
	ylinen := types.Name{Family: "Ylinen", Given: "A."}
	year := &types.DateComponent{Date: types.DateIssued, Form: types.DateFormYear}
	year.Wrap = types.Ptr(types.WrapParentheses)
	style := &types.Style{
		Options: types.Config{Processing: customProcessing(types.Disambiguation{YearSuffix: true})},
		Citation: &types.CitationSpec{Template: types.Template{
			&types.ContributorComponent{Role: types.RoleAuthor, Form: types.ContributorShort},
			year,
		}},
	}
	a := ref("22", "1995", ylinen)
	a.Title = &types.Title{Main: "Article A"}
	b := ref("21", "1995", ylinen)
	b.Title = &types.Title{Main: "Article B"}
	c := ref("23", "1995", ylinen)
	c.Title = &types.Title{Main: "Article C"}

	p := newProcessor(t, style, a, b, c)
	got, err := p.RenderCitation(cite("22", "21", "23"))
	require.NoError(t, err)
	assert.Equal(t, "Ylinen, (1995a); Ylinen, (1995b); Ylinen, (1995c)", got)
}

func TestUndatedCitation(t *testing.T) {
	undated := book()
	undated.Issued = ""
	p := newProcessor(t, &types.Style{Citation: authorDateCitation()}, undated)
	got, err := p.RenderCitation(cite("kuhn1962"))
	require.NoError(t, err)
	assert.Equal(t, "(Kuhn, n.d.)", got)

	style := &types.Style{
		Options:  types.Config{Processing: customProcessing(types.Disambiguation{YearSuffix: true})},
		Citation: authorDateCitation(),
	}
	p = newProcessor(t, style, ref("a", "", smith), ref("b", "", smith))
	got, err = p.RenderCitation(cite("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "(Smith, n.d.-a; Smith, n.d.-b)", got)
}

func TestCitationNumbersAreStable(t *testing.T) {
	style := &types.Style{
		Options: types.Config{Processing: &types.Processing{Mode: types.ModeNumeric}},
		Citation: &types.CitationSpec{
			Template: types.Template{&types.NumberComponent{Number: types.NumberCitationNumber}},
			Wrap:     types.WrapBrackets,
		},
	}
	p := newProcessor(t, style, ref("ref1", "2000", smith), ref("ref2", "2001", jones))

	got, err := p.RenderCitations([]types.Citation{cite("ref1"), cite("ref2"), cite("ref1")})
	require.NoError(t, err)
	assert.Equal(t, []string{"[1]", "[2]", "[1]"}, got)
	assert.Equal(t, 1, p.Hint("ref1").CitationNumber)
}

func TestMissingReference(t *testing.T) {
	p := newProcessor(t, &types.Style{Citation: authorDateCitation()}, book())

	_, err := p.RenderCitation(cite("kuhn1962", "nobody"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReferenceNotFound))
	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "nobody", nf.ID)
	assert.Equal(t, 0, p.numbers.Len(), "no number assigned for an aborted citation")

	_, err = p.RenderCitations([]types.Citation{cite("nobody")})
	assert.ErrorIs(t, err, ErrReferenceNotFound)
}

func TestNoCitationTemplate(t *testing.T) {
	p := newProcessor(t, &types.Style{}, book())
	_, err := p.RenderCitation(cite("kuhn1962"))
	assert.ErrorIs(t, err, ErrNoCitationTemplate)
}

func TestCitationItemOptions(t *testing.T) {
	p := newProcessor(t, &types.Style{Citation: authorDateCitation()}, book())

	tests := []struct {
		name string
		item types.CitationItem
		want string
	}{
		{"suppress author", types.CitationItem{RefID: "kuhn1962", Visibility: types.VisibilitySuppressAuthor}, "(1962)"},
		{"author only", types.CitationItem{RefID: "kuhn1962", Visibility: types.VisibilityAuthorOnly}, "(Kuhn)"},
		{"locator", types.CitationItem{RefID: "kuhn1962", Locator: "12-14"}, "(Kuhn, 1962, pp. 12–14)"},
		{"chapter locator", types.CitationItem{RefID: "kuhn1962", Locator: "4", Label: types.LocatorChapter}, "(Kuhn, 1962, chap. 4)"},
		{"prefix and suffix", types.CitationItem{RefID: "kuhn1962", Prefix: "see ", Suffix: " for details"}, "(see Kuhn, 1962 for details)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.RenderCitation(types.Citation{Items: []types.CitationItem{tt.item}})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIntegralCitation(t *testing.T) {
	p := newProcessor(t, &types.Style{Citation: authorDateCitation()}, book())
	got, err := p.RenderCitation(types.Citation{Mode: types.ModeIntegral, Items: []types.CitationItem{{RefID: "kuhn1962"}}})
	require.NoError(t, err)
	assert.Equal(t, "Kuhn (1962)", got)
}

func TestCollapseYear(t *testing.T) {
	later := book()
	later.ID = "kuhn1977"
	later.Issued = "1977"
	later.Title = &types.Title{Main: "The Essential Tension"}

	spec := authorDateCitation()
	spec.Collapse = types.CollapseYear
	p := newProcessor(t, &types.Style{Citation: spec}, book(), later, article())

	got, err := p.RenderCitation(cite("kuhn1962", "kuhn1977", "smith2001"))
	require.NoError(t, err)
	assert.Equal(t, "(Kuhn, 1962, 1977; Smith, Jones, 2001)", got)
}

func TestCollapseCitationNumbers(t *testing.T) {
	style := &types.Style{
		Options: types.Config{Processing: &types.Processing{Mode: types.ModeNumeric}},
		Citation: &types.CitationSpec{
			Template:           types.Template{&types.NumberComponent{Number: types.NumberCitationNumber}},
			Wrap:               types.WrapBrackets,
			MultiCiteDelimiter: types.Ptr(", "),
			Collapse:           types.CollapseCitationNumber,
		},
	}
	var refs []*types.Reference
	for _, id := range []string{"r1", "r2", "r3", "r4", "r5"} {
		refs = append(refs, ref(id, "2000", smith))
	}
	p := newProcessor(t, style, refs...)

	got, err := p.RenderCitations([]types.Citation{cite("r1", "r2", "r3"), cite("r4"), cite("r5", "r1", "r2")})
	require.NoError(t, err)
	assert.Equal(t, []string{"[1–3]", "[4]", "[1, 2, 5]"}, got)
}

func bibliographyStyle() *types.Style {
	year := &types.DateComponent{Date: types.DateIssued, Form: types.DateFormYear}
	year.Prefix = types.Ptr(" ")
	year.Wrap = types.Ptr(types.WrapParentheses)
	serial := &types.TitleComponent{Title: types.TitleParentSerial}
	serial.Emph = types.Ptr(true)
	issue := &types.NumberComponent{Number: types.NumberIssue}
	issue.Wrap = types.Ptr(types.WrapParentheses)
	volume := &types.ListComponent{Items: types.Template{&types.NumberComponent{Number: types.NumberVolume}, issue}}
	volume.Prefix = types.Ptr(", ")
	pages := &types.NumberComponent{Number: types.NumberPages}
	pages.Prefix = types.Ptr(", ")

	return &types.Style{
		Options: types.Config{
			Processing: &types.Processing{
				Mode: types.ModeAuthorDate,
				Sort: &types.Sort{Template: []types.SortSpec{
					{Key: types.SortAuthor},
					{Key: types.SortYear, Ascending: types.Ptr(true)},
				}},
			},
			Contributors: &types.ContributorConfig{
				DisplayAsSort:  types.DisplayAll,
				InitializeWith: types.Ptr(". "),
				And:            types.AndSymbol,
			},
			PageRangeFormat: types.PageRangeChicago,
		},
		Citation: authorDateCitation(),
		Bibliography: &types.BibliographySpec{
			Template: types.Template{
				&types.ContributorComponent{Role: types.RoleAuthor},
				year,
				&types.TitleComponent{Title: types.TitlePrimary},
				serial,
				volume,
				pages,
				&types.VariableComponent{Variable: types.VarPublisher},
			},
			SubsequentAuthorSubstitute: "———",
		},
	}
}

func bibliographyRefs() []*types.Reference {
	essential := book()
	essential.ID = "kuhn1977"
	essential.Issued = "1977"
	essential.Title = &types.Title{Main: "The Essential Tension"}

	lee := types.Name{Family: "Brown", Given: "Lee"}
	alpha := ref("brown1999a", "1999", lee)
	alpha.Title = &types.Title{Main: "Alpha Study"}
	beta := ref("brown1999b", "1999", lee)
	beta.Title = &types.Title{Main: "Beta Study"}

	return []*types.Reference{article(), book(), essential, alpha, beta}
}

func TestBibliographyGolden(t *testing.T) {
	loc, err := locale.Builtin("en-US")
	require.NoError(t, err)
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	for _, tc := range []struct {
		name   string
		format output.Formatter
	}{
		{"author-date-plain", output.Plain{}},
		{"author-date-html", output.HTML{}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := New(bibliographyStyle(), types.NewBibliography(bibliographyRefs()...), loc, WithFormatter(tc.format))
			g.Assert(t, tc.name, []byte(p.FormatBibliography()))
		})
	}
}

func TestBibliographyGroups(t *testing.T) {
	style := bibliographyStyle()
	style.Bibliography.Groups = []types.BibliographyGroup{
		{ID: "books", Heading: "Books", Selector: types.GroupSelector{Types: []string{"book"}}},
		{ID: "brown", Heading: "Brown", Selector: types.GroupSelector{NotTypes: []string{"book"}}, Disambiguate: types.ScopeLocal},
	}
	refs := bibliographyRefs()
	p := newProcessor(t, style, refs...)

	groups := p.Bibliography()
	require.Len(t, groups, 2)
	assert.Equal(t, "Books", groups[0].Heading)
	assert.Equal(t, []string{"kuhn1962", "kuhn1977"}, entryIDs(groups[0]))
	assert.Equal(t, []string{"brown1999a", "brown1999b", "smith2001"}, entryIDs(groups[1]))
}

func TestBibliographyUnmatchedGroup(t *testing.T) {
	style := bibliographyStyle()
	style.Bibliography.Groups = []types.BibliographyGroup{
		{ID: "books", Heading: "Books", Selector: types.GroupSelector{Types: []string{"book"}}},
	}
	p := newProcessor(t, style, bibliographyRefs()...)

	groups := p.Bibliography()
	require.Len(t, groups, 2)
	assert.Empty(t, groups[1].Heading)
	assert.Equal(t, []string{"brown1999a", "brown1999b", "smith2001"}, entryIDs(groups[1]))
}

func TestNumericBibliographyOrder(t *testing.T) {
	style := &types.Style{
		Options: types.Config{Processing: &types.Processing{Mode: types.ModeNumeric}},
		Citation: &types.CitationSpec{
			Template: types.Template{&types.NumberComponent{Number: types.NumberCitationNumber}},
			Wrap:     types.WrapBrackets,
		},
		Bibliography: &types.BibliographySpec{Template: types.Template{
			&types.NumberComponent{Number: types.NumberCitationNumber},
			&types.TitleComponent{Title: types.TitlePrimary},
		}},
	}
	p := newProcessor(t, style, ref("r1", "2000", smith), ref("r2", "2000", jones), ref("r3", "2000", brown))

	_, err := p.RenderCitations([]types.Citation{cite("r3"), cite("r1")})
	require.NoError(t, err)

	groups := p.Bibliography()
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"r3", "r1", "r2"}, entryIDs(groups[0]))
	assert.Equal(t, "3", groups[0].Entries[2].Components[0].Value)
}

func TestNoBibliographyTemplate(t *testing.T) {
	p := newProcessor(t, &types.Style{Citation: authorDateCitation()}, book())
	assert.Nil(t, p.Bibliography())
}

func entryIDs(g types.EntryGroup) []string {
	out := make([]string, len(g.Entries))
	for i, e := range g.Entries {
		out[i] = e.ID
	}
	return out
}
