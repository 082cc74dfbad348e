// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manuscript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/citekit/internal/locale"
	"github.com/pdiddy/citekit/internal/render"
	"github.com/pdiddy/citekit/internal/style"
	"github.com/pdiddy/citekit/pkg/types"
)

// writeFile is a test helper that creates a file with the given content.
func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testBibliography() *types.Bibliography {
	return types.NewBibliography(
		&types.Reference{
			ID:     "kuhn1962",
			Type:   "book",
			Title:  &types.Title{Main: "The Structure of Scientific Revolutions"},
			Author: types.Contributor{{Family: "Kuhn", Given: "Thomas S."}},
			Issued: "1962",
		},
		&types.Reference{
			ID:     "hacking1983",
			Type:   "chapter",
			Title:  &types.Title{Main: "Representing and Intervening"},
			Author: types.Contributor{{Family: "Hacking", Given: "Ian"}},
			Issued: "1983",
			Parent: &types.Parent{ID: "kuhn1962"},
		},
		&types.Reference{
			ID:     "smith2001",
			Type:   "article-journal",
			Title:  &types.Title{Main: "On Citation"},
			Author: types.Contributor{{Family: "Smith", Given: "John"}},
			Issued: "2001",
		},
	)
}

func TestScan(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []types.Citation
	}{
		{
			name: "single key",
			text: "As shown [@kuhn1962].",
			want: []types.Citation{{Items: []types.CitationItem{{RefID: "kuhn1962"}}}},
		},
		{
			name: "page locator",
			text: "[@kuhn1962, p. 12]",
			want: []types.Citation{{Items: []types.CitationItem{
				{RefID: "kuhn1962", Label: types.LocatorPage, Locator: "12"},
			}}},
		},
		{
			name: "bare number is a page",
			text: "[@kuhn1962, 33-35]",
			want: []types.Citation{{Items: []types.CitationItem{
				{RefID: "kuhn1962", Label: types.LocatorPage, Locator: "33-35"},
			}}},
		},
		{
			name: "chapter with suffix",
			text: "[@kuhn1962, chap. 3, emphasis added]",
			want: []types.Citation{{Items: []types.CitationItem{
				{RefID: "kuhn1962", Label: types.LocatorChapter, Locator: "3", Suffix: ", emphasis added"},
			}}},
		},
		{
			name: "free text suffix",
			text: "[@kuhn1962, and elsewhere]",
			want: []types.Citation{{Items: []types.CitationItem{
				{RefID: "kuhn1962", Suffix: ", and elsewhere"},
			}}},
		},
		{
			name: "multiple items with prefix",
			text: "[see @kuhn1962; @smith2001, sec. 2]",
			want: []types.Citation{{Items: []types.CitationItem{
				{RefID: "kuhn1962", Prefix: "see "},
				{RefID: "smith2001", Label: types.LocatorSection, Locator: "2"},
			}}},
		},
		{
			name: "suppress author",
			text: "Kuhn says [-@kuhn1962].",
			want: []types.Citation{{Items: []types.CitationItem{
				{RefID: "kuhn1962", Visibility: types.VisibilitySuppressAuthor},
			}}},
		},
		{
			name: "narrative",
			text: "@kuhn1962 argues that.",
			want: []types.Citation{{Mode: types.ModeIntegral, Items: []types.CitationItem{{RefID: "kuhn1962"}}}},
		},
		{
			name: "narrative with locator",
			text: "As @kuhn1962 [p. 7] argues.",
			want: []types.Citation{{Mode: types.ModeIntegral, Items: []types.CitationItem{
				{RefID: "kuhn1962", Label: types.LocatorPage, Locator: "7"},
			}}},
		},
		{
			name: "trailing period is not part of the key",
			text: "This follows @kuhn1962.",
			want: []types.Citation{{Mode: types.ModeIntegral, Items: []types.CitationItem{{RefID: "kuhn1962"}}}},
		},
		{
			name: "email is not a citation",
			text: "Write to someone@example.org today.",
		},
		{
			name: "link is not a citation",
			text: "[@kuhn1962](https://example.org)",
		},
		{
			name: "bracket without key",
			text: "[note] and [1]",
		},
		{
			name: "mixed order",
			text: "@smith2001 differs [@kuhn1962].",
			want: []types.Citation{
				{Mode: types.ModeIntegral, Items: []types.CitationItem{{RefID: "smith2001"}}},
				{Items: []types.CitationItem{{RefID: "kuhn1962"}}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []types.Citation
			for _, o := range Scan(tt.text) {
				got = append(got, o.Citation)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scan mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanOffsets(t *testing.T) {
	text := "A [@kuhn1962, p. 3] and @smith2001 [sec. 1] end."
	occs := Scan(text)
	require.Len(t, occs, 2)
	assert.Equal(t, "[@kuhn1962, p. 3]", text[occs[0].Start:occs[0].End])
	assert.Equal(t, "@smith2001 [sec. 1]", text[occs[1].Start:occs[1].End])
}

func TestKeys(t *testing.T) {
	occs := Scan("[@smith2001; @kuhn1962] then @smith2001 and [@hacking1983]")
	assert.Equal(t, []string{"smith2001", "kuhn1962", "hacking1983"}, Keys(occs))
}

func TestMissing(t *testing.T) {
	bib := testBibliography()
	assert.Empty(t, Missing("[@kuhn1962] and @smith2001", bib))
	assert.Equal(t, []string{"nobody", "zed2020"}, Missing("[@zed2020; @kuhn1962] and [@nobody]", bib))
}

func TestCitedIncludesParents(t *testing.T) {
	got, err := Cited("Only [@hacking1983].", testBibliography())
	require.NoError(t, err)
	assert.Equal(t, []string{"hacking1983", "kuhn1962"}, got.IDs())

	_, err = Cited("[@ghost]", testBibliography())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

// recorder renders each citation as its keys and records what it saw.
type recorder struct {
	seen []types.Citation
	fail string
}

func (r *recorder) RenderCitation(c types.Citation) (string, error) {
	r.seen = append(r.seen, c)
	var keys []string
	for _, it := range c.Items {
		if it.RefID == r.fail {
			return "", fmt.Errorf("reference %s not found", it.RefID)
		}
		keys = append(keys, it.RefID)
	}
	return "<" + strings.Join(keys, ",") + ">", nil
}

func (r *recorder) FormatBibliography() string { return "BIB" }

func TestProcess(t *testing.T) {
	rec := &recorder{}
	got, err := Process(rec, "# Intro\n\nFirst [@a], then @b [p. 2].\n", "")
	require.NoError(t, err)
	assert.Equal(t, "# Intro\n\nFirst <a>, then <b>.\n\n## References\n\nBIB\n", got)
	require.Len(t, rec.seen, 2)
	assert.False(t, rec.seen[0].IsIntegral())
	assert.True(t, rec.seen[1].IsIntegral())
}

func TestProcessWithoutCitations(t *testing.T) {
	got, err := Process(&recorder{}, "No citations here.\n", "Works Cited")
	require.NoError(t, err)
	assert.Equal(t, "No citations here.\n", got)
}

func TestProcessHeading(t *testing.T) {
	got, err := Process(&recorder{}, "[@a]", "Works Cited")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, "## Works Cited\n\nBIB\n"))
}

func TestProcessError(t *testing.T) {
	_, err := Process(&recorder{fail: "b"}, "[@a] and [@b]", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[@b]")
}

func TestProcessNumbersInAppearanceOrder(t *testing.T) {
	s, err := style.Builtin("numeric")
	require.NoError(t, err)
	loc, err := locale.Builtin(locale.DefaultID)
	require.NoError(t, err)

	text := "See [@smith2001] and [@kuhn1962], again [@smith2001].\n"
	bib, err := Cited(text, testBibliography())
	require.NoError(t, err)
	p := render.New(s, bib, loc, render.WithLogger(zaptest.NewLogger(t)))

	got, err := Process(p, text, "")
	require.NoError(t, err)
	body, refs, ok := strings.Cut(got, "\n\n## References\n\n")
	require.True(t, ok)
	assert.Equal(t, "See [1] and [2], again [1].", body)
	assert.Less(t, strings.Index(refs, "Smith"), strings.Index(refs, "Kuhn"))
}

func TestSectionFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "02-methods.md", "")
	writeFile(t, dir, "01-introduction.md", "")
	writeFile(t, dir, "notes.md", "")
	writeFile(t, dir, "1-short.md", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "03-dir.md"), 0o755))

	files, err := SectionFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "01-introduction.md"),
		filepath.Join(dir, "02-methods.md"),
	}, files)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "01-intro.md", "# Intro\n\n[@a]\n\n")
	writeFile(t, dir, "02-end.md", "# End\n")

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "# Intro\n\n[@a]\n\n# End\n", got)

	single, err := Load(filepath.Join(dir, "02-end.md"))
	require.NoError(t, err)
	assert.Equal(t, "# End\n", single)

	_, err = Load(t.TempDir())
	assert.Error(t, err)
	_, err = Load(filepath.Join(dir, "missing.md"))
	assert.Error(t, err)
}

func TestParseLocator(t *testing.T) {
	tests := []struct {
		in        string
		wantKind  types.LocatorKind
		wantLoc   string
		wantAfter string
	}{
		{"p. 12", types.LocatorPage, "12", ""},
		{"pp. 33-35", types.LocatorPage, "33-35", ""},
		{"12", types.LocatorPage, "12", ""},
		{"Chap. 4", types.LocatorChapter, "4", ""},
		{"§ 3.2", types.LocatorSection, "3.2", ""},
		{"vol. 2", types.LocatorVolume, "2", ""},
		{"fig. 7, left panel", types.LocatorFigure, "7", ", left panel"},
		{"ll. 10-14", types.LocatorLine, "10-14", ""},
		{"n. 5", types.LocatorNote, "5", ""},
		{"no. 3", types.LocatorIssue, "3", ""},
		{"passim", "", "", ", passim"},
		{"p.", "", "", ", p."},
		{"", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			kind, loc, after := ParseLocator(tt.in)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantLoc, loc)
			assert.Equal(t, tt.wantAfter, after)
		})
	}
}
