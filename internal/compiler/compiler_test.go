// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compiler

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/citekit/internal/legacy"
	"github.com/pdiddy/citekit/pkg/types"
)

func overrides(kv ...any) map[string]types.Rendering {
	out := make(map[string]types.Rendering)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1].(types.Rendering)
	}
	return out
}

var (
	shown  = types.Rendering{Suppress: types.Ptr(false)}
	hidden = types.Rendering{Suppress: types.Ptr(true)}
)

func branch(kinds []string, children ...legacy.Node) legacy.Branch {
	return legacy.Branch{Types: kinds, Match: "any", Children: children}
}

func assertTemplate(t *testing.T, want, got types.Template) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("template mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileDefaultAndBranchMerge(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: branch([]string{"book"}, &legacy.Variable{Name: "title", Formatting: legacy.Formatting{Italic: true}}),
			Else: []legacy.Node{&legacy.Variable{Name: "title"}},
		},
	}

	want := types.Template{
		&types.TitleComponent{
			Title: types.TitlePrimary,
			ComponentBase: types.ComponentBase{
				Overrides: overrides("book", types.Rendering{Emph: types.Ptr(true), Suppress: types.Ptr(false)}),
			},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileBranchOnlyFieldsAreSuppressed(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then:    branch([]string{"article-journal"}, &legacy.Variable{Name: "container-title", Formatting: legacy.Formatting{Italic: true}}),
			ElseIfs: []legacy.Branch{branch([]string{"chapter"}, &legacy.Variable{Name: "container-title"})},
		},
	}

	want := types.Template{
		&types.TitleComponent{
			Title: types.TitleParentSerial,
			ComponentBase: types.ComponentBase{
				Rendering: types.Rendering{Emph: types.Ptr(true), Suppress: types.Ptr(true)},
				Overrides: overrides("article-journal", shown),
			},
		},
		&types.TitleComponent{
			Title: types.TitleParentMonograph,
			ComponentBase: types.ComponentBase{
				Rendering: hidden,
				Overrides: overrides("chapter", shown),
			},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileShapesStaySeparate(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: branch([]string{"chapter"},
				&legacy.Label{Variable: "page", Form: "short"},
				&legacy.Number{Variable: "page"},
			),
			Else: []legacy.Node{&legacy.Number{Variable: "page"}},
		},
	}

	want := types.Template{
		&types.NumberComponent{
			Number: types.NumberPages,
			Label:  types.Ptr(types.LabelShort),
			ComponentBase: types.ComponentBase{
				Rendering: hidden,
				Overrides: overrides("chapter", shown),
			},
		},
		&types.NumberComponent{
			Number:        types.NumberPages,
			ComponentBase: types.ComponentBase{Overrides: overrides("chapter", hidden)},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileNestedBranchesIntersect(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: branch([]string{"book", "chapter"},
				&legacy.Condition{
					Then: branch([]string{"chapter", "report"}, &legacy.Variable{Name: "publisher"}),
				},
			),
		},
	}

	got := Compile(nodes)
	require.Len(t, got, 1)
	assert.Equal(t, overrides("chapter", shown), got[0].Base().Overrides)
}

func TestCompileNestedBranchesDisjoint(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: branch([]string{"book"},
				&legacy.Condition{
					Then: branch([]string{"report"}, &legacy.Variable{Name: "publisher"}),
				},
			),
		},
	}
	assert.Empty(t, Compile(nodes))
}

func TestCompileUnguardedBranchesInherit(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: legacy.Branch{Variables: []string{"DOI"}, Match: "any", Children: []legacy.Node{&legacy.Variable{Name: "DOI"}}},
			Else: []legacy.Node{&legacy.Variable{Name: "URL"}},
		},
		&legacy.Condition{
			Then: legacy.Branch{Types: []string{"book"}, Match: "none", Children: []legacy.Node{&legacy.Variable{Name: "ISBN"}}},
		},
	}

	want := types.Template{
		&types.VariableComponent{Variable: types.VarDOI},
		&types.VariableComponent{Variable: types.VarURL},
		&types.VariableComponent{Variable: types.VarISBN},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileFoldsText(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Text{Value: "In "},
		&legacy.Variable{Name: "container-title"},
		&legacy.Text{Value: "."},
	}

	want := types.Template{
		&types.TitleComponent{
			Title:         types.TitleParentSerial,
			ComponentBase: types.ComponentBase{Rendering: types.Rendering{Prefix: types.Ptr("In "), Suffix: types.Ptr(".")}},
		},
		&types.TitleComponent{
			Title:         types.TitleParentMonograph,
			ComponentBase: types.ComponentBase{Rendering: types.Rendering{Prefix: types.Ptr("In "), Suffix: types.Ptr(".")}},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileWrapGroupAbsorbed(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Group{
			Formatting: legacy.Formatting{Prefix: " (", Suffix: ")"},
			Children:   []legacy.Node{&legacy.Date{Variable: "issued", Parts: []string{"year"}}},
		},
		&legacy.Group{
			Formatting: legacy.Formatting{Prefix: "(", Suffix: ")"},
			Children: []legacy.Node{
				&legacy.Text{Value: "ed. "},
				&legacy.Number{Variable: "edition"},
			},
		},
	}

	want := types.Template{
		&types.DateComponent{
			Date: types.DateIssued,
			Form: types.DateFormYear,
			ComponentBase: types.ComponentBase{Rendering: types.Rendering{
				Prefix: types.Ptr(" "),
				Wrap:   types.Ptr(types.WrapParentheses),
			}},
		},
		&types.NumberComponent{
			Number: types.NumberEdition,
			ComponentBase: types.ComponentBase{Rendering: types.Rendering{
				InnerPrefix: types.Ptr("ed. "),
				Wrap:        types.Ptr(types.WrapParentheses),
			}},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileGroupKeptAsList(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Group{
			Delimiter:  ", ",
			Formatting: legacy.Formatting{Prefix: ". "},
			Children: []legacy.Node{
				&legacy.Variable{Name: "publisher-place"},
				&legacy.Variable{Name: "publisher"},
			},
		},
	}

	want := types.Template{
		&types.ListComponent{
			Delimiter: ", ",
			Items: types.Template{
				&types.VariableComponent{Variable: types.VarPublisherPlace},
				&types.VariableComponent{Variable: types.VarPublisher},
			},
			ComponentBase: types.ComponentBase{Rendering: types.Rendering{Prefix: types.Ptr(". ")}},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileWrappedGroupFlattened(t *testing.T) {
	for name, delim := range map[string]string{"no delimiter": "", "comma": ", "} {
		t.Run(name, func(t *testing.T) {
			nodes := []legacy.Node{
				&legacy.Group{
					Delimiter:  delim,
					Formatting: legacy.Formatting{Prefix: "(", Suffix: ")"},
					Children: []legacy.Node{
						&legacy.Variable{Name: "publisher-place"},
						&legacy.Variable{Name: "publisher"},
					},
				},
			}

			second := types.Rendering{Suffix: types.Ptr(")")}
			if delim != "" {
				second.Prefix = types.Ptr(delim)
			}
			want := types.Template{
				&types.VariableComponent{
					Variable:      types.VarPublisherPlace,
					ComponentBase: types.ComponentBase{Rendering: types.Rendering{Prefix: types.Ptr("(")}},
				},
				&types.VariableComponent{
					Variable:      types.VarPublisher,
					ComponentBase: types.ComponentBase{Rendering: second},
				},
			}
			assertTemplate(t, want, Compile(nodes))
		})
	}
}

func TestCompileGroupFlattened(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Group{
			Delimiter:  " ",
			Formatting: legacy.Formatting{Italic: true},
			Children: []legacy.Node{
				&legacy.Term{Name: "in"},
				&legacy.Variable{Name: "container-title"},
			},
		},
	}

	emphWithSpace := types.Rendering{Prefix: types.Ptr(" "), Emph: types.Ptr(true)}
	want := types.Template{
		&types.TermComponent{Term: "in", ComponentBase: types.ComponentBase{Rendering: types.Rendering{Emph: types.Ptr(true)}}},
		&types.TitleComponent{Title: types.TitleParentSerial, ComponentBase: types.ComponentBase{Rendering: emphWithSpace}},
		&types.TitleComponent{Title: types.TitleParentMonograph, ComponentBase: types.ComponentBase{Rendering: emphWithSpace}},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileListPushDown(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: branch([]string{"article-journal"},
				&legacy.Group{
					Delimiter: ", ",
					Children: []legacy.Node{
						&legacy.Number{Variable: "volume"},
						&legacy.Number{Variable: "issue"},
					},
				},
			),
		},
	}

	item := func(v types.NumberVariable) types.Component {
		return &types.NumberComponent{
			Number: v,
			ComponentBase: types.ComponentBase{
				Rendering: hidden,
				Overrides: overrides("article-journal", shown),
			},
		}
	}
	want := types.Template{
		&types.ListComponent{
			Delimiter: ", ",
			Items:     types.Template{item(types.NumberVolume), item(types.NumberIssue)},
		},
	}
	assertTemplate(t, want, Compile(nodes))
}

func TestCompileStandaloneYieldsToList(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Condition{
			Then: branch([]string{"article-journal"},
				&legacy.Group{
					Delimiter: ", ",
					Children: []legacy.Node{
						&legacy.Number{Variable: "volume"},
						&legacy.Number{Variable: "issue"},
					},
				},
			),
			Else: []legacy.Node{&legacy.Number{Variable: "volume"}},
		},
	}

	got := Compile(nodes)
	require.Len(t, got, 2)
	vol, ok := got[1].(*types.NumberComponent)
	require.True(t, ok)
	assert.Equal(t, types.NumberVolume, vol.Number)
	assert.False(t, vol.Effective("book").IsSuppressed())
	assert.True(t, vol.Effective("article-journal").IsSuppressed())
}

func TestCompileSourceOrder(t *testing.T) {
	nodes := []legacy.Node{
		&legacy.Names{Variables: []string{"author"}, Name: legacy.NameOptions{NameAsSortOrder: "all"}},
		&legacy.Condition{
			Then: branch([]string{"book"}, &legacy.Variable{Name: "title"}, &legacy.Variable{Name: "publisher"}),
			Else: []legacy.Node{&legacy.Variable{Name: "title"}},
		},
		&legacy.Date{Variable: "issued", Parts: []string{"year"}},
	}

	var keys []string
	for _, c := range Compile(nodes) {
		keys = append(keys, c.VariableKey())
	}
	assert.Equal(t, []string{"contributor:author", "title:primary", "variable:publisher", "date:issued"}, keys)
}

func TestCompileDeterministic(t *testing.T) {
	f, err := os.Open("../legacy/testdata/author-date.csl")
	require.NoError(t, err)
	defer f.Close()
	s, err := legacy.Parse(f)
	require.NoError(t, err)

	first := Compile(s.Bibliography.Nodes)
	for range 5 {
		assertTemplate(t, first, Compile(s.Bibliography.Nodes))
	}
	assert.Empty(t, cmp.Diff(CompileCitation(s.Citation.Nodes), CompileCitation(s.Citation.Nodes)))
}

func TestCompileDropsUnsupported(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	c := New(WithLogger(zap.New(core)))

	got := c.Compile([]legacy.Node{
		&legacy.Variable{Name: "abstract"},
		&legacy.Names{Variables: []string{"author"}, Name: legacy.NameOptions{Form: "count"}},
		&legacy.Variable{Name: "title"},
	})

	require.Len(t, got, 1)
	assert.Equal(t, "title:primary", got[0].VariableKey())
	assert.Equal(t, 1, logs.FilterMessage("dropping variable").Len())
	assert.Equal(t, 1, logs.FilterMessage("dropping name count").Len())
}

func TestCompileCitationChoosesBranch(t *testing.T) {
	tests := []struct {
		name string
		cond *legacy.Condition
		want string
	}{
		{
			name: "skips uncommon kinds",
			cond: &legacy.Condition{
				Then:    branch([]string{"personal_communication"}, &legacy.Variable{Name: "publisher"}),
				ElseIfs: []legacy.Branch{branch([]string{"book"}, &legacy.Date{Variable: "issued", Parts: []string{"year"}})},
				Else:    []legacy.Node{&legacy.Variable{Name: "title"}},
			},
			want: "date:issued",
		},
		{
			name: "uncommon falls through to else",
			cond: &legacy.Condition{
				Then: branch([]string{"interview", "legal_case"}, &legacy.Variable{Name: "publisher"}),
				Else: []legacy.Node{&legacy.Variable{Name: "title"}},
			},
			want: "title:primary",
		},
		{
			name: "first non-empty branch",
			cond: &legacy.Condition{
				Then:    branch([]string{"book"}),
				ElseIfs: []legacy.Branch{branch([]string{"chapter"}, &legacy.Variable{Name: "DOI"})},
				Else:    []legacy.Node{&legacy.Variable{Name: "title"}},
			},
			want: "variable:doi",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompileCitation([]legacy.Node{tt.cond})
			require.Len(t, got, 1)
			assert.Equal(t, tt.want, got[0].VariableKey())
			assert.Nil(t, got[0].Base().Overrides)
		})
	}
}

func TestCompileCitationDoesNotMerge(t *testing.T) {
	got := CompileCitation([]legacy.Node{
		&legacy.Names{Variables: []string{"author"}, Name: legacy.NameOptions{Form: "short"}},
		&legacy.Group{
			Delimiter: " ",
			Children:  []legacy.Node{&legacy.Label{Variable: "locator", Form: "short"}, &legacy.Number{Variable: "locator"}},
		},
		&legacy.Names{Variables: []string{"author"}, Name: legacy.NameOptions{Form: "short"}},
	})

	require.Len(t, got, 3)
	author := got[0].(*types.ContributorComponent)
	assert.Equal(t, types.ContributorShort, author.Form)
	assert.Equal(t, types.NameOrderDefault, author.NameOrder)
	locator := got[1].(*types.NumberComponent)
	require.NotNil(t, locator.Label)
	assert.Equal(t, types.LabelShort, *locator.Label)
}
