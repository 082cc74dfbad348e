// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/citekit/pkg/types"
)

// sortKeys holds the precomputed keys of one reference.
type sortKeys struct {
	author string
	title  string
	year   int
	number int
}

// Sorter orders references by the configured sort keys, comparing text
// with the collation rules of the locale's language. Collators and casers
// are created per call, so a Sorter may be shared.
type Sorter struct {
	tag    language.Tag
	loc    *types.Locale
	demote types.DemoteParticle
}

// NewSorter returns a Sorter for loc and the contributor options.
func NewSorter(loc *types.Locale, cc *types.ContributorConfig) *Sorter {
	tag := language.English
	if loc != nil && loc.ID != "" {
		if t, err := language.Parse(loc.ID); err == nil {
			tag = t
		}
	}
	s := &Sorter{tag: tag, loc: loc}
	if cc != nil {
		s.demote = cc.DemoteNonDroppingParticle
	}
	return s
}

// Sort returns refs ordered by spec. The sort is stable, so references
// that tie on every key keep their input order. number supplies the
// citation number for the citation-number key.
func (s *Sorter) Sort(refs []*types.Reference, spec types.Sort, number func(id string) int) []*types.Reference {
	out := append([]*types.Reference(nil), refs...)
	if len(spec.Template) == 0 {
		return out
	}
	keys := make(map[string]sortKeys, len(out))
	for _, r := range out {
		keys[r.ID] = s.keys(r, number)
	}
	coll := collate.New(s.tag)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := keys[out[i].ID], keys[out[j].ID]
		for _, k := range spec.Template {
			c := compareKey(coll, k.Key, a, b)
			if c == 0 {
				continue
			}
			if k.IsAscending() {
				return c < 0
			}
			return c > 0
		}
		return false
	})
	return out
}

func compareKey(coll *collate.Collator, key types.SortKey, a, b sortKeys) int {
	switch key {
	case types.SortAuthor:
		return coll.CompareString(a.author, b.author)
	case types.SortTitle:
		return coll.CompareString(a.title, b.title)
	case types.SortYear:
		return a.year - b.year
	case types.SortCitationNumber:
		return a.number - b.number
	}
	return 0
}

func (s *Sorter) keys(r *types.Reference, number func(string) int) sortKeys {
	k := sortKeys{
		title: s.normalize(s.loc.StripArticles(r.Title.Long())),
		year:  r.Issued.Parse().Year,
	}
	if number != nil {
		k.number = number(r.ID)
	}
	names := groupNames(r)
	if len(names) == 0 {
		k.author = k.title
		return k
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n.SortName(s.demote == types.DemoteNever || s.demote == "")
		if !n.IsLiteral() && n.Given != "" {
			parts[i] += ", " + n.Given
		}
	}
	k.author = s.normalize(strings.Join(parts, "; "))
	return k
}

func (s *Sorter) normalize(v string) string {
	return cases.Lower(s.tag).String(norm.NFC.String(strings.TrimSpace(v)))
}
