// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"

	"github.com/pdiddy/citekit/pkg/types"
)

// Hint is the per-reference disambiguation state for one bibliography
// pass. Hints are computed for every reference before anything renders.
type Hint struct {
	// Ambiguous is set when another reference shares the author and year.
	Ambiguous bool

	// Index and Length locate the reference within its author-year group.
	Index  int
	Length int

	// YearSuffix is the 1-based letter index appended to the year, or 0.
	YearSuffix int

	// ExpandGivenNames adds initials to short-form names.
	ExpandGivenNames bool

	// MinNames is the number of names that must show before et al., or 0.
	MinNames int

	// CitationNumber is the number assigned by the registry, or 0.
	CitationNumber int
}

// ComputeHints computes hints for refs, which must be in bibliography
// order: year suffixes follow that order within each group. Name-list
// expansion is tried first, then given names, then year suffixes, each
// only for members the previous strategy left ambiguous.
func ComputeHints(refs []*types.Reference, opts types.Config) map[string]Hint {
	d := opts.Processing.DisambiguationOrDefault()
	var cc types.ContributorConfig
	if opts.Contributors != nil {
		cc = *opts.Contributors
	}

	hints := make(map[string]Hint, len(refs))
	groups := make(map[string][]*types.Reference)
	var order []string
	for _, r := range refs {
		hints[r.ID] = Hint{}
		k := GroupKey(r)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	collisions := givenNameCollisions(refs)

	for _, k := range order {
		members := groups[k]
		if len(members) < 2 {
			if d.AddGivenName && collides(members[0], collisions) {
				h := hints[members[0].ID]
				h.ExpandGivenNames = true
				hints[members[0].ID] = h
			}
			continue
		}
		for i, m := range members {
			h := hints[m.ID]
			h.Ambiguous = true
			h.Index = i + 1
			h.Length = len(members)
			hints[m.ID] = h
		}

		unresolved := members
		if d.Names {
			var rest []*types.Reference
			for _, m := range members {
				n, ok := minUniqueNames(m, members, cc)
				if !ok {
					rest = append(rest, m)
					continue
				}
				if n > 0 {
					h := hints[m.ID]
					h.MinNames = n
					hints[m.ID] = h
				}
			}
			unresolved = rest
		}

		if d.AddGivenName && len(unresolved) > 1 {
			var rest []*types.Reference
			for _, m := range unresolved {
				if collides(m, collisions) {
					h := hints[m.ID]
					h.ExpandGivenNames = true
					hints[m.ID] = h
				}
				if !uniqueWithGiven(m, unresolved, cc) {
					rest = append(rest, m)
				}
			}
			unresolved = rest
		}

		if d.YearSuffix && len(unresolved) > 1 {
			for i, m := range unresolved {
				h := hints[m.ID]
				h.YearSuffix = i + 1
				hints[m.ID] = h
			}
		}
	}
	return hints
}

// GroupKey is the lowercase "family:year" key that defines an ambiguity
// group. Works without contributors use their title.
func GroupKey(r *types.Reference) string {
	year := issuedYear(r)
	names := groupNames(r)
	if len(names) == 0 {
		return strings.ToLower(r.Title.Long()) + ":" + year
	}
	return strings.ToLower(names[0].SortName(true)) + ":" + year
}

func issuedYear(r *types.Reference) string {
	d := r.Issued.Parse()
	if d.IsLiteral() {
		return d.Literal
	}
	return d.YearString()
}

// groupNames returns the names that identify a reference in a citation:
// authors, or the editors or translators that substitute for them.
func groupNames(r *types.Reference) types.Contributor {
	switch {
	case len(r.Author) > 0:
		return r.Author
	case len(r.Editor) > 0:
		return r.Editor
	}
	return r.Translator
}

// nameSignature is the short-form rendering of the first k names, with
// an et-al marker when the list is truncated.
func nameSignature(r *types.Reference, k int, cc types.ContributorConfig, withGiven bool) string {
	names := groupNames(r)
	truncated := false
	if s := cc.Shorten; s != nil && s.Min > 0 && len(names) >= s.Min && k < len(names) {
		names = names[:k]
		truncated = true
	}
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = strings.ToLower(n.SortName(true))
		if withGiven && !n.IsLiteral() {
			parts[i] = strings.ToLower(givenText(n.Given, cc)) + " " + parts[i]
		}
	}
	sig := strings.Join(parts, "|")
	if truncated {
		sig += "|et-al"
	}
	return sig
}

// minUniqueNames finds the smallest name count that makes m's name list
// unique among siblings. It returns 0 when the configured count already
// does, and false when no count does.
func minUniqueNames(m *types.Reference, siblings []*types.Reference, cc types.ContributorConfig) (int, bool) {
	base := 1
	if cc.Shorten != nil && cc.Shorten.UseFirst > base {
		base = cc.Shorten.UseFirst
	}
	total := len(groupNames(m))
	if total < base {
		total = base
	}
	for k := base; k <= total; k++ {
		if uniqueAt(m, siblings, k, cc, false) {
			if k == base {
				return 0, true
			}
			return k, true
		}
	}
	return 0, false
}

func uniqueAt(m *types.Reference, siblings []*types.Reference, k int, cc types.ContributorConfig, withGiven bool) bool {
	sig := nameSignature(m, k, cc, withGiven)
	for _, s := range siblings {
		if s.ID == m.ID {
			continue
		}
		if nameSignature(s, k, cc, withGiven) == sig {
			return false
		}
	}
	return true
}

func uniqueWithGiven(m *types.Reference, siblings []*types.Reference, cc types.ContributorConfig) bool {
	k := 1
	if cc.Shorten != nil && cc.Shorten.UseFirst > k {
		k = cc.Shorten.UseFirst
	}
	return uniqueAt(m, siblings, k, cc, true)
}

// givenNameCollisions maps each lowercase first-author family name to the
// number of distinct given names it appears with.
func givenNameCollisions(refs []*types.Reference) map[string]int {
	seen := make(map[string]map[string]bool)
	for _, r := range refs {
		names := groupNames(r)
		if len(names) == 0 || names[0].IsLiteral() {
			continue
		}
		fam := strings.ToLower(names[0].SortName(true))
		if seen[fam] == nil {
			seen[fam] = make(map[string]bool)
		}
		seen[fam][strings.ToLower(names[0].Given)] = true
	}
	out := make(map[string]int, len(seen))
	for fam, given := range seen {
		out[fam] = len(given)
	}
	return out
}

func collides(r *types.Reference, collisions map[string]int) bool {
	names := groupNames(r)
	if len(names) == 0 || names[0].IsLiteral() {
		return false
	}
	return collisions[strings.ToLower(names[0].SortName(true))] > 1
}
