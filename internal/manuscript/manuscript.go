// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manuscript finds citations in Markdown text, replaces them with
// rendered citations in order of appearance, and appends a bibliography.
//
// Bracketed citations follow the Pandoc form: [@key], [@key, p. 12],
// [see @a; @b], and [-@key] to suppress the author. A bare @key is a
// narrative citation and may be followed by a bracketed locator: @key [p. 12].
package manuscript

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pdiddy/citekit/pkg/types"
)

// DefaultHeading titles the appended bibliography.
const DefaultHeading = "References"

// sectionFilePattern matches numbered section files: NN-slug.md.
var sectionFilePattern = regexp.MustCompile(`^\d{2}-.+\.md$`)

var (
	bracketPattern = regexp.MustCompile(`\[([^\[\]]*@[^\[\]]*)\]`)
	itemPattern    = regexp.MustCompile(`^(.*?)(-?)@([\p{L}\p{N}_][\p{L}\p{N}_:.#$%&+?<>~/-]*)(.*)$`)
	barePattern    = regexp.MustCompile(`(^|[^\p{L}\p{N}_@\]])@([\p{L}\p{N}_][\p{L}\p{N}_:.#$%&+?<>~/-]*)`)
	locatorPattern = regexp.MustCompile(`^ ?\[([^\[\]@]+)\]`)
)

var locatorLabels = map[string]types.LocatorKind{
	"p.":      types.LocatorPage,
	"pp.":     types.LocatorPage,
	"page":    types.LocatorPage,
	"pages":   types.LocatorPage,
	"ch.":     types.LocatorChapter,
	"chap.":   types.LocatorChapter,
	"chapter": types.LocatorChapter,
	"sec.":    types.LocatorSection,
	"section": types.LocatorSection,
	"§":       types.LocatorSection,
	"§§":      types.LocatorSection,
	"para.":   types.LocatorParagraph,
	"¶":       types.LocatorParagraph,
	"vol.":    types.LocatorVolume,
	"vols.":   types.LocatorVolume,
	"fig.":    types.LocatorFigure,
	"figs.":   types.LocatorFigure,
	"l.":      types.LocatorLine,
	"ll.":     types.LocatorLine,
	"line":    types.LocatorLine,
	"n.":      types.LocatorNote,
	"nn.":     types.LocatorNote,
	"note":    types.LocatorNote,
	"no.":     types.LocatorIssue,
	"ed.":     types.LocatorEdition,
}

// Occurrence is one citation found in the text. Start and End are byte
// offsets of the citation markup.
type Occurrence struct {
	Start, End int
	Citation   types.Citation
}

// Citer renders citations and the bibliography of the references cited
// so far. *render.Processor satisfies it.
type Citer interface {
	RenderCitation(types.Citation) (string, error)
	FormatBibliography() string
}

// Scan returns the citations in text in order of appearance.
func Scan(text string) []Occurrence {
	var out []Occurrence
	var taken [][2]int

	for _, m := range bracketPattern.FindAllStringSubmatchIndex(text, -1) {
		taken = append(taken, [2]int{m[0], m[1]})
		if m[1] < len(text) && text[m[1]] == '(' {
			continue
		}
		if c, ok := parseBracket(text[m[2]:m[3]]); ok {
			out = append(out, Occurrence{Start: m[0], End: m[1], Citation: c})
		}
	}

	for _, m := range barePattern.FindAllStringSubmatchIndex(text, -1) {
		start := m[4] - 1
		if inside(taken, start) {
			continue
		}
		key := trimKey(text[m[4]:m[5]])
		end := m[4] + len(key)
		item := types.CitationItem{RefID: key}
		if loc := locatorPattern.FindStringSubmatchIndex(text[end:]); loc != nil {
			item.Label, item.Locator, item.Suffix = ParseLocator(text[end+loc[2] : end+loc[3]])
			end += loc[1]
		}
		out = append(out, Occurrence{
			Start:    start,
			End:      end,
			Citation: types.Citation{Mode: types.ModeIntegral, Items: []types.CitationItem{item}},
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func inside(spans [][2]int, pos int) bool {
	for _, s := range spans {
		if pos >= s[0] && pos < s[1] {
			return true
		}
	}
	return false
}

// parseBracket parses the inside of [...]. Every ';'-separated part must
// name a key for the bracket to count as a citation.
func parseBracket(inner string) (types.Citation, bool) {
	var c types.Citation
	for _, part := range strings.Split(inner, ";") {
		m := itemPattern.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return types.Citation{}, false
		}
		prefix, suppress, key, rest := m[1], m[2], m[3], m[4]
		if prefix != "" && !strings.HasSuffix(prefix, " ") {
			return types.Citation{}, false
		}
		trimmed := trimKey(key)
		rest = key[len(trimmed):] + rest

		item := types.CitationItem{RefID: trimmed, Prefix: prefix}
		if suppress == "-" {
			item.Visibility = types.VisibilitySuppressAuthor
		}
		if rest = strings.TrimSpace(rest); rest != "" {
			if !strings.HasPrefix(rest, ",") {
				return types.Citation{}, false
			}
			item.Label, item.Locator, item.Suffix = ParseLocator(strings.TrimSpace(rest[1:]))
		}
		c.Items = append(c.Items, item)
	}
	return c, len(c.Items) > 0
}

// trimKey drops punctuation that ends a sentence rather than the key.
func trimKey(key string) string {
	return strings.TrimRight(key, ".:,?")
}

// ParseLocator splits "p. 12, emphasis added" into a locator kind, the
// locator, and a suffix. Text that is not a locator becomes the suffix.
func ParseLocator(s string) (types.LocatorKind, string, string) {
	if s == "" {
		return "", "", ""
	}
	body, extra, _ := strings.Cut(s, ",")
	suffix := ""
	if extra = strings.TrimSpace(extra); extra != "" {
		suffix = ", " + extra
	}

	fields := strings.Fields(body)
	if len(fields) > 1 {
		if kind, ok := locatorLabels[strings.ToLower(fields[0])]; ok {
			return kind, strings.Join(fields[1:], " "), suffix
		}
	}
	if body = strings.TrimSpace(body); body != "" && body[0] >= '0' && body[0] <= '9' {
		return types.LocatorPage, body, suffix
	}
	return "", "", ", " + strings.TrimSpace(s)
}

// Keys returns the distinct reference ids cited, in order of first
// appearance.
func Keys(occs []Occurrence) []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range occs {
		for _, it := range o.Citation.Items {
			if !seen[it.RefID] {
				seen[it.RefID] = true
				out = append(out, it.RefID)
			}
		}
	}
	return out
}

// Missing returns the sorted ids cited in text that bib does not hold.
func Missing(text string, bib *types.Bibliography) []string {
	var out []string
	for _, k := range Keys(Scan(text)) {
		if _, ok := bib.Get(k); !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Cited returns the part of bib cited in text, with the parents the
// cited references point to.
func Cited(text string, bib *types.Bibliography) (*types.Bibliography, error) {
	if missing := Missing(text, bib); len(missing) > 0 {
		return nil, fmt.Errorf("unknown citation keys: %s", strings.Join(missing, ", "))
	}
	out, _ := bib.Select(Keys(Scan(text))...)
	return out, nil
}

// Process replaces every citation in text with its rendering and, when
// anything was cited, appends the bibliography under heading.
func Process(c Citer, text, heading string) (string, error) {
	occs := Scan(text)
	var b strings.Builder
	last := 0
	for _, o := range occs {
		s, err := c.RenderCitation(o.Citation)
		if err != nil {
			return "", fmt.Errorf("rendering %q: %w", text[o.Start:o.End], err)
		}
		b.WriteString(text[last:o.Start])
		b.WriteString(s)
		last = o.End
	}
	b.WriteString(text[last:])
	if len(occs) == 0 {
		return b.String(), nil
	}

	if heading == "" {
		heading = DefaultHeading
	}
	out := strings.TrimRight(b.String(), "\n")
	return out + "\n\n## " + heading + "\n\n" + c.FormatBibliography() + "\n", nil
}

// SectionFiles returns the ordered numbered section files (NN-*.md) of a
// manuscript directory.
func SectionFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading manuscript directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && sectionFilePattern.MatchString(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads a manuscript: a single Markdown file, or the numbered
// section files of a directory joined by blank lines.
func Load(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("reading manuscript: %w", err)
	}
	if !info.IsDir() {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("reading manuscript: %w", err)
		}
		return string(data), nil
	}
	files, err := SectionFiles(path)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no section files in %s", path)
	}
	parts := make([]string, 0, len(files))
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", filepath.Base(f), err)
		}
		parts = append(parts, strings.TrimRight(string(data), "\n"))
	}
	return strings.Join(parts, "\n\n") + "\n", nil
}
