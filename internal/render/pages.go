// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"regexp"
	"strings"

	"github.com/pdiddy/citekit/pkg/types"
)

const enDash = "–"

var rangeRe = regexp.MustCompile(`^\s*(\d+)\s*[-–—]+\s*(\d+)\s*$`)

// FormatPageRange abbreviates every range in pages according to format.
// Hyphens always become en dashes; input that is not a numeric range
// passes through with only that normalization.
func FormatPageRange(pages string, format types.PageRangeFormat) string {
	if pages == "" {
		return ""
	}
	parts := strings.Split(pages, ",")
	for i, p := range parts {
		lead := p[:len(p)-len(strings.TrimLeft(p, " "))]
		parts[i] = lead + formatRange(strings.TrimSpace(p), format)
	}
	return strings.Join(parts, ",")
}

func formatRange(s string, format types.PageRangeFormat) string {
	m := rangeRe.FindStringSubmatch(s)
	if m == nil {
		return strings.ReplaceAll(s, "-", enDash)
	}
	start, end := m[1], expandEnd(m[1], m[2])
	switch format {
	case types.PageRangeMinimal:
		end = minimal(start, end, 1)
	case types.PageRangeMinimalTwo:
		end = minimal(start, end, 2)
	case types.PageRangeChicago:
		end = chicago(start, end)
	}
	return start + enDash + end
}

// expandEnd restores the leading digits of an abbreviated end ("321-28").
func expandEnd(start, end string) string {
	if len(end) >= len(start) {
		return end
	}
	return start[:len(start)-len(end)] + end
}

// minimal keeps the digits of end from the first one that differs from
// start, but never fewer than floor.
func minimal(start, end string, floor int) string {
	if len(start) != len(end) {
		return end
	}
	i := 0
	for i < len(start) && start[i] == end[i] {
		i++
	}
	keep := len(end) - i
	if keep < floor {
		keep = floor
	}
	if keep > len(end) {
		keep = len(end)
	}
	return end[len(end)-keep:]
}

// chicago keeps full ranges below 100, at multiples of 100 and across a
// hundreds boundary; otherwise the changed digits with a two-digit floor.
func chicago(start, end string) string {
	s, e := atoi(start), atoi(end)
	if s < 100 || s%100 == 0 || len(start) != len(end) || s/100 != e/100 {
		return end
	}
	return minimal(start, end, 2)
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}
