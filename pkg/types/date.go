// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"regexp"
	"strconv"
	"strings"
)

// EDTF is a date string in Extended Date/Time Format, or any other text
// that is then treated as a literal date.
type EDTF string

// Date is a parsed EDTF value. Season is 1-4 (spring..winter) when the
// month field carried an EDTF season code (21-24).
type Date struct {
	Year        int
	Month       int
	Day         int
	Season      int
	Approximate bool
	Uncertain   bool

	// End is set for intervals ("2001/2003").
	End *Date

	// Literal holds input that could not be parsed.
	Literal string
}

var edtfRe = regexp.MustCompile(`^(-?\d{1,4})(?:-(\d{2})(?:-(\d{2}))?)?([~?%]?)$`)

// Parse parses the EDTF subset used by bibliographic data: years,
// year-months, full dates, seasons, qualifiers, and intervals. Anything
// else yields a literal Date.
func (e EDTF) Parse() Date {
	s := strings.TrimSpace(string(e))
	if s == "" {
		return Date{}
	}
	if start, end, ok := strings.Cut(s, "/"); ok {
		a, okA := parseSimpleDate(start)
		b, okB := parseSimpleDate(end)
		if okA && okB {
			a.End = &b
			return a
		}
		return Date{Literal: s}
	}
	d, ok := parseSimpleDate(s)
	if !ok {
		return Date{Literal: s}
	}
	return d
}

func parseSimpleDate(s string) (Date, bool) {
	m := edtfRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Date{}, false
	}
	var d Date
	d.Year, _ = strconv.Atoi(m[1])
	if m[2] != "" {
		month, _ := strconv.Atoi(m[2])
		switch {
		case month >= 1 && month <= 12:
			d.Month = month
		case month >= 21 && month <= 24:
			d.Season = month - 20
		default:
			return Date{}, false
		}
	}
	if m[3] != "" {
		d.Day, _ = strconv.Atoi(m[3])
		if d.Day < 1 || d.Day > 31 || d.Month == 0 {
			return Date{}, false
		}
	}
	switch m[4] {
	case "~":
		d.Approximate = true
	case "?":
		d.Uncertain = true
	case "%":
		d.Approximate = true
		d.Uncertain = true
	}
	return d, true
}

// IsZero reports whether the date carries no information.
func (d Date) IsZero() bool {
	return d.Year == 0 && d.Literal == "" && d.End == nil
}

// IsLiteral reports whether the date failed to parse.
func (d Date) IsLiteral() bool { return d.Literal != "" }

// YearString returns the year as text, or "" for literal dates.
func (d Date) YearString() string {
	if d.IsLiteral() || d.Year == 0 {
		return ""
	}
	return strconv.Itoa(d.Year)
}
