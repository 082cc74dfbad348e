// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"strconv"

	"github.com/pdiddy/citekit/pkg/types"
)

// FormatDate renders d in form using the locale month names. Intervals
// render both ends joined by an en dash, collapsing a repeated year when
// only the year is shown. Literal dates pass through.
func FormatDate(d types.Date, form types.DateForm, month types.MonthFormat, loc *types.Locale) string {
	if d.IsLiteral() {
		return d.Literal
	}
	if d.IsZero() {
		return ""
	}
	start := formatSimple(d, form, month, loc)
	if d.End == nil {
		return start
	}
	end := formatSimple(*d.End, form, month, loc)
	if end == "" || end == start {
		return start
	}
	return start + enDash + end
}

func formatSimple(d types.Date, form types.DateForm, month types.MonthFormat, loc *types.Locale) string {
	if form == "" {
		form = types.DateFormYear
	}
	year := yearText(d.Year)
	var s string
	switch form {
	case types.DateFormYear:
		s = year
	case types.DateFormYearMonth:
		s = join(monthText(d, month, loc), year, " ")
		if month == types.MonthNumeric && d.Month > 0 {
			s = fmt.Sprintf("%s-%02d", year, d.Month)
		}
	case types.DateFormMonthDay:
		s = join(monthText(d, month, loc), dayText(d), " ")
		if month == types.MonthNumeric && d.Month > 0 {
			s = fmt.Sprintf("%02d-%02d", d.Month, d.Day)
		}
	case types.DateFormFull:
		md := join(monthText(d, month, loc), dayText(d), " ")
		if d.Day > 0 {
			s = md + ", " + year
		} else {
			s = join(md, year, " ")
		}
		if month == types.MonthNumeric && d.Month > 0 {
			s = fmt.Sprintf("%s-%02d", year, d.Month)
			if d.Day > 0 {
				s += fmt.Sprintf("-%02d", d.Day)
			}
		}
	}
	if s == "" {
		return ""
	}
	if d.Approximate {
		if c := loc.Term(types.TermCirca, types.TermFormShort); c != "" {
			s = c + " " + s
		}
	}
	if d.Uncertain {
		s += "?"
	}
	return s
}

func yearText(y int) string {
	switch {
	case y == 0:
		return ""
	case y < 0:
		return strconv.Itoa(-y) + " BC"
	}
	return strconv.Itoa(y)
}

func monthText(d types.Date, month types.MonthFormat, loc *types.Locale) string {
	if d.Season > 0 {
		return loc.SeasonName(d.Season)
	}
	if d.Month == 0 {
		return ""
	}
	if month == types.MonthNumeric {
		return strconv.Itoa(d.Month)
	}
	return loc.MonthName(d.Month, month == types.MonthShort)
}

func dayText(d types.Date) string {
	if d.Day == 0 {
		return ""
	}
	return strconv.Itoa(d.Day)
}

func join(a, b, sep string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + sep + b
}
