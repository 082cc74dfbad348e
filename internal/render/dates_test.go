// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citekit/internal/locale"
	"github.com/pdiddy/citekit/pkg/types"
)

func TestFormatDate(t *testing.T) {
	loc, err := locale.Builtin("en-US")
	require.NoError(t, err)

	tests := []struct {
		name  string
		in    types.EDTF
		form  types.DateForm
		month types.MonthFormat
		want  string
	}{
		{"year", "1962", types.DateFormYear, "", "1962"},
		{"year of full date", "1962-03-05", types.DateFormYear, "", "1962"},
		{"year-month", "1962-03", types.DateFormYearMonth, "", "March 1962"},
		{"short month", "1962-03", types.DateFormYearMonth, types.MonthShort, "Mar. 1962"},
		{"numeric month", "1962-03", types.DateFormYearMonth, types.MonthNumeric, "1962-03"},
		{"month-day", "1962-03-05", types.DateFormMonthDay, "", "March 5"},
		{"full", "1962-03-05", types.DateFormFull, "", "March 5, 1962"},
		{"full without day", "1962-03", types.DateFormFull, "", "March 1962"},
		{"full numeric", "1962-03-05", types.DateFormFull, types.MonthNumeric, "1962-03-05"},
		{"season", "1995-21", types.DateFormYearMonth, "", "Spring 1995"},
		{"approximate", "1850~", types.DateFormYear, "", "c. 1850"},
		{"uncertain", "1850?", types.DateFormYear, "", "1850?"},
		{"interval", "2001/2003", types.DateFormYear, "", "2001–2003"},
		{"interval same year", "2001-01/2001-05", types.DateFormYear, "", "2001"},
		{"literal", "forthcoming", types.DateFormYear, "", "forthcoming"},
		{"empty", "", types.DateFormYear, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.in.Parse(), tt.form, tt.month, loc))
		})
	}
}
