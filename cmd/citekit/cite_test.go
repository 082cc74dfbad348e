// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/citekit/pkg/types"
)

func TestCitationsFromArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		integral bool
		locator  string
		want     []types.Citation
		wantErr  bool
	}{
		{
			name: "plain ids form one citation",
			args: []string{"kuhn1962", "smith2001"},
			want: []types.Citation{{Items: []types.CitationItem{{RefID: "kuhn1962"}, {RefID: "smith2001"}}}},
		},
		{
			name:     "locator applies to the last id",
			args:     []string{"kuhn1962", "smith2001"},
			integral: true,
			locator:  "chap. 3",
			want: []types.Citation{{Mode: types.ModeIntegral, Items: []types.CitationItem{
				{RefID: "kuhn1962"},
				{RefID: "smith2001", Label: types.LocatorChapter, Locator: "3"},
			}}},
		},
		{
			name: "manuscript form",
			args: []string{"[@kuhn1962, p. 4]", "@smith2001"},
			want: []types.Citation{
				{Items: []types.CitationItem{{RefID: "kuhn1962", Label: types.LocatorPage, Locator: "4"}}},
				{Mode: types.ModeIntegral, Items: []types.CitationItem{{RefID: "smith2001"}}},
			},
		},
		{
			name:    "at sign without a key",
			args:    []string{"user@"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := citationsFromArgs(tt.args, tt.integral, tt.locator)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("citationsFromArgs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
