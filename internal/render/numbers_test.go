// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryReusesNumbers(t *testing.T) {
	r := NewRegistry()
	got := []int{r.Assign("ref1"), r.Assign("ref2"), r.Assign("ref1")}
	assert.Equal(t, []int{1, 2, 1}, got)

	n, ok := r.Lookup("ref2")
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = r.Lookup("ref3")
	assert.False(t, ok)
}

func TestRegistryConcurrentAssign(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Assign("shared")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, r.Assign("shared"))
}

func TestYearSuffix(t *testing.T) {
	var got []string
	for i := 1; i <= 30; i++ {
		got = append(got, YearSuffix(i))
	}
	want := []string{
		"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
		"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
		"aa", "ab", "ac", "ad",
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "ba", YearSuffix(53))
	assert.Equal(t, "", YearSuffix(0))
}

func TestOrdinal(t *testing.T) {
	tests := map[string]string{
		"1": "1st", "2": "2nd", "3": "3rd", "4": "4th",
		"11": "11th", "12": "12th", "13": "13th",
		"21": "21st", "102": "102nd", "rev.": "rev.",
	}
	for in, want := range tests {
		assert.Equal(t, want, Ordinal(in), in)
	}
}
