// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strconv"
	"strings"
	"sync"
)

// Registry assigns citation numbers in first-seen order. A reference keeps
// its first number for the lifetime of the registry.
type Registry struct {
	mu      sync.Mutex
	numbers map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{numbers: make(map[string]int)}
}

// Assign returns the number for id, assigning the next one if id is new.
func (r *Registry) Assign(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.numbers[id]; ok {
		return n
	}
	n := len(r.numbers) + 1
	r.numbers[id] = n
	return n
}

// Lookup returns the number for id without assigning one.
func (r *Registry) Lookup(id string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.numbers[id]
	return n, ok
}

// Len returns the count of assigned numbers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.numbers)
}

// YearSuffix returns the base-26 disambiguation letters for a 1-based
// index: a..z, aa..az, ba...
func YearSuffix(n int) string {
	if n < 1 {
		return ""
	}
	var b []byte
	for n > 0 {
		n--
		b = append(b, byte('a'+n%26))
		n /= 26
	}
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// Ordinal renders a numeric value as an English ordinal ("2" -> "2nd").
// Non-numeric values are returned unchanged.
func Ordinal(s string) string {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return s
	}
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// isPlural reports whether a number value names more than one item.
func isPlural(s string) bool {
	return strings.ContainsAny(s, "-–—,&")
}
