// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locale loads Locale term tables from YAML, either from disk or
// from the locales compiled into the binary.
package locale

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citekit/pkg/types"
)

// DefaultID is the locale used when none is configured.
const DefaultID = "en-US"

//go:embed locales/*.yaml
var builtin embed.FS

// Builtin returns the compiled-in locale with id.
func Builtin(id string) (*types.Locale, error) {
	data, err := builtin.ReadFile(path.Join("locales", id+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown built-in locale %q", id)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("built-in locale %s: %w", id, err)
	}
	return l, nil
}

// Available lists the ids of the built-in locales.
func Available() []string {
	entries, _ := builtin.ReadDir("locales")
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(ids)
	return ids
}

// Load resolves name as a built-in locale id, or else as a YAML file path.
// An empty name yields the default locale.
func Load(name string) (*types.Locale, error) {
	if name == "" {
		name = DefaultID
	}
	if l, err := Builtin(name); err == nil {
		return l, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading locale %s: %w", name, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing locale %s: %w", name, err)
	}
	return l, nil
}

// Parse decodes a locale document and checks the month tables.
func Parse(data []byte) (*types.Locale, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var l types.Locale
	if err := dec.Decode(&l); err != nil {
		return nil, err
	}
	if n := len(l.Dates.Months.Long); n != 0 && n != 12 {
		return nil, fmt.Errorf("expected 12 long month names, got %d", n)
	}
	if n := len(l.Dates.Months.Short); n != 0 && n != 12 {
		return nil, fmt.Errorf("expected 12 short month names, got %d", n)
	}
	return &l, nil
}
