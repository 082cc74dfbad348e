// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package style loads declarative citation styles from YAML, either from
// disk or from the styles compiled into the binary, and validates them.
package style

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

// DefaultName is the style used when none is configured.
const DefaultName = "author-date"

//go:embed styles/*.yaml
var builtin embed.FS

// Builtin returns the compiled-in style with name.
func Builtin(name string) (*types.Style, error) {
	data, err := builtin.ReadFile(path.Join("styles", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown built-in style %q", name)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("built-in style %s: %w", name, err)
	}
	return s, nil
}

// Available lists the names of the built-in styles.
func Available() []string {
	entries, _ := builtin.ReadDir("styles")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Load resolves name as a built-in style, or else as a YAML file path.
// An empty name yields the default style.
func Load(name string) (*types.Style, error) {
	if name == "" {
		name = DefaultName
	}
	if s, err := Builtin(name); err == nil {
		return s, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("reading style %s: %w", name, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing style %s: %w", name, err)
	}
	return s, nil
}

// Parse decodes and validates a style document.
func Parse(data []byte) (*types.Style, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var s types.Style
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the structural rules a renderer relies on.
func Validate(s *types.Style) error {
	if s.Citation == nil && s.Bibliography == nil {
		return fmt.Errorf("style defines neither a citation nor a bibliography")
	}
	if s.Citation != nil && len(s.Citation.Template) == 0 {
		return fmt.Errorf("citation template is empty")
	}
	if p := s.Options.Processing; p != nil && p.Sort != nil {
		if err := validateSort(*p.Sort); err != nil {
			return fmt.Errorf("processing: %w", err)
		}
	}
	if b := s.Bibliography; b != nil {
		if len(b.Template) == 0 && len(b.TypeTemplates) == 0 {
			return fmt.Errorf("bibliography template is empty")
		}
		seen := make(map[string]bool, len(b.Groups))
		for i, g := range b.Groups {
			if g.ID == "" {
				return fmt.Errorf("bibliography group %d has no id", i+1)
			}
			if seen[g.ID] {
				return fmt.Errorf("duplicate bibliography group %q", g.ID)
			}
			seen[g.ID] = true
			if g.Sort != nil {
				if err := validateSort(*g.Sort); err != nil {
					return fmt.Errorf("group %s: %w", g.ID, err)
				}
			}
			switch g.Disambiguate {
			case "", types.ScopeGlobal, types.ScopeLocal:
			default:
				return fmt.Errorf("group %s: unknown disambiguation scope %q", g.ID, g.Disambiguate)
			}
		}
	}
	return nil
}

func validateSort(s types.Sort) error {
	for _, k := range s.Template {
		switch k.Key {
		case types.SortAuthor, types.SortYear, types.SortTitle, types.SortCitationNumber:
		default:
			return fmt.Errorf("unknown sort key %q", k.Key)
		}
	}
	return nil
}

// Marshal encodes a style as YAML.
func Marshal(s *types.Style) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding style: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding style: %w", err)
	}
	return buf.Bytes(), nil
}
