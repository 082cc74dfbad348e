// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Title is a work title. The input may be a single string, a structured
// main/sub title, a multilingual mapping, or a title with a shorthand.
type Title struct {
	Main         string            `json:"main,omitempty" yaml:"main,omitempty"`
	Sub          string            `json:"sub,omitempty" yaml:"sub,omitempty"`
	Short        string            `json:"short,omitempty" yaml:"short,omitempty"`
	Translations map[string]string `json:"translations,omitempty" yaml:"translations,omitempty"`
}

// UnmarshalYAML accepts a bare string as the main title.
func (t *Title) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = Title{Main: node.Value}
		return nil
	case yaml.MappingNode:
		type plain Title
		var p plain
		if err := node.Decode(&p); err != nil {
			return fmt.Errorf("decoding title: %w", err)
		}
		*t = Title(p)
		return nil
	}
	return fmt.Errorf("line %d: unsupported title value", node.Line)
}

// Long returns "Main: Sub", or Main alone.
func (t *Title) Long() string {
	if t == nil {
		return ""
	}
	if t.Sub != "" {
		return t.Main + ": " + t.Sub
	}
	return t.Main
}

// ShortForm returns the shorthand if present, else the main title.
func (t *Title) ShortForm() string {
	if t == nil {
		return ""
	}
	if t.Short != "" {
		return t.Short
	}
	return t.Main
}

// In returns the long title translated into lang, falling back to Long.
func (t *Title) In(lang string) string {
	if t == nil {
		return ""
	}
	if v, ok := t.Translations[lang]; ok && v != "" {
		return v
	}
	return t.Long()
}
