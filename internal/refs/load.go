// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refs loads reference data into a Bibliography. It reads the
// native YAML model as well as CSL-JSON and CSL-YAML, and writes CSL
// back out for Pandoc and reference managers.
package refs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/citekit/pkg/types"
)

// Format names a reference file format.
type Format string

const (
	FormatAuto    Format = ""
	FormatNative  Format = "yaml"
	FormatCSLJSON Format = "csl-json"
	FormatCSLYAML Format = "csl-yaml"
)

// cslOnlyKeys are item keys that the native model never uses.
var cslOnlyKeys = map[string]bool{
	"container-title": true,
	"title-short":     true,
	"page":            true,
	"DOI":             true,
	"URL":             true,
	"ISBN":            true,
	"ISSN":            true,
	"abstract":        true,
}

// Load reads a reference file, choosing the format from the extension
// and, for YAML, from the document's keys.
func Load(path string) (*types.Bibliography, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading references %s: %w", path, err)
	}
	format := FormatAuto
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatCSLJSON
	}
	bib, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing references %s: %w", path, err)
	}
	return bib, nil
}

// Parse decodes references in format. FormatAuto treats input starting
// with '[' or '{' as CSL-JSON and otherwise inspects the YAML keys.
func Parse(data []byte, format Format) (*types.Bibliography, error) {
	if format == FormatAuto {
		format = Detect(data)
	}
	switch format {
	case FormatCSLJSON:
		var items []CSLItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decoding CSL-JSON: %w", err)
		}
		return fromItems(items)
	case FormatCSLYAML:
		var items []CSLItem
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decoding CSL-YAML: %w", err)
		}
		return fromItems(items)
	case FormatNative:
		var bib types.Bibliography
		if err := yaml.Unmarshal(data, &bib); err != nil {
			return nil, fmt.Errorf("decoding references: %w", err)
		}
		return &bib, nil
	}
	return nil, fmt.Errorf("unknown reference format %q", format)
}

// Detect guesses the format of data.
func Detect(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') && json.Valid(trimmed) {
		return FormatCSLJSON
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil || len(doc.Content) == 0 {
		return FormatNative
	}
	if looksLikeCSL(doc.Content[0]) {
		return FormatCSLYAML
	}
	return FormatNative
}

func looksLikeCSL(node *yaml.Node) bool {
	if node.Kind != yaml.SequenceNode {
		return false
	}
	for _, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			continue
		}
		for i := 0; i+1 < len(item.Content); i += 2 {
			key, value := item.Content[i].Value, item.Content[i+1]
			if cslOnlyKeys[key] {
				return true
			}
			if (key == "issued" || key == "accessed") && value.Kind == yaml.MappingNode {
				return true
			}
		}
	}
	return false
}

func fromItems(items []CSLItem) (*types.Bibliography, error) {
	bib := types.NewBibliography()
	for i, item := range items {
		if item.ID == "" {
			return nil, fmt.Errorf("item %d has no id", i+1)
		}
		bib.Add(ToReference(item))
	}
	return bib, nil
}

// Write encodes bib to w in format. FormatAuto writes native YAML.
func Write(w io.Writer, bib *types.Bibliography, format Format) error {
	switch format {
	case FormatCSLJSON, FormatCSLYAML:
		items := make([]CSLItem, 0, bib.Len())
		for _, r := range bib.References() {
			items = append(items, FromReference(r, bib))
		}
		if format == FormatCSLJSON {
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}
		return encodeYAML(w, items)
	case FormatAuto, FormatNative:
		return encodeYAML(w, bib)
	}
	return fmt.Errorf("unknown reference format %q", format)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(v)
}
