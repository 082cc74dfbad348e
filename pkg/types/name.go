// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Name is one contributor name. A Literal name (an organization, or a
// name that must not be split) is rendered verbatim; otherwise the parts
// are assembled by the renderer. Ordering and particle placement come from
// configuration, never from the name itself.
type Name struct {
	Literal             string `json:"literal,omitempty" yaml:"literal,omitempty"`
	Given               string `json:"given,omitempty" yaml:"given,omitempty"`
	Family              string `json:"family,omitempty" yaml:"family,omitempty"`
	Suffix              string `json:"suffix,omitempty" yaml:"suffix,omitempty"`
	DroppingParticle    string `json:"dropping-particle,omitempty" yaml:"dropping-particle,omitempty"`
	NonDroppingParticle string `json:"non-dropping-particle,omitempty" yaml:"non-dropping-particle,omitempty"`
}

// IsLiteral reports whether the name is rendered verbatim.
func (n Name) IsLiteral() bool {
	return n.Literal != "" || (n.Family == "" && n.Given == "")
}

// SortName returns the family name (or literal) used for grouping and
// sorting, optionally prefixed with the non-dropping particle.
func (n Name) SortName(withParticle bool) string {
	if n.IsLiteral() {
		return n.Literal
	}
	if withParticle && n.NonDroppingParticle != "" {
		return n.NonDroppingParticle + " " + n.Family
	}
	return n.Family
}

// UnmarshalYAML accepts a bare string as a literal name.
func (n *Name) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*n = Name{Literal: node.Value}
		return nil
	}
	type plain Name
	var aux struct {
		Parts plain  `yaml:",inline"`
		Name  string `yaml:"name"`
	}
	if err := node.Decode(&aux); err != nil {
		return err
	}
	*n = Name(aux.Parts)
	if n.Literal == "" && aux.Name != "" {
		n.Literal = aux.Name
	}
	return nil
}

// Contributor is the value of a contributor field (author, editor, ...).
// Input may be a literal name, a structured name, or an ordered list of
// either; all three decode to the same flat list.
type Contributor []Name

// UnmarshalYAML flattens the literal / structured / list forms.
func (c *Contributor) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Value == "" {
			*c = nil
			return nil
		}
		*c = Contributor{{Literal: node.Value}}
	case yaml.MappingNode:
		var n Name
		if err := node.Decode(&n); err != nil {
			return fmt.Errorf("decoding name: %w", err)
		}
		*c = Contributor{n}
	case yaml.SequenceNode:
		var out Contributor
		for _, item := range node.Content {
			var sub Contributor
			if err := sub.UnmarshalYAML(item); err != nil {
				return err
			}
			out = append(out, sub...)
		}
		*c = out
	default:
		return fmt.Errorf("line %d: unsupported contributor value", node.Line)
	}
	return nil
}

// Literal joins the names in display order without any configuration,
// used where a contributor stands in for a plain string variable.
func (c Contributor) Literal(sep string) string {
	parts := make([]string, 0, len(c))
	for _, n := range c {
		if n.IsLiteral() {
			parts = append(parts, n.Literal)
			continue
		}
		fields := []string{n.Given, n.DroppingParticle, n.NonDroppingParticle, n.Family, n.Suffix}
		parts = append(parts, strings.Join(strings.Fields(strings.Join(fields, " ")), " "))
	}
	return strings.Join(parts, sep)
}
