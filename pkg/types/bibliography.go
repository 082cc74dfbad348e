// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"

	"go.yaml.in/yaml/v3"
)

// Bibliography is an ordered mapping from id to Reference. Insertion order
// is the default citation-number order and the final sort tie-breaker.
type Bibliography struct {
	ids  []string
	refs map[string]*Reference
}

// NewBibliography returns a bibliography holding refs in order.
func NewBibliography(refs ...*Reference) *Bibliography {
	b := &Bibliography{refs: make(map[string]*Reference, len(refs))}
	for _, r := range refs {
		b.Add(r)
	}
	return b
}

// Add inserts or replaces r. A replaced reference keeps its position.
func (b *Bibliography) Add(r *Reference) {
	if b.refs == nil {
		b.refs = make(map[string]*Reference)
	}
	if _, ok := b.refs[r.ID]; !ok {
		b.ids = append(b.ids, r.ID)
	}
	b.refs[r.ID] = r
}

// Get returns the reference with id.
func (b *Bibliography) Get(id string) (*Reference, bool) {
	if b == nil {
		return nil, false
	}
	r, ok := b.refs[id]
	return r, ok
}

// IDs returns the ids in insertion order.
func (b *Bibliography) IDs() []string {
	if b == nil {
		return nil
	}
	return append([]string(nil), b.ids...)
}

// Len returns the number of references.
func (b *Bibliography) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ids)
}

// References returns the references in insertion order.
func (b *Bibliography) References() []*Reference {
	if b == nil {
		return nil
	}
	out := make([]*Reference, len(b.ids))
	for i, id := range b.ids {
		out[i] = b.refs[id]
	}
	return out
}

// Parent resolves the containing work of r: the embedded parent, or the
// entry its parent id names.
func (b *Bibliography) Parent(r *Reference) *Reference {
	if r == nil || r.Parent == nil {
		return nil
	}
	if r.Parent.Reference != nil {
		return r.Parent.Reference
	}
	p, _ := b.Get(r.Parent.ID)
	return p
}

// Select returns the references named by ids, in that order, followed
// by any parents they name by id. Ids b does not hold are returned as
// missing.
func (b *Bibliography) Select(ids ...string) (*Bibliography, []string) {
	out := NewBibliography()
	var missing []string
	queue := append([]string(nil), ids...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := out.Get(id); ok {
			continue
		}
		r, ok := b.Get(id)
		if !ok {
			missing = append(missing, id)
			continue
		}
		out.Add(r)
		if r.Parent != nil && r.Parent.ID != "" {
			queue = append(queue, r.Parent.ID)
		}
	}
	return out, missing
}

// UnmarshalYAML accepts a sequence of references, or a mapping of id to
// reference that preserves document order.
func (b *Bibliography) UnmarshalYAML(node *yaml.Node) error {
	*b = Bibliography{refs: make(map[string]*Reference)}
	switch node.Kind {
	case yaml.SequenceNode:
		for i, item := range node.Content {
			var r Reference
			if err := item.Decode(&r); err != nil {
				return fmt.Errorf("reference %d: %w", i, err)
			}
			if r.ID == "" {
				return fmt.Errorf("line %d: reference without id", item.Line)
			}
			b.Add(&r)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			id := node.Content[i].Value
			var r Reference
			if err := node.Content[i+1].Decode(&r); err != nil {
				return fmt.Errorf("reference %s: %w", id, err)
			}
			if r.ID == "" {
				r.ID = id
			}
			b.Add(&r)
		}
	default:
		return fmt.Errorf("line %d: bibliography must be a sequence or a mapping", node.Line)
	}
	return nil
}

// MarshalYAML writes the references as a sequence.
func (b Bibliography) MarshalYAML() (any, error) {
	return b.References(), nil
}
