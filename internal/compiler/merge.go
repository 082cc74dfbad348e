// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package compiler

import (
	"fmt"
	"sort"

	"github.com/pdiddy/citekit/pkg/types"
)

// merge folds occurrences of the same field into one component each.
// Occurrences group by variable key and component shape; groups are
// ordered by their earliest source position, ties in first-seen order.
//
// A group with a default occurrence stays visible and gains an
// unsuppressing override per kind for every branch occurrence. A group
// with only branch occurrences is suppressed and unsuppressed per kind.
// Lists push both onto their children.
func merge(occs []occurrence) types.Template {
	type bucket struct {
		occs  []occurrence
		order int
	}
	index := make(map[string]int)
	var buckets []*bucket
	for _, o := range occs {
		k := o.comp.VariableKey() + "#" + shape(o.comp)
		i, ok := index[k]
		if !ok {
			i = len(buckets)
			index[k] = i
			buckets = append(buckets, &bucket{order: o.order})
		}
		b := buckets[i]
		b.occs = append(b.occs, o)
		if o.order < b.order {
			b.order = o.order
		}
	}
	sort.SliceStable(buckets, func(i, j int) bool { return buckets[i].order < buckets[j].order })

	// Kinds claimed by a branch-only variant of a field hide the default
	// variant of the same field for those kinds.
	claimed := make(map[string][]string)
	for _, b := range buckets {
		if !hasDefault(b.occs) {
			key := b.occs[0].comp.VariableKey()
			for _, o := range b.occs {
				claimed[key] = append(claimed[key], o.ctx.kinds...)
			}
		}
	}

	out := make(types.Template, 0, len(buckets))
	for _, b := range buckets {
		c := mergeBucket(b.occs)
		if _, isList := c.(*types.ListComponent); !isList && hasDefault(b.occs) {
			own := make(map[string]bool)
			for _, o := range b.occs {
				for _, k := range o.ctx.kinds {
					own[k] = true
				}
			}
			for _, k := range claimed[c.VariableKey()] {
				if !own[k] {
					c.Base().SetOverride(k, types.Rendering{Suppress: types.Ptr(true)})
				}
			}
		}
		out = append(out, c)
	}
	return out
}

func hasDefault(occs []occurrence) bool {
	for _, o := range occs {
		if o.ctx.isDefault() {
			return true
		}
	}
	return false
}

func mergeBucket(occs []occurrence) types.Component {
	def := -1
	for i, o := range occs {
		if o.ctx.isDefault() {
			def = i
			break
		}
	}
	var base types.Component
	if def >= 0 {
		base = occs[def].comp.Clone()
	} else {
		base = occs[0].comp.Clone()
		suppress(base)
	}
	for _, o := range occs {
		if o.ctx.isDefault() {
			continue
		}
		for _, k := range o.ctx.kinds {
			unsuppressFor(base, o.comp, k)
		}
	}
	return base
}

func suppress(c types.Component) {
	if l, ok := c.(*types.ListComponent); ok {
		for _, item := range l.Items {
			suppress(item)
		}
		return
	}
	c.Base().Suppress = types.Ptr(true)
}

// unsuppressFor adds an override for kind that shows base with the
// styling of occ.
func unsuppressFor(base, occ types.Component, kind string) {
	if l, ok := base.(*types.ListComponent); ok {
		ol, ok := occ.(*types.ListComponent)
		if !ok || len(ol.Items) != len(l.Items) {
			return
		}
		for i := range l.Items {
			unsuppressFor(l.Items[i], ol.Items[i], kind)
		}
		return
	}
	b := base.Base()
	r := diff(b.Rendering, occ.Base().Rendering)
	if r == (types.Rendering{}) && !b.Effective(kind).IsSuppressed() {
		return
	}
	r.Suppress = types.Ptr(false)
	b.SetOverride(kind, r)
}

// diff returns the fields of occ that differ from base, with unset
// fields of occ spelled out as explicit zero values. Suppress is ignored.
func diff(base, occ types.Rendering) types.Rendering {
	var d types.Rendering
	d.Emph = diffBool(base.Emph, occ.Emph)
	d.Quote = diffBool(base.Quote, occ.Quote)
	d.Strong = diffBool(base.Strong, occ.Strong)
	d.SmallCaps = diffBool(base.SmallCaps, occ.SmallCaps)
	d.StripPeriods = diffBool(base.StripPeriods, occ.StripPeriods)
	d.Prefix = diffString(base.Prefix, occ.Prefix)
	d.Suffix = diffString(base.Suffix, occ.Suffix)
	d.InnerPrefix = diffString(base.InnerPrefix, occ.InnerPrefix)
	d.InnerSuffix = diffString(base.InnerSuffix, occ.InnerSuffix)
	if base.WrapValue() != occ.WrapValue() {
		d.Wrap = types.Ptr(occ.WrapValue())
	}
	return d
}

func diffBool(a, b *bool) *bool {
	if types.Flag(a) == types.Flag(b) {
		return nil
	}
	return types.Ptr(types.Flag(b))
}

func diffString(a, b *string) *string {
	if deref(a) == deref(b) {
		return nil
	}
	return types.Ptr(deref(b))
}

// shape is the part of a component that overrides cannot express.
// Occurrences that differ in shape stay separate components.
func shape(c types.Component) string {
	switch c := c.(type) {
	case *types.ContributorComponent:
		s := fmt.Sprintf("%s|%s|%s", c.Form, c.NameOrder, deref(c.Delimiter))
		if c.Label != nil {
			s += fmt.Sprintf("|%s|%s|%s", c.Label.Form, c.Label.Placement, c.Label.Wrap)
		}
		return s
	case *types.DateComponent:
		return string(c.Form)
	case *types.TitleComponent:
		return string(c.Form)
	case *types.NumberComponent:
		s := string(c.Form)
		if c.Label != nil {
			s += "|" + string(*c.Label)
		}
		return s
	case *types.TermComponent:
		return string(c.Form)
	case *types.ListComponent:
		return c.Delimiter
	}
	return ""
}

// postPass suppresses a standalone component for every kind where a List
// showing the same field is also visible.
func postPass(t types.Template) types.Template {
	for _, c := range t {
		if _, ok := c.(*types.ListComponent); ok {
			continue
		}
		for _, l := range t {
			list, ok := l.(*types.ListComponent)
			if !ok {
				continue
			}
			for _, child := range list.Items {
				if child.VariableKey() == c.VariableKey() {
					yieldTo(c, list, child)
				}
			}
		}
	}
	return t
}

func yieldTo(c types.Component, list, child types.Component) {
	visible := func(x types.Component, kind string) bool {
		return !x.Base().Effective(kind).IsSuppressed()
	}
	inList := func(kind string) bool { return visible(list, kind) && visible(child, kind) }

	for _, k := range overrideKinds(c, list, child) {
		switch {
		case visible(c, k) && inList(k):
			c.Base().SetOverride(k, types.Rendering{Suppress: types.Ptr(true)})
		case visible(c, k):
			c.Base().SetOverride(k, types.Rendering{Suppress: types.Ptr(false)})
		}
	}
	if visible(c, "") && inList("") {
		c.Base().Suppress = types.Ptr(true)
	}
}

func overrideKinds(cs ...types.Component) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range cs {
		for k := range c.Base().Overrides {
			if k != types.AllKinds && !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}
