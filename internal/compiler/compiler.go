// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package compiler turns a legacy procedural layout into a flat
// declarative template. Conditional branches are merged into one
// component per field carrying per-kind overrides, so that no branch tree
// survives into the rendered representation.
package compiler

import (
	"go.uber.org/zap"

	"github.com/pdiddy/citekit/internal/legacy"
	"github.com/pdiddy/citekit/pkg/types"
)

// uncommonKinds are item kinds the citation compile steps around when a
// condition singles them out.
var uncommonKinds = map[string]bool{
	"personal_communication": true,
	"interview":              true,
	"legal_case":             true,
	"legislation":            true,
	"bill":                   true,
	"treaty":                 true,
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger that reports dropped nodes.
func WithLogger(l *zap.Logger) Option {
	return func(c *Compiler) { c.logger = l }
}

// Compiler converts legacy nodes to templates. A Compiler holds no state
// between calls and never fails: nodes it cannot express are dropped.
type Compiler struct {
	logger *zap.Logger
}

// New returns a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{logger: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Compile performs the full, occurrence-based compile used for
// bibliographies. Every conditional branch contributes, and duplicate
// fields merge into a single component with per-kind overrides.
func (c *Compiler) Compile(nodes []legacy.Node) types.Template {
	w := &walker{logger: c.logger}
	occs := w.walk(nodes, defaultContext)
	return postPass(merge(occs))
}

// CompileCitation performs the simplified compile used for citations:
// each condition contributes only its first generally applicable branch
// and nothing is merged.
func (c *Compiler) CompileCitation(nodes []legacy.Node) types.Template {
	w := &walker{logger: c.logger, simple: true}
	occs := w.walk(nodes, defaultContext)
	out := make(types.Template, len(occs))
	for i, o := range occs {
		out[i] = o.comp
	}
	return out
}

// Compile runs a full compile with a default Compiler.
func Compile(nodes []legacy.Node) types.Template { return New().Compile(nodes) }

// CompileCitation runs a citation compile with a default Compiler.
func CompileCitation(nodes []legacy.Node) types.Template { return New().CompileCitation(nodes) }

// branchContext records which item kinds an occurrence applies to. A nil
// kinds slice is the default context.
type branchContext struct {
	kinds []string
}

var defaultContext = branchContext{}

func (b branchContext) isDefault() bool { return b.kinds == nil }

// narrow restricts b to guard. It reports false when no kind survives.
func (b branchContext) narrow(guard []string) (branchContext, bool) {
	if b.isDefault() {
		return branchContext{kinds: append([]string(nil), guard...)}, true
	}
	allowed := make(map[string]bool, len(b.kinds))
	for _, k := range b.kinds {
		allowed[k] = true
	}
	var kinds []string
	for _, k := range guard {
		if allowed[k] {
			kinds = append(kinds, k)
		}
	}
	return branchContext{kinds: kinds}, len(kinds) > 0
}

func (b branchContext) key() string {
	if b.isDefault() {
		return "*"
	}
	out := ""
	for _, k := range b.kinds {
		out += k + ","
	}
	return out
}

// occurrence is one compiled component together with the branch it came
// from and its position in source order.
type occurrence struct {
	comp  types.Component
	ctx   branchContext
	order int
}

type walker struct {
	logger *zap.Logger
	simple bool
	order  int
}

func (w *walker) next() int {
	w.order++
	return w.order
}

// walk compiles a sibling list. Literal text is folded into the prefix of
// the next compiled node, or the suffix of the last one when nothing
// follows. A label is held for the number that follows it.
func (w *walker) walk(nodes []legacy.Node, ctx branchContext) []occurrence {
	var out []occurrence
	pending := ""
	var label *legacy.Label
	for _, n := range nodes {
		switch n := n.(type) {
		case *legacy.Text:
			pending += n.Prefix + n.Value + n.Suffix
			continue
		case *legacy.Label:
			label = n
			continue
		}
		occs := w.node(n, ctx, label)
		label = nil
		if len(occs) == 0 {
			continue
		}
		if pending != "" {
			for _, o := range firstPerContext(occs) {
				prependPrefix(o.comp, pending)
			}
			pending = ""
		}
		out = append(out, occs...)
	}
	if pending != "" && len(out) > 0 {
		for _, o := range lastPerContext(out) {
			appendSuffix(o.comp, pending)
		}
	}
	return out
}

func (w *walker) node(n legacy.Node, ctx branchContext, label *legacy.Label) []occurrence {
	var comps []types.Component
	alternatives := false
	switch n := n.(type) {
	case *legacy.Names:
		comps = w.names(n)
	case *legacy.Date:
		comps = w.date(n)
	case *legacy.Variable:
		comps = w.variable(n.Name, n.Form, n.Formatting, ctx, label)
		alternatives = true
	case *legacy.Number:
		comps = w.variable(n.Variable, n.Form, n.Formatting, ctx, label)
	case *legacy.Term:
		comps = []types.Component{w.term(n)}
	case *legacy.Group:
		return w.group(n, ctx)
	case *legacy.Condition:
		return w.condition(n, ctx)
	default:
		w.logger.Debug("dropping legacy node", zap.String("type", typeName(n)))
	}
	out := make([]occurrence, 0, len(comps))
	order := 0
	for i, c := range comps {
		// Components of one variable are alternatives and share a position.
		if i == 0 || !alternatives {
			order = w.next()
		}
		out = append(out, occurrence{comp: c, ctx: ctx, order: order})
	}
	return out
}

// group flattens a group into its parent, or keeps it as a List when it
// is a small, delimited structural unit with no wrap of its own. A group
// whose affixes wrap a single child hands the wrap to that child; wrapping
// several children flattens with the literal affixes on the first and
// last of them.
func (w *walker) group(g *legacy.Group, ctx branchContext) []occurrence {
	sub := w.walk(g.Children, ctx)
	if len(sub) == 0 {
		return nil
	}
	prefix, suffix, wrap := SplitWrap(g.Prefix, g.Suffix)

	if wrap != types.WrapNone && positions(sub) == 1 && unwrapped(sub) {
		for _, o := range sub {
			b := o.comp.Base()
			moveToInner(b)
			b.Wrap = types.Ptr(wrap)
			setAffixes(b, prefix, suffix)
			applyFont(b, g.Formatting)
		}
		return sub
	}
	if wrap == types.WrapNone && w.keepsAsList(g, sub) {
		list := &types.ListComponent{Items: w.items(sub), Delimiter: g.Delimiter}
		list.Rendering = rendering(g.Formatting)
		return []occurrence{{comp: list, ctx: ctx, order: sub[0].order}}
	}

	if g.Delimiter != "" {
		for i := 1; i < len(sub); i++ {
			j := i - 1
			for j >= 0 && sub[j].order == sub[i].order {
				j--
			}
			if j < 0 {
				continue
			}
			if b := sub[i].comp.Base(); b.Prefix == nil && sub[i].ctx.key() == sub[j].ctx.key() {
				b.Prefix = types.Ptr(g.Delimiter)
			}
		}
	}
	if g.Prefix != "" {
		for _, o := range firstPerContext(sub) {
			prependPrefix(o.comp, g.Prefix)
		}
	}
	if g.Suffix != "" {
		for _, o := range lastPerContext(sub) {
			appendSuffix(o.comp, g.Suffix)
		}
	}
	for _, o := range sub {
		applyFont(o.comp.Base(), g.Formatting)
	}
	return sub
}

// keepsAsList reports whether a group survives as a nested List: two or
// three children joined by a non-blank delimiter, or a run of numbers
// such as volume(issue).
func (w *walker) keepsAsList(g *legacy.Group, sub []occurrence) bool {
	if n := positions(sub); n < 2 || n > 3 {
		return false
	}
	if trimmed(g.Delimiter) != "" {
		return true
	}
	for _, o := range sub {
		if _, ok := o.comp.(*types.NumberComponent); !ok {
			return false
		}
	}
	return true
}

// items builds the children of a List. The full compile merges them so
// that branch-specific children carry their own overrides.
func (w *walker) items(sub []occurrence) types.Template {
	if !w.simple {
		return merge(sub)
	}
	out := make(types.Template, len(sub))
	for i, o := range sub {
		out[i] = o.comp
	}
	return out
}

// condition contributes every branch in the full compile: type-guarded
// branches narrow the context, everything else inherits it. The citation
// compile keeps a single branch.
func (w *walker) condition(c *legacy.Condition, ctx branchContext) []occurrence {
	if w.simple {
		return w.walk(chooseBranch(c), ctx)
	}
	var out []occurrence
	for _, b := range append([]legacy.Branch{c.Then}, c.ElseIfs...) {
		bctx := ctx
		if b.TypeGuarded() {
			var ok bool
			if bctx, ok = ctx.narrow(b.Types); !ok {
				continue
			}
		}
		out = append(out, w.walk(b.Children, bctx)...)
	}
	return append(out, w.walk(c.Else, ctx)...)
}

// chooseBranch picks the citation branch: when the first branch singles
// out uncommon kinds, the first branch without that restriction wins;
// otherwise the first non-empty branch in order.
func chooseBranch(c *legacy.Condition) []legacy.Node {
	if c.Then.TypeGuarded() && allUncommon(c.Then.Types) {
		for _, b := range c.ElseIfs {
			if len(b.Children) > 0 && (!b.TypeGuarded() || !allUncommon(b.Types)) {
				return b.Children
			}
		}
		if len(c.Else) > 0 {
			return c.Else
		}
		return c.Then.Children
	}
	if len(c.Then.Children) > 0 {
		return c.Then.Children
	}
	for _, b := range c.ElseIfs {
		if len(b.Children) > 0 {
			return b.Children
		}
	}
	return c.Else
}

func allUncommon(kinds []string) bool {
	for _, k := range kinds {
		if !uncommonKinds[k] {
			return false
		}
	}
	return true
}

// firstPerContext returns the first occurrence of each context, with
// any alternatives sharing its position.
func firstPerContext(occs []occurrence) []occurrence {
	first := make(map[string]int)
	var out []occurrence
	for _, o := range occs {
		k := o.ctx.key()
		if pos, ok := first[k]; ok && pos != o.order {
			continue
		}
		first[k] = o.order
		out = append(out, o)
	}
	return out
}

func lastPerContext(occs []occurrence) []occurrence {
	last := make(map[string]int)
	var out []occurrence
	for i := len(occs) - 1; i >= 0; i-- {
		k := occs[i].ctx.key()
		if pos, ok := last[k]; ok && pos != occs[i].order {
			continue
		}
		last[k] = occs[i].order
		out = append(out, occs[i])
	}
	return out
}

// positions counts the distinct source positions in occs.
func positions(occs []occurrence) int {
	seen := make(map[int]bool)
	for _, o := range occs {
		seen[o.order] = true
	}
	return len(seen)
}

func unwrapped(occs []occurrence) bool {
	for _, o := range occs {
		if o.comp.Base().Wrap != nil {
			return false
		}
	}
	return true
}
