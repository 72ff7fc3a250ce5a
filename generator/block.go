package generator

import "github.com/zipreport/tmplforge/ast"

// superFrame tracks which block name and inheritance generation the
// generator is currently inlining, so a `super()` interpolation knows
// which ancestor body to splice in next.
type superFrame struct {
	name string
	gen  int
}

// emitBlockRef substitutes a `{% block name %}...{% endblock %}`
// reference encountered while walking a template's structural skeleton
// for the most-derived definition of that block name, per the
// heritage map (spec.md §4.8): a base template's own block body is
// only ever used when no descendant overrides it. Grounded on
// zipreport-miya/inheritance/inheritance.go's "child overrides parent"
// merge, restructured for codegen: rather than substituting nodes
// before execution, the generator inlines the winning generation's
// body directly into the render method at this position.
func (g *Generator) emitBlockRef(node *ast.BlockDef) error {
	if g.filterDepth > 0 {
		return lineErr(node.Line(), "block %q is not allowed inside a filter block", node.Name)
	}
	for _, f := range g.superStack {
		if f.name == node.Name {
			return lineErr(node.Line(), "block %q recursively contains a block of the same name", node.Name)
		}
	}

	chain := g.heritage.Blocks[node.Name]
	if len(chain) == 0 {
		return g.emitBlockBody(node.Name, -1, g.ctx, node.Body)
	}
	return g.emitBlockBody(node.Name, 0, chain[0].Ctx, chain[0].Def.Body)
}

// emitBlockBody walks one generation's body for block name. When the
// generator is compiling in "render only this block" mode (spec.md
// §4.8, §8 property 7), output outside the selected block is
// suppressed: Discard flips off only for the duration of that one
// block's body, regardless of how deeply nested inside the skeleton
// it is.
func (g *Generator) emitBlockBody(name string, gen int, ctx *ast.Context, body []ast.Node) error {
	callerCtx := g.ctx
	g.ctx = ctx
	g.superStack = append(g.superStack, superFrame{name: name, gen: gen})

	selected := g.input.OnlyBlock != "" && g.input.OnlyBlock == name
	prevDiscard := g.buf.Discard
	if selected {
		g.buf.Discard = false
	}
	err := g.walkNodes(body, levelNested)
	if selected {
		g.flushQueue()
		g.buf.Discard = prevDiscard
	}

	g.superStack = g.superStack[:len(g.superStack)-1]
	g.ctx = callerCtx
	return err
}

// emitSuper inlines the next ancestor's definition of the block
// currently being rendered, resolving one generation per call so a
// chain of nested `super()` calls walks toward the base one step at a
// time (spec.md §4.8).
func (g *Generator) emitSuper(line int) error {
	if g.filterDepth > 0 {
		return lineErr(line, "super() is not allowed inside a filter block")
	}
	if len(g.superStack) == 0 {
		return lineErr(line, "super() used outside of a block body")
	}
	top := len(g.superStack) - 1
	frame := g.superStack[top]
	gen, ok := g.heritage.Super(frame.name, frame.gen)
	if !ok {
		return lineErr(line, "super() has no ancestor definition of block %q to resolve to", frame.name)
	}
	g.superStack[top] = superFrame{name: frame.name, gen: frame.gen + 1}
	callerCtx := g.ctx
	g.ctx = gen.Ctx
	err := g.walkNodes(gen.Def.Body, levelNested)
	g.ctx = callerCtx
	g.superStack[top] = frame
	return err
}
