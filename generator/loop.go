package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// emitFor lowers `{% for v[, v2] in iterable [if cond] %}...{% else %}...{% endfor %}`.
// A Range iterable with a single loop variable is special-cased into a
// native Go numeric for loop (spec.md's borrow/move heuristic for
// `for` becomes, in Go, "avoid materializing a slice when a counted
// loop already expresses the same thing"); every other iterable goes
// through a range clause with an explicit `loop` value tracked
// alongside it. Grounded on the per-iteration bookkeeping in
// zipreport-miya/runtime/evaluator.go's for-loop evaluation.
func (g *Generator) emitFor(node *ast.For) error {
	g.scopes.Push()
	defer g.scopes.Pop()

	if rng, ok := node.Iterable.(*ast.Range); ok && len(node.Vars) == 1 {
		return g.emitForRange(node, rng)
	}
	return g.emitForEach(node)
}

func (g *Generator) emitForRange(node *ast.For, rng *ast.Range) error {
	from, err := g.lowerExpr(rng.From)
	if err != nil {
		return err
	}
	to, err := g.lowerExpr(rng.To)
	if err != nil {
		return err
	}
	op := "<"
	extra := ""
	if rng.Inclusive {
		op = "<="
		extra = " + 1"
	}

	idx := g.normalizeIdent(node.Vars[0])
	g.scopes.Declare(node.Vars[0], Binding{Initialized: true})
	lo, hi := from.Expr, to.Expr

	g.use("runtime")
	total, err := g.forRangeTotal(node, idx, lo, hi, op, extra)
	if err != nil {
		return err
	}

	ran := g.newTemp("loopRan")
	filteredIdx := g.newTemp("loopFilteredIdx")
	g.buf.WriteLine(fmt.Sprintf("%s := false", ran))
	g.buf.WriteLine(fmt.Sprintf("%s := 0", filteredIdx))
	g.buf.WriteLine(fmt.Sprintf("for %s := %s; %s %s %s; %s++ {", idx, lo, idx, op, hi, idx))
	g.buf.Indent()
	bodyHint, err := g.emitForBody(node, ran, filteredIdx, total)
	g.buf.Dedent()
	g.buf.WriteLine("}")
	if err != nil {
		return err
	}
	elseHint, err := g.emitForElse(node, ran)
	g.sizeHint += (bodyHint*3 + elseHint) / 2
	return err
}

// forRangeTotal computes the loop's Len: the raw range size when there
// is no filter clause (hi-lo, +1 for an inclusive range), or — when a
// filter clause is present — a dedicated pre-pass counting loop, since
// the filtered length can't be known from the bounds alone (spec.md's
// `.filter(...)` iterator-adaptor semantics, which this Go rendition
// of the loop approximates with an explicit count-then-iterate instead
// of a lazy iterator).
func (g *Generator) forRangeTotal(node *ast.For, idx, lo, hi, op, extra string) (string, error) {
	if node.FilterCond == nil {
		return fmt.Sprintf("((%s) - (%s)%s)", hi, lo, extra), nil
	}
	cond, err := g.lowerExpr(node.FilterCond)
	if err != nil {
		return "", err
	}
	total := g.newTemp("loopTotal")
	g.buf.WriteLine(fmt.Sprintf("%s := 0", total))
	g.buf.WriteLine(fmt.Sprintf("for %s := %s; %s %s %s; %s++ {", idx, lo, idx, op, hi, idx))
	g.buf.Indent()
	g.buf.WriteLine(fmt.Sprintf("if %s {", cond.Expr))
	g.buf.Indent()
	g.buf.WriteLine(fmt.Sprintf("%s++", total))
	g.buf.Dedent()
	g.buf.WriteLine("}")
	g.buf.Dedent()
	g.buf.WriteLine("}")
	return total, nil
}

func (g *Generator) emitForEach(node *ast.For) error {
	iterable, err := g.lowerExpr(node.Iterable)
	if err != nil {
		return err
	}

	items := g.newTemp("loopItems")
	g.buf.WriteLine(fmt.Sprintf("%s := %s", items, iterable.Expr))

	keyVar := "_"
	valVar := g.newTemp("loopVal")
	switch len(node.Vars) {
	case 1:
		valVar = g.normalizeIdent(node.Vars[0])
		g.scopes.Declare(node.Vars[0], Binding{Initialized: true})
	case 2:
		keyVar = g.normalizeIdent(node.Vars[0])
		valVar = g.normalizeIdent(node.Vars[1])
		g.scopes.Declare(node.Vars[0], Binding{Initialized: true})
		g.scopes.Declare(node.Vars[1], Binding{Initialized: true})
	}

	g.use("runtime")
	total, err := g.forEachTotal(node, items, keyVar, valVar)
	if err != nil {
		return err
	}

	ran := g.newTemp("loopRan")
	filteredIdx := g.newTemp("loopFilteredIdx")
	g.buf.WriteLine(fmt.Sprintf("%s := false", ran))
	g.buf.WriteLine(fmt.Sprintf("%s := 0", filteredIdx))
	g.buf.WriteLine(fmt.Sprintf("for %s, %s := range %s {", keyVar, valVar, items))
	g.buf.Indent()
	bodyHint, err := g.emitForBody(node, ran, filteredIdx, total)
	g.buf.Dedent()
	g.buf.WriteLine("}")
	if err != nil {
		return err
	}
	elseHint, err := g.emitForElse(node, ran)
	g.sizeHint += (bodyHint*3 + elseHint) / 2
	return err
}

// forEachTotal mirrors forRangeTotal for the generic range-over-items
// loop: `len(items)` when unfiltered, otherwise a pre-pass that counts
// how many elements pass the filter clause.
func (g *Generator) forEachTotal(node *ast.For, items, keyVar, valVar string) (string, error) {
	if node.FilterCond == nil {
		return fmt.Sprintf("len(%s)", items), nil
	}
	cond, err := g.lowerExpr(node.FilterCond)
	if err != nil {
		return "", err
	}
	total := g.newTemp("loopTotal")
	g.buf.WriteLine(fmt.Sprintf("%s := 0", total))
	g.buf.WriteLine(fmt.Sprintf("for %s, %s := range %s {", keyVar, valVar, items))
	g.buf.Indent()
	g.buf.WriteLine(fmt.Sprintf("if %s {", cond.Expr))
	g.buf.Indent()
	g.buf.WriteLine(fmt.Sprintf("%s++", total))
	g.buf.Dedent()
	g.buf.WriteLine("}")
	g.buf.Dedent()
	g.buf.WriteLine("}")
	return total, nil
}

// emitForBody wraps the loop body in its `if cond` guard when the for
// clause carries one (`for x in xs if x.Active`), only counting an
// iteration toward ran/loop.Index0/loop.Len once the guard passes —
// an element the filter rejects must not advance the filtered index,
// flip the else-arm flag, or otherwise be visible to loop.* at all.
// Returns the body's own size-hint contribution (captured in isolation
// so the caller can combine it via spec.md's (body·3+else)/2 formula
// instead of a flat sum).
func (g *Generator) emitForBody(node *ast.For, ranFlag, filteredIdx, total string) (int, error) {
	if node.FilterCond == nil {
		g.buf.WriteLine(fmt.Sprintf("%s = true", ranFlag))
		g.buf.WriteLine(fmt.Sprintf("loop := runtime.Loop{Index0: %s, Len: %s}", filteredIdx, total))
		hint, err := g.captureHint(func() error {
			err := g.walkNodes(node.Body, levelNested)
			g.flushQueue()
			return err
		})
		g.buf.WriteLine(fmt.Sprintf("%s++", filteredIdx))
		return hint, err
	}
	cond, err := g.lowerExpr(node.FilterCond)
	if err != nil {
		return 0, err
	}
	g.buf.WriteLine(fmt.Sprintf("if %s {", cond.Expr))
	g.buf.Indent()
	g.buf.WriteLine(fmt.Sprintf("%s = true", ranFlag))
	g.buf.WriteLine(fmt.Sprintf("loop := runtime.Loop{Index0: %s, Len: %s}", filteredIdx, total))
	hint, err := g.captureHint(func() error {
		err := g.walkNodes(node.Body, levelNested)
		g.flushQueue()
		return err
	})
	g.buf.WriteLine(fmt.Sprintf("%s++", filteredIdx))
	g.buf.Dedent()
	g.buf.WriteLine("}")
	return hint, err
}

// emitForElse emits the `{% else %}` body guarded on the loop never
// having iterated, returning its own captured size-hint contribution
// (0 when there is no else arm).
func (g *Generator) emitForElse(node *ast.For, ranFlag string) (int, error) {
	if len(node.Else) == 0 {
		return 0, nil
	}
	g.buf.WriteLine(fmt.Sprintf("if !%s {", ranFlag))
	g.buf.Indent()
	hint, err := g.captureHint(func() error {
		err := g.walkNodes(node.Else, levelNested)
		g.flushQueue()
		return err
	})
	g.buf.Dedent()
	g.buf.WriteLine("}")
	return hint, err
}
