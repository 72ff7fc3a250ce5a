package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// emitIf lowers `{% if %}{% elif %}...{% else %}{% endif %}` into a Go
// if/else-if/else chain. Each arm gets its own pushed/popped scope so
// an `if let` binding never leaks past its own arm. Since only one arm
// ever runs at render time, the construct's own size-hint contribution
// is the median of every arm's hint (an implicit zero standing in for
// a missing else), not their sum.
func (g *Generator) emitIf(node *ast.If) error {
	hasElse := false
	var armHints []int
	for i, arm := range node.Arms {
		keyword := "if"
		if i > 0 {
			keyword = "} else if"
		}

		if arm.Cond == nil {
			hasElse = true
			g.buf.WriteLine("} else {")
			g.buf.Indent()
			g.scopes.Push()
			hint, err := g.captureHint(func() error {
				err := g.walkNodes(arm.Body, levelNested)
				g.flushQueue()
				return err
			})
			g.scopes.Pop()
			g.buf.Dedent()
			if err != nil {
				return err
			}
			armHints = append(armHints, hint)
			continue
		}

		g.scopes.Push()
		cond, err := g.emitCondition(arm)
		if err != nil {
			g.scopes.Pop()
			return err
		}
		g.buf.WriteLine(fmt.Sprintf("%s %s {", keyword, cond))
		g.buf.Indent()
		hint, err := g.captureHint(func() error {
			err := g.walkNodes(arm.Body, levelNested)
			g.flushQueue()
			return err
		})
		g.buf.Dedent()
		g.scopes.Pop()
		if err != nil {
			return err
		}
		armHints = append(armHints, hint)
	}
	g.buf.WriteLine("}")
	if !hasElse {
		armHints = append(armHints, 0)
	}
	g.sizeHint += medianInt(armHints)
	return nil
}

// emitCondition lowers one if-arm's test: a plain boolean expression,
// or the `if let PATTERN = expr` binding form.
func (g *Generator) emitCondition(arm ast.IfArm) (string, error) {
	if arm.Pattern != nil {
		return g.emitLetCondition(arm.Pattern, arm.Cond)
	}
	cond, err := g.lowerExpr(arm.Cond)
	if err != nil {
		return "", err
	}
	return cond.Expr, nil
}

// emitLetCondition lowers `if let PATTERN = EXPR`. Go has no sum type
// to match against, so the generator adopts the common Go "optional
// value" idiom: bind the pattern's single name to EXPR and test it for
// non-nil, per SPEC_FULL.md's host-language mapping notes. Templates
// using `if let` are expected to bind pointer- or interface-typed
// values for this reason.
func (g *Generator) emitLetCondition(pattern ast.Target, valueExpr ast.Expr) (string, error) {
	val, err := g.lowerExpr(valueExpr)
	if err != nil {
		return "", err
	}
	name := g.bindingName(pattern)
	g.scopes.Declare(name, Binding{Initialized: true})
	ident := g.normalizeIdent(name)
	return fmt.Sprintf("%s := %s; %s != nil", ident, val.Expr, ident), nil
}

// bindingName extracts the single identifier a `let`/`if let` pattern
// introduces. A variant pattern's lone binder name is used; its path
// (`Some`, `Ok`, ...) documents intent only, since Go has nothing to
// dispatch on at that level.
func (g *Generator) bindingName(pattern ast.Target) string {
	switch p := pattern.(type) {
	case ast.NameTarget:
		return p.Name
	case ast.VariantTarget:
		if len(p.Binders) == 1 {
			if nt, ok := p.Binders[0].(ast.NameTarget); ok {
				return nt.Name
			}
		}
	}
	return "_"
}
