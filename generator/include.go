package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// emitInclude lowers `{% include "path" %}`. Since this is a
// compile-time generator, the included template must be resolvable to
// a path at generation time; a non-literal target would mean picking
// which Go code to emit without knowing which template it renders,
// so a non-literal target is rejected with an error. The included body is inlined under a child scope so it
// can see, but not mutate, the including template's bindings — the
// same relationship zipreport-miya's sub-template rendering gives a
// nested Context.
func (g *Generator) emitInclude(node *ast.Include) error {
	lit, ok := node.Target.(*ast.Literal)
	if !ok || lit.Kind != "string" {
		return fmt.Errorf("line %d: include target must be a string literal, resolved at compile time", node.Line())
	}

	included, err := g.finder.LoadRelative(lit.Str, g.ctx.Path)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line(), err)
	}

	callerCtx, callerScope := g.ctx, g.scopes
	g.buf.WriteLine("{")
	g.buf.Indent()
	g.ctx = included
	g.scopes = NewChildScopeChain(callerScope)
	err = g.walkNodes(included.Nodes, levelTop)
	g.flushQueue()
	g.ctx, g.scopes = callerCtx, callerScope
	g.buf.Dedent()
	g.buf.WriteLine("}")
	return err
}
