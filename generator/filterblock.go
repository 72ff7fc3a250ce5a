package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// emitFilterBlock lowers `{% filter name(args) %}...{% endfilter %}`:
// the body's output is captured into a buffer instead of the
// template's real writer, then run through the filter chain before
// being written out. The capture works by shadowing the identifier
// `w` inside a dedicated Go block with a *strings.Builder — every
// write statement the rest of the generator emits already hardcodes
// the name `w`, so nothing downstream needs to know whether it is
// writing to the real output or a filter block's scratch buffer.
func (g *Generator) emitFilterBlock(node *ast.FilterBlock) error {
	buf := g.newTemp("fbuf")
	g.use("strings")
	g.buf.WriteLine(fmt.Sprintf("var %s strings.Builder", buf))
	g.buf.WriteLine("{")
	g.buf.Indent()
	g.buf.WriteLine(fmt.Sprintf("w := &%s", buf))
	g.filterDepth++
	err := g.walkNodes(node.Body, levelNested)
	g.filterDepth--
	g.flushQueue()
	g.buf.Dedent()
	g.buf.WriteLine("}")
	if err != nil {
		return err
	}

	captured := lowered{Expr: buf + ".String()", Wrapped: false, Cacheable: false}
	result, err := g.applyFilterChain(captured, node.Filters)
	if err != nil {
		return err
	}

	final := result.Expr
	if !result.Wrapped {
		g.use("runtime")
		final = fmt.Sprintf("%s.Escape(%s)", g.input.EscaperPath, g.stringify(result))
	}
	g.queue.PushExpr(final, false, "")
	return nil
}
