package generator

import (
	"fmt"
	"strings"

	"github.com/zipreport/tmplforge/ast"
)

// walkLevel distinguishes the structural contexts invariant 6 depends
// on: Top (a template's own top level, where extends/import/macro
// definitions are legal), and Nested (if/match/for/call/include/
// filter-block bodies, where they are not). Block definitions are
// accepted at either level.
type walkLevel int

const (
	levelTop walkLevel = iota
	levelNested
)

// walkNodes is the C7 entry point: it walks one body's statement list,
// coalescing literal/interpolation runs through the writable queue (C3)
// and dispatching control-flow nodes to the C8 emitters, accumulating
// size_hint as it goes. Grounded on zipreport-miya/parser/ast.go's
// String() tree walkers and zipreport-miya/runtime/evaluator.go's
// statement-execution switch, retargeted to emit code instead of
// executing it.
func (g *Generator) walkNodes(nodes []ast.Node, level walkLevel) error {
	for i, n := range nodes {
		switch node := n.(type) {
		case *ast.Lit:
			g.queueLit(node, nodes, i)
		case *ast.Interp:
			if err := g.queueInterp(node); err != nil {
				return err
			}
		case *ast.Comment:
			// No output, no code; its Ws already participated in
			// trimming neighboring Lit nodes via nodeBoundaryWs.
		case *ast.Raw:
			g.queue.PushLit(node.Content)
		case *ast.If:
			if err := g.flushAnd(func() error { return g.emitIf(node) }); err != nil {
				return err
			}
		case *ast.Match:
			if err := g.flushAnd(func() error { return g.emitMatch(node) }); err != nil {
				return err
			}
		case *ast.For:
			if err := g.flushAnd(func() error { return g.emitFor(node) }); err != nil {
				return err
			}
		case *ast.Break:
			if err := g.flushAnd(func() error { g.buf.WriteLine("break"); return nil }); err != nil {
				return err
			}
		case *ast.Continue:
			if err := g.flushAnd(func() error { g.buf.WriteLine("continue"); return nil }); err != nil {
				return err
			}
		case *ast.Let:
			if err := g.flushAnd(func() error { return g.emitLet(node) }); err != nil {
				return err
			}
		case *ast.BlockDef:
			if err := g.flushAnd(func() error { return g.emitBlockRef(node) }); err != nil {
				return err
			}
		case *ast.Extends:
			if level != levelTop {
				return fmt.Errorf("line %d: extends is only legal at the top level of a template", node.Line())
			}
			// Resolved ahead of generation by the heritage package.
		case *ast.Include:
			if err := g.flushAnd(func() error { return g.emitInclude(node) }); err != nil {
				return err
			}
		case *ast.MacroDef:
			if level != levelTop {
				return fmt.Errorf("line %d: macro is only legal at the top level of a template", node.Line())
			}
			// A definition emits nothing here; emitCall inlines the
			// macro's body at each call site.
		case *ast.Import:
			if level != levelTop {
				return fmt.Errorf("line %d: import is only legal at the top level of a template", node.Line())
			}
			// Resolved ahead of generation; contributes no code here.
		case *ast.Call:
			if err := g.flushAnd(func() error { return g.emitCall(node) }); err != nil {
				return err
			}
		case *ast.FilterBlock:
			if err := g.flushAnd(func() error { return g.emitFilterBlock(node) }); err != nil {
				return err
			}
		default:
			return fmt.Errorf("line %d: cannot lower node of type %T", n.Line(), n)
		}
	}
	return nil
}

// flushAnd flushes the pending writable queue — a control-flow
// boundary — before running fn, which emits the construct itself.
func (g *Generator) flushAnd(fn func() error) error {
	g.flushQueue()
	return fn()
}

// flushQueue compiles and writes the pending queue, if non-empty.
func (g *Generator) flushQueue() {
	stmt, hint := g.queue.Compile()
	if stmt == "" {
		return
	}
	if strings.Contains(stmt, "fmt.Fprintf") {
		g.use("fmt")
	} else {
		g.use("io")
	}
	g.buf.WriteLines(stmt)
	g.sizeHint += hint
}

func (g *Generator) queueLit(node *ast.Lit, siblings []ast.Node, idx int) {
	text := node.Content
	if idx > 0 {
		_, suffix := nodeBoundaryWs(siblings[idx-1])
		text = g.ws.trimLeading(text, suffix)
	}
	if idx < len(siblings)-1 {
		prefix, _ := nodeBoundaryWs(siblings[idx+1])
		text = g.ws.trimTrailing(text, prefix)
	}
	g.queue.PushLit(text)
}

// queueInterp lowers one `{{ expr | filters }}` interpolation and
// pushes its final, escape-resolved form onto the writable queue.
func (g *Generator) queueInterp(node *ast.Interp) error {
	if _, ok := node.Expr.(*ast.Super); ok {
		if len(node.Filters) > 0 {
			return fmt.Errorf("line %d: super() cannot be combined with filters", node.Line())
		}
		return g.flushAnd(func() error { return g.emitSuper(node.Line()) })
	}
	if call, ok := node.Expr.(*ast.Call); ok {
		if v, ok := call.Callee.(*ast.Var); ok && v.Name == "caller" && len(call.Args) == 0 {
			if len(node.Filters) > 0 {
				return fmt.Errorf("line %d: caller() cannot be combined with filters", node.Line())
			}
			return g.flushAnd(func() error { return g.emitCaller(node.Line()) })
		}
	}

	base, err := g.lowerExpr(node.Expr)
	if err != nil {
		return err
	}
	result, err := g.applyFilterChain(base, node.Filters)
	if err != nil {
		return err
	}

	if result.Wrapped {
		g.queue.PushExpr(g.stringify(result), result.Cacheable, result.Expr)
		return nil
	}
	g.use("runtime")
	escaped := fmt.Sprintf("%s.Escape(%s)", g.input.EscaperPath, g.stringify(result))
	g.queue.PushExpr(escaped, result.Cacheable, escaped)
	return nil
}
