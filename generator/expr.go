package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// lowered is the result of lowering one ast.Expr into host (Go)
// source: the expression text, whether it is already escape-safe
// (produced by `safe`, an escaping filter, or a type the generator
// knows not to re-escape), and whether it is pure enough to dedupe
// across repeated appearances within one writable-queue flush.
type lowered struct {
	Expr      string
	Wrapped   bool
	Cacheable bool
}

// lowerExpr is the C4 entry point: recursively emit one template
// expression as a host expression. Grounded on
// zipreport-miya/runtime/evaluator.go's expression-evaluation switch,
// retargeted from "evaluate now" to "emit code that evaluates later".
func (g *Generator) lowerExpr(e ast.Expr) (lowered, error) {
	switch n := e.(type) {
	case *ast.Literal:
		return g.lowerLiteral(n)
	case *ast.Var:
		return g.lowerVar(n), nil
	case *ast.LoopAttr:
		return g.lowerLoopAttr(n), nil
	case *ast.Attr:
		return g.lowerAttr(n)
	case *ast.Index:
		return g.lowerIndex(n)
	case *ast.Call:
		return g.lowerCall(n)
	case *ast.Filtered:
		return g.lowerFiltered(n)
	case *ast.BinOp:
		return g.lowerBinOp(n)
	case *ast.UnOp:
		return g.lowerUnOp(n)
	case *ast.Range:
		return g.lowerRange(n)
	case *ast.Tuple:
		return g.lowerTuple(n.Elems, n.Line(), n.Column())
	case *ast.ArrayLit:
		return g.lowerTuple(n.Elems, n.Line(), n.Column())
	case *ast.Group:
		inner, err := g.lowerExpr(n.Inner)
		if err != nil {
			return lowered{}, err
		}
		return lowered{Expr: "(" + inner.Expr + ")", Wrapped: inner.Wrapped, Cacheable: inner.Cacheable}, nil
	case *ast.Super:
		return lowered{}, fmt.Errorf("line %d: super() is only valid as a whole interpolation inside a block body", n.Line())
	default:
		return lowered{}, fmt.Errorf("line %d: cannot lower expression of type %T", e.Line(), e)
	}
}

func (g *Generator) lowerLiteral(n *ast.Literal) (lowered, error) {
	switch n.Kind {
	case "string":
		return lowered{Expr: goStringLit(n.Str), Cacheable: true}, nil
	case "int", "float":
		return lowered{Expr: n.Raw, Cacheable: true}, nil
	case "bool":
		if n.Bool {
			return lowered{Expr: "true", Cacheable: true}, nil
		}
		return lowered{Expr: "false", Cacheable: true}, nil
	default:
		return lowered{}, fmt.Errorf("line %d: unknown literal kind %q", n.Line(), n.Kind)
	}
}

// lowerVar resolves a bare identifier through the scope chain,
// falling back to a field access on the receiver when no local
// binding shadows it (spec.md §4.11's bare-identifier resolution
// order).
func (g *Generator) lowerVar(n *ast.Var) lowered {
	if n.Name == "self" {
		return lowered{Expr: "self", Cacheable: true}
	}
	if _, ok := g.scopes.Lookup(n.Name); ok {
		return lowered{Expr: g.normalizeIdent(g.scopes.Resolve(n.Name)), Cacheable: true}
	}
	return lowered{Expr: "self." + g.normalizeIdent(n.Name), Cacheable: true}
}

func (g *Generator) lowerLoopAttr(n *ast.LoopAttr) lowered {
	switch n.Attr {
	case "index":
		return lowered{Expr: "loop.Index()", Cacheable: false}
	case "index0":
		return lowered{Expr: "loop.Index0", Cacheable: true}
	case "first":
		return lowered{Expr: "loop.First()", Cacheable: false}
	case "last":
		return lowered{Expr: "loop.Last()", Cacheable: false}
	default:
		// "cycle" and any other loop.* reach here only as the callee of
		// a Call node; lowerCall special-cases it before ever calling
		// lowerExpr on a bare LoopAttr("cycle").
		return lowered{Expr: "loop." + n.Attr, Cacheable: false}
	}
}

func (g *Generator) lowerAttr(n *ast.Attr) (lowered, error) {
	obj, err := g.lowerExpr(n.Obj)
	if err != nil {
		return lowered{}, err
	}
	return lowered{Expr: obj.Expr + "." + g.normalizeIdent(n.Name), Cacheable: obj.Cacheable}, nil
}

// lowerIndex emits `obj[key]`. spec.md's Rust-derived "emit &obj[key]"
// heuristic does not translate: Go forbids taking the address of a map
// index expression, and slice/array indexing already yields an
// addressable element when one is needed, so the borrow is dropped
// here per SPEC_FULL.md's host-language mapping notes.
func (g *Generator) lowerIndex(n *ast.Index) (lowered, error) {
	obj, err := g.lowerExpr(n.Obj)
	if err != nil {
		return lowered{}, err
	}
	key, err := g.lowerExpr(n.Key)
	if err != nil {
		return lowered{}, err
	}
	return lowered{Expr: obj.Expr + "[" + key.Expr + "]", Cacheable: obj.Cacheable && key.Cacheable}, nil
}

func (g *Generator) lowerCall(n *ast.Call) (lowered, error) {
	if la, ok := n.Callee.(*ast.LoopAttr); ok && la.Attr == "cycle" {
		args, err := g.lowerArgExprs(n.Args)
		if err != nil {
			return lowered{}, err
		}
		return lowered{Expr: "loop.Cycle(" + joinExprs(args) + ")"}, nil
	}

	callee, err := g.lowerExpr(n.Callee)
	if err != nil {
		return lowered{}, err
	}
	args, err := g.lowerArgExprs(n.Args)
	if err != nil {
		return lowered{}, err
	}
	return lowered{Expr: callee.Expr + "(" + joinExprs(args) + ")"}, nil
}

func (g *Generator) lowerArgExprs(exprs []ast.Expr) ([]lowered, error) {
	out := make([]lowered, len(exprs))
	for i, e := range exprs {
		l, err := g.lowerExpr(e)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}

func joinExprs(ls []lowered) string {
	s := ""
	for i, l := range ls {
		if i > 0 {
			s += ", "
		}
		s += l.Expr
	}
	return s
}

func (g *Generator) lowerBinOp(n *ast.BinOp) (lowered, error) {
	left, err := g.lowerExpr(n.Left)
	if err != nil {
		return lowered{}, err
	}
	right, err := g.lowerExpr(n.Right)
	if err != nil {
		return lowered{}, err
	}
	op := n.Op
	switch op {
	case "and":
		op = "&&"
	case "or":
		op = "||"
	}
	return lowered{
		Expr:      "(" + left.Expr + " " + op + " " + right.Expr + ")",
		Cacheable: left.Cacheable && right.Cacheable,
	}, nil
}

func (g *Generator) lowerUnOp(n *ast.UnOp) (lowered, error) {
	operand, err := g.lowerExpr(n.Operand)
	if err != nil {
		return lowered{}, err
	}
	op := n.Op
	if op == "not" {
		op = "!"
	}
	return lowered{Expr: op + operand.Expr, Cacheable: operand.Cacheable}, nil
}

// lowerRange materializes a range as a slice, for use outside a `for`
// loop's direct iterable position. The loop emitter (C8) iterates a
// Range natively when the loop has one variable; a loop with several
// variables lowers its Range iterable through this function.
func (g *Generator) lowerRange(n *ast.Range) (lowered, error) {
	from, err := g.lowerExpr(n.From)
	if err != nil {
		return lowered{}, err
	}
	to, err := g.lowerExpr(n.To)
	if err != nil {
		return lowered{}, err
	}
	incl := "false"
	if n.Inclusive {
		incl = "true"
	}
	g.use("runtime")
	return lowered{Expr: fmt.Sprintf("runtime.IntRange(%s, %s, %s)", from.Expr, to.Expr, incl)}, nil
}

// lowerTuple renders a tuple or array literal as a Go slice of `any`:
// Go has no tuple type, so SPEC_FULL.md's mapping notes adopt `[]any`
// as the uniform representation for both forms.
func (g *Generator) lowerTuple(elems []ast.Expr, line, col int) (lowered, error) {
	ls, err := g.lowerArgExprs(elems)
	if err != nil {
		return lowered{}, err
	}
	cacheable := true
	for _, l := range ls {
		cacheable = cacheable && l.Cacheable
	}
	return lowered{Expr: "[]any{" + joinExprs(ls) + "}", Cacheable: cacheable}, nil
}
