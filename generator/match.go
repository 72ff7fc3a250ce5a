package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// emitMatch lowers `{% match %}{% when PATTERN [if guard] %}...{% endmatch %}`
// into a chain of if/else-if guards over the scrutinee. Go has no sum
// type to switch on, so a VariantTarget pattern becomes a type
// assertion against its path's last segment used as a Go type name
// (`Circle`, `Square`, ...): the template author's variant values are
// expected to share a common marker interface, per SPEC_FULL.md's
// host-language mapping notes for `match`.
func (g *Generator) emitMatch(node *ast.Match) error {
	scrutinee, err := g.lowerExpr(node.Scrutinee)
	if err != nil {
		return err
	}

	// Only one arm ever matches at render time, so — as with if — the
	// construct's own size-hint contribution is the median across
	// arms, not their sum.
	var armHints []int
	for i, arm := range node.Arms {
		keyword := "if"
		if i > 0 {
			keyword = "} else if"
		}

		g.scopes.Push()
		cond, err := g.emitMatchGuard(scrutinee.Expr, arm)
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
	g.sizeHint += medianInt(armHints)
	return nil
}

func (g *Generator) emitMatchGuard(scrutineeExpr string, arm ast.MatchArm) (string, error) {
	var cond string
	switch p := arm.Pattern.(type) {
	case ast.WildcardTarget:
		cond = "true"
	case ast.NameTarget:
		g.scopes.Declare(p.Name, Binding{Initialized: true})
		cond = fmt.Sprintf("%s := %s; true", g.normalizeIdent(p.Name), scrutineeExpr)
	case ast.LiteralTarget:
		lit, err := g.lowerLiteral(p.Value)
		if err != nil {
			return "", err
		}
		cond = fmt.Sprintf("%s == %s", scrutineeExpr, lit.Expr)
	case ast.VariantTarget:
		if len(p.Path) == 0 {
			return "", fmt.Errorf("match pattern has an empty path")
		}
		typeName := p.Path[len(p.Path)-1]
		name := "_"
		if len(p.Binders) == 1 {
			if nt, ok := p.Binders[0].(ast.NameTarget); ok {
				name = nt.Name
			}
		}
		g.scopes.Declare(name, Binding{Initialized: true})
		cond = fmt.Sprintf("%s, ok := (%s).(%s); ok", g.normalizeIdent(name), scrutineeExpr, typeName)
	default:
		return "", fmt.Errorf("unsupported match pattern %T", arm.Pattern)
	}

	if arm.Guard != nil {
		guard, err := g.lowerExpr(arm.Guard)
		if err != nil {
			return "", err
		}
		cond = cond + " && " + guard.Expr
	}
	return cond, nil
}
