package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// emitLet lowers `{% let PATTERN = EXPR %}` / `{% let PATTERN %}`. A
// name already declared in the current Go block is rebound with `=`
// rather than redeclared with `:=`, since Go rejects a second `:=`
// whose entire left side is unchanged identifiers; a name new to this
// block gets a fresh declaration. Grounded on zipreport-miya/runtime's
// local-variable frame handling, retargeted from "store in a map at
// runtime" to "declare a Go local at generation time".
func (g *Generator) emitLet(node *ast.Let) error {
	name := g.bindingName(node.Pattern)
	ident := g.normalizeIdent(name)
	rebind := g.scopes.InCurrentScope(name)

	if node.Value == nil {
		if rebind {
			return fmt.Errorf("line %d: %q is already declared in this scope", node.Line(), name)
		}
		g.buf.WriteLine(fmt.Sprintf("var %s any", ident))
		g.scopes.Declare(name, Binding{Initialized: false})
		return nil
	}

	val, err := g.lowerExpr(node.Value)
	if err != nil {
		return err
	}

	op := ":="
	if rebind {
		op = "="
	}
	g.buf.WriteLine(fmt.Sprintf("%s %s %s", ident, op, val.Expr))
	g.scopes.Declare(name, Binding{Initialized: true})
	return nil
}
