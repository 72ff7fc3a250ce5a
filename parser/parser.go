// Package parser turns a lexer.Token stream into an ast.Context: the
// collaborator spec.md's scope note calls the "template lexer/parser".
// Adapted in shape from zipreport-miya/parser/parser.go's
// recursive-descent structure (one parse* method per node kind,
// precedence-climbing expression parsing) but producing ast.Node
// values rather than miya's directly-executable node tree.
package parser

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
	"github.com/zipreport/tmplforge/lexer"
)

// Error is a parse failure located at a source position.
type Error struct {
	Path    string
	Line    int
	Col     int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Col, e.Message)
}

type parser struct {
	path string
	lex  *lexer.Lexer
	tok  lexer.Token
	ctx  *ast.Context
}

// Parse lexes and parses src (the contents of the template at path)
// into an ast.Context.
func Parse(path, src string) (*ast.Context, error) {
	p := &parser{path: path, lex: lexer.New(src), ctx: ast.NewContext(path)}
	p.next()
	nodes, err := p.parseNodes(nil)
	if err != nil {
		return nil, err
	}
	p.ctx.Nodes = nodes
	return p.ctx, nil
}

func (p *parser) next() {
	p.tok = p.lex.Next()
}

func (p *parser) errf(format string, args ...interface{}) error {
	return &Error{Path: p.path, Line: p.tok.Line, Col: p.tok.Col, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(k lexer.Kind, what string) (lexer.Token, error) {
	if p.tok.Kind != k {
		return lexer.Token{}, p.errf("expected %s, found %q", what, p.tok.Text)
	}
	t := p.tok
	p.next()
	return t, nil
}

// atBlockKeyword reports whether the parser is sitting at `{% kw` for
// one of the given keywords (without consuming anything), used to
// decide when a node body has ended.
func (p *parser) atBlockKeyword(kws ...string) bool {
	if p.tok.Kind != lexer.BlockStart {
		return false
	}
	save := *p.lex
	savedTok := p.tok
	p.next()
	ok := p.tok.Kind == lexer.Ident
	kw := p.tok.Text
	*p.lex = save
	p.tok = savedTok
	if !ok {
		return false
	}
	for _, k := range kws {
		if kw == k {
			return true
		}
	}
	return false
}

// parseNodes parses statements until EOF or until atBlockKeyword
// matches one of stopKeywords (which is left unconsumed).
func (p *parser) parseNodes(stopKeywords []string) ([]ast.Node, error) {
	var nodes []ast.Node
	for {
		if p.tok.Kind == lexer.EOF {
			return nodes, nil
		}
		if len(stopKeywords) > 0 && p.atBlockKeyword(stopKeywords...) {
			return nodes, nil
		}
		n, err := p.parseNode()
		if err != nil {
			return nil, err
		}
		if n != nil {
			nodes = append(nodes, n)
		}
	}
}

func (p *parser) parseNode() (ast.Node, error) {
	switch p.tok.Kind {
	case lexer.Text:
		n := ast.NewLit(p.tok.Text, p.tok.Line, p.tok.Col)
		p.next()
		return n, nil
	case lexer.CommentStart:
		// The lexer already consumed the whole comment body and left
		// us in text mode; nothing further to parse.
		n := ast.NewComment(p.tok.Line, p.tok.Col)
		p.next()
		return n, nil
	case lexer.VarStart:
		return p.parseInterp()
	case lexer.BlockStart:
		return p.parseBlockTag()
	default:
		return nil, p.errf("unexpected token %q", p.tok.Text)
	}
}

func (p *parser) parseInterp() (ast.Node, error) {
	open := p.tok
	p.next()
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var filters []ast.FilterCall
	for p.tok.Kind == lexer.Pipe {
		fc, err := p.parseFilterCall()
		if err != nil {
			return nil, err
		}
		filters = append(filters, fc)
	}
	close, err := p.expect(lexer.VarEnd, "}}")
	if err != nil {
		return nil, err
	}
	n := ast.NewInterp(expr, filters, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	return n, nil
}

func (p *parser) parseFilterCall() (ast.FilterCall, error) {
	line, col := p.tok.Line, p.tok.Col
	if p.tok.Kind == lexer.Pipe {
		p.next() // consume '|'; a filter block's first filter has none
	}
	name, err := p.expect(lexer.Ident, "filter name")
	if err != nil {
		return ast.FilterCall{}, err
	}
	var args []ast.Expr
	if p.tok.Kind == lexer.LParen {
		p.next()
		for p.tok.Kind != lexer.RParen {
			a, err := p.parseExpr()
			if err != nil {
				return ast.FilterCall{}, err
			}
			args = append(args, a)
			if p.tok.Kind == lexer.Comma {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RParen, ")"); err != nil {
			return ast.FilterCall{}, err
		}
	}
	return ast.FilterCall{Name: name.Text, Args: args, Line: line, Col: col}, nil
}

func markOf(b byte) ast.Mark {
	switch b {
	case '-':
		return ast.MarkSuppress
	case '+':
		return ast.MarkPreserve
	case '~':
		return ast.MarkMinimize
	default:
		return ast.MarkDefault
	}
}

func (p *parser) parseBlockTag() (ast.Node, error) {
	open := p.tok
	p.next()
	kwTok, err := p.expect(lexer.Ident, "block keyword")
	if err != nil {
		return nil, err
	}
	switch kwTok.Text {
	case "if":
		return p.parseIf(open)
	case "match":
		return p.parseMatch(open)
	case "for":
		return p.parseFor(open)
	case "break":
		n := ast.NewBreak(open.Line, open.Col)
		close, err := p.expect(lexer.BlockEnd, "%}")
		if err != nil {
			return nil, err
		}
		n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
		p.next()
		return n, nil
	case "continue":
		n := ast.NewContinue(open.Line, open.Col)
		close, err := p.expect(lexer.BlockEnd, "%}")
		if err != nil {
			return nil, err
		}
		n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
		p.next()
		return n, nil
	case "let":
		return p.parseLet(open)
	case "block":
		return p.parseBlockDef(open)
	case "extends":
		return p.parseExtends(open)
	case "include":
		return p.parseInclude(open)
	case "macro":
		return p.parseMacro(open)
	case "import":
		return p.parseImport(open)
	case "call":
		return p.parseCall(open)
	case "filter":
		return p.parseFilterBlock(open)
	case "raw":
		return p.parseRaw(open)
	default:
		return nil, p.errf("unknown tag %q", kwTok.Text)
	}
}

func (p *parser) parseRaw(open lexer.Token) (ast.Node, error) {
	if p.tok.Kind != lexer.BlockEnd {
		return nil, p.errf("expected %%}, found %q", p.tok.Text)
	}
	openClose := p.tok
	content := p.lex.ScanRawUntilEndRaw()
	p.next() // the "{%" of {% endraw %}
	if _, err := p.expect(lexer.Ident, "endraw"); err != nil {
		return nil, err
	}
	endClose, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewRaw(content, open.Line, open.Col)
	n.Ws = [2]ast.Ws{
		{Prefix: markOf(open.Mark), Suffix: markOf(openClose.Mark)},
		{Prefix: markOf(0), Suffix: markOf(endClose.Mark)},
	}
	p.next()
	return n, nil
}

// parseIf parses `{% if %}` through `{% endif %}`, including any
// number of `{% elif %}` arms and an optional trailing `{% else %}`.
// `open` is the already-consumed opening delimiter of the `if` tag
// itself; the parser is positioned right after the `if` keyword.
func (p *parser) parseIf(open lexer.Token) (ast.Node, error) {
	n := ast.NewIf(open.Line, open.Col)
	currentOpen := open
	kind := "if"
	for {
		var cond ast.Expr
		var pattern ast.Target
		var isLHS bool
		var err error
		if kind != "else" {
			cond, pattern, isLHS, err = p.parseCondition()
			if err != nil {
				return nil, err
			}
		}
		close, err := p.expect(lexer.BlockEnd, "%}")
		if err != nil {
			return nil, err
		}
		p.next()
		body, err := p.parseNodes([]string{"elif", "else", "endif"})
		if err != nil {
			return nil, err
		}
		n.Arms = append(n.Arms, ast.IfArm{
			Ws:           ast.Ws{Prefix: markOf(currentOpen.Mark), Suffix: markOf(close.Mark)},
			Cond:         cond,
			Pattern:      pattern,
			PatternIsLHS: isLHS,
			Body:         body,
		})
		if kind == "else" {
			return n, nil
		}
		nextOpen := p.tok
		p.next()
		kwTok, err := p.expect(lexer.Ident, "elif, else, or endif")
		if err != nil {
			return nil, err
		}
		if kwTok.Text == "endif" {
			endClose, err := p.expect(lexer.BlockEnd, "%}")
			if err != nil {
				return nil, err
			}
			n.EndWs = ast.Ws{Prefix: markOf(nextOpen.Mark), Suffix: markOf(endClose.Mark)}
			p.next()
			return n, nil
		}
		currentOpen = nextOpen
		kind = kwTok.Text
	}
}

func (p *parser) parseEndTag(kw string) (ast.Ws, error) {
	openTok := p.tok
	p.next()
	if _, err := p.expect(lexer.Ident, kw); err != nil {
		return ast.Ws{}, err
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return ast.Ws{}, err
	}
	ws := ast.Ws{Prefix: markOf(openTok.Mark), Suffix: markOf(close.Mark)}
	p.next()
	return ws, nil
}

// parseCondition parses an if/elif condition, which may be a plain
// expression or an `let PATTERN = expr` binding (spec.md §4.3).
func (p *parser) parseCondition() (ast.Expr, ast.Target, bool, error) {
	if p.tok.Kind == lexer.Ident && p.tok.Text == "let" {
		p.next()
		target, err := p.parseTarget(false)
		if err != nil {
			return nil, nil, false, err
		}
		if _, err := p.expect(lexer.Eq, "="); err != nil {
			return nil, nil, false, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, nil, false, err
		}
		return rhs, target, true, nil
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, nil, false, err
	}
	return expr, nil, false, nil
}

func (p *parser) parseMatch(open lexer.Token) (ast.Node, error) {
	scrutinee, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewMatch(scrutinee, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	// Skip any whitespace-only text before the first `{% when %}`.
	for p.tok.Kind == lexer.Text {
		p.next()
	}
	for p.atBlockKeyword("when") {
		armOpen := p.tok
		p.next()
		p.next() // 'when'
		target, err := p.parseTarget(true)
		if err != nil {
			return nil, err
		}
		var guard ast.Expr
		if p.tok.Kind == lexer.Ident && p.tok.Text == "if" {
			p.next()
			guard, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		armClose, err := p.expect(lexer.BlockEnd, "%}")
		if err != nil {
			return nil, err
		}
		p.next()
		body, err := p.parseNodes([]string{"when", "endmatch"})
		if err != nil {
			return nil, err
		}
		n.Arms = append(n.Arms, ast.MatchArm{
			Ws:      ast.Ws{Prefix: markOf(armOpen.Mark), Suffix: markOf(armClose.Mark)},
			Pattern: target,
			Guard:   guard,
			Body:    body,
		})
		for p.tok.Kind == lexer.Text {
			p.next()
		}
	}
	endWs, err := p.parseEndTag("endmatch")
	if err != nil {
		return nil, err
	}
	n.EndWs = endWs
	return n, nil
}

func (p *parser) parseFor(open lexer.Token) (ast.Node, error) {
	first, err := p.expect(lexer.Ident, "loop variable")
	if err != nil {
		return nil, err
	}
	vars := []string{first.Text}
	if p.tok.Kind == lexer.Comma {
		p.next()
		second, err := p.expect(lexer.Ident, "loop variable")
		if err != nil {
			return nil, err
		}
		vars = append(vars, second.Text)
	}
	if _, err := p.expectKeyword("in"); err != nil {
		return nil, err
	}
	iterable, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	var filterCond ast.Expr
	if p.tok.Kind == lexer.Ident && p.tok.Text == "if" {
		p.next()
		filterCond, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewFor(vars, iterable, open.Line, open.Col)
	n.FilterCond = filterCond
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	body, err := p.parseNodes([]string{"else", "endfor"})
	if err != nil {
		return nil, err
	}
	n.Body = body
	if p.atBlockKeyword("else") {
		elseOpen := p.tok
		p.next()
		p.next() // 'else'
		elseClose, err := p.expect(lexer.BlockEnd, "%}")
		if err != nil {
			return nil, err
		}
		n.ElseWs = ast.Ws{Prefix: markOf(elseOpen.Mark), Suffix: markOf(elseClose.Mark)}
		p.next()
		elseBody, err := p.parseNodes([]string{"endfor"})
		if err != nil {
			return nil, err
		}
		n.Else = elseBody
	}
	endWs, err := p.parseEndTag("endfor")
	if err != nil {
		return nil, err
	}
	n.EndWs = endWs
	return n, nil
}

func (p *parser) expectKeyword(kw string) (lexer.Token, error) {
	if p.tok.Kind != lexer.Ident || p.tok.Text != kw {
		return lexer.Token{}, p.errf("expected %q, found %q", kw, p.tok.Text)
	}
	t := p.tok
	p.next()
	return t, nil
}

func (p *parser) parseLet(open lexer.Token) (ast.Node, error) {
	target, err := p.parseTarget(false)
	if err != nil {
		return nil, err
	}
	var value ast.Expr
	if p.tok.Kind == lexer.Eq {
		p.next()
		value, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewLet(target, value, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	return n, nil
}

func (p *parser) parseBlockDef(open lexer.Token) (ast.Node, error) {
	name, err := p.expect(lexer.Ident, "block name")
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewBlockDef(name.Text, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	_, definedBefore := p.ctx.Blocks[n.Name]
	body, err := p.parseNodes([]string{"endblock"})
	if err != nil {
		return nil, err
	}
	n.Body = body
	endWs, err := p.parseEndTag("endblock")
	if err != nil {
		return nil, err
	}
	n.EndWs = endWs
	if _, exists := p.ctx.Blocks[n.Name]; exists {
		if !definedBefore {
			// Registered while parsing this block's own body.
			return nil, p.errf("block %q recursively contains a block of the same name", n.Name)
		}
		return nil, p.errf("block %q defined more than once", n.Name)
	}
	p.ctx.Blocks[n.Name] = n
	return n, nil
}

func (p *parser) parseExtends(open lexer.Token) (ast.Node, error) {
	target, err := p.expect(lexer.String, "template path string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BlockEnd, "%}"); err != nil {
		return nil, err
	}
	p.next()
	p.ctx.Extends = target.Text
	return ast.NewExtends(target.Text, open.Line, open.Col), nil
}

func (p *parser) parseInclude(open lexer.Token) (ast.Node, error) {
	target, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewInclude(target, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	return n, nil
}

func (p *parser) parseMacro(open lexer.Token) (ast.Node, error) {
	name, err := p.expect(lexer.Ident, "macro name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "("); err != nil {
		return nil, err
	}
	var params []ast.MacroParam
	for p.tok.Kind != lexer.RParen {
		pname, err := p.expect(lexer.Ident, "parameter name")
		if err != nil {
			return nil, err
		}
		mp := ast.MacroParam{Name: pname.Text}
		if p.tok.Kind == lexer.Eq {
			p.next()
			def, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			mp.Default = def
		}
		params = append(params, mp)
		if p.tok.Kind == lexer.Comma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BlockEnd, "%}"); err != nil {
		return nil, err
	}
	p.next()
	body, err := p.parseNodes([]string{"endmacro"})
	if err != nil {
		return nil, err
	}
	if _, err := p.parseEndTag("endmacro"); err != nil {
		return nil, err
	}
	n := ast.NewMacroDef(name.Text, params, open.Line, open.Col)
	n.Body = body
	if _, exists := p.ctx.Macros[n.Name]; exists {
		return nil, p.errf("macro %q defined more than once", n.Name)
	}
	p.ctx.Macros[n.Name] = n
	return n, nil
}

func (p *parser) parseImport(open lexer.Token) (ast.Node, error) {
	path, err := p.expect(lexer.String, "template path string")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectKeyword("as"); err != nil {
		return nil, err
	}
	alias, err := p.expect(lexer.Ident, "import alias")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.BlockEnd, "%}"); err != nil {
		return nil, err
	}
	p.next()
	p.ctx.Imports[alias.Text] = path.Text
	return ast.NewImport(path.Text, alias.Text, open.Line, open.Col), nil
}

func (p *parser) parseCall(open lexer.Token) (ast.Node, error) {
	scope, name, err := p.parseScopedName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "("); err != nil {
		return nil, err
	}
	var args []ast.Arg
	for p.tok.Kind != lexer.RParen {
		var argName string
		if p.tok.Kind == lexer.Ident {
			save := *p.lex
			savedTok := p.tok
			ident := p.tok
			p.next()
			if p.tok.Kind == lexer.Eq {
				argName = ident.Text
				p.next()
			} else {
				*p.lex = save
				p.tok = savedTok
			}
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Arg{Name: argName, Value: val})
		if p.tok.Kind == lexer.Comma {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(lexer.RParen, ")"); err != nil {
		return nil, err
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewCall(scope, name, args, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	body, err := p.parseNodes([]string{"endcall"})
	if err != nil {
		return nil, err
	}
	n.Body = body
	endWs, err := p.parseEndTag("endcall")
	if err != nil {
		return nil, err
	}
	n.EndWs = endWs
	return n, nil
}

func (p *parser) parseScopedName() (scope, name string, err error) {
	first, err := p.expect(lexer.Ident, "name")
	if err != nil {
		return "", "", err
	}
	if p.tok.Kind == lexer.ColonColon {
		p.next()
		second, err := p.expect(lexer.Ident, "name")
		if err != nil {
			return "", "", err
		}
		return first.Text, second.Text, nil
	}
	return "", first.Text, nil
}

func (p *parser) parseFilterBlock(open lexer.Token) (ast.Node, error) {
	first, err := p.parseFilterCall()
	if err != nil {
		return nil, err
	}
	filters := []ast.FilterCall{first}
	for p.tok.Kind == lexer.Pipe {
		fc, err := p.parseFilterCall()
		if err != nil {
			return nil, err
		}
		filters = append(filters, fc)
	}
	close, err := p.expect(lexer.BlockEnd, "%}")
	if err != nil {
		return nil, err
	}
	n := ast.NewFilterBlock(filters, open.Line, open.Col)
	n.Ws = ast.Ws{Prefix: markOf(open.Mark), Suffix: markOf(close.Mark)}
	p.next()
	body, err := p.parseNodes([]string{"endfilter"})
	if err != nil {
		return nil, err
	}
	n.Body = body
	endWs, err := p.parseEndTag("endfilter")
	if err != nil {
		return nil, err
	}
	n.EndWs = endWs
	return n, nil
}

// parseTarget parses a binding pattern. allowLiteral permits literal
// and enum-variant patterns, legal only inside `match` arms.
func (p *parser) parseTarget(allowLiteral bool) (ast.Target, error) {
	switch p.tok.Kind {
	case lexer.Underscore:
		p.next()
		return ast.WildcardTarget{}, nil
	case lexer.LParen:
		p.next()
		var elems []ast.Target
		for p.tok.Kind != lexer.RParen {
			t, err := p.parseTarget(allowLiteral)
			if err != nil {
				return nil, err
			}
			elems = append(elems, t)
			if p.tok.Kind == lexer.Comma {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RParen, ")"); err != nil {
			return nil, err
		}
		return ast.TupleTarget{Elems: elems}, nil
	case lexer.String, lexer.Int, lexer.Float, lexer.Bool:
		if !allowLiteral {
			return nil, p.errf("literal pattern only allowed in match arms")
		}
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		return ast.LiteralTarget{Value: lit}, nil
	case lexer.Ident:
		first := p.tok.Text
		p.next()
		if p.tok.Kind == lexer.ColonColon {
			if !allowLiteral {
				return nil, p.errf("variant pattern only allowed in match arms")
			}
			path := []string{first}
			for p.tok.Kind == lexer.ColonColon {
				p.next()
				seg, err := p.expect(lexer.Ident, "path segment")
				if err != nil {
					return nil, err
				}
				path = append(path, seg.Text)
			}
			var binders []ast.Target
			if p.tok.Kind == lexer.LParen {
				p.next()
				for p.tok.Kind != lexer.RParen {
					t, err := p.parseTarget(allowLiteral)
					if err != nil {
						return nil, err
					}
					binders = append(binders, t)
					if p.tok.Kind == lexer.Comma {
						p.next()
						continue
					}
					break
				}
				if _, err := p.expect(lexer.RParen, ")"); err != nil {
					return nil, err
				}
			}
			return ast.VariantTarget{Path: path, Binders: binders}, nil
		}
		return ast.NameTarget{Name: first}, nil
	default:
		return nil, p.errf("invalid pattern at %q", p.tok.Text)
	}
}

func (p *parser) parseLiteral() (*ast.Literal, error) {
	t := p.tok
	switch t.Kind {
	case lexer.String:
		p.next()
		lit := ast.NewLiteral("string", t.Text, t.Line, t.Col)
		lit.Str = t.Text
		return lit, nil
	case lexer.Int:
		p.next()
		return ast.NewLiteral("int", t.Text, t.Line, t.Col), nil
	case lexer.Float:
		p.next()
		return ast.NewLiteral("float", t.Text, t.Line, t.Col), nil
	case lexer.Bool:
		p.next()
		lit := ast.NewLiteral("bool", t.Text, t.Line, t.Col)
		lit.Bool = t.Text == "true"
		return lit, nil
	default:
		return nil, p.errf("expected literal, found %q", t.Text)
	}
}

// --- expression parsing (precedence climbing) ---

func (p *parser) parseExpr() (ast.Expr, error) { return p.parseOr() }

func (p *parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == lexer.OrOr {
		line, col := p.tok.Line, p.tok.Col
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp("||", left, right, line, col)
	}
	return left, nil
}

func (p *parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == lexer.AndAnd {
		line, col := p.tok.Line, p.tok.Col
		p.next()
		right, err := p.parseEquality()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp("&&", left, right, line, col)
	}
	return left, nil
}

func (p *parser) parseEquality() (ast.Expr, error) {
	left, err := p.parseRelational()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == lexer.EqEq || p.tok.Kind == lexer.NotEq {
		op := "=="
		if p.tok.Kind == lexer.NotEq {
			op = "!="
		}
		line, col := p.tok.Line, p.tok.Col
		p.next()
		right, err := p.parseRelational()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(op, left, right, line, col)
	}
	return left, nil
}

func (p *parser) parseRelational() (ast.Expr, error) {
	left, err := p.parseRange()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.tok.Kind {
		case lexer.Lt:
			op = "<"
		case lexer.Lte:
			op = "<="
		case lexer.Gt:
			op = ">"
		case lexer.Gte:
			op = ">="
		default:
			return left, nil
		}
		line, col := p.tok.Line, p.tok.Col
		p.next()
		right, err := p.parseRange()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(op, left, right, line, col)
	}
}

func (p *parser) parseRange() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if p.tok.Kind == lexer.DotDot || p.tok.Kind == lexer.DotDotEq {
		inclusive := p.tok.Kind == lexer.DotDotEq
		line, col := p.tok.Line, p.tok.Col
		p.next()
		// The upper bound is optional (`a..`); treat a following
		// close/comma/pipe/keyword as "no upper bound".
		if p.atExprTerminator() {
			return ast.NewRange(left, nil, inclusive, line, col), nil
		}
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return ast.NewRange(left, right, inclusive, line, col), nil
	}
	return left, nil
}

func (p *parser) atExprTerminator() bool {
	switch p.tok.Kind {
	case lexer.VarEnd, lexer.BlockEnd, lexer.RParen, lexer.RBracket, lexer.Comma, lexer.Pipe, lexer.FatArrow:
		return true
	case lexer.Ident:
		switch p.tok.Text {
		case "if", "in", "as":
			return true
		}
	}
	return false
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == lexer.Plus || p.tok.Kind == lexer.Minus {
		op := "+"
		if p.tok.Kind == lexer.Minus {
			op = "-"
		}
		line, col := p.tok.Line, p.tok.Col
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(op, left, right, line, col)
	}
	return left, nil
}

func (p *parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Kind == lexer.Star || p.tok.Kind == lexer.Slash || p.tok.Kind == lexer.Percent {
		var op string
		switch p.tok.Kind {
		case lexer.Star:
			op = "*"
		case lexer.Slash:
			op = "/"
		case lexer.Percent:
			op = "%"
		}
		line, col := p.tok.Line, p.tok.Col
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.NewBinOp(op, left, right, line, col)
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expr, error) {
	if p.tok.Kind == lexer.Bang || p.tok.Kind == lexer.Minus {
		op := "!"
		if p.tok.Kind == lexer.Minus {
			op = "-"
		}
		line, col := p.tok.Line, p.tok.Col
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.NewUnOp(op, operand, line, col), nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	var filters []ast.FilterCall
	for {
		switch p.tok.Kind {
		case lexer.Dot:
			p.next()
			name, err := p.expect(lexer.Ident, "attribute name")
			if err != nil {
				return nil, err
			}
			if id, ok := expr.(*ast.Var); ok && id.Name == "loop" {
				expr = ast.NewLoopAttr(name.Text, name.Line, name.Col)
			} else {
				expr = ast.NewAttr(expr, name.Text, name.Line, name.Col)
			}
		case lexer.LBracket:
			line, col := p.tok.Line, p.tok.Col
			p.next()
			key, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(lexer.RBracket, "]"); err != nil {
				return nil, err
			}
			expr = ast.NewIndex(expr, key, line, col)
		case lexer.LParen:
			line, col := p.tok.Line, p.tok.Col
			p.next()
			var args []ast.Expr
			for p.tok.Kind != lexer.RParen {
				a, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, a)
				if p.tok.Kind == lexer.Comma {
					p.next()
					continue
				}
				break
			}
			if _, err := p.expect(lexer.RParen, ")"); err != nil {
				return nil, err
			}
			expr = ast.NewExprCall(expr, args, line, col)
		case lexer.Pipe:
			fc, err := p.parseFilterCall()
			if err != nil {
				return nil, err
			}
			filters = append(filters, fc)
		default:
			if len(filters) > 0 {
				return ast.NewFiltered(expr, filters, expr.Line(), expr.Column()), nil
			}
			return expr, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	t := p.tok
	switch t.Kind {
	case lexer.String, lexer.Int, lexer.Float, lexer.Bool:
		return p.parseLiteral()
	case lexer.Ident:
		if t.Text == "super" {
			savedLex := *p.lex
			savedTok := p.tok
			p.next()
			if p.tok.Kind == lexer.LParen {
				p.next()
				if p.tok.Kind == lexer.RParen {
					p.next()
					return ast.NewSuper(t.Line, t.Col), nil
				}
			}
			*p.lex = savedLex
			p.tok = savedTok
		}
		p.next()
		return ast.NewVar(t.Text, t.Line, t.Col), nil
	case lexer.LParen:
		p.next()
		var elems []ast.Expr
		first, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, first)
		isTuple := false
		for p.tok.Kind == lexer.Comma {
			isTuple = true
			p.next()
			if p.tok.Kind == lexer.RParen {
				break
			}
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
		}
		if _, err := p.expect(lexer.RParen, ")"); err != nil {
			return nil, err
		}
		if isTuple {
			return ast.NewTuple(elems, t.Line, t.Col), nil
		}
		return ast.NewGroup(elems[0], t.Line, t.Col), nil
	case lexer.LBracket:
		p.next()
		var elems []ast.Expr
		for p.tok.Kind != lexer.RBracket {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			elems = append(elems, e)
			if p.tok.Kind == lexer.Comma {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(lexer.RBracket, "]"); err != nil {
			return nil, err
		}
		return ast.NewArrayLit(elems, t.Line, t.Col), nil
	default:
		return nil, p.errf("unexpected token %q in expression", t.Text)
	}
}
