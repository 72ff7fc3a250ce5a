package generator

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// builtinFilterIdents maps a filter name to the exported
// github.com/zipreport/tmplforge/filters identifier implementing it,
// for every name the generic dispatch path (the default case below)
// recognizes as a built-in rather than a user-supplied filter method.
var builtinFilterIdents = map[string]string{
	"upper": "Upper", "lower": "Lower", "title": "Title", "trim": "Trim",
	"capitalize": "Capitalize", "truncate": "Truncate", "wordcount": "WordCount",
	"length": "Length", "default": "Default", "pluralize": "Pluralize",
	"indent": "Indent", "center": "Center", "striptags": "StripTags",
	"urlencode": "URLEncode", "reverse": "Reverse", "first": "First",
	"last": "Last", "slugify": "Slugify",
}

// applyFilterChain runs base through every filter link in chain,
// dispatching each through C5: the hard-coded special forms
// (safe/escape/json/format/fmt/join/ref/deref/the linebreaks family)
// first, then the generic built-in/user-filter path. Grounded on
// zipreport-miya/filters/filter.go's FilterRegistry.Apply, with each
// call's fallibility hoisted into a preceding statement since Go has
// no expression-level `?` operator. Each link sees only the previous
// link's result, so the outermost filter's escape state wins: `safe`
// does not survive a later `escape`/`e` in the same chain.
func (g *Generator) applyFilterChain(base lowered, chain []ast.FilterCall) (lowered, error) {
	cur := base
	for _, fc := range chain {
		next, err := g.applyFilter(cur, fc)
		if err != nil {
			return lowered{}, err
		}
		cur = next
	}
	return cur, nil
}

func (g *Generator) lowerFiltered(n *ast.Filtered) (lowered, error) {
	base, err := g.lowerExpr(n.Base)
	if err != nil {
		return lowered{}, err
	}
	return g.applyFilterChain(base, n.Filters)
}

func (g *Generator) applyFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	switch fc.Name {
	case "safe":
		return lowered{Expr: g.stringify(in), Wrapped: true}, nil
	case "escape", "e":
		return g.applyEscapeFilter(in, fc)
	case "json", "tojson":
		return g.applyJSONFilter(in, fc)
	case "format":
		return g.applyFormatFilter(in, fc)
	case "fmt":
		return g.applyFmtFilter(in, fc)
	case "join":
		return g.applyJoinFilter(in, fc)
	case "ref":
		return lowered{Expr: "&(" + in.Expr + ")", Wrapped: in.Wrapped}, nil
	case "deref":
		return lowered{Expr: "*(" + in.Expr + ")", Wrapped: in.Wrapped}, nil
	case "linebreaks":
		return g.applyRuntimeFilterFunc(in, fc, "filters.Linebreaks")
	case "linebreaksbr":
		return g.applyRuntimeFilterFunc(in, fc, "filters.LinebreaksBr")
	case "paragraphbreaks":
		return g.applyRuntimeFilterFunc(in, fc, "filters.ParagraphBreaks")
	default:
		return g.applyGenericFilter(in, fc)
	}
}

// applyEscapeFilter selects an escaper by name (defaulting to the
// template's own configured escaper) and applies it immediately,
// marking the result Wrapped so later composition does not escape it
// a second time.
func (g *Generator) applyEscapeFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	if len(fc.Args) > 1 {
		return lowered{}, fmt.Errorf("line %d: %s takes at most 1 argument", fc.Line, fc.Name)
	}
	path := g.input.EscaperPath
	if len(fc.Args) == 1 {
		lit, ok := fc.Args[0].(*ast.Literal)
		if !ok || lit.Kind != "string" {
			return lowered{}, fmt.Errorf("line %d: %s's escaper argument must be a string literal", fc.Line, fc.Name)
		}
		resolved, err := g.cfg.EscaperByName(lit.Str)
		if err != nil {
			return lowered{}, fmt.Errorf("line %d: %w", fc.Line, err)
		}
		path = resolved
	}
	g.use("runtime")
	return lowered{Expr: fmt.Sprintf("%s.Escape(%s)", path, g.stringify(in)), Wrapped: true}, nil
}

// applyJSONFilter marshals the expression's current Go value (not its
// stringified form — JSON needs the real struct/slice/map) via the
// runtime package, hoisting the fallible call into a preceding
// statement.
func (g *Generator) applyJSONFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	if len(fc.Args) > 1 {
		return lowered{}, fmt.Errorf("line %d: %s takes at most 1 argument", fc.Line, fc.Name)
	}
	var call string
	if len(fc.Args) == 1 {
		indent, err := g.lowerExpr(fc.Args[0])
		if err != nil {
			return lowered{}, err
		}
		call = fmt.Sprintf("runtime.ToJSONIndent(%s, %s)", in.Expr, g.stringify(indent))
	} else {
		call = fmt.Sprintf("runtime.ToJSON(%s)", in.Expr)
	}
	g.use("runtime")
	return lowered{Expr: g.emitFallible(call), Wrapped: true}, nil
}

// applyFormatFilter treats the first argument as a fmt verb string and
// in as its first substitution value (`{{ n|format("%05d") }}`).
func (g *Generator) applyFormatFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	if len(fc.Args) == 0 {
		return lowered{}, fmt.Errorf("line %d: format requires a format-string argument", fc.Line)
	}
	verb, err := g.lowerExpr(fc.Args[0])
	if err != nil {
		return lowered{}, err
	}
	rest, err := g.lowerArgExprs(fc.Args[1:])
	if err != nil {
		return lowered{}, err
	}
	args := append([]string{in.Expr}, exprTexts(rest)...)
	return lowered{Expr: fmt.Sprintf("fmt.Sprintf(%s, %s)", verb.Expr, joinStrs(args))}, nil
}

// applyFmtFilter is format's single-argument shorthand:
// `{{ price|fmt("%.2f") }}`.
func (g *Generator) applyFmtFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	if len(fc.Args) != 1 {
		return lowered{}, fmt.Errorf("line %d: fmt takes exactly 1 argument", fc.Line)
	}
	verb, err := g.lowerExpr(fc.Args[0])
	if err != nil {
		return lowered{}, err
	}
	return lowered{Expr: fmt.Sprintf("fmt.Sprintf(%s, %s)", verb.Expr, in.Expr)}, nil
}

// applyJoinFilter stringifies each element of a slice/array value and
// joins them with an optional separator (default "").
func (g *Generator) applyJoinFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	sep := `""`
	if len(fc.Args) > 0 {
		s, err := g.lowerExpr(fc.Args[0])
		if err != nil {
			return lowered{}, err
		}
		sep = s.Expr
	}
	g.use("runtime")
	return lowered{Expr: fmt.Sprintf("runtime.Join(%s, %s)", in.Expr, sep)}, nil
}

// applyRuntimeFilterFunc dispatches to one of the linebreaks-family
// functions in the filters package, all of which return (string, error)
// and HTML-escape their input internally before introducing markup of
// their own — so the result is already HTML-safe and must not be
// escaped again by the template's configured escaper.
func (g *Generator) applyRuntimeFilterFunc(in lowered, fc ast.FilterCall, qualifiedFn string) (lowered, error) {
	args, err := g.lowerArgExprs(fc.Args)
	if err != nil {
		return lowered{}, err
	}
	g.use("filters")
	call := qualifiedFn + "(" + g.stringify(in)
	for _, a := range args {
		call += ", " + g.stringify(a)
	}
	call += ")"
	return lowered{Expr: g.emitFallible(call), Wrapped: true}, nil
}

// applyGenericFilter dispatches a filter name that is not one of C5's
// hard-coded forms: a recognized built-in from the filters package, or
// else a user-supplied method the template struct is expected to
// implement as `<Name>Filter(value string, args ...string) (string, error)`.
func (g *Generator) applyGenericFilter(in lowered, fc ast.FilterCall) (lowered, error) {
	args, err := g.lowerArgExprs(fc.Args)
	if err != nil {
		return lowered{}, err
	}

	var call string
	if ident, ok := builtinFilterIdents[fc.Name]; ok {
		g.use("filters")
		call = "filters." + ident + "(" + g.stringify(in)
	} else {
		call = "self." + capitalizeIdent(fc.Name) + "Filter(" + g.stringify(in)
	}
	for _, a := range args {
		call += ", " + g.stringify(a)
	}
	call += ")"
	return lowered{Expr: g.emitFallible(call)}, nil
}

// stringify coerces an arbitrary Go expression to a string via
// fmt.Sprint, the boundary every filter and interpolation crosses
// before the value reaches text output. Go's static typing has no
// general Display-trait equivalent available at compile time here, so
// fmt.Sprint stands in as the uniform stringification the corpus's
// escaper/filter functions all expect a string argument for.
func (g *Generator) stringify(l lowered) string {
	g.use("fmt")
	return "fmt.Sprint(" + l.Expr + ")"
}
