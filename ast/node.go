package ast

// Node is a single statement in a template body. It mirrors the shape
// of zipreport-miya/parser/ast.go's Node interface, minus the
// interpreter-only String() method. The concrete node types carry
// their own Ws fields so the generator's whitespace controller
// (spec.md C6) can see each tag's prefix/suffix markers.
type Node interface {
	Line() int
	Column() int
}

type baseNode struct {
	line   int
	column int
}

func (n baseNode) Line() int   { return n.line }
func (n baseNode) Column() int { return n.column }

// NewBase constructs the embeddable position fields shared by every
// node kind.
func NewBase(line, column int) baseNode {
	return baseNode{line: line, column: column}
}

// Lit is a run of raw template source text between tags.
type Lit struct {
	baseNode
	Content string
}

// Interp is a `{{ expr }}` interpolation.
type Interp struct {
	baseNode
	Ws   Ws
	Expr Expr
	// Filters applied left-to-right, outermost last in this slice's
	// iteration order (filters[0] applied first).
	Filters []FilterCall
}

// Comment is a `{# ... #}` comment; it produces no output and no code.
type Comment struct {
	baseNode
	Ws Ws
}

// Raw is a `{% raw %}...{% endraw %}` block; its content is queued
// verbatim with no expression interpolation.
type Raw struct {
	baseNode
	Ws      [2]Ws
	Content string
}

// IfArm is one arm of an If node: a condition (nil for the trailing
// else), an optional pattern binding (`if let PAT = EXPR`), and a body.
type IfArm struct {
	Ws        Ws
	Cond      Expr
	Pattern   Target // non-nil for `if let`
	PatternIsLHS bool // true when Pattern binds the LHS of Cond (if-let)
	Body      []Node
}

// If is `if`/`else if`/`else`.
type If struct {
	baseNode
	Arms  []IfArm
	EndWs Ws
}

// MatchArm is one `pattern => { body }` arm of a Match node.
type MatchArm struct {
	Ws      Ws
	Pattern Target
	Guard   Expr // optional `if` guard, nil if absent
	Body    []Node
}

// Match is a `{% match scrutinee %}` statement.
type Match struct {
	baseNode
	Ws        Ws
	Scrutinee Expr
	Arms      []MatchArm
	EndWs     Ws
}

// For is `{% for ... in ... %}...{% else %}...{% endfor %}`.
type For struct {
	baseNode
	Ws         Ws
	Vars       []string // one name, or two for `for k, v in ...`
	Iterable   Expr
	FilterCond Expr // optional `if` clause on the loop, nil if absent
	Body       []Node
	ElseWs     Ws
	Else       []Node // nil if no else arm
	EndWs      Ws
}

// Break is `{% break %}`.
type Break struct {
	baseNode
	Ws Ws
}

// Continue is `{% continue %}`.
type Continue struct {
	baseNode
	Ws Ws
}

// Let is `{% let PATTERN = EXPR %}` or `{% let PATTERN %}`.
type Let struct {
	baseNode
	Ws      Ws
	Pattern Target
	Value   Expr // nil when the let declares without initializing
}

// BlockDef is a `{% block name %}...{% endblock %}` definition.
type BlockDef struct {
	baseNode
	Ws      Ws
	Name    string
	Body    []Node
	EndWs   Ws
}

// Extends is `{% extends "path" %}`. It contributes no emitted code;
// its effect is resolved ahead of generation by the heritage package.
type Extends struct {
	baseNode
	Target string
}

// Include is `{% include "path" %}`.
type Include struct {
	baseNode
	Ws     Ws
	Target Expr
}

// MacroParam is one declared macro parameter, with an optional default
// expression (`{% macro g(x, y=2) %}`).
type MacroParam struct {
	Name    string
	Default Expr // nil if required
}

// MacroDef is a `{% macro name(params) %}...{% endmacro %}` definition.
// Only legal at the top level of a template (spec.md invariant 6).
type MacroDef struct {
	baseNode
	Name   string
	Params []MacroParam
	Body   []Node
}

// Import is a `{% import "path" as alias %}` declaration. Only legal
// at the top level of a template (spec.md invariant 6).
type Import struct {
	baseNode
	Path  string
	Alias string
}

// Call is `{% call [scope::]name(args) %}[...]{% endcall %}`. Body
// holds the nodes between the two tags, passed as the caller block;
// for `{% call g(x) %}{% endcall %}` it is nil.
type Call struct {
	baseNode
	Ws     Ws
	Scope  string // import alias, or "" for a same-context macro
	Name   string
	Args   []Arg
	Body   []Node
	EndWs  Ws
}

// Arg is one macro-call argument, named or positional.
type Arg struct {
	Name  string // "" for positional
	Value Expr
}

// FilterBlock is `{% filter name(args) %}...{% endfilter %}`.
type FilterBlock struct {
	baseNode
	Ws      Ws
	Filters []FilterCall
	Body    []Node
	EndWs   Ws
}

// Super is the `super()` call expression usable inside a block body.
type Super struct {
	baseNode
}
