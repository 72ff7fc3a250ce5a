package ast

// Constructors mirroring zipreport-miya/parser/ast.go's NewXNode
// functions: the parser package builds nodes exclusively through
// these so baseNode's fields stay unexported within ast.

func NewLit(content string, line, col int) *Lit {
	return &Lit{baseNode: NewBase(line, col), Content: content}
}

func NewInterp(expr Expr, filters []FilterCall, line, col int) *Interp {
	return &Interp{baseNode: NewBase(line, col), Expr: expr, Filters: filters}
}

func NewComment(line, col int) *Comment {
	return &Comment{baseNode: NewBase(line, col)}
}

func NewRaw(content string, line, col int) *Raw {
	return &Raw{baseNode: NewBase(line, col), Content: content}
}

func NewIf(line, col int) *If {
	return &If{baseNode: NewBase(line, col)}
}

func NewMatch(scrutinee Expr, line, col int) *Match {
	return &Match{baseNode: NewBase(line, col), Scrutinee: scrutinee}
}

func NewFor(vars []string, iterable Expr, line, col int) *For {
	return &For{baseNode: NewBase(line, col), Vars: vars, Iterable: iterable}
}

func NewBreak(line, col int) *Break       { return &Break{baseNode: NewBase(line, col)} }
func NewContinue(line, col int) *Continue { return &Continue{baseNode: NewBase(line, col)} }

func NewLet(pattern Target, value Expr, line, col int) *Let {
	return &Let{baseNode: NewBase(line, col), Pattern: pattern, Value: value}
}

func NewBlockDef(name string, line, col int) *BlockDef {
	return &BlockDef{baseNode: NewBase(line, col), Name: name}
}

func NewExtends(target string, line, col int) *Extends {
	return &Extends{baseNode: NewBase(line, col), Target: target}
}

func NewInclude(target Expr, line, col int) *Include {
	return &Include{baseNode: NewBase(line, col), Target: target}
}

func NewMacroDef(name string, params []MacroParam, line, col int) *MacroDef {
	return &MacroDef{baseNode: NewBase(line, col), Name: name, Params: params}
}

func NewImport(path, alias string, line, col int) *Import {
	return &Import{baseNode: NewBase(line, col), Path: path, Alias: alias}
}

func NewCall(scope, name string, args []Arg, line, col int) *Call {
	return &Call{baseNode: NewBase(line, col), Scope: scope, Name: name, Args: args}
}

func NewFilterBlock(filters []FilterCall, line, col int) *FilterBlock {
	return &FilterBlock{baseNode: NewBase(line, col), Filters: filters}
}

func NewSuper(line, col int) *Super { return &Super{baseNode: NewBase(line, col)} }
