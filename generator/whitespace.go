package generator

import (
	"strings"

	"github.com/zipreport/tmplforge/ast"
	"github.com/zipreport/tmplforge/config"
)

// wsState is the C6 whitespace controller: it tracks the compile-time
// policy once and resolves each boundary's effective behavior from a
// tag's Mark plus that policy — the two inputs a boundary ever needs,
// rather than carrying mutable "next"/"skip" flags through the walk.
// Grounded on the trim_blocks/lstrip_blocks pairing in
// zipreport-miya/environment.go, generalized from a single global
// flag to the per-tag +/-/~ override spec.md's whitespace marks add.
type wsState struct {
	policy config.WhitespacePolicy
}

func newWsState(policy config.WhitespacePolicy) *wsState {
	return &wsState{policy: policy}
}

func (s *wsState) effective(m ast.Mark) config.WhitespacePolicy {
	switch m {
	case ast.MarkPreserve:
		return config.Preserve
	case ast.MarkSuppress:
		return config.Suppress
	case ast.MarkMinimize:
		return config.Minimize
	default:
		return s.policy
	}
}

// trimLeading applies the preceding tag's suffix mark to the text that
// follows it.
func (s *wsState) trimLeading(text string, suffix ast.Mark) string {
	switch s.effective(suffix) {
	case config.Suppress:
		return strings.TrimLeft(text, " \t\r\n")
	case config.Minimize:
		return minimizeLeading(text)
	default:
		return text
	}
}

// trimTrailing applies the following tag's prefix mark to the text
// that precedes it.
func (s *wsState) trimTrailing(text string, prefix ast.Mark) string {
	switch s.effective(prefix) {
	case config.Suppress:
		return strings.TrimRight(text, " \t\r\n")
	case config.Minimize:
		return minimizeTrailing(text)
	default:
		return text
	}
}

// minimizeLeading collapses leading whitespace to a single newline (if
// one was present) or a single space, rather than removing it outright.
func minimizeLeading(s string) string {
	trimmed := strings.TrimLeft(s, " \t\r\n")
	cut := s[:len(s)-len(trimmed)]
	if cut == "" {
		return s
	}
	if strings.ContainsRune(cut, '\n') {
		return "\n" + trimmed
	}
	return " " + trimmed
}

func minimizeTrailing(s string) string {
	trimmed := strings.TrimRight(s, " \t\r\n")
	cut := s[len(trimmed):]
	if cut == "" {
		return s
	}
	if strings.ContainsRune(cut, '\n') {
		return trimmed + "\n"
	}
	return trimmed + " "
}

// nodeBoundaryWs returns the outward-facing prefix/suffix marks of a
// node that sits next to a Lit: the mark nearest its opening delimiter
// for a node following a Lit, and the mark nearest its closing
// delimiter for a node preceding one. Nodes that contribute no
// output (Extends/Import/MacroDef) report MarkDefault, which simply
// defers to the global policy.
func nodeBoundaryWs(n ast.Node) (prefix, suffix ast.Mark) {
	switch v := n.(type) {
	case *ast.Interp:
		return v.Ws.Prefix, v.Ws.Suffix
	case *ast.Comment:
		return v.Ws.Prefix, v.Ws.Suffix
	case *ast.Raw:
		return v.Ws[0].Prefix, v.Ws[1].Suffix
	case *ast.If:
		return v.Arms[0].Ws.Prefix, v.EndWs.Suffix
	case *ast.Match:
		return v.Ws.Prefix, v.EndWs.Suffix
	case *ast.For:
		return v.Ws.Prefix, v.EndWs.Suffix
	case *ast.Break:
		return v.Ws.Prefix, v.Ws.Suffix
	case *ast.Continue:
		return v.Ws.Prefix, v.Ws.Suffix
	case *ast.Let:
		return v.Ws.Prefix, v.Ws.Suffix
	case *ast.BlockDef:
		return v.Ws.Prefix, v.EndWs.Suffix
	case *ast.Include:
		return v.Ws.Prefix, v.Ws.Suffix
	case *ast.Call:
		return v.Ws.Prefix, v.EndWs.Suffix
	case *ast.FilterBlock:
		return v.Ws.Prefix, v.EndWs.Suffix
	default:
		return ast.MarkDefault, ast.MarkDefault
	}
}
