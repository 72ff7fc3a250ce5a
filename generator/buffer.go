// Package generator is the compiler core: it walks a resolved
// template Context and its Heritage and emits Go source implementing
// the template's rendering methods. Grounded throughout on
// zipreport-miya/runtime's statement-evaluation switch, retargeted
// from "evaluate now" to "emit code that evaluates later" per
// SPEC_FULL.md's host-language mapping notes.
package generator

import "strings"

// Buffer is the append-only accumulator for emitted Go source, with a
// discard mode toggled around regions whose generated output must be
// suppressed — e.g. while walking the non-selected parts of a template
// compiled in "render only this block" mode. Grounded on the
// discard-guard idea in zipreport-miya/runtime/control_flow.go,
// generalized from "suppress runtime output" to "suppress emitted
// code".
type Buffer struct {
	sb      strings.Builder
	indent  int
	Discard bool
}

// NewBuffer returns a Buffer, optionally starting in discard mode.
func NewBuffer(discard bool) *Buffer {
	return &Buffer{Discard: discard}
}

// Indent increases the indentation applied to subsequent WriteLine calls.
func (b *Buffer) Indent() { b.indent++ }

// Dedent decreases the indentation applied to subsequent WriteLine calls.
func (b *Buffer) Dedent() {
	if b.indent > 0 {
		b.indent--
	}
}

// WriteLine appends one line of Go source at the current indent level
// unless Discard is set.
func (b *Buffer) WriteLine(line string) {
	if b.Discard {
		return
	}
	if line != "" {
		b.sb.WriteString(strings.Repeat("\t", b.indent))
		b.sb.WriteString(line)
	}
	b.sb.WriteByte('\n')
}

// WriteLines appends several lines, splitting each argument on internal
// newlines so multi-line statements still get the current indent.
func (b *Buffer) WriteLines(block string) {
	for _, line := range strings.Split(block, "\n") {
		b.WriteLine(line)
	}
}

// String returns everything written so far (discarded writes included
// nothing).
func (b *Buffer) String() string { return b.sb.String() }
