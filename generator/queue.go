package generator

import (
	"fmt"
	"strings"
)

// qItem is one pending entry in the writable queue: either a literal
// run of source text or a lowered, escape-resolved host expression
// destined for the next flush.
type qItem struct {
	lit       string
	isLit     bool
	hostExpr  string // valid when !isLit; always a Go string value
	cacheable bool   // pure expression, eligible for slot reuse
	key       string // dedupe key for cacheable items
}

// Queue is the per-render-method pending list: literals and lowered
// interpolations accumulate here until a control-flow boundary forces
// a flush, so a run of adjacent text and `{{ }}` fragments compiles to
// one write call instead of one per node. New relative to the
// teacher — miya writes each node's result to its output buffer
// immediately and never needs to batch a call — grounded directly on
// the queue/flush contract spec.md's C3 names, shaped like
// zipreport-miya/runtime/filter_chain_optimizer.go's "coalesce before
// executing" approach to chained work.
type Queue struct {
	items []qItem
}

func (q *Queue) PushLit(s string) {
	if s == "" {
		return
	}
	q.items = append(q.items, qItem{lit: s, isLit: true})
}

func (q *Queue) PushExpr(hostExpr string, cacheable bool, key string) {
	q.items = append(q.items, qItem{hostExpr: hostExpr, cacheable: cacheable, key: key})
}

func (q *Queue) Empty() bool { return len(q.items) == 0 }

// Compile renders the queue into one Go statement and empties it
// afterward:
//   - empty queue compiles to nothing;
//   - an all-literal queue compiles to a single io.WriteString;
//   - a mixed queue compiles to one fmt.Fprintf, with literal runs
//     folded into the format string and repeated cacheable
//     expressions referenced by explicit argument index (`%[n]s`)
//     instead of being re-evaluated or re-escaped.
func (q *Queue) Compile() (stmt string, sizeHint int) {
	defer func() { q.items = nil }()

	if len(q.items) == 0 {
		return "", 0
	}

	allLit := true
	for _, it := range q.items {
		if !it.isLit {
			allLit = false
			break
		}
	}
	if allLit {
		var sb strings.Builder
		for _, it := range q.items {
			sb.WriteString(it.lit)
		}
		lit := sb.String()
		return fmt.Sprintf("if _, err := io.WriteString(w, %s); err != nil {\n\treturn err\n}", goStringLit(lit)), len(lit)
	}

	// Every verb in the format string is explicitly indexed (%[n]s),
	// never bare %s: fmt resets its implicit argument cursor to n+1
	// after an explicit %[n] verb, so a bare %s following a
	// back-reference would read the wrong argument instead of the next
	// unconsumed one. Indexing every verb sidesteps that reset
	// entirely.
	var format strings.Builder
	var args []string
	slotOf := make(map[string]int) // cacheable expr key -> 1-based fmt arg index
	hint := 0
	for _, it := range q.items {
		if it.isLit {
			format.WriteString(strings.ReplaceAll(it.lit, "%", "%%"))
			hint += len(it.lit)
			continue
		}
		if it.cacheable && it.key != "" {
			if idx, ok := slotOf[it.key]; ok {
				fmt.Fprintf(&format, "%%[%d]s", idx)
				continue
			}
			args = append(args, it.hostExpr)
			idx := len(args)
			slotOf[it.key] = idx
			fmt.Fprintf(&format, "%%[%d]s", idx)
		} else {
			args = append(args, it.hostExpr)
			fmt.Fprintf(&format, "%%[%d]s", len(args))
		}
		hint += 8
	}

	var call strings.Builder
	call.WriteString("if _, err := fmt.Fprintf(w, ")
	call.WriteString(goStringLit(format.String()))
	for _, a := range args {
		call.WriteString(", ")
		call.WriteString(a)
	}
	call.WriteString("); err != nil {\n\treturn err\n}")
	return call.String(), hint
}
