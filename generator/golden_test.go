package generator

import (
	"strings"
	"testing"

	"github.com/zipreport/tmplforge/config"
)

// TestGoldenS1SimpleInterpolation is spec.md §8 scenario S1: a single
// variable interpolation, which the non-cacheable/ literal-split
// queue still folds into one write call.
func TestGoldenS1SimpleInterpolation(t *testing.T) {
	// The default Suppress policy would trim the space before `{{`, so
	// this scenario compiles under Preserve to keep "Hello, " intact.
	cfg := config.New()
	cfg.Whitespace = config.Preserve
	body, _, used := compileSource(t, cfg, "t.txt", `Hello, {{ name }}!`, nil)

	// "Hello, ", the interpolation, and "!" form one maximal literal/
	// interpolation run with no control-flow boundary between them, so
	// they compile to a single fmt.Fprintf call (property 2).
	if strings.Count(body, "fmt.Fprintf") != 1 {
		t.Fatalf("expected a single Fprintf call, got body:\n%s", body)
	}
	if !strings.Contains(body, `Hello, %[1]s!`) {
		t.Fatalf("expected the folded format string \"Hello, %%[1]s!\", body:\n%s", body)
	}
	if !strings.Contains(body, "%[1]s") {
		t.Fatalf("expected name's interpolation slot explicitly indexed, body:\n%s", body)
	}
	if !strings.Contains(body, "runtime.Text.Escape(") {
		t.Fatalf("expected name run through the configured (Text) escaper, body:\n%s", body)
	}
	if !used["io"] && !used["fmt"] {
		t.Fatalf("expected io or fmt to be marked used, got %v", used)
	}
}

// TestGoldenS2ForElse is spec.md §8 scenario S2: `{% for %}...{% else %}`
// must guard the else body on "did we ever iterate", and the loop
// body must reference the range/slice length via loop.Len.
func TestGoldenS2ForElse(t *testing.T) {
	body, _, _ := compileSource(t, nil, "t.txt", `{% for x in items %}{{ x }}{% else %}empty{% endfor %}`, nil)

	if !strings.Contains(body, "range") {
		t.Fatalf("expected a range loop over items, body:\n%s", body)
	}
	if !strings.Contains(body, `if !loopRan`) {
		t.Fatalf("expected the else arm guarded on the loop-ran flag, body:\n%s", body)
	}
	if !strings.Contains(body, `"empty"`) {
		t.Fatalf("expected the else-arm literal text, body:\n%s", body)
	}
	if !strings.Contains(body, "loop := runtime.Loop{") {
		t.Fatalf("expected a loop value constructed inside the body, body:\n%s", body)
	}
}

// TestGoldenS4InheritanceSuper is spec.md §8 scenario S4: a child
// block's super() call must inline the immediate ancestor's body for
// that same block name (invariant/property 6), interleaved with the
// child's own content around it.
func TestGoldenS4InheritanceSuper(t *testing.T) {
	const base = `A[{% block b %}base{% endblock %}]B`
	const child = `{% extends "base.txt" %}{% block b %}{{ super() }}+child{% endblock %}`

	body, _, _ := compileSource(t, nil, "child.txt", child, map[string]string{"base.txt": base})

	if !strings.Contains(body, `"A["`) {
		t.Fatalf("expected the base template's leading skeleton text, body:\n%s", body)
	}
	// super()'s inlined "base" text, the child's own "+child" text, and
	// the trailing "]B" skeleton text all accumulate literal-adjacent
	// with no control-flow boundary between them, so they fold into one
	// combined write (property 2) in that emission order.
	if !strings.Contains(body, `base+child]B`) {
		t.Fatalf("expected super()'s body, then the child's content, then the trailing skeleton text, in that order, body:\n%s", body)
	}
}

// TestGoldenS5MacroDefaults is spec.md §8 scenario S5: a macro call
// with the default parameter left unset, and a second call overriding
// it by name, both bind without error and interpolate the right value.
func TestGoldenS5MacroDefaults(t *testing.T) {
	const src = `{% macro g(x, y=2) %}{{ x }}-{{ y }}{% endmacro %}` +
		`{% call g(10) %}{% endcall %}` +
		`{% call g(1, y=7) %}{% endcall %}`

	body, _, _ := compileSource(t, nil, "t.txt", src, nil)

	if !strings.Contains(body, "x := 10") {
		t.Fatalf("expected the first call's positional bind of x, body:\n%s", body)
	}
	if !strings.Contains(body, "y := 2") {
		t.Fatalf("expected the first call's default bind of y, body:\n%s", body)
	}
	if !strings.Contains(body, "x := 1") {
		t.Fatalf("expected the second call's positional bind of x, body:\n%s", body)
	}
	if !strings.Contains(body, "y := 7") {
		t.Fatalf("expected the second call's named override of y, body:\n%s", body)
	}
}

// TestGoldenS6SafeVsEscaped is spec.md §8 scenario S6: `|safe` marks
// its expression pre-escaped so the outer HTML escaper leaves it
// alone, while a plain interpolation of the same literal goes through
// the escaper.
func TestGoldenS6SafeVsEscaped(t *testing.T) {
	cfg := config.New() // .html -> runtime.HTML
	src := `{{ "<b>"|safe }}{{ "<b>" }}`

	body, _, _ := compileSource(t, cfg, "t.html", src, nil)

	// The `|safe` interpolation must not be routed through Escape at
	// all — only the second, unescaped literal may be.
	if got := strings.Count(body, ".Escape("); got != 1 {
		t.Fatalf("expected exactly one Escape call (for the non-safe interpolation), got %d in body:\n%s", got, body)
	}
}

// TestGoldenFilteredForLoopBookkeeping is the end-to-end regression
// test for review items 7/8: a `{% for %}...if cond...{% else %}`
// whose filter clause rejects every element must still take the else
// arm, and the filteredIdx bump must live inside the filter guard so
// it never advances for a rejected element.
func TestGoldenFilteredForLoopBookkeeping(t *testing.T) {
	const src = `{% for x in items if x > 0 %}{{ x }}{% else %}none{% endfor %}`
	body, _, _ := compileSource(t, nil, "t.txt", src, nil)

	// The filtered total is computed by a pre-pass loop carrying its own
	// "if (x > 0) {" guard, so the main loop's guard is the *last* one;
	// the else arm's "if !loopRan..." guard follows it.
	mainGuardIdx := strings.LastIndex(body, "if (x > 0) {")
	elseGuardIdx := strings.Index(body, "if !loop")
	if mainGuardIdx < 0 || elseGuardIdx < 0 || mainGuardIdx > elseGuardIdx {
		t.Fatalf("could not locate the main loop's filter guard before the else guard, body:\n%s", body)
	}
	mainLoopRegion := body[mainGuardIdx:elseGuardIdx]
	if !strings.Contains(mainLoopRegion, "loopFilteredIdx") {
		t.Fatalf("filteredIdx bookkeeping must live inside the filter guard, region:\n%s", mainLoopRegion)
	}
	if !strings.Contains(mainLoopRegion, "Ran") || !strings.Contains(mainLoopRegion, "= true") {
		t.Fatalf("the ran flag must be set to true inside the filter guard, region:\n%s", mainLoopRegion)
	}
}

// TestGoldenInclusiveRangeLength checks the off-by-one fix: an
// inclusive range's loop.Len must count hi-lo+1 elements, not hi-lo.
func TestGoldenInclusiveRangeLength(t *testing.T) {
	const src = `{% for i in 0..=3 %}{{ i }}{% endfor %}`
	body, _, _ := compileSource(t, nil, "t.txt", src, nil)

	if !strings.Contains(body, "+ 1") {
		t.Fatalf("expected the inclusive range's total length expression to add 1, body:\n%s", body)
	}
}
