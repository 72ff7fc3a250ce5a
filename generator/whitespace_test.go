package generator

import (
	"strings"
	"testing"

	"github.com/zipreport/tmplforge/ast"
	"github.com/zipreport/tmplforge/config"
)

func TestMinimizeLeadingCollapsesToNewlineOrSpace(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"newline present", "\n   X", "\nX"},
		{"spaces only", "   X", " X"},
		{"nothing to trim", "X", "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := minimizeLeading(tt.in); got != tt.want {
				t.Errorf("minimizeLeading(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMinimizeTrailingCollapsesToNewlineOrSpace(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"newline present", "X\n   ", "X\n"},
		{"spaces only", "X   ", "X "},
		{"nothing to trim", "X", "X"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := minimizeTrailing(tt.in); got != tt.want {
				t.Errorf("minimizeTrailing(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWsStateEffectivePrefersTagMarkOverPolicy(t *testing.T) {
	s := newWsState(config.Preserve)
	if got := s.effective(ast.MarkSuppress); got != config.Suppress {
		t.Errorf("an explicit '-' mark must override the Preserve policy, got %v", got)
	}
	if got := s.effective(ast.MarkDefault); got != config.Preserve {
		t.Errorf("a default mark must defer to the configured policy, got %v", got)
	}
}

// TestGoldenSuppressTrimsAdjacentSiblingLiterals exercises property 5's
// suppress policy end to end: a `-` mark on an if-tag's opening and
// closing delimiters must strip the trailing/leading whitespace of the
// literal siblings immediately outside the construct, per
// nodeBoundaryWs/queueLit's sibling-boundary trimming.
func TestGoldenSuppressTrimsAdjacentSiblingLiterals(t *testing.T) {
	const src = "before {%- if a -%} X {%- endif -%} after"
	body, _, _ := compileSource(t, nil, "t.txt", src, nil)

	if !strings.Contains(body, `"before"`) {
		t.Fatalf("expected the leading literal's trailing space suppressed, body:\n%s", body)
	}
	if strings.Contains(body, `"before "`) {
		t.Fatalf("leading literal's trailing space was not suppressed, body:\n%s", body)
	}
	if !strings.Contains(body, `"after"`) {
		t.Fatalf("expected the trailing literal's leading space suppressed, body:\n%s", body)
	}
	if strings.Contains(body, `" after"`) {
		t.Fatalf("trailing literal's leading space was not suppressed, body:\n%s", body)
	}
}
