package generator

import (
	"strings"
	"testing"
)

// TestBindMacroArgsValidation covers spec.md §4.6/§7's required Arity
// and Shape errors for a `{% call %}` site: too many positional
// arguments, a named argument the macro doesn't declare, and a
// positional argument following a named one must all be rejected
// before any binding happens, rather than silently dropped or ignored.
func TestBindMacroArgsValidation(t *testing.T) {
	const macro = `{% macro g(x, y=2) %}{{ x }}-{{ y }}{% endmacro %}`

	tests := []struct {
		name    string
		call    string
		wantErr string
	}{
		{
			name:    "too many positional",
			call:    `{% call g(1, 2, 3) %}{% endcall %}`,
			wantErr: "at most 2 argument",
		},
		{
			name:    "unknown named argument",
			call:    `{% call g(1, z=3) %}{% endcall %}`,
			wantErr: `no parameter named "z"`,
		},
		{
			name:    "positional after named",
			call:    `{% call g(x=1, 2) %}{% endcall %}`,
			wantErr: "positional argument follows a named argument",
		},
		{
			name:    "missing required argument",
			call:    `{% call g() %}{% endcall %}`,
			wantErr: `missing required argument "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := compileSourceErr(t, nil, "t.txt", macro+tt.call, nil)
			if err == nil {
				t.Fatalf("expected an error, got none")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

// TestBindMacroArgsAcceptsValidCalls is S5 at the binding-validation
// layer: positional-only and positional+named-override calls through
// a default both bind without error.
func TestBindMacroArgsAcceptsValidCalls(t *testing.T) {
	const macro = `{% macro g(x, y=2) %}{{ x }}-{{ y }}{% endmacro %}`

	tests := []string{
		`{% call g(10) %}{% endcall %}`,
		`{% call g(1, y=7) %}{% endcall %}`,
		`{% call g(x=1, y=7) %}{% endcall %}`,
	}
	for _, call := range tests {
		if err := compileSourceErr(t, nil, "t.txt", macro+call, nil); err != nil {
			t.Errorf("unexpected error for %q: %v", call, err)
		}
	}
}
