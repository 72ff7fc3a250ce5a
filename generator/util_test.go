package generator

import "testing"

func TestMedianInt(t *testing.T) {
	tests := []struct {
		name string
		nums []int
		want int
	}{
		{"empty", nil, 0},
		{"single", []int{7}, 7},
		{"odd-unsorted", []int{5, 1, 3}, 3},
		{"even-averages-middle-two", []int{1, 2, 3, 4}, 2}, // (2+3)/2 integer division
		{"implicit-zero-for-missing-else", []int{10, 0}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianInt(tt.nums); got != tt.want {
				t.Errorf("medianInt(%v) = %d, want %d", tt.nums, got, tt.want)
			}
		})
	}
}

// TestCaptureHintIsolatesAndRestores checks captureHint returns only
// the delta its closure contributes and leaves the generator's
// ambient sizeHint exactly as it found it, so a caller composing
// several captured hints (if/match/for's per-arm combination) never
// double-counts a nested flush against the outer accumulation.
func TestCaptureHintIsolatesAndRestores(t *testing.T) {
	g := &Generator{sizeHint: 100}

	hint, err := g.captureHint(func() error {
		g.sizeHint += 42
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hint != 42 {
		t.Fatalf("captureHint returned %d, want 42", hint)
	}
	if g.sizeHint != 100 {
		t.Fatalf("g.sizeHint = %d after captureHint, want it restored to 100", g.sizeHint)
	}
}

func TestCaptureHintPropagatesError(t *testing.T) {
	g := &Generator{}
	boom := errFixture("boom")
	_, err := g.captureHint(func() error { return boom })
	if err != boom {
		t.Fatalf("captureHint swallowed or replaced the closure's error: %v", err)
	}
}

type errFixture string

func (e errFixture) Error() string { return string(e) }
