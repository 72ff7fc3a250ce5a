package filters

import (
	"strings"
	"testing"
)

// TestLinebreaksEscapesInputFirst is the regression test for spec.md
// §4.11's linebreaks family: input must be HTML-escaped before the
// filter's own <p>/<br> markup is added, regardless of what escaper
// the calling template is configured with, since these functions are
// called directly rather than through the configurable escaper path.
func TestLinebreaksEscapesInputFirst(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string, ...string) (string, error)
		in   string
		want string
	}{
		{
			name: "Linebreaks wraps paragraphs and escapes markup",
			fn:   Linebreaks,
			in:   "<script>\nhi",
			want: "<p>&lt;script&gt;<br>hi</p>",
		},
		{
			name: "LinebreaksBr converts newlines only",
			fn:   LinebreaksBr,
			in:   "a & b\nc < d",
			want: "a &amp; b<br>c &lt; d",
		},
		{
			name: "ParagraphBreaks wraps without converting internal newlines",
			fn:   ParagraphBreaks,
			in:   "one\ntwo\n\nthree",
			want: "<p>one\ntwo</p>\n<p>three</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

// TestLinebreaksNeverLeavesRawAngleBrackets guards against the
// double-escape/no-escape regression directly: no output of any
// linebreaks-family function should contain an un-escaped '<' or '>'
// other than the filter's own <p>/<br> tags.
func TestLinebreaksNeverLeavesRawAngleBrackets(t *testing.T) {
	const in = "<b>bold</b>\n\n<i>italic</i>"

	out, err := Linebreaks(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stripped := strings.NewReplacer("<p>", "", "</p>", "", "<br>", "").Replace(out)
	if strings.ContainsAny(stripped, "<>") {
		t.Fatalf("expected every non-filter angle bracket escaped, got %q", out)
	}
}

func TestStripTagsRemovesMarkup(t *testing.T) {
	got, err := StripTags("<b>bold</b> text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "bold text"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestURLEncodeEscapesReserved(t *testing.T) {
	got, err := URLEncode("a b&c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "a+b%26c"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
