package config

import "testing"

func TestNewDefaults(t *testing.T) {
	c := New()
	if c.Whitespace != Suppress {
		t.Errorf("default whitespace policy = %v, want Suppress", c.Whitespace)
	}
	path, mime := c.EscaperFor("html")
	if path != "runtime.HTML" {
		t.Errorf("EscaperFor(html) path = %q, want runtime.HTML", path)
	}
	if mime != "text/html; charset=utf-8" {
		t.Errorf("EscaperFor(html) mime = %q", mime)
	}
}

func TestEscaperForUnknownExtensionFallsBackToDefault(t *testing.T) {
	c := New()
	path, mime := c.EscaperFor("xyz")
	if path != c.DefaultEscaperPath {
		t.Errorf("EscaperFor(xyz) path = %q, want default %q", path, c.DefaultEscaperPath)
	}
	if mime != "text/plain; charset=utf-8" {
		t.Errorf("EscaperFor(xyz) mime = %q", mime)
	}
}

func TestEscaperByName(t *testing.T) {
	c := New()
	path, err := c.EscaperByName("HTML")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "runtime.HTML" {
		t.Errorf("EscaperByName(HTML) = %q, want runtime.HTML", path)
	}

	if _, err := c.EscaperByName("NoSuchEscaper"); err == nil {
		t.Fatal("expected an error for an unknown escaper name")
	}
}

// TestLoadEscapersPrependsOverrides covers config.Config.LoadEscapers:
// a project's YAML escaper table is prepended over New()'s built-in
// defaults (so a matching extension in the override table wins) while
// every default entry the override doesn't name stays available.
func TestLoadEscapersPrependsOverrides(t *testing.T) {
	c := New()
	before := len(c.Escapers)

	yaml := []byte(`
escapers:
  - extensions: ["html"]
    path: "myapp/escape.Strict"
    mime_type: "text/html; charset=utf-8"
  - extensions: ["tpl"]
    path: "runtime.Text"
    mime_type: "text/plain; charset=utf-8"
`)
	if err := c.LoadEscapers(yaml); err != nil {
		t.Fatalf("LoadEscapers: %v", err)
	}

	if got := len(c.Escapers); got != before+2 {
		t.Fatalf("len(Escapers) = %d, want %d", got, before+2)
	}

	// The override for "html" must win over the built-in entry, since
	// it was prepended and EscaperFor returns the first match.
	path, _ := c.EscaperFor("html")
	if path != "myapp/escape.Strict" {
		t.Errorf("EscaperFor(html) after override = %q, want the override path", path)
	}

	// An extension LoadEscapers never mentioned still resolves through
	// the built-in defaults.
	path, _ = c.EscaperFor("json")
	if path != "runtime.Text" {
		t.Errorf("EscaperFor(json) = %q, want the untouched built-in default", path)
	}

	path, _ = c.EscaperFor("tpl")
	if path != "runtime.Text" {
		t.Errorf("EscaperFor(tpl) = %q, want the new entry's path", path)
	}
}

func TestLoadEscapersRejectsInvalidYAML(t *testing.T) {
	c := New()
	if err := c.LoadEscapers([]byte("not: [valid")); err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}
