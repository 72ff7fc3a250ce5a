package generator

import (
	"testing"

	"github.com/spf13/afero"

	"github.com/zipreport/tmplforge/config"
	"github.com/zipreport/tmplforge/loader"
)

// compileSource parses path's source (and every entry in extra, keyed
// by path) on an in-memory filesystem and runs the full generate
// pipeline, returning the render method body (not a complete file;
// RenderFile assembles that). It is the table-driven golden tests'
// single entry point into the generator, mirroring how
// cmd/tmplforge/generate.go drives the same package.
func compileSource(t *testing.T, cfg *config.Config, path, src string, extra map[string]string) (string, int, map[string]bool) {
	t.Helper()
	if cfg == nil {
		cfg = config.New()
	}

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, path, []byte(src), 0o644); err != nil {
		t.Fatalf("seeding %q: %v", path, err)
	}
	for p, s := range extra {
		if err := afero.WriteFile(fs, p, []byte(s), 0o644); err != nil {
			t.Fatalf("seeding %q: %v", p, err)
		}
	}

	finder := loader.New(fs)
	leaf, err := finder.Load(path)
	if err != nil {
		t.Fatalf("loading %q: %v", path, err)
	}

	ext := extensionOf(path)
	escaperPath, mime := cfg.EscaperFor(ext)
	input := config.TemplateInput{
		StructName:  "T",
		Path:        path,
		Extension:   ext,
		MIMEType:    mime,
		EscaperPath: escaperPath,
	}
	gen, err := New(cfg, input, finder, leaf)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	body, sizeHint, used, err := gen.Generate()
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	return body, sizeHint, used
}

// compileSourceErr is compileSource's counterpart for cases expected
// to fail: it returns the error instead of fatally aborting the test.
func compileSourceErr(t *testing.T, cfg *config.Config, path, src string, extra map[string]string) error {
	t.Helper()
	if cfg == nil {
		cfg = config.New()
	}

	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, path, []byte(src), 0o644); err != nil {
		t.Fatalf("seeding %q: %v", path, err)
	}
	for p, s := range extra {
		if err := afero.WriteFile(fs, p, []byte(s), 0o644); err != nil {
			t.Fatalf("seeding %q: %v", p, err)
		}
	}

	finder := loader.New(fs)
	leaf, err := finder.Load(path)
	if err != nil {
		return err
	}

	ext := extensionOf(path)
	escaperPath, mime := cfg.EscaperFor(ext)
	input := config.TemplateInput{StructName: "T", Path: path, Extension: ext, MIMEType: mime, EscaperPath: escaperPath}
	gen, err := New(cfg, input, finder, leaf)
	if err != nil {
		return err
	}
	_, _, _, err = gen.Generate()
	return err
}

// extensionOf mirrors cmd/tmplforge/manifest.go's extensionOf, kept as
// a private copy here since generator must not import the cmd package.
func extensionOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
		if path[i] == '/' {
			break
		}
	}
	return ""
}
