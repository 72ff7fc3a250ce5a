// Package config holds the collaborator inputs spec.md §6 lists as
// "Configuration": whitespace policy, the escaper table, and the
// template search function, plus the per-template TemplateInput the
// generator is invoked with. Grounded on zipreport-miya/environment.go's
// EnvironmentOption functional-options shape (trimBlocks/lstripBlocks/
// autoEscape fields become WhitespacePolicy/EscaperTable here).
package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// WhitespacePolicy is one of the three global policies spec.md §4.13
// names; per-tag `+`/`-`/`~` marks override it locally.
type WhitespacePolicy int

const (
	Preserve WhitespacePolicy = iota
	Suppress
	Minimize
)

func (p WhitespacePolicy) String() string {
	switch p {
	case Preserve:
		return "preserve"
	case Suppress:
		return "suppress"
	case Minimize:
		return "minimize"
	default:
		return "unknown"
	}
}

// Escaper is one entry of the escaper table: extensions it applies to,
// and the host-path of the escaper value to construct.
type Escaper struct {
	Extensions []string
	Path       string // e.g. "tmplforge/runtime.HTML"
	MIMEType   string
}

// Config is the immutable compile-time configuration shared by every
// template in a compilation run.
type Config struct {
	Whitespace WhitespacePolicy
	Escapers   []Escaper
	// DefaultEscaperPath is used when no escaper entry matches a
	// template's extension (including an empty extension).
	DefaultEscaperPath string
}

// New returns a Config with the corpus's conventional defaults:
// suppress whitespace (matching rinja's default trim behavior) and an
// HTML escaper for .html/.htm, falling through to a no-op text escaper.
func New() *Config {
	return &Config{
		Whitespace: Suppress,
		Escapers: []Escaper{
			{Extensions: []string{"html", "htm", "xml"}, Path: "runtime.HTML", MIMEType: "text/html; charset=utf-8"},
			{Extensions: []string{"txt", "md"}, Path: "runtime.Text", MIMEType: "text/plain; charset=utf-8"},
			{Extensions: []string{"json"}, Path: "runtime.Text", MIMEType: "application/json"},
		},
		DefaultEscaperPath: "runtime.Text",
	}
}

// EscaperFor resolves the escaper and MIME type for a file extension
// (without the leading dot); falls back to DefaultEscaperPath / "text/plain".
func (c *Config) EscaperFor(ext string) (path, mime string) {
	for _, e := range c.Escapers {
		for _, x := range e.Extensions {
			if x == ext {
				return e.Path, e.MIMEType
			}
		}
	}
	return c.DefaultEscaperPath, "text/plain; charset=utf-8"
}

// EscaperByName looks up an escaper by an explicit name passed to the
// `escape`/`e` filter's second argument (spec.md §4.11), matching
// against each entry's Path basename.
func (c *Config) EscaperByName(name string) (string, error) {
	for _, e := range c.Escapers {
		if basename(e.Path) == name {
			return e.Path, nil
		}
	}
	return "", fmt.Errorf("unknown escaper %q", name)
}

// LoadEscapers parses a YAML escaper-table document (a list of
// extensions/path/mime_type entries) and prepends the result onto the
// built-in defaults, so a project can add or override an escaper for
// an extension New doesn't know about without losing the rest.
func (c *Config) LoadEscapers(data []byte) error {
	var doc struct {
		Escapers []struct {
			Extensions []string `yaml:"extensions"`
			Path       string   `yaml:"path"`
			MIMEType   string   `yaml:"mime_type"`
		} `yaml:"escapers"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing escaper table: %w", err)
	}
	overrides := make([]Escaper, len(doc.Escapers))
	for i, e := range doc.Escapers {
		overrides[i] = Escaper{Extensions: e.Extensions, Path: e.Path, MIMEType: e.MIMEType}
	}
	c.Escapers = append(overrides, c.Escapers...)
	return nil
}

func basename(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '.' {
			return path[i+1:]
		}
	}
	return path
}

// SourceKind distinguishes a file-backed template from an inline
// (string-literal) one (spec.md §3 "TemplateInput").
type SourceKind int

const (
	SourcePath SourceKind = iota
	SourceInline
)

// Generic is one generic type parameter of the template struct, used
// by the C9 header emitter (spec.md §4.1) to reconstruct the
// impl/ty/where triple for the emitted methods.
type Generic struct {
	Name       string
	Constraint string // "" if unconstrained
}

// TemplateInput is everything the generator needs about one template
// struct, precomputed and immutable for the duration of compilation
// (spec.md §3).
type TemplateInput struct {
	StructName string
	Generics   []Generic
	Path       string // canonical template path
	Source     SourceKind
	InlineSrc  string // set when Source == SourceInline
	Extension  string
	MIMEType   string
	EscaperPath string
	// OnlyBlock, if non-empty, renders only that block's output
	// (spec.md §4.8, §8 property 7) and discards everything else.
	OnlyBlock string
	// DiscardInitial is the Buffer's initial discard state (true when
	// OnlyBlock is set and the root template is not itself that block).
	DiscardInitial bool
}
