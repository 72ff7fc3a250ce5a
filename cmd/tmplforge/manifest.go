package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/zipreport/tmplforge/config"
)

// GenericSpec is one generic type parameter's manifest entry
// (`name: T, constraint: fmt.Stringer`).
type GenericSpec struct {
	Name       string `mapstructure:"name"`
	Constraint string `mapstructure:"constraint"`
}

// TemplateSpec is one manifest entry under `templates:` — everything
// needed to build a config.TemplateInput for one template struct.
type TemplateSpec struct {
	Struct    string        `mapstructure:"struct"`
	Path      string        `mapstructure:"path"`
	Package   string        `mapstructure:"package"`
	OutFile   string        `mapstructure:"out"`
	OnlyBlock string        `mapstructure:"only_block"`
	Generics  []GenericSpec `mapstructure:"generics"`
}

// Manifest is the whole tmplforge.yaml document.
type Manifest struct {
	Roots     []string       `mapstructure:"roots"`
	OutDir    string         `mapstructure:"out_dir"`
	Package   string         `mapstructure:"package"`
	// Escapers, if set, names a YAML file of additional/overriding
	// escaper-table entries merged over config.New()'s defaults.
	Escapers  string         `mapstructure:"escapers"`
	Templates []TemplateSpec `mapstructure:"templates"`
}

func loadManifest() (*Manifest, error) {
	var m Manifest
	if err := viper.Unmarshal(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if len(m.Roots) == 0 {
		m.Roots = []string{"."}
	}
	if m.OutDir == "" {
		m.OutDir = "."
	}
	if m.Package == "" {
		m.Package = "templates"
	}
	return &m, nil
}

func (s TemplateSpec) toInput(cfg *config.Config) config.TemplateInput {
	ext := extensionOf(s.Path)
	escaperPath, mime := cfg.EscaperFor(ext)

	generics := make([]config.Generic, len(s.Generics))
	for i, g := range s.Generics {
		generics[i] = config.Generic{Name: g.Name, Constraint: g.Constraint}
	}

	return config.TemplateInput{
		StructName:     s.Struct,
		Generics:       generics,
		Path:           s.Path,
		Source:         config.SourcePath,
		Extension:      ext,
		MIMEType:       mime,
		EscaperPath:    escaperPath,
		OnlyBlock:      s.OnlyBlock,
		DiscardInitial: s.OnlyBlock != "",
	}
}

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

func (s TemplateSpec) outputPath(m *Manifest) string {
	if s.OutFile != "" {
		return s.OutFile
	}
	return m.OutDir + "/" + s.Struct + "_template.go"
}

func (s TemplateSpec) pkg(m *Manifest) string {
	if s.Package != "" {
		return s.Package
	}
	return m.Package
}
