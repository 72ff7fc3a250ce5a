package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/zipreport/tmplforge/config"
	"github.com/zipreport/tmplforge/generator"
	"github.com/zipreport/tmplforge/loader"
	"github.com/zipreport/tmplforge/macros"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Compile every template named in the manifest to Go source",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		return compileAll(m)
	},
}

// compileAll runs one compilation pass over every TemplateSpec in m,
// writing each to its manifest-declared output path. It is shared by
// `generate` and the `watch` loop's re-compile step.
func compileAll(m *Manifest) error {
	fs := afero.NewOsFs()
	finder := loader.New(fs, m.Roots...)
	cfg := config.New()
	if m.Escapers != "" {
		data, err := afero.ReadFile(fs, m.Escapers)
		if err != nil {
			return fmt.Errorf("reading escaper table %q: %w", m.Escapers, err)
		}
		if err := cfg.LoadEscapers(data); err != nil {
			return err
		}
	}

	for _, spec := range m.Templates {
		if err := compileOne(fs, finder, cfg, m, spec); err != nil {
			return fmt.Errorf("compiling %s: %w", spec.Struct, err)
		}
		fmt.Fprintf(os.Stderr, "compiled %s -> %s\n", spec.Path, spec.outputPath(m))
	}
	return nil
}

func compileOne(fs afero.Fs, finder *loader.Finder, cfg *config.Config, m *Manifest, spec TemplateSpec) error {
	ctx, err := finder.Resolve(spec.Path, "")
	if err != nil {
		return err
	}
	leaf, err := finder.Load(ctx)
	if err != nil {
		return err
	}
	if err := macros.CheckImportGraph(leaf, finder); err != nil {
		return err
	}

	input := spec.toInput(cfg)
	gen, err := generator.New(cfg, input, finder, leaf)
	if err != nil {
		return err
	}
	src, err := generator.RenderFile(gen, spec.pkg(m))
	if err != nil {
		return err
	}

	return afero.WriteFile(fs, spec.outputPath(m), []byte(src), 0o644)
}
