// Package macros validates macro declarations and import graphs ahead
// of code generation. Grounded on zipreport-miya/macros/macros.go's
// MacroRegistry.Register duplicate-name rejection and its
// parameter/default binding rules in MacroExecutor.Execute — retargeted
// from a runtime registry consulted on every call to a one-time,
// compile-time validation pass, since this generator resolves and
// inlines every macro call directly from ast.Context.Macros/Imports
// rather than dispatching through a registry at render time.
package macros

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
	"github.com/zipreport/tmplforge/loader"
)

// Validate checks one context's own macro declarations: a required
// parameter may not follow a defaulted one, and no two parameters may
// share a name (spec.md §4.9's macro-call argument-binding invariants,
// checked here once at compile time instead of once per call).
func Validate(ctx *ast.Context) error {
	for name, def := range ctx.Macros {
		seenDefault := false
		seenNames := make(map[string]bool, len(def.Params))
		for _, p := range def.Params {
			if seenNames[p.Name] {
				return fmt.Errorf("macro %q in %s: duplicate parameter %q", name, ctx.Path, p.Name)
			}
			seenNames[p.Name] = true

			if p.Default != nil {
				seenDefault = true
				continue
			}
			if seenDefault {
				return fmt.Errorf("macro %q in %s: required parameter %q follows a defaulted one", name, ctx.Path, p.Name)
			}
		}
	}
	return nil
}

// CheckImportGraph walks root's `{% import %}` declarations
// transitively and rejects a cycle (an import chain that returns to a
// template already on the path), the same failure mode
// heritage.buildChain guards against for `extends`, applied here to
// the separate graph `import` forms.
func CheckImportGraph(root *ast.Context, finder *loader.Finder) error {
	return walkImports(root, finder, map[string]bool{root.Path: true})
}

func walkImports(ctx *ast.Context, finder *loader.Finder, seen map[string]bool) error {
	if err := Validate(ctx); err != nil {
		return err
	}
	for alias, target := range ctx.Imports {
		resolved, err := finder.Resolve(target, ctx.Path)
		if err != nil {
			return fmt.Errorf("resolving import %q (%s) in %s: %w", alias, target, ctx.Path, err)
		}
		if seen[resolved] {
			return fmt.Errorf("import cycle detected: %s imports %q which reaches %s again", ctx.Path, alias, resolved)
		}
		imported, err := finder.Load(resolved)
		if err != nil {
			return err
		}
		childSeen := make(map[string]bool, len(seen)+1)
		for k := range seen {
			childSeen[k] = true
		}
		childSeen[resolved] = true
		if err := walkImports(imported, finder, childSeen); err != nil {
			return err
		}
	}
	return nil
}
