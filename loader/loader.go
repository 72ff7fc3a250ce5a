// Package loader discovers and parses template files. Grounded on
// zipreport-miya/loader/loader.go's Loader/CachingLoader interfaces
// (trimmed to the operations the generator's `include`/`extends`/
// `import` resolution actually needs) and
// panyam-templar/fs.go's FileSystemLoader (base-relative resolution
// for `include`). Backed by an afero.Fs instead of bare os calls so
// compilation can run against an in-memory tree in tests.
package loader

import (
	"fmt"
	"path"
	"sync"

	"github.com/spf13/afero"

	"github.com/zipreport/tmplforge/ast"
	"github.com/zipreport/tmplforge/parser"
)

// Finder resolves a template reference relative to a base template's
// path (spec.md §6 "template search function: find(target, base) →
// path") and parses the result, caching by resolved path.
type Finder struct {
	fs    afero.Fs
	roots []string

	mu    sync.RWMutex
	cache map[string]*ast.Context
}

// New returns a Finder that searches roots (in order) on fs for
// template files.
func New(fs afero.Fs, roots ...string) *Finder {
	return &Finder{fs: fs, roots: roots, cache: make(map[string]*ast.Context)}
}

// Resolve finds the on-disk path for target, preferring a path
// relative to base's directory (mirroring
// panyam-templar/fs.go's `isRelative` priority) before falling back
// to the configured search roots.
func (f *Finder) Resolve(target, base string) (string, error) {
	candidates := make([]string, 0, len(f.roots)+1)
	if base != "" {
		candidates = append(candidates, path.Join(path.Dir(base), target))
	}
	for _, root := range f.roots {
		candidates = append(candidates, path.Join(root, target))
	}
	if base == "" && len(f.roots) == 0 {
		candidates = append(candidates, target)
	}

	for _, c := range candidates {
		if ok, _ := afero.Exists(f.fs, c); ok {
			return c, nil
		}
	}
	return "", fmt.Errorf("template %q not found (base %q, searched %v)", target, base, candidates)
}

// Load parses and caches the template at the given resolved path.
func (f *Finder) Load(resolvedPath string) (*ast.Context, error) {
	f.mu.RLock()
	if ctx, ok := f.cache[resolvedPath]; ok {
		f.mu.RUnlock()
		return ctx, nil
	}
	f.mu.RUnlock()

	data, err := afero.ReadFile(f.fs, resolvedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %q: %w", resolvedPath, err)
	}
	ctx, err := parser.Parse(resolvedPath, string(data))
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.cache[resolvedPath] = ctx
	f.mu.Unlock()
	return ctx, nil
}

// LoadRelative resolves target against base and loads it in one step;
// the form `include`/`extends`/`import` emitters use.
func (f *Finder) LoadRelative(target, base string) (*ast.Context, error) {
	resolved, err := f.Resolve(target, base)
	if err != nil {
		return nil, err
	}
	return f.Load(resolved)
}

// Invalidate drops a cached parse so the next Load re-reads the file.
// The watch subcommand does not call it; it builds a new Finder for
// each recompile.
func (f *Finder) Invalidate(resolvedPath string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, resolvedPath)
}

// ListTemplates returns every file with the given extension under the
// search roots, matching zipreport-miya/loader's
// GetTemplatesByExtension.
func (f *Finder) ListTemplates(ext string) ([]string, error) {
	var out []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := afero.ReadDir(f.fs, dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			full := path.Join(dir, e.Name())
			if e.IsDir() {
				if err := walk(full); err != nil {
					return err
				}
				continue
			}
			if path.Ext(e.Name()) == "."+ext {
				out = append(out, full)
			}
		}
		return nil
	}
	for _, root := range f.roots {
		if err := walk(root); err != nil {
			return nil, err
		}
	}
	return out, nil
}
