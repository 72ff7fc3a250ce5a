// Package heritage resolves template inheritance (`extends`/`block`)
// into the Heritage map spec.md §3 describes: for every block name
// visible from a root template, an ordered ancestry of (context,
// block-def) pairs from most-derived to base, used by the generator's
// block/super() emitter (spec.md §4.8) to splice overrides and walk
// super() one generation at a time.
//
// Grounded on zipreport-miya/inheritance/inheritance.go's
// InheritanceResolver: the parent-chain walk and "child overrides
// parent, but keeps the parent reachable" merge is the same idea,
// restructured into an ordered slice (rather than a linked Parent
// pointer) because super() resolution indexes by generation number
// (spec.md §4.8's `(name, generation)` state).
package heritage

import (
	"fmt"

	"github.com/zipreport/tmplforge/ast"
)

// Loader resolves a template path to its parsed Context, the
// boundary the heritage resolver crosses to walk an extends chain.
type Loader interface {
	Load(path string) (*ast.Context, error)
}

// Generation is one (context, block-def) pair in a block's ancestry,
// most-derived first.
type Generation struct {
	Ctx  *ast.Context
	Def  *ast.BlockDef
}

// Heritage maps a block name to its ordered ancestry across the
// extends chain rooted at one template.
type Heritage struct {
	// Blocks[name][0] is the most-derived definition; Blocks[name][i+1]
	// is what `super()` resolves to from generation i.
	Blocks map[string][]Generation
	// Chain is the leaf-to-root list of contexts contributing to this
	// template, leaf (most derived) first.
	Chain []*ast.Context
}

// Resolve walks ctx's `extends` chain (via loader) and builds the
// Heritage map for it. ctx itself is treated as the most-derived
// (leaf) context.
func Resolve(ctx *ast.Context, loader Loader) (*Heritage, error) {
	chain, err := buildChain(ctx, loader, map[string]bool{ctx.Path: true})
	if err != nil {
		return nil, err
	}

	h := &Heritage{Blocks: make(map[string][]Generation), Chain: chain}
	for _, c := range chain {
		for name, def := range c.Blocks {
			h.Blocks[name] = append(h.Blocks[name], Generation{Ctx: c, Def: def})
		}
	}
	return h, nil
}

// buildChain returns [ctx, parent, grandparent, ...] by following
// `extends` targets, most-derived first.
func buildChain(ctx *ast.Context, loader Loader, seen map[string]bool) ([]*ast.Context, error) {
	chain := []*ast.Context{ctx}
	if ctx.Extends == "" {
		return chain, nil
	}
	if seen[ctx.Extends] {
		return nil, fmt.Errorf("extends cycle detected at %q", ctx.Extends)
	}
	seen[ctx.Extends] = true

	parent, err := loader.Load(ctx.Extends)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent template %q: %w", ctx.Extends, err)
	}
	parentChain, err := buildChain(parent, loader, seen)
	if err != nil {
		return nil, err
	}
	return append(chain, parentChain...), nil
}

// BlockNames returns every block name reachable from the heritage,
// each once, the leaf context's names before its ancestors'. The
// order of names within one context is not defined (map order).
func (h *Heritage) BlockNames() []string {
	seen := make(map[string]bool, len(h.Blocks))
	var names []string
	for _, c := range h.Chain {
		for name := range c.Blocks {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Super returns the (ctx, def) pair one generation above gen for
// block name, or ok=false if there is no further ancestor (spec.md
// §4.8: "super() outside any block is rejected" and "super() at the
// base of the chain" both surface as ok == false here, with the
// caller distinguishing the two by context).
func (h *Heritage) Super(name string, gen int) (Generation, bool) {
	chain := h.Blocks[name]
	if gen+1 >= len(chain) {
		return Generation{}, false
	}
	return chain[gen+1], true
}
