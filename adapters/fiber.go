package adapters

import (
	"fmt"
	"io"
	"sync"
)

// Engine is a Fiber-views-compatible adapter (it implements the
// Load()/Render(io.Writer, name, data, layouts...) shape Fiber's
// `views.Engine` interface expects, without importing the fiber
// module — the same trick
// codingersid-legit-template/fiber/adapter.go's Engine relies on,
// since that interface only needs io.Writer and built-in types).
// Unlike that teacher, which parses a template fresh off disk per
// name on every Load, this Engine holds a registry of already-compiled
// Renderer factories: the compilation already happened, so Load is a
// no-op and Render is a name lookup plus one method call.
type Engine struct {
	mu        sync.RWMutex
	factories map[string]func(data any) (Renderer, error)
}

// NewEngine returns an empty registry.
func NewEngine() *Engine {
	return &Engine{factories: make(map[string]func(data any) (Renderer, error))}
}

// Register associates name with a factory that builds the Renderer
// for one request's data. Typically called once per compiled template
// at program startup.
func (e *Engine) Register(name string, factory func(data any) (Renderer, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.factories[name] = factory
}

// Load satisfies fiber's views.Engine interface; nothing to parse.
func (e *Engine) Load() error { return nil }

// Render looks up name and writes its rendering to w. layouts is
// accepted for interface compatibility and ignored: composition is
// expressed with `extends`/`block` at compile time, not chosen per
// request.
func (e *Engine) Render(w io.Writer, name string, data any, layouts ...string) error {
	e.mu.RLock()
	factory, ok := e.factories[name]
	e.mu.RUnlock()
	if !ok {
		return fmt.Errorf("adapters: no template registered as %q", name)
	}
	tmpl, err := factory(data)
	if err != nil {
		return err
	}
	return tmpl.RenderInto(w)
}
