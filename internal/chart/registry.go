package chart

import (
	"fmt"
	"io"
	"sync"
)

// Options controls the output image.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions is used for zero Options fields.
var DefaultOptions = Options{Width: 1024, Height: 512}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultOptions.Width
	}
	if o.Height <= 0 {
		o.Height = DefaultOptions.Height
	}
	return o
}

// RenderFunc draws s to w as a PNG image.
type RenderFunc func(w io.Writer, s Series, o Options) error

// Definition describes a registered chart type.
type Definition struct {
	Type        Type
	Label       string
	Description string
	// RendersAs names the type whose renderer is used when the type has no
	// dedicated image layout. Empty means Render is used directly.
	RendersAs Type
	Render    RenderFunc
}

var (
	registry   = make(map[Type]Definition)
	order      []Type
	registryMu sync.RWMutex
)

// Register adds a chart type.
// Panics if the type is already registered or has no renderer.
func Register(def Definition) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[def.Type]; exists {
		panic(fmt.Sprintf("chart type already registered: %s", def.Type))
	}
	if def.Render == nil && def.RendersAs == "" {
		panic(fmt.Sprintf("chart type has no renderer: %s", def.Type))
	}

	registry[def.Type] = def
	order = append(order, def.Type)
}

// Lookup returns the definition of t.
func Lookup(t Type) (Definition, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[t]
	return def, ok
}

// Types returns all registered types in registration order.
func Types() []Type {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Type, len(order))
	copy(out, order)
	return out
}

// All returns all registered definitions in registration order.
func All() []Definition {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Definition, 0, len(order))
	for _, t := range order {
		out = append(out, registry[t])
	}
	return out
}

// renderer resolves the function that draws t, following RendersAs.
func renderer(t Type) (RenderFunc, error) {
	seen := make(map[Type]bool)
	for {
		def, ok := Lookup(t)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
		}
		if def.RendersAs == "" {
			return def.Render, nil
		}
		if seen[t] {
			return nil, fmt.Errorf("chart type %q: renderer cycle", t)
		}
		seen[t] = true
		t = def.RendersAs
	}
}
