package transport

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-contractkit/core"
)

type SinkFactory func(config map[string]any) (core.EnvelopeSink, error)

// Registry holds envelope sinks by kind. Built sinks are cached so Get can
// resolve them afterwards.
type Registry struct {
	mu        sync.RWMutex
	sinks     map[string]core.EnvelopeSink
	factories map[string]SinkFactory
}

func NewRegistry() *Registry {
	return &Registry{
		sinks:     map[string]core.EnvelopeSink{},
		factories: map[string]SinkFactory{},
	}
}

func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	_ = registry.Register(NewMemorySink(KindMemory))
	_ = registry.RegisterFactory(KindHTTP, httpSinkFactory)
	return registry
}

func (r *Registry) Register(sink core.EnvelopeSink) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	if sink == nil {
		return fmt.Errorf("transport: sink is nil")
	}
	kind := normalizeKind(sink.Kind())
	if kind == "" {
		return fmt.Errorf("transport: sink kind is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sinks[kind]; exists {
		return fmt.Errorf("transport: sink kind %q already registered", kind)
	}
	r.sinks[kind] = sink
	return nil
}

func (r *Registry) RegisterFactory(kind string, factory SinkFactory) error {
	if r == nil {
		return fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return fmt.Errorf("transport: sink kind is required")
	}
	if factory == nil {
		return fmt.Errorf("transport: sink factory is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("transport: sink factory kind %q already registered", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Build returns the registered sink for kind, or builds and registers one
// from its factory.
func (r *Registry) Build(kind string, config map[string]any) (core.EnvelopeSink, error) {
	if r == nil {
		return nil, fmt.Errorf("transport: registry is nil")
	}
	kind = normalizeKind(kind)
	if kind == "" {
		return nil, fmt.Errorf("transport: sink kind is required")
	}

	r.mu.RLock()
	sink, ok := r.sinks[kind]
	factory := r.factories[kind]
	r.mu.RUnlock()
	if ok {
		return sink, nil
	}
	if factory == nil {
		return nil, fmt.Errorf("transport: sink kind %q not registered", kind)
	}
	built, err := factory(cloneMap(config))
	if err != nil {
		return nil, err
	}
	if built == nil {
		return nil, fmt.Errorf("transport: factory for %q returned nil sink", kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, exists := r.sinks[kind]; exists {
		return existing, nil
	}
	r.sinks[kind] = built
	return built, nil
}

func (r *Registry) Get(kind string) (core.EnvelopeSink, bool) {
	if r == nil {
		return nil, false
	}
	kind = normalizeKind(kind)
	r.mu.RLock()
	defer r.mu.RUnlock()
	sink, ok := r.sinks[kind]
	return sink, ok
}

func (r *Registry) List() []core.EnvelopeSink {
	if r == nil {
		return []core.EnvelopeSink{}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.sinks))
	for kind := range r.sinks {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	result := make([]core.EnvelopeSink, 0, len(kinds))
	for _, kind := range kinds {
		result = append(result, r.sinks[kind])
	}
	return result
}

func normalizeKind(kind string) string {
	return strings.TrimSpace(strings.ToLower(kind))
}

func cloneMap(input map[string]any) map[string]any {
	output := make(map[string]any, len(input))
	for key, value := range input {
		output[key] = value
	}
	return output
}

var _ core.SinkResolver = (*Registry)(nil)
