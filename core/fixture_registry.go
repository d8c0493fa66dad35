package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// StaticFixtureRegistry is an in-memory ComponentRegistry and MarkerLookup for
// hosts that resolve configuration up front.
type StaticFixtureRegistry struct {
	mu         sync.RWMutex
	components map[string]MockServerPortConfig
	markers    map[string]map[string]struct{}
}

func NewStaticFixtureRegistry() *StaticFixtureRegistry {
	return &StaticFixtureRegistry{
		components: map[string]MockServerPortConfig{},
		markers:    map[string]map[string]struct{}{},
	}
}

func (r *StaticFixtureRegistry) RegisterComponent(kind string, config MockServerPortConfig) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return fmt.Errorf("core: component kind is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[kind] = config
	return nil
}

func (r *StaticFixtureRegistry) RemoveComponent(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.components, strings.TrimSpace(kind))
}

func (r *StaticFixtureRegistry) Mark(className string, markerKind string) error {
	className = strings.TrimSpace(className)
	markerKind = strings.TrimSpace(markerKind)
	if className == "" {
		return fmt.Errorf("core: test class name is required")
	}
	if markerKind == "" {
		return fmt.Errorf("core: marker kind is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.markers[className]
	if !ok {
		set = map[string]struct{}{}
		r.markers[className] = set
	}
	set[markerKind] = struct{}{}
	return nil
}

func (r *StaticFixtureRegistry) HasComponent(_ context.Context, kind string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.components[strings.TrimSpace(kind)]
	return ok, nil
}

func (r *StaticFixtureRegistry) GetComponent(_ context.Context, kind string) (MockServerPortConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	config, ok := r.components[strings.TrimSpace(kind)]
	if !ok {
		return MockServerPortConfig{}, fmt.Errorf("core: component %q not registered", kind)
	}
	return config, nil
}

func (r *StaticFixtureRegistry) HasMarker(_ context.Context, class TestClass, markerKind string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.markers[strings.TrimSpace(class.Name)][strings.TrimSpace(markerKind)]
	return ok, nil
}

var (
	_ ComponentRegistry = (*StaticFixtureRegistry)(nil)
	_ MarkerLookup      = (*StaticFixtureRegistry)(nil)
)
