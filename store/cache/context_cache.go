package cachestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-contractkit/core"
	glog "github.com/goliatone/go-logger/glog"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const fixtureContextCacheKeyPrefix = "go-contractkit::fixture_context::v1"

// Fixture is a cached test context. Value is owned by the builder that
// produced it.
type Fixture struct {
	Key       string
	ParentKey string
	Value     any
	CreatedAt time.Time
}

type BuildFunc func(ctx context.Context) (Fixture, error)

type Option func(*ContextCache)

func WithLogger(logger core.Logger) Option {
	return func(c *ContextCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *ContextCache) {
		if now != nil {
			c.now = now
		}
	}
}

// ContextCache stores fixture contexts keyed by configuration fingerprint
// and tracks parent/child links so a context can be evicted together with
// every context derived from it.
type ContextCache struct {
	cache  repositorycache.CacheService
	logger core.Logger
	now    func() time.Time

	mu       sync.Mutex
	known    map[string]struct{}
	parents  map[string]string
	children map[string]map[string]struct{}
}

func NewContextCache(cacheService repositorycache.CacheService, opts ...Option) (*ContextCache, error) {
	if cacheService == nil {
		return nil, fmt.Errorf("cachestore: cache service is required")
	}
	c := &ContextCache{
		cache:    cacheService,
		logger:   glog.Nop(),
		now:      func() time.Time { return time.Now().UTC() },
		known:    map[string]struct{}{},
		parents:  map[string]string{},
		children: map[string]map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// FixtureContextCacheKey returns the cache key for a context key:
// go-contractkit::fixture_context::v1::<key> with the key URL-path escaped.
func FixtureContextCacheKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", fmt.Errorf("cachestore: context key is required")
	}
	return fixtureContextCacheKeyPrefix + "::" + url.PathEscape(key), nil
}

func (c *ContextCache) GetOrCreate(
	ctx context.Context,
	key string,
	parentKey string,
	build BuildFunc,
) (Fixture, error) {
	if c == nil || c.cache == nil {
		return Fixture{}, fmt.Errorf("cachestore: context cache is not configured")
	}
	if build == nil {
		return Fixture{}, fmt.Errorf("cachestore: build function is required")
	}
	key = strings.TrimSpace(key)
	parentKey = strings.TrimSpace(parentKey)
	if key != "" && key == parentKey {
		return Fixture{}, fmt.Errorf("cachestore: context %q cannot be its own parent", key)
	}
	cacheKey, err := FixtureContextCacheKey(key)
	if err != nil {
		return Fixture{}, err
	}

	fixture, err := repositorycache.GetOrFetch(ctx, c.cache, cacheKey, func(ctx context.Context) (Fixture, error) {
		built, buildErr := build(ctx)
		if buildErr != nil {
			return Fixture{}, buildErr
		}
		built.Key = key
		built.ParentKey = parentKey
		if built.CreatedAt.IsZero() {
			built.CreatedAt = c.now()
		}
		c.logger.Debug("fixture context created", "context_key", key, "parent_key", parentKey)
		return built, nil
	})
	if err != nil {
		return Fixture{}, err
	}
	c.track(key, parentKey)
	return fixture, nil
}

// Invalidate evicts the scoped context. Exhaustive scopes also evict every
// descendant. Unknown keys are a no-op.
func (c *ContextCache) Invalidate(ctx context.Context, scope core.InvalidationScope) error {
	if c == nil || c.cache == nil {
		return fmt.Errorf("cachestore: context cache is not configured")
	}
	key := strings.TrimSpace(scope.ContextKey)
	if key == "" {
		return fmt.Errorf("cachestore: invalidation context key is required")
	}

	targets := c.collect(key, scope.Mode == core.HierarchyExhaustive)
	for _, target := range targets {
		cacheKey, err := FixtureContextCacheKey(target)
		if err != nil {
			return err
		}
		if err := c.cache.Delete(ctx, cacheKey); err != nil {
			return err
		}
		c.untrack(target)
	}
	if len(targets) > 0 {
		c.logger.Info("fixture context invalidated",
			"context_key", key,
			"mode", string(scope.Mode),
			"evicted", len(targets),
			"reason", scope.Reason,
		)
	}
	return nil
}

// Keys returns the tracked context keys in sorted order.
func (c *ContextCache) Keys() []string {
	if c == nil {
		return []string{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.known))
	for key := range c.known {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// track records key under parentKey. A blank parentKey keeps any existing
// link; a different parent moves the key out of its old parent's children.
func (c *ContextCache) track(key, parentKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known[key] = struct{}{}
	if parentKey == "" {
		return
	}
	if previous, ok := c.parents[key]; ok && previous != parentKey {
		c.unlinkLocked(key, previous)
	}
	c.parents[key] = parentKey
	if c.children[parentKey] == nil {
		c.children[parentKey] = map[string]struct{}{}
	}
	c.children[parentKey][key] = struct{}{}
}

func (c *ContextCache) untrack(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.known, key)
	if parent, ok := c.parents[key]; ok {
		c.unlinkLocked(key, parent)
		delete(c.parents, key)
	}
}

func (c *ContextCache) unlinkLocked(key, parent string) {
	delete(c.children[parent], key)
	if len(c.children[parent]) == 0 {
		delete(c.children, parent)
	}
}

// collect returns key and, when descend is set, its descendants, deepest
// first so children are evicted before their parents.
func (c *ContextCache) collect(key string, descend bool) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.known[key]; !ok && len(c.children[key]) == 0 {
		return nil
	}
	if !descend {
		return []string{key}
	}

	ordered := []string{}
	visited := map[string]struct{}{}
	var walk func(string)
	walk = func(current string) {
		if _, seen := visited[current]; seen {
			return
		}
		visited[current] = struct{}{}
		children := make([]string, 0, len(c.children[current]))
		for child := range c.children[current] {
			children = append(children, child)
		}
		sort.Strings(children)
		for _, child := range children {
			walk(child)
		}
		ordered = append(ordered, current)
	}
	walk(key)
	return ordered
}

// Fingerprint hashes the canonical JSON form of parts. Map keys are sorted
// by encoding/json so equal configurations share a fingerprint.
func Fingerprint(parts map[string]any) (string, error) {
	if parts == nil {
		parts = map[string]any{}
	}
	encoded, err := json.Marshal(parts)
	if err != nil {
		return "", fmt.Errorf("cachestore: encode fingerprint parts: %w", err)
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

var _ core.ContextInvalidator = (*ContextCache)(nil)
