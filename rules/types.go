package rules

import (
	"fmt"
	"sync"
)

// Binding is the environment a rule sees for one catalog entry.
type Binding struct {
	Name           string
	Ordinal        int
	Current        string
	CurrentOrdinal int
	Cardinality    int
	Args           map[string]any
	Metadata       map[string]any
}

func (b Binding) withDefaultMaps() Binding {
	if b.Args == nil {
		b.Args = map[string]any{}
	}
	if b.Metadata == nil {
		b.Metadata = map[string]any{}
	}
	return b
}

func (b Binding) entryLabel() string {
	if b.Name == "" {
		return fmt.Sprintf("#%d", b.Ordinal)
	}
	return fmt.Sprintf("%s#%d", b.Name, b.Ordinal)
}

// variables returns the names visible to expressions. Keep in sync with the
// CEL declarations in buildEnv.
func (b Binding) variables() map[string]any {
	return map[string]any{
		"name":            b.Name,
		"ordinal":         b.Ordinal,
		"current":         b.Current,
		"current_ordinal": b.CurrentOrdinal,
		"cardinality":     b.Cardinality,
		"args":            b.Args,
		"metadata":        b.Metadata,
	}
}

// Evaluator decides whether a catalog entry is selectable.
type Evaluator interface {
	Evaluate(b Binding, expr string) (bool, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(b Binding) (bool, error)
}

// ProgramCache stores compiled programs keyed by engine and expression.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MemoryCache is a ProgramCache backed by a map. Safe for concurrent use.
type MemoryCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryCache constructs an empty MemoryCache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{programs: map[string]any{}}
}

func (c *MemoryCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	program, ok := c.programs[key]
	return program, ok
}

func (c *MemoryCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = map[string]any{}
	}
	c.programs[key] = value
}

// Len reports the number of cached programs.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

func cacheKey(engine, expr string) string {
	return engine + ":" + expr
}
