package enum

import (
	"fmt"
	"reflect"
)

// Entry pairs an enumerator with its canonical name.
type Entry[T comparable] struct {
	Value T
	Name  string
}

// Catalog is the immutable, ordered table of entries for one enumeration.
// The index of an entry is its ordinal; declaration order is therefore part of
// the persisted contract and must not be reshuffled between releases.
//
// A Catalog is safe for concurrent reads once constructed.
type Catalog[T comparable] struct {
	typeName string
	entries  []Entry[T]
	names    []string
	byName   map[string]int
	byValue  map[T]int
}

// CatalogOption configures catalog declaration checks.
type CatalogOption func(*catalogConfig)

type catalogConfig struct {
	typeName    string
	cardinality int
}

// WithCardinality asserts the catalog holds exactly n entries. Pass the number
// of enumerators the type declares (usually a trailing iota sentinel) so a
// constant added without a catalog entry fails at startup.
func WithCardinality(n int) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.cardinality = n
	}
}

// WithTypeName overrides the type name reported in errors and descriptors.
func WithTypeName(name string) CatalogOption {
	return func(cfg *catalogConfig) {
		cfg.typeName = name
	}
}

// NewCatalog validates entries and builds a catalog. Entries are copied.
func NewCatalog[T comparable](entries []Entry[T], opts ...CatalogOption) (*Catalog[T], error) {
	cfg := catalogConfig{cardinality: -1}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.typeName == "" {
		cfg.typeName = reflect.TypeOf((*T)(nil)).Elem().String()
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCatalog, cfg.typeName)
	}
	if cfg.cardinality >= 0 && cfg.cardinality != len(entries) {
		return nil, fmt.Errorf("%w: %s declares %d enumerators, catalog has %d entries",
			ErrCardinalityMismatch, cfg.typeName, cfg.cardinality, len(entries))
	}

	c := &Catalog[T]{
		typeName: cfg.typeName,
		entries:  make([]Entry[T], len(entries)),
		names:    make([]string, len(entries)),
		byName:   make(map[string]int, len(entries)),
		byValue:  make(map[T]int, len(entries)),
	}
	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: %s ordinal %d", ErrEmptyName, cfg.typeName, i)
		}
		if prev, exists := c.byName[entry.Name]; exists {
			return nil, fmt.Errorf("%w: %s %q at ordinals %d and %d", ErrDuplicateName, cfg.typeName, entry.Name, prev, i)
		}
		if prev, exists := c.byValue[entry.Value]; exists {
			return nil, fmt.Errorf("%w: %s %v at ordinals %d and %d", ErrDuplicateValue, cfg.typeName, entry.Value, prev, i)
		}
		c.entries[i] = entry
		c.names[i] = entry.Name
		c.byName[entry.Name] = i
		c.byValue[entry.Value] = i
	}
	return c, nil
}

// MustCatalog is NewCatalog for package-level declarations; it panics when the
// declaration is inconsistent.
func MustCatalog[T comparable](entries []Entry[T], opts ...CatalogOption) *Catalog[T] {
	c, err := NewCatalog(entries, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// TypeName returns the name used for this catalog in errors and schemas.
func (c *Catalog[T]) TypeName() string {
	return c.typeName
}

// Len returns the number of entries (the cardinality).
func (c *Catalog[T]) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries in ordinal order.
func (c *Catalog[T]) Entries() []Entry[T] {
	out := make([]Entry[T], len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry returns the entry at ordinal i.
func (c *Catalog[T]) Entry(i int) (Entry[T], error) {
	if err := c.checkRange(i); err != nil {
		return Entry[T]{}, err
	}
	return c.entries[i], nil
}

// Names returns the canonical names in ordinal order.
func (c *Catalog[T]) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Name returns the canonical name at ordinal i.
func (c *Catalog[T]) Name(i int) (string, error) {
	if err := c.checkRange(i); err != nil {
		return "", err
	}
	return c.names[i], nil
}

// Ordinal returns the ordinal of enumerator e.
func (c *Catalog[T]) Ordinal(e T) (int, bool) {
	i, ok := c.byValue[e]
	return i, ok
}

// Default returns a value at ordinal 0 bound to this catalog.
func (c *Catalog[T]) Default() Value[T] {
	return Value[T]{cat: c}
}

// ValueOf returns a value bound to this catalog holding enumerator e.
func (c *Catalog[T]) ValueOf(e T) (Value[T], error) {
	i, ok := c.byValue[e]
	if !ok {
		return Value[T]{}, &ValueError{Type: c.typeName, Input: fmt.Sprint(e)}
	}
	return Value[T]{cat: c, ordinal: i}, nil
}

// ParseValue returns a value bound to this catalog for the given name, using
// the same lookup rules as Parse.
func (c *Catalog[T]) ParseValue(text string) (Value[T], error) {
	i, err := c.Parse(text)
	if err != nil {
		return Value[T]{}, err
	}
	return Value[T]{cat: c, ordinal: i}, nil
}

func (c *Catalog[T]) checkRange(i int) error {
	if i < 0 || i >= len(c.entries) {
		return &RangeError{Type: c.typeName, Index: i, Cardinality: len(c.entries)}
	}
	return nil
}
