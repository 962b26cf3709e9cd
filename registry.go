package enum

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Descriptor is the type-erased, read-only view of a catalog. Every
// *Catalog[T] implements it.
type Descriptor interface {
	TypeName() string
	Len() int
	Names() []string
	Name(i int) (string, error)
	Format(i int) (string, error)
	Parse(text string) (int, error)
	Resolve(text string) (Match, error)
}

var _ Descriptor = (*Catalog[int])(nil)

// Registry indexes catalogs by name for tooling that discovers enumerations at
// run time. Build one at startup and pass it where it is needed.
type Registry struct {
	mu       sync.RWMutex
	catalogs map[string]Descriptor
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		catalogs: make(map[string]Descriptor),
	}
}

// Register stores d under name guarding against duplicates. Names are matched
// case-insensitively.
func (r *Registry) Register(name string, d Descriptor) error {
	if d == nil {
		return fmt.Errorf("enum: catalog %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("enum: catalog name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.catalogs == nil {
		r.catalogs = make(map[string]Descriptor)
	}
	key := strings.ToLower(name)
	if _, exists := r.catalogs[key]; exists {
		return fmt.Errorf("enum: catalog %q already registered", name)
	}
	r.catalogs[key] = d
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (r *Registry) MustRegister(name string, d Descriptor) {
	if err := r.Register(name, d); err != nil {
		panic(err)
	}
}

// Lookup returns the catalog registered for name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.catalogs[strings.ToLower(name)]
	return d, ok
}

// Names returns registered catalog names sorted alphabetically.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
