package enum

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Declared is implemented by enumerator types that bind a catalog to their
// type. The method must work on the zero value.
type Declared[T comparable] interface {
	EnumCatalog() *Catalog[T]
}

// Enumerator constrains the type parameter of the package-level constructors.
//
//	type Feast int
//
//	const (
//		Theophany Feast = iota
//		Easter
//		Pentecost
//		feastCount
//	)
//
//	var feasts = enum.MustCatalog([]enum.Entry[Feast]{
//		{Theophany, "Theophany"},
//		{Easter, "Easter"},
//		{Pentecost, "Pentecost"},
//	}, enum.WithCardinality(int(feastCount)))
//
//	func (Feast) EnumCatalog() *enum.Catalog[Feast] { return feasts }
type Enumerator[T comparable] interface {
	comparable
	Declared[T]
}

// Value is the current choice of an enumeration plus a per-instance mask of
// which catalog entries are selectable. The zero value of an Enumerator type
// holds ordinal 0 with every entry allowed.
//
// The mask is copy-on-write, so assigning a Value with = yields an independent
// copy. A single Value must not be mutated from several goroutines at once.
type Value[T comparable] struct {
	cat     *Catalog[T]
	ordinal int
	// denied holds proscribed ordinals; nil means everything is allowed.
	denied *bitset.BitSet
}

// New returns the default value (ordinal 0).
func New[T Enumerator[T]]() Value[T] {
	return Value[T]{}
}

// From returns a value holding enumerator e.
func From[T Enumerator[T]](e T) (Value[T], error) {
	return catalogFor[T]().ValueOf(e)
}

// Parse returns a value for the given name, accepting the legacy underbar
// spelling of names that contain spaces.
func Parse[T Enumerator[T]](name string) (Value[T], error) {
	return catalogFor[T]().ParseValue(name)
}

// Must panics when err is not nil. Intended for literals known at compile time.
func Must[T comparable](v Value[T], err error) Value[T] {
	if err != nil {
		panic(err)
	}
	return v
}

// CatalogOf returns the catalog declared by T.
func CatalogOf[T Enumerator[T]]() *Catalog[T] {
	return catalogFor[T]()
}

func catalogFor[T comparable]() *Catalog[T] {
	var zero T
	if d, ok := any(zero).(Declared[T]); ok {
		if c := d.EnumCatalog(); c != nil {
			return c
		}
	}
	panic(fmt.Sprintf("enum: no catalog declared for %T", zero))
}

func (v Value[T]) catalog() *Catalog[T] {
	if v.cat != nil {
		return v.cat
	}
	return catalogFor[T]()
}

// Catalog returns the catalog backing v.
func (v Value[T]) Catalog() *Catalog[T] {
	return v.catalog()
}

// Clone returns an independent copy of v, including its mask.
func (v Value[T]) Clone() Value[T] {
	return v
}

// Set assigns enumerator e. The mask is kept. On error v is unchanged.
func (v *Value[T]) Set(e T) error {
	c := v.catalog()
	i, ok := c.Ordinal(e)
	if !ok {
		return &ValueError{Type: c.typeName, Input: fmt.Sprint(e)}
	}
	v.ordinal = i
	return nil
}

// SetName assigns the entry named name. The mask is kept. On error v is
// unchanged.
func (v *Value[T]) SetName(name string) error {
	i, err := v.catalog().Parse(name)
	if err != nil {
		return err
	}
	v.ordinal = i
	return nil
}

// Assign copies other into v, mask included.
func (v *Value[T]) Assign(other Value[T]) {
	*v = other
}

// Equal reports whether both values hold the same entry of the same catalog.
// Masks are not compared.
func (v Value[T]) Equal(other Value[T]) bool {
	return v.ordinal == other.ordinal && v.catalog() == other.catalog()
}

// Is reports whether v holds enumerator e.
func (v Value[T]) Is(e T) bool {
	i, ok := v.catalog().Ordinal(e)
	return ok && i == v.ordinal
}

// IsName reports whether name is the canonical name of the entry v holds.
// Legacy spellings and unknown names compare unequal; use Parse or SetName to
// accept legacy text.
func (v Value[T]) IsName(name string) bool {
	return v.String() == name
}

// Ordinal returns the index of the current entry.
func (v Value[T]) Ordinal() int {
	return v.ordinal
}

// Enumerator returns the current enumerator.
func (v Value[T]) Enumerator() T {
	return v.catalog().entries[v.ordinal].Value
}

// String returns the canonical name of the current entry.
func (v Value[T]) String() string {
	return v.catalog().names[v.ordinal]
}

// Name returns the canonical name of the entry at ordinal i.
func (v Value[T]) Name(i int) (string, error) {
	return v.catalog().Name(i)
}

// Cardinality returns the number of catalog entries.
func (v Value[T]) Cardinality() int {
	return v.catalog().Len()
}

// Names returns every canonical name in ordinal order.
func (v Value[T]) Names() []string {
	return v.catalog().Names()
}

// Allow sets whether the entry at ordinal i is selectable. The current value
// is left alone even when it becomes proscribed; see EnforceProscription.
func (v *Value[T]) Allow(i int, allowed bool) error {
	c := v.catalog()
	if err := c.checkRange(i); err != nil {
		return err
	}
	if v.isAllowed(i) == allowed {
		return nil
	}
	next := bitset.New(uint(c.Len()))
	if v.denied != nil {
		next = v.denied.Clone()
	}
	if allowed {
		next.Clear(uint(i))
	} else {
		next.Set(uint(i))
	}
	if next.None() {
		next = nil
	}
	v.denied = next
	return nil
}

// AllowAll clears every proscription.
func (v *Value[T]) AllowAll() {
	v.denied = nil
}

// IsAllowed reports whether the entry at ordinal i is selectable.
func (v Value[T]) IsAllowed(i int) (bool, error) {
	if err := v.catalog().checkRange(i); err != nil {
		return false, err
	}
	return v.isAllowed(i), nil
}

// AllowedOrdinals returns the selectable ordinals in increasing order.
func (v Value[T]) AllowedOrdinals() []int {
	n := v.catalog().Len()
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if v.isAllowed(i) {
			out = append(out, i)
		}
	}
	return out
}

func (v Value[T]) isAllowed(i int) bool {
	return v.denied == nil || !v.denied.Test(uint(i))
}

// EnforceProscription moves a proscribed current value to the lowest allowed
// ordinal. It does nothing when the current value is allowed, or when no entry
// is allowed at all. It reports whether the current value changed.
func (v *Value[T]) EnforceProscription() bool {
	if v.isAllowed(v.ordinal) {
		return false
	}
	n := v.catalog().Len()
	for i := 0; i < n; i++ {
		if v.isAllowed(i) {
			v.ordinal = i
			return true
		}
	}
	return false
}

// MarshalText encodes the canonical name.
func (v Value[T]) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText assigns the entry named by text, accepting legacy spellings.
// The mask is kept. On error v is unchanged.
func (v *Value[T]) UnmarshalText(text []byte) error {
	return v.SetName(string(text))
}
