package enum

// Handle exposes a value to code that does not know its enumerator type, for
// example to toggle choices in a form built from several enumerations. A
// Handle refers to the value it was taken from and never owns it.
type Handle interface {
	Cardinality() int
	Ordinal() int
	IsAllowed(i int) (bool, error)
	Allow(i int, allowed bool) error
	String() string
	Name(i int) (string, error)
}

// Enforcer is implemented by handles that can repair a proscribed value.
type Enforcer interface {
	EnforceProscription() bool
}

var (
	_ Handle   = (*Value[int])(nil)
	_ Enforcer = (*Value[int])(nil)
)

// Handle returns v as a Handle. The handle is only valid while v is.
func (v *Value[T]) Handle() Handle {
	return v
}

func (v *Value[T]) handleRef() bool {
	return v != nil
}

// AsHandle converts target into a Handle when it is a non-nil reference to a
// value. Value copies are rejected, as mutations through the handle would be
// lost.
func AsHandle(target any) (Handle, bool) {
	h, ok := target.(Handle)
	if !ok {
		return nil, false
	}
	ref, ok := target.(interface{ handleRef() bool })
	if !ok || !ref.handleRef() {
		return nil, false
	}
	return h, true
}
