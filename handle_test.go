package enum

import (
	"errors"
	"testing"
)

func TestHandleCardinalityMatchesConcrete(t *testing.T) {
	f := New[feast]()
	c := New[city]()
	tr := New[trio]()
	handles := []struct {
		concrete int
		handle   Handle
	}{
		{f.Cardinality(), f.Handle()},
		{c.Cardinality(), c.Handle()},
		{tr.Cardinality(), tr.Handle()},
	}
	for _, h := range handles {
		if h.concrete != h.handle.Cardinality() {
			t.Fatalf("cardinality mismatch: concrete %d, handle %d", h.concrete, h.handle.Cardinality())
		}
	}
}

func TestHandleMutatesReferencedValue(t *testing.T) {
	v := Must(From(pentecost))
	h := v.Handle()

	if err := h.Allow(2, false); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed, _ := v.IsAllowed(2); allowed {
		t.Fatalf("expected handle mutation to reach the value")
	}
	enforcer, ok := h.(Enforcer)
	if !ok {
		t.Fatalf("expected handle to implement Enforcer")
	}
	if !enforcer.EnforceProscription() || !v.Is(theophany) {
		t.Fatalf("expected repair through handle, got %q", v.String())
	}
	if h.Ordinal() != 0 || h.String() != "Theophany" {
		t.Fatalf("handle out of sync: %d %q", h.Ordinal(), h.String())
	}
	if name, err := h.Name(1); err != nil || name != "Easter" {
		t.Fatalf("unexpected name %q (%v)", name, err)
	}
	if _, err := h.IsAllowed(-1); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestAsHandle(t *testing.T) {
	v := New[city]()
	if h, ok := AsHandle(&v); !ok || h.Cardinality() != 4 {
		t.Fatalf("expected pointer conversion to succeed")
	}
	if _, ok := AsHandle(v); ok {
		t.Fatalf("expected value copies to be rejected")
	}
	var nilValue *Value[city]
	if _, ok := AsHandle(nilValue); ok {
		t.Fatalf("expected nil pointers to be rejected")
	}
	if _, ok := AsHandle("Apia"); ok {
		t.Fatalf("expected unrelated types to be rejected")
	}
}

func TestHandleDisablesChoicesAcrossTypes(t *testing.T) {
	f := New[feast]()
	c := New[city]()
	form := []Handle{f.Handle(), c.Handle()}

	for _, h := range form {
		for i := 0; i < h.Cardinality(); i++ {
			if i%2 == 0 {
				if err := h.Allow(i, false); err != nil {
					t.Fatalf("allow: %v", err)
				}
			}
		}
	}
	if got := f.AllowedOrdinals(); len(got) != 1 || got[0] != 1 {
		t.Fatalf("unexpected feast choices %v", got)
	}
	if got := c.AllowedOrdinals(); len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected city choices %v", got)
	}
}
