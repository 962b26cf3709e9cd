package enum

import (
	"reflect"
	"testing"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("Feast", feasts); err != nil {
		t.Fatalf("register: %v", err)
	}
	reg.MustRegister("city", cities)

	if err := reg.Register("FEAST", trios); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register("", trios); err == nil {
		t.Fatalf("expected empty name to fail")
	}
	if err := reg.Register("trio", nil); err == nil {
		t.Fatalf("expected nil descriptor to fail")
	}

	d, ok := reg.Lookup("feast")
	if !ok || d.Len() != 3 {
		t.Fatalf("expected feast descriptor")
	}
	if got, err := d.Parse("Easter"); err != nil || got != 1 {
		t.Fatalf("unexpected parse %d (%v)", got, err)
	}
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"city", "feast"}) {
		t.Fatalf("unexpected names %v", got)
	}

	var missing *Registry
	if _, ok := missing.Lookup("feast"); ok {
		t.Fatalf("nil registry must not find anything")
	}
}
