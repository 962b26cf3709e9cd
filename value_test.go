package enum

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestFeastScenario(t *testing.T) {
	v := New[feast]()
	if !v.IsName("Theophany") {
		t.Fatalf("expected default to equal Theophany, got %q", v.String())
	}

	if err := v.SetName("Pentecost"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	mustAllow(t, &v, 2, false)
	v.EnforceProscription()
	if !v.IsName("Theophany") {
		t.Fatalf("expected Theophany after first repair, got %q", v.String())
	}

	mustAllow(t, &v, 0, false)
	v.EnforceProscription()
	if !v.IsName("Easter") {
		t.Fatalf("expected Easter after second repair, got %q", v.String())
	}

	mustAllow(t, &v, 1, false)
	if changed := v.EnforceProscription(); changed {
		t.Fatalf("expected no-op when every entry is proscribed")
	}
	if !v.IsName("Easter") {
		t.Fatalf("expected Easter to be kept, got %q", v.String())
	}
}

func TestEnforceProscriptionRepairPolicy(t *testing.T) {
	v := Must(From(x1))
	mustAllow(t, &v, 1, false)
	if changed := v.EnforceProscription(); !changed || !v.Is(x0) {
		t.Fatalf("expected X0, got %q (changed=%v)", v.String(), changed)
	}

	mustAllow(t, &v, 0, false)
	if changed := v.EnforceProscription(); !changed || !v.Is(x2) {
		t.Fatalf("expected X2, got %q (changed=%v)", v.String(), changed)
	}

	mustAllow(t, &v, 2, false)
	if changed := v.EnforceProscription(); changed || !v.Is(x2) {
		t.Fatalf("expected X2 to be kept, got %q (changed=%v)", v.String(), changed)
	}
}

func TestEnforceProscriptionKeepsAllowedValue(t *testing.T) {
	v := Must(From(x2))
	mustAllow(t, &v, 0, false)
	if changed := v.EnforceProscription(); changed || !v.Is(x2) {
		t.Fatalf("expected allowed value to be kept, got %q", v.String())
	}
}

func TestConstructionFromUnknownNameFails(t *testing.T) {
	if _, err := Parse[feast]("Christmas"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected invalid value, got %v", err)
	}
	var valueErr *ValueError
	_, err := Parse[feast]("Christmas")
	if !errors.As(err, &valueErr) || valueErr.Type != "Feast" || valueErr.Input != "Christmas" {
		t.Fatalf("expected ValueError detail, got %#v", err)
	}
	if _, err := From(feast(9)); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected invalid value for undeclared enumerator, got %v", err)
	}
}

func TestFailedAssignmentLeavesValueUnchanged(t *testing.T) {
	v := Must(From(easter))
	mustAllow(t, &v, 0, false)

	if err := v.SetName("Christmas"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected invalid value, got %v", err)
	}
	if err := v.Set(feast(7)); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected invalid value, got %v", err)
	}
	if err := v.UnmarshalText([]byte("nope")); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected invalid value, got %v", err)
	}
	if err := v.Allow(3, true); !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if !v.Is(easter) {
		t.Fatalf("expected Easter to survive failed assignments, got %q", v.String())
	}
	if allowed, _ := v.IsAllowed(0); allowed {
		t.Fatalf("expected mask to survive failed assignments")
	}
}

func TestIndexBounds(t *testing.T) {
	v := New[feast]()
	n := v.Cardinality()
	checks := map[string]error{
		"allow(N)":      v.Allow(n, true),
		"allow(-1)":     v.Allow(-1, false),
		"is_allowed(N)": second(v.IsAllowed(n)),
		"str(N)":        second(v.Name(n)),
		"str(-1)":       second(v.Name(-1)),
	}
	for name, err := range checks {
		if !errors.Is(err, ErrOutOfRange) {
			t.Fatalf("%s: expected out of range, got %v", name, err)
		}
	}
	var rangeErr *RangeError
	if err := v.Allow(n, true); !errors.As(err, &rangeErr) || rangeErr.Index != n || rangeErr.Cardinality != n {
		t.Fatalf("expected RangeError detail, got %#v", err)
	}
}

func TestEqualitySymmetry(t *testing.T) {
	v := Must(From(easter))
	other := Must(Parse[feast]("Easter"))
	fromEnumerator := Must(From(easter))

	if !v.Equal(other) || !other.Equal(v) {
		t.Fatalf("expected instance equality in both orders")
	}
	if !v.IsName("Easter") || !other.IsName("Easter") {
		t.Fatalf("expected name equality")
	}
	if !v.Is(easter) || !fromEnumerator.Equal(v) {
		t.Fatalf("expected enumerator equality in both orders")
	}

	mismatch := Must(From(pentecost))
	if v.Equal(mismatch) || mismatch.Equal(v) {
		t.Fatalf("expected mismatched instances to differ")
	}
	if v.IsName("Pentecost") || v.Is(pentecost) || Must(From(pentecost)).Equal(v) {
		t.Fatalf("expected mismatched name and enumerator to differ")
	}
	if v.IsName("Christmas") {
		t.Fatalf("expected unknown names to compare unequal")
	}
}

func TestIsNameComparesCanonicalNames(t *testing.T) {
	v := Must(Parse[city]("Pago_Pago"))
	if !v.Is("PPG") || !v.IsName("Pago Pago") {
		t.Fatalf("expected legacy parse to hold Pago Pago, got %s", v)
	}
	if v.IsName("Pago_Pago") {
		t.Fatalf("expected legacy spelling to compare unequal")
	}
	fale := Must(Parse[city]("Fale_Ola"))
	if !fale.IsName("Fale_Ola") || fale.IsName("Fale Ola") {
		t.Fatalf("expected only the canonical Fale_Ola to compare equal")
	}
}

func TestEqualityIgnoresMask(t *testing.T) {
	a := Must(From(easter))
	b := a
	mustAllow(t, &b, 2, false)
	if !a.Equal(b) {
		t.Fatalf("expected equality to ignore masks")
	}
}

func TestQueries(t *testing.T) {
	v := Must(From(pentecost))
	if v.Ordinal() != 2 || v.Enumerator() != pentecost || v.String() != "Pentecost" {
		t.Fatalf("unexpected queries %d %v %q", v.Ordinal(), v.Enumerator(), v.String())
	}
	if name, err := v.Name(1); err != nil || name != "Easter" {
		t.Fatalf("unexpected name %q (%v)", name, err)
	}
	want := []string{"Theophany", "Easter", "Pentecost"}
	if got := v.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if v.Cardinality() != feasts.Len() {
		t.Fatalf("cardinality mismatch")
	}
}

func TestCopiesHaveIndependentMasks(t *testing.T) {
	original := Must(From(easter))
	mustAllow(t, &original, 0, false)

	copied := original
	cloned := original.Clone()
	mustAllow(t, &copied, 1, false)
	mustAllow(t, &cloned, 0, true)

	if allowed, _ := original.IsAllowed(1); !allowed {
		t.Fatalf("mutating a copy must not change the original")
	}
	if allowed, _ := original.IsAllowed(0); allowed {
		t.Fatalf("mutating a clone must not change the original")
	}

	var assigned Value[feast]
	assigned.Assign(copied)
	if !assigned.Is(easter) {
		t.Fatalf("expected assignment to copy the value")
	}
	if allowed, _ := assigned.IsAllowed(1); allowed {
		t.Fatalf("expected assignment to copy the mask")
	}
}

func TestSetKeepsMask(t *testing.T) {
	v := New[feast]()
	mustAllow(t, &v, 1, false)
	if err := v.Set(easter); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !v.Is(easter) {
		t.Fatalf("expected proscribed entry to be assignable")
	}
	if allowed, _ := v.IsAllowed(1); allowed {
		t.Fatalf("expected mask to be kept on assignment")
	}
}

func TestAllowedOrdinalsAndAllowAll(t *testing.T) {
	v := New[feast]()
	mustAllow(t, &v, 1, false)
	if got := v.AllowedOrdinals(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("unexpected allowed ordinals %v", got)
	}
	mustAllow(t, &v, 1, true)
	if got := v.AllowedOrdinals(); !reflect.DeepEqual(got, []int{0, 1, 2}) {
		t.Fatalf("unexpected allowed ordinals %v", got)
	}
	mustAllow(t, &v, 0, false)
	v.AllowAll()
	if got := v.AllowedOrdinals(); len(got) != 3 {
		t.Fatalf("expected AllowAll to clear proscriptions, got %v", got)
	}
}

func TestUndeclaredTypePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected missing catalog to panic")
		}
	}()
	var v Value[undeclared]
	_ = v.Cardinality()
}

func TestTextEncodings(t *testing.T) {
	type record struct {
		Home Value[city] `json:"home" yaml:"home"`
	}

	in := record{Home: Must(From(city("PPG")))}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal json: %v", err)
	}
	if string(raw) != `{"home":"Pago Pago"}` {
		t.Fatalf("unexpected json %s", raw)
	}

	var legacy record
	if err := json.Unmarshal([]byte(`{"home":"Pago_Pago"}`), &legacy); err != nil {
		t.Fatalf("unmarshal legacy json: %v", err)
	}
	if !legacy.Home.Equal(in.Home) {
		t.Fatalf("expected legacy json to decode to Pago Pago, got %q", legacy.Home.String())
	}

	var fromYAML record
	if err := yaml.Unmarshal([]byte("home: Fale_Ola\n"), &fromYAML); err != nil {
		t.Fatalf("unmarshal yaml: %v", err)
	}
	if !fromYAML.Home.Is(city("FAL")) {
		t.Fatalf("expected Fale_Ola, got %q", fromYAML.Home.String())
	}
	out, err := yaml.Marshal(fromYAML)
	if err != nil {
		t.Fatalf("marshal yaml: %v", err)
	}
	if string(out) != "home: Fale_Ola\n" {
		t.Fatalf("unexpected yaml %q", out)
	}
}

func mustAllow[T comparable](t *testing.T, v *Value[T], i int, allowed bool) {
	t.Helper()
	if err := v.Allow(i, allowed); err != nil {
		t.Fatalf("allow(%d, %v): %v", i, allowed, err)
	}
}

func second[T any](_ T, err error) error {
	return err
}
