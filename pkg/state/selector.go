package state

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	enum "github.com/goliatone/go-enum"
	"github.com/goliatone/go-enum/pkg/activity"
)

// Selection is a loaded or saved value together with where it came from.
type Selection[T comparable] struct {
	Ref   Ref
	Value enum.Value[T]
	Meta  Meta
	// Legacy reports the stored record used the old underbar spelling.
	Legacy bool
}

// Mutator changes a selection in place. The value's mask may be used to
// restrict the choice before it is saved.
type Mutator[T comparable] func(*enum.Value[T]) error

// Selector reads and writes selections of enumeration T through Store.
type Selector[T enum.Enumerator[T]] struct {
	Store   Store
	Emitter *activity.Emitter
	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

func (s Selector[T]) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s Selector[T]) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s Selector[T]) check() error {
	if s.Store == nil {
		return fmt.Errorf("state: store is required")
	}
	return nil
}

// Load reads the selection stored for ref. Legacy spellings are accepted and
// reported through Selection.Legacy.
func (s Selector[T]) Load(ctx context.Context, ref Ref) (Selection[T], bool, error) {
	if err := s.check(); err != nil {
		return Selection[T]{}, false, err
	}
	record, meta, ok, err := s.Store.Load(ctx, ref)
	if err != nil {
		return Selection[T]{}, false, fmt.Errorf("state: load %q at %s: %w", ref.Domain, ref.Level, err)
	}
	if !ok {
		return Selection[T]{}, false, nil
	}
	catalog := enum.CatalogOf[T]()
	match, err := catalog.Resolve(record)
	if err != nil {
		return Selection[T]{}, false, fmt.Errorf("state: load %q at %s: %w", ref.Domain, ref.Level, err)
	}
	value := enum.New[T]()
	name, _ := catalog.Name(match.Ordinal)
	if err := value.SetName(name); err != nil {
		return Selection[T]{}, false, err
	}
	return Selection[T]{Ref: ref, Value: value, Meta: meta, Legacy: match.Legacy}, true, nil
}

// Save writes the canonical name of v, minting a new snapshot id and etag.
// Fields set on meta override the minted ones.
func (s Selector[T]) Save(ctx context.Context, ref Ref, v enum.Value[T], meta Meta) (Selection[T], error) {
	if err := s.check(); err != nil {
		return Selection[T]{}, err
	}
	saved, err := s.save(ctx, ref, v, meta)
	if err != nil {
		return Selection[T]{}, err
	}
	sel := Selection[T]{Ref: ref, Value: v, Meta: saved}
	return sel, s.emit(ctx, activity.BuildSelectionSavedEvent(s.eventInput(sel, "", false)))
}

func (s Selector[T]) save(ctx context.Context, ref Ref, v enum.Value[T], meta Meta) (Meta, error) {
	id := s.newID()
	minted := Meta{SnapshotID: id, ETag: id, UpdatedAt: s.now()}
	saved, err := s.Store.Save(ctx, ref, v.String(), mergeMeta(minted, meta))
	if err != nil {
		return Meta{}, fmt.Errorf("state: save %q at %s: %w", ref.Domain, ref.Level, err)
	}
	return saved, nil
}

// Resolve returns the selection of the strongest level among refs that has
// one. ErrNotFound is returned when none has.
func (s Selector[T]) Resolve(ctx context.Context, refs ...Ref) (Selection[T], error) {
	if err := s.check(); err != nil {
		return Selection[T]{}, err
	}
	if len(refs) == 0 {
		return Selection[T]{}, fmt.Errorf("state: at least one ref is required")
	}
	ordered := append([]Ref{}, refs...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Level.strength() > ordered[j].Level.strength()
	})
	for _, ref := range ordered {
		sel, ok, err := s.Load(ctx, ref)
		if err != nil {
			return Selection[T]{}, err
		}
		if ok {
			return sel, nil
		}
	}
	return Selection[T]{}, fmt.Errorf("%w for %q", ErrNotFound, ordered[0].Domain)
}

// ResolveOr is Resolve falling back to fallback when no level has a
// selection. The fallback carries an empty Ref and Meta.
func (s Selector[T]) ResolveOr(ctx context.Context, fallback T, refs ...Ref) (Selection[T], error) {
	sel, err := s.Resolve(ctx, refs...)
	if err == nil {
		return sel, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Selection[T]{}, err
	}
	v, err := enum.From(fallback)
	if err != nil {
		return Selection[T]{}, fmt.Errorf("state: fallback: %w", err)
	}
	return Selection[T]{Value: v}, nil
}

// Mutate loads the selection at ref (the default value when none is stored),
// applies fn and saves the result. A non-empty meta.ETag must match the stored
// etag. Legacy records are always written back canonical.
func (s Selector[T]) Mutate(ctx context.Context, ref Ref, meta Meta, fn Mutator[T]) (Selection[T], error) {
	if err := s.check(); err != nil {
		return Selection[T]{}, err
	}
	if fn == nil {
		return Selection[T]{}, fmt.Errorf("state: mutator is required")
	}

	loaded, ok, err := s.Load(ctx, ref)
	if err != nil {
		return Selection[T]{}, err
	}
	if !ok {
		loaded = Selection[T]{Ref: ref, Value: enum.New[T]()}
	}
	if meta.ETag != "" && loaded.Meta.ETag != "" && meta.ETag != loaded.Meta.ETag {
		return loaded, fmt.Errorf("%w: expected %q, got %q", ErrETagMismatch, meta.ETag, loaded.Meta.ETag)
	}

	value := loaded.Value
	if err := fn(&value); err != nil {
		return loaded, err
	}

	// The caller's etag only guards the write; save mints a new one.
	meta.ETag = ""
	if meta.Extra == nil {
		meta.Extra = loaded.Meta.Extra
	}
	saved, err := s.save(ctx, ref, value, meta)
	if err != nil {
		return loaded, err
	}
	sel := Selection[T]{Ref: ref, Value: value, Meta: saved}

	previous := ""
	if ok {
		previous = loaded.Value.String()
	}
	if loaded.Legacy {
		in := s.eventInput(sel, previous, true)
		if err := s.emit(ctx, activity.BuildSelectionRepairedEvent(in)); err != nil {
			return sel, err
		}
	}
	return sel, s.emit(ctx, activity.BuildSelectionSavedEvent(s.eventInput(sel, previous, false)))
}

// Rewrite saves the selection at ref again when it was stored with a legacy
// spelling. It reports whether a rewrite happened.
func (s Selector[T]) Rewrite(ctx context.Context, ref Ref) (bool, error) {
	loaded, ok, err := s.Load(ctx, ref)
	if err != nil || !ok || !loaded.Legacy {
		return false, err
	}
	if _, err := s.Mutate(ctx, ref, Meta{ETag: loaded.Meta.ETag}, func(*enum.Value[T]) error { return nil }); err != nil {
		return false, err
	}
	return true, nil
}

func (s Selector[T]) eventInput(sel Selection[T], previous string, legacy bool) activity.SelectionEventInput {
	identifier, _ := sel.Ref.Identifier()
	in := activity.SelectionEventInput{
		Enum:       sel.Value.Catalog().TypeName(),
		Domain:     sel.Ref.Domain,
		Ref:        identifier,
		SnapshotID: sel.Meta.SnapshotID,
		Previous:   previous,
		Current:    sel.Value.String(),
		Legacy:     legacy,
		OccurredAt: sel.Meta.UpdatedAt,
	}
	if sel.Meta.Extra != nil {
		in.ActorID = sel.Meta.Extra["actor_id"]
		in.TenantID = sel.Meta.Extra["tenant_id"]
	}
	return in
}

func (s Selector[T]) emit(ctx context.Context, event activity.Event) error {
	if !s.Emitter.Enabled() {
		return nil
	}
	if err := s.Emitter.Emit(ctx, event); err != nil {
		return fmt.Errorf("state: activity: %w", err)
	}
	return nil
}
