package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsAndClones(t *testing.T) {
	meta := map[string]any{"enum": "Feast"}
	recipients := []string{" ops ", "audit "}
	evt := Event{
		Verb:       " enum.selection.saved ",
		ActorID:    " actor ",
		TenantID:   " tenant ",
		ObjectType: " enum.selection ",
		ObjectID:   " calendar/user/42 ",
		Channel:    " enum ",
		Recipients: recipients,
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != VerbSelectionSaved || got.ObjectType != ObjectSelection || got.ObjectID != "calendar/user/42" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.TenantID != "tenant" || got.Channel != "enum" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["enum"] = "changed"
	if meta["enum"] != "Feast" {
		t.Fatalf("original metadata mutated: %+v", meta)
	}
	got.Recipients[0] = "changed"
	if recipients[0] != " ops " {
		t.Fatalf("original recipients mutated: %+v", recipients)
	}
}

func TestHooksDropIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	if err := (Hooks{capture}).Notify(context.Background(), Event{Verb: "x"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(capture.Events))
	}
}

func TestHooksFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	first := errors.New("first sink down")
	second := errors.New("second sink down")
	var sawContext bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			sawContext = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return first }),
		nil,
		HookFunc(func(context.Context, Event) error { return second }),
	}

	//nolint:staticcheck // nil context falls back to Background
	err := hooks.Notify(nil, Event{Verb: VerbChoicesRestricted, ObjectType: ObjectChoices, ObjectID: "Feast"})
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !sawContext {
		t.Fatalf("expected a non-nil context")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected one captured event, got %d", len(capture.Events))
	}
}

func TestEmitterAppliesDefaultChannel(t *testing.T) {
	capture := &CaptureHook{}
	evt := Event{Verb: VerbSelectionSaved, ObjectType: ObjectSelection, ObjectID: "1"}

	disabled := NewEmitter(Hooks{capture}, Config{})
	if disabled.Enabled() {
		t.Fatalf("expected disabled emitter")
	}
	if err := disabled.Emit(context.Background(), evt); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("disabled emitter captured events")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), evt); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(capture.Events) != 1 || capture.Events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel, got %+v", capture.Events)
	}

	var nilEmitter *Emitter
	if err := nilEmitter.Emit(context.Background(), evt); err != nil {
		t.Fatalf("nil emitter: %v", err)
	}
}

func TestEmitterKeepsExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "forms"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       VerbSelectionSaved,
		ObjectType: ObjectSelection,
		ObjectID:   "1",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if capture.Events[0].Channel != "custom" || !capture.Events[0].OccurredAt.Equal(at) {
		t.Fatalf("unexpected event: %+v", capture.Events[0])
	}
}

func TestEmitterWithoutHooksIsDisabled(t *testing.T) {
	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("expected emitter without hooks to be disabled")
	}
}
