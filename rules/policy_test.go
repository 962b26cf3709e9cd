package rules

import (
	"context"
	"errors"
	"reflect"
	"testing"

	enum "github.com/goliatone/go-enum"
	"github.com/goliatone/go-enum/pkg/activity"
)

type season int

const (
	winter season = iota
	spring
	summer
	autumn
)

var seasons = enum.MustCatalog([]enum.Entry[season]{
	{Value: winter, Name: "Winter"},
	{Value: spring, Name: "Spring"},
	{Value: summer, Name: "Summer"},
	{Value: autumn, Name: "Autumn"},
}, enum.WithTypeName("Season"))

func (season) EnumCatalog() *enum.Catalog[season] { return seasons }

func TestPolicyApplyWritesMask(t *testing.T) {
	policy, err := NewPolicy("ordinal % 2 == 0")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	v := enum.Must(enum.From(spring))

	report, err := policy.Apply(context.Background(), v.Handle(), Input{})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := v.AllowedOrdinals(); !reflect.DeepEqual(got, []int{0, 2}) {
		t.Fatalf("unexpected allowed ordinals %v", got)
	}
	if !reflect.DeepEqual(report.Allowed, []string{"Winter", "Summer"}) ||
		!reflect.DeepEqual(report.Proscribed, []string{"Spring", "Autumn"}) {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.Changed || report.Current != "Spring" || report.Previous != "Spring" {
		t.Fatalf("value should be left alone without enforcement: %+v", report)
	}
	if report.Engine != EngineExpr || policy.Rule() != "ordinal % 2 == 0" {
		t.Fatalf("unexpected engine/rule: %+v", report)
	}
}

func TestPolicyEnforceRepairsCurrent(t *testing.T) {
	policy, err := NewPolicy(`name != current && ordinal >= args.min`, WithEnforce(true), WithEngine(EngineCEL))
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	v := enum.Must(enum.From(spring))

	report, err := policy.Apply(context.Background(), v.Handle(), Input{Args: map[string]any{"min": 1}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !report.Changed || !v.Is(summer) || report.Current != "Summer" {
		t.Fatalf("expected repair to Summer, got %+v (value %s)", report, v)
	}
}

func TestPolicyFailureLeavesMaskUntouched(t *testing.T) {
	policy, err := NewPolicy("args.limit > ordinal")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	v := enum.Must(enum.From(autumn))
	if err := v.Allow(0, false); err != nil {
		t.Fatalf("Allow: %v", err)
	}

	_, err = policy.Apply(context.Background(), v.Handle(), Input{Args: map[string]any{"limit": "many"}})
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected EvaluationError, got %v", err)
	}
	if evalErr.Entry != "Winter#0" {
		t.Fatalf("expected failing entry to be named, got %q", evalErr.Entry)
	}
	if got := v.AllowedOrdinals(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Fatalf("mask changed after failed apply: %v", got)
	}
}

func TestPolicyLogsEveryEntry(t *testing.T) {
	var events []EvaluatorLogEvent
	logger := EvaluatorLoggerFunc(func(e EvaluatorLogEvent) { events = append(events, e) })
	policy, err := NewPolicy("cardinality == 4", WithEvaluatorLogger(logger))
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	v := enum.New[season]()

	if _, err := policy.Decide(v.Handle(), Input{}); err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if len(events) != 4 {
		t.Fatalf("expected 4 log events, got %d", len(events))
	}
	if events[3].Entry != "Autumn#3" || !events[3].Allowed || events[3].Engine != EngineExpr {
		t.Fatalf("unexpected event %+v", events[3])
	}
	if v.AllowedOrdinals()[0] != 0 || len(v.AllowedOrdinals()) != 4 {
		t.Fatalf("Decide must not write the mask")
	}
}

func TestPolicyEmitsActivity(t *testing.T) {
	capture := &activity.CaptureHook{}
	emitter := activity.NewEmitter(activity.Hooks{capture}, activity.Config{Enabled: true})
	policy, err := NewPolicy("ordinal == 3", WithEnforce(true), WithActivity(emitter))
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	v := enum.New[season]()

	_, err = policy.Apply(context.Background(), v.Handle(), Input{Enum: "Season", Ref: "garden/user/1", ActorID: "cli"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(capture.Events) != 2 {
		t.Fatalf("expected restricted and repaired events, got %d", len(capture.Events))
	}
	restricted, repaired := capture.Events[0], capture.Events[1]
	if restricted.Verb != activity.VerbChoicesRestricted || restricted.ObjectID != "garden/user/1" {
		t.Fatalf("unexpected restricted event %+v", restricted)
	}
	if repaired.Verb != activity.VerbSelectionRepaired || repaired.Metadata["current"] != "Autumn" || repaired.Metadata["previous"] != "Winter" {
		t.Fatalf("unexpected repaired event %+v", repaired)
	}
	if restricted.Channel != activity.DefaultChannel || restricted.Metadata["rule"] != "ordinal == 3" {
		t.Fatalf("unexpected restricted metadata %+v", restricted)
	}
}

func TestNewPolicyErrors(t *testing.T) {
	if _, err := NewPolicy(""); !errors.Is(err, ErrEmptyRule) {
		t.Fatalf("expected ErrEmptyRule, got %v", err)
	}
	if _, err := NewPolicy("true", WithEngine("lua")); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("expected ErrNoEvaluator, got %v", err)
	}
	if _, err := NewPolicy("name +"); err == nil {
		t.Fatalf("expected compile error")
	}
	p, err := NewPolicy("true")
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	if _, err := p.Apply(context.Background(), nil, Input{}); err == nil {
		t.Fatalf("expected error for nil handle")
	}
}

func TestPolicyCustomFunction(t *testing.T) {
	policy, err := NewPolicy(`call("inSeason", name) == true`, WithCustomFunction("inSeason", func(args ...any) (any, error) {
		return args[0] == "Summer", nil
	}))
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}
	v := enum.New[season]()
	if _, err := policy.Apply(context.Background(), v.Handle(), Input{}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got := v.AllowedOrdinals(); !reflect.DeepEqual(got, []int{2}) {
		t.Fatalf("unexpected allowed ordinals %v", got)
	}
}
