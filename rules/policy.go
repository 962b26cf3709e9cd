package rules

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	enum "github.com/goliatone/go-enum"
	"github.com/goliatone/go-enum/pkg/activity"
)

// PolicyOption configures a Policy.
type PolicyOption func(*policyConfig)

type policyConfig struct {
	engine    string
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	logger    EvaluatorLogger
	enforce   bool
	emitter   *activity.Emitter
}

// WithEngine selects the evaluator engine by name (expr, cel or js).
func WithEngine(engine string) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.engine = engine
	}
}

// WithEvaluator uses evaluator instead of building one from the engine name.
func WithEvaluator(evaluator Evaluator) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.evaluator = evaluator
	}
}

// WithProgramCache shares compiled programs between policies.
func WithProgramCache(cache ProgramCache) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.cache = cache
	}
}

// WithEvaluatorLogger records every per-entry evaluation.
func WithEvaluatorLogger(logger EvaluatorLogger) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.logger = logger
	}
}

// WithLogger is WithEvaluatorLogger over a slog.Logger.
func WithLogger(logger *slog.Logger) PolicyOption {
	return WithEvaluatorLogger(SlogLogger(logger))
}

// WithEnforce repairs a proscribed current value after the mask is applied.
func WithEnforce(enforce bool) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.enforce = enforce
	}
}

// WithActivity emits a choices-restricted event after every Apply, plus a
// selection-repaired event when enforcement moved the value.
func WithActivity(emitter *activity.Emitter) PolicyOption {
	return func(cfg *policyConfig) {
		cfg.emitter = emitter
	}
}

// Policy is a compiled rule deciding, entry by entry, which choices of an
// enumeration are selectable.
type Policy struct {
	rule     string
	engine   string
	compiled CompiledRule
	logger   EvaluatorLogger
	enforce  bool
	emitter  *activity.Emitter
}

// NewPolicy compiles rule. The default engine is expr.
func NewPolicy(rule string, opts ...PolicyOption) (*Policy, error) {
	if rule == "" {
		return nil, ErrEmptyRule
	}
	cfg := policyConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = EvaluatorFor(cfg.engine, cfg.cache, cfg.functions)
		if err != nil {
			return nil, err
		}
	}
	compiled, err := evaluator.Compile(rule)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = noopEvaluatorLogger{}
	}
	return &Policy{
		rule:     rule,
		engine:   evaluatorEngineName(evaluator),
		compiled: compiled,
		logger:   logger,
		enforce:  cfg.enforce,
		emitter:  cfg.emitter,
	}, nil
}

// Rule returns the source expression.
func (p *Policy) Rule() string { return p.rule }

// Engine returns the engine name the rule was compiled for.
func (p *Policy) Engine() string { return p.engine }

// Input carries caller data exposed to the rule as args and metadata, plus
// the identity recorded on activity events.
type Input struct {
	Args     map[string]any
	Metadata map[string]any

	Enum     string
	Ref      string
	ActorID  string
	TenantID string
}

// Report summarizes one Apply.
type Report struct {
	Rule       string
	Engine     string
	Allowed    []string
	Proscribed []string
	Previous   string
	Current    string
	Changed    bool
}

// Decide evaluates the rule for every entry of h without touching it. The
// result is indexed by ordinal.
func (p *Policy) Decide(h enum.Handle, in Input) ([]bool, error) {
	n := h.Cardinality()
	current := h.Ordinal()
	currentName := h.String()
	decisions := make([]bool, n)
	for i := 0; i < n; i++ {
		name, err := h.Name(i)
		if err != nil {
			return nil, err
		}
		b := Binding{
			Name:           name,
			Ordinal:        i,
			Current:        currentName,
			CurrentOrdinal: current,
			Cardinality:    n,
			Args:           in.Args,
			Metadata:       in.Metadata,
		}
		start := time.Now()
		allowed, err := p.compiled.Evaluate(b)
		p.logger.LogEvaluation(EvaluatorLogEvent{
			Engine:   p.engine,
			Expr:     p.rule,
			Entry:    b.entryLabel(),
			Allowed:  allowed,
			Duration: time.Since(start),
			Err:      err,
		})
		if err != nil {
			return nil, wrapEvaluationError(p.engine, p.rule, b.entryLabel(), err)
		}
		decisions[i] = allowed
	}
	return decisions, nil
}

// Apply evaluates the rule for every entry and writes the resulting mask
// through h. Nothing is written when any evaluation fails. With WithEnforce,
// a current value left proscribed is repaired when h implements
// enum.Enforcer.
func (p *Policy) Apply(ctx context.Context, h enum.Handle, in Input) (Report, error) {
	if h == nil {
		return Report{}, fmt.Errorf("rules: nil handle")
	}
	decisions, err := p.Decide(h, in)
	if err != nil {
		return Report{}, err
	}

	report := Report{Rule: p.rule, Engine: p.engine, Previous: h.String()}
	for i, allowed := range decisions {
		if err := h.Allow(i, allowed); err != nil {
			return Report{}, err
		}
		name, _ := h.Name(i)
		if allowed {
			report.Allowed = append(report.Allowed, name)
		} else {
			report.Proscribed = append(report.Proscribed, name)
		}
	}
	if p.enforce {
		if enforcer, ok := h.(enum.Enforcer); ok {
			report.Changed = enforcer.EnforceProscription()
		}
	}
	report.Current = h.String()

	if err := p.emit(ctx, in, report); err != nil {
		return report, err
	}
	return report, nil
}

func (p *Policy) emit(ctx context.Context, in Input, report Report) error {
	if !p.emitter.Enabled() {
		return nil
	}
	base := activity.SelectionEventInput{
		ActorID:    in.ActorID,
		TenantID:   in.TenantID,
		Enum:       in.Enum,
		Ref:        in.Ref,
		Previous:   report.Previous,
		Current:    report.Current,
		Allowed:    report.Allowed,
		Proscribed: report.Proscribed,
		Metadata:   map[string]any{"rule": report.Rule, "engine": report.Engine},
	}
	if base.Allowed == nil {
		base.Allowed = []string{}
	}
	if err := p.emitter.Emit(ctx, activity.BuildChoicesRestrictedEvent(base)); err != nil {
		return err
	}
	if report.Changed {
		return p.emitter.Emit(ctx, activity.BuildSelectionRepairedEvent(base))
	}
	return nil
}
