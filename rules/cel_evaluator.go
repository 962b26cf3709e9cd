package rules

import (
	"reflect"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// CELEvaluatorOption configures the CEL evaluator.
type CELEvaluatorOption func(*celEvaluator)

// CELWithProgramCache wires a ProgramCache into the CEL evaluator.
func CELWithProgramCache(cache ProgramCache) CELEvaluatorOption {
	return func(e *celEvaluator) {
		e.cache = cache
	}
}

// CELWithFunctionRegistry wires a FunctionRegistry into the CEL evaluator.
// Helpers are reached with call("name", [args...]).
func CELWithFunctionRegistry(registry *FunctionRegistry) CELEvaluatorOption {
	return func(e *celEvaluator) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

type celEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewCELEvaluator constructs an Evaluator backed by cel-go.
func NewCELEvaluator(opts ...CELEvaluatorOption) Evaluator {
	e := &celEvaluator{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEvaluator) Evaluate(b Binding, expression string) (bool, error) {
	if expression == "" {
		return false, wrapEvaluatorError("cel", ErrEmptyRule)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	return e.run(program, expression, b)
}

func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("cel", ErrEmptyRule)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &celCompiledRule{
		evaluator:  e,
		program:    program,
		expression: expression,
	}, nil
}

func (e *celEvaluator) loadOrCompile(expression string) (celgo.Program, error) {
	key := cacheKey("cel", expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(celgo.Program); ok {
				return program, nil
			}
		}
	}

	env, err := e.buildEnv()
	if err != nil {
		return nil, wrapEvaluatorError("cel", err)
	}
	checked, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, wrapEvaluationError("cel", expression, "", issues.Err())
	}
	// dyn results (e.g. args lookups) are checked after evaluation.
	if out := checked.OutputType(); !out.IsExactType(celgo.BoolType) && !out.IsExactType(celgo.DynType) {
		return nil, wrapEvaluationError("cel", expression, "", ErrNotBoolean)
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, wrapEvaluationError("cel", expression, "", err)
	}

	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

func (e *celEvaluator) buildEnv() (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("name", celgo.StringType),
		celgo.Variable("ordinal", celgo.IntType),
		celgo.Variable("current", celgo.StringType),
		celgo.Variable("current_ordinal", celgo.IntType),
		celgo.Variable("cardinality", celgo.IntType),
		celgo.Variable("args", celgo.MapType(celgo.StringType, celgo.DynType)),
		celgo.Variable("metadata", celgo.MapType(celgo.StringType, celgo.DynType)),
	}
	if e.registry != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.FunctionBinding(e.callBinding()),
			),
		))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) run(program celgo.Program, expression string, b Binding) (bool, error) {
	b = b.withDefaultMaps()
	activation := b.variables()
	// CEL integers are 64-bit.
	activation["ordinal"] = int64(b.Ordinal)
	activation["current_ordinal"] = int64(b.CurrentOrdinal)
	activation["cardinality"] = int64(b.Cardinality)

	out, _, err := program.Eval(activation)
	if err != nil {
		return false, wrapEvaluationError("cel", expression, b.entryLabel(), err)
	}
	allowed, err := asBool(out.Value())
	if err != nil {
		return false, wrapEvaluationError("cel", expression, b.entryLabel(), err)
	}
	return allowed, nil
}

type celCompiledRule struct {
	evaluator  *celEvaluator
	program    celgo.Program
	expression string
}

func (r *celCompiledRule) Evaluate(b Binding) (bool, error) {
	if r.evaluator == nil || r.program == nil {
		return false, wrapEvaluatorError("cel", errMissingProgram)
	}
	return r.evaluator.run(r.program, r.expression, b)
}

func (e *celEvaluator) callBinding() func(values ...ref.Val) ref.Val {
	return func(values ...ref.Val) ref.Val {
		if len(values) != 2 {
			return types.NewErr("rules: call requires a function name and an argument list")
		}
		name, ok := values[0].Value().(string)
		if !ok {
			return types.NewErr("rules: call name must be string")
		}
		native, err := values[1].ConvertToNative(reflect.TypeOf([]any{}))
		if err != nil {
			return types.NewErr("rules: call arguments: %v", err)
		}
		result, err := e.registry.Call(name, native.([]any)...)
		if err != nil {
			return types.NewErr("%s", err.Error())
		}
		if result == nil {
			return types.NullValue
		}
		return types.DefaultTypeAdapter.NativeToValue(result)
	}
}
