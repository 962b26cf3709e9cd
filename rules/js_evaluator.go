//go:build js_eval

package rules

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	cache    ProgramCache
	registry *FunctionRegistry
}

// NewJSEvaluator constructs an Evaluator backed by goja.
func NewJSEvaluator(opts ...JSEvaluatorOption) Evaluator {
	cfg := applyJSEvaluatorOptions(opts)
	return &jsEvaluator{
		cache:    cfg.cache,
		registry: cfg.registry,
	}
}

func (e *jsEvaluator) Evaluate(b Binding, expression string) (bool, error) {
	if expression == "" {
		return false, wrapEvaluatorError("js", ErrEmptyRule)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return false, err
	}
	return e.run(program, expression, b)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, wrapEvaluatorError("js", ErrEmptyRule)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		evaluator:  e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEvaluator) loadOrCompile(expression string) (*goja.Program, error) {
	key := cacheKey("js", expression)
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", wrapExpression(expression), true)
	if err != nil {
		return nil, wrapEvaluationError("js", expression, "", err)
	}
	if e.cache != nil {
		e.cache.Set(key, program)
	}
	return program, nil
}

// run uses a fresh runtime per entry; goja runtimes are not goroutine safe.
func (e *jsEvaluator) run(program *goja.Program, expression string, b Binding) (bool, error) {
	b = b.withDefaultMaps()
	vm := goja.New()
	if err := e.injectBinding(vm, b); err != nil {
		return false, wrapEvaluationError("js", expression, b.entryLabel(), err)
	}
	value, err := vm.RunProgram(program)
	if err != nil {
		return false, wrapEvaluationError("js", expression, b.entryLabel(), err)
	}
	allowed, err := asBool(value.Export())
	if err != nil {
		return false, wrapEvaluationError("js", expression, b.entryLabel(), err)
	}
	return allowed, nil
}

func (e *jsEvaluator) injectBinding(vm *goja.Runtime, b Binding) error {
	for key, value := range b.variables() {
		if err := vm.Set(key, value); err != nil {
			return err
		}
	}
	if e.registry == nil {
		return nil
	}
	if err := vm.Set("call", func(name string, arguments ...any) (any, error) {
		return e.registry.Call(name, arguments...)
	}); err != nil {
		return err
	}
	for _, name := range e.registry.Names() {
		fn := name
		if err := vm.Set(fn, func(arguments ...any) (any, error) {
			return e.registry.Call(fn, arguments...)
		}); err != nil {
			return err
		}
	}
	return nil
}

func wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	evaluator  *jsEvaluator
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(b Binding) (bool, error) {
	if r.evaluator == nil || r.program == nil {
		return false, wrapEvaluatorError("js", errMissingProgram)
	}
	return r.evaluator.run(r.program, r.expression, b)
}

func jsEvaluatorAvailable() bool {
	return true
}
