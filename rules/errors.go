package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEvaluator indicates the requested engine is not compiled in.
	ErrNoEvaluator = errors.New("rules: evaluator not configured")
	// ErrEmptyRule indicates an empty expression.
	ErrEmptyRule = errors.New("rules: expression must not be empty")
	// ErrNotBoolean indicates a rule produced something other than a bool.
	ErrNotBoolean = errors.New("rules: expression must evaluate to a bool")
)

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Entry  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("rules: %s evaluator %s entry=%s: %v", e.Engine, describeExpression(e.Expr), e.Entry, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "rules:") {
		return err
	}
	return fmt.Errorf("rules: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, entry string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Entry == "" {
			evalErr.Entry = entry
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Entry:  entry,
		Err:    err,
	}
}

func asBool(value any) (bool, error) {
	allowed, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w, got %T", ErrNotBoolean, value)
	}
	return allowed, nil
}

var errMissingProgram = errors.New("compiled rule missing program")
