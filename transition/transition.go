// Package transition validates sequences of enumeration values against a
// matrix of permitted moves, for example the lifecycle of a job status.
//
// The checker only constructs values from names and compares them by ordinal
// and equality; it never touches a value's allowed mask.
package transition

import (
	"errors"
	"fmt"

	enum "github.com/goliatone/go-enum"
)

var (
	// ErrEmptySequence is returned by Check for a sequence without values.
	ErrEmptySequence = errors.New("transition: empty sequence")
	// ErrForbiddenTransition is returned when two consecutive values are not a
	// permitted move.
	ErrForbiddenTransition = errors.New("transition: forbidden transition")
)

// Error locates a failure within a sequence. Position is 1-based.
type Error struct {
	Position int
	Value    string
	Previous string
	Err      error
}

func (e *Error) Error() string {
	if e.Previous != "" {
		return fmt.Sprintf("%v: %q at position %d may not follow %q", e.Err, e.Value, e.Position, e.Previous)
	}
	return fmt.Sprintf("transition: %q at position %d: %v", e.Value, e.Position, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type move struct {
	from, to int
}

// Checker holds the permitted moves for enumeration T. Staying on the same
// value is always permitted. A Checker is not safe for concurrent Permit
// calls; build it once and share it for Check.
type Checker[T enum.Enumerator[T]] struct {
	permitted map[move]struct{}
}

// NewChecker returns a checker that permits no moves yet.
func NewChecker[T enum.Enumerator[T]]() *Checker[T] {
	return &Checker[T]{permitted: map[move]struct{}{}}
}

// Permit allows moving from one value to another. Returns the checker so
// declarations can be chained; panics when either enumerator is not in T's
// catalog.
func (c *Checker[T]) Permit(from T, to ...T) *Checker[T] {
	src := enum.Must(enum.From(from))
	for _, target := range to {
		dst := enum.Must(enum.From(target))
		c.permitted[move{from: src.Ordinal(), to: dst.Ordinal()}] = struct{}{}
	}
	return c
}

// Allowed reports whether the move from a to b is permitted.
func (c *Checker[T]) Allowed(a, b enum.Value[T]) bool {
	if a.Equal(b) {
		return true
	}
	_, ok := c.permitted[move{from: a.Ordinal(), to: b.Ordinal()}]
	return ok
}

// Check parses names (legacy spellings accepted) and validates every
// consecutive pair. Errors are *Error values wrapping ErrForbiddenTransition,
// ErrEmptySequence or the enum parse error.
func (c *Checker[T]) Check(names []string) error {
	if len(names) == 0 {
		return ErrEmptySequence
	}
	values := make([]enum.Value[T], len(names))
	for i, name := range names {
		v, err := enum.Parse[T](name)
		if err != nil {
			return &Error{Position: i + 1, Value: name, Err: err}
		}
		values[i] = v
	}
	return c.CheckValues(values)
}

// CheckValues validates every consecutive pair of values.
func (c *Checker[T]) CheckValues(values []enum.Value[T]) error {
	if len(values) == 0 {
		return ErrEmptySequence
	}
	for i := 1; i < len(values); i++ {
		if !c.Allowed(values[i-1], values[i]) {
			return &Error{
				Position: i + 1,
				Value:    values[i].String(),
				Previous: values[i-1].String(),
				Err:      ErrForbiddenTransition,
			}
		}
	}
	return nil
}
