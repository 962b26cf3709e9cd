package enum

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidValue indicates a name or enumerator that is not part of the
	// catalog was offered to construction, assignment or parsing.
	ErrInvalidValue = errors.New("enum: invalid value")
	// ErrOutOfRange indicates an ordinal outside [0, cardinality).
	ErrOutOfRange = errors.New("enum: ordinal out of range")
)

var (
	// ErrEmptyCatalog indicates a catalog declared without entries.
	ErrEmptyCatalog = errors.New("enum: catalog must declare at least one entry")
	// ErrEmptyName indicates a catalog entry without a canonical name.
	ErrEmptyName = errors.New("enum: catalog names must not be empty")
	// ErrDuplicateName indicates two catalog entries share a canonical name.
	ErrDuplicateName = errors.New("enum: catalog names must be unique")
	// ErrDuplicateValue indicates two catalog entries share an enumerator.
	ErrDuplicateValue = errors.New("enum: catalog values must be unique")
	// ErrCardinalityMismatch indicates the catalog size differs from the number
	// of enumerators the type declares.
	ErrCardinalityMismatch = errors.New("enum: catalog size does not match declared enumerators")
)

// ValueError describes a rejected name or enumerator.
type ValueError struct {
	Type  string
	Input string
}

func (e *ValueError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("enum: %s has no entry %q", e.Type, e.Input)
}

func (e *ValueError) Unwrap() error {
	return ErrInvalidValue
}

// RangeError describes an ordinal outside the catalog bounds.
type RangeError struct {
	Type        string
	Index       int
	Cardinality int
}

func (e *RangeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("enum: %s ordinal %d outside [0, %d)", e.Type, e.Index, e.Cardinality)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
