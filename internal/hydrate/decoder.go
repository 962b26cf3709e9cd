// Package hydrate turns generic documents, as produced by YAML, TOML or JSON
// parsers, into typed structs through optional pre and post hooks.
package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Source identifies the document being decoded in errors and hooks.
type Source struct {
	Path   string
	Format string
}

func (s Source) String() string {
	switch {
	case s.Path != "":
		return s.Path
	case s.Format != "":
		return "<" + s.Format + ">"
	default:
		return "<document>"
	}
}

// PreHook rewrites the generic document before decoding.
type PreHook func(Source, map[string]any) (map[string]any, error)

// PostHook adjusts or validates the decoded value.
type PostHook[T any] func(Source, *T) error

// Option configures a Decoder.
type Option[T any] func(*Decoder[T])

// Decoder converts generic documents into T. Field mapping follows the json
// struct tags of T.
type Decoder[T any] struct {
	pre          []PreHook
	post         []PostHook[T]
	useNumber    bool
	strictFields bool
}

// WithPreHook runs hook before decoding. Hooks run in registration order.
func WithPreHook[T any](hook PreHook) Option[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.pre = append(d.pre, hook)
		}
	}
}

// WithPostHook runs hook after decoding. Hooks run in registration order.
func WithPostHook[T any](hook PostHook[T]) Option[T] {
	return func(d *Decoder[T]) {
		if hook != nil {
			d.post = append(d.post, hook)
		}
	}
}

// WithUseNumber keeps numbers as json.Number in the document handed to pre
// hooks and in interface fields of T. Integers beyond 2^53 then survive
// decoding unchanged.
func WithUseNumber[T any]() Option[T] {
	return func(d *Decoder[T]) {
		d.useNumber = true
	}
}

// WithStrictFields rejects keys that T does not declare.
func WithStrictFields[T any]() Option[T] {
	return func(d *Decoder[T]) {
		d.strictFields = true
	}
}

// New constructs a Decoder.
func New[T any](opts ...Option[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode converts doc into T. doc itself is never modified; hooks receive a
// deep copy.
func (d *Decoder[T]) Decode(src Source, doc map[string]any) (T, error) {
	var zero T
	if doc == nil {
		return zero, fmt.Errorf("hydrate: %s: empty document", src)
	}

	current, err := cloneDocument(doc, d.useNumber)
	if err != nil {
		return zero, fmt.Errorf("hydrate: %s: copy document: %w", src, err)
	}
	for _, hook := range d.pre {
		next, err := hook(src, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: %s: %w", src, err)
		}
		if next != nil {
			current = next
		}
	}

	raw, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: %s: %w", src, err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if d.useNumber {
		dec.UseNumber()
	}
	if d.strictFields {
		dec.DisallowUnknownFields()
	}
	var out T
	if err := dec.Decode(&out); err != nil {
		return zero, fmt.Errorf("hydrate: %s: %w", src, err)
	}

	for _, hook := range d.post {
		if err := hook(src, &out); err != nil {
			return zero, fmt.Errorf("hydrate: %s: %w", src, err)
		}
	}
	return out, nil
}

// cloneDocument deep copies doc. YAML decoders may yield map[any]any for
// non-string keys, which json cannot encode, so keys are stringified first.
// With useNumber, numbers in the copy are json.Number and keep every digit.
func cloneDocument(doc map[string]any, useNumber bool) (map[string]any, error) {
	raw, err := json.Marshal(normalize(doc))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if useNumber {
		dec.UseNumber()
	}
	var out map[string]any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = normalize(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[fmt.Sprint(key)] = normalize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = normalize(item)
		}
		return out
	default:
		return value
	}
}
