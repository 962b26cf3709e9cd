// Package openapi describes enumeration catalogs as OpenAPI string schemas.
package openapi

import (
	"strings"

	enum "github.com/goliatone/go-enum"
)

// Vendor extensions added to every catalog schema.
const (
	ExtOrdinals    = "x-enum-ordinals"
	ExtLegacyNames = "x-legacy-names"
)

// SchemaOption configures Schema.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	description string
	noDefault   bool
	noLegacy    bool
}

// WithDescription sets the schema description.
func WithDescription(description string) SchemaOption {
	return func(cfg *schemaConfig) {
		cfg.description = description
	}
}

// WithoutDefault omits the default (the ordinal 0 name).
func WithoutDefault() SchemaOption {
	return func(cfg *schemaConfig) {
		cfg.noDefault = true
	}
}

// WithoutLegacyNames omits the x-legacy-names extension.
func WithoutLegacyNames() SchemaOption {
	return func(cfg *schemaConfig) {
		cfg.noLegacy = true
	}
}

// Schema describes d as a string schema whose enum lists the canonical names
// in ordinal order. Ordinals are published under x-enum-ordinals. Old
// underbar spellings still accepted by the parser are published under
// x-legacy-names, mapped to the canonical name they resolve to.
func Schema(d enum.Descriptor, opts ...SchemaOption) map[string]any {
	cfg := schemaConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	names := d.Names()
	values := make([]any, len(names))
	ordinals := make(map[string]any, len(names))
	for i, name := range names {
		values[i] = name
		ordinals[name] = i
	}

	schema := map[string]any{
		"type":      "string",
		"title":     d.TypeName(),
		"enum":      values,
		ExtOrdinals: ordinals,
	}
	if !cfg.noDefault && len(names) > 0 {
		schema["default"] = names[0]
	}
	if cfg.description != "" {
		schema["description"] = cfg.description
	}
	if !cfg.noLegacy {
		if legacy := LegacyNames(d); len(legacy) > 0 {
			aliases := make(map[string]any, len(legacy))
			for alias, canonical := range legacy {
				aliases[alias] = canonical
			}
			schema[ExtLegacyNames] = aliases
		}
	}
	return schema
}

// LegacyNames maps the underbar spelling of every canonical name containing a
// blank to that name. A spelling is only listed when the parser resolves it
// to that same entry: spellings that are canonical names themselves, or whose
// fallback lands on another entry, are skipped.
func LegacyNames(d enum.Descriptor) map[string]string {
	out := map[string]string{}
	for i, name := range d.Names() {
		if !strings.Contains(name, " ") {
			continue
		}
		alias := strings.ReplaceAll(name, " ", "_")
		m, err := d.Resolve(alias)
		if err != nil || !m.Legacy || m.Ordinal != i {
			continue
		}
		out[alias] = name
	}
	return out
}
