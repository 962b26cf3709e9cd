package openapi

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	enum "github.com/goliatone/go-enum"
)

// Document builds an OpenAPI document with one component schema per catalog
// in reg, plus one operation whose request body has a property per registry
// name referencing that component.
func Document(reg *enum.Registry, opts ...GeneratorOption) (map[string]any, error) {
	if reg == nil {
		return nil, fmt.Errorf("openapi: registry is required")
	}
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	names := reg.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("openapi: registry has no catalogs")
	}

	components := newComponentSet()
	properties := make(map[string]any, len(names))
	for _, name := range names {
		d, _ := reg.Lookup(name)
		ref := components.add(d.TypeName(), Schema(d))
		properties[name] = map[string]any{"$ref": ref}
	}

	body := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	bodySchema := body
	if cfg.bodyComponent != "" {
		bodySchema = map[string]any{"$ref": components.add(cfg.bodyComponent, body)}
	}

	document := map[string]any{
		"openapi": cfg.openAPIVersion,
		"info":    buildInfo(cfg.info),
		"paths":   buildPaths(cfg, bodySchema),
		"components": map[string]any{
			"schemas": components.schemas,
		},
	}
	if err := validateDocument(document); err != nil {
		return nil, err
	}
	return document, nil
}

func buildInfo(info openapiInfo) map[string]any {
	out := map[string]any{
		"title":   info.Title,
		"version": info.Version,
	}
	if info.Description != "" {
		out["description"] = info.Description
	}
	return out
}

func buildPaths(cfg generatorConfig, bodySchema map[string]any) map[string]any {
	method := cfg.operation.Method
	if method == "" {
		method = "put"
	}
	operationID := cfg.operation.OperationID
	if operationID == "" {
		operationID = fmt.Sprintf("%s:%s", method, cfg.operation.Path)
	}

	statuses := make([]string, 0, len(cfg.responses))
	for status := range cfg.responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	responses := make(map[string]any, len(statuses))
	for _, status := range statuses {
		responses[status] = map[string]any{"description": cfg.responses[status]}
	}

	operation := map[string]any{
		"operationId": operationID,
		"requestBody": map[string]any{
			"required": true,
			"content": map[string]any{
				cfg.contentType: map[string]any{"schema": bodySchema},
			},
		},
		"responses": responses,
	}
	if summary := strings.TrimSpace(cfg.operation.Summary); summary != "" {
		operation["summary"] = summary
	}
	return map[string]any{
		cfg.operation.Path: map[string]any{method: operation},
	}
}

type componentSet struct {
	schemas map[string]any
}

func newComponentSet() *componentSet {
	return &componentSet{schemas: map[string]any{}}
}

// add stores schema under a sanitized, unique form of name and returns its
// reference.
func (c *componentSet) add(name string, schema map[string]any) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Enum"
	}
	unique := safe
	for suffix := 2; ; suffix++ {
		if _, exists := c.schemas[unique]; !exists {
			break
		}
		unique = fmt.Sprintf("%s%d", safe, suffix)
	}
	c.schemas[unique] = schema
	return "#/components/schemas/" + unique
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = strings.Trim(componentNameRegexp.ReplaceAllString(name, "_"), "_")
	if name != "" && name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func validateDocument(document map[string]any) error {
	if version, _ := document["openapi"].(string); version == "" {
		return fmt.Errorf("openapi: document missing version string")
	}
	info, _ := document["info"].(map[string]any)
	if title, _ := info["title"].(string); title == "" {
		return fmt.Errorf("openapi: info.title must be set")
	}
	if version, _ := info["version"].(string); version == "" {
		return fmt.Errorf("openapi: info.version must be set")
	}
	paths, _ := document["paths"].(map[string]any)
	for path := range paths {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("openapi: path %q must start with /", path)
		}
	}
	if len(paths) == 0 {
		return fmt.Errorf("openapi: document must define at least one path")
	}
	return nil
}
