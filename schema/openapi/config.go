package openapi

import (
	"strings"
)

type generatorConfig struct {
	openAPIVersion string
	info           openapiInfo
	operation      operationConfig
	contentType    string
	responses      map[string]string
	bodyComponent  string
}

type openapiInfo struct {
	Title       string
	Version     string
	Description string
}

type operationConfig struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: "3.0.3",
		info: openapiInfo{
			Title:   "Enumerations",
			Version: "1.0.0",
		},
		operation: operationConfig{
			Path:   "/selections",
			Method: "put",
		},
		contentType: "application/json",
		responses: map[string]string{
			"204": "Saved",
			"422": "Unknown or proscribed choice",
		},
	}
}

// GeneratorOption configures Document.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion overrides the OpenAPI version string (default 3.0.3).
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// WithInfo sets the info block. Empty strings keep the defaults.
func WithInfo(title, version, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		if description != "" {
			cfg.info.Description = description
		}
	}
}

// WithOperation configures the path, method and operationId of the single
// operation whose request body carries every registered enumeration. Empty
// inputs keep the defaults; the operationId defaults to "method:path".
func WithOperation(path, method, operationID, summary string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.operation.Path = path
		}
		if method != "" {
			cfg.operation.Method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.operation.OperationID = operationID
		}
		if summary != "" {
			cfg.operation.Summary = summary
		}
	}
}

// WithContentType sets the request body content type.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithResponse adds or replaces the response documented for status.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		if cfg.responses == nil {
			cfg.responses = map[string]string{}
		}
		cfg.responses[status] = description
	}
}

// WithBodyComponent publishes the request body object as a named component
// instead of inlining it.
func WithBodyComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.bodyComponent = name
	}
}
