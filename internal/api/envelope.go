package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Envelope is the backend's response wrapper.
type Envelope[T any] struct {
	Success    bool        `json:"success"`
	Data       T           `json:"data"`
	Message    string      `json:"message,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination accompanies list responses.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

const envelopeSchemaURL = "schema://levo/envelope.json"

var envelopeSchema = map[string]any{
	"type":     "object",
	"required": []any{"success"},
	"properties": map[string]any{
		"success": map[string]any{"type": "boolean"},
		"message": map[string]any{"type": []any{"string", "null"}},
		"pagination": map[string]any{
			"type": []any{"object", "null"},
			"properties": map[string]any{
				"page":       map[string]any{"type": "integer"},
				"limit":      map[string]any{"type": "integer"},
				"total":      map[string]any{"type": "integer"},
				"totalPages": map[string]any{"type": "integer"},
			},
		},
	},
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func envelopeValidator() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(envelopeSchemaURL, envelopeSchema); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile(envelopeSchemaURL)
	})
	return compiledSchema, compileErr
}

// parseEnvelope validates raw against the envelope schema and returns the
// parsed head (everything but data).
func parseEnvelope(raw []byte) (*Envelope[json.RawMessage], error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &ErrInvalidEnvelope{Body: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	schema, err := envelopeValidator()
	if err != nil {
		return nil, &ErrInvalidEnvelope{Body: raw, Err: fmt.Errorf("compile schema: %w", err)}
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, &ErrInvalidEnvelope{Body: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}

	var env Envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ErrInvalidEnvelope{Body: raw, Err: err}
	}
	return &env, nil
}

// decodeEnvelope turns a validated raw envelope into a typed one.
func decodeEnvelope[T any](raw *Envelope[json.RawMessage]) (*Envelope[T], error) {
	env := &Envelope[T]{
		Success:    raw.Success,
		Message:    raw.Message,
		Pagination: raw.Pagination,
	}
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return env, nil
	}
	if err := json.Unmarshal(raw.Data, &env.Data); err != nil {
		return nil, &ErrInvalidEnvelope{Body: raw.Data, Err: fmt.Errorf("decode data: %w", err)}
	}
	return env, nil
}
