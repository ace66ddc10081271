package datagrid

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Payload schema names.
const (
	SchemaColumns    = "columns"
	SchemaOrder      = "order"
	SchemaVisibility = "visibility"
	SchemaTiles      = "tiles"
)

var payloadSchemas = map[string]map[string]any{
	SchemaColumns: {
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"columnHeader", "orderIndex", "isSelected"},
			"properties": map[string]any{
				"moduleKey":               map[string]any{"type": "string"},
				"columnHeader":            map[string]any{"type": "string", "minLength": 1},
				"columnHeaderDescription": map[string]any{"type": "string"},
				"orderIndex":              map[string]any{"type": "integer", "minimum": 0},
				"isSelected":              map[string]any{"type": "boolean"},
			},
		},
	},
	SchemaOrder: {
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	},
	SchemaVisibility: {
		"type":                 "object",
		"additionalProperties": map[string]any{"type": "boolean"},
	},
	SchemaTiles: {
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []string{"id", "position"},
			"properties": map[string]any{
				"id":       map[string]any{"type": "string", "minLength": 1},
				"position": map[string]any{"type": "integer", "minimum": 1},
				"deleted":  map[string]any{"type": "boolean"},
			},
		},
	},
}

// PayloadValidator checks intent payloads before they reach a store.
type PayloadValidator interface {
	Validate(schema string, payload any) error
}

// JSONSchemaValidator compiles the payload schemas on first use.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate normalizes payload through JSON and checks it against the named
// schema. Unknown schema names are rejected.
func (v *JSONSchemaValidator) Validate(name string, payload any) error {
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("datagrid: marshal %s payload: %w", name, err)
	}
	var normalized any
	if err := json.Unmarshal(data, &normalized); err != nil {
		return fmt.Errorf("datagrid: normalize %s payload: %w", name, err)
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("datagrid: %s payload failed validation: %w", name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	def, ok := payloadSchemas[name]
	if !ok {
		return nil, fmt.Errorf("datagrid: unknown payload schema %q", name)
	}
	data, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("datagrid: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("datagrid: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("datagrid: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopPayloadValidator struct{}

func (noopPayloadValidator) Validate(string, any) error { return nil }
