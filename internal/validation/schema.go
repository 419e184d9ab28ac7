package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("validation: schema invalid")
	ErrSchemaValidation = errors.New("validation: payload does not match schema")
)

// keys that mark a map as a JSON schema rather than a field list
var jsonSchemaKeys = []string{"$schema", "type", "properties", "oneOf", "anyOf", "allOf"}

var jsonTypes = map[string]struct{}{
	"string": {}, "number": {}, "integer": {}, "boolean": {}, "object": {}, "array": {}, "null": {},
}

// ValidateSchema reports whether schema compiles once normalised.
func ValidateSchema(schema map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized == nil {
		return nil
	}
	if _, err := compileMap(normalized); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	return nil
}

// ValidatePayload validates payload against schema.
func ValidatePayload(schema, payload map[string]any) error {
	return validateMap(NormalizeSchema(schema), payload)
}

// ValidatePartialPayload validates payload without enforcing required fields.
// Widget defaults are checked this way.
func ValidatePartialPayload(schema, payload map[string]any) error {
	normalized := NormalizeSchema(schema)
	if normalized != nil {
		delete(normalized, "required")
	}
	return validateMap(normalized, payload)
}

// ValidateDocument checks a decoded JSON document against a compiled schema
// and reports failures as a *PayloadValidationError.
func ValidateDocument(schema *jsonschema.Schema, document any) error {
	if schema == nil {
		return nil
	}
	if err := schema.Validate(document); err != nil {
		return &PayloadValidationError{Issues: Issues(err), Cause: err}
	}
	return nil
}

// CompileDocumentSchema compiles a raw draft 2020-12 schema document.
func CompileDocumentSchema(raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

// NormalizeSchema returns a JSON schema for schema. Maps that already look
// like JSON schema are copied. A {"fields": [...]} shorthand is expanded into
// a closed object schema. Anything else yields nil.
func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return nil
	}
	for _, key := range jsonSchemaKeys {
		if _, ok := schema[key]; ok {
			return copyMap(schema)
		}
	}

	properties, required := expandFields(schema["fields"])
	if len(properties) == 0 {
		return nil
	}
	out := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if allowed, ok := schema["additionalProperties"].(bool); ok {
		out["additionalProperties"] = allowed
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func expandFields(raw any) (map[string]any, []string) {
	var fields []map[string]any
	switch typed := raw.(type) {
	case []map[string]any:
		fields = typed
	case []any:
		for _, entry := range typed {
			switch field := entry.(type) {
			case map[string]any:
				fields = append(fields, field)
			case string:
				fields = append(fields, map[string]any{"name": field})
			}
		}
	}

	properties := make(map[string]any, len(fields))
	var required []string
	for _, field := range fields {
		name, _ := field["name"].(string)
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		properties[name] = fieldSchema(field)
		if flag, _ := field["required"].(bool); flag {
			required = append(required, name)
		}
	}
	return properties, required
}

func fieldSchema(field map[string]any) map[string]any {
	if schema, ok := field["schema"].(map[string]any); ok {
		return copyMap(schema)
	}
	fieldType, _ := field["type"].(string)
	fieldType = strings.ToLower(strings.TrimSpace(fieldType))
	if _, ok := jsonTypes[fieldType]; ok {
		return map[string]any{"type": fieldType}
	}
	return map[string]any{}
}

func validateMap(schema, payload map[string]any) error {
	if schema == nil {
		return nil
	}
	compiled, err := compileMap(schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	// round trip through JSON so numbers and nested values match decoded documents
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var document any
	if err := decoder.Decode(&document); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	return ValidateDocument(compiled, document)
}

func compileMap(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	return CompileDocumentSchema(encoded)
}

func copyMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = copyValue(value)
	}
	return out
}

func copyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return copyMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = copyValue(item)
		}
		return out
	default:
		return value
	}
}
