package memstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchema describes a flat user record body. Every field is optional so
// PATCH bodies validate with the same schema.
const recordSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "id":    { "type": ["string", "integer"] },
    "name":  { "type": "string" },
    "email": { "type": "string" }
  },
  "additionalProperties": false
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("record.json", strings.NewReader(recordSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("record.json")
	})
	return schema, schemaErr
}

// validateBody checks a decoded JSON body against the record schema.
func validateBody(body interface{}) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("schema compilation error: %w", err)
	}
	if err := s.Validate(body); err != nil {
		var vErr *jsonschema.ValidationError
		if errors.As(err, &vErr) {
			leaf := firstLeaf(vErr)
			return &ValidationError{
				Field:   fieldFromPointer(leaf.InstanceLocation),
				Message: leaf.Message,
			}
		}
		return &ValidationError{Message: err.Error()}
	}
	return nil
}

// firstLeaf returns the most specific cause of a validation error.
func firstLeaf(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// fieldFromPointer converts a JSON Pointer such as "/name" to "name".
func fieldFromPointer(path string) string {
	path = strings.TrimPrefix(path, "/")
	return strings.ReplaceAll(path, "/", ".")
}
