package snapshot

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// errSchemaViolation is returned when a matrix document does not match matrixSchema.
var errSchemaViolation = errors.New("schema violation")

const matrixSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["labels", "datasets"],
  "properties": {
    "labels": {
      "type": "array",
      "items": {"type": "string"},
      "uniqueItems": true
    },
    "datasets": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["label", "data"],
        "properties": {
          "label": {"type": "string"},
          "data": {"type": "array", "items": {"type": "integer"}}
        }
      }
    }
  }
}`

var compiledMatrixSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(matrixSchema))
})

// validateMatrix checks a serialized matrix against matrixSchema.
func validateMatrix(raw []byte) error {
	schema, err := compiledMatrixSchema()
	if err != nil {
		return fmt.Errorf("compile matrix schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validate matrix: %w", err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}

	return fmt.Errorf("%w: %s", errSchemaViolation, strings.Join(msgs, "; "))
}
