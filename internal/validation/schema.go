// Package validation generates JSON Schemas for typed argument records and
// checks loosely typed arguments against them before decoding.
package validation

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// reflector inlines every definition so a tool's inputSchema is one flat
// object. Unknown argument keys are tolerated.
var reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: true,
}

// SchemaFor reflects the JSON Schema of T. Field descriptions, defaults and
// bounds come from `jsonschema` struct tags; their values cannot contain commas.
func SchemaFor[T any]() *jsonschema.Schema {
	var zero T
	s := reflector.Reflect(&zero)
	s.Version = ""
	s.ID = ""
	if s.Type == "" {
		s.Type = "object"
	}
	return s
}

// MarshalSchema renders s as raw JSON, suitable for a tool's inputSchema.
func MarshalSchema(s *jsonschema.Schema) (json.RawMessage, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	return data, nil
}
