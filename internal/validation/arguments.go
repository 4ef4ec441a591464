package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"fsserver/internal/fserr"

	"github.com/invopop/jsonschema"
)

// ValidateArguments checks args against an object schema: every required key
// must be present and non-null, and every declared property that is present
// must have the declared JSON type and respect its minimum. Keys the schema
// does not declare are ignored.
func ValidateArguments(s *jsonschema.Schema, args map[string]any) error {
	for _, name := range s.Required {
		if v, ok := args[name]; !ok || v == nil {
			return fserr.New(fserr.InvalidArgument, "Missing required argument: %s", name)
		}
	}

	if s.Properties == nil {
		return nil
	}

	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		value, ok := args[pair.Key]
		if !ok || value == nil {
			continue
		}
		if err := checkValue(pair.Key, pair.Value, value); err != nil {
			return err
		}
	}

	return nil
}

func checkValue(name string, prop *jsonschema.Schema, value any) error {
	want := prop.Type
	if want == "" {
		return nil
	}

	if got := jsonType(value); !typeMatches(want, got, value) {
		return fserr.New(fserr.InvalidArgument, "Invalid argument %s: expected %s, got %s", name, want, got)
	}

	if prop.Minimum != "" {
		lower, err := prop.Minimum.Float64()
		if err == nil {
			if n, ok := toFloat(value); ok && n < lower {
				return fserr.New(fserr.InvalidArgument, "Invalid argument %s: must be at least %s", name, prop.Minimum)
			}
		}
	}

	return nil
}

// jsonType names the JSON type of a value produced by encoding/json.
func jsonType(value any) string {
	switch v := value.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64:
		if f, _ := toFloat(v); f == math.Trunc(f) {
			return "integer"
		}
		return "number"
	case json.Number:
		if _, err := v.Int64(); err == nil {
			return "integer"
		}
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func typeMatches(want, got string, value any) bool {
	switch want {
	case "number":
		return got == "number" || got == "integer"
	case "integer":
		if got != "integer" {
			return false
		}
		f, _ := toFloat(value)
		return !math.IsInf(f, 0)
	default:
		return want == got
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	return 0, false
}

// Decode validates args against the schema of T and decodes them on top of
// defaults. Absent and null keys keep the value they have in defaults.
func Decode[T any](s *jsonschema.Schema, args map[string]any, defaults T) (T, error) {
	if err := ValidateArguments(s, args); err != nil {
		return defaults, err
	}

	present := make(map[string]any, len(args))
	for k, v := range args {
		if v != nil {
			present[k] = v
		}
	}

	data, err := json.Marshal(present)
	if err != nil {
		return defaults, fserr.Wrap(fserr.InvalidArgument, err, "Invalid arguments")
	}

	out := defaults
	if err := json.Unmarshal(data, &out); err != nil {
		return defaults, fserr.New(fserr.InvalidArgument, "Invalid arguments: %s", strings.TrimPrefix(err.Error(), "json: "))
	}
	return out, nil
}
