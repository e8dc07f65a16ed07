package evalbox

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ContextFromJSON walks a JSON object into the plain Go map shape
// Evaluate's context parameter expects: JSON objects become
// map[string]any, arrays become []any, and scalars become bool/float64/
// string/nil. It exists because the host context dictionary is otherwise
// only reachable through the Go API, not a serialized form a CLI
// invocation can pass on the command line or from a file.
func ContextFromJSON(doc string) (map[string]any, error) {
	if !gjson.Valid(doc) {
		return nil, fmt.Errorf("invalid context JSON")
	}
	parsed := gjson.Parse(doc)
	if !parsed.IsObject() {
		return nil, fmt.Errorf("context JSON must be an object at the top level")
	}
	return jsonResultToMap(parsed), nil
}

func jsonResultToMap(r gjson.Result) map[string]any {
	out := make(map[string]any)
	r.ForEach(func(key, value gjson.Result) bool {
		out[key.String()] = jsonResultToAny(value)
		return true
	})
	return out
}

func jsonResultToAny(r gjson.Result) any {
	switch {
	case r.IsObject():
		return jsonResultToMap(r)
	case r.IsArray():
		var out []any
		r.ForEach(func(_, value gjson.Result) bool {
			out = append(out, jsonResultToAny(value))
			return true
		})
		return out
	case r.Type == gjson.Null:
		return nil
	case r.Type == gjson.True, r.Type == gjson.False:
		return r.Bool()
	case r.Type == gjson.Number:
		return r.Num
	default:
		return r.String()
	}
}

// ResultToJSON serializes an Evaluate result (plain Go data produced by
// interp.ToHost) into a `{"result": ...}` document, for the CLI's --json
// output mode.
func ResultToJSON(v any) (string, error) {
	return sjson.Set("{}", "result", v)
}
