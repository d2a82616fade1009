package normalize

import (
	"encoding/json"
	"fmt"
)

// IsEmptyValue reports whether a decoded JSON value counts as empty:
// null, empty string, empty array, empty object, false, or numeric zero
// in any spelling (0, 0.0, -0, 0e5). Everything else is non-empty.
func IsEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case bool:
		return !val
	case json.Number:
		f, err := val.Float64()
		// A number too large for float64 is certainly not zero
		return err == nil && f == 0
	case float64:
		return val == 0
	case int:
		return val == 0
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// sortText stringifies a value for value-based sorting: strings as-is,
// numbers by their source text, booleans and null by their JSON literals,
// structures by their compact JSON encoding.
func sortText(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	}
}
