package message

import (
	"encoding/json"
	"fmt"
	"math"
)

// DynamicMessage represents a record with arbitrary key-value pairs,
// typically parsed from JSON.
type DynamicMessage map[string]interface{}

// HasNonNull checks if a key exists and its value is not explicitly null.
func (dm DynamicMessage) HasNonNull(key string) bool {
	val, exists := dm[key]
	return exists && val != nil
}

// Snippet returns a string snippet of any value, useful for logging.
// Long values are truncated to maxLength bytes.
func Snippet(value interface{}, maxLength int) string {
	strValue := fmt.Sprintf("%v", value)

	// Ensure maxLength is sensible before slicing
	if maxLength <= 0 {
		return "..."
	}

	// Truncate if the string representation exceeds the max length
	if len(strValue) > maxLength {
		return strValue[:maxLength] + "..."
	}

	return strValue
}

// AsFloat64 converts native numeric types and json.Number into a finite float64.
// Strings, booleans, NaN and infinities are rejected.
func AsFloat64(val interface{}) (float64, bool) {
	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		// Decoded with UseNumber, so the text may not fit a float64
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		// Value exists but is not a convertible numeric type
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Field returns a projection picking key out of object-shaped items.
// Anything that is not an object, and any missing or null field, projects to nil.
func Field(key string) func(interface{}) interface{} {
	return func(item interface{}) interface{} {
		var dm DynamicMessage
		switch obj := item.(type) {
		case DynamicMessage:
			dm = obj
		case map[string]interface{}:
			dm = DynamicMessage(obj)
		default:
			return nil
		}

		if !dm.HasNonNull(key) {
			return nil
		}
		return dm[key]
	}
}
