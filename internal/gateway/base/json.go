package base

import (
	"encoding/json"
	"maps"
)

// MustJSON marshals v, falling back to a JSON string of the error text.
func MustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return ErrorJSON(err)
	}
	return raw
}

// ErrorJSON stores an error as a JSON string in a raw response column.
func ErrorJSON(err error) json.RawMessage {
	raw, _ := json.Marshal(err.Error())
	return raw
}

// CloneNotes copies src so request notes never alias caller maps.
func CloneNotes(src map[string]any) map[string]any {
	out := make(map[string]any, len(src)+8)
	maps.Copy(out, src)
	return out
}
