package models

import "encoding/json"

// encodeStringList serializes a string list to its JSON column form.
// Nil and empty lists both encode to "[]" so the column is never NULL.
func encodeStringList(keys []string) string {
	if len(keys) == 0 {
		return "[]"
	}
	data, err := json.Marshal(keys)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeStringList parses a JSON string-list column. Malformed payloads
// from older writers decode to an empty list rather than failing the row.
func decodeStringList(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return []string{}
	}
	if keys == nil {
		return []string{}
	}
	return keys
}
