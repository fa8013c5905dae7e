package jsonb

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// IsJSON reports whether a cell holds a JSON object or array. Scalars are
// left alone: "42" or "true" read better as plain text.
func IsJSON(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || (value[0] != '{' && value[0] != '[') {
		return false
	}
	return json.Valid([]byte(value))
}

// Format pretty-prints a JSON document with two-space indentation
func Format(value string) (string, error) {
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return "", errors.Wrap(err, "invalid JSON")
	}
	out, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(out), nil
}

// Pretty returns the formatted document for JSON cells and the value
// unchanged otherwise
func Pretty(value string) string {
	if !IsJSON(value) {
		return value
	}
	out, err := Format(value)
	if err != nil {
		return value
	}
	return out
}

// Truncate shortens a JSON string for table display, cutting at a
// structural boundary when one is near the limit
func Truncate(jsonStr string, maxLen int) string {
	if len(jsonStr) <= maxLen || maxLen < 4 {
		return jsonStr
	}

	truncated := jsonStr[:maxLen-3]

	lastGood := strings.LastIndexAny(truncated, " ,{}[]")
	if lastGood > maxLen/2 {
		truncated = truncated[:lastGood]
	}

	return truncated + "..."
}
