// Package fields composes the set of issue fields a query requests and
// extracts display values from the loosely structured records JIRA returns.
package fields

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Resolve merges a default field list with caller-supplied extras into a
// single sequence: defaults first, then extras not already present,
// duplicates removed, first-seen order preserved.
func Resolve(defaults, extras []string) []string {
	seen := make(map[string]bool, len(defaults)+len(extras))
	resolved := make([]string, 0, len(defaults)+len(extras))

	for _, list := range [][]string{defaults, extras} {
		for _, field := range list {
			if field == "" || seen[field] {
				continue
			}
			seen[field] = true
			resolved = append(resolved, field)
		}
	}

	return resolved
}

// LookupRaw walks a dotted path through a decoded JSON tree. The second
// return value is false if any segment is missing, null, or not an object.
func LookupRaw(tree map[string]interface{}, path string) (interface{}, bool) {
	var value interface{} = tree

	for _, segment := range strings.Split(path, ".") {
		node, ok := value.(map[string]interface{})
		if !ok {
			return nil, false
		}
		value, ok = node[segment]
		if !ok || value == nil {
			return nil, false
		}
	}

	return value, true
}

// Lookup resolves a dotted path to a display string, returning fallback when
// the path cannot be resolved. It never fails on missing or optional fields.
func Lookup(tree map[string]interface{}, path, fallback string) string {
	value, ok := LookupRaw(tree, path)
	if !ok {
		return fallback
	}
	return Render(value)
}

// Render converts an arbitrary JSON value to a display string. Objects that
// carry a conventional JIRA label key (name, displayName, value) render as
// that label; anything else nested falls back to compact JSON.
func Render(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]interface{}:
		for _, label := range []string{"displayName", "name", "value"} {
			if s, ok := v[label].(string); ok {
				return s
			}
		}
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}
