package scenario

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Lookup reads the value at path inside v. Paths use dot notation with
// optional array indices: "settings.carrier_required", "data[0].id". A
// leading "$" or "$." is accepted. An empty path returns v itself.
//
// v may be any JSON-serializable value; typed structs are viewed through
// their JSON encoding so paths always follow wire field names.
func Lookup(v any, path string) (any, bool) {
	doc, err := normalize(v)
	if err != nil {
		return nil, false
	}

	rest := strings.TrimPrefix(path, "$")
	rest = strings.TrimPrefix(rest, ".")
	if rest == "" {
		return doc, true
	}

	current := doc
	for _, seg := range splitPathSegments(rest) {
		if seg == "" {
			continue
		}
		field, indices, ok := parseSegment(seg)
		if !ok {
			return nil, false
		}
		if field != "" {
			m, ok := current.(map[string]any)
			if !ok {
				return nil, false
			}
			if current, ok = m[field]; !ok {
				return nil, false
			}
		}
		for _, idx := range indices {
			arr, ok := current.([]any)
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// parseSegment splits "items[0][1]" into "items" and [0 1].
func parseSegment(seg string) (string, []int, bool) {
	open := strings.Index(seg, "[")
	if open < 0 {
		return seg, nil, true
	}
	field := seg[:open]
	var indices []int
	rest := seg[open:]
	for rest != "" {
		if rest[0] != '[' {
			return "", nil, false
		}
		end := strings.Index(rest, "]")
		if end < 0 {
			return "", nil, false
		}
		n, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indices = append(indices, n)
		rest = rest[end+1:]
	}
	return field, indices, true
}

// splitPathSegments splits "field.nested[0].name" on dots outside brackets.
func splitPathSegments(path string) []string {
	var segments []string
	var current strings.Builder
	depth := 0

	for _, ch := range path {
		switch ch {
		case '[':
			depth++
			current.WriteRune(ch)
		case ']':
			depth--
			current.WriteRune(ch)
		case '.':
			if depth == 0 {
				segments = append(segments, current.String())
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}
	if current.Len() > 0 {
		segments = append(segments, current.String())
	}
	return segments
}

// normalize converts v into the generic shape encoding/json produces
// (map[string]any, []any, float64, string, bool, nil).
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
