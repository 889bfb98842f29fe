package scenario

import (
	"fmt"
	"os"
	"strings"
)

// Vars resolves template placeholders. Keys are looked up as written, so
// {{fixture.parent_sku}} resolves Vars["fixture.parent_sku"].
type Vars map[string]string

// ExpandTemplates replaces template placeholders in a string:
//   - {{env.VARIABLE}} from environment variables
//   - {{name}} from vars
func ExpandTemplates(s string, vars Vars) (string, error) {
	result := s
	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			return "", fmt.Errorf("unterminated template expression at position %d", start)
		}
		end += start + 2

		expr := strings.TrimSpace(result[start+2 : end-2])
		value, err := resolveExpr(expr, vars)
		if err != nil {
			return "", err
		}
		result = result[:start] + value + result[end:]
	}
	return result, nil
}

func resolveExpr(expr string, vars Vars) (string, error) {
	if strings.HasPrefix(expr, "env.") {
		return os.Getenv(expr[4:]), nil
	}
	if val, ok := vars[expr]; ok {
		return val, nil
	}
	return "", fmt.Errorf("unresolved template expression: %q", expr)
}

// expandValue expands templates inside strings nested in maps and slices.
func expandValue(v any, vars Vars) (any, error) {
	switch t := v.(type) {
	case string:
		return ExpandTemplates(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			ev, err := expandValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			ev, err := expandValue(item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	}
	return v, nil
}
