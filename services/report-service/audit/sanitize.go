package audit

const (
	maxDetailStringLen = 500
	maxDetailDepth     = 3
	maxDetailKeys      = 20
	maxDetailArrayLen  = 10
)

// sanitizeDetails bounds free-form detail payloads before persistence:
// strings truncated at 500 chars, nesting capped at depth 3, maps at 20
// keys, arrays at 10 elements. Anything past a cap is cut, not rejected.
func sanitizeDetails(v interface{}, depth int) interface{} {
	if v == nil {
		return nil
	}
	if depth >= maxDetailDepth {
		return "[truncated]"
	}

	switch val := v.(type) {
	case string:
		if len(val) > maxDetailStringLen {
			return val[:maxDetailStringLen]
		}
		return val
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		n := 0
		for k, inner := range val {
			if n >= maxDetailKeys {
				break
			}
			if len(k) > maxDetailStringLen {
				k = k[:maxDetailStringLen]
			}
			out[k] = sanitizeDetails(inner, depth+1)
			n++
		}
		return out
	case []interface{}:
		limit := len(val)
		if limit > maxDetailArrayLen {
			limit = maxDetailArrayLen
		}
		out := make([]interface{}, 0, limit)
		for _, inner := range val[:limit] {
			out = append(out, sanitizeDetails(inner, depth+1))
		}
		return out
	case []string:
		limit := len(val)
		if limit > maxDetailArrayLen {
			limit = maxDetailArrayLen
		}
		out := make([]interface{}, 0, limit)
		for _, s := range val[:limit] {
			out = append(out, sanitizeDetails(s, depth+1))
		}
		return out
	default:
		// numbers, booleans, and anything already scalar
		return val
	}
}
