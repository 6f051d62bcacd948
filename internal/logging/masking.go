// Package logging provides logger construction and helpers for logging
// HTTP traffic without leaking credentials.
package logging

import (
	"encoding/json"
	"strings"
)

// Redacted replaces values that must never appear in logs.
const Redacted = "[REDACTED]"

// MaskHeader redacts sensitive header values based on header name.
//
// Cookies and anything named like a secret are fully redacted. Bearer tokens
// keep their last four characters so operators can correlate requests with a
// token without being able to replay it.
func MaskHeader(name, value string) string {
	lowerName := strings.ToLower(name)

	switch {
	case lowerName == "cookie" || lowerName == "set-cookie",
		strings.Contains(lowerName, "password"),
		strings.Contains(lowerName, "secret"):
		return Redacted
	case lowerName == "authorization" || lowerName == "x-api-key":
		return MaskToken(value)
	default:
		return value
	}
}

// MaskToken keeps only the last four characters of a credential.
func MaskToken(token string) string {
	if len(token) < 4 {
		return "****"
	}
	return "****" + token[len(token)-4:]
}

// MaskJSONBody redacts every primitive JSON value whose key is not in allowlist.
// Objects and arrays are always walked so allowed keys nested below a redacted
// key are still shown.
//
// A nil allowlist disables masking. Bodies that are not valid JSON are
// returned unchanged.
func MaskJSONBody(body []byte, allowlist []string) []byte {
	if allowlist == nil || len(body) == 0 {
		return body
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return body
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, field := range allowlist {
		allowed[field] = true
	}

	result, err := json.Marshal(maskJSONValue(data, allowed))
	if err != nil {
		return body
	}
	return result
}

func maskJSONValue(value any, allowed map[string]bool) any {
	switch v := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(v))
		for key, val := range v {
			switch val.(type) {
			case map[string]any, []any:
				result[key] = maskJSONValue(val, allowed)
			default:
				if allowed[key] {
					result[key] = val
				} else {
					result[key] = Redacted
				}
			}
		}
		return result
	case []any:
		result := make([]any, len(v))
		for i, item := range v {
			result[i] = maskJSONValue(item, allowed)
		}
		return result
	default:
		return value
	}
}
