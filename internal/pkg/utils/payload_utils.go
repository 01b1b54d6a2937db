package utils

import "strings"

// ExtractString normalizes a duck-typed external payload into a string.
// Wallet responses may arrive as a bare scalar or as an object carrying one
// of several known field names, so the rules are evaluated in order,
// first-match-wins: the bare-scalar case first, then each candidate field.
// Only non-empty matches count. The second return value is false when no
// rule produced a value.
func ExtractString(payload any, fields ...string) (string, bool) {
	if payload == nil {
		return "", false
	}

	if s, ok := payload.(string); ok {
		if strings.TrimSpace(s) != "" {
			return s, true
		}
		return "", false
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	for _, field := range fields {
		raw, present := obj[field]
		if !present {
			continue
		}
		if s, isStr := raw.(string); isStr && strings.TrimSpace(s) != "" {
			return s, true
		}
	}
	return "", false
}

// ExtractErrorMessage pulls an explicit error message out of a payload, if
// the wallet reported one. Both plain string errors and nested
// {error: {message: ...}} shapes are handled.
func ExtractErrorMessage(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	raw, present := obj["error"]
	if !present || raw == nil {
		return "", false
	}
	switch v := raw.(type) {
	case string:
		if v != "" {
			return v, true
		}
	case map[string]any:
		if msg, ok := ExtractString(v, "message", "msg"); ok {
			return msg, true
		}
	}
	return "", false
}

// ExtractBool reads a boolean that may be a bare scalar or live under one of
// the given field names.
func ExtractBool(payload any, fields ...string) (bool, bool) {
	if b, ok := payload.(bool); ok {
		return b, true
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		return false, false
	}
	for _, field := range fields {
		if raw, present := obj[field]; present {
			if b, isBool := raw.(bool); isBool {
				return b, true
			}
		}
	}
	return false, false
}
