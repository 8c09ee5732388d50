package prizepicks

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Helpers for walking decoded JSON of unknown shape.

func extractString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		return stringify(v)
	}
	return ""
}

// firstString returns the first non-blank value among keys.
func firstString(m map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if s := extractString(m, k); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

func fallbackString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func extractMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key]; ok {
		if mapVal, ok := v.(map[string]interface{}); ok {
			return mapVal
		}
	}
	return map[string]interface{}{}
}

func extractArray(m map[string]interface{}, key string) []interface{} {
	if v, ok := m[key]; ok {
		if arrVal, ok := v.([]interface{}); ok {
			return arrVal
		}
	}
	return nil
}

// stringify renders scalar JSON values; objects, arrays and null become "".
func stringify(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	default:
		return ""
	}
}

// objects keeps the elements of arr that are JSON objects.
func objects(arr []interface{}) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(arr))
	for _, v := range arr {
		if m, ok := v.(map[string]interface{}); ok {
			out = append(out, m)
		}
	}
	return out
}
