package translate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// listKeys are tried in priority order when the model wraps its array in an
// object instead of returning {"translations": [...]} as instructed.
var listKeys = []string{"translations", "result", "data", "texts", "output"}

// extractList decodes the model's message content and locates the
// translations array: either the documented key, one of the tolerated
// alternates, or a bare top-level array. Anything else is a shape error,
// which the caller treats as retryable.
func extractList(content string) ([]any, error) {
	payload, err := decodeTolerant(content)
	if err != nil {
		return nil, err
	}
	switch value := payload.(type) {
	case []any:
		return value, nil
	case map[string]any:
		for _, key := range listKeys {
			if list, ok := value[key].([]any); ok {
				return list, nil
			}
		}
	}
	return nil, fmt.Errorf("translate: cannot find translations list in response: %s", snippet(content))
}

// normalizeSingle coerces each entry to a string and forces the result to
// the expected length: short responses are padded with empty strings, long
// ones truncated. Count mismatch is never an error.
func normalizeSingle(items []any, expected int) []string {
	result := make([]string, 0, expected)
	for _, item := range items {
		if len(result) == expected {
			break
		}
		result = append(result, coerceString(item))
	}
	for len(result) < expected {
		result = append(result, "")
	}
	return result
}

// normalizeDual coerces each entry into a Pair. Dict entries are probed under
// several key spellings; a bare string counts as the secondary (English)
// rendering with an empty primary. The result always has the expected length.
func normalizeDual(items []any, expected int) []Pair {
	result := make([]Pair, 0, expected)
	for _, item := range items {
		if len(result) == expected {
			break
		}
		switch value := item.(type) {
		case map[string]any:
			result = append(result, Pair{
				Primary:   lookupString(value, "zh", "chinese", "Chinese"),
				Secondary: lookupString(value, "en", "english", "English"),
			})
		default:
			result = append(result, Pair{Secondary: coerceString(item)})
		}
	}
	for len(result) < expected {
		result = append(result, Pair{})
	}
	return result
}

func lookupString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if value, ok := m[key]; ok {
			return coerceString(value)
		}
	}
	return ""
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

// decodeTolerant decodes JSON from a model response, handling common
// formatting quirks (code fences, prose around the object).
func decodeTolerant(content string) (any, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, fmt.Errorf("translate: empty payload")
	}

	var payload any
	directErr := json.Unmarshal([]byte(trimmed), &payload)
	if directErr == nil {
		return payload, nil
	}

	sanitized := sanitizeJSONPayload(trimmed)
	if sanitized == "" || sanitized == trimmed {
		return nil, fmt.Errorf("translate: parse payload: %w (snippet: %s)", directErr, snippet(trimmed))
	}
	if err := json.Unmarshal([]byte(sanitized), &payload); err != nil {
		return nil, fmt.Errorf("translate: parse sanitized payload: %w (snippet: %s)", err, snippet(sanitized))
	}
	return payload, nil
}

func sanitizeJSONPayload(content string) string {
	trimmed := strings.TrimSpace(stripCodeFenceBlock(content))
	if trimmed == "" {
		return ""
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}
	if start := strings.Index(trimmed, "{"); start >= 0 {
		if end := strings.LastIndex(trimmed, "}"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	if start := strings.Index(trimmed, "["); start >= 0 {
		if end := strings.LastIndex(trimmed, "]"); end > start {
			return strings.TrimSpace(trimmed[start : end+1])
		}
	}
	return trimmed
}

func stripCodeFenceBlock(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := trimmed[3:]
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
		body = strings.TrimLeft(body, " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func snippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	replacer := strings.NewReplacer("\r", " ", "\n", " ", "\t", " ")
	clean := replacer.Replace(trimmed)
	clean = strings.Join(strings.Fields(clean), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
