package ai

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"
)

// extractJSON returns the greedy span from the first '{' to the last '}',
// which also covers responses wrapped in code fences or prose.
func extractJSON(s string) string {
	return span(s, "{", "}")
}

// extractArray is extractJSON for a top-level JSON array.
func extractArray(s string) string {
	return span(s, "[", "]")
}

func span(s, open, close string) string {
	start := strings.Index(s, open)
	if start == -1 {
		return ""
	}
	end := strings.LastIndex(s, close)
	if end == -1 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// score accepts a JSON number or a numeric string; anything else is 0.
type score float64

func (s *score) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*s = score(f)
		return nil
	}
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(str), "%"), 64); err == nil {
			*s = score(f)
			return nil
		}
	}
	*s = 0
	return nil
}
