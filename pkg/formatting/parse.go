package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly or from a markdown code fence.
var ErrParseFailed = errors.New("failed to parse response")

var jsonBlockRegex = regexp.MustCompile(`(?s)` + "```" + `(?:json)?\s*\n?(.*?)\n?` + "```")

// JSON extracts the JSON document carried by model output. Content that is
// already valid JSON is returned as-is; otherwise the first markdown code
// fence holding valid JSON is used.
func JSON(content string) ([]byte, error) {
	content = strings.TrimSpace(content)

	if json.Valid([]byte(content)) {
		return []byte(content), nil
	}

	for _, match := range jsonBlockRegex.FindAllStringSubmatch(content, -1) {
		cleaned := strings.TrimSpace(match[1])
		if json.Valid([]byte(cleaned)) {
			return []byte(cleaned), nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrParseFailed, Truncate(content, 200))
}

// Parse unmarshals the JSON document carried by content into T.
func Parse[T any](content string) (T, error) {
	var result T

	data, err := JSON(content)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return result, nil
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
