package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// extractJSON pulls a JSON object out of model output that may be wrapped in
// a code fence or surrounded by prose.
func extractJSON(data []byte) ([]byte, error) {
	str := stripMarkdownCodeBlocks(string(data))

	if strings.HasPrefix(str, "{") && json.Valid([]byte(str)) {
		return []byte(str), nil
	}

	// Fall back to the outermost braces.
	start := strings.Index(str, "{")
	end := strings.LastIndex(str, "}")
	if start == -1 || end == -1 || start >= end {
		return nil, errors.New("no JSON object found in response")
	}

	extracted := str[start : end+1]
	if !json.Valid([]byte(extracted)) {
		return nil, errors.New("extracted content is not valid JSON")
	}
	return []byte(extracted), nil
}

// stripMarkdownCodeBlocks removes a leading ```json or ``` fence and a
// trailing ``` fence.
func stripMarkdownCodeBlocks(s string) string {
	s = strings.TrimSpace(s)
	if cut, found := strings.CutPrefix(s, "```json"); found {
		s = cut
	} else if cut, found := strings.CutPrefix(s, "```"); found {
		s = cut
	}
	if cut, found := strings.CutSuffix(s, "```"); found {
		s = cut
	}
	return strings.TrimSpace(s)
}
