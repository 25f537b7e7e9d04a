package itinerary

import (
	"regexp"
	"strings"
)

var (
	jsonFencePattern    = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	genericFencePattern = regexp.MustCompile("(?s)```(.*?)```")
)

// ExtractJSON выделяет из ответа модели единственный JSON-объект.
//
// Braces inside string literals are counted like any other brace, so a value
// such as "}" can end the object early; the parse that follows reports it.
func ExtractJSON(input string) string {
	if match := jsonFencePattern.FindStringSubmatch(input); match != nil {
		return strings.TrimSpace(match[1])
	}

	if match := genericFencePattern.FindStringSubmatch(input); match != nil {
		return strings.TrimSpace(match[1])
	}

	start := strings.Index(input, "{")
	if start == -1 {
		return strings.TrimSpace(input)
	}

	depth := 0
	for i := start; i < len(input); i++ {
		switch input[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}

	return strings.TrimSpace(input[start:])
}
