package itinerary

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ToNumber приводит произвольное значение из ответа модели к числу; никогда не падает.
func ToNumber(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case json.Number:
		return parseNumeric(v.String())
	case string:
		return parseNumeric(v)
	default:
		return 0
	}
}

func finite(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return value
}

// parseNumeric drops everything except digits and '.', then reads the longest
// decimal prefix: "₹1,234" -> 1234, "1.2.3" -> 1.2.
func parseNumeric(value string) float64 {
	var builder strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' {
			builder.WriteRune(r)
		}
	}

	digits := builder.String()
	end := 0
	seenDot := false
	for end < len(digits) {
		if digits[end] == '.' {
			if seenDot {
				break
			}
			seenDot = true
		}
		end++
	}

	parsed, err := strconv.ParseFloat(strings.TrimSuffix(digits[:end], "."), 64)
	if err != nil {
		return 0
	}

	return finite(parsed)
}
