package llm

import (
	"regexp"
	"strconv"
	"strings"
)

// ExtractJSONObject pulls the first balanced JSON object out of free text.
// Models routinely wrap JSON in markdown fences or surround it with prose;
// every component that asks for structured output goes through this one
// helper. Returns "" and ok=false when no object is present.
func ExtractJSONObject(text string) (string, bool) {
	text = stripFences(text)

	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+3:]
	} else {
		return text
	}
	if end := strings.Index(text, "```"); end >= 0 {
		text = text[:end]
	}
	return strings.TrimSpace(text)
}

var scoreRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// ParseScore extracts the first numeric value from a judgment response and
// clamps it to [0,1]. Returns ok=false when the response carries no number;
// callers fall back to a neutral 0.5 so one malformed judgment never aborts
// a selection pass.
func ParseScore(text string) (float64, bool) {
	m := scoreRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v, true
}
