package session

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"agora/dialectic/internal/llm"
)

// GenerateSessionName asks the generator for a short descriptive name and
// appends a timestamp for uniqueness. Failures fall back to "session".
func GenerateSessionName(gen llm.Generator, model, passage string) string {
	system := `You are a concise naming assistant.

Generate a SHORT, descriptive name for a debate session based on the given passage.

Requirements:
- 2-4 words maximum
- lowercase with underscores
- NO spaces, NO special characters (except underscores)
- Captures the core topic or key concept
- Filesystem-safe

Output ONLY the name, nothing else.`

	name := "session"
	out, err := gen.Generate(system, fmt.Sprintf("Passage:\n%s\n\nGenerate session name:", passage), 0.7, model)
	if err == nil {
		if cleaned := sanitizeName(out); cleaned != "" {
			name = cleaned
		}
	}

	return fmt.Sprintf("%s_%s", name, time.Now().Format("20060102_150405"))
}

// sanitizeName forces the model output into a filesystem-safe slug.
func sanitizeName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), `"'`)
	s = strings.ToLower(s)

	var b strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case r == ' ' || r == '-':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), "_")
}
