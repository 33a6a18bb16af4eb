// Package llm wraps the external text-generation collaborator. The core
// treats generation as an opaque synchronous call; everything structured
// about a response is recovered by the parsing helpers in this package.
package llm

// Generator produces text from a system prompt and a user prompt. A
// transport or process failure is returned as an error and is fatal for
// that call; retry policy belongs to the caller.
type Generator interface {
	Generate(systemPrompt, userPrompt string, temperature float64, model string) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface. Used heavily
// in tests to fake the collaborator.
type GeneratorFunc func(systemPrompt, userPrompt string, temperature float64, model string) (string, error)

func (f GeneratorFunc) Generate(systemPrompt, userPrompt string, temperature float64, model string) (string, error) {
	return f(systemPrompt, userPrompt, temperature, model)
}
