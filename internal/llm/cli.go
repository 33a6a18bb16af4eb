package llm

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// CLI shells out to the `llm` command-line tool. The prompt goes to stdin;
// system prompt, model, and temperature are passed as flags.
type CLI struct {
	// Binary is the executable name, default "llm".
	Binary string
	// DefaultModel is used when a call passes an empty model id.
	DefaultModel string
}

// NewCLI returns a CLI generator with the given default model.
func NewCLI(defaultModel string) *CLI {
	return &CLI{Binary: "llm", DefaultModel: defaultModel}
}

// Generate runs one blocking subprocess call. Stderr from a failed run is
// folded into the returned error.
func (c *CLI) Generate(systemPrompt, userPrompt string, temperature float64, model string) (string, error) {
	if model == "" {
		model = c.DefaultModel
	}
	binary := c.Binary
	if binary == "" {
		binary = "llm"
	}

	args := []string{
		"-m", model,
		"-s", systemPrompt,
		"-o", "temperature", strconv.FormatFloat(temperature, 'f', -1, 64),
	}

	cmd := exec.Command(binary, args...)
	cmd.Stdin = strings.NewReader(userPrompt)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("llm call failed (model %s): %w: %s",
				model, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("llm call failed (model %s): %w", model, err)
	}

	return strings.TrimSpace(string(out)), nil
}
