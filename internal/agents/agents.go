// Package agents defines debate participants and biased observers, both as
// hand-crafted defaults and as passage-tuned ensembles produced by the
// generator.
package agents

import "fmt"

// Agent is a debate participant with a fixed interpretive lens.
type Agent struct {
	Name   string `json:"name" yaml:"name"`
	Stance string `json:"stance" yaml:"stance"`
	Focus  string `json:"focus" yaml:"focus"`
}

// SystemPrompt renders the agent's persona for a debate turn.
func (a Agent) SystemPrompt() string {
	return fmt.Sprintf(`You are %s, a participant in a philosophical debate.

Your stance: %s
Your focus: %s

Be concise but substantive. Stay true to your perspective. Engage with other viewpoints but maintain your interpretive lens.`,
		a.Name, a.Stance, a.Focus)
}

// DefaultAgents returns three hand-crafted, maximally different debate
// participants, used when no passage-tuned ensemble is generated.
func DefaultAgents() []Agent {
	return []Agent{
		{
			Name:   "The Literalist",
			Stance: "Focus on what literally happened in the text",
			Focus:  "Biographical and historical details, concrete actions, literal meanings",
		},
		{
			Name:   "The Symbolist",
			Stance: "Everything is metaphor for internal psychological states",
			Focus:  "Symbolic meanings, archetypal patterns, emotional/spiritual transformations",
		},
		{
			Name:   "The Structuralist",
			Stance: "This follows universal narrative patterns",
			Focus:  "Story structures, literary conventions, intertextual references",
		},
	}
}
