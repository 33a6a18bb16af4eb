package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"agora/dialectic/internal/llm"
)

// ensembleTemperature is deliberately high: the point of generated
// ensembles is creative divergence, not consistency.
const ensembleTemperature = 0.85

// GenerateAgents builds an ensemble of n debate agents tuned to the
// passage. The first agent is generated freely; each subsequent one is
// prompted to be maximally different from those already generated. Any
// generation or parse failure fails the whole ensemble, the caller falls
// back to DefaultAgents.
func GenerateAgents(gen llm.Generator, model, passage string, n int) ([]Agent, error) {
	if n <= 0 {
		return nil, fmt.Errorf("generate agents: ensemble size %d", n)
	}

	var ensemble []Agent
	for i := 0; i < n; i++ {
		var system, prompt string
		if i == 0 {
			system = firstAgentSystem
			prompt = fmt.Sprintf("Passage to analyze:\n\n%s\n\nGenerate one useful debate agent perspective (JSON only):", passage)
		} else {
			system = contrastingAgentSystem
			prompt = fmt.Sprintf("Passage to analyze:\n\n%s\n\nExisting agents (BE MAXIMALLY DIFFERENT):\n\n%s\n\nGenerate a contrasting agent (JSON only):",
				passage, summarizeAgents(ensemble))
		}

		out, err := gen.Generate(system, prompt, ensembleTemperature, model)
		if err != nil {
			return nil, fmt.Errorf("generate agent %d: %w", i+1, err)
		}
		agent, err := parseAgent(out)
		if err != nil {
			return nil, fmt.Errorf("generate agent %d: %w", i+1, err)
		}
		ensemble = append(ensemble, agent)
	}
	return ensemble, nil
}

const firstAgentSystem = `You are a meta-analyst designing debate agents for philosophical analysis.

Your task: Generate ONE useful debate agent perspective for analyzing the given passage.

A good debate agent has:
- A clear INTERPRETIVE STANCE (how they read texts)
- A focused ANALYTICAL LENS (what they pay attention to)
- Consistency in their argumentative style

This agent will PARTICIPATE in debates, making arguments and responding to other perspectives.

Output in JSON format:
{
  "name": "The [Type] [Role]",
  "stance": "One-sentence core interpretive orientation that drives all arguments",
  "focus": "Specific aspects this agent emphasizes in debates"
}

Be creative. Think about what THIS passage needs.`

const contrastingAgentSystem = `You are a meta-analyst designing debate agents for philosophical analysis.

Your task: Generate ONE debate agent that is MAXIMALLY DIFFERENT from the existing agents, while still being relevant to the passage.

Maximize difference by:
- Choosing a completely different interpretive framework
- Focusing on aspects the others ignore
- Using a contrasting argumentative style
- Coming from a different intellectual tradition

Output in JSON format:
{
  "name": "The [Type] [Role]",
  "stance": "One-sentence core interpretive orientation that drives all arguments",
  "focus": "Specific aspects this agent emphasizes in debates"
}

Make it as orthogonal as possible to existing agents.`

func summarizeAgents(ensemble []Agent) string {
	parts := make([]string, len(ensemble))
	for i, a := range ensemble {
		parts[i] = fmt.Sprintf("**%s**\n- Stance: %s\n- Focus: %s", a.Name, a.Stance, a.Focus)
	}
	return strings.Join(parts, "\n\n")
}

func parseAgent(out string) (Agent, error) {
	raw, ok := llm.ExtractJSONObject(out)
	if !ok {
		return Agent{}, fmt.Errorf("no JSON object in response")
	}
	var a Agent
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return Agent{}, fmt.Errorf("parse agent: %w", err)
	}
	if a.Name == "" || a.Stance == "" {
		return Agent{}, fmt.Errorf("agent missing name or stance")
	}
	return a, nil
}

// GenerateObservers builds n observer perspectives tuned to the passage,
// using the same first-then-contrasting scheme as GenerateAgents. Generated
// profiles carry no example questions; those only exist for the hand-tuned
// defaults.
func GenerateObservers(gen llm.Generator, model, passage string, n int) ([]Profile, error) {
	if n <= 0 {
		return nil, fmt.Errorf("generate observers: ensemble size %d", n)
	}

	var profiles []Profile
	for i := 0; i < n; i++ {
		var system, prompt string
		if i == 0 {
			system = firstObserverSystem
			prompt = fmt.Sprintf("Passage to analyze:\n%q\n\nGenerate ONE useful interpretive perspective for this passage.\n\nJSON:", passage)
		} else {
			system = contrastingObserverSystem
			prompt = fmt.Sprintf("Passage to analyze:\n%q\n\nEXISTING PERSPECTIVES (generate something maximally different):\n%s\n\nGenerate ONE new perspective that explores angles the existing perspectives completely miss.\n\nJSON:",
				passage, summarizeProfiles(profiles))
		}

		out, err := gen.Generate(system, prompt, 0.8, model)
		if err != nil {
			return nil, fmt.Errorf("generate observer %d: %w", i+1, err)
		}
		profile, err := parseProfile(out)
		if err != nil {
			return nil, fmt.Errorf("generate observer %d: %w", i+1, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

const firstObserverSystem = `You are a meta-observer designing perspectives for analyzing philosophical texts.

Your task: Generate ONE useful interpretive perspective for analyzing the given passage.

A good perspective has:
- A clear, specific BIAS (what it always looks for)
- A focused DOMAIN (its area of expertise)
- Acknowledged BLIND SPOTS (what it systematically misses)

Output your perspective in JSON format:
{
  "name": "The [Type] [Role]",
  "bias": "One-sentence core orientation that drives all interpretation",
  "focus": "Specific angles and questions this perspective explores",
  "blind_spots": ["Thing 1 it misses", "Thing 2 it misses", "Thing 3 it misses"]
}

Be creative and specific. Avoid generic perspectives like "balanced reader" or "context-aware analyst".`

const contrastingObserverSystem = `You are a meta-observer designing perspectives for analyzing philosophical texts.

Your task: Generate ONE useful interpretive perspective that is MAXIMALLY DIFFERENT from the existing perspectives, while still being relevant to the passage.

Maximize difference by:
- Choosing a completely different domain/discipline
- Focusing on aspects the existing perspectives ignore
- Having opposite methodological commitments
- Asking questions that would never occur to existing perspectives

A good perspective has:
- A clear, specific BIAS (what it always looks for)
- A focused DOMAIN (its area of expertise)
- Acknowledged BLIND SPOTS (what it systematically misses)

Output your perspective in JSON format:
{
  "name": "The [Type] [Role]",
  "bias": "One-sentence core orientation that drives all interpretation",
  "focus": "Specific angles and questions this perspective explores",
  "blind_spots": ["Thing 1 it misses", "Thing 2 it misses", "Thing 3 it misses"]
}

Be creative and specific. Aim for maximum orthogonality to existing perspectives.`

func summarizeProfiles(profiles []Profile) string {
	parts := make([]string, len(profiles))
	for i, p := range profiles {
		parts[i] = fmt.Sprintf("**%s**\n- Bias: %s\n- Focus: %s\n- Blind spots: %s",
			p.Name, p.Bias, p.Focus, strings.Join(p.BlindSpots, ", "))
	}
	return strings.Join(parts, "\n\n")
}

func parseProfile(out string) (Profile, error) {
	raw, ok := llm.ExtractJSONObject(out)
	if !ok {
		return Profile{}, fmt.Errorf("no JSON object in response")
	}
	var p Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Profile{}, fmt.Errorf("parse observer: %w", err)
	}
	if p.Name == "" || p.Bias == "" {
		return Profile{}, fmt.Errorf("observer missing name or bias")
	}
	return p, nil
}
