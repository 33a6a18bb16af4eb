package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

// Profile describes a biased observer perspective. The bias is the point:
// an observer's job is to notice what its lens makes obvious and everyone
// else is ignoring.
type Profile struct {
	Name             string   `json:"name" yaml:"name"`
	Bias             string   `json:"bias" yaml:"bias"`
	Focus            string   `json:"focus" yaml:"focus"`
	BlindSpots       []string `json:"blind_spots" yaml:"blind_spots"`
	ExampleQuestions []string `json:"example_questions,omitempty" yaml:"example_questions,omitempty"`
	AntiExamples     []string `json:"anti_examples,omitempty" yaml:"anti_examples,omitempty"`
}

// SystemPrompt renders the observer's persona for tension spotting.
func (p Profile) SystemPrompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are %s, an observer of philosophical debates with a specific perspective.

Your core bias: %s
Your focus: %s`, p.Name, p.Bias, p.Focus)

	if len(p.BlindSpots) > 0 {
		fmt.Fprintf(&b, "\n\nYou systematically overlook: %s", strings.Join(p.BlindSpots, ", "))
	}

	b.WriteString(`

Your job is NOT to be neutral. Your job is to identify what the debaters are missing FROM YOUR SPECIFIC PERSPECTIVE.

Look for:
- Questions that your bias makes obvious but others ignore
- Angles related to your focus that aren't being explored
- Tensions that only someone with your perspective would notice`)

	if len(p.ExampleQuestions) > 0 {
		b.WriteString("\n\nGood questions from your perspective:")
		for _, q := range p.ExampleQuestions {
			b.WriteString("\n- " + q)
		}
	}
	if len(p.AntiExamples) > 0 {
		b.WriteString("\n\nBad questions (too generic or reformulations):")
		for _, q := range p.AntiExamples {
			b.WriteString("\n- " + q)
		}
	}
	return b.String()
}

// DefaultObservers returns the three hand-tuned observer perspectives.
func DefaultObservers() []Profile {
	return []Profile{
		{
			Name:  "The Phenomenologist",
			Bias:  "Only first-person lived experience is primary; everything else is derivative",
			Focus: "What this passage feels like from the inside, subjective states, qualia of experience",
			BlindSpots: []string{
				"Objective structures and patterns",
				"Historical and cultural contexts",
				"Logical consistency",
				"Literary conventions",
			},
			ExampleQuestions: []string{
				"What is the qualitative character of the narrator's experience at the moment of leaving?",
				"What does it feel like, from the inside, to stand at this threshold in the narrative?",
				"What first-person certainties or uncertainties define the phenomenal state described here?",
			},
			AntiExamples: []string{
				"What does this passage mean?",
				"Is this literal or symbolic?",
				"What are the deeper implications?",
			},
		},
		{
			Name:  "The Materialist Historian",
			Bias:  "All ideas are products of material conditions, power relations, and historical forces",
			Focus: "Economic base, class dynamics, institutional contexts, who benefits from specific interpretations",
			BlindSpots: []string{
				"Pure phenomenology",
				"Aesthetic considerations",
				"Formal logical validity",
				"Transhistorical truths",
			},
			ExampleQuestions: []string{
				"What class position made this gesture of withdrawal possible for the author?",
				"Who had access to the preparation this passage takes for granted?",
				"What economic structures make this way of life available, and to whom?",
			},
			AntiExamples: []string{
				"What is the historical context of this work?",
				"What does this mean?",
				"How should we interpret this passage?",
			},
		},
		{
			Name:  "The Pragmatist Engineer",
			Bias:  "Ideas only matter insofar as they have measurable, practical consequences in the world",
			Focus: "Actionable implications, decision procedures, implementability, testable predictions",
			BlindSpots: []string{
				"Pure theoretical elegance",
				"Historical context without present relevance",
				"Aesthetic or emotional resonance",
				"Abstract metaphysical claims",
			},
			ExampleQuestions: []string{
				"If someone wanted to replicate this move, what concrete steps differentiate it from its mundane lookalike?",
				"What observable behavior change would indicate someone successfully adopted this framework?",
				"What prediction does this passage make that could be falsified?",
			},
			AntiExamples: []string{
				"What does this mean in practice?",
				"How do we apply this?",
				"What are the implications?",
			},
		},
	}
}

// noTension is the sentinel an observer answers with when a turn raises
// nothing worth branching on.
const noTension = "NONE"

const contextExcerptLimit = 200

// LLMObserver wires a Profile to a generator so it can watch live debates.
// It implements debate.Observer.
type LLMObserver struct {
	profile Profile
	gen     llm.Generator
	model   string
	passage string
}

// NewLLMObserver returns an observer for one passage's debates.
func NewLLMObserver(profile Profile, gen llm.Generator, model, passage string) *LLMObserver {
	return &LLMObserver{profile: profile, gen: gen, model: model, passage: passage}
}

func (o *LLMObserver) Name() string { return o.profile.Name }

// CheckForTension asks the persona whether the turn exposes an unexplored
// question. Generator failures and a NONE answer both read as no tension;
// a debate never stalls on a flaky observer.
func (o *LLMObserver) CheckForTension(turn graph.Turn, transcript []graph.Turn) *debate.TensionCandidate {
	system := o.profile.SystemPrompt() + `

If the latest turn raises nothing new worth a focused discussion, respond with exactly NONE.
Otherwise respond in JSON format:
{
  "question": "a single precise question that deserves its own focused discussion",
  "rationale": "why the debaters' blind spot matters here"
}`

	prompt := fmt.Sprintf(`Original passage:
%q

Debate transcript:
%s

From YOUR perspective (%s), what is the single most important question they're NOT asking?`,
		o.passage, debate.RenderTranscript(transcript), o.profile.Bias)

	out, err := o.gen.Generate(system, prompt, 0.6, o.model)
	if err != nil {
		return nil
	}
	out = strings.TrimSpace(out)
	if out == "" || strings.EqualFold(out, noTension) {
		return nil
	}

	candidate := debate.TensionCandidate{
		Context:   clip(turn.Content, contextExcerptLimit),
		Rationale: "observer identified tension",
	}
	if raw, ok := llm.ExtractJSONObject(out); ok {
		var parsed struct {
			Question  string `json:"question"`
			Rationale string `json:"rationale"`
		}
		if json.Unmarshal([]byte(raw), &parsed) == nil && parsed.Question != "" {
			candidate.Question = parsed.Question
			if parsed.Rationale != "" {
				candidate.Rationale = parsed.Rationale
			}
			return &candidate
		}
	}

	// A bare question is still usable
	candidate.Question = out
	return &candidate
}

// RateUrgency asks the persona how pressing the tension is right now.
func (o *LLMObserver) RateUrgency(candidate *debate.TensionCandidate, transcript []graph.Turn) float64 {
	system := `You rate how urgent an unexplored question is for a running debate.

0.0 means ignorable, 0.5 means worth a stub for later, 1.0 means the debate is hollow without it.
Output ONLY the number.`

	prompt := fmt.Sprintf("Question: %q\n\nRationale: %s\n\nRecent debate:\n%s\n\nUrgency (0.0-1.0):",
		candidate.Question, candidate.Rationale, debate.RenderTranscript(lastTurns(transcript, 3)))

	out, err := o.gen.Generate(system, prompt, 0.3, o.model)
	if err != nil {
		return 0.5
	}
	score, ok := llm.ParseScore(out)
	if !ok {
		return 0.5
	}
	return score
}

func lastTurns(transcript []graph.Turn, n int) []graph.Turn {
	if len(transcript) > n {
		return transcript[len(transcript)-n:]
	}
	return transcript
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
