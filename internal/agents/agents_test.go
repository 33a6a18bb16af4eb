package agents

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

func TestSystemPrompt(t *testing.T) {
	a := Agent{Name: "The Cartographer", Stance: "Every text is a map", Focus: "Spatial relations"}
	prompt := a.SystemPrompt()

	for _, want := range []string{"The Cartographer", "Every text is a map", "Spatial relations"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestDefaultAgents(t *testing.T) {
	defaults := DefaultAgents()
	if len(defaults) != 3 {
		t.Fatalf("got %d agents", len(defaults))
	}
	if defaults[0].Name != "The Literalist" || defaults[1].Name != "The Symbolist" || defaults[2].Name != "The Structuralist" {
		t.Errorf("unexpected ensemble: %v", defaults)
	}
}

func TestObserverSystemPrompt(t *testing.T) {
	p := DefaultObservers()[0]
	prompt := p.SystemPrompt()

	for _, want := range []string{
		"The Phenomenologist",
		"You systematically overlook",
		"Good questions from your perspective",
		"Bad questions",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("observer prompt missing %q", want)
		}
	}

	bare := Profile{Name: "X", Bias: "b", Focus: "f"}
	if got := bare.SystemPrompt(); strings.Contains(got, "overlook") || strings.Contains(got, "Good questions") {
		t.Error("optional sections rendered for a bare profile")
	}
}

func TestGenerateAgents(t *testing.T) {
	var prompts []string
	gen := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		if temperature != ensembleTemperature {
			t.Errorf("temperature: %f", temperature)
		}
		prompts = append(prompts, user)
		n := len(prompts)
		return fmt.Sprintf("```json\n{\"name\": \"Agent %d\", \"stance\": \"stance %d\", \"focus\": \"focus %d\"}\n```", n, n, n), nil
	})

	ensemble, err := GenerateAgents(gen, "m", "the passage", 3)
	if err != nil {
		t.Fatalf("GenerateAgents: %v", err)
	}
	if len(ensemble) != 3 {
		t.Fatalf("ensemble size: %d", len(ensemble))
	}
	if ensemble[2].Name != "Agent 3" || ensemble[2].Stance != "stance 3" {
		t.Errorf("third agent: %+v", ensemble[2])
	}

	// Later prompts must carry the earlier agents so the model can diverge
	if strings.Contains(prompts[0], "MAXIMALLY DIFFERENT") {
		t.Error("first prompt should not reference existing agents")
	}
	if !strings.Contains(prompts[2], "Agent 1") || !strings.Contains(prompts[2], "Agent 2") {
		t.Errorf("third prompt missing existing agents:\n%s", prompts[2])
	}
}

func TestGenerateAgents_ParseFailure(t *testing.T) {
	gen := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return "I would rather describe the agent in prose.", nil
	})
	if _, err := GenerateAgents(gen, "m", "p", 2); err == nil {
		t.Fatal("unparseable response should fail the ensemble")
	}
}

func TestGenerateObservers(t *testing.T) {
	gen := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return `{"name": "The Acoustician", "bias": "Sound first", "focus": "rhythm", "blind_spots": ["meaning", "history"]}`, nil
	})

	profiles, err := GenerateObservers(gen, "m", "p", 2)
	if err != nil {
		t.Fatalf("GenerateObservers: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "The Acoustician" {
		t.Errorf("profiles: %+v", profiles)
	}
	if len(profiles[0].BlindSpots) != 2 {
		t.Errorf("blind spots: %v", profiles[0].BlindSpots)
	}
}

func TestLLMObserver_CheckForTension(t *testing.T) {
	turn := graph.Turn{Speaker: "A", Content: strings.Repeat("x", 300), Round: 1}
	transcript := []graph.Turn{turn}

	gen := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return `{"question": "What about sound?", "rationale": "nobody listened"}`, nil
	})
	obs := NewLLMObserver(DefaultObservers()[0], gen, "m", "passage")

	candidate := obs.CheckForTension(turn, transcript)
	if candidate == nil {
		t.Fatal("expected a candidate")
	}
	if candidate.Question != "What about sound?" || candidate.Rationale != "nobody listened" {
		t.Errorf("candidate: %+v", candidate)
	}
	if len(candidate.Context) != contextExcerptLimit+3 {
		t.Errorf("context excerpt length: %d", len(candidate.Context))
	}
}

func TestLLMObserver_NoTension(t *testing.T) {
	turn := graph.Turn{Speaker: "A", Content: "quiet turn", Round: 1}

	none := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return "NONE", nil
	})
	if c := NewLLMObserver(DefaultObservers()[0], none, "m", "p").CheckForTension(turn, []graph.Turn{turn}); c != nil {
		t.Errorf("NONE should yield no candidate, got %+v", c)
	}

	failing := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return "", errors.New("generator down")
	})
	if c := NewLLMObserver(DefaultObservers()[0], failing, "m", "p").CheckForTension(turn, []graph.Turn{turn}); c != nil {
		t.Errorf("generator failure should yield no candidate, got %+v", c)
	}
}

func TestLLMObserver_BareQuestionFallback(t *testing.T) {
	turn := graph.Turn{Speaker: "A", Content: "a turn", Round: 1}
	gen := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return "What about the lake itself?", nil
	})

	candidate := NewLLMObserver(DefaultObservers()[1], gen, "m", "p").CheckForTension(turn, []graph.Turn{turn})
	if candidate == nil {
		t.Fatal("expected a candidate")
	}
	if candidate.Question != "What about the lake itself?" {
		t.Errorf("question: %q", candidate.Question)
	}
	if candidate.Rationale != "observer identified tension" {
		t.Errorf("rationale: %q", candidate.Rationale)
	}
}

func TestLLMObserver_RateUrgency(t *testing.T) {
	turn := graph.Turn{Speaker: "A", Content: "a turn", Round: 1}
	candidate := &debate.TensionCandidate{Question: "Why?", Rationale: "because"}

	gen := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return "Urgency: 0.85", nil
	})
	obs := NewLLMObserver(DefaultObservers()[2], gen, "m", "p")
	if got := obs.RateUrgency(candidate, []graph.Turn{turn}); got != 0.85 {
		t.Errorf("urgency: %f", got)
	}

	garbled := llm.GeneratorFunc(func(system, user string, temperature float64, model string) (string, error) {
		return "very urgent indeed", nil
	})
	if got := NewLLMObserver(DefaultObservers()[2], garbled, "m", "p").RateUrgency(candidate, []graph.Turn{turn}); got != 0.5 {
		t.Errorf("fallback urgency: %f", got)
	}
}

func TestClip_Multibyte(t *testing.T) {
	if got := clip("αβγδε", 3); got != "αβγ..." {
		t.Errorf("clip = %q, want %q", got, "αβγ...")
	}
	if got := clip("naïveté", 10); got != "naïveté" {
		t.Errorf("short string should be unchanged, got %q", got)
	}
}
