package debate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

// Synthesizer distills a finished transcript into an argument node through
// four independent generator calls: topic, resolution, theme tags, and key
// claims. Topic and resolution are load-bearing and fail the synthesis;
// tags and claims degrade to empty on generator failure.
type Synthesizer struct {
	gen   llm.Generator
	model string
}

// NewSynthesizer returns a synthesizer backed by the given generator.
func NewSynthesizer(gen llm.Generator, model string) *Synthesizer {
	return &Synthesizer{gen: gen, model: model}
}

// Synthesize builds a node of the given kind from the transcript. Exactly
// one of sourcePassage and branchQuestion should be set, matching whether
// this was a main or a branch debate.
func (s *Synthesizer) Synthesize(kind graph.NodeKind, transcript []graph.Turn, sourcePassage, branchQuestion string) (*graph.ArgumentNode, error) {
	text := RenderTranscript(transcript)

	topic, err := s.topic(text)
	if err != nil {
		return nil, fmt.Errorf("synthesize topic: %w", err)
	}
	resolution, err := s.resolution(kind, text)
	if err != nil {
		return nil, fmt.Errorf("synthesize resolution: %w", err)
	}

	tags, err := s.tags(text)
	if err != nil {
		tags = nil
	}
	claims, err := s.claims(text)
	if err != nil {
		claims = nil
	}

	return &graph.ArgumentNode{
		ID:             graph.NewID(),
		Kind:           kind,
		Topic:          topic,
		Resolution:     resolution,
		SourcePassage:  sourcePassage,
		BranchQuestion: branchQuestion,
		ThemeTags:      tags,
		KeyClaims:      claims,
		Turns:          transcript,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

func (s *Synthesizer) topic(transcript string) (string, error) {
	out, err := s.gen.Generate(
		"You extract the central topic of a debate. Respond with a single short phrase, no preamble.",
		"What was this debate about?\n\n"+transcript,
		0.3, s.model)
	if err != nil {
		return "", err
	}
	topic := strings.TrimSpace(out)
	if topic == "" {
		return "", errors.New("generator returned empty response")
	}
	return topic, nil
}

// resolutionFraming tells the generator what to summarize, conditioned on
// how the debate ended.
var resolutionFraming = map[graph.NodeKind]string{
	graph.KindSynthesis:     "Summarize the agreement the participants reached and what it rests on.",
	graph.KindImpasse:       "Summarize the core disagreement and why it could not be resolved.",
	graph.KindLemma:         "State the sub-point that was established and how it was supported.",
	graph.KindQuestion:      "State the question that was posed and what makes it open.",
	graph.KindExploration:   "Summarize the main lines of exploration and where each was left.",
	graph.KindClarification: "State the point that was clarified and its refined formulation.",
}

func (s *Synthesizer) resolution(kind graph.NodeKind, transcript string) (string, error) {
	framing, ok := resolutionFraming[kind]
	if !ok {
		framing = resolutionFraming[graph.KindExploration]
	}
	out, err := s.gen.Generate(
		"You summarize debate outcomes in 2-3 sentences. Respond with the summary only.",
		framing+"\n\n"+transcript,
		0.4, s.model)
	if err != nil {
		return "", err
	}
	resolution := strings.TrimSpace(out)
	if resolution == "" {
		return "", errors.New("generator returned empty response")
	}
	return resolution, nil
}

func (s *Synthesizer) tags(transcript string) ([]string, error) {
	out, err := s.gen.Generate(
		"You label debates with theme tags. Respond with 3-5 short lowercase tags, comma-separated, nothing else.",
		"What themes does this debate touch?\n\n"+transcript,
		0.3, s.model)
	if err != nil {
		return nil, err
	}
	return graph.NormalizeTags(strings.Split(out, ",")), nil
}

const maxKeyClaims = 5

func (s *Synthesizer) claims(transcript string) ([]string, error) {
	out, err := s.gen.Generate(
		"You extract the key claims made in a debate. Respond with one claim per line, no numbering, no preamble.",
		"What were the key claims?\n\n"+transcript,
		0.3, s.model)
	if err != nil {
		return nil, err
	}

	var claims []string
	for _, line := range strings.Split(out, "\n") {
		line = stripListMarker(line)
		if line == "" {
			continue
		}
		claims = append(claims, line)
		if len(claims) == maxKeyClaims {
			break
		}
	}
	return claims, nil
}

// stripListMarker removes leading bullet or number decoration the model
// tends to add despite instructions.
func stripListMarker(line string) string {
	line = strings.TrimSpace(line)
	line = strings.TrimLeft(line, "-*• ")
	for i, r := range line {
		if r >= '0' && r <= '9' {
			continue
		}
		if (r == '.' || r == ')') && i > 0 {
			line = line[i+1:]
		}
		break
	}
	return strings.TrimSpace(line)
}

// RenderTranscript formats turns for inclusion in a prompt.
func RenderTranscript(turns []graph.Turn) string {
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**%s** (Round %d):\n%s", t.Speaker, t.Round, t.Content)
	}
	return b.String()
}
