package session

import (
	"encoding/json"
	"fmt"

	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

// Continuation is a proposed next debate derived from a finished node.
type Continuation struct {
	Question     string `json:"question"`
	Rationale    string `json:"rationale"`
	ApproachType string `json:"approach_type"`
}

// GenerateContinuation proposes how to continue from a node. The framing
// depends on how the node resolved: an impasse wants a bridging question, a
// synthesis wants its implications tested, an exploration wants deepening.
// Unparseable responses fall back to a generic follow-up.
func GenerateContinuation(gen llm.Generator, model string, node *graph.ArgumentNode) Continuation {
	context := fmt.Sprintf("Node Type: %s\nTopic: %s\nResolution: %s", node.Kind, node.Topic, node.Resolution)
	if len(node.KeyClaims) > 0 {
		claims := node.KeyClaims
		if len(claims) > 3 {
			claims = claims[:3]
		}
		context += "\nKey Claims:"
		for _, c := range claims {
			context += "\n- " + c
		}
	}
	if node.SourcePassage != "" {
		context += "\nOriginal Passage: " + node.SourcePassage
	}
	if node.BranchQuestion != "" {
		context += "\nBranch Question: " + node.BranchQuestion
	}

	prompt := context + "\n\nBased on this debate node, generate a continuation strategy (JSON only):"

	out, err := gen.Generate(continuationSystem(node.Kind), prompt, 0.7, model)
	if err == nil {
		if raw, ok := llm.ExtractJSONObject(out); ok {
			var c Continuation
			if json.Unmarshal([]byte(raw), &c) == nil && c.Question != "" {
				return c
			}
		}
	}

	return Continuation{
		Question:     fmt.Sprintf("What are the implications of this %s?", node.Kind),
		Rationale:    "General follow-up question",
		ApproachType: "extension",
	}
}

func continuationSystem(kind graph.NodeKind) string {
	switch kind {
	case graph.KindImpasse:
		return `You help resolve impasses in philosophical debates.

When agents reach an impasse, the best continuation is often to:
1. Identify the core disagreement
2. Find a bridging question that reframes the tension
3. Look for hidden assumptions causing the deadlock

Generate a question that might help resolve or productively reframe the impasse.

Output JSON:
{
  "question": "Your bridging question here",
  "rationale": "Why this question might help resolve the impasse",
  "approach_type": "resolution"
}`
	case graph.KindSynthesis:
		return `You help explore implications of philosophical agreements.

When agents reach synthesis, good continuations:
1. Explore implications or consequences
2. Test the synthesis with edge cases
3. Apply the insight to related domains

Generate a question that deepens or tests the synthesis.

Output JSON:
{
  "question": "Your exploration question here",
  "rationale": "Why this deepens the synthesis",
  "approach_type": "implication"
}`
	case graph.KindExploration:
		return `You help deepen open-ended investigations.

When a topic remains exploratory, good continuations:
1. Identify the most promising sub-question
2. Find a concrete case or example to ground the discussion
3. Introduce a contrasting perspective not yet considered

Generate a question that productively deepens the exploration.

Output JSON:
{
  "question": "Your deepening question here",
  "rationale": "Why this advances the investigation",
  "approach_type": "deepening"
}`
	default:
		return `You help extend philosophical discussions.

Generate a natural follow-up question that:
1. Builds on what was established
2. Opens new relevant territory
3. Maintains philosophical depth

Output JSON:
{
  "question": "Your follow-up question here",
  "rationale": "Why this is a natural next step",
  "approach_type": "extension"
}`
	}
}
