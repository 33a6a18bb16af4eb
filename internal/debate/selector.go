package debate

import (
	"fmt"
	"sort"
	"strings"

	"agora/dialectic/internal/llm"
)

// Strategy names a branch selection policy.
type Strategy string

const (
	StrategyUrgent  Strategy = "urgent"  // highest urgency first
	StrategyDiverse Strategy = "diverse" // maximize question coverage
	StrategyDeep    Strategy = "deep"    // prefer questions likely to spawn sub-debates
	StrategyMeta    Strategy = "meta"    // prefer questions about the debate itself
)

func (s Strategy) String() string { return string(s) }

// Strategies lists the known strategies.
func Strategies() []Strategy {
	return []Strategy{StrategyUrgent, StrategyDiverse, StrategyDeep, StrategyMeta}
}

// neutralScore stands in when a generator response yields no parseable number.
const neutralScore = 0.5

// Selector decides which flagged tensions to explore now and which to
// defer as stubs. The urgent strategy is purely local; the others delegate
// scoring to the generator.
type Selector struct {
	gen   llm.Generator
	model string
}

// NewSelector returns a selector backed by the given generator.
func NewSelector(gen llm.Generator, model string) *Selector {
	return &Selector{gen: gen, model: model}
}

// Select partitions candidates into at most maxBranches to explore plus the
// deferred rest. Every candidate lands in exactly one of the two slices.
// Unknown strategies fall back to diverse.
func (s *Selector) Select(candidates []TensionFlag, maxBranches int, strategy Strategy) (selected, deferred []TensionFlag) {
	if len(candidates) == 0 {
		return nil, nil
	}
	if maxBranches <= 0 {
		deferred = make([]TensionFlag, len(candidates))
		copy(deferred, candidates)
		return nil, deferred
	}
	if len(candidates) <= maxBranches {
		return candidates, nil
	}

	switch strategy {
	case StrategyUrgent:
		selected = selectUrgent(candidates, maxBranches)
	case StrategyDeep:
		selected = s.selectScored(candidates, maxBranches, s.depthScore)
	case StrategyMeta:
		selected = s.selectScored(candidates, maxBranches, s.metaScore)
	default:
		selected = s.selectDiverse(candidates, maxBranches)
	}

	chosen := make(map[string]bool, len(selected))
	for _, f := range selected {
		chosen[f.ID] = true
	}
	for _, f := range candidates {
		if !chosen[f.ID] {
			deferred = append(deferred, f)
		}
	}
	return selected, deferred
}

func selectUrgent(candidates []TensionFlag, maxBranches int) []TensionFlag {
	sorted := make([]TensionFlag, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Urgency > sorted[j].Urgency
	})
	return sorted[:maxBranches]
}

// selectDiverse seeds with the most urgent tension, then greedily adds the
// candidate most different from everything selected so far. Strict
// comparison keeps ties on encounter order.
func (s *Selector) selectDiverse(candidates []TensionFlag, maxBranches int) []TensionFlag {
	seed := candidates[0]
	for _, f := range candidates[1:] {
		if f.Urgency > seed.Urgency {
			seed = f
		}
	}

	selected := []TensionFlag{seed}
	remaining := without(candidates, seed.ID)

	for len(selected) < maxBranches && len(remaining) > 0 {
		best := -1
		bestScore := -1.0
		for i, candidate := range remaining {
			score := s.diversityScore(candidate, selected)
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		selected = append(selected, remaining[best])
		remaining = without(remaining, remaining[best].ID)
	}
	return selected
}

func (s *Selector) diversityScore(candidate TensionFlag, selected []TensionFlag) float64 {
	var listed strings.Builder
	for _, f := range selected {
		fmt.Fprintf(&listed, "- %s\n", f.Question)
	}

	system := `You are comparing questions for semantic diversity.

Output a diversity score from 0.0 to 1.0:
- 0.0: Questions are nearly identical or address the same angle
- 0.5: Questions are related but distinct angles
- 1.0: Questions are completely orthogonal

Output ONLY the number.`

	prompt := fmt.Sprintf("Candidate question:\n%q\n\nAlready selected questions:\n%s\nHow different is the candidate from the selected set?\n\nDiversity score (0.0-1.0):",
		candidate.Question, listed.String())

	return s.score(system, prompt)
}

func (s *Selector) selectScored(candidates []TensionFlag, maxBranches int, scoreFn func(TensionFlag) float64) []TensionFlag {
	type scored struct {
		flag  TensionFlag
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, f := range candidates {
		ranked[i] = scored{f, scoreFn(f)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]TensionFlag, maxBranches)
	for i := range out {
		out[i] = ranked[i].flag
	}
	return out
}

func (s *Selector) depthScore(f TensionFlag) float64 {
	system := `You are evaluating how deep a philosophical question is.

A deep question opens up multiple sub-questions, touches fundamental
assumptions, and could branch into many directions. A shallow question has
a straightforward answer and is narrow in scope.

Output ONLY a depth score from 0.0 to 1.0.`

	prompt := fmt.Sprintf("Question: %q\n\nRationale: %s\n\nHow likely is this question to spawn rich sub-debates?\n\nDepth score (0.0-1.0):",
		f.Question, f.Rationale)

	return s.score(system, prompt)
}

func (s *Selector) metaScore(f TensionFlag) float64 {
	system := `You are evaluating how meta a question is.

A meta question challenges the debate's assumptions or framing, or asks
about the debate process itself. A non-meta question works within the
debate's framework at the object level.

Output ONLY a meta-level score from 0.0 to 1.0.`

	prompt := fmt.Sprintf("Question: %q\n\nHow meta-level is this question?\n\nMeta score (0.0-1.0):", f.Question)

	return s.score(system, prompt)
}

func (s *Selector) score(system, prompt string) float64 {
	out, err := s.gen.Generate(system, prompt, 0.3, s.model)
	if err != nil {
		return neutralScore
	}
	score, ok := llm.ParseScore(out)
	if !ok {
		return neutralScore
	}
	return score
}

func without(flags []TensionFlag, id string) []TensionFlag {
	var out []TensionFlag
	for _, f := range flags {
		if f.ID != id {
			out = append(out, f)
		}
	}
	return out
}
