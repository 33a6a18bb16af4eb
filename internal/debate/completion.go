// Package debate runs the turn-level machinery around a live exchange:
// deciding when it has run its course, distilling the transcript into an
// argument node, watching turns for tensions worth branching on, and
// picking which tensions to actually pursue.
package debate

import (
	"strings"

	"agora/dialectic/internal/graph"
)

// Marker phrases are checked against lowercased transcript windows.
// Impasse markers are checked before synthesis markers: a turn that names
// an unresolved disagreement should not count as agreement just because it
// also uses the word "synthesis".
var impasseMarkers = []string{
	"fundamental disagreement",
	"irreconcilable",
	"cannot be resolved",
	"remains in tension",
	"unresolved",
	"incompatible",
}

var synthesisMarkers = []string{
	"we agree",
	"consensus emerges",
	"resolved",
	"synthesis",
	"converge on",
	"common ground",
}

var answerIndicators = []string{
	"the answer",
	"resolves to",
	"we find that",
	"synthesis",
	"what emerged",
	"resolution",
}

const (
	// defaultMaxTurns bounds a debate that never triggers a marker.
	defaultMaxTurns = 10

	// repetitionMinTurns is the windowing floor for the repetition check:
	// below it there is no previous window to compare against.
	repetitionMinTurns = 6

	// repetitionThreshold is the word-overlap ratio above which the last
	// three turns are considered a restatement of the three before them.
	repetitionThreshold = 0.75
)

// Detector decides whether a running debate has reached a natural end and
// how the resulting node should be classified.
type Detector struct {
	MaxTurns int
}

// NewDetector returns a detector with the given turn budget; zero or
// negative means the default budget.
func NewDetector(maxTurns int) *Detector {
	if maxTurns <= 0 {
		maxTurns = defaultMaxTurns
	}
	return &Detector{MaxTurns: maxTurns}
}

// Check inspects the transcript and reports whether the debate is complete
// and what kind of node it should produce. branchQuestion is empty for main
// debates; branch debates additionally end when the question looks answered.
// When the debate is not complete the returned kind is KindExploration.
func (d *Detector) Check(transcript []graph.Turn, branchQuestion string) (bool, graph.NodeKind) {
	if len(transcript) == 0 {
		return false, graph.KindExploration
	}

	recent := windowText(transcript, 2)
	if containsAny(recent, impasseMarkers) {
		return true, graph.KindImpasse
	}
	if containsAny(recent, synthesisMarkers) {
		return true, graph.KindSynthesis
	}

	if branchQuestion != "" && len(transcript) >= 3 {
		if containsAny(windowText(transcript, 3), answerIndicators) {
			return true, graph.KindSynthesis
		}
	}

	if len(transcript) >= repetitionMinTurns && d.repetitive(transcript) {
		return true, graph.KindImpasse
	}

	if len(transcript) >= d.MaxTurns {
		return true, graph.KindExploration
	}

	return false, graph.KindExploration
}

// repetitive compares the word sets of the last three turns against the
// three before them. Heavy overlap means the agents are circling.
func (d *Detector) repetitive(transcript []graph.Turn) bool {
	n := len(transcript)
	last := splitWordSet(joinTurns(transcript[n-3:]))
	prev := splitWordSet(joinTurns(transcript[n-6 : n-3]))
	return graph.Jaccard(last, prev) > repetitionThreshold
}

func windowText(transcript []graph.Turn, size int) string {
	if len(transcript) > size {
		transcript = transcript[len(transcript)-size:]
	}
	return strings.ToLower(joinTurns(transcript))
}

func joinTurns(turns []graph.Turn) string {
	parts := make([]string, len(turns))
	for i, t := range turns {
		parts[i] = t.Content
	}
	return strings.Join(parts, " ")
}

// splitWordSet uses raw whitespace splitting rather than graph.ExtractWords:
// the repetition check cares about verbatim restatement, punctuation and
// short words included.
func splitWordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}
