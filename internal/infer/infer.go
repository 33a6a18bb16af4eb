// Package infer proposes typed edges between argument nodes from
// deterministic signal combination: lexical cue patterns, claim analysis,
// tag overlap, and node-type opposition. It never mutates the graph; the
// graph's insertion boundary owns deduplication.
package infer

import (
	"fmt"
	"regexp"
	"strings"

	"agora/dialectic/internal/graph"
)

// Config holds the signal weights and decision thresholds for edge
// inference.
type Config struct {
	// Contradiction: pattern*W1 + claims*W2 + typeOpposition*W3, edge when > threshold
	ContradictionThreshold     float64 `yaml:"contradiction_threshold"`
	ContradictionPatternWeight float64 `yaml:"contradiction_pattern_weight"`
	ContradictionClaimWeight   float64 `yaml:"contradiction_claim_weight"`
	ContradictionTypeWeight    float64 `yaml:"contradiction_type_weight"`

	// Elaboration: pattern*W1 + similarity*W2 + tags*W3 + type*W4, edge when > threshold
	ElaborationThreshold        float64 `yaml:"elaboration_threshold"`
	ElaborationPatternWeight    float64 `yaml:"elaboration_pattern_weight"`
	ElaborationSimilarityWeight float64 `yaml:"elaboration_similarity_weight"`
	ElaborationTagWeight        float64 `yaml:"elaboration_tag_weight"`
	ElaborationTypeWeight       float64 `yaml:"elaboration_type_weight"`

	// Similarity floors gating the contradiction type-opposition signal
	// and the elaboration similarity signal.
	ContradictionSimilarityFloor float64 `yaml:"contradiction_similarity_floor"`
	ElaborationSimilarityFloor   float64 `yaml:"elaboration_similarity_floor"`
}

// DefaultConfig returns the production thresholds and weights.
func DefaultConfig() Config {
	return Config{
		ContradictionThreshold:     0.5,
		ContradictionPatternWeight: 0.4,
		ContradictionClaimWeight:   0.4,
		ContradictionTypeWeight:    0.2,

		ElaborationThreshold:        0.4,
		ElaborationPatternWeight:    0.3,
		ElaborationSimilarityWeight: 0.4,
		ElaborationTagWeight:        0.2,
		ElaborationTypeWeight:       0.1,

		ContradictionSimilarityFloor: 0.3,
		ElaborationSimilarityFloor:   0.4,
	}
}

var contradictionPatterns = compile(
	`\bcontradict`,
	`\boppose`,
	`\bdisagree`,
	`\brefute`,
	`\bcounter`,
	`\bagainst\b`,
	`\bhowever\b`,
	`\bbut\b`,
	`\balthough\b`,
	`\bconversely\b`,
	`\bcontrary\b`,
)

var elaborationPatterns = compile(
	`\bbuild`,
	`\bextend`,
	`\bdevelop`,
	`\bexpand`,
	`\belaborate`,
	`\bfurther`,
	`\bmoreover`,
	`\badditionally`,
	`\badd to`,
	`\bcontinue`,
)

func compile(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Inferencer detects semantic relationships between nodes.
type Inferencer struct {
	cfg Config
}

// New returns an inferencer with the given config.
func New(cfg Config) *Inferencer {
	return &Inferencer{cfg: cfg}
}

// BranchEdges rebuilds all BranchesFrom edges by folding over the nodes in
// chronological order: each node without a branch question becomes the
// current root, and every branch node attaches to the root seen most
// recently before it. The root pointer depends on the full chronological
// order, so this is always a whole-graph rebuild.
func (inf *Inferencer) BranchEdges(g *graph.ArgumentGraph) []graph.Edge {
	var edges []graph.Edge
	var root *graph.ArgumentNode

	for _, node := range g.Chronological() {
		if node.IsBranch() {
			if root != nil {
				edges = append(edges, graph.Edge{
					From:        root.ID,
					To:          node.ID,
					Kind:        graph.EdgeBranchesFrom,
					Description: fmt.Sprintf("Branch debate on: %s", clip(node.BranchQuestion, 100)),
					Confidence:  1.0,
				})
			}
		} else {
			root = node
		}
	}
	return edges
}

// InferForNode proposes Contradicts and Elaborates edges between one node
// and the rest of the graph. This is the incremental hot path used after
// every node insertion.
func (inf *Inferencer) InferForNode(g *graph.ArgumentGraph, node *graph.ArgumentNode) []graph.Edge {
	var edges []graph.Edge
	for _, existing := range g.Chronological() {
		if existing.ID == node.ID {
			continue
		}
		if e, ok := inf.checkContradiction(node, existing); ok {
			edges = append(edges, e)
		}
		if node.CreatedAt.After(existing.CreatedAt) {
			if e, ok := inf.checkElaboration(existing, node); ok {
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// InferAll rebuilds every edge kind over the whole graph. O(n²) on
// contradictions; used for bulk rebuilds, not per-insertion.
func (inf *Inferencer) InferAll(g *graph.ArgumentGraph) []graph.Edge {
	edges := inf.BranchEdges(g)

	nodes := g.Chronological()
	for i, a := range nodes {
		for _, b := range nodes[i+1:] {
			if e, ok := inf.checkContradiction(a, b); ok {
				edges = append(edges, e)
			}
		}
	}
	// Elaborations usually follow what they elaborate; check adjacent pairs
	for i := 0; i+1 < len(nodes); i++ {
		if e, ok := inf.checkElaboration(nodes[i], nodes[i+1]); ok {
			edges = append(edges, e)
		}
	}
	return edges
}

// checkContradiction combines three signals: contradiction cues in the
// concatenated resolutions, pairwise claim contradiction, and type
// opposition (synthesis vs impasse) on a similar topic. The edge runs from
// the chronologically later node to the earlier one.
func (inf *Inferencer) checkContradiction(a, b *graph.ArgumentNode) (graph.Edge, bool) {
	score := inf.contradictionScore(a, b)
	if score <= inf.cfg.ContradictionThreshold {
		return graph.Edge{}, false
	}

	from, to := a, b
	if b.CreatedAt.After(a.CreatedAt) {
		from, to = b, a
	}
	if score > 1.0 {
		score = 1.0
	}
	return graph.Edge{
		From:        from.ID,
		To:          to.ID,
		Kind:        graph.EdgeContradicts,
		Description: fmt.Sprintf("'%s' contradicts '%s'", clip(from.Topic, 50), clip(to.Topic, 50)),
		Confidence:  score,
	}, true
}

func (inf *Inferencer) contradictionScore(a, b *graph.ArgumentNode) float64 {
	pattern := patternScore(a.Resolution+" "+b.Resolution, contradictionPatterns)
	claims := claimContradictionScore(a.KeyClaims, b.KeyClaims)

	typeScore := 0.0
	opposed := (a.Kind == graph.KindSynthesis && b.Kind == graph.KindImpasse) ||
		(a.Kind == graph.KindImpasse && b.Kind == graph.KindSynthesis)
	if opposed && graph.TopicSimilarity(a, b.Topic) > inf.cfg.ContradictionSimilarityFloor {
		typeScore = 1.0
	}

	return pattern*inf.cfg.ContradictionPatternWeight +
		claims*inf.cfg.ContradictionClaimWeight +
		typeScore*inf.cfg.ContradictionTypeWeight
}

// checkElaboration combines elaboration cues in the later resolution, topic
// similarity, shared tags, and a bonus when the later node is a
// clarification or lemma. The edge runs from the elaborating node to the
// elaborated one.
func (inf *Inferencer) checkElaboration(earlier, later *graph.ArgumentNode) (graph.Edge, bool) {
	score := inf.elaborationScore(earlier, later)
	if score <= inf.cfg.ElaborationThreshold {
		return graph.Edge{}, false
	}
	if score > 1.0 {
		score = 1.0
	}
	return graph.Edge{
		From:        later.ID,
		To:          earlier.ID,
		Kind:        graph.EdgeElaborates,
		Description: fmt.Sprintf("'%s' elaborates on '%s'", clip(later.Topic, 50), clip(earlier.Topic, 50)),
		Confidence:  score,
	}, true
}

func (inf *Inferencer) elaborationScore(earlier, later *graph.ArgumentNode) float64 {
	pattern := patternScore(later.Resolution, elaborationPatterns)

	similarity := graph.TopicSimilarity(earlier, later.Topic)
	if similarity <= inf.cfg.ElaborationSimilarityFloor {
		similarity = 0.0
	}

	tagScore := float64(len(earlier.SharedTags(later))) / 3.0
	if tagScore > 1.0 {
		tagScore = 1.0
	}

	typeScore := 0.0
	if later.Kind == graph.KindClarification || later.Kind == graph.KindLemma {
		typeScore = 0.5
	}

	return pattern*inf.cfg.ElaborationPatternWeight +
		similarity*inf.cfg.ElaborationSimilarityWeight +
		tagScore*inf.cfg.ElaborationTagWeight +
		typeScore*inf.cfg.ElaborationTypeWeight
}

// patternScore counts how many distinct patterns match, normalized so that
// 3 matches saturate at 1.0.
func patternScore(text string, patterns []*regexp.Regexp) float64 {
	lower := strings.ToLower(text)
	matches := 0
	for _, p := range patterns {
		if p.MatchString(lower) {
			matches++
		}
	}
	score := float64(matches) / 3.0
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// claimContradictionScore averages, over all claim pairs, a heuristic that
// counts a pair as contradictory when exactly one side carries a negation
// cue and their word overlap exceeds 0.3.
func claimContradictionScore(claims1, claims2 []string) float64 {
	if len(claims1) == 0 || len(claims2) == 0 {
		return 0.0
	}

	contradictions := 0
	total := 0
	for _, c1 := range claims1 {
		for _, c2 := range claims2 {
			total++
			if claimsContradict(c1, c2) {
				contradictions++
			}
		}
	}
	return float64(contradictions) / float64(total)
}

func claimsContradict(c1, c2 string) bool {
	l1 := strings.ToLower(c1)
	l2 := strings.ToLower(c2)

	// Contradiction cue: exactly one side negates
	hasNegation := false
	for _, cue := range []string{"not", "no "} {
		if strings.Contains(l1, cue) != strings.Contains(l2, cue) {
			hasNegation = true
			break
		}
	}
	if !hasNegation {
		return false
	}

	return graph.Jaccard(graph.WordSet(c1), graph.WordSet(c2)) > 0.3
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
