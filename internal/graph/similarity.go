package graph

import (
	"sort"
	"strings"
	"unicode"
)

// ExtractWords splits text into lowercase alphanumeric words, keeping only
// words longer than 2 characters so articles and particles drop out.
func ExtractWords(text string) []string {
	var words []string
	var b strings.Builder
	flush := func() {
		if b.Len() > 2 {
			words = append(words, b.String())
		}
		b.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return words
}

// WordSet returns the set of extracted words from text.
func WordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range ExtractWords(text) {
		set[w] = true
	}
	return set
}

// Jaccard computes |a∩b| / |a∪b|. Returns 0.0 for empty sets.
func Jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	overlap := 0
	for w := range a {
		if b[w] {
			overlap++
		}
	}
	union := len(a) + len(b) - overlap
	if union == 0 {
		return 0.0
	}
	return float64(overlap) / float64(union)
}

// TopicSimilarity compares a node's topic+resolution text against candidate
// text. This is the single similarity utility shared by edge inference,
// repetition detection, and context ranking.
func TopicSimilarity(node *ArgumentNode, text string) float64 {
	return Jaccard(WordSet(node.Topic+" "+node.Resolution), WordSet(text))
}

// RankBySimilarity returns the topK nodes most similar to text, highest first.
func RankBySimilarity(nodes []*ArgumentNode, text string, topK int) []*ArgumentNode {
	type scored struct {
		node  *ArgumentNode
		score float64
	}
	results := make([]scored, 0, len(nodes))
	for _, n := range nodes {
		results = append(results, scored{n, TopicSimilarity(n, text)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	out := make([]*ArgumentNode, len(results))
	for i, r := range results {
		out[i] = r.node
	}
	return out
}
