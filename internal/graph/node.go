package graph

import (
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// NodeKind classifies how a debate ended.
type NodeKind string

const (
	KindSynthesis     NodeKind = "synthesis"     // agents reached agreement
	KindImpasse       NodeKind = "impasse"       // fundamental disagreement
	KindLemma         NodeKind = "lemma"         // established sub-point
	KindQuestion      NodeKind = "question"      // posed question awaiting answer
	KindExploration   NodeKind = "exploration"   // investigated without resolution
	KindClarification NodeKind = "clarification" // refined a specific point
)

func (k NodeKind) String() string { return string(k) }

// Kinds lists all node kinds in a stable order.
func Kinds() []NodeKind {
	return []NodeKind{
		KindClarification, KindExploration, KindImpasse,
		KindLemma, KindQuestion, KindSynthesis,
	}
}

// Turn is a single contribution in a debate transcript.
type Turn struct {
	Speaker string `json:"speaker"`
	Content string `json:"content"`
	Round   int    `json:"round"`
}

// ArgumentNode is a persisted, immutable summary of one completed debate
// segment. Root nodes carry SourcePassage; branch nodes carry BranchQuestion.
type ArgumentNode struct {
	ID             string    `json:"id"`
	Kind           NodeKind  `json:"kind"`
	Topic          string    `json:"topic"`
	Resolution     string    `json:"resolution"`
	SourcePassage  string    `json:"source_passage,omitempty"`
	BranchQuestion string    `json:"branch_question,omitempty"`
	ThemeTags      []string  `json:"theme_tags"`
	KeyClaims      []string  `json:"key_claims"`
	Turns          []Turn    `json:"turns"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsBranch reports whether this node came from a branch debate.
func (n *ArgumentNode) IsBranch() bool { return n.BranchQuestion != "" }

// HasTag reports whether the node carries the given theme tag.
func (n *ArgumentNode) HasTag(tag string) bool {
	for _, t := range n.ThemeTags {
		if t == tag {
			return true
		}
	}
	return false
}

// SharedTags returns the tags present on both nodes.
func (n *ArgumentNode) SharedTags(other *ArgumentNode) []string {
	var shared []string
	for _, t := range n.ThemeTags {
		if other.HasTag(t) {
			shared = append(shared, t)
		}
	}
	return shared
}

// NormalizeTags lowercases, dedupes, strips quotes, and sorts tags so that
// serialized form is deterministic.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		t = strings.Trim(t, `"'`)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var idEntropy = rand.New(rand.NewSource(time.Now().UnixNano()))

// NewID returns a fresh sortable identifier for nodes, flags, and stubs.
func NewID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), idEntropy).String()
}
