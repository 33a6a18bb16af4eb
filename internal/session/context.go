package session

import (
	"fmt"
	"strings"

	"agora/dialectic/internal/graph"
)

// contextCharLimit caps how much prior-node context is injected into an
// agent's system prompt.
const contextCharLimit = 8000

const truncationMarker = "\n\n[...context truncated...]"

// FormatContext renders prior nodes for injection into agent prompts. The
// full backlog goes in; the character cap, not node count, is the limit.
func FormatContext(nodes []*graph.ArgumentNode) string {
	if len(nodes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("PREVIOUS RELEVANT DISCUSSIONS:\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	for i, node := range nodes {
		b.WriteString(formatContextNode(node, i+1))
		b.WriteString("\n\n")
	}

	text := strings.TrimRight(b.String(), "\n")
	if len(text) > contextCharLimit {
		text = text[:contextCharLimit] + truncationMarker
	}
	return text
}

func formatContextNode(node *graph.ArgumentNode, number int) string {
	lines := []string{
		fmt.Sprintf("%d. [%s] %s", number, strings.ToUpper(node.Kind.String()), node.Topic),
		"   Resolution: " + node.Resolution,
	}
	if len(node.KeyClaims) > 0 {
		claims := node.KeyClaims
		if len(claims) > 3 {
			claims = claims[:3]
		}
		lines = append(lines, "   Key claims:")
		for _, c := range claims {
			lines = append(lines, "   - "+c)
		}
	}
	if len(node.ThemeTags) > 0 {
		tags := node.ThemeTags
		if len(tags) > 5 {
			tags = tags[:5]
		}
		lines = append(lines, "   Tags: "+strings.Join(tags, ", "))
	}
	return strings.Join(lines, "\n")
}

// FormatBranchContext renders context for a branch debate with the parent
// node first and at most three other relevant nodes after it.
func FormatBranchContext(parent *graph.ArgumentNode, others []*graph.ArgumentNode) string {
	var b strings.Builder
	b.WriteString("CONTEXT FROM MAIN DEBATE:\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	fmt.Fprintf(&b, "Main Topic: %s\nResolution: %s\n\n", parent.Topic, parent.Resolution)

	if len(parent.KeyClaims) > 0 {
		b.WriteString("Key Claims:\n")
		claims := parent.KeyClaims
		if len(claims) > 5 {
			claims = claims[:5]
		}
		for _, c := range claims {
			b.WriteString("  - " + c + "\n")
		}
		b.WriteString("\n")
	}

	var shown int
	for _, node := range others {
		if node.ID == parent.ID {
			continue
		}
		if shown == 0 {
			b.WriteString("OTHER RELEVANT DISCUSSIONS:\n")
			b.WriteString(strings.Repeat("-", 50) + "\n\n")
		}
		fmt.Fprintf(&b, "- %s\n  %s\n\n", node.Topic, node.Resolution)
		shown++
		if shown == 3 {
			break
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

// ContextSummary describes the retrieved context for the log.
func ContextSummary(nodes []*graph.ArgumentNode) string {
	if len(nodes) == 0 {
		return "No prior context available"
	}

	kindCounts := make(map[graph.NodeKind]int)
	tagSet := make(map[string]bool)
	for _, n := range nodes {
		kindCounts[n.Kind]++
		for _, t := range n.ThemeTags {
			tagSet[t] = true
		}
	}

	var kinds []string
	for _, k := range graph.Kinds() {
		if kindCounts[k] > 0 {
			kinds = append(kinds, fmt.Sprintf("%d %s", kindCounts[k], k))
		}
	}

	summary := fmt.Sprintf("Context: %d nodes (%s).", len(nodes), strings.Join(kinds, ", "))
	if len(tagSet) > 0 {
		tags := graph.NormalizeTags(keys(tagSet))
		if len(tags) > 10 {
			tags = tags[:10]
		}
		summary += " Tags: " + strings.Join(tags, ", ")
	}
	return summary
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
