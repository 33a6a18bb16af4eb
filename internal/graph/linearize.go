package graph

import (
	"fmt"
	"strings"
)

// Order returns node ids in a topological order using Kahn's algorithm.
// The initial zero-in-degree frontier is seeded chronologically and newly
// freed nodes are appended in arrival order, so the result is deterministic
// for a fixed graph. If the edge set contains a cycle, Order falls back to
// pure chronological order and reports cyclic=true; narrative export must
// degrade, not fail.
func Order(g *ArgumentGraph) (ids []string, cyclic bool) {
	chrono := g.Chronological()

	inDegree := make(map[string]int, len(chrono))
	adj := make(map[string][]string, len(chrono))
	for _, n := range chrono {
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges() {
		adj[e.From] = append(adj[e.From], e.To)
		inDegree[e.To]++
	}

	var frontier []string
	for _, n := range chrono {
		if inDegree[n.ID] == 0 {
			frontier = append(frontier, n.ID)
		}
	}

	result := make([]string, 0, len(chrono))
	for len(frontier) > 0 {
		id := frontier[0]
		frontier = frontier[1:]
		result = append(result, id)

		for _, next := range adj[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				frontier = append(frontier, next)
			}
		}
	}

	if len(result) != len(chrono) {
		// Cycle: contradicts/elaborates edges can in principle close a loop
		ids = make([]string, len(chrono))
		for i, n := range chrono {
			ids[i] = n.ID
		}
		return ids, true
	}
	return result, false
}

// Render produces the full markdown narrative for a graph: header, table of
// contents, then one section per node in linear order.
func Render(g *ArgumentGraph) string {
	order, cyclic := Order(g)

	var b strings.Builder

	name := g.Meta.SessionName
	if name == "" {
		name = "Unknown"
	}
	fmt.Fprintf(&b, "# Debate Session: %s\n\n", name)
	fmt.Fprintf(&b, "**Generated:** %s\n", g.Meta.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Nodes:** %d\n", g.NodeCount())
	fmt.Fprintf(&b, "**Edges:** %d\n\n", g.EdgeCount())

	if cyclic {
		b.WriteString("> **Warning:** edge cycle detected; nodes are in chronological order.\n\n")
	}

	b.WriteString("## Table of Contents\n\n")
	for i, id := range order {
		node := g.Node(id)
		fmt.Fprintf(&b, "%d. [%s](#node-%d)\n", i+1, truncate(node.Topic, 80), i+1)
	}
	b.WriteString("\n---\n\n")

	for i, id := range order {
		renderNode(&b, g, g.Node(id), i+1)
		b.WriteString("\n")
	}

	return b.String()
}

func renderNode(b *strings.Builder, g *ArgumentGraph, node *ArgumentNode, number int) {
	fmt.Fprintf(b, "## %d. %s {#node-%d}\n\n", number, node.Topic, number)
	fmt.Fprintf(b, "**Type:** %s\n", node.Kind)

	if len(node.ThemeTags) > 0 {
		var tags []string
		for _, t := range node.ThemeTags {
			tags = append(tags, "#"+t)
		}
		fmt.Fprintf(b, "**Tags:** %s\n", strings.Join(tags, " "))
	}

	incoming := g.Incoming(node.ID)
	outgoing := g.Outgoing(node.ID)
	if len(incoming) > 0 || len(outgoing) > 0 {
		var parts []string
		for _, e := range incoming {
			from := g.Node(e.From)
			parts = append(parts, fmt.Sprintf("← %s from '%s'", e.Kind, truncate(from.Topic, 40)))
		}
		for _, e := range outgoing {
			to := g.Node(e.To)
			parts = append(parts, fmt.Sprintf("→ %s to '%s'", e.Kind, truncate(to.Topic, 40)))
		}
		fmt.Fprintf(b, "**Edges:** %s\n", strings.Join(parts, ", "))
	}

	b.WriteString("\n**Summary:**\n\n")
	b.WriteString(node.Resolution)
	b.WriteString("\n\n")

	if len(node.KeyClaims) > 0 {
		b.WriteString("**Key Claims:**\n")
		for _, claim := range node.KeyClaims {
			fmt.Fprintf(b, "- %s\n", claim)
		}
		b.WriteString("\n")
	}

	if node.SourcePassage != "" {
		b.WriteString("<details>\n<summary>Original Passage</summary>\n\n")
		b.WriteString(node.SourcePassage)
		b.WriteString("\n\n</details>\n\n")
	}

	if node.BranchQuestion != "" {
		fmt.Fprintf(b, "**Branch Question:** %s\n\n", node.BranchQuestion)
	}

	if len(node.Turns) > 0 {
		fmt.Fprintf(b, "<details>\n<summary>Full Transcript (%d turns)</summary>\n\n", len(node.Turns))
		for _, turn := range node.Turns {
			fmt.Fprintf(b, "**%s** (Round %d):\n%s\n\n", turn.Speaker, turn.Round, turn.Content)
		}
		b.WriteString("</details>\n")
	}

	b.WriteString("---\n")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
