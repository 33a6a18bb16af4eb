package cmd

import (
	"fmt"
	"testing"
	"time"

	"agora/dialectic/internal/db"
	"agora/dialectic/internal/graph"
)

func statsGraph(t *testing.T) *graph.ArgumentGraph {
	t.Helper()
	g := graph.New("stats-test")

	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		node := &graph.ArgumentNode{
			ID:        fmt.Sprintf("node-%d", i),
			Kind:      graph.KindExploration,
			Topic:     fmt.Sprintf("Topic %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if i == 1 {
			node.Kind = graph.KindSynthesis
			node.BranchQuestion = "A branch question?"
		}
		if err := g.AddNode(node); err != nil {
			t.Fatalf("AddNode: %v", err)
		}
	}

	// node-0 <- node-1 branch, node-2 elaborates node-0; node-3 is an orphan
	edges := []graph.Edge{
		{From: "node-0", To: "node-1", Kind: graph.EdgeBranchesFrom, Confidence: 1.0},
		{From: "node-2", To: "node-0", Kind: graph.EdgeElaborates, Confidence: 0.5},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge: %v", err)
		}
	}
	return g
}

func TestBuildSessionStats(t *testing.T) {
	g := statsGraph(t)
	stubs := []*db.Stub{
		{ID: "stub-1", Status: db.StatusStub},
		{ID: "stub-2", Status: db.StatusStub},
		{ID: "stub-3", Status: db.StatusExplored},
		{ID: "stub-4", Status: db.StatusSuperseded},
	}

	report := buildSessionStats("stats-test", g, stubs, 1)

	if report.Session != "stats-test" {
		t.Errorf("session = %q", report.Session)
	}
	if report.Graph.Nodes != 4 || report.Graph.Edges != 2 {
		t.Errorf("graph counts = %d nodes, %d edges", report.Graph.Nodes, report.Graph.Edges)
	}
	if report.Graph.NodeKinds["exploration"] != 3 || report.Graph.NodeKinds["synthesis"] != 1 {
		t.Errorf("node kinds = %v", report.Graph.NodeKinds)
	}

	if report.Topology.Components != 2 {
		t.Errorf("components = %d, want 2", report.Topology.Components)
	}
	if report.Topology.LargestComponent != 3 {
		t.Errorf("largest component = %d, want 3", report.Topology.LargestComponent)
	}
	if len(report.Topology.Orphans) != 1 || report.Topology.Orphans[0] != "node-3" {
		t.Errorf("orphans = %v", report.Topology.Orphans)
	}
	if report.Topology.RootNodes != 3 || report.Topology.BranchNodes != 1 {
		t.Errorf("root/branch = %d/%d", report.Topology.RootNodes, report.Topology.BranchNodes)
	}
	// node-0 has degree 2, above the threshold of 1
	if len(report.Topology.Hubs) != 1 || report.Topology.Hubs[0].ID != "node-0" {
		t.Errorf("hubs = %v", report.Topology.Hubs)
	}

	if report.Stubs.Pending != 2 || report.Stubs.Explored != 1 || report.Stubs.Superseded != 1 {
		t.Errorf("stub counts = %+v", report.Stubs)
	}
}
