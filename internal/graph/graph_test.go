package graph

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

var testBase = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// quickNode builds a minimal node created i seconds after the test base time.
func quickNode(id string, kind NodeKind, i int) *ArgumentNode {
	return &ArgumentNode{
		ID:         id,
		Kind:       kind,
		Topic:      "Topic " + id,
		Resolution: "Resolution " + id,
		CreatedAt:  testBase.Add(time.Duration(i) * time.Second),
	}
}

func quickGraph(t *testing.T, nodes ...*ArgumentNode) *ArgumentGraph {
	t.Helper()
	g := New("test")
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%s): %v", n.ID, err)
		}
	}
	return g
}

func TestAddNode_Duplicate(t *testing.T) {
	g := quickGraph(t, quickNode("A", KindExploration, 0))
	err := g.AddNode(quickNode("A", KindSynthesis, 1))
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("expected ErrDuplicateNode, got %v", err)
	}
}

func TestAddEdge_UnknownEndpoint(t *testing.T) {
	g := quickGraph(t, quickNode("A", KindExploration, 0))

	err := g.AddEdge(Edge{From: "A", To: "missing", Kind: EdgeElaborates})
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("expected ErrUnknownEndpoint for target, got %v", err)
	}
	err = g.AddEdge(Edge{From: "missing", To: "A", Kind: EdgeElaborates})
	if !errors.Is(err, ErrUnknownEndpoint) {
		t.Errorf("expected ErrUnknownEndpoint for source, got %v", err)
	}
}

func TestAddEdge_DuplicateTripleDropped(t *testing.T) {
	g := quickGraph(t,
		quickNode("A", KindExploration, 0),
		quickNode("B", KindSynthesis, 1),
	)

	e := Edge{From: "A", To: "B", Kind: EdgeBranchesFrom, Confidence: 1.0}
	if err := g.AddEdge(e); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := g.AddEdge(e); err != nil {
		t.Fatalf("duplicate insert should be silent, got %v", err)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("expected 1 edge after duplicate insert, got %d", g.EdgeCount())
	}

	// Same endpoints, different kind is a distinct edge
	if err := g.AddEdge(Edge{From: "A", To: "B", Kind: EdgeElaborates, Confidence: 0.5}); err != nil {
		t.Fatalf("different kind: %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("expected 2 edges, got %d", g.EdgeCount())
	}
}

func TestChronological_Order(t *testing.T) {
	g := quickGraph(t,
		quickNode("C", KindExploration, 2),
		quickNode("A", KindExploration, 0),
		quickNode("B", KindExploration, 1),
	)
	nodes := g.Chronological()
	want := []string{"A", "B", "C"}
	for i, id := range want {
		if nodes[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, nodes[i].ID)
		}
	}
}

func TestQueries(t *testing.T) {
	a := quickNode("A", KindExploration, 0)
	a.Topic = "Zarathustra's departure at thirty"
	a.ThemeTags = []string{"departure", "transformation"}
	b := quickNode("B", KindSynthesis, 1)
	b.Topic = "The meaning of thirty years"
	b.ThemeTags = []string{"age", "threshold"}
	g := quickGraph(t, a, b)

	if got := g.FindByTopic("THIRTY"); len(got) != 2 {
		t.Errorf("case-insensitive topic query: expected 2, got %d", len(got))
	}
	if got := g.FindByTag("threshold"); len(got) != 1 || got[0].ID != "B" {
		t.Errorf("tag query: expected [B], got %v", got)
	}
	if got := g.FindByKind(KindSynthesis); len(got) != 1 || got[0].ID != "B" {
		t.Errorf("kind query: expected [B], got %v", got)
	}
}

func TestIncomingOutgoing(t *testing.T) {
	g := quickGraph(t,
		quickNode("A", KindExploration, 0),
		quickNode("B", KindSynthesis, 1),
		quickNode("C", KindImpasse, 2),
	)
	g.AddEdge(Edge{From: "A", To: "B", Kind: EdgeBranchesFrom, Confidence: 1.0})
	g.AddEdge(Edge{From: "C", To: "A", Kind: EdgeContradicts, Confidence: 0.6})

	if got := g.Incoming("A"); len(got) != 1 || got[0].From != "C" {
		t.Errorf("incoming A: expected edge from C, got %v", got)
	}
	if got := g.Outgoing("A"); len(got) != 1 || got[0].To != "B" {
		t.Errorf("outgoing A: expected edge to B, got %v", got)
	}
}

func TestRoundTrip(t *testing.T) {
	a := quickNode("A", KindExploration, 0)
	a.SourcePassage = "When Zarathustra was thirty years old..."
	a.ThemeTags = []string{"departure", "transformation"}
	a.KeyClaims = []string{"Literalist: biographical fact", "Symbolist: inner ascent"}
	a.Turns = []Turn{
		{Speaker: "The Literalist", Content: "A literal departure.", Round: 1},
		{Speaker: "The Symbolist", Content: "An ascent of consciousness.", Round: 1},
	}
	b := quickNode("B", KindSynthesis, 1)
	b.BranchQuestion = "What does thirty years signify?"

	g := quickGraph(t, a, b)
	g.AddEdge(Edge{From: "A", To: "B", Kind: EdgeBranchesFrom, Description: "Branch on age", Confidence: 1.0})

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := g.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if loaded.NodeCount() != 2 || loaded.EdgeCount() != 1 {
		t.Fatalf("expected 2 nodes 1 edge, got %d/%d", loaded.NodeCount(), loaded.EdgeCount())
	}
	la := loaded.Node("A")
	if la.Kind != KindExploration || la.SourcePassage != a.SourcePassage {
		t.Errorf("node A fields did not round-trip: %+v", la)
	}
	if len(la.Turns) != 2 || la.Turns[0].Speaker != "The Literalist" {
		t.Errorf("turns did not round-trip: %+v", la.Turns)
	}
	if len(la.ThemeTags) != 2 || la.ThemeTags[0] != "departure" {
		t.Errorf("tags did not round-trip: %v", la.ThemeTags)
	}
	if !la.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("timestamp did not round-trip: %v vs %v", la.CreatedAt, a.CreatedAt)
	}
	lb := loaded.Node("B")
	if lb.BranchQuestion != b.BranchQuestion {
		t.Errorf("branch question did not round-trip: %q", lb.BranchQuestion)
	}
	edge := loaded.Edges()[0]
	if edge.Kind != EdgeBranchesFrom || edge.Confidence != 1.0 {
		t.Errorf("edge did not round-trip: %+v", edge)
	}
	if loaded.Meta.Version != Version || loaded.Meta.SessionName != "test" {
		t.Errorf("metadata did not round-trip: %+v", loaded.Meta)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{` "Free-Will" `, "causation", "FREE-WILL", "", "'agency'"})
	want := []string{"agency", "causation", "free-will"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestSummary(t *testing.T) {
	g := quickGraph(t,
		quickNode("A", KindExploration, 0),
		quickNode("B", KindSynthesis, 1),
		quickNode("C", KindSynthesis, 2),
	)
	g.AddEdge(Edge{From: "A", To: "B", Kind: EdgeBranchesFrom, Confidence: 1.0})

	s := g.Summary()
	if s.Nodes != 3 || s.Edges != 1 {
		t.Errorf("counts: got %d/%d", s.Nodes, s.Edges)
	}
	if s.NodeKinds["synthesis"] != 2 || s.NodeKinds["exploration"] != 1 {
		t.Errorf("node kind counts wrong: %v", s.NodeKinds)
	}
	if s.EdgeKinds["branches_from"] != 1 {
		t.Errorf("edge kind counts wrong: %v", s.EdgeKinds)
	}
}

func TestComputeTopology(t *testing.T) {
	b := quickNode("B", KindSynthesis, 1)
	b.BranchQuestion = "why?"
	g := quickGraph(t,
		quickNode("A", KindExploration, 0),
		b,
		quickNode("C", KindExploration, 2),
	)
	g.AddEdge(Edge{From: "A", To: "B", Kind: EdgeBranchesFrom, Confidence: 1.0})

	topo := ComputeTopology(g, 4)
	if topo.Components != 2 {
		t.Errorf("expected 2 components, got %d", topo.Components)
	}
	if topo.LargestComponent != 2 {
		t.Errorf("expected largest=2, got %d", topo.LargestComponent)
	}
	if len(topo.Orphans) != 1 || topo.Orphans[0] != "C" {
		t.Errorf("expected orphan C, got %v", topo.Orphans)
	}
	if topo.RootNodes != 2 || topo.BranchNodes != 1 {
		t.Errorf("root/branch counts: %d/%d", topo.RootNodes, topo.BranchNodes)
	}
}
