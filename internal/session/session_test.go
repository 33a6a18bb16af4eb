package session

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"agora/dialectic/internal/agents"
	"agora/dialectic/internal/config"
	"agora/dialectic/internal/db"
	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

// scriptedGen routes by prompt shape so one fake serves debate turns,
// synthesis calls, turn summaries, and stub evaluation.
func scriptedGen(turnResponse string) llm.GeneratorFunc {
	return func(system, user string, temp float64, model string) (string, error) {
		switch {
		case strings.Contains(system, "central topic"):
			return "The serpent as symbol", nil
		case strings.Contains(system, "debate outcomes"):
			return "The participants traced the symbol to development.", nil
		case strings.Contains(system, "theme tags"):
			return "serpent, development, symbolism", nil
		case strings.Contains(system, "key claims"):
			return "The symbol is structural.\nThe image recurs.", nil
		case strings.Contains(system, "single-sentence summary"):
			return "One concise move.", nil
		case strings.Contains(system, "unexplored question (stub)"):
			return `{"relevance_score": 0.9, "should_explore": true, "reason": "now central"}`, nil
		case strings.Contains(user, "Provide your opening analysis."),
			strings.Contains(user, "Provide your perspective."),
			strings.Contains(user, "Your response:"):
			return turnResponse, nil
		}
		return "", fmt.Errorf("unexpected prompt: %.60s", user)
	}
}

func testSession(t *testing.T, gen llm.Generator) (*Session, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Debate.Rounds = 2
	cfg.Branch.Rounds = 2

	store, err := db.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	s, err := New(cfg, gen, store, "test_session", "A child held up a mirror.")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, cfg
}

func TestProcessPassage(t *testing.T) {
	s, cfg := testSession(t, scriptedGen("The serpent marks a developmental stage."))
	ag := agents.DefaultAgents()

	node, err := s.ProcessPassage(s.Passage(), ag, nil)
	if err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}

	if node.Kind != graph.KindExploration {
		t.Errorf("main debate kind = %s, want exploration", node.Kind)
	}
	if want := cfg.Debate.Rounds * len(ag); len(node.Turns) != want {
		t.Fatalf("transcript has %d turns, want %d", len(node.Turns), want)
	}
	// agents speak in order within each round
	for i, turn := range node.Turns {
		if turn.Speaker != ag[i%len(ag)].Name {
			t.Errorf("turn %d speaker = %s, want %s", i, turn.Speaker, ag[i%len(ag)].Name)
		}
		if turn.Round != i/len(ag)+1 {
			t.Errorf("turn %d round = %d", i, turn.Round)
		}
	}
	if node.Topic != "The serpent as symbol" {
		t.Errorf("topic = %q", node.Topic)
	}
	if s.CurrentMain() != node {
		t.Error("current main not updated")
	}

	if s.Graph.NodeCount() != 1 {
		t.Errorf("graph has %d nodes", s.Graph.NodeCount())
	}
	if _, err := os.Stat(s.GraphPath); err != nil {
		t.Errorf("checkpoint not written: %v", err)
	}
}

func TestProcessBranch_EarlyStopAndEdge(t *testing.T) {
	s, _ := testSession(t, scriptedGen("On reflection, we agree the symbol is developmental."))
	ag := agents.DefaultAgents()

	parent, err := s.ProcessPassage(s.Passage(), ag, nil)
	if err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}

	branch, err := s.ProcessBranch("Is the serpent developmental?", parent.ID, ag)
	if err != nil {
		t.Fatalf("ProcessBranch: %v", err)
	}

	// agreement markers end the branch after one round
	if len(branch.Turns) != len(ag) {
		t.Errorf("branch ran %d turns, want early stop at %d", len(branch.Turns), len(ag))
	}
	if branch.Kind != graph.KindSynthesis {
		t.Errorf("branch kind = %s, want synthesis", branch.Kind)
	}
	if branch.BranchQuestion != "Is the serpent developmental?" {
		t.Errorf("branch question = %q", branch.BranchQuestion)
	}

	var found bool
	for _, e := range s.Graph.Edges() {
		if e.Kind == graph.EdgeBranchesFrom && e.From == parent.ID && e.To == branch.ID {
			found = true
			if math.Abs(e.Confidence-1.0) > 1e-9 {
				t.Errorf("branch edge confidence = %v, want 1.0", e.Confidence)
			}
		}
	}
	if !found {
		t.Error("no branches_from edge from parent to branch")
	}
}

func TestProcessPassage_TurnCap(t *testing.T) {
	s, cfg := testSession(t, scriptedGen("A capped contribution."))
	cfg.Debate.Rounds = 4
	cfg.Debate.MaxTurns = 4

	node, err := s.ProcessPassage(s.Passage(), agents.DefaultAgents(), nil)
	if err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}
	if len(node.Turns) != 4 {
		t.Errorf("transcript has %d turns, want cap of 4", len(node.Turns))
	}
}

func TestProcessBranch_MissingParent(t *testing.T) {
	s, _ := testSession(t, scriptedGen("content"))
	if _, err := s.ProcessBranch("Q?", "no-such-node", agents.DefaultAgents()); err == nil {
		t.Fatal("expected error for missing parent node")
	}
}

func TestExploreTensions(t *testing.T) {
	s, cfg := testSession(t, scriptedGen("A distinct developmental point."))
	cfg.Branch.MaxBranches = 1
	cfg.Branch.Strategy = debate.StrategyUrgent
	ag := agents.DefaultAgents()

	parent, err := s.ProcessPassage(s.Passage(), ag, nil)
	if err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}

	flags := []debate.TensionFlag{
		{ID: "flag-low", Question: "Low urgency?", ObserverName: "obs", Urgency: 0.3},
		{ID: "flag-a", Question: "First urgent?", ObserverName: "obs", Urgency: 0.7},
		{ID: "flag-b", Question: "Most urgent?", ObserverName: "obs", Urgency: 0.9},
	}

	nodes, err := s.ExploreTensions(flags, parent.ID, ag)
	if err != nil {
		t.Fatalf("ExploreTensions: %v", err)
	}

	if len(nodes) != 1 {
		t.Fatalf("explored %d branches, want 1", len(nodes))
	}
	if nodes[0].BranchQuestion != "Most urgent?" {
		t.Errorf("selected question = %q, want the most urgent", nodes[0].BranchQuestion)
	}

	// below-threshold and deferred flags both become stubs
	pending, err := s.Stubs.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("%d pending stubs, want 2", len(pending))
	}
	questions := map[string]bool{}
	for _, st := range pending {
		questions[st.Question] = true
	}
	if !questions["Low urgency?"] || !questions["First urgent?"] {
		t.Errorf("unexpected stub questions: %v", questions)
	}
}

func TestRevisitStubs(t *testing.T) {
	s, _ := testSession(t, scriptedGen("We agree this resolves cleanly."))
	ag := agents.DefaultAgents()

	parent, err := s.ProcessPassage(s.Passage(), ag, nil)
	if err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}

	flag := debate.TensionFlag{ID: "flag-1", Question: "What about the mirror?", ObserverName: "obs", Urgency: 0.6}
	if _, err := s.Stubs.FromFlag(flag, parent.ID); err != nil {
		t.Fatalf("FromFlag: %v", err)
	}

	explored, err := s.RevisitStubs(ag)
	if err != nil {
		t.Fatalf("RevisitStubs: %v", err)
	}
	if len(explored) != 1 {
		t.Fatalf("explored %d stubs, want 1", len(explored))
	}
	if explored[0].BranchQuestion != "What about the mirror?" {
		t.Errorf("explored question = %q", explored[0].BranchQuestion)
	}

	pending, err := s.Stubs.Pending()
	if err != nil {
		t.Fatalf("Pending: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("%d stubs still pending after exploration", len(pending))
	}
}

func TestResume(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	cfg.Debate.Rounds = 1

	store, err := db.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer store.Close()

	gen := scriptedGen("An opening analysis.")
	s, err := New(cfg, gen, store, "resumable", "A passage.")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	node, err := s.ProcessPassage(s.Passage(), agents.DefaultAgents(), nil)
	if err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}
	s.Close()

	resumed, err := Resume(cfg, gen, store, "resumable")
	if err != nil {
		t.Fatalf("Resume: %v", err)
	}
	defer resumed.Close()

	if resumed.Passage() != "A passage." {
		t.Errorf("passage = %q", resumed.Passage())
	}
	if resumed.Graph.NodeCount() != 1 {
		t.Errorf("resumed graph has %d nodes", resumed.Graph.NodeCount())
	}
	if resumed.CurrentMain() == nil || resumed.CurrentMain().ID != node.ID {
		t.Error("current main not restored from checkpoint")
	}
}

func TestResume_UnknownSession(t *testing.T) {
	cfg := config.Default()
	cfg.OutputDir = t.TempDir()
	store, err := db.OpenDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	defer store.Close()

	if _, err := Resume(cfg, scriptedGen(""), store, "missing"); err == nil {
		t.Fatal("expected error resuming unknown session")
	}
}

func TestExportNarrative(t *testing.T) {
	s, _ := testSession(t, scriptedGen("An analysis free of markers."))
	if _, err := s.ProcessPassage(s.Passage(), agents.DefaultAgents(), nil); err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}

	path := filepath.Join(s.Dir, "narrative.md")
	if err := s.ExportNarrative(path); err != nil {
		t.Fatalf("ExportNarrative: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading narrative: %v", err)
	}
	if !strings.Contains(string(data), "The serpent as symbol") {
		t.Errorf("narrative missing node topic:\n%s", data)
	}
}

func TestMonitorSeesEveryTurn(t *testing.T) {
	s, cfg := testSession(t, scriptedGen("A marker-free contribution."))
	obs := &recordingObserver{}
	monitor := debate.NewMonitor([]debate.Observer{obs})

	ag := agents.DefaultAgents()
	if _, err := s.ProcessPassage(s.Passage(), ag, monitor); err != nil {
		t.Fatalf("ProcessPassage: %v", err)
	}
	if want := cfg.Debate.Rounds * len(ag); obs.turns != want {
		t.Errorf("observer saw %d turns, want %d", obs.turns, want)
	}
}

type recordingObserver struct {
	turns int
}

func (r *recordingObserver) Name() string { return "recorder" }

func (r *recordingObserver) CheckForTension(turn graph.Turn, transcript []graph.Turn) *debate.TensionCandidate {
	r.turns++
	return nil
}

func (r *recordingObserver) RateUrgency(c *debate.TensionCandidate, transcript []graph.Turn) float64 {
	return 0
}

func TestClip_Multibyte(t *testing.T) {
	if got := clip("αβγδε", 3); got != "αβγ..." {
		t.Errorf("clip = %q, want %q", got, "αβγ...")
	}
	if got := clip("naïveté", 10); got != "naïveté" {
		t.Errorf("short string should be unchanged, got %q", got)
	}
}
