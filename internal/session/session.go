package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agora/dialectic/internal/agents"
	"agora/dialectic/internal/config"
	"agora/dialectic/internal/db"
	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/infer"
	"agora/dialectic/internal/llm"
	"agora/dialectic/internal/stub"
)

// Session owns one debate session: its graph, its stub registry, its log,
// and the components that turn transcripts into nodes and edges. All
// mutation happens on the calling goroutine; the graph checkpoint is saved
// after every node and edge addition so a crash leaves a resumable state.
type Session struct {
	Name      string
	Dir       string
	GraphPath string
	Graph     *graph.ArgumentGraph
	Stubs     *stub.Registry

	cfg      *config.Config
	gen      llm.Generator
	store    *db.DB
	logger   *Logger
	inf      *infer.Inferencer
	detector *debate.Detector
	synth    *debate.Synthesizer
	selector *debate.Selector

	passage     string
	currentMain *graph.ArgumentNode
}

// New creates a fresh session directory, graph, and log.
func New(cfg *config.Config, gen llm.Generator, store *db.DB, name, passage string) (*Session, error) {
	s, err := newSession(cfg, gen, store, name, passage)
	if err != nil {
		return nil, err
	}
	s.Graph = graph.New(name)
	if err := s.Save(); err != nil {
		s.logger.Close()
		return nil, err
	}
	return s, nil
}

// Resume reopens a session recorded in the database and loads its graph
// checkpoint.
func Resume(cfg *config.Config, gen llm.Generator, store *db.DB, name string) (*Session, error) {
	record, err := store.GetSession(name)
	if err != nil {
		return nil, err
	}

	s, err := newSession(cfg, gen, store, name, record.Passage)
	if err != nil {
		return nil, err
	}
	s.GraphPath = record.GraphPath
	s.Graph, err = graph.Load(record.GraphPath)
	if err != nil {
		s.logger.Close()
		return nil, fmt.Errorf("resuming session %s: %w", name, err)
	}

	// The last main node is where branch-less continuations attach
	for _, node := range s.Graph.Chronological() {
		if !node.IsBranch() {
			s.currentMain = node
		}
	}
	return s, nil
}

func newSession(cfg *config.Config, gen llm.Generator, store *db.DB, name, passage string) (*Session, error) {
	dir := filepath.Join(cfg.OutputDir, name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating session dir: %w", err)
	}

	logPath := filepath.Join(dir, fmt.Sprintf("%s_log_%s.md", name, time.Now().Format("20060102_150405")))
	logger, err := NewLogger(logPath, gen, cfg.Model)
	if err != nil {
		return nil, err
	}

	stubs := stub.NewRegistry(store, gen, cfg.Model, name)
	if cfg.Branch.RelevanceThreshold > 0 {
		stubs.Threshold = cfg.Branch.RelevanceThreshold
	}

	return &Session{
		Name:      name,
		Dir:       dir,
		GraphPath: filepath.Join(dir, name+"_graph.json"),
		Stubs:     stubs,
		cfg:       cfg,
		gen:       gen,
		store:     store,
		logger:    logger,
		inf:       infer.New(cfg.Inference),
		detector:  debate.NewDetector(cfg.Branch.MaxTurns),
		synth:     debate.NewSynthesizer(gen, cfg.Model),
		selector:  debate.NewSelector(gen, cfg.Model),
		passage:   passage,
	}, nil
}

// Passage returns the text the session was opened on.
func (s *Session) Passage() string { return s.passage }

// Logger exposes the session log for callers that narrate around the
// orchestration.
func (s *Session) Logger() *Logger { return s.logger }

// CurrentMain returns the most recent main-debate node, or nil.
func (s *Session) CurrentMain() *graph.ArgumentNode { return s.currentMain }

// ProcessPassage runs a context-enhanced main debate over the passage and
// adds the resulting node. Main debates run their full round budget and
// classify as exploration; markers and budgets only end branches early.
// A non-nil monitor sees every turn as it lands.
func (s *Session) ProcessPassage(passage string, ag []agents.Agent, monitor *debate.Monitor) (*graph.ArgumentNode, error) {
	s.logger.Section(fmt.Sprintf("PROCESSING PASSAGE (with context from %d prior nodes)", s.Graph.NodeCount()))
	s.logger.Logf("\nPassage:\n%s\n", passage)

	contextNodes := s.Graph.Chronological()
	context := FormatContext(contextNodes)
	if len(contextNodes) > 0 {
		s.logger.Subsection("Context Retrieved")
		s.logger.Log(ContextSummary(contextNodes))
	}

	transcript, err := s.runDebate(passage, ag, context, s.cfg.Debate.Rounds, s.cfg.Debate.MaxTurns, false, monitor)
	if err != nil {
		return nil, err
	}

	s.logger.Subsection("Creating node")
	node, err := s.synth.Synthesize(graph.KindExploration, transcript, passage, "")
	if err != nil {
		return nil, err
	}
	if err := s.addNodeWithEdges(node); err != nil {
		return nil, err
	}

	s.currentMain = node
	return node, nil
}

// ProcessBranch runs a focused debate on one question, classifies how it
// resolved, and attaches the node to its parent. Branch debates check for
// completion after every round and stop early once resolved.
func (s *Session) ProcessBranch(question, parentID string, ag []agents.Agent) (*graph.ArgumentNode, error) {
	parent := s.Graph.Node(parentID)
	if parent == nil {
		return nil, fmt.Errorf("parent node %s not found", parentID)
	}

	s.logger.Section("BRANCH DEBATE: " + question)
	s.logger.Subsection("Parent Node")
	s.logger.Log(parent.Topic)

	related := graph.RankBySimilarity(s.Graph.Chronological(), question, 4)
	context := FormatBranchContext(parent, related)

	transcript, err := s.runDebate(question, ag, context, s.cfg.Branch.Rounds, s.cfg.Branch.MaxTurns, true, nil)
	if err != nil {
		return nil, err
	}

	_, kind := s.detector.Check(transcript, question)
	s.logger.Subsection("Branch Resolution")
	s.logger.Logf("Detected type: %s", kind)

	node, err := s.synth.Synthesize(kind, transcript, "", question)
	if err != nil {
		return nil, err
	}
	if err := s.Graph.AddNode(node); err != nil {
		return nil, err
	}

	branchEdge := graph.Edge{
		From:        parentID,
		To:          node.ID,
		Kind:        graph.EdgeBranchesFrom,
		Description: fmt.Sprintf("Branch debate on: %s", clip(question, 100)),
		Confidence:  1.0,
	}
	if err := s.Graph.AddEdge(branchEdge); err != nil {
		return nil, err
	}
	if err := s.addInferredEdges(node); err != nil {
		return nil, err
	}
	if err := s.Save(); err != nil {
		return nil, err
	}

	s.logger.Subsection("Branch Created")
	s.logger.Logf("ID: %s\nBranches from: %s", node.ID, clip(parent.Topic, 50))
	return node, nil
}

// ExploreTensions partitions flagged tensions into branches to run now and
// stubs to keep, then runs the branches. Defer-then-explore order means a
// selection failure cannot lose a tension.
func (s *Session) ExploreTensions(candidates []debate.TensionFlag, parentID string, ag []agents.Agent) ([]*graph.ArgumentNode, error) {
	urgent := make([]debate.TensionFlag, 0, len(candidates))
	for _, f := range candidates {
		if f.Urgency >= s.cfg.Branch.MinUrgency {
			urgent = append(urgent, f)
		} else {
			if _, err := s.Stubs.FromFlag(f, parentID); err != nil {
				return nil, err
			}
		}
	}

	selected, deferred := s.selector.Select(urgent, s.cfg.Branch.MaxBranches, s.cfg.Branch.Strategy)
	s.logger.Subsection(fmt.Sprintf("BRANCH SELECTION: %d selected, %d deferred", len(selected), len(deferred)))

	for _, f := range deferred {
		if _, err := s.Stubs.FromFlag(f, parentID); err != nil {
			return nil, err
		}
		s.logger.Logf("Stubbed: %s", f.Question)
	}

	var nodes []*graph.ArgumentNode
	for _, f := range selected {
		node, err := s.ProcessBranch(f.Question, parentID, ag)
		if err != nil {
			return nodes, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// RevisitStubs re-evaluates every pending stub against the current graph
// and explores the ones that have become relevant.
func (s *Session) RevisitStubs(ag []agents.Agent) ([]*graph.ArgumentNode, error) {
	pending, err := s.Stubs.Pending()
	if err != nil {
		return nil, err
	}

	var explored []*graph.ArgumentNode
	for _, st := range pending {
		shouldExplore, reason, err := s.Stubs.ShouldRevisit(st, s.Graph)
		if err != nil {
			return explored, err
		}
		s.logger.Logf("Stub %s: explore=%v (%s)", st.ID, shouldExplore, reason)
		if !shouldExplore {
			continue
		}
		if s.Graph.Node(st.ParentNodeID) == nil {
			s.logger.Logf("Stub %s: parent node %s no longer in graph, skipping", st.ID, st.ParentNodeID)
			continue
		}

		node, err := s.ProcessBranch(st.Question, st.ParentNodeID, ag)
		if err != nil {
			return explored, err
		}
		if err := s.Stubs.MarkExplored(st.ID, node.ID); err != nil {
			return explored, err
		}
		explored = append(explored, node)
	}
	return explored, nil
}

// ContinueDebate derives a follow-up question from the most recent main
// node and debates it as a branch.
func (s *Session) ContinueDebate(ag []agents.Agent) (*graph.ArgumentNode, error) {
	if s.currentMain == nil {
		return nil, fmt.Errorf("no main node to continue from")
	}

	c := GenerateContinuation(s.gen, s.cfg.Model, s.currentMain)
	s.logger.Subsection("Continuation")
	s.logger.Logf("Approach: %s\nQuestion: %s\nRationale: %s", c.ApproachType, c.Question, c.Rationale)

	return s.ProcessBranch(c.Question, s.currentMain.ID, ag)
}

// ExportNarrative writes the linearized markdown narrative.
func (s *Session) ExportNarrative(path string) error {
	if path == "" {
		path = filepath.Join(s.Dir, s.Name+"_narrative.md")
	}
	if err := os.WriteFile(path, []byte(graph.Render(s.Graph)), 0644); err != nil {
		return fmt.Errorf("exporting narrative: %w", err)
	}
	return nil
}

// Save checkpoints the graph and refreshes the session index entry.
func (s *Session) Save() error {
	if err := s.Graph.Save(s.GraphPath); err != nil {
		return err
	}
	return s.store.UpsertSession(&db.SessionRecord{
		Name:      s.Name,
		Passage:   s.passage,
		GraphPath: s.GraphPath,
	})
}

// Close finalizes the log.
func (s *Session) Close() error {
	return s.logger.Close()
}

func (s *Session) addNodeWithEdges(node *graph.ArgumentNode) error {
	if err := s.Graph.AddNode(node); err != nil {
		return err
	}
	s.logger.Logf("ID: %s\nType: %s\nTopic: %s", node.ID, node.Kind, node.Topic)
	if err := s.addInferredEdges(node); err != nil {
		return err
	}
	return s.Save()
}

func (s *Session) addInferredEdges(node *graph.ArgumentNode) error {
	edges := s.inf.InferForNode(s.Graph, node)
	if len(edges) == 0 {
		return nil
	}

	s.logger.Subsection("Edges Detected")
	s.logger.Logf("Found %d relationship(s)", len(edges))
	for _, e := range edges {
		if err := s.Graph.AddEdge(e); err != nil {
			return err
		}
		s.logger.Logf("  %s: %s", e.Kind, e.Description)
	}
	return nil
}

// runDebate generates the transcript turn by turn. Later agents in a round
// see earlier agents' output; each round after the first replays the last
// two rounds of discussion. maxTurns caps the transcript regardless of the
// round count.
func (s *Session) runDebate(topic string, ag []agents.Agent, context string, rounds, maxTurns int, isBranch bool, monitor *debate.Monitor) ([]graph.Turn, error) {
	var transcript []graph.Turn

	for round := 1; round <= rounds; round++ {
		s.logger.Subsection(fmt.Sprintf("Round %d", round))

		for _, agent := range ag {
			if maxTurns > 0 && len(transcript) >= maxTurns {
				return transcript, nil
			}
			system := agent.SystemPrompt()
			if context != "" {
				system += "\n\n" + context + "\n\nUse this context to inform your arguments where relevant. You may reference previous discussions."
			}

			var prompt string
			switch {
			case round == 1 && isBranch:
				prompt = fmt.Sprintf("Question to explore: %s\n\nProvide your perspective.", topic)
			case round == 1:
				prompt = fmt.Sprintf("Passage:\n%s\n\nProvide your opening analysis.", topic)
			default:
				prompt = fmt.Sprintf("Previous discussion:\n%s\n\nYour response:", recentDiscussion(transcript, 2*len(ag)))
			}

			out, err := s.gen.Generate(system, prompt, s.cfg.Debate.Temperature, s.cfg.Model)
			if err != nil {
				return nil, fmt.Errorf("debate turn (%s, round %d): %w", agent.Name, round, err)
			}

			turn := graph.Turn{Speaker: agent.Name, Content: out, Round: round}
			transcript = append(transcript, turn)
			s.logger.Turn(turn)

			if monitor != nil {
				monitor.ProcessTurn(len(transcript)-1, turn, transcript)
			}
		}

		if isBranch {
			if done, _ := s.detector.Check(transcript, topic); done {
				s.logger.Subsection("Early Completion")
				s.logger.Log("Debate reached resolution")
				break
			}
		}
	}
	return transcript, nil
}

func recentDiscussion(transcript []graph.Turn, window int) string {
	if len(transcript) > window {
		transcript = transcript[len(transcript)-window:]
	}
	parts := make([]string, len(transcript))
	for i, t := range transcript {
		parts[i] = fmt.Sprintf("%s: %s", t.Speaker, t.Content)
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "\n\n"
		}
		out += p
	}
	return out
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
