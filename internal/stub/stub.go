// Package stub manages the lifecycle of deferred tensions: flagged
// questions that were not explored immediately but are preserved, checked
// for relevance as the graph grows, and eventually explored or superseded.
package stub

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"agora/dialectic/internal/db"
	"agora/dialectic/internal/debate"
	"agora/dialectic/internal/graph"
	"agora/dialectic/internal/llm"
)

// DefaultRelevanceThreshold gates exploration: the model must both say
// explore and score relevance at or above this.
const DefaultRelevanceThreshold = 0.6

// digestNodes caps how many nodes the relevance prompt describes.
const digestNodes = 10

// Registry is one session's view of its stubs.
type Registry struct {
	store     *db.DB
	gen       llm.Generator
	model     string
	session   string
	Threshold float64
}

// NewRegistry returns a registry for the named session.
func NewRegistry(store *db.DB, gen llm.Generator, model, session string) *Registry {
	return &Registry{
		store:     store,
		gen:       gen,
		model:     model,
		session:   session,
		Threshold: DefaultRelevanceThreshold,
	}
}

// FromFlag persists an unselected tension as a stub and returns it.
func (r *Registry) FromFlag(flag debate.TensionFlag, parentNodeID string) (*db.Stub, error) {
	s := &db.Stub{
		ID:             "stub_" + flag.ID,
		SessionName:    r.session,
		Question:       flag.Question,
		ParentNodeID:   parentNodeID,
		FlaggedAtTurn:  flag.TurnNumber,
		ObserverName:   flag.ObserverName,
		Urgency:        flag.Urgency,
		Status:         db.StatusStub,
		Rationale:      flag.Rationale,
		ContextExcerpt: flag.ContextExcerpt,
	}
	if err := r.store.InsertStub(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Pending returns the session's unresolved stubs.
func (r *Registry) Pending() ([]*db.Stub, error) {
	return r.store.ListStubs(r.session, db.StatusStub)
}

// All returns every stub of the session regardless of status.
func (r *Registry) All() ([]*db.Stub, error) {
	return r.store.ListStubs(r.session, "")
}

// ShouldRevisit asks whether a stub has become relevant given the current
// graph. Non-pending stubs short-circuit without a generator call. Every
// evaluation, failed ones included, lands in the stub's audit trail.
func (r *Registry) ShouldRevisit(s *db.Stub, g *graph.ArgumentGraph) (bool, string, error) {
	if s.Status != db.StatusStub {
		return false, "already " + s.Status, nil
	}

	system := `You are evaluating if an unexplored question (stub) has become relevant.

A stub should be explored if:
- Current debates now provide context that makes it important
- New nodes create tension with the stub question
- The graph has evolved in a way that makes this question central

A stub should stay stubbed if:
- Still tangential to current discussions
- Already addressed by existing nodes
- Not yet relevant given current context

Output JSON:
{
  "relevance_score": 0.0-1.0,
  "should_explore": true/false,
  "reason": "Why this stub is/isn't relevant now"
}`

	prompt := fmt.Sprintf(`Stub question (from turn %d):
%q

Original rationale: %s
Original urgency: %.2f

Current graph state (%d nodes):
%s

Has this stub become relevant?

JSON:`,
		s.FlaggedAtTurn, s.Question, s.Rationale, s.Urgency, g.NodeCount(), digest(g))

	out, err := r.gen.Generate(system, prompt, 0.4, r.model)
	if err != nil {
		reason := fmt.Sprintf("relevance check failed: %v", err)
		if dbErr := r.recordError(s.ID, reason, g.NodeCount()); dbErr != nil {
			return false, reason, dbErr
		}
		return false, reason, nil
	}

	var verdict struct {
		RelevanceScore float64 `json:"relevance_score"`
		ShouldExplore  bool    `json:"should_explore"`
		Reason         string  `json:"reason"`
	}
	raw, ok := llm.ExtractJSONObject(out)
	if !ok || json.Unmarshal([]byte(raw), &verdict) != nil {
		reason := "unparseable relevance response"
		if dbErr := r.recordError(s.ID, reason, g.NodeCount()); dbErr != nil {
			return false, reason, dbErr
		}
		return false, reason, nil
	}
	if verdict.Reason == "" {
		verdict.Reason = "relevance check complete"
	}

	check := &db.RevisitCheck{
		StubID:         s.ID,
		Action:         db.ActionEvaluated,
		RelevanceScore: sql.NullFloat64{Float64: verdict.RelevanceScore, Valid: true},
		ShouldExplore:  sql.NullBool{Bool: verdict.ShouldExplore, Valid: true},
		Reason:         verdict.Reason,
		GraphSize:      g.NodeCount(),
	}
	if err := r.store.AppendRevisitCheck(check); err != nil {
		return false, verdict.Reason, err
	}

	return verdict.ShouldExplore && verdict.RelevanceScore >= r.Threshold, verdict.Reason, nil
}

// MarkExplored transitions a stub after its question got its own debate.
func (r *Registry) MarkExplored(stubID, nodeID string) error {
	if err := r.store.UpdateStubStatus(stubID, db.StatusExplored, nodeID); err != nil {
		return err
	}
	return r.store.AppendRevisitCheck(&db.RevisitCheck{
		StubID: stubID,
		Action: db.ActionExplored,
		Reason: "explored as node " + nodeID,
	})
}

// MarkSuperseded transitions a stub that other nodes have made moot.
func (r *Registry) MarkSuperseded(stubID, reason string) error {
	if err := r.store.UpdateStubStatus(stubID, db.StatusSuperseded, ""); err != nil {
		return err
	}
	return r.store.AppendRevisitCheck(&db.RevisitCheck{
		StubID: stubID,
		Action: db.ActionSuperseded,
		Reason: reason,
	})
}

func (r *Registry) recordError(stubID, reason string, graphSize int) error {
	return r.store.AppendRevisitCheck(&db.RevisitCheck{
		StubID:    stubID,
		Action:    db.ActionError,
		Reason:    reason,
		GraphSize: graphSize,
	})
}

// digest describes the first nodes of the graph for the relevance prompt.
func digest(g *graph.ArgumentGraph) string {
	nodes := g.Chronological()
	if len(nodes) == 0 {
		return "No nodes yet"
	}
	if len(nodes) > digestNodes {
		nodes = nodes[:digestNodes]
	}

	out := ""
	for i, n := range nodes {
		if i > 0 {
			out += "\n"
		}
		summary := n.Resolution
		if summary == "" {
			summary = n.Topic
		}
		out += "- " + clip(summary, 100)
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
