package debate

import (
	"sort"
	"time"

	"agora/dialectic/internal/graph"
)

// Observer watches debate turns for tensions worth branching on. An
// observer that sees nothing returns nil from CheckForTension and is never
// asked to rate urgency.
type Observer interface {
	Name() string
	CheckForTension(turn graph.Turn, transcript []graph.Turn) *TensionCandidate
	RateUrgency(candidate *TensionCandidate, transcript []graph.Turn) float64
}

// TensionCandidate is an observer's raw sighting before urgency rating.
type TensionCandidate struct {
	Question  string
	Context   string
	Rationale string
}

// TensionFlag is a rated tension recorded against a specific turn.
type TensionFlag struct {
	ID             string    `json:"id"`
	TurnNumber     int       `json:"turn_number"`
	Question       string    `json:"question"`
	ObserverName   string    `json:"observer_name"`
	Urgency        float64   `json:"urgency"`
	ContextExcerpt string    `json:"context_excerpt"`
	Rationale      string    `json:"rationale"`
	FlaggedAt      time.Time `json:"flagged_at"`
}

// Monitor fans each turn out to every observer and accumulates the flags
// they raise. Flags survive for the whole session so deferred tensions can
// be revisited later.
type Monitor struct {
	observers []Observer
	flags     []TensionFlag
}

// NewMonitor returns a monitor over the given observers.
func NewMonitor(observers []Observer) *Monitor {
	return &Monitor{observers: observers}
}

// ProcessTurn shows the turn to every observer and returns the flags raised
// for it. turnNumber is the zero-based index of turn in the transcript.
func (m *Monitor) ProcessTurn(turnNumber int, turn graph.Turn, transcript []graph.Turn) []TensionFlag {
	var raised []TensionFlag
	for _, obs := range m.observers {
		candidate := obs.CheckForTension(turn, transcript)
		if candidate == nil {
			continue
		}
		flag := TensionFlag{
			ID:             graph.NewID(),
			TurnNumber:     turnNumber,
			Question:       candidate.Question,
			ObserverName:   obs.Name(),
			Urgency:        obs.RateUrgency(candidate, transcript),
			ContextExcerpt: candidate.Context,
			Rationale:      candidate.Rationale,
			FlaggedAt:      time.Now().UTC(),
		}
		raised = append(raised, flag)
		m.flags = append(m.flags, flag)
	}
	return raised
}

// Flags returns every flag raised so far, in raise order.
func (m *Monitor) Flags() []TensionFlag {
	out := make([]TensionFlag, len(m.flags))
	copy(out, m.flags)
	return out
}

// FlagsByUrgency returns flags at or above min, most urgent first. Ties
// keep raise order.
func (m *Monitor) FlagsByUrgency(min float64) []TensionFlag {
	var out []TensionFlag
	for _, f := range m.flags {
		if f.Urgency >= min {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Urgency > out[j].Urgency
	})
	return out
}

// FlagsByObserver returns the flags a single observer raised, in raise order.
func (m *Monitor) FlagsByObserver(name string) []TensionFlag {
	var out []TensionFlag
	for _, f := range m.flags {
		if f.ObserverName == name {
			out = append(out, f)
		}
	}
	return out
}

// FlagsAtTurn returns the flags raised against one turn.
func (m *Monitor) FlagsAtTurn(turnNumber int) []TensionFlag {
	var out []TensionFlag
	for _, f := range m.flags {
		if f.TurnNumber == turnNumber {
			out = append(out, f)
		}
	}
	return out
}
