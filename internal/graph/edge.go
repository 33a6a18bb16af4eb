package graph

// EdgeKind is the type of relationship between two argument nodes.
type EdgeKind string

const (
	EdgeBranchesFrom EdgeKind = "branches_from" // branch debate from a main debate
	EdgeContradicts  EdgeKind = "contradicts"   // direct opposition
	EdgeElaborates   EdgeKind = "elaborates"    // expands on a previous point
)

func (k EdgeKind) String() string { return string(k) }

// EdgeKinds lists all edge kinds in a stable order.
func EdgeKinds() []EdgeKind {
	return []EdgeKind{EdgeBranchesFrom, EdgeContradicts, EdgeElaborates}
}

// Edge is a directed, typed relationship between two ArgumentNodes.
// BranchesFrom edges always carry confidence 1.0; inferred edges carry
// their combined signal score.
type Edge struct {
	From        string   `json:"from"`
	To          string   `json:"to"`
	Kind        EdgeKind `json:"kind"`
	Description string   `json:"description,omitempty"`
	Confidence  float64  `json:"confidence"`
}
