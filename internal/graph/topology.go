package graph

import "sort"

// Topology describes the shape of an argument graph: how the debate
// fragments into connected components, which nodes attract many
// relationships, and which sit unconnected.
type Topology struct {
	Components       int      `json:"components"`
	LargestComponent int      `json:"largest_component"`
	Orphans          []string `json:"orphans,omitempty"`
	Hubs             []Hub    `json:"hubs,omitempty"`
	RootNodes        int      `json:"root_nodes"`
	BranchNodes      int      `json:"branch_nodes"`
}

// Hub is a node with an unusually high number of edges.
type Hub struct {
	ID     string `json:"id"`
	Topic  string `json:"topic"`
	Degree int    `json:"degree"`
}

// ComputeTopology analyzes graph connectivity. Nodes with more than
// hubThreshold edges are reported as hubs.
func ComputeTopology(g *ArgumentGraph, hubThreshold int) Topology {
	var t Topology

	chrono := g.Chronological()
	ids := make([]string, len(chrono))
	degree := make(map[string]int, len(chrono))
	for i, n := range chrono {
		ids[i] = n.ID
		if n.IsBranch() {
			t.BranchNodes++
		} else {
			t.RootNodes++
		}
	}

	uf := newUnionFind(ids)
	for _, e := range g.Edges() {
		uf.union(e.From, e.To)
		degree[e.From]++
		degree[e.To]++
	}

	for _, members := range uf.components() {
		t.Components++
		if len(members) > t.LargestComponent {
			t.LargestComponent = len(members)
		}
	}

	for _, n := range chrono {
		d := degree[n.ID]
		if d == 0 {
			t.Orphans = append(t.Orphans, n.ID)
		}
		if d > hubThreshold {
			t.Hubs = append(t.Hubs, Hub{ID: n.ID, Topic: n.Topic, Degree: d})
		}
	}
	sort.Slice(t.Hubs, func(i, j int) bool { return t.Hubs[i].Degree > t.Hubs[j].Degree })

	return t
}

// unionFind implements union-find with path compression and union by rank.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind(ids []string) *unionFind {
	uf := &unionFind{
		parent: make(map[string]string, len(ids)),
		rank:   make(map[string]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(id string) string {
	parent, ok := uf.parent[id]
	if !ok {
		return id
	}
	if parent != id {
		root := uf.find(parent)
		uf.parent[id] = root
		return root
	}
	return id
}

func (uf *unionFind) union(a, b string) bool {
	rootA := uf.find(a)
	rootB := uf.find(b)
	if rootA == rootB {
		return false
	}
	if uf.rank[rootA] < uf.rank[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	if uf.rank[rootA] == uf.rank[rootB] {
		uf.rank[rootA]++
	}
	return true
}

func (uf *unionFind) components() [][]string {
	groups := make(map[string][]string)
	for id := range uf.parent {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}
	result := make([][]string, 0, len(groups))
	for _, members := range groups {
		result = append(result, members)
	}
	return result
}
