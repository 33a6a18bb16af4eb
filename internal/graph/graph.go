package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Version is written into every persisted graph document.
const Version = "0.3.0"

var (
	// ErrDuplicateNode is returned when a node id is inserted twice.
	ErrDuplicateNode = errors.New("node already exists in graph")
	// ErrUnknownEndpoint is returned when an edge references a node id
	// that is not in the graph.
	ErrUnknownEndpoint = errors.New("edge endpoint not found in graph")
)

// Metadata describes a persisted graph document.
type Metadata struct {
	CreatedAt   time.Time `json:"created_at"`
	Version     string    `json:"version"`
	SessionName string    `json:"session_name,omitempty"`
}

// ArgumentGraph owns the node map and edge list and enforces referential
// integrity: no duplicate node ids, no duplicate (from, to, kind) edges,
// and edges only between existing nodes. It is the sole mutation surface
// for both entities.
type ArgumentGraph struct {
	Meta  Metadata
	nodes map[string]*ArgumentNode
	edges []Edge

	// (from, to, kind) triples already present, for O(1) dedup
	edgeIndex map[edgeKey]bool
}

type edgeKey struct {
	from, to string
	kind     EdgeKind
}

// New creates an empty graph.
func New(sessionName string) *ArgumentGraph {
	return &ArgumentGraph{
		Meta: Metadata{
			CreatedAt:   time.Now(),
			Version:     Version,
			SessionName: sessionName,
		},
		nodes:     make(map[string]*ArgumentNode),
		edgeIndex: make(map[edgeKey]bool),
	}
}

// AddNode inserts a node. Returns ErrDuplicateNode if the id is taken.
func (g *ArgumentGraph) AddNode(node *ArgumentNode) error {
	if node.ID == "" {
		return fmt.Errorf("node has empty id")
	}
	if _, ok := g.nodes[node.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, node.ID)
	}
	g.nodes[node.ID] = node
	return nil
}

// AddEdge inserts an edge. Both endpoints must already exist. A duplicate
// (from, to, kind) triple is silently dropped: inference runs repeatedly
// over overlapping node sets and re-proposing a known edge is normal.
func (g *ArgumentGraph) AddEdge(edge Edge) error {
	if _, ok := g.nodes[edge.From]; !ok {
		return fmt.Errorf("%w: source %s", ErrUnknownEndpoint, edge.From)
	}
	if _, ok := g.nodes[edge.To]; !ok {
		return fmt.Errorf("%w: target %s", ErrUnknownEndpoint, edge.To)
	}
	key := edgeKey{edge.From, edge.To, edge.Kind}
	if g.edgeIndex[key] {
		return nil
	}
	g.edgeIndex[key] = true
	g.edges = append(g.edges, edge)
	return nil
}

// Node returns the node with the given id, or nil.
func (g *ArgumentGraph) Node(id string) *ArgumentNode {
	return g.nodes[id]
}

// NodeCount returns the number of nodes.
func (g *ArgumentGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *ArgumentGraph) EdgeCount() int { return len(g.edges) }

// Edges returns a copy of the edge list.
func (g *ArgumentGraph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Chronological returns all nodes sorted by creation time, with id as the
// tie-break so the order is total.
func (g *ArgumentGraph) Chronological() []*ArgumentNode {
	nodes := make([]*ArgumentNode, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if !nodes[i].CreatedAt.Equal(nodes[j].CreatedAt) {
			return nodes[i].CreatedAt.Before(nodes[j].CreatedAt)
		}
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// FindByTopic returns nodes whose topic contains the query, case-insensitive.
func (g *ArgumentGraph) FindByTopic(query string) []*ArgumentNode {
	q := strings.ToLower(query)
	var out []*ArgumentNode
	for _, n := range g.Chronological() {
		if strings.Contains(strings.ToLower(n.Topic), q) {
			out = append(out, n)
		}
	}
	return out
}

// FindByTag returns nodes carrying any of the given tags.
func (g *ArgumentGraph) FindByTag(tags ...string) []*ArgumentNode {
	var out []*ArgumentNode
	for _, n := range g.Chronological() {
		for _, t := range tags {
			if n.HasTag(t) {
				out = append(out, n)
				break
			}
		}
	}
	return out
}

// FindByKind returns all nodes of the given kind.
func (g *ArgumentGraph) FindByKind(kind NodeKind) []*ArgumentNode {
	var out []*ArgumentNode
	for _, n := range g.Chronological() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// Incoming returns all edges pointing to the given node.
func (g *ArgumentGraph) Incoming(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.To == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Outgoing returns all edges originating from the given node.
func (g *ArgumentGraph) Outgoing(nodeID string) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if e.From == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Stats holds per-kind counts for a graph.
type Stats struct {
	Nodes     int            `json:"nodes"`
	Edges     int            `json:"edges"`
	NodeKinds map[string]int `json:"node_kinds"`
	EdgeKinds map[string]int `json:"edge_kinds"`
}

// Summary computes node/edge counts broken down by kind.
func (g *ArgumentGraph) Summary() Stats {
	s := Stats{
		Nodes:     len(g.nodes),
		Edges:     len(g.edges),
		NodeKinds: make(map[string]int),
		EdgeKinds: make(map[string]int),
	}
	for _, n := range g.nodes {
		s.NodeKinds[string(n.Kind)]++
	}
	for _, e := range g.edges {
		s.EdgeKinds[string(e.Kind)]++
	}
	return s
}

// document is the on-disk JSON shape.
type document struct {
	Metadata Metadata       `json:"metadata"`
	Nodes    []ArgumentNode `json:"nodes"`
	Edges    []Edge         `json:"edges"`
}

// Save writes the graph as a JSON document. Nodes are written in
// chronological order so the file is deterministic for a fixed graph.
func (g *ArgumentGraph) Save(path string) error {
	doc := document{Metadata: g.Meta, Edges: g.edges}
	if doc.Edges == nil {
		doc.Edges = []Edge{}
	}
	for _, n := range g.Chronological() {
		doc.Nodes = append(doc.Nodes, *n)
	}
	if doc.Nodes == nil {
		doc.Nodes = []ArgumentNode{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing graph to %s: %w", path, err)
	}
	return nil
}

// Load reads a graph document written by Save.
func Load(path string) (*ArgumentGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph from %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing graph from %s: %w", path, err)
	}

	g := New(doc.Metadata.SessionName)
	g.Meta = doc.Metadata
	for i := range doc.Nodes {
		node := doc.Nodes[i]
		if err := g.AddNode(&node); err != nil {
			return nil, fmt.Errorf("loading node %s: %w", node.ID, err)
		}
	}
	for _, e := range doc.Edges {
		if err := g.AddEdge(e); err != nil {
			return nil, fmt.Errorf("loading edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}
