// Package graph holds the file dependency graph: one node per scanned file,
// one labeled edge per distinct (importer, imported) pair.
package graph

import (
	"errors"
	"slices"
)

// ErrNodesNotRegistered is returned by Assembler.LinkEdges when it runs before
// RegisterNodes.
var ErrNodesNotRegistered = errors.New("nodes must be registered before edges are linked")

// NodeID is a dense index assigned in insertion order.
type NodeID int

// Node is a scanned file. Path is its project-relative key.
type Node struct {
	ID   NodeID `json:"id"`
	Path string `json:"path"`
}

// Edge records that From imports To. Label is the absolute path the import
// resolved to.
type Edge struct {
	From  NodeID `json:"from"`
	To    NodeID `json:"to"`
	Label string `json:"label"`
}

type edgeKey [2]NodeID

// Graph is a directed graph with at most one edge per ordered node pair.
//
// Not safe for concurrent mutation. Once built it is only read, and
// concurrent reads are fine.
type Graph struct {
	nodes     []Node
	edges     []Edge
	edgeIndex map[edgeKey]int
	pathIndex map[string]NodeID
	out       map[NodeID][]NodeID
	in        map[NodeID][]NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		edgeIndex: make(map[edgeKey]int),
		pathIndex: make(map[string]NodeID),
		out:       make(map[NodeID][]NodeID),
		in:        make(map[NodeID][]NodeID),
	}
}

// AddNode appends a node and returns its id. Adding the same path twice
// creates two nodes; Lookup returns the later one.
func (g *Graph) AddNode(path string) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Path: path})
	g.pathIndex[path] = id
	return id
}

// UpdateEdge adds the edge from -> to, or replaces the label of the existing
// one. Either way the pair appears once.
func (g *Graph) UpdateEdge(from, to NodeID, label string) {
	key := edgeKey{from, to}
	if i, ok := g.edgeIndex[key]; ok {
		g.edges[i].Label = label
		return
	}

	g.edgeIndex[key] = len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Label: label})
	g.out[from] = append(g.out[from], to)
	g.in[to] = append(g.in[to], from)
}

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if id < 0 || int(id) >= len(g.nodes) {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Lookup returns the node for a project-relative path.
func (g *Graph) Lookup(path string) (Node, bool) {
	id, ok := g.pathIndex[path]
	if !ok {
		return Node{}, false
	}
	return g.nodes[id], true
}

// Nodes returns the nodes in id order. The slice must not be modified.
func (g *Graph) Nodes() []Node { return g.nodes }

// Edges returns the edges in insertion order. The slice must not be modified.
func (g *Graph) Edges() []Edge { return g.edges }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Edge returns the edge from -> to.
func (g *Graph) Edge(from, to NodeID) (Edge, bool) {
	i, ok := g.edgeIndex[edgeKey{from, to}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[i], true
}

// Outgoing returns the ids imported by id, in edge insertion order.
func (g *Graph) Outgoing(id NodeID) []NodeID {
	return slices.Clone(g.out[id])
}

// Incoming returns the ids importing id, in edge insertion order.
func (g *Graph) Incoming(id NodeID) []NodeID {
	return slices.Clone(g.in[id])
}

// Dependencies returns the sorted paths of the files path imports.
func (g *Graph) Dependencies(path string) ([]string, bool) {
	n, ok := g.Lookup(path)
	if !ok {
		return nil, false
	}
	return g.paths(g.out[n.ID]), true
}

// Dependents returns the sorted paths of the files importing path.
func (g *Graph) Dependents(path string) ([]string, bool) {
	n, ok := g.Lookup(path)
	if !ok {
		return nil, false
	}
	return g.paths(g.in[n.ID]), true
}

func (g *Graph) paths(ids []NodeID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.nodes[id].Path)
	}
	slices.Sort(out)
	return out
}

// Transitive returns the sorted paths reachable from path, following edges
// forwards (what path depends on) or, with reverse, backwards (what depends
// on path). path itself is included only when it lies on a cycle.
func (g *Graph) Transitive(path string, reverse bool) ([]string, bool) {
	start, ok := g.Lookup(path)
	if !ok {
		return nil, false
	}

	adj := g.out
	if reverse {
		adj = g.in
	}

	seen := make(map[NodeID]bool)
	queue := slices.Clone(adj[start.ID])
	var reached []NodeID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		reached = append(reached, id)
		queue = append(queue, adj[id]...)
	}

	return g.paths(reached), true
}
