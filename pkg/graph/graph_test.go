package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGraph_AddNodeAndLookup(t *testing.T) {
	g := New()
	a := g.AddNode("a.ts")
	b := g.AddNode("src/b.ts")

	assert.Equal(t, NodeID(0), a)
	assert.Equal(t, NodeID(1), b)
	assert.Equal(t, 2, g.NodeCount())

	n, ok := g.Lookup("src/b.ts")
	require.True(t, ok)
	assert.Equal(t, Node{ID: b, Path: "src/b.ts"}, n)

	_, ok = g.Lookup("missing.ts")
	assert.False(t, ok)

	n, ok = g.Node(a)
	require.True(t, ok)
	assert.Equal(t, "a.ts", n.Path)

	_, ok = g.Node(NodeID(7))
	assert.False(t, ok)
	_, ok = g.Node(NodeID(-1))
	assert.False(t, ok)
}

func TestGraph_DuplicatePathLaterWins(t *testing.T) {
	g := New()
	g.AddNode("a.ts")
	second := g.AddNode("a.ts")

	n, ok := g.Lookup("a.ts")
	require.True(t, ok)
	assert.Equal(t, second, n.ID)
	assert.Equal(t, 2, g.NodeCount())
}

func TestGraph_UpdateEdgeCollapsesDuplicates(t *testing.T) {
	g := New()
	a := g.AddNode("a.ts")
	b := g.AddNode("b.ts")

	g.UpdateEdge(a, b, "/repo/b.ts")
	g.UpdateEdge(a, b, "/repo/./b.ts")

	require.Equal(t, 1, g.EdgeCount())
	e, ok := g.Edge(a, b)
	require.True(t, ok)
	assert.Equal(t, "/repo/./b.ts", e.Label, "label is replaced")

	assert.Equal(t, []NodeID{b}, g.Outgoing(a))
	assert.Equal(t, []NodeID{a}, g.Incoming(b))

	_, ok = g.Edge(b, a)
	assert.False(t, ok, "edges are directed")
}

func TestGraph_SelfLoop(t *testing.T) {
	g := New()
	a := g.AddNode("a.ts")
	g.UpdateEdge(a, a, "/repo/a.ts")

	assert.Equal(t, 1, g.EdgeCount())
	deps, ok := g.Dependencies("a.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"a.ts"}, deps)
}

func TestGraph_DependenciesAndDependents(t *testing.T) {
	g := New()
	app := g.AddNode("app.ts")
	z := g.AddNode("z.ts")
	m := g.AddNode("m.ts")
	g.UpdateEdge(app, z, "/r/z.ts")
	g.UpdateEdge(app, m, "/r/m.ts")
	g.UpdateEdge(m, z, "/r/z.ts")

	deps, ok := g.Dependencies("app.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"m.ts", "z.ts"}, deps, "sorted")

	users, ok := g.Dependents("z.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"app.ts", "m.ts"}, users)

	deps, ok = g.Dependencies("z.ts")
	require.True(t, ok)
	assert.Empty(t, deps)

	_, ok = g.Dependents("nope.ts")
	assert.False(t, ok)
}

func TestGraph_OutgoingIsACopy(t *testing.T) {
	g := New()
	a := g.AddNode("a.ts")
	b := g.AddNode("b.ts")
	g.UpdateEdge(a, b, "x")

	out := g.Outgoing(a)
	out[0] = NodeID(99)
	assert.Equal(t, []NodeID{b}, g.Outgoing(a))
}

func TestGraph_Transitive(t *testing.T) {
	g := New()
	app := g.AddNode("app.ts")
	svc := g.AddNode("svc.ts")
	db := g.AddNode("db.ts")
	g.AddNode("lonely.ts")
	g.UpdateEdge(app, svc, "")
	g.UpdateEdge(svc, db, "")

	deps, ok := g.Transitive("app.ts", false)
	require.True(t, ok)
	assert.Equal(t, []string{"db.ts", "svc.ts"}, deps)

	users, ok := g.Transitive("db.ts", true)
	require.True(t, ok)
	assert.Equal(t, []string{"app.ts", "svc.ts"}, users)

	none, ok := g.Transitive("lonely.ts", false)
	require.True(t, ok)
	assert.Empty(t, none)

	_, ok = g.Transitive("nope.ts", false)
	assert.False(t, ok)
}

func TestGraph_TransitiveCycle(t *testing.T) {
	g := New()
	a := g.AddNode("a.ts")
	b := g.AddNode("b.ts")
	g.UpdateEdge(a, b, "")
	g.UpdateEdge(b, a, "")

	deps, ok := g.Transitive("a.ts", false)
	require.True(t, ok)
	assert.Equal(t, []string{"a.ts", "b.ts"}, deps)
}
