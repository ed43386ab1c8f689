package composite_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
)

// fixture is a graph with the attributes the scenarios use.
type fixture struct {
	t      *testing.T
	g      *graph.Store
	name   int
	x, y   int
	sel    int
	txName int
	weight int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	g := graph.New()
	f := &fixture{t: t, g: g}
	f.name = f.attr(graph.KindVertex, composite.IdentifierAttribute, graph.TypeString)
	f.x = f.attr(graph.KindVertex, composite.XAttribute, graph.TypeFloat)
	f.y = f.attr(graph.KindVertex, composite.YAttribute, graph.TypeFloat)
	f.sel = f.attr(graph.KindVertex, composite.SelectedAttribute, graph.TypeBool)
	f.txName = f.attr(graph.KindTransaction, composite.IdentifierAttribute, graph.TypeString)
	f.weight = f.attr(graph.KindTransaction, "weight", graph.TypeFloat)
	return f
}

func (f *fixture) attr(kind graph.ElementKind, name string, typ graph.AttrType) int {
	id, err := f.g.EnsureAttribute(kind, name, typ)
	require.NoError(f.t, err)
	return id
}

// vertex adds a named vertex at (x, y).
func (f *fixture) vertex(name string, x, y float64) int {
	v := f.g.AddVertex()
	require.NoError(f.t, f.g.SetValue(f.name, v, name))
	require.NoError(f.t, f.g.SetValue(f.x, v, x))
	require.NoError(f.t, f.g.SetValue(f.y, v, y))
	return v
}

// link adds a named transaction with a weight.
func (f *fixture) link(src, dst int, directed bool, name string, weight float64) int {
	t, err := f.g.AddTransaction(src, dst, directed)
	require.NoError(f.t, err)
	require.NoError(f.t, f.g.SetValue(f.txName, t, name))
	require.NoError(f.t, f.g.SetValue(f.weight, t, weight))
	return t
}

// find returns the vertex with the given identifier.
func (f *fixture) find(name string) int {
	f.t.Helper()
	for _, v := range graph.Vertices(f.g) {
		if graph.StringValue(f.g, f.name, v) == name {
			return v
		}
	}
	f.t.Fatalf("no vertex named %q", name)
	return graph.NotFound
}

// names returns the sorted vertex identifiers.
func (f *fixture) names() []string {
	var out []string
	for _, v := range graph.Vertices(f.g) {
		out = append(out, graph.StringValue(f.g, f.name, v))
	}
	slices.Sort(out)
	return out
}

// links returns the sorted transactions as "name:src->dst" using vertex
// identifiers, or "name:src--dst" for undirected transactions.
func (f *fixture) links() []string {
	var out []string
	for _, t := range graph.Transactions(f.g) {
		src := graph.StringValue(f.g, f.name, f.g.TransactionSource(t))
		dst := graph.StringValue(f.g, f.name, f.g.TransactionDestination(t))
		arrow := "->"
		if !f.g.TransactionDirected(t) {
			arrow = "--"
		}
		out = append(out, graph.StringValue(f.g, f.txName, t)+":"+src+arrow+dst)
	}
	slices.Sort(out)
	return out
}

// state returns the composite state of v.
func (f *fixture) state(v int) composite.State {
	return composite.StateOf(f.g, v)
}

// contracted returns the single composite vertex in the graph.
func (f *fixture) contracted() int {
	f.t.Helper()
	var found []int
	for _, v := range graph.Vertices(f.g) {
		if composite.IsComposite(f.state(v)) {
			found = append(found, v)
		}
	}
	require.Len(f.t, found, 1)
	return found[0]
}
