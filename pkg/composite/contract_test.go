package composite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/compositor/pkg/composite"
	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
)

func TestCreateComposite(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 2, 0)
	c := f.vertex("C", 4, 3)
	x := f.vertex("X", 10, 10)
	f.link(a, b, true, "ab", 1)
	f.link(b, x, true, "bx", 2)
	f.link(x, a, true, "xa", 3)
	f.link(c, x, false, "cx", 4)

	e := composite.New(composite.Options{})
	v, err := e.CreateComposite(context.Background(), f.g, []int{a, b, c})
	require.NoError(t, err)
	require.NotEqual(t, graph.NotFound, v)

	assert.Equal(t, 2, f.g.VertexCount())
	assert.Equal(t, 3, f.g.TransactionCount())
	assert.Equal(t, []string{"A + 2 more...", "X"}, f.names())
	assert.Equal(t, []string{
		"bx:A + 2 more...->X",
		"cx:A + 2 more...--X",
		"xa:X->A + 2 more...",
	}, f.links())

	st, ok := f.state(v).(*composite.Contracted)
	require.True(t, ok, "composite vertex should be contracted")
	assert.Equal(t, 3, st.Size())
	assert.Equal(t, 3, st.Snapshot().Len())
	assert.Len(t, st.Snapshot().Links(), 1)

	assert.InDelta(t, 2.0, graph.FloatValue(f.g, f.x, v), 1e-9)
	assert.InDelta(t, 1.0, graph.FloatValue(f.g, f.y, v), 1e-9)

	// The re-pointed bx carries B's member id.
	ids := st.Snapshot().MemberIDs()
	for _, tx := range f.g.LinkTransactions(v, x) {
		if graph.StringValue(f.g, f.txName, tx) != "bx" {
			continue
		}
		prov := composite.ProvenanceOf(f.g, tx)
		assert.Equal(t, []string{ids[1]}, prov.Source)
		assert.Empty(t, prov.Destination)
		assert.InDelta(t, 2.0, graph.FloatValue(f.g, f.weight, tx), 1e-9)
	}
}

func TestCreateCompositeNoOp(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	f.link(a, b, true, "ab", 1)
	attrs := len(f.g.Attributes(graph.KindVertex))

	e := composite.New(composite.Options{})
	tests := []struct {
		name string
		ids  []int
	}{
		{"nothing selected", nil},
		{"single plain vertex", []int{a}},
		{"same vertex twice", []int{b, b}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := e.CreateComposite(context.Background(), f.g, tt.ids)
			require.NoError(t, err)
			assert.Equal(t, graph.NotFound, v)
			assert.Equal(t, []string{"A", "B"}, f.names())
			assert.Equal(t, []string{"ab:A->B"}, f.links())
			assert.Len(t, f.g.Attributes(graph.KindVertex), attrs)
		})
	}
}

func TestCreateCompositeUnknownVertex(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)

	_, err := composite.New(composite.Options{}).CreateComposite(context.Background(), f.g, []int{a, 42})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidSelection))
	assert.Equal(t, []string{"A"}, f.names())
}

func TestCreateFromSelection(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	f.vertex("C", 2, 0)
	require.NoError(t, f.g.SetValue(f.sel, a, true))
	require.NoError(t, f.g.SetValue(f.sel, b, true))

	v, err := composite.New(composite.Options{}).CreateFromSelection(context.Background(), f.g)
	require.NoError(t, err)
	assert.Equal(t, 2, f.state(v).Size())
	assert.Equal(t, []string{"A + 1 more...", "C"}, f.names())
	// The composite inherits the first member's values, including selection.
	assert.True(t, graph.BoolValue(f.g, f.sel, v))
}

func TestCreateCompositeOfComposites(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	d := f.vertex("D", 0, 1)
	e1 := f.vertex("E", 1, 1)
	f.link(a, b, true, "ab", 1)
	f.link(d, e1, true, "de", 2)

	ctx := context.Background()
	e := composite.New(composite.Options{})
	c1, err := e.CreateComposite(ctx, f.g, []int{a, b})
	require.NoError(t, err)
	c2, err := e.CreateComposite(ctx, f.g, []int{d, e1})
	require.NoError(t, err)
	require.Equal(t, 2, f.state(c1).Size())
	require.Equal(t, 2, f.state(c2).Size())

	v, err := e.CreateComposite(ctx, f.g, []int{c1, c2})
	require.NoError(t, err)
	assert.Equal(t, 1, f.g.VertexCount())
	assert.Equal(t, 0, f.g.TransactionCount())
	assert.Equal(t, []string{"A + 3 more..."}, f.names())
	st := f.state(v)
	assert.True(t, composite.IsComposite(st))
	assert.Equal(t, 4, st.Size())

	r, err := e.ExpandAll(ctx, f.g)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Changed)
	assert.Equal(t, []string{"A", "B", "D", "E"}, f.names())
	assert.Equal(t, []string{"ab:A->B", "de:D->E"}, f.links())
	for _, u := range graph.Vertices(f.g) {
		assert.InDelta(t, map[string]float64{"A": 0, "B": 1, "D": 0, "E": 1}[graph.StringValue(f.g, f.name, u)],
			graph.FloatValue(f.g, f.x, u), 1e-9)
	}
}

func TestCreateCompositeOfCompositesKeepsCrossLinks(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	d := f.vertex("D", 0, 1)
	e1 := f.vertex("E", 1, 1)
	x := f.vertex("X", 5, 5)
	f.link(a, b, true, "ab", 1)
	f.link(d, e1, true, "de", 2)
	f.link(b, d, true, "bd", 3)
	f.link(e1, x, true, "ex", 4)

	ctx := context.Background()
	e := composite.New(composite.Options{})
	c1, err := e.CreateComposite(ctx, f.g, []int{a, b})
	require.NoError(t, err)
	c2, err := e.CreateComposite(ctx, f.g, []int{d, e1})
	require.NoError(t, err)
	_, err = e.CreateComposite(ctx, f.g, []int{c1, c2})
	require.NoError(t, err)
	assert.Equal(t, []string{"ex:A + 3 more...->X"}, f.links())

	_, err = e.ExpandAll(ctx, f.g)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab:A->B", "bd:B->D", "de:D->E", "ex:E->X"}, f.links())
}

func TestCreateCompositeFromExpandedMember(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	c := f.vertex("C", 2, 0)
	f.vertex("X", 5, 5)

	ctx := context.Background()
	e := composite.New(composite.Options{})
	_, err := e.CreateComposite(ctx, f.g, []int{a, b, c})
	require.NoError(t, err)
	_, err = e.ExpandAll(ctx, f.g)
	require.NoError(t, err)

	v, err := e.CreateComposite(ctx, f.g, []int{f.find("A"), f.find("X")})
	require.NoError(t, err)

	// The rest of A's sibling group can no longer be recontracted.
	assert.Nil(t, f.state(f.find("B")))
	assert.Nil(t, f.state(f.find("C")))

	members := f.state(v).Snapshot().Members()
	require.Len(t, members, 2)
	assert.True(t, members[0].Nested)
	assert.False(t, members[1].Nested)

	_, err = e.Expand(ctx, f.g, v)
	require.NoError(t, err)
	assert.True(t, composite.ComprisesComposite(f.state(f.find("A"))))
	assert.False(t, composite.ComprisesComposite(f.state(f.find("X"))))
}

func TestCreateCompositeSingleCompositeRewraps(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	x := f.vertex("X", 5, 5)
	f.link(a, b, true, "ab", 1)
	f.link(a, x, true, "ax", 2)

	ctx := context.Background()
	e := composite.New(composite.Options{})
	c, err := e.CreateComposite(ctx, f.g, []int{a, b})
	require.NoError(t, err)
	ids := f.state(c).Snapshot().MemberIDs()

	v, err := e.CreateComposite(ctx, f.g, []int{c})
	require.NoError(t, err)
	require.NotEqual(t, graph.NotFound, v)
	assert.Equal(t, ids, f.state(v).Snapshot().MemberIDs())
	assert.Equal(t, []string{"ax:A + 1 more...->X"}, f.links())

	_, err = e.ExpandAll(ctx, f.g)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab:A->B", "ax:A->X"}, f.links())
}

func TestCreateCompositeInterrupted(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	f.link(a, b, true, "ab", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := composite.New(composite.Options{}).CreateComposite(ctx, f.g, []int{a, b})
	require.Error(t, err)
	assert.Equal(t, graph.NotFound, v)
	assert.True(t, errs.Is(err, errs.ErrCodeInterrupted))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A", "B"}, f.names())
	assert.Equal(t, []string{"ab:A->B"}, f.links())
}
