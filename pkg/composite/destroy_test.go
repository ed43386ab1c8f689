package composite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
)

func TestDestroyContracted(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	x := f.vertex("X", 5, 5)
	f.link(a, b, true, "ab", 1)
	f.link(a, x, true, "ax", 2)

	ctx := context.Background()
	e := composite.New(composite.Options{})
	v, err := e.CreateComposite(ctx, f.g, []int{a, b})
	require.NoError(t, err)

	created, err := e.Destroy(ctx, f.g, v)
	require.NoError(t, err)
	assert.Len(t, created, 2)
	assert.Equal(t, []string{"A", "B", "X"}, f.names())
	assert.Equal(t, []string{"ab:A->B", "ax:A->X"}, f.links())
	for _, u := range graph.Vertices(f.g) {
		assert.Nil(t, f.state(u))
	}

	r, err := e.ContractAll(ctx, f.g)
	require.NoError(t, err)
	assert.Zero(t, r.Changed)
}

func TestDestroyExpanded(t *testing.T) {
	f, e := expanded(t, composite.Options{})
	ctx := context.Background()

	created, err := e.Destroy(ctx, f.g, f.find("B"))
	require.NoError(t, err)
	assert.Nil(t, created)
	for _, u := range graph.Vertices(f.g) {
		assert.Nil(t, f.state(u))
	}
	assert.Equal(t, []string{"A", "B", "C", "X"}, f.names())

	created, err = e.Destroy(ctx, f.g, f.find("X"))
	require.NoError(t, err)
	assert.Nil(t, created)
}

func TestDestroyAll(t *testing.T) {
	f := newFixture(t)
	a := f.vertex("A", 0, 0)
	b := f.vertex("B", 1, 0)
	d := f.vertex("D", 0, 1)
	e1 := f.vertex("E", 1, 1)
	g1 := f.vertex("G", 2, 2)
	h := f.vertex("H", 3, 3)
	f.link(a, b, true, "ab", 1)
	f.link(d, e1, true, "de", 2)
	f.link(b, g1, true, "bg", 3)

	ctx := context.Background()
	e := composite.New(composite.Options{})

	// A nested composite, a plain composite and an expanded group.
	c1, err := e.CreateComposite(ctx, f.g, []int{a, b})
	require.NoError(t, err)
	c2, err := e.CreateComposite(ctx, f.g, []int{g1, h})
	require.NoError(t, err)
	_, err = e.CreateComposite(ctx, f.g, []int{c1, c2})
	require.NoError(t, err)
	c3, err := e.CreateComposite(ctx, f.g, []int{d, e1})
	require.NoError(t, err)
	_, err = e.Expand(ctx, f.g, c3)
	require.NoError(t, err)

	r, err := e.DestroyAll(ctx, f.g)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Changed)
	assert.Empty(t, r.Skipped)

	assert.Equal(t, []string{"A", "B", "D", "E", "G", "H"}, f.names())
	assert.Equal(t, []string{"ab:A->B", "bg:B->G", "de:D->E"}, f.links())
	for _, u := range graph.Vertices(f.g) {
		assert.Nil(t, f.state(u))
	}

	r, err = e.ExpandAll(ctx, f.g)
	require.NoError(t, err)
	assert.Zero(t, r.Changed)
}
