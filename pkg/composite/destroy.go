package composite

import (
	"context"
	"errors"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
)

// Destroy removes the composite structure v takes part in.
//
// If v is a composite it is expanded without leaving markers on the restored
// members, and their ids are returned. If v is an expanded member, the
// markers of its whole sibling group are cleared and nil is returned. Any
// other vertex is left alone.
func (e *Engine) Destroy(ctx context.Context, g graph.Graph, v int) (created []int, err error) {
	done := trace(ctx, "destroy", 1)
	changed := 0
	defer func() { done(changed, err) }()

	sc := lookupSchema(g)
	switch st := stateOf(g, sc.state, v).(type) {
	case *Contracted:
		if sc, err = ensureSchema(g); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
		}
		created, err = e.restore(ctx, g, sc, v, st, false, "destroy")
		if err == nil {
			changed = 1
		}
		return created, err
	case *Expanded:
		for _, u := range graph.Vertices(g) {
			if sib, ok := stateOf(g, sc.state, u).(*Expanded); ok && sib.Snap == st.Snap {
				if err := g.ClearValue(sc.state, u); err != nil {
					return nil, internal(err, "clear marker")
				}
			}
		}
		changed = 1
		return nil, nil
	default:
		return nil, nil
	}
}

// DestroyAll flattens g completely: every composite is expanded without
// markers, repeatedly, until none remain, and every expanded marker is
// cleared. Composites whose snapshot fails validation are skipped and stay
// in place.
func (e *Engine) DestroyAll(ctx context.Context, g graph.Graph) (r Result, err error) {
	sc := lookupSchema(g)
	done := trace(ctx, "destroy_all", g.VertexCount())
	defer func() { done(r.Changed, err) }()

	if todo, orphans := groups(g, sc); len(contracted(g, sc)) == 0 && len(todo) == 0 && len(orphans) == 0 {
		return r, nil
	}
	if sc, err = ensureSchema(g); err != nil {
		return r, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
	}

	skipped := make(map[int]bool)
	for {
		var todo []int
		for _, v := range contracted(g, sc) {
			if !skipped[v] {
				todo = append(todo, v)
			}
		}
		if len(todo) == 0 {
			break
		}
		for _, v := range todo {
			if ctx.Err() != nil {
				return r, interrupted(ctx, "destroy")
			}
			c := stateOf(g, sc.state, v).(*Contracted)
			created, err := e.restore(ctx, g, sc, v, c, false, "destroy")
			var serr *errs.SnapshotError
			switch {
			case errors.As(err, &serr):
				skipped[v] = true
				e.skip(ctx, &r, serr)
				continue
			case err != nil:
				return r, err
			}
			r.merge(created, []int{v})
		}
	}

	cleared := make(map[*Snapshot]bool)
	for _, v := range graph.Vertices(g) {
		if st, ok := stateOf(g, sc.state, v).(*Expanded); ok {
			if err := g.ClearValue(sc.state, v); err != nil {
				return r, internal(err, "clear marker")
			}
			if st.Snap == nil {
				r.Changed++
				continue
			}
			cleared[st.Snap] = true
		}
	}
	r.Changed += len(cleared)
	return r, nil
}
