package composite

import (
	"context"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
)

// CreateComposite merges the given vertices into one new composite vertex
// and returns its id.
//
// Vertices may be plain, expanded members, or composites. A composite in the
// selection is flattened: its members join the new composite directly rather
// than as a nested composite. An expanded member joins with its current
// values and is flagged as nested; the rest of its sibling group loses its
// markers, since that group can no longer be recontracted as a whole.
//
// Transactions among the selected vertices are captured and removed.
// Transactions to the rest of the graph are re-pointed at the new vertex one
// for one, keeping direction and attribute values.
//
// Selecting nothing, or a single vertex that is not a composite, changes
// nothing and returns graph.NotFound. Unknown ids are an INVALID_SELECTION
// error. On cancellation the graph is unchanged and an INTERRUPTED error is
// returned.
func (e *Engine) CreateComposite(ctx context.Context, g graph.Graph, ids []int) (v int, err error) {
	done := trace(ctx, "create", len(ids))
	defer func() {
		changed := 0
		if v != graph.NotFound {
			changed = 1
		}
		done(changed, err)
	}()

	ids = dedupe(ids)
	for _, id := range ids {
		if !g.HasVertex(id) {
			return graph.NotFound, errs.New(errs.ErrCodeInvalidSelection, "vertex %d is not in the graph", id)
		}
	}

	sc := lookupSchema(g)
	if len(ids) == 0 || (len(ids) == 1 && !IsComposite(stateOf(g, sc.state, ids[0]))) {
		e.logger.Debug("nothing to composite", "selected", len(ids))
		return graph.NotFound, nil
	}

	entries := make([]*entry, 0, len(ids))
	inSelection := make(map[int]bool, len(ids))
	siblings := make(map[*Snapshot]bool)
	cc := graph.NewCloneContext()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return graph.NotFound, interrupted(ctx, "create composite")
		}
		inSelection[id] = true
		switch st := stateOf(g, sc.state, id).(type) {
		case *Contracted:
			if err := st.Snap.Validate(); err != nil {
				return graph.NotFound, &errs.SnapshotError{Vertex: id, Reason: err.Error()}
			}
			entries = append(entries, &entry{vertex: id, snap: st.Snap})
		case *Expanded:
			siblings[st.Snap] = true
			entries = append(entries, &entry{vertex: id, member: Member{
				ID:     st.MemberID,
				Nested: true,
				Values: captureValues(g, cc, graph.KindVertex, id, sc.state),
			}})
		default:
			entries = append(entries, &entry{vertex: id, member: Member{
				Values: captureValues(g, cc, graph.KindVertex, id, sc.state),
			}})
		}
	}

	sc, err = ensureSchema(g)
	if err != nil {
		return graph.NotFound, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
	}
	p, err := e.planCollapse(ctx, g, sc, entries)
	if err != nil {
		if ctx.Err() != nil {
			return graph.NotFound, interrupted(ctx, "create composite")
		}
		return graph.NotFound, internal(err, "plan composite")
	}
	if len(siblings) > 0 {
		for _, u := range graph.Vertices(g) {
			if inSelection[u] {
				continue
			}
			if st, ok := stateOf(g, sc.state, u).(*Expanded); ok && siblings[st.Snap] {
				p.clear = append(p.clear, u)
			}
		}
	}

	v, err = applyCollapse(g, sc, p)
	if err != nil {
		return graph.NotFound, internal(err, "apply composite")
	}
	e.logger.Debug("created composite", "vertex", v, "members", p.snapshot.Len(), "boundary", len(p.boundary))
	return v, nil
}

// CreateFromSelection composites the vertices whose selected attribute is
// set. See [Engine.CreateComposite].
func (e *Engine) CreateFromSelection(ctx context.Context, g graph.Graph) (int, error) {
	return e.CreateComposite(ctx, g, graph.Selected(g, g.Attribute(graph.KindVertex, SelectedAttribute)))
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
