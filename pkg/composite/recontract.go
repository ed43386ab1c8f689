package composite

import (
	"context"
	"errors"
	"slices"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
)

// group is the set of present vertices restored from one snapshot.
type group struct {
	snap     *Snapshot
	vertices []int
}

// groups collects expanded vertices by snapshot identity, ordered by first
// appearance. Within a group vertices follow the snapshot's member order so
// the recontracted composite keeps its original leader. Expanded vertices
// without a snapshot belong to no group and are returned as orphans.
func groups(g graph.Reader, sc schema) (out []*group, orphans []int) {
	if sc.state == graph.NotFound {
		return nil, nil
	}
	bySnap := make(map[*Snapshot]*group)
	for _, v := range graph.Vertices(g) {
		st, ok := stateOf(g, sc.state, v).(*Expanded)
		if !ok {
			continue
		}
		if st.Snap == nil {
			orphans = append(orphans, v)
			continue
		}
		gr := bySnap[st.Snap]
		if gr == nil {
			gr = &group{snap: st.Snap}
			bySnap[st.Snap] = gr
			out = append(out, gr)
		}
		gr.vertices = append(gr.vertices, v)
	}
	for _, gr := range out {
		rank := func(v int) int {
			id := stateOf(g, sc.state, v).(*Expanded).MemberID
			if i, ok := gr.snap.index[id]; ok {
				return i
			}
			return gr.snap.Len()
		}
		slices.SortStableFunc(gr.vertices, func(a, b int) int { return rank(a) - rank(b) })
	}
	return out, orphans
}

// orphaned reports an expanded vertex that has no snapshot to group it by.
func orphaned(v int) *errs.SnapshotError {
	return &errs.SnapshotError{Vertex: v, Reason: "missing snapshot"}
}

// recontract collapses one group. It returns the new composite, or
// graph.NotFound when the group was released instead.
func (e *Engine) recontract(ctx context.Context, g graph.Graph, sc schema, gr *group) (int, error) {
	if len(gr.vertices) == 1 && e.opts.SingleMember == SingleMemberRelease {
		v := gr.vertices[0]
		if err := g.ClearValue(sc.state, v); err != nil {
			return graph.NotFound, internal(err, "release member")
		}
		e.logger.Debug("released single member", "vertex", v)
		return graph.NotFound, nil
	}

	cc := graph.NewCloneContext()
	entries := make([]*entry, 0, len(gr.vertices))
	for _, v := range gr.vertices {
		if err := ctx.Err(); err != nil {
			return graph.NotFound, interrupted(ctx, "contract")
		}
		st := stateOf(g, sc.state, v).(*Expanded)
		if err := errs.ValidateMemberID(st.MemberID); err != nil {
			return graph.NotFound, &errs.SnapshotError{Vertex: v, Reason: errs.UserMessage(err)}
		}
		entries = append(entries, &entry{vertex: v, member: Member{
			ID:     st.MemberID,
			Nested: st.Nested,
			Values: captureValues(g, cc, graph.KindVertex, v, sc.state),
		}})
	}

	p, err := e.planCollapse(ctx, g, sc, entries)
	if err != nil {
		if ctx.Err() != nil {
			return graph.NotFound, interrupted(ctx, "contract")
		}
		return graph.NotFound, internal(err, "plan contraction")
	}
	v, err := applyCollapse(g, sc, p)
	if err != nil {
		return graph.NotFound, internal(err, "apply contraction")
	}
	e.logger.Debug("recontracted group", "vertex", v, "members", p.snapshot.Len(), "dropped", gr.snap.Len()-p.snapshot.Len())
	return v, nil
}

// Contract recollapses the expanded group v belongs to and returns the new
// composite vertex. Members deleted since the expansion are dropped and the
// new composite's size counts only the survivors. Transactions added among
// the members while expanded become internal; those to other vertices are
// re-pointed with provenance.
//
// If v is not an expanded member, or the group has a single survivor and the
// engine releases single members, graph.NotFound is returned. A member
// without a snapshot yields an INCONSISTENT_SNAPSHOT error.
func (e *Engine) Contract(ctx context.Context, g graph.Graph, v int) (c int, err error) {
	done := trace(ctx, "contract", 1)
	defer func() { done(boolInt(c != graph.NotFound), err) }()

	sc := lookupSchema(g)
	st, ok := stateOf(g, sc.state, v).(*Expanded)
	if !ok {
		return graph.NotFound, nil
	}
	if st.Snap == nil {
		return graph.NotFound, orphaned(v)
	}
	if sc, err = ensureSchema(g); err != nil {
		return graph.NotFound, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
	}
	todo, _ := groups(g, sc)
	for _, gr := range todo {
		if gr.snap == st.Snap {
			return e.recontract(ctx, g, sc, gr)
		}
	}
	return graph.NotFound, nil
}

// ContractAll recollapses every expanded group in g. Groups with an invalid
// member marker, and members without a snapshot, are logged, reported in
// [Result.Skipped] and left expanded.
//
// Running ContractAll on a graph without expanded members changes nothing.
func (e *Engine) ContractAll(ctx context.Context, g graph.Graph) (r Result, err error) {
	sc := lookupSchema(g)
	todo, orphans := groups(g, sc)
	done := trace(ctx, "contract_all", len(todo)+len(orphans))
	defer func() { done(r.Changed, err) }()

	for _, v := range orphans {
		e.skip(ctx, &r, orphaned(v))
	}
	if len(todo) == 0 {
		return r, nil
	}
	if sc, err = ensureSchema(g); err != nil {
		return r, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
	}
	for _, gr := range todo {
		if ctx.Err() != nil {
			return r, interrupted(ctx, "contract")
		}
		v, err := e.recontract(ctx, g, sc, gr)
		var serr *errs.SnapshotError
		switch {
		case errors.As(err, &serr):
			e.skip(ctx, &r, serr)
			continue
		case err != nil:
			return r, err
		}
		if v == graph.NotFound {
			r.Changed++
			continue
		}
		r.merge([]int{v}, gr.vertices)
	}
	return r, nil
}
