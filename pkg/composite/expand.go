package composite

import (
	"context"
	"errors"
	"fmt"
	"slices"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
)

// skipError marks a composite whose snapshot cannot be restored.
type skipError struct{ reason error }

func (s *skipError) Error() string { return s.reason.Error() }

// rewire is a transaction incident on the composite, resolved to the member
// ids each composite endpoint stands for. A nil side is the external vertex.
type rewire struct {
	srcIDs, dstIDs []string
	src, dst       int
	directed       bool
	values         map[int]any
	prov           Provenance
}

// expandPlan is the complete set of edits for one expansion.
type expandPlan struct {
	vertex       int
	state        *Contracted
	memberValues [][]attrValue
	links        []linkPlan
	rewires      []rewire
}

type attrValue struct {
	attr  int
	value any
}

type linkPlan struct {
	src, dst int // member indices
	directed bool
	values   []attrValue
}

// planExpand validates the snapshot of composite v and resolves every
// transaction incident on it. Once the snapshot's attribute schema is known
// to fit g it is registered; nothing else is modified.
func (e *Engine) planExpand(ctx context.Context, g graph.Graph, sc schema, v int, c *Contracted) (*expandPlan, error) {
	snap := c.Snap
	if err := snap.Validate(); err != nil {
		return nil, &skipError{err}
	}

	if err := checkFields(g, graph.KindVertex, snap.vertexFields); err != nil {
		return nil, &skipError{err}
	}
	if err := checkFields(g, graph.KindTransaction, snap.linkFields); err != nil {
		return nil, &skipError{err}
	}
	vattrs, err := ensureFields(g, graph.KindVertex, snap.vertexFields)
	if err != nil {
		return nil, &skipError{err}
	}
	lattrs, err := ensureFields(g, graph.KindTransaction, snap.linkFields)
	if err != nil {
		return nil, &skipError{err}
	}

	p := &expandPlan{vertex: v, state: c}
	for _, m := range snap.members {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.memberValues = append(p.memberValues, resolveValues(vattrs, m.Values))
	}
	for _, l := range snap.links {
		p.links = append(p.links, linkPlan{
			src:      snap.index[l.Source],
			dst:      snap.index[l.Destination],
			directed: l.Directed,
			values:   resolveValues(lattrs, l.Values),
		})
	}

	cc := graph.NewCloneContext()
	for _, t := range g.VertexTransactions(v) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		prov := provenanceOf(g, sc.provenance, t)
		r := rewire{
			src:      g.TransactionSource(t),
			dst:      g.TransactionDestination(t),
			directed: g.TransactionDirected(t),
			values:   byID(g, graph.KindTransaction, captureValues(g, cc, graph.KindTransaction, t, sc.provenance)),
		}
		if r.src == v {
			r.srcIDs = e.members(snap, v, prov.Source)
		} else {
			r.prov.Source = slices.Clone(prov.Source)
		}
		if r.dst == v {
			r.dstIDs = e.members(snap, v, prov.Destination)
		} else {
			r.prov.Destination = slices.Clone(prov.Destination)
		}
		p.rewires = append(p.rewires, r)
	}
	return p, nil
}

// members resolves a provenance side against snap. Without usable provenance
// the transaction belongs to every member.
func (e *Engine) members(snap *Snapshot, v int, side []string) []string {
	var out []string
	for _, id := range side {
		if _, ok := snap.index[id]; ok {
			out = append(out, id)
			continue
		}
		e.logger.Warn("ignoring unknown member in provenance", "vertex", v, "member", id)
	}
	if len(out) == 0 {
		return snap.MemberIDs()
	}
	return out
}

// applyExpand restores the members of p and removes the composite. Markers
// are set on the restored vertices only when mark is true.
func applyExpand(g graph.Graph, sc schema, p *expandPlan, mark bool) ([]int, error) {
	snap := p.state.Snap
	created := make([]int, len(snap.members))
	byMember := make(map[string]int, len(snap.members))
	for i, m := range snap.members {
		u := g.AddVertex()
		created[i] = u
		byMember[m.ID] = u
		for _, av := range p.memberValues[i] {
			if err := g.SetValue(av.attr, u, av.value); err != nil {
				return nil, err
			}
		}
		if mark {
			st := &Expanded{Snap: snap, MemberID: m.ID, Nested: m.Nested, Members: p.state.Members}
			if err := g.SetValue(sc.state, u, st); err != nil {
				return nil, err
			}
		}
	}

	for _, l := range p.links {
		t, err := g.AddTransaction(created[l.src], created[l.dst], l.directed)
		if err != nil {
			return nil, err
		}
		for _, av := range l.values {
			if err := g.SetValue(av.attr, t, av.value); err != nil {
				return nil, err
			}
		}
	}

	for _, r := range p.rewires {
		srcs := []int{r.src}
		if r.srcIDs != nil {
			srcs = lookup(byMember, r.srcIDs)
		}
		dsts := []int{r.dst}
		if r.dstIDs != nil {
			dsts = lookup(byMember, r.dstIDs)
		}
		for _, s := range srcs {
			for _, d := range dsts {
				t, err := g.AddTransaction(s, d, r.directed)
				if err != nil {
					return nil, err
				}
				if err := setValues(g, t, r.values); err != nil {
					return nil, err
				}
				if !r.prov.IsZero() {
					if err := g.SetValue(sc.provenance, t, r.prov.CloneValue(nil)); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if err := g.RemoveVertex(p.vertex); err != nil {
		return nil, err
	}
	return created, nil
}

func lookup(byMember map[string]int, ids []string) []int {
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = byMember[id]
	}
	return out
}

// checkFields reports the first field whose type conflicts with an attribute
// already registered on g.
func checkFields(g graph.Reader, kind graph.ElementKind, fields []Field) error {
	for _, f := range fields {
		a, ok := g.AttributeInfo(g.Attribute(kind, f.Name))
		if ok && a.Type != f.Type {
			return fmt.Errorf("%w: %s %q is %s, not %s", graph.ErrAttributeTypeMismatch, kind, f.Name, a.Type, f.Type)
		}
	}
	return nil
}

// ensureFields registers the captured attribute schema on g and returns the
// attribute id for each field name. Callers run checkFields first.
func ensureFields(g graph.Graph, kind graph.ElementKind, fields []Field) (map[string]int, error) {
	ids := make(map[string]int, len(fields))
	for _, f := range fields {
		id, err := g.EnsureAttribute(kind, f.Name, f.Type)
		if err != nil {
			return nil, err
		}
		ids[f.Name] = id
	}
	return ids, nil
}

func resolveValues(attrs map[string]int, values map[string]any) []attrValue {
	out := make([]attrValue, 0, len(values))
	for name, v := range values {
		out = append(out, attrValue{attr: attrs[name], value: v})
	}
	return out
}

// expandOne restores a single composite.
func (e *Engine) expandOne(ctx context.Context, g graph.Graph, sc schema, v int, c *Contracted, mark bool) ([]int, error) {
	p, err := e.planExpand(ctx, g, sc, v, c)
	if err != nil {
		return nil, err
	}
	created, err := applyExpand(g, sc, p, mark)
	if err != nil {
		return nil, internal(err, "apply expansion")
	}
	e.logger.Debug("expanded composite", "vertex", v, "members", len(created), "rewired", len(p.rewires))
	return created, nil
}

// Expand restores composite v and returns the ids of its members in snapshot
// order. Each member is marked [Expanded] with a reference to v's snapshot.
// If v is not a composite nothing happens and nil is returned.
//
// Transactions incident on v are attached to the members named by their
// provenance. A transaction without provenance on v's side is duplicated
// onto every member, once per member.
//
// A snapshot that fails validation yields an INCONSISTENT_SNAPSHOT error and
// leaves the graph unchanged.
func (e *Engine) Expand(ctx context.Context, g graph.Graph, v int) (created []int, err error) {
	done := trace(ctx, "expand", 1)
	defer func() { done(boolInt(created != nil), err) }()

	sc := lookupSchema(g)
	c, ok := stateOf(g, sc.state, v).(*Contracted)
	if !ok {
		return nil, nil
	}
	sc, err = ensureSchema(g)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
	}
	return e.restore(ctx, g, sc, v, c, true, "expand")
}

// restore wraps expandOne errors in the package's coded errors.
func (e *Engine) restore(ctx context.Context, g graph.Graph, sc schema, v int, c *Contracted, mark bool, op string) ([]int, error) {
	created, err := e.expandOne(ctx, g, sc, v, c, mark)
	var skip *skipError
	switch {
	case err == nil:
		return created, nil
	case errors.As(err, &skip):
		return nil, &errs.SnapshotError{Vertex: v, Reason: skip.Error()}
	case ctx.Err() != nil:
		return nil, interrupted(ctx, op)
	default:
		return nil, err
	}
}

// ExpandAll restores every composite in g. Composites whose snapshot fails
// validation are logged, reported in [Result.Skipped] and left in place;
// the rest are still expanded.
//
// Running ExpandAll on a graph without composites changes nothing.
func (e *Engine) ExpandAll(ctx context.Context, g graph.Graph) (r Result, err error) {
	sc := lookupSchema(g)
	targets := contracted(g, sc)
	done := trace(ctx, "expand_all", len(targets))
	defer func() { done(r.Changed, err) }()

	if len(targets) == 0 {
		return r, nil
	}
	if sc, err = ensureSchema(g); err != nil {
		return r, errs.Wrap(errs.ErrCodeInvalidInput, err, "register composite attributes")
	}
	for _, v := range targets {
		if ctx.Err() != nil {
			return r, interrupted(ctx, "expand")
		}
		c := stateOf(g, sc.state, v).(*Contracted)
		created, err := e.restore(ctx, g, sc, v, c, true, "expand")
		var serr *errs.SnapshotError
		switch {
		case errors.As(err, &serr):
			e.skip(ctx, &r, serr)
			continue
		case err != nil:
			return r, err
		}
		r.merge(created, []int{v})
	}
	return r, nil
}

// contracted returns the composite vertices of g in position order.
func contracted(g graph.Reader, sc schema) []int {
	if sc.state == graph.NotFound {
		return nil
	}
	var out []int
	for _, v := range graph.Vertices(g) {
		if IsComposite(stateOf(g, sc.state, v)) {
			out = append(out, v)
		}
	}
	return out
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
