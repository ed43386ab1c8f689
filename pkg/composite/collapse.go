package composite

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/compositor/pkg/graph"
)

// entry is one vertex being folded into a new composite.
type entry struct {
	vertex int
	// snap is set when the vertex is itself a composite; its members are
	// absorbed directly.
	snap *Snapshot
	// member is the record captured for a plain or expanded vertex.
	member Member

	// local maps the member ids this vertex contributes to their ids in the
	// new snapshot. ids lists the new ids in order.
	local map[string]string
	ids   []string
}

// boundary is a transaction that will be re-pointed at the new composite.
type boundary struct {
	// outgoing is true when the composite is the transaction's source.
	outgoing bool
	external int
	directed bool
	values   map[int]any
	prov     Provenance
}

// collapsePlan is the complete set of edits for one collapse, computed
// before the graph is touched.
type collapsePlan struct {
	remove   []int
	clear    []int
	snapshot *Snapshot
	values   map[int]any
	boundary []boundary
}

// planCollapse captures entries into a snapshot and works out how every
// incident transaction is rewritten. It reads the graph only.
//
// # Transactions
//
// Each transaction incident on an entry is classified by its endpoints:
//
//   - Both endpoints inside: the transaction becomes a snapshot link. An
//     endpoint that is an absorbed composite resolves to the members named
//     by its provenance, or to all of its members without provenance, and
//     one link is recorded per resolved pair.
//   - One endpoint inside: the transaction is re-pointed at the new
//     composite with provenance naming the member(s) it came from. The
//     provenance of the external endpoint is kept.
//
// Member ids that collide with ids already in the new snapshot are replaced
// by fresh ones.
func (e *Engine) planCollapse(ctx context.Context, g graph.Graph, sc schema, entries []*entry) (*collapsePlan, error) {
	byVertex := make(map[int]*entry, len(entries))
	for _, en := range entries {
		byVertex[en.vertex] = en
	}

	cc := graph.NewCloneContext()
	used := make(map[string]bool)
	assign := func(id string) string {
		if id == "" || used[id] {
			id = uuid.NewString()
		}
		used[id] = true
		return id
	}

	var (
		members []Member
		links   []Link
	)
	vertexFields := captureFields(g, graph.KindVertex, sc.state)
	linkFields := captureFields(g, graph.KindTransaction, sc.provenance)

	for _, en := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		en.local = make(map[string]string)
		if en.snap == nil {
			id := assign(en.member.ID)
			en.local[en.member.ID] = id
			en.ids = []string{id}
			m := en.member
			m.ID = id
			members = append(members, m)
			continue
		}
		for _, m := range en.snap.members {
			id := assign(m.ID)
			en.local[m.ID] = id
			en.ids = append(en.ids, id)
			m.ID = id
			members = append(members, m)
		}
		for _, l := range en.snap.links {
			l.Source = en.local[l.Source]
			l.Destination = en.local[l.Destination]
			links = append(links, l)
		}
		vertexFields = mergeFields(vertexFields, en.snap.vertexFields)
		linkFields = mergeFields(linkFields, en.snap.linkFields)
	}

	p := &collapsePlan{}
	seen := make(map[int]bool)
	for _, en := range entries {
		p.remove = append(p.remove, en.vertex)
		for _, t := range g.VertexTransactions(en.vertex) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if seen[t] {
				continue
			}
			seen[t] = true

			src, dst := g.TransactionSource(t), g.TransactionDestination(t)
			directed := g.TransactionDirected(t)
			prov := provenanceOf(g, sc.provenance, t)
			values := captureValues(g, cc, graph.KindTransaction, t, sc.provenance)
			inSrc, inDst := byVertex[src], byVertex[dst]

			switch {
			case inSrc != nil && inDst != nil:
				for _, s := range e.resolve(inSrc, prov.Source) {
					for _, d := range e.resolve(inDst, prov.Destination) {
						links = append(links, Link{Source: s, Destination: d, Directed: directed, Values: maps.Clone(values)})
					}
				}
			case inSrc != nil:
				p.boundary = append(p.boundary, boundary{
					outgoing: true,
					external: dst,
					directed: directed,
					values:   byID(g, graph.KindTransaction, values),
					prov:     Provenance{Source: e.resolve(inSrc, prov.Source), Destination: slices.Clone(prov.Destination)},
				})
			default:
				p.boundary = append(p.boundary, boundary{
					external: src,
					directed: directed,
					values:   byID(g, graph.KindTransaction, values),
					prov:     Provenance{Source: slices.Clone(prov.Source), Destination: e.resolve(inDst, prov.Destination)},
				})
			}
		}
	}

	p.snapshot = NewSnapshot(members, links, vertexFields, linkFields)
	p.values = e.compositeValues(g, sc, p.snapshot)
	return p, nil
}

// resolve returns the new member ids an endpoint stands for. Provenance is
// only consulted for absorbed composites; unknown ids in it are ignored.
func (e *Engine) resolve(en *entry, side []string) []string {
	if en.snap == nil || len(side) == 0 {
		return slices.Clone(en.ids)
	}
	var out []string
	for _, id := range side {
		if n, ok := en.local[id]; ok {
			out = append(out, n)
			continue
		}
		e.logger.Warn("ignoring unknown member in provenance", "vertex", en.vertex, "member", id)
	}
	if len(out) == 0 {
		return slices.Clone(en.ids)
	}
	return out
}

// compositeValues returns the attribute values of the new composite vertex:
// the first member's values, a summary identifier and the mean position.
func (e *Engine) compositeValues(g graph.Graph, sc schema, snap *Snapshot) map[int]any {
	leader := snap.members[0]
	values := make(map[int]any)
	for name, v := range leader.Values {
		attr := g.Attribute(graph.KindVertex, name)
		if attr == graph.NotFound {
			continue
		}
		if a, _ := g.AttributeInfo(attr); !a.Type.Accepts(v) {
			e.logger.Debug("dropping leader value of wrong type", "attribute", name)
			continue
		}
		values[attr] = v
	}
	values[sc.identifier] = compositeName(leader, snap.Len())
	mean := snap.Mean()
	values[sc.x] = mean.X
	values[sc.y] = mean.Y
	values[sc.z] = mean.Z
	return values
}

// compositeName labels a composite after its first member.
func compositeName(leader Member, n int) string {
	first, _ := leader.Values[IdentifierAttribute].(string)
	if n <= 1 {
		return first
	}
	return fmt.Sprintf("%s + %d more...", first, n-1)
}

// applyCollapse issues the structural edits of p and returns the new
// composite vertex.
func applyCollapse(g graph.Graph, sc schema, p *collapsePlan) (int, error) {
	for _, v := range p.clear {
		if err := g.ClearValue(sc.state, v); err != nil {
			return graph.NotFound, err
		}
	}
	for _, v := range p.remove {
		if err := g.RemoveVertex(v); err != nil {
			return graph.NotFound, err
		}
	}
	c := g.AddVertex()
	if err := setValues(g, c, p.values); err != nil {
		return graph.NotFound, err
	}
	if err := g.SetValue(sc.state, c, &Contracted{Snap: p.snapshot, Members: p.snapshot.Len()}); err != nil {
		return graph.NotFound, err
	}
	for _, b := range p.boundary {
		src, dst := c, b.external
		if !b.outgoing {
			src, dst = b.external, c
		}
		t, err := g.AddTransaction(src, dst, b.directed)
		if err != nil {
			return graph.NotFound, err
		}
		if err := setValues(g, t, b.values); err != nil {
			return graph.NotFound, err
		}
		if err := g.SetValue(sc.provenance, t, b.prov); err != nil {
			return graph.NotFound, err
		}
	}
	return c, nil
}

func setValues(g graph.Graph, id int, values map[int]any) error {
	for attr, v := range values {
		if err := g.SetValue(attr, id, v); err != nil {
			return err
		}
	}
	return nil
}

// byID re-keys values captured from g by attribute id.
func byID(g graph.Reader, kind graph.ElementKind, values map[string]any) map[int]any {
	out := make(map[int]any, len(values))
	for name, v := range values {
		if attr := g.Attribute(kind, name); attr != graph.NotFound {
			out[attr] = v
		}
	}
	return out
}

// mergeFields appends the fields of extra whose names are not in base.
func mergeFields(base, extra []Field) []Field {
	for _, f := range extra {
		if !slices.ContainsFunc(base, func(b Field) bool { return b.Name == f.Name }) {
			base = append(base, f)
		}
	}
	return base
}
