package io

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/matzehuels/compositor/pkg/composite"
	"github.com/matzehuels/compositor/pkg/graph"
	"github.com/matzehuels/compositor/pkg/observability"
)

// encoder builds a document, numbering snapshots by first appearance.
type encoder struct {
	g     graph.Reader
	snaps map[*composite.Snapshot]int
	doc   document
}

// WriteJSON encodes g as JSON and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
//
// Vertices and transactions are numbered by position, so the ids in the
// document match the ids [ReadJSON] assigns and those [Position] reports.
func WriteJSON(g graph.Reader, w io.Writer) error {
	enc := &encoder{g: g, snaps: make(map[*composite.Snapshot]int)}
	if err := enc.encode(); err != nil {
		return err
	}

	je := json.NewEncoder(w)
	je.SetIndent("", "  ")
	if err := je.Encode(enc.doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes g to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(ctx context.Context, g graph.Reader, path string) (err error) {
	start := time.Now()
	defer func() {
		observability.Document().OnDocumentWritten(ctx, g.VertexCount(), g.TransactionCount(), time.Since(start), err)
	}()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(g, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (e *encoder) encode() error {
	for _, kind := range []graph.ElementKind{graph.KindVertex, graph.KindTransaction} {
		for _, a := range e.g.Attributes(kind) {
			e.doc.Attributes = append(e.doc.Attributes, attribute{Kind: kind.String(), Name: a.Name, Type: a.Type.String()})
		}
	}

	vattrs := e.g.Attributes(graph.KindVertex)
	vertices := graph.Vertices(e.g)
	pos := make(map[int]int, len(vertices))
	for i, v := range vertices {
		vals, err := e.values(vattrs, v)
		if err != nil {
			return fmt.Errorf("vertex %d: %w", i, err)
		}
		pos[v] = i
		e.doc.Vertices = append(e.doc.Vertices, vertex{ID: i, Values: vals})
	}

	tattrs := e.g.Attributes(graph.KindTransaction)
	for i, t := range graph.Transactions(e.g) {
		vals, err := e.values(tattrs, t)
		if err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		e.doc.Transactions = append(e.doc.Transactions, transaction{
			ID:          i,
			Source:      pos[e.g.TransactionSource(t)],
			Destination: pos[e.g.TransactionDestination(t)],
			Directed:    e.g.TransactionDirected(t),
			Values:      vals,
		})
	}
	return nil
}

func (e *encoder) values(attrs []graph.Attribute, id int) (values, error) {
	var out values
	for _, a := range attrs {
		if !e.g.HasValue(a.ID, id) {
			continue
		}
		raw, err := e.value(e.g.Value(a.ID, id))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.Name, err)
		}
		if out == nil {
			out = make(values)
		}
		out[a.Name] = raw
	}
	return out, nil
}

func (e *encoder) value(v any) (json.RawMessage, error) {
	switch x := v.(type) {
	case composite.State:
		st, err := e.state(x)
		if err != nil {
			return nil, err
		}
		return json.Marshal(st)
	case composite.Provenance:
		return json.Marshal(provenance{Source: x.Source, Destination: x.Destination})
	default:
		return json.Marshal(v)
	}
}

func (e *encoder) state(st composite.State) (state, error) {
	switch s := st.(type) {
	case *composite.Contracted:
		i, err := e.snapshot(s.Snap)
		return state{Kind: stateContracted, Snapshot: i, Size: s.Members}, err
	case *composite.Expanded:
		i, err := e.snapshot(s.Snap)
		return state{Kind: stateExpanded, Snapshot: i, Member: s.MemberID, Nested: s.Nested, Size: s.Members}, err
	default:
		panic(fmt.Sprintf("io: unknown composite state %T", st))
	}
}

// snapshot returns the table index of s, appending it on first use.
func (e *encoder) snapshot(s *composite.Snapshot) (int, error) {
	if s == nil {
		return -1, nil
	}
	if i, ok := e.snaps[s]; ok {
		return i, nil
	}

	var doc snapshot
	for _, f := range s.VertexFields() {
		doc.VertexFields = append(doc.VertexFields, field{Name: f.Name, Type: f.Type.String()})
	}
	for _, f := range s.LinkFields() {
		doc.LinkFields = append(doc.LinkFields, field{Name: f.Name, Type: f.Type.String()})
	}
	for _, m := range s.Members() {
		vals, err := plain(m.Values)
		if err != nil {
			return -1, fmt.Errorf("member %q: %w", m.ID, err)
		}
		doc.Members = append(doc.Members, member{ID: m.ID, Nested: m.Nested, Values: vals})
	}
	for i, l := range s.Links() {
		vals, err := plain(l.Values)
		if err != nil {
			return -1, fmt.Errorf("link %d: %w", i, err)
		}
		doc.Links = append(doc.Links, link{Source: l.Source, Destination: l.Destination, Directed: l.Directed, Values: vals})
	}

	i := len(e.doc.Snapshots)
	e.snaps[s] = i
	e.doc.Snapshots = append(e.doc.Snapshots, doc)
	return i, nil
}

// plain marshals captured values.
func plain(in map[string]any) (values, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(values, len(in))
	for name, v := range in {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = raw
	}
	return out, nil
}

// Position returns the id vertex v of g carries once written by [WriteJSON],
// or graph.NotFound if v is not in g.
func Position(g graph.Reader, v int) int {
	return slices.Index(graph.Vertices(g), v)
}
