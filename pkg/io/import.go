package io

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/compositor/pkg/composite"
	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
	"github.com/matzehuels/compositor/pkg/observability"
)

var kindFromString = map[string]graph.ElementKind{
	graph.KindVertex.String():      graph.KindVertex,
	graph.KindTransaction.String(): graph.KindTransaction,
}

// ReadJSON decodes a JSON document from r into a new graph.
//
// Every value must belong to a declared attribute and match its type.
// Transactions must reference vertex ids present in the document, and
// composite state must reference an entry of the snapshot table.
//
// Vertex and transaction ids are reassigned. Composite states that shared a
// snapshot in the document share one *composite.Snapshot in the result.
//
// ReadJSON returns an INVALID_FORMAT error for malformed documents. It does
// not close r.
func ReadJSON(r io.Reader) (*graph.Store, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode graph document")
	}

	g := graph.New()
	for _, a := range doc.Attributes {
		if err := errs.ValidateAttributeName(a.Name); err != nil {
			return nil, err
		}
		kind, ok := kindFromString[a.Kind]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "attribute %s: unknown kind %q", a.Name, a.Kind)
		}
		typ, err := graph.ParseAttrType(a.Type)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "attribute %s", a.Name)
		}
		if _, err := g.EnsureAttribute(kind, a.Name, typ); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "attribute %s", a.Name)
		}
	}

	snaps := make([]*composite.Snapshot, len(doc.Snapshots))
	for i, s := range doc.Snapshots {
		snap, err := decodeSnapshot(s)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "snapshot %d", i)
		}
		snaps[i] = snap
	}
	d := &decoder{g: g, snaps: snaps}

	ids := make(map[int]int, len(doc.Vertices))
	for _, v := range doc.Vertices {
		if _, dup := ids[v.ID]; dup {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "vertex %d: duplicate id", v.ID)
		}
		id := g.AddVertex()
		ids[v.ID] = id
		if err := d.setValues(graph.KindVertex, id, v.Values); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "vertex %d", v.ID)
		}
	}

	for _, t := range doc.Transactions {
		src, ok := ids[t.Source]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "transaction %d: unknown source %d", t.ID, t.Source)
		}
		dst, ok := ids[t.Destination]
		if !ok {
			return nil, errs.New(errs.ErrCodeInvalidFormat, "transaction %d: unknown destination %d", t.ID, t.Destination)
		}
		id, err := g.AddTransaction(src, dst, t.Directed)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInternal, err, "transaction %d", t.ID)
		}
		if err := d.setValues(graph.KindTransaction, id, t.Values); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "transaction %d", t.ID)
		}
	}

	return g, nil
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
//
// ImportJSON returns the same validation errors as [ReadJSON] for malformed
// documents, and FILE_NOT_FOUND when path does not exist.
func ImportJSON(ctx context.Context, path string) (g *graph.Store, err error) {
	start := time.Now()
	defer func() {
		var nv, nt int
		if g != nil {
			nv, nt = g.VertexCount(), g.TransactionCount()
		}
		observability.Document().OnDocumentRead(ctx, nv, nt, time.Since(start), err)
	}()

	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

type decoder struct {
	g     *graph.Store
	snaps []*composite.Snapshot
}

func (d *decoder) setValues(kind graph.ElementKind, id int, vals values) error {
	for name, raw := range vals {
		attr := d.g.Attribute(kind, name)
		if attr == graph.NotFound {
			return fmt.Errorf("undeclared attribute %q", name)
		}
		a, _ := d.g.AttributeInfo(attr)
		v, err := d.value(a, raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if v == nil {
			continue
		}
		if err := d.g.SetValue(attr, id, v); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) value(a graph.Attribute, raw json.RawMessage) (any, error) {
	switch {
	case isNull(raw):
		return nil, nil
	case a.Kind == graph.KindVertex && a.Name == composite.StateAttribute && a.Type == graph.TypeObject:
		return d.state(raw)
	case a.Kind == graph.KindTransaction && a.Name == composite.ProvenanceAttribute && a.Type == graph.TypeObject:
		var p provenance
		if err := strictUnmarshal(raw, &p); err != nil {
			return nil, err
		}
		return composite.Provenance{Source: p.Source, Destination: p.Destination}, nil
	default:
		return decodePlain(a.Type, raw)
	}
}

func (d *decoder) state(raw json.RawMessage) (composite.State, error) {
	var s state
	if err := strictUnmarshal(raw, &s); err != nil {
		return nil, err
	}
	var snap *composite.Snapshot
	if s.Snapshot >= 0 {
		if s.Snapshot >= len(d.snaps) {
			return nil, fmt.Errorf("snapshot %d out of range", s.Snapshot)
		}
		snap = d.snaps[s.Snapshot]
	}
	switch s.Kind {
	case stateContracted:
		return &composite.Contracted{Snap: snap, Members: s.Size}, nil
	case stateExpanded:
		return &composite.Expanded{Snap: snap, MemberID: s.Member, Nested: s.Nested, Members: s.Size}, nil
	default:
		return nil, fmt.Errorf("unknown state kind %q", s.Kind)
	}
}

func decodeSnapshot(s snapshot) (*composite.Snapshot, error) {
	vfields, vtypes, err := decodeFields(s.VertexFields)
	if err != nil {
		return nil, err
	}
	lfields, ltypes, err := decodeFields(s.LinkFields)
	if err != nil {
		return nil, err
	}

	members := make([]composite.Member, len(s.Members))
	for i, m := range s.Members {
		vals, err := decodeValues(vtypes, m.Values)
		if err != nil {
			return nil, fmt.Errorf("member %q: %w", m.ID, err)
		}
		members[i] = composite.Member{ID: m.ID, Nested: m.Nested, Values: vals}
	}
	links := make([]composite.Link, len(s.Links))
	for i, l := range s.Links {
		vals, err := decodeValues(ltypes, l.Values)
		if err != nil {
			return nil, fmt.Errorf("link %d: %w", i, err)
		}
		links[i] = composite.Link{Source: l.Source, Destination: l.Destination, Directed: l.Directed, Values: vals}
	}
	return composite.NewSnapshot(members, links, vfields, lfields), nil
}

func decodeFields(in []field) ([]composite.Field, map[string]graph.AttrType, error) {
	fields := make([]composite.Field, len(in))
	types := make(map[string]graph.AttrType, len(in))
	for i, f := range in {
		typ, err := graph.ParseAttrType(f.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		fields[i] = composite.Field{Name: f.Name, Type: typ}
		types[f.Name] = typ
	}
	return fields, types, nil
}

func decodeValues(types map[string]graph.AttrType, in values) (map[string]any, error) {
	out := make(map[string]any, len(in))
	for name, raw := range in {
		typ, ok := types[name]
		if !ok {
			return nil, fmt.Errorf("undeclared field %q", name)
		}
		v, err := decodePlain(typ, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		if v != nil {
			out[name] = v
		}
	}
	return out, nil
}

// decodePlain decodes a value of a non-composite attribute.
func decodePlain(typ graph.AttrType, raw json.RawMessage) (any, error) {
	if isNull(raw) {
		return nil, nil
	}
	var err error
	switch typ {
	case graph.TypeString:
		var s string
		err = json.Unmarshal(raw, &s)
		return s, err
	case graph.TypeFloat:
		var f float64
		err = json.Unmarshal(raw, &f)
		return f, err
	case graph.TypeBool:
		var b bool
		err = json.Unmarshal(raw, &b)
		return b, err
	case graph.TypeInt:
		var n int
		err = json.Unmarshal(raw, &n)
		return n, err
	default:
		var v any
		err = json.Unmarshal(raw, &v)
		return v, err
	}
}

func strictUnmarshal(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isNull(raw json.RawMessage) bool {
	return len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null"
}
