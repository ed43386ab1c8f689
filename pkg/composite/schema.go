package composite

import (
	"github.com/matzehuels/compositor/pkg/graph"
)

// Attribute names read and written by the engine.
const (
	// IdentifierAttribute is the display name of vertices and transactions.
	IdentifierAttribute = "Identifier"
	// SelectedAttribute is the vertex selection flag read by
	// [Engine.CreateFromSelection].
	SelectedAttribute = "selected"
	XAttribute        = "x"
	YAttribute        = "y"
	ZAttribute        = "z"
	// StateAttribute holds the [State] of a vertex.
	StateAttribute = "composite_state"
	// ProvenanceAttribute holds the [Provenance] of a transaction.
	ProvenanceAttribute = "composite_provenance"
)

// schema holds the attribute ids the engine uses on one graph. Ids are
// graph.NotFound when the attribute is not registered.
type schema struct {
	identifier int
	x, y, z    int
	state      int
	provenance int
}

// lookupSchema resolves the engine's attributes without registering any.
func lookupSchema(g graph.Reader) schema {
	return schema{
		identifier: g.Attribute(graph.KindVertex, IdentifierAttribute),
		x:          g.Attribute(graph.KindVertex, XAttribute),
		y:          g.Attribute(graph.KindVertex, YAttribute),
		z:          g.Attribute(graph.KindVertex, ZAttribute),
		state:      g.Attribute(graph.KindVertex, StateAttribute),
		provenance: g.Attribute(graph.KindTransaction, ProvenanceAttribute),
	}
}

// ensureSchema registers the engine's attributes on g.
func ensureSchema(g graph.Graph) (schema, error) {
	var s schema
	fields := []struct {
		dst  *int
		kind graph.ElementKind
		name string
		typ  graph.AttrType
	}{
		{&s.identifier, graph.KindVertex, IdentifierAttribute, graph.TypeString},
		{&s.x, graph.KindVertex, XAttribute, graph.TypeFloat},
		{&s.y, graph.KindVertex, YAttribute, graph.TypeFloat},
		{&s.z, graph.KindVertex, ZAttribute, graph.TypeFloat},
		{&s.state, graph.KindVertex, StateAttribute, graph.TypeObject},
		{&s.provenance, graph.KindTransaction, ProvenanceAttribute, graph.TypeObject},
	}
	for _, f := range fields {
		id, err := g.EnsureAttribute(f.kind, f.name, f.typ)
		if err != nil {
			return schema{}, err
		}
		*f.dst = id
	}
	return s, nil
}

// StateOf returns the composite state of vertex v, or nil if it has none.
func StateOf(g graph.Reader, v int) State {
	return stateOf(g, g.Attribute(graph.KindVertex, StateAttribute), v)
}

func stateOf(g graph.Reader, attr, v int) State {
	if attr == graph.NotFound {
		return nil
	}
	st, _ := g.Value(attr, v).(State)
	return st
}

// ProvenanceOf returns the provenance of transaction t. The zero value means
// no endpoint carries provenance.
func ProvenanceOf(g graph.Reader, t int) Provenance {
	return provenanceOf(g, g.Attribute(graph.KindTransaction, ProvenanceAttribute), t)
}

func provenanceOf(g graph.Reader, attr, t int) Provenance {
	if attr == graph.NotFound {
		return Provenance{}
	}
	p, _ := g.Value(attr, t).(Provenance)
	return p
}

// captureValues returns the explicitly set values of every attribute of the
// given kind on element id, skipping the engine's own marker attribute.
// Object values are cloned through cc so later edits to the graph cannot
// reach the copy.
func captureValues(g graph.Reader, cc *graph.CloneContext, kind graph.ElementKind, id, skip int) map[string]any {
	values := make(map[string]any)
	for _, a := range g.Attributes(kind) {
		if a.ID == skip || !g.HasValue(a.ID, id) {
			continue
		}
		v := g.Value(a.ID, id)
		if a.Type == graph.TypeObject {
			v = cc.CloneAny(v)
		}
		values[a.Name] = v
	}
	return values
}

// captureFields returns the schema of every attribute of the given kind
// except skip.
func captureFields(g graph.Reader, kind graph.ElementKind, skip int) []Field {
	var fields []Field
	for _, a := range g.Attributes(kind) {
		if a.ID == skip {
			continue
		}
		fields = append(fields, Field{Name: a.Name, Type: a.Type})
	}
	return fields
}
