package composite

import (
	"fmt"
	"maps"
	"slices"

	errs "github.com/matzehuels/compositor/pkg/errors"
	"github.com/matzehuels/compositor/pkg/graph"
)

// Field is the name and type of a captured attribute.
type Field struct {
	Name string
	Type graph.AttrType
}

// Member is the captured record of one constituent vertex.
type Member struct {
	// ID is the stable member id. Vertex ids are not stable across
	// contraction and expansion, so every reference to a member goes through
	// this key.
	ID string
	// Nested reports whether the member itself stood for an earlier
	// composite when it was captured.
	Nested bool
	// Values maps attribute names to the explicitly set values at capture
	// time.
	Values map[string]any
}

// Link is a captured internal transaction between two members.
type Link struct {
	Source      string
	Destination string
	Directed    bool
	Values      map[string]any
}

// Position is a point in layout space.
type Position struct {
	X, Y, Z float64
}

// Snapshot is the immutable record of a composite's members and the
// transactions among them. A *Snapshot is shared by reference between the
// composite vertex and, after expansion, every restored member; it is never
// modified after [NewSnapshot] returns.
type Snapshot struct {
	members      []Member
	links        []Link
	vertexFields []Field
	linkFields   []Field
	mean         Position
	index        map[string]int
}

// NewSnapshot builds a snapshot from the given records. The inputs are copied.
// The mean position is computed from the members' x, y and z values.
func NewSnapshot(members []Member, links []Link, vertexFields, linkFields []Field) *Snapshot {
	s := &Snapshot{
		members:      make([]Member, len(members)),
		links:        make([]Link, len(links)),
		vertexFields: slices.Clone(vertexFields),
		linkFields:   slices.Clone(linkFields),
		index:        make(map[string]int, len(members)),
	}
	for i, m := range members {
		m.Values = maps.Clone(m.Values)
		s.members[i] = m
		if _, dup := s.index[m.ID]; !dup {
			s.index[m.ID] = i
		}
	}
	for i, l := range links {
		l.Values = maps.Clone(l.Values)
		s.links[i] = l
	}
	s.mean = centroid(s.members)
	return s
}

func centroid(members []Member) Position {
	var p Position
	if len(members) == 0 {
		return p
	}
	for _, m := range members {
		p.X += toFloat(m.Values[XAttribute])
		p.Y += toFloat(m.Values[YAttribute])
		p.Z += toFloat(m.Values[ZAttribute])
	}
	n := float64(len(members))
	return Position{X: p.X / n, Y: p.Y / n, Z: p.Z / n}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

// Len returns the number of members.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.members)
}

// Members returns a copy of the member records in capture order.
func (s *Snapshot) Members() []Member {
	out := make([]Member, len(s.members))
	for i, m := range s.members {
		m.Values = maps.Clone(m.Values)
		out[i] = m
	}
	return out
}

// Member returns the record with the given id.
func (s *Snapshot) Member(id string) (Member, bool) {
	i, ok := s.index[id]
	if !ok {
		return Member{}, false
	}
	m := s.members[i]
	m.Values = maps.Clone(m.Values)
	return m, true
}

// MemberIDs returns the member ids in capture order.
func (s *Snapshot) MemberIDs() []string {
	ids := make([]string, len(s.members))
	for i, m := range s.members {
		ids[i] = m.ID
	}
	return ids
}

// Links returns a copy of the internal transaction records.
func (s *Snapshot) Links() []Link {
	out := make([]Link, len(s.links))
	for i, l := range s.links {
		l.Values = maps.Clone(l.Values)
		out[i] = l
	}
	return out
}

// VertexFields returns the vertex attribute schema captured with the members.
func (s *Snapshot) VertexFields() []Field { return slices.Clone(s.vertexFields) }

// LinkFields returns the transaction attribute schema captured with the links.
func (s *Snapshot) LinkFields() []Field { return slices.Clone(s.linkFields) }

// Mean returns the centroid of the members' positions.
func (s *Snapshot) Mean() Position { return s.mean }

// Validate checks that the snapshot can be expanded: it has members, member
// ids are well formed and unique, links reference known members, and every
// value matches its field type.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("missing snapshot")
	}
	if len(s.members) == 0 {
		return fmt.Errorf("no members")
	}
	vf, err := fieldTypes(s.vertexFields)
	if err != nil {
		return err
	}
	lf, err := fieldTypes(s.linkFields)
	if err != nil {
		return err
	}
	seen := make(map[string]bool, len(s.members))
	for i, m := range s.members {
		if err := errs.ValidateMemberID(m.ID); err != nil {
			return fmt.Errorf("member %d: %s", i, errs.UserMessage(err))
		}
		if seen[m.ID] {
			return fmt.Errorf("duplicate member id %q", m.ID)
		}
		seen[m.ID] = true
		if err := checkValues(vf, m.Values); err != nil {
			return fmt.Errorf("member %q: %w", m.ID, err)
		}
	}
	for i, l := range s.links {
		if !seen[l.Source] || !seen[l.Destination] {
			return fmt.Errorf("link %d references unknown member", i)
		}
		if err := checkValues(lf, l.Values); err != nil {
			return fmt.Errorf("link %d: %w", i, err)
		}
	}
	return nil
}

func fieldTypes(fields []Field) (map[string]graph.AttrType, error) {
	types := make(map[string]graph.AttrType, len(fields))
	for _, f := range fields {
		if err := errs.ValidateAttributeName(f.Name); err != nil {
			return nil, fmt.Errorf("%s", errs.UserMessage(err))
		}
		types[f.Name] = f.Type
	}
	return types, nil
}

func checkValues(types map[string]graph.AttrType, values map[string]any) error {
	for name, v := range values {
		t, ok := types[name]
		if !ok {
			return fmt.Errorf("value for undeclared attribute %q", name)
		}
		if !t.Accepts(v) {
			return fmt.Errorf("attribute %q: %T is not %s", name, v, t)
		}
	}
	return nil
}

// clone deep-copies s once per clone context.
func (s *Snapshot) clone(cc *graph.CloneContext) *Snapshot {
	if s == nil {
		return nil
	}
	return cc.Once(s, func() any {
		out := &Snapshot{
			members:      make([]Member, len(s.members)),
			links:        make([]Link, len(s.links)),
			vertexFields: slices.Clone(s.vertexFields),
			linkFields:   slices.Clone(s.linkFields),
			mean:         s.mean,
			index:        maps.Clone(s.index),
		}
		for i, m := range s.members {
			m.Values = cloneValues(cc, m.Values)
			out.members[i] = m
		}
		for i, l := range s.links {
			l.Values = cloneValues(cc, l.Values)
			out.links[i] = l
		}
		return out
	}).(*Snapshot)
}

func cloneValues(cc *graph.CloneContext, values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = cc.CloneAny(v)
	}
	return out
}
