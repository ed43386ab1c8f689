package composite

import (
	"fmt"

	"github.com/matzehuels/compositor/pkg/graph"
)

// State is the composite marker of a vertex. It is either *[Contracted] or
// *[Expanded]; no other implementations exist.
//
// A State value is never edited in place. Operations replace it wholesale.
type State interface {
	graph.Cloner
	// Snapshot returns the snapshot the state refers to.
	Snapshot() *Snapshot
	// Size returns the number of members represented.
	Size() int
	isState()
}

// Contracted marks a composite vertex.
type Contracted struct {
	Snap    *Snapshot
	Members int
}

// Expanded marks a vertex restored from a composite. Siblings restored by the
// same expansion share Snap by reference.
type Expanded struct {
	Snap     *Snapshot
	MemberID string
	// Nested reports whether this member stood for a composite of its own
	// when it was captured.
	Nested  bool
	Members int
}

func (*Contracted) isState() {}
func (*Expanded) isState()   {}

func (c *Contracted) Snapshot() *Snapshot { return c.Snap }
func (c *Contracted) Size() int           { return c.Members }

func (e *Expanded) Snapshot() *Snapshot { return e.Snap }
func (e *Expanded) Size() int           { return e.Members }

// CloneValue deep-copies the state and its snapshot. Snapshots shared inside
// one graph copy stay shared.
func (c *Contracted) CloneValue(cc *graph.CloneContext) any {
	return &Contracted{Snap: c.Snap.clone(cc), Members: c.Members}
}

// CloneValue deep-copies the state and its snapshot.
func (e *Expanded) CloneValue(cc *graph.CloneContext) any {
	return &Expanded{Snap: e.Snap.clone(cc), MemberID: e.MemberID, Nested: e.Nested, Members: e.Members}
}

func (c *Contracted) String() string {
	return fmt.Sprintf("contracted(%d)", c.Members)
}

func (e *Expanded) String() string {
	if e.Nested {
		return fmt.Sprintf("expanded(%d, nested)", e.Members)
	}
	return fmt.Sprintf("expanded(%d)", e.Members)
}

// IsComposite reports whether st marks a composite vertex.
func IsComposite(st State) bool {
	_, ok := st.(*Contracted)
	return ok
}

// ComprisesComposite reports whether st marks a restored member that itself
// stood for a composite.
func ComprisesComposite(st State) bool {
	switch s := st.(type) {
	case *Expanded:
		return s.Nested
	case *Contracted:
		return false
	default:
		return false
	}
}
