package composite

import (
	"slices"

	"github.com/matzehuels/compositor/pkg/graph"
)

// Provenance records which members each endpoint of a transaction stands
// for. It is only meaningful for endpoints that are composite vertices.
//
// An empty side carries no provenance: expansion attaches the transaction to
// every member of that composite.
type Provenance struct {
	Source      []string
	Destination []string
}

// IsZero reports whether neither side carries provenance.
func (p Provenance) IsZero() bool {
	return len(p.Source) == 0 && len(p.Destination) == 0
}

// side returns the member ids of the source side when src is true and of
// the destination side otherwise.
func (p Provenance) side(src bool) []string {
	if src {
		return p.Source
	}
	return p.Destination
}

// CloneValue copies the member id slices.
func (p Provenance) CloneValue(*graph.CloneContext) any {
	return Provenance{Source: slices.Clone(p.Source), Destination: slices.Clone(p.Destination)}
}
