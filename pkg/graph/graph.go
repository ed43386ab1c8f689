package graph

import "errors"

// NotFound is returned by lookups that find no element.
const NotFound = -1

var (
	// ErrUnknownVertex is returned when a vertex id does not refer to a live vertex.
	ErrUnknownVertex = errors.New("unknown vertex")

	// ErrUnknownTransaction is returned when a transaction id does not refer
	// to a live transaction.
	ErrUnknownTransaction = errors.New("unknown transaction")

	// ErrUnknownAttribute is returned by [Store.SetValue] and friends when the
	// attribute id was never registered with [Store.EnsureAttribute].
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrAttributeTypeMismatch is returned by [Store.EnsureAttribute] when an
	// attribute with the same name already exists with a different type.
	ErrAttributeTypeMismatch = errors.New("attribute type mismatch")

	// ErrInvalidAttributeName is returned when an attribute name is empty.
	ErrInvalidAttributeName = errors.New("attribute name must not be empty")

	// ErrValueType is returned when a value does not match its attribute type.
	ErrValueType = errors.New("value does not match attribute type")
)

// ElementKind distinguishes vertex attributes from transaction attributes.
type ElementKind int

const (
	// KindVertex marks attributes attached to vertices.
	KindVertex ElementKind = iota
	// KindTransaction marks attributes attached to transactions.
	KindTransaction
)

// String returns "vertex" or "transaction".
func (k ElementKind) String() string {
	if k == KindTransaction {
		return "transaction"
	}
	return "vertex"
}

// Direction describes how a transaction is oriented relative to the ids of
// its endpoints.
type Direction int

const (
	// LowToHigh is a directed transaction whose source id is lower than its
	// destination id.
	LowToHigh Direction = iota
	// HighToLow is a directed transaction whose source id is higher than its
	// destination id.
	HighToLow
	// Bidirected is a directed loop (source and destination are the same vertex).
	Bidirected
	// Undirected is a flat transaction with no orientation.
	Undirected
)

// String returns a short name for the direction.
func (d Direction) String() string {
	switch d {
	case LowToHigh:
		return "low_to_high"
	case HighToLow:
		return "high_to_low"
	case Bidirected:
		return "bidirected"
	default:
		return "undirected"
	}
}

// Reader is the read-only view of an attributed multigraph.
//
// Vertex and transaction ids are arena indices: they are only meaningful while
// the element is alive and may be handed out again after deletion.
type Reader interface {
	VertexCount() int
	// VertexAt returns the id of the vertex at position pos in [0, VertexCount).
	VertexAt(pos int) int
	HasVertex(id int) bool

	TransactionCount() int
	// TransactionAt returns the id of the transaction at position pos in
	// [0, TransactionCount).
	TransactionAt(pos int) int
	HasTransaction(id int) bool

	TransactionSource(id int) int
	TransactionDestination(id int) int
	TransactionDirected(id int) bool
	TransactionDirection(id int) Direction

	// VertexTransactions returns every transaction incident on v, including
	// loops once.
	VertexTransactions(v int) []int
	// LinkTransactions returns the transactions between the unordered pair
	// {v1, v2}.
	LinkTransactions(v1, v2 int) []int

	// Attribute returns the id of the named attribute, or NotFound.
	Attribute(kind ElementKind, name string) int
	AttributeInfo(attr int) (Attribute, bool)
	Attributes(kind ElementKind) []Attribute

	// Value returns the value of attr on element id, or the attribute default
	// when unset.
	Value(attr, id int) any
	// HasValue reports whether attr was explicitly set on element id.
	HasValue(attr, id int) bool
}

// Graph is the mutable attributed multigraph the composite engine operates on.
type Graph interface {
	Reader

	AddVertex() int
	RemoveVertex(id int) error
	AddTransaction(src, dst int, directed bool) (int, error)
	RemoveTransaction(id int) error

	// EnsureAttribute returns the id of the named attribute, registering it
	// first if needed.
	EnsureAttribute(kind ElementKind, name string, typ AttrType) (int, error)
	SetValue(attr, id int, v any) error
	ClearValue(attr, id int) error
}

// Selected returns the vertices whose boolean selection attribute is set.
// The result is in vertex position order.
func Selected(g Reader, attr int) []int {
	if attr == NotFound {
		return nil
	}
	var ids []int
	for pos := 0; pos < g.VertexCount(); pos++ {
		v := g.VertexAt(pos)
		if b, ok := g.Value(attr, v).(bool); ok && b {
			ids = append(ids, v)
		}
	}
	return ids
}

// Vertices returns the ids of all vertices in position order.
func Vertices(g Reader) []int {
	ids := make([]int, g.VertexCount())
	for pos := range ids {
		ids[pos] = g.VertexAt(pos)
	}
	return ids
}

// Transactions returns the ids of all transactions in position order.
func Transactions(g Reader) []int {
	ids := make([]int, g.TransactionCount())
	for pos := range ids {
		ids[pos] = g.TransactionAt(pos)
	}
	return ids
}

// Opposite returns the endpoint of transaction t that is not v. For loops it
// returns v.
func Opposite(g Reader, t, v int) int {
	if src := g.TransactionSource(t); src != v {
		return src
	}
	return g.TransactionDestination(t)
}
