package graph

import (
	"fmt"
	"slices"

	"github.com/tidwall/btree"
)

type transaction struct {
	src, dst int
	directed bool
}

// idPool hands out arena indices, recycling the lowest released id first.
type idPool struct {
	free *btree.BTreeG[int]
	next int
}

func newIDPool() *idPool {
	return &idPool{free: btree.NewBTreeG(func(a, b int) bool { return a < b })}
}

func (p *idPool) take() int {
	if id, ok := p.free.PopMin(); ok {
		return id
	}
	id := p.next
	p.next++
	return id
}

func (p *idPool) release(id int) { p.free.Set(id) }

func (p *idPool) copy() *idPool {
	return &idPool{free: p.free.Copy(), next: p.next}
}

// denseSet keeps live ids in a slice for positional iteration with O(1)
// removal. Removal moves the last element into the freed slot, so positions
// are not stable across deletions.
type denseSet struct {
	ids []int
	pos map[int]int
}

func newDenseSet() denseSet { return denseSet{pos: make(map[int]int)} }

func (s *denseSet) add(id int) {
	s.pos[id] = len(s.ids)
	s.ids = append(s.ids, id)
}

func (s *denseSet) remove(id int) {
	i, ok := s.pos[id]
	if !ok {
		return
	}
	last := s.ids[len(s.ids)-1]
	s.ids[i] = last
	s.pos[last] = i
	s.ids = s.ids[:len(s.ids)-1]
	delete(s.pos, id)
}

func (s *denseSet) has(id int) bool {
	_, ok := s.pos[id]
	return ok
}

func (s denseSet) copy() denseSet {
	pos := make(map[int]int, len(s.pos))
	for k, v := range s.pos {
		pos[k] = v
	}
	return denseSet{ids: slices.Clone(s.ids), pos: pos}
}

// Store is an in-memory attributed multigraph implementing [Graph].
//
// The zero value is not usable - use [New]. Store is not safe for concurrent
// use; callers hold their own writer lock for the duration of an edit.
type Store struct {
	vertices     denseSet
	vertexIDs    *idPool
	incident     map[int][]int
	transactions map[int]transaction
	txOrder      denseSet
	txIDs        *idPool

	attrs  []Attribute
	byName [2]map[string]int
	values []map[int]any
}

// New creates an empty graph with no attributes registered.
func New() *Store {
	return &Store{
		vertices:     newDenseSet(),
		vertexIDs:    newIDPool(),
		incident:     make(map[int][]int),
		transactions: make(map[int]transaction),
		txOrder:      newDenseSet(),
		txIDs:        newIDPool(),
		byName:       [2]map[string]int{make(map[string]int), make(map[string]int)},
	}
}

var _ Graph = (*Store)(nil)

// AddVertex allocates a vertex and returns its id. Released ids are reused
// lowest first.
func (s *Store) AddVertex() int {
	id := s.vertexIDs.take()
	s.vertices.add(id)
	s.incident[id] = nil
	return id
}

// RemoveVertex deletes v, every transaction incident on it, and all of its
// attribute values.
func (s *Store) RemoveVertex(v int) error {
	if !s.vertices.has(v) {
		return fmt.Errorf("%w: %d", ErrUnknownVertex, v)
	}
	for _, t := range slices.Clone(s.incident[v]) {
		if err := s.RemoveTransaction(t); err != nil {
			return err
		}
	}
	s.clearElement(KindVertex, v)
	delete(s.incident, v)
	s.vertices.remove(v)
	s.vertexIDs.release(v)
	return nil
}

// AddTransaction connects src to dst. Loops and parallel transactions are
// allowed.
func (s *Store) AddTransaction(src, dst int, directed bool) (int, error) {
	if !s.vertices.has(src) {
		return NotFound, fmt.Errorf("%w: source %d", ErrUnknownVertex, src)
	}
	if !s.vertices.has(dst) {
		return NotFound, fmt.Errorf("%w: destination %d", ErrUnknownVertex, dst)
	}
	id := s.txIDs.take()
	s.transactions[id] = transaction{src: src, dst: dst, directed: directed}
	s.txOrder.add(id)
	s.incident[src] = append(s.incident[src], id)
	if dst != src {
		s.incident[dst] = append(s.incident[dst], id)
	}
	return id, nil
}

// RemoveTransaction deletes transaction t and its attribute values.
func (s *Store) RemoveTransaction(t int) error {
	tx, ok := s.transactions[t]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTransaction, t)
	}
	drop := func(v int) {
		s.incident[v] = slices.DeleteFunc(s.incident[v], func(x int) bool { return x == t })
	}
	drop(tx.src)
	if tx.dst != tx.src {
		drop(tx.dst)
	}
	s.clearElement(KindTransaction, t)
	delete(s.transactions, t)
	s.txOrder.remove(t)
	s.txIDs.release(t)
	return nil
}

func (s *Store) clearElement(kind ElementKind, id int) {
	for _, attr := range s.byName[kind] {
		delete(s.values[attr], id)
	}
}

// VertexCount returns the number of live vertices.
func (s *Store) VertexCount() int { return len(s.vertices.ids) }

// VertexAt returns the vertex at position pos.
func (s *Store) VertexAt(pos int) int { return s.vertices.ids[pos] }

// HasVertex reports whether id is a live vertex.
func (s *Store) HasVertex(id int) bool { return s.vertices.has(id) }

// TransactionCount returns the number of live transactions.
func (s *Store) TransactionCount() int { return len(s.txOrder.ids) }

// TransactionAt returns the transaction at position pos.
func (s *Store) TransactionAt(pos int) int { return s.txOrder.ids[pos] }

// HasTransaction reports whether id is a live transaction.
func (s *Store) HasTransaction(id int) bool {
	_, ok := s.transactions[id]
	return ok
}

// TransactionSource returns the source vertex of t, or NotFound.
func (s *Store) TransactionSource(t int) int {
	if tx, ok := s.transactions[t]; ok {
		return tx.src
	}
	return NotFound
}

// TransactionDestination returns the destination vertex of t, or NotFound.
func (s *Store) TransactionDestination(t int) int {
	if tx, ok := s.transactions[t]; ok {
		return tx.dst
	}
	return NotFound
}

// TransactionDirected reports whether t is directed.
func (s *Store) TransactionDirected(t int) bool { return s.transactions[t].directed }

// TransactionDirection derives the orientation of t from its directed flag
// and the order of its endpoint ids.
func (s *Store) TransactionDirection(t int) Direction {
	tx := s.transactions[t]
	switch {
	case !tx.directed:
		return Undirected
	case tx.src < tx.dst:
		return LowToHigh
	case tx.src > tx.dst:
		return HighToLow
	default:
		return Bidirected
	}
}

// VertexTransactions returns a copy of the transactions incident on v.
func (s *Store) VertexTransactions(v int) []int { return slices.Clone(s.incident[v]) }

// LinkTransactions returns the transactions between v1 and v2 in either
// direction. For v1 == v2 it returns the loops on v1.
func (s *Store) LinkTransactions(v1, v2 int) []int {
	var out []int
	for _, t := range s.incident[v1] {
		tx := s.transactions[t]
		if (tx.src == v1 && tx.dst == v2) || (tx.src == v2 && tx.dst == v1) {
			out = append(out, t)
		}
	}
	return out
}

// EnsureAttribute returns the id of the attribute kind/name, registering it
// with type typ if it does not exist yet.
func (s *Store) EnsureAttribute(kind ElementKind, name string, typ AttrType) (int, error) {
	if name == "" {
		return NotFound, ErrInvalidAttributeName
	}
	if id, ok := s.byName[kind][name]; ok {
		if s.attrs[id].Type != typ {
			return NotFound, fmt.Errorf("%w: %s %q is %s, not %s",
				ErrAttributeTypeMismatch, kind, name, s.attrs[id].Type, typ)
		}
		return id, nil
	}
	id := len(s.attrs)
	s.attrs = append(s.attrs, Attribute{ID: id, Kind: kind, Name: name, Type: typ, Default: defaultFor(typ)})
	s.values = append(s.values, make(map[int]any))
	s.byName[kind][name] = id
	return id, nil
}

// Attribute returns the id of kind/name, or NotFound.
func (s *Store) Attribute(kind ElementKind, name string) int {
	if id, ok := s.byName[kind][name]; ok {
		return id
	}
	return NotFound
}

// AttributeInfo returns the description of attr.
func (s *Store) AttributeInfo(attr int) (Attribute, bool) {
	if attr < 0 || attr >= len(s.attrs) {
		return Attribute{}, false
	}
	return s.attrs[attr], true
}

// Attributes returns the attributes of the given kind in registration order.
func (s *Store) Attributes(kind ElementKind) []Attribute {
	var out []Attribute
	for _, a := range s.attrs {
		if a.Kind == kind {
			out = append(out, a)
		}
	}
	return out
}

// Value returns the value of attr on id, falling back to the attribute default.
func (s *Store) Value(attr, id int) any {
	if attr < 0 || attr >= len(s.attrs) {
		return nil
	}
	if v, ok := s.values[attr][id]; ok {
		return v
	}
	return s.attrs[attr].Default
}

// HasValue reports whether attr was set explicitly on id.
func (s *Store) HasValue(attr, id int) bool {
	if attr < 0 || attr >= len(s.attrs) {
		return false
	}
	_, ok := s.values[attr][id]
	return ok
}

// SetValue stores v for attr on element id. A nil value clears it.
func (s *Store) SetValue(attr, id int, v any) error {
	if v == nil {
		return s.ClearValue(attr, id)
	}
	a, err := s.element(attr, id)
	if err != nil {
		return err
	}
	cv, err := coerce(a.Type, v)
	if err != nil {
		return fmt.Errorf("%s %q: %w", a.Kind, a.Name, err)
	}
	s.values[attr][id] = cv
	return nil
}

// ClearValue removes the explicit value of attr on id.
func (s *Store) ClearValue(attr, id int) error {
	if _, err := s.element(attr, id); err != nil {
		return err
	}
	delete(s.values[attr], id)
	return nil
}

func (s *Store) element(attr, id int) (Attribute, error) {
	a, ok := s.AttributeInfo(attr)
	if !ok {
		return Attribute{}, fmt.Errorf("%w: %d", ErrUnknownAttribute, attr)
	}
	switch a.Kind {
	case KindVertex:
		if !s.vertices.has(id) {
			return Attribute{}, fmt.Errorf("%w: %d", ErrUnknownVertex, id)
		}
	case KindTransaction:
		if !s.HasTransaction(id) {
			return Attribute{}, fmt.Errorf("%w: %d", ErrUnknownTransaction, id)
		}
	}
	return a, nil
}

// Clone returns a deep copy of the graph. Ids are preserved. Object values
// implementing [Cloner] are cloned through one [CloneContext], so values that
// are shared inside s are shared inside the copy and never with s.
func (s *Store) Clone() *Store {
	cc := NewCloneContext()
	out := &Store{
		vertices:     s.vertices.copy(),
		vertexIDs:    s.vertexIDs.copy(),
		incident:     make(map[int][]int, len(s.incident)),
		transactions: make(map[int]transaction, len(s.transactions)),
		txOrder:      s.txOrder.copy(),
		txIDs:        s.txIDs.copy(),
		attrs:        slices.Clone(s.attrs),
		byName:       [2]map[string]int{make(map[string]int), make(map[string]int)},
		values:       make([]map[int]any, len(s.values)),
	}
	for v, ts := range s.incident {
		out.incident[v] = slices.Clone(ts)
	}
	for t, tx := range s.transactions {
		out.transactions[t] = tx
	}
	for k := range s.byName {
		for name, id := range s.byName[k] {
			out.byName[k][name] = id
		}
	}
	for attr, vals := range s.values {
		m := make(map[int]any, len(vals))
		object := s.attrs[attr].Type == TypeObject
		for id, v := range vals {
			if object {
				v = cc.CloneAny(v)
			}
			m[id] = v
		}
		out.values[attr] = m
	}
	return out
}
