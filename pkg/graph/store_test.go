package graph

import (
	"errors"
	"slices"
	"testing"
)

func TestAddRemoveVertexReusesLowestID(t *testing.T) {
	g := New()
	a, b, c := g.AddVertex(), g.AddVertex(), g.AddVertex()
	if a != 0 || b != 1 || c != 2 {
		t.Fatalf("ids = %d, %d, %d, want 0, 1, 2", a, b, c)
	}

	if err := g.RemoveVertex(c); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveVertex(a); err != nil {
		t.Fatal(err)
	}
	if g.HasVertex(a) || g.VertexCount() != 1 {
		t.Fatalf("VertexCount() = %d after removals, want 1", g.VertexCount())
	}

	if got := g.AddVertex(); got != a {
		t.Errorf("AddVertex() = %d, want recycled %d", got, a)
	}
	if got := g.AddVertex(); got != c {
		t.Errorf("AddVertex() = %d, want recycled %d", got, c)
	}
	if got := g.AddVertex(); got != 3 {
		t.Errorf("AddVertex() = %d, want 3", got)
	}

	if err := g.RemoveVertex(42); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("RemoveVertex(42) = %v, want ErrUnknownVertex", err)
	}
}

func TestRemoveVertexDropsIncidentTransactions(t *testing.T) {
	g := New()
	a, b, c := g.AddVertex(), g.AddVertex(), g.AddVertex()
	ab, _ := g.AddTransaction(a, b, true)
	bc, _ := g.AddTransaction(b, c, false)
	loop, _ := g.AddTransaction(b, b, true)
	ca, _ := g.AddTransaction(c, a, true)

	if err := g.RemoveVertex(b); err != nil {
		t.Fatal(err)
	}
	for _, tx := range []int{ab, bc, loop} {
		if g.HasTransaction(tx) {
			t.Errorf("transaction %d should be gone", tx)
		}
	}
	if !g.HasTransaction(ca) || g.TransactionCount() != 1 {
		t.Errorf("TransactionCount() = %d, want only %d left", g.TransactionCount(), ca)
	}
	if got := g.VertexTransactions(a); !slices.Equal(got, []int{ca}) {
		t.Errorf("VertexTransactions(a) = %v, want [%d]", got, ca)
	}
}

func TestAddTransactionUnknownEndpoint(t *testing.T) {
	g := New()
	a := g.AddVertex()
	if _, err := g.AddTransaction(a, 7, true); !errors.Is(err, ErrUnknownVertex) {
		t.Errorf("AddTransaction to unknown vertex = %v, want ErrUnknownVertex", err)
	}
	if err := g.RemoveTransaction(3); !errors.Is(err, ErrUnknownTransaction) {
		t.Errorf("RemoveTransaction(3) = %v, want ErrUnknownTransaction", err)
	}
}

func TestTransactionDirection(t *testing.T) {
	g := New()
	a, b := g.AddVertex(), g.AddVertex()

	tests := []struct {
		name     string
		src, dst int
		directed bool
		want     Direction
	}{
		{"low to high", a, b, true, LowToHigh},
		{"high to low", b, a, true, HighToLow},
		{"loop", a, a, true, Bidirected},
		{"undirected", b, a, false, Undirected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, err := g.AddTransaction(tt.src, tt.dst, tt.directed)
			if err != nil {
				t.Fatal(err)
			}
			if got := g.TransactionDirection(tx); got != tt.want {
				t.Errorf("TransactionDirection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinkTransactions(t *testing.T) {
	g := New()
	a, b, c := g.AddVertex(), g.AddVertex(), g.AddVertex()
	ab1, _ := g.AddTransaction(a, b, true)
	ba, _ := g.AddTransaction(b, a, true)
	ab2, _ := g.AddTransaction(a, b, false)
	g.AddTransaction(a, c, true)
	loop, _ := g.AddTransaction(a, a, true)

	got := g.LinkTransactions(b, a)
	slices.Sort(got)
	if want := []int{ab1, ba, ab2}; !slices.Equal(got, want) {
		t.Errorf("LinkTransactions(b, a) = %v, want %v", got, want)
	}
	if got := g.LinkTransactions(a, a); !slices.Equal(got, []int{loop}) {
		t.Errorf("LinkTransactions(a, a) = %v, want [%d]", got, loop)
	}
	if got := len(g.VertexTransactions(a)); got != 5 {
		t.Errorf("len(VertexTransactions(a)) = %d, want 5 (loop counted once)", got)
	}
	if got := Opposite(g, ba, a); got != b {
		t.Errorf("Opposite() = %d, want %d", got, b)
	}
}

func TestEnsureAttribute(t *testing.T) {
	g := New()
	id, err := g.EnsureAttribute(KindVertex, "Identifier", TypeString)
	if err != nil {
		t.Fatal(err)
	}
	again, err := g.EnsureAttribute(KindVertex, "Identifier", TypeString)
	if err != nil || again != id {
		t.Errorf("EnsureAttribute is not idempotent: %d, %v", again, err)
	}
	tx, err := g.EnsureAttribute(KindTransaction, "Identifier", TypeString)
	if err != nil || tx == id {
		t.Errorf("transaction attribute should be distinct from vertex attribute: %d, %v", tx, err)
	}
	if _, err := g.EnsureAttribute(KindVertex, "Identifier", TypeFloat); !errors.Is(err, ErrAttributeTypeMismatch) {
		t.Errorf("type conflict = %v, want ErrAttributeTypeMismatch", err)
	}
	if _, err := g.EnsureAttribute(KindVertex, "", TypeFloat); !errors.Is(err, ErrInvalidAttributeName) {
		t.Errorf("empty name = %v, want ErrInvalidAttributeName", err)
	}
	if got := g.Attribute(KindVertex, "missing"); got != NotFound {
		t.Errorf("Attribute(missing) = %d, want NotFound", got)
	}
	if got := len(g.Attributes(KindVertex)); got != 1 {
		t.Errorf("len(Attributes(vertex)) = %d, want 1", got)
	}
}

func TestValues(t *testing.T) {
	g := New()
	v := g.AddVertex()
	x, _ := g.EnsureAttribute(KindVertex, "x", TypeFloat)
	n, _ := g.EnsureAttribute(KindVertex, "count", TypeInt)
	sel, _ := g.EnsureAttribute(KindVertex, "selected", TypeBool)
	w, _ := g.EnsureAttribute(KindTransaction, "weight", TypeFloat)

	if got := g.Value(x, v); got != 0.0 || g.HasValue(x, v) {
		t.Errorf("unset float = %v, want default 0", got)
	}
	if err := g.SetValue(x, v, 3); err != nil {
		t.Fatal(err)
	}
	if got := g.Value(x, v); got != 3.0 {
		t.Errorf("Value() = %#v, want float64(3)", got)
	}
	if err := g.SetValue(n, v, 2.0); err != nil || g.Value(n, v) != 2 {
		t.Errorf("integral float should coerce to int: %v, %#v", err, g.Value(n, v))
	}
	if err := g.SetValue(n, v, 2.5); !errors.Is(err, ErrValueType) {
		t.Errorf("SetValue(2.5) on integer = %v, want ErrValueType", err)
	}
	if err := g.SetValue(sel, v, "yes"); !errors.Is(err, ErrValueType) {
		t.Errorf("SetValue(string) on boolean = %v, want ErrValueType", err)
	}
	if err := g.SetValue(w, v, 1.0); !errors.Is(err, ErrUnknownTransaction) {
		t.Errorf("transaction attribute on vertex id = %v, want ErrUnknownTransaction", err)
	}
	if err := g.SetValue(99, v, 1.0); !errors.Is(err, ErrUnknownAttribute) {
		t.Errorf("SetValue(99) = %v, want ErrUnknownAttribute", err)
	}

	if err := g.SetValue(x, v, nil); err != nil || g.HasValue(x, v) {
		t.Errorf("SetValue(nil) should clear: %v", err)
	}

	g.SetValue(sel, v, true)
	g.AddVertex()
	if got := Selected(g, sel); !slices.Equal(got, []int{v}) {
		t.Errorf("Selected() = %v, want [%d]", got, v)
	}
	if err := g.RemoveVertex(v); err != nil {
		t.Fatal(err)
	}
	if reused := g.AddVertex(); reused != v || g.HasValue(sel, reused) {
		t.Error("a recycled id must not inherit values")
	}
}

type counter struct{ n *int }

func (c counter) CloneValue(*CloneContext) any {
	n := *c.n
	return counter{n: &n}
}

type shared struct{ id int }

type holder struct{ s *shared }

func (h holder) CloneValue(cc *CloneContext) any {
	return holder{s: cc.Once(h.s, func() any { c := *h.s; return &c }).(*shared)}
}

func TestClone(t *testing.T) {
	g := New()
	a, b := g.AddVertex(), g.AddVertex()
	tx, _ := g.AddTransaction(a, b, true)
	name, _ := g.EnsureAttribute(KindVertex, "name", TypeString)
	obj, _ := g.EnsureAttribute(KindVertex, "obj", TypeObject)
	g.SetValue(name, a, "a")

	n := 1
	g.SetValue(obj, a, counter{n: &n})
	s := &shared{id: 7}
	g.SetValue(obj, b, holder{s: s})

	cp := g.Clone()
	if cp.VertexCount() != 2 || cp.TransactionCount() != 1 || cp.TransactionSource(tx) != a {
		t.Fatal("Clone() lost structure")
	}
	if cp.Value(name, a) != "a" {
		t.Error("Clone() lost values")
	}
	*cp.Value(obj, a).(counter).n = 5
	if n != 1 {
		t.Error("cloned object aliases the source")
	}
	if cp.Value(obj, b).(holder).s == s {
		t.Error("Once-cloned value aliases the source")
	}

	// Edits to the copy stay in the copy.
	cp.RemoveVertex(a)
	if !g.HasVertex(a) || !g.HasTransaction(tx) {
		t.Error("editing the clone changed the source")
	}
	if got := cp.AddVertex(); got != a {
		t.Errorf("clone should carry the free-id pool: AddVertex() = %d, want %d", got, a)
	}
	if got := g.AddVertex(); got != 2 {
		t.Errorf("source pool changed: AddVertex() = %d, want 2", got)
	}
}

func TestCloneContextShares(t *testing.T) {
	s := &shared{id: 1}
	cc := NewCloneContext()
	h1 := cc.CloneAny(holder{s: s}).(holder)
	h2 := cc.CloneAny(holder{s: s}).(holder)
	if h1.s != h2.s || h1.s == s {
		t.Error("one context should yield one shared clone per key")
	}
	if got := cc.CloneAny("plain"); got != "plain" {
		t.Errorf("CloneAny(non-Cloner) = %v", got)
	}
}

func TestAttrTypeNames(t *testing.T) {
	for _, typ := range []AttrType{TypeString, TypeFloat, TypeBool, TypeInt, TypeObject} {
		got, err := ParseAttrType(typ.String())
		if err != nil || got != typ {
			t.Errorf("ParseAttrType(%q) = %v, %v", typ.String(), got, err)
		}
	}
	if _, err := ParseAttrType("blob"); err == nil {
		t.Error("ParseAttrType(blob) should fail")
	}
	if !TypeFloat.Accepts(1) || TypeBool.Accepts(1) {
		t.Error("Accepts mismatch")
	}
}
