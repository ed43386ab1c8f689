// Package graph provides a mutable attributed multigraph.
//
// # Overview
//
// A graph holds vertices and transactions. A transaction connects two
// vertices, may be directed or undirected, and may be a loop. Any number of
// transactions may connect the same pair of vertices; the set of
// transactions between an unordered pair is called a link.
//
// Values live in attributes. An attribute is registered once per element
// kind with [Store.EnsureAttribute] and has a fixed [AttrType]. Reading an
// unset value returns the attribute default:
//
//	g := graph.New()
//	name, _ := g.EnsureAttribute(graph.KindVertex, "Identifier", graph.TypeString)
//	v := g.AddVertex()
//	_ = g.SetValue(name, v, "alice")
//
// # Identities
//
// Vertex and transaction ids are arena indices. Deleting an element releases
// its id and the next add reuses the lowest released id, so an id must never
// be kept as a long-lived reference across deletions.
//
// # Copying
//
// [Store.Clone] deep-copies a graph. Object values that implement [Cloner]
// are cloned through one [CloneContext]: a value shared by several elements
// of the source is shared by the same elements of the copy, and never
// between source and copy.
//
// # Interfaces
//
// [Reader] and [Graph] describe the operations other packages depend on.
// [Store] is the in-memory implementation.
package graph
