// Package pkg provides the core libraries for Compositor.
//
// # Overview
//
// Compositor collapses groups of vertices in an attributed multigraph into
// single composite vertices and restores them later without losing attribute
// data. The pkg directory is organized as:
//
//  1. [graph] - The mutable graph interface and an in-memory store
//  2. [composite] - The composite engine (create, expand, contract, destroy)
//  3. [io] - JSON documents holding a graph and its composite state
//  4. [config] - TOML configuration
//  5. [errors], [observability], [buildinfo] - Shared infrastructure
//
// # Architecture
//
// The typical data flow through Compositor:
//
//	JSON document
//	      ↓
//	 [io] package (decode, snapshot table → shared snapshots)
//	      ↓
//	 [composite] package (edit composites on a graph.Graph)
//	      ↓
//	 [io] package (encode)
//	      ↓
//	JSON document
//
// # Quick Start
//
// Collapse two vertices and restore them:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/compositor/pkg/composite"
//	    "github.com/matzehuels/compositor/pkg/graph"
//	)
//
//	g := graph.New()
//	a, b := g.AddVertex(), g.AddVertex()
//	g.AddTransaction(a, b, true)
//
//	e := composite.New(composite.Options{})
//	v, _ := e.CreateComposite(context.Background(), g, []int{a, b})
//	_, _ = e.Expand(context.Background(), g, v)
//
// # Testing
//
//	go test ./pkg/...              # All tests
//	go test ./pkg/composite/...    # Engine scenarios
//	go test -run Example ./pkg/... # Examples only
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/graph
// [composite]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/composite
// [io]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/compositor/pkg/buildinfo
package pkg
