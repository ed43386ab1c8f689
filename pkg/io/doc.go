// Package io provides JSON import and export for attributed graphs,
// including composite state.
//
// # JSON Format
//
// A document lists the registered attributes, the vertices and transactions
// with their values, and a table of composite snapshots:
//
//	{
//	  "attributes": [
//	    {"kind": "vertex", "name": "Identifier", "type": "string"},
//	    {"kind": "vertex", "name": "composite_state", "type": "object"}
//	  ],
//	  "vertices": [
//	    {"id": 0, "values": {"Identifier": "A + 1 more...",
//	      "composite_state": {"kind": "contracted", "snapshot": 0, "size": 2}}},
//	    {"id": 1, "values": {"Identifier": "X"}}
//	  ],
//	  "transactions": [
//	    {"id": 0, "source": 0, "destination": 1, "directed": true,
//	     "values": {"composite_provenance": {"source": ["5f0c..."]}}}
//	  ],
//	  "snapshots": [
//	    {"members": [...], "links": [...], "vertex_fields": [...], "link_fields": [...]}
//	  ]
//	}
//
// # Composite State
//
// A composite_state value refers to its snapshot by index into the
// snapshots table. Expanded members written from one graph share a single
// table entry, and [ReadJSON] decodes them back to a single shared
// *composite.Snapshot, so recontraction still finds them as one group.
//
// # Identities
//
// Vertex and transaction ids in a document only tie transactions to their
// endpoints. [ReadJSON] allocates fresh ids in the new graph.
//
// # Import
//
// Use [ImportJSON] to read a graph from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	g, err := io.ImportJSON(ctx, "graph.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Export
//
// Use [ExportJSON] to write a graph to a file, or [WriteJSON] to write to any
// io.Writer. Only explicitly set values are written; defaults are implied by
// the attribute type.
package io
