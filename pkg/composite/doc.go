// Package composite collapses groups of vertices into single composite
// vertices and restores them again.
//
// # Overview
//
// A composite vertex stands in for a set of member vertices. When it is
// created, the members' attribute values and the transactions among them are
// captured in an immutable [Snapshot] and the members are removed from the
// graph. Transactions that crossed the boundary of the group are re-pointed
// to the composite vertex.
//
// Every vertex may carry one [State] in the [StateAttribute] vertex
// attribute:
//
//   - [Contracted] marks a composite vertex and owns its snapshot.
//   - [Expanded] marks a restored member. All members restored from one
//     composite point at the same *Snapshot, which is how [Engine.ContractAll]
//     finds them again.
//
// # Operations
//
// [Engine] exposes four families of operations:
//
//   - [Engine.CreateComposite] merges vertices into a new composite. Merging
//     composites flattens them: the result holds the union of their members.
//   - [Engine.ExpandAll] restores every composite vertex.
//   - [Engine.ContractAll] re-collapses every group of expanded members,
//     dropping members that were deleted while expanded.
//   - [Engine.DestroyAll] removes all composite structure for good.
//
// # Provenance
//
// A transaction incident on a composite vertex carries a [Provenance] in the
// [ProvenanceAttribute] transaction attribute naming the members each
// composite endpoint stands for. Expansion attaches the transaction to exactly
// those members. A transaction without provenance on a composite endpoint (for
// example one added after the composite was created) is duplicated onto every
// member.
//
// # Concurrency
//
// The engine does no locking. Callers must hold exclusive access to the graph
// for the duration of a call. Snapshots are never modified after creation and
// may be read concurrently.
package composite
