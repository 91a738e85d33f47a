// Package history defines the lane-annotated commit sequence consumed by the
// layout engine.
//
// # Overview
//
// A [Sequence] is the output of a revision walk: commits in topological order
// (newest first), each assigned to at most one [Lane] and linked to its
// parents and children by pointer. The walker that produces it lives outside
// this module; history only describes the boundary.
//
// Commits are shared nodes. A parent pointer in one commit and the child
// pointer in another refer to the same *Commit, and nothing downstream
// mutates them. Derived state such as the active flag is computed by the
// layout engine into its own per-build maps.
//
// # Kinds
//
// Every commit is either [KindNormal] or [KindBoundary]. A boundary commit is
// known to exist (it is referenced as a parent) but was not walked in full.
// It is drawn with a distinct marker that carries no click semantics.
//
// # Lanes
//
// A nil *Lane means "draw no connecting geometry for this commit". It is not
// an error: the commit still gets a dot, labels and message text, placed as if
// it sat in lane 0.
package history
