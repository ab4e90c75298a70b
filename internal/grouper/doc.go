// Package grouper packs review changes into numbered file groups.
//
// Three stages run in order:
//
//  1. Path-sorted packing: each file's changes fill size-bounded
//     single-file groups. A change that would overflow a non-empty group
//     starts a new one; a change already over the cap gets a group of its
//     own.
//  2. Small-group coalescing: consecutive groups fold together left to
//     right while their combined total stays within the coalescing cap.
//  3. Similarity merging: groups whose touched-function sets overlap at or
//     above the configured ratio merge, best pair first, while their
//     combined total stays within the similarity cap.
//
// The overlap ratio divides the intersection by the SMALLER set, so a small
// group whose few symbols are covered by a large group's many will merge
// into it. The repeated best-pair scan is greedy, first best pair in scan
// order, and intentionally not a globally optimal matching; downstream
// numbering depends on that tie-breaking.
//
// After the final stage every group is renumbered 1..N and each change
// receives its FILE-<group>-CHANGE-<seq> identity.
package grouper
