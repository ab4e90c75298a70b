// Package aggregator merges hunk segments into review changes.
//
// Two independent combination passes run per file, both modeled as a fold
// with an explicit current batch that flushes when its cap would be
// exceeded:
//
//   - modification segments group by (file, symbol) and merge while the
//     running added-line total stays within the combined-added-lines cap;
//   - new-definition segments group by file alone and merge while the
//     running total-line count stays within the new-function cap, their
//     symbol names comma-joined.
//
// Caps bound combination, never content: a single segment already over a
// cap still becomes its own (oversized) change. Merged changes join their
// segment bodies with a blank line and their header range texts with " + ";
// merged SymbolInfo keeps the first non-empty name and unions the reference
// lists in first-seen order.
//
// Within each file's output, modification changes precede new-definition
// changes; both keep their internal order.
package aggregator
