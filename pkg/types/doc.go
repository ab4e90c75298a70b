// Package types provides shared type definitions for the diffscope engine.
//
// This package defines the domain types that flow through the segmentation
// pipeline: parsed diffs, resolved symbols, hunk segments, review changes,
// and file groups.
//
// # Core Types
//
// FileChange and Hunk mirror the structure of a unified diff. Hunk lines are
// kept verbatim; the leading character of each line (+, -, space) is the tag:
//
//	hunk := &types.Hunk{
//	    Header:   "@@ -10,4 +10,6 @@ static int parse_header(struct ctx *c)",
//	    NewStart: 10,
//	    Lines:    []string{" int rc;", "+rc = validate(c);", " return rc;"},
//	}
//
// SymbolInfo carries what is known about one modified function: the types it
// touches, its callers, and the calls it makes. A SymbolTable collects the
// SymbolInfo records for a whole diff, whether produced by an external
// analyzer or by the built-in heuristics.
//
// # Changes and Groups
//
// Segment is an intermediate unit: one symbol's slice of one hunk. Segments
// are merged under size caps into Change values, and changes are packed into
// numbered FileGroup values. A change is addressed by its group and sequence
// numbers:
//
//	change.Group = 2
//	change.Seq = 1
//	change.ID() // "FILE-2-CHANGE-1"
//
// # Placeholder Symbols
//
// The engine never fails on unresolvable input. When no enclosing symbol can
// be determined, the symbol name is the placeholder "unknown"; callers treat
// it as absent (it never joins a group's symbol set).
package types
