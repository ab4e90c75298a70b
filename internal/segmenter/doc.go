// Package segmenter splits diff hunks into per-symbol segments.
//
// One hunk is not always one logical change. It may add a brand-new function
// (or several), or open with trailing context from one function before the
// actual changes begin in the next one. Split untangles these cases:
//
//	segments := segmenter.Split(hunk, table)
//
// A hunk with no new definitions yields a single modification segment under
// the header's function, or two segments when changed lines sit on both
// sides of an internal function boundary. A hunk with N added function
// bodies yields N segments flagged NewDefinition, each covering only its
// function's lines.
//
// New-definition spans are delimited by brace depth counted over added and
// context lines from the first opening brace onward. The counter is not
// aware of preprocessor conditionals that unbalance braces; that is an
// accepted limitation of the line-oriented approach.
package segmenter
