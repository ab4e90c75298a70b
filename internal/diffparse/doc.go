// Package diffparse tokenizes unified diff text into files and hunks.
//
// The parser is deliberately tolerant: it recognizes "diff --git" file
// boundaries and "@@" hunk headers, keeps every hunk body line verbatim, and
// silently skips anything it does not understand (index lines, mode lines,
// malformed headers). It never returns an error; a diff with nothing
// recognizable yields an empty slice.
//
//	files := diffparse.Parse(diffText, table)
//	for _, fc := range files {
//	    for _, h := range fc.Hunks {
//	        // h.Header, h.NewStart, h.Lines ...
//	    }
//	}
//
// Joining a hunk's header and lines reproduces the corresponding region of
// the input byte for byte, which downstream stages rely on when they emit
// diff fragments.
//
// The package also owns the line-accounting helpers the size caps are
// measured with: CountAddedLines counts "+" lines (excluding "++" markers),
// CountTotalLines counts all lines of a content string after trailing
// whitespace is stripped.
package diffparse
