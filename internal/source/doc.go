// Package source extracts full symbol definitions from working-tree files.
//
// When no external analyzer runs, a change's reviewers still want the whole
// function around the diff. Definition reads the post-image file, walks back
// from the change's starting line to the definition head (bounded window),
// and scans forward for the matching close brace. The forward scan is
// string-, char-, and comment-aware so braces inside literals and comments
// never unbalance it; it gives up past 2000 lines.
//
//	text, ok := source.Definition(repoDir, "net/core/dev.c", 1042)
//
// Extraction is best effort and silent: unreadable files, out-of-range
// lines, and unterminated definitions all return ok=false. Definitions
// longer than 10000 characters are truncated to their first 100 lines plus
// a marker.
package source
