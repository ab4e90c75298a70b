// Package analyzer produces the symbol table for a diff.
//
// Two producers exist behind one front door. The external analyzer is a
// separate binary (semcode by default) holding a pre-built index of the
// repository; when its index database is present and the binary answers a
// probe, Resolve pipes the diff to it and decodes the JSON answer. When it
// is absent, disabled, or fails in any way, Resolve falls back to the
// built-in heuristic, which reconstructs each hunk's post-image view and
// resolves changed lines with the walk-back from the symbols package.
//
//	res := analyzer.Resolve(ctx, repoDir, diffText, opts)
//	// res.Table is never nil; res.External tells whether the real
//	// analyzer answered.
//
// Resolve never returns an error: analyzer failure degrades to heuristic
// output, logged only when Verbose is set. Callers use res.External to
// decide whether working-tree definition extraction should supplement the
// weaker heuristic table.
package analyzer
