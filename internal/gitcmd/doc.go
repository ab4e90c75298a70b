// Package gitcmd shells out to git and parses what comes back.
//
// Show and ChangedFiles wrap the two git invocations the engine needs; both
// honor context cancellation and fold stderr into the returned error. The
// parsing helpers are pure: ParseCommit lifts commit metadata and trailer
// tags (Fixes, Cc, Signed-off-by, ...) out of git show output, DiffStart
// finds where the message ends and the patch begins, and Subsystems maps
// changed paths to their kernel subsystem names.
package gitcmd
