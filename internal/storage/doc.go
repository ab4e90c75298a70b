// Package storage persists segmentation runs in SQLite.
//
// A run row carries the commit summary and counters; its groups and change
// documents hang off it with cascading deletes. Change diffs are mirrored
// into an FTS5 table by triggers so SearchChanges can match on symbol,
// file, or diff text.
//
// Two drivers are supported via build tags: modernc.org/sqlite (pure Go,
// the default) and mattn/go-sqlite3 behind the sqlite_cgo tag. Schema
// changes ship as semver-gated migrations; opening a store applies any
// pending ones.
package storage
