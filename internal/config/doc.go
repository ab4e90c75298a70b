// Package config holds the tool configuration: the size caps driving the
// aggregation and grouping passes, the external analyzer command, and the
// run store path.
//
// Configuration is layered flags > file > defaults. The optional config
// file is YAML:
//
//	limits:
//	  combined_added_lines: 250
//	  group_lines: 250
//	  overlap_ratio: 0.8
//	analyzer: semcode
//	db_path: /var/lib/diffscope/runs.db
//
// Zero values in a loaded file fall back to the defaults, so a partial file
// only overrides what it names. The DIFFSCOPE_DB_PATH environment variable
// overrides the default store location.
package config
