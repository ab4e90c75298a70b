// Package review renders a run into the review-context artifact directory.
//
// The directory layout:
//
//	change.diff              raw input text (git show output or patch)
//	commit-message.json      parsed commit metadata, changed files, subsystems
//	index.json               version, commit summary, group table of contents
//	FILE-<n>-CHANGE-<m>.json one document per change
//
// index.json and the change documents are also the payloads the MCP tools
// return, so their types are exported.
package review
