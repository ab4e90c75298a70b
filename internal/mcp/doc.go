// Package mcp exposes segmentation over the Model Context Protocol.
//
// The server speaks MCP on stdio and registers four tools:
//
//	segment_commit  run the engine on a commit, optionally writing the
//	                review-context directory and persisting the run
//	list_runs       recent persisted runs, newest first
//	get_change      one change document by run ID and review identity
//	search_changes  full-text search over a run's change documents
//
// Tool arguments arrive as map[string]interface{} and are validated with
// typed default-getters; failures return MCPError with JSON-RPC codes
// (-32602 invalid params, -32603 internal, -32001 not found). Repository
// and output paths must be absolute.
package mcp
