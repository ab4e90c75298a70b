package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// segmentCommitTool returns the tool definition for segment_commit
func segmentCommitTool() mcp.Tool {
	return mcp.Tool{
		Name:        "segment_commit",
		Description: "Segment a commit diff into numbered review groups and persist the run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"repo_path": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path to the git repository",
				},
				"commit": map[string]interface{}{
					"type":        "string",
					"description": "Commit reference (SHA, HEAD, tag)",
					"default":     "HEAD",
				},
				"no_analyzer": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, skip the external analyzer and use built-in heuristics",
					"default":     false,
				},
				"output_dir": map[string]interface{}{
					"type":        "string",
					"description": "Absolute path of a review-context directory to write (omit to skip)",
				},
				"persist": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, save the run to the store for later retrieval",
					"default":     true,
				},
			},
			Required: []string{"repo_path"},
		},
	}
}

// listRunsTool returns the tool definition for list_runs
func listRunsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_runs",
		Description: "List recent segmentation runs, newest first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of runs to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
		},
	}
}

// getChangeTool returns the tool definition for get_change
func getChangeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_change",
		Description: "Fetch one change document from a persisted run",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run identifier returned by segment_commit or list_runs",
				},
				"change_id": map[string]interface{}{
					"type":        "string",
					"description": "Change identity, e.g. FILE-1-CHANGE-2",
				},
			},
			Required: []string{"run_id", "change_id"},
		},
	}
}

// searchChangesTool returns the tool definition for search_changes
func searchChangesTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_changes",
		Description: "Full-text search over a run's change documents (symbol, file, diff text)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"run_id": map[string]interface{}{
					"type":        "string",
					"description": "Run identifier to search within",
				},
				"query": map[string]interface{}{
					"type":        "string",
					"description": "FTS query string",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"run_id", "query"},
		},
	}
}
