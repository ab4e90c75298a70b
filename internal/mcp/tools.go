package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/diffscope/internal/analyzer"
	"github.com/dshills/diffscope/internal/engine"
	"github.com/dshills/diffscope/internal/gitcmd"
	"github.com/dshills/diffscope/internal/review"
	"github.com/dshills/diffscope/internal/storage"
	"github.com/dshills/diffscope/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound      = -32001 // Run or change does not exist
)

// handleSegmentCommit handles the segment_commit tool invocation
func (s *Server) handleSegmentCommit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	repoPath, ok := args["repo_path"].(string)
	if !ok || repoPath == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "repo_path parameter is required", map[string]interface{}{
			"param":  "repo_path",
			"reason": "missing or empty",
		})
	}
	if err := validatePath(repoPath); err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid repo_path", map[string]interface{}{
			"param":  "repo_path",
			"reason": err.Error(),
		})
	}

	ref := getStringDefault(args, "commit", "HEAD")
	noAnalyzer := getBoolDefault(args, "no_analyzer", false)
	persist := getBoolDefault(args, "persist", true)

	outputDir := getStringDefault(args, "output_dir", "")
	if outputDir != "" && !filepath.IsAbs(outputDir) {
		return nil, newMCPError(ErrorCodeInvalidParams, "output_dir must be absolute", map[string]interface{}{
			"param": "output_dir",
			"value": outputDir,
		})
	}

	eng := engine.New(engine.Config{
		RepoDir: repoPath,
		Limits:  s.cfg.Limits,
		Analyzer: analyzer.Options{
			Command:  s.cfg.Analyzer,
			Disabled: noAnalyzer,
		},
	})

	show, err := gitcmd.Show(ctx, repoPath, ref)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch commit", map[string]interface{}{
			"error": err.Error(),
		})
	}

	run, err := eng.SegmentShow(ctx, show)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "segmentation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	changedFiles, err := gitcmd.ChangedFiles(ctx, repoPath, ref)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list changed files", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if outputDir != "" {
		if err := review.Write(outputDir, show, run, changedFiles); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to write review context", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	var runID string
	if persist {
		rec, groups := storage.NewRunRecord(run, repoPath)
		if err := s.store.SaveRun(ctx, rec, groups); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to persist run", map[string]interface{}{
				"error": err.Error(),
			})
		}
		runID = rec.ID
	}

	response := map[string]interface{}{
		"index": review.NewIndex(run, changedFiles),
		"stats": map[string]interface{}{
			"files":         run.Stats.Files,
			"hunks":         run.Stats.Hunks,
			"segments":      run.Stats.Segments,
			"changes":       run.Stats.Changes,
			"groups":        run.Stats.Groups,
			"analyzer_used": run.Stats.AnalyzerUsed,
			"duration_ms":   run.Stats.Duration.Milliseconds(),
		},
	}
	if runID != "" {
		response["run_id"] = runID
	}
	if outputDir != "" {
		response["output_dir"] = outputDir
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListRuns handles the list_runs tool invocation
func (s *Server) handleListRuns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list runs", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries := make([]map[string]interface{}, 0, len(runs))
	for _, run := range runs {
		entries = append(entries, map[string]interface{}{
			"run_id":         run.ID,
			"repo_dir":       run.RepoDir,
			"commit_sha":     run.CommitSHA,
			"commit_subject": run.CommitSubject,
			"commit_author":  run.CommitAuthor,
			"files":          run.Files,
			"changes":        run.Changes,
			"groups":         run.Groups,
			"analyzer_used":  run.AnalyzerUsed,
			"created_at":     run.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"runs":  entries,
		"count": len(entries),
	})), nil
}

// handleGetChange handles the get_change tool invocation
func (s *Server) handleGetChange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	runID, changeID, mcpErr := requireRunAndParam(args, "change_id")
	if mcpErr != nil {
		return nil, mcpErr
	}

	change, err := s.store.GetChange(ctx, runID, changeID)
	if errors.Is(err, types.ErrChangeNotFound) || errors.Is(err, types.ErrRunNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "change not found", map[string]interface{}{
			"run_id":    runID,
			"change_id": changeID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch change", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return mcp.NewToolResultText(formatJSON(changeResponse(change))), nil
}

// handleSearchChanges handles the search_changes tool invocation
func (s *Server) handleSearchChanges(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	runID, query, mcpErr := requireRunAndParam(args, "query")
	if mcpErr != nil {
		return nil, mcpErr
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	if _, err := s.store.GetRun(ctx, runID); errors.Is(err, types.ErrRunNotFound) {
		return nil, newMCPError(ErrorCodeNotFound, "run not found", map[string]interface{}{
			"run_id": runID,
		})
	} else if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to fetch run", map[string]interface{}{
			"error": err.Error(),
		})
	}

	changes, err := s.store.SearchChanges(ctx, runID, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	results := make([]map[string]interface{}, 0, len(changes))
	for _, change := range changes {
		results = append(results, changeResponse(change))
	}

	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})), nil
}

// Helper functions

// requireRunAndParam extracts run_id plus one other required string
// parameter.
func requireRunAndParam(args map[string]interface{}, key string) (runID, value string, err error) {
	runID, ok := args["run_id"].(string)
	if !ok || runID == "" {
		return "", "", newMCPError(ErrorCodeInvalidParams, "run_id parameter is required", map[string]interface{}{
			"param":  "run_id",
			"reason": "missing or empty",
		})
	}
	value, ok = args[key].(string)
	if !ok || value == "" {
		return "", "", newMCPError(ErrorCodeInvalidParams, key+" parameter is required", map[string]interface{}{
			"param":  key,
			"reason": "missing or empty",
		})
	}
	return runID, value, nil
}

// changeResponse renders a stored change as a tool result payload.
func changeResponse(change *storage.Change) map[string]interface{} {
	response := map[string]interface{}{
		"id":          change.ChangeID,
		"file":        change.File,
		"function":    change.Symbol,
		"hunk_header": change.Header,
		"diff":        change.Diff,
		"total_lines": change.TotalLines,
	}
	if change.Modifies != "" {
		response["modifies"] = change.Modifies
	}
	if len(change.Types) > 0 {
		response["types"] = change.Types
	}
	if len(change.Callers) > 0 {
		response["callers"] = change.Callers
	}
	if len(change.Calls) > 0 {
		response["calls"] = change.Calls
	}
	if change.Definition != "" {
		response["definition"] = change.Definition
	}
	return response
}

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// validatePath checks that a repository path is absolute, exists, and is a
// readable directory.
func validatePath(path string) error {
	if path == "" {
		return ErrPathRequired
	}
	if !filepath.IsAbs(path) {
		return ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return ErrPathNotFound
	}
	if err != nil {
		return ErrPathNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	f, err := os.Open(path)
	if err != nil {
		return ErrPathNotReadable
	}
	_ = f.Close()

	return nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}

// Validation helpers

var (
	ErrPathRequired    = errors.New("path is required")
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
	ErrNotDirectory    = errors.New("path is not a directory")
)
