package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/diffscope/internal/config"
	"github.com/dshills/diffscope/internal/storage"
)

const (
	// ServerName is the MCP server name
	ServerName = "diffscope"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp   *server.MCPServer
	store storage.Store
	cfg   config.Config
}

// NewServer creates a new MCP server instance backed by the run store at
// cfg.DBPath.
func NewServer(cfg config.Config) (*Server, error) {
	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize run store: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:   mcpServer,
		store: store,
		cfg:   cfg,
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(segmentCommitTool(), s.handleSegmentCommit)
	s.mcp.AddTool(listRunsTool(), s.handleListRuns)
	s.mcp.AddTool(getChangeTool(), s.handleGetChange)
	s.mcp.AddTool(searchChangesTool(), s.handleSearchChanges)
}
