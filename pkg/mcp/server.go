package mcp

import (
	"context"
	"io"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tsgraph/pkg/graph"
	"github.com/gnana997/tsgraph/pkg/indexer"
	"github.com/gnana997/tsgraph/pkg/mcplog"
)

const serverVersion = "0.1.0-dev"

// SnapshotProvider supplies the graph the tools answer from. It returns nil
// until the first build has completed.
type SnapshotProvider interface {
	Snapshot() *indexer.Snapshot
}

// Server exposes dependency graph queries as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	index     SnapshotProvider
	toolLog   *mcplog.Logger // nil disables call logging
	dotOpts   graph.DOTOptions
}

// NewServer creates an MCP server reading from index. toolLog may be nil.
func NewServer(index SnapshotProvider, toolLog *mcplog.Logger, dotOpts graph.DOTOptions) *Server {
	s := &Server{index: index, toolLog: toolLog, dotOpts: dotOpts}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if toolLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("tsgraph", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: listFilesTool(), Handler: s.handleListFiles},
		server.ServerTool{Tool: getFileImportsTool(), Handler: s.handleGetFileImports},
		server.ServerTool{Tool: getDependenciesTool(), Handler: s.handleGetDependencies},
		server.ServerTool{Tool: getDependentsTool(), Handler: s.handleGetDependents},
		server.ServerTool{Tool: getGraphDOTTool(), Handler: s.handleGetGraphDOT},
	)

	return s
}

// ServeStdio serves MCP on stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// Serve serves MCP over the given streams until ctx is cancelled or in is
// exhausted.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s.mcpServer).Listen(ctx, in, out)
}
