package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/tsgraph/pkg/mcplog"
)

// loggingMiddleware records every tool call in the tool log. Only installed
// when toolLog is non-nil.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			entry := mcplog.Entry{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Params:        mcplog.SanitizeParams(req.GetArguments()),
				DurationMs:    time.Since(start).Milliseconds(),
				ResponseBytes: mcplog.ResponseBytes(result),
				IsError:       result != nil && result.IsError,
			}
			if snap := s.index.Snapshot(); snap != nil {
				entry.GraphVersion = snap.Version
			}
			if err != nil {
				msg := err.Error()
				entry.Error = &msg
			}
			_ = s.toolLog.Write(entry)

			return result, err
		}
	}
}
