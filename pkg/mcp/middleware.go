package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/uitheme/pkg/mcplog"
)

// loggingMiddleware records every tool call in the JSONL call log. Only
// installed when a call log is configured.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			result, err := next(ctx, req)

			themePath := ""
			if cfg := s.source.Current(); cfg != nil {
				themePath = cfg.Source().Path
			}
			entry := mcplog.NewEntry(req.Params.Name, themePath, req.GetArguments(), start, result, err)
			if werr := s.callLog.Write(entry); werr != nil {
				s.logger.Debug("failed to write call log", "error", werr)
			}

			return result, err
		}
	}
}
