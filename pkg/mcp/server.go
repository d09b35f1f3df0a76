// Package mcp serves theme lookups to coding agents over the Model Context
// Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/uitheme/pkg/content"
	"github.com/gnana997/uitheme/pkg/mcplog"
	"github.com/gnana997/uitheme/pkg/theme"
)

const serverVersion = "0.1.0"

// ThemeSource supplies the theme each tool call reads. watch.Reloader
// satisfies it; StaticSource wraps a fixed config.
type ThemeSource interface {
	Current() *theme.ThemeConfig
}

type staticSource struct{ cfg *theme.ThemeConfig }

func (s staticSource) Current() *theme.ThemeConfig { return s.cfg }

// StaticSource returns a ThemeSource that always yields cfg.
func StaticSource(cfg *theme.ThemeConfig) ThemeSource {
	return staticSource{cfg: cfg}
}

// Options configures optional server features.
type Options struct {
	// Scanner enables the scan_usage tool.
	Scanner *content.Scanner

	// Root is the default project root for scan_usage.
	Root string

	// CallLog records every tool call when non-nil.
	CallLog *mcplog.Logger

	Logger *slog.Logger
}

// Server exposes a theme as MCP tools.
type Server struct {
	mcpServer *server.MCPServer
	source    ThemeSource
	scanner   *content.Scanner
	root      string
	callLog   *mcplog.Logger
	logger    *slog.Logger
}

// NewServer creates a Server reading from source.
func NewServer(source ThemeSource, opts Options) *Server {
	s := &Server{
		source:  source,
		scanner: opts.Scanner,
		root:    opts.Root,
		callLog: opts.CallLog,
		logger:  opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if s.callLog != nil {
		serverOpts = append(serverOpts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer("uitheme", serverVersion, serverOpts...)

	tools := []server.ServerTool{
		{Tool: getColorsTool(), Handler: s.handleGetColors},
		{Tool: resolveColorTool(), Handler: s.handleResolveColor},
		{Tool: resolveFontStackTool(), Handler: s.handleResolveFontStack},
		{Tool: getContentGlobsTool(), Handler: s.handleGetContentGlobs},
		{Tool: getPluginsTool(), Handler: s.handleGetPlugins},
		{Tool: lintThemeTool(), Handler: s.handleLintTheme},
	}
	if s.scanner != nil {
		tools = append(tools, server.ServerTool{Tool: scanUsageTool(), Handler: s.handleScanUsage})
	}
	s.mcpServer.AddTools(tools...)

	return s
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
