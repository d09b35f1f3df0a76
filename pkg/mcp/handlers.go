package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/uitheme/pkg/theme"
)

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// lookupError reports unknown tokens as tool errors. Anything else is a
// protocol error.
func lookupError(err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, theme.ErrUnknownToken) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return nil, err
}

func (s *Server) handleGetColors(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.source.Current()

	palette := strings.TrimSpace(req.GetString("palette", ""))
	if palette == "" {
		return jsonResult(cfg.Colors())
	}

	tokens, err := cfg.Palette(palette)
	if err != nil {
		return lookupError(err)
	}
	return jsonResult(tokens)
}

type colorResponse struct {
	Token     string `json:"token"`
	Value     string `json:"value"`
	ClassName string `json:"class_name"`
}

func (s *Server) handleResolveColor(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	token, err := req.RequireString("token")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	tok, err := s.source.Current().ColorToken(token)
	if err != nil {
		return lookupError(err)
	}
	return jsonResult(colorResponse{Token: tok.Path, Value: tok.Value, ClassName: tok.ClassName})
}

type fontResponse struct {
	Role     string   `json:"role"`
	Families []string `json:"families"`
	CSS      string   `json:"css"`
}

func (s *Server) handleResolveFontStack(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	role, err := req.RequireString("role")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	families, err := s.source.Current().ResolveFontStack(role)
	if err != nil {
		return lookupError(err)
	}
	return jsonResult(fontResponse{Role: role, Families: families, CSS: cssFontFamily(families)})
}

// cssFontFamily renders a font-family declaration value, quoting names that
// contain spaces.
func cssFontFamily(families []string) string {
	quoted := make([]string, len(families))
	for i, f := range families {
		if strings.ContainsAny(f, " \t") {
			f = `"` + f + `"`
		}
		quoted[i] = f
	}
	return strings.Join(quoted, ", ")
}

type globsResponse struct {
	Source  theme.Source `json:"source"`
	Content []string     `json:"content"`
}

func (s *Server) handleGetContentGlobs(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := s.source.Current()
	return jsonResult(globsResponse{Source: cfg.Source(), Content: cfg.ContentGlobs()})
}

func (s *Server) handleGetPlugins(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.source.Current().Plugins())
}

func (s *Server) handleLintTheme(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	warnings := s.source.Current().Lint()
	if warnings == nil {
		warnings = []theme.Warning{}
	}
	return jsonResult(warnings)
}

func (s *Server) handleScanUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.scanner == nil {
		return mcp.NewToolResultError("usage scanning is not enabled"), nil
	}

	cfg := s.source.Current()
	root := req.GetString("root", s.root)
	if root == "" {
		root = filepath.Dir(cfg.Source().Path)
	}

	report, err := s.scanner.Scan(ctx, root, cfg)
	if err != nil {
		s.logger.Warn("scan_usage failed", "root", root, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}
