package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uitheme/pkg/content"
	"github.com/gnana997/uitheme/pkg/mcplog"
	"github.com/gnana997/uitheme/pkg/theme"
	"github.com/gnana997/uitheme/pkg/util"
)

// --- helpers ---

func loadFixture(t *testing.T) *theme.ThemeConfig {
	t.Helper()
	cfg, err := theme.Load(filepath.Join("..", "theme", "testdata", "tailwind.config.js"))
	require.NoError(t, err)
	return cfg
}

func testServer(t *testing.T) *Server {
	t.Helper()
	return NewServer(StaticSource(loadFixture(t)), Options{Logger: util.Discard()})
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "get_colors":
		handler = s.handleGetColors
	case "resolve_color":
		handler = s.handleResolveColor
	case "resolve_font_stack":
		handler = s.handleResolveFontStack
	case "get_content_globs":
		handler = s.handleGetContentGlobs
	case "get_plugins":
		handler = s.handleGetPlugins
	case "lint_theme":
		handler = s.handleLintTheme
	case "scan_usage":
		handler = s.handleScanUsage
	default:
		t.Fatalf("unknown tool: %s", req.Params.Name)
	}

	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func makeRequest(toolName string, args map[string]any) mcp.CallToolRequest {
	var arguments any
	if args != nil {
		arguments = args
	}
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      toolName,
			Arguments: arguments,
		},
	}
}

func resultJSON(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

// --- get_colors ---

func TestHandleGetColors_All(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_colors", nil))
	assert.False(t, result.IsError)

	var tokens []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &tokens))
	assert.Len(t, tokens, 14)
	assert.Equal(t, "primary.50", tokens[0]["path"])
	assert.Equal(t, "#f0f9ff", tokens[0]["value"])
}

func TestHandleGetColors_Palette(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_colors", map[string]any{"palette": "health"}))
	assert.False(t, result.IsError)

	var tokens []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &tokens))
	require.NotEmpty(t, tokens)
	for _, tok := range tokens {
		assert.Equal(t, "health", tok["palette"])
	}
}

func TestHandleGetColors_UnknownPalette(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_colors", map[string]any{"palette": "nope"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "nope")
}

// --- resolve_color ---

func TestHandleResolveColor(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("resolve_color", map[string]any{"token": "primary.500"}))
	assert.False(t, result.IsError)

	var resp colorResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, "primary.500", resp.Token)
	assert.Equal(t, "#0ea5e9", resp.Value)
	assert.Equal(t, "primary-500", resp.ClassName)
}

func TestHandleResolveColor_Unknown(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("resolve_color", map[string]any{"token": "primary.550"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultJSON(t, result), "primary.550")
}

func TestHandleResolveColor_MissingToken(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("resolve_color", nil))
	assert.True(t, result.IsError)
}

// --- resolve_font_stack ---

func TestHandleResolveFontStack(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("resolve_font_stack", map[string]any{"role": "sans"}))
	assert.False(t, result.IsError)

	var resp fontResponse
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	require.NotEmpty(t, resp.Families)
	assert.Equal(t, "Inter", resp.Families[0])
	assert.Contains(t, resp.CSS, "Inter, ")
}

func TestHandleResolveFontStack_Unknown(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("resolve_font_stack", map[string]any{"role": "display"}))
	assert.True(t, result.IsError)
}

func TestCSSFontFamily(t *testing.T) {
	assert.Equal(t, `Inter, "Segoe UI", sans-serif`, cssFontFamily([]string{"Inter", "Segoe UI", "sans-serif"}))
}

// --- get_content_globs / get_plugins / lint_theme ---

func TestHandleGetContentGlobs(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_content_globs", nil))
	assert.False(t, result.IsError)

	var resp struct {
		Source struct {
			Path   string `json:"path"`
			Format string `json:"format"`
		} `json:"source"`
		Content []string `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &resp))
	assert.Equal(t, "js", resp.Source.Format)
	assert.Equal(t, []string{"./templates/**/*.html", "./static/js/**/*.js"}, resp.Content)
}

func TestHandleGetPlugins(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("get_plugins", nil))
	assert.False(t, result.IsError)

	var plugins []map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &plugins))
	assert.Empty(t, plugins)
}

func TestHandleLintTheme(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("lint_theme", nil))
	assert.False(t, result.IsError)
	assert.Equal(t, "[]", resultJSON(t, result))
}

// --- scan_usage ---

func TestHandleScanUsage_Disabled(t *testing.T) {
	s := testServer(t)
	result := callTool(t, s, makeRequest("scan_usage", nil))
	assert.True(t, result.IsError)
}

func TestHandleScanUsage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "templates"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "templates", "index.html"),
		[]byte(`<div class="bg-primary-500 text-primary-550 font-sans">x</div>`), 0o644))

	cfg := content.ScannerConfig{Workers: 2, CacheSize: 16, Logger: util.Discard()}
	sc, err := content.NewScanner(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { sc.Close() })

	s := NewServer(StaticSource(loadFixture(t)), Options{Scanner: sc, Root: root, Logger: util.Discard()})
	result := callTool(t, s, makeRequest("scan_usage", nil))
	require.False(t, result.IsError, resultJSON(t, result))

	var report content.Report
	require.NoError(t, json.Unmarshal([]byte(resultJSON(t, result)), &report))
	assert.Equal(t, 1, report.FilesScanned)
	require.Len(t, report.Unknown, 1)
	assert.Equal(t, "text-primary-550", report.Unknown[0].ClassName)
}

// --- middleware ---

func TestLoggingMiddleware(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(logPath)
	require.NoError(t, err)

	s := NewServer(StaticSource(loadFixture(t)), Options{CallLog: callLog, Logger: util.Discard()})
	handler := s.loggingMiddleware()(s.handleResolveColor)

	result, err := handler(context.Background(), makeRequest("resolve_color", map[string]any{"token": "primary.500"}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	require.NoError(t, callLog.Close())

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()

	sc := bufio.NewScanner(f)
	require.True(t, sc.Scan())
	var entry mcplog.Entry
	require.NoError(t, json.Unmarshal(sc.Bytes(), &entry))
	assert.Equal(t, "resolve_color", entry.Tool)
	assert.Equal(t, "primary.500", entry.Params["token"])
	assert.False(t, entry.ToolError)
	assert.Contains(t, entry.Theme, "tailwind.config.js")
}
