package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDetection replaces PATH and filesystem lookups for one test.
func stubDetection(t *testing.T, lookPath func(string) (string, error), stat func(string) (os.FileInfo, error)) {
	t.Helper()
	origLookPath, origStat := lookPathFunc, statFunc
	t.Cleanup(func() {
		lookPathFunc = origLookPath
		statFunc = origStat
	})
	lookPathFunc = lookPath
	statFunc = stat
}

func notFound(string) (string, error) { return "", exec.ErrNotFound }
func noFiles(string) (os.FileInfo, error) { return nil, os.ErrNotExist }
func scannerFor(input string) *bufio.Scanner { return bufio.NewScanner(strings.NewReader(input)) }

func decodeServers(t *testing.T, data []byte, key string) map[string]any {
	t.Helper()
	var config map[string]any
	require.NoError(t, json.Unmarshal(data, &config))
	servers, ok := config[key].(map[string]any)
	require.True(t, ok, "missing %q", key)
	return servers
}

// --- JSON merge tests ---

func TestMergeServerEntry_EmptyFile(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", "", nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	entry := decodeServers(t, out, "mcpServers")["uitheme"].(map[string]any)
	assert.Equal(t, "uitheme", entry["command"])
	assert.Equal(t, []any{"serve"}, entry["args"])
}

func TestMergeServerEntry_PinsThemePath(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", "/repo/tailwind.config.ts", nil)
	require.NoError(t, err)

	entry := decodeServers(t, out, "mcpServers")["uitheme"].(map[string]any)
	assert.Equal(t, []any{"serve", "--theme", "/repo/tailwind.config.ts"}, entry["args"])
}

func TestMergeServerEntry_ExistingServers(t *testing.T) {
	existing := []byte(`{"mcpServers": {"other-server": {"command": "other", "args": ["start"]}}}`)
	out, err := mergeServerEntry(existing, "mcpServers", "", nil)
	require.NoError(t, err)

	servers := decodeServers(t, out, "mcpServers")
	assert.Contains(t, servers, "other-server")
	assert.Contains(t, servers, "uitheme")
}

func TestMergeServerEntry_AlreadyConfigured(t *testing.T) {
	existing := []byte(`{"mcpServers": {"uitheme": {"command": "uitheme", "args": ["serve"]}}}`)
	out, err := mergeServerEntry(existing, "mcpServers", "", nil)
	assert.NoError(t, err)
	assert.Nil(t, out, "should return nil when already configured")
}

func TestMergeServerEntry_VSCodeFormat(t *testing.T) {
	out, err := mergeServerEntry(nil, "servers", "", map[string]string{"type": "stdio"})
	require.NoError(t, err)

	entry := decodeServers(t, out, "servers")["uitheme"].(map[string]any)
	assert.Equal(t, "stdio", entry["type"])
}

func TestMergeServerEntry_InvalidJSON(t *testing.T) {
	_, err := mergeServerEntry([]byte("not json"), "mcpServers", "", nil)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestMergeServerEntry_TrailingNewline(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", "", nil)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), out[len(out)-1])
}

// --- Prompt tests ---

func TestPromptYesNo(t *testing.T) {
	cases := map[string]bool{"\n": true, "y\n": true, "YES\n": true, "n\n": false, "": true}
	for input, want := range cases {
		assert.Equal(t, want, promptYesNo(scannerFor(input), &bytes.Buffer{}, "Continue?"), "input %q", input)
	}
}

func TestPromptScope(t *testing.T) {
	cases := map[string]string{"1\n": "project", "2\n": "user", "3\n": "", "\n": "project", "": "project"}
	for input, want := range cases {
		assert.Equal(t, want, promptScope(scannerFor(input), &bytes.Buffer{}, "Agent"), "input %q", input)
	}
}

// --- Detection tests ---

func TestDetectAgents_CLIOnPath(t *testing.T) {
	stubDetection(t, func(name string) (string, error) {
		if name == "claude" {
			return "/usr/bin/claude", nil
		}
		return "", exec.ErrNotFound
	}, noFiles)

	detected := detectAgents()
	require.Len(t, detected, 1)
	assert.Equal(t, "claude_code", detected[0].Def.ID)
}

func TestDetectAgents_NoneDetected(t *testing.T) {
	stubDetection(t, notFound, noFiles)
	assert.Empty(t, detectAgents())
}

func TestDetectAgents_FileBasedAgent(t *testing.T) {
	stubDetection(t, notFound, func(name string) (os.FileInfo, error) {
		if name == ".vscode" {
			return nil, nil
		}
		return nil, os.ErrNotExist
	})

	detected := detectAgents()
	require.Len(t, detected, 1)
	assert.Equal(t, "vscode_copilot", detected[0].Def.ID)
	assert.Equal(t, filepath.Join(".vscode", "mcp.json"), detected[0].ResolvedConfig)
}

// --- Integration tests ---

func TestExecuteSetup_NoAgents(t *testing.T) {
	stubDetection(t, notFound, noFiles)

	w := &bytes.Buffer{}
	executeSetup(strings.NewReader(""), w, setupOptions{})
	assert.Contains(t, w.String(), "No supported AI agents detected.")
}

func TestExecuteSetup_AutoModeFileAgent(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.MkdirAll(".vscode", 0o755))
	stubDetection(t, notFound, os.Stat)

	w := &bytes.Buffer{}
	executeSetup(strings.NewReader(""), w, setupOptions{auto: true})

	data, err := os.ReadFile(filepath.Join(".vscode", "mcp.json"))
	require.NoError(t, err)

	entry := decodeServers(t, data, "servers")["uitheme"].(map[string]any)
	assert.Equal(t, "uitheme", entry["command"])
	assert.Equal(t, "stdio", entry["type"])
	assert.Contains(t, w.String(), "VS Code Copilot configured")
}

func TestExecuteSetup_CLIAgentScope(t *testing.T) {
	t.Chdir(t.TempDir())
	stubDetection(t, func(name string) (string, error) {
		if name == "codex" {
			return "/usr/bin/codex", nil
		}
		return "", exec.ErrNotFound
	}, noFiles)

	var gotName string
	var gotArgs []string
	origRun := runCommand
	t.Cleanup(func() { runCommand = origRun })
	runCommand = func(name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	// Both answers must survive a single buffered read.
	w := &bytes.Buffer{}
	executeSetup(strings.NewReader("y\n2\n"), w, setupOptions{themePath: "/repo/theme.yaml"})

	assert.Equal(t, "codex", gotName)
	assert.Equal(t, []string{"mcp", "add", "--scope", "user", "uitheme", "--", "uitheme", "serve", "--theme", "/repo/theme.yaml"}, gotArgs)
	assert.Contains(t, w.String(), "OpenAI Codex configured (scope: user)")
}

func TestConfigureFileAgent_CreatesAndMerges(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sub", "mcp.json")

	require.NoError(t, configureFileAgent(AgentDef{ServersKey: "mcpServers"}, configPath, ""))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, decodeServers(t, data, "mcpServers"), "uitheme")
}

func TestConfigureFileAgent_MergesExisting(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{"mcpServers": {"other": {"command": "other"}}}`), 0o644))

	require.NoError(t, configureFileAgent(AgentDef{ServersKey: "mcpServers"}, configPath, ""))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	servers := decodeServers(t, data, "mcpServers")
	assert.Contains(t, servers, "other", "original server should be preserved")
	assert.Contains(t, servers, "uitheme")
}
