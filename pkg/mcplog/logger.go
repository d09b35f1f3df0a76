// Package mcplog writes one JSON line per MCP tool call so theme lookups
// made by agents can be audited after the fact.
package mcplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Entry is one logged tool call.
type Entry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Theme         string         `json:"theme,omitempty"`
	Params        map[string]any `json:"params"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	ToolError     bool           `json:"tool_error"`
	Error         *string        `json:"error"`
}

// NewEntry builds the entry for a finished call. err is a protocol-level
// error; tool errors (unknown tokens and the like) are flagged from the
// result.
func NewEntry(tool, themePath string, args map[string]any, start time.Time, result *mcp.CallToolResult, err error) Entry {
	e := Entry{
		Ts:            start.UTC().Format(time.RFC3339),
		Tool:          tool,
		Theme:         themePath,
		Params:        SanitizeParams(args),
		DurationMs:    Now().Sub(start).Milliseconds(),
		ResponseBytes: ResponseBytes(result),
		ToolError:     result != nil && result.IsError,
	}
	if err != nil {
		msg := err.Error()
		e.Error = &msg
	}
	return e
}

// Logger appends entries to a JSONL file. Safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// NewLogger opens path for appending, creating parent directories. An empty
// path returns a nil Logger, which callers treat as disabled.
func NewLogger(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one entry. A nil Logger discards it.
func (l *Logger) Write(entry Entry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// maxParamString bounds logged string arguments. Token paths and roles are
// short; anything longer is recorded by length only.
const maxParamString = 128

// SanitizeParams copies args for logging, replacing long strings with a
// "<key>_len" entry.
func SanitizeParams(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxParamString {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

// ResponseBytes returns the JSON size of a result's content, or 0.
func ResponseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is the clock used for durations. Tests replace it.
var Now = time.Now
