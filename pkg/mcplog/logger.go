// Package mcplog appends one JSON line per MCP tool call to a log file.
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

// maxParamLen is the longest string argument written verbatim.
const maxParamLen = 64

// Entry is one logged tool call.
type Entry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params"`
	GraphVersion  int64          `json:"graph_version"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	IsError       bool           `json:"is_error"`
	Error         *string        `json:"error"`
}

// Logger writes entries to an append-only file. Safe for concurrent use.
type Logger struct {
	mu   sync.Mutex
	path string
	f    *os.File
	enc  *json.Encoder
}

// Open creates path (and its parent directories) if needed and opens it for
// appending. An empty path returns a nil Logger, which callers treat as
// logging disabled.
func Open(path string) (*Logger, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create tool log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open tool log: %w", err)
	}
	return &Logger{path: path, f: f, enc: json.NewEncoder(f)}, nil
}

// Path returns the file the logger appends to.
func (l *Logger) Path() string { return l.path }

// Write appends e as a single line.
func (l *Logger) Write(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(e)
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// SanitizeParams copies args, replacing any string longer than maxParamLen
// with a "<key>_len" entry holding its length.
func SanitizeParams(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxParamLen {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

// ResponseBytes is the JSON size of a result's content, or 0 when there is
// nothing to measure.
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

// Now is swapped out in tests.
var Now = time.Now
