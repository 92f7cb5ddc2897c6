package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/graph"
	"github.com/gnana997/tsgraph/pkg/indexer"
	"github.com/gnana997/tsgraph/pkg/mcplog"
	"github.com/gnana997/tsgraph/pkg/util"
)

// --- helpers ---

type fixedSnapshot struct{ snap *indexer.Snapshot }

func (f fixedSnapshot) Snapshot() *indexer.Snapshot { return f.snap }

var testTree = map[string]string{
	"src/app.ts":        "import { util } from './util/.';\nimport React from 'react';\nimport { svc } from './svc';\n",
	"src/svc.ts":        "import { db } from './db';\n",
	"src/db.ts":         "",
	"src/util/index.ts": "",
	"lib/extra.ts":      "import missing from './missing';\n",
}

func buildIndex(t *testing.T) *indexer.GraphIndex {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	for rel, content := range testTree {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}

	logger := util.DiscardLogger()
	scanner := indexer.NewWorkspaceScanner(extractor.NewExtractor(nil, logger), nil, logger)
	index := indexer.NewGraphIndex(scanner, root, indexer.DefaultScanOptions(), logger)
	_, err = index.Rebuild(context.Background())
	require.NoError(t, err)
	return index
}

func testServer(t *testing.T) (*Server, *indexer.Snapshot) {
	t.Helper()
	index := buildIndex(t)
	return NewServer(index, nil, graph.DOTOptions{}), index.Snapshot()
}

func callTool(t *testing.T, s *Server, req mcp.CallToolRequest) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

	switch req.Params.Name {
	case "list_files":
		handler = s.handleListFiles
	case "get_file_imports":
		handler = s.handleGetFileImports
	case "get_dependencies":
		handler = s.handleGetDependencies
	case "get_dependents":
		handler = s.handleGetDependents
	case "get_graph_dot":
		handler = s.handleGetGraphDOT
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

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return textContent.Text
}

func decode[T any](t *testing.T, result *mcp.CallToolResult) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &v))
	return v
}

// --- list_files ---

func TestHandleListFiles(t *testing.T) {
	s, snap := testServer(t)
	result := callTool(t, s, makeRequest("list_files", nil))
	require.False(t, result.IsError)

	resp := decode[listFilesResponse](t, result)
	assert.Equal(t, snap.Version, resp.Version)
	assert.Equal(t, snap.Root, resp.Root)

	byPath := map[string]fileSummary{}
	for _, f := range resp.Files {
		byPath[f.Path] = f
	}
	require.Len(t, byPath, 5)
	assert.Equal(t, fileSummary{Path: "src/app.ts", Imports: 3, Dependencies: 2}, byPath["src/app.ts"])
	assert.Equal(t, fileSummary{Path: "src/svc.ts", Imports: 1, Dependencies: 1, Dependents: 1}, byPath["src/svc.ts"])
	assert.Equal(t, fileSummary{Path: "lib/extra.ts", Imports: 1}, byPath["lib/extra.ts"])
}

func TestHandleListFiles_Prefix(t *testing.T) {
	s, _ := testServer(t)
	result := callTool(t, s, makeRequest("list_files", map[string]any{"prefix": "src/util/"}))

	resp := decode[listFilesResponse](t, result)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "src/util/index.ts", resp.Files[0].Path)

	result = callTool(t, s, makeRequest("list_files", map[string]any{"prefix": "nowhere/"}))
	assert.Empty(t, decode[listFilesResponse](t, result).Files)
}

func TestHandlers_GraphNotBuilt(t *testing.T) {
	s := NewServer(fixedSnapshot{}, nil, graph.DOTOptions{})

	for _, name := range []string{"list_files", "get_file_imports", "get_dependencies", "get_dependents", "get_graph_dot"} {
		t.Run(name, func(t *testing.T) {
			result := callTool(t, s, makeRequest(name, map[string]any{"path": "src/app.ts"}))
			assert.True(t, result.IsError)
			assert.Contains(t, resultText(t, result), "graph not built yet")
		})
	}
}

// --- get_file_imports ---

func TestHandleGetFileImports(t *testing.T) {
	s, snap := testServer(t)
	result := callTool(t, s, makeRequest("get_file_imports", map[string]any{"path": "src/app.ts"}))
	require.False(t, result.IsError)

	resp := decode[fileImportsResponse](t, result)
	assert.Equal(t, "src/app.ts", resp.Path)
	assert.Equal(t, filepath.Join(snap.Root, "src", "app.ts"), resp.CanonicalPath)

	require.Len(t, resp.Imports, 3)
	assert.Equal(t, importInfo{
		Kind:      "local",
		Specifier: "./util/index.ts",
		Resolved:  filepath.Join(snap.Root, "src", "util", "index.ts"),
		Target:    "src/util/index.ts",
	}, resp.Imports[0])
	assert.Equal(t, importInfo{Kind: "package", Specifier: "react"}, resp.Imports[1])
	assert.Equal(t, "src/svc.ts", resp.Imports[2].Target)
}

func TestHandleGetFileImports_UnresolvedHasNoTarget(t *testing.T) {
	s, snap := testServer(t)
	result := callTool(t, s, makeRequest("get_file_imports", map[string]any{"path": "lib/extra.ts"}))

	resp := decode[fileImportsResponse](t, result)
	require.Len(t, resp.Imports, 1)
	assert.Equal(t, filepath.Join(snap.Root, "lib", "missing.ts"), resp.Imports[0].Resolved)
	assert.Empty(t, resp.Imports[0].Target)
}

func TestHandleGetFileImports_Errors(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest("get_file_imports", nil))
	assert.True(t, result.IsError, "path is required")

	result = callTool(t, s, makeRequest("get_file_imports", map[string]any{"path": "nope.ts"}))
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "nope.ts")
}

// --- get_dependencies / get_dependents ---

func TestHandleGetDependencies(t *testing.T) {
	s, _ := testServer(t)

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{"direct", map[string]any{"path": "src/app.ts"}, []string{"src/svc.ts", "src/util/index.ts"}},
		{"transitive", map[string]any{"path": "src/app.ts", "transitive": true}, []string{"src/db.ts", "src/svc.ts", "src/util/index.ts"}},
		{"leaf", map[string]any{"path": "src/db.ts"}, []string{}},
		{"unresolved import", map[string]any{"path": "lib/extra.ts"}, []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := callTool(t, s, makeRequest("get_dependencies", tc.args))
			require.False(t, result.IsError)
			assert.Equal(t, tc.want, decode[neighborsResponse](t, result).Files)
		})
	}
}

func TestHandleGetDependents(t *testing.T) {
	s, _ := testServer(t)

	result := callTool(t, s, makeRequest("get_dependents", map[string]any{"path": "src/db.ts"}))
	require.False(t, result.IsError)
	resp := decode[neighborsResponse](t, result)
	assert.Equal(t, []string{"src/svc.ts"}, resp.Files)
	assert.False(t, resp.Transitive)

	result = callTool(t, s, makeRequest("get_dependents", map[string]any{"path": "src/db.ts", "transitive": true}))
	resp = decode[neighborsResponse](t, result)
	assert.Equal(t, []string{"src/app.ts", "src/svc.ts"}, resp.Files)
	assert.True(t, resp.Transitive)
}

func TestHandleNeighbors_UnknownPath(t *testing.T) {
	s, _ := testServer(t)

	for _, name := range []string{"get_dependencies", "get_dependents"} {
		result := callTool(t, s, makeRequest(name, map[string]any{"path": "ghost.ts", "transitive": true}))
		assert.True(t, result.IsError, name)
	}
}

// --- get_graph_dot ---

func TestHandleGetGraphDOT(t *testing.T) {
	s, snap := testServer(t)

	result := callTool(t, s, makeRequest("get_graph_dot", nil))
	require.False(t, result.IsError)
	dot := resultText(t, result)
	assert.Equal(t, graph.RenderDOT(snap.Graph, graph.DOTOptions{}), dot)
	assert.True(t, strings.HasPrefix(dot, "digraph {\n"))
	assert.NotContains(t, dot, `label = "/`)

	result = callTool(t, s, makeRequest("get_graph_dot", map[string]any{"labels": true}))
	assert.Equal(t, graph.RenderDOT(snap.Graph, graph.DOTOptions{EdgeLabels: true}), resultText(t, result))
}

// --- logging middleware ---

func TestLoggingMiddleware(t *testing.T) {
	index := buildIndex(t)
	logPath := filepath.Join(t.TempDir(), "tools.jsonl")
	toolLog, err := mcplog.Open(logPath)
	require.NoError(t, err)

	s := NewServer(index, toolLog, graph.DOTOptions{})
	wrapped := s.loggingMiddleware()(s.handleGetDependencies)

	_, err = wrapped(context.Background(), makeRequest("get_dependencies", map[string]any{"path": "src/app.ts"}))
	require.NoError(t, err)
	_, err = wrapped(context.Background(), makeRequest("get_dependencies", map[string]any{"path": "ghost.ts"}))
	require.NoError(t, err)
	require.NoError(t, toolLog.Close())

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var first, second mcplog.Entry
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))

	assert.Equal(t, "get_dependencies", first.Tool)
	assert.Equal(t, "src/app.ts", first.Params["path"])
	assert.Equal(t, index.Snapshot().Version, first.GraphVersion)
	assert.Positive(t, first.ResponseBytes)
	assert.False(t, first.IsError)
	assert.True(t, second.IsError)
	assert.Nil(t, second.Error)
}
