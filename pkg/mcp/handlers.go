package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/tsgraph/pkg/graph"
	"github.com/gnana997/tsgraph/pkg/indexer"
	"github.com/gnana997/tsgraph/pkg/resolver"
)

// jsonResult marshals v into a text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) snapshot() (*indexer.Snapshot, *mcp.CallToolResult) {
	snap := s.index.Snapshot()
	if snap == nil {
		return nil, mcp.NewToolResultError("graph not built yet")
	}
	return snap, nil
}

// --- list_files ---

type fileSummary struct {
	Path         string `json:"path"`
	Imports      int    `json:"imports"`
	Dependencies int    `json:"dependencies"`
	Dependents   int    `json:"dependents"`
}

type listFilesResponse struct {
	Version int64         `json:"version"`
	Root    string        `json:"root"`
	Files   []fileSummary `json:"files"`
}

func (s *Server) handleListFiles(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}
	prefix := req.GetString("prefix", "")

	files := []fileSummary{}
	for _, n := range snap.Graph.Nodes() {
		if !strings.HasPrefix(n.Path, prefix) {
			continue
		}
		summary := fileSummary{
			Path:         n.Path,
			Dependencies: len(snap.Graph.Outgoing(n.ID)),
			Dependents:   len(snap.Graph.Incoming(n.ID)),
		}
		if f, ok := snap.File(n.Path); ok {
			summary.Imports = len(f.Imports)
		}
		files = append(files, summary)
	}

	return jsonResult(listFilesResponse{Version: snap.Version, Root: snap.Root, Files: files})
}

// --- get_file_imports ---

type importInfo struct {
	Kind      string `json:"kind"`
	Specifier string `json:"specifier"`
	Resolved  string `json:"resolved,omitempty"`
	Target    string `json:"target,omitempty"`
}

type fileImportsResponse struct {
	Path          string       `json:"path"`
	CanonicalPath string       `json:"canonical_path"`
	Imports       []importInfo `json:"imports"`
}

func (s *Server) handleGetFileImports(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}

	f, ok := snap.File(path)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", path)), nil
	}

	out := fileImportsResponse{
		Path:          path,
		CanonicalPath: f.CanonicalPath,
		Imports:       make([]importInfo, 0, len(f.Imports)),
	}
	for _, imp := range f.Imports {
		info := importInfo{Kind: imp.Kind.String(), Specifier: imp.Specifier}
		if imp.IsLocal() {
			info.Resolved = resolver.Resolve(f.Dir(), imp.Specifier)
			key := resolver.ProjectRelativePath(snap.Root, info.Resolved)
			if _, ok := snap.Graph.Lookup(key); ok {
				info.Target = key
			}
		}
		out.Imports = append(out.Imports, info)
	}

	return jsonResult(out)
}

// --- get_dependencies / get_dependents ---

type neighborsResponse struct {
	Path       string   `json:"path"`
	Transitive bool     `json:"transitive"`
	Files      []string `json:"files"`
}

func (s *Server) handleGetDependencies(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.neighbors(req, false)
}

func (s *Server) handleGetDependents(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.neighbors(req, true)
}

func (s *Server) neighbors(req mcp.CallToolRequest, reverse bool) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	transitive := req.GetBool("transitive", false)

	snap, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}
	g := snap.Graph

	var files []string
	var ok bool
	switch {
	case transitive:
		files, ok = g.Transitive(path, reverse)
	case reverse:
		files, ok = g.Dependents(path)
	default:
		files, ok = g.Dependencies(path)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("file not found: %s", path)), nil
	}

	return jsonResult(neighborsResponse{Path: path, Transitive: transitive, Files: files})
}

// --- get_graph_dot ---

func (s *Server) handleGetGraphDOT(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, errResult := s.snapshot()
	if errResult != nil {
		return errResult, nil
	}

	opts := s.dotOpts
	opts.EdgeLabels = req.GetBool("labels", opts.EdgeLabels)

	return mcp.NewToolResultText(graph.RenderDOT(snap.Graph, opts)), nil
}
