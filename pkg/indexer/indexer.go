package indexer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/graph"
)

// Snapshot is one complete build: the scanned files and the graph assembled
// from them. Snapshots are immutable once published.
type Snapshot struct {
	Root       string
	Files      []*extractor.SourceFile
	FilesByKey map[string]*extractor.SourceFile
	Graph      *graph.Graph
	Stats      ScanStats
	Version    int64
	BuiltAt    time.Time
}

// File returns the scanned file with the given project-relative key.
func (s *Snapshot) File(key string) (*extractor.SourceFile, bool) {
	f, ok := s.FilesByKey[key]
	return f, ok
}

// GraphIndex holds the latest Snapshot for a root and rebuilds it on demand.
//
// **Thread Safety:**
//   - Snapshot may be called from any goroutine at any time
//   - Rebuilds are serialized; readers never block on a running rebuild
//
// **Usage:**
//
//	index := NewGraphIndex(scanner, "/path/to/project", DefaultScanOptions(), logger)
//	snap, err := index.Rebuild(ctx)
//	...
//	deps, _ := index.Snapshot().Graph.Dependencies("src/app.ts")
type GraphIndex struct {
	scanner *WorkspaceScanner
	root    string
	options ScanOptions
	logger  *slog.Logger

	buildMu sync.Mutex

	mu      sync.RWMutex
	current *Snapshot
	version int64
}

// NewGraphIndex creates an empty index. Call Rebuild to populate it.
func NewGraphIndex(scanner *WorkspaceScanner, root string, options ScanOptions, logger *slog.Logger) *GraphIndex {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphIndex{
		scanner: scanner,
		root:    root,
		options: options,
		logger:  logger,
	}
}

// Rebuild rescans the root, assembles a new graph and publishes it. On
// failure the previous snapshot stays current.
func (gi *GraphIndex) Rebuild(ctx context.Context) (*Snapshot, error) {
	gi.buildMu.Lock()
	defer gi.buildMu.Unlock()

	result, err := gi.scanner.ScanWorkspace(ctx, gi.root, gi.options)
	if err != nil {
		return nil, err
	}

	g, err := graph.Build(result.Root, result.Files, gi.logger)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*extractor.SourceFile, len(result.Files))
	for _, f := range result.Files {
		byKey[result.Root.Key(f.CanonicalPath)] = f
	}

	gi.mu.Lock()
	gi.version++
	snap := &Snapshot{
		Root:       result.Root.Path(),
		Files:      result.Files,
		FilesByKey: byKey,
		Graph:      g,
		Stats:      result.Stats,
		Version:    gi.version,
		BuiltAt:    time.Now(),
	}
	gi.current = snap
	gi.mu.Unlock()

	gi.logger.Info("graph built",
		"root", snap.Root,
		"version", snap.Version,
		"files", result.Stats.FilesScanned,
		"declarations", result.Stats.Declarations,
		"malformed", result.Stats.Malformed,
		"cache_hits", result.Stats.CacheHits,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"workers", result.Stats.WorkerCount,
		"duration_ms", time.Since(result.Stats.StartTime).Milliseconds())

	return snap, nil
}

// Snapshot returns the latest published snapshot, or nil before the first
// successful Rebuild.
func (gi *GraphIndex) Snapshot() *Snapshot {
	gi.mu.RLock()
	defer gi.mu.RUnlock()
	return gi.current
}

// Root returns the directory the index scans.
func (gi *GraphIndex) Root() string {
	return gi.root
}
