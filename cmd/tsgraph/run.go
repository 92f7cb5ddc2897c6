package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/graph"
	"github.com/gnana997/tsgraph/pkg/indexer"
	mcpserver "github.com/gnana997/tsgraph/pkg/mcp"
	"github.com/gnana997/tsgraph/pkg/mcplog"
	"github.com/gnana997/tsgraph/pkg/util"
)

type runIO struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// writeError marks a failure to write the output file.
type writeError struct{ err error }

func (e *writeError) Error() string { return e.err.Error() }
func (e *writeError) Unwrap() error { return e.err }

// run builds the graph once, writes it, and then keeps going in watch or
// serve mode if asked. Returns the exit code.
func run(ctx context.Context, s settings, rio runIO, logger *slog.Logger) int {
	cache, err := extractor.NewImportCache(s.importCacheSize)
	if err != nil {
		fmt.Fprintf(rio.stderr, "ERROR: %v\n", err)
		return 1
	}

	cacheConfig := util.DefaultFileCacheConfig()
	cacheConfig.Logger = logger
	files := util.NewFileCache(cacheConfig)
	defer files.Close()

	scanner := indexer.NewWorkspaceScanner(extractor.NewExtractor(cache, logger), files, logger)
	index := indexer.NewGraphIndex(scanner, s.dir, s.scan, logger)

	// In serve mode stdout carries the protocol.
	confirm := rio.stdout
	if s.serve {
		confirm = rio.stderr
	}
	b := &builder{
		index:   index,
		out:     graph.DOTOptions{EdgeLabels: s.edgeLabels},
		confirm: confirm,
		diag:    rio.stderr,
	}

	if err := b.build(ctx); err != nil {
		reportError(rio.stderr, err)
		return 1
	}

	if s.watch {
		watcher, err := startWatcher(ctx, b, s, rio.stderr, logger)
		if err != nil {
			fmt.Fprintf(rio.stderr, "ERROR: watch: %v\n", err)
			return 1
		}
		defer watcher.Stop()
	}

	if s.serve {
		return serve(ctx, index, s, rio, logger)
	}

	if s.watch {
		logger.Info("watching for changes", "root", index.Snapshot().Root)
		<-ctx.Done()
	}
	return 0
}

// builder rebuilds the index and rewrites the output file.
type builder struct {
	index   *indexer.GraphIndex
	out     graph.DOTOptions
	confirm io.Writer
	diag    io.Writer // malformed declarations, independent of log level

	mu sync.Mutex
}

func (b *builder) build(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	snap, err := b.index.Rebuild(ctx)
	if err != nil {
		return err
	}
	reportMalformed(b.diag, snap.Files)

	if err := graph.WriteDOTFile(outputFile, snap.Graph, b.out); err != nil {
		return &writeError{err: err}
	}
	fmt.Fprintf(b.confirm, "Wrote output graph to %s\n", outputFile)
	return nil
}

func startWatcher(ctx context.Context, b *builder, s settings, stderr io.Writer, logger *slog.Logger) (*indexer.FileWatcher, error) {
	rebuild := func() {
		if ctx.Err() != nil {
			return
		}
		// A failed rebuild keeps the previous graph; the next change retries.
		if err := b.build(ctx); err != nil && ctx.Err() == nil {
			reportError(stderr, err)
		}
	}

	watcher, err := indexer.NewFileWatcher(b.index.Snapshot().Root, indexer.WatchOptions{
		Debounce: s.debounce,
		Exclude:  s.scan.Exclude,
	}, rebuild, logger)
	if err != nil {
		return nil, err
	}
	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}

func serve(ctx context.Context, index *indexer.GraphIndex, s settings, rio runIO, logger *slog.Logger) int {
	toolLog, err := mcplog.Open(s.toolLog)
	if err != nil {
		fmt.Fprintf(rio.stderr, "ERROR: %v\n", err)
		return 1
	}
	if toolLog != nil {
		defer toolLog.Close()
		logger.Info("logging tool calls", "path", toolLog.Path())
	}

	srv := mcpserver.NewServer(index, toolLog, graph.DOTOptions{EdgeLabels: s.edgeLabels})
	logger.Info("serving MCP on stdio", "root", index.Snapshot().Root)

	if err := srv.Serve(ctx, rio.stdin, rio.stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(rio.stderr, "ERROR: server: %v\n", err)
		return 1
	}
	return 0
}

// reportMalformed prints one line per dropped declaration, in file order.
func reportMalformed(w io.Writer, files []*extractor.SourceFile) {
	for _, f := range files {
		for _, decl := range f.Malformed {
			fmt.Fprintf(w, "ERROR reading line: %s: %s\n", f.CanonicalPath, decl)
		}
	}
}

// reportError prints err with the prefix for its category.
func reportError(w io.Writer, err error) {
	var (
		fileErr *indexer.FileError
		dirErr  *indexer.DirError
		wErr    *writeError
	)
	switch {
	case errors.As(err, &fileErr):
		fmt.Fprintf(w, "ERROR reading filepath: %s: %v\n", fileErr.FilePath, fileErr.Err)
	case errors.As(err, &dirErr):
		fmt.Fprintf(w, "ERROR reading directory: %s: %v\n", dirErr.Dir, dirErr.Err)
	case errors.As(err, &wErr):
		fmt.Fprintf(w, "ERROR writing graph: %v\n", wErr.err)
	default:
		fmt.Fprintf(w, "ERROR: %v\n", err)
	}
}
