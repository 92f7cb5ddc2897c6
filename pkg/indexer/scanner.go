package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/resolver"
	"github.com/gnana997/tsgraph/pkg/util"
)

// WorkspaceScanner discovers and extracts every source file under a root.
//
// **Two-Phase Pipeline:**
//  1. File Discovery - breadth-first walk, exclusion globs applied
//  2. Parallel Extraction - worker pool, results slotted by job id
//
// ScanWorkspace returns only after every job has reported, so callers can
// build the graph from a complete file set.
//
// **Usage:**
//
//	scanner := NewWorkspaceScanner(ext, cache, logger)
//	result, err := scanner.ScanWorkspace(ctx, "/path/to/project", DefaultScanOptions())
type WorkspaceScanner struct {
	extractor *extractor.Extractor
	files     util.FileCache
	logger    *slog.Logger
}

// NewWorkspaceScanner creates a new workspace scanner. files may be nil, in
// which case workers read with os.ReadFile.
func NewWorkspaceScanner(ext *extractor.Extractor, files util.FileCache, logger *slog.Logger) *WorkspaceScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkspaceScanner{
		extractor: ext,
		files:     files,
		logger:    logger,
	}
}

// ScanWorkspace scans root and returns one SourceFile per discovered file,
// in discovery order.
//
// Any file that cannot be read or canonicalized fails the whole scan; the
// returned *FileError is the failing file with the lowest job id, so the
// error does not depend on scheduling.
func (ws *WorkspaceScanner) ScanWorkspace(ctx context.Context, rootPath string, options ScanOptions) (*ScanResult, error) {
	start := time.Now()

	root, err := resolver.NewRoot(rootPath)
	if err != nil {
		return nil, &DirError{Dir: rootPath, Err: err}
	}

	before := ws.extractor.Stats()

	paths, err := DiscoverFiles(root.Path(), options)
	if err != nil {
		return nil, err
	}
	discovered := time.Now()

	stats := ScanStats{
		FilesDiscovered: len(paths),
		DiscoveryTime:   discovered.Sub(start),
		StartTime:       start,
	}

	ws.logger.Debug("file discovery complete", "root", root.Path(), "files_found", len(paths))

	files, fileErrs, workers, err := ws.processFilesParallel(ctx, paths, options.Workers)
	if err != nil {
		return nil, err
	}

	after := ws.extractor.Stats()
	stats.WorkerCount = workers
	stats.FilesScanned = len(paths) - len(fileErrs)
	stats.FilesFailed = len(fileErrs)
	stats.Declarations = after.Declarations - before.Declarations
	stats.Malformed = after.Malformed - before.Malformed
	stats.CacheHits = after.CacheHits - before.CacheHits
	stats.CacheMisses = after.CacheMisses - before.CacheMisses
	stats.ScanTime = time.Since(discovered)

	if len(fileErrs) > 0 {
		slices.SortFunc(fileErrs, func(a, b FileError) int { return a.JobID - b.JobID })
		first := fileErrs[0]
		return nil, &first
	}

	return &ScanResult{Root: root, Files: files, Stats: stats}, nil
}

// processFilesParallel runs every path through a worker pool and waits for
// all of them.
func (ws *WorkspaceScanner) processFilesParallel(ctx context.Context, paths []string, numWorkers int) ([]*extractor.SourceFile, []FileError, int, error) {
	total := len(paths)
	if total == 0 {
		return nil, nil, 0, nil
	}

	workers := util.WorkerCount(numWorkers)
	if workers > total {
		workers = total
	}

	pool := NewWorkerPool(ctx, workers, ws.extractor, ws.files, ws.logger)
	pool.Start()
	defer pool.Stop()

	files := make([]*extractor.SourceFile, total)
	var fileErrs []FileError

	// Start the collector before submitting: with a full job queue the
	// submission loop blocks until results are drained.
	done := make(chan struct{})
	go func() {
		defer close(done)

		for received := 0; received < total; received++ {
			select {
			case <-ctx.Done():
				return
			case res := <-pool.Results():
				files[res.JobID] = res.File
			case fe := <-pool.Errors():
				ws.logger.Debug("file failed", "file", fe.FilePath, "error", fe.Err)
				fileErrs = append(fileErrs, fe)
			}
		}
	}()

	for i, path := range paths {
		if err := pool.Submit(FileJob{FilePath: path, JobID: i}); err != nil {
			<-done
			return nil, nil, workers, fmt.Errorf("submit %s: %w", path, err)
		}
	}
	pool.FinishSubmitting()

	<-done
	if err := ctx.Err(); err != nil {
		return nil, nil, workers, err
	}

	return files, fileErrs, workers, nil
}
