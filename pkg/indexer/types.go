// Package indexer discovers the TypeScript files under a root, scans them in
// parallel, and keeps the latest dependency graph built from them.
package indexer

import (
	"fmt"
	"time"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/resolver"
)

// SourceExtension is the only file extension discovery accepts.
const SourceExtension = ".ts"

// declarationSuffix marks type declaration files, which carry no imports
// worth graphing.
const declarationSuffix = ".d.ts"

// ScanOptions configures workspace scanning behavior.
type ScanOptions struct {
	// Exclude patterns (doublestar syntax, matched against slash-separated
	// paths relative to the root). A matching directory is not descended.
	Exclude []string

	// Workers is the number of extraction goroutines. 0 = auto-detect.
	Workers int
}

// DefaultScanOptions returns recommended scan options.
func DefaultScanOptions() ScanOptions {
	return ScanOptions{
		Exclude: []string{
			"**/node_modules/**",
			"**/.git/**",
		},
	}
}

// ScanStats contains statistics about a workspace scan.
type ScanStats struct {
	FilesDiscovered int `json:"files_discovered"`
	FilesScanned    int `json:"files_scanned"`
	FilesFailed     int `json:"files_failed"`
	WorkerCount     int `json:"worker_count"`

	// Counters from the extractor, for this scan only.
	Declarations int64 `json:"declarations"`
	Malformed    int64 `json:"malformed"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`

	DiscoveryTime time.Duration `json:"discovery_time"`
	ScanTime      time.Duration `json:"scan_time"`
	StartTime     time.Time     `json:"start_time"`
}

// ScanResult is the output of one workspace scan. Files are in discovery
// order.
type ScanResult struct {
	Root  resolver.Root
	Files []*extractor.SourceFile
	Stats ScanStats
}

// FileError represents a file that could not be read or extracted.
type FileError struct {
	FilePath string
	JobID    int
	Err      error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.FilePath, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// DirError represents a directory that could not be listed.
type DirError struct {
	Dir string
	Err error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("%s: %v", e.Dir, e.Err)
}

func (e *DirError) Unwrap() error {
	return e.Err
}
