// FileCache gives the scan workers read access to source files through
// memory-mapped regions.
//
// **Lifecycle:**
//   - Get maps a file on first access; later calls return the same mapping.
//   - Release unmaps one file once its imports have been extracted.
//   - Close unmaps everything still held.
//
// **Limits:**
//   - MaxFiles bounds the number of simultaneously held files (and so the
//     number of open descriptors).
//   - MaxMemoryMB bounds the total mapped size. This is virtual address
//     space; only touched pages become resident.
//
// When mmap fails (special files, exotic filesystems) the file is read with
// os.ReadFile and served from memory instead.
package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// ErrCacheLimit is wrapped by Get when loading a file would exceed
// MaxFiles or MaxMemoryMB.
var ErrCacheLimit = errors.New("file cache limit reached")

// FileCache provides memory-mapped access to source files.
//
// Thread-safe: Multiple goroutines can call methods concurrently.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	//
	// Returns an error wrapping ErrCacheLimit when a limit would be
	// exceeded, or the underlying open/stat/read error.
	Get(filePath string) (*MappedFile, error)

	// Release unmaps filePath and drops it from the cache. Releasing a path
	// that is not cached is a no-op. The MappedFile returned by Get must not
	// be used afterwards.
	Release(filePath string) error

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases resources.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of files held at once. 0 is unlimited.
	MaxFiles int

	// MaxMemoryMB is the maximum total mapped size in MB. 0 is unlimited.
	MaxMemoryMB int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suited to a scan that releases each
// file right after extraction: the live set is roughly the worker count.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:    1024,
		MaxMemoryMB: 1024,
	}
}

// MappedFile is a source file held by the cache.
type MappedFile struct {
	// Path is the path the file was requested under.
	Path string

	// Data is the mapped region, or the file contents when mmap fell back to
	// a plain read. Nil for empty files.
	Data mmap.MMap

	// Size is the file size in bytes.
	Size int64

	// MappedAt is when the file was loaded.
	MappedAt time.Time

	file     *os.File
	fallback bool
}

// Text copies the file contents into a string.
func (mf *MappedFile) Text() string {
	return string(mf.Data)
}

func (mf *MappedFile) close() error {
	var errs []error
	if mf.Data != nil && !mf.fallback {
		if err := mf.Data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if mf.file != nil {
		if err := mf.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	mf.Data = nil
	mf.file = nil
	return errors.Join(errs...)
}

// FileCacheStats tracks cache metrics.
type FileCacheStats struct {
	// FilesLoaded is the cumulative number of successful loads.
	FilesLoaded int64

	// FilesCached is the current number of held files.
	FilesCached int

	// CacheHits counts Get calls served from the cache.
	CacheHits int64

	// CacheMisses counts Get calls that had to load (or failed to).
	CacheMisses int64

	// MmapFailures counts loads that fell back to os.ReadFile.
	MmapFailures int64

	// TotalMappedMB is the current total size held.
	TotalMappedMB float64
}

// NewFileCache creates a new FileCache with the given config.
//
// If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: *config,
		logger: logger,
		files:  make(map[string]*MappedFile),
	}
}

// fileCacheImpl guards files and totalBytes with mu; stats has its own lock
// so metric updates never contend with loads.
type fileCacheImpl struct {
	config FileCacheConfig
	logger *slog.Logger

	files      map[string]*MappedFile
	totalBytes int64
	mu         sync.RWMutex

	stats   FileCacheStats
	statsMu sync.Mutex
}

// Get returns the mapped file or loads it on first access.
func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	if mf, ok := fc.files[filePath]; ok {
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	// Another goroutine might have loaded it while we waited for Lock.
	if mf, ok := fc.files[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}

	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		file.Close()
		return nil, err
	}

	mf, err := fc.load(filePath, file, stat.Size())
	if err != nil {
		return nil, err
	}

	fc.files[filePath] = mf
	fc.totalBytes += mf.Size
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })

	return mf, nil
}

// checkLimitsLocked must be called while holding mu.Lock.
func (fc *fileCacheImpl) checkLimitsLocked(newFileSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.files) >= fc.config.MaxFiles {
		return fmt.Errorf("%w: %d files (limit: %d files)",
			ErrCacheLimit, len(fc.files), fc.config.MaxFiles)
	}

	if fc.config.MaxMemoryMB > 0 {
		limit := int64(fc.config.MaxMemoryMB) * 1024 * 1024
		if fc.totalBytes+newFileSize > limit {
			return fmt.Errorf("%w: %.2f MB + %.2f MB (limit: %d MB)",
				ErrCacheLimit, toMB(fc.totalBytes), toMB(newFileSize), fc.config.MaxMemoryMB)
		}
	}

	return nil
}

// load takes ownership of file.
func (fc *fileCacheImpl) load(filePath string, file *os.File, size int64) (*MappedFile, error) {
	mf := &MappedFile{
		Path:     filePath,
		Size:     size,
		MappedAt: time.Now(),
	}

	// Zero-length regions cannot be mapped.
	if size == 0 {
		file.Close()
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err == nil {
		mf.Data = data
		mf.file = file
		return mf, nil
	}

	fc.logger.Warn("mmap failed, using fallback",
		"file", filePath,
		"size", size,
		"error", err)
	fc.record(func(s *FileCacheStats) { s.MmapFailures++ })
	file.Close()

	contents, readErr := os.ReadFile(filePath)
	if readErr != nil {
		return nil, fmt.Errorf("mmap failed (%v) and fallback read failed: %w", err, readErr)
	}

	mf.Data = mmap.MMap(contents)
	mf.Size = int64(len(contents))
	mf.fallback = true
	return mf, nil
}

// Release unmaps one file.
func (fc *fileCacheImpl) Release(filePath string) error {
	fc.mu.Lock()
	mf, ok := fc.files[filePath]
	if ok {
		delete(fc.files, filePath)
		fc.totalBytes -= mf.Size
	}
	fc.mu.Unlock()

	if !ok {
		return nil
	}
	return mf.close()
}

// Size returns number of currently cached files.
func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()

	return len(fc.files)
}

// Stats returns current cache metrics.
func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.files)
	total := fc.totalBytes
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()

	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = toMB(total)
	return stats
}

// Close unmaps all files and releases resources.
func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.files {
		if err := mf.close(); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	fc.files = make(map[string]*MappedFile)
	fc.totalBytes = 0

	fc.statsMu.Lock()
	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"cache_hits", fc.stats.CacheHits,
		"cache_misses", fc.stats.CacheMisses,
		"mmap_failures", fc.stats.MmapFailures)
	fc.statsMu.Unlock()

	return errors.Join(errs...)
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}

func toMB(b int64) float64 {
	return float64(b) / (1024 * 1024)
}
