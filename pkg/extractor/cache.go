package extractor

import (
	"crypto/sha256"
	"encoding/hex"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/tsgraph/pkg/imports"
)

// DefaultImportCacheSize is the number of distinct file contents remembered
// when no size is configured.
const DefaultImportCacheSize = 4096

// parsed is the cached outcome of scanning one file's text.
type parsed struct {
	imports   []imports.Import
	malformed []string
	total     int
}

// ImportCache remembers parse results by content hash, so rescans in watch
// mode skip files whose text has not changed. Keys are independent of path:
// two files with identical text share an entry.
//
// Thread-safe.
type ImportCache struct {
	entries *lru.Cache[string, parsed]
	hits    atomic.Int64
	misses  atomic.Int64
}

// NewImportCache creates a cache holding up to size entries. A non-positive
// size selects DefaultImportCacheSize.
func NewImportCache(size int) (*ImportCache, error) {
	if size <= 0 {
		size = DefaultImportCacheSize
	}
	entries, err := lru.New[string, parsed](size)
	if err != nil {
		return nil, err
	}
	return &ImportCache{entries: entries}, nil
}

// ContentHash returns the hex SHA-256 of content.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

func (c *ImportCache) get(hash string) (parsed, bool) {
	p, ok := c.entries.Get(hash)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return p, ok
}

func (c *ImportCache) add(hash string, p parsed) {
	c.entries.Add(hash, p)
}

// Len returns the number of cached entries.
func (c *ImportCache) Len() int {
	return c.entries.Len()
}

// Purge drops every entry. Counters are kept.
func (c *ImportCache) Purge() {
	c.entries.Purge()
}

// Counters returns cumulative hits and misses.
func (c *ImportCache) Counters() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
