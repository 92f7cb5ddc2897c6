package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sync/atomic"

	"github.com/gnana997/tsgraph/pkg/imports"
	"github.com/gnana997/tsgraph/pkg/resolver"
)

// Extractor builds SourceFiles from file text.
//
// Usage:
//
//	cache, _ := NewImportCache(0)
//	ex := NewExtractor(cache, logger)
//	file, err := ex.ExtractFile(path, content)
//
// Safe for concurrent use by the scan workers.
type Extractor struct {
	cache  *ImportCache
	logger *slog.Logger

	files        atomic.Int64
	declarations atomic.Int64
	malformed    atomic.Int64
}

// NewExtractor creates an extractor. cache may be nil to disable caching.
func NewExtractor(cache *ImportCache, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}

	return &Extractor{
		cache:  cache,
		logger: logger,
	}
}

// ExtractFile canonicalizes path and scans content for imports.
//
// Declarations whose syntax is not recognised are skipped and recorded in
// SourceFile.Malformed; they never fail the file. The only error is a path that cannot be
// canonicalized.
func (e *Extractor) ExtractFile(path, content string) (*SourceFile, error) {
	canonical, err := resolver.Canonicalize(path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", path, err)
	}

	p := e.parse(content)

	e.files.Add(1)
	e.declarations.Add(int64(p.total))
	e.malformed.Add(int64(len(p.malformed)))

	for _, decl := range p.malformed {
		e.logger.Warn("malformed declaration", "file", canonical, "declaration", decl)
	}

	file := &SourceFile{
		FileName:      filepath.Base(canonical),
		CanonicalPath: canonical,
		Imports:       slices.Clone(p.imports),
		Malformed:     slices.Clone(p.malformed),
	}

	if e.logger.Enabled(context.Background(), slog.LevelDebug) {
		e.logger.Debug("extracted file\n" + file.String())
	}

	return file, nil
}

func (e *Extractor) parse(content string) parsed {
	var hash string
	if e.cache != nil {
		hash = ContentHash(content)
		if p, ok := e.cache.get(hash); ok {
			return p
		}
	}

	decls := imports.ExtractDeclarations(content)
	p := parsed{total: len(decls)}
	for _, decl := range decls {
		imp, err := imports.ParseImport(decl)
		if err != nil {
			p.malformed = append(p.malformed, decl)
			continue
		}
		p.imports = append(p.imports, imp)
	}

	if e.cache != nil {
		e.cache.add(hash, p)
	}
	return p
}

// Stats returns cumulative counters.
func (e *Extractor) Stats() Stats {
	s := Stats{
		Files:        e.files.Load(),
		Declarations: e.declarations.Load(),
		Malformed:    e.malformed.Load(),
	}
	if e.cache != nil {
		s.CacheHits, s.CacheMisses = e.cache.Counters()
	}
	return s
}
