package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/indexer"
	"github.com/gnana997/tsgraph/pkg/util"
)

// configPath is relative to the working directory.
var configPath = filepath.Join(".tsgraph", "config.yaml")

// ProjectConfig holds the contents of .tsgraph/config.yaml. Unset fields keep
// their defaults.
type ProjectConfig struct {
	Exclude         []string `yaml:"exclude"`
	Workers         int      `yaml:"workers"`
	EdgeLabels      *bool    `yaml:"edge_labels"`
	LogLevel        string   `yaml:"log_level"`
	LogFormat       string   `yaml:"log_format"`
	DebounceMs      int      `yaml:"debounce_ms"`
	ImportCacheSize int      `yaml:"import_cache_size"`
	ToolLog         string   `yaml:"tool_log"`
}

// loadProjectConfig reads path. Returns nil (no error) if the file does not
// exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// settings is the effective configuration for one run: defaults, then the
// project file, then command-line flags.
type settings struct {
	dir             string
	watch           bool
	serve           bool
	edgeLabels      bool
	scan            indexer.ScanOptions
	debounce        time.Duration
	importCacheSize int
	toolLog         string
	logLevel        util.LogLevel
	logFormat       util.LogFormat
}

func resolveSettings(cfg *ProjectConfig, opts options) (settings, error) {
	s := settings{
		dir:             opts.dir,
		watch:           opts.watch,
		serve:           opts.serve,
		scan:            indexer.DefaultScanOptions(),
		debounce:        indexer.DefaultDebounce,
		importCacheSize: extractor.DefaultImportCacheSize,
		logLevel:        util.LevelInfo,
		logFormat:       util.FormatText,
	}

	if cfg != nil {
		if cfg.Exclude != nil {
			s.scan.Exclude = cfg.Exclude
		}
		if cfg.Workers < 0 {
			return s, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
		}
		s.scan.Workers = cfg.Workers
		if cfg.EdgeLabels != nil {
			s.edgeLabels = *cfg.EdgeLabels
		}
		if cfg.DebounceMs > 0 {
			s.debounce = time.Duration(cfg.DebounceMs) * time.Millisecond
		}
		if cfg.ImportCacheSize > 0 {
			s.importCacheSize = cfg.ImportCacheSize
		}
		s.toolLog = cfg.ToolLog

		level, err := util.ParseLevel(cfg.LogLevel)
		if err != nil {
			return s, err
		}
		s.logLevel = level
		format, err := util.ParseFormat(cfg.LogFormat)
		if err != nil {
			return s, err
		}
		s.logFormat = format
	}

	if opts.labels {
		s.edgeLabels = true
	}
	if opts.debug {
		s.logLevel = util.LevelDebug
	}

	return s, nil
}
