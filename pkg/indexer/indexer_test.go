package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsgraph/pkg/util"
)

func TestGraphIndex_Rebuild(t *testing.T) {
	root := writeTree(t, map[string]string{
		"src/app.ts":        "import { util } from './util/.';\nimport React from 'react';\n",
		"src/util/index.ts": "export const util = 1;\n",
		"src/orphan.ts":     "",
	})

	index := NewGraphIndex(newTestScanner(t), root, DefaultScanOptions(), util.DiscardLogger())
	assert.Nil(t, index.Snapshot())

	snap, err := index.Rebuild(context.Background())
	require.NoError(t, err)
	require.Same(t, snap, index.Snapshot())

	assert.Equal(t, root, snap.Root)
	assert.Equal(t, int64(1), snap.Version)
	assert.Equal(t, 3, snap.Graph.NodeCount())
	assert.Equal(t, 1, snap.Graph.EdgeCount())

	deps, ok := snap.Graph.Dependencies("src/app.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"src/util/index.ts"}, deps)

	f, ok := snap.File("src/app.ts")
	require.True(t, ok)
	assert.Len(t, f.Imports, 2)

	_, ok = snap.File("missing.ts")
	assert.False(t, ok)
}

func TestGraphIndex_RebuildPicksUpChanges(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.ts": "",
		"b.ts": "",
	})

	index := NewGraphIndex(newTestScanner(t), root, ScanOptions{}, util.DiscardLogger())
	first, err := index.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Zero(t, first.Graph.EdgeCount())

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.ts"), []byte("import b from './b';\n"), 0644))

	second, err := index.Rebuild(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.Version)
	assert.Equal(t, 1, second.Graph.EdgeCount())

	// The first snapshot is untouched.
	assert.Zero(t, first.Graph.EdgeCount())
}

func TestGraphIndex_FailedRebuildKeepsSnapshot(t *testing.T) {
	root := writeTree(t, map[string]string{"a.ts": ""})

	index := NewGraphIndex(newTestScanner(t), root, ScanOptions{}, util.DiscardLogger())
	good, err := index.Rebuild(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(root))

	_, err = index.Rebuild(context.Background())
	require.Error(t, err)
	assert.Same(t, good, index.Snapshot())
}

func TestGraphIndex_ConcurrentReadsDuringRebuild(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.ts": "import b from './b';\n",
		"b.ts": "",
	})

	index := NewGraphIndex(newTestScanner(t), root, ScanOptions{}, util.DiscardLogger())
	_, err := index.Rebuild(context.Background())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 20 {
				snap := index.Snapshot()
				assert.Equal(t, 1, snap.Graph.EdgeCount())
			}
		}()
	}
	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := index.Rebuild(context.Background())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(4), index.Snapshot().Version)
}
