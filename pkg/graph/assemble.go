package graph

import (
	"log/slog"

	"github.com/gnana997/tsgraph/pkg/extractor"
	"github.com/gnana997/tsgraph/pkg/resolver"
)

// Assembler builds a Graph from extracted files in two phases: every file
// becomes a node first, then local imports are linked. Edges can therefore
// point at files that appear later in the input.
type Assembler struct {
	root   resolver.Root
	graph  *Graph
	keys   map[string]NodeID
	logger *slog.Logger
}

// NewAssembler creates an assembler for files under root.
func NewAssembler(root resolver.Root, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{
		root:   root,
		graph:  New(),
		logger: logger,
	}
}

// RegisterNodes adds one node per file, keyed by its project-relative path.
// When two files share a key the later one wins the key.
func (a *Assembler) RegisterNodes(files []*extractor.SourceFile) {
	a.keys = make(map[string]NodeID, len(files))
	for _, f := range files {
		key := a.root.Key(f.CanonicalPath)
		a.keys[key] = a.graph.AddNode(key)
	}
}

// LinkEdges resolves each local import against its file's directory and adds
// an edge when the target is a registered node. Package imports and targets
// outside the scanned set are skipped silently.
func (a *Assembler) LinkEdges(files []*extractor.SourceFile) error {
	if a.keys == nil {
		return ErrNodesNotRegistered
	}

	unresolved := 0
	for _, f := range files {
		from, ok := a.keys[a.root.Key(f.CanonicalPath)]
		if !ok {
			continue
		}

		dir := f.Dir()
		for _, imp := range f.LocalImports() {
			target := resolver.Resolve(dir, imp.Specifier)
			to, ok := a.keys[a.root.Key(target)]
			if !ok {
				unresolved++
				continue
			}
			a.graph.UpdateEdge(from, to, target)
		}
	}

	a.logger.Debug("linked edges",
		"nodes", a.graph.NodeCount(),
		"edges", a.graph.EdgeCount(),
		"unresolved_local_imports", unresolved)

	return nil
}

// Graph returns the graph built so far.
func (a *Assembler) Graph() *Graph {
	return a.graph
}

// Build runs both phases over files.
func Build(root resolver.Root, files []*extractor.SourceFile, logger *slog.Logger) (*Graph, error) {
	a := NewAssembler(root, logger)
	a.RegisterNodes(files)
	if err := a.LinkEdges(files); err != nil {
		return nil, err
	}
	return a.Graph(), nil
}
