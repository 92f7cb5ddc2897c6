package graph

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// DOTOptions controls DOT rendering.
type DOTOptions struct {
	// EdgeLabels writes each edge's resolved path as its label. Off by
	// default; large graphs are much easier to lay out without them.
	EdgeLabels bool
}

// WriteDOT renders g in Graphviz DOT:
//
//	digraph {
//	    0 [ label = "a.ts" ]
//	    1 [ label = "b.ts" ]
//	    0 -> 1 [ ]
//	}
func WriteDOT(w io.Writer, g *Graph, opts DOTOptions) error {
	bw := bufio.NewWriter(w)

	bw.WriteString("digraph {\n")
	for _, n := range g.Nodes() {
		fmt.Fprintf(bw, "    %d [ label = %s ]\n", n.ID, quoteDOT(n.Path))
	}
	for _, e := range g.Edges() {
		if opts.EdgeLabels {
			fmt.Fprintf(bw, "    %d -> %d [ label = %s ]\n", e.From, e.To, quoteDOT(e.Label))
		} else {
			fmt.Fprintf(bw, "    %d -> %d [ ]\n", e.From, e.To)
		}
	}
	bw.WriteString("}\n")

	return bw.Flush()
}

// RenderDOT returns the DOT text for g.
func RenderDOT(g *Graph, opts DOTOptions) string {
	var b strings.Builder
	// strings.Builder never fails.
	_ = WriteDOT(&b, g, opts)
	return b.String()
}

// WriteDOTFile writes g to path, replacing any existing file.
func WriteDOTFile(path string, g *Graph, opts DOTOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteDOT(f, g, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quoteDOT(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
