// Command tsgraph scans a TypeScript source tree and writes its file import
// graph to graph.dot in Graphviz format.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gnana997/tsgraph/pkg/util"
)

const (
	version    = "0.1.0-dev"
	outputFile = "graph.dot"
	defaultDir = "."
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	dir     string
	watch   bool
	serve   bool
	labels  bool
	debug   bool
	setup   bool
	help    bool
	version bool
}

type unknownArgError struct{ arg string }

func (e *unknownArgError) Error() string { return "unknown command " + e.arg }

func parseArgs(args []string) (options, error) {
	opts := options{dir: defaultDir}

	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-d", "--dir":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a directory", arg)
			}
			i++
			opts.dir = args[i]
		case "-w", "--watch":
			opts.watch = true
		case "--serve":
			opts.serve = true
		case "--labels":
			opts.labels = true
		case "--debug":
			opts.debug = true
		case "--setup":
			opts.setup = true
		case "-h", "--help":
			opts.help = true
		case "-v", "--version":
			opts.version = true
		default:
			return opts, &unknownArgError{arg: arg}
		}
	}

	return opts, nil
}

// realMain runs the command and returns the process exit code.
func realMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %v\n", err)
		var unknown *unknownArgError
		if errors.As(err, &unknown) {
			printUsage(stderr)
		}
		return 1
	}

	switch {
	case opts.help:
		printUsage(stdout)
		return 0
	case opts.version:
		fmt.Fprintf(stdout, "tsgraph %s\n", version)
		return 0
	case opts.setup:
		return runSetup(opts.dir, stdout, stderr)
	}

	cfg, err := loadProjectConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR reading config: %v\n", err)
		return 1
	}
	s, err := resolveSettings(cfg, opts)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR reading config: %v\n", err)
		return 1
	}

	logger := util.NewLogger(util.LoggerConfig{
		Level:  s.logLevel,
		Format: s.logFormat,
		Output: stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return run(ctx, s, runIO{stdin: stdin, stdout: stdout, stderr: stderr}, logger)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tsgraph [options]")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scans a directory of TypeScript files and writes their import graph to %s.\n", outputFile)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -d, --dir <dir>   Directory to scan (default: current directory)")
	fmt.Fprintln(w, "  -w, --watch       Rewrite the graph whenever a .ts file changes")
	fmt.Fprintln(w, "  --serve           Answer graph queries as an MCP server on stdin/stdout")
	fmt.Fprintln(w, "  --labels          Label edges with the resolved import path")
	fmt.Fprintln(w, "  --debug           Log every scanned file")
	fmt.Fprintln(w, "  --setup           Register tsgraph with detected MCP clients")
	fmt.Fprintln(w, "  -v, --version     Print version")
	fmt.Fprintln(w, "  -h, --help        Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Settings are read from .tsgraph/config.yaml when present.")
}
