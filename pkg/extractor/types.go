// Package extractor turns one source file into a SourceFile: its canonical
// location plus the classified imports found in its text.
package extractor

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gnana997/tsgraph/pkg/imports"
)

// SourceFile is the per-file result of extraction.
//
// Imports keeps declaration order and duplicates; the graph collapses
// repeated edges later.
type SourceFile struct {
	FileName      string           `json:"file_name"`
	CanonicalPath string           `json:"canonical_path"`
	Imports       []imports.Import `json:"imports"`

	// Malformed holds the declarations that were dropped because no
	// specifier could be read from them, in source order.
	Malformed []string `json:"malformed,omitempty"`
}

// Dir returns the directory local specifiers are resolved against.
func (f *SourceFile) Dir() string {
	return filepath.Dir(f.CanonicalPath)
}

// LocalImports returns the imports that target files in the scanned tree.
func (f *SourceFile) LocalImports() []imports.Import {
	var local []imports.Import
	for _, imp := range f.Imports {
		if imp.IsLocal() {
			local = append(local, imp)
		}
	}
	return local
}

// String renders the file for debug output:
//
//	File name:
//	    a.ts
//	Relative path:
//	    /repo/a.ts
//	Imports:
//	    from package react
//	    from local file ./b.ts
func (f *SourceFile) String() string {
	var b strings.Builder

	b.WriteString("File name:\n")
	fmt.Fprintf(&b, "    %s\n", f.FileName)
	b.WriteString("Relative path:\n")
	fmt.Fprintf(&b, "    %s\n", f.CanonicalPath)
	b.WriteString("Imports:\n")
	for _, imp := range f.Imports {
		switch imp.Kind {
		case imports.SourceKindLocal:
			fmt.Fprintf(&b, "    from local file %s\n", imp.Specifier)
		default:
			fmt.Fprintf(&b, "    from package %s\n", imp.Specifier)
		}
	}

	return b.String()
}

// Stats counts what the extractor has seen across all files.
type Stats struct {
	Files        int64 `json:"files"`
	Declarations int64 `json:"declarations"`
	Malformed    int64 `json:"malformed"`
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
}
