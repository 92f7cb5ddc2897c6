// Package imports finds import declarations in TypeScript source text and
// classifies their targets, without parsing the language.
//
// The pipeline per file is:
//
//	ExtractDeclarations(text) -> []string     one entry per declaration
//	Tokenize(declaration)     -> []string     bound names, specifier last
//	Classify(tokens)          -> Import       package or local target
package imports

import (
	"errors"
	"fmt"
)

// ErrEmptyTokenList is returned by Classify when a declaration produced no
// tokens, i.e. its syntax was not recognised.
var ErrEmptyTokenList = errors.New("empty token list")

// SourceKind identifies where an import's target lives.
type SourceKind int

const (
	// SourceKindPackage targets are resolved by an external module system.
	SourceKindPackage SourceKind = iota
	// SourceKindLocal targets are files inside the scanned tree.
	SourceKindLocal
)

// String returns the lowercase name of the kind.
func (k SourceKind) String() string {
	switch k {
	case SourceKindPackage:
		return "package"
	case SourceKindLocal:
		return "local"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name so JSON output stays readable.
func (k SourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Import is the classified meaning of one declaration.
//
// For package imports Specifier is the module path as written. For local
// imports it has been normalised by NormalizeLocal (index substitution and a
// ".ts" extension).
type Import struct {
	Kind      SourceKind `json:"kind"`
	Specifier string     `json:"specifier"`
}

// IsLocal reports whether the import targets a file in the scanned tree.
func (i Import) IsLocal() bool {
	return i.Kind == SourceKindLocal
}
