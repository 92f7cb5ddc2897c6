package imports

import "strings"

// SourceExtension is appended to every local specifier.
const SourceExtension = ".ts"

const indexName = "index"

// Classify turns a token list from Tokenize into an Import. The specifier is
// the last token; a leading "." makes it local.
func Classify(tokens []string) (Import, error) {
	if len(tokens) == 0 {
		return Import{}, ErrEmptyTokenList
	}

	specifier := tokens[len(tokens)-1]
	if strings.HasPrefix(specifier, ".") {
		return Import{Kind: SourceKindLocal, Specifier: NormalizeLocal(specifier)}, nil
	}
	return Import{Kind: SourceKindPackage, Specifier: specifier}, nil
}

// ParseImport tokenizes and classifies a single declaration.
func ParseImport(declaration string) (Import, error) {
	return Classify(Tokenize(declaration))
}

// NormalizeLocal maps a relative specifier onto the file it most likely
// names. A trailing ".." or "." is replaced by "index" in place, then ".ts" is
// appended unconditionally:
//
//	"."          -> "index.ts"
//	"./dir/."    -> "./dir/index.ts"
//	"./dir.."    -> "./dirindex.ts"
//	"./util"     -> "./util.ts"
//	"./util.ts"  -> "./util.ts.ts"
//
// The filesystem is never consulted, so bare directory names are not
// rewritten to their index file.
func NormalizeLocal(specifier string) string {
	s := stripQuotes(specifier)

	switch {
	case strings.HasSuffix(s, ".."):
		s = s[:len(s)-2] + indexName
	case strings.HasSuffix(s, "."):
		s = s[:len(s)-1] + indexName
	}

	return s + SourceExtension
}
