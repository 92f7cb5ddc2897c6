package imports

import (
	"strings"
	"unicode"
)

// Tokenize splits one declaration into its significant tokens: bound names
// first, module specifier last. Keywords, braces and punctuation are dropped.
//
//	import * as ns from 'lib';          -> ["*", "lib"]
//	import { a, b } from './m';         -> ["a", "b", "./m"]
//	import def from 'lib';              -> ["lib"]
//	import './side-effect';             -> ["./side-effect"]
//
// A declaration it does not understand yields an empty slice.
func Tokenize(declaration string) []string {
	// Whole-module import: exactly "import" and the specifier.
	fields := strings.Split(declaration, " ")
	if len(fields) == 2 {
		return []string{stripQuotes(strings.TrimRight(fields[1], ";"))}
	}

	body := strings.TrimRightFunc(declaration, unicode.IsSpace)
	body = strings.TrimPrefix(body, importOpener)
	body = strings.TrimRight(body, ";")

	parts := strings.Fields(body)
	tokens := make([]string, 0, len(parts))

	for i := 0; i < len(parts); i++ {
		switch parts[i] {
		case "*":
			tokens = append(tokens, "*")

		case "{":
			for i++; i < len(parts) && parts[i] != "}"; i++ {
				tokens = append(tokens, strings.ReplaceAll(parts[i], ",", ""))
			}

		case "from":
			// The specifier always ends the declaration.
			if i+1 < len(parts) {
				return append(tokens, stripQuotes(parts[i+1]))
			}
		}
	}

	return tokens
}

var quoteRemover = strings.NewReplacer("'", "", `"`, "")

func stripQuotes(s string) string {
	return quoteRemover.Replace(s)
}
