// Package lexer is a small general-purpose TypeScript lexer: keywords,
// identifiers, braces, parentheses, commas, stars and // comments. Everything
// else comes out as single-rune TokenInvalid tokens.
//
// It is independent of package imports, which finds declarations without
// tokenizing the whole file.
package lexer

import (
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is one lexeme. Line and Column are 1-based; Column counts bytes.
type Token struct {
	Kind   TokenKind
	Text   string
	Line   int
	Column int
}

// Lexer produces tokens from content one at a time.
type Lexer struct {
	content string
	cursor  int
	line    int
	bol     int // byte offset of the beginning of the current line
}

// New returns a lexer positioned at the start of content.
func New(content string) *Lexer {
	return &Lexer{content: content}
}

// Tokens returns the token sequence of content. Each iteration starts a fresh
// lexer, so the sequence can be ranged over any number of times.
func Tokens(content string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l := New(content)
		for {
			tok, ok := l.Next()
			if !ok || !yield(tok) {
				return
			}
		}
	}
}

// Next returns the next token, or false once the content is exhausted.
func (l *Lexer) Next() (Token, bool) {
	l.skipSpace()
	if l.cursor >= len(l.content) {
		return Token{}, false
	}

	start := l.cursor
	tok := Token{Line: l.line + 1, Column: start - l.bol + 1}
	rest := l.content[start:]

	for _, lt := range literalTokens {
		if strings.HasPrefix(rest, lt.text) {
			l.cursor += len(lt.text)
			tok.Kind = lt.kind
			tok.Text = lt.text
			return tok, true
		}
	}

	if strings.HasPrefix(rest, "//") {
		end := strings.IndexByte(rest, '\n')
		if end < 0 {
			end = len(rest)
		}
		l.cursor += end
		tok.Kind = TokenComment
		tok.Text = rest[:end]
		return tok, true
	}

	r, size := utf8.DecodeRuneInString(rest)

	switch {
	case r == '*':
		l.cursor += size
		tok.Kind = TokenStar

	case isSymbolStart(r):
		l.cursor += size
		for l.cursor < len(l.content) {
			next, n := utf8.DecodeRuneInString(l.content[l.cursor:])
			if !isSymbol(next) {
				break
			}
			l.cursor += n
		}
		tok.Kind = TokenSymbol
		if IsKeyword(l.content[start:l.cursor]) {
			tok.Kind = TokenKeyword
		}

	default:
		l.cursor += size
		tok.Kind = TokenInvalid
	}

	tok.Text = l.content[start:l.cursor]
	return tok, true
}

func (l *Lexer) skipSpace() {
	for l.cursor < len(l.content) {
		r, size := utf8.DecodeRuneInString(l.content[l.cursor:])
		if !unicode.IsSpace(r) {
			return
		}
		l.cursor += size
		if r == '\n' {
			l.line++
			l.bol = l.cursor
		}
	}
}

func isSymbolStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isSymbol(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
