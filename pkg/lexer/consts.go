package lexer

// TypeScriptKeywords lists the reserved and contextual keywords recognised by
// the lexer.
var TypeScriptKeywords = []string{
	"abstract", "any", "as", "asserts", "bigint", "boolean", "break", "case",
	"catch", "class", "const", "continue", "debugger", "declare", "default",
	"delete", "do", "else", "enum", "export", "extends", "false", "finally",
	"for", "from", "function", "get", "global", "if", "implements", "import",
	"in", "infer", "instanceof", "interface", "is", "keyof", "let", "module",
	"namespace", "never", "new", "null", "number", "object", "of", "package",
	"private", "protected", "public", "readonly", "require", "return", "set",
	"static", "string", "super", "switch", "symbol", "this", "throw", "true",
	"try", "type", "typeof", "unique", "unknown", "var", "void", "while",
	"with", "yield",
}

var keywordSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TypeScriptKeywords))
	for _, kw := range TypeScriptKeywords {
		m[kw] = struct{}{}
	}
	return m
}()

// IsKeyword reports whether word is a TypeScript keyword.
func IsKeyword(word string) bool {
	_, ok := keywordSet[word]
	return ok
}

// TokenKind classifies a lexed token.
type TokenKind int

const (
	TokenInvalid TokenKind = iota
	TokenKeyword
	TokenComment
	TokenSymbol
	TokenStar
	TokenOpenCurly
	TokenCloseCurly
	TokenOpenParen
	TokenCloseParen
	TokenComma
)

var tokenKindNames = [...]string{
	TokenInvalid:    "invalid",
	TokenKeyword:    "keyword",
	TokenComment:    "comment",
	TokenSymbol:     "symbol",
	TokenStar:       "star",
	TokenOpenCurly:  "open_curly",
	TokenCloseCurly: "close_curly",
	TokenOpenParen:  "open_paren",
	TokenCloseParen: "close_paren",
	TokenComma:      "comma",
}

func (k TokenKind) String() string {
	if k >= 0 && int(k) < len(tokenKindNames) {
		return tokenKindNames[k]
	}
	return "unknown"
}

// literalTokens are single-character punctuation tokens, checked in order.
var literalTokens = []struct {
	text string
	kind TokenKind
}{
	{"{", TokenOpenCurly},
	{"}", TokenCloseCurly},
	{"(", TokenOpenParen},
	{")", TokenCloseParen},
	{",", TokenComma},
}
