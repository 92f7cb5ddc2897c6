package imports

import "strings"

// Mode is the scanner's current lexical context.
type Mode int

const (
	// ModeNormal is ordinary source text.
	ModeNormal Mode = iota
	// ModeComment is inside a // comment, up to the next newline.
	ModeComment
	// ModeImport is inside an import declaration.
	ModeImport
)

// State is the complete scanner state. The zero value is the initial state.
//
// Start and Depth are meaningful only in ModeImport: Start is the byte offset
// of the "import " keyword and Depth the current brace nesting.
type State struct {
	Mode  Mode
	Start int
	Depth int
}

const (
	commentOpener = "//"
	importOpener  = "import "
)

// Step advances the scanner over text[i] and returns the next state. When the
// byte closes a declaration, the cleaned declaration is returned with
// emitted set to true.
//
// Step is a pure function of its arguments; text is only read, at and after
// position i, to recognise the multi-byte openers.
func Step(text string, i int, st State) (next State, declaration string, emitted bool) {
	c := text[i]

	switch st.Mode {
	case ModeComment:
		if c == '\n' {
			return State{Mode: ModeNormal}, "", false
		}
		return st, "", false

	case ModeImport:
		switch c {
		case '{':
			st.Depth++
		case '}':
			st.Depth--
		}
		if c == '\n' && st.Depth == 0 {
			return State{Mode: ModeNormal}, cleanDeclaration(text[st.Start : i+1]), true
		}
		return st, "", false

	default:
		rest := text[i:]
		if strings.HasPrefix(rest, commentOpener) {
			return State{Mode: ModeComment}, "", false
		}
		if strings.HasPrefix(rest, importOpener) {
			return State{Mode: ModeImport, Start: i}, "", false
		}
		return st, "", false
	}
}

// ExtractDeclarations returns every import declaration in source, in file
// order. Declarations that span several lines are joined into one string.
//
// Non-ASCII characters are removed before scanning. A declaration is closed by
// the first newline seen at brace depth zero, so braces must balance inside it;
// braces in string literals are not detected.
func ExtractDeclarations(source string) []string {
	text := StripNonASCII(source)

	var decls []string
	st := State{}
	for i := 0; i < len(text); i++ {
		var decl string
		var emitted bool
		st, decl, emitted = Step(text, i, st)
		if emitted {
			decls = append(decls, decl)
		}
	}

	// Declaration on the last line without a trailing newline.
	if st.Mode == ModeImport {
		decls = append(decls, cleanDeclaration(text[st.Start:]))
	}

	return decls
}

// StripNonASCII drops every rune outside the ASCII range, along with any
// invalid UTF-8.
func StripNonASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7f {
			return -1
		}
		return r
	}, s)
}

// Line breaks inside a declaration become single spaces so that tokens on
// adjacent lines ("b,\n}") stay separate.
var newlineCollapser = strings.NewReplacer("\r\n", " ", "\n", " ")

func cleanDeclaration(raw string) string {
	return newlineCollapser.Replace(strings.TrimSpace(raw))
}
