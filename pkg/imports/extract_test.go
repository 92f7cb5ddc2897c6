package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDeclarations_MixedStyles(t *testing.T) {
	src := `
    import {
        Component
        } from '@angular2/core';
    import defaultMember from 'module-name';
    import   *    as name from 'module-name  ';
    import   {  member }   from '  module-name';
    // import my nice package
    import { member as alias } from 'module-name';

    const val = 'dummy';

    const myFunc = function(){};
    `

	decls := ExtractDeclarations(src)
	require.Len(t, decls, 5)
	assert.Equal(t, "import defaultMember from 'module-name';", decls[1])
	assert.Equal(t, "import { member as alias } from 'module-name';", decls[4])
}

func TestExtractDeclarations_MultiLineBraceBlock(t *testing.T) {
	src := "import {\n  a,\n  b,\n  c,\n} from './m';\nconst x = 1;\n"

	decls := ExtractDeclarations(src)
	require.Len(t, decls, 1)
	assert.NotContains(t, decls[0], "\n")
	assert.Equal(t, "import {   a,   b,   c, } from './m';", decls[0])

	tokens := Tokenize(decls[0])
	assert.Equal(t, []string{"a", "b", "c", "./m"}, tokens)
}

func TestExtractDeclarations_CommentLineBeforeImport(t *testing.T) {
	src := "// header comment\nimport { x } from './x';\n"

	decls := ExtractDeclarations(src)
	assert.Equal(t, []string{"import { x } from './x';"}, decls)
}

func TestExtractDeclarations_CommentedOutImport(t *testing.T) {
	src := "// import { gone } from './gone';\nimport { kept } from './kept';\n"

	decls := ExtractDeclarations(src)
	assert.Equal(t, []string{"import { kept } from './kept';"}, decls)
}

func TestExtractDeclarations_TrailingCommentClosedByNewline(t *testing.T) {
	src := "const a = 1; // import nothing\nimport './side';"

	decls := ExtractDeclarations(src)
	assert.Equal(t, []string{"import './side';"}, decls)
}

func TestExtractDeclarations_CommentInsideImportIsNotSpecial(t *testing.T) {
	src := "import {\n  a, // first\n  b\n} from './m';\n"

	decls := ExtractDeclarations(src)
	require.Len(t, decls, 1)
	assert.Contains(t, decls[0], "// first")
	assert.Contains(t, decls[0], "from './m';")
}

func TestExtractDeclarations_LastLineWithoutNewline(t *testing.T) {
	decls := ExtractDeclarations("const a = 1;\nimport { b } from './b';")
	assert.Equal(t, []string{"import { b } from './b';"}, decls)
}

func TestExtractDeclarations_StripsNonASCII(t *testing.T) {
	decls := ExtractDeclarations("// ×\nimport { π } from './mäth';\n")
	require.Len(t, decls, 1)
	assert.Equal(t, "import {  } from './mth';", decls[0])
}

func TestExtractDeclarations_CRLF(t *testing.T) {
	decls := ExtractDeclarations("import {\r\n  a\r\n} from './a';\r\nimport './b';\r\n")
	require.Len(t, decls, 2)
	assert.Equal(t, "import {   a } from './a';", decls[0])
	assert.Equal(t, "import './b';", decls[1])
}

func TestExtractDeclarations_NoImports(t *testing.T) {
	assert.Empty(t, ExtractDeclarations(""))
	assert.Empty(t, ExtractDeclarations("export const x = 1;\n"))
	assert.Empty(t, ExtractDeclarations("const m = await import('./lazy');\n"))
}

func TestStep_Transitions(t *testing.T) {
	text := "//x\nimport {a}\n"

	st, _, emitted := Step(text, 0, State{})
	assert.Equal(t, ModeComment, st.Mode)
	assert.False(t, emitted)

	st, _, _ = Step(text, 3, st)
	assert.Equal(t, ModeNormal, st.Mode)

	st, _, _ = Step(text, 4, st)
	assert.Equal(t, State{Mode: ModeImport, Start: 4}, st)

	st, _, _ = Step(text, 11, st) // '{'
	assert.Equal(t, 1, st.Depth)
	st, _, _ = Step(text, 13, st) // '}'
	assert.Equal(t, 0, st.Depth)

	st, decl, emitted := Step(text, 14, st) // '\n'
	assert.True(t, emitted)
	assert.Equal(t, "import {a}", decl)
	assert.Equal(t, State{}, st)
}

func TestStep_NewlineInsideBracesDoesNotClose(t *testing.T) {
	st := State{Mode: ModeImport, Start: 0, Depth: 1}
	next, _, emitted := Step("\n", 0, st)
	assert.False(t, emitted)
	assert.Equal(t, st, next)
}
