package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khvorov45/jackc/internal/lexer"
)

func TestStripCommentsPreservesStringLiterals(t *testing.T) {
	src := `let s = "// not a comment /* also not */";`
	got := lexer.StripComments(src)
	assert.Equal(t, src, got)
}

func TestStripCommentsLineComment(t *testing.T) {
	got := lexer.StripComments("let x = 1; // trailing\nlet y = 2;")
	assert.Equal(t, "let x = 1; let y = 2;", got)
}

func TestStripCommentsBlockComments(t *testing.T) {
	got := lexer.StripComments("let x /* inline */ = 1;\n/** doc\n * comment\n */\nlet y = 2;")
	assert.Equal(t, "let x  = 1;\n\nlet y = 2;", got)
}

func TestStripCommentsIdempotent(t *testing.T) {
	src := "// header\nclass Main {\n  /* body */ function void main() { return; }\n}\n"
	once := lexer.StripComments(src)
	twice := lexer.StripComments(once)
	assert.Equal(t, once, twice)
}

func TestTokenizeMainExample(t *testing.T) {
	src := "class Main { function void main() { return; } }"
	tokens, err := lexer.Tokenize(src)
	require.NoError(t, err)

	want := []struct {
		kind  lexer.Kind
		value string
	}{
		{lexer.Keyword, "class"},
		{lexer.Identifier, "Main"},
		{lexer.Symbol, "{"},
		{lexer.Keyword, "function"},
		{lexer.Keyword, "void"},
		{lexer.Identifier, "main"},
		{lexer.Symbol, "("},
		{lexer.Symbol, ")"},
		{lexer.Symbol, "{"},
		{lexer.Keyword, "return"},
		{lexer.Symbol, ";"},
		{lexer.Symbol, "}"},
		{lexer.Symbol, "}"},
	}

	require.Len(t, tokens, len(want))
	for i, w := range want {
		assert.Equal(t, w.kind, tokens[i].Kind, "token %d kind", i)
		assert.Equal(t, w.value, tokens[i].Value, "token %d value", i)
	}
}

func TestTokenizeStringConstantStripsQuotes(t *testing.T) {
	tokens, err := lexer.Tokenize(`"hello world"`)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, lexer.StringConstant, tokens[0].Kind)
	assert.Equal(t, "hello world", tokens[0].Value)
}

func TestTokenizeIntegerConstant(t *testing.T) {
	tokens, err := lexer.Tokenize("12345")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	n, err := tokens[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 12345, n)
}

func TestTokenAliasOnlyAppliesToSymbols(t *testing.T) {
	sym := lexer.Token{Kind: lexer.Symbol, Value: "<"}
	assert.Equal(t, "&lt;", sym.Alias())

	ident := lexer.Token{Kind: lexer.Identifier, Value: "<"}
	assert.Equal(t, "<", ident.Alias())
}

func TestTokenizeUnterminatedString(t *testing.T) {
	_, err := lexer.Tokenize(`"unterminated`)
	assert.Error(t, err)
}
