// Package lexer turns Jack source text into a fully materialized token
// sequence, stripping comments first.
package lexer

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind classifies a Token. The zero value is never produced by Tokenize.
type Kind string

const (
	Keyword         Kind = "keyword"
	Symbol          Kind = "symbol"
	IntegerConstant Kind = "integerConstant"
	StringConstant  Kind = "stringConstant"
	Identifier      Kind = "identifier"
)

// tokenNames mirrors the precomputed lookup-table style used for enum
// stringification elsewhere in the retrieved pack's lexers.
var tokenNames = map[Kind]string{
	Keyword:         "keyword",
	Symbol:          "symbol",
	IntegerConstant: "integerConstant",
	StringConstant:  "stringConstant",
	Identifier:      "identifier",
}

func (k Kind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "invalid"
}

// Pos is a 1-based line/column location in the original source.
type Pos struct {
	Line, Col int
}

// Token is an immutable lexical unit. For StringConstant, Value excludes
// the surrounding quotes. For Symbol, Value always holds the raw
// character; markup aliasing happens only at tree-emission time.
type Token struct {
	Kind  Kind
	Value string
	Pos   Pos
}

// aliases maps a raw symbol to its tree-output representation.
var aliases = map[string]string{
	"<": "&lt;",
	">": "&gt;",
	"&": "&amp;",
	`"`: "&quot;",
}

// Alias returns the markup-escaped form of a symbol token's value, or the
// value unchanged for every other token kind.
func (t Token) Alias() string {
	if t.Kind != Symbol {
		return t.Value
	}
	if a, ok := aliases[t.Value]; ok {
		return a
	}
	return t.Value
}

// Int parses an IntegerConstant token as a 16-bit VM word. Jack integer
// constants are defined over 0..32767.
func (t Token) Int() (int, error) {
	if t.Kind != IntegerConstant {
		return 0, errors.Errorf("token %q is not an integer constant", t.Value)
	}
	n, err := strconv.Atoi(t.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed integer constant %q", t.Value)
	}
	if n < 0 || n > 32767 {
		return 0, errors.Errorf("integer constant %d out of range 0..32767", n)
	}
	return n, nil
}

// keywords is the fixed set of Jack keywords.
var keywords = map[string]bool{
	"class": true, "constructor": true, "function": true, "method": true,
	"field": true, "static": true, "var": true, "int": true, "char": true,
	"boolean": true, "void": true, "true": true, "false": true, "null": true,
	"this": true, "let": true, "do": true, "if": true, "else": true,
	"while": true, "return": true,
}

// symbols is the fixed set of single-character Jack symbols.
var symbols = map[byte]bool{
	'{': true, '}': true, '(': true, ')': true, '[': true, ']': true,
	'.': true, ',': true, ';': true, '+': true, '-': true, '*': true,
	'/': true, '&': true, '|': true, '<': true, '>': true, '=': true,
	'~': true,
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
