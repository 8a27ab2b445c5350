// Package xmlw emits the structured-markup parse tree as a "tree
// file": nested sections with two-space indentation and terminal
// lines for consumed tokens.
package xmlw

import (
	"io"

	"github.com/khvorov45/jackc/internal/lexer"
)

// Writer appends open/close section markers and terminal lines to the
// wrapped io.Writer, tracking the current indentation level.
type Writer struct {
	out   io.Writer
	level int
}

// New wraps w for tree emission.
func New(w io.Writer) *Writer {
	return &Writer{out: w}
}

func (w *Writer) indent() string {
	s := make([]byte, 2*w.level)
	for i := range s {
		s[i] = ' '
	}
	return string(s)
}

// Open emits "<tag>" at the current level and descends one level.
func (w *Writer) Open(tag string) {
	io.WriteString(w.out, w.indent()+"<"+tag+">\n")
	w.level++
}

// Close ascends one level and emits "</tag>" at the resulting level.
func (w *Writer) Close(tag string) {
	w.level--
	io.WriteString(w.out, w.indent()+"</"+tag+">\n")
}

// Terminal emits a leaf line for a consumed token: "<kind> value </kind>",
// with symbol aliasing and string-constant unquoting already resolved by
// Token.Alias (quotes are never present in tok.Value to begin with —
// Tokenize strips them at scan time).
func (w *Writer) Terminal(tok lexer.Token) {
	kind := string(tok.Kind)
	io.WriteString(w.out, w.indent()+"<"+kind+"> "+tok.Alias()+" </"+kind+">\n")
}

// Tokens writes a standalone tokens file: a single <tokens> section
// wrapping one terminal line per token.
func Tokens(w io.Writer, tokens []lexer.Token) {
	tw := New(w)
	tw.Open("tokens")
	for _, tok := range tokens {
		tw.Terminal(tok)
	}
	tw.Close("tokens")
}
