package lexer

import "github.com/pkg/errors"

// Tokenize scans preprocessed Jack source into a fully materialized,
// ordered token slice, indexed by the parser via a cursor. Comments
// must already have been removed by StripComments.
func Tokenize(src string) ([]Token, error) {
	var tokens []Token

	line, col := 1, 1
	i := 0
	n := len(src)

	bump := func(c byte) {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	for i < n {
		c := src[i]

		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			bump(c)
			i++
			continue
		}

		if c == '"' {
			startLine, startCol := line, col
			bump(c)
			i++
			start := i
			for i < n && src[i] != '"' {
				bump(src[i])
				i++
			}
			if i >= n {
				return nil, errors.Errorf("unterminated string constant starting at line %d, col %d", startLine, startCol)
			}
			value := src[start:i]
			bump(src[i])
			i++ // consume closing quote
			tokens = append(tokens, Token{Kind: StringConstant, Value: value, Pos: Pos{startLine, startCol}})
			continue
		}

		if symbols[c] {
			tokens = append(tokens, Token{Kind: Symbol, Value: string(c), Pos: Pos{line, col}})
			bump(c)
			i++
			continue
		}

		if isDigit(c) {
			startLine, startCol := line, col
			start := i
			for i < n && isDigit(src[i]) {
				bump(src[i])
				i++
			}
			tokens = append(tokens, Token{Kind: IntegerConstant, Value: src[start:i], Pos: Pos{startLine, startCol}})
			continue
		}

		if isIdentStart(c) {
			startLine, startCol := line, col
			start := i
			for i < n && isIdentPart(src[i]) {
				bump(src[i])
				i++
			}
			word := src[start:i]
			kind := Identifier
			if keywords[word] {
				kind = Keyword
			}
			tokens = append(tokens, Token{Kind: kind, Value: word, Pos: Pos{startLine, startCol}})
			continue
		}

		return nil, errors.Errorf("unexpected character %q at line %d, col %d", c, line, col)
	}

	return tokens, nil
}
