package parser

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/khvorov45/jackc/internal/lexer"
)

// UnexpectedTokenError reports a token whose kind or value is not
// admissible at the current grammar position. It carries the offending
// token so callers can report its source location.
type UnexpectedTokenError struct {
	Token lexer.Token
	Want  string
}

func (e *UnexpectedTokenError) Error() string {
	return fmt.Sprintf("unexpected token %q at line %d, col %d: expected %s",
		e.Token.Value, e.Token.Pos.Line, e.Token.Pos.Col, e.Want)
}

// UndefinedSymbolError reports a name used as a value that resolves to
// neither subroutine scope nor class scope.
type UndefinedSymbolError struct {
	Name  string
	Token lexer.Token
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("undefined symbol %q at line %d, col %d", e.Name, e.Token.Pos.Line, e.Token.Pos.Col)
}

func errUnexpected(tok lexer.Token, want string) error {
	return errors.WithStack(&UnexpectedTokenError{Token: tok, Want: want})
}

func errUndefined(name string, tok lexer.Token) error {
	return errors.WithStack(&UndefinedSymbolError{Name: name, Token: tok})
}
