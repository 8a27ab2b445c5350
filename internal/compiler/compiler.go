// Package compiler wires the lexer, symbol table, writers and parser
// into the per-file compiler driver: read source, preprocess, tokenize,
// compile, then write whichever outputs were requested.
package compiler

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/khvorov45/jackc/internal/lexer"
	"github.com/khvorov45/jackc/internal/parser"
	"github.com/khvorov45/jackc/internal/symtab"
	"github.com/khvorov45/jackc/internal/vmw"
	"github.com/khvorov45/jackc/internal/xmlw"
)

// Options selects which of the three optional output files a compiled
// source produces. Callers that want VM output on by default (the
// common case) set EmitVM explicitly; the zero value requests none.
type Options struct {
	EmitTokens bool
	EmitTree   bool
	EmitVM     bool
}

// Result reports which output files were actually written for one
// source file.
type Result struct {
	TokensPath string
	TreePath   string
	VMPath     string
}

// IoError wraps a filesystem failure (missing/unreadable input,
// unwritable output).
type IoError struct {
	cause error
}

func (e *IoError) Error() string { return "io error: " + e.cause.Error() }
func (e *IoError) Unwrap() error { return e.cause }

func ioErr(cause error) error { return errors.WithStack(&IoError{cause: cause}) }

// CompileSource runs the full pipeline over src (already read into
// memory) and returns the rendered tokens/tree/VM buffers for whichever
// outputs opts requests (nil entries mean "not requested").
func CompileSource(src string, opts Options) (tokensOut, treeOut, vmOut *bytes.Buffer, err error) {
	tokens, err := lexer.Tokenize(lexer.StripComments(src))
	if err != nil {
		return nil, nil, nil, err
	}

	if opts.EmitTokens {
		tokensOut = &bytes.Buffer{}
		xmlw.Tokens(tokensOut, tokens)
	}

	treeBuf := &bytes.Buffer{}
	vmBuf := &bytes.Buffer{}
	eng := parser.New(tokens, xmlw.New(treeBuf), vmw.New(vmBuf), symtab.New())
	if err := eng.CompileClass(); err != nil {
		// Partial outputs from a failed file are discarded.
		return nil, nil, nil, err
	}

	if opts.EmitTree {
		treeOut = treeBuf
	}
	if opts.EmitVM {
		vmOut = vmBuf
	}
	return tokensOut, treeOut, vmOut, nil
}

// TokensPath, TreePath and VMPath derive the three possible output
// filenames from a ".jack" input path: "foo.jack" becomes "fooT.xml",
// "foo.xml" and "foo.vm" respectively.
func TokensPath(jackPath string) string { return withoutExt(jackPath) + "T.xml" }
func TreePath(jackPath string) string   { return withoutExt(jackPath) + ".xml" }
func VMPath(jackPath string) string     { return withoutExt(jackPath) + ".vm" }

func withoutExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// CompileFile reads path from disk, runs CompileSource, and writes
// whichever output files opts requests next to the input. On a parser
// error, no output files are written and the error is returned as-is
// (callers distinguish UnexpectedToken/UndefinedSymbol from IoError via
// errors.As).
func CompileFile(path string, opts Options) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, ioErr(errors.Wrapf(err, "reading %q", path))
	}

	tokensOut, treeOut, vmOut, err := CompileSource(string(data), opts)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if tokensOut != nil {
		res.TokensPath = TokensPath(path)
		if err := writeFile(res.TokensPath, tokensOut.Bytes()); err != nil {
			return res, err
		}
	}
	if treeOut != nil {
		res.TreePath = TreePath(path)
		if err := writeFile(res.TreePath, treeOut.Bytes()); err != nil {
			return res, err
		}
	}
	if vmOut != nil {
		res.VMPath = VMPath(path)
		if err := writeFile(res.VMPath, vmOut.Bytes()); err != nil {
			return res, err
		}
	}
	return res, nil
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ioErr(errors.Wrapf(err, "writing %q", path))
	}
	return nil
}
