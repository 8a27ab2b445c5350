package parser_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khvorov45/jackc/internal/lexer"
	"github.com/khvorov45/jackc/internal/parser"
	"github.com/khvorov45/jackc/internal/symtab"
	"github.com/khvorov45/jackc/internal/vmw"
	"github.com/khvorov45/jackc/internal/xmlw"
)

func compile(t *testing.T, src string) (xmlOut, vmOut string) {
	t.Helper()
	tokens, err := lexer.Tokenize(lexer.StripComments(src))
	require.NoError(t, err)

	var xbuf, vbuf bytes.Buffer
	xw := xmlw.New(&xbuf)
	vw := vmw.New(&vbuf)
	eng := parser.New(tokens, xw, vw, symtab.New())
	require.NoError(t, eng.CompileClass())
	return xbuf.String(), vbuf.String()
}

func TestMainReturnsConstantZero(t *testing.T) {
	_, vm := compile(t, "class Main { function void main() { return; } }")
	assert.Equal(t, "function Main.main 0\npush constant 0\nreturn\n", vm)
}

func TestLocalVarArithmetic(t *testing.T) {
	_, vm := compile(t, "class A { function int f() { var int x; let x = 1 + 2; return x; } }")
	want := "function A.f 1\n" +
		"push constant 1\n" +
		"push constant 2\n" +
		"add\n" +
		"pop local 0\n" +
		"push local 0\n" +
		"return\n"
	assert.Equal(t, want, vm)
}

func TestConstructorAllocatesAndReturnsThis(t *testing.T) {
	_, vm := compile(t, "class A { constructor A new() { return this; } }")
	want := "function A.new 0\n" +
		"push constant 0\n" +
		"call Memory.alloc 1\n" +
		"pop pointer 0\n" +
		"push pointer 0\n" +
		"return\n"
	assert.Equal(t, want, vm)
}

func TestMethodPrologue(t *testing.T) {
	_, vm := compile(t, "class A { method int g() { return 0; } }")
	want := "function A.g 0\n" +
		"push argument 0\n" +
		"pop pointer 0\n" +
		"push constant 0\n" +
		"return\n"
	assert.Equal(t, want, vm)
}

func TestWhileLoopLabels(t *testing.T) {
	src := "class A { function void f() { var int x; while (x < 10) { let x = x + 1; } return; } }"
	_, vm := compile(t, src)
	want := "function A.f 1\n" +
		"label WHILE_EXP_0\n" +
		"push local 0\n" +
		"push constant 10\n" +
		"lt\n" +
		"not\n" +
		"if-goto WHILE_END_0\n" +
		"push local 0\n" +
		"push constant 1\n" +
		"add\n" +
		"pop local 0\n" +
		"goto WHILE_EXP_0\n" +
		"label WHILE_END_0\n" +
		"push constant 0\n" +
		"return\n"
	assert.Equal(t, want, vm)
}

func TestLetArrayAssignment(t *testing.T) {
	src := "class A { function void f() { var int a, i; let a[i] = 5; return; } }"
	_, vm := compile(t, src)
	want := "function A.f 2\n" +
		"push local 1\n" +
		"push local 0\n" +
		"add\n" +
		"push constant 5\n" +
		"pop temp 0\n" +
		"pop pointer 1\n" +
		"push temp 0\n" +
		"pop that 0\n" +
		"push constant 0\n" +
		"return\n"
	assert.Equal(t, want, vm)
}

func TestIfElseLabels(t *testing.T) {
	src := "class A { function void f() { if (true) { do Output.println(); } else { do Output.println(); } return; } }"
	_, vm := compile(t, src)
	assert.Contains(t, vm, "if-goto IF_TRUE_0\n")
	assert.Contains(t, vm, "goto IF_FALSE_0\n")
	assert.Contains(t, vm, "label IF_TRUE_0\n")
	assert.Contains(t, vm, "goto IF_END_0\n")
	assert.Contains(t, vm, "label IF_FALSE_0\n")
	assert.Contains(t, vm, "label IF_END_0\n")
}

func TestLabelCountersResetPerSubroutine(t *testing.T) {
	src := "class A {" +
		"function void f() { while (true) {} return; }" +
		"function void g() { while (true) {} return; }" +
		"}"
	_, vm := compile(t, src)
	assert.Contains(t, vm, "label WHILE_EXP_0\n")
	assert.NotContains(t, vm, "WHILE_EXP_1")
}

func TestUnaryOperators(t *testing.T) {
	src := "class A { function int f() { return -~0; } }"
	_, vm := compile(t, src)
	want := "function A.f 0\n" +
		"push constant 0\n" +
		"not\n" +
		"neg\n" +
		"return\n"
	assert.Equal(t, want, vm)
}

func TestUnqualifiedCallPushesPointerAndImplicitArg(t *testing.T) {
	src := "class A { method void f() { do g(1, 2); return; } method void g(int a, int b) { return; } }"
	_, vm := compile(t, src)
	assert.Contains(t, vm, "push pointer 0\n")
	assert.Contains(t, vm, "call A.g 3\n")
}

func TestUndefinedSymbolIsReported(t *testing.T) {
	src := "class A { function void f() { return nope; } }"
	tokens, err := lexer.Tokenize(lexer.StripComments(src))
	require.NoError(t, err)

	var xbuf, vbuf bytes.Buffer
	eng := parser.New(tokens, xmlw.New(&xbuf), vmw.New(&vbuf), symtab.New())
	err = eng.CompileClass()
	require.Error(t, err)
	var undef *parser.UndefinedSymbolError
	assert.ErrorAs(t, err, &undef)
}

func TestUnexpectedTokenIsReported(t *testing.T) {
	src := "class A { function void f() { retunr; } }"
	tokens, err := lexer.Tokenize(lexer.StripComments(src))
	require.NoError(t, err)

	var xbuf, vbuf bytes.Buffer
	eng := parser.New(tokens, xmlw.New(&xbuf), vmw.New(&vbuf), symtab.New())
	err = eng.CompileClass()
	require.Error(t, err)
	var unexpected *parser.UnexpectedTokenError
	assert.ErrorAs(t, err, &unexpected)
}

func TestTreeWellFormedness(t *testing.T) {
	xmlOut, _ := compile(t, "class Main { function void main() { return; } }")

	var stack []string
	for _, rawLine := range bytes.Split([]byte(xmlOut), []byte("\n")) {
		line := bytes.TrimSpace(rawLine)
		if len(line) == 0 {
			continue
		}
		if bytes.Contains(line, []byte("> ")) {
			continue // terminal line: "<kind> value </kind>", not a section marker
		}
		if bytes.HasPrefix(line, []byte("</")) {
			tag := string(line[2 : len(line)-1])
			require.NotEmpty(t, stack)
			assert.Equal(t, stack[len(stack)-1], tag)
			stack = stack[:len(stack)-1]
		} else {
			tag := string(line[1 : len(line)-1])
			if len(stack) == 0 {
				assert.Equal(t, "class", tag)
			}
			stack = append(stack, tag)
		}
	}
	assert.Empty(t, stack)
}
