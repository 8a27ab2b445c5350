// Package parser implements the recursive-descent CompilationEngine: it
// consumes the materialized token sequence and drives both the tree
// writer and the VM writer in a single pass, with no intermediate AST.
// Malformed input returns an error rather than panicking, and each
// subroutine gets its own WHILE_EXP/IF_TRUE label counters, reset at
// subroutine entry so labels never collide across subroutines.
package parser

import (
	"fmt"

	"github.com/khvorov45/jackc/internal/lexer"
	"github.com/khvorov45/jackc/internal/symtab"
	"github.com/khvorov45/jackc/internal/vmw"
	"github.com/khvorov45/jackc/internal/xmlw"
)

// Engine holds the full parser state: the token sequence, the cursor,
// the current class name, and the two label counters, which are
// explicitly subroutine-local and reset at each subroutine entry.
type Engine struct {
	tokens []lexer.Token
	cursor int

	xml *xmlw.Writer
	vm  *vmw.Writer
	sym *symtab.Table

	class        string
	whileCounter int
	ifCounter    int
}

// New builds an Engine over tokens, emitting to xml and vm and using sym
// as its symbol table. Each compiled file should get a fresh Engine and
// a fresh symtab.Table: all state here is per-source-file.
func New(tokens []lexer.Token, xml *xmlw.Writer, vm *vmw.Writer, sym *symtab.Table) *Engine {
	return &Engine{tokens: tokens, xml: xml, vm: vm, sym: sym}
}

func (e *Engine) cur() lexer.Token {
	if e.cursor >= len(e.tokens) {
		return lexer.Token{}
	}
	return e.tokens[e.cursor]
}

func (e *Engine) curIs(value string) bool {
	return e.cur().Value == value
}

func (e *Engine) curIsAny(values ...string) bool {
	for _, v := range values {
		if e.curIs(v) {
			return true
		}
	}
	return false
}

// emitAndAdvance writes tok's terminal line and moves the cursor past it.
func (e *Engine) emitAndAdvance(tok lexer.Token) {
	e.xml.Terminal(tok)
	e.cursor++
}

// expect consumes the current token if its Value equals want, emitting
// its terminal line; otherwise it returns an UnexpectedTokenError.
func (e *Engine) expect(want string) (lexer.Token, error) {
	tok := e.cur()
	if tok.Value != want {
		return tok, errUnexpected(tok, fmt.Sprintf("%q", want))
	}
	e.emitAndAdvance(tok)
	return tok, nil
}

// expectIdentifier consumes the current token if it is an identifier.
func (e *Engine) expectIdentifier() (lexer.Token, error) {
	tok := e.cur()
	if tok.Kind != lexer.Identifier {
		return tok, errUnexpected(tok, "identifier")
	}
	e.emitAndAdvance(tok)
	return tok, nil
}

// compileType consumes int|char|boolean|className, returning its text.
func (e *Engine) compileType() (string, error) {
	tok := e.cur()
	isPrimitive := tok.Kind == lexer.Keyword && (tok.Value == "int" || tok.Value == "char" || tok.Value == "boolean")
	if !isPrimitive && tok.Kind != lexer.Identifier {
		return "", errUnexpected(tok, "type")
	}
	e.emitAndAdvance(tok)
	return tok.Value, nil
}

// CompileClass is the engine's entry point: class identifier { classVarDec* subroutineDec* }.
func (e *Engine) CompileClass() error {
	e.xml.Open("class")
	defer e.xml.Close("class")

	if _, err := e.expect("class"); err != nil {
		return err
	}

	nameTok, err := e.expectIdentifier()
	if err != nil {
		return err
	}
	e.class = nameTok.Value
	e.sym.StartClass()

	if _, err := e.expect("{"); err != nil {
		return err
	}

	for e.curIsAny("static", "field") {
		if err := e.compileClassVarDec(); err != nil {
			return err
		}
	}
	for e.curIsAny("constructor", "function", "method") {
		if err := e.compileSubroutineDec(); err != nil {
			return err
		}
	}

	if _, err := e.expect("}"); err != nil {
		return err
	}
	if e.cursor != len(e.tokens) {
		return errUnexpected(e.cur(), "end of input")
	}
	return nil
}

func (e *Engine) compileClassVarDec() error {
	e.xml.Open("classVarDec")
	defer e.xml.Close("classVarDec")

	kindTok := e.cur()
	var kind symtab.Kind
	if kindTok.Value == "static" {
		kind = symtab.Static
	} else {
		kind = symtab.Field
	}
	e.emitAndAdvance(kindTok)

	return e.compileVarSequence(kind, ";")
}

// compileVarSequence parses "type name (, name)* terminator", defining
// each name at kind in the scope implied by kind, shared by classVarDec
// and varDec.
func (e *Engine) compileVarSequence(kind symtab.Kind, terminator string) error {
	typ, err := e.compileType()
	if err != nil {
		return err
	}
	for {
		nameTok, err := e.expectIdentifier()
		if err != nil {
			return err
		}
		if err := e.sym.Define(nameTok.Value, typ, kind); err != nil {
			return err
		}
		if !e.curIs(",") {
			break
		}
		if _, err := e.expect(","); err != nil {
			return err
		}
	}
	_, err = e.expect(terminator)
	return err
}

func (e *Engine) compileSubroutineDec() error {
	e.xml.Open("subroutineDec")
	defer e.xml.Close("subroutineDec")

	kindTok := e.cur()
	subKind := kindTok.Value
	e.emitAndAdvance(kindTok)

	e.sym.StartSubroutine()
	e.whileCounter = 0
	e.ifCounter = 0

	if subKind == "method" {
		// Reserve argument 0 for the implicit receiver; "this" is a
		// reserved keyword so it can never collide with a real parameter.
		if err := e.sym.Define("this", e.class, symtab.Arg); err != nil {
			return err
		}
	}

	if e.curIs("void") {
		e.emitAndAdvance(e.cur())
	} else if _, err := e.compileType(); err != nil {
		return err
	}

	name, err := e.expectIdentifier()
	if err != nil {
		return err
	}

	if _, err := e.expect("("); err != nil {
		return err
	}
	if err := e.compileParameterList(); err != nil {
		return err
	}
	if _, err := e.expect(")"); err != nil {
		return err
	}

	return e.compileSubroutineBody(name.Value, subKind)
}

func (e *Engine) compileParameterList() error {
	e.xml.Open("parameterList")
	defer e.xml.Close("parameterList")

	if e.curIs(")") {
		return nil
	}
	for {
		typ, err := e.compileType()
		if err != nil {
			return err
		}
		nameTok, err := e.expectIdentifier()
		if err != nil {
			return err
		}
		if err := e.sym.Define(nameTok.Value, typ, symtab.Arg); err != nil {
			return err
		}
		if !e.curIs(",") {
			break
		}
		if _, err := e.expect(","); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) compileSubroutineBody(name, subKind string) error {
	e.xml.Open("subroutineBody")
	defer e.xml.Close("subroutineBody")

	if _, err := e.expect("{"); err != nil {
		return err
	}
	for e.curIs("var") {
		if err := e.compileVarDec(); err != nil {
			return err
		}
	}

	e.vm.Function(e.class+"."+name, e.sym.VarCount(symtab.Var))

	switch subKind {
	case "constructor":
		e.vm.Push(vmw.Constant, e.sym.VarCount(symtab.Field))
		e.vm.Call("Memory.alloc", 1)
		e.vm.Pop(vmw.Pointer, 0)
	case "method":
		e.vm.Push(vmw.Argument, 0)
		e.vm.Pop(vmw.Pointer, 0)
	}

	if err := e.compileStatements(); err != nil {
		return err
	}
	_, err := e.expect("}")
	return err
}

func (e *Engine) compileVarDec() error {
	e.xml.Open("varDec")
	defer e.xml.Close("varDec")

	if _, err := e.expect("var"); err != nil {
		return err
	}
	return e.compileVarSequence(symtab.Var, ";")
}

func (e *Engine) compileStatements() error {
	e.xml.Open("statements")
	defer e.xml.Close("statements")

	for !e.curIs("}") {
		var err error
		switch {
		case e.curIs("let"):
			err = e.compileLet()
		case e.curIs("if"):
			err = e.compileIf()
		case e.curIs("while"):
			err = e.compileWhile()
		case e.curIs("do"):
			err = e.compileDo()
		case e.curIs("return"):
			err = e.compileReturn()
		default:
			err = errUnexpected(e.cur(), "statement")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) compileLet() error {
	e.xml.Open("letStatement")
	defer e.xml.Close("letStatement")

	if _, err := e.expect("let"); err != nil {
		return err
	}
	nameTok, err := e.expectIdentifier()
	if err != nil {
		return err
	}

	isArray := false
	if e.curIs("[") {
		isArray = true
		if _, err := e.expect("["); err != nil {
			return err
		}
		if err := e.compileArrayIndexAddr(nameTok); err != nil {
			return err
		}
		if _, err := e.expect("]"); err != nil {
			return err
		}
	}

	if _, err := e.expect("="); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if _, err := e.expect(";"); err != nil {
		return err
	}

	if isArray {
		e.vm.Pop(vmw.Temp, 0)
		e.vm.Pop(vmw.Pointer, 1)
		e.vm.Push(vmw.Temp, 0)
		e.vm.Pop(vmw.That, 0)
		return nil
	}

	seg, idx, err := e.resolveVar(nameTok)
	if err != nil {
		return err
	}
	e.vm.Pop(seg, idx)
	return nil
}

// compileArrayIndexAddr compiles the bracketed index expression and adds
// it to the base address of the named array variable, leaving the
// element's address on top of the stack.
func (e *Engine) compileArrayIndexAddr(nameTok lexer.Token) error {
	if err := e.compileExpression(); err != nil {
		return err
	}
	seg, idx, err := e.resolveVar(nameTok)
	if err != nil {
		return err
	}
	e.vm.Push(seg, idx)
	e.vm.Arithmetic(vmw.Add)
	return nil
}

func (e *Engine) compileWhile() error {
	e.xml.Open("whileStatement")
	defer e.xml.Close("whileStatement")

	k := e.whileCounter
	e.whileCounter++
	expLabel := fmt.Sprintf("WHILE_EXP_%d", k)
	endLabel := fmt.Sprintf("WHILE_END_%d", k)

	if _, err := e.expect("while"); err != nil {
		return err
	}
	if _, err := e.expect("("); err != nil {
		return err
	}
	e.vm.Label(expLabel)
	if err := e.compileExpression(); err != nil {
		return err
	}
	if _, err := e.expect(")"); err != nil {
		return err
	}
	e.vm.Arithmetic(vmw.Not)
	e.vm.IfGoto(endLabel)

	if _, err := e.expect("{"); err != nil {
		return err
	}
	if err := e.compileStatements(); err != nil {
		return err
	}
	if _, err := e.expect("}"); err != nil {
		return err
	}

	e.vm.Goto(expLabel)
	e.vm.Label(endLabel)
	return nil
}

func (e *Engine) compileIf() error {
	e.xml.Open("ifStatement")
	defer e.xml.Close("ifStatement")

	k := e.ifCounter
	e.ifCounter++
	trueLabel := fmt.Sprintf("IF_TRUE_%d", k)
	falseLabel := fmt.Sprintf("IF_FALSE_%d", k)
	endLabel := fmt.Sprintf("IF_END_%d", k)

	if _, err := e.expect("if"); err != nil {
		return err
	}
	if _, err := e.expect("("); err != nil {
		return err
	}
	if err := e.compileExpression(); err != nil {
		return err
	}
	if _, err := e.expect(")"); err != nil {
		return err
	}

	e.vm.IfGoto(trueLabel)
	e.vm.Goto(falseLabel)
	e.vm.Label(trueLabel)

	if _, err := e.expect("{"); err != nil {
		return err
	}
	if err := e.compileStatements(); err != nil {
		return err
	}
	if _, err := e.expect("}"); err != nil {
		return err
	}

	if e.curIs("else") {
		e.vm.Goto(endLabel)
		e.vm.Label(falseLabel)

		if _, err := e.expect("else"); err != nil {
			return err
		}
		if _, err := e.expect("{"); err != nil {
			return err
		}
		if err := e.compileStatements(); err != nil {
			return err
		}
		if _, err := e.expect("}"); err != nil {
			return err
		}
		e.vm.Label(endLabel)
	} else {
		e.vm.Label(falseLabel)
	}
	return nil
}

func (e *Engine) compileDo() error {
	e.xml.Open("doStatement")
	defer e.xml.Close("doStatement")

	if _, err := e.expect("do"); err != nil {
		return err
	}
	if err := e.compileSubroutineCall(); err != nil {
		return err
	}
	e.vm.Pop(vmw.Temp, 0)
	_, err := e.expect(";")
	return err
}

func (e *Engine) compileReturn() error {
	e.xml.Open("returnStatement")
	defer e.xml.Close("returnStatement")

	if _, err := e.expect("return"); err != nil {
		return err
	}
	if !e.curIs(";") {
		if err := e.compileExpression(); err != nil {
			return err
		}
	} else {
		e.vm.Push(vmw.Constant, 0)
	}
	e.vm.Return()
	_, err := e.expect(";")
	return err
}

func (e *Engine) compileExpression() error {
	e.xml.Open("expression")
	defer e.xml.Close("expression")

	if err := e.compileTerm(); err != nil {
		return err
	}
	for isBinaryOp(e.cur()) {
		op := binaryOp(e.cur().Value)
		e.emitAndAdvance(e.cur())
		if err := e.compileTerm(); err != nil {
			return err
		}
		e.vm.Arithmetic(op)
	}
	return nil
}

// compileExpressionList compiles a comma-separated expression list and
// returns how many expressions it contained.
func (e *Engine) compileExpressionList() (int, error) {
	e.xml.Open("expressionList")
	defer e.xml.Close("expressionList")

	count := 0
	if e.curIs(")") {
		return 0, nil
	}
	if err := e.compileExpression(); err != nil {
		return 0, err
	}
	count++
	for e.curIs(",") {
		if _, err := e.expect(","); err != nil {
			return count, err
		}
		if err := e.compileExpression(); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (e *Engine) compileTerm() error {
	e.xml.Open("term")
	defer e.xml.Close("term")

	tok := e.cur()
	switch {
	case tok.Kind == lexer.IntegerConstant:
		n, err := tok.Int()
		if err != nil {
			return err
		}
		e.emitAndAdvance(tok)
		e.vm.Push(vmw.Constant, n)
		return nil

	case tok.Kind == lexer.StringConstant:
		e.emitAndAdvance(tok)
		e.vm.StringConstant(tok.Value)
		return nil

	case tok.Kind == lexer.Keyword && isKeywordConstant(tok.Value):
		e.emitAndAdvance(tok)
		e.vm.KeywordConstant(tok.Value)
		return nil

	case tok.Value == "(":
		if _, err := e.expect("("); err != nil {
			return err
		}
		if err := e.compileExpression(); err != nil {
			return err
		}
		_, err := e.expect(")")
		return err

	case isUnaryOp(tok):
		op := unaryOp(tok.Value)
		e.emitAndAdvance(tok)
		if err := e.compileTerm(); err != nil {
			return err
		}
		e.vm.Arithmetic(op)
		return nil

	case tok.Kind == lexer.Identifier:
		nameTok := tok
		e.emitAndAdvance(nameTok)
		switch {
		case e.curIs("["):
			if _, err := e.expect("["); err != nil {
				return err
			}
			if err := e.compileArrayIndexAddr(nameTok); err != nil {
				return err
			}
			e.vm.Pop(vmw.Pointer, 1)
			e.vm.Push(vmw.That, 0)
			_, err := e.expect("]")
			return err
		case e.curIs("(") || e.curIs("."):
			return e.compileSubroutineCallTail(nameTok)
		default:
			seg, idx, err := e.resolveVar(nameTok)
			if err != nil {
				return err
			}
			e.vm.Push(seg, idx)
			return nil
		}

	default:
		return errUnexpected(tok, "term")
	}
}

// compileSubroutineCall consumes the leading identifier of a
// subroutineCall itself (used by the "do" statement, where no prior
// term dispatch has consumed it yet) and then dispatches on the shape.
func (e *Engine) compileSubroutineCall() error {
	nameTok, err := e.expectIdentifier()
	if err != nil {
		return err
	}
	return e.compileSubroutineCallTail(nameTok)
}

// compileSubroutineCallTail handles both subroutineCall shapes once the
// leading identifier (nameTok) has already been consumed and emitted.
func (e *Engine) compileSubroutineCallTail(nameTok lexer.Token) error {
	switch {
	case e.curIs("."):
		if _, err := e.expect("."); err != nil {
			return err
		}
		methodTok, err := e.expectIdentifier()
		if err != nil {
			return err
		}

		qualified := nameTok.Value + "." + methodTok.Value
		nArgs := 0
		if seg, idx, typ, ok := e.resolveVarMaybe(nameTok.Value); ok {
			e.vm.Push(seg, idx)
			nArgs = 1
			qualified = typ + "." + methodTok.Value
		}

		if _, err := e.expect("("); err != nil {
			return err
		}
		count, err := e.compileExpressionList()
		if err != nil {
			return err
		}
		if _, err := e.expect(")"); err != nil {
			return err
		}
		e.vm.Call(qualified, nArgs+count)
		return nil

	case e.curIs("("):
		e.vm.Push(vmw.Pointer, 0)
		if _, err := e.expect("("); err != nil {
			return err
		}
		count, err := e.compileExpressionList()
		if err != nil {
			return err
		}
		if _, err := e.expect(")"); err != nil {
			return err
		}
		e.vm.Call(e.class+"."+nameTok.Value, 1+count)
		return nil

	default:
		return errUnexpected(e.cur(), "( or .")
	}
}

func (e *Engine) resolveVar(tok lexer.Token) (vmw.Segment, int, error) {
	kind, ok := e.sym.KindOf(tok.Value)
	if !ok {
		return "", 0, errUndefined(tok.Value, tok)
	}
	idx, _ := e.sym.IndexOf(tok.Value)
	return segmentFor(kind), idx, nil
}

// resolveVarMaybe reports whether name is a known variable; if so it
// also returns its segment, index and declared type (used to resolve a
// call qualifier to "type.method" for a method call on a variable).
func (e *Engine) resolveVarMaybe(name string) (seg vmw.Segment, index int, typ string, ok bool) {
	kind, ok := e.sym.KindOf(name)
	if !ok {
		return "", 0, "", false
	}
	idx, _ := e.sym.IndexOf(name)
	t, _ := e.sym.TypeOf(name)
	return segmentFor(kind), idx, t, true
}

func segmentFor(kind symtab.Kind) vmw.Segment {
	switch kind {
	case symtab.Static:
		return vmw.Static
	case symtab.Field:
		return vmw.This
	case symtab.Arg:
		return vmw.Argument
	case symtab.Var:
		return vmw.Local
	default:
		return ""
	}
}

func isKeywordConstant(value string) bool {
	switch value {
	case "true", "false", "null", "this":
		return true
	default:
		return false
	}
}

func isBinaryOp(tok lexer.Token) bool {
	if tok.Kind != lexer.Symbol {
		return false
	}
	switch tok.Value {
	case "+", "-", "*", "/", "&", "|", "<", ">", "=":
		return true
	default:
		return false
	}
}

func binaryOp(value string) vmw.Op {
	switch value {
	case "+":
		return vmw.Add
	case "-":
		return vmw.Sub
	case "*":
		return vmw.Mul
	case "/":
		return vmw.Div
	case "&":
		return vmw.And
	case "|":
		return vmw.Or
	case "<":
		return vmw.Lt
	case ">":
		return vmw.Gt
	case "=":
		return vmw.Eq
	default:
		return ""
	}
}

func isUnaryOp(tok lexer.Token) bool {
	return tok.Kind == lexer.Symbol && (tok.Value == "-" || tok.Value == "~")
}

// unaryOp maps '-' to neg and '~' to not.
func unaryOp(value string) vmw.Op {
	switch value {
	case "-":
		return vmw.Neg
	case "~":
		return vmw.Not
	default:
		return ""
	}
}
