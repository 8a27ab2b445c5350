// Package symtab implements the two-scope name table (class, subroutine)
// used while compiling a single Jack class.
package symtab

import "github.com/pkg/errors"

// Kind is an identifier's storage kind.
type Kind string

const (
	Static Kind = "static"
	Field  Kind = "field"
	Arg    Kind = "arg"
	Var    Kind = "var"
)

// entry is one identifier record: name, type, kind and scope-local index.
type entry struct {
	typ   string
	kind  Kind
	index int
}

// Table is the two-scope symbol table: class scope holds static/field,
// subroutine scope holds arg/var. Each scope keeps its own running
// counters so Index is assigned as "count of prior definitions of the
// same kind in the same scope" without re-scanning the scope on every
// Define, rather than re-scanning the scope's map on every lookup.
type Table struct {
	class      map[string]entry
	classCount map[Kind]int

	sub      map[string]entry
	subCount map[Kind]int
}

// New returns an empty table with both scopes cleared.
func New() *Table {
	t := &Table{}
	t.clearClass()
	t.clearSub()
	return t
}

func (t *Table) clearClass() {
	t.class = make(map[string]entry)
	t.classCount = map[Kind]int{Static: 0, Field: 0}
}

func (t *Table) clearSub() {
	t.sub = make(map[string]entry)
	t.subCount = map[Kind]int{Arg: 0, Var: 0}
}

// StartSubroutine clears subroutine-scope entries and resets its
// counters. Call this before compiling a new subroutine's parameter
// list and body.
func (t *Table) StartSubroutine() {
	t.clearSub()
}

// StartClass clears class-scope entries and counters. Call once per
// compiled class.
func (t *Table) StartClass() {
	t.clearClass()
}

// Define registers name with the given type and kind in the scope
// implied by kind (static/field → class scope, arg/var → subroutine
// scope), assigning it the next index for that kind. Redefining an
// existing name in the same scope overwrites the prior entry ("last
// wins" — an explicitly allowed Open Question resolution).
func (t *Table) Define(name, typ string, kind Kind) error {
	switch kind {
	case Static, Field:
		idx := t.classCount[kind]
		t.classCount[kind] = idx + 1
		t.class[name] = entry{typ: typ, kind: kind, index: idx}
	case Arg, Var:
		idx := t.subCount[kind]
		t.subCount[kind] = idx + 1
		t.sub[name] = entry{typ: typ, kind: kind, index: idx}
	default:
		return errors.Errorf("BadKind: unrecognized symbol kind %q", kind)
	}
	return nil
}

// VarCount returns the current counter for kind in its owning scope.
func (t *Table) VarCount(kind Kind) int {
	switch kind {
	case Static, Field:
		return t.classCount[kind]
	case Arg, Var:
		return t.subCount[kind]
	default:
		return 0
	}
}

func (t *Table) lookup(name string) (entry, bool) {
	if e, ok := t.sub[name]; ok {
		return e, true
	}
	if e, ok := t.class[name]; ok {
		return e, true
	}
	return entry{}, false
}

// KindOf reports the kind of name, looking in subroutine scope first
// then class scope; ok is false if name is unresolved (a class or
// subroutine name, not a variable).
func (t *Table) KindOf(name string) (Kind, bool) {
	e, ok := t.lookup(name)
	if !ok {
		return "", false
	}
	return e.kind, true
}

// TypeOf reports the declared type of name.
func (t *Table) TypeOf(name string) (string, bool) {
	e, ok := t.lookup(name)
	if !ok {
		return "", false
	}
	return e.typ, true
}

// IndexOf reports the scope-local index of name.
func (t *Table) IndexOf(name string) (int, bool) {
	e, ok := t.lookup(name)
	if !ok {
		return 0, false
	}
	return e.index, true
}
