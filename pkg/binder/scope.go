package binder

import (
	"github.com/oarkflow/lumen/pkg/ast"
)

// Scope resolves identifiers declared before the node being bound.
type Scope interface {
	Declared(name string) (ast.ReturnKind, bool)
}

// Declarations records declared identifiers, falling back to a parent scope.
// A parse collects into a child of the session scope and commits only if the
// parse succeeds.
type Declarations struct {
	parent Scope
	kinds  map[string]ast.ReturnKind
}

func NewDeclarations(parent Scope) *Declarations {
	return &Declarations{parent: parent, kinds: make(map[string]ast.ReturnKind)}
}

func (d *Declarations) Declare(name string, kind ast.ReturnKind) {
	d.kinds[name] = kind
}

func (d *Declarations) Declared(name string) (ast.ReturnKind, bool) {
	if kind, ok := d.kinds[name]; ok {
		return kind, true
	}
	if d.parent != nil {
		return d.parent.Declared(name)
	}
	return ast.ReturnNone, false
}

// CommitTo copies the local declarations into dst.
func (d *Declarations) CommitTo(dst *Declarations) {
	for name, kind := range d.kinds {
		dst.kinds[name] = kind
	}
}

func (d *Declarations) Len() int {
	return len(d.kinds)
}
