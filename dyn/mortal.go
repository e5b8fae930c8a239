package dyn

import "github.com/wippyai/perlbind/interp"

// Mortal is a value whose count lives on the interpreter's deferred free
// list. It is kept alive until the enclosing FreeTmps and must never be
// released by hand.
type Mortal struct {
	cell *interp.Cell
}

// Cell returns the underlying cell. Borrowed; the mortal stack owns it.
func (m *Mortal) Cell() *interp.Cell { return m.cell }
