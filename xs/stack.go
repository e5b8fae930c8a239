package xs

import (
	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/interp"
)

// Mark is one call's argument window on the value stack. Valid only inside
// a native entry point whose caller pushed the matching mark.
type Mark struct {
	ip  *interp.Interp
	pos int
}

// PopMark removes the caller's mark and returns the argument window.
func PopMark(ip *interp.Interp) Mark {
	return Mark{ip: ip, pos: ip.PopMark()}
}

// Pos returns the absolute stack position of the window's base.
func (m Mark) Pos() int { return m.pos }

// Count returns the number of arguments in the window.
func (m Mark) Count() int { return m.ip.StackDepth() - m.pos }

// SetStack truncates the stack back to the mark. Everything above must be
// mortal or it is leaked; results pushed afterwards replace the arguments.
func (m Mark) SetStack() {
	m.ip.StackShrinkTo(m.pos)
}

// Iter starts the one-shot left-to-right pass over the arguments. The
// stack must not change while iterating.
func (m Mark) Iter() *Iter {
	return &Iter{m: m}
}

// Iter walks an argument window once.
type Iter struct {
	m Mark
	i int
}

// Next returns a fresh owned handle on the next argument, or false past
// the end.
func (it *Iter) Next() (*dyn.Value, bool) {
	c := it.m.ip.StackGet(it.m.pos + it.i)
	if c == nil || it.m.pos+it.i >= it.m.ip.StackDepth() {
		return nil, false
	}
	it.i++
	return dyn.ValueBorrowCell(it.m.ip, c), true
}

// Push mortalizes nothing: the value is already on the deferred free list,
// only its cell pointer goes onto the stack.
func Push(ip *interp.Interp, m *dyn.Mortal) {
	ip.StackPush(m.Cell())
}

// PushRaw pushes a borrowed cell pointer directly. The caller guarantees
// something else keeps it alive for the consumer.
func PushRaw(ip *interp.Interp, c *interp.Cell) {
	ip.StackPush(c)
}

// PushValue mortalizes v and pushes it in one step, consuming the handle.
func PushValue(ip *interp.Interp, v *dyn.Value) {
	ip.StackPush(v.IntoMortal().Cell())
}
