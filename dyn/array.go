package dyn

import "github.com/wippyai/perlbind/interp"

// Array is an owned handle to an array cell.
type Array struct {
	ip   *interp.Interp
	cell *interp.Cell
}

// NewArray returns a fresh empty array.
func NewArray(ip *interp.Interp) *Array {
	return &Array{ip: ip, cell: ip.NewArray()}
}

// ArrayFromScalar narrows s to an array handle, stealing its count. No
// conversion happens: a non-array yields a CastError and s stays valid.
func ArrayFromScalar(s *Scalar) (*Array, error) {
	if k := s.Kind(); k != KindArray {
		return nil, &CastError{Expected: "array", Actual: k.String()}
	}
	return &Array{ip: s.ip, cell: s.IntoCell()}, nil
}

// Interp returns the owning interpreter instance.
func (a *Array) Interp() *interp.Interp { return a.ip }

// Cell returns the underlying cell without transferring ownership.
func (a *Array) Cell() *interp.Cell { return a.cell }

// CloneRef returns a second handle owning its own count.
func (a *Array) CloneRef() *Array {
	return &Array{ip: a.ip, cell: a.cell.IncRef()}
}

// IntoCell hands the owned count to the caller.
func (a *Array) IntoCell() *interp.Cell {
	c := a.cell
	a.cell = nil
	return c
}

// Release drops the handle's count. Idempotent per handle.
func (a *Array) Release() {
	if a.cell == nil {
		return
	}
	a.cell.DecRef()
	a.cell = nil
}

// Len returns the number of elements.
func (a *Array) Len() int { return a.cell.ArrayLen() }

// Reserve grows backing storage for at least n more elements.
func (a *Array) Reserve(n int) { a.cell.ArrayReserve(n) }

// Get returns a fresh owned handle on the element at index i, or false
// when out of range.
func (a *Array) Get(i int) (*Value, bool) {
	c := a.cell.ArrayGet(i)
	if c == nil {
		return nil, false
	}
	return ValueBorrowCell(a.ip, c), true
}

// Push appends v, taking over its owned count.
func (a *Array) Push(v *Value) {
	a.cell.ArrayPush(v.IntoCell())
}

// Pop removes the last element and returns an owned handle on it, or false
// on an empty array.
func (a *Array) Pop() (*Value, bool) {
	c := a.cell.ArrayPop()
	if c == nil {
		return nil, false
	}
	return ValueMoveFromCell(a.ip, c), true
}

// Iter returns an independent iterator over the array. Each call starts a
// fresh pass; iterators do not disturb one another.
func (a *Array) Iter() *ArrayIter {
	return &ArrayIter{a: a}
}

// ArrayIter walks an array front to back by index.
type ArrayIter struct {
	a *Array
	i int
}

// Next returns an owned handle on the next element, or false at the end.
func (it *ArrayIter) Next() (*Value, bool) {
	v, ok := it.a.Get(it.i)
	if !ok {
		return nil, false
	}
	it.i++
	return v, true
}
