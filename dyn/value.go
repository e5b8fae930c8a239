package dyn

import (
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

// Value is an owned handle to a cell of any kind. Classification happens on
// access, never at construction, so a handle taken on a cell that later
// changes kind always reports what the cell is now.
type Value struct {
	ip   *interp.Interp
	cell *interp.Cell
}

// ValueMoveFromCell adopts an existing owned count on c.
func ValueMoveFromCell(ip *interp.Interp, c *interp.Cell) *Value {
	return &Value{ip: ip, cell: c}
}

// ValueBorrowCell takes a fresh count on c.
func ValueBorrowCell(ip *interp.Interp, c *interp.Cell) *Value {
	return &Value{ip: ip, cell: c.IncRef()}
}

// FromScalar converts a scalar handle into a value handle, stealing its
// count.
func FromScalar(s *Scalar) *Value {
	return &Value{ip: s.ip, cell: s.IntoCell()}
}

// FromArray converts an array handle into a value handle, stealing its
// count.
func FromArray(a *Array) *Value {
	return &Value{ip: a.ip, cell: a.IntoCell()}
}

// FromHash converts a hash handle into a value handle, stealing its count.
func FromHash(h *Hash) *Value {
	return &Value{ip: h.ip, cell: h.IntoCell()}
}

// NewRef builds a reference to v's cell, the host's backslash operator.
// v keeps its own count; the reference owns a fresh one on the target.
func NewRef(v *Value) *Value {
	return &Value{ip: v.ip, cell: v.ip.NewRef(v.cell.IncRef())}
}

// Interp returns the owning interpreter instance.
func (v *Value) Interp() *interp.Interp { return v.ip }

// Cell returns the underlying cell without transferring ownership.
func (v *Value) Cell() *interp.Cell { return v.cell }

// ID returns the cell's stable identity.
func (v *Value) ID() uint64 { return v.cell.ID() }

// CloneRef returns a second handle owning its own count.
func (v *Value) CloneRef() *Value { return ValueBorrowCell(v.ip, v.cell) }

// IntoCell hands the owned count to the caller.
func (v *Value) IntoCell() *interp.Cell {
	c := v.cell
	v.cell = nil
	return c
}

// IntoMortal transfers the handle's count to the deferred free list.
func (v *Value) IntoMortal() *Mortal {
	c := v.cell
	v.cell = nil
	return &Mortal{cell: v.ip.Mortalize(c)}
}

// Release drops the handle's count. Idempotent per handle.
func (v *Value) Release() {
	if v.cell == nil {
		return
	}
	v.cell.DecRef()
	v.cell = nil
}

// Kind classifies the cell: references first, then containers, then plain
// scalars. Re-evaluated on every call.
func (v *Value) Kind() Kind { return classify(v.cell) }

// AsScalar narrows to a scalar handle, stealing the count. Containers and
// references refuse; plain scalars pass.
func (v *Value) AsScalar() (*Scalar, error) {
	if k := v.Kind(); k != KindScalar {
		return nil, &CastError{Expected: "scalar", Actual: k.String()}
	}
	return &Scalar{ip: v.ip, cell: v.IntoCell()}, nil
}

// AsArray narrows to an array handle, stealing the count.
func (v *Value) AsArray() (*Array, error) {
	if k := v.Kind(); k != KindArray {
		return nil, &CastError{Expected: "array", Actual: k.String()}
	}
	return &Array{ip: v.ip, cell: v.IntoCell()}, nil
}

// AsHash narrows to a hash handle, stealing the count.
func (v *Value) AsHash() (*Hash, error) {
	if k := v.Kind(); k != KindHash {
		return nil, &CastError{Expected: "hash", Actual: k.String()}
	}
	return &Hash{ip: v.ip, cell: v.IntoCell()}, nil
}

// Dereference follows a reference and returns a fresh owned handle on the
// target. False when v is not a reference or the target is gone.
func (v *Value) Dereference() (*Value, bool) {
	t := v.cell.Deref()
	if t == nil {
		return nil, false
	}
	return ValueBorrowCell(v.ip, t), true
}

// Bless marks the reference target as belonging to class pkg. Only
// references can be blessed.
func (v *Value) Bless(pkg string) error {
	t := v.cell.Deref()
	if t == nil {
		return errors.NotAReference(errors.PhaseInterp, v.Kind().String())
	}
	t.Bless(pkg)
	return nil
}

// Blessed returns the class package of the reference target, or "".
func (v *Value) Blessed() string {
	t := v.cell.Deref()
	if t == nil {
		return ""
	}
	return t.Blessed()
}

// Get is an array-element convenience: dereference-free indexed access
// when the value is itself an array.
func (v *Value) Get(i int) (*Value, bool) {
	if v.Kind() != KindArray {
		return nil, false
	}
	c := v.cell.ArrayGet(i)
	if c == nil {
		return nil, false
	}
	return ValueBorrowCell(v.ip, c), true
}

// Scalar coercions, delegated to the cell.

func (v *Value) IV() int64       { return v.cell.IV() }
func (v *Value) NV() float64     { return v.cell.NV() }
func (v *Value) PVUTF8() string  { return string(v.cell.PV()) }
func (v *Value) PVBytes() []byte { return append([]byte(nil), v.cell.PV()...) }
func (v *Value) IsTrue() bool    { return v.cell.IsTrue() }
func (v *Value) IsUndef() bool {
	v.cell.ForceLazy()
	return v.cell.IsUndef()
}
