package dyn

import (
	"encoding/binary"

	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

// Kind is the result of classifying a cell. References win over everything,
// containers over plain scalars.
type Kind int

const (
	KindScalar Kind = iota
	KindReference
	KindArray
	KindHash
)

func (k Kind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindArray:
		return "array"
	case KindHash:
		return "hash"
	default:
		return "scalar"
	}
}

func classify(c *interp.Cell) Kind {
	c.ForceLazy()
	switch {
	case c.IsReference():
		return KindReference
	case c.IsArray():
		return KindArray
	case c.IsHash():
		return KindHash
	default:
		return KindScalar
	}
}

// Scalar is an owned handle to one cell. The handle owns exactly one
// reference count, released by Release, IntoCell or IntoMortal.
type Scalar struct {
	ip   *interp.Interp
	cell *interp.Cell
}

// MoveFromCell adopts an existing owned count on c. The caller must not
// release that count again.
func MoveFromCell(ip *interp.Interp, c *interp.Cell) *Scalar {
	return &Scalar{ip: ip, cell: c}
}

// BorrowCell takes a fresh count on c and returns a handle owning it.
func BorrowCell(ip *interp.Interp, c *interp.Cell) *Scalar {
	return &Scalar{ip: ip, cell: c.IncRef()}
}

// NewUndef returns a fresh undef scalar.
func NewUndef(ip *interp.Interp) *Scalar { return MoveFromCell(ip, ip.NewScalar()) }

// NewYes returns a handle on the interpreter's true singleton.
func NewYes(ip *interp.Interp) *Scalar { return BorrowCell(ip, ip.Yes()) }

// NewNo returns a handle on the interpreter's false singleton.
func NewNo(ip *interp.Interp) *Scalar { return BorrowCell(ip, ip.No()) }

// NewInt returns a fresh integer scalar.
func NewInt(ip *interp.Interp, v int64) *Scalar { return MoveFromCell(ip, ip.NewInt(v)) }

// NewUint returns a fresh unsigned integer scalar.
func NewUint(ip *interp.Interp, v uint64) *Scalar { return MoveFromCell(ip, ip.NewUint(v)) }

// NewFloat returns a fresh floating point scalar.
func NewFloat(ip *interp.Interp, v float64) *Scalar { return MoveFromCell(ip, ip.NewFloat(v)) }

// NewString returns a fresh string scalar. The buffer is tagged as encoded
// text when it contains non-ASCII bytes.
func NewString(ip *interp.Interp, s string) *Scalar {
	return MoveFromCell(ip, ip.NewBytes([]byte(s), !isASCII(s)))
}

// NewBytes returns a fresh raw byte-string scalar.
func NewBytes(ip *interp.Interp, b []byte) *Scalar {
	return MoveFromCell(ip, ip.NewBytes(b, false))
}

// NewPointer stores a raw pointer value as a native-endian byte string.
func NewPointer(ip *interp.Interp, p uintptr) *Scalar {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], uint64(p))
	return MoveFromCell(ip, ip.NewBytes(buf[:], false))
}

// Interp returns the owning interpreter instance.
func (s *Scalar) Interp() *interp.Interp { return s.ip }

// Cell returns the underlying cell without transferring ownership.
func (s *Scalar) Cell() *interp.Cell { return s.cell }

// CloneRef returns a second handle owning its own count on the same cell.
func (s *Scalar) CloneRef() *Scalar { return BorrowCell(s.ip, s.cell) }

// IntoCell releases the handle without decrementing and hands its owned
// count to the caller.
func (s *Scalar) IntoCell() *interp.Cell {
	c := s.cell
	s.cell = nil
	return c
}

// IntoMortal transfers the handle's count to the deferred free list.
func (s *Scalar) IntoMortal() *Mortal {
	c := s.cell
	s.cell = nil
	return &Mortal{cell: s.ip.Mortalize(c)}
}

// Release drops the handle's count. Idempotent per handle.
func (s *Scalar) Release() {
	if s.cell == nil {
		return
	}
	s.cell.DecRef()
	s.cell = nil
}

// Kind classifies the cell. Re-evaluated on every call; a deferred
// substring is forced first.
func (s *Scalar) Kind() Kind { return classify(s.cell) }

// IV coerces to an integer by host rules.
func (s *Scalar) IV() int64 { return s.cell.IV() }

// NV coerces to a float by host rules.
func (s *Scalar) NV() float64 { return s.cell.NV() }

// PVUTF8 returns the string form, copied out of the cell.
func (s *Scalar) PVUTF8() string { return string(s.cell.PV()) }

// PVBytes returns the raw byte-string form, copied out of the cell.
func (s *Scalar) PVBytes() []byte {
	return append([]byte(nil), s.cell.PV()...)
}

// PVUTF8ToBytes returns the string form as a fresh byte slice.
func (s *Scalar) PVUTF8ToBytes() []byte { return []byte(s.PVUTF8()) }

// PVRaw reads back a pointer stored by NewPointer.
func (s *Scalar) PVRaw() (uintptr, error) {
	b := s.cell.PV()
	if len(b) != 8 {
		return 0, errors.InvalidData(errors.PhaseInterp, nil,
			"pointer scalar must hold exactly 8 bytes")
	}
	return uintptr(binary.NativeEndian.Uint64(b)), nil
}

// IsTrue applies the host's truth rules.
func (s *Scalar) IsTrue() bool { return s.cell.IsTrue() }

// IsUndef reports whether the cell is plain undef.
func (s *Scalar) IsUndef() bool {
	s.cell.ForceLazy()
	return s.cell.IsUndef()
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}
