package dyn

import "github.com/wippyai/perlbind/interp"

// Hash is an owned handle to a hash cell.
type Hash struct {
	ip   *interp.Interp
	cell *interp.Cell
}

// NewHash returns a fresh empty hash.
func NewHash(ip *interp.Interp) *Hash {
	return &Hash{ip: ip, cell: ip.NewHash()}
}

// HashFromScalar narrows s to a hash handle, stealing its count. A
// non-hash yields a CastError and s stays valid.
func HashFromScalar(s *Scalar) (*Hash, error) {
	if k := s.Kind(); k != KindHash {
		return nil, &CastError{Expected: "hash", Actual: k.String()}
	}
	return &Hash{ip: s.ip, cell: s.IntoCell()}, nil
}

// Interp returns the owning interpreter instance.
func (h *Hash) Interp() *interp.Interp { return h.ip }

// Cell returns the underlying cell without transferring ownership.
func (h *Hash) Cell() *interp.Cell { return h.cell }

// CloneRef returns a second handle owning its own count.
func (h *Hash) CloneRef() *Hash {
	return &Hash{ip: h.ip, cell: h.cell.IncRef()}
}

// IntoCell hands the owned count to the caller.
func (h *Hash) IntoCell() *interp.Cell {
	c := h.cell
	h.cell = nil
	return c
}

// Release drops the handle's count. Idempotent per handle.
func (h *Hash) Release() {
	if h.cell == nil {
		return
	}
	h.cell.DecRef()
	h.cell = nil
}

// Len returns the number of keys.
func (h *Hash) Len() int { return h.cell.HashLen() }

// Get returns a fresh owned handle on the value stored under key, or false
// when absent.
func (h *Hash) Get(key string) (*Value, bool) {
	return h.GetBytes([]byte(key))
}

// GetBytes is Get with a raw byte key.
func (h *Hash) GetBytes(key []byte) (*Value, bool) {
	c := h.cell.HashGet(key)
	if c == nil {
		return nil, false
	}
	return ValueBorrowCell(h.ip, c), true
}

// Insert stores v under key, taking over its owned count.
func (h *Hash) Insert(key string, v *Value) {
	h.InsertBytes([]byte(key), v)
}

// InsertBytes is Insert with a raw byte key.
func (h *Hash) InsertBytes(key []byte, v *Value) {
	h.cell.HashStore(key, v.IntoCell())
}

// InsertValueKey stores v under the key scalar's string form. The key
// handle is not consumed.
func (h *Hash) InsertValueKey(key *Scalar, v *Value) {
	h.cell.HashStore(key.Cell().PV(), v.IntoCell())
}

// SharedIter starts a pass over the hash using the container's own single
// cursor. Starting a new pass resets any iteration already in flight over
// the same hash, including through other handles.
func (h *Hash) SharedIter() *HashIter {
	h.cell.HashIterInit()
	return &HashIter{h: h}
}

// HashIter walks a hash through its shared internal cursor.
type HashIter struct {
	h *Hash
}

// Next returns the next key and an owned handle on its value, or false at
// the end.
func (it *HashIter) Next() (string, *Value, bool) {
	k, c, ok := it.h.cell.HashIterNext()
	if !ok {
		return "", nil, false
	}
	return k, ValueBorrowCell(it.h.ip, c), true
}
