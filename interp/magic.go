package interp

import "go.uber.org/zap"

// MagicVtbl identifies one kind of magic attachment. Identity is pointer
// identity: two attachments match only when they share the same vtable
// instance. A vtable with a Free callback destroys its payload when the
// holding cell is reclaimed; one without leaves reclamation to an explicit
// remove.
type MagicVtbl struct {
	Name string
	Free func(data any)
}

// Magic is one opaque attachment slot on a cell.
type Magic struct {
	vtbl *MagicVtbl
	obj  *Cell // optional owner, holds one count
	id   string
	data any
}

// Vtbl returns the attachment's vtable.
func (m *Magic) Vtbl() *MagicVtbl { return m.vtbl }

// Data returns the attached payload.
func (m *Magic) Data() any { return m.data }

// MagicAttach stores data as an opaque attachment on the cell, keyed by
// vtbl identity and the id discriminator. obj, when non-nil, is an owner
// value the attachment keeps a count on.
func (c *Cell) MagicAttach(vtbl *MagicVtbl, obj *Cell, id string, data any) {
	if obj != nil {
		obj.IncRef()
	}
	c.magic = append(c.magic, &Magic{vtbl: vtbl, obj: obj, id: id, data: data})
	Logger().Debug("magic attached",
		zap.Uint64("cell", c.id), zap.String("vtbl", vtbl.Name), zap.String("id", id))
}

// MagicFind locates an attachment by discriminator and vtable identity. A
// discriminator match with a different vtable means two incompatible tags
// collided on one payload slot; that is memory corruption, not bad input,
// so it panics.
func (c *Cell) MagicFind(vtbl *MagicVtbl, id string) (any, bool) {
	for _, m := range c.magic {
		if m.id != id {
			continue
		}
		if m.vtbl != vtbl {
			panic("interp: magic vtable identity mismatch for discriminator " + id)
		}
		return m.data, true
	}
	return nil, false
}

// MagicRemove detaches the matching attachment. When the vtable registered
// a Free callback the payload is destroyed here and nil is returned, since
// ownership already belongs to the auto-free path; otherwise the payload is
// handed back to the caller exactly once.
func (c *Cell) MagicRemove(vtbl *MagicVtbl, id string) (any, bool) {
	for i, m := range c.magic {
		if m.id != id {
			continue
		}
		if m.vtbl != vtbl {
			panic("interp: magic vtable identity mismatch for discriminator " + id)
		}
		c.magic = append(c.magic[:i], c.magic[i+1:]...)
		if m.obj != nil {
			m.obj.DecRef()
		}
		if vtbl.Free != nil {
			vtbl.Free(m.data)
			return nil, true
		}
		return m.data, true
	}
	return nil, false
}
