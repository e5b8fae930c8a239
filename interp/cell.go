package interp

import (
	"fmt"
	"strconv"
	"strings"
)

// Flags describes the scalar representations a cell currently holds. A cell
// can carry several at once (for example an integer with a cached string
// form), so callers can only check what a cell contains, not what it was
// originally meant to be. Empty flags on a plain scalar mean undef.
type Flags uint8

const (
	FlagInteger Flags = 1 << iota
	FlagDouble
	FlagString
)

type cellKind uint8

const (
	kindScalar cellKind = iota
	kindRef
	kindArray
	kindHash
	kindSubstr
	kindFreed
)

// Cell is one dynamic value cell owned by an Interp. All access must happen
// on the interpreter's thread.
type Cell struct {
	ip     *Interp
	id     uint64
	refcnt int
	pinned bool

	kind  cellKind
	flags Flags
	iv    int64
	nv    float64
	pv    []byte
	utf8  bool

	// reference target, owned
	ref *Cell

	// array elements, owned
	elems []*Cell

	// hash storage: insertion-ordered entries plus index, and the hash's
	// single internal iteration cursor
	hkeys []string
	hvals []*Cell
	hidx  map[string]int
	hcur  int

	// deferred substring lvalue
	subOff int
	subLen int

	// class package, set by blessing
	blessPkg string

	magic []*Magic
}

func (ip *Interp) newCell(kind cellKind) *Cell {
	ip.nextID++
	ip.live++
	return &Cell{ip: ip, id: ip.nextID, refcnt: 1, kind: kind, hcur: -1}
}

// NewScalar returns a fresh undef scalar cell with one owned count.
func (ip *Interp) NewScalar() *Cell { return ip.newCell(kindScalar) }

// NewInt returns a fresh integer cell.
func (ip *Interp) NewInt(v int64) *Cell {
	c := ip.newCell(kindScalar)
	c.flags = FlagInteger
	c.iv = v
	return c
}

// NewUint returns a fresh unsigned integer cell. The model stores it in the
// signed slot; the distinction only matters for formatting huge values.
func (ip *Interp) NewUint(v uint64) *Cell {
	c := ip.newCell(kindScalar)
	c.flags = FlagInteger
	c.iv = int64(v)
	return c
}

// NewFloat returns a fresh floating point cell.
func (ip *Interp) NewFloat(v float64) *Cell {
	c := ip.newCell(kindScalar)
	c.flags = FlagDouble
	c.nv = v
	return c
}

// NewBytes returns a fresh byte-string cell. utf8 marks the buffer as
// containing encoded text rather than raw bytes.
func (ip *Interp) NewBytes(b []byte, utf8 bool) *Cell {
	c := ip.newCell(kindScalar)
	c.flags = FlagString
	c.pv = append([]byte(nil), b...)
	c.utf8 = utf8
	return c
}

// NewRef returns a reference cell pointing at target. The reference owns one
// count on the target, which is taken from the caller.
func (ip *Interp) NewRef(target *Cell) *Cell {
	c := ip.newCell(kindRef)
	c.ref = target
	return c
}

// NewArray returns a fresh empty array cell.
func (ip *Interp) NewArray() *Cell { return ip.newCell(kindArray) }

// NewHash returns a fresh empty hash cell.
func (ip *Interp) NewHash() *Cell {
	c := ip.newCell(kindHash)
	c.hidx = make(map[string]int)
	return c
}

// NewSubstr returns a deferred substring lvalue over target, taking
// ownership of one count on it. The cell resolves to a concrete string the
// first time it is read or classified.
func (ip *Interp) NewSubstr(target *Cell, off, length int) *Cell {
	c := ip.newCell(kindSubstr)
	c.ref = target
	c.subOff = off
	c.subLen = length
	return c
}

// ID returns the cell's stable numeric identity.
func (c *Cell) ID() uint64 { return c.id }

// RefCount returns the current reference count. Test hook.
func (c *Cell) RefCount() int { return c.refcnt }

// IncRef increments the reference count and returns the cell.
func (c *Cell) IncRef() *Cell {
	if c.kind == kindFreed {
		panic("interp: IncRef on freed cell")
	}
	c.refcnt++
	return c
}

// DecRef decrements the reference count, destroying the cell when it hits
// zero. Decrementing a freed cell is an internal corruption and panics.
func (c *Cell) DecRef() {
	if c.kind == kindFreed {
		panic("interp: DecRef on freed cell")
	}
	if c.refcnt <= 0 {
		panic("interp: refcount underflow")
	}
	c.refcnt--
	if c.refcnt == 0 && !c.pinned {
		c.destroy()
	}
}

func (c *Cell) destroy() {
	// Free callbacks run before the cell's storage goes away, exactly once.
	for _, mg := range c.magic {
		if mg.vtbl.Free != nil {
			mg.vtbl.Free(mg.data)
		}
		if mg.obj != nil {
			mg.obj.DecRef()
		}
	}
	c.magic = nil

	switch c.kind {
	case kindRef, kindSubstr:
		if c.ref != nil {
			c.ref.DecRef()
			c.ref = nil
		}
	case kindArray:
		for _, e := range c.elems {
			e.DecRef()
		}
		c.elems = nil
	case kindHash:
		for _, v := range c.hvals {
			v.DecRef()
		}
		c.hkeys, c.hvals, c.hidx = nil, nil, nil
	}
	c.kind = kindFreed
	c.pv = nil
	c.ip.live--
}

// IsFreed reports whether the cell has been destroyed. Test hook; a live
// handle must never observe true.
func (c *Cell) IsFreed() bool { return c.kind == kindFreed }

// IsReference reports whether the cell is a reference.
func (c *Cell) IsReference() bool { return c.kind == kindRef }

// IsArray reports whether the cell is an array container.
func (c *Cell) IsArray() bool { return c.kind == kindArray }

// IsHash reports whether the cell is a hash container.
func (c *Cell) IsHash() bool { return c.kind == kindHash }

// IsLazy reports whether the cell is a deferred substring lvalue.
func (c *Cell) IsLazy() bool { return c.kind == kindSubstr }

// TypeFlags returns the scalar representation flags. Containers and
// references report no flags.
func (c *Cell) TypeFlags() Flags {
	if c.kind == kindScalar {
		return c.flags
	}
	return 0
}

// ForceLazy resolves a deferred substring lvalue into a concrete string
// scalar in place. Only this one lazy representation is supported; see the
// package notes. It is a no-op for every other kind.
func (c *Cell) ForceLazy() {
	if c.kind != kindSubstr {
		return
	}
	src := c.ref.PV()
	off, length := c.subOff, c.subLen
	if off > len(src) {
		off = len(src)
	}
	if off+length > len(src) {
		length = len(src) - off
	}
	buf := append([]byte(nil), src[off:off+length]...)
	c.ref.DecRef()
	c.ref = nil
	c.kind = kindScalar
	c.flags = FlagString
	c.pv = buf
	c.utf8 = false
}

// Deref returns the reference target, or nil when the cell is not a
// reference or the target is gone.
func (c *Cell) Deref() *Cell {
	if c.kind != kindRef || c.ref == nil || c.ref.kind == kindFreed {
		return nil
	}
	return c.ref
}

// Bless records the class package the cell belongs to.
func (c *Cell) Bless(pkg string) { c.blessPkg = pkg }

// Blessed returns the class package, or "" when unblessed.
func (c *Cell) Blessed() string { return c.blessPkg }

// IsUndef reports whether the cell is a plain undef scalar.
func (c *Cell) IsUndef() bool {
	return c.kind == kindScalar && c.flags == 0
}

// IV coerces the cell to an integer following host coercion rules: numeric
// strings parse by their leading number, undef is zero, references coerce
// to their identity.
func (c *Cell) IV() int64 {
	c.ForceLazy()
	switch c.kind {
	case kindScalar:
		switch {
		case c.flags&FlagInteger != 0:
			return c.iv
		case c.flags&FlagDouble != 0:
			return int64(c.nv)
		case c.flags&FlagString != 0:
			return int64(leadingFloat(string(c.pv)))
		default:
			return 0
		}
	case kindRef:
		return int64(c.id)
	default:
		return 0
	}
}

// NV coerces the cell to a float.
func (c *Cell) NV() float64 {
	c.ForceLazy()
	switch c.kind {
	case kindScalar:
		switch {
		case c.flags&FlagDouble != 0:
			return c.nv
		case c.flags&FlagInteger != 0:
			return float64(c.iv)
		case c.flags&FlagString != 0:
			return leadingFloat(string(c.pv))
		default:
			return 0
		}
	case kindRef:
		return float64(c.id)
	default:
		return 0
	}
}

// PV coerces the cell to its byte-string form without changing the stored
// representation.
func (c *Cell) PV() []byte {
	c.ForceLazy()
	switch c.kind {
	case kindScalar:
		switch {
		case c.flags&FlagString != 0:
			return c.pv
		case c.flags&FlagInteger != 0:
			return []byte(strconv.FormatInt(c.iv, 10))
		case c.flags&FlagDouble != 0:
			return []byte(formatFloat(c.nv))
		default:
			return nil
		}
	case kindRef:
		return []byte(fmt.Sprintf("REF(0x%x)", c.id))
	default:
		return nil
	}
}

// IsUTF8 reports whether the string buffer carries the encoded-text tag.
func (c *Cell) IsUTF8() bool { return c.utf8 }

// IsTrue applies the host's truth rules: undef, zero and the strings ""
// and "0" are false, everything else is true.
func (c *Cell) IsTrue() bool {
	c.ForceLazy()
	if c.kind != kindScalar {
		return true
	}
	switch {
	case c.flags == 0:
		return false
	case c.flags&FlagString != 0:
		s := string(c.pv)
		return s != "" && s != "0"
	case c.flags&FlagInteger != 0:
		return c.iv != 0
	case c.flags&FlagDouble != 0:
		return c.nv != 0
	}
	return false
}

// leadingFloat parses the leading numeric portion of s, ignoring trailing
// garbage the way the host's string-to-number coercion does.
func leadingFloat(s string) float64 {
	s = strings.TrimLeft(s, " \t\n")
	end := 0
	seenDigit, seenDot, seenExp := false, false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= '0' && ch <= '9':
			seenDigit = true
			end = i + 1
		case (ch == '+' || ch == '-') && (i == 0 || (seenExp && (s[i-1] == 'e' || s[i-1] == 'E'))):
		case ch == '.' && !seenDot && !seenExp:
			seenDot = true
		case (ch == 'e' || ch == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			goto done
		}
	}
done:
	if !seenDigit {
		return 0
	}
	// re-scan up to the last accepted digit including prefix sign/dot/exp
	f, err := strconv.ParseFloat(strings.TrimRight(s[:end], "eE+-."), 64)
	if err != nil {
		// fall back to the longest prefix ParseFloat accepts
		for j := end; j > 0; j-- {
			if v, err2 := strconv.ParseFloat(s[:j], 64); err2 == nil {
				return v
			}
		}
		return 0
	}
	return f
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
