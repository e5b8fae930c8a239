package interp

// Array operations. All take or yield borrowed cell pointers; reference
// count transfers are noted per call.

// ArrayLen returns the number of elements.
func (c *Cell) ArrayLen() int { return len(c.elems) }

// ArrayGet returns the element at index without transferring ownership, or
// nil when out of range.
func (c *Cell) ArrayGet(i int) *Cell {
	if i < 0 || i >= len(c.elems) {
		return nil
	}
	return c.elems[i]
}

// ArrayPush appends v, consuming one owned count from the caller.
func (c *Cell) ArrayPush(v *Cell) {
	c.elems = append(c.elems, v)
}

// ArrayPop removes and returns the last element, transferring its count to
// the caller. Returns nil on an empty array.
func (c *Cell) ArrayPop() *Cell {
	n := len(c.elems)
	if n == 0 {
		return nil
	}
	v := c.elems[n-1]
	c.elems = c.elems[:n-1]
	return v
}

// ArrayReserve grows the backing storage for at least n more elements.
func (c *Cell) ArrayReserve(n int) {
	if n <= 0 {
		return
	}
	if cap(c.elems)-len(c.elems) < n {
		grown := make([]*Cell, len(c.elems), len(c.elems)+n)
		copy(grown, c.elems)
		c.elems = grown
	}
}

// Hash operations. The hash carries its own single iteration cursor; see
// HashIterInit.

// HashLen returns the number of keys.
func (c *Cell) HashLen() int { return len(c.hkeys) }

// HashGet returns the value stored under key without transferring
// ownership, or nil when absent.
func (c *Cell) HashGet(key []byte) *Cell {
	i, ok := c.hidx[string(key)]
	if !ok {
		return nil
	}
	return c.hvals[i]
}

// HashStore inserts or replaces the value under key, consuming one owned
// count from the caller. A replaced value is released.
func (c *Cell) HashStore(key []byte, v *Cell) {
	k := string(key)
	if i, ok := c.hidx[k]; ok {
		c.hvals[i].DecRef()
		c.hvals[i] = v
		return
	}
	c.hidx[k] = len(c.hkeys)
	c.hkeys = append(c.hkeys, k)
	c.hvals = append(c.hvals, v)
}

// HashIterInit resets the hash's internal cursor. Any iteration already in
// flight over this hash starts over; this is the container's inherited
// single-cursor behavior, not an error.
func (c *Cell) HashIterInit() {
	c.hcur = -1
}

// HashIterNext advances the internal cursor and returns the next key and a
// borrowed value, or ("", nil, false) at the end.
func (c *Cell) HashIterNext() (string, *Cell, bool) {
	c.hcur++
	if c.hcur >= len(c.hkeys) {
		return "", nil, false
	}
	return c.hkeys[c.hcur], c.hvals[c.hcur], true
}
