package interp

// The value stack holds borrowed cell pointers; values that must survive
// the current statement are kept alive through the mortal stack. The mark
// stack delimits one call's argument window. This models the host's
// address-based protocol as a bounds-checked slice; ordering and one-shot
// consumption are preserved by the xs adapter on top.

// PushMark saves the current stack position, opening an argument window.
// Performed by the caller-side convention before pushing arguments.
func (ip *Interp) PushMark() {
	ip.marks = append(ip.marks, len(ip.stack))
}

// PopMark removes and returns the most recent mark. Valid only inside a
// native entry point whose caller pushed a matching mark.
func (ip *Interp) PopMark() int {
	n := len(ip.marks)
	if n == 0 {
		panic("interp: PopMark without a pushed mark")
	}
	m := ip.marks[n-1]
	ip.marks = ip.marks[:n-1]
	return m
}

// StackDepth returns the current value stack depth.
func (ip *Interp) StackDepth() int { return len(ip.stack) }

// StackGet returns the borrowed cell at absolute index i, or nil when out
// of range.
func (ip *Interp) StackGet(i int) *Cell {
	if i < 0 || i >= len(ip.stack) {
		return nil
	}
	return ip.stack[i]
}

// StackPush appends one borrowed cell pointer.
func (ip *Interp) StackPush(c *Cell) {
	ip.stack = append(ip.stack, c)
}

// StackResizeBy grows the stack by n nil slots for a contiguous multi-value
// write.
func (ip *Interp) StackResizeBy(n int) {
	for i := 0; i < n; i++ {
		ip.stack = append(ip.stack, nil)
	}
}

// StackSet writes a borrowed cell pointer at absolute index i.
func (ip *Interp) StackSet(i int, c *Cell) {
	if i < 0 || i >= len(ip.stack) {
		panic("interp: StackSet out of range")
	}
	ip.stack[i] = c
}

// StackShrinkTo truncates the stack to depth n. Everything above must
// already be mortal or it is leaked.
func (ip *Interp) StackShrinkTo(n int) {
	if n < 0 || n > len(ip.stack) {
		panic("interp: StackShrinkTo out of range")
	}
	ip.stack = ip.stack[:n]
}
