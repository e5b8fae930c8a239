package interp

// Interp is one interpreter instance: the cell allocator, the value and
// mark stacks, the mortal (deferred free) stack, and the two call-scoped
// gates. Not safe for concurrent use.
type Interp struct {
	undef *Cell
	yes   *Cell
	no    *Cell

	stack []*Cell // borrowed pointers; mortals keep pushed values alive
	marks []int

	tmps      []*Cell
	tmpsFloor []int

	rawGate  bool
	listGate bool

	nextID uint64
	live   int
}

// New creates a fresh interpreter instance with its pinned singletons.
func New() *Interp {
	ip := &Interp{}
	ip.undef = ip.newCell(kindScalar)
	ip.yes = ip.newCell(kindScalar)
	ip.yes.flags = FlagInteger | FlagString
	ip.yes.iv = 1
	ip.yes.pv = []byte("1")
	ip.no = ip.newCell(kindScalar)
	ip.no.flags = FlagInteger | FlagString
	ip.no.iv = 0
	for _, c := range []*Cell{ip.undef, ip.yes, ip.no} {
		c.pinned = true
		ip.live--
	}
	return ip
}

// Undef returns the pinned undef singleton.
func (ip *Interp) Undef() *Cell { return ip.undef }

// Yes returns the pinned boolean-true singleton.
func (ip *Interp) Yes() *Cell { return ip.yes }

// No returns the pinned boolean-false singleton.
func (ip *Interp) No() *Cell { return ip.no }

// LiveCells returns the number of live non-pinned cells. Test hook for
// leak checking.
func (ip *Interp) LiveCells() int { return ip.live }

// SaveTmps opens a new mortal scope. Every cell mortalized afterwards is
// released by the matching FreeTmps.
func (ip *Interp) SaveTmps() {
	ip.tmpsFloor = append(ip.tmpsFloor, len(ip.tmps))
}

// Mortalize transfers one owned count on c to the deferred free list and
// returns c. The caller must not release that count again.
func (ip *Interp) Mortalize(c *Cell) *Cell {
	ip.tmps = append(ip.tmps, c)
	return c
}

// FreeTmps releases every cell mortalized since the matching SaveTmps, or
// since startup when no scope is open.
func (ip *Interp) FreeTmps() {
	floor := 0
	if n := len(ip.tmpsFloor); n > 0 {
		floor = ip.tmpsFloor[n-1]
		ip.tmpsFloor = ip.tmpsFloor[:n-1]
	}
	for i := len(ip.tmps) - 1; i >= floor; i-- {
		ip.tmps[i].DecRef()
	}
	ip.tmps = ip.tmps[:floor]
}

// Gate restores one of the interpreter's call-scoped flags when released.
// Always release via defer so unwinds restore the previous state too.
type Gate struct {
	ip       *Interp
	list     bool
	prev     bool
	released bool
}

// SetRawGate sets the raw-passthrough gate and returns a guard restoring
// the previous state.
func (ip *Interp) SetRawGate(on bool) *Gate {
	g := &Gate{ip: ip, prev: ip.rawGate}
	ip.rawGate = on
	return g
}

// SetListGate sets the list-return gate and returns a guard restoring the
// previous state.
func (ip *Interp) SetListGate(on bool) *Gate {
	g := &Gate{ip: ip, list: true, prev: ip.listGate}
	ip.listGate = on
	return g
}

// Release restores the gate to its saved state. Safe to call more than
// once; only the first call restores.
func (g *Gate) Release() {
	if g.released {
		return
	}
	g.released = true
	if g.list {
		g.ip.listGate = g.prev
	} else {
		g.ip.rawGate = g.prev
	}
}

// RawEnabled reports whether raw passthrough is currently permitted.
func (ip *Interp) RawEnabled() bool { return ip.rawGate }

// ListEnabled reports whether top-level sequences publish as value lists.
func (ip *Interp) ListEnabled() bool { return ip.listGate }
