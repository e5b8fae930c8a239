package marshal

import (
	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/interp"
)

// RawValue carries an interpreter value through marshaling by identity:
// serializing it reattaches the very same cell with exactly one fresh
// count instead of rebuilding the structure, and deserializing into it
// wraps the current cell without recursing.
//
// Both directions work only while the interpreter's raw gate is open,
// which the call adapter arranges for the duration of one dispatch.
type RawValue struct {
	Value *dyn.Value
}

// RawGuard opens the raw passthrough gate until released. Release via
// defer so unwinds restore the gate too.
type RawGuard struct {
	g *interp.Gate
}

// EnableRaw opens the raw gate on ip.
func EnableRaw(ip *interp.Interp) *RawGuard {
	return &RawGuard{g: ip.SetRawGate(true)}
}

// Release restores the gate. Safe to call more than once.
func (g *RawGuard) Release() { g.g.Release() }

// ListGuard opens the list-return gate until released.
type ListGuard struct {
	g *interp.Gate
}

// EnableList opens the list-return gate on ip.
func EnableList(ip *interp.Interp) *ListGuard {
	return &ListGuard{g: ip.SetListGate(true)}
}

// Release restores the gate. Safe to call more than once.
func (g *ListGuard) Release() { g.g.Release() }
