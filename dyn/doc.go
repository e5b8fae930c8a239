// Package dyn provides owned handles over interpreter value cells.
//
// Every handle owns exactly one reference count on its cell, taken at
// construction and released by exactly one of Release, IntoCell or
// IntoMortal. The centralized move/borrow pair is MoveFromCell (adopt an
// existing count) and BorrowCell (take a fresh one); all other constructors
// go through it. Classification is never cached: Kind and the narrowing
// conversions re-inspect the cell on every call, forcing any deferred
// substring first.
//
// Handles are bound to their interpreter instance and share its threading
// rule: one goroutine at a time per Interp.
package dyn
