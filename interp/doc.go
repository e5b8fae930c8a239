// Package interp models the reference-counted interpreter runtime the
// bridge binds against.
//
// The runtime owns every dynamic cell: plain scalars (integer, double,
// byte-string), references, arrays, hashes, deferred substring lvalues and
// opaque magic attachments. Cells are explicitly reference counted; a count
// reaching zero destroys the cell, runs its magic free callbacks exactly
// once and releases everything it holds.
//
// An Interp instance is strictly single-threaded. Reference counts are not
// atomic, and the value stack, mark stack and mortal (deferred free) stack
// are all plain slices guarded only by the calling discipline of one native
// call at a time. Use one Interp per goroutine.
//
// This package is deliberately low level. The handle types in package dyn
// wrap cells with ownership discipline; almost all code should go through
// those instead.
package interp
