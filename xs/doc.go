// Package xs adapts the interpreter's calling convention for native entry
// points: the caller pushes a mark and the arguments, the callee pops the
// mark, consumes the arguments in one left-to-right pass, and publishes
// results in their place.
//
// The usual shape of an export is Wrap around a function returning a Go
// value and an error. Wrap pops the mark, parses arguments through Args,
// opens the marshaling gates for the duration of the call, serializes the
// result onto the stack, and converts a returned error into the host's
// abrupt unwind at the one frame where that is legal.
//
// Exports are grouped into packages in a Registry; CallXS is the test and
// CLI harness that drives a registered entry end to end.
package xs
