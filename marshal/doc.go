// Package marshal converts Go values to interpreter values and back using
// reflection.
//
// Serialization follows host conventions: booleans become the integers 0
// and 1, strings and byte slices become byte-string scalars, and every
// composite (slice, map, struct) is built as a fresh container wrapped in
// exactly one reference. Deserialization is lenient the way the host is:
// references are followed transparently, and scalar requests coerce by
// host rules, so a string cell asked for as an integer parses numerically.
//
// One-of types use the enum convention: a struct embedding Enum whose
// exported pointer fields are the variants, exactly one non-nil at a time.
// A *Unit variant serializes as the bare variant name; every other variant
// serializes as a single-key hash.
//
// Nil pointers map to undef. Inside a pointer unwrap a nil maps to a
// reference-to-undef instead, so nested optional values survive a round
// trip without collapsing.
//
// RawValue is the escape hatch: it carries an interpreter value through
// serialization by identity instead of by structure. It only works inside
// an adapter-managed call, enforced through the interpreter's raw gate.
package marshal
