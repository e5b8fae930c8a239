package magic

import (
	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/interp"
)

// NewBlessed builds the class-style object flow in one step: a fresh hash
// behind a reference blessed into pkg, with payload attached to the hash.
// Methods recover the payload later through FromRef on the object they are
// called on.
func NewBlessed[T any](ip *interp.Interp, spec *Spec[T], pkg string, payload *T) *dyn.Value {
	inner := dyn.FromHash(dyn.NewHash(ip))
	Attach(inner, spec, payload)
	ref := dyn.NewRef(inner)
	inner.Release()
	// The target always exists here, bless cannot fail.
	_ = ref.Bless(pkg)
	return ref
}
