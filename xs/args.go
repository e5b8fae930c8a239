package xs

import (
	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
)

// Args consumes an argument window parameter by parameter, producing the
// arity errors an export should raise: a missing required parameter is
// named, and leftovers report the expected count.
type Args struct {
	mark  Mark
	it    *Iter
	taken int
}

// NewArgs starts consuming the window.
func NewArgs(m Mark) *Args {
	return &Args{mark: m, it: m.Iter()}
}

// Next returns the next argument or a missing-parameter error naming it.
func (a *Args) Next(name string) (*dyn.Value, error) {
	v, ok := a.it.Next()
	if !ok {
		return nil, errors.MissingParam(name)
	}
	a.taken++
	return v, nil
}

// Optional returns the next argument when present. Trailing parameters
// consumed this way never produce an error.
func (a *Args) Optional() (*dyn.Value, bool) {
	v, ok := a.it.Next()
	if ok {
		a.taken++
	}
	return v, ok
}

// Finish verifies nothing is left in the window. expected is the arity to
// report; pass the number of parameters the export declares.
func (a *Args) Finish(expected int) error {
	if got := a.mark.Count(); got > a.taken {
		return errors.TooManyParams(expected, got)
	}
	return nil
}
