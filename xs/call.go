package xs

import (
	"go.uber.org/zap"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

// Croaked is the caller-side view of an abrupt callee failure: the unwind
// recovered at the dispatch boundary, stringified.
type Croaked struct {
	Msg string
}

func (e *Croaked) Error() string { return e.Msg }

// CallXS drives a registered entry the way the interpreter would: it opens
// a mortal scope, pushes a mark and the arguments, invokes the entry, and
// collects the published results. The arguments are consumed; the returned
// values are fresh owned handles.
//
// An unwind raised by the callee is recovered here, at the dispatch
// boundary, and comes back as *Croaked.
func CallXS(ip *interp.Interp, entry XSub, args ...*dyn.Value) (results []*dyn.Value, err error) {
	ip.SaveTmps()
	defer ip.FreeTmps()

	ip.PushMark()
	floor := ip.StackDepth()
	for _, a := range args {
		ip.StackPush(a.IntoMortal().Cell())
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		u, ok := r.(*interp.Unwind)
		if !ok {
			panic(r)
		}
		interp.Logger().Debug("callee croaked", zap.String("error", u.Error()))
		msg := croakMessage(u)
		ip.StackShrinkTo(floor)
		for _, v := range results {
			v.Release()
		}
		results = nil
		err = &Croaked{Msg: msg}
	}()

	entry(ip)

	n := ip.StackDepth() - floor
	results = make([]*dyn.Value, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, dyn.ValueBorrowCell(ip, ip.StackGet(floor+i)))
	}
	ip.StackShrinkTo(floor)
	return results, nil
}

// croakMessage extracts a readable message from the unwind and releases
// any error cell it carried. A structured croak is a hash reference with a
// message entry.
func croakMessage(u *interp.Unwind) string {
	if u.Value == nil {
		return u.Msg
	}
	msg := string(u.Value.PV())
	if t := u.Value.Deref(); t != nil {
		t.ForceLazy()
		if t.IsHash() {
			if mc := t.HashGet([]byte("message")); mc != nil {
				msg = string(mc.PV())
			}
		}
	}
	u.Value.DecRef()
	u.Value = nil
	return msg
}

// CallNamed looks an export up in the registry and calls it.
func CallNamed(ip *interp.Interp, reg *Registry, pkg, name string, args ...*dyn.Value) ([]*dyn.Value, error) {
	e, ok := reg.Lookup(pkg, name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseCall, "export", key(pkg, name))
	}
	return CallXS(ip, e.Entry, args...)
}
