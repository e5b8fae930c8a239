package xs

import (
	"github.com/wippyai/perlbind/interp"
	"github.com/wippyai/perlbind/marshal"
)

// XSub is the raw shape of a native entry point: the caller's mark and
// arguments are on the stack, results go back in their place.
type XSub func(ip *interp.Interp)

// Call is what a wrapped export body receives: the interpreter, the
// argument parser, and the raw window for exports that handle the stack
// themselves.
type Call struct {
	Interp *interp.Interp
	Mark   Mark
	Args   *Args
}

// WrapOption configures Wrap.
type WrapOption func(*wrapConfig)

type wrapConfig struct {
	listReturn bool
}

// WithListReturn publishes a top-level slice or array result element-wise
// as a value list instead of one array reference.
func WithListReturn() WrapOption {
	return func(c *wrapConfig) { c.listReturn = true }
}

// Wrap builds the thin outer wrapper around an export body. The body
// returns a plain Go result and an error; the wrapper pops the mark, opens
// the raw gate for the duration of the call, serializes the result onto
// the stack, and performs the abrupt conversion for errors. The unwind is
// raised only here, after the gates have been restored, so no marshaling
// state is live when it travels.
//
// A body may return *marshal.ReturnValue directly to control publishing.
func Wrap(fn func(c *Call) (any, error), opts ...WrapOption) XSub {
	var cfg wrapConfig
	for _, o := range opts {
		o(&cfg)
	}
	return func(ip *interp.Interp) {
		mark := PopMark(ip)
		call := &Call{Interp: ip, Mark: mark, Args: NewArgs(mark)}

		rv, err := func() (*marshal.ReturnValue, error) {
			raw := marshal.EnableRaw(ip)
			defer raw.Release()
			if cfg.listReturn {
				list := marshal.EnableList(ip)
				defer list.Release()
			}

			res, err := fn(call)
			if err != nil {
				return nil, err
			}
			if ready, ok := res.(*marshal.ReturnValue); ok {
				return ready, nil
			}
			return marshal.ToReturnValue(ip, res)
		}()
		if err != nil {
			mark.SetStack()
			CroakStructured(ip, err)
		}
		if rv == nil {
			rv = marshal.Void()
		}
		rv.Publish(ip, mark.Pos())
	}
}
