package xs

import (
	stderrors "errors"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
	"github.com/wippyai/perlbind/marshal"
)

// Croak converts a terminal error value into the host's abrupt unwind,
// consuming the handle. Only legal at the outermost frame of an entry
// point; Wrap is that frame.
func Croak(ip *interp.Interp, v *dyn.Value) {
	ip.Croak(v.IntoCell())
}

// Croakf raises the unwind with a formatted message.
func Croakf(ip *interp.Interp, format string, args ...any) {
	ip.Croakf(format, args...)
}

// CroakStructured raises the unwind carrying the error as a structured
// value rather than a flat string: structured errors become a hash with
// phase, kind, detail and path, anything else croaks by message.
func CroakStructured(ip *interp.Interp, err error) {
	var se *errors.Error
	if !stderrors.As(err, &se) {
		ip.Croakf("%s", err.Error())
		return
	}
	payload := map[string]any{
		"phase":   string(se.Phase),
		"kind":    string(se.Kind),
		"message": se.Error(),
	}
	if se.Detail != "" {
		payload["detail"] = se.Detail
	}
	if len(se.Path) > 0 {
		payload["path"] = se.Path
	}
	v, merr := marshal.ToValue(ip, payload)
	if merr != nil {
		ip.Croakf("%s", se.Error())
		return
	}
	Croak(ip, v)
}
