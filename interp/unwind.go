package interp

import (
	"fmt"

	"go.uber.org/zap"
)

// Unwind is the host's abrupt failure travelling up through Go's panic
// machinery. It carries either an owned error cell or a plain message.
// Only the dispatch layer around a native entry point may recover it.
type Unwind struct {
	Value *Cell
	Msg   string
}

func (u *Unwind) Error() string {
	if u.Value != nil {
		return string(u.Value.PV())
	}
	return u.Msg
}

// Croak raises the host's non-local unwind carrying an owned error cell.
// Legal only at the outermost frame of a native entry point; raising it
// while unwind-sensitive native state is live corrupts that state.
func (ip *Interp) Croak(errValue *Cell) {
	Logger().Debug("croak", zap.String("error", string(errValue.PV())))
	panic(&Unwind{Value: errValue})
}

// Croakf raises the host unwind with a formatted message.
func (ip *Interp) Croakf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger().Debug("croak", zap.String("error", msg))
	panic(&Unwind{Msg: msg})
}
