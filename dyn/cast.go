package dyn

// CastError reports a narrowing conversion applied to a value of the wrong
// type. No conversion is attempted; the original handle stays valid.
type CastError struct {
	Expected string
	Actual   string
}

func (e *CastError) Error() string {
	return "wrong value type: expected " + e.Expected + ", got " + e.Actual
}
