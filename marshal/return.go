package marshal

import (
	"reflect"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/interp"
)

// ReturnValue is what a native entry point hands back: nothing, one value,
// or a flat list of values. Publish writes it onto the interpreter stack in
// place of the call's arguments.
type ReturnValue struct {
	list   []*dyn.Value
	single *dyn.Value
	isList bool
}

// Void returns the empty result.
func Void() *ReturnValue { return &ReturnValue{} }

// Single wraps one value, taking over its count.
func Single(v *dyn.Value) *ReturnValue { return &ReturnValue{single: v} }

// List wraps a flat list of values, taking over their counts.
func List(vs []*dyn.Value) *ReturnValue { return &ReturnValue{list: vs, isList: true} }

// IsList reports whether the result publishes as multiple stack values.
func (r *ReturnValue) IsList() bool { return r.isList }

// Len returns the number of stack values Publish will write.
func (r *ReturnValue) Len() int {
	switch {
	case r.isList:
		return len(r.list)
	case r.single != nil:
		return 1
	default:
		return 0
	}
}

// Publish replaces everything above mark with the result. Every published
// cell is mortalized first, so the stack holds only borrowed pointers the
// deferred free list keeps alive.
func (r *ReturnValue) Publish(ip *interp.Interp, mark int) {
	ip.StackShrinkTo(mark)
	switch {
	case r.isList:
		n := len(r.list)
		ip.StackResizeBy(n)
		for i, v := range r.list {
			ip.StackSet(mark+i, v.IntoMortal().Cell())
		}
		r.list = nil
	case r.single != nil:
		ip.StackPush(r.single.IntoMortal().Cell())
		r.single = nil
	}
}

// Release drops any values Publish has not consumed.
func (r *ReturnValue) Release() {
	for _, v := range r.list {
		v.Release()
	}
	r.list = nil
	if r.single != nil {
		r.single.Release()
		r.single = nil
	}
}

// ToReturnValue serializes a Go return value. With the list gate open a
// top-level slice or array publishes element-wise as a value list instead
// of one array reference; everything else is a single value. nil is void.
func ToReturnValue(ip *interp.Interp, v any) (*ReturnValue, error) {
	if v == nil {
		return Void(), nil
	}
	rv := reflect.ValueOf(v)
	if ip.ListEnabled() && isListShape(rv.Type()) {
		enc := &encoder{ip: ip}
		out := make([]*dyn.Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			ev, err := enc.encode(rv.Index(i), 0)
			if err != nil {
				for _, done := range out {
					done.Release()
				}
				return nil, err
			}
			out = append(out, ev)
		}
		return List(out), nil
	}
	ev, err := ToValue(ip, v)
	if err != nil {
		return nil, err
	}
	return Single(ev), nil
}

func isListShape(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Array:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}
