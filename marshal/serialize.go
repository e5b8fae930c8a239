package marshal

import (
	"reflect"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

var (
	rawValueType    = reflect.TypeOf(RawValue{})
	dynValuePtrType = reflect.TypeOf((*dyn.Value)(nil))
)

// ToValue serializes v into a fresh owned interpreter value. Composites
// come back as a container behind exactly one reference.
func ToValue(ip *interp.Interp, v any) (*dyn.Value, error) {
	enc := &encoder{ip: ip}
	return enc.encode(reflect.ValueOf(v), 0)
}

type encoder struct {
	ip   *interp.Interp
	path []string
}

func (e *encoder) errPath() []string {
	return append([]string(nil), e.path...)
}

func (e *encoder) undef() *dyn.Value {
	return dyn.FromScalar(dyn.NewUndef(e.ip))
}

// refTo wraps v's cell in a fresh reference, consuming v's count.
func (e *encoder) refTo(v *dyn.Value) *dyn.Value {
	return dyn.ValueMoveFromCell(e.ip, e.ip.NewRef(v.IntoCell()))
}

// refToUndef builds a reference to a fresh undef cell. Used for a nil
// pointer nested inside another pointer, so the inner absence survives.
func (e *encoder) refToUndef() *dyn.Value {
	return dyn.ValueMoveFromCell(e.ip, e.ip.NewRef(e.ip.NewScalar()))
}

// encodeRaw reattaches an existing interpreter value by identity with
// exactly one fresh count. Gated.
func (e *encoder) encodeRaw(v *dyn.Value) (*dyn.Value, error) {
	if v == nil {
		return e.undef(), nil
	}
	if !e.ip.RawEnabled() {
		return nil, errors.RawDisabled(errors.PhaseSerialize)
	}
	return v.CloneRef(), nil
}

// encode walks rv. ptrDepth counts consecutive pointer unwraps; it resets
// to zero when descending into container elements and struct fields.
func (e *encoder) encode(rv reflect.Value, ptrDepth int) (*dyn.Value, error) {
	if !rv.IsValid() {
		return e.undef(), nil
	}

	switch rv.Type() {
	case rawValueType:
		return e.encodeRaw(rv.Interface().(RawValue).Value)
	case dynValuePtrType:
		if rv.IsNil() {
			return e.undef(), nil
		}
		return e.encodeRaw(rv.Interface().(*dyn.Value))
	}

	switch rv.Kind() {
	case reflect.Bool:
		n := int64(0)
		if rv.Bool() {
			n = 1
		}
		return dyn.FromScalar(dyn.NewInt(e.ip, n)), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return dyn.FromScalar(dyn.NewInt(e.ip, rv.Int())), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return dyn.FromScalar(dyn.NewUint(e.ip, rv.Uint())), nil

	case reflect.Float32, reflect.Float64:
		return dyn.FromScalar(dyn.NewFloat(e.ip, rv.Float())), nil

	case reflect.String:
		return dyn.FromScalar(dyn.NewString(e.ip, rv.String())), nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			if rv.IsNil() {
				return e.undef(), nil
			}
			return dyn.FromScalar(dyn.NewBytes(e.ip, rv.Bytes())), nil
		}
		if rv.IsNil() {
			return e.undef(), nil
		}
		return e.encodeSeq(rv)

	case reflect.Array:
		return e.encodeSeq(rv)

	case reflect.Pointer:
		if rv.IsNil() {
			if ptrDepth > 0 {
				return e.refToUndef(), nil
			}
			return e.undef(), nil
		}
		return e.encode(rv.Elem(), ptrDepth+1)

	case reflect.Interface:
		if rv.IsNil() {
			return e.undef(), nil
		}
		return e.encode(rv.Elem(), ptrDepth)

	case reflect.Map:
		if rv.IsNil() {
			return e.undef(), nil
		}
		return e.encodeMap(rv)

	case reflect.Struct:
		if isEnum(rv.Type()) {
			return e.encodeEnum(rv)
		}
		return e.encodeStruct(rv)

	default:
		return nil, errors.New(errors.PhaseSerialize, errors.KindUnsupported).
			Path(e.errPath()...).
			GoType(rv.Type().String()).
			Detail("cannot serialize this kind").
			Build()
	}
}

func (e *encoder) encodeSeq(rv reflect.Value) (*dyn.Value, error) {
	arr := dyn.NewArray(e.ip)
	arr.Reserve(rv.Len())
	for i := 0; i < rv.Len(); i++ {
		ev, err := e.encode(rv.Index(i), 0)
		if err != nil {
			arr.Release()
			return nil, err
		}
		arr.Push(ev)
	}
	return e.refTo(dyn.FromArray(arr)), nil
}

func (e *encoder) encodeMap(rv reflect.Value) (*dyn.Value, error) {
	if rv.Type().Key().Kind() != reflect.String {
		return nil, errors.New(errors.PhaseSerialize, errors.KindUnsupported).
			Path(e.errPath()...).
			GoType(rv.Type().String()).
			Detail("map keys must be strings").
			Build()
	}
	h := dyn.NewHash(e.ip)
	iter := rv.MapRange()
	for iter.Next() {
		key := iter.Key().String()
		e.path = append(e.path, key)
		ev, err := e.encode(iter.Value(), 0)
		e.path = e.path[:len(e.path)-1]
		if err != nil {
			h.Release()
			return nil, err
		}
		h.Insert(key, ev)
	}
	return e.refTo(dyn.FromHash(h)), nil
}

func (e *encoder) encodeStruct(rv reflect.Value) (*dyn.Value, error) {
	h := dyn.NewHash(e.ip)
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || fieldSkipped(f) {
			continue
		}
		name := fieldName(f)
		e.path = append(e.path, name)
		ev, err := e.encode(rv.Field(i), 0)
		e.path = e.path[:len(e.path)-1]
		if err != nil {
			h.Release()
			return nil, err
		}
		h.Insert(name, ev)
	}
	return e.refTo(dyn.FromHash(h)), nil
}

func (e *encoder) encodeEnum(rv reflect.Value) (*dyn.Value, error) {
	vf, val, err := activeVariant(rv, e.errPath())
	if err != nil {
		return nil, err
	}
	if vf.typ.Elem() == unitType {
		// Unit variants are the bare variant name, no wrapping reference.
		return dyn.FromScalar(dyn.NewString(e.ip, vf.name)), nil
	}
	e.path = append(e.path, vf.name)
	payload, err := e.encode(val.Elem(), 0)
	e.path = e.path[:len(e.path)-1]
	if err != nil {
		return nil, err
	}
	h := dyn.NewHash(e.ip)
	h.Insert(vf.name, payload)
	return e.refTo(dyn.FromHash(h)), nil
}
