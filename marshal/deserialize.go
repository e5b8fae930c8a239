package marshal

import (
	"reflect"
	"strconv"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

// FromValue deserializes v into out, which must be a non-nil pointer.
// The handle is consumed; the caller must not use v afterwards. All
// buffers are copied out of the interpreter.
func FromValue(v *dyn.Value, out any) error {
	defer v.Release()
	return fromValue(v, out, false)
}

// FromValueRef is FromValue without consuming the handle. Byte slices in
// out may alias the interpreter's buffers and are only valid while the
// source value lives.
func FromValueRef(v *dyn.Value, out any) error {
	return fromValue(v, out, true)
}

func fromValue(v *dyn.Value, out any, borrow bool) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.InvalidData(errors.PhaseDeserialize, nil,
			"out must be a non-nil pointer")
	}
	d := &decoder{ip: v.Interp(), borrow: borrow}
	return d.decode(v.Cell(), rv.Elem())
}

type decoder struct {
	ip     *interp.Interp
	borrow bool
	path   []string
}

func (d *decoder) errPath() []string {
	return append([]string(nil), d.path...)
}

func (d *decoder) mismatch(c *interp.Cell, t reflect.Type) error {
	return errors.TypeMismatch(errors.PhaseDeserialize, d.errPath(),
		t.String(), classifyName(c))
}

func classifyName(c *interp.Cell) string {
	switch {
	case c.IsReference():
		return "reference"
	case c.IsArray():
		return "array"
	case c.IsHash():
		return "hash"
	default:
		return "scalar"
	}
}

// deref follows reference chains down to a concrete cell.
func (d *decoder) deref(c *interp.Cell) (*interp.Cell, error) {
	for c.IsReference() {
		t := c.Deref()
		if t == nil {
			return nil, errors.DanglingRef(errors.PhaseDeserialize, d.errPath())
		}
		c = t
		c.ForceLazy()
	}
	return c, nil
}

func (d *decoder) decode(c *interp.Cell, rv reflect.Value) error {
	c.ForceLazy()

	switch rv.Type() {
	case rawValueType:
		if !d.ip.RawEnabled() {
			return errors.RawDisabled(errors.PhaseDeserialize)
		}
		// Identity wrap, no recursion into the structure.
		rv.Set(reflect.ValueOf(RawValue{Value: dyn.ValueBorrowCell(d.ip, c)}))
		return nil
	case dynValuePtrType:
		if !d.ip.RawEnabled() {
			return errors.RawDisabled(errors.PhaseDeserialize)
		}
		rv.Set(reflect.ValueOf(dyn.ValueBorrowCell(d.ip, c)))
		return nil
	}

	if rv.Kind() == reflect.Pointer {
		return d.decodePointer(c, rv)
	}

	c, err := d.deref(c)
	if err != nil {
		return err
	}

	switch rv.Kind() {
	case reflect.Bool:
		rv.SetBool(c.IsTrue())
		return nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := c.IV()
		if rv.OverflowInt(n) {
			return errors.Overflow(errors.PhaseDeserialize, d.errPath(), n, rv.Type().String())
		}
		rv.SetInt(n)
		return nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n := c.IV()
		if n < 0 || rv.OverflowUint(uint64(n)) {
			return errors.Overflow(errors.PhaseDeserialize, d.errPath(), n, rv.Type().String())
		}
		rv.SetUint(uint64(n))
		return nil

	case reflect.Float32, reflect.Float64:
		f := c.NV()
		if rv.OverflowFloat(f) {
			return errors.Overflow(errors.PhaseDeserialize, d.errPath(), f, rv.Type().String())
		}
		rv.SetFloat(f)
		return nil

	case reflect.String:
		rv.SetString(string(c.PV()))
		return nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 && !c.IsArray() {
			b := c.PV()
			if !d.borrow {
				b = append([]byte(nil), b...)
			}
			rv.SetBytes(b)
			return nil
		}
		return d.decodeSlice(c, rv)

	case reflect.Array:
		return d.decodeArray(c, rv)

	case reflect.Map:
		return d.decodeMap(c, rv)

	case reflect.Struct:
		if isEnum(rv.Type()) {
			return d.decodeEnum(c, rv)
		}
		return d.decodeStruct(c, rv)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return errors.New(errors.PhaseDeserialize, errors.KindUnsupported).
				Path(d.errPath()...).
				GoType(rv.Type().String()).
				Detail("only empty interfaces are supported").
				Build()
		}
		val, err := d.decodeAny(c)
		if err != nil {
			return err
		}
		if val == nil {
			rv.Set(reflect.Zero(rv.Type()))
		} else {
			rv.Set(reflect.ValueOf(val))
		}
		return nil

	default:
		return errors.New(errors.PhaseDeserialize, errors.KindUnsupported).
			Path(d.errPath()...).
			GoType(rv.Type().String()).
			Detail("cannot deserialize into this kind").
			Build()
	}
}

// decodePointer maps undef to nil. A reference to undef whose target type
// is itself a pointer allocates the outer level and leaves the inner one
// nil; this is how a nested absent value survives the round trip. Every
// other shape allocates and decodes through, so a concrete target behind
// the pointer still sees the usual dereference-and-coerce path.
func (d *decoder) decodePointer(c *interp.Cell, rv reflect.Value) error {
	if c.IsUndef() {
		rv.SetZero()
		return nil
	}
	elem := rv.Type().Elem()
	if elem.Kind() == reflect.Pointer && c.IsReference() {
		t := c.Deref()
		if t == nil {
			return errors.DanglingRef(errors.PhaseDeserialize, d.errPath())
		}
		t.ForceLazy()
		if t.IsUndef() {
			p := reflect.New(elem)
			rv.Set(p)
			return nil
		}
	}
	p := reflect.New(elem)
	if err := d.decode(c, p.Elem()); err != nil {
		return err
	}
	rv.Set(p)
	return nil
}

func (d *decoder) decodeSlice(c *interp.Cell, rv reflect.Value) error {
	if !c.IsArray() {
		return d.mismatch(c, rv.Type())
	}
	n := c.ArrayLen()
	out := reflect.MakeSlice(rv.Type(), n, n)
	for i := 0; i < n; i++ {
		d.path = append(d.path, strconv.Itoa(i))
		err := d.decode(c.ArrayGet(i), out.Index(i))
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return err
		}
	}
	rv.Set(out)
	return nil
}

func (d *decoder) decodeArray(c *interp.Cell, rv reflect.Value) error {
	if !c.IsArray() {
		return d.mismatch(c, rv.Type())
	}
	if c.ArrayLen() != rv.Len() {
		return errors.InvalidData(errors.PhaseDeserialize, d.errPath(),
			"expected "+strconv.Itoa(rv.Len())+" elements, got "+strconv.Itoa(c.ArrayLen()))
	}
	for i := 0; i < rv.Len(); i++ {
		d.path = append(d.path, strconv.Itoa(i))
		err := d.decode(c.ArrayGet(i), rv.Index(i))
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeMap iterates the hash through its shared internal cursor.
func (d *decoder) decodeMap(c *interp.Cell, rv reflect.Value) error {
	if !c.IsHash() {
		return d.mismatch(c, rv.Type())
	}
	if rv.Type().Key().Kind() != reflect.String {
		return errors.New(errors.PhaseDeserialize, errors.KindUnsupported).
			Path(d.errPath()...).
			GoType(rv.Type().String()).
			Detail("map keys must be strings").
			Build()
	}
	out := reflect.MakeMapWithSize(rv.Type(), c.HashLen())
	c.HashIterInit()
	for {
		k, vc, ok := c.HashIterNext()
		if !ok {
			break
		}
		d.path = append(d.path, k)
		ev := reflect.New(rv.Type().Elem())
		err := d.decode(vc, ev.Elem())
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), ev.Elem())
	}
	rv.Set(out)
	return nil
}

// decodeStruct fills exported fields from hash entries by name. Absent
// keys leave the field at its zero value.
func (d *decoder) decodeStruct(c *interp.Cell, rv reflect.Value) error {
	if !c.IsHash() {
		return d.mismatch(c, rv.Type())
	}
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || fieldSkipped(f) {
			continue
		}
		name := fieldName(f)
		vc := c.HashGet([]byte(name))
		if vc == nil {
			continue
		}
		d.path = append(d.path, name)
		err := d.decode(vc, rv.Field(i))
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return err
		}
	}
	return nil
}

// decodeEnum accepts a bare variant-name string for unit variants and a
// single-key hash for everything else. Variant names match on raw bytes,
// so non-text tags work too.
func (d *decoder) decodeEnum(c *interp.Cell, rv reflect.Value) error {
	for _, vf := range enumVariants(rv.Type()) {
		rv.Field(vf.index).SetZero()
	}

	if c.IsHash() {
		if c.HashLen() != 1 {
			return errors.InvalidData(errors.PhaseDeserialize, d.errPath(),
				"one-of hash must have exactly one key, got "+strconv.Itoa(c.HashLen()))
		}
		c.HashIterInit()
		name, vc, _ := c.HashIterNext()
		vf, ok := d.findVariant(rv.Type(), name)
		if !ok {
			return errors.InvalidVariant(errors.PhaseDeserialize, d.errPath(), name, rv.Type().String())
		}
		p := reflect.New(vf.typ.Elem())
		if vf.typ.Elem() != unitType {
			d.path = append(d.path, name)
			err := d.decode(vc, p.Elem())
			d.path = d.path[:len(d.path)-1]
			if err != nil {
				return err
			}
		}
		rv.Field(vf.index).Set(p)
		return nil
	}

	if c.IsArray() {
		return errors.InvalidData(errors.PhaseDeserialize, d.errPath(),
			"cannot pick a variant from a bare array")
	}

	name := string(c.PV())
	vf, ok := d.findVariant(rv.Type(), name)
	if !ok {
		return errors.InvalidVariant(errors.PhaseDeserialize, d.errPath(), name, rv.Type().String())
	}
	if vf.typ.Elem() != unitType {
		return errors.InvalidData(errors.PhaseDeserialize, d.errPath(),
			"variant "+strconv.Quote(name)+" requires a value")
	}
	rv.Field(vf.index).Set(reflect.New(unitType))
	return nil
}

func (d *decoder) findVariant(t reflect.Type, name string) (variantField, bool) {
	for _, vf := range enumVariants(t) {
		if vf.name == name {
			return vf, true
		}
	}
	return variantField{}, false
}

// decodeAny builds nested map[string]any / []any / scalar values.
func (d *decoder) decodeAny(c *interp.Cell) (any, error) {
	c.ForceLazy()
	switch {
	case c.IsReference():
		t := c.Deref()
		if t == nil {
			return nil, errors.DanglingRef(errors.PhaseDeserialize, d.errPath())
		}
		return d.decodeAny(t)
	case c.IsArray():
		out := make([]any, c.ArrayLen())
		for i := range out {
			v, err := d.decodeAny(c.ArrayGet(i))
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case c.IsHash():
		out := make(map[string]any, c.HashLen())
		c.HashIterInit()
		for {
			k, vc, ok := c.HashIterNext()
			if !ok {
				break
			}
			v, err := d.decodeAny(vc)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	case c.IsUndef():
		return nil, nil
	case c.TypeFlags()&interp.FlagInteger != 0:
		return c.IV(), nil
	case c.TypeFlags()&interp.FlagDouble != 0:
		return c.NV(), nil
	default:
		return string(c.PV()), nil
	}
}
