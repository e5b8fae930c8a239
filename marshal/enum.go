package marshal

import (
	"reflect"

	"github.com/wippyai/perlbind/errors"
)

// Enum marks a struct as a one-of type. Embed it anonymously; every
// exported pointer field is a variant and exactly one may be non-nil.
type Enum struct{}

// Unit is the payload type of a variant that carries no data. A *Unit
// variant serializes as the bare variant name.
type Unit struct{}

var (
	enumMarkerType = reflect.TypeOf(Enum{})
	unitType       = reflect.TypeOf(Unit{})
)

// isEnum reports whether t is a struct embedding the Enum marker.
func isEnum(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == enumMarkerType {
			return true
		}
	}
	return false
}

// variantField is one variant slot of an enum struct.
type variantField struct {
	name  string
	index int
	typ   reflect.Type // pointer type
}

// enumVariants lists the variant fields of an enum struct type in
// declaration order.
func enumVariants(t reflect.Type) []variantField {
	var out []variantField
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == enumMarkerType {
			continue
		}
		if !f.IsExported() || f.Type.Kind() != reflect.Pointer {
			continue
		}
		out = append(out, variantField{name: fieldName(f), index: i, typ: f.Type})
	}
	return out
}

// activeVariant finds the single non-nil variant of an enum value.
func activeVariant(rv reflect.Value, path []string) (variantField, reflect.Value, error) {
	var (
		found variantField
		val   reflect.Value
		n     int
	)
	for _, vf := range enumVariants(rv.Type()) {
		f := rv.Field(vf.index)
		if f.IsNil() {
			continue
		}
		found, val = vf, f
		n++
	}
	switch n {
	case 1:
		return found, val, nil
	case 0:
		return variantField{}, reflect.Value{}, errors.New(errors.PhaseSerialize, errors.KindInvalidVariant).
			Path(path...).
			GoType(rv.Type().String()).
			Detail("no active variant").
			Build()
	default:
		return variantField{}, reflect.Value{}, errors.New(errors.PhaseSerialize, errors.KindInvalidVariant).
			Path(path...).
			GoType(rv.Type().String()).
			Detail("%d variants active, want exactly one", n).
			Build()
	}
}

// fieldName resolves the wire name of a struct field from its tag.
func fieldName(f reflect.StructField) string {
	if tag, ok := f.Tag.Lookup("perl"); ok && tag != "" && tag != "-" {
		return tag
	}
	return f.Name
}

// fieldSkipped reports whether the tag excludes the field.
func fieldSkipped(f reflect.StructField) bool {
	tag, ok := f.Tag.Lookup("perl")
	return ok && tag == "-"
}
