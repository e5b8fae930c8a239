package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseSerialize   Phase = "serialize"   // Go to interpreter values
	PhaseDeserialize Phase = "deserialize" // interpreter values to Go
	PhaseAttach      Phase = "attach"      // magic attachment handling
	PhaseCall        Phase = "call"        // native entry point dispatch
	PhaseInterp      Phase = "interp"      // interpreter operations
)

// Kind categorizes the error
type Kind string

const (
	KindTypeMismatch       Kind = "type_mismatch"
	KindUnsupported        Kind = "unsupported"
	KindInvalidData        Kind = "invalid_data"
	KindInvalidVariant     Kind = "invalid_variant"
	KindInvalidUTF8        Kind = "invalid_utf8"
	KindOverflow           Kind = "overflow"
	KindDanglingRef        Kind = "dangling_ref"
	KindNotAReference      Kind = "not_a_reference"
	KindAttachmentNotFound Kind = "attachment_not_found"
	KindRawDisabled        Kind = "raw_disabled"
	KindMissingParam       Kind = "missing_param"
	KindTooManyParams      Kind = "too_many_params"
	KindNotFound           Kind = "not_found"
	KindRegistration       Kind = "registration"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value    any
	Cause    error
	Phase    Phase
	Kind     Kind
	GoType   string
	HostType string
	Detail   string
	Path     []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" || e.HostType != "" {
		b.WriteString(": ")
		if e.GoType != "" && e.HostType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
			b.WriteString(", host type ")
			b.WriteString(e.HostType)
		} else if e.GoType != "" {
			b.WriteString("Go type ")
			b.WriteString(e.GoType)
		} else {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		}
	}

	if e.Detail != "" {
		if e.GoType != "" || e.HostType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// HostType sets the interpreter-side type name
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, hostType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindTypeMismatch,
		Path:     path,
		GoType:   goType,
		HostType: hostType,
	}
}

// InvalidUTF8 creates an invalid UTF-8 error
func InvalidUTF8(phase Phase, path []string, data []byte) *Error {
	preview := data
	if len(preview) > 32 {
		preview = preview[:32]
	}
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidUTF8,
		Path:   path,
		Detail: fmt.Sprintf("invalid UTF-8 sequence: %x", preview),
	}
}

// Overflow creates an overflow error
func Overflow(phase Phase, path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOverflow,
		Path:   path,
		GoType: targetType,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// InvalidVariant creates an unknown variant error for one-of types
func InvalidVariant(phase Phase, path []string, variant, enumType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidVariant,
		Path:   path,
		GoType: enumType,
		Detail: fmt.Sprintf("unknown variant %q", variant),
		Value:  variant,
	}
}

// InvalidData creates an invalid data error
func InvalidData(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidData,
		Path:   path,
		Detail: detail,
	}
}

// DanglingRef creates an error for a reference whose target is gone
func DanglingRef(phase Phase, path []string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDanglingRef,
		Path:   path,
		Detail: "reference target no longer exists",
	}
}

// NotAReference creates an error for a value that was expected to be a
// reference but is not
func NotAReference(phase Phase, hostType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotAReference,
		HostType: hostType,
		Detail:   "value is not a reference",
	}
}

// AttachmentNotFound creates an error for a missing magic attachment
func AttachmentNotFound(tag string) *Error {
	return &Error{
		Phase:  PhaseAttach,
		Kind:   KindAttachmentNotFound,
		Detail: fmt.Sprintf("no %s attachment on value", tag),
	}
}

// RawDisabled creates an error for a raw passthrough attempted outside the
// adapter's gate
func RawDisabled(phase Phase) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindRawDisabled,
		Detail: "raw value passthrough is not enabled here",
	}
}

// MissingParam creates an error naming a required parameter that was not
// supplied
func MissingParam(name string) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindMissingParam,
		Detail: fmt.Sprintf("missing required parameter %q", name),
	}
}

// TooManyParams creates an arity error carrying the expected count
func TooManyParams(expected, got int) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindTooManyParams,
		Detail: fmt.Sprintf("too many parameters: expected %d, got %d", expected, got),
		Value:  got,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// Registration creates an export registration error
func Registration(pkg, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s::%s", pkg, name),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
