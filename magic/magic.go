// Package magic attaches typed Go payloads to interpreter values and finds
// them again later. A payload survives inside the value's opaque magic slot
// until the value is destroyed or the attachment is removed.
//
// Every payload type gets exactly one Tag, created once at package init
// time; a second Tag for the same type panics. A Spec combines a Tag with a
// discriminator (uuid-backed by default) and an optional owner value that
// is kept alive for as long as the attachment exists.
package magic

import (
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

var (
	registryMu sync.Mutex
	registry   = map[reflect.Type]any{}
)

// Tag is the static identity of one attachment kind. Two attachments match
// only when they carry the same Tag.
type Tag[T any] struct {
	vtbl    *interp.MagicVtbl
	hasFree bool
}

// Option configures a Tag at creation.
type Option[T any] func(*tagConfig[T])

type tagConfig[T any] struct {
	free func(*T)
}

// WithFree registers a destructor that runs exactly once when the holding
// value is destroyed or the attachment removed.
func WithFree[T any](free func(*T)) Option[T] {
	return func(c *tagConfig[T]) { c.free = free }
}

// NewTag creates the Tag for payload type T. Creating a second Tag for the
// same type panics: one type, one vtable identity.
func NewTag[T any](opts ...Option[T]) *Tag[T] {
	var cfg tagConfig[T]
	for _, o := range opts {
		o(&cfg)
	}
	t := reflect.TypeOf((*T)(nil)).Elem()

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic("magic: duplicate Tag for payload type " + t.String())
	}
	tag := &Tag[T]{vtbl: &interp.MagicVtbl{Name: t.String()}, hasFree: cfg.free != nil}
	if cfg.free != nil {
		tag.vtbl.Free = func(data any) { cfg.free(data.(*T)) }
	}
	registry[t] = tag
	return tag
}

// TagFor looks up the registered Tag for payload type T.
func TagFor[T any]() (*Tag[T], bool) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	registryMu.Lock()
	defer registryMu.Unlock()
	tag, ok := registry[t].(*Tag[T])
	return tag, ok
}

// Name returns the Tag's display name.
func (t *Tag[T]) Name() string { return t.vtbl.Name }

// HasFree reports whether the Tag owns payload destruction.
func (t *Tag[T]) HasFree() bool { return t.hasFree }

// Spec binds a Tag to one attachment site: a discriminator distinguishing
// this attachment from others of the same Tag, plus an optional owner.
type Spec[T any] struct {
	tag   *Tag[T]
	owner *dyn.Value
	id    string
}

// NewSpec builds a Spec with a fresh uuid discriminator.
func NewSpec[T any](tag *Tag[T]) *Spec[T] {
	return &Spec[T]{tag: tag, id: uuid.NewString()}
}

// WithName replaces the generated discriminator with a fixed one.
func (s *Spec[T]) WithName(name string) *Spec[T] {
	s.id = name
	return s
}

// WithOwner records a value the attachment must keep alive. The owner
// gains one count per attachment, dropped when the attachment goes away.
func (s *Spec[T]) WithOwner(v *dyn.Value) *Spec[T] {
	s.owner = v
	return s
}

// Attach stores payload in v's magic slot. Ownership of the payload moves
// to the attachment; when the Tag has a free callback the payload is
// destroyed with the value.
func Attach[T any](v *dyn.Value, spec *Spec[T], payload *T) {
	var owner *interp.Cell
	if spec.owner != nil {
		owner = spec.owner.Cell()
	}
	v.Cell().MagicAttach(spec.tag.vtbl, owner, spec.id, payload)
}

// Find locates the attachment on v. A discriminator hit under a different
// Tag panics inside the interpreter: that is slot corruption, not absence.
func Find[T any](v *dyn.Value, spec *Spec[T]) (*T, bool) {
	data, ok := v.Cell().MagicFind(spec.tag.vtbl, spec.id)
	if !ok {
		return nil, false
	}
	return data.(*T), true
}

// Remove detaches the attachment. When the Tag has a free callback the
// payload is destroyed here and nil comes back; otherwise the payload is
// returned to the caller exactly once. A missing attachment is an error.
func Remove[T any](v *dyn.Value, spec *Spec[T]) (*T, error) {
	data, ok := v.Cell().MagicRemove(spec.tag.vtbl, spec.id)
	if !ok {
		return nil, errors.AttachmentNotFound(spec.tag.Name())
	}
	if data == nil {
		return nil, nil
	}
	return data.(*T), nil
}

// FromRef dereferences v and finds the attachment on the target. The two
// failure modes stay distinct: a non-reference input and a reference
// without the attachment.
func FromRef[T any](v *dyn.Value, spec *Spec[T]) (*T, error) {
	target, ok := v.Dereference()
	if !ok {
		return nil, errors.NotAReference(errors.PhaseAttach, v.Kind().String())
	}
	defer target.Release()
	p, found := Find(target, spec)
	if !found {
		return nil, errors.AttachmentNotFound(spec.tag.Name())
	}
	return p, nil
}

// RemoveFromRef is FromRef's counterpart for Remove.
func RemoveFromRef[T any](v *dyn.Value, spec *Spec[T]) (*T, error) {
	target, ok := v.Dereference()
	if !ok {
		return nil, errors.NotAReference(errors.PhaseAttach, v.Kind().String())
	}
	defer target.Release()
	return Remove(target, spec)
}
