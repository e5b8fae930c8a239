package magic

import (
	"errors"
	"testing"

	"github.com/wippyai/perlbind/dyn"
	perr "github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

type session struct {
	id     int
	closed bool
}

type cache struct {
	hits int
}

type orphan struct{}

var (
	sessionClosed int
	sessionTag    = NewTag[session](WithFree[session](func(s *session) {
		s.closed = true
		sessionClosed++
	}))
	cacheTag = NewTag[cache]()
)

func TestDuplicateTagPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate Tag")
		}
	}()
	NewTag[session]()
}

func TestTagFor(t *testing.T) {
	tag, ok := TagFor[cache]()
	if !ok || tag != cacheTag {
		t.Fatal("TagFor did not return the registered Tag")
	}
	if _, ok := TagFor[orphan](); ok {
		t.Fatal("TagFor found a Tag that was never created")
	}
}

func TestAttachFindRoundTrip(t *testing.T) {
	ip := interp.New()
	spec := NewSpec(sessionTag)
	payload := &session{id: 7}

	obj := NewBlessed(ip, spec, "App::Session", payload)
	if obj.Blessed() != "App::Session" {
		t.Fatalf("expected App::Session, got %q", obj.Blessed())
	}

	got, err := FromRef(obj, spec)
	if err != nil {
		t.Fatalf("FromRef: %v", err)
	}
	if got != payload {
		t.Fatal("FromRef returned a different payload")
	}
	obj.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestFreeRunsOnDestroy(t *testing.T) {
	ip := interp.New()
	spec := NewSpec(sessionTag)
	payload := &session{id: 1}

	before := sessionClosed
	obj := NewBlessed(ip, spec, "App::Session", payload)
	obj.Release()
	if sessionClosed != before+1 {
		t.Fatal("free callback did not run when the object died")
	}
	if !payload.closed {
		t.Fatal("payload not marked closed by the destructor")
	}
}

func TestRemoveDuality(t *testing.T) {
	ip := interp.New()

	// Tag with a free callback: Remove destroys, never hands back.
	freeSpec := NewSpec(sessionTag)
	payload := &session{id: 2}
	obj := NewBlessed(ip, freeSpec, "App::Session", payload)
	before := sessionClosed
	got, err := RemoveFromRef(obj, freeSpec)
	if err != nil {
		t.Fatalf("RemoveFromRef: %v", err)
	}
	if got != nil {
		t.Fatal("free-callback Tag handed the payload back")
	}
	if sessionClosed != before+1 {
		t.Fatal("free callback did not run on remove")
	}
	obj.Release()

	// Tag without: Remove returns the payload exactly once.
	manualSpec := NewSpec(cacheTag)
	c := &cache{hits: 3}
	target := dyn.FromHash(dyn.NewHash(ip))
	Attach(target, manualSpec, c)

	got2, err := Remove(target, manualSpec)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if got2 != c {
		t.Fatal("payload not returned")
	}
	_, err = Remove(target, manualSpec)
	if !errors.Is(err, &perr.Error{Phase: perr.PhaseAttach, Kind: perr.KindAttachmentNotFound}) {
		t.Fatalf("expected attachment_not_found on second remove, got %v", err)
	}
	target.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestFromRefFailureModes(t *testing.T) {
	ip := interp.New()
	spec := NewSpec(cacheTag)

	plain := dyn.FromScalar(dyn.NewInt(ip, 1))
	_, err := FromRef(plain, spec)
	if !errors.Is(err, &perr.Error{Phase: perr.PhaseAttach, Kind: perr.KindNotAReference}) {
		t.Fatalf("expected not_a_reference, got %v", err)
	}
	plain.Release()

	bare := dyn.FromHash(dyn.NewHash(ip))
	ref := dyn.NewRef(bare)
	bare.Release()
	_, err = FromRef(ref, spec)
	if !errors.Is(err, &perr.Error{Phase: perr.PhaseAttach, Kind: perr.KindAttachmentNotFound}) {
		t.Fatalf("expected attachment_not_found, got %v", err)
	}
	ref.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestOwnerKeptAlive(t *testing.T) {
	ip := interp.New()
	owner := dyn.FromScalar(dyn.NewString(ip, "keepme"))
	spec := NewSpec(cacheTag).WithName("owned").WithOwner(owner)

	target := dyn.FromHash(dyn.NewHash(ip))
	Attach(target, spec, &cache{})
	ownerCell := owner.Cell()
	owner.Release()
	if ownerCell.IsFreed() {
		t.Fatal("owner freed while attachment holds it")
	}

	if _, err := Remove(target, spec); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !ownerCell.IsFreed() {
		t.Fatal("owner not released with the attachment")
	}
	target.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestDiscriminatorsIsolateAttachments(t *testing.T) {
	ip := interp.New()
	a := NewSpec(cacheTag)
	b := NewSpec(cacheTag)

	target := dyn.FromHash(dyn.NewHash(ip))
	Attach(target, a, &cache{hits: 1})

	if _, ok := Find(target, b); ok {
		t.Fatal("different discriminator found the attachment")
	}
	got, ok := Find(target, a)
	if !ok || got.hits != 1 {
		t.Fatal("matching discriminator missed the attachment")
	}
	target.Release()
}
