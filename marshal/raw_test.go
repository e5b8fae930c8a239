package marshal

import (
	"errors"
	"testing"

	"github.com/wippyai/perlbind/dyn"
	perr "github.com/wippyai/perlbind/errors"
	"github.com/wippyai/perlbind/interp"
)

func TestRawPassthroughIdentity(t *testing.T) {
	ip := interp.New()
	orig, err := ToValue(ip, []int{1, 2, 3})
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	before := orig.Cell().RefCount()

	g := EnableRaw(ip)
	out, err := ToValue(ip, RawValue{Value: orig})
	g.Release()
	if err != nil {
		t.Fatalf("ToValue raw: %v", err)
	}

	if out.ID() != orig.ID() {
		t.Fatal("raw passthrough rebuilt the value instead of reattaching it")
	}
	if got := orig.Cell().RefCount(); got != before+1 {
		t.Fatalf("expected exactly one increment, refcount went %d to %d", before, got)
	}
	out.Release()
	orig.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestRawSerializeDisabled(t *testing.T) {
	ip := interp.New()
	orig, _ := ToValue(ip, 1)
	_, err := ToValue(ip, RawValue{Value: orig})
	if !errors.Is(err, &perr.Error{Phase: perr.PhaseSerialize, Kind: perr.KindRawDisabled}) {
		t.Fatalf("expected raw_disabled, got %v", err)
	}
	orig.Release()
}

func TestRawDeserialize(t *testing.T) {
	ip := interp.New()
	src, _ := ToValue(ip, map[string]int{"k": 1})

	var raw RawValue
	g := EnableRaw(ip)
	err := FromValueRef(src, &raw)
	g.Release()
	if err != nil {
		t.Fatalf("FromValueRef: %v", err)
	}
	if raw.Value.ID() != src.ID() {
		t.Fatal("raw mirror did not wrap the same cell")
	}
	raw.Value.Release()

	var again RawValue
	err = FromValueRef(src, &again)
	if !errors.Is(err, &perr.Error{Phase: perr.PhaseDeserialize, Kind: perr.KindRawDisabled}) {
		t.Fatalf("expected raw_disabled, got %v", err)
	}
	src.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestRawInsideStructure(t *testing.T) {
	ip := interp.New()
	inner, _ := ToValue(ip, "payload")

	g := EnableRaw(ip)
	wrapped, err := ToValue(ip, map[string]RawValue{"v": {Value: inner}})
	g.Release()
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}

	deref, ok := wrapped.Dereference()
	if !ok {
		t.Fatal("expected a hash reference")
	}
	h, err := deref.AsHash()
	if err != nil {
		t.Fatalf("AsHash: %v", err)
	}
	got, ok := h.Get("v")
	if !ok {
		t.Fatal("key missing")
	}
	if got.ID() != inner.ID() {
		t.Fatal("nested raw value lost identity")
	}
	got.Release()
	h.Release()
	wrapped.Release()
	inner.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestDynValuePassthrough(t *testing.T) {
	ip := interp.New()
	orig := dyn.FromScalar(dyn.NewInt(ip, 5))

	g := EnableRaw(ip)
	out, err := ToValue(ip, orig)
	g.Release()
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	if out.ID() != orig.ID() {
		t.Fatal("handle passthrough lost identity")
	}
	out.Release()
	orig.Release()
}
