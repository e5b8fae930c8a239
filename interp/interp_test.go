package interp

import (
	"testing"
)

func TestRefcountLifecycle(t *testing.T) {
	ip := New()

	c := ip.NewInt(42)
	if c.RefCount() != 1 {
		t.Fatalf("expected refcount 1, got %d", c.RefCount())
	}
	c.IncRef()
	if c.RefCount() != 2 {
		t.Fatalf("expected refcount 2, got %d", c.RefCount())
	}
	c.DecRef()
	if c.IsFreed() {
		t.Fatal("cell freed while a count remains")
	}
	c.DecRef()
	if !c.IsFreed() {
		t.Fatal("cell not freed at zero")
	}
	if ip.LiveCells() != 0 {
		t.Fatalf("expected 0 live cells, got %d", ip.LiveCells())
	}
}

func TestDoubleFreePanics(t *testing.T) {
	ip := New()
	c := ip.NewInt(1)
	c.DecRef()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on DecRef of freed cell")
		}
	}()
	c.DecRef()
}

func TestSingletonsPinned(t *testing.T) {
	ip := New()
	u := ip.Undef()
	u.IncRef()
	u.DecRef()
	u.DecRef() // would destroy a normal cell
	if u.IsFreed() {
		t.Fatal("undef singleton destroyed")
	}
	if !ip.Yes().IsTrue() {
		t.Fatal("yes singleton is not true")
	}
	if ip.No().IsTrue() {
		t.Fatal("no singleton is true")
	}
}

func TestReferenceOwnsTarget(t *testing.T) {
	ip := New()
	target := ip.NewBytes([]byte("x"), false)
	ref := ip.NewRef(target) // takes over the count

	if ref.Deref() != target {
		t.Fatal("Deref did not yield target")
	}
	ref.DecRef()
	if !target.IsFreed() {
		t.Fatal("reference did not release its target")
	}
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestArrayOwnership(t *testing.T) {
	ip := New()
	arr := ip.NewArray()
	e := ip.NewInt(7)
	arr.ArrayPush(e) // consumes the count

	if arr.ArrayLen() != 1 {
		t.Fatalf("expected len 1, got %d", arr.ArrayLen())
	}
	got := arr.ArrayPop()
	if got != e {
		t.Fatal("pop returned wrong cell")
	}
	got.DecRef()
	arr.DecRef()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestHashStoreReplaceReleases(t *testing.T) {
	ip := New()
	h := ip.NewHash()
	a := ip.NewInt(1)
	b := ip.NewInt(2)
	h.HashStore([]byte("k"), a)
	h.HashStore([]byte("k"), b)
	if !a.IsFreed() {
		t.Fatal("replaced value not released")
	}
	if h.HashGet([]byte("k")) != b {
		t.Fatal("wrong value after replace")
	}
	h.DecRef()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestHashSingleCursor(t *testing.T) {
	ip := New()
	h := ip.NewHash()
	h.HashStore([]byte("a"), ip.NewInt(1))
	h.HashStore([]byte("b"), ip.NewInt(2))

	h.HashIterInit()
	k1, _, _ := h.HashIterNext()

	// A second init resets the in-flight iteration.
	h.HashIterInit()
	k2, _, ok := h.HashIterNext()
	if !ok || k2 != k1 {
		t.Fatalf("cursor did not reset: first %q, after reset %q", k1, k2)
	}
	h.DecRef()
}

func TestMortalScope(t *testing.T) {
	ip := New()
	ip.SaveTmps()
	c := ip.Mortalize(ip.NewInt(5))
	if c.IsFreed() {
		t.Fatal("mortal freed early")
	}
	ip.FreeTmps()
	if !c.IsFreed() {
		t.Fatal("mortal not freed by FreeTmps")
	}
}

func TestMarkStack(t *testing.T) {
	ip := New()
	ip.StackPush(ip.Undef())
	ip.PushMark()
	ip.StackPush(ip.Yes())
	ip.StackPush(ip.No())

	m := ip.PopMark()
	if m != 1 {
		t.Fatalf("expected mark at 1, got %d", m)
	}
	if n := ip.StackDepth() - m; n != 2 {
		t.Fatalf("expected 2 args above mark, got %d", n)
	}
	ip.StackShrinkTo(m)
	if ip.StackDepth() != 1 {
		t.Fatalf("expected depth 1 after shrink, got %d", ip.StackDepth())
	}
}

func TestSubstrForcesBeforeRead(t *testing.T) {
	ip := New()
	base := ip.NewBytes([]byte("hello world"), false)
	sub := ip.NewSubstr(base, 6, 5)

	if !sub.IsLazy() {
		t.Fatal("substr not lazy before read")
	}
	if got := string(sub.PV()); got != "world" {
		t.Fatalf("expected %q, got %q", "world", got)
	}
	if sub.IsLazy() {
		t.Fatal("substr still lazy after read")
	}
	if sub.TypeFlags()&FlagString == 0 {
		t.Fatal("forced substr is not a string scalar")
	}
	sub.DecRef()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestStringCoercion(t *testing.T) {
	ip := New()
	c := ip.NewBytes([]byte("42abc"), false)
	if c.IV() != 42 {
		t.Fatalf("expected 42, got %d", c.IV())
	}
	f := ip.NewBytes([]byte("2.5"), false)
	if f.NV() != 2.5 {
		t.Fatalf("expected 2.5, got %v", f.NV())
	}
	c.DecRef()
	f.DecRef()
}

func TestMagicFreeRunsOnceOnDestroy(t *testing.T) {
	ip := New()
	freed := 0
	vtbl := &MagicVtbl{Name: "test", Free: func(any) { freed++ }}

	c := ip.NewHash()
	c.MagicAttach(vtbl, nil, "m1", "payload")
	c.DecRef()
	if freed != 1 {
		t.Fatalf("free callback ran %d times, want 1", freed)
	}
}

func TestMagicRemoveDuality(t *testing.T) {
	ip := New()

	// Auto-freeing vtable: remove never hands the payload back.
	freed := 0
	auto := &MagicVtbl{Name: "auto", Free: func(any) { freed++ }}
	c := ip.NewHash()
	c.MagicAttach(auto, nil, "a", "x")
	if data, ok := c.MagicRemove(auto, "a"); !ok || data != nil {
		t.Fatalf("expected (nil, true), got (%v, %v)", data, ok)
	}
	if freed != 1 {
		t.Fatal("free callback did not run on remove")
	}

	// Manual vtable: remove returns the payload exactly once.
	manual := &MagicVtbl{Name: "manual"}
	c.MagicAttach(manual, nil, "m", "payload")
	if data, ok := c.MagicRemove(manual, "m"); !ok || data != "payload" {
		t.Fatalf("expected payload, got (%v, %v)", data, ok)
	}
	if _, ok := c.MagicRemove(manual, "m"); ok {
		t.Fatal("second remove found the attachment again")
	}
	c.DecRef()
	if freed != 1 {
		t.Fatal("destroy re-ran an already-detached free callback")
	}
}

func TestMagicVtblMismatchPanics(t *testing.T) {
	ip := New()
	c := ip.NewHash()
	c.MagicAttach(&MagicVtbl{Name: "one"}, nil, "shared", 1)

	defer func() {
		c.DecRef()
		if recover() == nil {
			t.Fatal("expected panic on vtable identity mismatch")
		}
	}()
	c.MagicFind(&MagicVtbl{Name: "two"}, "shared")
}

func TestGateRestoredOnPanic(t *testing.T) {
	ip := New()
	func() {
		defer func() { recover() }()
		g := ip.SetRawGate(true)
		defer g.Release()
		panic("boom")
	}()
	if ip.RawEnabled() {
		t.Fatal("raw gate not restored across unwind")
	}
}

func TestCroakCarriesValue(t *testing.T) {
	ip := New()
	defer func() {
		r := recover()
		u, ok := r.(*Unwind)
		if !ok {
			t.Fatalf("expected *Unwind, got %T", r)
		}
		if u.Error() != "bad input" {
			t.Fatalf("unexpected message %q", u.Error())
		}
	}()
	ip.Croak(ip.NewBytes([]byte("bad input"), false))
}
