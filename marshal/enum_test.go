package marshal

import (
	"testing"

	"github.com/wippyai/perlbind/dyn"
	"github.com/wippyai/perlbind/interp"
)

type shape struct {
	Enum
	Point  *Unit    `perl:"point"`
	Circle *float64 `perl:"circle"`
	Rect   *[]int   `perl:"rect"`
	Named  *address `perl:"named"`
}

func TestEnumUnitVariantIsBareString(t *testing.T) {
	ip := interp.New()
	v, err := ToValue(ip, shape{Point: &Unit{}})
	if err != nil {
		t.Fatalf("ToValue: %v", err)
	}
	if v.Kind() != dyn.KindScalar {
		t.Fatalf("unit variant should be a bare scalar, got %v", v.Kind())
	}
	if v.PVUTF8() != "point" {
		t.Fatalf("expected %q, got %q", "point", v.PVUTF8())
	}
	v.Release()
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestEnumRoundTrip(t *testing.T) {
	ip := interp.New()
	r := 2.5
	cases := []shape{
		{Point: &Unit{}},
		{Circle: &r},
		{Rect: &[]int{3, 4}},
		{Named: &address{Street: "Main", Zip: 1}},
	}
	for _, in := range cases {
		v, err := ToValue(ip, in)
		if err != nil {
			t.Fatalf("ToValue: %v", err)
		}
		var out shape
		if err := FromValue(v, &out); err != nil {
			t.Fatalf("FromValue: %v", err)
		}
		switch {
		case in.Point != nil:
			if out.Point == nil {
				t.Fatal("unit variant lost")
			}
		case in.Circle != nil:
			if out.Circle == nil || *out.Circle != *in.Circle {
				t.Fatalf("newtype variant corrupted: %v", out.Circle)
			}
		case in.Rect != nil:
			if out.Rect == nil || len(*out.Rect) != 2 || (*out.Rect)[1] != 4 {
				t.Fatalf("tuple variant corrupted: %v", out.Rect)
			}
		case in.Named != nil:
			if out.Named == nil || *out.Named != *in.Named {
				t.Fatalf("struct variant corrupted: %v", out.Named)
			}
		}
	}
	if ip.LiveCells() != 0 {
		t.Fatalf("leak: %d live cells", ip.LiveCells())
	}
}

func TestEnumDecodeTable(t *testing.T) {
	ip := interp.New()

	t.Run("bare string selects unit", func(t *testing.T) {
		v, _ := ToValue(ip, "point")
		var out shape
		if err := FromValue(v, &out); err != nil {
			t.Fatalf("FromValue: %v", err)
		}
		if out.Point == nil {
			t.Fatal("unit variant not selected")
		}
	})

	t.Run("unknown variant", func(t *testing.T) {
		v, _ := ToValue(ip, "pentagon")
		var out shape
		if err := FromValue(v, &out); err == nil {
			t.Fatal("expected invalid variant error")
		}
	})

	t.Run("bare string for data variant", func(t *testing.T) {
		v, _ := ToValue(ip, "circle")
		var out shape
		if err := FromValue(v, &out); err == nil {
			t.Fatal("expected error: data variant needs a value")
		}
	})

	t.Run("multi-key hash", func(t *testing.T) {
		v, _ := ToValue(ip, map[string]int{"circle": 1, "rect": 2})
		var out shape
		if err := FromValue(v, &out); err == nil {
			t.Fatal("expected error for multi-key hash")
		}
	})

	t.Run("empty tuple payload", func(t *testing.T) {
		v, _ := ToValue(ip, map[string][]int{"rect": {}})
		var out shape
		if err := FromValue(v, &out); err != nil {
			t.Fatalf("FromValue: %v", err)
		}
		if out.Rect == nil || len(*out.Rect) != 0 {
			t.Fatalf("empty tuple variant corrupted: %v", out.Rect)
		}
	})
}

func TestEnumSerializeRequiresOneVariant(t *testing.T) {
	ip := interp.New()
	if _, err := ToValue(ip, shape{}); err == nil {
		t.Fatal("expected error for no active variant")
	}
	r := 1.0
	if _, err := ToValue(ip, shape{Point: &Unit{}, Circle: &r}); err == nil {
		t.Fatal("expected error for two active variants")
	}
}
