package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:    PhaseSerialize,
				Kind:     KindTypeMismatch,
				Path:     []string{"user", "address", "zip"},
				GoType:   "string",
				HostType: "IV",
				Detail:   "cannot convert",
			},
			contains: []string{"[serialize]", "type_mismatch", "user.address.zip", "string", "IV", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDeserialize,
				Kind:  KindInvalidData,
			},
			contains: []string{"[deserialize]", "invalid_data"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseCall,
				Kind:   KindRegistration,
				Detail: "register failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[call]", "registration", "register failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseSerialize,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseSerialize,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseSerialize, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseDeserialize, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseSerialize, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseSerialize, Kind: KindTypeMismatch}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseSerialize, KindTypeMismatch).
		Path("user", "name").
		GoType("string").
		HostType("IV").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "string", "int").
		Build()

	if err.Phase != PhaseSerialize {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseSerialize)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "user" || err.Path[1] != "name" {
		t.Errorf("Path = %v, want [user name]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.HostType != "IV" {
		t.Errorf("HostType = %v, want 'IV'", err.HostType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected string, got int" {
		t.Errorf("Detail = %v, want 'expected string, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseSerialize, []string{"field"}, "int", "PV")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "int" || err.HostType != "PV" {
			t.Errorf("GoType=%v HostType=%v", err.GoType, err.HostType)
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		data := []byte{0xff, 0xfe}
		err := InvalidUTF8(PhaseDeserialize, []string{"str"}, data)
		if err.Kind != KindInvalidUTF8 {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidUTF8)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseDeserialize, []string{"val"}, 300, "uint8")
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 300 {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseSerialize, "channel types")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("InvalidVariant", func(t *testing.T) {
		err := InvalidVariant(PhaseDeserialize, []string{"status"}, "bogus", "Status")
		if err.Kind != KindInvalidVariant {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidVariant)
		}
		if !containsSubstring(err.Detail, "bogus") {
			t.Errorf("Detail = %v, should name the variant", err.Detail)
		}
	})

	t.Run("DanglingRef", func(t *testing.T) {
		err := DanglingRef(PhaseDeserialize, []string{"ref"})
		if err.Kind != KindDanglingRef {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDanglingRef)
		}
	})

	t.Run("NotAReference", func(t *testing.T) {
		err := NotAReference(PhaseAttach, "PV")
		if err.Kind != KindNotAReference {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotAReference)
		}
	})

	t.Run("AttachmentNotFound", func(t *testing.T) {
		err := AttachmentNotFound("Session")
		if err.Kind != KindAttachmentNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindAttachmentNotFound)
		}
		if !containsSubstring(err.Detail, "Session") {
			t.Errorf("Detail = %v, should name the tag", err.Detail)
		}
	})

	t.Run("RawDisabled", func(t *testing.T) {
		err := RawDisabled(PhaseDeserialize)
		if err.Kind != KindRawDisabled {
			t.Errorf("Kind = %v, want %v", err.Kind, KindRawDisabled)
		}
	})

	t.Run("MissingParam", func(t *testing.T) {
		err := MissingParam("count")
		if err.Kind != KindMissingParam {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMissingParam)
		}
		if !containsSubstring(err.Detail, `"count"`) {
			t.Errorf("Detail = %v, should name the parameter", err.Detail)
		}
	})

	t.Run("TooManyParams", func(t *testing.T) {
		err := TooManyParams(2, 5)
		if err.Kind != KindTooManyParams {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTooManyParams)
		}
		if !containsSubstring(err.Detail, "expected 2") {
			t.Errorf("Detail = %v, should carry the expected count", err.Detail)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseCall, "export", "greet")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
	})
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
