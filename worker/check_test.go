package worker

import (
	"errors"
	"strings"
	"testing"

	fw "github.com/collmot/flockwave-spec"
)

func TestCheck(t *testing.T) {
	valid := map[string]any{}
	invalid := map[string]any{"invalid": true}

	tests := []struct {
		name          string
		doc           any
		allowMultiple bool
		wantCount     int
		wantErr       bool
		wantCalls     int32
	}{
		{"single object", valid, true, 1, false, 1},
		{"invalid object", invalid, true, 0, true, 1},
		{"batch", []any{valid, valid, valid}, true, 3, false, 3},
		{"empty batch", []any{}, true, 0, false, 0},
		{"stops at first invalid", []any{valid, invalid, valid, valid}, true, 0, true, 2},
		{"array as one message", []any{valid, invalid}, false, 1, false, 1},
		{"scalar", "message", true, 1, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &mockValidator{}
			n, err := Check(tt.doc, v, tt.allowMultiple)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Check() error = %v; wantErr %v", err, tt.wantErr)
			}
			if err != nil && !fw.IsValidationError(err) {
				t.Errorf("Check() error = %T; want *ValidationError", err)
			}
			if n != tt.wantCount {
				t.Errorf("Check() = %d; want %d", n, tt.wantCount)
			}
			if got := v.callCount.Load(); got != tt.wantCalls {
				t.Errorf("Validate called %d times; want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestCheck_NamesFailingItem(t *testing.T) {
	_, err := Check([]any{map[string]any{}, map[string]any{"invalid": true}}, &mockValidator{}, true)

	var verr *fw.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v; want *ValidationError", err)
	}
	if !strings.HasPrefix(verr.Message, "item 1: ") {
		t.Errorf("Message = %q; want prefix %q", verr.Message, "item 1: ")
	}
}

type failingValidator struct{ err error }

func (f failingValidator) Validate(any) error { return f.err }

func TestCheck_PassesOtherErrors(t *testing.T) {
	boom := errors.New("boom")

	_, err := Check([]any{1}, failingValidator{boom}, true)
	if !errors.Is(err, boom) {
		t.Errorf("error = %v; want %v", err, boom)
	}
}

func TestCheckBytes(t *testing.T) {
	v := &mockValidator{}

	n, err := CheckBytes([]byte(`[{}, {}]`), v, true)
	if err != nil || n != 2 {
		t.Errorf("CheckBytes() = %d, %v; want 2, nil", n, err)
	}

	_, err = CheckBytes([]byte(`{"a": `), v, true)
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if fw.IsValidationError(err) {
		t.Error("a parse error is not a validation error")
	}

	_, err = CheckBytes([]byte(`{} {}`), v, true)
	if err == nil {
		t.Error("trailing data should be rejected")
	}
}
