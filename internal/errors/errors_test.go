package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestNewCjdError(t *testing.T) {
	cause := errors.New("underlying error")

	err := NewCjdError(IOError, "cannot read dictionary", cause)

	if err.Code != IOError {
		t.Errorf("Code = %v, want %v", err.Code, IOError)
	}
	if err.Message != "cannot read dictionary" {
		t.Errorf("Message = %q, want %q", err.Message, "cannot read dictionary")
	}
	if err.Unwrap() != cause {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), cause)
	}
}

func TestCjdError_Error(t *testing.T) {
	tests := []struct {
		name      string
		code      ErrorCode
		message   string
		cause     error
		wantParts []string
	}{
		{
			name:      "with cause",
			code:      IOError,
			message:   "cannot read glossary.json",
			cause:     errors.New("permission denied"),
			wantParts: []string{"IO_ERROR", "cannot read glossary.json", "permission denied"},
		},
		{
			name:      "without cause",
			code:      ShapeError,
			message:   "entry 2 has 3 keys, want exactly 1",
			cause:     nil,
			wantParts: []string{"SHAPE_ERROR", "entry 2 has 3 keys, want exactly 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewCjdError(tt.code, tt.message, tt.cause)
			got := err.Error()

			for _, part := range tt.wantParts {
				if !strings.Contains(got, part) {
					t.Errorf("Error() = %q, want to contain %q", got, part)
				}
			}
		})
	}
}

func TestCjdError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewCjdError(InternalError, "something went wrong", cause)

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test nil cause
	errNoCause := NewShapeError("input is not an array")
	if errNoCause.Unwrap() != nil {
		t.Errorf("Unwrap() on error without cause should return nil")
	}
}

func TestCjdError_WithDetails(t *testing.T) {
	err := NewShapeError("entry is not an object")
	details := map[string]int{"index": 3}

	result := err.WithDetails(details)

	// Check that it returns the same error (for chaining)
	if result != err {
		t.Error("WithDetails should return the same error for chaining")
	}

	// Check details are set
	if err.Details == nil {
		t.Error("Details should be set")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCode
	}{
		{"shape error", NewShapeError("not an array"), ShapeError},
		{"io error", NewIOError("read failed", errors.New("eof")), IOError},
		{"history error", NewHistoryError("db locked", errors.New("busy")), HistoryUnavailable},
		{"wrapped", &wrapper{NewIOError("write failed", nil)}, IOError},
		{"plain error", errors.New("plain"), InternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasCode(t *testing.T) {
	err := NewIOError("cannot write output", errors.New("disk full"))

	if !HasCode(err, IOError) {
		t.Error("HasCode(err, IOError) = false, want true")
	}
	if HasCode(err, ShapeError) {
		t.Error("HasCode(err, ShapeError) = true, want false")
	}
	if HasCode(errors.New("plain"), IOError) {
		t.Error("HasCode(plain, IOError) = true, want false")
	}
}

func TestErrorCodes(t *testing.T) {
	// Ensure all error codes are unique
	codes := []ErrorCode{
		ShapeError,
		IOError,
		ConfigInvalid,
		HistoryUnavailable,
		InternalError,
	}

	seen := make(map[ErrorCode]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %v", code)
		}
		seen[code] = true

		// Ensure each code is a non-empty string
		if string(code) == "" {
			t.Error("Error code should not be empty")
		}
	}
}

type wrapper struct {
	inner error
}

func (w *wrapper) Error() string { return "wrapped: " + w.inner.Error() }
func (w *wrapper) Unwrap() error { return w.inner }
