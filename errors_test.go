package laz

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Message(t *testing.T) {
	err := NewError(CodeServer, "boom")
	if got, want := err.Error(), "server_error: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf(CodeFunctionNotFound, "unknown function: %s", "login")
	if err.Message != "unknown function: login" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestWrapError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapError(CodeTransport, cause, "request failed")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause should be reachable via errors.Is")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	var lazErr *Error
	if !errors.As(wrapped, &lazErr) || lazErr.Code != CodeTransport {
		t.Errorf("errors.As through wrapping = %+v", lazErr)
	}
}

func TestWithDetail_DoesNotMutate(t *testing.T) {
	base := NewError(CodeServer, "boom")
	derived := base.WithDetail("status", 500).WithDetail("body", "oops")

	if len(base.Details) != 0 {
		t.Errorf("base.Details = %v, want untouched", base.Details)
	}
	if derived.Details["status"] != 500 || derived.Details["body"] != "oops" {
		t.Errorf("derived.Details = %v", derived.Details)
	}
}

func TestCodeOf(t *testing.T) {
	if got := CodeOf(nil); got != "" {
		t.Errorf("CodeOf(nil) = %q, want empty", got)
	}
	if got := CodeOf(errors.New("plain")); got != "" {
		t.Errorf("CodeOf(plain) = %q, want empty", got)
	}
	err := fmt.Errorf("wrapped: %w", NewError(CodeDecode, "bad shape"))
	if got := CodeOf(err); got != CodeDecode {
		t.Errorf("CodeOf(wrapped) = %q, want %q", got, CodeDecode)
	}
}
