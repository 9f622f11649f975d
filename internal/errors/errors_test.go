// Package errors tests for application error codes.
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrNotFound, "user not found")

	if err.Code != ErrNotFound {
		t.Errorf("Expected code %s, got %s", ErrNotFound, err.Code)
	}
	if err.Message != "user not found" {
		t.Errorf("Unexpected message: %s", err.Message)
	}
	want := "[NOT_FOUND] user not found"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrTransport, "list request failed", cause)

	want := "[TRANSPORT_ERROR] list request failed: connection refused"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
	if !stderrors.Is(err, cause) {
		t.Error("Wrapped error should match its cause via errors.Is")
	}
}

func TestIs(t *testing.T) {
	err := New(ErrDecode, "malformed body")

	if !Is(err, ErrDecode) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrTransport) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrDecode) {
		t.Error("Is should not match a non-AppError")
	}
}

func TestUnwrapNil(t *testing.T) {
	err := New(ErrInternal, "boom")
	if err.Unwrap() != nil {
		t.Error("Unwrap of an unwrapped error should be nil")
	}
}
