package errors

import (
	stderrors "errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrCodeInvalidInput, "bad name %q", "x")
	want := `INVALID_INPUT: bad name "x"`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeSourceUnavailable, cause, "fetch manifest")

	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should match cause via errors.Is")
	}
	if err.Error() != "SOURCE_UNAVAILABLE: fetch manifest: connection refused" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestIsMatchesNestedCodes(t *testing.T) {
	inner := New(ErrCodeQueryFailure, "batch decode failed")
	outer := Wrap(ErrCodeInternal, inner, "resolve")

	if !Is(outer, ErrCodeInternal) {
		t.Error("Is() should match outer code")
	}
	if !Is(outer, ErrCodeQueryFailure) {
		t.Error("Is() should match inner code through the chain")
	}
	if Is(outer, ErrCodeBrewUnavailable) {
		t.Error("Is() matched an unrelated code")
	}
	if Is(nil, ErrCodeInternal) {
		t.Error("Is(nil) should be false")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeBrewUnavailable, "no brew")); got != ErrCodeBrewUnavailable {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeBrewUnavailable)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidStrategy, "unknown strategy")); got != "unknown strategy" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
