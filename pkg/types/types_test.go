package types

import (
	"errors"
	"testing"
)

func TestEngineErrorMessageWithoutCause(t *testing.T) {
	err := NewError(UnsupportedFormat, "no decoder for .m4a")
	want := "UnsupportedFormat: no decoder for .m4a"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestEngineErrorWrapsCauseForErrorsIs(t *testing.T) {
	cause := errors.New("file not found")
	err := WrapError(IoError, "failed to open file", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Kind != IoError {
		t.Errorf("expected Kind IoError, got %v", err.Kind)
	}
}

func TestEngineErrorAsUnwrapsToConcreteType(t *testing.T) {
	var target *EngineError
	cause := NewError(DecodingFailed, "bad frame")
	err := WrapError(ResamplingFailed, "resample stage failed", cause)

	if !errors.As(err, &target) {
		t.Fatal("expected errors.As to succeed")
	}
	if target.Kind != ResamplingFailed {
		t.Errorf("expected outer Kind ResamplingFailed, got %v", target.Kind)
	}
}
