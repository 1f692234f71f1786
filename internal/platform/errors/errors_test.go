package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := Wrap(CodeIOFailed, "read client", cause)

	if !stderrors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected wrapped cause to match, got %v", err)
	}
	if err.Error() != "read client: unexpected EOF" {
		t.Fatalf("expected message with cause, got %q", err.Error())
	}
}

func TestErrorMessageWithoutCause(t *testing.T) {
	err := New(CodeDecodeFailed, "bad payload")

	if err.Error() != "bad payload" {
		t.Fatalf("expected bare message, got %q", err.Error())
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := New(CodeDecodeFailed, "bad payload")

	if !stderrors.Is(err, New(CodeDecodeFailed, "")) {
		t.Fatal("expected errors with the same code to match")
	}
	if stderrors.Is(err, New(CodeConnReset, "")) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"domain error", New(CodeBindFailed, "bind"), CodeBindFailed},
		{"wrapped domain error", fmt.Errorf("outer: %w", New(CodeStoreFailed, "store")), CodeStoreFailed},
		{"plain error", io.EOF, CodeUnknown},
		{"nil", nil, CodeUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CodeOf(tc.err); got != tc.want {
				t.Fatalf("expected code %s, got %s", tc.want, got)
			}
		})
	}
}
