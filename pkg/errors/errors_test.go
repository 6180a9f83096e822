package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := []struct {
		code   Code
		status int
	}{
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeAccountInactive, http.StatusForbidden},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeDependency, http.StatusServiceUnavailable},
		{CodeRateLimit, http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		if got := MetadataFor(tc.code).HTTPStatus; got != tc.status {
			t.Fatalf("%s: expected status %d, got %d", tc.code, tc.status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestAsUnwrapsTypedError(t *testing.T) {
	base := New(CodeAccountInactive, "account inactive")
	wrapped := fmt.Errorf("login: %w", base)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error from chain")
	}
	if typed.Code() != CodeAccountInactive {
		t.Fatalf("expected ACCOUNT_INACTIVE, got %s", typed.Code())
	}
}

func TestAsReturnsNilForPlainError(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatalf("expected nil for untyped error")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Wrap(CodeDependency, cause, "provider call")
	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	dump := Dump(err)
	if dump.Code != CodeDependency {
		t.Fatalf("expected dump code DEPENDENCY_ERROR, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected chain to include cause, got %v", dump.Chain)
	}
}
