package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/helal366/flexora-server/internal/app/system/apperr"
)

func TestKindOf_Classified(t *testing.T) {
	err := apperr.E(apperr.Conflict, "donation already locked")
	if got := apperr.KindOf(err); got != apperr.Conflict {
		t.Errorf("KindOf = %v, want Conflict", got)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := apperr.E(apperr.NotFound, "user not found")
	err := fmt.Errorf("deleting user: %w", inner)
	if got := apperr.KindOf(err); got != apperr.NotFound {
		t.Errorf("KindOf through wrap = %v, want NotFound", got)
	}
}

func TestKindOf_Unclassified(t *testing.T) {
	if got := apperr.KindOf(errors.New("boom")); got != apperr.Unknown {
		t.Errorf("KindOf = %v, want Unknown", got)
	}
}

func TestWrap_Unwrap(t *testing.T) {
	cause := errors.New("network down")
	err := apperr.Wrap(apperr.Upstream, "identity provider unavailable", cause)
	if !errors.Is(err, cause) {
		t.Error("expected wrapped cause to be reachable via errors.Is")
	}
}

func TestMessage(t *testing.T) {
	err := apperr.E(apperr.Forbidden, "email mismatch")
	if got := apperr.Message(err); got != "email mismatch" {
		t.Errorf("Message = %q", got)
	}
	plain := errors.New("plain")
	if got := apperr.Message(plain); got != "plain" {
		t.Errorf("Message fallback = %q", got)
	}
}
