package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want Kind
	}{
		{Unauthorized("Invalid credentials"), KindUnauthorized},
		{Forbidden("Not a project member"), KindForbidden},
		{NotFound("Issue not found"), KindNotFound},
		{BadRequest("Invalid status"), KindBadRequest},
		{Conflict("stale version"), KindConflict},
		{stderrors.New("plain"), KindUnknown},
		{nil, KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Errorf("KindOf(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("saving issue: %w", Conflict("stale version"))
	if !IsKind(err, KindConflict) {
		t.Errorf("wrapped conflict lost its kind: %v", err)
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := stderrors.New("duplicate key")
	err := Wrap(KindConflict, "issue number already taken", cause)
	if !stderrors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
	if err.Error() != "issue number already taken" {
		t.Errorf("message = %q", err.Error())
	}
}
