package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "WithoutCause",
			err:  New(ErrCodeNotFound, "node %q not found", "a1"),
			want: `NOT_FOUND: node "a1" not found`,
		},
		{
			name: "WithCause",
			err:  Wrap(ErrCodeSolverFailure, stderrors.New("lp: A is singular"), "simplex failed"),
			want: "SOLVER_FAILURE: simplex failed: lp: A is singular",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeDuplicateEdge, "edge a->b already exists")

	if !Is(err, ErrCodeDuplicateEdge) {
		t.Error("Is() = false for matching code")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("Is() = true for non-matching code")
	}
	if Is(stderrors.New("plain"), ErrCodeNotFound) {
		t.Error("Is() = true for plain error")
	}

	// Code should survive wrapping with fmt.Errorf.
	wrapped := fmt.Errorf("solve: %w", err)
	if !Is(wrapped, ErrCodeDuplicateEdge) {
		t.Error("Is() = false for fmt-wrapped error")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInfeasible, "no feasible point")); got != ErrCodeInfeasible {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeInfeasible)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode() = %q for plain error, want empty", got)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(ErrCodeInternal, cause, "wrapped")
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is() does not reach the cause")
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidAmount, "amount must be nonnegative")); got != "amount must be nonnegative" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(stderrors.New("plain failure")); got != "plain failure" {
		t.Errorf("UserMessage() = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{ErrCodeInvalidAmount, http.StatusBadRequest},
		{ErrCodeMissingEdge, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeDuplicateID, http.StatusConflict},
		{ErrCodeFictitiousImmutable, http.StatusConflict},
		{ErrCodeInfeasible, http.StatusUnprocessableEntity},
		{ErrCodeSolverFailure, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := HTTPStatus(New(tt.code, "x")); got != tt.want {
				t.Errorf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}

	if got := HTTPStatus(stderrors.New("plain")); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain) = %d, want 500", got)
	}
}
