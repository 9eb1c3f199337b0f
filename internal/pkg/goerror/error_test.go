package goerror

import (
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestError_StatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "server", err: NewServer(errors.New("boom")), want: http.StatusInternalServerError},
		{name: "not found", err: NewBusiness("missing", CodeNotFound), want: http.StatusNotFound},
		{name: "too many", err: NewBusiness("slow down", CodeTooManyRequest), want: http.StatusTooManyRequests},
		{name: "locked", err: NewBusiness("locked", CodeLocked), want: http.StatusLocked},
		{name: "gone", err: NewBusiness("gone", CodeGone), want: http.StatusGone},
		{name: "invalid input", err: NewInvalidInput(errors.New("bad")), want: http.StatusUnprocessableEntity},
		{name: "invalid format", err: NewInvalidFormat(), want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("errors.As(%v) = false", tt.err)
			}
			if got := gerr.StatusCode(); got != tt.want {
				t.Fatalf("StatusCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewBusinessCause(t *testing.T) {
	// Arrange
	sentinel := errors.New("locked out")

	// Act
	err := NewBusinessCause(sentinel, "Try again in 3 minutes", CodeLocked, "retry_after_seconds", "180")

	// Assert
	if !errors.Is(err, sentinel) {
		t.Fatalf("errors.Is(err, sentinel) = false")
	}

	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("errors.As(err, *Error) = false")
	}
	if gerr.Msg() != "Try again in 3 minutes" {
		t.Fatalf("Msg() = %q", gerr.Msg())
	}
	if gerr.Type() != TypeBusiness {
		t.Fatalf("Type() = %s, want %s", gerr.Type(), TypeBusiness)
	}
	if gerr.Fields()["retry_after_seconds"] != "180" {
		t.Fatalf("Fields() = %v", gerr.Fields())
	}
}

func TestNewInvalidInput_KeyValues(t *testing.T) {
	// Arrange & Act
	err := NewInvalidInput(nil, "limit", "must be positive")

	// Assert
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("errors.As(err, *Error) = false")
	}
	if gerr.Fields()["limit"] != "must be positive" {
		t.Fatalf("Fields() = %v", gerr.Fields())
	}

	odd := NewInvalidInput(nil, "limit")
	if !errors.As(odd, &gerr) || gerr.Code() != CodeInvalidFormat {
		t.Fatalf("odd kv should yield CodeInvalidFormat, got %v", odd)
	}
}

func TestError_RetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   time.Duration
		wantOK bool
	}{
		{name: "set", err: NewBusinessCause(nil, "wait", CodeTooManyRequest, FieldRetryAfter, "90"), want: 90 * time.Second, wantOK: true},
		{name: "missing", err: NewBusiness("wait", CodeTooManyRequest)},
		{name: "garbage", err: NewBusinessCause(nil, "wait", CodeLocked, FieldRetryAfter, "soon")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gerr *Error
			if !errors.As(tt.err, &gerr) {
				t.Fatalf("errors.As(%v) = false", tt.err)
			}
			got, ok := gerr.RetryAfter()
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("RetryAfter() = %v, %v, want %v, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCode_StringUnknown(t *testing.T) {
	if got := Code(99).String(); got != "ERROR_CODE_INTERNAL" {
		t.Fatalf("String() = %q", got)
	}
	if got := Code(99).Status(); got != http.StatusInternalServerError {
		t.Fatalf("Status() = %d", got)
	}
}
