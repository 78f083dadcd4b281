package kiteconnect

import "testing"

func TestClassifyFromEnvelope_KnownErrorType(t *testing.T) {
	err := classifyFromEnvelope(403, "session expired", "TokenException")
	if err.Kind != KindToken {
		t.Errorf("expected KindToken, got %v", err.Kind)
	}
	if !err.RequiresReauth() {
		t.Error("TokenException must require reauth")
	}
}

func TestClassifyFromEnvelope_UnknownErrorTypeFallsBackToAPI(t *testing.T) {
	err := classifyFromEnvelope(500, "weird broker error", "SomeNewException")
	if err.Kind != KindAPI {
		t.Errorf("expected fallback to KindAPI, got %v", err.Kind)
	}
}

func TestClassifyFromStatus_Table(t *testing.T) {
	cases := map[int]Kind{
		400: KindInput,
		403: KindToken,
		404: KindAPI,
		429: KindAPI,
		500: KindGeneral,
		502: KindNetwork,
		503: KindNetwork,
	}
	for status, want := range cases {
		got := classifyFromStatus(status, "x")
		if got.Kind != want {
			t.Errorf("status %d: expected %v, got %v", status, want, got.Kind)
		}
	}
}

func TestError_IsRetryable(t *testing.T) {
	if (&Error{Kind: KindAPI, Status: 429}).IsRetryable() != true {
		t.Error("429 API error should be retryable")
	}
	if (&Error{Kind: KindAPI, Status: 400}).IsRetryable() {
		t.Error("400 API error should not be retryable")
	}
	if !(&Error{Kind: KindNetwork}).IsRetryable() {
		t.Error("network errors should be retryable")
	}
	if (&Error{Kind: KindInput}).IsRetryable() {
		t.Error("input errors should not be retryable")
	}
}

func TestError_IsClientServerError(t *testing.T) {
	clientErr := &Error{Kind: KindInput}
	if !clientErr.IsClientError() || clientErr.IsServerError() {
		t.Error("InputException should classify as a client error only")
	}

	serverErr := &Error{Kind: KindGeneral}
	if !serverErr.IsServerError() || serverErr.IsClientError() {
		t.Error("GeneralException should classify as a server error only")
	}
}

func TestError_UnwrapReturnsCause(t *testing.T) {
	cause := invalidParameter("inner")
	wrapped := newTransportError("outer", cause, false)
	if wrapped.Unwrap() != cause {
		t.Error("Unwrap should return the wrapped cause")
	}
}
