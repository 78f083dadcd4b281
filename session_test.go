package kiteconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksum_IsDeterministicAndPositionSensitive(t *testing.T) {
	a := checksum("key", "token", "secret")
	b := checksum("key", "token", "secret")
	if a != b {
		t.Error("checksum must be deterministic for identical inputs")
	}
	if a == checksum("key", "secret", "token") {
		t.Error("checksum must be sensitive to argument order, not just the set of inputs")
	}
}

func TestLoginURL_IncludesAPIKeyAndVersion(t *testing.T) {
	raw := LoginURL("my-key", "https://app.example/callback", "xyz")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "my-key", q.Get("api_key"))
	assert.Equal(t, "3", q.Get("v"))
	assert.Equal(t, "https://app.example/callback", q.Get("redirect_url"))
	assert.Equal(t, "xyz", q.Get("state"))
}

func TestLoginURL_OmitsOptionalParamsWhenEmpty(t *testing.T) {
	raw := LoginURL("my-key", "", "")
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Empty(t, q.Get("redirect_url"))
	assert.Empty(t, q.Get("state"))
}

func TestSession_IsValid(t *testing.T) {
	assert.True(t, Session{UserID: "AB1", AccessToken: "tok"}.IsValid())
	assert.False(t, Session{UserID: "AB1"}.IsValid())
	assert.False(t, Session{AccessToken: "tok"}.IsValid())
}

func TestSession_HasExchange(t *testing.T) {
	s := Session{Exchanges: []string{"NSE", "BSE"}}
	assert.True(t, s.HasExchange("NSE"))
	assert.False(t, s.HasExchange("MCX"))
}

func TestGenerateSession_SendsChecksumAndStoresAccessToken(t *testing.T) {
	var gotChecksum string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotChecksum = r.Form.Get("checksum")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"user_id":      "AB1234",
				"access_token": "fresh-token",
			},
		})
	}))
	defer server.Close()

	c := NewClient("my-key", Config{BaseURL: server.URL, DisableRateLimit: true})
	session, err := c.GenerateSession(context.Background(), "req-token", "my-secret")
	require.NoError(t, err)
	assert.Equal(t, "AB1234", session.UserID)
	assert.Equal(t, checksum("my-key", "req-token", "my-secret"), gotChecksum)

	_, accessToken := c.credentials()
	assert.Equal(t, "fresh-token", accessToken)
}
