package kiteconnect

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
)

const loginBaseURL = "https://kite.trade/connect/login"

// Session is the response from the generate_session handshake.
type Session struct {
	UserID        string       `json:"user_id"`
	UserName      string       `json:"user_name"`
	UserShortname string       `json:"user_shortname"`
	Email         string       `json:"email"`
	UserType      string       `json:"user_type"`
	Broker        string       `json:"broker"`
	Exchanges     []string     `json:"exchanges"`
	Products      []string     `json:"products"`
	OrderTypes    []string     `json:"order_types"`
	APIKey        string       `json:"api_key"`
	AccessToken   string       `json:"access_token"`
	PublicToken   string       `json:"public_token"`
	RefreshToken  string       `json:"refresh_token"`
	LoginTime     string       `json:"login_time"`
	Meta          *SessionMeta `json:"meta,omitempty"`
	AvatarURL     *string      `json:"avatar_url,omitempty"`
}

// SessionMeta carries the demat-consent flag attached to a session.
type SessionMeta struct {
	DematConsent string `json:"demat_consent"`
}

// IsValid reports whether the session carries the minimum data needed to
// authenticate subsequent requests.
func (s Session) IsValid() bool {
	return s.AccessToken != "" && s.UserID != ""
}

// HasExchange reports whether the user's session grants access to exchange.
func (s Session) HasExchange(exchange string) bool {
	for _, e := range s.Exchanges {
		if e == exchange {
			return true
		}
	}
	return false
}

// LoginURL builds the OAuth login redirect URL for apiKey. redirectURL and
// state are optional; pass "" to omit.
func LoginURL(apiKey, redirectURL, state string) string {
	u, err := url.Parse(loginBaseURL)
	if err != nil {
		// loginBaseURL is a constant; this can only fail if it is edited
		// to something invalid.
		panic(err)
	}
	q := u.Query()
	q.Set("api_key", apiKey)
	q.Set("v", "3")
	if redirectURL != "" {
		q.Set("redirect_url", redirectURL)
	}
	if state != "" {
		q.Set("state", state)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// checksum computes the SHA-256 hex digest of apiKey+requestToken+apiSecret,
// the handshake signature the broker's generate_session endpoint requires.
func checksum(apiKey, requestToken, apiSecret string) string {
	sum := sha256.Sum256([]byte(apiKey + requestToken + apiSecret))
	return hex.EncodeToString(sum[:])
}

// GenerateSession exchanges a request token obtained from the login
// redirect for an access token, computing the required checksum and
// storing the resulting access token on the Client on success. It does
// not read apiSecret from the environment; the caller supplies it
// directly.
func (c *Client) GenerateSession(ctx context.Context, requestToken, apiSecret string) (*Session, error) {
	apiKey, _ := c.credentials()
	form := url.Values{}
	form.Set("api_key", apiKey)
	form.Set("request_token", requestToken)
	form.Set("checksum", checksum(apiKey, requestToken, apiSecret))

	var session Session
	if err := c.dispatchForm(ctx, "session.generate", "POST", "/session/token", form, &session); err != nil {
		return nil, err
	}

	c.SetAccessToken(session.AccessToken)
	return &session, nil
}

// InvalidateAccessToken logs the current session out, matching the
// broker's DELETE /session/token?api_key=...&access_token=... endpoint.
// Unlike the other session calls, the credentials travel as query
// parameters rather than a form body.
func (c *Client) InvalidateAccessToken(ctx context.Context) error {
	apiKey, accessToken := c.credentials()
	query := url.Values{}
	query.Set("api_key", apiKey)
	query.Set("access_token", accessToken)

	var raw json.RawMessage
	return c.dispatch(ctx, ratelimit.CategoryStandard, "session.invalidate", http.MethodDelete, "/session/token", query, nil, &raw)
}

// RenewAccessToken exchanges a refresh token for a new access token, used
// by the subset of platform integrations granted long-lived refresh
// tokens.
func (c *Client) RenewAccessToken(ctx context.Context, refreshToken, apiSecret string) (*Session, error) {
	apiKey, _ := c.credentials()
	form := url.Values{}
	form.Set("api_key", apiKey)
	form.Set("refresh_token", refreshToken)
	form.Set("checksum", checksum(apiKey, refreshToken, apiSecret))

	var session Session
	if err := c.dispatchForm(ctx, "session.renew", "POST", "/session/refresh_token", form, &session); err != nil {
		return nil, err
	}
	c.SetAccessToken(session.AccessToken)
	return &session, nil
}
