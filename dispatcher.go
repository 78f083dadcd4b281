package kiteconnect

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sawpanic/kiteconnect-go/internal/net/ratelimit"
	"github.com/sawpanic/kiteconnect-go/internal/net/retry"
)

// envelope is the JSON wrapper every KiteConnect v3 REST response uses.
type envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data"`
	Message   string          `json:"message"`
	ErrorType string          `json:"error_type"`
}

// buildRequest assembles an *http.Request carrying the authentication and
// version headers every call needs: X-Kite-Version, Authorization, and
// User-Agent. acceptGzip additionally requests a compressed body, used
// only by the instruments CSV download.
func (c *Client) buildRequest(ctx context.Context, method, path string, query url.Values, form url.Values, acceptGzip bool) (*http.Request, error) {
	apiKey, accessToken := c.credentials()

	u := c.baseURL + path
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	if query != nil && len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, newTransportError("building request", err, false)
	}

	req.Header.Set("X-Kite-Version", "3")
	req.Header.Set("User-Agent", "kiteconnect-go/1.0")
	if apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("token %s:%s", apiKey, accessToken))
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if acceptGzip {
		req.Header.Set("Accept-Encoding", "gzip")
	}
	return req, nil
}

// readBody reads resp.Body, transparently decompressing a gzip-encoded
// response.
func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	reader := io.Reader(resp.Body)
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, newTransportError("decompressing gzip response", err, false)
		}
		defer gz.Close()
		reader = gz
	}
	return io.ReadAll(reader)
}

// dispatch performs one logical API call: rate-limit acquisition, retried
// HTTP dispatch, envelope unwrapping, and JSON decoding of the payload
// into out. endpoint is a short label used for logging and metrics only.
func (c *Client) dispatch(ctx context.Context, category ratelimit.Category, endpoint, method, path string, query, form url.Values, out interface{}) error {
	var timer *RequestTimer
	if c.metrics != nil {
		timer = c.metrics.StartRequest(endpoint)
	}
	outcome := "success"
	defer func() {
		if timer != nil {
			timer.Stop(outcome)
		}
	}()

	attempt := 0
	err := retry.Do(ctx, c.retryPolicy, isRetryableErr, func(ctx context.Context) error {
		attempt++
		if attempt > 1 && c.metrics != nil {
			c.metrics.RetriesTotal.WithLabelValues(endpoint).Inc()
		}
		return c.dispatchOnce(ctx, category, endpoint, method, path, query, form, out)
	})
	if err != nil && err == ctx.Err() {
		// retry.Do returns the bare context error when a backoff sleep is
		// interrupted; surface it as the same Transport/cancelled shape
		// every other abort path produces.
		err = newTransportError(fmt.Sprintf("%s %s", method, path), err, true)
	}

	if err != nil {
		outcome = "error"
		if kerr, ok := err.(*Error); ok && kerr.RequiresReauth() {
			c.runSessionExpiryHook()
		}
		c.logger.Error().Str("endpoint", endpoint).Err(err).Msg("kiteconnect request failed")
		return err
	}
	c.logger.Debug().Str("endpoint", endpoint).Int("attempts", attempt).Msg("kiteconnect request succeeded")
	return nil
}

func isRetryableErr(err error) bool {
	if kerr, ok := err.(*Error); ok {
		return kerr.IsRetryable()
	}
	return false
}

func (c *Client) dispatchOnce(ctx context.Context, category ratelimit.Category, endpoint, method, path string, query, form url.Values, out interface{}) error {
	if err := c.limiter.Acquire(ctx, category); err != nil {
		if err == ratelimit.ErrDailyLimitReached {
			return invalidParameter(fmt.Sprintf("%s: daily rate limit reached", endpoint))
		}
		return newTransportError("rate limit wait cancelled", err, ctx.Err() != nil)
	}
	if c.metrics != nil {
		c.metrics.RateLimitWaits.WithLabelValues(string(category)).Inc()
	}

	req, err := c.buildRequest(ctx, method, path, query, form, false)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancelled := ctx.Err() != nil
		return newTransportError(fmt.Sprintf("%s %s", method, path), err, cancelled)
	}

	body, err := readBody(resp)
	if err != nil {
		return err
	}

	var env envelope
	if jsonErr := json.Unmarshal(body, &env); jsonErr != nil {
		if resp.StatusCode >= 400 {
			return classifyFromStatus(resp.StatusCode, string(bytes.TrimSpace(body)))
		}
		return dataError(fmt.Sprintf("%s: malformed response body: %v", endpoint, jsonErr))
	}

	if env.Status != "success" || resp.StatusCode >= 400 {
		return classifyFromEnvelope(resp.StatusCode, env.Message, env.ErrorType)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return dataError(fmt.Sprintf("%s: decoding payload: %v", endpoint, err))
	}
	return nil
}

func (c *Client) dispatchForm(ctx context.Context, endpoint, method, path string, form url.Values, out interface{}) error {
	return c.dispatch(ctx, ratelimit.CategoryStandard, endpoint, method, path, nil, form, out)
}

func (c *Client) dispatchGet(ctx context.Context, category ratelimit.Category, endpoint, path string, query url.Values, out interface{}) error {
	return c.dispatch(ctx, category, endpoint, http.MethodGet, path, query, nil, out)
}
