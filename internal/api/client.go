// Package api provides the single HTTP access point to the StockFolo
// service. Every request goes through Client.Request, which attaches the
// bearer credential when one is available and normalizes transport failures
// into the typed errors of this package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// TokenSource yields the current bearer credential, or "" when the client is
// unauthenticated. Absence of a token is not an error at this layer;
// authorization is enforced server-side.
type TokenSource interface {
	Token() string
}

// Client is the API gateway client. It centralizes base-URL configuration
// and carries a cookie jar so cookie-based deployments work without any
// token handling on our side.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *slog.Logger
}

// New creates a Client for the given base URL, e.g.
// "https://stockfolo.onrender.com/api/v1". tokens may be nil for a client
// that never authenticates.
func New(baseURL string, timeout time.Duration, tokens TokenSource, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
		tokens: tokens,
		log:    log,
	}
}

// errorEnvelope is the shape servers use for 4xx/5xx bodies.
type errorEnvelope struct {
	Message string `json:"message"`
}

// Request performs one HTTP round-trip and returns the raw JSON body.
// body, when non-nil, is JSON-encoded; one that cannot be encoded is
// rejected as *ValidationError before any network call. Transport failures
// are classified into *NetworkError, *HTTPError, or *DecodeError; callers
// branch on that taxonomy rather than on raw status codes. There are no automatic retries:
// every operation here is user-initiated and idempotent to repeat manually.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			// Bad input detected locally, never reaches the transport.
			return nil, &ValidationError{Field: "body", Reason: err.Error()}
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("request failed", "method", method, "path", path, "error", err)
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode >= 400 {
		var env errorEnvelope
		_ = json.Unmarshal(raw, &env)
		c.log.Debug("server rejected request",
			"method", method, "path", path, "status", resp.StatusCode, "message", env.Message)
		return nil, &HTTPError{Status: resp.StatusCode, Message: env.Message}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		// 2xx with an empty body (e.g. logout, watchlist remove).
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, &DecodeError{Err: errInvalidJSON}
	}
	return json.RawMessage(raw), nil
}

// Get is shorthand for a body-less GET request.
func (c *Client) Get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.Request(ctx, http.MethodGet, path, nil)
}

// Decode unmarshals a raw response into v, classifying failures as
// *DecodeError.
func Decode(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

var errInvalidJSON = invalidJSONError{}

type invalidJSONError struct{}

func (invalidJSONError) Error() string { return "response body is not valid JSON" }
