// Package bakeryapi is a typed HTTP client for the bakery REST API: token
// issuing, products and categories. The API is an external collaborator; this
// package only implements its wire contract.
package bakeryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

const defaultRequestTimeout = 15 * time.Second

// TokenPair is the response of the token endpoint.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Client calls the bakery REST API. The zero value is not usable; construct
// with NewClient.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	log         zerolog.Logger
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client (primarily for testing).
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new API client rooted at baseURL.
func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// WithTokenSource returns a copy of the client that authenticates mutating
// calls with bearer tokens from ts.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	authed := *c
	authed.tokenSource = ts
	return &authed
}

// Login exchanges credentials for a token pair. Rejected credentials are
// returned as *AuthError carrying the server's detail message; transport
// failures are returned wrapped and match ErrUnreachable.
func (c *Client) Login(ctx context.Context, username, password string) (TokenPair, error) {
	body := map[string]string{"username": username, "password": password}

	var pair TokenPair
	if err := c.doJSON(ctx, http.MethodPost, "/api/token/", body, &pair); err != nil {
		return TokenPair{}, errors.Wrap(err, "[Client.Login] token request")
	}

	if pair.Access == "" {
		return TokenPair{}, errors.New("[Client.Login] token response missing access token")
	}
	return pair, nil
}

// doJSON performs a JSON round trip against the API. Non-2xx responses are
// mapped to *AuthError with the payload's detail field when present.
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var reqBody io.Reader
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return errors.Wrap(err, "token source")
		}
		token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return errors.Wrapf(ErrUnreachable, "%s %s: read body: %v", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Msg("api request rejected")
		return newAuthError(resp.StatusCode, payload)
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}

func (c *Client) endpoint(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
