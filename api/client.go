// Package api is the HTTP client for the Biolaureat learning API.
//
// It owns the wire types and the request plumbing: JSON encoding, bearer
// authentication, error-body extraction and cancellation-aware transport
// errors. Higher-level packages (session, quiz, docs, social, chat) consume
// it through narrow interfaces.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultBaseURL matches the development server the web client talks to.
const DefaultBaseURL = "http://127.0.0.1:5000"

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     zerolog.Logger
}

// Option modifies a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (primarily for testing
// and for callers that need custom transports).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client for the given base URL. An empty baseURL falls back to
// DefaultBaseURL.
func New(baseURL string, options ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client
}

// BaseURL returns the configured server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do issues a JSON request. token may be empty for unauthenticated endpoints,
// body may be nil for bodyless methods and out may be nil when the response
// payload is irrelevant.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "[Client.do] marshal request body")
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return errors.Wrap(err, "[Client.do] build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.decorate(req, token)

	return c.send(req, out)
}

// decorate applies the headers every request carries.
func (c *Client) decorate(req *http.Request, token string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// send executes the request and decodes the response into out.
func (c *Client) send(req *http.Request, out any) error {
	res, err := c.httpc.Do(req)
	if err != nil {
		// The context error takes priority so user cancellation stays
		// distinguishable from genuine transport failures.
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return &TransportError{Err: ctxErr}
		}
		return &TransportError{Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		apiErr := &Error{Status: res.StatusCode, Message: errorMessage(data, res.Status)}
		c.log.Debug().
			Str("path", req.URL.Path).
			Int("status", res.StatusCode).
			Str("message", apiErr.Message).
			Msg("request rejected")
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "[Client.send] decode response from %s", req.URL.Path)
	}
	return nil
}

// errorMessage extracts the server-supplied error text. The backend is not
// consistent about the field name, so message, error and msg are tried in
// that order before falling back to the HTTP status line.
func errorMessage(data []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		ErrText string `json:"error"`
		Msg     string `json:"msg"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		for _, m := range []string{body.Message, body.ErrText, body.Msg} {
			if m != "" {
				return m
			}
		}
	}
	return fallback
}
