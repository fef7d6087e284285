// ABOUTME: HTTP client for the MSU gateway endpoint.
// ABOUTME: Posts one form-encoded request per call and decodes the JSON reply.

package msu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the production MSU API endpoint.
const DefaultBaseURL = "https://merchantsafeunipay.com/msu/api/v2"

// ContentTypeForm is the request content type the gateway expects.
const ContentTypeForm = "application/x-www-form-urlencoded"

// MaxResponseSize caps how much of a reply body is read (16MB).
const MaxResponseSize = 16 << 20

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration // 0 disables the client-side timeout
	HTTPClient *http.Client  // optional; Timeout is ignored when set
	Logger     *slog.Logger
}

// Client posts forms to the gateway. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg ClientConfig) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", base)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", base)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{baseURL: base, http: hc, logger: logger}, nil
}

// BaseURL returns the endpoint requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Query posts form and returns the decoded JSON body. Numbers are kept as
// json.Number so values round-trip unchanged.
func (c *Client) Query(ctx context.Context, form Form) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", ContentTypeForm)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// A caller that gave up is not a network problem.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, fmt.Errorf("querying MSU API: %w", ctxErr)
		}
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	c.logger.Debug("MSU API response",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidResponse, MaxResponseSize)
	}

	return decodeJSON(body)
}

// decodeJSON parses exactly one JSON value.
func decodeJSON(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrInvalidResponse)
	}
	return v, nil
}
