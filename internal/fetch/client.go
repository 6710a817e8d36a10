package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/text/encoding/charmap"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits; a single inverter never serves more than one
// request at a time, but a monitor may watch many inverters
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 2
	defaultIdleConnTimeout     = 60 * time.Second
)

// Response holds the result of one HTTP GET against an inverter resource.
//
// Response captures the decoded body, status code, latency, and any error
// that occurred. The inverter firmware emits single-byte ISO 8859-1 text,
// never UTF-8, so Text carries the Latin-1 decoded form of Body.
type Response struct {
	// Body contains the raw HTTP response body, limited to 1MB.
	Body []byte

	// Text is Body decoded as ISO 8859-1 (Latin-1).
	// Empty if the request failed before receiving a body.
	Text string

	// StatusCode is the HTTP status code (e.g., 200, 404).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	// nil indicates the request completed (though the status code may
	// still indicate a failure).
	Error error
}

// Fetcher is the contract consumed by the poll engine and the historical
// importer: exactly one GET with a bounded timeout, no retries inside the
// call. Retries are the caller's responsibility.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) Response
}

// Client is an HTTP client wrapper for talking to inverter web servers.
//
// Client uses per-request timeouts via context rather than a global timeout,
// because the realtime resource and the daily-energy resource tolerate
// different bounds. Response bodies are limited to 1MB; the device's CSV
// resources are far smaller.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a new inverter [Client].
//
// Connections per host are capped at two: the embedded web server in the
// inverter handles very little concurrent load.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			// no default timeout - we use per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
				DisableKeepAlives:   false,
			},
		},
	}
}

// Fetch performs one GET and returns a structured [Response].
//
// The timeout is applied via context cancellation; a timeout surfaces in the
// Error field exactly like any other network error and never blocks the
// caller beyond the bound. Fetch always returns a Response; errors are
// captured in the Error field rather than returned separately, which
// simplifies handling in the poll engine.
func (c *Client) Fetch(ctx context.Context, url string, timeout time.Duration) Response {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	limitedReader := io.LimitReader(resp.Body, maxResponseBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	text, err := decodeLatin1(body)
	if err != nil {
		return Response{
			Body:       body,
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to decode response body: %w", err),
		}
	}

	return Response{
		Body:       body,
		Text:       text,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
		Error:      nil,
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times. After Close, the client remains usable but
// new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}

// decodeLatin1 decodes ISO 8859-1 bytes into a UTF-8 string. Every byte
// value is a valid Latin-1 code point, so this cannot fail on real input;
// the error return guards against future decoder changes.
func decodeLatin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
