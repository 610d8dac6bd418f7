// Package transport implements the typed HTTP client every ESMS service
// call goes through: header construction, bearer-token injection, JSON
// envelope decoding, timeout cancellation and tagged error translation.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTimeout bounds each request unless Options.Timeout overrides it.
const DefaultTimeout = 30 * time.Second

// TokenSource supplies the current bearer token. It is consulted on every
// request, never cached, so a rotated token is picked up on the next call.
// An empty return means "no Authorization header".
type TokenSource func() string

// Options configures a Client. The zero value is usable for tests against
// absolute URLs.
type Options struct {
	// BaseURL is prepended to relative paths. Absolute URLs pass through.
	BaseURL string
	// HTTPClient overrides the underlying client, e.g. for test doubles.
	HTTPClient *http.Client
	// TokenSource yields the bearer token per request.
	TokenSource TokenSource
	// Headers replaces the default Content-Type/Accept header set.
	Headers map[string]string
	// Timeout bounds each request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Logger receives a debug line per request. Defaults to a no-op logger.
	Logger zerolog.Logger
	// Tracer wraps each request in a client span when set.
	Tracer trace.Tracer
}

// Client issues ESMS API requests. Exactly one *Error crosses this
// boundary for every failed request; no other error shape escapes.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource TokenSource
	headers     map[string]string
	timeout     time.Duration
	log         zerolog.Logger
	tracer      trace.Tracer
}

// New builds a Client from opts, applying defaults for anything unset.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	headers := opts.Headers
	if headers == nil {
		headers = map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		}
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  httpClient,
		tokenSource: opts.TokenSource,
		headers:     headers,
		timeout:     timeout,
		log:         opts.Logger,
		tracer:      opts.Tracer,
	}
}

// Do issues one request and decodes the response envelope into out.
// A nil out discards the body. Non-2xx responses are translated into a
// *Error carrying the remote envelope when one can be decoded.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.Start(ctx, "esms.request",
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				attribute.String("http.request.method", method),
				attribute.String("url.path", path),
			))
		defer span.End()
		err := c.do(ctx, method, path, body, out)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
	return c.do(ctx, method, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return networkError(err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return networkError(err)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return timeoutError()
		}
		return networkError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return timeoutError()
		}
		return networkError(err)
	}

	c.log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	// An empty body or a non-JSON content type resolves to the zero
	// value of the target, never an error.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{
			Kind:    KindDecodeFailure,
			Message: "Failed to decode response: " + err.Error(),
			Status:  resp.StatusCode,
		}
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	if c.baseURL == "" || strings.HasPrefix(path, "http") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func decodeError(status int, raw []byte) *Error {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || (env.Error.Message == "" && env.Error.Status == 0) {
		return &Error{
			Kind:    KindDecodeFailure,
			Message: http.StatusText(status),
			Status:  status,
		}
	}
	message := env.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}
	declared := env.Error.Status
	if declared == 0 {
		declared = status
	}
	return &Error{
		Kind:    KindRemote,
		Message: message,
		Status:  declared,
		Details: env.Error.Details,
		TraceID: env.TraceID,
	}
}

// Get issues a GET request and decodes the success envelope.
func Get[T any](ctx context.Context, c *Client, path string) (*Response[T], error) {
	return request[T](ctx, c, http.MethodGet, path, nil)
}

// Post issues a POST request with an optional JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return request[T](ctx, c, http.MethodPost, path, body)
}

// Put issues a PUT request with an optional JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return request[T](ctx, c, http.MethodPut, path, body)
}

// Patch issues a PATCH request with an optional JSON body.
func Patch[T any](ctx context.Context, c *Client, path string, body any) (*Response[T], error) {
	return request[T](ctx, c, http.MethodPatch, path, body)
}

// Delete issues a DELETE request.
func Delete[T any](ctx context.Context, c *Client, path string) (*Response[T], error) {
	return request[T](ctx, c, http.MethodDelete, path, nil)
}

func request[T any](ctx context.Context, c *Client, method, path string, body any) (*Response[T], error) {
	var resp Response[T]
	if err := c.Do(ctx, method, path, body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
