// Package http implements the rate-limit-aware HTTP client for the
// GoHighLevel API. All responses are normalized into a plain JSON object;
// HTTP 429 responses are retried with a wait derived from the server's
// rate-limit headers, and every other error status surfaces as *APIError.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultBaseURL is the fixed GoHighLevel API host.
	DefaultBaseURL = "https://services.leadconnectorhq.com"

	// DefaultAPIVersion is sent as the Version header unless overridden.
	DefaultAPIVersion = "2021-07-28"

	// DefaultMaxRetries is the total number of attempts for a rate-limited
	// request, the first try included.
	DefaultMaxRetries = 3

	defaultTimeout = 30 * time.Second

	// When the server reports fewer remaining requests than this, the client
	// pauses briefly before handing control back so the next call does not
	// burst straight into the limit.
	lowRemainingThreshold = 5
	lowRemainingPause     = 500 * time.Millisecond

	// Added on top of the computed 429 wait to avoid racing the server's
	// own clock.
	backoffBuffer = 100 * time.Millisecond
)

// Logger is the minimal logging interface the client emits debug
// request/response records to.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// RateLimitInfo holds the rate-limit window state reported by the API on
// every response. It is overwritten on each call and never persisted.
type RateLimitInfo struct {
	Limit      int
	Remaining  int
	Reset      *float64 // unix epoch seconds, absent when not reported
	IntervalMS int
}

// ParseRateLimit reads the x-ratelimit-* response headers, falling back to
// the documented defaults when a header is absent or unparseable.
func ParseRateLimit(header http.Header) RateLimitInfo {
	info := RateLimitInfo{Limit: 100, Remaining: 100, IntervalMS: 10000}

	if v, err := strconv.Atoi(header.Get("x-ratelimit-limit")); err == nil {
		info.Limit = v
	}

	if v, err := strconv.Atoi(header.Get("x-ratelimit-remaining")); err == nil {
		info.Remaining = v
	}

	if v, err := strconv.ParseFloat(header.Get("x-ratelimit-reset"), 64); err == nil && v != 0 {
		info.Reset = &v
	}

	if v, err := strconv.Atoi(header.Get("x-ratelimit-interval-ms")); err == nil {
		info.IntervalMS = v
	}

	return info
}

// APIError is the normalized form of any response with status >= 400. It is
// never produced for transport failures; those propagate as ordinary errors
// so callers can tell the two apart.
type APIError struct {
	StatusCode int
	Message    string
	Body       any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Upload is one file attached to a multipart request.
type Upload struct {
	Field   string
	Name    string
	Content []byte
}

// Request describes one logical API call. Query values that are empty
// strings are stripped before the request is sent. When Files is non-empty
// the request is encoded as multipart/form-data with Form as the field set;
// otherwise Body is JSON-encoded.
type Request struct {
	Method     string
	Path       string
	Query      map[string]string
	Body       any
	Form       map[string]string
	Files      []Upload
	MaxRetries int // total attempts for 429s; 0 means the client default
}

// Client issues authenticated requests against the GoHighLevel API. One
// instance serves one command invocation; it is not safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	locationID string
	apiVersion string
	maxRetries int
	base       *http.Client
	retry      *retryablehttp.Client
	rateLimit  *RateLimitInfo
	logger     Logger
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API host, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithLocationID sets the location injected into every request's query.
func WithLocationID(locationID string) Option {
	return func(c *Client) {
		c.locationID = locationID
	}
}

// WithAPIVersion overrides the Version header.
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		if version != "" {
			c.apiVersion = version
		}
	}
}

// WithMaxRetries sets the default total attempt count for 429 responses.
func WithMaxRetries(max int) Option {
	return func(c *Client) {
		if max > 0 {
			c.maxRetries = max
		}
	}
}

// WithHTTPClient substitutes the underlying transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.base = hc
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response debug logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// NewClient creates a client authenticated with the given bearer token. The
// underlying connection pool is not established until the first request.
func NewClient(token string, opts ...Option) *Client {
	client := &Client{
		baseURL:    DefaultBaseURL,
		token:      token,
		apiVersion: DefaultAPIVersion,
		maxRetries: DefaultMaxRetries,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// RateLimit returns the rate-limit state from the most recent response, or
// nil before the first call.
func (c *Client) RateLimit() *RateLimitInfo {
	return c.rateLimit
}

// Close releases the underlying connections. The client may be reused; the
// pool is recreated on the next request.
func (c *Client) Close() {
	if c.retry != nil {
		c.retry.HTTPClient.CloseIdleConnections()
		c.retry = nil
	}
}

// retryPolicy retries only rate-limited responses. Transport errors are
// returned to the caller untouched so they stay distinguishable from API
// errors.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	if err != nil || resp == nil {
		return false, err
	}

	return resp.StatusCode == http.StatusTooManyRequests, nil
}

// RateLimitBackoff computes the wait before retrying a throttled request:
// the server's reported interval, or the time until the window resets if
// that is longer, plus a small buffer. Non-429 responses fall back to min.
func RateLimitBackoff(min, _ time.Duration, _ int, resp *http.Response) time.Duration {
	if resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return min
	}

	info := ParseRateLimit(resp.Header)

	wait := time.Duration(info.IntervalMS) * time.Millisecond
	if info.Reset != nil {
		resetAt := time.Unix(0, int64(*info.Reset*float64(time.Second)))
		if until := time.Until(resetAt); until > wait {
			wait = until
		}
	}

	return wait + backoffBuffer
}

// httpClient builds the retrying transport on first use.
func (c *Client) httpClient() *retryablehttp.Client {
	if c.retry != nil {
		return c.retry
	}

	retry := retryablehttp.NewClient()
	retry.Logger = nil
	retry.RetryMax = c.maxRetries - 1
	retry.CheckRetry = retryPolicy
	retry.Backoff = RateLimitBackoff
	retry.ErrorHandler = retryablehttp.PassthroughErrorHandler

	if c.base != nil {
		retry.HTTPClient = c.base
	} else {
		retry.HTTPClient.Timeout = defaultTimeout
	}

	retry.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if c.debug && c.logger != nil {
			c.logger.Debug("HTTP Request", map[string]interface{}{
				"method":  req.Method,
				"url":     req.URL.String(),
				"attempt": attempt,
			})
		}
	}

	retry.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		info := ParseRateLimit(resp.Header)
		c.rateLimit = &info

		if c.debug && c.logger != nil {
			c.logger.Debug("HTTP Response", map[string]interface{}{
				"status":    resp.StatusCode,
				"remaining": info.Remaining,
			})
		}
	}

	c.retry = retry

	return retry
}

// Do performs one API operation and returns the normalized response body.
func (c *Client) Do(ctx context.Context, req *Request) (map[string]any, error) {
	query := cleanQuery(req.Query)

	if c.locationID != "" {
		if query == nil {
			query = map[string]string{}
		}

		if _, ok := query["locationId"]; !ok {
			query["locationId"] = c.locationID
		}
	}

	target := c.baseURL + req.Path

	if len(query) > 0 {
		values := url.Values{}
		for key, value := range query {
			values.Set(key, value)
		}

		target += "?" + values.Encode()
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Version", c.apiVersion)
	httpReq.Header.Set("Accept", "application/json")

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	retry := c.httpClient()

	retry.RetryMax = c.maxRetries - 1
	if req.MaxRetries > 0 {
		retry.RetryMax = req.MaxRetries - 1
	}

	resp, err := retry.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	defer func() { _ = resp.Body.Close() }()

	return c.handleResponse(ctx, resp)
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query map[string]string) (map[string]any, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (map[string]any, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query map[string]string) (map[string]any, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

// handleResponse normalizes a response into a JSON object or an *APIError.
// Rate-limit state was already refreshed by the response hook; the proactive
// pause happens here, before either result reaches the caller.
func (c *Client) handleResponse(ctx context.Context, resp *http.Response) (map[string]any, error) {
	if resp.StatusCode != http.StatusTooManyRequests &&
		c.rateLimit != nil && c.rateLimit.Remaining < lowRemainingThreshold {
		if err := sleepContext(ctx, lowRemainingPause); err != nil {
			return nil, err
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "Rate limited. Please wait and try again.",
			Body:       decodeJSON(raw),
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, newAPIError(resp.StatusCode, raw)
	}

	if resp.StatusCode == http.StatusNoContent {
		return map[string]any{}, nil
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return map[string]any{"text": string(raw)}, nil
	}

	if object, ok := value.(map[string]any); ok {
		return object, nil
	}

	// Non-object top-level JSON (arrays, scalars) keeps the map contract.
	return map[string]any{"data": value}, nil
}

// newAPIError extracts a human-readable message from an error response body,
// trying the message field, then the error field, then the serialized body,
// then the raw text, then a plain status fallback.
func newAPIError(status int, raw []byte) *APIError {
	var body any
	if err := json.Unmarshal(raw, &body); err == nil {
		if object, ok := body.(map[string]any); ok {
			if msg := messageField(object, "message"); msg != "" {
				return &APIError{StatusCode: status, Message: msg, Body: body}
			}

			if msg := messageField(object, "error"); msg != "" {
				return &APIError{StatusCode: status, Message: msg, Body: body}
			}
		}

		return &APIError{StatusCode: status, Message: stringify(body), Body: body}
	}

	if text := strings.TrimSpace(string(raw)); text != "" {
		return &APIError{StatusCode: status, Message: text}
	}

	return &APIError{StatusCode: status, Message: fmt.Sprintf("HTTP %d", status)}
}

// messageField returns the named field as a string, serializing non-string
// values (the API sometimes reports message as an array).
func messageField(object map[string]any, key string) string {
	value, ok := object[key]
	if !ok || value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return stringify(value)
}

func stringify(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}

	return string(data)
}

func decodeJSON(raw []byte) any {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}

	return value
}

// cleanQuery drops entries with empty values and copies the rest so the
// caller's map is never mutated.
func cleanQuery(query map[string]string) map[string]string {
	if query == nil {
		return nil
	}

	cleaned := make(map[string]string, len(query))

	for key, value := range query {
		if value != "" {
			cleaned[key] = value
		}
	}

	return cleaned
}

func encodeBody(req *Request) ([]byte, string, error) {
	if len(req.Files) > 0 {
		return encodeMultipart(req.Form, req.Files)
	}

	if req.Body == nil {
		return nil, "", nil
	}

	data, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("encoding request body: %w", err)
	}

	return data, "application/json", nil
}

// encodeMultipart builds a multipart/form-data body; the returned content
// type carries the boundary and replaces the JSON default.
func encodeMultipart(form map[string]string, files []Upload) ([]byte, string, error) {
	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	for key, value := range form {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("encoding form field %q: %w", key, err)
		}
	}

	for _, file := range files {
		part, err := writer.CreateFormFile(file.Field, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("encoding file %q: %w", file.Name, err)
		}

		if _, err := part.Write(file.Content); err != nil {
			return nil, "", fmt.Errorf("encoding file %q: %w", file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing multipart body: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
