package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Compile-time interface check.
var _ Catalog = (*HTTPClient)(nil)

// OwnerHeader carries the acting (or filtering) user id on item requests.
const OwnerHeader = "X-Sharer-User-Id"

// DefaultBaseURL is where the marketplace API listens in development.
const DefaultBaseURL = "http://localhost:8080"

const tracerName = "github.com/dusk-indust/lendit/internal/catalog"

// HTTPClient implements Catalog against the marketplace REST API.
// Ownership checks on updates are left to the server.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// ClientOption configures an HTTPClient.
type ClientOption func(*HTTPClient)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *HTTPClient) {
		c.http.Timeout = d
	}
}

// WithHTTPClient replaces the underlying *http.Client entirely.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// WithTracerProvider records client spans on tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) ClientOption {
	return func(c *HTTPClient) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// NewHTTPClient creates a client for the API rooted at baseURL.
// An empty baseURL means DefaultBaseURL.
func NewHTTPClient(baseURL string, opts ...ClientOption) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *HTTPClient) BaseURL() string { return c.baseURL }

// ListUsers calls GET /users.
func (c *HTTPClient) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if _, err := c.call(ctx, "ListUsers", http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser calls GET /users/{id}.
func (c *HTTPClient) GetUser(ctx context.Context, id int64) (*User, error) {
	var u User
	if _, err := c.call(ctx, "GetUser", http.MethodGet, userPath(id), nil, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser calls POST /users.
func (c *HTTPClient) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	var u User
	if _, err := c.call(ctx, "CreateUser", http.MethodPost, "/users", nil, user, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateUser calls PATCH /users/{id}. When the server answers 204 the
// result is the patch applied to an otherwise empty user.
func (c *HTTPClient) UpdateUser(ctx context.Context, id int64, patch UserPatch) (*User, error) {
	var u User
	status, err := c.call(ctx, "UpdateUser", http.MethodPatch, userPath(id), nil, patch, &u)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		u = patch.Apply(User{ID: id})
	}
	return &u, nil
}

// DeleteUser calls DELETE /users/{id}. Cascading to the user's items is
// the server's job.
func (c *HTTPClient) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "DeleteUser", http.MethodDelete, userPath(id), nil, nil, nil)
	return err
}

// ListItems calls GET /items, sending the filter in X-Sharer-User-Id.
func (c *HTTPClient) ListItems(ctx context.Context, owner OwnerFilter) ([]Item, error) {
	var items []Item
	h := ownerHeader(owner.HeaderValue())
	if _, err := c.call(ctx, "ListItems", http.MethodGet, "/items", h, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// GetItem calls GET /items/{id}.
func (c *HTTPClient) GetItem(ctx context.Context, id int64) (*Item, error) {
	var it Item
	if _, err := c.call(ctx, "GetItem", http.MethodGet, itemPath(id), nil, nil, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateItem calls POST /items on behalf of ownerID.
func (c *HTTPClient) CreateItem(ctx context.Context, ownerID int64, item NewItem) (*Item, error) {
	var it Item
	h := ownerHeader(strconv.FormatInt(ownerID, 10))
	if _, err := c.call(ctx, "CreateItem", http.MethodPost, "/items", h, item, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// UpdateItem calls PATCH /items/{id} on behalf of ownerID.
func (c *HTTPClient) UpdateItem(ctx context.Context, ownerID, itemID int64, patch ItemPatch) (*Item, error) {
	var it Item
	h := ownerHeader(strconv.FormatInt(ownerID, 10))
	status, err := c.call(ctx, "UpdateItem", http.MethodPatch, itemPath(itemID), h, patch, &it)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNoContent {
		it = patch.Apply(Item{ID: itemID, OwnerID: ownerID})
	}
	return &it, nil
}

// DeleteItem calls DELETE /items/{id}.
func (c *HTTPClient) DeleteItem(ctx context.Context, id int64) error {
	_, err := c.call(ctx, "DeleteItem", http.MethodDelete, itemPath(id), nil, nil, nil)
	return err
}

// SearchItems calls GET /items/search?text=...
func (c *HTTPClient) SearchItems(ctx context.Context, text string) ([]Item, error) {
	var items []Item
	path := "/items/search?text=" + EscapeQuery(text)
	if _, err := c.call(ctx, "SearchItems", http.MethodGet, path, nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// call performs one JSON request and decodes a 2xx body into out.
// It returns the response status so callers can special-case 204.
func (c *HTTPClient) call(ctx context.Context, op, method, path string, header http.Header, body, out any) (int, error) {
	ctx, span := c.tracer.Start(ctx, "catalog."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.target", path),
		),
	)
	defer span.End()

	status, err := c.roundTrip(ctx, op, method, path, header, body, out)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return status, err
}

func (c *HTTPClient) roundTrip(ctx context.Context, op, method, path string, header http.Header, body, out any) (int, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("catalog: %s: marshal request: %w", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, fmt.Errorf("catalog: %s: create request: %w", op, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return 0, fmt.Errorf("catalog: %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Status: statusText(resp),
		}
	}

	if resp.StatusCode == http.StatusNoContent || out == nil {
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("catalog: %s: decode response: %w", op, err)
	}
	return resp.StatusCode, nil
}

// statusText extracts "Not Found" from a "404 Not Found" status line.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// EscapeQuery percent-encodes s for a query value the way browsers'
// encodeURIComponent does for the characters that matter: spaces become
// %20 rather than "+".
func EscapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func ownerHeader(value string) http.Header {
	h := make(http.Header)
	h.Set(OwnerHeader, value)
	return h
}

func userPath(id int64) string { return "/users/" + strconv.FormatInt(id, 10) }

func itemPath(id int64) string { return "/items/" + strconv.FormatInt(id, 10) }
