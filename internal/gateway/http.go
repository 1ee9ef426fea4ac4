package gateway

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
)

// Client talks to the console REST API. One Client is shared by every
// entity Resource.
type Client struct {
	base   *url.URL
	http   *http.Client
	actor  string
	source string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithActor sets the X-Actor audit header sent with every request.
func WithActor(id string) Option {
	return func(c *Client) { c.actor = id }
}

// NewClient creates a Client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}
	c := &Client{
		base:   u,
		http:   &http.Client{Timeout: 10 * time.Second},
		source: "user",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Resource is the HTTP Gateway of one entity, served under /v1/{entity}.
type Resource[R any] struct {
	client *Client
	entity string
}

// NewResource binds an entity collection of the API to its raw record type.
func NewResource[R any](c *Client, entity string) *Resource[R] {
	return &Resource[R]{client: c, entity: entity}
}

func (r *Resource[R]) List(ctx context.Context, params ListParams) (Page[R], error) {
	q := url.Values{}
	if params.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(params.PageSize))
	}
	if params.Offset > 0 {
		q.Set("offset", strconv.Itoa(params.Offset))
	}
	var page Page[R]
	err := r.client.do(ctx, http.MethodGet, r.path(""), q, nil, &page)
	return page, err
}

func (r *Resource[R]) Create(ctx context.Context, payload Payload) (R, error) {
	var out R
	err := r.client.do(ctx, http.MethodPost, r.path(""), nil, payload, &out)
	return out, err
}

func (r *Resource[R]) Update(ctx context.Context, id string, payload Payload) (R, error) {
	var out R
	err := r.client.do(ctx, http.MethodPatch, r.path(id), nil, payload, &out)
	return out, err
}

func (r *Resource[R]) Delete(ctx context.Context, id string) error {
	return r.client.do(ctx, http.MethodDelete, r.path(id), nil, nil, nil)
}

func (r *Resource[R]) path(id string) string {
	p := "/v1/" + url.PathEscape(r.entity)
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	u.RawQuery = query.Encode()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.actor != "" {
		req.Header.Set("X-Actor", c.actor)
		req.Header.Set("X-Source", c.source)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: "TRANSPORT", Message: "Unable to reach the server", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Code: "DECODE", Message: "Unexpected response from the server"}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	gerr := &Error{StatusCode: resp.StatusCode}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(b, gerr); err != nil || gerr.Message == "" {
		gerr.Message = http.StatusText(resp.StatusCode)
	}
	return gerr
}
