// Package prismic is a small client for the Prismic REST API v2: it resolves
// the master ref, runs predicate queries with field projection and follows
// the opaque next_page cursors returned by the search endpoint.
package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

var (
	// ErrNotFound is returned by GetByUID and GetByID when nothing matches.
	ErrNotFound = errors.New("prismic: document not found")
	// ErrForeignCursor is returned when a next_page URL does not belong to
	// the configured repository.
	ErrForeignCursor = errors.New("prismic: cursor points outside the repository")
	// ErrNoMasterRef is returned when the entry document lists no master ref.
	ErrNoMasterRef = errors.New("prismic: repository has no master ref")
)

// APIError is a non-2xx answer from the CMS.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("prismic: unexpected status %d", e.Status)
	}
	return fmt.Sprintf("prismic: status %d: %s", e.Status, e.Message)
}

const refTTL = 5 * time.Second

// Client talks to a single Prismic repository.
type Client struct {
	endpoint    *url.URL
	accessToken string
	http        *http.Client
	limiter     *rate.Limiter

	mu        sync.Mutex
	masterRef string
	refAt     time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithAccessToken sets the token appended to every request.
func WithAccessToken(token string) Option {
	return func(c *Client) { c.accessToken = token }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRateLimit caps outbound requests to r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// New creates a Client for the repository entry endpoint, e.g.
// https://spacetraveling.cdn.prismic.io/api/v2.
func New(endpoint string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil {
		return nil, fmt.Errorf("prismic: parse endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("prismic: endpoint %q must be an absolute URL", endpoint)
	}
	c := &Client{
		endpoint: u,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the repository entry URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

// API fetches the repository entry document.
func (c *Client) API(ctx context.Context) (API, error) {
	var api API
	if err := c.get(ctx, c.endpoint.String(), &api); err != nil {
		return API{}, err
	}
	return api, nil
}

// MasterRef returns the current master ref, cached for a few seconds so a
// page render does not resolve it once per query.
func (c *Client) MasterRef(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.masterRef != "" && time.Since(c.refAt) < refTTL {
		ref := c.masterRef
		c.mu.Unlock()
		return ref, nil
	}
	c.mu.Unlock()

	api, err := c.API(ctx)
	if err != nil {
		return "", err
	}
	ref, err := api.MasterRef()
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.masterRef = ref
	c.refAt = time.Now()
	c.mu.Unlock()
	return ref, nil
}

// SetMasterRef replaces the cached master ref, as announced by a publish
// webhook. An empty ref drops the cached one so the next query resolves it.
func (c *Client) SetMasterRef(ref string) {
	c.mu.Lock()
	c.masterRef = ref
	c.refAt = time.Now()
	c.mu.Unlock()
}

// QueryOptions controls a search request. A zero Ref means the master ref.
type QueryOptions struct {
	Ref       string
	Fetch     []string
	PageSize  int
	Page      int
	Orderings string
	Lang      string
}

// Query runs a predicate search and returns one page of results.
func (c *Client) Query(ctx context.Context, preds []Predicate, opts QueryOptions) (*Response, error) {
	ref := opts.Ref
	if ref == "" {
		var err error
		if ref, err = c.MasterRef(ctx); err != nil {
			return nil, err
		}
	}
	q := url.Values{}
	q.Set("ref", ref)
	if len(preds) > 0 {
		q.Set("q", buildQuery(preds))
	}
	if len(opts.Fetch) > 0 {
		q.Set("fetch", strings.Join(opts.Fetch, ","))
	}
	if opts.PageSize > 0 {
		q.Set("pageSize", strconv.Itoa(opts.PageSize))
	}
	if opts.Page > 0 {
		q.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.Orderings != "" {
		q.Set("orderings", opts.Orderings)
	}
	if opts.Lang != "" {
		q.Set("lang", opts.Lang)
	}

	u := *c.endpoint
	u.Path = strings.TrimRight(u.Path, "/") + "/documents/search"
	u.RawQuery = q.Encode()

	var resp Response
	if err := c.get(ctx, u.String(), &resp); err != nil {
		return nil, err
	}
	resp.stripToken()
	return &resp, nil
}

// GetByUID returns the document of docType with the given uid.
func (c *Client) GetByUID(ctx context.Context, docType, uid string, opts QueryOptions) (*Document, error) {
	opts.PageSize = 1
	opts.Page = 0
	resp, err := c.Query(ctx, []Predicate{At("my."+docType+".uid", uid)}, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

// GetByID returns the document with the given id.
func (c *Client) GetByID(ctx context.Context, id string, opts QueryOptions) (*Document, error) {
	opts.PageSize = 1
	opts.Page = 0
	resp, err := c.Query(ctx, []Predicate{At("document.id", id)}, opts)
	if err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Results[0], nil
}

// FetchPage follows a next_page URL taken from a previous Response.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*Response, error) {
	u, err := c.resolveCursor(cursor)
	if err != nil {
		return nil, err
	}
	var resp Response
	if err := c.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	resp.stripToken()
	return &resp, nil
}

// resolveCursor checks that cursor targets this repository's search
// endpoint and returns it as an absolute URL.
func (c *Client) resolveCursor(cursor string) (string, error) {
	u, err := url.Parse(cursor)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignCursor, err)
	}
	if !u.IsAbs() || !strings.EqualFold(u.Host, c.endpoint.Host) {
		return "", ErrForeignCursor
	}
	p := path.Clean(u.Path)
	if !strings.HasPrefix(p, c.endpoint.Path+"/") {
		return "", ErrForeignCursor
	}
	u.Scheme = c.endpoint.Scheme
	u.Path, u.RawPath = p, ""
	return u.String(), nil
}

// stripToken removes the access token the CMS echoes back in paging URLs;
// cursors end up in public HTML. get adds the token again when following one.
func (r *Response) stripToken() {
	r.NextPage = withoutToken(r.NextPage)
	r.PrevPage = withoutToken(r.PrevPage)
}

func withoutToken(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	q := u.Query()
	if !q.Has("access_token") {
		return raw
	}
	q.Del("access_token")
	u.RawQuery = q.Encode()
	return u.String()
}

func (c *Client) get(ctx context.Context, rawURL string, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if c.accessToken != "" {
		q := u.Query()
		if q.Get("access_token") == "" {
			q.Set("access_token", c.accessToken)
			u.RawQuery = q.Encode()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("prismic: request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decodeAPIError(res)
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("prismic: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	apiErr := &APIError{Status: res.StatusCode}
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
