// Package catalog is the HTTP client for the remote creature catalog.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	cache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 15 * time.Second
	defaultNamesTTL = time.Hour
	userAgent       = "evodex/1"
)

// StatusError is returned for any non-2xx catalog response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: GET %s: status %d", e.URL, e.Code)
}

// HTTPStatusCode reports the response status.
func (e *StatusError) HTTPStatusCode() int { return e.Code }

// Options configures a Client.
type Options struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // 0 = unlimited
	NamesTTL          time.Duration
	HTTPClient        *http.Client // overrides Timeout when set
}

// Client fetches catalog resources. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	names   *cache.Cache
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.NamesTTL <= 0 {
		opts.NamesTTL = defaultNamesTTL
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		burst = int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	return &Client{
		baseURL: opts.BaseURL,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		names:   cache.New(opts.NamesTTL, 2*opts.NamesTTL),
	}
}

// ListRecords returns the first limit entries of the record index.
func (c *Client) ListRecords(ctx context.Context, limit int) ([]NamedResource, error) {
	return c.list(ctx, "pokemon", limit)
}

// ListChains returns up to limit chain-graph references.
func (c *Client) ListChains(ctx context.Context, limit int) ([]NamedResource, error) {
	return c.list(ctx, "evolution-chain", limit)
}

func (c *Client) list(ctx context.Context, resource string, limit int) ([]NamedResource, error) {
	var page Page
	url := fmt.Sprintf("%s/%s?limit=%d", c.baseURL, resource, limit)
	if err := c.getJSON(ctx, url, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Chain fetches one chain graph.
func (c *Client) Chain(ctx context.Context, url string) (*ChainGraph, error) {
	var g ChainGraph
	if err := c.getJSON(ctx, url, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Detail fetches a record's detail resource.
func (c *Client) Detail(ctx context.Context, url string) (*Detail, error) {
	var d Detail
	if err := c.getJSON(ctx, url, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Species fetches a record's species resource.
func (c *Client) Species(ctx context.Context, url string) (*Species, error) {
	var s Species
	if err := c.getJSON(ctx, url, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Names fetches the names array of a name-resolution resource (type,
// ability, item, trigger). Successful lookups are memoized by URL.
func (c *Client) Names(ctx context.Context, url string) ([]LocalizedName, error) {
	if cached, ok := c.names.Get(url); ok {
		return cached.([]LocalizedName), nil
	}
	var doc namesDoc
	if err := c.getJSON(ctx, url, &doc); err != nil {
		return nil, err
	}
	c.names.SetDefault(url, doc.Names)
	return doc.Names, nil
}

// ResolveName fetches the resource at url and picks its localized name.
func (c *Client) ResolveName(ctx context.Context, url string, langs Languages) (string, error) {
	names, err := c.Names(ctx, url)
	if err != nil {
		return "", err
	}
	return langs.Pick(names, FieldName), nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("catalog: rate limit %s: %w", url, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("catalog: build request %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{URL: url, Code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("catalog: decode %s: %w", url, err)
	}
	return nil
}
