package ghstats

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/go-github/v68/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Client bundles the REST and GraphQL clients for the GitHub API.
//
// The token is optional. Without one the REST client runs unauthenticated
// (lower rate limits, still functional) and every GraphQL-backed fetch
// reports itself unavailable so callers fall back to estimates. Absence
// of a token is a supported mode, never an error.
type Client struct {
	rest  *github.Client
	gql   *githubv4.Client
	token string
}

// NewClient returns a Client for api.github.com. cacheTTL > 0 enables a
// transport-level cache of GET responses for that long; zero disables it.
func NewClient(token string, cacheTTL time.Duration) *Client {
	base := http.DefaultTransport
	if token != "" {
		base = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		}
	}
	if cacheTTL > 0 {
		base = newCacheTransport(base, cacheTTL)
	}
	httpClient := &http.Client{
		Transport: base,
		Timeout:   30 * time.Second,
	}
	return &Client{
		rest:  github.NewClient(httpClient),
		gql:   githubv4.NewClient(httpClient),
		token: token,
	}
}

// newTestClient points both clients at a fake API server. Test use only.
func newTestClient(token, restBaseURL, gqlURL string) *Client {
	httpClient := &http.Client{Timeout: 10 * time.Second}
	rest, err := github.NewClient(httpClient).WithEnterpriseURLs(restBaseURL, restBaseURL)
	if err != nil {
		panic(err)
	}
	return &Client{
		rest:  rest,
		gql:   githubv4.NewEnterpriseClient(gqlURL, httpClient),
		token: token,
	}
}

// Authenticated reports whether an API token is configured.
func (c *Client) Authenticated() bool {
	return c.token != ""
}

// cacheTransport caches successful GET responses for a bounded time so
// repeated wrap requests for the same user reuse the raw upstream data.
// GraphQL goes over POST and always bypasses the cache.
type cacheTransport struct {
	base http.RoundTripper
	ttl  time.Duration

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	status int
	header http.Header
	body   []byte
	stored time.Time
}

func newCacheTransport(base http.RoundTripper, ttl time.Duration) *cacheTransport {
	return &cacheTransport{
		base:    base,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (t *cacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.base.RoundTrip(req)
	}

	key := req.URL.String()
	t.mu.Lock()
	entry, ok := t.entries[key]
	if ok && time.Since(entry.stored) > t.ttl {
		delete(t.entries, key)
		ok = false
	}
	t.mu.Unlock()
	if ok {
		return entry.response(req), nil
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, err
	}

	entry = cacheEntry{
		status: resp.StatusCode,
		header: resp.Header.Clone(),
		body:   body,
		stored: time.Now(),
	}
	t.mu.Lock()
	t.entries[key] = entry
	t.mu.Unlock()

	return entry.response(req), nil
}

func (e cacheEntry) response(req *http.Request) *http.Response {
	return &http.Response{
		StatusCode:    e.status,
		Status:        http.StatusText(e.status),
		Header:        e.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.body)),
		ContentLength: int64(len(e.body)),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}
}
