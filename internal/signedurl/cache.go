// Package signedurl hands out time-limited object URLs and remembers them
// until shortly before they expire.
package signedurl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const (
	// IssueTTL is the lifetime requested from the issuer.
	IssueTTL = 24 * time.Hour
	// CacheTTL is how long an issued URL is served from the cache. It is
	// shorter than IssueTTL so a cached URL always has at least an hour left.
	CacheTTL = 23 * time.Hour
	// DefaultIssueTimeout bounds a single issuance call.
	DefaultIssueTimeout = 10 * time.Second
)

var ErrEmptyPath = errors.New("empty object path")

// Issuer produces a signed URL for an object path, valid for ttl.
type Issuer interface {
	IssueSignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

// Cache is a process-wide memo of signed URLs keyed by object path. Entries
// are never evicted; an expired entry is simply replaced on the next miss.
// Failed issuance is never cached.
type Cache struct {
	issuer  Issuer
	now     func() time.Time
	timeout time.Duration
	logger  *slog.Logger

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithIssueTimeout overrides DefaultIssueTimeout. Non-positive values are ignored.
func WithIssueTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

func New(issuer Issuer, opts ...Option) *Cache {
	c := &Cache{
		issuer:  issuer,
		now:     time.Now,
		timeout: DefaultIssueTimeout,
		logger:  slog.Default(),
		entries: make(map[string]cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns a signed URL for path, issuing a new one when there is no live
// cache entry. Concurrent misses for the same path may both issue; the last
// one to finish wins the slot.
func (c *Cache) Get(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}

	if url, ok := c.lookup(path); ok {
		return url, nil
	}

	url, err := c.issue(ctx, path)
	if err == nil && url == "" {
		err = errors.New("issuer returned an empty url")
	}
	if err != nil {
		c.logger.Warn("signed url issuance failed", "path", path, "error", err)
		return "", fmt.Errorf("failed to issue signed url for %s: %w", path, err)
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{url: url, expiresAt: c.now().Add(CacheTTL)}
	c.mu.Unlock()

	return url, nil
}

type issueResult struct {
	url string
	err error
}

// issue calls the issuer and gives up after the configured timeout even if
// the issuer does not honour its context.
func (c *Cache) issue(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan issueResult, 1)
	go func() {
		url, err := c.issuer.IssueSignedURL(ctx, path, IssueTTL)
		done <- issueResult{url: url, err: err}
	}()

	select {
	case res := <-done:
		return res.url, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *Cache) lookup(path string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[path]
	if !ok || !c.now().Before(e.expiresAt) {
		return "", false
	}
	return e.url, true
}

// Len reports how many paths currently have a slot, live or expired.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
