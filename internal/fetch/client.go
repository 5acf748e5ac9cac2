// Package fetch reads upstream FPL documents through the cache store. A miss
// triggers one rate-limited HTTP GET with no in-call retries; retries only
// happen via the scheduler's next poll cycle.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"fpl-draft-analytics/internal/config"
	"fpl-draft-analytics/internal/store"
)

// ErrUnavailable marks a transport failure with no usable cache entry.
var ErrUnavailable = errors.New("upstream data unavailable")

type Client struct {
	http      *http.Client
	store     *store.Store
	limiter   *rate.Limiter
	userAgent string

	draftBase   string
	classicBase string

	leagueTTL    time.Duration
	bootstrapTTL time.Duration
	liveTTL      time.Duration
	picksTTL     time.Duration
}

func NewClient(st *store.Store, up config.Upstream, cache config.Cache) *Client {
	return &Client{
		http:         &http.Client{Timeout: up.Timeout},
		store:        st,
		limiter:      rate.NewLimiter(rate.Limit(up.RequestsPerSec), 1),
		userAgent:    up.UserAgent,
		draftBase:    up.DraftBaseURL,
		classicBase:  up.ClassicBaseURL,
		leagueTTL:    cache.LeagueTTL,
		bootstrapTTL: cache.BootstrapTTL,
		liveTTL:      cache.LiveTTL,
		picksTTL:     cache.PicksTTL,
	}
}

// Store exposes the underlying cache for existence waits.
func (c *Client) Store() *store.Store {
	return c.store
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUnavailable, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: read body: %v", ErrUnavailable, url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUnavailable, url, resp.StatusCode)
	}
	return body, nil
}

// getCached routes a read through the store. A zero ttl forces a refetch.
func (c *Client) getCached(ctx context.Context, key, url string, ttl time.Duration) ([]byte, error) {
	return c.store.GetOrFetch(key, ttl, func() ([]byte, error) {
		return c.get(ctx, url)
	})
}
