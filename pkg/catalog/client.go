// Package catalog issues product searches against the remote OData
// catalog, paginating results into candidate product records.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cperrin88/sentfetch/internal/logger"
	"github.com/cperrin88/sentfetch/pkg/auth"
	pkgerrors "github.com/cperrin88/sentfetch/pkg/errors"
	"github.com/cperrin88/sentfetch/pkg/model"
)

// DefaultPageSize is the number of products requested per catalog page.
const DefaultPageSize = 100

// DefaultBackoff is the initial delay between retries of a transient
// catalog failure; it doubles per attempt.
const DefaultBackoff = 2 * time.Second

// Client queries the catalog service. Every page request carries the
// current bearer credential.
type Client struct {
	client     *http.Client
	baseURL    string
	auth       auth.TokenSource
	userAgent  string
	pageSize   int
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithPageSize overrides the page size used for $top.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxRetries bounds how often a transient page failure is retried.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff sets the initial retry backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.backoff = d
		}
	}
}

// NewClient creates a catalog client for the given OData root URL.
func NewClient(baseURL string, tokens auth.TokenSource, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		client:     &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		auth:       tokens,
		userAgent:  "sentfetch/1.0",
		pageSize:   DefaultPageSize,
		maxRetries: 3,
		backoff:    DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns a lazy iterator over the products matching one
// (unit, window) search. Pages are fetched on demand; the iterator is
// finite but its cardinality is unknown up front.
func (c *Client) Search(criteria model.Criteria, unit model.SearchUnit, window model.DateWindow) *Iterator {
	return &Iterator{
		client:  c,
		nextURL: c.buildQueryURL(criteria, unit, window),
		mission: criteria.Mission,
		unit:    unit,
		window:  window,
	}
}

// odataPage mirrors the subset of the catalog response we consume.
type odataPage struct {
	Value []struct {
		ID          string `json:"Id"`
		Name        string `json:"Name"`
		Online      bool   `json:"Online"`
		ContentDate struct {
			Start time.Time `json:"Start"`
			End   time.Time `json:"End"`
		} `json:"ContentDate"`
		PublicationDate time.Time `json:"PublicationDate"`
		Attributes      []struct {
			Name  string `json:"Name"`
			Value any    `json:"Value"`
		} `json:"Attributes"`
	} `json:"value"`
	NextLink string `json:"@odata.nextLink"`
}

// fetchPage retrieves one catalog page, retrying transient failures with
// backoff and refreshing the credential once on an auth-expiry response.
func (c *Client) fetchPage(ctx context.Context, pageURL string) (*odataPage, error) {
	var lastErr error
	refreshed := false

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoff << (attempt - 1)
			logger.Debug("retrying catalog page", logger.Fields{"attempt": attempt, "delay": delay.String()})
			select {
			case <-ctx.Done():
				return nil, pkgerrors.Wrap(ctx.Err(), "catalog page fetch cancelled")
			case <-time.After(delay):
			}
		}

		page, err := c.doPage(ctx, pageURL)
		if err == nil {
			return page, nil
		}

		if isAuthExpiry(err) && refreshed {
			return nil, fmt.Errorf("credential rejected after refresh: %w", pkgerrors.ErrAuth)
		}
		if isAuthExpiry(err) && !refreshed {
			// One refresh-and-retry for a token that expired
			// mid-pagination; a second 401 is fatal.
			refreshed = true
			if _, aerr := c.auth.Acquire(ctx); aerr != nil {
				return nil, aerr
			}
			attempt--
			continue
		}

		if !isTransient(err) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("transient failures exhausted %d retries: %w: %s",
		c.maxRetries, pkgerrors.ErrCatalogQuery, lastErr)
}

func (c *Client) doPage(ctx context.Context, pageURL string) (*odataPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog request: %w: %s", pkgerrors.ErrCatalogQuery, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if c.auth != nil {
		if err := c.auth.Apply(ctx, req); err != nil {
			return nil, err
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog unreachable: %w: %s", pkgerrors.ErrTransientCatalog, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Continue processing.
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, errAuthExpired
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("catalog returned %d: %w", resp.StatusCode, pkgerrors.ErrTransientCatalog)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("catalog rejected query (%d): %s: %w",
			resp.StatusCode, string(body), pkgerrors.ErrCatalogQuery)
	}

	var page odataPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("malformed catalog response: %w: %s", pkgerrors.ErrCatalogQuery, err)
	}
	return &page, nil
}

var errAuthExpired = fmt.Errorf("credential rejected by catalog")

func isAuthExpiry(err error) bool {
	return errors.Is(err, errAuthExpired)
}

func isTransient(err error) bool {
	return errors.Is(err, pkgerrors.ErrTransientCatalog)
}
