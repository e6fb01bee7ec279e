// Package retrieve fetches cited source documents with a fixed fallback
// chain (direct, stealth headers, wayback snapshot, public cache view, URL
// variations) under per-origin rate limiting, and archives results on disk.
package retrieve

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/crosscheck/internal/cache"
	"github.com/ppiankov/crosscheck/internal/model"
	"github.com/ppiankov/crosscheck/internal/util"
)

// Document is the best-available text of a cited source.
type Document struct {
	URL        string    `json:"url"`
	FinalURL   string    `json:"final_url"`
	Method     string    `json:"method"` // direct, stealth, wayback, cacheview, variation
	StatusCode int       `json:"status_code"`
	HTML       string    `json:"-"`
	Text       string    `json:"-"`
	SHA256     string    `json:"sha256"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// Client runs the retrieval chain. Construct one per run and pass it by
// reference; all rate-limit and cache state lives on the object so
// independent runs never interfere.
type Client struct {
	httpClient *http.Client
	cfg        model.HTTPConfig
	minText    int
	gate       *originGate
	robots     *util.RobotsChecker
	lookups    cache.Cache // wayback index responses; nil disables caching

	// Overridable in tests and for self-hosted mirrors.
	WaybackIndexURL string
	WaybackFetchURL string
	CacheViewURL    string
}

// NewClient builds a retrieval client from config.
func NewClient(cfg *model.Config, lookups cache.Cache) *Client {
	httpClient := &http.Client{
		Timeout: cfg.HTTP.Timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy),
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("stopped after 5 redirects")
			}
			return nil
		},
	}

	c := &Client{
		httpClient:      httpClient,
		cfg:             cfg.HTTP,
		minText:         cfg.Archive.MinTextLen,
		gate:            newOriginGate(cfg.RateLimiting.MinDelay, cfg.RateLimiting.Burst),
		lookups:         lookups,
		WaybackIndexURL: "https://web.archive.org/cdx/search/cdx",
		WaybackFetchURL: "https://web.archive.org/web",
		CacheViewURL:    "https://webcache.googleusercontent.com/search",
	}
	if cfg.HTTP.RespectRobots {
		c.robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)
	}
	return c
}

// strategy is one step of the fallback chain.
type strategy struct {
	name string
	run  func(ctx context.Context, rawURL string) (*Document, error)
}

// Fetch tries each strategy in order and returns the first viable document.
// When every strategy fails the citation is terminal for this run; the
// returned FetchError list holds one entry per strategy.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Document, []model.FetchError) {
	strategies := []strategy{
		{"direct", c.fetchDirect},
		{"stealth", c.fetchStealth},
		{"wayback", c.fetchWayback},
		{"cacheview", c.fetchCacheView},
		{"variation", c.fetchVariations},
	}

	var failures []model.FetchError
	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			failures = append(failures, model.FetchError{
				Strategy: s.name, Kind: model.FetchOther, Message: err.Error(),
			})
			return nil, failures
		}
		doc, err := s.run(ctx, rawURL)
		if err != nil {
			failures = append(failures, classify(s.name, err))
			continue
		}
		doc.Method = s.name
		return doc, nil
	}
	return nil, failures
}

// errBlocked marks responses that returned content but not usable content:
// paywall banners, CAPTCHA pages, soft-404 boilerplate, or too little text.
var errBlocked = errors.New("blocked or non-viable content")

// attempt performs one rate-limited GET with the given header profile and
// applies the viability check.
func (c *Client) attempt(ctx context.Context, rawURL string, profile headerProfile) (*Document, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if err := c.gate.wait(ctx, parsed.Host); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	profile.apply(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{code: resp.StatusCode}
	}

	html := string(body)
	text := ExtractText(html)
	if len(text) < c.minText || IsBlockedPage(text) {
		return nil, errBlocked
	}

	sum := sha256.Sum256(body)
	return &Document{
		URL:        rawURL,
		FinalURL:   resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		HTML:       html,
		Text:       text,
		SHA256:     hex.EncodeToString(sum[:]),
		FetchedAt:  time.Now().UTC(),
	}, nil
}

// checkRobots returns an error when robots.txt disallows the URL for our
// user agent, and widens the host's gate to any requested crawl delay. Only
// direct strategies consult robots; archive mirrors are already public
// copies.
func (c *Client) checkRobots(ctx context.Context, rawURL string) error {
	if c.robots == nil {
		return nil
	}
	if !c.robots.IsAllowed(ctx, rawURL) {
		return fmt.Errorf("disallowed by robots.txt: %w", errBlocked)
	}
	if delay := c.robots.CrawlDelay(ctx, rawURL); delay > 0 {
		if parsed, err := url.Parse(rawURL); err == nil {
			c.gate.slowTo(parsed.Host, delay)
		}
	}
	return nil
}

// getJSON performs a plain GET for API endpoints (no viability check).
// Callers are responsible for origin gating.
func (c *Client) getJSON(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &httpStatusError{code: resp.StatusCode}
	}
	return io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxBodyBytes))
}

type httpStatusError struct {
	code int
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.code)
}

// classify maps a strategy failure onto the fetch error taxonomy.
func classify(strategyName string, err error) model.FetchError {
	fe := model.FetchError{Strategy: strategyName, Kind: model.FetchOther, Message: err.Error()}

	var statusErr *httpStatusError
	var dnsErr *net.DNSError
	switch {
	case errors.Is(err, errBlocked):
		fe.Kind = model.FetchBlockedContent
	case errors.As(err, &statusErr):
		if statusErr.code >= 500 {
			fe.Kind = model.FetchHTTP5xx
		} else {
			fe.Kind = model.FetchHTTP4xx
		}
	case errors.As(err, &dnsErr):
		fe.Kind = model.FetchDNSFailure
	case errors.Is(err, os.ErrDeadlineExceeded), errors.Is(err, context.DeadlineExceeded):
		fe.Kind = model.FetchTimeout
	default:
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
			fe.Kind = model.FetchTimeout
		case strings.Contains(msg, "connection refused"):
			fe.Kind = model.FetchConnectionRefused
		case strings.Contains(msg, "no such host"):
			fe.Kind = model.FetchDNSFailure
		}
	}
	return fe
}
