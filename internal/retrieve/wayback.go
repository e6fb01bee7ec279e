package retrieve

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/ppiankov/crosscheck/internal/cache"
)

const snapshotTries = 5

// fetchWayback queries the web-archive CDX index for the newest snapshots
// of the URL and tries each until one yields viable content.
func (c *Client) fetchWayback(ctx context.Context, rawURL string) (*Document, error) {
	timestamps, err := c.waybackSnapshots(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("no snapshots in archive index")
	}

	var lastErr error
	for i, ts := range timestamps {
		if i >= snapshotTries {
			break
		}
		snapshotURL := fmt.Sprintf("%s/%s/%s", c.WaybackFetchURL, ts, rawURL)
		doc, err := c.attempt(ctx, snapshotURL, c.directProfile())
		if err == nil {
			// The record's citation stays the original URL; FinalURL keeps
			// the snapshot provenance.
			doc.URL = rawURL
			return doc, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// waybackSnapshots returns snapshot timestamps newest-first, consulting the
// lookup cache before hitting the index API.
func (c *Client) waybackSnapshots(ctx context.Context, rawURL string) ([]string, error) {
	key := cache.Key("cdx", rawURL)
	if c.lookups != nil {
		if data, ok := c.lookups.Get(key); ok {
			var cached []string
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, nil
			}
		}
	}

	indexURL := fmt.Sprintf("%s?url=%s&output=json&fl=timestamp,statuscode&filter=statuscode:200&limit=-%d",
		c.WaybackIndexURL, url.QueryEscape(rawURL), snapshotTries)

	parsed, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("parse index url: %w", err)
	}
	if err := c.gate.wait(ctx, parsed.Host); err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("archive index: %w", err)
	}

	// CDX JSON output: first row is the header, remaining rows are values.
	var rows [][]string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("parse archive index: %w", err)
	}

	var timestamps []string
	for i := len(rows) - 1; i >= 1; i-- { // newest last in CDX order; reverse
		if len(rows[i]) > 0 {
			timestamps = append(timestamps, rows[i][0])
		}
	}

	if c.lookups != nil {
		if data, err := json.Marshal(timestamps); err == nil {
			_ = c.lookups.Set(key, data, 0)
		}
	}
	return timestamps, nil
}

// fetchCacheView asks a third-party page cache for a copy. Best effort: the
// service is often unavailable globally, so failures here are routine.
func (c *Client) fetchCacheView(ctx context.Context, rawURL string) (*Document, error) {
	cacheURL := fmt.Sprintf("%s?q=cache:%s", c.CacheViewURL, url.QueryEscape(rawURL))
	doc, err := c.attempt(ctx, cacheURL, c.directProfile())
	if err != nil {
		return nil, err
	}
	doc.URL = rawURL
	return doc, nil
}
