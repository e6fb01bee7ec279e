package retrieve

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// headerProfile is one browser-like header set. The stealth profile exists
// because naive bot blockers key on the first profile's fingerprint.
type headerProfile struct {
	userAgent      string
	accept         string
	acceptLanguage string
	extra          map[string]string
}

func (p headerProfile) apply(req *http.Request) {
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", p.accept)
	req.Header.Set("Accept-Language", p.acceptLanguage)
	for k, v := range p.extra {
		req.Header.Set(k, v)
	}
}

func (c *Client) directProfile() headerProfile {
	return headerProfile{
		userAgent:      c.cfg.UserAgent,
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.9",
	}
}

func (c *Client) stealthProfile() headerProfile {
	return headerProfile{
		userAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2 Safari/605.1.15",
		accept:         "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		acceptLanguage: "en-US,en;q=0.5",
		extra: map[string]string{
			"Referer":                   "https://www.google.com/",
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "cross-site",
			"Upgrade-Insecure-Requests": "1",
		},
	}
}

func (c *Client) fetchDirect(ctx context.Context, rawURL string) (*Document, error) {
	if err := c.checkRobots(ctx, rawURL); err != nil {
		return nil, err
	}
	return c.attempt(ctx, rawURL, c.directProfile())
}

func (c *Client) fetchStealth(ctx context.Context, rawURL string) (*Document, error) {
	if err := c.checkRobots(ctx, rawURL); err != nil {
		return nil, err
	}
	return c.attempt(ctx, rawURL, c.stealthProfile())
}

// fetchVariations retries the direct profile against URL spellings that
// often diverge from the cited form: www toggled, scheme toggled, trailing
// slash toggled. First viable variant wins.
func (c *Client) fetchVariations(ctx context.Context, rawURL string) (*Document, error) {
	variants := urlVariations(rawURL)
	var lastErr error = errBlocked
	for _, v := range variants {
		doc, err := c.attempt(ctx, v, c.directProfile())
		if err == nil {
			return doc, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// urlVariations returns alternate spellings of the URL, excluding the
// original.
func urlVariations(rawURL string) []string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil
	}

	var out []string
	seen := map[string]bool{rawURL: true}
	add := func(u *url.URL) {
		s := u.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	// www toggle
	alt := *parsed
	if strings.HasPrefix(alt.Host, "www.") {
		alt.Host = strings.TrimPrefix(alt.Host, "www.")
	} else {
		alt.Host = "www." + alt.Host
	}
	add(&alt)

	// scheme toggle
	alt2 := *parsed
	if alt2.Scheme == "https" {
		alt2.Scheme = "http"
	} else {
		alt2.Scheme = "https"
	}
	add(&alt2)

	// trailing slash toggle
	alt3 := *parsed
	if strings.HasSuffix(alt3.Path, "/") {
		alt3.Path = strings.TrimSuffix(alt3.Path, "/")
	} else {
		alt3.Path += "/"
	}
	add(&alt3)

	return out
}
