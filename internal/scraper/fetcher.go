// Package scraper fetches a business website and pulls readable text out of
// it for background summaries.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FranksOps/rankrocket/internal/fingerprint"
	"github.com/FranksOps/rankrocket/pkg/httpclient"
)

// DefaultMaxBlocks caps how many text blocks ScrapeText keeps.
const DefaultMaxBlocks = 20

// ErrDisallowed is returned when robots.txt forbids the page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// FetchConfig configures the fetcher.
type FetchConfig struct {
	Timeout      time.Duration // default 10s
	MaxRedirects int
	UseCookieJar bool
	Fingerprint  fingerprint.Profile // default chrome
	UserAgents   []string            // default DefaultUserAgents
	// RespectRobots checks robots.txt before ScrapeText. Failures to read
	// robots.txt allow the fetch.
	RespectRobots bool
	RobotsAgent   string // default "rankrocket"
	MaxBlocks     int    // default DefaultMaxBlocks
	// Proxy is an http, https or socks5 URL. Empty uses the environment.
	Proxy string

	// insecure skips certificate checks for tests against httptest TLS servers.
	insecure bool
}

// Page is a fetched response.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
	// Challenge names the bot-protection vendor when one intercepted the request.
	Challenge string
}

// StatusError reports a non-2xx page.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Fetcher performs single page fetches with a browser-like fingerprint.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
	uas    *uaRotation
	robots *RobotsAuditor
	logger *slog.Logger
}

// NewFetcher initializes a Fetcher. A single client is held across requests
// so connections and cookies are reused.
func NewFetcher(cfg FetchConfig, logger *slog.Logger) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Fingerprint == "" {
		cfg.Fingerprint = fingerprint.ProfileChrome
	}
	if cfg.RobotsAgent == "" {
		cfg.RobotsAgent = "rankrocket"
	}
	if cfg.MaxBlocks <= 0 {
		cfg.MaxBlocks = DefaultMaxBlocks
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := fingerprint.Options{InsecureSkipVerify: cfg.insecure}
	if cfg.Proxy != "" {
		u, err := parseProxy(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		opts.Proxy = u
	}

	transport, err := fingerprint.Transport(cfg.Fingerprint, opts)
	if err != nil {
		return nil, fmt.Errorf("setup transport: %w", err)
	}

	header := http.Header{}
	header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	header.Set("Accept-Language", "en-US,en;q=0.5")

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		Header:       header,
		Transport:    transport,
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	f := &Fetcher{
		config: cfg,
		client: client,
		uas:    newUARotation(cfg.UserAgents),
		logger: logger,
	}
	if cfg.RespectRobots {
		f.robots = NewRobotsAuditor(f, logger)
	}
	return f, nil
}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse proxy %q: %w", raw, err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("proxy %q: scheme must be http, https or socks5", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy %q: missing host", raw)
	}
	return u, nil
}

// Fetch GETs targetURL. Non-2xx responses are returned without error so the
// caller can inspect them; a detected bot challenge returns the page together
// with an error wrapping ErrChallenged.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	page, err := f.get(ctx, targetURL)
	if err != nil {
		return nil, err
	}
	if src := DetectChallenge(page); src != "" {
		page.Challenge = src
		return page, fmt.Errorf("fetch %s: %w (%s)", targetURL, ErrChallenged, src)
	}
	return page, nil
}

func (f *Fetcher) get(ctx context.Context, targetURL string) (*Page, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.uas.next())

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}

	page := &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
	}
	body, err := f.client.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	page.Body = body
	page.Duration = time.Since(start)
	return page, nil
}

// ScrapeText fetches targetURL and returns its readable text blocks joined by
// newlines, capped at the configured block count.
func (f *Fetcher) ScrapeText(ctx context.Context, targetURL string) (string, error) {
	if f.robots != nil {
		allowed, err := f.robots.IsAllowed(ctx, targetURL, f.config.RobotsAgent)
		if err != nil {
			return "", err
		}
		if !allowed {
			return "", fmt.Errorf("fetch %s: %w", targetURL, ErrDisallowed)
		}
	}

	page, err := f.Fetch(ctx, targetURL)
	if err != nil {
		return "", err
	}
	if page.StatusCode >= http.StatusBadRequest {
		return "", &StatusError{URL: targetURL, StatusCode: page.StatusCode}
	}

	blocks, err := ExtractText(page.Body, f.config.MaxBlocks)
	if err != nil {
		return "", err
	}
	f.logger.Debug("scraped website text", "url", targetURL, "blocks", len(blocks), "duration", page.Duration)
	return strings.Join(blocks, "\n"), nil
}
