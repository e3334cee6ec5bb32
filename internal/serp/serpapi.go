package serp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/rankrocket/internal/metrics"
	"github.com/FranksOps/rankrocket/pkg/httpclient"
)

// DefaultBaseURL is the public SerpAPI endpoint.
const DefaultBaseURL = "https://serpapi.com"

// ErrDecode wraps responses whose body is not the JSON we expect.
var ErrDecode = errors.New("serp: undecodable response")

// Config configures the SerpAPI client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; its RedactParams should cover api_key.
	HTTPClient *httpclient.Client
	Metrics    *metrics.Recorder
}

// SerpAPI implements Provider and LocationResolver against serpapi.com.
type SerpAPI struct {
	apiKey  string
	baseURL string
	client  *httpclient.Client
	metrics *metrics.Recorder
	logger  *slog.Logger
}

var (
	_ Provider         = (*SerpAPI)(nil)
	_ LocationResolver = (*SerpAPI)(nil)
)

// NewSerpAPI creates a client. The API key is required.
func NewSerpAPI(cfg Config, logger *slog.Logger) (*SerpAPI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}

	client := cfg.HTTPClient
	if client == nil {
		var err error
		client, err = httpclient.New(httpclient.Config{
			Timeout:      cfg.Timeout,
			Header:       http.Header{"Accept": {"application/json"}},
			RedactParams: []string{"api_key"},
		})
		if err != nil {
			return nil, fmt.Errorf("serpapi: %w", err)
		}
	}

	return &SerpAPI{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
		metrics: cfg.Metrics,
		logger:  logger.With("component", "serpapi"),
	}, nil
}

// Search fetches one results page. Provider-side errors (quota, no results)
// come back as a response with Error set rather than as a Go error.
func (s *SerpAPI) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	engine := req.Engine
	if engine == "" {
		engine = "google"
	}

	q := url.Values{}
	q.Set("engine", engine)
	q.Set("q", req.Query)
	if req.Language != "" {
		q.Set("hl", req.Language)
	}
	if req.Country != "" {
		q.Set("gl", req.Country)
	}
	if req.Location != "" {
		q.Set("location", req.Location)
	}
	q.Set("start", strconv.Itoa(req.Start))
	q.Set("api_key", s.apiKey)

	start := time.Now()
	resp, err := s.client.Get(ctx, s.baseURL+"/search.json", q)
	if err != nil {
		s.metrics.RecordSearch(metrics.OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("serpapi search: %w", err)
	}
	s.logger.Debug("search response", "query", req.Query, "start", req.Start, "status", resp.StatusCode)

	body, err := s.client.ReadBody(resp)
	if err != nil {
		s.metrics.RecordSearch(metrics.OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("serpapi search: %w", err)
	}

	var out SearchResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			s.metrics.RecordSearch(metrics.OutcomeAPIError, time.Since(start))
			return &out, nil
		}
		s.metrics.RecordSearch(metrics.OutcomeFailed, time.Since(start))
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	if decodeErr != nil {
		s.metrics.RecordSearch(metrics.OutcomeFailed, time.Since(start))
		return nil, fmt.Errorf("%w: %v", ErrDecode, decodeErr)
	}

	if out.Error != "" {
		s.metrics.RecordSearch(metrics.OutcomeAPIError, time.Since(start))
	} else {
		s.metrics.RecordSearch(metrics.OutcomeOK, time.Since(start))
	}
	return &out, nil
}

// ResolveLocation looks up the best matching location and returns its
// canonical name, which the search endpoint accepts as a location token.
func (s *SerpAPI) ResolveLocation(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", nil
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("limit", "1")
	q.Set("api_key", s.apiKey)

	start := time.Now()
	resp, err := s.client.Get(ctx, s.baseURL+"/locations.json", q)
	if err != nil {
		s.metrics.RecordLocation(metrics.OutcomeFailed, time.Since(start))
		return "", fmt.Errorf("serpapi locations: %w", err)
	}

	body, err := s.client.ReadBody(resp)
	if err != nil {
		s.metrics.RecordLocation(metrics.OutcomeFailed, time.Since(start))
		return "", fmt.Errorf("serpapi locations: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.metrics.RecordLocation(metrics.OutcomeFailed, time.Since(start))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}

	var locations []Location
	if err := json.Unmarshal(body, &locations); err != nil {
		s.metrics.RecordLocation(metrics.OutcomeFailed, time.Since(start))
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	if len(locations) == 0 || locations[0].CanonicalName == "" {
		s.metrics.RecordLocation(metrics.OutcomeEmpty, time.Since(start))
		return "", nil
	}

	s.metrics.RecordLocation(metrics.OutcomeOK, time.Since(start))
	return locations[0].CanonicalName, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
