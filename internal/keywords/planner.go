package keywords

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/rankrocket/internal/metrics"
	"github.com/FranksOps/rankrocket/pkg/httpclient"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const (
	// DefaultBaseURL is the Google Ads REST endpoint including API version.
	DefaultBaseURL = "https://googleads.googleapis.com/v21"
	// DefaultLanguage is English.
	DefaultLanguage = "1000"
	// DefaultGeoTarget is the United States.
	DefaultGeoTarget = "2840"

	maxPages = 50
)

// ErrNoSeed is returned when a request has neither a page URL nor keywords.
var ErrNoSeed = errors.New("keyword ideas need a page url or seed keywords")

// KeywordIdea is one planner suggestion.
type KeywordIdea struct {
	Text               string `json:"text"`
	AvgMonthlySearches int64  `json:"avg_monthly_searches"`
	Competition        string `json:"competition"`
}

// IdeasRequest scopes a keyword idea lookup.
type IdeasRequest struct {
	CustomerID string
	PageURL    string
	Keywords   []string
	Language   string   // language constant id, default DefaultLanguage
	GeoTargets []string // geo target constant ids, default [DefaultGeoTarget]
}

// Config configures the planner client.
type Config struct {
	Credentials Credentials
	BaseURL     string // default DefaultBaseURL
	TokenURL    string // default Google's token endpoint
	Timeout     time.Duration
	Metrics     *metrics.Recorder
}

// Planner calls KeywordPlanIdeaService.GenerateKeywordIdeas over REST.
type Planner struct {
	cfg    Config
	client *httpclient.Client
	logger *slog.Logger
}

// NewPlanner builds a Planner whose requests carry an OAuth2 access token
// minted from the configured refresh token.
func NewPlanner(ctx context.Context, cfg Config, logger *slog.Logger) (*Planner, error) {
	if err := cfg.Credentials.Validate(); err != nil {
		return nil, err
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if logger == nil {
		logger = slog.Default()
	}

	oc := OAuthConfig(cfg.Credentials.ClientID, cfg.Credentials.ClientSecret, "")
	if cfg.TokenURL != "" {
		oc.Endpoint.TokenURL = cfg.TokenURL
	}
	ts := oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.Credentials.RefreshToken})

	header := http.Header{}
	header.Set("developer-token", cfg.Credentials.DeveloperToken)
	if id := strings.ReplaceAll(cfg.Credentials.LoginCustomerID, "-", ""); id != "" {
		header.Set("login-customer-id", id)
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:   cfg.Timeout,
		Header:    header,
		Transport: &oauth2.Transport{Source: ts, Base: http.DefaultTransport},
	})
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	return &Planner{cfg: cfg, client: client, logger: logger.With("component", "keyword_planner")}, nil
}

// OAuthConfig returns the installed-app OAuth2 config for the Ads scope.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     endpoints.Google,
		RedirectURL:  redirectURL,
		Scopes:       []string{AdWordsScope},
	}
}

type ideasBody struct {
	Language           string       `json:"language"`
	GeoTargetConstants []string     `json:"geoTargetConstants"`
	KeywordPlanNetwork string       `json:"keywordPlanNetwork"`
	KeywordAndURLSeed  *keywordURL  `json:"keywordAndUrlSeed,omitempty"`
	KeywordSeed        *keywordSeed `json:"keywordSeed,omitempty"`
	URLSeed            *urlSeed     `json:"urlSeed,omitempty"`
	PageToken          string       `json:"pageToken,omitempty"`
}

type keywordURL struct {
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
}

type keywordSeed struct {
	Keywords []string `json:"keywords"`
}

type urlSeed struct {
	URL string `json:"url"`
}

type ideasResponse struct {
	Results []struct {
		Text    string `json:"text"`
		Metrics *struct {
			AvgMonthlySearches flexInt `json:"avgMonthlySearches"`
			Competition        string  `json:"competition"`
		} `json:"keywordIdeaMetrics"`
	} `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

// flexInt accepts int64 values encoded either as JSON numbers or strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*f = flexInt(n)
	return nil
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerateKeywordIdeas returns every idea for the request, following page tokens.
func (p *Planner) GenerateKeywordIdeas(ctx context.Context, req IdeasRequest) ([]KeywordIdea, error) {
	customerID, err := NormalizeCustomerID(req.CustomerID)
	if err != nil {
		return nil, err
	}

	body, err := buildBody(req)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/customers/%s:generateKeywordIdeas", p.cfg.BaseURL, customerID)
	start := time.Now()

	var ideas []KeywordIdea
	for page := 0; page < maxPages; page++ {
		resp, err := p.post(ctx, endpoint, body)
		if err != nil {
			p.cfg.Metrics.RecordKeywordIdeas(len(ideas), time.Since(start))
			return ideas, err
		}
		for _, r := range resp.Results {
			idea := KeywordIdea{Text: r.Text}
			if r.Metrics != nil {
				idea.AvgMonthlySearches = int64(r.Metrics.AvgMonthlySearches)
				idea.Competition = r.Metrics.Competition
			}
			ideas = append(ideas, idea)
		}
		if resp.NextPageToken == "" {
			break
		}
		body.PageToken = resp.NextPageToken
	}

	p.cfg.Metrics.RecordKeywordIdeas(len(ideas), time.Since(start))
	p.logger.Info("keyword ideas fetched", "customer_id", customerID, "ideas", len(ideas))
	return ideas, nil
}

func buildBody(req IdeasRequest) (*ideasBody, error) {
	lang := req.Language
	if lang == "" {
		lang = DefaultLanguage
	}
	geos := req.GeoTargets
	if len(geos) == 0 {
		geos = []string{DefaultGeoTarget}
	}

	var kws []string
	for _, k := range req.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			kws = append(kws, k)
		}
	}
	pageURL := strings.TrimSpace(req.PageURL)

	body := &ideasBody{
		Language:           "languageConstants/" + lang,
		KeywordPlanNetwork: "GOOGLE_SEARCH",
	}
	for _, g := range geos {
		body.GeoTargetConstants = append(body.GeoTargetConstants, "geoTargetConstants/"+g)
	}

	switch {
	case pageURL != "" && len(kws) > 0:
		body.KeywordAndURLSeed = &keywordURL{URL: pageURL, Keywords: kws}
	case len(kws) > 0:
		body.KeywordSeed = &keywordSeed{Keywords: kws}
	case pageURL != "":
		body.URLSeed = &urlSeed{URL: pageURL}
	default:
		return nil, ErrNoSeed
	}
	return body, nil
}

func (p *Planner) post(ctx context.Context, endpoint string, body *ideasBody) (*ideasResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(ctx, httpReq)
	if err != nil {
		return nil, fmt.Errorf("keyword ideas: %w", err)
	}
	data, err := p.client.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("keyword ideas: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
			return nil, fmt.Errorf("keyword ideas: %s (%d %s)", ae.Error.Message, resp.StatusCode, ae.Error.Status)
		}
		return nil, fmt.Errorf("keyword ideas: unexpected status %d", resp.StatusCode)
	}

	var out ideasResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode keyword ideas: %w", err)
	}
	return &out, nil
}
