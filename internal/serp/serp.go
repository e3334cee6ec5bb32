package serp

import (
	"context"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a provider is constructed without credentials.
var ErrMissingAPIKey = errors.New("serp: missing API key")

// SearchRequest describes one page of results for one query.
type SearchRequest struct {
	Engine   string // e.g. "google"
	Query    string
	Language string // hl
	Country  string // gl
	Start    int    // pagination offset
	// Location is an opaque geo token; empty means no geographic bias.
	Location string
}

// RelatedQuestion is a single "People also ask" entry.
type RelatedQuestion struct {
	Question string `json:"question"`
	Snippet  string `json:"snippet,omitempty"`
	Title    string `json:"title,omitempty"`
	Link     string `json:"link,omitempty"`
}

// SearchResponse carries the parts of a results page the toolkit reads.
// A non-empty Error means the provider answered but refused or found nothing.
type SearchResponse struct {
	Error            string            `json:"error,omitempty"`
	RelatedQuestions []RelatedQuestion `json:"related_questions,omitempty"`
	Metadata         struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"search_metadata"`
}

// Location is one entry returned by a location lookup.
type Location struct {
	ID            string `json:"id"`
	GoogleID      int64  `json:"google_id"`
	Name          string `json:"name"`
	CanonicalName string `json:"canonical_name"`
	CountryCode   string `json:"country_code"`
	TargetType    string `json:"target_type"`
	Reach         int64  `json:"reach"`
}

// Provider abstracts a search engine results provider. Implementations may use
// official APIs, scraping, or fixtures in tests.
type Provider interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResponse, error)
}

// LocationResolver turns a free-text place ("Adrian, MI") into a geo token.
// An empty token with a nil error means the place was not recognized.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, query string) (string, error)
}

// StatusError reports a non-2xx response whose body could not be interpreted.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("serp: unexpected status %d: %s", e.StatusCode, e.Body)
}
