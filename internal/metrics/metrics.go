package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by the API counters.
const (
	OutcomeOK       = "ok"
	OutcomeAPIError = "api_error"
	OutcomeFailed   = "failed"
	OutcomeEmpty    = "empty"
)

// Recorder owns a private registry so that each run (and each test) starts
// from zero. All methods are safe on a nil *Recorder.
type Recorder struct {
	reg *prometheus.Registry

	searchRequests  *prometheus.CounterVec
	locationLookups *prometheus.CounterVec
	completions     *prometheus.CounterVec
	callDuration    *prometheus.HistogramVec
	questions       prometheus.Counter
	keywordIdeas    prometheus.Counter
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		reg: reg,
		searchRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rankrocket_search_requests_total",
				Help: "Search API requests issued, by outcome",
			},
			[]string{"outcome"},
		),
		locationLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rankrocket_location_lookups_total",
				Help: "Geo token lookups issued, by outcome",
			},
			[]string{"outcome"},
		),
		completions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rankrocket_llm_completions_total",
				Help: "Chat completion calls, by purpose and outcome",
			},
			[]string{"purpose", "outcome"},
		),
		callDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rankrocket_api_call_duration_seconds",
				Help:    "Duration of outbound API calls in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"api"},
		),
		questions: factory.NewCounter(prometheus.CounterOpts{
			Name: "rankrocket_questions_collected_total",
			Help: "Unique People Also Ask questions collected",
		}),
		keywordIdeas: factory.NewCounter(prometheus.CounterOpts{
			Name: "rankrocket_keyword_ideas_total",
			Help: "Keyword ideas returned by the keyword planner",
		}),
	}
}

// RecordSearch counts one search request.
func (r *Recorder) RecordSearch(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.searchRequests.WithLabelValues(outcome).Inc()
	r.callDuration.WithLabelValues("search").Observe(d.Seconds())
}

// RecordLocation counts one geo token lookup.
func (r *Recorder) RecordLocation(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.locationLookups.WithLabelValues(outcome).Inc()
	r.callDuration.WithLabelValues("locations").Observe(d.Seconds())
}

// RecordCompletion counts one chat completion. purpose is e.g. "faq_answer".
func (r *Recorder) RecordCompletion(purpose, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.completions.WithLabelValues(purpose, outcome).Inc()
	r.callDuration.WithLabelValues("llm").Observe(d.Seconds())
}

// RecordQuestions adds n collected questions.
func (r *Recorder) RecordQuestions(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.questions.Add(float64(n))
}

// RecordKeywordIdeas adds n keyword ideas and one planner call duration.
func (r *Recorder) RecordKeywordIdeas(n int, d time.Duration) {
	if r == nil {
		return
	}
	if n > 0 {
		r.keywordIdeas.Add(float64(n))
	}
	r.callDuration.WithLabelValues("keyword_planner").Observe(d.Seconds())
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes the current values in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
