package paa

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/FranksOps/rankrocket/internal/metrics"
	"github.com/FranksOps/rankrocket/internal/serp"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxQuestions is used by callers that have no explicit cap.
const DefaultMaxQuestions = 20

// Config tunes how the aggregator queries the search provider.
type Config struct {
	Engine   string // default "google"
	Language string // default "en"
	Country  string // default "us"
	// Resolver is optional; without it searches carry no geographic bias.
	Resolver serp.LocationResolver
	// Concurrency > 1 issues requests in waves of this size. Results are still
	// merged in variant-major, offset-minor order, so output is unchanged; only
	// the wave in flight when the cap is hit costs extra requests.
	Concurrency int
	Metrics     *metrics.Recorder
}

// Query is one harvest request.
type Query struct {
	SeedKeyword  string
	GeoTarget    string
	MaxQuestions int
}

// Result is the outcome of a harvest.
type Result struct {
	Questions []string
	GeoToken  string
	Requests  int // search requests issued
	Failed    int // (variant, offset) pairs skipped because of an error
}

// Aggregator collects unique related questions for a seed keyword.
type Aggregator struct {
	cfg      Config
	provider serp.Provider
	logger   *slog.Logger
}

type pair struct {
	variant string
	offset  int
}

// NewAggregator creates an Aggregator over the given provider.
func NewAggregator(cfg Config, provider serp.Provider, logger *slog.Logger) *Aggregator {
	if cfg.Engine == "" {
		cfg.Engine = "google"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Country == "" {
		cfg.Country = "us"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
	}
}

// Aggregate returns up to maxQuestions unique questions in first-seen order.
// Individual request failures are logged and skipped; if everything fails the
// result is empty. The error is non-nil only when ctx is done, in which case
// the questions gathered so far are returned with it.
func (a *Aggregator) Aggregate(ctx context.Context, seed, geoTarget string, maxQuestions int) ([]string, error) {
	res, err := a.Collect(ctx, Query{SeedKeyword: seed, GeoTarget: geoTarget, MaxQuestions: maxQuestions})
	return res.Questions, err
}

// Collect is Aggregate with request accounting. The returned Result is never nil.
func (a *Aggregator) Collect(ctx context.Context, q Query) (*Result, error) {
	set := NewQuestionSet(q.MaxQuestions)
	res := &Result{}
	if set.Full() {
		res.Questions = set.Items()
		return res, nil
	}

	a.logger.Info("starting question harvest", "seed", q.SeedKeyword, "geo", q.GeoTarget, "max", q.MaxQuestions)

	res.GeoToken = a.resolveGeo(ctx, q.GeoTarget)

	variants := Variants(q.SeedKeyword, q.GeoTarget)
	pairs := make([]pair, 0, len(variants)*len(Offsets))
	for _, v := range variants {
		for _, off := range Offsets {
			pairs = append(pairs, pair{variant: v, offset: off})
		}
	}

	var err error
	if a.cfg.Concurrency > 1 {
		err = a.collectWaves(ctx, pairs, res, set)
	} else {
		err = a.collectSequential(ctx, pairs, res, set)
	}

	res.Questions = set.Items()
	a.cfg.Metrics.RecordQuestions(len(res.Questions))
	a.logger.Info("question harvest finished",
		"questions", len(res.Questions),
		"requests", res.Requests,
		"failed", res.Failed,
	)
	return res, err
}

func (a *Aggregator) collectSequential(ctx context.Context, pairs []pair, res *Result, set *QuestionSet) error {
	for _, p := range pairs {
		if err := ctx.Err(); err != nil {
			return err
		}
		res.Requests++
		questions, ok := a.fetch(ctx, p, res.GeoToken)
		if !ok {
			res.Failed++
			continue
		}
		for _, question := range questions {
			set.Add(question)
			if set.Full() {
				return nil
			}
		}
	}
	// cancelled during the last request
	return ctx.Err()
}

func (a *Aggregator) collectWaves(ctx context.Context, pairs []pair, res *Result, set *QuestionSet) error {
	size := a.cfg.Concurrency
	for i := 0; i < len(pairs); i += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		wave := pairs[i:min(i+size, len(pairs))]
		found := make([][]string, len(wave))
		ok := make([]bool, len(wave))

		var g errgroup.Group
		for j, p := range wave {
			g.Go(func() error {
				found[j], ok[j] = a.fetch(ctx, p, res.GeoToken)
				return nil
			})
		}
		_ = g.Wait()
		res.Requests += len(wave)

		for j := range wave {
			if !ok[j] {
				res.Failed++
				continue
			}
			for _, question := range found[j] {
				set.Add(question)
				if set.Full() {
					return nil
				}
			}
		}
	}
	return ctx.Err()
}

// fetch runs one search and returns its question texts. ok is false when the
// pair has to be skipped.
func (a *Aggregator) fetch(ctx context.Context, p pair, geoToken string) ([]string, bool) {
	log := a.logger.With("variant", p.variant, "start", p.offset)
	log.Debug("fetching variant")

	resp, err := a.provider.Search(ctx, serp.SearchRequest{
		Engine:   a.cfg.Engine,
		Query:    p.variant,
		Language: a.cfg.Language,
		Country:  a.cfg.Country,
		Start:    p.offset,
		Location: geoToken,
	})
	switch {
	case errors.Is(err, serp.ErrDecode):
		log.Warn("undecodable search response, skipping", "err", err)
		return nil, false
	case err != nil:
		log.Warn("search request failed, skipping", "err", err)
		return nil, false
	case resp == nil:
		log.Warn("empty search response, skipping")
		return nil, false
	case resp.Error != "":
		log.Warn("search API returned an error, skipping", "api_error", resp.Error)
		return nil, false
	}

	log.Debug("search results", "related_questions", len(resp.RelatedQuestions))
	questions := make([]string, 0, len(resp.RelatedQuestions))
	for _, rq := range resp.RelatedQuestions {
		questions = append(questions, rq.Question)
	}
	return questions, true
}

func (a *Aggregator) resolveGeo(ctx context.Context, geoTarget string) string {
	if a.cfg.Resolver == nil || strings.TrimSpace(geoTarget) == "" {
		a.logger.Debug("no geo resolution, searching without location bias")
		return ""
	}
	token, err := a.cfg.Resolver.ResolveLocation(ctx, geoTarget)
	if err != nil {
		a.logger.Warn("geo resolution failed, searching without location bias", "geo", geoTarget, "err", err)
		return ""
	}
	if token == "" {
		a.logger.Info("geo target not recognized, searching without location bias", "geo", geoTarget)
		return ""
	}
	a.logger.Info("resolved geo target", "geo", geoTarget, "token", token)
	return token
}
