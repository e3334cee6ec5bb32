// Package pipeline runs the FAQ generation flow: harvest questions, draft
// answers, render the accordion page and record the entries.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/FranksOps/rankrocket/internal/answer"
	"github.com/FranksOps/rankrocket/internal/paa"
	"github.com/FranksOps/rankrocket/internal/report"
	"github.com/FranksOps/rankrocket/internal/storage"
	"github.com/google/uuid"
)

// SiteDir is the per-client directory holding website content.
const SiteDir = "G Site"

// Harvester collects questions for a seed keyword. *paa.Aggregator satisfies it.
type Harvester interface {
	Collect(ctx context.Context, q paa.Query) (*paa.Result, error)
}

var _ Harvester = (*paa.Aggregator)(nil)

// FAQRequest describes one FAQ run.
type FAQRequest struct {
	Business     answer.Business
	SeedKeyword  string
	GeoTarget    string // default "{city}, {state}"
	MaxQuestions int
	OutputRoot   string
}

// FAQResult reports what a run produced.
type FAQResult struct {
	RunID      string
	Entries    []report.FAQEntry
	OutputPath string // empty when nothing was rendered
	Requests   int
	Failed     int
}

// Pipeline wires the FAQ stages together. Ledger is optional.
type Pipeline struct {
	Harvester Harvester
	Drafter   answer.Drafter
	Ledger    storage.Backend
	Logger    *slog.Logger

	now func() time.Time
}

// FAQPath returns where the FAQ page for business is written.
func FAQPath(outputRoot, business string) string {
	name := SafeName(business)
	return filepath.Join(outputRoot, name, SiteDir, name+" - FAQs.html")
}

// SafeName makes a business name usable as a single path element.
func SafeName(name string) string {
	r := strings.NewReplacer("/", "-", `\`, "-")
	return strings.TrimSpace(r.Replace(name))
}

// RunFAQ executes the full flow. A draft failure aborts the run, since it
// nearly always repeats for every remaining question.
func (p *Pipeline) RunFAQ(ctx context.Context, req FAQRequest) (*FAQResult, error) {
	if p.Harvester == nil {
		return nil, errors.New("pipeline: harvester is nil")
	}
	if p.Drafter == nil {
		return nil, errors.New("pipeline: drafter is nil")
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := p.now
	if now == nil {
		now = time.Now
	}

	geo := req.GeoTarget
	if geo == "" {
		geo = fmt.Sprintf("%s, %s", req.Business.City, req.Business.State)
	}

	res := &FAQResult{RunID: uuid.NewString()}
	logger = logger.With("run_id", res.RunID, "client", req.Business.Name)

	harvest, err := p.Harvester.Collect(ctx, paa.Query{
		SeedKeyword:  req.SeedKeyword,
		GeoTarget:    geo,
		MaxQuestions: req.MaxQuestions,
	})
	if err != nil {
		return res, fmt.Errorf("harvest questions: %w", err)
	}
	res.Requests = harvest.Requests
	res.Failed = harvest.Failed

	if len(harvest.Questions) == 0 {
		logger.Warn("no questions found, nothing to render", "seed", req.SeedKeyword)
		return res, nil
	}

	for _, q := range harvest.Questions {
		logger.Info("drafting answer", "question", q)
		a, err := p.Drafter.Draft(ctx, q, req.Business)
		if err != nil {
			return res, fmt.Errorf("faq run aborted: %w", err)
		}
		res.Entries = append(res.Entries, report.FAQEntry{Question: q, Answer: a})
	}

	path := FAQPath(req.OutputRoot, req.Business.Name)
	if err := writeFAQ(path, req.Business.Name, res.Entries); err != nil {
		return res, err
	}
	res.OutputPath = path
	logger.Info("saved faq page", "path", path, "entries", len(res.Entries))

	if p.Ledger != nil {
		created := now().UTC()
		for i, e := range res.Entries {
			rec := &storage.FAQRecord{
				ID:        uuid.NewString(),
				RunID:     res.RunID,
				Client:    req.Business.Name,
				Keyword:   req.SeedKeyword,
				Position:  i + 1,
				Question:  e.Question,
				Answer:    e.Answer,
				CreatedAt: created,
			}
			if err := p.Ledger.Save(ctx, rec); err != nil {
				return res, fmt.Errorf("record faq entry: %w", err)
			}
		}
	}

	return res, nil
}

func writeFAQ(path, business string, entries []report.FAQEntry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create faq page: %w", err)
	}
	if err := report.WriteFAQHTML(f, business, entries); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close faq page: %w", err)
	}
	return nil
}
