// Package background writes a business background summary document from the
// client's website and Google Business Profile.
package background

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/FranksOps/rankrocket/internal/llm"
	"github.com/FranksOps/rankrocket/internal/report"
)

// ErrNoTarget is returned when neither a website nor a profile URL is set.
var ErrNoTarget = errors.New("client config must include a url, a gbp_url, or both")

// TextScraper pulls readable text from a web page. *scraper.Fetcher satisfies it.
type TextScraper interface {
	ScrapeText(ctx context.Context, url string) (string, error)
}

// Target identifies the business to summarize.
type Target struct {
	Name       string
	URL        string
	GBPURL     string
	OutputRoot string
}

// Generator drafts and saves background summaries.
type Generator struct {
	llm     llm.Completer
	scraper TextScraper
	logger  *slog.Logger
}

// NewGenerator returns a Generator. scraper may be nil, in which case the
// prompt carries only the URLs.
func NewGenerator(c llm.Completer, scraper TextScraper, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{llm: c, scraper: scraper, logger: logger}
}

// TargetInfo formats the URLs the model should review.
func TargetInfo(url, gbpURL string) (string, error) {
	url, gbpURL = strings.TrimSpace(url), strings.TrimSpace(gbpURL)
	switch {
	case url != "" && gbpURL != "":
		return fmt.Sprintf("Website: %s\nGoogle Business Profile: %s", url, gbpURL), nil
	case url != "":
		return "Website: " + url, nil
	case gbpURL != "":
		return "Google Business Profile: " + gbpURL, nil
	default:
		return "", ErrNoTarget
	}
}

// Prompt builds the summary request. siteText is appended when non-empty.
func Prompt(targetInfo, siteText string) llm.Prompt {
	user := "Please review the following business information and provide:\n" +
		"- A summary of services offered\n" +
		"- Background information on the business\n\n" +
		targetInfo
	if siteText = strings.TrimSpace(siteText); siteText != "" {
		user += "\n\nWebsite content:\n" + siteText
	}
	return llm.Prompt{
		Purpose: "background",
		System:  "You are an SEO assistant.",
		User:    user,
	}
}

// OutputPath returns where the document for name is saved.
func OutputPath(outputRoot, name string) string {
	name = strings.TrimSpace(strings.NewReplacer("/", "-", `\`, "-").Replace(name))
	return filepath.Join(outputRoot, name, name+" background information.docx")
}

// Summarize asks the model for the background summary.
func (g *Generator) Summarize(ctx context.Context, t Target) (string, error) {
	info, err := TargetInfo(t.URL, t.GBPURL)
	if err != nil {
		return "", err
	}

	var siteText string
	if g.scraper != nil && strings.TrimSpace(t.URL) != "" {
		siteText, err = g.scraper.ScrapeText(ctx, strings.TrimSpace(t.URL))
		if err != nil {
			g.logger.Warn("website scrape failed, continuing with URLs only", "url", t.URL, "err", err)
			siteText = ""
		}
	}

	g.logger.Info("generating background summary", "client", t.Name)
	summary, err := g.llm.Complete(ctx, Prompt(info, siteText))
	if err != nil {
		return "", fmt.Errorf("background summary: %w", err)
	}
	return summary, nil
}

// Run summarizes the business and writes the document, returning its path.
func (g *Generator) Run(ctx context.Context, t Target) (string, error) {
	summary, err := g.Summarize(ctx, t)
	if err != nil {
		return "", err
	}

	path := OutputPath(t.OutputRoot, t.Name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	doc := report.Document{
		Title:      t.Name + " - Background Information",
		Paragraphs: []string{summary},
	}
	if err := report.SaveDOCX(path, doc); err != nil {
		return "", err
	}

	g.logger.Info("saved background information", "path", path)
	return path, nil
}
