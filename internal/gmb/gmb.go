// Package gmb builds Google Business Profile keyword permutations from a
// client's service list.
package gmb

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/FranksOps/rankrocket/internal/report"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FileName is the keyword file written under the output root.
const FileName = "gmb_keywords.txt"

// ErrNoServices is returned when no usable service remains after normalization.
var ErrNoServices = errors.New("no services provided, enter at least one service name")

// Business is the subset of client details the permutations use.
type Business struct {
	Name  string
	City  string
	State string
}

// NormalizeServices trims, drops empties, reduces service page URLs to their
// last path segment and title-cases the result.
func NormalizeServices(services []string) []string {
	caser := cases.Title(language.English)
	out := make([]string, 0, len(services))
	for _, s := range services {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if slug, ok := urlSlug(s); ok {
			s = slug
		}
		if s == "" {
			continue
		}
		out = append(out, caser.String(s))
	}
	return out
}

func urlSlug(s string) (string, bool) {
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return "", false
	}
	u, err := url.Parse(s)
	if err != nil {
		return "", false
	}
	base := path.Base(strings.TrimRight(u.Path, "/"))
	if base == "." || base == "/" {
		return "", true
	}
	return strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(base)), true
}

// Keywords returns four permutations per service, in service order.
func Keywords(biz Business, services []string) ([]string, error) {
	names := NormalizeServices(services)
	if len(names) == 0 {
		return nil, ErrNoServices
	}

	loc := fmt.Sprintf("%s, %s", biz.City, biz.State)
	kws := make([]string, 0, len(names)*4)
	for _, svc := range names {
		kws = append(kws,
			fmt.Sprintf("%s %s %s", biz.Name, svc, loc),
			fmt.Sprintf("%s near %s", svc, loc),
			fmt.Sprintf("Best %s in %s", svc, loc),
			fmt.Sprintf("%s %s", loc, svc),
		)
	}
	return kws, nil
}

// Write stores keywords one per line in outputRoot and returns the file path.
func Write(outputRoot string, keywords []string) (string, error) {
	if outputRoot == "" {
		outputRoot = "."
	}
	if err := os.MkdirAll(outputRoot, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	p := filepath.Join(outputRoot, FileName)
	f, err := os.Create(p)
	if err != nil {
		return "", fmt.Errorf("create keyword file: %w", err)
	}
	if err := report.WriteKeywords(f, keywords); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close keyword file: %w", err)
	}
	return p, nil
}
