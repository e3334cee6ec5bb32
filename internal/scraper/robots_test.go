package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/FranksOps/rankrocket/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRobotsAuditor_IsAllowed(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`
User-agent: *
Disallow: /admin/
Allow: /admin/public/

User-agent: BadBot
Disallow: /
		`))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
	}, nil)
	require.NoError(t, err)

	auditor := NewRobotsAuditor(fetcher, slog.Default())
	ctx := context.Background()

	cases := []struct {
		path  string
		agent string
		want  bool
	}{
		{"/public-page", "GoodBot", true},
		{"/admin/secret", "GoodBot", false},
		{"/admin/public/index.html", "GoodBot", true},
		{"/public-page", "BadBot", false},
	}
	for _, tc := range cases {
		allowed, err := auditor.IsAllowed(ctx, ts.URL+tc.path, tc.agent)
		require.NoError(t, err)
		assert.Equal(t, tc.want, allowed, "%s as %s", tc.path, tc.agent)
	}
}

func TestRobotsAuditor_MissingRobotsAllows(t *testing.T) {
	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusNotFound)
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo}, nil)
	require.NoError(t, err)
	auditor := NewRobotsAuditor(fetcher, nil)

	for i := 0; i < 2; i++ {
		allowed, err := auditor.IsAllowed(context.Background(), ts.URL+"/anything", "AnyBot")
		require.NoError(t, err)
		assert.True(t, allowed, "missing robots.txt allows everything")
	}
	assert.EqualValues(t, 1, hits.Load(), "robots.txt is cached per host")
}

func TestScrapeText_RespectsRobots(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: rankrocket\nDisallow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>hi</p>"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo, RespectRobots: true}, nil)
	require.NoError(t, err)
	_, err = fetcher.ScrapeText(context.Background(), ts.URL+"/")
	require.ErrorIs(t, err, ErrDisallowed)

	open, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo}, nil)
	require.NoError(t, err)
	text, err := open.ScrapeText(context.Background(), ts.URL+"/")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)
}
