package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/FranksOps/rankrocket/internal/fingerprint"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestBrowser/1.0", r.Header.Get("User-Agent"))
		assert.NotEmpty(t, r.Header.Get("Accept-Language"))
		w.Header().Set("X-Test", "true")
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{
		Timeout:     5 * time.Second,
		Fingerprint: fingerprint.ProfileGo,
		UserAgents:  []string{"TestBrowser/1.0"},
	}, nil)
	require.NoError(t, err)

	page, err := fetcher.Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Equal(t, "ok", string(page.Body))
	assert.Equal(t, "true", page.Header.Get("X-Test"))
	assert.NotZero(t, page.Duration)
}

func TestFetcher_UserAgentRotation(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []string
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Header.Get("User-Agent"))
		mu.Unlock()
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo, UserAgents: []string{"A", "B"}}, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := fetcher.Fetch(context.Background(), ts.URL)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"A", "B", "A"}, seen)
}

func TestFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{
		Timeout:     10 * time.Millisecond,
		Fingerprint: fingerprint.ProfileGo,
	}, nil)
	require.NoError(t, err)

	_, err = fetcher.Fetch(context.Background(), ts.URL)
	assert.Error(t, err)
}

func TestFetcher_Challenged(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "cloudflare")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("Attention Required! | Cloudflare"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo}, nil)
	require.NoError(t, err)

	page, err := fetcher.Fetch(context.Background(), ts.URL)
	require.ErrorIs(t, err, ErrChallenged)
	require.NotNil(t, page)
	assert.Equal(t, "Cloudflare", page.Challenge)

	_, err = fetcher.ScrapeText(context.Background(), ts.URL)
	assert.ErrorIs(t, err, ErrChallenged)
}

func TestFetcher_TLSFingerprint(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<p>secure</p>"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileChrome, insecure: true}, nil)
	require.NoError(t, err)

	text, err := fetcher.ScrapeText(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "secure", text)
}

func TestFetcher_Proxy(t *testing.T) {
	var gotHost string
	proxy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a forward proxy sees the absolute target URL
		gotHost = r.URL.Host
		_, _ = w.Write([]byte("<p>via proxy</p>"))
	}))
	defer proxy.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo, Proxy: proxy.URL}, nil)
	require.NoError(t, err)

	text, err := fetcher.ScrapeText(context.Background(), "http://tristate-heating.example/about")
	require.NoError(t, err)
	assert.Equal(t, "via proxy", text)
	assert.Equal(t, "tristate-heating.example", gotHost)
}

func TestNewFetcher_InvalidProxy(t *testing.T) {
	for _, raw := range []string{"ftp://proxy:21", "http://", "://bad"} {
		_, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo, Proxy: raw}, nil)
		assert.Error(t, err, raw)
	}
}

func TestScrapeText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(sampleSite))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Fingerprint: fingerprint.ProfileGo, MaxBlocks: 2}, nil)
	require.NoError(t, err)

	text, err := fetcher.ScrapeText(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "Tri-State Heating & Cooling\nFamily owned since 1985.", text)

	_, err = fetcher.ScrapeText(context.Background(), ts.URL+"/missing")
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
}

func TestNewFetcher_UnknownProfile(t *testing.T) {
	_, err := NewFetcher(FetchConfig{Fingerprint: "lynx"}, nil)
	assert.Error(t, err)
}
