package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/FranksOps/rankrocket/internal/config"
	"github.com/FranksOps/rankrocket/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPIs struct {
	searches    atomic.Int32
	completions atomic.Int32
	serpURL     string
}

// newFakeAPIs serves SerpAPI and an OpenAI-compatible chat endpoint and
// points the credential environment at them.
func newFakeAPIs(t *testing.T, questions ...string) *fakeAPIs {
	t.Helper()
	f := &fakeAPIs{}

	mux := http.NewServeMux()
	mux.HandleFunc("/locations.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"canonical_name":"Adrian,Michigan,United States"}]`)
	})
	mux.HandleFunc("/search.json", func(w http.ResponseWriter, r *http.Request) {
		f.searches.Add(1)
		type rq struct {
			Question string `json:"question"`
		}
		out := struct {
			RelatedQuestions []rq `json:"related_questions"`
		}{}
		for _, q := range questions {
			out.RelatedQuestions = append(out.RelatedQuestions, rq{Question: q})
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		n := f.completions.Add(1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"id":"c%d","object":"chat.completion","created":1,"model":"gpt-4",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"Answer number %d."}}]}`, n, n)
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	f.serpURL = ts.URL
	t.Setenv("SERPAPI_KEY", "serp-test")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("OPENAI_BASE_URL", ts.URL+"/v1/")
	t.Setenv("OPENAI_MODEL", "gpt-4")
	return f
}

func writeClient(t *testing.T, dir string, mutate func(*config.Client)) string {
	t.Helper()
	c := &config.Client{
		Name:         "Tri-State Heating",
		Niche:        "HVAC",
		City:         "Adrian",
		State:        "Michigan",
		SeedKeyword:  "furnace repair",
		OutputRoot:   filepath.Join(dir, "out"),
		Services:     []string{"furnace repair", "https://example.com/services/ac-installation/"},
		MaxQuestions: 3,
	}
	if mutate != nil {
		mutate(c)
	}
	path := filepath.Join(dir, "client.json")
	require.NoError(t, c.Save(path))
	return path
}

func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	base := []string{"--env-file", filepath.Join(t.TempDir(), "missing.env")}
	code := Execute(context.Background(), append(base, args...), &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestConfigInitAndShow(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client.json")

	out, _, code := run(t, "config", "init", path)
	require.Equal(t, 0, code)
	assert.Contains(t, out, path)

	_, errOut, code := run(t, "config", "init", path)
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "already exists")

	out, _, code = run(t, "-c", path, "config", "show")
	require.Equal(t, 0, code)
	var shown config.Client
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, config.Example().Name, shown.Name)
}

func TestGMBCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeClient(t, dir, nil)

	out, _, code := run(t, "-c", path, "gmb")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Generated 8 keywords")

	data, err := os.ReadFile(filepath.Join(dir, "out", "gmb_keywords.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ac Installation")
}

func TestGMBCommand_MissingFields(t *testing.T) {
	dir := t.TempDir()
	path := writeClient(t, dir, func(c *config.Client) { c.City = "" })

	_, errOut, code := run(t, "-c", path, "gmb")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "city")
	assert.Contains(t, errOut, "Explanation:")
}

func TestFAQCommand_RequiresCredentials(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	dir := t.TempDir()
	path := writeClient(t, dir, nil)

	_, errOut, code := run(t, "-c", path, "--ledger", "", "faq")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "SERPAPI_KEY")
}

func TestFAQCommand_EndToEnd(t *testing.T) {
	apis := newFakeAPIs(t, "How much does furnace repair cost?", "Is a new furnace worth it?")
	dir := t.TempDir()
	path := writeClient(t, dir, nil)
	ledger := filepath.Join(dir, "ledger.jsonl")
	metricsFile := filepath.Join(dir, "metrics.prom")

	out, errOut, code := run(t, "-c", path, "--ledger", ledger, "--metrics-file", metricsFile,
		"--serpapi-base-url", apis.serpURL, "faq", "--max", "2")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Saved 2 FAQs")
	assert.EqualValues(t, 2, apis.completions.Load())

	html, err := os.ReadFile(pipeline.FAQPath(filepath.Join(dir, "out"), "Tri-State Heating"))
	require.NoError(t, err)
	assert.Contains(t, string(html), "How much does furnace repair cost?")
	assert.Contains(t, string(html), "Answer number")

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "rankrocket_")

	out, errOut, code = run(t, "--ledger", ledger, "history", "--client", "Tri-State Heating")
	require.Equal(t, 0, code, errOut)
	assert.Equal(t, 2, strings.Count(out, "Tri-State Heating"))
	assert.Contains(t, out, "#1")

	out, _, code = run(t, "--ledger", ledger, "history", "--summary", "json")
	require.Equal(t, 0, code)
	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.EqualValues(t, 2, summary["TotalEntries"])
}

func TestFAQCommand_NoQuestions(t *testing.T) {
	apis := newFakeAPIs(t)
	dir := t.TempDir()
	path := writeClient(t, dir, nil)

	out, errOut, code := run(t, "-c", path, "--ledger", "", "--serpapi-base-url", apis.serpURL, "faq")
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "No questions found")
	assert.Zero(t, apis.completions.Load())
	_, err := os.Stat(filepath.Join(dir, "out", "Tri-State Heating"))
	assert.True(t, os.IsNotExist(err))
}

func TestHistory_UnknownSummary(t *testing.T) {
	ledger := filepath.Join(t.TempDir(), "l.csv")
	_, errOut, code := run(t, "--ledger", ledger, "history", "--summary", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, errOut, "unknown summary format")
}
