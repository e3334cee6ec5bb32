package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
  "name": "Tri-State Heating & Cooling, LLC",
  "niche": "HVAC",
  "city": "Adrian",
  "state": "MI",
  "seed_keyword": "hvac repair",
  "output_root": "/tmp/clients",
  "services": ["AC Repair", "Furnace Repair"],
  "nearby_20mi": ["Toledo", "Jackson"]
}`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleJSON), 0o644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Tri-State Heating & Cooling, LLC", c.Name)
	assert.Equal(t, "hvac repair", c.SeedKeyword)
	assert.Equal(t, []string{"AC Repair", "Furnace Repair"}, c.Services)
	assert.Equal(t, DefaultMaxQuestions, c.MaxQuestions)
	assert.Equal(t, []string{"Adrian Heights", "Adrian North"}, c.Nearby10mi)
	assert.Equal(t, []string{"Toledo", "Jackson"}, c.Nearby20mi, "explicit lists are kept")
	require.NoError(t, c.Validate())
}

func TestLoad_ExplicitMaxQuestions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"x","max_questions":5}`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, c.MaxQuestions)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":`), 0o644))
	_, err = Load(path)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "client.json")
	orig := Example()
	require.NoError(t, orig.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, orig, got)
}

func TestValidate(t *testing.T) {
	c := &Client{Name: "X", City: "Adrian", Niche: "HVAC"}
	err := c.Validate()

	var mf *MissingFieldsError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{"state", "seed_keyword", "output_root"}, mf.Fields)
	assert.Equal(t, "missing required fields: state, seed_keyword, output_root", err.Error())
}

func TestRequire(t *testing.T) {
	c := &Client{Name: "X", Services: []string{" "}}
	err := c.Require("name", "services")
	var mf *MissingFieldsError
	require.True(t, errors.As(err, &mf))
	assert.Equal(t, []string{"services"}, mf.Fields)

	c.Services = []string{"AC Repair"}
	assert.NoError(t, c.Require("name", "services"))
	assert.Error(t, c.Require("unknown_field"))
}

func TestApplyDefaults_NoCity(t *testing.T) {
	c := &Client{}
	c.ApplyDefaults()
	assert.Empty(t, c.Nearby10mi)
}

func TestLoadCredentials(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(env, []byte("SERPAPI_KEY=file-serp\nOPENAI_API_KEY=file-openai\nOPENAI_MODEL=gpt-4o\n"), 0o600))

	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("SERPAPI_KEY", "")
	t.Setenv("OPENAI_BASE_URL", "")
	t.Setenv("OPENAI_MODEL", "")
	t.Setenv("GOOGLE_ADS_CONFIG", "")

	c, err := LoadCredentials(env)
	require.NoError(t, err)
	assert.Equal(t, "file-serp", c.SerpAPIKey)
	assert.Equal(t, "env-openai", c.OpenAIKey, "environment wins over the file")
	assert.Equal(t, "gpt-4o", c.OpenAIModel)
	assert.Equal(t, "google-ads.yaml", c.GoogleAdsConfig)
	require.NoError(t, c.Need("SERPAPI_KEY", "OPENAI_API_KEY"))
}

func TestLoadCredentials_NoFile(t *testing.T) {
	t.Setenv("SERPAPI_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")

	c, err := LoadCredentials(filepath.Join(t.TempDir(), ".env"))
	require.NoError(t, err)

	err = c.Need("SERPAPI_KEY")
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Contains(t, err.Error(), "SERPAPI_KEY")
}
