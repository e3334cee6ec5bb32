// Package config loads and saves client configuration files and reads API
// credentials from the environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DefaultMaxQuestions applies when a client file has no max_questions key.
const DefaultMaxQuestions = 20

// RequiredFields must be present for a full run.
var RequiredFields = []string{"name", "city", "state", "seed_keyword", "output_root", "niche"}

// Client holds one client's business details and run options.
type Client struct {
	Name         string   `json:"name" mapstructure:"name"`
	Niche        string   `json:"niche" mapstructure:"niche"`
	Address      string   `json:"address,omitempty" mapstructure:"address"`
	City         string   `json:"city" mapstructure:"city"`
	State        string   `json:"state" mapstructure:"state"`
	URL          string   `json:"url,omitempty" mapstructure:"url"`
	MobileURL    string   `json:"mobile_url,omitempty" mapstructure:"mobile_url"`
	GBPURL       string   `json:"gbp_url,omitempty" mapstructure:"gbp_url"`
	SeedKeyword  string   `json:"seed_keyword" mapstructure:"seed_keyword"`
	OutputRoot   string   `json:"output_root" mapstructure:"output_root"`
	Services     []string `json:"services,omitempty" mapstructure:"services"`
	Nearby10mi   []string `json:"nearby_10mi,omitempty" mapstructure:"nearby_10mi"`
	Nearby20mi   []string `json:"nearby_20mi,omitempty" mapstructure:"nearby_20mi"`
	MaxQuestions int      `json:"max_questions" mapstructure:"max_questions"`

	// Keyword planner inputs.
	CustomerID   string   `json:"customer_id,omitempty" mapstructure:"customer_id"`
	PageURL      string   `json:"page_url,omitempty" mapstructure:"page_url"`
	SeedKeywords []string `json:"seed_keywords,omitempty" mapstructure:"seed_keywords"`
}

// MissingFieldsError lists required fields that are empty.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Load reads a client JSON file and fills defaults.
func Load(path string) (*Client, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetDefault("max_questions", DefaultMaxQuestions)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	var c Client
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	c.ApplyDefaults()
	return &c, nil
}

// Save writes c as indented JSON, creating parent directories.
func (c *Client) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

// ApplyDefaults fills nearby city lists from the base city when they are empty.
func (c *Client) ApplyDefaults() {
	city := strings.TrimSpace(c.City)
	if city == "" {
		return
	}
	if len(c.Nearby10mi) == 0 {
		c.Nearby10mi = []string{city + " Heights", city + " North"}
	}
	if len(c.Nearby20mi) == 0 {
		c.Nearby20mi = []string{city + " Valley", city + " Junction"}
	}
}

// Validate checks every field a full run needs.
func (c *Client) Validate() error {
	return c.Require(RequiredFields...)
}

// Require checks the named fields (JSON keys) are non-empty.
func (c *Client) Require(fields ...string) error {
	var missing []string
	for _, f := range fields {
		if !c.has(f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

func (c *Client) has(field string) bool {
	var s string
	switch field {
	case "name":
		s = c.Name
	case "niche":
		s = c.Niche
	case "address":
		s = c.Address
	case "city":
		s = c.City
	case "state":
		s = c.State
	case "url":
		s = c.URL
	case "mobile_url":
		s = c.MobileURL
	case "gbp_url":
		s = c.GBPURL
	case "seed_keyword":
		s = c.SeedKeyword
	case "output_root":
		s = c.OutputRoot
	case "customer_id":
		s = c.CustomerID
	case "page_url":
		s = c.PageURL
	case "services":
		return nonEmpty(c.Services)
	case "seed_keywords":
		return nonEmpty(c.SeedKeywords)
	case "max_questions":
		return c.MaxQuestions > 0
	default:
		return false
	}
	return strings.TrimSpace(s) != ""
}

func nonEmpty(ss []string) bool {
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// Example returns a filled-in client used by "config init".
func Example() *Client {
	c := &Client{
		Name:         "Tri-State Heating & Cooling, LLC",
		Niche:        "HVAC",
		Address:      "7686 Rome Rd, Adrian, MI 49221",
		City:         "Adrian",
		State:        "MI",
		URL:          "https://www.tri-stateheating.com/",
		GBPURL:       "https://g.co/kgs/j3Bb4gy",
		SeedKeyword:  "hvac repair",
		OutputRoot:   "clients",
		Services:     []string{"AC Repair", "Furnace Installation", "HVAC Maintenance"},
		MaxQuestions: DefaultMaxQuestions,
		PageURL:      "https://www.tri-stateheating.com/",
		SeedKeywords: []string{"HVAC repair", "air conditioning install", "furnace service"},
	}
	c.ApplyDefaults()
	return c
}

// ErrMissingCredential is wrapped when a command needs a key that is unset.
var ErrMissingCredential = errors.New("missing credential")

// Credentials are API keys and endpoints. They come from the environment or
// a dotenv file and are never written back to disk.
type Credentials struct {
	SerpAPIKey      string
	OpenAIKey       string
	OpenAIBaseURL   string
	OpenAIModel     string
	GoogleAdsConfig string
}

var credentialEnv = map[string]string{
	"serpapi_key":       "SERPAPI_KEY",
	"openai_api_key":    "OPENAI_API_KEY",
	"openai_base_url":   "OPENAI_BASE_URL",
	"openai_model":      "OPENAI_MODEL",
	"google_ads_config": "GOOGLE_ADS_CONFIG",
}

// LoadCredentials reads credentials from the environment, falling back to
// envFile when it exists. Environment variables take precedence.
func LoadCredentials(envFile string) (Credentials, error) {
	v := viper.New()
	for key, env := range credentialEnv {
		if err := v.BindEnv(key, env); err != nil {
			return Credentials{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}
	v.SetDefault("google_ads_config", "google-ads.yaml")

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Credentials{}, fmt.Errorf("read %s: %w", envFile, err)
			}
		}
	}

	return Credentials{
		SerpAPIKey:      strings.TrimSpace(v.GetString("serpapi_key")),
		OpenAIKey:       strings.TrimSpace(v.GetString("openai_api_key")),
		OpenAIBaseURL:   strings.TrimSpace(v.GetString("openai_base_url")),
		OpenAIModel:     strings.TrimSpace(v.GetString("openai_model")),
		GoogleAdsConfig: strings.TrimSpace(v.GetString("google_ads_config")),
	}, nil
}

// Need returns an error naming the first unset credential among envs.
func (c Credentials) Need(envs ...string) error {
	for _, env := range envs {
		var val string
		switch env {
		case "SERPAPI_KEY":
			val = c.SerpAPIKey
		case "OPENAI_API_KEY":
			val = c.OpenAIKey
		case "GOOGLE_ADS_CONFIG":
			val = c.GoogleAdsConfig
		}
		if val == "" {
			return fmt.Errorf("%w: set %s in the environment or .env", ErrMissingCredential, env)
		}
	}
	return nil
}
