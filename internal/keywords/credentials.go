// Package keywords fetches keyword ideas and search volumes from the Google
// Ads Keyword Planner.
package keywords

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AdWordsScope is the OAuth2 scope the Google Ads API requires.
const AdWordsScope = "https://www.googleapis.com/auth/adwords"

// Credentials mirror the google-ads.yaml layout.
type Credentials struct {
	DeveloperToken  string `yaml:"developer_token"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RefreshToken    string `yaml:"refresh_token"`
	LoginCustomerID string `yaml:"login_customer_id"`
}

// LoadCredentials reads a google-ads.yaml file.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read google ads config: %w", err)
	}
	var c Credentials
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse google ads config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks that every field needed for a refresh-token call is set.
func (c *Credentials) Validate() error {
	var missing []string
	for _, f := range []struct{ name, val string }{
		{"developer_token", c.DeveloperToken},
		{"client_id", c.ClientID},
		{"client_secret", c.ClientSecret},
		{"refresh_token", c.RefreshToken},
	} {
		if strings.TrimSpace(f.val) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("google ads config missing %s", strings.Join(missing, ", "))
	}
	return nil
}

var errBadCustomerID = errors.New("customer id must be 10 digits")

// NormalizeCustomerID strips dashes and spaces from a customer ID such as
// "123-456-7890".
func NormalizeCustomerID(id string) (string, error) {
	id = strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(id))
	if len(id) != 10 {
		return "", fmt.Errorf("%w: %q", errBadCustomerID, id)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("%w: %q", errBadCustomerID, id)
		}
	}
	return id, nil
}
