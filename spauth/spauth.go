// Package spauth builds authenticated gosip clients for the supported
// SharePoint auth strategies.
package spauth

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/koltyakov/gosip"
	"github.com/koltyakov/gosip/auth/addin"
	"github.com/koltyakov/gosip/auth/azurecert"
	"github.com/koltyakov/gosip/auth/saml"
)

// Strategy names an authentication flow.
type Strategy string

const (
	StrategyAzureCert Strategy = "azurecert"
	StrategySAML      Strategy = "saml"
	StrategyAddin     Strategy = "addin"
)

type Config struct {
	Strategy     Strategy
	SiteURL      string
	TenantID     string
	ClientID     string
	ClientSecret string
	Realm        string
	CertPath     string
	CertPassword string
	Username     string
	Password     string
}

func FromEnv() (Config, error) {
	cfg := readEnv()
	return cfg, cfg.Validate()
}

// FromEnvForSite is FromEnv with the site URL taken from siteURL when it is
// not empty.
func FromEnvForSite(siteURL string) (Config, error) {
	cfg := readEnv()
	if siteURL != "" {
		cfg.SiteURL = siteURL
	}
	return cfg, cfg.Validate()
}

func readEnv() Config {
	// Environment should already be loaded by main.go
	cfg := Config{
		Strategy:     Strategy(strings.ToLower(strings.TrimSpace(os.Getenv("SP_AUTH_STRATEGY")))),
		SiteURL:      os.Getenv("SP_SITE_URL"),
		TenantID:     os.Getenv("SP_TENANT_ID"),
		ClientID:     os.Getenv("SP_CLIENT_ID"),
		ClientSecret: os.Getenv("SP_CLIENT_SECRET"),
		Realm:        os.Getenv("SP_REALM"),
		CertPath:     os.Getenv("SP_CERT_PATH"),
		CertPassword: os.Getenv("SP_CERT_PASSWORD"),
		Username:     os.Getenv("SP_USERNAME"),
		Password:     os.Getenv("SP_PASSWORD"),
	}
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyAzureCert
	}
	return cfg
}

// Validate checks that the settings required by the strategy are present.
func (c Config) Validate() error {
	var missing []string
	need := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}

	need("SP_SITE_URL", c.SiteURL)
	switch c.Strategy {
	case StrategyAzureCert:
		need("SP_TENANT_ID", c.TenantID)
		need("SP_CLIENT_ID", c.ClientID)
		need("SP_CERT_PATH", c.CertPath)
	case StrategySAML:
		need("SP_USERNAME", c.Username)
		need("SP_PASSWORD", c.Password)
	case StrategyAddin:
		need("SP_CLIENT_ID", c.ClientID)
		need("SP_CLIENT_SECRET", c.ClientSecret)
	default:
		return fmt.Errorf("unknown auth strategy %q (want azurecert, saml or addin)", c.Strategy)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration for %s: %s", c.Strategy, strings.Join(missing, ", "))
	}
	return nil
}

// authConfig maps the settings onto the gosip strategy.
func (c Config) authConfig() (gosip.AuthCnfg, error) {
	switch c.Strategy {
	case StrategyAzureCert, "":
		return &azurecert.AuthCnfg{
			SiteURL:  c.SiteURL,
			TenantID: c.TenantID,
			ClientID: c.ClientID,
			CertPath: c.CertPath,
			CertPass: c.CertPassword,
		}, nil
	case StrategySAML:
		return &saml.AuthCnfg{
			SiteURL:  c.SiteURL,
			Username: c.Username,
			Password: c.Password,
		}, nil
	case StrategyAddin:
		return &addin.AuthCnfg{
			SiteURL:      c.SiteURL,
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Realm:        c.Realm,
		}, nil
	}
	return nil, fmt.Errorf("unknown auth strategy %q", c.Strategy)
}

// throttlingCodes are the statuses gosip would otherwise retry itself.
var throttlingCodes = []int{
	http.StatusUnauthorized,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// NewClient returns a gosip client for cfg. Its built-in retries are
// disabled; the spclient engine owns retry and backoff.
func NewClient(cfg Config) (*gosip.SPClient, error) {
	ac, err := cfg.authConfig()
	if err != nil {
		return nil, err
	}
	policies := make(map[int]int, len(throttlingCodes))
	for _, code := range throttlingCodes {
		policies[code] = 0
	}
	client := &gosip.SPClient{
		AuthCnfg:      ac,
		RetryPolicies: policies,
	}
	return client, nil
}
