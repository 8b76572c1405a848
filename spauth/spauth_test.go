package spauth

import (
	"testing"

	"github.com/koltyakov/gosip/auth/addin"
	"github.com/koltyakov/gosip/auth/azurecert"
	"github.com/koltyakov/gosip/auth/saml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"SP_AUTH_STRATEGY", "SP_SITE_URL", "SP_TENANT_ID", "SP_CLIENT_ID", "SP_CLIENT_SECRET",
		"SP_REALM", "SP_CERT_PATH", "SP_CERT_PASSWORD", "SP_USERNAME", "SP_PASSWORD",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaultsToAzureCert(t *testing.T) {
	clearEnv(t)
	t.Setenv("SP_SITE_URL", "https://contoso.sharepoint.com/sites/a")
	t.Setenv("SP_TENANT_ID", "tenant")
	t.Setenv("SP_CLIENT_ID", "client")
	t.Setenv("SP_CERT_PATH", "/tmp/cert.pfx")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StrategyAzureCert, cfg.Strategy)

	client, err := NewClient(cfg)
	require.NoError(t, err)
	ac, ok := client.AuthCnfg.(*azurecert.AuthCnfg)
	require.True(t, ok)
	assert.Equal(t, "tenant", ac.TenantID)
	assert.Equal(t, "/tmp/cert.pfx", ac.CertPath)
}

func TestFromEnvReportsMissingSettings(t *testing.T) {
	clearEnv(t)
	t.Setenv("SP_AUTH_STRATEGY", "SAML")
	t.Setenv("SP_SITE_URL", "https://contoso.sharepoint.com")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SP_USERNAME, SP_PASSWORD")
}

func TestFromEnvForSiteOverridesSiteURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("SP_AUTH_STRATEGY", "addin")
	t.Setenv("SP_CLIENT_ID", "client")
	t.Setenv("SP_CLIENT_SECRET", "secret")

	_, err := FromEnv()
	require.Error(t, err)

	cfg, err := FromEnvForSite("https://contoso.sharepoint.com/sites/b")
	require.NoError(t, err)
	assert.Equal(t, "https://contoso.sharepoint.com/sites/b", cfg.SiteURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"saml", Config{Strategy: StrategySAML, SiteURL: "https://x", Username: "u", Password: "p"}, ""},
		{"addin", Config{Strategy: StrategyAddin, SiteURL: "https://x", ClientID: "c", ClientSecret: "s"}, ""},
		{"addin missing secret", Config{Strategy: StrategyAddin, SiteURL: "https://x", ClientID: "c"}, "SP_CLIENT_SECRET"},
		{"no site", Config{Strategy: StrategySAML, Username: "u", Password: "p"}, "SP_SITE_URL"},
		{"unknown", Config{Strategy: "ntlm", SiteURL: "https://x"}, "unknown auth strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClientStrategies(t *testing.T) {
	client, err := NewClient(Config{Strategy: StrategySAML, SiteURL: "https://x", Username: "u", Password: "p"})
	require.NoError(t, err)
	_, ok := client.AuthCnfg.(*saml.AuthCnfg)
	assert.True(t, ok)

	client, err = NewClient(Config{Strategy: StrategyAddin, SiteURL: "https://x", ClientID: "c", ClientSecret: "s", Realm: "r"})
	require.NoError(t, err)
	ac, ok := client.AuthCnfg.(*addin.AuthCnfg)
	require.True(t, ok)
	assert.Equal(t, "r", ac.Realm)

	_, err = NewClient(Config{Strategy: "kerberos"})
	assert.Error(t, err)
}

func TestNewClientDisablesBuiltInRetries(t *testing.T) {
	client, err := NewClient(Config{Strategy: StrategySAML, SiteURL: "https://x", Username: "u", Password: "p"})
	require.NoError(t, err)
	for _, code := range throttlingCodes {
		retries, ok := client.RetryPolicies[code]
		assert.True(t, ok, "status %d", code)
		assert.Zero(t, retries, "status %d", code)
	}
}
