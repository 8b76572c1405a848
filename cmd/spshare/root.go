package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"spshare/database"
	"spshare/infrastructure/config"
	"spshare/infrastructure/spclient"
	"spshare/logging"
	"spshare/spauth"
	"spshare/spquery"
)

var (
	// Populated by PersistentPreRunE.
	cfg    *config.AppConfig
	logger *logging.Logger

	siteFlag string
	modeFlag string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:   "spshare",
	Short: "SharePoint REST client and backup catalog",
	Long: `spshare talks to SharePoint Online over the REST/OData API and keeps a
SQLite catalog of site, list and item metadata for backup.

Credentials are read from SP_* environment variables or a .env file.
SP_AUTH_STRATEGY selects azurecert (default), saml or addin.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&siteFlag, "site", "", "site URL (defaults to SP_SITE_URL)")
	rootCmd.PersistentFlags().StringVar(&modeFlag, "mode", "overview", "query detail: overview or detail")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func setup(cmd *cobra.Command, _ []string) error {
	loadEnvironment()

	var err error
	cfg, err = config.LoadAppConfig()
	if err != nil {
		return err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger = logging.NewLogger(&cfg.Logging)
	logging.SetDefault(logger)

	logger.Debug("Configuration loaded",
		"command", cmd.Name(),
		"version", version,
		"log_level", cfg.Logging.Level,
		"db_path", cfg.Database.Path)
	return nil
}

func loadEnvironment() {
	// .env is optional
	_ = godotenv.Load()
}

func queryMode() spquery.Mode {
	return spquery.ParseMode(modeFlag)
}

// siteURL resolves --site, then SP_SITE_URL.
func siteURL() (string, error) {
	site := strings.TrimSpace(siteFlag)
	if site == "" {
		site = os.Getenv("SP_SITE_URL")
	}
	if site == "" {
		return "", fmt.Errorf("no site: pass --site or set SP_SITE_URL")
	}
	return site, nil
}

// newService authenticates and builds the request engine for site.
func newService(site string, reg prometheus.Registerer) (*spclient.Service, error) {
	auth, err := spauth.FromEnvForSite(site)
	if err != nil {
		return nil, err
	}

	client, err := spauth.NewClient(auth)
	if err != nil {
		return nil, err
	}

	opts := cfg.SharePoint.ServiceOptions()
	if reg != nil {
		metrics, err := spclient.NewMetrics(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		opts = append(opts, spclient.WithMetrics(metrics))
	}
	return spclient.NewService(site, client, opts...)
}

func openDatabase() (*database.Database, error) {
	return database.New(cfg.Database, logger.WithComponent("database"))
}
