package cli

import (
	"fmt"

	"github.com/chanilino/romscrape/internal/logger"
	"github.com/chanilino/romscrape/pkg/config"
	"github.com/chanilino/romscrape/pkg/screenscraper"
)

// These variables will be set by the main package.
var (
	ConfigPath *string
	Verbose    *bool
	User       *string
	Password   *string
)

// getConfigPath resolves the effective configuration file path.
func getConfigPath() (string, error) {
	if ConfigPath != nil && *ConfigPath != "" {
		return *ConfigPath, nil
	}
	return config.GetDefaultConfigPath()
}

// loadConfig loads the configuration, applies the CLI flag overrides and
// initializes the logger from the resulting log level.
func loadConfig() (*config.Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if Verbose != nil && *Verbose {
		cfg.General.LogLevel = "debug"
	}
	if User != nil && *User != "" {
		cfg.Credentials.SSID = *User
	}
	if Password != nil && *Password != "" {
		cfg.Credentials.SSPassword = *Password
	}

	logger.InitLogger(cfg.General.LogLevel)
	return cfg, nil
}

// newClient builds the lookup-service client from the configuration.
func newClient(cfg *config.Config) *screenscraper.Client {
	return screenscraper.New(screenscraper.DefaultBaseURL, cfg.General.HTTPTimeout, screenscraper.Credentials{
		SSID:       cfg.Credentials.SSID,
		SSPassword: cfg.Credentials.SSPassword,
	})
}
