// Package config provides configuration management for romscrape. It handles
// loading, validating and saving the YAML configuration file: locale and
// region priorities, the download path template, per-media-category
// directories, per-system emulator sections and the lookup-service
// credentials. The loaded Config is read-only during pipeline execution.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
	"github.com/chanilino/romscrape/pkg/fsutil"
	"github.com/chanilino/romscrape/pkg/pathtmpl"
)

// Config represents the application configuration.
type Config struct {
	General General `yaml:"general"`

	// Systems holds one section per system name, keyed exactly as the
	// lookup service names the system.
	Systems map[string]SystemConfig `yaml:"systems,omitempty"`

	Credentials Credentials `yaml:"credentials"`
}

// General holds the settings that drive the scraping pipeline.
type General struct {
	// Langs is the ordered locale priority list for text fields.
	Langs []string `yaml:"langs"`

	// Regions is the ordered region priority list applied after the
	// regions declared by the ROM record itself.
	Regions []string `yaml:"regions"`

	// DownloadPath is the destination template for media assets.
	// Placeholders: {name} {filename} {system} {emulator} {media}.
	DownloadPath string `yaml:"download_path"`

	// Workers sizes the hashing pool. Zero means one worker per CPU.
	Workers int `yaml:"workers"`

	// EnableSearchByFilename turns on the filename-lookup fallback when a
	// hash lookup finds nothing.
	EnableSearchByFilename bool `yaml:"enable_search_by_filename"`

	// FallbackSystem names the system used to scope filename lookups. An
	// empty or unknown name means the lookup is not scoped to a system.
	FallbackSystem string `yaml:"fallback_system,omitempty"`

	// MediaDirs overrides the directory name per media category.
	MediaDirs map[string]string `yaml:"media_dirs,omitempty"`

	HTTPTimeout time.Duration `yaml:"http_timeout"`
	LogLevel    string        `yaml:"log_level"`
}

// SystemConfig is a per-system section.
type SystemConfig struct {
	Emulator string `yaml:"emulator"`
}

// Credentials are the lookup-service session credentials. The developer
// credentials are fixed in the client, these identify the user account.
type Credentials struct {
	SSID       string `yaml:"ssid,omitempty"`
	SSPassword string `yaml:"sspassword,omitempty"`
}

// Default configuration values.
const (
	DefaultDownloadPath = "media/{media}/{name}"
	DefaultHTTPTimeout  = 30 * time.Second

	yamlIndent = 2
)

// templatePlaceholders are the substitution names the download path template
// may reference.
var templatePlaceholders = map[string]string{
	"name":     "",
	"filename": "",
	"system":   "",
	"emulator": "",
	"media":    "",
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		General: General{
			Langs:        []string{"en"},
			Regions:      []string{"eu"},
			DownloadPath: DefaultDownloadPath,
			Workers:      runtime.NumCPU(),
			HTTPTimeout:  DefaultHTTPTimeout,
			LogLevel:     "info",
		},
		Systems: map[string]SystemConfig{},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the
// defaults, not an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, pkgerrors.ErrEmptyConfigPath
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, pkgerrors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SaveConfig saves configuration to a file, atomically.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return pkgerrors.ErrEmptyConfigPath
	}

	if err := fsutil.EnsureFileDir(path); err != nil {
		return pkgerrors.Wrap(err, "failed to create config directory")
	}

	tempPath := path + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to create config file")
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(yamlIndent)
	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return pkgerrors.Wrap(pkgerrors.ErrConfigEncode, err.Error())
	}
	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return pkgerrors.Wrap(err, "failed to rename temporary config file")
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return pkgerrors.ErrConfigValidation
	}
	if len(c.General.Langs) == 0 {
		return pkgerrors.Wrap(pkgerrors.ErrConfigValidation, "general.langs cannot be empty")
	}
	if c.General.Workers < 0 {
		return pkgerrors.Wrap(pkgerrors.ErrConfigValidation, "general.workers cannot be negative")
	}
	if c.General.HTTPTimeout < 0 {
		return pkgerrors.Wrap(pkgerrors.ErrConfigValidation, "general.http_timeout cannot be negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.General.LogLevel)] {
		return pkgerrors.Wrapf(pkgerrors.ErrConfigValidation,
			"invalid log level '%s', must be one of: debug, info, warn, error", c.General.LogLevel)
	}
	// Catch template typos at load time instead of mid-pipeline.
	if _, err := pathtmpl.Render(c.General.DownloadPath, templatePlaceholders); err != nil {
		return pkgerrors.Wrap(pkgerrors.ErrConfigValidation, err.Error())
	}
	return nil
}

// MediaDir returns the directory name for a media category, honoring the
// per-category override.
func (c *Config) MediaDir(category string) string {
	if dir, ok := c.General.MediaDirs[category]; ok && dir != "" {
		return dir
	}
	return category
}

// Emulator returns the configured emulator for a system name, or ("", false)
// when the system has no section.
func (c *Config) Emulator(systemName string) (string, bool) {
	section, ok := c.Systems[systemName]
	if !ok || section.Emulator == "" {
		return "", false
	}
	return section.Emulator, true
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "romscrape", "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if len(c.General.Langs) == 0 {
		c.General.Langs = defaults.General.Langs
	}
	if len(c.General.Regions) == 0 {
		c.General.Regions = defaults.General.Regions
	}
	if c.General.DownloadPath == "" {
		c.General.DownloadPath = defaults.General.DownloadPath
	}
	if c.General.Workers == 0 {
		c.General.Workers = defaults.General.Workers
	}
	if c.General.HTTPTimeout == 0 {
		c.General.HTTPTimeout = defaults.General.HTTPTimeout
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = defaults.General.LogLevel
	}
	if c.Systems == nil {
		c.Systems = map[string]SystemConfig{}
	}
}
