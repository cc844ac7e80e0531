package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/chanilino/romscrape/pkg/errors"
)

const sampleConfig = `
general:
  langs: [en, es]
  regions: [us, eu]
  download_path: "media/{media}/{name}"
  workers: 2
  enable_search_by_filename: true
  fallback_system: "Megadrive"
  media_dirs:
    screenshot: snaps
systems:
  "Megadrive":
    emulator: genesis-plus-gx
credentials:
  ssid: tester
  sspassword: secret
`

func TestLoadConfigFromReader(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "es"}, cfg.General.Langs)
	assert.Equal(t, []string{"us", "eu"}, cfg.General.Regions)
	assert.Equal(t, 2, cfg.General.Workers)
	assert.True(t, cfg.General.EnableSearchByFilename)
	assert.Equal(t, "Megadrive", cfg.General.FallbackSystem)
	assert.Equal(t, "tester", cfg.Credentials.SSID)
	assert.Equal(t, "secret", cfg.Credentials.SSPassword)

	emulator, ok := cfg.Emulator("Megadrive")
	require.True(t, ok)
	assert.Equal(t, "genesis-plus-gx", emulator)
}

func TestLoadConfigFromReader_Defaults(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader("general: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"en"}, cfg.General.Langs)
	assert.Equal(t, []string{"eu"}, cfg.General.Regions)
	assert.Equal(t, DefaultDownloadPath, cfg.General.DownloadPath)
	assert.Equal(t, DefaultHTTPTimeout, cfg.General.HTTPTimeout)
	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Positive(t, cfg.General.Workers)
	assert.False(t, cfg.General.EnableSearchByFilename)
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().General.Langs, cfg.General.Langs)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "broken yaml", raw: "general: ["},
		{name: "negative workers", raw: "general:\n  workers: -1\n"},
		{name: "bad log level", raw: "general:\n  log_level: loud\n"},
		{name: "bad template placeholder", raw: "general:\n  download_path: \"media/{categoria}\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.raw))
			require.Error(t, err)
		})
	}
}

func TestMediaDir(t *testing.T) {
	cfg, err := LoadConfigFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "snaps", cfg.MediaDir("screenshot"))
	assert.Equal(t, "wheel", cfg.MediaDir("wheel"))
}

func TestEmulator_MissingSection(t *testing.T) {
	cfg := DefaultConfig()
	_, ok := cfg.Emulator("Neo Geo")
	assert.False(t, ok)
}

func TestSaveAndReloadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := LoadConfigFromReader(strings.NewReader(sampleConfig))
	require.NoError(t, err)
	require.NoError(t, cfg.SaveConfig(path))

	// No stray temp file left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	reloaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.General.Langs, reloaded.General.Langs)
	assert.Equal(t, cfg.Credentials, reloaded.Credentials)
	assert.Equal(t, cfg.Systems, reloaded.Systems)
}
