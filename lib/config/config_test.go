package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/go-i2p/go-ktaudit/lib/util"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCurrentConfigDefaultsRoundTrip verifies that every default written by
// setDefaults() is read back by CurrentConfig() under the same key.
func TestCurrentConfigDefaultsRoundTrip(t *testing.T) {
	viper.Reset()
	setDefaults()

	assert.Equal(t, Defaults(), CurrentConfig())
}

func TestCurrentConfigViperOverride(t *testing.T) {
	viper.Reset()
	setDefaults()
	viper.Set("epoch.max_interval", "24h")
	viper.Set("ntp.servers", []string{"time.example.org"})
	viper.Set("ntp.disabled", true)

	cfg := CurrentConfig()
	assert.Equal(t, 24*time.Hour, cfg.Epoch.MaxInterval)
	assert.Equal(t, []string{"time.example.org"}, cfg.NTP.Servers)
	assert.True(t, cfg.NTP.Disabled)
	assert.Equal(t, int64(86400), cfg.Thresholds().MaxEpochInterval)
	assert.True(t, cfg.SNTPConfig().Disabled)
}

func TestDefaultsConversions(t *testing.T) {
	d := Defaults()

	assert.Equal(t, epoch.DefaultThresholds(), d.Thresholds())
	assert.Equal(t, int64(3600), d.MaxClockSkewSeconds())

	sc := d.SNTPConfig()
	assert.Equal(t, d.NTP.Servers, sc.Servers)
	assert.Equal(t, 3, sc.ConcurringServers)
	assert.Equal(t, 11*time.Minute, sc.QueryFrequency)
}

func TestInitConfigWithFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "ktaudit.yaml")
	require.NoError(t, os.WriteFile(path, []byte("epoch:\n  max_interval: 48h\nwatch:\n  interval: 30s\n"), 0o600))

	CfgFile = path
	defer func() { CfgFile = "" }()

	require.NoError(t, InitConfig())
	cfg := CurrentConfig()
	assert.Equal(t, 48*time.Hour, cfg.Epoch.MaxInterval)
	assert.Equal(t, 30*time.Second, cfg.Watch.Interval)
	assert.Equal(t, Defaults().Epoch.AuditWindow, cfg.Epoch.AuditWindow)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	viper.Reset()
	CfgFile = filepath.Join(t.TempDir(), "absent.yaml")
	defer func() { CfgFile = "" }()

	assert.Error(t, InitConfig())
}

func TestInitConfigCreatesDefaultFile(t *testing.T) {
	viper.Reset()
	home := t.TempDir()
	t.Setenv(util.HomeEnv, home)

	require.NoError(t, InitConfig())
	assert.FileExists(t, filepath.Join(home, KTAUDIT_BASE_DIR, "config.yaml"))

	viper.Reset()
	require.NoError(t, InitConfig(), "second run reads the created file")
	assert.Equal(t, Defaults(), CurrentConfig())
}
