package config

import (
	"os"
	"path/filepath"

	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/go-i2p/go-ktaudit/lib/util"
	"github.com/go-i2p/go-ktaudit/lib/util/time/sntp"
	"github.com/go-i2p/logger"
	"github.com/samber/oops"
	"github.com/spf13/viper"
)

var (
	CfgFile string
	log     = logger.GetGoI2PLogger()
)

const KTAUDIT_BASE_DIR = ".go-ktaudit"

// InitConfig loads defaults, then the config file, creating the default
// file when neither CfgFile nor an existing file is found.
func InitConfig() error {
	if CfgFile != "" {
		viper.SetConfigFile(CfgFile)
	} else {
		viper.AddConfigPath(BuildConfigDirPath())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	return handleConfigFile()
}

func setDefaults() {
	d := Defaults()

	viper.SetDefault("epoch.max_interval", d.Epoch.MaxInterval.String())
	viper.SetDefault("epoch.audit_window", d.Epoch.AuditWindow.String())
	viper.SetDefault("epoch.max_clock_skew", d.Epoch.MaxClockSkew.String())

	viper.SetDefault("ntp.disabled", d.NTP.Disabled)
	viper.SetDefault("ntp.servers", d.NTP.Servers)
	viper.SetDefault("ntp.query_frequency", d.NTP.QueryFrequency.String())
	viper.SetDefault("ntp.concurring_servers", d.NTP.ConcurringServers)
	viper.SetDefault("ntp.timeout", d.NTP.Timeout.String())
	viper.SetDefault("ntp.max_clock_offset", d.NTP.MaxClockOffset.String())
	viper.SetDefault("ntp.max_sync_age", d.NTP.MaxSyncAge.String())

	viper.SetDefault("audit.chain_file", d.Audit.ChainFile)

	viper.SetDefault("watch.interval", d.Watch.Interval.String())
}

// CurrentConfig reads every key from viper.
func CurrentConfig() ConfigDefaults {
	return ConfigDefaults{
		Epoch: EpochDefaults{
			MaxInterval:  viper.GetDuration("epoch.max_interval"),
			AuditWindow:  viper.GetDuration("epoch.audit_window"),
			MaxClockSkew: viper.GetDuration("epoch.max_clock_skew"),
		},
		NTP: NTPDefaults{
			Disabled:          viper.GetBool("ntp.disabled"),
			Servers:           viper.GetStringSlice("ntp.servers"),
			QueryFrequency:    viper.GetDuration("ntp.query_frequency"),
			ConcurringServers: viper.GetInt("ntp.concurring_servers"),
			Timeout:           viper.GetDuration("ntp.timeout"),
			MaxClockOffset:    viper.GetDuration("ntp.max_clock_offset"),
			MaxSyncAge:        viper.GetDuration("ntp.max_sync_age"),
		},
		Audit: AuditDefaults{
			ChainFile: viper.GetString("audit.chain_file"),
		},
		Watch: WatchDefaults{
			Interval: viper.GetDuration("watch.interval"),
		},
	}
}

// Thresholds converts the epoch section for epoch.NewValidator.
func (c ConfigDefaults) Thresholds() epoch.Thresholds {
	return epoch.ThresholdsFromDurations(c.Epoch.MaxInterval, c.Epoch.AuditWindow)
}

// MaxClockSkewSeconds returns the epoch.max_clock_skew bound in seconds.
func (c ConfigDefaults) MaxClockSkewSeconds() int64 {
	return int64(c.Epoch.MaxClockSkew.Seconds())
}

// SNTPConfig converts the ntp section for sntp.NewTimestamper.
func (c ConfigDefaults) SNTPConfig() sntp.Config {
	return sntp.Config{
		Servers:           c.NTP.Servers,
		QueryFrequency:    c.NTP.QueryFrequency,
		ConcurringServers: c.NTP.ConcurringServers,
		Timeout:           c.NTP.Timeout,
		MaxClockOffset:    c.NTP.MaxClockOffset,
		Disabled:          c.NTP.Disabled,
	}
}

func createDefaultConfig(defaultConfigDir string) error {
	defaultConfigFile := filepath.Join(defaultConfigDir, "config.yaml")
	if err := os.MkdirAll(defaultConfigDir, 0o755); err != nil {
		return oops.Wrapf(err, "could not create config directory %s", defaultConfigDir)
	}
	if err := viper.WriteConfigAs(defaultConfigFile); err != nil {
		return oops.Wrapf(err, "could not write default config file %s", defaultConfigFile)
	}
	log.Debugf("Created default configuration at: %s", defaultConfigFile)
	return nil
}

func handleConfigFile() error {
	err := viper.ReadInConfig()
	if err == nil {
		log.Debugf("Using config file: %s", viper.ConfigFileUsed())
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok && CfgFile == "" {
		return createDefaultConfig(BuildConfigDirPath())
	}
	if CfgFile != "" && !util.CheckFileExists(CfgFile) {
		return oops.Wrapf(err, "config file %s is not found", CfgFile)
	}
	return oops.Wrapf(err, "error reading config file")
}

// BuildConfigDirPath returns $HOME/.go-ktaudit.
func BuildConfigDirPath() string {
	return filepath.Join(util.UserHome(), KTAUDIT_BASE_DIR)
}
