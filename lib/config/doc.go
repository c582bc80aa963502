// Package config provides configuration management for ktaudit.
//
// Settings are read with viper from $HOME/.go-ktaudit/config.yaml
// ($KTAUDIT_HOME replaces $HOME), which is
// created from Defaults() on first run. A different file can be selected by
// setting CfgFile before InitConfig (the CLI wires this to --config).
//
// Durations are written as Go duration strings ("72h", "11m"). Key groups:
//
//	epoch.*  freshness thresholds handed to epoch.Validator
//	ntp.*    trusted time source (sntp.Timestamper)
//	audit.*  default chain file for the audit and watch commands
//	watch.*  re-audit cadence of the watch command
package config
