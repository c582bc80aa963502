package config

import (
	"time"

	"github.com/go-i2p/go-ktaudit/lib/epoch"
	"github.com/go-i2p/go-ktaudit/lib/util/time/skew"
	"github.com/go-i2p/logger"
)

// ConfigDefaults contains every configurable value with its default.
type ConfigDefaults struct {
	Epoch EpochDefaults
	NTP   NTPDefaults
	Audit AuditDefaults
	Watch WatchDefaults
}

// EpochDefaults are the freshness thresholds.
type EpochDefaults struct {
	// MaxInterval bounds the cadence between epochs and the age of the
	// newest one.
	// Default: 72 hours
	MaxInterval time.Duration

	// AuditWindow is how close to the 90-day cutoff a record must be to be
	// audited.
	// Default: 72 hours
	AuditWindow time.Duration

	// MaxClockSkew bounds how far a server timestamp may sit in the future.
	// Default: 1 hour
	MaxClockSkew time.Duration
}

// NTPDefaults configure the trusted time source.
type NTPDefaults struct {
	// Disabled makes the system clock the time source.
	Disabled bool

	// Servers are queried at random.
	// Default: 0.pool.ntp.org, 1.pool.ntp.org, 2.pool.ntp.org
	Servers []string

	// QueryFrequency is the base interval between sync cycles.
	// Default: 11 minutes
	QueryFrequency time.Duration

	// ConcurringServers is the number of agreeing samples per cycle (1-4).
	// Default: 3
	ConcurringServers int

	// Timeout applies to each query.
	// Default: 10 seconds
	Timeout time.Duration

	// MaxClockOffset rejects responses claiming a larger correction.
	// Default: 10 seconds
	MaxClockOffset time.Duration

	// MaxSyncAge is how long a correction stays trusted.
	// Default: 1 hour
	MaxSyncAge time.Duration
}

// AuditDefaults configure the audit command.
type AuditDefaults struct {
	// ChainFile is used when no file is given on the command line.
	ChainFile string
}

// WatchDefaults configure the watch command.
type WatchDefaults struct {
	// Interval between audits.
	// Default: 10 minutes
	Interval time.Duration
}

// Defaults returns the built-in configuration.
func Defaults() ConfigDefaults {
	return ConfigDefaults{
		Epoch: EpochDefaults{
			MaxInterval:  time.Duration(epoch.MaxEpochInterval) * time.Second,
			AuditWindow:  time.Duration(epoch.MaxEpochInterval) * time.Second,
			MaxClockSkew: time.Duration(skew.MaxClockSkew) * time.Second,
		},
		NTP: NTPDefaults{
			Servers:           []string{"0.pool.ntp.org", "1.pool.ntp.org", "2.pool.ntp.org"},
			QueryFrequency:    11 * time.Minute,
			ConcurringServers: 3,
			Timeout:           10 * time.Second,
			MaxClockOffset:    10 * time.Second,
			MaxSyncAge:        time.Hour,
		},
		Watch: WatchDefaults{
			Interval: 10 * time.Minute,
		},
	}
}

// Validate checks a configuration for values the validators cannot work with.
func Validate(cfg ConfigDefaults) error {
	log.WithFields(logger.Fields{
		"at":     "Validate",
		"reason": "verification_requested",
	}).Debug("validating configuration")

	validators := []func() error{
		func() error { return validateEpoch(cfg.Epoch) },
		func() error { return validateNTP(cfg.NTP) },
		func() error { return validateWatch(cfg.Watch) },
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			log.WithError(err).Error("Configuration validation failed")
			return err
		}
	}
	return nil
}

func validateEpoch(e EpochDefaults) error {
	if e.MaxInterval < time.Second {
		return newValidationError("Epoch.MaxInterval must be at least 1 second")
	}
	if e.AuditWindow < 0 {
		return newValidationError("Epoch.AuditWindow must not be negative")
	}
	if e.MaxClockSkew < time.Second {
		return newValidationError("Epoch.MaxClockSkew must be at least 1 second")
	}
	return nil
}

func validateNTP(n NTPDefaults) error {
	if n.MaxSyncAge < 0 {
		return newValidationError("NTP.MaxSyncAge must not be negative")
	}
	if n.Disabled {
		return nil
	}
	if len(n.Servers) == 0 {
		return newValidationError("NTP.Servers must not be empty unless NTP is disabled")
	}
	if n.ConcurringServers < 1 || n.ConcurringServers > 4 {
		log.WithField("concurring_servers", n.ConcurringServers).Error("Invalid NTP configuration")
		return newValidationError("NTP.ConcurringServers must be between 1 and 4")
	}
	if n.Timeout <= 0 {
		return newValidationError("NTP.Timeout must be positive")
	}
	return nil
}

func validateWatch(w WatchDefaults) error {
	if w.Interval < time.Second {
		return newValidationError("Watch.Interval must be at least 1 second")
	}
	return nil
}

type validationError struct {
	message string
}

func newValidationError(message string) error {
	return &validationError{message: message}
}

func (e *validationError) Error() string {
	return "configuration validation failed: " + e.message
}
