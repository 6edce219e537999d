// Package config loads and validates the daemon's configuration
// (spec §6): the router's own name, the sync prefix its LSAs are
// published under, and the timers governing interest retry, routing
// recomputation, and LSA refresh.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ndn-lsr/nlsr/internal/wire"
)

// Config holds the options recognized by the daemon (spec §6).
type Config struct {
	RouterNameStr           string `yaml:"routerName"`
	ChronosyncLsaPrefixStr  string `yaml:"chronosyncLsaPrefix"`
	InterestResendTimeMs    int    `yaml:"interestResendTime"`
	RoutingCalcIntervalMs   int    `yaml:"routingCalcInterval"`
	LsaRefreshTimeSec       int    `yaml:"lsaRefreshTime"`
	MulticastRoutingEnabled bool   `yaml:"multicastRouting"`
	RouterDeadIntervalSec   int    `yaml:"routerDeadInterval"`
	SequenceFilePath        string `yaml:"sequenceFile"`

	routerName       wire.Name
	lsaPrefix        wire.Name
	advertDataPrefix wire.Name
}

// Default timers used when the config omits them.
const (
	DefaultInterestResendTimeMs  = 60_000
	DefaultRoutingCalcIntervalMs = 15_000
	DefaultLsaRefreshTimeSec     = 1800
	DefaultRouterDeadIntervalSec = 5400
)

// Load reads and parses a YAML configuration file from path.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Parse(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse validates the configuration and derives its Name-typed fields.
// It mirrors the validate-on-load shape the reference daemon uses
// before starting its engine (dv/cmd/executor.go's config.Parse()
// call).
func (c *Config) Parse() error {
	if c.RouterNameStr == "" {
		return fmt.Errorf("config: routerName is required")
	}
	if c.ChronosyncLsaPrefixStr == "" {
		return fmt.Errorf("config: chronosyncLsaPrefix is required")
	}

	if c.InterestResendTimeMs <= 0 {
		c.InterestResendTimeMs = DefaultInterestResendTimeMs
	}
	if c.RoutingCalcIntervalMs <= 0 {
		c.RoutingCalcIntervalMs = DefaultRoutingCalcIntervalMs
	}
	if c.LsaRefreshTimeSec <= 0 {
		c.LsaRefreshTimeSec = DefaultLsaRefreshTimeSec
	}
	if c.RouterDeadIntervalSec <= 0 {
		c.RouterDeadIntervalSec = DefaultRouterDeadIntervalSec
	}
	if c.SequenceFilePath == "" {
		c.SequenceFilePath = "sequence.txt"
	}

	c.routerName = wire.NameFromStr(c.RouterNameStr)
	c.lsaPrefix = wire.NameFromStr(c.ChronosyncLsaPrefixStr)
	c.advertDataPrefix = c.lsaPrefix.Append(c.routerName...)

	return nil
}

// RouterName returns this router's own name.
func (c *Config) RouterName() wire.Name { return c.routerName }

// LsaPrefix returns the sync group prefix LSAs are published under.
func (c *Config) LsaPrefix() wire.Name { return c.lsaPrefix }

// LsaDataPrefix returns the prefix this router's own LSAs are published
// under: ChronosyncLsaPrefix/RouterName.
func (c *Config) LsaDataPrefix() wire.Name { return c.advertDataPrefix }

// InterestResendTime returns the configured interest resend interval.
// No component reads it: the sync handler retries a failed LSA fetch
// after its own fixed delay.
func (c *Config) InterestResendTime() time.Duration {
	return time.Duration(c.InterestResendTimeMs) * time.Millisecond
}

// RoutingCalcInterval is the period of the recurring routing-table
// recalculation. Recalculations triggered by an adjacency LSA change
// run in addition to it.
func (c *Config) RoutingCalcInterval() time.Duration {
	return time.Duration(c.RoutingCalcIntervalMs) * time.Millisecond
}

// LsaRefreshTime is the lifetime given to a locally-originated LSA: its
// expiration time is set this far past the moment it is published.
// Nothing republishes a local LSA on a timer.
func (c *Config) LsaRefreshTime() time.Duration {
	return time.Duration(c.LsaRefreshTimeSec) * time.Second
}

// RouterDeadInterval returns the configured neighbor dead interval. No
// component in this module reads it.
func (c *Config) RouterDeadInterval() time.Duration {
	return time.Duration(c.RouterDeadIntervalSec) * time.Second
}

// MulticastRouting reports whether multicast tree computation is
// enabled.
func (c *Config) MulticastRouting() bool { return c.MulticastRoutingEnabled }

// SequenceFile returns the configured path of the sequence-number
// file (spec §6), relative to the config file unless absolute.
func (c *Config) SequenceFile() string { return c.SequenceFilePath }
