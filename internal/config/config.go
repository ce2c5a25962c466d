// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml"

	"gitlab.com/postmarketOS/gnss_status/internal/heading"
)

type Config struct {
	DevicePath     string `toml:"device_path"`
	BaudRate       int    `toml:"device_baud_rate"`
	RawReadTimeout string `toml:"read_timeout"`

	FIRWindow        int     `toml:"fir_window"`
	HeadingOffsetDeg float64 `toml:"heading_offset_deg"`

	RawSnapshotInterval string `toml:"snapshot_interval"`
	RawStatusInterval   string `toml:"status_interval"`

	Socket     string `toml:"socket"`
	OwnerGroup string `toml:"group"`

	HTTPListen string `toml:"http_listen"`

	MQTTBroker   string `toml:"mqtt_broker"`
	MQTTTopic    string `toml:"mqtt_topic"`
	MQTTClientID string `toml:"mqtt_client_id"`

	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Parsed from the Raw* strings by Validate.
	ReadTimeout      time.Duration `toml:"-"`
	SnapshotInterval time.Duration `toml:"-"`
	StatusInterval   time.Duration `toml:"-"`
}

func Default() *Config {
	return &Config{
		BaudRate:            38400,
		RawReadTimeout:      "1s",
		FIRWindow:           heading.DefaultWindow,
		RawSnapshotInterval: "200ms",
		RawStatusInterval:   "1s",
		MQTTTopic:           "gnss/status",
		MQTTClientID:        "gnss_status",
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Parse reads a TOML config file. Keys missing from the file keep their
// defaults.
func Parse(file string) (c *Config, err error) {
	contents, err := os.ReadFile(file)
	if err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
		return
	}

	c = Default()

	if err = toml.Unmarshal(contents, c); err != nil {
		err = fmt.Errorf("config.Parse(): %w", err)
	}

	return
}

// Validate checks the configuration and parses its durations. needDevice is
// false when input comes from somewhere other than DevicePath, e.g. a replay
// file.
func (c *Config) Validate(needDevice bool) (err error) {
	if needDevice && strings.TrimSpace(c.DevicePath) == "" {
		return fmt.Errorf("config.Validate(): device_path is required")
	}
	if c.BaudRate <= 0 {
		return fmt.Errorf("config.Validate(): invalid device_baud_rate %d", c.BaudRate)
	}

	if c.ReadTimeout, err = time.ParseDuration(c.RawReadTimeout); err != nil {
		return fmt.Errorf("config.Validate(): read_timeout: %w", err)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("config.Validate(): read_timeout must be positive")
	}
	if c.SnapshotInterval, err = time.ParseDuration(c.RawSnapshotInterval); err != nil {
		return fmt.Errorf("config.Validate(): snapshot_interval: %w", err)
	}
	if c.SnapshotInterval <= 0 {
		return fmt.Errorf("config.Validate(): snapshot_interval must be positive")
	}
	if c.StatusInterval, err = time.ParseDuration(c.RawStatusInterval); err != nil {
		return fmt.Errorf("config.Validate(): status_interval: %w", err)
	}
	if c.StatusInterval < 0 {
		return fmt.Errorf("config.Validate(): status_interval must not be negative")
	}

	if c.FIRWindow < 1 {
		c.FIRWindow = 1
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return fmt.Errorf("config.Validate(): unknown log_format %q", c.LogFormat)
	}
	return nil
}
