// Package config loads the receiver configuration from a YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds accepted by the listener and learner.
const (
	SourceGPIO   = "gpio"
	SourceSerial = "serial"
)

type Config struct {
	// Source selects where bursts come from: "gpio" polls the receiver pin
	// directly, "serial" reads timing frames from a microcontroller.
	Source string `yaml:"source"`

	Pin            int `yaml:"pin"`
	PollIntervalUs int `yaml:"poll_interval_us"`
	WindowUs       int `yaml:"window_us"`

	Serial SerialConfig `yaml:"serial"`

	Decoder DecoderConfig `yaml:"decoder"`

	KeymapFile string `yaml:"keymap_file"`
	Listen     string `yaml:"listen"`

	EventPause    time.Duration `yaml:"-"`
	RawEventPause string        `yaml:"event_pause"`

	Log LogConfig `yaml:"log"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// DecoderConfig carries NEC timing tolerances in microseconds. Zeroes fall
// back to the decoder defaults.
type DecoderConfig struct {
	LeaderMarkMinUs  int `yaml:"leader_mark_min_us"`
	LeaderMarkMaxUs  int `yaml:"leader_mark_max_us"`
	LeaderSpaceMinUs int `yaml:"leader_space_min_us"`
	LeaderSpaceMaxUs int `yaml:"leader_space_max_us"`
	BitThresholdUs   int `yaml:"bit_threshold_us"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file is given: GPIO13, the
// stock sampler and decoder timings, events on :8080.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.Source == "" {
		c.Source = SourceGPIO
	}
	if c.Pin == 0 {
		c.Pin = 13
	}
	if c.PollIntervalUs == 0 {
		c.PollIntervalUs = 30
	}
	if c.WindowUs == 0 {
		c.WindowUs = 200000
	}
	if c.Serial.Baud == 0 {
		c.Serial.Baud = 9600
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.RawEventPause == "" {
		c.RawEventPause = "200ms"
	}
	d, err := time.ParseDuration(c.RawEventPause)
	if err != nil {
		return fmt.Errorf("parse event_pause %q: %w", c.RawEventPause, err)
	}
	c.EventPause = d
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Source {
	case SourceGPIO, SourceSerial:
	default:
		return fmt.Errorf("invalid source %q (gpio|serial)", c.Source)
	}
	if c.Pin < 0 {
		return fmt.Errorf("pin must not be negative, got %d", c.Pin)
	}
	if c.PollIntervalUs <= 0 {
		return fmt.Errorf("poll_interval_us must be positive, got %d", c.PollIntervalUs)
	}
	if c.WindowUs <= 0 {
		return fmt.Errorf("window_us must be positive, got %d", c.WindowUs)
	}
	if c.Source == SourceSerial && c.Serial.Port == "" {
		return fmt.Errorf("serial.port required when source is %q", SourceSerial)
	}
	if c.EventPause < 0 {
		return fmt.Errorf("event_pause must not be negative, got %s", c.EventPause)
	}
	return nil
}
