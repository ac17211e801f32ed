// Package config holds the YAML configuration of the bmi088 tool: how the
// dies are reached and which settings they get.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Bus drivers.
const (
	DriverPeriph = "periph"
	DriverGobot  = "gobot"
	DriverSim    = "sim"
)

type Config struct {
	Bus   BusConfig   `yaml:"bus"`
	Accel AccelConfig `yaml:"accel"`
	Gyro  GyroConfig  `yaml:"gyro"`
}

// ---- BUS ----

type BusConfig struct {
	Driver string `yaml:"driver"`

	// periph: spidev port names
	AccelDevice string `yaml:"accel_device"`
	GyroDevice  string `yaml:"gyro_device"`

	// gobot: bus and chip select numbers
	Bus       int `yaml:"bus"`
	AccelChip int `yaml:"accel_chip"`
	GyroChip  int `yaml:"gyro_chip"`

	SpeedHz   int64 `yaml:"speed_hz"`
	Mode      int   `yaml:"mode"`
	TimeoutMs int   `yaml:"timeout_ms"`
}

func (b BusConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutMs) * time.Millisecond
}

// ---- SENSORS ----

type AccelConfig struct {
	RangeG         int     `yaml:"range_g"`
	ODRHz          float64 `yaml:"odr_hz"`
	Oversampling   int     `yaml:"oversampling"`
	FIFOMode       string  `yaml:"fifo_mode"`
	FIFODownsample int     `yaml:"fifo_downsample"`
}

type GyroConfig struct {
	RangeDPS    int    `yaml:"range_dps"`
	ODRHz       int    `yaml:"odr_hz"`
	BandwidthHz int    `yaml:"bandwidth_hz"`
	FIFOMode    string `yaml:"fifo_mode"`
}

// Load reads, validates and normalizes the file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()
	cfg := &Config{}
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	// an empty file means defaults
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not parse config %s: %w", path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	Normalize(cfg)
	return cfg, nil
}

// Default returns the normalized empty configuration.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}
