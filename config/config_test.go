package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/mklimuk/bmi088/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bmi088.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
bus:
  driver: gobot
  bus: 1
  accel_chip: 0
  gyro_chip: 1
  speed_hz: 1000000
accel:
  range_g: 6
  odr_hz: 12.5
  oversampling: 4
  fifo_mode: stop-at-full
  fifo_downsample: 16
gyro:
  range_dps: 250
  odr_hz: 200
  bandwidth_hz: 23
  fifo_mode: disabled
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverGobot, cfg.Bus.Driver)
	assert.Equal(t, 1, cfg.Bus.Bus)
	assert.Equal(t, int64(1000000), cfg.Bus.SpeedHz)
	assert.Equal(t, int64(100), cfg.Bus.Timeout().Milliseconds())

	a, err := cfg.Accel.Sensor()
	require.NoError(t, err)
	assert.Equal(t, accel.Config{
		Range:          units.AccelRange6G,
		Oversampling:   accel.Oversampling4,
		ODR:            accel.ODR12_5,
		FIFOMode:       bmi088.FIFOStopAtFull,
		FIFODownsample: 4,
	}, a)

	g, err := cfg.Gyro.Sensor()
	require.NoError(t, err)
	assert.Equal(t, gyro.Config{
		Range:     units.GyroRange250,
		Bandwidth: gyro.ODR200BW23,
		FIFOMode:  bmi088.FIFODisabled,
	}, g)
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	a, err := cfg.Accel.Sensor()
	require.NoError(t, err)
	assert.Equal(t, accel.LoggingConfig, a)
	g, err := cfg.Gyro.Sensor()
	require.NoError(t, err)
	assert.Equal(t, gyro.LoggingConfig, g)
	assert.Equal(t, DriverPeriph, cfg.Bus.Driver)
	assert.Equal(t, "/dev/spidev0.1", cfg.Bus.GyroDevice)
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(writeConfig(t, "accel:\n  rang_g: 6\n"))
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"unknown driver", Config{Bus: BusConfig{Driver: "usb"}}},
		{"spi mode", Config{Bus: BusConfig{Mode: 4}}},
		{"shared chip select", Config{Bus: BusConfig{Driver: DriverGobot, AccelChip: 1, GyroChip: 1}}},
		{"shared device", Config{Bus: BusConfig{AccelDevice: "SPI0.0", GyroDevice: "SPI0.0"}}},
		{"accel range", Config{Accel: AccelConfig{RangeG: 16}}},
		{"accel odr", Config{Accel: AccelConfig{ODRHz: 3200}}},
		{"accel oversampling", Config{Accel: AccelConfig{Oversampling: 3}}},
		{"accel downsample", Config{Accel: AccelConfig{FIFODownsample: 3}}},
		{"accel fifo mode", Config{Accel: AccelConfig{FIFOMode: "ring"}}},
		{"gyro range", Config{Gyro: GyroConfig{RangeDPS: 4000}}},
		{"gyro bandwidth alone", Config{Gyro: GyroConfig{BandwidthHz: 116}}},
		{"gyro bandwidth pair", Config{Gyro: GyroConfig{ODRHz: 1000, BandwidthHz: 47}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.ErrorIs(t, Validate(&test.cfg), ErrInvalidConfig)
		})
	}
	assert.NoError(t, Validate(&Config{}))
	assert.ErrorIs(t, Validate(nil), ErrInvalidConfig)
}

func TestFromAccel_RoundTrip(t *testing.T) {
	c := FromAccel(accel.LoggingConfig)
	assert.Equal(t, AccelConfig{
		RangeG:         24,
		ODRHz:          400,
		Oversampling:   1,
		FIFOMode:       "stream",
		FIFODownsample: 1,
	}, c)
	back, err := c.Sensor()
	require.NoError(t, err)
	assert.Equal(t, accel.LoggingConfig, back)
}

func TestDefault_MarshalsToYAML(t *testing.T) {
	out, err := yaml.Marshal(Default())
	require.NoError(t, err)
	var cfg Config
	require.NoError(t, yaml.Unmarshal(out, &cfg))
	assert.Equal(t, *Default(), cfg)
}
