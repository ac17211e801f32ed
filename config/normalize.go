package config

import (
	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/mklimuk/bmi088/spi"
	"github.com/mklimuk/bmi088/units"
)

const (
	defaultAccelDevice = "/dev/spidev0.0"
	defaultGyroDevice  = "/dev/spidev0.1"
	defaultGyroChip    = 1
)

// Normalize fills unset fields with defaults. Sensor defaults are the logging
// configuration of the drivers. It must be called after Validate.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}
	b := &cfg.Bus
	if b.Driver == "" {
		b.Driver = DriverPeriph
	}
	if b.AccelDevice == "" {
		b.AccelDevice = defaultAccelDevice
	}
	if b.GyroDevice == "" {
		b.GyroDevice = defaultGyroDevice
	}
	if b.AccelChip == 0 && b.GyroChip == 0 {
		b.GyroChip = defaultGyroChip
	}
	if b.SpeedHz == 0 {
		b.SpeedHz = spi.DefaultSpeed
	}
	if b.TimeoutMs == 0 {
		b.TimeoutMs = int(bmi088.DefaultTxTimeout.Milliseconds())
	}

	defAccel := FromAccel(accel.LoggingConfig)
	a := &cfg.Accel
	if a.RangeG == 0 {
		a.RangeG = defAccel.RangeG
	}
	if a.ODRHz == 0 {
		a.ODRHz = defAccel.ODRHz
	}
	if a.Oversampling == 0 {
		a.Oversampling = defAccel.Oversampling
	}
	if a.FIFOMode == "" {
		a.FIFOMode = defAccel.FIFOMode
	}
	if a.FIFODownsample == 0 {
		a.FIFODownsample = defAccel.FIFODownsample
	}

	defGyro := FromGyro(gyro.LoggingConfig)
	g := &cfg.Gyro
	if g.RangeDPS == 0 {
		g.RangeDPS = defGyro.RangeDPS
	}
	if g.ODRHz == 0 {
		g.ODRHz = defGyro.ODRHz
		g.BandwidthHz = defGyro.BandwidthHz
	}
	if g.FIFOMode == "" {
		g.FIFOMode = defGyro.FIFOMode
	}
}

// FromAccel expresses a driver configuration in physical units.
func FromAccel(c accel.Config) AccelConfig {
	return AccelConfig{
		RangeG:         c.Range.G(),
		ODRHz:          c.ODR.Hz(),
		Oversampling:   c.Oversampling.Factor(),
		FIFOMode:       c.FIFOMode.String(),
		FIFODownsample: c.FIFODownsample.Factor(),
	}
}

func FromGyro(c gyro.Config) GyroConfig {
	return GyroConfig{
		RangeDPS:    c.Range.DegreesPerSecond(),
		ODRHz:       c.Bandwidth.ODRHz(),
		BandwidthHz: c.Bandwidth.FilterHz(),
		FIFOMode:    c.FIFOMode.String(),
	}
}

// Sensor converts a normalized section into the driver configuration.
func (a AccelConfig) Sensor() (accel.Config, error) {
	r, err := units.AccelRangeFromG(a.RangeG)
	if err != nil {
		return accel.Config{}, err
	}
	odr, err := accel.ODRFromHz(a.ODRHz)
	if err != nil {
		return accel.Config{}, err
	}
	osr, err := accel.OversamplingFromFactor(a.Oversampling)
	if err != nil {
		return accel.Config{}, err
	}
	downs, err := accel.DownsampleFromFactor(a.FIFODownsample)
	if err != nil {
		return accel.Config{}, err
	}
	mode, _ := bmi088.ParseFIFOMode(a.FIFOMode)
	return accel.Config{
		Range:          r,
		Oversampling:   osr,
		ODR:            odr,
		FIFOMode:       mode,
		FIFODownsample: downs,
	}, nil
}

func (g GyroConfig) Sensor() (gyro.Config, error) {
	r, err := units.GyroRangeFromDPS(g.RangeDPS)
	if err != nil {
		return gyro.Config{}, err
	}
	bw, err := gyro.BandwidthFor(g.ODRHz, g.BandwidthHz)
	if err != nil {
		return gyro.Config{}, err
	}
	mode, _ := bmi088.ParseFIFOMode(g.FIFOMode)
	return gyro.Config{Range: r, Bandwidth: bw, FIFOMode: mode}, nil
}
