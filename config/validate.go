package config

import (
	"fmt"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/mklimuk/bmi088/units"
)

// Validate checks configuration correctness. Zero values stand for defaults
// and are accepted. It does not mutate cfg.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: empty configuration", ErrInvalidConfig)
	}
	if err := validateBus(cfg.Bus); err != nil {
		return err
	}
	if err := validateAccel(cfg.Accel); err != nil {
		return err
	}
	return validateGyro(cfg.Gyro)
}

func validateBus(b BusConfig) error {
	switch b.Driver {
	case "", DriverPeriph, DriverGobot, DriverSim:
	default:
		return fmt.Errorf("%w: bus: unknown driver %q (periph, gobot or sim)", ErrInvalidConfig, b.Driver)
	}
	if b.Mode < 0 || b.Mode > 3 {
		return fmt.Errorf("%w: bus: spi mode %d out of range", ErrInvalidConfig, b.Mode)
	}
	if b.SpeedHz < 0 {
		return fmt.Errorf("%w: bus: negative speed", ErrInvalidConfig)
	}
	if b.TimeoutMs < 0 {
		return fmt.Errorf("%w: bus: negative timeout", ErrInvalidConfig)
	}
	if b.Driver == DriverGobot && b.AccelChip == b.GyroChip && b.AccelChip != 0 {
		return fmt.Errorf("%w: bus: accelerometer and gyroscope share chip select %d", ErrInvalidConfig, b.AccelChip)
	}
	if b.Driver != DriverGobot && b.AccelDevice != "" && b.AccelDevice == b.GyroDevice {
		return fmt.Errorf("%w: bus: accelerometer and gyroscope share device %q", ErrInvalidConfig, b.AccelDevice)
	}
	return nil
}

func validateAccel(a AccelConfig) error {
	if a.RangeG != 0 {
		if _, err := units.AccelRangeFromG(a.RangeG); err != nil {
			return fmt.Errorf("%w: accel: %w", ErrInvalidConfig, err)
		}
	}
	if a.ODRHz != 0 {
		if _, err := accel.ODRFromHz(a.ODRHz); err != nil {
			return fmt.Errorf("%w: accel: %w", ErrInvalidConfig, err)
		}
	}
	if a.Oversampling != 0 {
		if _, err := accel.OversamplingFromFactor(a.Oversampling); err != nil {
			return fmt.Errorf("%w: accel: %w", ErrInvalidConfig, err)
		}
	}
	if a.FIFODownsample != 0 {
		if _, err := accel.DownsampleFromFactor(a.FIFODownsample); err != nil {
			return fmt.Errorf("%w: accel: %w", ErrInvalidConfig, err)
		}
	}
	if _, ok := bmi088.ParseFIFOMode(a.FIFOMode); !ok {
		return fmt.Errorf("%w: accel: unknown FIFO mode %q", ErrInvalidConfig, a.FIFOMode)
	}
	return nil
}

func validateGyro(g GyroConfig) error {
	if g.RangeDPS != 0 {
		if _, err := units.GyroRangeFromDPS(g.RangeDPS); err != nil {
			return fmt.Errorf("%w: gyro: %w", ErrInvalidConfig, err)
		}
	}
	if (g.ODRHz == 0) != (g.BandwidthHz == 0) {
		return fmt.Errorf("%w: gyro: odr_hz and bandwidth_hz must be set together", ErrInvalidConfig)
	}
	if g.ODRHz != 0 {
		if _, err := gyro.BandwidthFor(g.ODRHz, g.BandwidthHz); err != nil {
			return fmt.Errorf("%w: gyro: %w", ErrInvalidConfig, err)
		}
	}
	if _, ok := bmi088.ParseFIFOMode(g.FIFOMode); !ok {
		return fmt.Errorf("%w: gyro: unknown FIFO mode %q", ErrInvalidConfig, g.FIFOMode)
	}
	return nil
}
