package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/mklimuk/bmi088/config"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/mklimuk/bmi088/imu"
	"github.com/mklimuk/bmi088/sim"
	"github.com/mklimuk/bmi088/snsctx"
	"github.com/mklimuk/bmi088/spi"
	"github.com/urfave/cli/v2"
	"gobot.io/x/gobot/v2/platforms/friendlyelec/nanopi"
	"periph.io/x/conn/v3/physic"
	periphspi "periph.io/x/conn/v3/spi"
)

// device is an opened BMI088 with direct access to both drivers.
type device struct {
	imu   *imu.IMU
	accel *accel.Accelerometer
	gyro  *gyro.Gyroscope
	cfg   *config.Config
	close func() error
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, console.Exit(console.ExitConfig, "%s", err)
		}
	} else {
		cfg = config.Default()
	}
	if d := c.String("driver"); d != "" {
		cfg.Bus.Driver = d
		if err := config.Validate(cfg); err != nil {
			return nil, console.Exit(console.ExitConfig, "%s", err)
		}
	}
	return cfg, nil
}

func commandContext(c *cli.Context) context.Context {
	return snsctx.WithTrace(c.Context, c.Bool("trace"))
}

// openDevice connects both dies and runs the init sequence.
func openDevice(c *cli.Context) (*device, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	accelConn, gyroConn, closer, err := openConns(cfg.Bus)
	if err != nil {
		return nil, console.Exit(console.ExitDevice, "could not open bus: %s", err)
	}
	a, g := imu.NewDrivers(accelConn, gyroConn, imu.WithTxTimeout(cfg.Bus.Timeout()))
	d := &device{
		imu:   imu.New(a, g),
		accel: a,
		gyro:  g,
		cfg:   cfg,
		close: closer,
	}
	if err := d.imu.Init(commandContext(c)); err != nil {
		_ = d.close()
		return nil, console.Exit(console.ExitDevice, "could not initialize device: %s", err)
	}
	return d, nil
}

func openConns(bus config.BusConfig) (bmi088.SPIConn, bmi088.SPIConn, func() error, error) {
	switch bus.Driver {
	case config.DriverPeriph:
		freq := physic.Frequency(bus.SpeedHz) * physic.Hertz
		mode := periphspi.Mode(bus.Mode)
		controller := spi.WithControllerLock(&sync.Mutex{})
		a, err := spi.OpenPeriph(bus.AccelDevice, freq, mode, controller)
		if err != nil {
			return nil, nil, nil, err
		}
		g, err := spi.OpenPeriph(bus.GyroDevice, freq, mode, controller)
		if err != nil {
			_ = a.Close()
			return nil, nil, nil, err
		}
		return a, g, func() error { return errors.Join(a.Close(), g.Close()) }, nil
	case config.DriverGobot:
		adaptor := nanopi.NewNeoAdaptor()
		if err := adaptor.Connect(); err != nil {
			return nil, nil, nil, fmt.Errorf("could not connect nanopi adaptor: %w", err)
		}
		opts := []spi.GobotOpt{spi.WithGobotMode(bus.Mode), spi.WithGobotSpeed(bus.SpeedHz)}
		a, err := spi.OpenGobot(adaptor, bus.Bus, bus.AccelChip, opts...)
		if err != nil {
			_ = adaptor.Finalize()
			return nil, nil, nil, err
		}
		g, err := spi.OpenGobot(adaptor, bus.Bus, bus.GyroChip, opts...)
		if err != nil {
			_ = a.Close()
			_ = adaptor.Finalize()
			return nil, nil, nil, err
		}
		return a, g, func() error { return errors.Join(a.Close(), g.Close(), adaptor.Finalize()) }, nil
	case config.DriverSim:
		a, g := simulatedDies()
		return a, g, func() error { return nil }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown bus driver %q", bus.Driver)
}

// simulatedDies returns a device at rest: 1g on z at ±24g and a slow yaw.
func simulatedDies() (*sim.Device, *sim.Device) {
	a := sim.NewAccel()
	a.SetInt16(sim.AccelRegData, 12, -8, 1365)
	a.Set(sim.AccelRegTemp, 0x19, 0x00)
	a.LoadAccelFIFO([]byte{
		0x84, 0x0C, 0x00, 0xF8, 0xFF, 0x55, 0x05,
		0x50, 0x00,
		0x84, 0x0A, 0x00, 0xF9, 0xFF, 0x54, 0x05,
		0x44, 0x56, 0x34, 0x12,
	})
	g := sim.NewGyro()
	g.SetInt16(sim.GyroRegData, 0, 0, 164)
	g.LoadGyroFIFO([]byte{
		0x00, 0x00, 0x00, 0x00, 0xA4, 0x00,
		0x01, 0x00, 0xFF, 0xFF, 0xA3, 0x00,
	})
	return a, g
}
