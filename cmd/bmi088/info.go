package main

import (
	"context"
	"fmt"

	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/mklimuk/bmi088/config"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/urfave/cli/v2"
)

type accelInfo struct {
	ChipID      string             `yaml:"chip_id"`
	Power       string             `yaml:"power"`
	Enabled     bool               `yaml:"enabled"`
	Temperature float64            `yaml:"temperature"`
	SensorTime  string             `yaml:"sensor_time"`
	Error       accel.ErrorStatus  `yaml:"error"`
	FIFOLength  int                `yaml:"fifo_length"`
	Config      config.AccelConfig `yaml:"config"`
}

type gyroInfo struct {
	ChipID string            `yaml:"chip_id"`
	Power  string            `yaml:"power"`
	FIFO   gyro.FIFOStatus   `yaml:"fifo"`
	Config config.GyroConfig `yaml:"config"`
}

type infoReport struct {
	Accel accelInfo `yaml:"accel"`
	Gyro  gyroInfo  `yaml:"gyro"`
}

var infoCmd = cli.Command{
	Name:  "info",
	Usage: "identify both dies and show their state",
	Action: func(c *cli.Context) error {
		d, err := openDevice(c)
		if err != nil {
			return err
		}
		defer d.close()
		ctx := commandContext(c)

		if err := d.accel.VerifyID(ctx); err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		if err := d.gyro.VerifyID(ctx); err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		a, err := readAccelInfo(ctx, d.accel)
		if err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		g, err := readGyroInfo(ctx, d.gyro)
		if err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		if a.Error.Fatal {
			console.Warnf("accelerometer reports a fatal error (code %d)", a.Error.Code)
		}
		if g.FIFO.Overrun {
			console.Warnf("gyroscope FIFO overrun")
		}
		console.PInfof(console.PictoThermometer, "die temperature %s °C", console.Bold(a.Temperature))
		return console.Dump(infoReport{Accel: a, Gyro: g})
	},
}

func readAccelInfo(ctx context.Context, a *accel.Accelerometer) (accelInfo, error) {
	var info accelInfo
	id, err := a.ReadID(ctx)
	if err != nil {
		return info, err
	}
	info.ChipID = fmt.Sprintf("%#02x", id)
	p, err := a.ReadPowerMode(ctx)
	if err != nil {
		return info, err
	}
	info.Power = p.String()
	if info.Enabled, err = a.ReadEnabled(ctx); err != nil {
		return info, err
	}
	if info.Temperature, err = a.ReadTemperature(ctx); err != nil {
		return info, err
	}
	ticks, err := a.ReadSensorTime(ctx)
	if err != nil {
		return info, err
	}
	info.SensorTime = accel.SensorTimeDuration(ticks).String()
	if info.Error, err = a.ReadErrorStatus(ctx); err != nil {
		return info, err
	}
	if info.FIFOLength, err = a.ReadFIFOLength(ctx); err != nil {
		return info, err
	}
	info.Config = config.FromAccel(a.Config())
	return info, nil
}

func readGyroInfo(ctx context.Context, g *gyro.Gyroscope) (gyroInfo, error) {
	var info gyroInfo
	id, err := g.ReadID(ctx)
	if err != nil {
		return info, err
	}
	info.ChipID = fmt.Sprintf("%#02x", id)
	p, err := g.ReadPowerMode(ctx)
	if err != nil {
		return info, err
	}
	info.Power = p.String()
	if info.FIFO, err = g.ReadFIFOStatus(ctx); err != nil {
		return info, err
	}
	info.Config = config.FromGyro(g.Config())
	return info, nil
}
