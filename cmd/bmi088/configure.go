package main

import (
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/mklimuk/bmi088/config"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/urfave/cli/v2"
)

type configReport struct {
	Accel config.AccelConfig `yaml:"accel"`
	Gyro  config.GyroConfig  `yaml:"gyro"`
}

var configureCmd = cli.Command{
	Name:  "configure",
	Usage: "write the configured settings (or the logging preset) to both dies",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "logging", Usage: "apply the FIFO logging preset instead of the configuration file"},
		&cli.BoolFlag{Name: "enable", Usage: "power both dies up afterwards"},
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	},
	Action: func(c *cli.Context) error {
		d, err := openDevice(c)
		if err != nil {
			return err
		}
		defer d.close()
		ctx := commandContext(c)

		want := configReport{Accel: d.cfg.Accel, Gyro: d.cfg.Gyro}
		if c.Bool("logging") {
			want = configReport{Accel: config.FromAccel(accel.LoggingConfig), Gyro: config.FromGyro(gyro.LoggingConfig)}
		}
		console.Infof("current configuration:")
		if err := console.Dump(configFromDevice(d)); err != nil {
			return err
		}
		console.Infof("requested configuration:")
		if err := console.Dump(want); err != nil {
			return err
		}
		ok, err := console.Confirm("write configuration to the device?", c.Bool("yes"))
		if err != nil {
			return err
		}
		if !ok {
			console.PInfof(console.PictoStop, "aborted")
			return nil
		}

		if c.Bool("logging") {
			err = d.imu.ConfigureForLogging(ctx)
		} else {
			err = applyConfig(c, d)
		}
		if err != nil {
			return console.Exit(console.ExitDevice, "could not configure device: %s", err)
		}
		if c.Bool("enable") {
			if err := d.imu.EnableAll(ctx); err != nil {
				return console.Exit(console.ExitDevice, "could not enable device: %s", err)
			}
		}
		if err := d.accel.ReloadConfig(ctx); err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		if err := d.gyro.ReloadConfig(ctx); err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		console.PInfof(console.PictoFinish, "device configured")
		return console.Dump(configFromDevice(d))
	},
}

func applyConfig(c *cli.Context, d *device) error {
	ctx := commandContext(c)
	a, err := d.cfg.Accel.Sensor()
	if err != nil {
		return err
	}
	g, err := d.cfg.Gyro.Sensor()
	if err != nil {
		return err
	}
	if err := d.accel.Apply(ctx, a); err != nil {
		return err
	}
	return d.gyro.Apply(ctx, g)
}

func configFromDevice(d *device) configReport {
	return configReport{
		Accel: config.FromAccel(d.accel.Config()),
		Gyro:  config.FromGyro(d.gyro.Config()),
	}
}
