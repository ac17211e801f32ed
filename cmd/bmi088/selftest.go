package main

import (
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/mklimuk/bmi088/imu"
	"github.com/urfave/cli/v2"
)

var selfTestCmd = cli.Command{
	Name:  "selftest",
	Usage: "run the built-in self-tests of both dies",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "details", Usage: "run the accelerometer test separately and print the excitation readings"},
	},
	Action: func(c *cli.Context) error {
		d, err := openDevice(c)
		if err != nil {
			return err
		}
		defer d.close()
		ctx := commandContext(c)

		if err := d.imu.EnableAll(ctx); err != nil {
			return console.Exit(console.ExitDevice, "could not enable device: %s", err)
		}
		if c.Bool("details") {
			res, err := d.accel.SelfTest(ctx)
			if err != nil {
				return console.Exit(console.ExitDevice, "%s", err)
			}
			console.Infof("accelerometer %s", console.Status(res.Passed))
			if err := console.Dump(res); err != nil {
				return err
			}
		}
		r, err := d.imu.Ready(ctx)
		if err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		console.Infof("accelerometer %s", console.Status(r != imu.AccelFailed && r != imu.BothFailed))
		console.Infof("gyroscope %s", console.Status(r != imu.GyroFailed && r != imu.BothFailed))
		if r != imu.Ready {
			return console.Exit(console.ExitSelfTest, "self-test: %s", r)
		}
		console.PInfof(console.PictoFinish, "device %s", console.Green(r))
		return nil
	},
}
