package main

import (
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/urfave/cli/v2"
)

var resetCmd = cli.Command{
	Name:  "reset",
	Usage: "soft reset both dies to their power-on configuration",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask for confirmation"},
	},
	Action: func(c *cli.Context) error {
		ok, err := console.Confirm("reset the device?", c.Bool("yes"))
		if err != nil {
			return err
		}
		if !ok {
			console.PInfof(console.PictoStop, "aborted")
			return nil
		}
		d, err := openDevice(c)
		if err != nil {
			return err
		}
		defer d.close()
		ctx := commandContext(c)

		if err := d.accel.SoftReset(ctx); err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		if err := d.gyro.SoftReset(ctx); err != nil {
			return console.Exit(console.ExitDevice, "%s", err)
		}
		console.PInfof(console.PictoChip, "device reset")
		return console.Dump(configFromDevice(d))
	},
}
