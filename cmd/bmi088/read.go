package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/urfave/cli/v2"
)

var readCmd = cli.Command{
	Name:  "read",
	Usage: "enable both dies and print instantaneous samples",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "number of samples, 0 reads until interrupted", Value: 1},
		&cli.DurationFlag{Name: "interval", Usage: "time between samples", Value: 100 * time.Millisecond},
	},
	Action: func(c *cli.Context) error {
		d, err := openDevice(c)
		if err != nil {
			return err
		}
		defer d.close()
		ctx, stop := signal.NotifyContext(commandContext(c), os.Interrupt)
		defer stop()

		if err := d.imu.EnableAll(ctx); err != nil {
			return console.Exit(console.ExitDevice, "could not enable device: %s", err)
		}
		return poll(ctx, c.Int("count"), c.Duration("interval"), func(ctx context.Context) error {
			s, err := d.imu.Read(ctx)
			if err != nil {
				return err
			}
			console.PInfof(console.PictoCompass, "acc %s m/s² gyr %s rad/s",
				console.Bold(s.Acceleration), console.Bold(s.AngularRate))
			return nil
		})
	},
}

// poll runs fn count times (forever for 0) spaced by interval and stops
// quietly when ctx is cancelled.
func poll(ctx context.Context, count int, interval time.Duration, fn func(ctx context.Context) error) error {
	sleeper := bmi088.TimerSleeper{}
	for i := 0; count == 0 || i < count; i++ {
		if i > 0 {
			if err := sleeper.Sleep(ctx, interval); err != nil {
				return nil
			}
		}
		if err := fn(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return console.Exit(console.ExitDevice, "%s", err)
		}
	}
	return nil
}
