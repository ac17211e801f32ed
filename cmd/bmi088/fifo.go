package main

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/mklimuk/bmi088/fifo"
	"github.com/urfave/cli/v2"
)

var fifoCmd = cli.Command{
	Name:  "fifo",
	Usage: "stream FIFO batches of both dies",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "number of batches, 0 reads until interrupted", Value: 1},
		&cli.DurationFlag{Name: "interval", Usage: "time between FIFO drains", Value: 200 * time.Millisecond},
		&cli.BoolFlag{Name: "keep", Usage: "keep the current configuration instead of applying the logging preset"},
		&cli.BoolFlag{Name: "samples", Usage: "print every decoded sample"},
	},
	Action: func(c *cli.Context) error {
		d, err := openDevice(c)
		if err != nil {
			return err
		}
		defer d.close()
		ctx, stop := signal.NotifyContext(commandContext(c), os.Interrupt)
		defer stop()

		if !c.Bool("keep") {
			if err := d.imu.ConfigureForLogging(ctx); err != nil {
				return console.Exit(console.ExitDevice, "could not configure device: %s", err)
			}
		}
		if err := d.imu.EnableAll(ctx); err != nil {
			return console.Exit(console.ExitDevice, "could not enable device: %s", err)
		}
		return poll(ctx, c.Int("count"), c.Duration("interval"), func(ctx context.Context) error {
			b, err := d.imu.ReadFIFO(ctx)
			if err != nil {
				return err
			}
			printBatch("acc", b.Accel, c.Bool("samples"))
			printBatch("gyr", b.Gyro, c.Bool("samples"))
			return nil
		})
	},
}

func printBatch(name string, b fifo.Batch, samples bool) {
	line := "%s %s samples, %d dropped, %d skipped"
	args := []interface{}{name, console.Bold(len(b.Samples)), b.Dropped(), b.Skipped}
	if b.HasSensorTime {
		line += ", sensor time %s"
		args = append(args, accel.SensorTimeDuration(b.SensorTime))
	}
	console.Infof(line, args...)
	if len(b.ConfigChanges) > 0 {
		console.Warnf("%s configuration changed at samples %v", name, b.ConfigChanges)
	}
	if err := b.Err(); err != nil {
		console.Warnf("%s stream truncated: %s", name, console.Yellow(err))
	}
	if samples {
		for i, s := range b.Samples {
			console.Printf("  %3d %s\n", i, s)
		}
	}
}
