// Package imu composes the accelerometer and gyroscope drivers of one BMI088
// into a single device: joint initialisation, configuration, enable sequence
// and readiness check.
package imu

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/fifo"
	"github.com/mklimuk/bmi088/gyro"
)

// StabilizationDelay is the wait after EnableAll before samples are valid.
const StabilizationDelay = 100 * time.Millisecond

type Accelerometer interface {
	ReadID(ctx context.Context) (byte, error)
	ReloadConfig(ctx context.Context) error
	ConfigureForLogging(ctx context.Context) error
	SetPowerMode(ctx context.Context, p accel.PowerMode) error
	SetEnabled(ctx context.Context, enabled bool) error
	SelfTest(ctx context.Context) (accel.SelfTestResult, error)
	ReadAcceleration(ctx context.Context) (bmi088.Vector3, error)
	ReadFIFO(ctx context.Context) (fifo.Batch, error)
}

type Gyroscope interface {
	ReadID(ctx context.Context) (byte, error)
	ReloadConfig(ctx context.Context) error
	ConfigureForLogging(ctx context.Context) error
	SetPowerMode(ctx context.Context, p gyro.PowerMode) error
	SelfTest(ctx context.Context) (bool, error)
	ReadRates(ctx context.Context) (bmi088.Vector3, error)
	ReadFIFO(ctx context.Context) (fifo.Batch, error)
}

var (
	_ Accelerometer = &accel.Accelerometer{}
	_ Gyroscope     = &gyro.Gyroscope{}
)

// Readiness is the combined self-test outcome.
type Readiness int

const (
	Ready       Readiness = 1
	AccelFailed Readiness = -1
	GyroFailed  Readiness = -2
	BothFailed  Readiness = -3
)

func (r Readiness) String() string {
	switch r {
	case Ready:
		return "ready"
	case AccelFailed:
		return "accelerometer failed"
	case GyroFailed:
		return "gyroscope failed"
	case BothFailed:
		return "both failed"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

func readiness(accelOK, gyroOK bool) Readiness {
	switch {
	case accelOK && gyroOK:
		return Ready
	case gyroOK:
		return AccelFailed
	case accelOK:
		return GyroFailed
	}
	return BothFailed
}

// Sample is one instantaneous reading of both dies.
type Sample struct {
	Acceleration bmi088.Vector3 `yaml:"acceleration"`
	AngularRate  bmi088.Vector3 `yaml:"angular_rate"`
}

// Batches holds one FIFO read of each die. The sequences are not aligned.
type Batches struct {
	Accel fifo.Batch
	Gyro  fifo.Batch
}

type Opts struct {
	Sleeper   bmi088.Sleeper
	TxTimeout time.Duration
}

type Opt func(*Opts)

func WithSleeper(s bmi088.Sleeper) Opt {
	return func(o *Opts) {
		o.Sleeper = s
	}
}

func WithTxTimeout(d time.Duration) Opt {
	return func(o *Opts) {
		o.TxTimeout = d
	}
}

func defaultOpts(opts []Opt) Opts {
	o := Opts{
		Sleeper:   bmi088.TimerSleeper{},
		TxTimeout: bmi088.DefaultTxTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type IMU struct {
	accel Accelerometer
	gyro  Gyroscope
	sleep bmi088.Sleeper
}

func New(a Accelerometer, g Gyroscope, opts ...Opt) *IMU {
	o := defaultOpts(opts)
	return &IMU{accel: a, gyro: g, sleep: o.Sleeper}
}

// NewDrivers builds both drivers on their chip selects of one bus. The
// drivers share a transaction lock.
func NewDrivers(accelConn, gyroConn bmi088.SPIConn, opts ...Opt) (*accel.Accelerometer, *gyro.Gyroscope) {
	o := defaultOpts(opts)
	lock := &sync.Mutex{}
	a := accel.New(accelConn,
		accel.WithBusLock(lock),
		accel.WithSleeper(o.Sleeper),
		accel.WithTxTimeout(o.TxTimeout),
	)
	g := gyro.New(gyroConn,
		gyro.WithBusLock(lock),
		gyro.WithSleeper(o.Sleeper),
		gyro.WithTxTimeout(o.TxTimeout),
	)
	return a, g
}

// NewFromConns is New over the drivers returned by NewDrivers.
func NewFromConns(accelConn, gyroConn bmi088.SPIConn, opts ...Opt) *IMU {
	a, g := NewDrivers(accelConn, gyroConn, opts...)
	return New(a, g, opts...)
}

func (i *IMU) Accelerometer() Accelerometer {
	return i.accel
}

func (i *IMU) Gyroscope() Gyroscope {
	return i.gyro
}

// Init wakes both dies up and loads their configuration. The identity read
// result is discarded: after power-up it only switches the accelerometer to
// SPI mode.
func (i *IMU) Init(ctx context.Context) error {
	if _, err := i.accel.ReadID(ctx); err != nil {
		return err
	}
	if _, err := i.gyro.ReadID(ctx); err != nil {
		return err
	}
	if err := i.accel.ReloadConfig(ctx); err != nil {
		return err
	}
	return i.gyro.ReloadConfig(ctx)
}

func (i *IMU) ConfigureForLogging(ctx context.Context) error {
	if err := i.accel.ConfigureForLogging(ctx); err != nil {
		return err
	}
	return i.gyro.ConfigureForLogging(ctx)
}

// EnableAll powers both dies up and waits for the outputs to settle.
func (i *IMU) EnableAll(ctx context.Context) error {
	if err := i.accel.SetPowerMode(ctx, accel.PowerActive); err != nil {
		return err
	}
	if err := i.accel.SetEnabled(ctx, true); err != nil {
		return err
	}
	if err := i.gyro.SetPowerMode(ctx, gyro.PowerNormal); err != nil {
		return err
	}
	return i.sleep.Sleep(ctx, StabilizationDelay)
}

// Ready runs both self-tests. A failed self-test is reported through the
// Readiness value; the error is reserved for bus failures.
func (i *IMU) Ready(ctx context.Context) (Readiness, error) {
	a, err := i.accel.SelfTest(ctx)
	if err != nil {
		return BothFailed, fmt.Errorf("imu: accelerometer self-test: %w", err)
	}
	g, err := i.gyro.SelfTest(ctx)
	if err != nil {
		return BothFailed, fmt.Errorf("imu: gyroscope self-test: %w", err)
	}
	r := readiness(a.Passed, g)
	if r != Ready {
		slog.Warn("imu self-test failed", "status", r.String(), "accel_difference", a.Difference.String())
	}
	return r, nil
}

// Read returns the latest sample of both dies.
func (i *IMU) Read(ctx context.Context) (Sample, error) {
	a, err := i.accel.ReadAcceleration(ctx)
	if err != nil {
		return Sample{}, err
	}
	g, err := i.gyro.ReadRates(ctx)
	if err != nil {
		return Sample{}, err
	}
	return Sample{Acceleration: a, AngularRate: g}, nil
}

// ReadFIFO drains both FIFOs. Decode anomalies are carried in the batches.
func (i *IMU) ReadFIFO(ctx context.Context) (Batches, error) {
	a, err := i.accel.ReadFIFO(ctx)
	if err != nil {
		return Batches{}, err
	}
	g, err := i.gyro.ReadFIFO(ctx)
	if err != nil {
		return Batches{Accel: a}, err
	}
	return Batches{Accel: a, Gyro: g}, nil
}
