// Package accel drives the accelerometer die of the Bosch BMI088 over SPI.
//
// The accelerometer answers every SPI read with one dummy byte before the
// payload and starts in I2C mode after power-up: the first transaction
// (typically the chip id read done by Init) only switches it to SPI and may
// return garbage.
//
// Typical usage:
//
//	a := accel.New(conn)
//	_, _ = a.ReadID(ctx) // dummy read, switches the die to SPI
//	err := a.ReloadConfig(ctx)
//	v, err := a.ReadAcceleration(ctx)
package accel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/units"
)

// Config is the cached copy of the device configuration.
type Config struct {
	Range          units.AccelRange
	Oversampling   Oversampling
	ODR            ODR
	FIFOMode       bmi088.FIFOMode
	FIFODownsample Downsample
}

// LoggingConfig is the configuration applied by ConfigureForLogging.
var LoggingConfig = Config{
	Range:          units.AccelRange24G,
	Oversampling:   OversamplingNormal,
	ODR:            ODR400,
	FIFOMode:       bmi088.FIFOStream,
	FIFODownsample: DownsampleNone,
}

// ErrorStatus is the content of the error register. It is data: a fatal
// flag does not make any call fail.
type ErrorStatus struct {
	Fatal bool  `yaml:"fatal"`
	Code  uint8 `yaml:"code"`
}

type Opts struct {
	Sleeper   bmi088.Sleeper
	BusLock   sync.Locker
	TxTimeout time.Duration
}

type Opt func(*Opts)

func WithSleeper(s bmi088.Sleeper) Opt {
	return func(o *Opts) {
		o.Sleeper = s
	}
}

// WithBusLock shares the transaction lock with the other die on the same bus.
func WithBusLock(l sync.Locker) Opt {
	return func(o *Opts) {
		o.BusLock = l
	}
}

func WithTxTimeout(d time.Duration) Opt {
	return func(o *Opts) {
		o.TxTimeout = d
	}
}

// Accelerometer represents the BMI088 accelerometer.
type Accelerometer struct {
	regs   bmi088.RegisterAccess
	sleep  bmi088.Sleeper
	cfgMx  sync.Mutex
	config Config
}

func New(conn bmi088.SPIConn, opts ...Opt) *Accelerometer {
	o := Opts{
		Sleeper:   bmi088.TimerSleeper{},
		TxTimeout: bmi088.DefaultTxTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	regOpts := []bmi088.RegistersOpt{bmi088.WithDummyByte(), bmi088.WithTimeout(o.TxTimeout)}
	if o.BusLock != nil {
		regOpts = append(regOpts, bmi088.WithLock(o.BusLock))
	}
	return &Accelerometer{
		regs:  bmi088.NewRegisters(conn, regOpts...),
		sleep: o.Sleeper,
		config: Config{
			Range: units.AccelRangeUnknown,
		},
	}
}

// Config returns the cached configuration.
func (a *Accelerometer) Config() Config {
	a.cfgMx.Lock()
	defer a.cfgMx.Unlock()
	return a.config
}

func (a *Accelerometer) update(fn func(c *Config)) {
	a.cfgMx.Lock()
	fn(&a.config)
	a.cfgMx.Unlock()
}

func (a *Accelerometer) readByte(ctx context.Context, reg byte) (byte, error) {
	buf := []byte{0}
	if err := a.regs.Read(ctx, reg, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (a *Accelerometer) ReadID(ctx context.Context) (byte, error) {
	id, err := a.readByte(ctx, regChipID)
	if err != nil {
		return 0, fmt.Errorf("accel: could not read chip id: %w", err)
	}
	return id, nil
}

// VerifyID checks that the die answering on the bus is a BMI088 accelerometer.
func (a *Accelerometer) VerifyID(ctx context.Context) error {
	id, err := a.ReadID(ctx)
	if err != nil {
		return err
	}
	if id != ChipID {
		return fmt.Errorf("accel: %w: expected %#02x, got %#02x", bmi088.ErrUnexpectedChip, ChipID, id)
	}
	return nil
}

// ReloadConfig reads range, output configuration and FIFO setup back from
// the device into the cache.
func (a *Accelerometer) ReloadConfig(ctx context.Context) error {
	conf := make([]byte, 2)
	if err := a.regs.Read(ctx, regAccConf, conf); err != nil {
		return fmt.Errorf("accel: could not read configuration: %w", err)
	}
	downs, err := a.readByte(ctx, regFIFODowns)
	if err != nil {
		return fmt.Errorf("accel: could not read FIFO downsampling: %w", err)
	}
	fifoConf := make([]byte, 2)
	if err := a.regs.Read(ctx, regFIFOConfig0, fifoConf); err != nil {
		return fmt.Errorf("accel: could not read FIFO configuration: %w", err)
	}
	a.update(func(c *Config) {
		c.Oversampling = Oversampling(conf[0] >> 4)
		c.ODR = ODR(conf[0] & 0x0F)
		c.Range = units.AccelRange(conf[1] & 0x03)
		c.FIFODownsample = Downsample((downs >> fifoDownsShift) & fifoDownsMask)
		c.FIFOMode = fifoModeFromRegisters(fifoConf[0], fifoConf[1])
	})
	return nil
}

func (a *Accelerometer) SetRange(ctx context.Context, r units.AccelRange) error {
	if err := a.regs.Write(ctx, regAccRange, byte(r)); err != nil {
		return fmt.Errorf("accel: could not set range: %w", err)
	}
	a.update(func(c *Config) { c.Range = r })
	return nil
}

// SetConfig writes oversampling and output data rate in one ACC_CONF write.
func (a *Accelerometer) SetConfig(ctx context.Context, osr Oversampling, odr ODR) error {
	if err := a.regs.Write(ctx, regAccConf, byte(osr)<<4|byte(odr)); err != nil {
		return fmt.Errorf("accel: could not set output configuration: %w", err)
	}
	a.update(func(c *Config) {
		c.Oversampling = osr
		c.ODR = odr
	})
	return nil
}

func (a *Accelerometer) SetFIFOMode(ctx context.Context, m bmi088.FIFOMode) error {
	cfg0, cfg1, err := fifoModeRegisters(m)
	if err != nil {
		return fmt.Errorf("accel: %w", err)
	}
	if err := a.regs.Write(ctx, regFIFOConfig0, cfg0); err != nil {
		return fmt.Errorf("accel: could not set FIFO mode: %w", err)
	}
	if err := a.regs.Write(ctx, regFIFOConfig1, cfg1); err != nil {
		return fmt.Errorf("accel: could not set FIFO enable: %w", err)
	}
	a.update(func(c *Config) { c.FIFOMode = m })
	return nil
}

func (a *Accelerometer) SetFIFODownsample(ctx context.Context, d Downsample) error {
	if err := a.regs.Write(ctx, regFIFODowns, d.register()); err != nil {
		return fmt.Errorf("accel: could not set FIFO downsampling: %w", err)
	}
	a.update(func(c *Config) { c.FIFODownsample = d })
	return nil
}

// Apply writes every field of cfg.
func (a *Accelerometer) Apply(ctx context.Context, cfg Config) error {
	if err := a.SetRange(ctx, cfg.Range); err != nil {
		return err
	}
	if err := a.SetConfig(ctx, cfg.Oversampling, cfg.ODR); err != nil {
		return err
	}
	if err := a.SetFIFODownsample(ctx, cfg.FIFODownsample); err != nil {
		return err
	}
	return a.SetFIFOMode(ctx, cfg.FIFOMode)
}

// ConfigureForLogging applies LoggingConfig.
func (a *Accelerometer) ConfigureForLogging(ctx context.Context) error {
	return a.Apply(ctx, LoggingConfig)
}

func (a *Accelerometer) SetPowerMode(ctx context.Context, p PowerMode) error {
	if err := a.regs.Write(ctx, regPwrConf, byte(p)); err != nil {
		return fmt.Errorf("accel: could not set power mode: %w", err)
	}
	return nil
}

func (a *Accelerometer) ReadPowerMode(ctx context.Context) (PowerMode, error) {
	p, err := a.readByte(ctx, regPwrConf)
	if err != nil {
		return 0, fmt.Errorf("accel: could not read power mode: %w", err)
	}
	return PowerMode(p), nil
}

// SetEnabled switches the measurement on or off.
func (a *Accelerometer) SetEnabled(ctx context.Context, enabled bool) error {
	val := byte(pwrCtrlDisabled)
	if enabled {
		val = pwrCtrlEnabled
	}
	if err := a.regs.Write(ctx, regPwrCtrl, val); err != nil {
		return fmt.Errorf("accel: could not set measurement enable: %w", err)
	}
	return nil
}

func (a *Accelerometer) ReadEnabled(ctx context.Context) (bool, error) {
	v, err := a.readByte(ctx, regPwrCtrl)
	if err != nil {
		return false, fmt.Errorf("accel: could not read measurement enable: %w", err)
	}
	return v == pwrCtrlEnabled, nil
}

// SoftReset restores register defaults; the cached configuration is reloaded.
func (a *Accelerometer) SoftReset(ctx context.Context) error {
	if err := a.regs.Write(ctx, regSoftReset, softResetCmd); err != nil {
		return fmt.Errorf("accel: could not reset: %w", err)
	}
	if err := a.sleep.Sleep(ctx, time.Millisecond); err != nil {
		return err
	}
	// reset puts the die back in I2C mode
	if _, err := a.ReadID(ctx); err != nil {
		return err
	}
	return a.ReloadConfig(ctx)
}

// ReadAcceleration returns the latest sample in m/s^2.
func (a *Accelerometer) ReadAcceleration(ctx context.Context) (bmi088.Vector3, error) {
	raw := make([]byte, 6)
	if err := a.regs.Read(ctx, regAccXLSB, raw); err != nil {
		return bmi088.Vector3{}, fmt.Errorf("accel: could not read acceleration: %w", err)
	}
	return units.Acceleration(raw, a.Config().Range), nil
}

func (a *Accelerometer) DataReady(ctx context.Context) (bool, error) {
	s, err := a.readByte(ctx, regStatus)
	if err != nil {
		return false, fmt.Errorf("accel: could not read status: %w", err)
	}
	return s&statusDataReady != 0, nil
}

// ReadTemperature returns the die temperature in °C.
func (a *Accelerometer) ReadTemperature(ctx context.Context) (float64, error) {
	raw := make([]byte, 2)
	if err := a.regs.Read(ctx, regTempMSB, raw); err != nil {
		return 0, fmt.Errorf("accel: could not read temperature: %w", err)
	}
	// 11 bit two's complement, MSB first
	val := int16(raw[0])<<3 | int16(raw[1]>>5)
	if val > 1023 {
		val -= 2048
	}
	return 23 + float64(val)*0.125, nil
}

// SensorTimeDuration converts sensor time ticks (39.0625µs each) to a duration.
func SensorTimeDuration(ticks uint32) time.Duration {
	return time.Duration(uint64(ticks)*390625/10) * time.Nanosecond
}

// ReadSensorTime returns the free running 24-bit device counter.
func (a *Accelerometer) ReadSensorTime(ctx context.Context) (uint32, error) {
	raw := make([]byte, 3)
	if err := a.regs.Read(ctx, regSensorTime0, raw); err != nil {
		return 0, fmt.Errorf("accel: could not read sensor time: %w", err)
	}
	return uint32(raw[0]) | uint32(raw[1])<<8 | uint32(raw[2])<<16, nil
}

func (a *Accelerometer) ReadErrorStatus(ctx context.Context) (ErrorStatus, error) {
	v, err := a.readByte(ctx, regErr)
	if err != nil {
		return ErrorStatus{}, fmt.Errorf("accel: could not read error register: %w", err)
	}
	return ErrorStatus{
		Fatal: v&errFatal != 0,
		Code:  (v & errCodeMask) >> errCodeShift,
	}, nil
}
