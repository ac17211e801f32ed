// Package gyro drives the gyroscope die of the Bosch BMI088 over SPI.
package gyro

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/fifo"
	"github.com/mklimuk/bmi088/units"
)

const (
	selfTestPolls        = 10
	selfTestPollInterval = 100 * time.Millisecond
	softResetDelay       = 30 * time.Millisecond
)

// Config is the cached copy of the device configuration.
type Config struct {
	Range     units.GyroRange
	Bandwidth Bandwidth
	FIFOMode  bmi088.FIFOMode
}

// LoggingConfig is the configuration applied by ConfigureForLogging.
var LoggingConfig = Config{
	Range:     units.GyroRange1000,
	Bandwidth: ODR1000BW116,
	FIFOMode:  bmi088.FIFOStream,
}

type FIFOStatus struct {
	Frames  int  `yaml:"frames"`
	Overrun bool `yaml:"overrun"`
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

// Gyroscope represents the BMI088 gyroscope.
type Gyroscope struct {
	regs   bmi088.RegisterAccess
	sleep  bmi088.Sleeper
	cfgMx  sync.Mutex
	config Config
}

func New(conn bmi088.SPIConn, opts ...Opt) *Gyroscope {
	o := Opts{
		Sleeper:   bmi088.TimerSleeper{},
		TxTimeout: bmi088.DefaultTxTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	regOpts := []bmi088.RegistersOpt{bmi088.WithTimeout(o.TxTimeout)}
	if o.BusLock != nil {
		regOpts = append(regOpts, bmi088.WithLock(o.BusLock))
	}
	return &Gyroscope{
		regs:   bmi088.NewRegisters(conn, regOpts...),
		sleep:  o.Sleeper,
		config: Config{Range: units.GyroRangeUnknown},
	}
}

func (g *Gyroscope) Config() Config {
	g.cfgMx.Lock()
	defer g.cfgMx.Unlock()
	return g.config
}

func (g *Gyroscope) update(fn func(c *Config)) {
	g.cfgMx.Lock()
	fn(&g.config)
	g.cfgMx.Unlock()
}

func (g *Gyroscope) readByte(ctx context.Context, reg byte) (byte, error) {
	buf := []byte{0}
	if err := g.regs.Read(ctx, reg, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (g *Gyroscope) ReadID(ctx context.Context) (byte, error) {
	id, err := g.readByte(ctx, regChipID)
	if err != nil {
		return 0, fmt.Errorf("gyro: could not read chip id: %w", err)
	}
	return id, nil
}

func (g *Gyroscope) VerifyID(ctx context.Context) error {
	id, err := g.ReadID(ctx)
	if err != nil {
		return err
	}
	if id != ChipID {
		return fmt.Errorf("gyro: %w: expected %#02x, got %#02x", bmi088.ErrUnexpectedChip, ChipID, id)
	}
	return nil
}

func (g *Gyroscope) ReloadConfig(ctx context.Context) error {
	raw := make([]byte, 2)
	if err := g.regs.Read(ctx, regRange, raw); err != nil {
		return fmt.Errorf("gyro: could not read configuration: %w", err)
	}
	mode, err := g.readByte(ctx, regFIFOConfig1)
	if err != nil {
		return fmt.Errorf("gyro: could not read FIFO mode: %w", err)
	}
	g.update(func(c *Config) {
		c.Range = units.GyroRange(raw[0])
		// bit 7 of the bandwidth register always reads 1
		c.Bandwidth = Bandwidth(raw[1] & bandwidthMask)
		c.FIFOMode = fifoModeFromRegister(mode)
	})
	return nil
}

func (g *Gyroscope) SetRange(ctx context.Context, r units.GyroRange) error {
	if err := g.regs.Write(ctx, regRange, byte(r)); err != nil {
		return fmt.Errorf("gyro: could not set range: %w", err)
	}
	g.update(func(c *Config) { c.Range = r })
	return nil
}

func (g *Gyroscope) SetBandwidth(ctx context.Context, b Bandwidth) error {
	if err := g.regs.Write(ctx, regBandwidth, byte(b)); err != nil {
		return fmt.Errorf("gyro: could not set bandwidth: %w", err)
	}
	g.update(func(c *Config) { c.Bandwidth = b })
	return nil
}

func (g *Gyroscope) SetFIFOMode(ctx context.Context, m bmi088.FIFOMode) error {
	v, err := fifoModeRegister(m)
	if err != nil {
		return fmt.Errorf("gyro: %w", err)
	}
	if err := g.regs.Write(ctx, regFIFOConfig1, v); err != nil {
		return fmt.Errorf("gyro: could not set FIFO mode: %w", err)
	}
	g.update(func(c *Config) { c.FIFOMode = m })
	return nil
}

func (g *Gyroscope) Apply(ctx context.Context, cfg Config) error {
	if err := g.SetRange(ctx, cfg.Range); err != nil {
		return err
	}
	if err := g.SetBandwidth(ctx, cfg.Bandwidth); err != nil {
		return err
	}
	return g.SetFIFOMode(ctx, cfg.FIFOMode)
}

// ConfigureForLogging applies LoggingConfig and reads it back.
func (g *Gyroscope) ConfigureForLogging(ctx context.Context) error {
	if err := g.Apply(ctx, LoggingConfig); err != nil {
		return err
	}
	return g.ReloadConfig(ctx)
}

func (g *Gyroscope) SetPowerMode(ctx context.Context, p PowerMode) error {
	if err := g.regs.Write(ctx, regLPM1, byte(p)); err != nil {
		return fmt.Errorf("gyro: could not set power mode: %w", err)
	}
	return nil
}

func (g *Gyroscope) ReadPowerMode(ctx context.Context) (PowerMode, error) {
	p, err := g.readByte(ctx, regLPM1)
	if err != nil {
		return 0, fmt.Errorf("gyro: could not read power mode: %w", err)
	}
	return PowerMode(p), nil
}

func (g *Gyroscope) SoftReset(ctx context.Context) error {
	if err := g.regs.Write(ctx, regSoftReset, softResetCmd); err != nil {
		return fmt.Errorf("gyro: could not reset: %w", err)
	}
	if err := g.sleep.Sleep(ctx, softResetDelay); err != nil {
		return err
	}
	return g.ReloadConfig(ctx)
}

// ReadRates returns the latest angular rate in rad/s.
func (g *Gyroscope) ReadRates(ctx context.Context) (bmi088.Vector3, error) {
	raw := make([]byte, 6)
	if err := g.regs.Read(ctx, regRateXLSB, raw); err != nil {
		return bmi088.Vector3{}, fmt.Errorf("gyro: could not read rates: %w", err)
	}
	return units.AngularRate(raw, g.Config().Range), nil
}

func (g *Gyroscope) DataReady(ctx context.Context) (bool, error) {
	s, err := g.readByte(ctx, regIntStat1)
	if err != nil {
		return false, fmt.Errorf("gyro: could not read interrupt status: %w", err)
	}
	return s&intStatDataReady != 0, nil
}

func (g *Gyroscope) ReadFIFOStatus(ctx context.Context) (FIFOStatus, error) {
	s, err := g.readByte(ctx, regFIFOStatus)
	if err != nil {
		return FIFOStatus{}, fmt.Errorf("gyro: could not read FIFO status: %w", err)
	}
	return FIFOStatus{
		Frames:  int(s & fifoStatusFrameCount),
		Overrun: s&fifoStatusOverrun != 0,
	}, nil
}

// ReadFIFO reads the whole FIFO and decodes it with the cached range.
func (g *Gyroscope) ReadFIFO(ctx context.Context) (fifo.Batch, error) {
	buf := make([]byte, fifo.GyroBufferSize)
	if err := g.regs.Read(ctx, regFIFOData, buf); err != nil {
		return fifo.Batch{}, fmt.Errorf("gyro: could not read FIFO data: %w", err)
	}
	return fifo.ReadGyro(buf, g.Config().Range), nil
}

// SelfTest triggers the built-in self-test and polls for its completion.
// A test that does not complete within the polling budget counts as failed.
func (g *Gyroscope) SelfTest(ctx context.Context) (bool, error) {
	if err := g.regs.Write(ctx, regSelfTest, selfTestTrigger); err != nil {
		return false, fmt.Errorf("gyro: could not start self-test: %w", err)
	}
	for attempt := 0; attempt < selfTestPolls; attempt++ {
		if err := g.sleep.Sleep(ctx, selfTestPollInterval); err != nil {
			return false, err
		}
		res, err := g.readByte(ctx, regSelfTest)
		if err != nil {
			return false, fmt.Errorf("gyro: could not read self-test result: %w", err)
		}
		if res&selfTestReady != 0 {
			passed := res&selfTestFailed == 0
			slog.Debug("gyro self-test done", "attempts", attempt+1, "passed", passed)
			return passed, nil
		}
	}
	slog.Warn("gyro self-test did not complete", "attempts", selfTestPolls)
	return false, nil
}
