package bmi088

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mklimuk/bmi088/snsctx"
)

const (
	readBit  = 0x80
	addrMask = 0x7F
)

// DefaultTxTimeout bounds every register transaction.
const DefaultTxTimeout = 100 * time.Millisecond

var _ RegisterAccess = &Registers{}

type RegistersOpts struct {
	DummyByte bool
	Timeout   time.Duration
	Lock      sync.Locker
}

type RegistersOpt func(*RegistersOpts)

// WithDummyByte makes reads discard one byte between the address and the
// payload phase (accelerometer die).
func WithDummyByte() RegistersOpt {
	return func(o *RegistersOpts) {
		o.DummyByte = true
	}
}

func WithTimeout(timeout time.Duration) RegistersOpt {
	return func(o *RegistersOpts) {
		o.Timeout = timeout
	}
}

// WithLock shares the transaction lock with other register sets living on the
// same physical bus.
func WithLock(lock sync.Locker) RegistersOpt {
	return func(o *RegistersOpts) {
		o.Lock = lock
	}
}

// Registers frames register reads and writes as SPI transactions.
type Registers struct {
	conn   SPIConn
	config RegistersOpts
}

func NewRegisters(conn SPIConn, opts ...RegistersOpt) *Registers {
	config := RegistersOpts{
		Timeout: DefaultTxTimeout,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Lock == nil {
		config.Lock = &sync.Mutex{}
	}
	return &Registers{conn: conn, config: config}
}

// Read reads len(buffer) consecutive registers starting at address.
func (r *Registers) Read(ctx context.Context, address byte, buffer []byte) error {
	skip := 1
	if r.config.DummyByte {
		skip++
	}
	tx := make([]byte, len(buffer)+skip)
	tx[0] = address | readBit
	rx := make([]byte, len(tx))
	if err := r.tx(ctx, tx, rx); err != nil {
		return fmt.Errorf("could not read register %#02x: %w", address, err)
	}
	copy(buffer, rx[skip:])
	if snsctx.IsTraced(ctx) {
		slog.Debug("spi read", "addr", fmt.Sprintf("%#02x", address), "data", hex.EncodeToString(buffer))
	}
	return nil
}

func (r *Registers) Write(ctx context.Context, address byte, value byte) error {
	if err := r.tx(ctx, []byte{address & addrMask, value}, nil); err != nil {
		return fmt.Errorf("could not write register %#02x: %w", address, err)
	}
	if snsctx.IsTraced(ctx) {
		slog.Debug("spi write", "addr", fmt.Sprintf("%#02x", address), "value", fmt.Sprintf("%#02x", value))
	}
	return nil
}

func (r *Registers) tx(ctx context.Context, w, rx []byte) error {
	r.config.Lock.Lock()
	defer r.config.Lock.Unlock()
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}
	err := r.conn.Tx(ctx, w, rx)
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrBusTimeout, err)
	}
	return err
}
