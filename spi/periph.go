// Package spi provides the hardware transports of bmi088.SPIConn.
package spi

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mklimuk/bmi088"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

const (
	DefaultFrequency = 4 * physic.MegaHertz
	DefaultMode      = spi.Mode0
	bitsPerWord      = 8
)

var _ bmi088.SPIConn = &PeriphConn{}

// PeriphConn is one chip select of a spidev port opened through periph.io.
type PeriphConn struct {
	// held while a transfer is in flight, also after the caller gave up on it
	mx   sync.Locker
	port spi.PortCloser
	conn spi.Conn
}

type PeriphOpts struct {
	ControllerLock sync.Locker
}

type PeriphOpt func(*PeriphOpts)

// WithControllerLock makes ports of one controller share the in-flight
// transfer lock, so an abandoned transfer on one chip select holds back
// transfers on the others until it completes.
func WithControllerLock(l sync.Locker) PeriphOpt {
	return func(o *PeriphOpts) {
		o.ControllerLock = l
	}
}

// OpenPeriph opens the named port ("/dev/spidev0.0", "SPI0.1" or "" for the
// first available one).
func OpenPeriph(dev string, freq physic.Frequency, mode spi.Mode, opts ...PeriphOpt) (*PeriphConn, error) {
	o := PeriphOpts{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ControllerLock == nil {
		o.ControllerLock = &sync.Mutex{}
	}
	state, err := host.Init()
	if err != nil {
		return nil, fmt.Errorf("could not init host: %w", err)
	}
	for _, driver := range state.Loaded {
		slog.Debug("periph driver loaded", "driver", driver.String())
	}
	port, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("could not open spi port %q: %w", dev, err)
	}
	conn, err := port.Connect(freq, mode, bitsPerWord)
	if err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("could not configure spi port %q: %w", dev, err)
	}
	return &PeriphConn{mx: o.ControllerLock, port: port, conn: conn}, nil
}

// Tx runs the transfer and returns early when ctx is done. A transfer that
// outlives its context still completes before the next one starts.
func (c *PeriphConn) Tx(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		c.mx.Lock()
		defer c.mx.Unlock()
		if err := ctx.Err(); err != nil {
			done <- err
			return
		}
		done <- c.conn.Tx(w, r)
	}()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("spi transfer failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *PeriphConn) Close() error {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.port.Close()
}
