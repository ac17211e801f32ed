package spi

import (
	"context"
	"fmt"

	"github.com/mklimuk/bmi088"
	gobotspi "gobot.io/x/gobot/v2/drivers/spi"
)

const DefaultSpeed int64 = 4_000_000

var _ bmi088.SPIConn = &GobotConn{}

// gobotOps is the subset of gobot SPI operations the transport needs.
type gobotOps interface {
	ReadCommandData(command []byte, data []byte) error
	WriteBytes(data []byte) error
	Close() error
}

type GobotOpts struct {
	Mode  int
	Speed int64
}

type GobotOpt func(*GobotOpts)

func WithGobotMode(mode int) GobotOpt {
	return func(o *GobotOpts) {
		o.Mode = mode
	}
}

func WithGobotSpeed(speed int64) GobotOpt {
	return func(o *GobotOpts) {
		o.Speed = speed
	}
}

// GobotConn is one chip select of a bus exposed by a gobot platform adaptor.
type GobotConn struct {
	ops gobotOps
}

// OpenGobot opens bus/chip on a connected adaptor, e.g. nanopi.NewNeoAdaptor().
func OpenGobot(adaptor gobotspi.Connector, bus, chip int, opts ...GobotOpt) (*GobotConn, error) {
	o := GobotOpts{Mode: 0, Speed: DefaultSpeed}
	for _, opt := range opts {
		opt(&o)
	}
	conn, err := adaptor.GetSpiConnection(bus, chip, o.Mode, bitsPerWord, o.Speed)
	if err != nil {
		return nil, fmt.Errorf("could not open spi bus %d chip %d: %w", bus, chip, err)
	}
	return &GobotConn{ops: conn}, nil
}

// Tx maps a register transaction on gobot operations: a write only frame is
// sent as is, a read sends the address byte and clocks in the rest.
func (c *GobotConn) Tx(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(w) == 0 {
		return nil
	}
	if len(r) == 0 {
		if err := c.ops.WriteBytes(w); err != nil {
			return fmt.Errorf("spi write failed: %w", err)
		}
		return nil
	}
	if len(r) != len(w) {
		return fmt.Errorf("tx/rx length mismatch: %d != %d", len(w), len(r))
	}
	data := make([]byte, len(w)-1)
	if err := c.ops.ReadCommandData(w[:1], data); err != nil {
		return fmt.Errorf("spi read failed: %w", err)
	}
	r[0] = 0
	copy(r[1:], data)
	return nil
}

func (c *GobotConn) Close() error {
	return c.ops.Close()
}
