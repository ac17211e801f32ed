package bmi088

import (
	"context"
	"fmt"
)

var ErrBusTimeout = fmt.Errorf("spi transaction timed out")

var ErrUnexpectedChip = fmt.Errorf("unexpected chip id")

// SPIConn is a single chip-select line on an SPI bus. Each Tx call is one
// transaction: select is asserted before the first byte of w is clocked out
// and released after the last one. r is either nil or len(w) long.
type SPIConn interface {
	Tx(ctx context.Context, w, r []byte) error
}

// RegisterReader reads a burst of consecutive registers starting at address.
type RegisterReader interface {
	Read(ctx context.Context, address byte, buffer []byte) error
}

// RegisterWriter writes a single register.
type RegisterWriter interface {
	Write(ctx context.Context, address byte, value byte) error
}

type RegisterAccess interface {
	RegisterReader
	RegisterWriter
}
