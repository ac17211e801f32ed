// Package sim provides an in-memory BMI088 die answering SPI transactions
// from a register file. It backs the tests and the "sim" bus driver of the
// command line tool.
package sim

import (
	"context"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/mklimuk/bmi088"
)

const (
	readBit  = 0x80
	addrMask = 0x7F
	regCount = 0x80
)

var _ bmi088.SPIConn = &Device{}

// Write is a single register write seen by the device.
type Write struct {
	Addr  byte
	Value byte
}

// Read is a single burst read seen by the device.
type Read struct {
	Addr byte
	Len  int
}

type WriteHook func(d *Device, addr, value byte)

type Opts struct {
	DummyByte bool
	OnWrite   WriteHook
}

type Opt func(*Opts)

// WithDummyByte makes the device answer reads with one byte of padding
// before the payload.
func WithDummyByte() Opt {
	return func(o *Opts) {
		o.DummyByte = true
	}
}

// WithWriteHook installs a function called after every register write.
// The hook runs with the device lock held and must use the unlocked
// accessors it receives.
func WithWriteHook(h WriteHook) Opt {
	return func(o *Opts) {
		o.OnWrite = h
	}
}

type stream struct {
	data    []byte
	fill    []byte
	drained func(d *Device, remaining int)
}

func (s *stream) take(out []byte) {
	n := copy(out, s.data)
	s.data = s.data[n:]
	for i := n; i < len(out); i++ {
		out[i] = s.fill[(i-n)%len(s.fill)]
	}
}

// Device is a simulated register file.
type Device struct {
	mx      sync.Mutex
	opts    Opts
	regs    [regCount]byte
	streams map[byte]*stream
	writes  []Write
	reads   []Read
	failure error
}

func New(opts ...Opt) *Device {
	o := Opts{}
	for _, opt := range opts {
		opt(&o)
	}
	return &Device{opts: o, streams: map[byte]*stream{}}
}

// Tx implements bmi088.SPIConn.
func (d *Device) Tx(ctx context.Context, w, r []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(w) == 0 {
		return fmt.Errorf("sim: empty transaction")
	}
	d.mx.Lock()
	defer d.mx.Unlock()
	if d.failure != nil {
		return d.failure
	}
	addr := w[0] & addrMask
	if w[0]&readBit == 0 {
		for i, v := range w[1:] {
			a := (addr + byte(i)) & addrMask
			d.regs[a] = v
			d.writes = append(d.writes, Write{Addr: a, Value: v})
			if d.opts.OnWrite != nil {
				d.opts.OnWrite(d, a, v)
			}
		}
		return nil
	}
	skip := 1
	if d.opts.DummyByte {
		skip++
	}
	if len(r) < len(w) || len(w) < skip {
		return fmt.Errorf("sim: malformed read of %d bytes", len(w))
	}
	payload := r[skip:len(w)]
	d.reads = append(d.reads, Read{Addr: addr, Len: len(payload)})
	if s, ok := d.streams[addr]; ok {
		s.take(payload)
		if s.drained != nil {
			s.drained(d, len(s.data))
		}
		return nil
	}
	for i := range payload {
		payload[i] = d.regs[(int(addr)+i)%regCount]
	}
	return nil
}

// Fail makes every following transaction return err; nil restores the device.
func (d *Device) Fail(err error) {
	d.mx.Lock()
	d.failure = err
	d.mx.Unlock()
}

// Set stores values in consecutive registers starting at addr.
func (d *Device) Set(addr byte, values ...byte) {
	d.mx.Lock()
	d.SetLocked(addr, values...)
	d.mx.Unlock()
}

// SetLocked is Set for use inside a write hook.
func (d *Device) SetLocked(addr byte, values ...byte) {
	for i, v := range values {
		d.regs[(int(addr)+i)%regCount] = v
	}
}

// SetInt16 stores little endian words in consecutive registers starting at addr.
func (d *Device) SetInt16(addr byte, values ...int16) {
	d.mx.Lock()
	d.SetInt16Locked(addr, values...)
	d.mx.Unlock()
}

func (d *Device) SetInt16Locked(addr byte, values ...int16) {
	buf := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}
	d.SetLocked(addr, buf...)
}

func (d *Device) Register(addr byte) byte {
	d.mx.Lock()
	defer d.mx.Unlock()
	return d.regs[addr&addrMask]
}

// Stream turns addr into a FIFO data port: reads consume data and pad with
// the repeated fill pattern once it is exhausted.
func (d *Device) Stream(addr byte, data, fill []byte, drained func(d *Device, remaining int)) {
	d.mx.Lock()
	d.streams[addr&addrMask] = &stream{
		data:    append([]byte(nil), data...),
		fill:    fill,
		drained: drained,
	}
	d.mx.Unlock()
}

func (d *Device) Writes() []Write {
	d.mx.Lock()
	defer d.mx.Unlock()
	return append([]Write(nil), d.writes...)
}

// WritesTo returns the values written to addr in order.
func (d *Device) WritesTo(addr byte) []byte {
	d.mx.Lock()
	defer d.mx.Unlock()
	var out []byte
	for _, w := range d.writes {
		if w.Addr == addr {
			out = append(out, w.Value)
		}
	}
	return out
}

func (d *Device) Reads() []Read {
	d.mx.Lock()
	defer d.mx.Unlock()
	return append([]Read(nil), d.reads...)
}

func (d *Device) ResetLog() {
	d.mx.Lock()
	d.writes = nil
	d.reads = nil
	d.mx.Unlock()
}
