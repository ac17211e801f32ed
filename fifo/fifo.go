// Package fifo decodes raw FIFO reads of the BMI088 accelerometer and
// gyroscope into ordered sample sequences.
package fifo

import (
	"errors"
	"fmt"

	"github.com/mklimuk/bmi088"
)

var (
	ErrUnknownFrame   = errors.New("fifo: unrecognized frame header")
	ErrTruncatedFrame = errors.New("fifo: frame truncated by end of buffer")
)

type AnomalyKind uint8

const (
	UnknownFrame AnomalyKind = iota + 1
	TruncatedFrame
)

// Anomaly describes where decoding stopped on a corrupt stream.
type Anomaly struct {
	Kind   AnomalyKind
	Offset int
	Header byte
}

func (a Anomaly) Err() error {
	sentinel := ErrUnknownFrame
	if a.Kind == TruncatedFrame {
		sentinel = ErrTruncatedFrame
	}
	return fmt.Errorf("%w: header %#02x at offset %d", sentinel, a.Header, a.Offset)
}

// Batch is the result of decoding one FIFO read. It owns its samples; the
// driver keeps no reference to it.
type Batch struct {
	Samples []bmi088.Vector3
	// Skipped is the number of frames the accelerometer skipped before the
	// batch started. Always 0 for the gyroscope.
	Skipped int
	// SensorTime is the 24-bit device time attached to the end of the stream.
	SensorTime    uint32
	HasSensorTime bool
	// ConfigChanges holds the sample indexes at which the device reported a
	// configuration change. Samples before such an index may be mis-scaled.
	ConfigChanges []int
	// Anomaly is set when decoding stopped before a clean end of stream.
	Anomaly *Anomaly
}

// Err returns the anomaly that truncated the batch, nil on a clean decode.
func (b Batch) Err() error {
	if b.Anomaly == nil {
		return nil
	}
	return b.Anomaly.Err()
}

// Dropped counts the sentinel samples in the batch.
func (b Batch) Dropped() int {
	n := 0
	for _, s := range b.Samples {
		if s.IsDropped() {
			n++
		}
	}
	return n
}
