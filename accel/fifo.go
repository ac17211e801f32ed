package accel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mklimuk/bmi088/fifo"
)

// ReadFIFOLength returns the FIFO fill level in bytes.
func (a *Accelerometer) ReadFIFOLength(ctx context.Context) (int, error) {
	raw := make([]byte, 2)
	if err := a.regs.Read(ctx, regFIFOLength0, raw); err != nil {
		return 0, fmt.Errorf("accel: could not read FIFO length: %w", err)
	}
	return int(raw[1]&fifoLengthMSBMask)<<8 | int(raw[0]), nil
}

// ReadFIFO drains the FIFO and decodes it with the cached range.
//
// The read is bounded by the fill level plus room for the sensor time frame
// the device appends on over-read. A corrupt stream is not an error: the
// returned batch holds what was decoded and reports the anomaly through
// Batch.Err. When the stream carries a configuration change frame the cached
// configuration is reloaded so the next batch uses the device settings.
func (a *Accelerometer) ReadFIFO(ctx context.Context) (fifo.Batch, error) {
	length, err := a.ReadFIFOLength(ctx)
	if err != nil {
		return fifo.Batch{}, err
	}
	if length == 0 {
		return fifo.DecodeAccel(nil, a.Config().Range), nil
	}
	buf := make([]byte, min(length+fifo.SensorTimeFrameSize, fifo.AccelBufferSize))
	if err := a.regs.Read(ctx, regFIFOData, buf); err != nil {
		return fifo.Batch{}, fmt.Errorf("accel: could not read FIFO data: %w", err)
	}
	batch := fifo.DecodeAccel(buf, a.Config().Range)
	if err := batch.Err(); err != nil {
		slog.Warn("accel FIFO stream truncated", "error", err, "decoded", len(batch.Samples))
	}
	if len(batch.ConfigChanges) > 0 {
		slog.Warn("accel configuration changed while samples were buffered", "at", batch.ConfigChanges)
		if err := a.ReloadConfig(ctx); err != nil {
			return batch, err
		}
	}
	return batch, nil
}
