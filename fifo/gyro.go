package fifo

import (
	"bytes"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/units"
)

const (
	GyroFrameSize  = 6
	GyroMaxFrames  = 100
	GyroBufferSize = GyroFrameSize * GyroMaxFrames
)

// gyroEmptyFrame is what the gyroscope returns for an unused FIFO slot:
// -32768 on all three axes.
var gyroEmptyFrame = []byte{0x00, 0x80, 0x00, 0x80, 0x00, 0x80}

// ReadGyro parses a gyroscope FIFO read of fixed 6-byte frames. It stops at
// the first empty frame or after GyroMaxFrames frames. Trailing bytes that do
// not form a whole frame are ignored.
func ReadGyro(buf []byte, r units.GyroRange) Batch {
	frames := min(len(buf)/GyroFrameSize, GyroMaxFrames)
	out := Batch{
		Samples: make([]bmi088.Vector3, 0, frames),
	}
	for f := 0; f < frames; f++ {
		frame := buf[f*GyroFrameSize : (f+1)*GyroFrameSize]
		if bytes.Equal(frame, gyroEmptyFrame) {
			break
		}
		out.Samples = append(out.Samples, units.AngularRate(frame, r))
	}
	return out
}
