package fifo

import (
	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/units"
)

// AccelBufferSize is the capacity of the accelerometer FIFO.
const AccelBufferSize = 1024

// Frame headers; the two low bits carry the interrupt tag and are ignored.
const (
	headerMask       = 0xFC
	headerSkip       = 0x40
	headerSensorTime = 0x44
	headerConfig     = 0x48
	headerDrop       = 0x50
	headerEnd        = 0x80
	headerData       = 0x84
)

// frame lengths including the header byte
const (
	skipFrameSize       = 2
	sensorTimeFrameSize = 4
	configFrameSize     = 2
	dropFrameSize       = 2
	dataFrameSize       = 7

	// smallest frame that produces a sample
	minSampleFrameSize = dropFrameSize
)

// SensorTimeFrameSize is the number of bytes the device appends after the
// last frame when the FIFO is read past its fill level.
const SensorTimeFrameSize = sensorTimeFrameSize

// DecodeAccel parses an accelerometer FIFO read. Every DATA frame is scaled
// with r; every DROP frame yields bmi088.Dropped() at its position. A SKIP
// frame is only recognised as the first frame. Decoding stops at the END
// frame, at the end of buf, or at the first frame it cannot parse, in which
// case the batch holds the samples decoded so far and Anomaly is set.
func DecodeAccel(buf []byte, r units.AccelRange) Batch {
	out := Batch{
		Samples: make([]bmi088.Vector3, 0, len(buf)/minSampleFrameSize),
	}
	i := 0
	if len(buf) > 0 && buf[0]&headerMask == headerSkip {
		if len(buf) < skipFrameSize {
			out.Anomaly = &Anomaly{Kind: TruncatedFrame, Offset: 0, Header: buf[0]}
			return out
		}
		out.Skipped = int(buf[1])
		i = skipFrameSize
	}
	for i < len(buf) {
		header := buf[i]
		size := 0
		switch header & headerMask {
		case headerEnd:
			return out
		case headerData:
			size = dataFrameSize
		case headerSensorTime:
			size = sensorTimeFrameSize
		case headerConfig:
			size = configFrameSize
		case headerDrop:
			size = dropFrameSize
		default:
			out.Anomaly = &Anomaly{Kind: UnknownFrame, Offset: i, Header: header}
			return out
		}
		if i+size > len(buf) {
			out.Anomaly = &Anomaly{Kind: TruncatedFrame, Offset: i, Header: header}
			return out
		}
		frame := buf[i : i+size]
		switch header & headerMask {
		case headerData:
			out.Samples = append(out.Samples, units.Acceleration(frame[1:], r))
		case headerSensorTime:
			out.SensorTime = uint32(frame[1]) | uint32(frame[2])<<8 | uint32(frame[3])<<16
			out.HasSensorTime = true
		case headerConfig:
			out.ConfigChanges = append(out.ConfigChanges, len(out.Samples))
		case headerDrop:
			out.Samples = append(out.Samples, bmi088.Dropped())
		}
		i += size
	}
	return out
}
