package bmi088

// FIFOMode is the buffering mode of a sensor FIFO. Register encodings differ
// between the dies and live in the driver packages.
type FIFOMode uint8

const (
	FIFODisabled FIFOMode = iota
	FIFOStream
	FIFOStopAtFull
)

func (m FIFOMode) String() string {
	switch m {
	case FIFODisabled:
		return "disabled"
	case FIFOStream:
		return "stream"
	case FIFOStopAtFull:
		return "stop-at-full"
	default:
		return "unknown"
	}
}

func ParseFIFOMode(s string) (FIFOMode, bool) {
	switch s {
	case "disabled", "bypass", "":
		return FIFODisabled, true
	case "stream":
		return FIFOStream, true
	case "stop-at-full", "fifo":
		return FIFOStopAtFull, true
	}
	return 0, false
}
