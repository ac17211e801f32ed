package gyro

import (
	"fmt"

	"github.com/mklimuk/bmi088"
)

const (
	regChipID      = 0x00
	regRateXLSB    = 0x02
	regIntStat1    = 0x0A
	regFIFOStatus  = 0x0E
	regRange       = 0x0F
	regBandwidth   = 0x10
	regLPM1        = 0x11
	regSoftReset   = 0x14
	regSelfTest    = 0x3C
	regFIFOConfig1 = 0x3E
	regFIFOData    = 0x3F
)

const (
	// ChipID is the content of the chip id register.
	ChipID = 0x0F

	intStatDataReady = 0x80

	fifoStatusFrameCount = 0x7F
	fifoStatusOverrun    = 0x80

	fifoModeMask       = 0xC0
	fifoModeBypass     = 0x00
	fifoModeStopAtFull = 0x40
	fifoModeStream     = 0x80

	bandwidthMask = 0x7F

	selfTestTrigger = 0x01
	selfTestReady   = 0x02
	selfTestFailed  = 0x04

	softResetCmd = 0xB6
)

// Bandwidth selects output data rate and filter bandwidth together.
type Bandwidth uint8

const (
	ODR2000BW532 Bandwidth = 0x00
	ODR2000BW230 Bandwidth = 0x01
	ODR1000BW116 Bandwidth = 0x02
	ODR400BW47   Bandwidth = 0x03
	ODR200BW23   Bandwidth = 0x04
	ODR100BW12   Bandwidth = 0x05
	ODR200BW64   Bandwidth = 0x06
	ODR100BW32   Bandwidth = 0x07
)

var bandwidths = map[Bandwidth][2]int{
	ODR2000BW532: {2000, 532},
	ODR2000BW230: {2000, 230},
	ODR1000BW116: {1000, 116},
	ODR400BW47:   {400, 47},
	ODR200BW23:   {200, 23},
	ODR100BW12:   {100, 12},
	ODR200BW64:   {200, 64},
	ODR100BW32:   {100, 32},
}

// ODRHz returns the output data rate, 0 for an unknown value.
func (b Bandwidth) ODRHz() int {
	return bandwidths[b][0]
}

// FilterHz returns the filter bandwidth, 0 for an unknown value.
func (b Bandwidth) FilterHz() int {
	return bandwidths[b][1]
}

func (b Bandwidth) String() string {
	if _, ok := bandwidths[b]; !ok {
		return fmt.Sprintf("unknown(%#02x)", uint8(b))
	}
	return fmt.Sprintf("%dHz/%dHz", b.ODRHz(), b.FilterHz())
}

func BandwidthFor(odrHz, filterHz int) (Bandwidth, error) {
	for b, v := range bandwidths {
		if v[0] == odrHz && v[1] == filterHz {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unsupported gyroscope data rate %dHz with filter %dHz", odrHz, filterHz)
}

// PowerMode is the GYRO_LPM1 register value.
type PowerMode uint8

const (
	PowerNormal      PowerMode = 0x00
	PowerSuspend     PowerMode = 0x80
	PowerDeepSuspend PowerMode = 0x20
)

func (p PowerMode) String() string {
	switch p {
	case PowerNormal:
		return "normal"
	case PowerSuspend:
		return "suspend"
	case PowerDeepSuspend:
		return "deep-suspend"
	}
	return fmt.Sprintf("unknown(%#02x)", uint8(p))
}

func fifoModeRegister(m bmi088.FIFOMode) (byte, error) {
	switch m {
	case bmi088.FIFODisabled:
		return fifoModeBypass, nil
	case bmi088.FIFOStream:
		return fifoModeStream, nil
	case bmi088.FIFOStopAtFull:
		return fifoModeStopAtFull, nil
	}
	return 0, fmt.Errorf("unsupported FIFO mode %d", m)
}

func fifoModeFromRegister(v byte) bmi088.FIFOMode {
	switch v & fifoModeMask {
	case fifoModeStream:
		return bmi088.FIFOStream
	case fifoModeStopAtFull:
		return bmi088.FIFOStopAtFull
	}
	return bmi088.FIFODisabled
}
