package accel

import (
	"fmt"

	"github.com/mklimuk/bmi088"
)

// Register map (datasheet table 12)
const (
	regChipID      = 0x00
	regErr         = 0x02
	regStatus      = 0x03
	regAccXLSB     = 0x12
	regSensorTime0 = 0x18
	regTempMSB     = 0x22
	regFIFOLength0 = 0x24
	regFIFOData    = 0x26
	regAccConf     = 0x40
	regAccRange    = 0x41
	regFIFODowns   = 0x45
	regFIFOConfig0 = 0x48
	regFIFOConfig1 = 0x49
	regSelfTest    = 0x6D
	regPwrConf     = 0x7C
	regPwrCtrl     = 0x7D
	regSoftReset   = 0x7E
)

const (
	// ChipID is the content of the chip id register.
	ChipID = 0x1E

	statusDataReady = 0x80

	errFatal     = 0x01
	errCodeMask  = 0x1C
	errCodeShift = 2

	fifoLengthMSBMask = 0x3F

	fifoConfig0StopAtFull = 0x03
	fifoConfig0Stream     = 0x02
	fifoConfig0ModeBit    = 0x01
	fifoConfig1Enabled    = 0x50
	fifoConfig1Disabled   = 0x10
	fifoConfig1AccEnable  = 0x40

	// bit 7 selects filtered data and must stay set
	fifoDownsFiltered = 0x80
	fifoDownsShift    = 4
	fifoDownsMask     = 0x07

	selfTestPositive = 0x0D
	selfTestNegative = 0x09
	selfTestOff      = 0x00

	pwrCtrlEnabled  = 0x04
	pwrCtrlDisabled = 0x00

	softResetCmd = 0xB6
)

// Oversampling is the acc_bwp field of ACC_CONF.
type Oversampling uint8

const (
	Oversampling4      Oversampling = 0x08
	Oversampling2      Oversampling = 0x09
	OversamplingNormal Oversampling = 0x0A
)

// Factor returns 1, 2 or 4; 0 for an unknown value.
func (o Oversampling) Factor() int {
	switch o {
	case OversamplingNormal:
		return 1
	case Oversampling2:
		return 2
	case Oversampling4:
		return 4
	}
	return 0
}

func (o Oversampling) String() string {
	switch o {
	case OversamplingNormal:
		return "normal"
	case Oversampling2:
		return "osr2"
	case Oversampling4:
		return "osr4"
	}
	return fmt.Sprintf("unknown(%#02x)", uint8(o))
}

func OversamplingFromFactor(f int) (Oversampling, error) {
	switch f {
	case 1:
		return OversamplingNormal, nil
	case 2:
		return Oversampling2, nil
	case 4:
		return Oversampling4, nil
	}
	return 0, fmt.Errorf("unsupported oversampling factor %d (1, 2 or 4)", f)
}

// ODR is the acc_odr field of ACC_CONF.
type ODR uint8

const (
	ODR12_5 ODR = 0x05
	ODR25   ODR = 0x06
	ODR50   ODR = 0x07
	ODR100  ODR = 0x08
	ODR200  ODR = 0x09
	ODR400  ODR = 0x0A
	ODR800  ODR = 0x0B
	ODR1600 ODR = 0x0C
)

// Hz returns the output data rate, 0 for an unknown value.
func (o ODR) Hz() float64 {
	if o < ODR12_5 || o > ODR1600 {
		return 0
	}
	return 12.5 * float64(int(1)<<(o-ODR12_5))
}

func (o ODR) String() string {
	if hz := o.Hz(); hz > 0 {
		return fmt.Sprintf("%gHz", hz)
	}
	return fmt.Sprintf("unknown(%#02x)", uint8(o))
}

func ODRFromHz(hz float64) (ODR, error) {
	for o := ODR12_5; o <= ODR1600; o++ {
		if o.Hz() == hz {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unsupported accelerometer output data rate %gHz", hz)
}

// Downsample is the FIFO downsampling exponent: the FIFO keeps every 2^d-th sample.
type Downsample uint8

const (
	DownsampleNone Downsample = 0
	Downsample128x Downsample = 7
)

func (d Downsample) Factor() int {
	return 1 << d
}

func (d Downsample) register() byte {
	return fifoDownsFiltered | byte(d&fifoDownsMask)<<fifoDownsShift
}

func DownsampleFromFactor(f int) (Downsample, error) {
	for d := DownsampleNone; d <= Downsample128x; d++ {
		if d.Factor() == f {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unsupported FIFO downsampling %dx (power of two up to 128)", f)
}

// PowerMode is the ACC_PWR_CONF register value.
type PowerMode uint8

const (
	PowerActive  PowerMode = 0x00
	PowerSuspend PowerMode = 0x03
)

func (p PowerMode) String() string {
	switch p {
	case PowerActive:
		return "active"
	case PowerSuspend:
		return "suspend"
	}
	return fmt.Sprintf("unknown(%#02x)", uint8(p))
}

func fifoModeRegisters(m bmi088.FIFOMode) (cfg0, cfg1 byte, err error) {
	switch m {
	case bmi088.FIFODisabled:
		return fifoConfig0Stream, fifoConfig1Disabled, nil
	case bmi088.FIFOStream:
		return fifoConfig0Stream, fifoConfig1Enabled, nil
	case bmi088.FIFOStopAtFull:
		return fifoConfig0StopAtFull, fifoConfig1Enabled, nil
	}
	return 0, 0, fmt.Errorf("unsupported FIFO mode %d", m)
}

func fifoModeFromRegisters(cfg0, cfg1 byte) bmi088.FIFOMode {
	if cfg1&fifoConfig1AccEnable == 0 {
		return bmi088.FIFODisabled
	}
	if cfg0&fifoConfig0ModeBit != 0 {
		return bmi088.FIFOStopAtFull
	}
	return bmi088.FIFOStream
}
