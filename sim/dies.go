package sim

// Accelerometer register file.
const (
	AccelChipID      = 0x1E
	AccelRegData     = 0x12
	AccelRegTemp     = 0x22
	AccelRegFIFOLen  = 0x24
	AccelRegFIFOData = 0x26
	accelRegSelfTest = 0x6D
	accelRegReset    = 0x7E
)

// Gyroscope register file.
const (
	GyroChipID         = 0x0F
	GyroRegData        = 0x02
	GyroRegFIFOStatus  = 0x0E
	GyroRegFIFOData    = 0x3F
	gyroRegSelfTest    = 0x3C
	gyroRegReset       = 0x14
	gyroSelfTestStart  = 0x01
	softResetCmd       = 0xB6
	accelSelfTestPos   = 0x0D
	accelSelfTestNeg   = 0x09
	accelSelfTestOff   = 0x00
	accelFIFOEnd       = 0x80
	gyroFIFOFrameBytes = 6
)

// Gyroscope self-test outcomes written to the self-test register.
const (
	GyroSelfTestPass    byte = 0x02
	GyroSelfTestFail    byte = 0x06
	GyroSelfTestPending byte = 0x00
)

var (
	accelDefaults = map[byte]byte{
		0x00: AccelChipID,
		0x40: 0xA8,
		0x41: 0x01,
		0x45: 0x80,
		0x48: 0x02,
		0x49: 0x10,
		0x7C: 0x03,
		0x7D: 0x00,
	}
	gyroDefaults = map[byte]byte{
		0x00: GyroChipID,
		0x0F: 0x00,
		0x10: 0x80,
		0x11: 0x00,
		0x3E: 0x00,
	}
	gyroEmptyFrame = []byte{0x00, 0x80, 0x00, 0x80, 0x00, 0x80}
)

// AccelSelfTestPass is a raw excitation response that passes the self-test
// at ±24g: 15.7 m/s^2 difference on x and y, 7.8 m/s^2 on z.
var AccelSelfTestPass = [2][3]int16{
	{1092, 1092, 546},
	{-1092, -1092, -546},
}

type dieOpts struct {
	hook          WriteHook
	accelResponse [2][3]int16
	gyroResult    byte
}

type DieOpt func(*dieOpts)

// WithAccelSelfTest sets the raw samples reported during positive and
// negative excitation.
func WithAccelSelfTest(positive, negative [3]int16) DieOpt {
	return func(o *dieOpts) {
		o.accelResponse = [2][3]int16{positive, negative}
	}
}

// WithGyroSelfTest sets the self-test register content after a trigger.
func WithGyroSelfTest(result byte) DieOpt {
	return func(o *dieOpts) {
		o.gyroResult = result
	}
}

// WithHook chains h after the die behaviour.
func WithHook(h WriteHook) DieOpt {
	return func(o *dieOpts) {
		o.hook = h
	}
}

func newDieOpts(opts []DieOpt) dieOpts {
	o := dieOpts{
		accelResponse: AccelSelfTestPass,
		gyroResult:    GyroSelfTestPass,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func loadDefaults(d *Device, defaults map[byte]byte) {
	for addr, v := range defaults {
		d.regs[addr] = v
	}
}

// NewAccel returns a simulated accelerometer with power-on register values.
// It answers with a dummy byte, restores defaults on soft reset and drives
// the data registers during self-test.
func NewAccel(opts ...DieOpt) *Device {
	o := newDieOpts(opts)
	d := New(WithDummyByte(), WithWriteHook(func(d *Device, addr, value byte) {
		switch {
		case addr == accelRegReset && value == softResetCmd:
			loadDefaults(d, accelDefaults)
		case addr == accelRegSelfTest && value == accelSelfTestPos:
			r := o.accelResponse[0]
			d.SetInt16Locked(AccelRegData, r[0], r[1], r[2])
		case addr == accelRegSelfTest && value == accelSelfTestNeg:
			r := o.accelResponse[1]
			d.SetInt16Locked(AccelRegData, r[0], r[1], r[2])
		case addr == accelRegSelfTest && value == accelSelfTestOff:
			d.SetInt16Locked(AccelRegData, 0, 0, 0)
		}
		if o.hook != nil {
			o.hook(d, addr, value)
		}
	}))
	loadDefaults(d, accelDefaults)
	return d
}

// NewGyro returns a simulated gyroscope with power-on register values.
func NewGyro(opts ...DieOpt) *Device {
	o := newDieOpts(opts)
	d := New(WithWriteHook(func(d *Device, addr, value byte) {
		switch {
		case addr == gyroRegReset && value == softResetCmd:
			loadDefaults(d, gyroDefaults)
		case addr == gyroRegSelfTest && value == gyroSelfTestStart:
			d.regs[gyroRegSelfTest] = o.gyroResult
		}
		if o.hook != nil {
			o.hook(d, addr, value)
		}
	}))
	loadDefaults(d, gyroDefaults)
	return d
}

// LoadAccelFIFO queues raw frames in the accelerometer FIFO and updates the
// fill level registers. Reads past the queued bytes return end-of-stream
// frames.
func (d *Device) LoadAccelFIFO(frames []byte) {
	d.Stream(AccelRegFIFOData, frames, []byte{accelFIFOEnd}, func(d *Device, remaining int) {
		d.SetLocked(AccelRegFIFOLen, byte(remaining), byte(remaining>>8)&0x3F)
	})
	d.Set(AccelRegFIFOLen, byte(len(frames)), byte(len(frames)>>8)&0x3F)
}

// LoadGyroFIFO queues raw 6 byte frames in the gyroscope FIFO. Reads past the
// queued frames return the empty frame pattern.
func (d *Device) LoadGyroFIFO(frames []byte) {
	d.Stream(GyroRegFIFOData, frames, gyroEmptyFrame, func(d *Device, remaining int) {
		d.SetLocked(GyroRegFIFOStatus, byte(remaining/gyroFIFOFrameBytes))
	})
	d.Set(GyroRegFIFOStatus, byte(len(frames)/gyroFIFOFrameBytes))
}
