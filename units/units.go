// Package units converts raw BMI088 register values to physical units.
//
// Axis values are 16-bit two's complement, least significant byte first.
// Acceleration is returned in m/s^2, angular rate in rad/s. Conversions
// never fail: a range code that is not recognised yields a zero vector.
package units

import (
	"fmt"
	"math"

	"github.com/mklimuk/bmi088"
)

// StandardGravity in m/s^2.
const StandardGravity = 9.80665

const (
	accelFullScaleLSB = 32768.0
	gyroFullScaleLSB  = 32767.0
	// accelerometer output is 1.5x the nominal range (datasheet sect. 5.3.4)
	accelGain = 1.5
)

// AccelRange is the ACC_RANGE register value.
type AccelRange uint8

const (
	AccelRange3G  AccelRange = 0x00
	AccelRange6G  AccelRange = 0x01
	AccelRange12G AccelRange = 0x02
	AccelRange24G AccelRange = 0x03
	// AccelRangeUnknown is held by drivers until the configuration is read back.
	AccelRangeUnknown AccelRange = 0xFF
)

// G returns the nominal full scale in g, 0 when r is not a valid range.
func (r AccelRange) G() int {
	switch r {
	case AccelRange3G:
		return 3
	case AccelRange6G:
		return 6
	case AccelRange12G:
		return 12
	case AccelRange24G:
		return 24
	}
	return 0
}

func (r AccelRange) String() string {
	if g := r.G(); g > 0 {
		return fmt.Sprintf("±%dg", g)
	}
	return "unknown"
}

// scale is the 2<<range multiplier applied to raw counts.
func (r AccelRange) scale() (float64, bool) {
	if r > AccelRange24G {
		return 0, false
	}
	return float64(int32(2) << r), true
}

func AccelRangeFromG(g int) (AccelRange, error) {
	for _, r := range []AccelRange{AccelRange3G, AccelRange6G, AccelRange12G, AccelRange24G} {
		if r.G() == g {
			return r, nil
		}
	}
	return AccelRangeUnknown, fmt.Errorf("unsupported accelerometer range %dg (3, 6, 12 or 24)", g)
}

// GyroRange is the GYRO_RANGE register value.
type GyroRange uint8

const (
	GyroRange2000 GyroRange = 0x00
	GyroRange1000 GyroRange = 0x01
	GyroRange500  GyroRange = 0x02
	GyroRange250  GyroRange = 0x03
	GyroRange125  GyroRange = 0x04
	// GyroRangeUnknown is held by drivers until the configuration is read back.
	GyroRangeUnknown GyroRange = 0xFF
)

// DegreesPerSecond returns the full scale, 0 when r is not a valid range.
func (r GyroRange) DegreesPerSecond() int {
	switch r {
	case GyroRange2000:
		return 2000
	case GyroRange1000:
		return 1000
	case GyroRange500:
		return 500
	case GyroRange250:
		return 250
	case GyroRange125:
		return 125
	}
	return 0
}

// RadiansPerLSB is the rate represented by one raw count.
func (r GyroRange) RadiansPerLSB() float64 {
	return (math.Pi * float64(r.DegreesPerSecond()) / 180.0) / gyroFullScaleLSB
}

func (r GyroRange) String() string {
	if dps := r.DegreesPerSecond(); dps > 0 {
		return fmt.Sprintf("±%d°/s", dps)
	}
	return "unknown"
}

func GyroRangeFromDPS(dps int) (GyroRange, error) {
	for _, r := range []GyroRange{GyroRange2000, GyroRange1000, GyroRange500, GyroRange250, GyroRange125} {
		if r.DegreesPerSecond() == dps {
			return r, nil
		}
	}
	return GyroRangeUnknown, fmt.Errorf("unsupported gyroscope range %d°/s (125, 250, 500, 1000 or 2000)", dps)
}

// Int16 rebuilds a two's complement value from its little endian bytes.
func Int16(lsb, msb byte) int16 {
	return int16(uint16(msb)<<8 | uint16(lsb))
}

// Acceleration converts 6 raw bytes (x, y, z) to m/s^2.
func Acceleration(raw []byte, r AccelRange) bmi088.Vector3 {
	scale, ok := r.scale()
	if !ok || len(raw) < 6 {
		return bmi088.Vector3{}
	}
	conv := func(lsb, msb byte) float64 {
		return float64(Int16(lsb, msb)) * scale / accelFullScaleLSB * accelGain * StandardGravity
	}
	return bmi088.Vector3{
		X: conv(raw[0], raw[1]),
		Y: conv(raw[2], raw[3]),
		Z: conv(raw[4], raw[5]),
	}
}

// AngularRate converts 6 raw bytes (x, y, z) to rad/s.
func AngularRate(raw []byte, r GyroRange) bmi088.Vector3 {
	if len(raw) < 6 {
		return bmi088.Vector3{}
	}
	k := r.RadiansPerLSB()
	return bmi088.Vector3{
		X: float64(Int16(raw[0], raw[1])) * k,
		Y: float64(Int16(raw[2], raw[3])) * k,
		Z: float64(Int16(raw[4], raw[5])) * k,
	}
}
