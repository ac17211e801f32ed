package units

import (
	"encoding/hex"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/bmi088"
)

func TestInt16(t *testing.T) {
	tests := []struct {
		given    []byte
		expected int16
	}{
		{[]byte{0x00, 0x00}, 0},
		{[]byte{0x01, 0x00}, 1},
		{[]byte{0xFF, 0x7F}, 32767},
		{[]byte{0x00, 0x80}, -32768},
		{[]byte{0xFF, 0xFF}, -1},
		{[]byte{0x00, 0x40}, 16384},
	}
	for _, test := range tests {
		t.Run(hex.EncodeToString(test.given), func(t *testing.T) {
			assert.Equal(t, test.expected, Int16(test.given[0], test.given[1]))
		})
	}
}

func TestAcceleration(t *testing.T) {
	tests := []struct {
		name  string
		rng   AccelRange
		scale float64
	}{
		{"3g", AccelRange3G, 2},
		{"6g", AccelRange6G, 4},
		{"12g", AccelRange12G, 8},
		{"24g", AccelRange24G, 16},
	}
	raw := []byte{0x00, 0x40, 0x00, 0xC0, 0x34, 0x12}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Acceleration(raw, tt.rng)
			assert.InDelta(t, 16384.0/32768.0*1.5*StandardGravity*tt.scale, v.X, 1e-9)
			assert.InDelta(t, -16384.0/32768.0*1.5*StandardGravity*tt.scale, v.Y, 1e-9)
			assert.InDelta(t, 0x1234/32768.0*1.5*StandardGravity*tt.scale, v.Z, 1e-9)
		})
	}
}

func TestAcceleration_FullScale(t *testing.T) {
	v := Acceleration([]byte{0xFF, 0x7F, 0x00, 0x80, 0x00, 0x00}, AccelRange3G)
	assert.InDelta(t, 3*StandardGravity, v.X, 0.001)
	assert.InDelta(t, -3*StandardGravity, v.Y, 1e-9)
	assert.Zero(t, v.Z)
}

func TestAcceleration_UnknownRange(t *testing.T) {
	raw := []byte{0x00, 0x40, 0x00, 0x40, 0x00, 0x40}
	assert.Equal(t, bmi088.Vector3{}, Acceleration(raw, AccelRangeUnknown))
	assert.Equal(t, bmi088.Vector3{}, Acceleration(raw, AccelRange(0x04)))
}

func TestAngularRate(t *testing.T) {
	v := AngularRate([]byte{0x00, 0x40, 0x00, 0x00, 0x00, 0xC0}, GyroRange1000)
	expected := 16384 * (math.Pi * 1000 / 180) / 32767
	assert.InDelta(t, expected, v.X, 1e-12)
	assert.Zero(t, v.Y)
	assert.InDelta(t, -expected, v.Z, 1e-12)
}

func TestGyroRange_RadiansPerLSB(t *testing.T) {
	tests := []struct {
		rng GyroRange
		dps float64
	}{
		{GyroRange2000, 2000},
		{GyroRange1000, 1000},
		{GyroRange500, 500},
		{GyroRange250, 250},
		{GyroRange125, 125},
		{GyroRangeUnknown, 0},
	}
	for _, tt := range tests {
		t.Run(tt.rng.String(), func(t *testing.T) {
			assert.InDelta(t, math.Pi*tt.dps/180/32767, tt.rng.RadiansPerLSB(), 1e-15)
		})
	}
}

func TestAngularRate_UnknownRange(t *testing.T) {
	v := AngularRate([]byte{0xFF, 0x7F, 0xFF, 0x7F, 0xFF, 0x7F}, GyroRange(0x07))
	assert.Equal(t, bmi088.Vector3{}, v)
}

func TestRangeLookups(t *testing.T) {
	r, err := AccelRangeFromG(12)
	require.NoError(t, err)
	assert.Equal(t, AccelRange12G, r)
	_, err = AccelRangeFromG(16)
	assert.Error(t, err)

	g, err := GyroRangeFromDPS(250)
	require.NoError(t, err)
	assert.Equal(t, GyroRange250, g)
	_, err = GyroRangeFromDPS(300)
	assert.Error(t, err)
}
