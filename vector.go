package bmi088

import (
	"fmt"
	"math"
)

// Vector3 is a three axis measurement. Unit depends on the producing die:
// m/s^2 for the accelerometer, rad/s for the gyroscope.
type Vector3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

// Dropped returns the marker stored in place of a sample the device dropped.
// It keeps sequences aligned in time and must not be used as a measurement.
func Dropped() Vector3 {
	return Vector3{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
}

func (v Vector3) IsDropped() bool {
	return math.IsNaN(v.X) && math.IsNaN(v.Y) && math.IsNaN(v.Z)
}

func (v Vector3) Sub(o Vector3) Vector3 {
	return Vector3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vector3) Scale(f float64) Vector3 {
	return Vector3{X: v.X * f, Y: v.Y * f, Z: v.Z * f}
}

func (v Vector3) String() string {
	if v.IsDropped() {
		return "(dropped)"
	}
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}
