package accel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/units"
)

const (
	selfTestSetupDelay  = 5 * time.Millisecond
	selfTestSettleDelay = 55 * time.Millisecond
)

// SelfTestThreshold is the minimal positive minus negative excitation
// difference per axis, in m/s^2.
var SelfTestThreshold = bmi088.Vector3{
	X: units.StandardGravity,
	Y: units.StandardGravity,
	Z: units.StandardGravity / 2,
}

type SelfTestResult struct {
	Positive   bmi088.Vector3 `yaml:"positive"`
	Negative   bmi088.Vector3 `yaml:"negative"`
	Difference bmi088.Vector3 `yaml:"difference"`
	Passed     bool           `yaml:"passed"`
}

// SelfTest excites the sensing element electrostatically in both directions
// and compares the two readings. It leaves the device at ±24g, 1600Hz.
// A failed test is a result, not an error.
func (a *Accelerometer) SelfTest(ctx context.Context) (res SelfTestResult, err error) {
	if err := a.SetRange(ctx, units.AccelRange24G); err != nil {
		return SelfTestResult{}, err
	}
	if err := a.SetConfig(ctx, OversamplingNormal, ODR1600); err != nil {
		return SelfTestResult{}, err
	}
	if err := a.sleep.Sleep(ctx, selfTestSetupDelay); err != nil {
		return SelfTestResult{}, err
	}
	// the excitation must not outlive an aborted test
	stopped := false
	defer func() {
		if err == nil || stopped {
			return
		}
		if stopErr := a.regs.Write(context.WithoutCancel(ctx), regSelfTest, selfTestOff); stopErr != nil {
			slog.Warn("accel: could not stop self-test", "error", stopErr)
		}
	}()
	positive, err := a.excite(ctx, selfTestPositive)
	if err != nil {
		return SelfTestResult{}, err
	}
	negative, err := a.excite(ctx, selfTestNegative)
	if err != nil {
		return SelfTestResult{}, err
	}
	if err := a.regs.Write(ctx, regSelfTest, selfTestOff); err != nil {
		return SelfTestResult{}, fmt.Errorf("accel: could not stop self-test: %w", err)
	}
	stopped = true
	if err := a.sleep.Sleep(ctx, selfTestSettleDelay); err != nil {
		return SelfTestResult{}, err
	}
	diff := positive.Sub(negative)
	res = SelfTestResult{
		Positive:   positive,
		Negative:   negative,
		Difference: diff,
		Passed: diff.X >= SelfTestThreshold.X &&
			diff.Y >= SelfTestThreshold.Y &&
			diff.Z >= SelfTestThreshold.Z,
	}
	slog.Debug("accel self-test done", "difference", diff.String(), "passed", res.Passed)
	return res, nil
}

func (a *Accelerometer) excite(ctx context.Context, polarity byte) (bmi088.Vector3, error) {
	if err := a.regs.Write(ctx, regSelfTest, polarity); err != nil {
		return bmi088.Vector3{}, fmt.Errorf("accel: could not start self-test: %w", err)
	}
	if err := a.sleep.Sleep(ctx, selfTestSettleDelay); err != nil {
		return bmi088.Vector3{}, err
	}
	return a.ReadAcceleration(ctx)
}
