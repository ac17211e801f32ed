package imu

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mklimuk/bmi088"
	"github.com/mklimuk/bmi088/accel"
	"github.com/mklimuk/bmi088/fifo"
	"github.com/mklimuk/bmi088/gyro"
	"github.com/mklimuk/bmi088/sim"
	"github.com/mklimuk/bmi088/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccelerometer struct {
	mock.Mock
}

func (m *MockAccelerometer) ReadID(ctx context.Context) (byte, error) {
	args := m.Called(ctx)
	return args.Get(0).(byte), args.Error(1)
}

func (m *MockAccelerometer) ReloadConfig(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAccelerometer) ConfigureForLogging(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAccelerometer) SetPowerMode(ctx context.Context, p accel.PowerMode) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockAccelerometer) SetEnabled(ctx context.Context, enabled bool) error {
	return m.Called(ctx, enabled).Error(0)
}

func (m *MockAccelerometer) SelfTest(ctx context.Context) (accel.SelfTestResult, error) {
	args := m.Called(ctx)
	return args.Get(0).(accel.SelfTestResult), args.Error(1)
}

func (m *MockAccelerometer) ReadAcceleration(ctx context.Context) (bmi088.Vector3, error) {
	args := m.Called(ctx)
	return args.Get(0).(bmi088.Vector3), args.Error(1)
}

func (m *MockAccelerometer) ReadFIFO(ctx context.Context) (fifo.Batch, error) {
	args := m.Called(ctx)
	return args.Get(0).(fifo.Batch), args.Error(1)
}

type MockGyroscope struct {
	mock.Mock
}

func (m *MockGyroscope) ReadID(ctx context.Context) (byte, error) {
	args := m.Called(ctx)
	return args.Get(0).(byte), args.Error(1)
}

func (m *MockGyroscope) ReloadConfig(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGyroscope) ConfigureForLogging(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGyroscope) SetPowerMode(ctx context.Context, p gyro.PowerMode) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockGyroscope) SelfTest(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockGyroscope) ReadRates(ctx context.Context) (bmi088.Vector3, error) {
	args := m.Called(ctx)
	return args.Get(0).(bmi088.Vector3), args.Error(1)
}

func (m *MockGyroscope) ReadFIFO(ctx context.Context) (fifo.Batch, error) {
	args := m.Called(ctx)
	return args.Get(0).(fifo.Batch), args.Error(1)
}

func TestIMU_Ready(t *testing.T) {
	tests := []struct {
		name     string
		accelOK  bool
		gyroOK   bool
		expected Readiness
	}{
		{"both pass", true, true, Ready},
		{"accel fails", false, true, AccelFailed},
		{"gyro fails", true, false, GyroFailed},
		{"both fail", false, false, BothFailed},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := new(MockAccelerometer)
			g := new(MockGyroscope)
			a.On("SelfTest", mock.Anything).Return(accel.SelfTestResult{Passed: test.accelOK}, nil)
			g.On("SelfTest", mock.Anything).Return(test.gyroOK, nil)

			r, err := New(a, g).Ready(context.Background())
			require.NoError(t, err)
			assert.Equal(t, test.expected, r)
			a.AssertExpectations(t)
			g.AssertExpectations(t)
		})
	}
}

func TestIMU_ReadyCodesDistinct(t *testing.T) {
	codes := map[Readiness]bool{}
	for _, r := range []Readiness{Ready, AccelFailed, GyroFailed, BothFailed} {
		codes[r] = true
		assert.NotEqual(t, 0, int(r))
	}
	assert.Len(t, codes, 4)
	assert.Equal(t, 1, int(Ready))
}

func TestIMU_ReadyBusError(t *testing.T) {
	busErr := errors.New("bus gone")
	a := new(MockAccelerometer)
	g := new(MockGyroscope)
	a.On("SelfTest", mock.Anything).Return(accel.SelfTestResult{}, busErr)

	_, err := New(a, g).Ready(context.Background())
	assert.ErrorIs(t, err, busErr)
	g.AssertNotCalled(t, "SelfTest", mock.Anything)
}

func TestIMU_Init(t *testing.T) {
	a := new(MockAccelerometer)
	g := new(MockGyroscope)
	// garbage identity is not an error
	a.On("ReadID", mock.Anything).Return(byte(0xFF), nil).Once()
	g.On("ReadID", mock.Anything).Return(byte(0x0F), nil).Once()
	a.On("ReloadConfig", mock.Anything).Return(nil).Once()
	g.On("ReloadConfig", mock.Anything).Return(nil).Once()

	require.NoError(t, New(a, g).Init(context.Background()))
	a.AssertExpectations(t)
	g.AssertExpectations(t)
}

func TestIMU_InitBusError(t *testing.T) {
	busErr := errors.New("bus gone")
	a := new(MockAccelerometer)
	g := new(MockGyroscope)
	a.On("ReadID", mock.Anything).Return(byte(0), busErr)

	assert.ErrorIs(t, New(a, g).Init(context.Background()), busErr)
	g.AssertNotCalled(t, "ReadID", mock.Anything)
}

func TestIMU_EnableAll(t *testing.T) {
	a := new(MockAccelerometer)
	g := new(MockGyroscope)
	a.On("SetPowerMode", mock.Anything, accel.PowerActive).Return(nil).Once()
	a.On("SetEnabled", mock.Anything, true).Return(nil).Once()
	g.On("SetPowerMode", mock.Anything, gyro.PowerNormal).Return(nil).Once()
	sleeper := &sim.Sleeper{}

	require.NoError(t, New(a, g, WithSleeper(sleeper)).EnableAll(context.Background()))
	assert.Equal(t, []time.Duration{StabilizationDelay}, sleeper.Calls())
	a.AssertExpectations(t)
	g.AssertExpectations(t)
}

func TestIMU_ConfigureForLogging(t *testing.T) {
	a := new(MockAccelerometer)
	g := new(MockGyroscope)
	a.On("ConfigureForLogging", mock.Anything).Return(nil).Once()
	g.On("ConfigureForLogging", mock.Anything).Return(nil).Once()

	require.NoError(t, New(a, g).ConfigureForLogging(context.Background()))
	a.AssertExpectations(t)
	g.AssertExpectations(t)
}

func TestIMU_Read(t *testing.T) {
	a := new(MockAccelerometer)
	g := new(MockGyroscope)
	a.On("ReadAcceleration", mock.Anything).Return(bmi088.Vector3{Z: 9.8}, nil)
	g.On("ReadRates", mock.Anything).Return(bmi088.Vector3{X: 0.1}, nil)

	s, err := New(a, g).Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Sample{
		Acceleration: bmi088.Vector3{Z: 9.8},
		AngularRate:  bmi088.Vector3{X: 0.1},
	}, s)
}

// overlapTracker records how many transactions were in flight at once
// across the connections it wraps.
type overlapTracker struct {
	mx       sync.Mutex
	inFlight int
	max      int
}

func (o *overlapTracker) wrap(dev *sim.Device) bmi088.SPIConn {
	return trackedConn{dev: dev, tracker: o}
}

type trackedConn struct {
	dev     *sim.Device
	tracker *overlapTracker
}

func (c trackedConn) Tx(ctx context.Context, w, r []byte) error {
	c.tracker.mx.Lock()
	c.tracker.inFlight++
	if c.tracker.inFlight > c.tracker.max {
		c.tracker.max = c.tracker.inFlight
	}
	c.tracker.mx.Unlock()
	time.Sleep(100 * time.Microsecond)
	c.tracker.mx.Lock()
	c.tracker.inFlight--
	c.tracker.mx.Unlock()
	return c.dev.Tx(ctx, w, r)
}

func TestNewDrivers_SharedLock(t *testing.T) {
	tracker := &overlapTracker{}
	a, g := NewDrivers(tracker.wrap(sim.NewAccel()), tracker.wrap(sim.NewGyro()))
	ctx := context.Background()

	var wg sync.WaitGroup
	for n := 0; n < 10; n++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := a.ReadID(ctx)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := g.ReadID(ctx)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, tracker.max)

	i := New(a, g)
	assert.Same(t, a, i.Accelerometer())
	assert.Same(t, g, i.Gyroscope())
}

func TestIMU_Simulated(t *testing.T) {
	ctx := context.Background()
	accelDev := sim.NewAccel()
	gyroDev := sim.NewGyro()
	sleeper := &sim.Sleeper{}
	i := NewFromConns(accelDev, gyroDev, WithSleeper(sleeper))

	require.NoError(t, i.Init(ctx))
	require.NoError(t, i.ConfigureForLogging(ctx))
	require.NoError(t, i.EnableAll(ctx))
	assert.Equal(t, byte(0x04), accelDev.Register(0x7D))

	accelDev.SetInt16(sim.AccelRegData, 0, 0, 1365)
	gyroDev.SetInt16(sim.GyroRegData, 16384, 0, 0)
	s, err := i.Read(ctx)
	require.NoError(t, err)
	assert.InDelta(t, units.StandardGravity, s.Acceleration.Z, 0.01)
	assert.InDelta(t, 16384*units.GyroRange1000.RadiansPerLSB(), s.AngularRate.X, 1e-9)

	accelDev.LoadAccelFIFO([]byte{0x84, 0, 0, 0, 0, 0x55, 0x05})
	gyroDev.LoadGyroFIFO([]byte{0x00, 0x40, 0, 0, 0, 0})
	b, err := i.ReadFIFO(ctx)
	require.NoError(t, err)
	assert.Len(t, b.Accel.Samples, 1)
	assert.Len(t, b.Gyro.Samples, 1)

	r, err := i.Ready(ctx)
	require.NoError(t, err)
	assert.Equal(t, Ready, r)

	failing := NewFromConns(sim.NewAccel(), sim.NewGyro(sim.WithGyroSelfTest(sim.GyroSelfTestFail)), WithSleeper(sleeper))
	r, err = failing.Ready(ctx)
	require.NoError(t, err)
	assert.Equal(t, GyroFailed, r)
}
