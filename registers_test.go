package bmi088

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSPIConn is a mock implementation of SPIConn using testify/mock
type MockSPIConn struct {
	mock.Mock
	concurrentOps int64
	maxConcurrent int64
}

func (m *MockSPIConn) Tx(ctx context.Context, w, r []byte) error {
	concurrent := atomic.AddInt64(&m.concurrentOps, 1)
	for {
		max := atomic.LoadInt64(&m.maxConcurrent)
		if concurrent <= max || atomic.CompareAndSwapInt64(&m.maxConcurrent, max, concurrent) {
			break
		}
	}
	defer atomic.AddInt64(&m.concurrentOps, -1)

	args := m.Called(ctx, w, r)
	if data, ok := args.Get(0).([]byte); ok && r != nil {
		copy(r, data)
	}
	return args.Error(1)
}

func TestRegisters_Read(t *testing.T) {
	tests := []struct {
		name     string
		opts     []RegistersOpt
		address  byte
		rx       []byte
		expectTx []byte
		expected []byte
	}{
		{
			name:     "gyro framing",
			address:  0x02,
			rx:       []byte{0xFF, 0x01, 0x02},
			expectTx: []byte{0x82, 0x00, 0x00},
			expected: []byte{0x01, 0x02},
		},
		{
			name:     "accel dummy byte",
			opts:     []RegistersOpt{WithDummyByte()},
			address:  0x00,
			rx:       []byte{0xFF, 0xAA, 0x1E},
			expectTx: []byte{0x80, 0x00, 0x00},
			expected: []byte{0x1E},
		},
		{
			name:     "address with read bit already set",
			address:  0x8F,
			rx:       []byte{0x00, 0x03},
			expectTx: []byte{0x8F, 0x00},
			expected: []byte{0x03},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			conn := new(MockSPIConn)
			conn.On("Tx", mock.Anything, test.expectTx, mock.Anything).Return(test.rx, nil).Once()
			regs := NewRegisters(conn, test.opts...)
			buf := make([]byte, len(test.expected))
			require.NoError(t, regs.Read(context.Background(), test.address, buf))
			assert.Equal(t, test.expected, buf)
			conn.AssertExpectations(t)
		})
	}
}

func TestRegisters_Write(t *testing.T) {
	conn := new(MockSPIConn)
	conn.On("Tx", mock.Anything, []byte{0x7E, 0xB6}, []byte(nil)).Return(nil, nil).Once()
	regs := NewRegisters(conn)
	require.NoError(t, regs.Write(context.Background(), 0xFE, 0xB6))
	conn.AssertExpectations(t)
}

func TestRegisters_Timeout(t *testing.T) {
	conn := new(MockSPIConn)
	conn.On("Tx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	regs := NewRegisters(conn, WithTimeout(10*time.Millisecond))
	err := regs.Read(context.Background(), 0x00, make([]byte, 1))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRegisters_TransportError(t *testing.T) {
	busErr := errors.New("bus gone")
	conn := new(MockSPIConn)
	conn.On("Tx", mock.Anything, mock.Anything, mock.Anything).Return(nil, busErr)
	regs := NewRegisters(conn)
	err := regs.Write(context.Background(), 0x41, 0x03)
	assert.ErrorIs(t, err, busErr)
	assert.NotErrorIs(t, err, ErrBusTimeout)
}

func TestRegisters_SharedLock(t *testing.T) {
	conn := new(MockSPIConn)
	conn.On("Tx", mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(time.Millisecond) }).
		Return(nil, nil)
	lock := &sync.Mutex{}
	accel := NewRegisters(conn, WithDummyByte(), WithLock(lock))
	gyro := NewRegisters(conn, WithLock(lock))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = accel.Read(context.Background(), 0x12, make([]byte, 6))
		}()
		go func() {
			defer wg.Done()
			_ = gyro.Write(context.Background(), 0x0F, 0x01)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), atomic.LoadInt64(&conn.maxConcurrent))
}
