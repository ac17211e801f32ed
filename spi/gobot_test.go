package spi

import (
	"context"
	"errors"
	"testing"

	"github.com/mklimuk/bmi088"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockGobotOps struct {
	mock.Mock
}

func (m *MockGobotOps) ReadCommandData(command []byte, data []byte) error {
	args := m.Called(command, data)
	if resp, ok := args.Get(0).([]byte); ok {
		copy(data, resp)
	}
	return args.Error(1)
}

func (m *MockGobotOps) WriteBytes(data []byte) error {
	return m.Called(data).Error(0)
}

func (m *MockGobotOps) Close() error {
	return m.Called().Error(0)
}

func TestGobotConn_Write(t *testing.T) {
	ops := new(MockGobotOps)
	ops.On("WriteBytes", []byte{0x41, 0x03}).Return(nil).Once()
	conn := &GobotConn{ops: ops}
	require.NoError(t, conn.Tx(context.Background(), []byte{0x41, 0x03}, nil))
	ops.AssertExpectations(t)
}

func TestGobotConn_Read(t *testing.T) {
	ops := new(MockGobotOps)
	ops.On("ReadCommandData", []byte{0x80}, mock.Anything).Return([]byte{0xAA, 0x1E}, nil).Once()
	conn := &GobotConn{ops: ops}
	r := make([]byte, 3)
	require.NoError(t, conn.Tx(context.Background(), []byte{0x80, 0, 0}, r))
	assert.Equal(t, []byte{0x00, 0xAA, 0x1E}, r)
	ops.AssertExpectations(t)
}

func TestGobotConn_ThroughRegisters(t *testing.T) {
	ops := new(MockGobotOps)
	ops.On("ReadCommandData", []byte{0x80}, mock.Anything).Return([]byte{0xFF, 0x1E}, nil).Once()
	regs := bmi088.NewRegisters(&GobotConn{ops: ops}, bmi088.WithDummyByte())
	buf := make([]byte, 1)
	require.NoError(t, regs.Read(context.Background(), 0x00, buf))
	assert.Equal(t, byte(0x1E), buf[0])
}

func TestGobotConn_Errors(t *testing.T) {
	busErr := errors.New("bus gone")
	ops := new(MockGobotOps)
	ops.On("ReadCommandData", mock.Anything, mock.Anything).Return(nil, busErr)
	conn := &GobotConn{ops: ops}
	assert.ErrorIs(t, conn.Tx(context.Background(), []byte{0x80, 0}, make([]byte, 2)), busErr)
	assert.Error(t, conn.Tx(context.Background(), []byte{0x80, 0}, make([]byte, 3)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, conn.Tx(ctx, []byte{0x41, 0}, nil), context.Canceled)
	ops.AssertNotCalled(t, "WriteBytes", mock.Anything)
}
