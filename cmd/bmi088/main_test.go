package main

import (
	"bytes"
	"testing"

	"github.com/mklimuk/bmi088/cmd/bmi088/console"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func runSim(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	console.SetOutput(&out, &errOut)
	t.Cleanup(func() { console.SetOutput(&bytes.Buffer{}, &bytes.Buffer{}) })
	app := newApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"bmi088", "--driver", "sim"}, args...))
	return out.String() + errOut.String(), err
}

func TestInfo_Simulated(t *testing.T) {
	out, err := runSim(t, "info")
	require.NoError(t, err)
	assert.Contains(t, out, "0x1e")
	assert.Contains(t, out, "0x0f")
	assert.Contains(t, out, "temperature: 48")
	assert.Contains(t, out, "fifo_length: 20")
}

func TestFIFO_Simulated(t *testing.T) {
	out, err := runSim(t, "fifo", "--samples")
	require.NoError(t, err)
	assert.Contains(t, out, "1 dropped")
	assert.Contains(t, out, "(dropped)")
}

func TestConfigure_Simulated(t *testing.T) {
	out, err := runSim(t, "configure", "--logging", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "device configured")
	assert.Contains(t, out, "range_g: 24")
}

func TestSelfTest_Simulated(t *testing.T) {
	out, err := runSim(t, "selftest")
	require.NoError(t, err)
	assert.Contains(t, out, "ready")
}

func TestUnknownDriver(t *testing.T) {
	app := newApp()
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run([]string{"bmi088", "--driver", "usb", "info"})
	var exit cli.ExitCoder
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, console.ExitConfig, exit.ExitCode())
}
