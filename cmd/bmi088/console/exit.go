package console

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// Exit codes of the bmi088 tool.
const (
	ExitDevice   = 1
	ExitSelfTest = 2
	ExitConfig   = 3
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}
