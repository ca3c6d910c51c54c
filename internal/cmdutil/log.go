// internal/cmdutil/log.go
package cmdutil

import (
	"fmt"
	"io"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("kmerio/cmd")

// Logger returns the subsystem logger for a driver.
func Logger(name string) *logging.ZapEventLogger {
	return logging.Logger("kmerio/" + name)
}

// SetupLogging applies level to every kmerio logger. An empty level keeps
// whatever GOLOG_LOG_LEVEL configured.
func SetupLogging(level string) error {
	if level == "" {
		return nil
	}
	if _, err := logging.LevelFromString(level); err != nil {
		return fmt.Errorf("invalid --log-level %q", level)
	}
	return logging.SetLogLevelRegex("^kmerio/", level)
}

// Warnf prints a user-facing warning unless quiet.
func Warnf(dst io.Writer, quiet bool, format string, a ...any) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(dst, "WARN: "+format+"\n", a...)
}
