// internal/cmdutil/fatal.go
package cmdutil

import (
	"fmt"
	"io"
)

// Exit statuses shared by the drivers.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitUsage = 2
)

// Fatal reports err and returns the status the driver should exit with.
// Library errors are all fatal to the stage; the operator restarts it. A
// reader that went away (EPIPE on stdout) is a clean exit.
func Fatal(stderr io.Writer, prog string, err error) int {
	if IsBrokenPipe(err) {
		log.Debugf("%s: downstream closed: %v", prog, err)
		return ExitOK
	}
	_, _ = fmt.Fprintf(stderr, "%s: %v\n", prog, err)
	return ExitFatal
}
