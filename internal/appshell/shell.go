// internal/appshell/shell.go
package appshell

import (
	"io"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"
)

// Main runs a driver against the process streams and exits with its status.
func Main(run func([]string, io.Writer, io.Writer) int) {
	// With SIGPIPE routed to a channel, a write to a closed stdout returns
	// EPIPE and the driver maps it to a clean exit. Children still start
	// with the default disposition.
	sigpipe := make(chan os.Signal, 1)
	signal.Notify(sigpipe, unix.SIGPIPE)

	code := run(os.Args[1:], os.Stdout, os.Stderr)

	signal.Stop(sigpipe)
	os.Exit(code)
}
