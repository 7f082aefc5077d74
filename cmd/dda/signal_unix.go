//go:build !windows

package main

import (
	"os"
	"syscall"
)

// shutdownSignals cancels a running simulation or MCP session.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
