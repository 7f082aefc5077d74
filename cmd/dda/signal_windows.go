//go:build windows

package main

import "os"

// shutdownSignals cancels a running simulation or MCP session. Windows has no
// SIGTERM, so only Ctrl+C is handled.
var shutdownSignals = []os.Signal{os.Interrupt}
