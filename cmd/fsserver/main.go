// Package main is the entry point for the fsserver CLI application.
//
// The application follows this startup sequence:
//
// 1. Initialize logging system (stderr, DEBUG enables debug output)
// 2. Load configuration from the config file and environment
// 3. Build the sandbox over the configured roots
// 4. Serve MCP requests on stdin/stdout until EOF or a signal
//
// stdout carries the protocol; everything else goes to stderr.
package main

import (
	"os"

	"fsserver/internal/logging"
)

func main() {
	appLogger := logging.NewAppLogger()

	if err := newRootCommand(appLogger).Execute(); err != nil {
		appLogger.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
