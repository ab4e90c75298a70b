package main

import (
	"log"
	"os"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// stdout carries command output (and the MCP protocol under serve);
	// all logging goes to stderr.
	log.SetOutput(os.Stderr)
	log.SetFlags(0)

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
