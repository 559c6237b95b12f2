package main

import (
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
