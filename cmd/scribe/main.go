// Package main provides the entry point for the scribe CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/scribe/cmd/scribe/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
