// Package main implements the gofhir command line client.
package main

import (
	"os"

	"github.com/gofhir/client/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
