// Package main is the schemaforge CLI entrypoint.
package main

import (
	"os"

	"github.com/schemaforge-labs/schemaforge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
