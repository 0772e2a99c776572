// Package main is the entry point for the revengine-cli binary.
package main

import (
	"os"

	cli "revengine/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
