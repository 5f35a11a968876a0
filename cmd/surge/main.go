package main

import (
	"os"

	"github.com/wesleyorama2/surge/internal/cli"
)

// Main runs the CLI and returns the process exit code. Split out from
// main so tests can call it.
func Main() int {
	if err := cli.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(Main())
}
