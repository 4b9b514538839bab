package main

import (
	"os"

	"github.com/rustyeddy/ksim/cmd/ksim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
