package main

import (
	"os"

	"github.com/EryGltkn/CN-termproject/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
