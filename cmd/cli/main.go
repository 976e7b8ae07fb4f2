package main

import (
	"os"

	"github.com/kazilink-dev/kazilink/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
