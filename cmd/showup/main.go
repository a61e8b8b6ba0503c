package main

import (
	"os"

	"github.com/showup-club/showup/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
