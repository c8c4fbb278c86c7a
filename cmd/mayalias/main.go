package main

import (
	"os"

	"github.com/roach88/mayalias/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
