package main

import (
	"os"

	"github.com/ahoffer/benchtab/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
