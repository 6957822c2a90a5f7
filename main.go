package main

import (
	"os"

	"github.com/commishdev/commish/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
