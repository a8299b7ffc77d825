package main

import (
	"os"

	"github.com/mgrey/vibe/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
