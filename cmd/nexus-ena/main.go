package main

import (
	"fmt"
	"os"

	"github.com/hozaki45/NEXUS-ENA/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
