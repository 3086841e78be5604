package main

import (
	"fmt"
	"os"

	"github.com/reoring/gofactory/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "gofactory:", err)
		os.Exit(1)
	}
}
