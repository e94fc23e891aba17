package main

import (
	"os"

	"github.com/clarete/tinypeg/cmd/tinycl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
