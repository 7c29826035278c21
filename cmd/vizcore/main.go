package main

import (
	"os"

	"github.com/solatis/vizcore/cmd/vizcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
