package main

import (
	"os"

	"github.com/soleng-dk/flexopt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
