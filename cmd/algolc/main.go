package main

import (
	"os"

	"github.com/cwbudde/go-algol/cmd/algolc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
