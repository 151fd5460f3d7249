package main

import (
	"os"

	"github.com/mlin/bilingo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
