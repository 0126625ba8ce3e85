package main

import (
	"os"

	"github.com/exitdebt/exitdebt_backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
