package main

import (
	"os"

	"github.com/cadencefm/cadence/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
