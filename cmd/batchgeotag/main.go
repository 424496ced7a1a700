package main

import (
	"os"

	"github.com/nperony/batchgeotag/pkg/cli"
)

func main() {
	os.Exit(cli.RunCLI())
}
