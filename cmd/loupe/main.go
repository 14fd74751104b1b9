package main

import (
	"os"

	"github.com/loupedev/loupe/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
