package main

import (
	"os"

	"docview/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
