package main

import (
	"os"

	"ollamaproxy/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}
