package main

import (
	"os"

	"selfid/cmd/selfidctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
