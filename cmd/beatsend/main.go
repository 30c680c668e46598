package main

import (
	"os"

	"github.com/tuffrabit/m5stack-beatmask/cmd/beatsend/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
