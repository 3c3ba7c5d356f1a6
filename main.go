package main

import (
	"github.com/sicfor/sicfor/cmd"

	// Subcommands register themselves on the root command via their init()
	// functions, so the packages only need to be imported for side effects.
	_ "github.com/sicfor/sicfor/cmd/cli"
	_ "github.com/sicfor/sicfor/cmd/server"
)

func main() {
	cmd.Execute()
}
