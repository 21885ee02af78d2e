package main

import (
	"fmt"
	"os"

	"github.com/menucost/engine/cmd/menucost/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(commands.CodeOf(err))
	}
}
