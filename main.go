// ./main.go
package main

import (
	"github.com/okabe-dev/cartwalk/cmd"
)

// main is the entry point for the cartwalk CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles all command-line parsing, configuration, and execution.
	cmd.Execute()
}
