// The main package for the firstd executable.
package main

import (
	"github.com/alshabili/first-backend/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
