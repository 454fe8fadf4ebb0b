// The main package for the imgresolver executable.
package main

import (
	"github.com/JakeFAU/imgresolver/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
