// The main package for the leaderscraper executable.
package main

import (
	"leaderscraper/cmd"
)

// main defers all execution to the Cobra CLI.
func main() {
	cmd.Execute()
}
