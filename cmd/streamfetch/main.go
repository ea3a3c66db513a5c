// Command streamfetch performs one HTTP request through a logging data task
// and prints the response status, headers, and body.
package main

import (
	"os"

	"github.com/AntonStoeckl/reactive-streams-extras-go/cmd/streamfetch/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
