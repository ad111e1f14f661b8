// Idiomatic entrypoint for the Cobra CLI; hands off to cmd/root.go.

package main

import (
	"github.com/latencylab/latencylab/cmd"
)

func main() {
	cmd.Execute()
}
