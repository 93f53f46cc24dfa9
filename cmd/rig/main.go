// Command rig manages the application instance integration tests run
// against: launching it, recycling it between runs, and tearing it down.
package main

import (
	"fmt"
	"os"

	"github.com/tessro/rig/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
