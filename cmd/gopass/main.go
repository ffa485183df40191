// Command gopass registers users and issues and verifies their tokens.
package main

import (
	"fmt"
	"os"

	"github.com/MrEthical07/goPass/internal/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
