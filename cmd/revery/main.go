// Revery — deniable peer-to-peer messaging over Tor.
package main

import (
	"fmt"
	"os"

	"github.com/revery-project/revery/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
