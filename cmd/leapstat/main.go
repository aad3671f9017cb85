// Command leapstat computes summary statistics over columnar data and
// resolves per-column display values.
package main

import (
	"os"

	"github.com/leapstack-labs/leapstat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
