// Command locator runs the seismic event location engine: locate a single
// event, process a directory of events concurrently, or serve the
// JSON/HTTP API. Command structure follows tphakala-birdnet-go's
// cobra/viper cmd/root.go; the batch subcommand's concurrency pipeline
// adapts digest2's own CLI driver (main.go's splitter/dispatcher/
// worker-pool pattern over orbit arcs) to per-file event batching — see
// DESIGN.md.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
