// Command livegraph validates, builds, runs and archives dataflow graphs.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/livegraph/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
