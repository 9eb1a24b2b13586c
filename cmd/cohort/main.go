// Command cohort compiles group schemas, runs group scenarios and manages
// SQLite checkpoints of group store state.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/cohort/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
