// Command gridplanner hosts a path planning engine behind an HTTP API and
// answers one-shot route queries from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var VERSION = "dev"

func main() {
	root := &cobra.Command{
		Use:          "gridplanner",
		Short:        "grid path planner over procedural terrain",
		Version:      VERSION,
		SilenceUsage: true,
	}
	root.AddCommand(
		ServeCmd(),
		RouteCmd(),
	)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
