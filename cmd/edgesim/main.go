// Command edgesim drives a simulated GPIO port: it attaches handlers,
// latches edges into the port's status registers, raises the interrupt
// and reports the order pins were serviced in and whether a task waiting
// on the handlers' signal woke up.
package main

import (
	"flag"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	flag.Set("logtostderr", "true")
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "edgesim",
		Short:        "Simulate GPIO edge interrupts and their dispatch",
		SilenceUsage: true,
	}
	root.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	root.AddCommand(newRunCmd())
	return root
}
