// Command sdc-provider runs an SDC provider built from a YAML device
// description and offers tools around it.
//
// Usage:
//
//	sdc-provider <command> [flags]
//
// Commands:
//
//	run       Start the provider (optionally with an interactive console)
//	describe  Print the descriptor tree of a description or a running provider
//	journal   List recorded operation invoked reports
//	log       View and analyze event log files (.sdclog)
//
// Examples:
//
//	# Run from a config file
//	sdc-provider run --config provider.yaml
//
//	# Run a description with the local API and a console
//	sdc-provider run --description device.yaml --listen 127.0.0.1:8080 -i
//
//	# Show the state of a metric of a running provider
//	sdc-provider describe --api http://127.0.0.1:8080 numeric.ch0.vmd0/state
//
//	# Show invocation statistics of an event log
//	sdc-provider log stats provider.sdclog
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sdc-provider",
	Short: "SDC provider with SCO operation execution",
	Long: `sdc-provider hosts an MDIB loaded from a YAML device description, executes
set and activate operations through its SCO engine and records the
operation invoked reports.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
