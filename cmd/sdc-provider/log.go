package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sdc-protocol/sdc-go/cmd/sdc-provider/commands"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and analyze event log files",
	Long:  `Reads event log files (.sdclog) written by "sdc-provider run --event-log".`,
}

var logViewCmd = &cobra.Command{
	Use:   "view <file.sdclog>",
	Short: "View log file in human-readable format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var filter commands.ViewFilter
		if s, _ := f.GetString("layer"); s != "" {
			l, err := commands.ParseLayerFlag(s)
			if err != nil {
				return err
			}
			filter.Layer = &l
		}
		if s, _ := f.GetString("direction"); s != "" {
			d, err := commands.ParseDirectionFlag(s)
			if err != nil {
				return err
			}
			filter.Direction = &d
		}
		if s, _ := f.GetString("category"); s != "" {
			c, err := commands.ParseCategoryFlag(s)
			if err != nil {
				return err
			}
			filter.Category = &c
		}
		filter.OperationHandle, _ = f.GetString("operation")
		return commands.RunView(args[0], filter, cmd.OutOrStdout())
	},
}

var logFilterCmd = &cobra.Command{
	Use:   "filter <file.sdclog>",
	Short: "Filter log file and write to new file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		var opts commands.FilterOptions
		opts.Output, _ = f.GetString("output")
		opts.SequenceID, _ = f.GetString("sequence-id")
		opts.OperationHandle, _ = f.GetString("operation")
		opts.TransactionID, _ = f.GetString("transaction")
		opts.TimeStart, _ = f.GetString("time-start")
		opts.TimeEnd, _ = f.GetString("time-end")
		opts.Layer, _ = f.GetString("layer")
		opts.Direction, _ = f.GetString("direction")
		opts.Category, _ = f.GetString("category")

		n, err := commands.RunFilter(args[0], opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Filtered %d events to %s\n", n, opts.Output)
		return nil
	},
}

var logStatsCmd = &cobra.Command{
	Use:   "stats <file.sdclog>",
	Short: "Show statistics about the log file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.RunStats(args[0], cmd.OutOrStdout())
	},
}

var logExportCmd = &cobra.Command{
	Use:   "export <file.sdclog>",
	Short: "Export log file to JSONL or CSV format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		return commands.RunExport(args[0], format, output)
	},
}

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logViewCmd, logFilterCmd, logStatsCmd, logExportCmd)

	for _, c := range []*cobra.Command{logViewCmd, logFilterCmd} {
		c.Flags().String("layer", "", "Filter by layer (mdib, sco, wire)")
		c.Flags().String("direction", "", "Filter by direction (in, out)")
		c.Flags().String("category", "", "Filter by category (invocation, commit, message, error)")
		c.Flags().String("operation", "", "Filter by operation handle")
	}

	logFilterCmd.Flags().StringP("output", "o", "", "Output file (required)")
	logFilterCmd.Flags().String("sequence-id", "", "Filter by MDIB sequence id")
	logFilterCmd.Flags().String("transaction", "", "Filter by transaction id")
	logFilterCmd.Flags().String("time-start", "", "Events at or after this time (RFC3339)")
	logFilterCmd.Flags().String("time-end", "", "Events before this time (RFC3339)")
	_ = logFilterCmd.MarkFlagRequired("output")

	logExportCmd.Flags().String("format", "jsonl", "Output format (jsonl, csv)")
	logExportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
}
