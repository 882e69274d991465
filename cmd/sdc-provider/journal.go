package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdc-protocol/sdc-go/pkg/api"
	"github.com/sdc-protocol/sdc-go/pkg/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "List recorded operation invoked reports",
	Long: `Lists the reports recorded in an invocation journal, read from the SQLite
file (--db) or from a running provider (--api).`,
	Args: cobra.NoArgs,
	RunE: runJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)

	f := journalCmd.Flags()
	f.String("db", "", "SQLite journal file")
	f.String("api", "", "Base URL of a running provider API")
	f.StringP("operation", "o", "", "Only reports of this operation handle")
	f.IntP("limit", "n", 50, "Maximum number of reports (0 for all)")
	journalCmd.MarkFlagsMutuallyExclusive("db", "api")
	journalCmd.MarkFlagsOneRequired("db", "api")
}

func runJournal(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	dbPath, _ := f.GetString("db")
	base, _ := f.GetString("api")
	handle, _ := f.GetString("operation")
	limit, _ := f.GetInt("limit")

	var entries []api.JournalEntry
	if base != "" {
		var err error
		if entries, err = api.NewClient(base, nil).Journal(cmd.Context(), handle, limit); err != nil {
			return err
		}
	} else {
		j, err := journal.Open(dbPath)
		if err != nil {
			return err
		}
		defer j.Close()
		local, err := j.Query(cmd.Context(), journal.Filter{OperationHandle: handle, Limit: limit})
		if err != nil {
			return err
		}
		for _, e := range local {
			entries = append(entries, api.JournalEntry{
				RecordedAt:      e.RecordedAt,
				SequenceID:      e.SequenceID,
				MdibVersion:     e.MdibVersion,
				TransactionID:   e.TransactionID,
				OperationHandle: e.OperationHandle,
				OperationTarget: e.OperationTarget,
				Kind:            e.Kind,
				State:           string(e.State),
				Error:           string(e.Error),
				ErrorMessage:    e.ErrorMessage,
				Source:          e.Source,
			})
		}
	}

	printJournal(cmd.OutOrStdout(), entries)
	return nil
}

func printJournal(w io.Writer, entries []api.JournalEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No reports recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tTR\tOPERATION\tKIND\tSTATE\tVERSION\tERROR\tSOURCE")
	for _, e := range entries {
		errText := e.Error
		if e.ErrorMessage != "" {
			errText += " " + e.ErrorMessage
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			e.RecordedAt.Local().Format(time.DateTime),
			e.TransactionID, e.OperationHandle, e.Kind, e.State, e.MdibVersion, errText, e.Source)
	}
	_ = tw.Flush()
}
