package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Operations        map[string]*OperationStats
	Commits           int
	LastMdibVersion   uint64
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// OperationStats holds invocation statistics for a single operation.
type OperationStats struct {
	Kind          string
	Transactions  map[uint64]struct{}
	TerminalCount map[pmtypes.InvocationState]int
	TotalDuration time.Duration
	Timed         int
}

// MeanDuration is the average START to terminal time of timed invocations.
func (s *OperationStats) MeanDuration() time.Duration {
	if s.Timed == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.Timed)
}

// CollectStats reads the log file and aggregates statistics.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Operations:        make(map[string]*OperationStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if inv := event.Invocation; inv != nil {
			op, ok := stats.Operations[inv.OperationHandle]
			if !ok {
				op = &OperationStats{
					Kind:          inv.Kind,
					Transactions:  make(map[uint64]struct{}),
					TerminalCount: make(map[pmtypes.InvocationState]int),
				}
				stats.Operations[inv.OperationHandle] = op
			}
			op.Transactions[inv.TransactionID] = struct{}{}
			if inv.State.IsTerminal() {
				op.TerminalCount[inv.State]++
			}
			if inv.Duration != nil {
				op.TotalDuration += *inv.Duration
				op.Timed++
			}
		}

		if c := event.Commit; c != nil {
			stats.Commits++
			if c.MdibVersion > stats.LastMdibVersion {
				stats.LastMdibVersion = c.MdibVersion
			}
		}

		if event.Error != nil {
			stats.Errors++
		}
	}
	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

var terminalStates = []pmtypes.InvocationState{
	pmtypes.InvocationFinished,
	pmtypes.InvocationFinishedModified,
	pmtypes.InvocationFailed,
	pmtypes.InvocationCancelled,
	pmtypes.InvocationCancelledManually,
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== SDC Provider Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerMdib, log.LayerSco, log.LayerWire} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryInvocation, log.CategoryCommit, log.CategoryMessage, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if stats.Commits > 0 {
		fmt.Fprintf(w, "Commits: %d (last MdibVersion %d)\n", stats.Commits, stats.LastMdibVersion)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Operations: %d\n", len(stats.Operations))
	if len(stats.Operations) > 0 {
		handles := make([]string, 0, len(stats.Operations))
		for h := range stats.Operations {
			handles = append(handles, h)
		}
		sort.Strings(handles)

		fmt.Fprintln(w, "")
		for _, h := range handles {
			op := stats.Operations[h]
			fmt.Fprintf(w, "  %s (%s) %d transactions", h, op.Kind, len(op.Transactions))
			if op.Timed > 0 {
				fmt.Fprintf(w, ", mean %s", formatDuration(op.MeanDuration()))
			}
			fmt.Fprintln(w)
			for _, st := range terminalStates {
				if n := op.TerminalCount[st]; n > 0 {
					fmt.Fprintf(w, "           %s: %d\n", st, n)
				}
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
