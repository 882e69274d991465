package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

func TestCollectStats(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := append(invocationEvents(ts, 1, "op.a"), invocationEvents(ts.Add(time.Second), 2, "op.a")...)
	events = append(events, log.Event{
		Timestamp: ts.Add(2 * time.Second),
		Layer:     log.LayerWire,
		Category:  log.CategoryError,
		Error:     &log.ErrorEventData{Layer: log.LayerWire, Message: "bad frame"},
	})
	path := createTestLogFile(t, events)

	stats, err := CollectStats(path)
	if err != nil {
		t.Fatalf("CollectStats failed: %v", err)
	}

	if stats.TotalEvents != 9 {
		t.Errorf("TotalEvents = %d, want 9", stats.TotalEvents)
	}
	if stats.EventsByLayer[log.LayerSco] != 6 {
		t.Errorf("SCO events = %d, want 6", stats.EventsByLayer[log.LayerSco])
	}
	if stats.Commits != 2 || stats.LastMdibVersion != 2 {
		t.Errorf("commits = %d (last %d), want 2 (last 2)", stats.Commits, stats.LastMdibVersion)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}

	op := stats.Operations["op.a"]
	if op == nil {
		t.Fatal("missing op.a stats")
	}
	if len(op.Transactions) != 2 {
		t.Errorf("transactions = %d, want 2", len(op.Transactions))
	}
	if op.TerminalCount[pmtypes.InvocationFinished] != 2 {
		t.Errorf("finished = %d, want 2", op.TerminalCount[pmtypes.InvocationFinished])
	}
	if got := op.MeanDuration(); got != 1500*time.Microsecond {
		t.Errorf("MeanDuration = %s, want 1.5ms", got)
	}
	if got := stats.TimeRange.End.Sub(stats.TimeRange.Start); got != 2*time.Second {
		t.Errorf("time range = %s, want 2s", got)
	}
}

func TestRunStatsOutput(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, invocationEvents(ts, 4, "op.set.numeric"))

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	output := buf.String()

	for _, want := range []string{
		"Total Events: 4",
		"SCO:",
		"MDIB:",
		"INVOCATION:",
		"COMMIT:",
		"Commits: 1 (last MdibVersion 4)",
		"op.set.numeric (SetValue) 1 transactions, mean 1.500ms",
		"Fin: 1",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Errors:") {
		t.Errorf("no errors expected:\n%s", output)
	}
}

func TestRunStatsEmptyFile(t *testing.T) {
	path := createTestLogFile(t, nil)

	var buf bytes.Buffer
	if err := RunStats(path, &buf); err != nil {
		t.Fatalf("RunStats failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Total Events: 0") {
		t.Errorf("expected zero events, got:\n%s", buf.String())
	}
}
