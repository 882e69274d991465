// Package commands implements the event log commands of sdc-provider.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Layer           *log.Layer
	Direction       *log.Direction
	Category        *log.Category
	OperationHandle string
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		Layer:           f.Layer,
		Direction:       f.Direction,
		Category:        f.Category,
		OperationHandle: f.OperationHandle,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [seq:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	seq := shortenSequenceID(event.SequenceID)
	dir := event.Direction.String()

	var typeLabel string
	switch {
	case event.Invocation != nil:
		typeLabel = "Invocation"
	case event.Commit != nil:
		typeLabel = "Commit"
	case event.Message != nil:
		typeLabel = event.Message.Type.String()
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [seq:%s] %-3s %s %s\n", ts, seq, dir, event.Layer.String(), typeLabel)
	if event.Source != "" {
		fmt.Fprintf(w, "  Source: %s\n", event.Source)
	}

	switch {
	case event.Invocation != nil:
		formatInvocationDetails(w, event.Invocation)
	case event.Commit != nil:
		formatCommitDetails(w, event.Commit)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSequenceID strips the urn:uuid: prefix and returns the first 8
// characters of the sequence id.
func shortenSequenceID(id string) string {
	id = strings.TrimPrefix(id, "urn:uuid:")
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// formatInvocationDetails writes invocation state details.
func formatInvocationDetails(w io.Writer, inv *log.InvocationEvent) {
	fmt.Fprintf(w, "  Transaction: %d\n", inv.TransactionID)
	if inv.Kind != "" {
		fmt.Fprintf(w, "  Operation: %s (%s)\n", inv.OperationHandle, inv.Kind)
	} else {
		fmt.Fprintf(w, "  Operation: %s\n", inv.OperationHandle)
	}
	fmt.Fprintf(w, "  State: %s\n", inv.State)
	if inv.Error != "" {
		fmt.Fprintf(w, "  Error: %s", inv.Error)
		if inv.ErrorMessage != "" {
			fmt.Fprintf(w, " (%s)", inv.ErrorMessage)
		}
		fmt.Fprintln(w)
	}
	if inv.MdibVersion != 0 {
		fmt.Fprintf(w, "  MdibVersion: %d\n", inv.MdibVersion)
	}
	if inv.Duration != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*inv.Duration))
	}
}

// formatCommitDetails writes the per-category update counts of a commit.
func formatCommitDetails(w io.Writer, c *log.CommitEvent) {
	fmt.Fprintf(w, "  MdibVersion: %d\n", c.MdibVersion)
	counts := []struct {
		name string
		n    int
	}{
		{"metrics", c.Metrics},
		{"alerts", c.Alerts},
		{"components", c.Components},
		{"contexts", c.Contexts},
		{"operational", c.Operational},
		{"descriptions", c.Descriptions},
	}
	var parts []string
	for _, e := range counts {
		if e.n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", e.name, e.n))
		}
	}
	if len(parts) > 0 {
		fmt.Fprintf(w, "  Updates: %s\n", strings.Join(parts, " "))
	}
}

// formatMessageDetails writes message-specific details.
func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	if msg.MessageID != "" {
		fmt.Fprintf(w, "  MessageID: %s\n", msg.MessageID)
	}
	if msg.Action != "" {
		fmt.Fprintf(w, "  Action: %s\n", msg.Action)
	}
	if msg.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", msg.Size)
	}
	if msg.Payload != nil {
		payloadJSON, err := json.Marshal(msg.Payload)
		if err == nil {
			fmt.Fprintf(w, "  Payload: %s\n", string(payloadJSON))
		}
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Code != nil {
		fmt.Fprintf(w, "  Code: %d\n", *err.Code)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string from command-line flag (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "mdib":
		return log.LayerMdib, nil
	case "sco":
		return log.LayerSco, nil
	case "wire":
		return log.LayerWire, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be mdib, sco, or wire)", s)
	}
}

// ParseDirectionFlag parses a direction string from command-line flag (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "invocation":
		return log.CategoryInvocation, nil
	case "commit":
		return log.CategoryCommit, nil
	case "message":
		return log.CategoryMessage, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be invocation, commit, message, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}

	return nil
}
