package api

import (
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/journal"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// InfoResponse describes the running provider.
type InfoResponse struct {
	SequenceID  string `json:"sequenceId"`
	MdibVersion uint64 `json:"mdibVersion"`
	Operations  int    `json:"operations"`
}

// Operation is one registered operation.
type Operation struct {
	Handle        string `json:"handle"`
	Kind          string `json:"kind"`
	Target        string `json:"target"`
	OperatingMode string `json:"operatingMode,omitempty"`
}

// InvokeRequest is the body of POST /operations/{handle}. Argument takes
// the JSON shape of the operation kind: a number for SetValue, a string
// for SetString, a list of strings for Activate and state objects (or
// lists of them) for the set-state kinds.
type InvokeRequest struct {
	Argument any    `json:"argument"`
	Source   string `json:"source,omitempty"`
}

// InvocationInfo is the synchronous answer to an invocation.
type InvocationInfo struct {
	SequenceID    string `json:"sequenceId"`
	MdibVersion   uint64 `json:"mdibVersion"`
	TransactionID uint64 `json:"transactionId"`
	State         string `json:"state"`
	Error         string `json:"error,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

// JournalEntry is one recorded report.
type JournalEntry struct {
	RecordedAt      time.Time `json:"recordedAt"`
	SequenceID      string    `json:"sequenceId"`
	MdibVersion     uint64    `json:"mdibVersion"`
	TransactionID   uint64    `json:"transactionId"`
	OperationHandle string    `json:"operationHandle"`
	OperationTarget string    `json:"operationTarget,omitempty"`
	Kind            string    `json:"kind,omitempty"`
	State           string    `json:"state"`
	Error           string    `json:"error,omitempty"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	Source          string    `json:"source,omitempty"`
}

func infoFromSco(i sco.InvocationInfo) InvocationInfo {
	return InvocationInfo{
		SequenceID:    i.SequenceID,
		MdibVersion:   i.MdibVersion,
		TransactionID: i.TransactionID,
		State:         string(i.State),
		Error:         string(i.Error),
		ErrorMessage:  i.ErrorMessage,
	}
}

func entryFromJournal(e journal.Entry) JournalEntry {
	return JournalEntry{
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
	}
}
