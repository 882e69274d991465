package inspect

import (
	"context"
	"errors"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// SnapshotSource delivers MDIB snapshots of a provider that is not in this
// process, e.g. the HTTP API of a running provider or a snapshot store.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (*mdib.Snapshot, error)
}

// SnapshotSourceFunc adapts a function to SnapshotSource.
type SnapshotSourceFunc func(ctx context.Context) (*mdib.Snapshot, error)

// Snapshot calls f(ctx).
func (f SnapshotSourceFunc) Snapshot(ctx context.Context) (*mdib.Snapshot, error) {
	return f(ctx)
}

// RemoteInspector inspects a provider through snapshots. Every Refresh
// fetches a new snapshot and rebuilds a local copy of the MDIB.
type RemoteInspector struct {
	source SnapshotSource
	reg    *model.Registry
	local  *Inspector
}

// NewRemoteInspector creates a new remote inspector for the given source.
func NewRemoteInspector(source SnapshotSource, reg *model.Registry) *RemoteInspector {
	if reg == nil {
		reg = model.NewRegistry()
	}
	return &RemoteInspector{source: source, reg: reg}
}

// Refresh fetches a snapshot and returns an inspector over it.
func (r *RemoteInspector) Refresh(ctx context.Context) (*Inspector, error) {
	snap, err := r.source.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errors.New("source returned no snapshot")
	}
	m, err := mdib.Restore(r.reg, snap, mdib.Config{})
	if err != nil {
		return nil, err
	}
	r.local = NewInspector(m)
	return r.local, nil
}

// Inspector returns the inspector of the last refresh, fetching a snapshot
// on first use.
func (r *RemoteInspector) Inspector(ctx context.Context) (*Inspector, error) {
	if r.local != nil {
		return r.local, nil
	}
	return r.Refresh(ctx)
}

// SequenceID returns the sequence id of the last fetched snapshot.
func (r *RemoteInspector) SequenceID() string {
	if r.local == nil {
		return ""
	}
	return r.local.Mdib().SequenceID()
}
