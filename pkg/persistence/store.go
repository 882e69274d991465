package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
)

// RecordVersion is the current version of the stored record format.
const RecordVersion = 1

// ErrUnsupportedVersion is returned for records written by a newer format.
var ErrUnsupportedVersion = errors.New("unsupported snapshot record version")

// Record is the stored form of a snapshot.
type Record struct {
	// Version is the record format version.
	Version int `json:"version"`

	// SavedAt is when the record was saved.
	SavedAt time.Time `json:"saved_at"`

	// Snapshot is the materialized MDIB.
	Snapshot *mdib.Snapshot `json:"snapshot"`
}

// Store persists the latest snapshot of one MDIB.
type Store interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *mdib.Snapshot) error

	// Load returns the stored record, or nil, nil when nothing is stored.
	Load(ctx context.Context) (*Record, error)

	// Clear removes the stored snapshot. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

func newRecord(snap *mdib.Snapshot) *Record {
	return &Record{Version: RecordVersion, SavedAt: time.Now(), Snapshot: snap}
}

func (r *Record) check() error {
	if r.Version > RecordVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, r.Version)
	}
	if r.Snapshot == nil {
		return fmt.Errorf("%w: record without snapshot", mdib.ErrInvalidSnapshot)
	}
	return nil
}

// SaveMdib snapshots m and saves it.
func SaveMdib(ctx context.Context, s Store, m *mdib.Mdib) error {
	snap, err := m.Snapshot()
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return s.Save(ctx, snap)
}

// Restore rebuilds an MDIB from the stored snapshot. The second result is
// false when the store is empty.
func Restore(ctx context.Context, s Store, reg *model.Registry, cfg mdib.Config) (*mdib.Mdib, bool, error) {
	rec, err := s.Load(ctx)
	if err != nil || rec == nil {
		return nil, false, err
	}
	m, err := mdib.Restore(reg, rec.Snapshot, cfg)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}
