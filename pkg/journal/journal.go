package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// ErrClosed is returned when the journal has been closed.
var ErrClosed = errors.New("journal closed")

// Entry is one recorded report.
type Entry struct {
	ID              int64
	RecordedAt      time.Time
	SequenceID      string
	MdibVersion     uint64
	TransactionID   uint64
	OperationHandle string
	OperationTarget string
	Kind            string
	State           pmtypes.InvocationState
	Error           pmtypes.InvocationError
	ErrorMessage    string
	Source          string
}

// Terminal returns true if the entry ends its transaction.
func (e Entry) Terminal() bool {
	return e.State != pmtypes.InvocationWait && e.State != pmtypes.InvocationStarted
}

// Journal is a SQLite backed invocation journal.
type Journal struct {
	db     *sql.DB
	now    func() time.Time
	closed atomic.Bool
}

// Open creates or opens a journal database at path. Use ":memory:" for a
// private in-memory journal.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps an in-memory
	// database alive and shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db, path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Journal{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.closed.Swap(true) {
		return nil
	}
	return j.db.Close()
}

func applyPragmas(db *sql.DB, path string) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	if path != ":memory:" {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL")
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// NotifyOperation records r.
func (j *Journal) NotifyOperation(ctx context.Context, r *sco.OperationInvokedReport) error {
	if j.closed.Load() {
		return ErrClosed
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO reports (
			recorded_at, sequence_id, mdib_version, transaction_id,
			operation_handle, operation_target, kind, state,
			error, error_message, source
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.now().UnixNano(), r.SequenceID, r.MdibVersion, r.TransactionID,
		r.OperationHandle, r.OperationTarget, r.Kind.String(), string(r.State),
		string(r.Error), r.ErrorMessage, r.Source,
	)
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}
	return nil
}

// Filter selects journal entries. Empty fields match everything.
type Filter struct {
	OperationHandle string
	SequenceID      string
	TransactionID   *uint64
	State           pmtypes.InvocationState

	// Limit caps the result to the most recent entries; 0 means no limit.
	Limit int
}

// Query returns matching entries in recording order.
func (j *Journal) Query(ctx context.Context, f Filter) ([]Entry, error) {
	if j.closed.Load() {
		return nil, ErrClosed
	}

	var where []string
	var args []any
	if f.OperationHandle != "" {
		where = append(where, "operation_handle = ?")
		args = append(args, f.OperationHandle)
	}
	if f.SequenceID != "" {
		where = append(where, "sequence_id = ?")
		args = append(args, f.SequenceID)
	}
	if f.TransactionID != nil {
		where = append(where, "transaction_id = ?")
		args = append(args, *f.TransactionID)
	}
	if f.State != "" {
		where = append(where, "state = ?")
		args = append(args, string(f.State))
	}

	query := `SELECT id, recorded_at, sequence_id, mdib_version, transaction_id,
		operation_handle, operation_target, kind, state, error, error_message, source
		FROM reports`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			recorded int64
			state    string
			errKind  string
		)
		if err := rows.Scan(&e.ID, &recorded, &e.SequenceID, &e.MdibVersion, &e.TransactionID,
			&e.OperationHandle, &e.OperationTarget, &e.Kind, &state, &errKind,
			&e.ErrorMessage, &e.Source); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		e.RecordedAt = time.Unix(0, recorded)
		e.State = pmtypes.InvocationState(state)
		e.Error = pmtypes.InvocationError(errKind)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Newest first was only needed for LIMIT.
	for i, k := 0, len(out)-1; i < k; i, k = i+1, k-1 {
		out[i], out[k] = out[k], out[i]
	}
	return out, nil
}

// ByOperation returns the last limit entries of an operation.
func (j *Journal) ByOperation(ctx context.Context, handle string, limit int) ([]Entry, error) {
	return j.Query(ctx, Filter{OperationHandle: handle, Limit: limit})
}

// Transaction returns the history of one transaction.
func (j *Journal) Transaction(ctx context.Context, sequenceID string, tr uint64) ([]Entry, error) {
	return j.Query(ctx, Filter{SequenceID: sequenceID, TransactionID: &tr})
}

// Operations returns the handles of all journaled operations with their
// entry counts.
func (j *Journal) Operations(ctx context.Context) (map[string]int, error) {
	if j.closed.Load() {
		return nil, ErrClosed
	}
	rows, err := j.db.QueryContext(ctx,
		`SELECT operation_handle, COUNT(*) FROM reports GROUP BY operation_handle`)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var h string
		var n int
		if err := rows.Scan(&h, &n); err != nil {
			return nil, err
		}
		out[h] = n
	}
	return out, rows.Err()
}

var _ sco.ReportSink = (*Journal)(nil)
