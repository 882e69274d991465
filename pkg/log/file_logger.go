package log

import (
	"os"
	"sync"
	"time"
)

// FileLogger appends events to an .sdclog file. It is safe for concurrent
// use.
type FileLogger struct {
	mu         sync.Mutex
	path       string
	file       *os.File
	sequenceID string
	sync       bool
	count      int
	dropped    int
	closed     bool
	now        func() time.Time
}

// FileLoggerOption configures a FileLogger.
type FileLoggerOption func(*FileLogger)

// WithSequenceID stamps events that carry no sequence id. The wire layer
// logs before an MDIB is known, so its events may arrive without one.
func WithSequenceID(id string) FileLoggerOption {
	return func(l *FileLogger) { l.sequenceID = id }
}

// WithSync flushes the file to disk after every event.
func WithSync() FileLoggerOption {
	return func(l *FileLogger) { l.sync = true }
}

// NewFileLogger opens path for appending, creating it with mode 0644.
func NewFileLogger(path string, opts ...FileLoggerOption) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	l := &FileLogger{path: path, file: f, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l, nil
}

// Path returns the file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Log appends event. Events without a timestamp get the current time.
// Encoding and write failures are counted, not returned.
func (l *FileLogger) Log(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = l.now()
	}
	if event.SequenceID == "" {
		event.SequenceID = l.sequenceID
	}
	data, err := EncodeEvent(event)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	if err == nil {
		_, err = l.file.Write(data)
	}
	if err != nil {
		l.dropped++
		return
	}
	l.count++
	if l.sync {
		_ = l.file.Sync()
	}
}

// Stats returns the number of written and dropped events.
func (l *FileLogger) Stats() (written, dropped int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count, l.dropped
}

// Close closes the file. Later Log calls are ignored. Close is idempotent.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	return l.file.Close()
}
