package log

// Logger receives provider events from the MDIB, the SCO engine and the
// wire layer. Implementations must be safe for concurrent use and must not
// block: Log is called on the commit and invocation paths.
type Logger interface {
	Log(event Event)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Event)

// Log calls f.
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger discards all events.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// OrNoop returns l, or NoopLogger when l is nil.
func OrNoop(l Logger) Logger {
	if l == nil {
		return NoopLogger{}
	}
	return l
}
