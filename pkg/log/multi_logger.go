package log

// MultiLogger fans events out to several loggers, typically an SlogAdapter
// for the console and a FileLogger for the .sdclog file.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are skipped and nested
// MultiLoggers are flattened.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	m := &MultiLogger{}
	for _, l := range loggers {
		m.add(l)
	}
	return m
}

func (m *MultiLogger) add(l Logger) {
	switch v := l.(type) {
	case nil, NoopLogger:
	case *MultiLogger:
		if v != nil {
			m.loggers = append(m.loggers, v.loggers...)
		}
	default:
		m.loggers = append(m.loggers, l)
	}
}

// Len returns the number of receiving loggers.
func (m *MultiLogger) Len() int {
	return len(m.loggers)
}

// Log sends the event to every logger in order.
func (m *MultiLogger) Log(event Event) {
	for _, l := range m.loggers {
		l.Log(event)
	}
}
