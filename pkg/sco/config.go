package sco

import (
	"log/slog"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
)

// Default engine settings.
const (
	DefaultQueueSize        = 10
	DefaultAdmissionTimeout = time.Second
	DefaultStopTimeout      = time.Second
	DefaultScoHandle        = "_sco"
)

// DefaultNamespaces returns the prefixes used in operation reports.
func DefaultNamespaces() map[string]string {
	return map[string]string{
		"pm":  "http://standards.ieee.org/downloads/11073/11073-10207-2017/participant",
		"msg": "http://standards.ieee.org/downloads/11073/11073-10207-2017/message",
		"ext": "http://standards.ieee.org/downloads/11073/11073-10207-2017/extension",
	}
}

// Config configures the engine and registry.
type Config struct {
	// QueueSize bounds the number of admitted but unprocessed invocations.
	QueueSize int

	// AdmissionTimeout is how long Enqueue waits for queue space.
	AdmissionTimeout time.Duration

	// StopTimeout bounds how long Stop waits for the worker.
	StopTimeout time.Duration

	// ScoHandle is the handle of the default Sco when one has to be created.
	ScoHandle string

	// Namespaces is copied into every report.
	Namespaces map[string]string

	// Logger is used for operational logging. Optional.
	Logger *slog.Logger

	// EventLogger receives invocation events. Optional.
	EventLogger log.Logger

	// Metrics collects engine metrics. Optional.
	Metrics *Metrics
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		QueueSize:        DefaultQueueSize,
		AdmissionTimeout: DefaultAdmissionTimeout,
		StopTimeout:      DefaultStopTimeout,
		ScoHandle:        DefaultScoHandle,
		Namespaces:       DefaultNamespaces(),
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.QueueSize <= 0 {
		return ErrInvalidConfig
	}
	if c.AdmissionTimeout <= 0 || c.StopTimeout <= 0 {
		return ErrInvalidConfig
	}
	if c.ScoHandle == "" {
		return ErrInvalidConfig
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.New(slog.DiscardHandler)
}
