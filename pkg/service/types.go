package service

import (
	"errors"
	"io"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/persistence"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
)

// Service errors.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrAlreadyStarted = errors.New("service already started")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNoDescription  = errors.New("no device description and no stored snapshot")
	ErrUnknownRole    = errors.New("unknown role provider")
)

// ServiceState represents the service state.
type ServiceState uint8

const (
	// StateIdle - service created but not started.
	StateIdle ServiceState = iota

	// StateStarting - service is starting up.
	StateStarting

	// StateRunning - service is running normally.
	StateRunning

	// StateStopping - service is shutting down.
	StateStopping

	// StateStopped - service has stopped.
	StateStopped
)

// String returns the state name.
func (s ServiceState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateStarting:
		return "STARTING"
	case StateRunning:
		return "RUNNING"
	case StateStopping:
		return "STOPPING"
	case StateStopped:
		return "STOPPED"
	default:
		return "UNKNOWN"
	}
}

// Role provider names accepted in ProviderConfig.Roles.
const (
	RoleSetValue       = "set_value"
	RoleSetString      = "set_string"
	RoleLocation       = "location_context"
	RoleEnsemble       = "ensemble_context"
	RolePatient        = "patient_context"
	RoleActivate       = "activate"
	RoleAlertState     = "alert_state"
	RoleComponentState = "component_state"
	RoleMetricState    = "metric_state"
)

// DefaultRoles returns the role providers used when none are configured,
// in the order they are asked.
func DefaultRoles() []string {
	return []string{
		RoleSetValue,
		RoleSetString,
		RoleLocation,
		RoleEnsemble,
		RoleActivate,
	}
}

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	// DescriptionPath is the YAML device description loaded when no
	// snapshot could be restored.
	DescriptionPath string

	// SequenceID overrides the generated MDIB sequence id of a freshly
	// loaded description. Ignored for restored snapshots.
	SequenceID string

	// Store keeps MDIB snapshots across restarts. Optional.
	Store persistence.Store

	// SnapshotOnStop saves a snapshot to Store when the provider stops.
	SnapshotOnStop bool

	// Roles lists the role providers by name. Defaults to DefaultRoles().
	Roles []string

	// Sco configures the execution engine and the operation registry.
	Sco sco.Config

	// Sinks receive every OperationInvokedReport, in order.
	Sinks []sco.ReportSink

	// ReportStream receives the CBOR encoded reports. Optional.
	ReportStream io.Writer

	// Metrics registers the engine collectors. Optional.
	Metrics prometheus.Registerer

	// Logger is the optional logger for debug output.
	// If nil, logging is disabled.
	Logger *slog.Logger

	// EventLogger receives commit, invocation and wire events. Optional.
	EventLogger log.Logger
}

// DefaultProviderConfig returns a ProviderConfig with sensible defaults.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		SnapshotOnStop: true,
		Roles:          DefaultRoles(),
		Sco:            sco.DefaultConfig(),
	}
}

// Validate checks the configuration.
func (c *ProviderConfig) Validate() error {
	if c.DescriptionPath == "" && c.Store == nil {
		return ErrNoDescription
	}
	if err := c.Sco.Validate(); err != nil {
		return err
	}
	for _, name := range c.Roles {
		if !knownRole(name) {
			return ErrUnknownRole
		}
	}
	return nil
}

func (c *ProviderConfig) mdibConfig() mdib.Config {
	return mdib.Config{
		SequenceID:  c.SequenceID,
		Logger:      c.Logger,
		EventLogger: c.EventLogger,
	}
}

// EventType identifies a provider event.
type EventType uint8

const (
	// EventStarted - provider is running.
	EventStarted EventType = iota

	// EventStopped - provider has stopped.
	EventStopped

	// EventRestored - MDIB was restored from a snapshot.
	EventRestored

	// EventCommitted - an MDIB transaction was committed.
	EventCommitted

	// EventInvocation - an operation reported an invocation state.
	EventInvocation

	// EventSnapshotSaved - a snapshot was written to the store.
	EventSnapshotSaved
)

// String returns the event type name.
func (e EventType) String() string {
	switch e {
	case EventStarted:
		return "STARTED"
	case EventStopped:
		return "STOPPED"
	case EventRestored:
		return "RESTORED"
	case EventCommitted:
		return "COMMITTED"
	case EventInvocation:
		return "INVOCATION"
	case EventSnapshotSaved:
		return "SNAPSHOT_SAVED"
	default:
		return "UNKNOWN"
	}
}

// Event represents a provider event.
type Event struct {
	// Type is the event type.
	Type EventType

	// MdibVersion is the MDIB version the event refers to.
	MdibVersion uint64

	// Commit is set for EventCommitted.
	Commit *mdib.TransactionResult

	// Report is set for EventInvocation.
	Report *sco.OperationInvokedReport

	// Error is set if the event is an error.
	Error error
}

// EventHandler handles provider events.
type EventHandler func(Event)
