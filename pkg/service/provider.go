package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/persistence"
	"github.com/sdc-protocol/sdc-go/pkg/roles"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
	"github.com/sdc-protocol/sdc-go/pkg/wire"
)

// Provider orchestrates an SDC provider: it owns the MDIB, the execution
// engine, the operation registry and the role providers.
type Provider struct {
	mu sync.RWMutex

	config ProviderConfig
	reg    *model.Registry
	state  ServiceState

	mdib       *mdib.Mdib
	engine     *sco.Engine
	registry   *sco.Registry
	product    *roles.Product
	activate   *roles.ActivateProvider
	dispatcher *wire.Dispatcher
	restored   bool

	eventHandlers []EventHandler

	logger *slog.Logger
}

// NewProvider creates a provider. reg may be nil, in which case the
// default entity registry is used.
func NewProvider(reg *model.Registry, config ProviderConfig) (*Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if reg == nil {
		reg = model.NewRegistry()
	}
	if len(config.Roles) == 0 {
		config.Roles = DefaultRoles()
	}
	if config.Sco.Logger == nil {
		config.Sco.Logger = config.Logger
	}
	if config.Sco.EventLogger == nil {
		config.Sco.EventLogger = config.EventLogger
	}
	if config.Sco.Metrics == nil && config.Metrics != nil {
		config.Sco.Metrics = sco.NewMetrics(config.Metrics)
	}

	return &Provider{
		config: config,
		reg:    reg,
		state:  StateIdle,
		logger: config.Logger,
	}, nil
}

// State returns the current service state.
func (p *Provider) State() ServiceState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// OnEvent registers an event handler.
func (p *Provider) OnEvent(handler EventHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventHandlers = append(p.eventHandlers, handler)
}

// Mdib returns the MDIB, or nil before Start.
func (p *Provider) Mdib() *mdib.Mdib {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mdib
}

// Registry returns the operation registry, or nil before Start.
func (p *Provider) Registry() *sco.Registry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.registry
}

// Dispatcher returns the wire dispatcher, or nil before Start.
func (p *Provider) Dispatcher() *wire.Dispatcher {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.dispatcher
}

// Activate returns the Activate role provider when the activate role is
// configured. Handlers should be added before Start.
func (p *Provider) Activate() *roles.ActivateProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activate == nil && slices.Contains(p.config.Roles, RoleActivate) {
		p.activate = roles.NewActivateProvider(p.config.Logger)
	}
	return p.activate
}

// Restored reports whether the MDIB came from a stored snapshot.
func (p *Provider) Restored() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.restored
}

// Start loads the MDIB, registers the operations of every operation
// descriptor and starts the engine.
func (p *Provider) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateIdle && p.state != StateStopped {
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.state = StateStarting
	p.mu.Unlock()

	if err := p.start(ctx); err != nil {
		p.mu.Lock()
		p.state = StateIdle
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	p.state = StateRunning
	m := p.mdib
	p.mu.Unlock()

	p.debugLog("provider started",
		"sequence_id", m.SequenceID(),
		"mdib_version", m.MdibVersion(),
		"operations", len(p.registry.Operations()))
	p.emitEvent(Event{Type: EventStarted, MdibVersion: m.MdibVersion()})
	return nil
}

func (p *Provider) start(ctx context.Context) error {
	m, restored, err := p.loadMdib(ctx)
	if err != nil {
		return err
	}
	m.OnCommit(func(r *mdib.TransactionResult) {
		p.emitEvent(Event{Type: EventCommitted, MdibVersion: r.MdibVersion, Commit: r})
	})

	engine, err := sco.NewEngine(m, p.sinks(), p.config.Sco)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	registry, err := sco.NewRegistry(ctx, m, engine, p.config.Sco)
	if err != nil {
		return fmt.Errorf("create registry: %w", err)
	}

	providers, err := p.roleProviders()
	if err != nil {
		return err
	}
	product := roles.NewProduct(registry, roles.Config{Logger: p.config.Logger}, providers...)
	if err := product.Init(ctx); err != nil {
		return fmt.Errorf("register operations: %w", err)
	}
	if err := engine.Start(); err != nil {
		return err
	}

	p.mu.Lock()
	p.mdib = m
	p.engine = engine
	p.registry = registry
	p.product = product
	p.restored = restored
	p.dispatcher = wire.NewDispatcher(registry,
		wire.WithLogger(p.config.Logger),
		wire.WithEventLogger(p.config.EventLogger))
	p.mu.Unlock()

	if restored {
		p.emitEvent(Event{Type: EventRestored, MdibVersion: m.MdibVersion()})
	}
	return nil
}

// loadMdib restores the last snapshot and falls back to the description
// file when the store is empty.
func (p *Provider) loadMdib(ctx context.Context) (*mdib.Mdib, bool, error) {
	cfg := p.config.mdibConfig()
	if p.config.Store != nil {
		restoreCfg := cfg
		restoreCfg.SequenceID = ""
		m, ok, err := persistence.Restore(ctx, p.config.Store, p.reg, restoreCfg)
		if err != nil {
			return nil, false, fmt.Errorf("restore snapshot: %w", err)
		}
		if ok {
			return m, true, nil
		}
	}
	if p.config.DescriptionPath == "" {
		return nil, false, ErrNoDescription
	}
	m, err := mdib.LoadDescriptionFile(p.reg, p.config.DescriptionPath, cfg)
	if err != nil {
		return nil, false, err
	}
	return m, false, nil
}

// sinks builds the report fan-out. The stream sink comes first so encoded
// reports leave in engine order; the event bridge runs last.
func (p *Provider) sinks() sco.ReportSink {
	var out sco.FanOut
	if p.config.ReportStream != nil {
		out = append(out, wire.NewStreamSink(p.config.ReportStream, p.config.EventLogger))
	}
	out = append(out, p.config.Sinks...)
	out = append(out, sco.ReportSinkFunc(func(_ context.Context, r *sco.OperationInvokedReport) error {
		p.emitEvent(Event{Type: EventInvocation, MdibVersion: r.MdibVersion, Report: r})
		return nil
	}))
	return out
}

func (p *Provider) roleProviders() ([]roles.Provider, error) {
	logger := p.config.Logger
	out := make([]roles.Provider, 0, len(p.config.Roles))
	for _, name := range p.config.Roles {
		switch name {
		case RoleSetValue:
			out = append(out, roles.NewSetValueProvider(logger))
		case RoleSetString:
			out = append(out, roles.NewSetStringProvider(logger))
		case RoleLocation:
			out = append(out, roles.NewLocationContextProvider(logger))
		case RoleEnsemble:
			out = append(out, roles.NewEnsembleContextProvider(logger))
		case RolePatient:
			out = append(out, roles.NewContextProvider(logger, model.PatientContextDescriptorType))
		case RoleActivate:
			out = append(out, p.Activate())
		case RoleAlertState:
			out = append(out, roles.NewStateProvider(logger, sco.KindSetAlertState))
		case RoleComponentState:
			out = append(out, roles.NewStateProvider(logger, sco.KindSetComponentState))
		case RoleMetricState:
			out = append(out, roles.NewStateProvider(logger, sco.KindSetMetricState))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownRole, name)
		}
	}
	return out, nil
}

// SaveSnapshot writes the current MDIB to the configured store.
func (p *Provider) SaveSnapshot(ctx context.Context) error {
	p.mu.RLock()
	m := p.mdib
	p.mu.RUnlock()
	if m == nil {
		return ErrNotStarted
	}
	if p.config.Store == nil {
		return ErrInvalidConfig
	}
	if err := persistence.SaveMdib(ctx, p.config.Store, m); err != nil {
		return err
	}
	p.emitEvent(Event{Type: EventSnapshotSaved, MdibVersion: m.MdibVersion()})
	return nil
}

// Stop stops the engine and, when configured, saves a snapshot. Pending
// invocations are drained within the engine's stop timeout.
func (p *Provider) Stop(ctx context.Context) error {
	p.mu.Lock()
	if p.state != StateRunning {
		p.mu.Unlock()
		return ErrNotStarted
	}
	p.state = StateStopping
	engine := p.engine
	p.mu.Unlock()

	stopErr := engine.Stop()
	if stopErr != nil {
		p.debugLog("engine stop", "error", stopErr)
	}

	var saveErr error
	if p.config.SnapshotOnStop && p.config.Store != nil {
		saveErr = p.SaveSnapshot(ctx)
	}

	p.mu.Lock()
	p.state = StateStopped
	v := p.mdib.MdibVersion()
	p.mu.Unlock()

	p.emitEvent(Event{Type: EventStopped, MdibVersion: v})
	if saveErr != nil {
		return fmt.Errorf("save snapshot: %w", saveErr)
	}
	return stopErr
}

// emitEvent calls every handler in its own goroutine.
func (p *Provider) emitEvent(event Event) {
	p.mu.RLock()
	handlers := p.eventHandlers
	p.mu.RUnlock()
	for _, handler := range handlers {
		go handler(event)
	}
}

// debugLog logs a debug message if logging is enabled.
func (p *Provider) debugLog(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}

func knownRole(name string) bool {
	switch name {
	case RoleSetValue, RoleSetString, RoleLocation, RoleEnsemble, RolePatient,
		RoleActivate, RoleAlertState, RoleComponentState, RoleMetricState:
		return true
	}
	return false
}
