package sco

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/pmtypes"
)

// item is one queue entry. A stop item ends the worker whose done channel
// it carries; markers left behind by a timed out Stop are skipped.
type item struct {
	inv  *Invocation
	stop chan struct{}
}

// Engine executes admitted invocations one at a time on a single worker
// goroutine. Reports for one invocation are WAIT, START and a terminal state,
// and reports of different invocations never interleave.
type Engine struct {
	cfg    Config
	mdib   *mdib.Mdib
	sink   ReportSink
	logger *slog.Logger

	queue chan item

	trMu   sync.Mutex
	nextTr uint64

	// admitMu is held shared by Enqueue while it sends and exclusively by
	// Stop while it clears running, so no invocation lands behind the stop
	// marker.
	admitMu sync.RWMutex
	running atomic.Bool
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewEngine creates an engine reporting to sink. The MDIB provides the
// version and sequence id of every report.
func NewEngine(m *mdib.Mdib, sink ReportSink, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		mdib:   m,
		sink:   sink,
		logger: cfg.logger(),
		queue:  make(chan item, cfg.QueueSize),
		nextTr: 1,
	}, nil
}

// Start launches the worker.
func (e *Engine) Start() error {
	e.admitMu.Lock()
	defer e.admitMu.Unlock()
	if e.running.Swap(true) {
		return ErrAlreadyRunning
	}
	if e.done != nil {
		select {
		case <-e.done:
		default:
			// The previous worker missed its stop deadline and is still busy.
			e.running.Store(false)
			return ErrAlreadyRunning
		}
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.done = make(chan struct{})
	go e.run(e.ctx, e.done)
	return nil
}

// Running reports whether the worker is running.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Stop queues a stop marker behind the pending invocations and waits for the
// worker to reach it. When the worker does not stop within StopTimeout the
// engine context is cancelled and ErrStopTimeout returned; the worker may
// still be running an effect at that point. Stop first waits for Enqueue
// calls already past the running check, so every admitted invocation is
// queued ahead of the marker.
func (e *Engine) Stop() error {
	e.admitMu.Lock()
	wasRunning := e.running.Swap(false)
	done, cancel := e.done, e.cancel
	e.admitMu.Unlock()
	if !wasRunning {
		return nil
	}
	timer := time.NewTimer(e.cfg.StopTimeout)
	defer timer.Stop()

	select {
	case e.queue <- item{stop: done}:
	case <-timer.C:
		cancel()
		return ErrStopTimeout
	}
	select {
	case <-done:
		cancel()
		return nil
	case <-timer.C:
		cancel()
		return ErrStopTimeout
	}
}

// nextTransactionID hands out ids starting at 1. Ids are never reused, even
// when admission fails.
func (e *Engine) nextTransactionID() uint64 {
	e.trMu.Lock()
	defer e.trMu.Unlock()
	id := e.nextTr
	e.nextTr++
	return id
}

// Enqueue admits an invocation of op and returns its transaction id. When
// the queue stays full for AdmissionTimeout ErrQueueFull is returned and no
// report is sent.
func (e *Engine) Enqueue(ctx context.Context, op *Operation, req Request) (uint64, error) {
	e.admitMu.RLock()
	defer e.admitMu.RUnlock()
	if !e.running.Load() {
		return 0, ErrNotRunning
	}
	tr := e.nextTransactionID()
	it := item{inv: &Invocation{TransactionID: tr, Operation: op, Request: req}}

	timer := time.NewTimer(e.cfg.AdmissionTimeout)
	defer timer.Stop()
	select {
	case e.queue <- it:
		e.cfg.Metrics.queued(len(e.queue))
		return tr, nil
	case <-timer.C:
		e.cfg.Metrics.reject(RejectQueueFull)
		e.logger.Warn("operation queue full", "operation", op.Handle(), "transaction", tr)
		return 0, ErrQueueFull
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (e *Engine) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case it := <-e.queue:
			e.cfg.Metrics.queued(len(e.queue))
			if it.stop != nil {
				if it.stop != done {
					continue
				}
				e.logger.Info("sco worker stopped")
				return
			}
			e.process(ctx, it.inv)
		}
	}
}

func (e *Engine) process(ctx context.Context, inv *Invocation) {
	op := inv.Operation
	e.logger.Info("starting operation",
		"kind", op.Kind().String(), "operation", op.Handle(), "transaction", inv.TransactionID)

	e.report(ctx, inv, pmtypes.InvocationWait, "", "", nil)
	e.report(ctx, inv, pmtypes.InvocationStarted, "", "", nil)

	start := time.Now()
	outcome, err := op.execute(ctx, inv)
	elapsed := time.Since(start)

	state := outcome.State()
	switch {
	case err != nil:
		e.logger.Info("operation failed",
			"operation", op.Handle(), "transaction", inv.TransactionID, "error", err)
		e.report(ctx, inv, pmtypes.InvocationFailed, pmtypes.InvocationErrorOther, err.Error(), &elapsed)
		state = pmtypes.InvocationFailed
	case state == pmtypes.InvocationFailed:
		e.report(ctx, inv, pmtypes.InvocationFailed, pmtypes.InvocationErrorOther,
			"invalid outcome "+outcome.String(), &elapsed)
	default:
		e.logger.Info("operation finished",
			"operation", op.Handle(), "transaction", inv.TransactionID, "state", string(state))
		e.report(ctx, inv, state, "", "", &elapsed)
	}
	e.cfg.Metrics.finished(op.Kind(), string(state), elapsed)
}

func (e *Engine) report(ctx context.Context, inv *Invocation, state pmtypes.InvocationState,
	errKind pmtypes.InvocationError, msg string, elapsed *time.Duration) {
	op := inv.Operation
	version := e.mdib.MdibVersion()
	r := &OperationInvokedReport{
		SequenceID:      e.mdib.SequenceID(),
		MdibVersion:     version,
		OperationHandle: op.Handle(),
		OperationTarget: op.Target(),
		Kind:            op.Kind(),
		TransactionID:   inv.TransactionID,
		State:           state,
		Error:           errKind,
		ErrorMessage:    msg,
		Source:          inv.Request.Source,
		Namespaces:      maps.Clone(e.cfg.Namespaces),
	}
	if e.sink != nil {
		if err := e.sink.NotifyOperation(ctx, r); err != nil {
			e.logger.Warn("report delivery failed",
				"operation", op.Handle(), "transaction", inv.TransactionID, "state", string(state), "error", err)
		}
	}
	e.logEvent(inv, state, errKind, msg, version, elapsed)
}

func (e *Engine) logEvent(inv *Invocation, state pmtypes.InvocationState, errKind pmtypes.InvocationError,
	msg string, version uint64, elapsed *time.Duration) {
	if e.cfg.EventLogger == nil {
		return
	}
	e.cfg.EventLogger.Log(log.Event{
		Timestamp:  time.Now(),
		SequenceID: e.mdib.SequenceID(),
		Direction:  log.DirectionOut,
		Layer:      log.LayerSco,
		Category:   log.CategoryInvocation,
		Source:     inv.Request.Source,
		Invocation: &log.InvocationEvent{
			TransactionID:   inv.TransactionID,
			OperationHandle: inv.Operation.Handle(),
			Kind:            inv.Operation.Kind().String(),
			State:           state,
			Error:           errKind,
			ErrorMessage:    msg,
			MdibVersion:     version,
			Duration:        elapsed,
		},
	})
}
