// Package api exposes a running provider over a local HTTP surface for
// inspection and operator control. It is not an SDC transport.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sdc-protocol/sdc-go/pkg/inspect"
	"github.com/sdc-protocol/sdc-go/pkg/journal"
	"github.com/sdc-protocol/sdc-go/pkg/mdib"
	"github.com/sdc-protocol/sdc-go/pkg/sco"
	"github.com/sdc-protocol/sdc-go/pkg/wire"
)

// Backend is the provider the API serves. service.Provider implements it.
type Backend interface {
	Mdib() *mdib.Mdib
	Registry() *sco.Registry
}

// Option configures the handler.
type Option func(*Server)

// WithJournal enables the /journal routes.
func WithJournal(j *journal.Journal) Option {
	return func(s *Server) { s.journal = j }
}

// WithGatherer enables /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server implements the HTTP routes.
type Server struct {
	backend  Backend
	journal  *journal.Journal
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// NewHandler creates the HTTP handler for backend.
func NewHandler(backend Backend, opts ...Option) http.Handler {
	s := &Server{
		backend: backend,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/info", s.handleInfo)
	r.Get("/mdib", s.handleTree)
	r.Get("/mdib/*", s.handleRead)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/operations", s.handleOperations)
	r.Post("/operations/{handle}", s.handleInvoke)
	r.Get("/journal", s.handleJournal)
	r.Get("/journal/{handle}", s.handleJournal)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) mdib(w http.ResponseWriter) (*mdib.Mdib, bool) {
	m := s.backend.Mdib()
	if m == nil {
		writeError(w, http.StatusServiceUnavailable, "provider not started", "")
		return nil, false
	}
	return m, true
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.mdib(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, InfoResponse{
		SequenceID:  m.SequenceID(),
		MdibVersion: m.MdibVersion(),
		Operations:  len(s.backend.Registry().Operations()),
	})
}

// handleTree renders the descriptor tree as text. ?versions=true adds
// descriptor versions, ?states=false hides state summaries.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	m, ok := s.mdib(w)
	if !ok {
		return
	}
	tree, err := inspect.NewInspector(m).Tree()
	if err != nil {
		writeError(w, http.StatusNotFound, "empty mdib", err.Error())
		return
	}
	f := inspect.NewFormatter()
	f.ShowVersions = queryBool(r, "versions", false)
	f.ShowStates = queryBool(r, "states", true)
	writeText(w, f.FormatTree(tree))
}

// handleRead renders the node addressed by an inspect path such as
// numeric.ch0.vmd0/state/MetricValue.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	m, ok := s.mdib(w)
	if !ok {
		return
	}
	p, err := inspect.ParsePath(chi.URLParam(r, "*"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid path", err.Error())
		return
	}
	n, err := inspect.NewInspector(m).Read(p)
	switch {
	case err == nil:
		writeText(w, inspect.NewFormatter().FormatNode(n))
	case errors.Is(err, inspect.ErrDescriptorNotFound),
		errors.Is(err, inspect.ErrStateNotFound),
		errors.Is(err, inspect.ErrFieldNotFound):
		writeError(w, http.StatusNotFound, "not found", err.Error())
	default:
		writeError(w, http.StatusBadRequest, "read failed", err.Error())
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.mdib(w)
	if !ok {
		return
	}
	snap, err := m.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "snapshot failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOperations(w http.ResponseWriter, _ *http.Request) {
	m, ok := s.mdib(w)
	if !ok {
		return
	}
	modes := make(map[string]string)
	for _, info := range inspect.NewInspector(m).Operations() {
		modes[info.Handle] = info.OperatingMode
	}

	ops := s.backend.Registry().Operations()
	out := make([]Operation, 0, len(ops))
	for _, op := range ops {
		out = append(out, Operation{
			Handle:        op.Handle(),
			Kind:          op.Kind().String(),
			Target:        op.Target(),
			OperatingMode: modes[op.Handle()],
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleInvoke converts the JSON argument for the operation's kind and
// hands the request to the registry. Admitted invocations answer 202. An
// unknown handle is still passed to the registry, which answers with a
// synchronous Fail/Inv InvocationInfo and status 200.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	m, ok := s.mdib(w)
	if !ok {
		return
	}
	var body InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	handle := chi.URLParam(r, "handle")
	registry := s.backend.Registry()
	req := sco.Request{OperationHandle: handle, Source: body.Source}
	if req.Source == "" {
		req.Source = r.RemoteAddr
	}
	if op, ok := registry.OperationByHandle(handle); ok {
		arg, err := wire.ArgumentFromValue(m.Registry(), op.Kind(), body.Argument)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid argument", err.Error())
			return
		}
		req.Kind = op.Kind()
		req.Argument = arg
	}

	info, err := registry.HandleRequest(r.Context(), req)
	if err != nil {
		s.logger.Warn("invocation not admitted", "operation", handle, "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, sco.ErrQueueFull) || errors.Is(err, sco.ErrNotRunning) {
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, "invocation not admitted", err.Error())
		return
	}

	status := http.StatusOK
	if info.TransactionID != 0 {
		status = http.StatusAccepted
	}
	writeJSON(w, status, infoFromSco(info))
}

// handleJournal lists recorded reports. The operation comes from the path
// or ?operation=; ?transaction= and ?limit= narrow the result.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotFound, "journal not configured", "")
		return
	}
	f := journal.Filter{
		OperationHandle: chi.URLParam(r, "handle"),
	}
	q := r.URL.Query()
	if f.OperationHandle == "" {
		f.OperationHandle = q.Get("operation")
	}
	if v := q.Get("transaction"); v != "" {
		tr, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid transaction", err.Error())
			return
		}
		f.TransactionID = &tr
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", v)
			return
		}
		f.Limit = n
	}

	entries, err := s.journal.Query(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "journal query failed", err.Error())
		return
	}
	out := make([]JournalEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryFromJournal(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func queryBool(r *http.Request, key string, def bool) bool {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, ErrorResponse{Error: message, Details: details})
}

func writeText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
