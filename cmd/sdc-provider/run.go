package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/sdc-protocol/sdc-go/cmd/sdc-provider/interactive"
	"github.com/sdc-protocol/sdc-go/internal/config"
	"github.com/sdc-protocol/sdc-go/internal/logging"
	"github.com/sdc-protocol/sdc-go/pkg/api"
	"github.com/sdc-protocol/sdc-go/pkg/journal"
	sdclog "github.com/sdc-protocol/sdc-go/pkg/log"
	"github.com/sdc-protocol/sdc-go/pkg/model"
	"github.com/sdc-protocol/sdc-go/pkg/service"
)

const shutdownTimeout = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the provider",
	Long: `Loads the MDIB (from a snapshot store or a device description), starts the
SCO engine and serves the local API until interrupted.

Flags override the values of --config.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		withConsole, _ := cmd.Flags().GetBool("interactive")
		return runProvider(cmd, withConsole)
	},
}

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the provider with the interactive console",
	Long:  `Same as "run --interactive".`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runProvider(cmd, true)
	},
}

func init() {
	rootCmd.AddCommand(runCmd, consoleCmd)
	addProviderFlags(runCmd)
	addProviderFlags(consoleCmd)
	runCmd.Flags().BoolP("interactive", "i", false, "Start the interactive console")
}

func addProviderFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("config", "c", "", "YAML configuration file")
	f.StringP("description", "d", "", "YAML device description")
	f.String("snapshot", "", "File snapshot store")
	f.String("journal", "", "SQLite invocation journal")
	f.String("event-log", "", "Event log file (.sdclog)")
	f.String("report-stream", "", "File receiving CBOR encoded reports")
	f.StringP("listen", "l", "", "Local API listen address (e.g. 127.0.0.1:8080)")
	f.String("log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig reads --config if set and applies the command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	f := cmd.Flags()
	cfg := config.Default()
	if path, _ := f.GetString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	overrides := map[string]*string{
		"description":   &cfg.Description,
		"journal":       &cfg.Journal,
		"event-log":     &cfg.EventLog,
		"report-stream": &cfg.ReportStream,
		"listen":        &cfg.API.Listen,
		"log-level":     &cfg.LogLevel,
	}
	for name, dst := range overrides {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	if f.Changed("snapshot") {
		cfg.Snapshot.File, _ = f.GetString("snapshot")
		cfg.Snapshot.Redis = nil
		on := true
		cfg.Snapshot.OnStop = &on
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runProvider(cmd *cobra.Command, withConsole bool) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	var console *interactive.Console
	var logOut io.Writer = os.Stderr
	if withConsole {
		if console, err = interactive.New(); err != nil {
			return err
		}
		logOut = console.Stderr()
	}
	logger := logging.NewWithWriter(logOut, level)

	pc := cfg.ProviderConfig()
	pc.Logger = logger
	if closer, ok := pc.Store.(io.Closer); ok {
		defer closer.Close()
	}

	events := []sdclog.Logger{sdclog.NewSlogAdapter(logger)}
	if cfg.EventLog != "" {
		fl, err := sdclog.NewFileLogger(cfg.EventLog)
		if err != nil {
			return fmt.Errorf("failed to open event log: %w", err)
		}
		defer fl.Close()
		events = append(events, fl)
	}
	pc.EventLogger = sdclog.NewMultiLogger(events...)

	var j *journal.Journal
	if cfg.Journal != "" {
		if j, err = journal.Open(cfg.Journal); err != nil {
			return err
		}
		defer j.Close()
		pc.Sinks = append(pc.Sinks, j)
	}

	if cfg.ReportStream != "" {
		f, err := os.OpenFile(cfg.ReportStream, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open report stream: %w", err)
		}
		defer f.Close()
		pc.ReportStream = f
	}

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	pc.Metrics = metrics

	p, err := service.NewProvider(model.NewRegistry(), pc)
	if err != nil {
		return err
	}
	if console != nil {
		console.Attach(p)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if err := p.Start(ctx); err != nil {
		return err
	}
	logger.Info("provider started",
		"sequence_id", p.Mdib().SequenceID(),
		"mdib_version", p.Mdib().MdibVersion(),
		"operations", len(p.Registry().Operations()),
		"restored", p.Restored())

	var srv *http.Server
	serverErrors := make(chan error, 1)
	if cfg.API.Listen != "" {
		opts := []api.Option{api.WithGatherer(metrics), api.WithLogger(logger)}
		if j != nil {
			opts = append(opts, api.WithJournal(j))
		}
		srv = &http.Server{
			Addr:              cfg.API.Listen,
			Handler:           api.NewHandler(p, opts...),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("api listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()
	}

	if console != nil {
		go console.Run(ctx, cancel)
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var runErr error
	select {
	case sig := <-shutdown:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serverErrors:
		logger.Error("api server failed", "error", runErr)
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout+pc.Sco.StopTimeout)
	defer stopCancel()

	if srv != nil {
		if err := srv.Shutdown(stopCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "error", err)
			_ = srv.Close()
		}
	}
	if err := p.Stop(stopCtx); err != nil && !errors.Is(err, service.ErrNotStarted) {
		logger.Error("provider stop failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}
	logStopped(logger, p)
	return runErr
}

func logStopped(logger *slog.Logger, p *service.Provider) {
	if m := p.Mdib(); m != nil {
		logger.Info("provider stopped", "mdib_version", m.MdibVersion())
		return
	}
	logger.Info("provider stopped")
}
