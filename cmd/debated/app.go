package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/randalmurphal/debategraph/pkg/config"
	"github.com/randalmurphal/debategraph/pkg/events"
	"github.com/randalmurphal/debategraph/pkg/flowgraph"
	"github.com/randalmurphal/debategraph/pkg/flowgraph/observability"
	"github.com/randalmurphal/debategraph/pkg/llm"
	"github.com/randalmurphal/debategraph/pkg/memory"
	"github.com/randalmurphal/debategraph/pkg/orchestrator"
	"github.com/randalmurphal/debategraph/pkg/store"
)

// app holds everything a command needs, wired from settings.
type app struct {
	settings config.Settings
	logger   *slog.Logger
	store    *store.Store
	creator  *orchestrator.Creator
	runner   *orchestrator.Runner

	nc   *nats.Conn
	nsrv *events.Server
}

func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	settings.Debate.Verbose = settings.Debate.Verbose || verbose
	logger := newLogger()

	s, err := store.New(settings.Store.Path)
	if err != nil {
		return nil, err
	}
	a := &app{settings: settings, logger: logger, store: s}

	client, err := llm.NewClient(ctx, settings.LLM)
	if err != nil {
		a.Close()
		return nil, err
	}

	metrics := observability.NewMetricsRecorder()
	spans := observability.NewSpanManager()
	inv := llm.NewInvoker(client,
		llm.WithModel(settings.LLM.Model),
		llm.WithAuditLogger(s),
		llm.WithLogger(logger),
		llm.WithMetrics(metrics),
		llm.WithSpans(spans),
	)

	opts := []orchestrator.Option{
		orchestrator.WithLogger(logger),
		orchestrator.WithMaxConcurrent(settings.Debate.MaxConcurrent),
		orchestrator.WithMemoryOptions(
			memory.WithTokenBudget(settings.Memory.TokenBudget),
			memory.WithRecentWindow(settings.Memory.RecentWindow),
			memory.WithMetrics(metrics),
		),
		orchestrator.WithRunOptions(
			flowgraph.WithObservabilityLogger(logger),
			flowgraph.WithMetricsRecorder(metrics),
			flowgraph.WithSpanManager(spans),
		),
	}

	if a.creator, err = orchestrator.NewCreator(s, inv, opts...); err != nil {
		a.Close()
		return nil, err
	}
	if a.runner, err = orchestrator.NewRunner(s, inv, opts...); err != nil {
		a.Close()
		return nil, err
	}

	if err := a.connectNATS(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// connectNATS starts the embedded server if configured and connects to
// it or to the configured URL. Without either, run events stay local.
func (a *app) connectNATS() error {
	url := a.settings.NATS.URL
	if a.settings.NATS.Embedded {
		srv, err := events.StartServer(a.settings.NATS.Port)
		if err != nil {
			return err
		}
		a.nsrv = srv
		url = srv.ClientURL()
		a.logger.Info("embedded nats started", slog.String("url", url))
	}
	if url == "" {
		return nil
	}

	nc, err := nats.Connect(url, nats.Name("debated"))
	if err != nil {
		return fmt.Errorf("connect nats %s: %w", url, err)
	}
	a.nc = nc
	return nil
}

// fanout mirrors a debate's events to NATS when connected.
func (a *app) fanout(debateID string, sink events.Sink) events.Sink {
	if a.nc == nil {
		return sink
	}
	return events.MultiSink{sink, events.NewNATSSink(a.nc, a.settings.NATS.SubjectPrefix, debateID)}
}

func (a *app) Close() error {
	var errs []error
	if a.nc != nil {
		if err := a.nc.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	if a.nsrv != nil {
		a.nsrv.Close()
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
