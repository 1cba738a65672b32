// Rollcall - Event RSVP Admin Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rollcall

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/rollcall/internal/api"
	"github.com/tomtom215/rollcall/internal/checkin"
	"github.com/tomtom215/rollcall/internal/config"
	"github.com/tomtom215/rollcall/internal/events"
	"github.com/tomtom215/rollcall/internal/journal"
	"github.com/tomtom215/rollcall/internal/logging"
	"github.com/tomtom215/rollcall/internal/rsvpapi"
	"github.com/tomtom215/rollcall/internal/supervisor"
	"github.com/tomtom215/rollcall/internal/supervisor/services"
	ws "github.com/tomtom215/rollcall/internal/websocket"
)

//nolint:gocyclo // sequential wiring
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("backend", cfg.Backend.BaseURL).
		Str("journal", cfg.Journal.Path).
		Bool("nats", cfg.NATS.Enabled).
		Msg("Starting Rollcall")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === DATA LAYER ===

	store, err := journal.Open(journal.Config{
		Path:      cfg.Journal.Path,
		InMemory:  cfg.Journal.InMemory,
		Retention: cfg.Journal.Retention,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open scan journal")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing scan journal")
		}
	}()
	tree.AddDataService(store)

	// === MESSAGING LAYER ===

	transport, err := initTransport(cfg.NATS, logging.NewWatermillAdapter())
	if err != nil {
		// Fatal exits without running defers.
		if closeErr := store.Close(); closeErr != nil {
			logging.Error().Err(closeErr).Msg("Error closing scan journal")
		}
		logging.Fatal().Err(err).Msg("Failed to initialize outcome transport")
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing outcome transport")
		}
	}()
	logging.Info().Str("transport", transport.kind).Str("topic", transport.topic).Msg("Outcome transport ready")

	publisher := events.NewPublisher(transport.publisher, events.PublisherConfig{Topic: transport.topic})
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing outcome publisher")
		}
	}()

	hub := ws.NewHub()
	tree.AddMessagingService(hub)
	tree.AddMessagingService(ws.NewCheckInForwarder(hub, transport.subscriber, transport.topic))

	// === BACKEND ===

	backend := rsvpapi.NewCircuitBreakerClient(
		rsvpapi.NewHTTPClient(rsvpapi.Config{
			BaseURL:           cfg.Backend.BaseURL,
			Token:             rsvpapi.NewStaticToken(cfg.Backend.Token),
			Timeout:           cfg.Backend.Timeout,
			RequestsPerSecond: cfg.Backend.RequestsPerSecond,
			Burst:             cfg.Backend.Burst,
			OnSessionExpired: func(err error) {
				hub.BroadcastSessionExpired(rsvpapi.Message(err))
			},
		}),
		rsvpapi.DefaultBreakerConfig(),
	)

	selector := events.NewSelector(backend, cfg.EventsCache.TTL)
	defer selector.Close()

	// === STATIONS ===

	stations := checkin.NewRegistry(func(station string) *checkin.Controller {
		c := checkin.NewController(checkin.Config{
			Station:   station,
			Camera:    hub.Camera(station),
			API:       backend,
			Recorders: []checkin.Recorder{store, publisher},
		})
		c.OnChange(hub.BroadcastStationView)
		return c
	}, checkin.WithMaxStations(cfg.Server.MaxStations))

	// === API LAYER ===

	handler := api.NewHandler(api.HandlerConfig{
		Events:      selector,
		Stations:    stations,
		Journal:     store,
		Hub:         hub,
		CORSOrigins: cfg.Server.CORSOrigins,
		Readiness: []api.ReadinessCheck{
			{Name: "journal", Check: store.Ping},
			{Name: "backend", Check: func(context.Context) error {
				if backend.State() == gobreaker.StateOpen {
					return errors.New("circuit breaker open")
				}
				return nil
			}},
		},
	})

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitRequests
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	mwConfig.RateLimitDisabled = cfg.Server.RateLimitRequests == 0

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, api.NewChiMiddleware(mwConfig)).SetupChi(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddAPIService(services.NewShutdownService("stations", stations.Shutdown, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Rollcall stopped gracefully")
}
