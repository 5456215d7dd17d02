// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matthewbaird/intake/internal/activity"
	"github.com/matthewbaird/intake/internal/chart"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/event"
	"github.com/matthewbaird/intake/internal/handler"
	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/live"
	"github.com/matthewbaird/intake/internal/metrics"
	"github.com/matthewbaird/intake/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port     int
	Store    *store.Store
	Activity activity.Store
	Recorder event.Recorder     // optional
	Exporter *csvexport.Exporter // optional
	Metrics  *metrics.Metrics    // optional
	Sessions *live.Manager       // optional, defaults to 30m idle / 24h max age
	Mailer   intake.Mailer       // optional, defaults to intake.LogMailer
	Now      func() time.Time
}

// Server is the assembled console.
type Server struct {
	Handler  http.Handler
	Services *Services
	Charts   *chart.Registry
	// Live is the websocket handler. Subscribe it to the event bus so
	// subscriptions refresh on domain events.
	Live *live.Handler

	port int
}

// New wires every handler onto one router.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("server: store is required")
	}
	if cfg.Activity == nil {
		return nil, errors.New("server: activity store is required")
	}
	svc, err := NewServices(cfg.Store, cfg.Now)
	if err != nil {
		return nil, err
	}
	sessions := cfg.Sessions
	if sessions == nil {
		sessions = live.NewManager(24*time.Hour, 30*time.Minute)
	}

	base := handler.Base{Recorder: cfg.Recorder, Exporter: cfg.Exporter, Now: cfg.Now}
	if cfg.Metrics != nil {
		base.Metrics = cfg.Metrics
	}
	charts := chart.NewRegistry()

	queries := live.NewRegistry()
	RegisterQueries(queries, svc, cfg.Activity)
	var liveHandler *live.Handler
	if cfg.Metrics != nil {
		liveHandler = live.NewHandler(sessions, queries, cfg.Metrics.LiveSessions)
	} else {
		liveHandler = live.NewHandler(sessions, queries, nil)
	}

	r := chi.NewRouter()
	r.Use(handler.Recovery, handler.Logging)
	if cfg.Metrics != nil {
		r.Use(handler.Instrument(cfg.Metrics))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/v1", func(r chi.Router) {
		handler.NewIntakeHandler(base, svc.Intake, svc.Progress, cfg.Store, cfg.Store, cfg.Mailer).RegisterRoutes(r)
		handler.NewConflictHandler(base, svc.Conflict).RegisterRoutes(r)
		handler.NewAvailabilityHandler(base, svc.Availability).RegisterRoutes(r)
		(&handler.DashboardHandler{
			Base:        base,
			Leads:       svc.Leads,
			Receivables: svc.Receivables,
			Invoices:    svc.Invoices,
			Time:        svc.Time,
			Charts:      charts,
		}).RegisterRoutes(r)
		handler.NewChartHandler(charts).RegisterRoutes(r)
		handler.NewActivityHandler(cfg.Activity).RegisterRoutes(r)
		r.Handle("/live/ws", liveHandler)
	})

	return &Server{Handler: r, Services: svc, Charts: charts, Live: liveHandler, port: cfg.Port}, nil
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("starting server on %s", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
