package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/matthewbaird/intake/internal/activity"
	"github.com/matthewbaird/intake/internal/blob"
	"github.com/matthewbaird/intake/internal/config"
	"github.com/matthewbaird/intake/internal/csvexport"
	"github.com/matthewbaird/intake/internal/event"
	"github.com/matthewbaird/intake/internal/eventbus"
	"github.com/matthewbaird/intake/internal/intake"
	"github.com/matthewbaird/intake/internal/live"
	"github.com/matthewbaird/intake/internal/metrics"
	"github.com/matthewbaird/intake/internal/server"
	"github.com/matthewbaird/intake/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	db, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer db.Close()

	catalog, err := intake.LoadCatalog()
	if err != nil {
		log.Fatalf("loading intake catalog: %v", err)
	}
	if err := db.Migrate(ctx, catalog.Columns()); err != nil {
		log.Fatalf("running schema migration: %v", err)
	}
	acts := activity.NewSQLStore(db.DB(), db.Dialect())
	if err := acts.CreateTable(ctx); err != nil {
		log.Fatalf("creating activity table: %v", err)
	}
	log.Println("database migrated successfully")

	archive, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		log.Fatalf("opening export archive: %v", err)
	}

	m := metrics.New()
	bus := eventbus.New(cfg.EventBus.Buffer)
	recorder := event.NewActivityRecorder(acts)
	recorder.SetPublisher(bus)

	sessions := live.NewManager(cfg.MaxAge(), cfg.IdleTimeout())
	srv, err := server.New(server.Config{
		Port:     cfg.Server.Port,
		Store:    db,
		Activity: acts,
		Recorder: recorder,
		Exporter: &csvexport.Exporter{Archive: archive},
		Metrics:  m,
		Sessions: sessions,
	})
	if err != nil {
		log.Fatalf("building server: %v", err)
	}

	bus.Subscribe("log", eventbus.NewLogConsumer())
	bus.Subscribe("metrics", eventbus.NewMetricsConsumer(m.DomainEvents))
	bus.Subscribe("live", srv.Live)
	bus.Start(ctx)
	defer bus.Stop()

	go sessions.Run(ctx, time.Minute)

	if err := srv.Run(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
