package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"logship/internal/api"
	"logship/internal/config"
	"logship/internal/logging"
	"logship/internal/logging/console"
	"logship/internal/logging/datadog"
	"logship/internal/logging/newrelic"
	"logship/internal/logging/shipper"
	"logship/internal/simulator"
	"logship/internal/source"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	sink := buildSink(cfg)
	log.Printf("Shipping logs to %s sink (service=%s, env=%s, batch=%d, interval=%s)",
		cfg.Sink, cfg.Service, cfg.Env, cfg.Shipper.MaxBatchSize, cfg.Shipper.FlushInterval)

	// The shipper gets its own lifecycle: it must stay alive through
	// shutdown so the final flush in ship.Stop() can still be delivered.
	ship := shipper.New(context.Background(), sink, logging.Config{
		MaxBatchSize:  cfg.Shipper.MaxBatchSize,
		FlushInterval: cfg.Shipper.FlushInterval,
	})
	ship.Start()

	sim := simulator.New(ctx, simulator.Config{
		Service:           cfg.Service,
		Host:              cfg.Host,
		Env:               cfg.Env,
		HeartbeatInterval: cfg.Simulator.HeartbeatInterval,
		MockErrors:        cfg.Simulator.MockErrors,
	}, ship)
	sim.Start()

	fileSource := source.New(ctx, source.Config{
		Paths:   cfg.TailFiles,
		Service: cfg.Service,
		Host:    cfg.Host,
		Env:     cfg.Env,
	}, ship)
	fileSource.Start()

	server := api.NewServer(cfg, ship, sim)
	go func() {
		log.Printf("Status API listening on %s", cfg.ServerAddr)
		if err := server.ListenAndServe(cfg.ServerAddr); err != nil {
			log.Printf("HTTP server stopped: %v", err)
			cancel()
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalChan
		log.Println("Received shutdown signal")
		cancel()
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	fileSource.Stop()
	sim.Stop()
	// Best-effort final flush of anything still buffered.
	ship.Stop()
}

func buildSink(cfg config.Config) logging.Sink {
	switch cfg.Sink {
	case config.SinkDatadog:
		return datadog.NewSink(datadog.Config{
			Site:   cfg.Datadog.Site,
			APIKey: cfg.APIKey,
			Source: cfg.Datadog.Source,
		})
	case config.SinkNewRelic:
		return newrelic.NewSink(newrelic.Config{
			Region: cfg.NewRelic.Region,
			APIKey: cfg.APIKey,
		})
	default:
		return console.NewSink(os.Stdout)
	}
}
