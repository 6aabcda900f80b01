package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"travelagency/internal/events"
	"travelagency/pkg/broker"
	"travelagency/pkg/config"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
)

// The worker consumes status change events and logs them. Notification
// channels (mail, SMS) hang off handle.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppEnv).With("component", "worker")
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(cfg.MetricsNamespace, reg)

	addr := os.Getenv("WORKER_METRICS_ADDR")
	if addr == "" {
		addr = ":9091"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics serve", "error", err)
		}
	}()

	handle := func(body []byte) error {
		var ev events.StatusChanged
		if err := json.Unmarshal(body, &ev); err != nil {
			m.Consumed("unknown", "malformed")
			return err
		}
		log.Info("status changed",
			"kind", ev.RecordKind,
			"id", ev.RecordID,
			"field", ev.Field,
			"from", ev.From,
			"to", ev.To,
			"actor", ev.Actor,
			"actor_role", ev.ActorRole,
			"occurred_at", ev.OccurredAt,
		)
		m.Consumed(ev.RecordKind, "ok")
		return nil
	}

	log.Info("consuming", "queue", cfg.RabbitMQ.Queue)
	if err := broker.Consume(ctx, cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log, handle); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
