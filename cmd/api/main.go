package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"travelagency/internal/auth"
	"travelagency/internal/events"
	"travelagency/internal/httpapi"
	"travelagency/internal/user"
	"travelagency/internal/workflow"
	"travelagency/pkg/broker"
	"travelagency/pkg/cache"
	"travelagency/pkg/config"
	"travelagency/pkg/db"
	"travelagency/pkg/logger"
	"travelagency/pkg/metrics"
	"travelagency/pkg/retry"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.AppEnv)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(cfg.MetricsNamespace, reg)

	policy := retry.FromConfig(cfg.Retry)
	policy.OnRetry = func(op string, attempt int, err error) {
		m.Retry(op)
		log.Warn("retrying", "op", op, "attempt", attempt, "error", err)
	}

	rules, err := workflow.RulesFor(cfg.WorkflowTransitions)
	if err != nil {
		log.Fatal("workflow rules", "error", err)
	}

	conn, err := db.Open(ctx, cfg, policy)
	if err != nil {
		log.Fatal("db open", "error", err)
	}
	defer conn.Close()

	if cfg.MigrationsPath != "" {
		if err := db.MigrateConfig(cfg.MigrationsPath, cfg); err != nil {
			log.Fatal("migrate", "error", err)
		}
	}
	if err := auth.EnsureSuperAdmin(ctx, user.NewRepository(conn), cfg.Auth); err != nil {
		log.Fatal("bootstrap super admin", "error", err)
	}

	rdb := cache.NewRedisClient(ctx, cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable; running without record cache and rate limiting", "addr", cfg.Redis.Addr)
	} else {
		defer func() { _ = rdb.Close() }()
	}

	var pub events.Publisher = events.NopPublisher{}
	var outbox *events.Async
	if cfg.RabbitMQ.URL != "" {
		p := broker.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, policy)
		p.DialTimeout = cfg.RabbitMQ.DialTimeout
		defer p.Close()
		outbox = events.NewAsync(p, log, cfg.RabbitMQ.BufferSize, cfg.RabbitMQ.PublishTimeout)
		pub = outbox
	}

	router := httpapi.NewRouter(httpapi.Dependencies{
		Cfg:       cfg,
		DB:        conn,
		Log:       log,
		Metrics:   m,
		Gatherer:  reg,
		Redis:     rdb,
		Cache:     cache.NewRecords(rdb, cfg.Cache),
		Publisher: pub,
		Rules:     rules,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr, "transitions", rules.Booking.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http serve", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	if outbox != nil {
		if err := outbox.Close(shutdownCtx); err != nil {
			log.Warn("pending events not delivered", "error", err)
		}
	}
}
