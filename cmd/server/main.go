package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fleetdesk/internal/audit"
	audithandler "fleetdesk/internal/audit/handler"
	auditmetrics "fleetdesk/internal/audit/metrics"
	"fleetdesk/internal/compliance"
	compliancehandler "fleetdesk/internal/compliance/handler"
	compliancemetrics "fleetdesk/internal/compliance/metrics"
	"fleetdesk/internal/counter"
	"fleetdesk/internal/fleet"
	fleethandler "fleetdesk/internal/fleet/handler"
	httpapi "fleetdesk/internal/http"
	jwttoken "fleetdesk/internal/jwt_token"
	"fleetdesk/internal/platform/config"
	"fleetdesk/internal/platform/httpserver"
	"fleetdesk/internal/platform/logger"
	"fleetdesk/internal/platform/postgres"
	"fleetdesk/internal/platform/redis"
	"fleetdesk/internal/rules"
	ruleshandler "fleetdesk/internal/rules/handler"
)

const outboxPollInterval = 2 * time.Second

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	db, err := postgres.Open(cfg.PostgresURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}
	cancelMigrate()

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	tz, err := time.LoadLocation(cfg.DefaultTZ)
	if err != nil {
		log.Error("invalid default timezone", "timezone", cfg.DefaultTZ, "error", err)
		os.Exit(1)
	}

	// Stores.
	ruleStore := rules.NewPostgres(db)
	driverStore := fleet.NewPostgresDriverStore(db)
	categoryStore := fleet.NewPostgresCategoryStore(db)
	counterStore := counter.NewPostgres(db)
	auditStore := audit.NewPostgres(db)

	// Services.
	fleetSvc := fleet.New(driverStore, categoryStore)

	ruleOpts := []rules.Option{rules.WithLogger(log)}
	if redisClient != nil {
		ruleOpts = append(ruleOpts, rules.WithCache(rules.NewCache(redisClient.Client, config.RuleCacheTTL)))
	}
	rulesSvc := rules.New(ruleStore, fleetSvc, ruleOpts...)

	counterSvc := counter.NewService(counterStore, tz, log)

	auditMetrics := auditmetrics.New()
	auditSvc := audit.NewService(auditStore,
		audit.WithLogger(log),
		audit.WithMetrics(auditMetrics),
	)

	complianceSvc := compliance.New(rulesSvc, fleetSvc, counterSvc, auditSvc,
		compliance.WithLogger(log),
		compliance.WithMetrics(compliancemetrics.New()),
		compliance.WithTxRunner(newPostgresTxRunner(db)),
	)

	// Auth.
	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	healthChecks := map[string]httpapi.HealthChecker{
		"postgres": dbHealth{db},
	}
	if redisClient != nil {
		healthChecks["redis"] = redisClient
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		TokenValidator: jwttoken.NewAuthAdapter(jwtService),
		Compliance:     compliancehandler.New(complianceSvc, log),
		Rules:          ruleshandler.New(rulesSvc, log),
		Audit:          audithandler.New(auditSvc, log),
		Fleet:          fleethandler.New(fleetSvc, log),
		HealthChecks:   healthChecks,
	})

	srv := httpserver.New(cfg.Addr, router)

	// Outbox worker, only when Kafka is configured.
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := audit.NewPublisher(cfg.KafkaBrokers, cfg.AuditTopic)
		if err != nil {
			log.Error("kafka publisher setup failed", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()

		worker := audit.NewWorker(auditStore, publisher, outboxPollInterval, log, auditMetrics)
		go func() {
			if err := worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit outbox worker stopped", "error", err)
			}
		}()
		log.Info("audit outbox worker started", "topic", cfg.AuditTopic)
	} else {
		log.Warn("kafka brokers not configured, audit entries stay in the outbox")
	}

	go func() {
		log.Info("fleetdesk compliance service listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// dbHealth adapts *sql.DB to the router's health check.
type dbHealth struct {
	db *sql.DB
}

func (h dbHealth) Health(ctx context.Context) error {
	return h.db.PingContext(ctx)
}
