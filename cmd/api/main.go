package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/baharkarakas/atm-backend/internal/api"
	"github.com/baharkarakas/atm-backend/internal/auth"
	"github.com/baharkarakas/atm-backend/internal/config"
	"github.com/baharkarakas/atm-backend/internal/db"
	"github.com/baharkarakas/atm-backend/internal/events"
	"github.com/baharkarakas/atm-backend/internal/logger"
	"github.com/baharkarakas/atm-backend/internal/repository"
	"github.com/baharkarakas/atm-backend/internal/repository/memory"
	"github.com/baharkarakas/atm-backend/internal/repository/postgres"
	"github.com/baharkarakas/atm-backend/internal/services"
	"github.com/baharkarakas/atm-backend/internal/session"
	"github.com/baharkarakas/atm-backend/internal/worker"
)

func main() {
	// .env is optional; real environments set variables directly
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not load .env", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("storage", "driver", cfg.StorageDriver, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	pins, err := auth.NewPINVerifier(cfg.PINStorage)
	if err != nil {
		log.Error("pin storage", "err", err)
		os.Exit(1)
	}

	pub := events.Connect(cfg.RabbitMQURL, log)
	defer pub.Close()

	wp := worker.NewPool(cfg.WorkerCount)
	// drains queued audit/event jobs; runs before pub.Close
	defer wp.Stop()

	sessions := session.NewManager()
	sweeper, err := sessions.StartSweeper(cfg.SweepSpec, cfg.SessionTTL, log)
	if err != nil {
		log.Error("session sweeper", "spec", cfg.SweepSpec, "err", err)
		os.Exit(1)
	}
	defer sweeper.Stop()

	audit := services.NewAuditor(repos.AuditLogs, pub, wp, log)
	r := api.NewRouter(api.RouterDeps{
		Cfg:        cfg,
		TM:         auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL),
		Sessions:   sessions,
		AccountSvc: services.NewAccountService(repos.Users, pins, audit, log),
		BalanceSvc: services.NewBalanceService(repos.Users),
		TxnSvc:     services.NewTransactionService(repos.Transactions, repos.Atomic, audit, log),
		AdminSvc:   services.NewAdminService(repos.Users, repos.Transactions, repos.AuditLogs),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort, "storage", cfg.StorageDriver,
			"pin_storage", cfg.PINStorage, "admin_routes", cfg.AdminAPIKey != "")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", "err", err)
	}
}

// openStore returns the repositories for cfg.StorageDriver and a close func.
func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (repository.Repositories, func(), error) {
	if cfg.StorageDriver == "memory" {
		log.Warn("using in-memory storage; data is lost on restart")
		return memory.New().Repositories(), func() {}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	if cfg.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return repository.Repositories{}, nil, err
		}
		log.Info("migrations applied")
	}
	return postgres.NewRepositories(pool), pool.Close, nil
}
