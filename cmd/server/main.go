package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/Simplici0/jobmargin/internal/auth"
	"github.com/Simplici0/jobmargin/internal/config"
	"github.com/Simplici0/jobmargin/internal/db"
	"github.com/Simplici0/jobmargin/internal/jobs"
	"github.com/Simplici0/jobmargin/internal/migrations"
	"github.com/Simplici0/jobmargin/internal/rpc"
	"github.com/Simplici0/jobmargin/internal/seed"
	"github.com/Simplici0/jobmargin/internal/store"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
	limiterIdle     = 3 * time.Minute
)

type server struct {
	jobs     *jobs.Service
	rpc      *rpc.Dispatcher
	store    *store.Store
	sessions *auth.Sessions
	resolver auth.Resolver
	limiter  *clientLimiter
	logger   *slog.Logger
	timeout  time.Duration
	secure   bool
	// proxied enables RealIP; without it clients are keyed by the socket address.
	proxied  bool
}

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(database); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
		if cfg.SeedOwnerID != "" {
			stats, err := seed.Run(ctx, database, seed.Config{OwnerID: cfg.SeedOwnerID})
			if err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
			logger.Info("demo data", "owner_id", cfg.SeedOwnerID, "inserts", stats.Inserts, "skipped", stats.Skipped)
		}
	}

	srv, err := newServer(cfg, store.New(database), logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Addr(), "env", cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		srv.limiter.sweep(gctx, time.Minute, limiterIdle)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func newServer(cfg config.Config, st *store.Store, logger *slog.Logger) (*server, error) {
	svc := jobs.NewService(st, nil)
	dispatcher, err := rpc.NewDispatcher(svc, logger)
	if err != nil {
		return nil, fmt.Errorf("build rpc dispatcher: %w", err)
	}

	sessions := auth.NewSessions(cfg.SessionSecret)
	var resolver auth.Chain
	if cfg.JWTSecret != "" {
		resolver = append(resolver, auth.NewBearer(cfg.JWTSecret, cfg.JWTIssuer))
	}
	if sessions.Enabled() {
		resolver = append(resolver, sessions)
	}

	return &server{
		jobs:     svc,
		rpc:      dispatcher,
		store:    st,
		sessions: sessions,
		resolver: resolver,
		limiter:  newClientLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		logger:   logger,
		timeout:  cfg.RequestTimeout,
		secure:   !cfg.IsDev(),
		proxied:  cfg.TrustProxy,
	}, nil
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if s.proxied {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(s.timeout))
		r.Use(s.limiter.middleware)
		r.Use(auth.Middleware(s.resolver))

		r.Post("/mcp", s.handleRPC)

		r.Route("/v1", func(r chi.Router) {
			r.Use(requireIdentity)

			r.Post("/session", s.handleSessionCreate)
			r.Delete("/session", s.handleSessionDelete)

			r.Get("/jobs", s.handleJobsList)
			r.Post("/jobs", s.handleJobsCreate)
			r.Get("/jobs/{id}", s.handleJobDetail)
			r.Patch("/jobs/{id}/status", s.handleJobStatus)
			r.Post("/jobs/{id}/labor", s.handleLaborCreate)
			r.Delete("/jobs/{id}/labor/{entryID}", s.handleLaborDelete)
			r.Post("/jobs/{id}/materials", s.handleMaterialsCreate)
			r.Delete("/jobs/{id}/materials/{entryID}", s.handleMaterialsDelete)

			r.Get("/stats", s.handleStats)
			r.Get("/reports/monthly", s.handleMonthlyReport)
		})
	})

	return r
}
