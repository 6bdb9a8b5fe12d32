package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-quiz/internal/assessment"
	"github.com/p-n-ai/pai-quiz/internal/cases"
	"github.com/p-n-ai/pai-quiz/internal/curriculum"
	"github.com/p-n-ai/pai-quiz/internal/exposure"
	"github.com/p-n-ai/pai-quiz/internal/platform/cache"
	"github.com/p-n-ai/pai-quiz/internal/platform/config"
	"github.com/p-n-ai/pai-quiz/internal/platform/database"
	"github.com/p-n-ai/pai-quiz/internal/progression"
	"github.com/p-n-ai/pai-quiz/internal/sampling"
	"github.com/p-n-ai/pai-quiz/internal/scoreevents"
	"github.com/p-n-ai/pai-quiz/internal/seal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      newMux(a),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.Store.Backend, "sinks", cfg.Events.Sinks)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// newLogger builds the process logger from config. Unknown levels fall back to info.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

// app holds the wired service and everything that must be checked or closed.
type app struct {
	svc    *assessment.Service
	hub    *scoreevents.Hub
	checks map[string]func(context.Context) error
	closer []func()
}

// Close releases connections in reverse order of creation.
func (a *app) Close() {
	for i := len(a.closer) - 1; i >= 0; i-- {
		a.closer[i]()
	}
}

type itemStore interface {
	exposure.Store
	exposure.Writer
}

type caseStore interface {
	cases.Store
	cases.Writer
}

// newApp connects the configured backends and builds the assessment service.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{checks: make(map[string]func(context.Context) error)}

	var (
		items    itemStore
		caseDB   caseStore
		progress progression.Store
		db       *database.DB
	)

	switch cfg.Store.Backend {
	case config.StoreMemory:
		items = exposure.NewMemoryStore()
		caseDB = cases.NewMemoryStore()
		progress = progression.NewMemoryStore()

	case config.StorePostgres:
		var err error
		db, err = database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
		if err != nil {
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		a.closer = append(a.closer, db.Close)
		a.checks["database"] = db.HealthCheck

		if cfg.Database.Migrate {
			if err := database.Migrate(ctx, db.Pool); err != nil {
				a.Close()
				return nil, err
			}
		}

		pgItems, err := exposure.NewPostgresStore(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		pgCases, err := cases.NewPostgresStore(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		pgProgress, err := progression.NewPostgresStore(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		items, caseDB, progress = pgItems, pgCases, pgProgress
	}

	var redisCache *cache.Cache
	if cfg.UsesCache() {
		var err error
		redisCache, err = cache.New(ctx, cfg.Cache.URL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connecting cache: %w", err)
		}
		a.closer = append(a.closer, func() { _ = redisCache.Close() })
		a.checks["cache"] = redisCache.HealthCheck
	}

	var locker progression.Locker
	if cfg.Progression.DistributedLock {
		locker = redisCache.Locker(cfg.LockTTL())
	}

	var sinks scoreevents.Fanout
	if cfg.HasSink(config.SinkPostgres) {
		sinks = append(sinks, scoreevents.NewPostgresSink(db.Pool))
	}
	if cfg.HasSink(config.SinkRedis) {
		sinks = append(sinks, scoreevents.NewRedisSink(redisCache.Client, cfg.Events.Stream))
	}
	if cfg.HasSink(config.SinkWebsocket) {
		a.hub = scoreevents.NewHub()
		sinks = append(sinks, a.hub)
	}

	sealer, err := seal.NewFromHex(cfg.Seal.Key)
	if err != nil {
		a.Close()
		return nil, err
	}

	opts := []assessment.Option{
		assessment.WithTrack(cfg.Progression.Track),
		assessment.WithSealer(sealer),
	}

	if cfg.ItemBank.Path != "" {
		loader, err := curriculum.NewLoader(cfg.ItemBank.Path)
		if err != nil {
			a.Close()
			return nil, err
		}
		stats, err := curriculum.Seed(ctx, loader.Result(), items, caseDB)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("seeding item bank: %w", err)
		}
		slog.Info("item bank seeded", "items", stats.Items, "cases", stats.Cases, "missing_cases", stats.MissingCases)
		opts = append(opts, assessment.WithSpecs(loader))
	}

	engine := sampling.NewEngine(items, caseDB, cfg.Sampling.BatchSize)
	tracker := progression.NewTracker(progress, locker)
	a.svc = assessment.NewService(engine, tracker, sinks, opts...)
	return a, nil
}

// ready runs every health check and returns the name of the first failure.
func (a *app) ready(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var errs []error
	failed := ""
	for _, name := range slices.Sorted(maps.Keys(a.checks)) {
		if err := a.checks[name](ctx); err != nil {
			if failed == "" {
				failed = name
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return failed, errors.Join(errs...)
}
