// Package app wires configuration into the running service.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"StoryScanner/internal/config"
	"StoryScanner/internal/infrastructure/jobstore"
	"StoryScanner/internal/infrastructure/llm"
	"StoryScanner/internal/infrastructure/scheduler"
	"StoryScanner/internal/infrastructure/storage"
	"StoryScanner/internal/jobqueue"
	"StoryScanner/internal/logging"
	"StoryScanner/internal/ports"
	"StoryScanner/internal/scoring"
	"StoryScanner/internal/transport/httpapi"
	"StoryScanner/internal/usecase"
)

const shutdownGrace = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	queue   *jobqueue.Queue
	sweeper *usecase.Sweeper
	server  *http.Server
	closers []func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	app := &Application{cfg: cfg, logger: baseLogger}

	var repo ports.StoryRepository
	if cfg.Database.DSN != "" {
		db, err := sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open story database: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		repo = storage.NewPostgresRepository(db)
	} else {
		baseLogger.Warn("no database configured, stored-story endpoints disabled")
	}

	var store ports.JobStore
	if cfg.JobStore.Path != "" {
		sqliteStore, err := jobstore.New(cfg.JobStore.Path)
		if err != nil {
			return nil, fmt.Errorf("open job store: %w", err)
		}
		app.closers = append(app.closers, sqliteStore.Close)
		store = sqliteStore
	} else {
		baseLogger.Warn("no job store path configured, queue state will not survive restarts")
		store = jobqueue.NewMemoryStore()
	}

	var enhancer ports.Enhancer
	if cfg.Enhancer.APIKey != "" {
		enhancer = llm.NewClient(cfg.Enhancer)
	} else {
		baseLogger.Warn("enhancer api key missing, running local scoring only")
	}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Hype:     scoring.NewHypeScorer(),
		Ethics:   scoring.NewEthicsScorer(nil),
		Enhancer: enhancer,
		Logger:   baseLogger.With("component", "pipeline"),
	})

	app.queue = jobqueue.New(jobqueue.Deps{
		Store:      store,
		Repository: repo,
		Scorer:     pipeline,
		Logger:     baseLogger.With("component", "jobqueue"),
		Options: jobqueue.Options{
			Concurrency:  cfg.Queue.Concurrency,
			MaxAttempts:  cfg.Queue.MaxAttempts,
			BackoffBase:  cfg.Queue.BackoffBaseDuration(),
			PollInterval: cfg.Queue.PollIntervalDuration(),
			Retention:    cfg.Queue.RetentionDuration(),
		},
	})
	pipeline.AttachQueue(app.queue)

	app.sweeper = usecase.NewSweeper(
		scheduler.NewCronScheduler(cfg.Queue.SweepSpec),
		app.queue,
		baseLogger.With("component", "sweeper"),
	)

	app.server = &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: httpapi.NewRouter(pipeline, repo, baseLogger.With("component", "httpapi")),
	}

	return app, nil
}

// Run starts the worker pool, the retention sweeper and the HTTP
// listener, then blocks until ctx is cancelled or a component fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	if err := a.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("start sweeper: %w", err)
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := a.sweeper.Stop(stopCtx); err != nil {
			a.logger.Error("sweeper stop failed", "error", err)
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return a.queue.Start(groupCtx)
	})

	group.Go(func() error {
		a.logger.Info("http server listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *Application) close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Error("close resource failed", "error", err)
		}
	}
}
