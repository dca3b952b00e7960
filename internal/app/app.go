package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"OptiLiveAudit/internal/config"
	"OptiLiveAudit/internal/domain"
	"OptiLiveAudit/internal/fairness"
	"OptiLiveAudit/internal/infrastructure/httpapi"
	"OptiLiveAudit/internal/infrastructure/scheduler"
	"OptiLiveAudit/internal/infrastructure/storage"
	"OptiLiveAudit/internal/infrastructure/telegram"
	"OptiLiveAudit/internal/logging"
	"OptiLiveAudit/internal/metrics"
	"OptiLiveAudit/internal/population"
	"OptiLiveAudit/internal/ports"
	"OptiLiveAudit/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	repo     ports.AuditRepository
	registry *prometheus.Registry
	db       *sql.DB
}

// New builds the application. A configured DSN is connected and migrated here.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	a := &Application{cfg: cfg, logger: baseLogger}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	repo, err := a.openRepository(ctx)
	if err != nil {
		return nil, err
	}
	a.repo = repo

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.Enabled() {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID, baseLogger.With("component", "notifier.telegram"))
	}

	generator := population.NewGenerator(
		population.WithWorkers(cfg.Audit.Workers),
		population.WithBlockSize(cfg.Audit.BlockSize),
		population.WithMaxPopulation(cfg.Audit.MaxPopulation),
	)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     generator,
		Aggregator: fairness.NewAggregator(nil),
		Repository: repo,
		Notifier:   notifier,
		Metrics:    metrics.New(a.registry),
		Logger:     baseLogger.With("component", "pipeline"),
		Workers:    cfg.Audit.Workers,
		Tolerance:  cfg.Audit.DisparityTolerance,
	})

	return a, nil
}

func (a *Application) openRepository(ctx context.Context) (ports.AuditRepository, error) {
	db := a.cfg.Database
	if db.DSN == "" {
		a.logger.Info("no database configured, keeping reports in memory", "runs", db.MemoryRuns)
		repo, err := storage.NewMemoryRepository(db.MemoryRuns)
		if err != nil {
			return nil, err
		}
		return repo, nil
	}

	conn, err := storage.Open(ctx, db.Driver, db.DSN)
	if err != nil {
		return nil, err
	}
	repo := storage.NewSQLRepository(conn, db.Driver)
	if err := repo.EnsureSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	a.db = conn
	return repo, nil
}

// Request returns the configured default audit request.
func (a *Application) Request() usecase.AuditRequest {
	return usecase.AuditRequest{
		Population: a.cfg.Audit.Population,
		Seed:       a.cfg.Audit.Seed,
		Threshold:  a.cfg.Audit.Threshold,
		Features:   a.cfg.Audit.Features,
	}
}

// RunOnce executes a single audit.
func (a *Application) RunOnce(ctx context.Context, req usecase.AuditRequest) (domain.AuditReport, error) {
	return a.pipeline.Run(ctx, req)
}

// Serve exposes the HTTP API and, when enabled, the recurring audit until ctx is done.
func (a *Application) Serve(ctx context.Context) error {
	handler := httpapi.New(a.pipeline, a.repo, a.Request(), a.cfg.HTTP.AuditsPerMinute,
		a.logger.With("component", "httpapi"))
	srv := httpapi.NewServer(a.cfg.HTTP.Addr, httpapi.NewRouter(handler, a.registry))

	var sched *usecase.Scheduler
	if a.cfg.Scheduler.Enabled {
		sched = usecase.NewScheduler(scheduler.NewIntervalScheduler(a.cfg.Scheduler.Interval), a.pipeline, a.Request())
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduled audits enabled", "interval", a.cfg.Scheduler.Interval)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop failed", "error", err)
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	return nil
}

// Close releases the database connection, if any.
func (a *Application) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
