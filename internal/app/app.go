package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"TrendsAgent/internal/classifier"
	"TrendsAgent/internal/config"
	"TrendsAgent/internal/domain"
	"TrendsAgent/internal/httpapi"
	"TrendsAgent/internal/infrastructure/llm"
	"TrendsAgent/internal/infrastructure/lock"
	"TrendsAgent/internal/infrastructure/scheduler"
	"TrendsAgent/internal/infrastructure/source"
	"TrendsAgent/internal/infrastructure/storage"
	"TrendsAgent/internal/infrastructure/telegram"
	"TrendsAgent/internal/logging"
	"TrendsAgent/internal/ports"
	"TrendsAgent/internal/retry"
	"TrendsAgent/internal/synthesizer"
	"TrendsAgent/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg        config.Config
	logger     *slog.Logger
	store      ports.RecordStore
	runner     *usecase.Runner
	records    *usecase.Records
	scheduler  *usecase.Scheduler
	components map[string]bool
	closers    []func() error
}

// New builds a runnable application instance. Optional backends (SQL store,
// Redis lock, Telegram) that fail to initialise are logged and skipped.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger, components: map[string]bool{}}

	errs, warnings := cfg.Validate()
	for _, w := range warnings {
		baseLogger.Warn("configuration warning", "detail", w)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %v", errs)
	}

	service, err := llm.New(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("init completion service: %w", err)
	}
	a.components["completion_service"] = service != nil

	policy := a.retryPolicy()
	cls := classifier.New(service, classifier.Config{
		MaxTokens:   cfg.Classifier.MaxTokens,
		Temperature: cfg.Classifier.TemperatureOr(classifier.DefaultTemperature),
	}, policy, baseLogger.With("component", "classifier"))
	syn := synthesizer.New(service, synthesizer.Config{
		MaxTokens:   cfg.Synthesizer.MaxTokens,
		Temperature: cfg.Synthesizer.TemperatureOr(synthesizer.DefaultTemperature),
		Brand:       cfg.Synthesizer.Brand,
		BrandURL:    cfg.Synthesizer.BrandURL,
	}, policy, baseLogger.With("component", "synthesizer"))
	a.components["classifier"] = true
	a.components["content_generator"] = true

	src := source.NewStrategySource(source.NewDefaultRegistry(nil), cfg.Sources, baseLogger.With("component", "source"))
	a.components["scraper"] = true

	a.store = a.buildStore(ctx)
	a.components["store"] = a.store != nil

	var notifier ports.Notifier
	if tg := telegram.NewNotifier(cfg.Notifications.Telegram); tg.Enabled() {
		notifier = tg
	}
	a.components["notifier"] = notifier != nil

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:      src,
		Classifier:  cls,
		Synthesizer: syn,
		Store:       a.store,
		Notifier:    notifier,
		Config: usecase.PipelineConfig{
			BatchSize: cfg.Pipeline.BatchSize,
			ItemDelay: cfg.Pipeline.ItemDelay,
		},
		Logger: baseLogger.With("component", "pipeline"),
	})

	a.runner = usecase.NewRunner(pipeline, a.buildLock(ctx))
	a.records = usecase.NewRecords(a.store, baseLogger.With("component", "records"))

	if cfg.Scheduler.Interval > 0 {
		driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval, false, cfg.Scheduler.Location())
		a.scheduler = usecase.NewScheduler(driver, a.runner, baseLogger.With("component", "scheduler"))
	}

	return a, nil
}

func (a *Application) retryPolicy() retry.Policy {
	return retry.Policy{
		Attempts:    a.cfg.Retry.Attempts,
		BaseDelay:   a.cfg.Retry.BaseDelay,
		CallTimeout: a.cfg.LLM.CallTimeout,
	}
}

func (a *Application) buildStore(ctx context.Context) ports.RecordStore {
	var stores []ports.RecordStore
	if a.cfg.Storage.CSVPath != "" {
		stores = append(stores, storage.NewCSVStore(a.cfg.Storage.CSVPath))
	}
	if a.cfg.Storage.DSN != "" {
		sqlStore, err := storage.OpenSQLStore(ctx, a.cfg.Storage.Driver, a.cfg.Storage.DSN)
		if err != nil {
			a.logger.Warn("sql store unavailable, continuing without it", "driver", a.cfg.Storage.Driver, "error", err)
		} else {
			stores = append(stores, sqlStore)
			a.closers = append(a.closers, sqlStore.Close)
		}
	}
	switch len(stores) {
	case 0:
		return nil
	case 1:
		return stores[0]
	default:
		return storage.NewMultiStore(a.logger.With("component", "storage"), stores...)
	}
}

func (a *Application) buildLock(ctx context.Context) ports.RunLock {
	if a.cfg.Redis.URL == "" {
		return lock.NewLocal()
	}
	redisLock, err := lock.NewRedisFromURL(a.cfg.Redis.URL, a.cfg.Redis.LockKey, a.cfg.Redis.LockTTL, a.logger.With("component", "lock"))
	if err == nil {
		err = redisLock.Ping(ctx)
		if err != nil {
			_ = redisLock.Close()
		}
	}
	if err != nil {
		a.logger.Warn("redis lock unavailable, using in-process lock", "error", err)
		return lock.NewLocal()
	}
	a.closers = append(a.closers, redisLock.Close)
	return redisLock
}

// RunOnce performs a single serialised pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.RunSummary, error) {
	return a.runner.Run(ctx)
}

// Records exposes the review use case to CLI commands.
func (a *Application) Records() *usecase.Records {
	return a.records
}

// Store returns the composed record store.
func (a *Application) Store() ports.RecordStore {
	return a.store
}

// Handler builds the HTTP router.
func (a *Application) Handler() http.Handler {
	h := httpapi.NewHandler(a.runner, a.records, a.components, a.logger.With("component", "http"))
	return httpapi.NewRouter(h, a.cfg.Server.AllowedOrigins)
}

// Serve runs the HTTP API and the optional scheduler until ctx ends.
func (a *Application) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	if a.scheduler != nil {
		if err := a.scheduler.Start(gctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduler started", "interval", a.cfg.Scheduler.Interval)
	}

	g.Go(func() error {
		a.logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		if a.scheduler != nil {
			if err := a.scheduler.Stop(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("stop scheduler: %w", err))
			}
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
		a.logger.Info("server stopped")
		return errors.Join(errs...)
	})

	return g.Wait()
}

// Close releases database pools and client connections.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
