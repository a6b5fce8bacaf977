package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/mlucchetti/rfdrelax/internal/config"
	"github.com/mlucchetti/rfdrelax/internal/core/domain"
	"github.com/mlucchetti/rfdrelax/internal/core/ports"
	"github.com/mlucchetti/rfdrelax/internal/core/usecase"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/queue/nats"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/repository/postgres"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/resilience"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/tabular/csvfile"
	"github.com/mlucchetti/rfdrelax/internal/infrastructure/tabular/excelfile"
)

// App wires configuration into the shared object graph used by both the
// api and the worker binaries. Postgres always backs the job store; the
// catalog and dataset come from csv, xlsx or postgres per configuration.
type App struct {
	Config config.Config

	Queue   ports.JobQueue
	Relaxer ports.QueryRelaxer
	Lister  ports.CandidateLister
	Jobs    ports.RelaxJobService
	Runner  ports.RelaxJobRunner

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.Default()

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	jobRepo := postgres.NewRelaxJobRepository(db)
	if err := jobRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig(), logger)

	catalogSrc, err := newCatalogSource(cfg, db, executor)
	if err != nil {
		return nil, fmt.Errorf("init catalog source: %w", err)
	}
	datasetSrc, err := newDatasetSource(cfg, db, executor)
	if err != nil {
		return nil, fmt.Errorf("init dataset source: %w", err)
	}

	// Catalog and dataset are loaded once here and held for the process
	// lifetime. A bad source fails startup instead of the first request.
	catalog, err := catalogSrc.LoadCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	dataset, err := datasetSrc.LoadDataset(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Info("relaxation data loaded",
		"rfds", catalog.Len(),
		"attributes", len(catalog.Attributes()),
		"rows", dataset.Len(),
	)

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init job queue: %w", err)
	}

	relaxUC := usecase.NewRelaxUseCase(
		staticCatalogSource{catalog: catalog},
		staticDatasetSource{dataset: dataset},
		logger,
		cfg.RelaxMinMatches,
		cfg.RelaxMaxRounds,
	)
	jobUC := usecase.NewRelaxJobUseCase(relaxUC, jobRepo, queue)

	return &App{
		Config: cfg,

		Queue:   queue,
		Relaxer: relaxUC,
		Lister:  relaxUC,
		Jobs:    jobUC,
		Runner:  jobUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// staticCatalogSource serves the snapshot loaded at startup.
type staticCatalogSource struct {
	catalog domain.Catalog
}

func (s staticCatalogSource) LoadCatalog(context.Context) (domain.Catalog, error) {
	return s.catalog, nil
}

type staticDatasetSource struct {
	dataset domain.Dataset
}

func (s staticDatasetSource) LoadDataset(context.Context) (domain.Dataset, error) {
	return s.dataset, nil
}

func newCatalogSource(cfg config.Config, db *sql.DB, executor *resilience.Executor) (ports.CatalogSource, error) {
	switch cfg.CatalogSource {
	case "csv":
		return csvfile.NewCatalogSource(cfg.CatalogPath), nil
	case "xlsx":
		return excelfile.NewCatalogSource(cfg.CatalogPath, cfg.CatalogSheet), nil
	case "postgres":
		return postgres.NewCatalogRepositoryWithOptions(db, cfg.CatalogTable, postgres.Options{
			ResilienceExecutor: executor,
		}), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
	}
}

func newDatasetSource(cfg config.Config, db *sql.DB, executor *resilience.Executor) (ports.DatasetSource, error) {
	switch cfg.DatasetSource {
	case "csv":
		return csvfile.NewDatasetSource(cfg.DatasetPath), nil
	case "xlsx":
		return excelfile.NewDatasetSource(cfg.DatasetPath, cfg.DatasetSheet), nil
	case "postgres":
		return postgres.NewDatasetRepositoryWithOptions(db, cfg.DatasetTable, postgres.Options{
			ResilienceExecutor: executor,
		}), nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.DatasetSource)
	}
}
