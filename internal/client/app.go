package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avelichko/revise/internal/config"
	"github.com/avelichko/revise/internal/logger"
	"github.com/avelichko/revise/internal/migrate"
	"github.com/avelichko/revise/internal/service"
	"github.com/avelichko/revise/internal/store"
	"github.com/avelichko/revise/internal/workers"
)

type App struct {
	services *service.ClientServices
	storages *store.ClientStorages
	pipeline *migrate.Pipeline
	cfg      config.ClientWorkers
	log      *logger.Logger
}

func NewApp(services *service.ClientServices, storages *store.ClientStorages, cfg config.ClientWorkers, log *logger.Logger) (*App, error) {
	if services == nil {
		return nil, errors.New("nil client services")
	}
	if storages == nil {
		return nil, errors.New("nil client storages")
	}

	return &App{
		services: services,
		storages: storages,
		pipeline: migrate.NewPipeline(storages.KV, log, migrate.Steps()...),
		cfg:      cfg,
		log:      log,
	}, nil
}

// Run implements [Client]. Migrations are applied before anything reads the
// store; a migration failure aborts startup so the next launch retries it.
func (a *App) Run(ctx context.Context) error {
	ran, err := a.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("apply data migrations: %w", err)
	}
	if ran {
		a.log.Info().Msg("local data migrated")
	}

	if err = a.services.Resources.Sync(ctx); err != nil {
		a.log.Warn().Err(err).Msg("initial sync failed, continuing with local data")
	}

	jobs := workers.NewWorkers(&syncWorker{
		ctx:      ctx,
		job:      a.services.SyncJob,
		interval: a.cfg.SyncInterval,
	})
	jobs.Run()

	<-ctx.Done()

	a.services.SyncJob.Stop()
	// the marker map may hold up to a debounce window of unpersisted state
	a.services.Resources.Flush()
	return nil
}

// syncWorker adapts the sync job to the workers contract.
type syncWorker struct {
	ctx      context.Context
	job      service.SyncJob
	interval time.Duration
}

func (w *syncWorker) Run() {
	w.job.Start(w.ctx, w.interval)
}
