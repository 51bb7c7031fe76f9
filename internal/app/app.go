// Package app wires CaseStrainer's collaborators into a single
// long-lived App: configuration, logging, the Badger-backed result and
// job store, the SQLite-backed job queue, the verification pipeline,
// and the worker pool and reaper that drive it. Grounded on Quaero's
// own internal/app/app.go wiring shape, narrowed to this service's
// single domain.
package app

import (
	"database/sql"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/pipeline"
	"github.com/caselaw/casestrainer/internal/queue"
	"github.com/caselaw/casestrainer/internal/store"
	"github.com/caselaw/casestrainer/internal/verify"
	"github.com/caselaw/casestrainer/internal/verify/fallback"
	"github.com/caselaw/casestrainer/internal/worker"
)

// App holds every long-lived collaborator the HTTP server and worker
// pool share.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	db    *sql.DB
	Store *store.Store
	Queue *queue.Manager

	Pipeline *pipeline.Pipeline
	Workers  *worker.Pool
	Reaper   *worker.Reaper
}

// New constructs an App from configuration: opens the Badger result/job
// store, opens the SQLite-backed queue database, builds the
// verification pipeline (structured client + ranked HTML fallback
// chain), and starts the worker pool and stuck-job reaper.
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	st, err := openStore(logger, cfg)
	if err != nil {
		return nil, err
	}

	db, queueMgr, err := openQueue(logger, cfg)
	if err != nil {
		return nil, err
	}

	pl := buildPipeline(cfg)

	workerPool := worker.New(queueMgr, st, pl, cfg, logger)
	reaper := worker.NewReaper(st, queueMgr, cfg, logger)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		db:       db,
		Store:    st,
		Queue:    queueMgr,
		Pipeline: pl,
		Workers:  workerPool,
		Reaper:   reaper,
	}

	a.Workers.Start()
	if err := a.Reaper.Start(); err != nil {
		return nil, fmt.Errorf("app: starting reaper: %w", err)
	}

	logger.Info().Msg("Application initialized")
	return a, nil
}

func openStore(logger arbor.ILogger, cfg *common.Config) (*store.Store, error) {
	db, err := store.Open(logger, cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("app: opening result store: %w", err)
	}
	return store.New(db), nil
}

func openQueue(logger arbor.ILogger, cfg *common.Config) (*sql.DB, *queue.Manager, error) {
	db, err := queue.OpenDB(logger, cfg.Queue.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("app: opening queue database: %w", err)
	}

	mgr, err := queue.NewManager(db, cfg.Queue.QueueName)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("app: initializing queue: %w", err)
	}
	return db, mgr, nil
}

// buildPipeline wires the structured citation-lookup client and the
// ranked HTML fallback chain (spec §4.6) into a Pipeline.
func buildPipeline(cfg *common.Config) *pipeline.Pipeline {
	var structured verify.StructuredClient
	if cfg.Verify.Enabled {
		rps := int(cfg.Verify.StructuredAPIRateLimit)
		if rps <= 0 {
			rps = 5
		}
		structured = verify.NewCourtListenerClient(
			cfg.Verify.StructuredAPIBaseURL,
			cfg.Verify.StructuredAPIToken,
			verify.WithRateLimit(rps),
		)
	}

	sources := fallback.Select(cfg.Verify.FallbackSourceOrder)
	return pipeline.New(cfg, structured, sources)
}

// Close releases every collaborator the App owns, in reverse order of
// acquisition.
func (a *App) Close() error {
	a.Reaper.Stop()
	a.Workers.Stop()

	if err := a.Queue.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close queue manager")
	}
	if err := a.db.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close queue database")
	}
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to close result store")
	}

	a.Logger.Info().Msg("Application shut down")
	return nil
}
