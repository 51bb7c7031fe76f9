package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/queue"
	"github.com/caselaw/casestrainer/internal/store"
)

// maxReapAttempts is how many times the reaper returns a stuck job to
// queued; the reap after that marks it failed instead (spec §4.8).
const maxReapAttempts = 3

// Reaper sweeps for started jobs whose heartbeat has gone stale and
// either requeues or fails them, grounded on
// internal/services/processing/scheduler.go's cron.Cron wrapper.
type Reaper struct {
	store     *store.Store
	queueMgr  *queue.Manager
	cfg       *common.Config
	logger    arbor.ILogger
	cron      *cron.Cron
}

// NewReaper builds a Reaper. Call Start to begin the periodic sweep.
func NewReaper(st *store.Store, queueMgr *queue.Manager, cfg *common.Config, logger arbor.ILogger) *Reaper {
	return &Reaper{
		store:    st,
		queueMgr: queueMgr,
		cfg:      cfg,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules the sweep to run every 60 seconds (spec §4.8).
func (r *Reaper) Start() error {
	_, err := r.cron.AddFunc("@every 60s", r.sweep)
	if err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Info().Msg("Stuck-job reaper started")
	return nil
}

// Stop halts the sweep.
func (r *Reaper) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info().Msg("Stuck-job reaper stopped")
}

func (r *Reaper) sweep() {
	jobs, err := r.store.ListStarted()
	if err != nil {
		r.logger.Error().Err(err).Msg("Reaper: failed to list started jobs")
		return
	}

	threshold := r.cfg.StuckThreshold()
	now := time.Now()

	for i := range jobs {
		job := &jobs[i]
		if !job.IsStuck(now, threshold) {
			continue
		}
		r.reap(job)
	}

	purged, err := r.store.PurgeExpiredResults()
	if err != nil {
		r.logger.Error().Err(err).Msg("Reaper: failed to purge expired results")
	} else if purged > 0 {
		r.logger.Debug().Int("count", purged).Msg("Reaper: purged expired results")
	}
}

func (r *Reaper) reap(job *citation.Job) {
	job.Attempts++

	if job.Attempts > maxReapAttempts {
		now := time.Now()
		job.Status = citation.JobStatusFailed
		job.EndedAt = &now
		job.Error = "job exceeded maximum stuck-job reap attempts"
		if err := r.store.SaveJob(job); err != nil {
			r.logger.Error().Err(err).Str("job_id", job.ID).Msg("Reaper: failed to mark job failed")
		}
		r.logger.Warn().Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("Reaper: job exceeded max attempts, marked failed")
		return
	}

	job.Status = citation.JobStatusQueued
	job.HeartbeatAt = nil
	job.StartedAt = nil
	if err := r.store.SaveJob(job); err != nil {
		r.logger.Error().Err(err).Str("job_id", job.ID).Msg("Reaper: failed to requeue stuck job")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.queueMgr.Enqueue(ctx, queue.Message{JobID: job.ID}); err != nil {
		r.logger.Error().Err(err).Str("job_id", job.ID).Msg("Reaper: failed to re-enqueue stuck job")
		return
	}
	r.logger.Warn().Str("job_id", job.ID).Int("attempts", job.Attempts).Msg("Reaper: requeued stuck job")
}
