// Package worker runs the citation pipeline against queued jobs (spec
// §4.8). Its pool/worker-loop shape is grounded on Quaero's own
// internal/worker/pool.go: a fixed number of goroutines each polling
// the queue in a loop, claiming one job at a time.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/pipeline"
	"github.com/caselaw/casestrainer/internal/queue"
	"github.com/caselaw/casestrainer/internal/store"
)

// Pool runs numWorkers goroutines, each claiming jobs from the queue
// and running them through the pipeline to completion.
type Pool struct {
	queueMgr *queue.Manager
	store    *store.Store
	pipeline *pipeline.Pipeline
	cfg      *common.Config
	logger   arbor.ILogger

	numWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

// New builds a worker Pool. Call Start to begin processing.
func New(queueMgr *queue.Manager, st *store.Store, pl *pipeline.Pipeline, cfg *common.Config, logger arbor.ILogger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		queueMgr:   queueMgr,
		store:      st,
		pipeline:   pl,
		cfg:        cfg,
		logger:     logger,
		numWorkers: cfg.Pipeline.WorkerCount,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	p.logger.Info().Int("num_workers", p.numWorkers).Msg("Starting worker pool")
	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop cancels the pool's context and waits for every worker to return.
// A job already in progress is not halted at a phase boundary: it runs
// to its end, and the calls that take the pool's context (input
// decoding, verification) see that context cancelled.
func (p *Pool) Stop() {
	p.logger.Info().Msg("Stopping worker pool")
	p.cancel()
	p.wg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	p.logger.Debug().Int("worker_id", id).Msg("Worker started")

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug().Int("worker_id", id).Msg("Worker stopping")
			return
		default:
			p.processNext(id)
		}
	}
}

func (p *Pool) processNext(workerID int) {
	msg, deleteFn, err := p.queueMgr.Receive(p.ctx)
	if err != nil {
		if p.ctx.Err() == nil {
			time.Sleep(200 * time.Millisecond)
		}
		return
	}
	defer func() {
		if err := deleteFn(); err != nil {
			p.logger.Error().Err(err).Str("job_id", msg.JobID).Msg("Failed to delete message from queue")
		}
	}()

	job, err := p.store.GetJob(msg.JobID)
	if err != nil {
		p.logger.Error().Err(err).Str("job_id", msg.JobID).Msg("Job not found in store")
		return
	}

	p.logger.Info().Int("worker_id", workerID).Str("job_id", job.ID).Msg("Processing job")
	p.runJob(job)
}

// runJob executes one job end-to-end: decode, run the pipeline, write
// the Result, and update the Job's terminal status. Heartbeats are
// published every HeartbeatInterval; cancellation is checked at each
// phase boundary via the isCanceled callback passed to the pipeline.
func (p *Pool) runJob(job *citation.Job) {
	var mu sync.Mutex

	now := time.Now()
	job.Status = citation.JobStatusStarted
	job.StartedAt = &now
	job.HeartbeatAt = &now
	p.publish(&mu, job, citation.JobPhaseInitializing, 0)

	heartbeatStop := p.startHeartbeat(&mu, job)
	defer heartbeatStop()

	text, err := pipeline.DecodeInput(p.ctx, job.Input, p.cfg)
	if err != nil {
		p.fail(&mu, job, err)
		return
	}
	p.publish(&mu, job, citation.JobPhaseExtractingText, 20)

	isCanceled := func() bool {
		fresh, err := p.store.GetJob(job.ID)
		return err == nil && fresh.CancelRequested
	}

	result, err := p.pipeline.Run(p.ctx, text, isCanceled, func(phase citation.JobPhase, percent int) {
		p.publish(&mu, job, phase, percent)
	})
	if err != nil {
		if isCanceled() {
			p.cancelJob(&mu, job)
			return
		}
		p.fail(&mu, job, err)
		return
	}

	resultID := common.NewResultID()
	if err := p.store.SaveResult(resultID, result, p.cfg.ResultTTL()); err != nil {
		p.fail(&mu, job, err)
		return
	}

	mu.Lock()
	finished := time.Now()
	job.Status = citation.JobStatusFinished
	job.Phase = citation.JobPhaseDone
	job.Percent = 100
	job.EndedAt = &finished
	job.ResultID = resultID
	if err := p.store.SaveJob(job); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist finished job")
	}
	mu.Unlock()
	p.logger.Info().Str("job_id", job.ID).Str("result_id", resultID).Msg("Job completed successfully")
}

func (p *Pool) publish(mu *sync.Mutex, job *citation.Job, phase citation.JobPhase, percent int) {
	mu.Lock()
	defer mu.Unlock()
	job.Phase = phase
	job.Percent = percent
	now := time.Now()
	job.HeartbeatAt = &now
	if err := p.store.SaveJob(job); err != nil {
		p.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to publish job progress")
	}
}

func (p *Pool) fail(mu *sync.Mutex, job *citation.Job, err error) {
	mu.Lock()
	now := time.Now()
	job.Status = citation.JobStatusFailed
	job.EndedAt = &now
	job.Error = err.Error()
	if saveErr := p.store.SaveJob(job); saveErr != nil {
		p.logger.Error().Err(saveErr).Str("job_id", job.ID).Msg("Failed to persist failed job")
	}
	mu.Unlock()
	p.logger.Error().Err(err).Str("job_id", job.ID).Msg("Job failed")
}

func (p *Pool) cancelJob(mu *sync.Mutex, job *citation.Job) {
	mu.Lock()
	now := time.Now()
	job.Status = citation.JobStatusCanceled
	job.EndedAt = &now
	if err := p.store.SaveJob(job); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to persist canceled job")
	}
	mu.Unlock()
	p.logger.Info().Str("job_id", job.ID).Msg("Job canceled")
}

// startHeartbeat ticks job.HeartbeatAt forward every HeartbeatInterval
// while the job runs, independent of pipeline phase transitions (spec
// §4.8 step 3). Returns a stop function.
func (p *Pool) startHeartbeat(mu *sync.Mutex, job *citation.Job) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(p.cfg.HeartbeatInterval())
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				mu.Lock()
				now := time.Now()
				job.HeartbeatAt = &now
				if err := p.store.SaveJob(job); err != nil {
					p.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to extend heartbeat")
				}
				mu.Unlock()
			}
		}
	}()
	return func() { close(stop) }
}
