package worker_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/pipeline"
	"github.com/caselaw/casestrainer/internal/queue"
	"github.com/caselaw/casestrainer/internal/store"
	"github.com/caselaw/casestrainer/internal/worker"
)

func newTestPool(t *testing.T) (*worker.Pool, *queue.Manager, *store.Store) {
	t.Helper()
	dir := t.TempDir()

	badgerDB, err := store.Open(arbor.NewLogger(), common.BadgerConfig{Path: filepath.Join(dir, "badger")})
	require.NoError(t, err)
	st := store.New(badgerDB)
	t.Cleanup(func() { st.Close() })

	sqliteDB, err := queue.OpenDB(arbor.NewLogger(), filepath.Join(dir, "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqliteDB.Close() })

	mgr, err := queue.NewManager(sqliteDB, "test_jobs")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	cfg := common.NewDefaultConfig()
	cfg.Pipeline.WorkerCount = 1
	cfg.Verify.Enabled = false

	pl := pipeline.New(cfg, nil, nil)

	pool := worker.New(mgr, st, pl, cfg, arbor.NewLogger())
	return pool, mgr, st
}

func waitForTerminal(t *testing.T, st *store.Store, jobID string, timeout time.Duration) *citation.Job {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		job, err := st.GetJob(jobID)
		require.NoError(t, err)
		if job.IsTerminal() {
			return job
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("job %s did not reach a terminal state within %s", jobID, timeout)
	return nil
}

func TestPoolProcessesQueuedJobToCompletion(t *testing.T) {
	pool, mgr, st := newTestPool(t)

	job := &citation.Job{
		ID:     "job-ok",
		Status: citation.JobStatusQueued,
		Phase:  citation.JobPhaseInitializing,
		Input:  citation.JobInput{Kind: "text", Text: "See Smith v. Jones, 1 Wn.2d 1 (1950)."},
	}
	require.NoError(t, st.SaveJob(job))
	require.NoError(t, mgr.Enqueue(t.Context(), queue.Message{JobID: job.ID}))

	pool.Start()
	defer pool.Stop()

	finished := waitForTerminal(t, st, job.ID, 5*time.Second)
	assert.Equal(t, citation.JobStatusFinished, finished.Status)
	assert.NotEmpty(t, finished.ResultID)

	result, err := st.GetResult(finished.ResultID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.CitationsTotal)
}

func TestPoolMarksJobFailedOnUnsupportedInput(t *testing.T) {
	pool, mgr, st := newTestPool(t)

	job := &citation.Job{
		ID:     "job-bad",
		Status: citation.JobStatusQueued,
		Input:  citation.JobInput{Kind: "file", FileName: "doc.xyz", FileData: []byte("whatever"), MIMEType: "application/x-unknown"},
	}
	require.NoError(t, st.SaveJob(job))
	require.NoError(t, mgr.Enqueue(t.Context(), queue.Message{JobID: job.ID}))

	pool.Start()
	defer pool.Stop()

	finished := waitForTerminal(t, st, job.ID, 5*time.Second)
	assert.Equal(t, citation.JobStatusFailed, finished.Status)
	assert.NotEmpty(t, finished.Error)
}

func TestPoolCancelsJobWhenCancelRequestedBeforeStart(t *testing.T) {
	pool, mgr, st := newTestPool(t)

	job := &citation.Job{
		ID:              "job-cancel",
		Status:          citation.JobStatusQueued,
		Input:           citation.JobInput{Kind: "text", Text: "Smith v. Jones, 1 Wn.2d 1 (1950)."},
		CancelRequested: true,
	}
	require.NoError(t, st.SaveJob(job))
	require.NoError(t, mgr.Enqueue(t.Context(), queue.Message{JobID: job.ID}))

	pool.Start()
	defer pool.Stop()

	finished := waitForTerminal(t, st, job.ID, 5*time.Second)
	assert.Equal(t, citation.JobStatusCanceled, finished.Status)
}
