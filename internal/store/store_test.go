package store_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	cfg := common.BadgerConfig{Path: filepath.Join(t.TempDir(), "badger")}
	db, err := store.Open(arbor.NewLogger(), cfg)
	require.NoError(t, err)
	s := store.New(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndGetJob(t *testing.T) {
	s := newTestStore(t)

	job := &citation.Job{ID: "job-1", Status: citation.JobStatusQueued, Phase: citation.JobPhaseInitializing}
	require.NoError(t, s.SaveJob(job))

	got, err := s.GetJob("job-1")
	require.NoError(t, err)
	assert.Equal(t, citation.JobStatusQueued, got.Status)
}

func TestGetJobNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetJob("does-not-exist")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestListStartedOnlyReturnsStartedJobs(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveJob(&citation.Job{ID: "queued-1", Status: citation.JobStatusQueued}))
	require.NoError(t, s.SaveJob(&citation.Job{ID: "started-1", Status: citation.JobStatusStarted}))
	require.NoError(t, s.SaveJob(&citation.Job{ID: "started-2", Status: citation.JobStatusStarted}))

	started, err := s.ListStarted()
	require.NoError(t, err)
	assert.Len(t, started, 2)
}

func TestSaveAndGetResult(t *testing.T) {
	s := newTestStore(t)

	result := &citation.Result{Stats: citation.ResultStats{CitationsTotal: 3}}
	require.NoError(t, s.SaveResult("result-1", result, time.Hour))

	got, err := s.GetResult("result-1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stats.CitationsTotal)
}

func TestGetResultExpiredByTTL(t *testing.T) {
	s := newTestStore(t)

	result := &citation.Result{Stats: citation.ResultStats{CitationsTotal: 1}}
	require.NoError(t, s.SaveResult("expiring", result, -time.Second)) // already expired

	_, err := s.GetResult("expiring")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPurgeExpiredResults(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveResult("fresh", &citation.Result{}, time.Hour))
	require.NoError(t, s.SaveResult("stale", &citation.Result{}, -time.Second))

	purged, err := s.PurgeExpiredResults()
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	_, err = s.GetResult("fresh")
	assert.NoError(t, err)
}

func TestDeleteJobIsIdempotent(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveJob(&citation.Job{ID: "job-x", Status: citation.JobStatusFinished}))
	require.NoError(t, s.DeleteJob("job-x"))
	require.NoError(t, s.DeleteJob("job-x")) // second delete of an already-gone job is a no-op
}
