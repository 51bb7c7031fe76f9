// Package store persists Jobs and TTL'd Results across the request scope
// that produced them (spec §3 "Ownership", §4.8). It is the only thing
// that outlives a single pipeline run.
//
// Grounded on internal/storage/badger's badgerhold-backed sub-stores
// (Get/Upsert/Delete, ErrNotFound translation) collapsed into the two
// buckets CaseStrainer actually needs: jobs and results.
package store

import (
	"errors"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/caselaw/casestrainer/internal/citation"
)

// ErrNotFound is returned when a job or result does not exist, or a
// result has passed its TTL.
var ErrNotFound = errors.New("store: not found")

// Store is a thin badgerhold-backed facade over Job and Result
// persistence. Jobs and results are stored in separate badgerhold
// buckets (badgerhold namespaces storage by Go type), so there is no
// key collision between the two despite both being keyed by an opaque
// string ID.
type Store struct {
	db *badgerhold.Store
}

// New wraps an already-open badgerhold store.
func New(db *badgerhold.Store) *Store {
	return &Store{db: db}
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveJob inserts or updates a job record.
func (s *Store) SaveJob(job *citation.Job) error {
	return s.db.Upsert(job.ID, job)
}

// GetJob retrieves a job by ID.
func (s *Store) GetJob(id string) (*citation.Job, error) {
	var job citation.Job
	if err := s.db.Get(id, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// DeleteJob removes a job record.
func (s *Store) DeleteJob(id string) error {
	err := s.db.Delete(id, &citation.Job{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil
	}
	return err
}

// ListStarted returns every job currently in the started state, for the
// stuck-job reaper's sweep (spec §4.8).
func (s *Store) ListStarted() ([]citation.Job, error) {
	var jobs []citation.Job
	if err := s.db.Find(&jobs, badgerhold.Where("Status").Eq(citation.JobStatusStarted)); err != nil {
		return nil, err
	}
	return jobs, nil
}

// resultRecord wraps a Result with the absolute expiry time used to
// enforce the 24h TTL (spec §3, §5).
type resultRecord struct {
	ID        string
	Result    citation.Result
	ExpiresAt time.Time
}

// SaveResult stores a Result, due to expire ttl from now.
func (s *Store) SaveResult(id string, result *citation.Result, ttl time.Duration) error {
	rec := &resultRecord{ID: id, Result: *result, ExpiresAt: time.Now().Add(ttl)}
	return s.db.Upsert(id, rec)
}

// GetResult retrieves a Result by ID, returning ErrNotFound if it is
// unknown or has passed its TTL.
func (s *Store) GetResult(id string) (*citation.Result, error) {
	var rec resultRecord
	if err := s.db.Get(id, &rec); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if time.Now().After(rec.ExpiresAt) {
		_ = s.db.Delete(id, &resultRecord{})
		return nil, ErrNotFound
	}
	return &rec.Result, nil
}

// PurgeExpiredResults deletes every result whose TTL has passed,
// returning the count removed. Intended to run alongside the stuck-job
// reaper's periodic sweep.
func (s *Store) PurgeExpiredResults() (int, error) {
	var expired []resultRecord
	if err := s.db.Find(&expired, badgerhold.Where("ExpiresAt").Lt(time.Now())); err != nil {
		return 0, err
	}
	for _, rec := range expired {
		if err := s.db.Delete(rec.ID, &resultRecord{}); err != nil {
			return 0, err
		}
	}
	return len(expired), nil
}
