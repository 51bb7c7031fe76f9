package citation

import (
	"encoding/json"
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a Job.
type JobStatus string

const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusStarted  JobStatus = "started"
	JobStatusFinished JobStatus = "finished"
	JobStatusFailed   JobStatus = "failed"
	JobStatusCanceled JobStatus = "canceled"
)

// JobPhase is the current pipeline stage a running Job is in, reported in
// heartbeats for progress polling (spec §6.1 task_status).
type JobPhase string

const (
	JobPhaseInitializing        JobPhase = "initializing"
	JobPhaseFetching            JobPhase = "fetching"
	JobPhaseExtractingText      JobPhase = "extracting_text"
	JobPhaseExtractingCitations JobPhase = "extracting_citations"
	JobPhaseClustering          JobPhase = "clustering"
	JobPhaseVerifying           JobPhase = "verifying"
	JobPhaseFinalizing          JobPhase = "finalizing"
	JobPhaseDone                JobPhase = "done"
)

// Job is a unit of work in the queue: one document submission working
// its way through the pipeline.
type Job struct {
	ID     string    `json:"id"`
	Status JobStatus `json:"status"`
	Phase  JobPhase  `json:"phase"`
	Percent int      `json:"percent"` // 0..100

	EnqueuedAt  time.Time  `json:"enqueued_at"`
	StartedAt   *time.Time `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at"`
	HeartbeatAt *time.Time `json:"heartbeat_at"`

	ResultID string `json:"result_id,omitempty"` // present when Status == JobStatusFinished
	Error    string `json:"error,omitempty"`      // present when Status == JobStatusFailed

	// CancelRequested, once set on the stored job, is seen by the worker
	// at the next phase boundary, which then stops cooperatively (spec
	// §4.8). No HTTP handler sets it.
	CancelRequested bool `json:"cancel_requested"`

	// Attempts counts how many times the stuck-job reaper has returned
	// this job to queued after a missed heartbeat. A job is requeued at
	// most 3 times; the reap after that marks it failed instead.
	Attempts int `json:"attempts"`

	// Input is the pipeline's request payload, stored so a worker
	// claiming the job from the queue can run the full pipeline without
	// any information the dispatcher already resolved.
	Input JobInput `json:"input"`
}

// JobInput is the document payload a worker pipeline runs against,
// carried from the ingestion dispatcher into the queue message.
type JobInput struct {
	Kind     string `json:"kind"`      // "text", "file", or "url"
	Text     string `json:"text,omitempty"`
	FileName string `json:"file_name,omitempty"`
	FileData []byte `json:"file_data,omitempty"`
	MIMEType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
}

// ToJSON serializes the job to JSON for queue/store persistence.
func (j *Job) ToJSON() ([]byte, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job: %w", err)
	}
	return data, nil
}

// JobFromJSON deserializes a job from JSON.
func JobFromJSON(data []byte) (*Job, error) {
	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &j, nil
}

// IsTerminal reports whether the job has reached a final status and will
// not be processed further.
func (j *Job) IsTerminal() bool {
	switch j.Status {
	case JobStatusFinished, JobStatusFailed, JobStatusCanceled:
		return true
	default:
		return false
	}
}

// IsStuck reports whether a started job's heartbeat is older than the
// given threshold, making it eligible for the reaper (spec §4.8).
func (j *Job) IsStuck(now time.Time, threshold time.Duration) bool {
	if j.Status != JobStatusStarted || j.HeartbeatAt == nil {
		return false
	}
	return now.Sub(*j.HeartbeatAt) > threshold
}
