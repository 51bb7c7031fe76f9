package common

import (
	"github.com/google/uuid"
)

// NewJobID generates a unique job ID with the "job_" prefix.
func NewJobID() string {
	return "job_" + uuid.New().String()
}

// NewResultID generates a unique result ID with the "res_" prefix.
func NewResultID() string {
	return "res_" + uuid.New().String()
}

// NewRequestID generates a unique HTTP correlation ID.
func NewRequestID() string {
	return uuid.New().String()
}
