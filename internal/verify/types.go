// Package verify drives citation verification: a primary structured API
// lookup, a search-endpoint fallback, and a ranked chain of HTML
// fallback sources, with rate-limit short-circuiting, jurisdiction and
// year validation (spec §4.6).
package verify

import (
	"context"
	"strconv"
	"time"

	"github.com/caselaw/casestrainer/internal/citation"
)

// Outcome is the result of attempting to verify a single citation
// through one strategy.
type Outcome struct {
	Status          Status
	CanonicalName   string
	CanonicalDate   string
	CanonicalURL    string
	Source          citation.VerificationSource
	DecisionYear    int // 0 if unknown
	Jurisdiction    string
}

// Status is the tri-state result of one verification attempt.
type Status int

const (
	StatusNotFound Status = iota
	StatusVerified
	StatusRateLimited
)

// APIError reports a non-2xx structured-API response.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return e.Endpoint + ": HTTP " + strconv.Itoa(e.StatusCode) + ": " + e.Message
}

// RateLimitError reports a 429 or rate-limit-flagged response.
type RateLimitError struct {
	RetryAfter time.Duration
	Remaining  string
	Reset      string
}

func (e *RateLimitError) Error() string {
	return "rate limited, retry after " + e.RetryAfter.String()
}

// Candidate is one candidate cluster returned by the structured API for
// a citation lookup (spec §6.3).
type Candidate struct {
	Citations    []string
	CaseName     string
	DocketName   string // fallback when CaseName is nested under "docket"
	DecisionDate string // "2006-01-02"
	URL          string
	Jurisdiction string
}

// StructuredClient is the primary verification collaborator: a client
// for the structured legal-citation API (spec §6.3).
type StructuredClient interface {
	// Lookup performs the primary citation-string lookup.
	Lookup(ctx context.Context, normalizedCitation string) ([]Candidate, error)
	// Search performs the search-endpoint fallback, invoked only after
	// Lookup returns StatusNotFound.
	Search(ctx context.Context, normalizedCitation string) ([]Candidate, error)
}

// FallbackSource is one ranked HTML legal database collaborator (spec
// §4.6 strategy 3).
type FallbackSource interface {
	Name() citation.VerificationSource
	// Fetch issues one GET for the normalized citation and extracts a
	// candidate case name/date/URL, or returns ok=false if the source
	// yielded nothing usable.
	Fetch(ctx context.Context, normalizedCitation string) (candidate Candidate, ok bool, err error)
}
