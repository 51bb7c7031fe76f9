// Package testutil holds in-process fakes for CaseStrainer's external
// collaborators, following the teacher's fake-over-mock bias
// (internal/services/crawler/service_test.go, internal/services/pdf/service_test.go):
// a small struct that satisfies the real interface and records/replays
// behavior, not a call-expectation mock.
package testutil

import (
	"context"
	"sync"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/verify"
)

// FakeStructuredAPI implements verify.StructuredClient with a
// programmable candidate table keyed by normalized citation text, and
// can simulate a rate-limited (429) response for a given citation.
type FakeStructuredAPI struct {
	mu sync.Mutex

	// LookupResults maps a normalized citation to the candidates Lookup
	// returns. Missing keys return an empty, non-error result.
	LookupResults map[string][]verify.Candidate
	// SearchResults maps a normalized citation to the candidates Search
	// returns, invoked only after Lookup reports not-found.
	SearchResults map[string][]verify.Candidate
	// RateLimited, if set, is returned as an error by Lookup (and Search,
	// if also reached) for any citation in this set.
	RateLimited map[string]bool

	LookupCalls []string
	SearchCalls []string
}

// NewFakeStructuredAPI builds an empty fake ready to be programmed via
// its exported maps.
func NewFakeStructuredAPI() *FakeStructuredAPI {
	return &FakeStructuredAPI{
		LookupResults: map[string][]verify.Candidate{},
		SearchResults: map[string][]verify.Candidate{},
		RateLimited:   map[string]bool{},
	}
}

func (f *FakeStructuredAPI) Lookup(ctx context.Context, normalizedCitation string) ([]verify.Candidate, error) {
	f.mu.Lock()
	f.LookupCalls = append(f.LookupCalls, normalizedCitation)
	f.mu.Unlock()

	if f.RateLimited[normalizedCitation] {
		return nil, &verify.RateLimitError{}
	}
	return f.LookupResults[normalizedCitation], nil
}

func (f *FakeStructuredAPI) Search(ctx context.Context, normalizedCitation string) ([]verify.Candidate, error) {
	f.mu.Lock()
	f.SearchCalls = append(f.SearchCalls, normalizedCitation)
	f.mu.Unlock()

	if f.RateLimited[normalizedCitation] {
		return nil, &verify.RateLimitError{}
	}
	return f.SearchResults[normalizedCitation], nil
}

// FakeHTMLSource implements verify.FallbackSource with a programmable
// per-citation candidate table, standing in for one ranked HTML source
// (Justia, Leagle, ...) in tests of the fallback fan-out.
type FakeHTMLSource struct {
	SourceName citation.VerificationSource
	Candidates map[string]verify.Candidate // normalized citation -> candidate
	Err        error                       // if set, Fetch always returns this error

	mu    sync.Mutex
	calls []string
}

func NewFakeHTMLSource(name citation.VerificationSource) *FakeHTMLSource {
	return &FakeHTMLSource{SourceName: name, Candidates: map[string]verify.Candidate{}}
}

func (f *FakeHTMLSource) Name() citation.VerificationSource { return f.SourceName }

func (f *FakeHTMLSource) Fetch(ctx context.Context, normalizedCitation string) (verify.Candidate, bool, error) {
	f.mu.Lock()
	f.calls = append(f.calls, normalizedCitation)
	f.mu.Unlock()

	if f.Err != nil {
		return verify.Candidate{}, false, f.Err
	}
	cand, ok := f.Candidates[normalizedCitation]
	return cand, ok, nil
}

// Calls returns every citation text this source was asked to fetch, in
// call order.
func (f *FakeHTMLSource) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// FakeQueue is an in-memory FIFO with enqueue/receive/delete operations
// like internal/queue.Manager's, without a SQLite file backing it. Its
// methods take and return plain job IDs rather than queue.Message, so it
// does not share Manager's method signatures.
type FakeQueue struct {
	mu       sync.Mutex
	messages []fakeQueueItem
	nextID   int
}

type fakeQueueItem struct {
	id      int
	jobID   string
	claimed bool
}

func NewFakeQueue() *FakeQueue {
	return &FakeQueue{}
}

// Enqueue appends a job ID to the tail of the queue.
func (f *FakeQueue) Enqueue(ctx context.Context, jobID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.messages = append(f.messages, fakeQueueItem{id: f.nextID, jobID: jobID})
	return nil
}

// Receive returns the oldest unclaimed job ID and a delete function, or
// ok=false if the queue is empty.
func (f *FakeQueue) Receive(ctx context.Context) (jobID string, deleteFn func(), ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.messages {
		if f.messages[i].claimed {
			continue
		}
		f.messages[i].claimed = true
		id := f.messages[i].id
		return f.messages[i].jobID, func() { f.delete(id) }, true
	}
	return "", nil, false
}

func (f *FakeQueue) delete(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.messages {
		if m.id == id {
			f.messages = append(f.messages[:i], f.messages[i+1:]...)
			return
		}
	}
}

// Len reports how many messages (claimed or not) remain in the queue.
func (f *FakeQueue) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

// FakeDocFetcher mirrors docfetch's Extract/FetchURL functions with a
// programmable table, for tests of the dispatcher and handlers that
// should not touch the real pdfcpu/docx/network adapters. Its methods
// omit docfetch's Options and timeout parameters.
type FakeDocFetcher struct {
	// ExtractedText maps a MIME type to the text Extract should return
	// for any input given that MIME type.
	ExtractedText map[string]string
	ExtractErr    error

	// URLBodies maps a URL to the (body, mimeType) FetchURL should
	// return for it.
	URLBodies map[string]FakeURLBody
	FetchErr  error
}

type FakeURLBody struct {
	Body     []byte
	MIMEType string
}

func NewFakeDocFetcher() *FakeDocFetcher {
	return &FakeDocFetcher{
		ExtractedText: map[string]string{},
		URLBodies:     map[string]FakeURLBody{},
	}
}

func (f *FakeDocFetcher) Extract(data []byte, mimeType string) (string, error) {
	if f.ExtractErr != nil {
		return "", f.ExtractErr
	}
	return f.ExtractedText[mimeType], nil
}

func (f *FakeDocFetcher) FetchURL(ctx context.Context, url string) ([]byte, string, error) {
	if f.FetchErr != nil {
		return nil, "", f.FetchErr
	}
	b := f.URLBodies[url]
	return b.Body, b.MIMEType, nil
}
