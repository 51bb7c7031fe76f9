package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// CourtListenerClient is the default StructuredClient implementation: a
// client for the structured legal-citation API (spec §6.3). Its
// functional-options shape, rate.Limiter field, and typed
// APIError/RateLimitError are grounded on internal/eodhd/client.go and
// internal/services/navexa/client.go.
type CourtListenerClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// ClientOption configures a CourtListenerClient.
type ClientOption func(*CourtListenerClient)

// WithBaseURL overrides the API base URL (used by tests against a fake
// server).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *CourtListenerClient) { c.baseURL = baseURL }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *CourtListenerClient) { c.httpClient = hc }
}

// WithRateLimit overrides the client-side request rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *CourtListenerClient) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// NewCourtListenerClient builds a structured-API client. token is sent
// as the Authorization header on every request (spec §6.3).
func NewCourtListenerClient(baseURL, token string, opts ...ClientOption) *CourtListenerClient {
	c := &CourtListenerClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse mirrors the structured API's candidate-cluster list (spec
// §6.3): citations, a possibly-nested case name, decision date, URL,
// and jurisdiction per candidate.
type apiResponse struct {
	Results []apiCandidate `json:"results"`
}

type apiCandidate struct {
	Citations []string `json:"citations"`
	CaseName  string   `json:"case_name"`
	Docket    *struct {
		CaseName string `json:"case_name"`
	} `json:"docket"`
	DecisionDate string `json:"decision_date"`
	AbsoluteURL  string `json:"absolute_url"`
	Jurisdiction string `json:"jurisdiction"`
}

// Lookup performs the primary citation-string lookup (spec §4.6
// Strategy 1).
func (c *CourtListenerClient) Lookup(ctx context.Context, normalizedCitation string) ([]Candidate, error) {
	return c.call(ctx, "/citation-lookup/", normalizedCitation)
}

// Search performs the search-endpoint fallback (spec §4.6 Strategy 2).
func (c *CourtListenerClient) Search(ctx context.Context, normalizedCitation string) ([]Candidate, error) {
	return c.call(ctx, "/search/", normalizedCitation)
}

func (c *CourtListenerClient) call(ctx context.Context, endpoint, normalizedCitation string) ([]Candidate, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("verify: rate limiter: %w", err)
	}

	body, err := json.Marshal(map[string]string{"text": normalizedCitation})
	if err != nil {
		return nil, fmt.Errorf("verify: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("verify: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify: calling %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusTooManyRequests || strings.Contains(strings.ToLower(string(respBody)), "rate limit") {
		return nil, &RateLimitError{
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Remaining:  resp.Header.Get("X-RateLimit-Remaining"),
			Reset:      resp.Header.Get("X-RateLimit-Reset"),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody), Endpoint: endpoint}
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("verify: decoding response from %s: %w", endpoint, err)
	}

	candidates := make([]Candidate, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		docketName := ""
		if r.Docket != nil {
			docketName = r.Docket.CaseName
		}
		candidates = append(candidates, Candidate{
			Citations:    r.Citations,
			CaseName:     r.CaseName,
			DocketName:   docketName,
			DecisionDate: r.DecisionDate,
			URL:          r.AbsoluteURL,
			Jurisdiction: r.Jurisdiction,
		})
	}
	return candidates, nil
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if secs, err := time.ParseDuration(header + "s"); err == nil {
		return secs
	}
	return 0
}

// EffectiveName returns a candidate's display name, falling back to the
// docket name when the case name was left blank (spec §6.3's nested
// docket.case_name shape).
func (cand Candidate) EffectiveName() string {
	if cand.CaseName != "" {
		return cand.CaseName
	}
	return cand.DocketName
}
