package verify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/cluster"
)

// NameSimilarityThreshold is the minimum similarity a candidate's name
// must reach to be accepted, both from the structured API's candidate
// list and from an HTML fallback source (spec §4.6).
const NameSimilarityThreshold = 0.6

// Config holds the knobs the Verifier needs beyond its collaborators.
type Config struct {
	JurisdictionMap     map[string][]string
	YearTolerance        int           // default 5
	PerCallTimeout       time.Duration // default 5s
	PerCitationBudget    time.Duration // default 30s
	MaxFallbackFanout    int           // default 8
}

// DefaultConfig matches spec.md §6.5's verification defaults.
func DefaultConfig() Config {
	return Config{
		YearTolerance:     5,
		PerCallTimeout:    5 * time.Second,
		PerCitationBudget: 30 * time.Second,
		MaxFallbackFanout: 8,
	}
}

// Verifier drives per-citation verification through the structured API,
// its search fallback, and a ranked HTML fallback chain (spec §4.6).
type Verifier struct {
	cfg       Config
	structured StructuredClient
	fallbacks []FallbackSource // in rank order

	mu          sync.Mutex
	rateLimited bool // once true, skip strategies 1 & 2 for the rest of this Verifier's lifetime
}

// NewVerifier builds a Verifier. fallbacks must already be in the rank
// order the spec requires (Justia, Leagle, CaseText, ...).
func NewVerifier(cfg Config, structured StructuredClient, fallbacks []FallbackSource) *Verifier {
	return &Verifier{cfg: cfg, structured: structured, fallbacks: fallbacks}
}

// VerifyCluster attempts to verify a cluster's members one at a time,
// in document order, until one succeeds or all fail (spec §4.6's "unit
// of verification is the cluster").
func (v *Verifier) VerifyCluster(ctx context.Context, members []*citation.Citation) Outcome {
	for _, c := range members {
		outcome := v.VerifyCitation(ctx, c)
		if outcome.Status == StatusVerified {
			return outcome
		}
	}
	return Outcome{Status: StatusNotFound}
}

// VerifyCitation runs the fixed strategy chain for one citation, honoring
// the overall per-citation timeout budget.
func (v *Verifier) VerifyCitation(ctx context.Context, c *citation.Citation) Outcome {
	ctx, cancel := context.WithTimeout(ctx, v.cfg.PerCitationBudget)
	defer cancel()

	if !v.isRateLimited() {
		if outcome, ok := v.tryStructured(ctx, c, v.structured.Lookup); ok {
			return outcome
		}
		if !v.isRateLimited() {
			if outcome, ok := v.tryStructured(ctx, c, v.structured.Search); ok {
				return outcome
			}
		}
	}
	return v.tryFallbacks(ctx, c)
}

func (v *Verifier) isRateLimited() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rateLimited
}

func (v *Verifier) markRateLimited() {
	v.mu.Lock()
	v.rateLimited = true
	v.mu.Unlock()
}

// WasRateLimited reports whether the structured API returned
// RATE_LIMITED at any point during this Verifier's lifetime. A
// Verifier is built fresh per job, so this answers "was this job
// rate-limited" for stats.rate_limited (spec §4.6/§7).
func (v *Verifier) WasRateLimited() bool {
	return v.isRateLimited()
}

type lookupFunc func(ctx context.Context, normalizedCitation string) ([]Candidate, error)

// tryStructured calls one structured-API strategy and applies
// result-selection (spec §4.6 "Result-selection from the structured
// API"). ok is false only when the caller should fall through to the
// next strategy; a RATE_LIMITED short-circuit also returns ok=false
// after recording the rate-limit flag.
func (v *Verifier) tryStructured(ctx context.Context, c *citation.Citation, lookup lookupFunc) (Outcome, bool) {
	callCtx, cancel := context.WithTimeout(ctx, v.cfg.PerCallTimeout)
	defer cancel()

	candidates, err := lookup(callCtx, c.Text)
	if err != nil {
		var rle *RateLimitError
		if errors.As(err, &rle) {
			v.markRateLimited()
			return Outcome{Status: StatusRateLimited}, false
		}
		return Outcome{Status: StatusNotFound}, false
	}

	for _, cand := range candidates {
		if v.candidateQualifies(cand, c) {
			return v.outcomeFrom(cand, c, citation.VerificationSourceCourtListener), true
		}
	}
	return Outcome{Status: StatusNotFound}, false
}

// candidateQualifies applies the structured-API candidate checks: must
// cite the target citation, pass jurisdiction, pass year, and (if an
// extracted case name exists) pass name similarity.
func (v *Verifier) candidateQualifies(cand Candidate, c *citation.Citation) bool {
	if !citesTarget(cand.Citations, c.Text) {
		return false
	}
	if !v.jurisdictionAllowed(c.ReporterFamily, cand.Jurisdiction) {
		return false
	}
	if !v.yearAllowed(c.ExtractedYear, cand.DecisionDate) {
		return false
	}
	if c.ExtractedCaseName != nil {
		name := v.repairName(cand.EffectiveName(), *c.ExtractedCaseName)
		if cluster.NameSimilarity(name, *c.ExtractedCaseName) < NameSimilarityThreshold {
			return false
		}
	}
	return true
}

func citesTarget(citations []string, target string) bool {
	for _, s := range citations {
		if normalizeForCompare(s) == normalizeForCompare(target) {
			return true
		}
	}
	return false
}

func normalizeForCompare(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func (v *Verifier) jurisdictionAllowed(family citation.ReporterFamily, jurisdiction string) bool {
	allowed, ok := v.cfg.JurisdictionMap[string(family)]
	if !ok || len(allowed) == 0 {
		// No configured set for this family: nothing to reject against.
		return true
	}
	jurisdiction = strings.ToUpper(strings.TrimSpace(jurisdiction))
	for _, a := range allowed {
		if a == jurisdiction {
			return true
		}
	}
	return false
}

// yearAllowed implements spec §4.6's year check: within the tolerance,
// accept; beyond it, reject. No warning is logged for a gap of 3-5
// years. A missing extracted year or unparsable candidate date
// means nothing to check against, so it passes.
func (v *Verifier) yearAllowed(extractedYear *int, decisionDate string) bool {
	if extractedYear == nil {
		return true
	}
	candidateYear := parseYear(decisionDate)
	if candidateYear == 0 {
		return true
	}
	diff := candidateYear - *extractedYear
	if diff < 0 {
		diff = -diff
	}
	tolerance := v.cfg.YearTolerance
	if tolerance == 0 {
		tolerance = 5
	}
	return diff <= tolerance
}

func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year := 0
	for i := 0; i < 4; i++ {
		d := date[i]
		if d < '0' || d > '9' {
			return 0
		}
		year = year*10 + int(d-'0')
	}
	return year
}

// repairName implements spec §4.6's canonical-name-selection repair:
// truncated, too-short, or much-shorter-than-extracted names are
// replaced by the extracted case name.
func (v *Verifier) repairName(candidateName, extractedName string) string {
	trimmed := strings.TrimSpace(candidateName)
	if strings.HasSuffix(trimmed, "...") {
		return extractedName
	}
	if len(trimmed) < 20 {
		return extractedName
	}
	if len(extractedName)-len(trimmed) > 10 {
		return extractedName
	}
	return trimmed
}

func (v *Verifier) outcomeFrom(cand Candidate, c *citation.Citation, source citation.VerificationSource) Outcome {
	name := cand.EffectiveName()
	if c.ExtractedCaseName != nil {
		name = v.repairName(name, *c.ExtractedCaseName)
	}
	return Outcome{
		Status:        StatusVerified,
		CanonicalName: name,
		CanonicalDate: cand.DecisionDate,
		CanonicalURL:  cand.URL,
		Source:        source,
		DecisionYear:  parseYear(cand.DecisionDate),
		Jurisdiction:  cand.Jurisdiction,
	}
}

// fallbackResult pairs one source's outcome with its rank, so the
// winner can be chosen by rank order rather than completion order.
type fallbackResult struct {
	rank int
	cand Candidate
	ok   bool
}

// tryFallbacks fans out up to MaxFallbackFanout concurrent HTTP calls
// across the ranked HTML fallback list (spec §4.8's concurrency model),
// but still picks the first, in rank order, that qualifies — never
// whichever completes first.
func (v *Verifier) tryFallbacks(ctx context.Context, c *citation.Citation) Outcome {
	if len(v.fallbacks) == 0 {
		return Outcome{Status: StatusNotFound}
	}

	sem := make(chan struct{}, v.cfg.MaxFallbackFanout)
	results := make([]fallbackResult, len(v.fallbacks))
	var wg sync.WaitGroup

	for i, src := range v.fallbacks {
		wg.Add(1)
		go func(i int, src FallbackSource) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, v.cfg.PerCallTimeout)
			defer cancel()

			cand, ok, err := src.Fetch(callCtx, c.Text)
			if err != nil || !ok {
				return
			}
			results[i] = fallbackResult{rank: i, cand: cand, ok: true}
		}(i, src)
	}
	wg.Wait()

	for i, src := range v.fallbacks {
		r := results[i]
		if !r.ok {
			continue
		}
		extractedName := ""
		if c.ExtractedCaseName != nil {
			extractedName = *c.ExtractedCaseName
		}
		if extractedName != "" && cluster.NameSimilarity(r.cand.EffectiveName(), extractedName) < NameSimilarityThreshold {
			continue
		}
		if !v.yearAllowed(c.ExtractedYear, r.cand.DecisionDate) {
			continue
		}
		return v.outcomeFrom(r.cand, c, src.Name())
	}
	return Outcome{Status: StatusNotFound}
}
