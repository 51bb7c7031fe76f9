// Package pipeline wires the extraction, clustering, verification, and
// propagation stages into the single pipeline both the inline (sync)
// and queued (worker) paths run (spec §4.1 step 4: "all processing from
// here on is identical whether inline or via worker").
package pipeline

import (
	gocontext "context"
	"time"

	isolator "github.com/caselaw/casestrainer/internal/context"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/cluster"
	"github.com/caselaw/casestrainer/internal/common"
	"github.com/caselaw/casestrainer/internal/nameyear"
	"github.com/caselaw/casestrainer/internal/normalize"
	"github.com/caselaw/casestrainer/internal/patterns"
	"github.com/caselaw/casestrainer/internal/propagate"
	"github.com/caselaw/casestrainer/internal/verify"
)

// ProgressFunc reports a phase transition (spec §4.8's phase/percent
// table). The worker publishes these onto the Job; the inline path may
// ignore them.
type ProgressFunc func(phase citation.JobPhase, percent int)

func noopProgress(citation.JobPhase, int) {}

// Pipeline bundles the collaborators a Run needs: the structured
// verification client and HTML fallback chain (shared, reused across
// jobs) and the clustering thresholds. A fresh Verifier is built per
// Run call, since its rate-limit short-circuit flag is scoped to a
// single request (spec §4.6).
type Pipeline struct {
	VerifyCfg     verify.Config
	Structured    verify.StructuredClient
	Fallbacks     []verify.FallbackSource
	ClusterCfg    cluster.Config
	VerifyEnabled bool
}

// New builds a Pipeline from configuration and the verification
// collaborators (already wired with credentials/rate limits by the
// caller).
func New(cfg *common.Config, structured verify.StructuredClient, fallbacks []verify.FallbackSource) *Pipeline {
	verifyCfg := verify.DefaultConfig()
	verifyCfg.JurisdictionMap = cfg.Verify.JurisdictionMap
	verifyCfg.YearTolerance = cfg.Verify.YearToleranceVerify
	verifyCfg.PerCallTimeout = cfg.PerCallTimeout()
	verifyCfg.PerCitationBudget = cfg.PerCitationBudget()

	return &Pipeline{
		VerifyCfg:  verifyCfg,
		Structured: structured,
		Fallbacks:  fallbacks,
		ClusterCfg: cluster.Config{
			NameSimilarityThreshold: cfg.Cluster.NameSimilarityThreshold,
			YearTolerance:           cfg.Cluster.YearToleranceCluster,
			ProximityChars:          cfg.Cluster.ProximityChars,
			MaxSpanChars:            cfg.Cluster.MaxSpanChars,
		},
		VerifyEnabled: cfg.Verify.Enabled,
	}
}

// Run executes extraction -> clustering -> verification -> propagation
// against already-decoded cleaned text, reporting progress as it goes
// and honoring cancellation at phase boundaries (cooperative, per spec
// §4.8).
func (p *Pipeline) Run(ctx gocontext.Context, text string, isCanceled func() bool, progress ProgressFunc) (*citation.Result, error) {
	if progress == nil {
		progress = noopProgress
	}
	start := time.Now()

	progress(citation.JobPhaseExtractingCitations, 40)
	citations := extractCitations(text)

	if isCanceled() {
		return nil, newError(CodeJobCanceled, "job canceled before clustering", nil)
	}

	progress(citation.JobPhaseClustering, 55)
	clusterer := cluster.New(p.ClusterCfg)
	clusters := clusterer.Cluster(citations)

	rateLimited := false
	if p.VerifyEnabled && p.Structured != nil {
		if isCanceled() {
			return nil, newError(CodeJobCanceled, "job canceled before verification", nil)
		}
		progress(citation.JobPhaseVerifying, 70)
		verifier := verify.NewVerifier(p.VerifyCfg, p.Structured, p.Fallbacks)
		p.verifyAll(ctx, verifier, citations, clusters)
		rateLimited = verifier.WasRateLimited()
		progress(citation.JobPhaseVerifying, 95)
	}

	if isCanceled() {
		return nil, newError(CodeJobCanceled, "job canceled before finalizing", nil)
	}
	progress(citation.JobPhaseFinalizing, 95)

	result := buildResult(citations, clusters, rateLimited, time.Since(start))

	progress(citation.JobPhaseDone, 100)
	return result, nil
}

// extractCitations runs the pattern library, context isolator, and
// name/year extractor over the cleaned text, producing citations in
// document order with their extracted (not yet verified) fields
// populated.
func extractCitations(text string) []citation.Citation {
	matches := patterns.FindAll(text)
	spans := make([]isolator.Span, len(matches))
	for i, m := range matches {
		spans[i] = isolator.Span{Start: m.Start, End: m.End}
	}

	citations := make([]citation.Citation, len(matches))
	for i, m := range matches {
		// lo/hi already exclude neighbouring citation spans and sentence
		// boundaries (isolator.Isolate rules 1-2), so the raw slice is
		// safe to search directly without the extra stripping pass
		// ExtractContext applies for display purposes.
		lo, hi := isolator.Isolate(text, m.Start, m.End, spans)
		window := text[lo:hi]

		citeStartInWindow := m.Start - lo
		citeEndInWindow := m.End - lo
		preVolumeText := text[lo:m.Start]

		caseName := nameyear.ExtractCaseName(window, citeStartInWindow)
		year := nameyear.ExtractYear(window, citeEndInWindow, preVolumeText)

		normalizedText := normalize.Normalize(m.Volume, m.Reporter, m.Page)

		citations[i] = citation.Citation{
			Text:              normalizedText,
			RawText:           m.RawText,
			Start:             m.Start,
			End:               m.End,
			Reporter:          m.Reporter,
			Volume:            m.Volume,
			Page:              m.Page,
			ReporterFamily:    m.Family,
			ExtractedCaseName: caseName,
			ExtractedYear:     year,
			ClusterID:         -1,
		}
	}
	return citations
}

// verifyAll verifies every cluster (cluster order is not itself
// ordered by the spec, only document order within a cluster's member
// loop) and propagates results onto every member.
func (p *Pipeline) verifyAll(ctx gocontext.Context, verifier *verify.Verifier, citations []citation.Citation, clusters []citation.Cluster) {
	for ci := range clusters {
		members := make([]*citation.Citation, len(clusters[ci].MemberIndices))
		for mi, idx := range clusters[ci].MemberIndices {
			members[mi] = &citations[idx]
		}

		outcome, directIndex := verifyMembers(ctx, verifier, members)
		propagate.Propagate(members, outcome, directIndex)
		propagate.PropagateCluster(&clusters[ci], outcome)
	}
}

// verifyMembers tries each member in document order until one
// verifies, matching spec §4.6's "unit of verification is the
// cluster". Returns the winning member's index, or -1 if none
// verified.
func verifyMembers(ctx gocontext.Context, verifier *verify.Verifier, members []*citation.Citation) (verify.Outcome, int) {
	for i, c := range members {
		o := verifier.VerifyCitation(ctx, c)
		if o.Status == verify.StatusVerified {
			return o, i
		}
	}
	return verify.Outcome{Status: verify.StatusNotFound}, -1
}

func buildResult(citations []citation.Citation, clusters []citation.Cluster, rateLimited bool, dur time.Duration) *citation.Result {
	verifiedCount := 0
	for _, c := range citations {
		if c.Verified {
			verifiedCount++
		}
	}
	return &citation.Result{
		Citations: citations,
		Clusters:  clusters,
		Stats: citation.ResultStats{
			CitationsTotal:    len(citations),
			CitationsVerified: verifiedCount,
			ClustersTotal:     len(clusters),
			RateLimited:       rateLimited,
			DurationMs:        int(dur.Milliseconds()),
		},
	}
}
