// Package propagate implements the post-verification propagation step
// (spec §4.7): a cluster's verification outcome is copied onto every
// member so that a cluster never mixes verified and unverified members
// in the final output.
package propagate

import (
	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/verify"
)

// Propagate applies one cluster's verification outcome to all of its
// member citations, per spec §4.7's four rules. directIndex names the
// index of the member that actually produced the outcome (if any);
// ignored when outcome.Status != StatusVerified.
func Propagate(members []*citation.Citation, outcome verify.Outcome, directIndex int) {
	if outcome.Status != verify.StatusVerified {
		for _, c := range members {
			c.Verified = false
			c.TrueByParallel = false
		}
		return
	}

	for i, c := range members {
		c.Verified = true
		c.CanonicalName = strPtr(outcome.CanonicalName)
		c.CanonicalDate = strPtr(outcome.CanonicalDate)
		c.CanonicalURL = strPtr(outcome.CanonicalURL)
		c.VerificationSrc = outcome.Source
		c.TrueByParallel = i != directIndex
	}
}

// PropagateCluster updates a Cluster's display/canonical snapshot
// fields to match the outcome that was propagated to its members,
// matching the Cluster.ClusterCaseName / CanonicalName fields described
// in internal/citation/citation.go.
func PropagateCluster(cl *citation.Cluster, outcome verify.Outcome) {
	if outcome.Status != verify.StatusVerified {
		return
	}
	cl.CanonicalName = strPtr(outcome.CanonicalName)
	cl.CanonicalDate = strPtr(outcome.CanonicalDate)
	cl.CanonicalURL = strPtr(outcome.CanonicalURL)
	cl.VerificationSrc = outcome.Source
	// CanonicalName overwrites the display snapshot only here, per
	// the rule in citation.Cluster: canonical data may overwrite
	// ClusterCaseName only via this path.
	cl.ClusterCaseName = strPtr(outcome.CanonicalName)
	if outcome.DecisionYear != 0 {
		year := outcome.DecisionYear
		cl.ClusterYear = &year
	}
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
