package cluster

import (
	"testing"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestClusterGroupsParallelCitationsByNameProximityAndYear(t *testing.T) {
	citations := []citation.Citation{
		{Start: 0, End: 10, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2009)},
		{Start: 15, End: 25, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2009)},
	}

	cl := New(DefaultConfig())
	clusters := cl.Cluster(citations)

	require.Len(t, clusters, 1)
	assert.ElementsMatch(t, []int{0, 1}, clusters[0].MemberIndices)
	assert.Equal(t, 0, citations[0].ClusterID)
	assert.Equal(t, 0, citations[1].ClusterID)
}

func TestClusterSeparatesDissimilarNames(t *testing.T) {
	citations := []citation.Citation{
		{Start: 0, End: 10, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2009)},
		{Start: 5000, End: 5010, ExtractedCaseName: strPtr("Completely Different Parties"), ExtractedYear: intPtr(1950)},
	}

	cl := New(DefaultConfig())
	clusters := cl.Cluster(citations)

	require.Len(t, clusters, 2)
}

func TestClusterRespectsYearTolerance(t *testing.T) {
	citations := []citation.Citation{
		{Start: 0, End: 10, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2000)},
		{Start: 15, End: 25, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2010)},
	}

	cl := New(DefaultConfig())
	clusters := cl.Cluster(citations)

	require.Len(t, clusters, 2, "years more than 2 apart must not merge even with identical names")
}

func TestClusterMergesNullNamesOnlyWhenProximate(t *testing.T) {
	citations := []citation.Citation{
		{Start: 0, End: 10, ExtractedCaseName: nil, ExtractedYear: nil},
		{Start: 20, End: 30, ExtractedCaseName: nil, ExtractedYear: nil},
	}

	cl := New(DefaultConfig())
	clusters := cl.Cluster(citations)

	require.Len(t, clusters, 1, "null names within proximity bound should merge (shared-sentence heuristic)")
}

func TestClusterSplitsOversizedSpans(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxSpanChars = 100
	cfg.ProximityChars = 10000 // force everything to pass proximity so only the span-split step matters

	citations := []citation.Citation{
		{Start: 0, End: 10, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2000)},
		{Start: 50, End: 60, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2000)},
		{Start: 500, End: 510, ExtractedCaseName: strPtr("Smith v. Jones"), ExtractedYear: intPtr(2000)},
	}

	cl := New(cfg)
	clusters := cl.Cluster(citations)

	for _, c := range clusters {
		span := clusterSpan(citations, c.MemberIndices)
		assert.LessOrEqual(t, span, cfg.MaxSpanChars)
	}
}

func TestClusterNeverMixesVerifiedAndUnverified(t *testing.T) {
	// Clustering itself never sets Verified; this asserts the invariant
	// holds trivially before verification runs.
	citations := []citation.Citation{
		{Start: 0, End: 10, ExtractedCaseName: strPtr("Smith v. Jones")},
		{Start: 15, End: 25, ExtractedCaseName: strPtr("Smith v. Jones")},
	}
	cl := New(DefaultConfig())
	cl.Cluster(citations)
	for _, c := range citations {
		assert.False(t, c.Verified)
	}
}
