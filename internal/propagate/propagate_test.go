package propagate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/propagate"
	"github.com/caselaw/casestrainer/internal/verify"
)

func TestPropagateVerifiedSetsCanonicalFieldsAndTrueByParallel(t *testing.T) {
	members := []*citation.Citation{
		{Text: "93 S. Ct. 705"},
		{Text: "410 U.S. 113"},
	}
	outcome := verify.Outcome{
		Status:        verify.StatusVerified,
		CanonicalName: "Roe v. Wade",
		CanonicalDate: "1973-01-22",
		CanonicalURL:  "https://example.test/roe",
		Source:        citation.VerificationSourceCourtListener,
	}

	propagate.Propagate(members, outcome, 1)

	for i, c := range members {
		assert.True(t, c.Verified)
		assert.Equal(t, "Roe v. Wade", *c.CanonicalName)
		assert.Equal(t, citation.VerificationSourceCourtListener, c.VerificationSrc)
		assert.Equal(t, i != 1, c.TrueByParallel)
	}
}

func TestPropagateNotFoundClearsVerifiedAndTrueByParallel(t *testing.T) {
	members := []*citation.Citation{
		{Text: "1 Made.Up 1", Verified: true, TrueByParallel: true},
	}

	propagate.Propagate(members, verify.Outcome{Status: verify.StatusNotFound}, -1)

	assert.False(t, members[0].Verified)
	assert.False(t, members[0].TrueByParallel)
}

func TestPropagateClusterUpdatesDisplayAndCanonicalSnapshot(t *testing.T) {
	cl := &citation.Cluster{MemberIndices: []int{0, 1}}
	outcome := verify.Outcome{
		Status:        verify.StatusVerified,
		CanonicalName: "Roe v. Wade",
		CanonicalDate: "1973-01-22",
		Source:        citation.VerificationSourceCourtListener,
		DecisionYear:  1973,
	}

	propagate.PropagateCluster(cl, outcome)

	assert.Equal(t, "Roe v. Wade", *cl.CanonicalName)
	assert.Equal(t, "Roe v. Wade", *cl.ClusterCaseName, "canonical name must overwrite the display snapshot")
	require.NotNil(t, cl.ClusterYear)
	assert.Equal(t, 1973, *cl.ClusterYear)
}

func TestPropagateClusterLeavesSnapshotUntouchedWhenNotFound(t *testing.T) {
	originalName := "Smith v. Jones"
	cl := &citation.Cluster{ClusterCaseName: &originalName}

	propagate.PropagateCluster(cl, verify.Outcome{Status: verify.StatusNotFound})

	assert.Equal(t, &originalName, cl.ClusterCaseName)
	assert.Nil(t, cl.CanonicalName)
}
