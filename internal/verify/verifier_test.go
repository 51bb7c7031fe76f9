package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselaw/casestrainer/internal/citation"
	"github.com/caselaw/casestrainer/internal/testutil"
	"github.com/caselaw/casestrainer/internal/verify"
)

func newCitation(text string, caseName string, year int) *citation.Citation {
	return &citation.Citation{
		Text:              text,
		ReporterFamily:    citation.ReporterFamilyUS,
		ExtractedCaseName: &caseName,
		ExtractedYear:     &year,
	}
}

func TestVerifyCitationStructuredLookupMatch(t *testing.T) {
	api := testutil.NewFakeStructuredAPI()
	api.LookupResults["410 U.S. 113"] = []verify.Candidate{
		{Citations: []string{"410 U.S. 113"}, CaseName: "Roe v. Wade", DecisionDate: "1973-01-22", Jurisdiction: "US"},
	}

	cfg := verify.DefaultConfig()
	cfg.JurisdictionMap = map[string][]string{"us": {"US"}}
	v := verify.NewVerifier(cfg, api, nil)

	outcome := v.VerifyCitation(context.Background(), newCitation("410 U.S. 113", "Roe v. Wade", 1973))

	require.Equal(t, verify.StatusVerified, outcome.Status)
	assert.Equal(t, "Roe v. Wade", outcome.CanonicalName)
	assert.Equal(t, citation.VerificationSourceCourtListener, outcome.Source)
	assert.False(t, v.WasRateLimited())
}

func TestVerifyCitationFallsThroughToSearchWhenLookupEmpty(t *testing.T) {
	api := testutil.NewFakeStructuredAPI()
	api.SearchResults["410 U.S. 113"] = []verify.Candidate{
		{Citations: []string{"410 U.S. 113"}, CaseName: "Roe v. Wade", DecisionDate: "1973-01-22", Jurisdiction: "US"},
	}

	cfg := verify.DefaultConfig()
	v := verify.NewVerifier(cfg, api, nil)

	outcome := v.VerifyCitation(context.Background(), newCitation("410 U.S. 113", "Roe v. Wade", 1973))

	require.Equal(t, verify.StatusVerified, outcome.Status)
	assert.Equal(t, []string{"410 U.S. 113"}, api.LookupCalls)
	assert.Equal(t, []string{"410 U.S. 113"}, api.SearchCalls)
}

func TestVerifyCitationRateLimitShortCircuitsStructuredStrategies(t *testing.T) {
	api := testutil.NewFakeStructuredAPI()
	api.RateLimited["410 U.S. 113"] = true

	fallback := testutil.NewFakeHTMLSource(citation.VerificationSourceJustia)
	fallback.Candidates["410 U.S. 113"] = verify.Candidate{CaseName: "Roe v. Wade", DecisionDate: "1973-01-22"}

	cfg := verify.DefaultConfig()
	v := verify.NewVerifier(cfg, api, []verify.FallbackSource{fallback})

	outcome := v.VerifyCitation(context.Background(), newCitation("410 U.S. 113", "Roe v. Wade", 1973))

	require.Equal(t, verify.StatusVerified, outcome.Status)
	assert.Equal(t, citation.VerificationSourceJustia, outcome.Source)
	assert.True(t, v.WasRateLimited())
	assert.Empty(t, api.SearchCalls, "search strategy should be skipped once rate-limited")
}

func TestVerifyCitationFallbackRankOrderWinsOverCompletionOrder(t *testing.T) {
	api := testutil.NewFakeStructuredAPI() // empty: structured strategies never match

	first := testutil.NewFakeHTMLSource(citation.VerificationSourceJustia)
	first.Candidates["410 U.S. 113"] = verify.Candidate{CaseName: "Roe v. Wade", DecisionDate: "1973-01-22"}

	second := testutil.NewFakeHTMLSource(citation.VerificationSourceLeagle)
	second.Candidates["410 U.S. 113"] = verify.Candidate{CaseName: "Roe v. Wade", DecisionDate: "1973-01-22"}

	cfg := verify.DefaultConfig()
	v := verify.NewVerifier(cfg, api, []verify.FallbackSource{first, second})

	outcome := v.VerifyCitation(context.Background(), newCitation("410 U.S. 113", "Roe v. Wade", 1973))

	require.Equal(t, verify.StatusVerified, outcome.Status)
	assert.Equal(t, citation.VerificationSourceJustia, outcome.Source, "the higher-ranked source must win even though both qualify")
}

func TestVerifyCitationNoCandidatesIsNotFound(t *testing.T) {
	api := testutil.NewFakeStructuredAPI()
	cfg := verify.DefaultConfig()
	v := verify.NewVerifier(cfg, api, nil)

	outcome := v.VerifyCitation(context.Background(), newCitation("999 U.S. 999", "Nonexistent v. Case", 2099))

	assert.Equal(t, verify.StatusNotFound, outcome.Status)
}

func TestVerifyClusterStopsAtFirstVerifiedMember(t *testing.T) {
	api := testutil.NewFakeStructuredAPI()
	api.LookupResults["410 U.S. 113"] = []verify.Candidate{
		{Citations: []string{"410 U.S. 113"}, CaseName: "Roe v. Wade", DecisionDate: "1973-01-22", Jurisdiction: "US"},
	}

	cfg := verify.DefaultConfig()
	cfg.JurisdictionMap = map[string][]string{"us": {"US"}}
	v := verify.NewVerifier(cfg, api, nil)

	members := []*citation.Citation{
		newCitation("93 S. Ct. 705", "Roe v. Wade", 1973),
		newCitation("410 U.S. 113", "Roe v. Wade", 1973),
	}

	outcome := v.VerifyCluster(context.Background(), members)

	require.Equal(t, verify.StatusVerified, outcome.Status)
	assert.Equal(t, "Roe v. Wade", outcome.CanonicalName)
}
