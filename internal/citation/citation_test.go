package citation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitationValid(t *testing.T) {
	tests := []struct {
		name string
		c    Citation
		want bool
	}{
		{
			name: "unverified citation with start before end",
			c:    Citation{Start: 10, End: 20},
			want: true,
		},
		{
			name: "start equal to end is invalid",
			c:    Citation{Start: 10, End: 10},
			want: false,
		},
		{
			name: "verified true with a source is valid",
			c:    Citation{Start: 0, End: 5, Verified: true, VerificationSrc: VerificationSourceJustia},
			want: true,
		},
		{
			name: "verified true with true_by_parallel is valid without a source",
			c:    Citation{Start: 0, End: 5, Verified: true, TrueByParallel: true},
			want: true,
		},
		{
			name: "verified true with neither a source nor true_by_parallel is invalid",
			c:    Citation{Start: 0, End: 5, Verified: true},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.c.Valid())
		})
	}
}

func TestClusterValid(t *testing.T) {
	assert.True(t, (&Cluster{MemberIndices: []int{0}}).Valid())
	assert.False(t, (&Cluster{MemberIndices: nil}).Valid())
}

func TestJobRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	job := &Job{
		ID:          "job_abc",
		Status:      JobStatusStarted,
		Phase:       JobPhaseVerifying,
		Percent:     50,
		EnqueuedAt:  now,
		HeartbeatAt: &now,
		Input:       JobInput{Kind: "text", Text: "In re Smith, 1 Wn.2d 1 (1950)."},
	}

	data, err := job.ToJSON()
	require.NoError(t, err)

	got, err := JobFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)
	assert.Equal(t, job.Status, got.Status)
	assert.Equal(t, job.Phase, got.Phase)
	assert.Equal(t, job.Input.Text, got.Input.Text)
}

func TestJobIsStuck(t *testing.T) {
	now := time.Now()
	stale := now.Add(-10 * time.Minute)

	stuck := &Job{Status: JobStatusStarted, HeartbeatAt: &stale}
	assert.True(t, stuck.IsStuck(now, 5*time.Minute))

	fresh := &Job{Status: JobStatusStarted, HeartbeatAt: &now}
	assert.False(t, fresh.IsStuck(now, 5*time.Minute))

	queued := &Job{Status: JobStatusQueued, HeartbeatAt: &stale}
	assert.False(t, queued.IsStuck(now, 5*time.Minute))
}

func TestJobIsTerminal(t *testing.T) {
	assert.True(t, (&Job{Status: JobStatusFinished}).IsTerminal())
	assert.True(t, (&Job{Status: JobStatusFailed}).IsTerminal())
	assert.True(t, (&Job{Status: JobStatusCanceled}).IsTerminal())
	assert.False(t, (&Job{Status: JobStatusStarted}).IsTerminal())
	assert.False(t, (&Job{Status: JobStatusQueued}).IsTerminal())
}
