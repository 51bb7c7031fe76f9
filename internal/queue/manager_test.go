package queue_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/caselaw/casestrainer/internal/queue"
)

func TestEnqueueReceiveDelete(t *testing.T) {
	dir := t.TempDir()
	db, err := queue.OpenDB(arbor.NewLogger(), filepath.Join(dir, "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mgr, err := queue.NewManager(db, "test_jobs")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	ctx := context.Background()
	require.NoError(t, mgr.Enqueue(ctx, queue.Message{JobID: "job-1"}))

	msg, deleteFn, err := mgr.Receive(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "job-1", msg.JobID)

	require.NoError(t, deleteFn())

	_, _, err = mgr.Receive(ctx)
	assert.Error(t, err, "queue should be empty after the only message was deleted")
}

func TestEnqueueFIFOOrder(t *testing.T) {
	dir := t.TempDir()
	db, err := queue.OpenDB(arbor.NewLogger(), filepath.Join(dir, "queue.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mgr, err := queue.NewManager(db, "test_jobs")
	require.NoError(t, err)
	t.Cleanup(func() { mgr.Close() })

	ctx := context.Background()
	require.NoError(t, mgr.Enqueue(ctx, queue.Message{JobID: "first"}))
	require.NoError(t, mgr.Enqueue(ctx, queue.Message{JobID: "second"}))

	msg1, del1, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", msg1.JobID)
	require.NoError(t, del1())

	msg2, del2, err := mgr.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", msg2.JobID)
	require.NoError(t, del2())
}
